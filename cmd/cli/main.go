package main

import (
	"context"
	"log"

	"github.com/qubitlabs/mediakeeper/internal/cli"
	"github.com/qubitlabs/mediakeeper/internal/config"
)

func main() {

	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(context.Background())

}
