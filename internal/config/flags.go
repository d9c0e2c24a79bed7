package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/qubitlabs/mediakeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   data directory for durable state (default from Config)
//	-b string   comma-separated backend DSNs, read-preference order
//	-m string   markers directory for cross-process notifications
//	-p int      reconciliation poll interval in seconds
//	-f int      recent-updates feed limit
//	-s string   session token signing secret
//
// Note: The function filters os.Args to only include the flags it knows
// about, using flagx.FilterArgs, to avoid interference with other
// components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-b", "-m", "-p", "-f", "-s"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory for durable state")
	dsns := fs.String("b", strings.Join(cfg.BackendDSNs, ","), "comma-separated backend DSNs")
	fs.StringVar(&cfg.MarkersDir, "m", cfg.MarkersDir, "markers directory for cross-process notifications")
	pollInterval := fs.Int("p", int(cfg.PollInterval.Seconds()), "reconciliation poll interval (in seconds)")
	fs.IntVar(&cfg.FeedLimit, "f", cfg.FeedLimit, "recent-updates feed limit")
	fs.StringVar(&cfg.SessionSecret, "s", cfg.SessionSecret, "session token signing secret")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	if *dsns != "" {
		cfg.BackendDSNs = strings.Split(*dsns, ",")
	} else {
		cfg.BackendDSNs = nil
	}
	cfg.PollInterval = time.Duration(*pollInterval) * time.Second
}
