package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/qubitlabs/mediakeeper/internal/auth"
	"github.com/qubitlabs/mediakeeper/internal/broadcast"
	"github.com/qubitlabs/mediakeeper/internal/catalog"
	"github.com/qubitlabs/mediakeeper/internal/config"
	"github.com/qubitlabs/mediakeeper/internal/device"
	"github.com/qubitlabs/mediakeeper/internal/engine"
	"github.com/qubitlabs/mediakeeper/internal/logging"
	"github.com/qubitlabs/mediakeeper/internal/storage"
)

// App is the interactive console over the catalog service. It holds the
// current session; all access checks flow through it.
type App struct {
	config  *config.Config
	catalog *catalog.Service
	auth    *auth.Service
	bc      *broadcast.Broadcaster
	session *auth.Session
	reader  *bufio.Reader
	out     io.Writer
}

// NewApp wires storage backends, device identity, the broadcaster, the
// sync engine and the catalog service from cfg.
func NewApp(cfg *config.Config) (*App, error) {
	ctx := context.Background()
	log := logging.NewTextLogger(os.Stderr, slog.LevelWarn)

	if len(cfg.BackendDSNs) == 0 {
		return nil, fmt.Errorf("no storage backends configured")
	}

	backends := make([]storage.Backend, 0, len(cfg.BackendDSNs))
	for _, dsn := range cfg.BackendDSNs {
		b, err := storage.Open(dsn, log)
		if err != nil {
			return nil, fmt.Errorf("open backend %q: %w", dsn, err)
		}
		backends = append(backends, b)
	}

	// The first backend is the durable one; device identity and accounts
	// live there.
	deviceID := device.GetOrCreateID(ctx, backends[0], log)

	bc, err := broadcast.New(broadcast.Config{
		DeviceID:   deviceID,
		MarkersDir: cfg.MarkersDir,
		Logger:     log,
	})
	if err != nil {
		return nil, fmt.Errorf("broadcaster: %w", err)
	}

	eng, err := engine.New(engine.Config{
		Backends:    backends,
		DeviceID:    deviceID,
		Logger:      log,
		Broadcaster: bc,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	authService, err := auth.NewService(auth.Config{
		Durable:  backends[0],
		Secret:   []byte(cfg.SessionSecret),
		DeviceID: deviceID,
		TokenTTL: cfg.TokenTTL,
		Logger:   log,
	})
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}
	if err := authService.Bootstrap(ctx); err != nil {
		return nil, fmt.Errorf("bootstrap accounts: %w", err)
	}

	catalogService := catalog.New(catalog.Config{
		Engine:       eng,
		Broadcaster:  bc,
		Logger:       log,
		PollInterval: cfg.PollInterval,
		PollCooldown: cfg.PollCooldown,
		FeedLimit:    cfg.FeedLimit,
	})
	if err := catalogService.Load(ctx); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	return &App{
		config:  cfg,
		catalog: catalogService,
		auth:    authService,
		bc:      bc,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

// Run starts the background reconciliation and enters the REPL. Returns
// when the user exits or stdin closes.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.bc.Close()

	a.catalog.Start(ctx)
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.session != nil
}

func (a *App) isAdmin() bool {
	return a.session.IsAdmin()
}
