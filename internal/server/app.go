// App assembles the server from its parts: configuration, logging, the
// account store, and the TCP listener. It also owns process-level concerns
// such as signal handling.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/tchat/internal/logging"
	"github.com/dmitrijs2005/tchat/internal/server/accounts"
	"github.com/dmitrijs2005/tchat/internal/server/config"
)

type App struct {
	config *config.Config
	logger logging.Logger
	server *Server
}

// NewApp builds a runnable app from a validated config. With a DSN the
// account store is PostgreSQL (migrations applied on startup); without one
// accounts live in memory and vanish with the process.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var repo accounts.Repository
	if cfg.DatabaseDSN != "" {
		var err error
		repo, err = accounts.OpenPostgres(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
	} else {
		repo = accounts.NewInMemoryRepository()
	}

	auth := accounts.NewService(repo, cfg.Secret, cfg.TokenTTL)
	srv := NewServer(cfg, logger, auth)

	return &App{config: cfg, logger: logger, server: srv}, nil
}

// Server exposes the underlying server, mainly so a combined host mode can
// stop it once its client exits.
func (app *App) Server() *Server {
	return app.server
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()
}
