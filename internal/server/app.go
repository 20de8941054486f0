// Package server initializes and runs the mail server: it wires the
// configuration, logger, mailbox store, and protocol engine together and
// handles operator shutdown signals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/mailkeeper/internal/logging"
	"github.com/dmitrijs2005/mailkeeper/internal/server/config"
	"github.com/dmitrijs2005/mailkeeper/internal/server/engine"
	"github.com/dmitrijs2005/mailkeeper/internal/server/mailbox"
)

type App struct {
	config *config.Config
	logger logging.Logger
	engine *engine.Engine
}

func NewApp(c *config.Config) (*App, error) {

	s := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(s)

	store, err := mailbox.New(c.DataDir)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	eng := engine.New(c.Addr, c.Domain, store, logger)

	return &App{config: c, logger: logger, engine: eng}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until the context is cancelled or the engine fails to start.
// A bind failure surfaces here before any connection is accepted.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.Addr, "domain", app.config.Domain)

	app.initSignalHandler(cancelFunc)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.engine.Run(ctx)
	})

	if err := g.Wait(); err != nil {
		app.logger.Error(ctx, "server stopped", "error", err)
		return err
	}

	app.logger.Info(ctx, "server stopped")
	return nil
}
