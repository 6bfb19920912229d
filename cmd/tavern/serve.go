package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tavern/internal/frontend/telnet"
	"github.com/cory-johannsen/tavern/internal/server"
)

// healthInterval is how often the storage backend is pinged while serving.
const healthInterval = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the game over Telnet",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context(), Options{ConfigPath: configPath, LogLevel: logLevel})
	},
}

func runServe(ctx context.Context, opts Options) error {
	start := time.Now()
	app, cleanup, err := initializeApp(ctx, opts)
	if err != nil {
		return err
	}
	defer cleanup()
	logger := app.Logger

	acceptor := telnet.NewAcceptor(app.Config.Telnet, app.Auth, logger)
	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("telnet", &server.FuncService{
		StartFn: acceptor.Start,
		StopFn:  acceptor.Stop,
	})
	if app.Stores.Health != nil {
		lifecycle.Add("storage-health", newHealthService(app.Stores.Health, healthInterval, logger))
	}

	logger.Info("tavern starting",
		zap.String("addr", app.Config.Telnet.Addr()),
		zap.String("storage", app.Stores.Backend),
		zap.String("narrator", app.Config.Narrator.Provider),
		zap.Duration("startup", time.Since(start)),
	)
	return lifecycle.Run(ctx)
}

// newHealthService pings the storage backend until stopped. Failures are
// logged; they do not stop the server.
func newHealthService(check func(context.Context) error, every time.Duration, logger *zap.Logger) *server.FuncService {
	stop := make(chan struct{})
	return &server.FuncService{
		StartFn: func() error {
			ticker := time.NewTicker(every)
			defer ticker.Stop()
			for {
				select {
				case <-stop:
					return nil
				case <-ticker.C:
					if err := check(context.Background()); err != nil {
						logger.Warn("storage health check failed", zap.Error(err))
					}
				}
			}
		},
		StopFn: func() { close(stop) },
	}
}
