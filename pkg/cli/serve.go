package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	httpctrl "github.com/secmon-lab/coursematch/pkg/controller/http"
	"github.com/secmon-lab/coursematch/pkg/service/worker"
	"github.com/secmon-lab/coursematch/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var rateLimit int
	var rtCfg runtimeConfig

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("COURSEMATCH_ADDR"),
			Destination: &addr,
		},
		&cli.IntFlag{
			Name:        "rate-limit",
			Usage:       "Maximum /api requests per minute per client IP (0 disables)",
			Value:       120,
			Sources:     cli.EnvVars("COURSEMATCH_RATE_LIMIT"),
			Destination: &rateLimit,
		},
	}

	// Add shared config flags
	flags = append(flags, rtCfg.Flags()...)
	flags = append(flags, rtCfg.catalog.RefreshFlags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Build the catalog index and start the HTTP API",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			// The catalog must load before serving; a failure here exits non-zero
			uc, cleanup, err := rtCfg.setup(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if interval := rtCfg.catalog.RefreshInterval(); interval > 0 {
				refreshWorker := worker.NewCatalogRefreshWorker(uc.Catalog, interval)
				refreshWorker.Start(ctx)
				defer refreshWorker.Stop()
			}

			httpHandler := httpctrl.New(uc.Recommend, uc.Profile, uc.Catalog,
				httpctrl.WithCatalogRebuild(rtCfg.catalog.RebuildEnabled()),
				httpctrl.WithRateLimit(rateLimit, time.Minute),
			)
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server",
					"addr", addr,
					"catalog", rtCfg.catalog.LogAttrs(),
				)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			// Wait for shutdown signal or server error
			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				// Create shutdown context with timeout
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				// Attempt graceful shutdown
				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
