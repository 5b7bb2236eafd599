package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/queuewatch/pkg/cli/config"
	httpctrl "github.com/secmon-lab/queuewatch/pkg/controller/http"
	"github.com/secmon-lab/queuewatch/pkg/domain/interfaces"
	"github.com/secmon-lab/queuewatch/pkg/service/worker"
	"github.com/secmon-lab/queuewatch/pkg/usecase"
	"github.com/secmon-lab/queuewatch/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var pollInterval time.Duration
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var crmCfg config.CRM
	var sheetCfg config.Sheet
	var slackCfg config.Slack

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("QUEUEWATCH_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "poll-interval",
			Usage:       "Interval between poll cycles",
			Value:       2 * time.Minute,
			Sources:     cli.EnvVars("QUEUEWATCH_POLL_INTERVAL"),
			Destination: &pollInterval,
		},
	}

	// Add shared config flags
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, crmCfg.Flags()...)
	flags = append(flags, sheetCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the poll worker and HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			// Load triage rule configuration
			triageCfg, err := appCfg.Configure(c)
			if err != nil {
				return goerr.Wrap(err, "failed to load triage configuration")
			}

			// Initialize repository based on backend type
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			crmClient, err := crmCfg.Configure(triageCfg.Queries)
			if err != nil {
				return goerr.Wrap(err, "failed to configure CRM client")
			}
			logging.Default().Info("CRM client configured", "crm", crmCfg)

			ucOpts := []usecase.Option{
				usecase.WithTriageConfig(triageCfg),
			}

			logbook, err := sheetCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure spreadsheet logbook")
			}
			if logbook != nil {
				ucOpts = append(ucOpts, usecase.WithLogbook(logbook))
			}

			var notifier interfaces.Notifier
			if slackNotifier, err := slackCfg.Configure(); err != nil {
				return goerr.Wrap(err, "failed to configure Slack notifier")
			} else if slackNotifier != nil {
				notifier = slackNotifier
			}

			uc := usecase.New(repo, crmClient, ucOpts...)

			// Start the poll worker
			poller := worker.NewPoller(uc, notifier, pollInterval)
			if err := poller.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start poll worker")
			}

			// Create HTTP server
			httpHandler, err := httpctrl.New(uc)
			if err != nil {
				return goerr.Wrap(err, "failed to create http server")
			}
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
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			// Wait for shutdown signal or server error
			select {
			case err := <-errCh:
				poller.Stop()
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				// Stop the poll worker first so no cycle races shutdown
				poller.Stop()

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
