package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/cybergard/ebiosgard/pkg/cli/config"
	httpctrl "github.com/cybergard/ebiosgard/pkg/controller/http"
	"github.com/cybergard/ebiosgard/pkg/service/generation"
	"github.com/cybergard/ebiosgard/pkg/usecase"
	"github.com/cybergard/ebiosgard/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var regenerate bool
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var catalogCfg config.Catalog
	var sentryCfg config.Sentry

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("EBIOSGARD_ADDR"),
			Destination: &addr,
		},
		&cli.BoolFlag{
			Name:        "regenerate-on-rejection",
			Usage:       "Allow one extra generation pass when a well-formed batch is rejected",
			Sources:     cli.EnvVars("EBIOSGARD_REGENERATE_ON_REJECTION"),
			Destination: &regenerate,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, catalogCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			flushSentry, err := sentryCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure sentry")
			}
			defer flushSentry()

			repo, closeRepo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer closeRepo()

			cat, err := catalogCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load catalog")
			}

			// The generative workshops degrade to read-only operation
			// when no Gemini project is configured.
			var gen generation.Service
			llm, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure Gemini client")
			}
			if llm != nil {
				gen, err = generation.New(llm, geminiCfg.Model())
				if err != nil {
					return goerr.Wrap(err, "failed to create generation service")
				}
				logging.Default().Info("Generation service enabled", "model", geminiCfg.Model())
			} else {
				logging.Default().Warn("Gemini project not configured, generative workshops are unavailable")
			}

			uc := usecase.New(repo, gen, cat,
				usecase.WithRegenerateOnRejection(regenerate),
			)
			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

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
