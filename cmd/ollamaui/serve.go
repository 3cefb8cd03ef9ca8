package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ollamaui/internal/config"
	"ollamaui/internal/httpapi"
	"ollamaui/internal/ollama"
	"ollamaui/internal/query"
)

type serveFlags struct {
	addr           string
	requestTimeout time.Duration
	corsOrigins    string
}

func newServeCmd(rf *rootFlags) *cobra.Command {
	f := &serveFlags{}
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the query page and JSON API",
		Example: "  ollamaui serve --addr :8501 --ollama-host http://localhost:11434",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, rf)
			if err != nil {
				return err
			}
			if err := applyServeFlags(cmd, f, &cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cmd, cfg)
		},
	}
	cmd.Flags().StringVar(&f.addr, "addr", "", "HTTP listen address, e.g. :8501 (defaults OLLAMAUI_ADDR or :8501)")
	cmd.Flags().DurationVar(&f.requestTimeout, "request-timeout", 0, "Upper bound for one inference call in whole seconds, e.g. 90s (0 = none)")
	cmd.Flags().StringVar(&f.corsOrigins, "cors-origins", "", "Comma-separated origins; enables CORS when set")
	return cmd
}

// applyServeFlags overlays changed serve flags onto cfg. The timeout is kept
// in whole seconds, so other durations are rejected rather than truncated.
func applyServeFlags(cmd *cobra.Command, f *serveFlags, cfg *config.Config) error {
	if flagChanged(cmd, "addr") {
		cfg.Addr = f.addr
	}
	if flagChanged(cmd, "request-timeout") {
		if f.requestTimeout < 0 || f.requestTimeout%time.Second != 0 {
			return fmt.Errorf("--request-timeout %s: must be a whole number of seconds", f.requestTimeout)
		}
		cfg.RequestTimeoutSeconds = int64(f.requestTimeout / time.Second)
	}
	if flagChanged(cmd, "cors-origins") {
		cfg.CORSEnabled = true
		cfg.CORSOrigins = config.SplitCSV(f.corsOrigins)
	}
	return nil
}

func serve(cmd *cobra.Command, cfg config.Config) error {
	logger := newLogger(cmd, cfg)
	httpapi.SetLogger(logger)
	httpapi.SetLogLevel(cfg.LogLevel)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins, nil, nil)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	httpapi.SetBaseContext(ctx)

	client := ollama.New(ollama.WithRequestTimeout(time.Duration(cfg.RequestTimeoutSeconds) * time.Second))
	svc := query.NewService(cfg.Panel(), client)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("ollama_host", cfg.OllamaHost).Strs("models", cfg.Models).Msg("ollamaui listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	// Graceful shutdown (Ctrl+C / SIGTERM)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
		return err
	}
	logger.Info().Msg("ollamaui stopped")
	return nil
}
