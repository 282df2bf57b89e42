package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/askimage/internal/handlers"
	"github.com/lehigh-university-libraries/askimage/internal/pipeline"
	"github.com/lehigh-university-libraries/askimage/internal/storage"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start web server for the image question answering interface",
		Long: `Starts the askimage web interface.

Upload a PNG or JPEG image, review the OCR transcription, then ask a question
about it. The question-answering backend needs an API token in the environment
variable named by qa.credential_env (HF_TOKEN for Hugging Face).`,
		Example: `  # Start server on default port 8888
  askimage serve

  # Start server on custom port
  askimage serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			svc, err := pipeline.NewService(cfg)
			if err != nil {
				return err
			}
			if !svc.QA.HasCredential() {
				slog.Warn("API token not found, uploads will be ignored", "env", cfg.QA.CredentialEnv)
			}

			sessions := storage.New()
			handler := handlers.New(svc.Wizard, sessions, cfg.Server.MaxUploadBytes)

			addr := cfg.Addr()
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go pruneSessions(ctx, sessions, cfg.Server.SessionTTL)

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("askimage interface available", "addr", addr, "url", fmt.Sprintf("http://localhost:%d", cfg.Server.Port),
					"ocr_engine", svc.Extractor.EngineName(), "qa_provider", svc.QA.BackendName(), "qa_model", svc.QA.Model())
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-ctx.Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8888, "Port to listen on (overrides config and PORT)")

	return cmd
}

// pruneSessions drops idle sessions until ctx is done.
func pruneSessions(ctx context.Context, sessions *storage.SessionStore, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(min(ttl, time.Minute))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := sessions.Prune(ttl); removed > 0 {
				slog.Info("Pruned idle sessions", "removed", removed, "remaining", sessions.Len())
			}
		}
	}
}
