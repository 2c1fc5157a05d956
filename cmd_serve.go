package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web admin panel",
	Long: `Serves the admin panel on the configured listen address. Content and
notes are read from and written to the backend at api_url.`,
	RunE: runServe,
}

var listenAddr string

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address (overrides listen_addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}

	app, err := NewApp(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.startup(ctx); err != nil {
		return err
	}
	defer app.shutdown()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("admin panel listening",
			zap.String("addr", cfg.ListenAddr),
			zap.String("api", cfg.APIURL),
			zap.String("login_mode", cfg.LoginMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
