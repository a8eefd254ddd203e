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

	"github.com/rberkkaratas/recruitment-support/internal/adapters/http/api"
	"github.com/rberkkaratas/recruitment-support/internal/adapters/http/swagger"
	service "github.com/rberkkaratas/recruitment-support/internal/app"
	"github.com/rberkkaratas/recruitment-support/internal/config"
	"github.com/rberkkaratas/recruitment-support/internal/domain/roles"
	"github.com/rberkkaratas/recruitment-support/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the latest stored run over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if serveAddr != "" {
			cfg.Addr = serveAddr
		}
		return serve(ctx, cfg)
	},
}

func init() { //nolint:gochecknoinits // cobra command wiring
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides addr)")
}

// newMux wires the API and its docs around svc.
func newMux(ctx context.Context, svc api.Dependencies, maxLimit int) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, maxLimit).Register(ctx, mux)
	return mux
}

func serve(ctx context.Context, c *config.Config) error {
	if c.StorePath == "" {
		return fmt.Errorf("serve: no result store; set store_path")
	}
	log := logger.Named("scout")
	rs, err := roles.LoadOrDefault(c.RolesPath)
	if err != nil {
		return err
	}
	store, err := openStore(ctx, c.StorePath, log)
	if err != nil {
		return err
	}
	defer store.Close()

	svc := service.New(
		service.WithLogger(log),
		service.WithRoles(rs),
		service.WithStore(store),
	)

	srv := &http.Server{
		Addr:              c.Addr,
		Handler:           newMux(ctx, svc, c.MaxShortlistLimit),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", c.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
		return err
	}
	log.Info(ctx, "server stopped")
	return nil
}
