package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	controller "github.com/compozy/m2release/internal/controller/http"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the release form endpoints over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newContainer(configFile)
			if err != nil {
				return err
			}
			defer func() { _ = c.logger.Sync() }()
			if addr == "" {
				addr = c.cfg.ListenAddr
			}
			server, err := controller.NewServer(c.action,
				controller.WithAddr(addr),
				controller.WithIdentityHeader(c.cfg.IdentityHeader),
				controller.WithLogger(c.logger.Named("http")),
			)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			names, err := c.projects.List(ctx)
			if err != nil {
				return err
			}
			return run(ctx, server.Server, c.logger, names)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides listen_addr)")
	return cmd
}

// run serves until ctx is canceled, then shuts the server down gracefully.
func run(ctx context.Context, server *http.Server, logger *zap.Logger, projects []string) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", server.Addr), zap.Strings("projects", projects))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
