package commands

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"txdash/internal/config"
	apphttp "txdash/internal/http"
	"txdash/internal/log"
	"txdash/internal/middleware/ratelimit"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = ":" + cfg.Port
			}
			logger := newLogger(cfg, cmd.OutOrStdout())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg, addr, logger, nil)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to :$PORT)")

	return cmd
}

// runServe loads the dataset once, then serves until ctx is cancelled. When
// ready is non-nil it receives the bound address.
func runServe(ctx context.Context, cfg *config.Config, addr string, logger *log.Logger, ready chan<- string) error {
	ds := loadDataset(ctx, cfg, logger)

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:         addr,
		Dataset:      ds,
		Logger:       logger,
		SessionTTL:   cfg.SessionTTL,
		SessionMax:   cfg.SessionMax,
		SessionLimit: ratelimit.DefaultConfig(),
	})
	if err != nil {
		return err
	}
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		_ = srv.Shutdown(context.Background())
		return err
	}
	if ready != nil {
		ready <- ln.Addr().String()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server starting",
			log.FieldOperation, log.OpStartup,
			"addr", ln.Addr().String(),
			log.FieldOrigin, string(ds.Origin))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
			return err
		}
		logger.Info("Server exited", log.FieldOperation, log.OpShutdown)
		return nil
	})

	return g.Wait()
}
