package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/example/tilepipe/internal/wire"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reconcile every adjacent stage on the configured interval",
	Long: `Run reconciliation passes until interrupted. The first pass starts
immediately; later passes follow the config interval. A pass that is running
when the process is interrupted finishes before exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger := wire.Logger()
		addr, _ := cmd.Flags().GetString("metrics-addr")

		var srv *http.Server
		if addr != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			srv = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
			go func() {
				logger.Info().Str("addr", addr).Msg("serving metrics")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error().Err(err).Msg("metrics server failed")
				}
			}()
		}

		err := wire.Scheduler().Run(ctx)

		if srv != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if serr := srv.Shutdown(shutdownCtx); serr != nil {
				logger.Warn().Err(serr).Msg("metrics server shutdown")
			}
		}
		if err != nil {
			return fmt.Errorf("watch stopped: %w", err)
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
}

// WatchCmd returns the watch command
func WatchCmd() *cobra.Command {
	return watchCmd
}
