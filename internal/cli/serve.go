package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"disease-predictor/internal/metrics"
	"disease-predictor/internal/server"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(flags *globalFlags) *cobra.Command {
	var port int

	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve predictions over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := flags.settings()
			if err != nil {
				return err
			}
			if port != 0 {
				s.ListenPort = port
				if err := s.Validate(); err != nil {
					return err
				}
			}

			store, closeStore, err := openStore(s)
			if err != nil {
				return err
			}
			defer closeStore()

			m := metrics.New()
			mw := metrics.NewWrapper(m)
			pipeline := newPipeline(s, store, mw)

			if len(s.Preload) > 0 {
				if err := pipeline.Registry().Preload(s.Preload...); err != nil {
					return err
				}
				log.Info().Int("domains", len(s.Preload)).Msg("artifacts preloaded")
			}

			ms := server.NewModelServer(pipeline, server.Config{
				Port:           s.ListenPort,
				RequestTimeout: s.RequestTimeout,
				Metrics:        mw,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- ms.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				log.Info().Msg("shutdown signal received")
			}

			log.Info().Msg("shutting down gracefully...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := ms.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("shutdown timeout, forcing exit")
				return err
			}
			return <-errCh
		},
	}

	c.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides LISTEN_PORT)")
	return c
}
