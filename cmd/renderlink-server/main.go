package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/junsooki/renderlink/internal/config"
	"github.com/junsooki/renderlink/internal/logging"
	"github.com/junsooki/renderlink/internal/metrics"
	"github.com/junsooki/renderlink/internal/peer"
	"github.com/junsooki/renderlink/internal/render"
)

func main() {
	logging.ConfigureRuntime()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serverCmd().ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("renderlink-server failed")
		os.Exit(1)
	}
}

func serverCmd() *cobra.Command {
	var flags *config.Flags
	cmd := &cobra.Command{
		Use:   "renderlink-server",
		Short: "Render frames for a renderlink client",
		Long: `renderlink-server listens on the camera and data ports (base port plus
offset), answers every control message from the client with a rendered
frame, and waits for a new client whenever the connection drops.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.Resolve()
			if err != nil {
				return err
			}
			if lvl, ok := logging.ParseLevel(cfg.LogLevel); ok {
				zerolog.SetGlobalLevel(lvl)
			}
			return run(cmd.Context(), cfg)
		},
	}
	flags = config.AddFlags(cmd.Flags())
	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	logger := logging.Component("server")
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	opts, err := peer.OptionsFromConfig(cfg, m, logger)
	if err != nil {
		return err
	}
	srv, err := peer.NewServer(opts)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	defer func() {
		if err := srv.Release(); err != nil {
			logger.Warn().Err(err).Msg("release server")
		}
	}()

	logger.Info().
		Int("offset", cfg.Offset).
		Int("width", cfg.Width).
		Int("height", cfg.Height).
		Str("format", srv.Format().String()).
		Str("codec", cfg.Codec).
		Msg("renderlink server starting")

	g, ctx := errgroup.WithContext(ctx)
	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			return metrics.Serve(ctx, cfg.MetricsAddr, metrics.Router(reg, srv.Err), logger)
		})
	}
	g.Go(func() error {
		// Unblocks a pending accept or read.
		<-ctx.Done()
		return srv.Close()
	})
	g.Go(func() error {
		return serve(ctx, srv, cfg, m, logger)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// serve accepts a client, answers its control messages until the link
// fails, then waits for the next client on the same offset.
func serve(ctx context.Context, srv *peer.Server, cfg config.Config, m *metrics.Collectors, logger zerolog.Logger) error {
	pattern := render.NewTestPattern()

	var limit <-chan time.Time
	if cfg.FPS > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(cfg.FPS))
		defer ticker.Stop()
		limit = ticker.C
	}

	for {
		if err := srv.Init(cfg.Width, cfg.Height); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("init server: %w", err)
		}
		logger.Info().Str("session", srv.Session().ID().String()).Msg("client connected")

		for {
			if err := srv.ServeFrame(pattern); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Warn().Err(err).Msg("client link lost")
				break
			}
			if limit != nil {
				select {
				case <-limit:
				case <-ctx.Done():
					return nil
				}
			}
		}

		if err := srv.Close(); err != nil {
			logger.Debug().Err(err).Msg("close session")
		}
		if err := srv.SetOffset(cfg.Offset); err != nil {
			return err
		}
		pattern.Reset()
		m.ObserveReconnect()
	}
}
