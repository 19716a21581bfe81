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

	"github.com/junsooki/renderlink/internal/colorconv"
	"github.com/junsooki/renderlink/internal/config"
	"github.com/junsooki/renderlink/internal/display"
	"github.com/junsooki/renderlink/internal/input"
	"github.com/junsooki/renderlink/internal/logging"
	"github.com/junsooki/renderlink/internal/metrics"
	"github.com/junsooki/renderlink/internal/peer"
	"github.com/junsooki/renderlink/internal/pixel"
	"github.com/junsooki/renderlink/internal/state"
)

// reconnectPause spaces out reconnect cycles on top of the dialer's own
// per-attempt delay.
const reconnectPause = time.Second

func main() {
	logging.ConfigureRuntime()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := clientCmd().ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("renderlink-client failed")
		os.Exit(1)
	}
}

func clientCmd() *cobra.Command {
	var (
		flags    *config.Flags
		headless bool
	)
	cmd := &cobra.Command{
		Use:   "renderlink-client",
		Short: "View frames rendered by a renderlink server",
		Long: `renderlink-client connects to the camera and data ports of a
renderlink server, sends the viewer camera every frame and shows the frames
it gets back. Drag to pan, right-drag to change the lens, scroll to dolly,
P toggles perspective and R resets the view.`,
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
			return run(cmd.Context(), cfg, headless)
		},
	}
	flags = config.AddFlags(cmd.Flags())
	cmd.Flags().BoolVar(&headless, "headless", false, "run without a window and only log frame rates")
	return cmd
}

func run(ctx context.Context, cfg config.Config, headless bool) error {
	logger := logging.Component("client")
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	opts, err := peer.OptionsFromConfig(cfg, m, logger)
	if err != nil {
		return err
	}
	cli, err := peer.NewClient(opts)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	defer func() {
		if err := cli.Release(); err != nil {
			logger.Warn().Err(err).Msg("release client")
		}
	}()

	events := make(chan input.Event, 256)
	var disp display.Display
	if !headless {
		disp = display.NewEbitenDisplay(fmt.Sprintf("renderlink :%d", cfg.Offset), func(ev input.Event) {
			select {
			case events <- ev:
			default:
			}
		})
	}

	g, ctx := errgroup.WithContext(ctx)
	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			return metrics.Serve(ctx, cfg.MetricsAddr, metrics.Router(reg, cli.Err), logger)
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		if disp != nil {
			disp.Close()
		}
		return cli.Close()
	})
	g.Go(func() error {
		return stream(ctx, cli, cfg, events, disp, m, logger)
	})

	if disp != nil {
		// The window loop has to own the main goroutine.
		if err := disp.Run(); err != nil {
			logger.Error().Err(err).Msg("display")
		}
		// Closing the window ends the session.
		g.Go(func() error { return context.Canceled })
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// stream drives the frame loop: apply queued viewer input, request a frame,
// show it. A failed link is closed and reconnected on the same offset.
func stream(ctx context.Context, cli *peer.Client, cfg config.Config, events <-chan input.Event,
	disp display.Display, m *metrics.Collectors, logger zerolog.Logger) error {
	nav := input.NewNavigator()
	cam := input.DefaultCamera()
	cli.SetCamera(cam)

	var preview []byte
	for ctx.Err() == nil {
		if err := cli.Init(cfg.Width, cfg.Height); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Warn().Err(err).Msg("connect failed")
			if err := reconnect(ctx, cli, cfg.Offset, m); err != nil {
				return err
			}
			continue
		}
		logger.Info().Str("session", cli.Session().ID().String()).Msg("connected")

		for ctx.Err() == nil {
			if err := applyInput(cli, nav, &cam, events); err != nil {
				logger.Warn().Err(err).Msg("reset failed")
				break
			}
			if err := cli.Step(); err != nil {
				if ctx.Err() == nil {
					logger.Warn().Err(err).Msg("server link lost")
				}
				break
			}
			if disp != nil {
				rgba := cli.Pixels()
				if f := cli.Format(); f != pixel.U8 {
					var err error
					if preview, err = toRGBA(preview, f, rgba, cli.Width(), cli.Height()); err != nil {
						return err
					}
					rgba = preview
				}
				disp.SetFrame(cli.Width(), cli.Height(), rgba)
			}
		}
		if ctx.Err() != nil {
			return nil
		}
		if err := reconnect(ctx, cli, cfg.Offset, m); err != nil {
			return err
		}
	}
	return nil
}

func reconnect(ctx context.Context, cli *peer.Client, offset int, m *metrics.Collectors) error {
	if err := cli.Close(); err != nil {
		log.Debug().Err(err).Str("component", "client").Msg("close session")
	}
	select {
	case <-ctx.Done():
		return nil
	case <-time.After(reconnectPause):
	}
	m.ObserveReconnect()
	return cli.SetOffset(offset)
}

// applyInput drains pending viewer events into the camera. A reset
// restores the default view and tells the server to restart accumulation.
func applyInput(cli *peer.Client, nav *input.Navigator, cam *state.Camera, events <-chan input.Event) error {
	changed := false
	for {
		select {
		case ev := <-events:
			switch nav.Apply(ev, cam) {
			case input.ActionCameraChanged:
				changed = true
			case input.ActionReset:
				*cam = input.DefaultCamera()
				cli.SetCamera(*cam)
				if err := cli.Reset(); err != nil {
					return err
				}
				changed = false
			}
		default:
			if changed {
				cli.SetCamera(*cam)
			}
			return nil
		}
	}
}

// toRGBA converts a wide frame to 8-bit RGBA for the window, reusing buf.
func toRGBA(buf []byte, format pixel.Format, frame []byte, width, height int) ([]byte, error) {
	n := width * height * pixel.Channels
	if cap(buf) < n {
		buf = make([]byte, n)
	}
	buf = buf[:n]
	switch format {
	case pixel.U16Half:
		return buf, colorconv.HalfBytesToRGBA(buf, frame, width, height)
	case pixel.F32:
		return buf, colorconv.FloatBytesToRGBA(buf, frame, width, height)
	}
	return nil, fmt.Errorf("%w: %s", pixel.ErrUnsupportedFormat, format)
}
