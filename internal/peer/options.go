package peer

import (
	"github.com/rs/zerolog"

	"github.com/junsooki/renderlink/internal/codec"
	"github.com/junsooki/renderlink/internal/config"
	"github.com/junsooki/renderlink/internal/metrics"
	"github.com/junsooki/renderlink/internal/session"
	"github.com/junsooki/renderlink/internal/transport"
)

// OptionsFromConfig maps a validated config onto peer options. Allocator and
// Device are left to their defaults.
func OptionsFromConfig(cfg config.Config, m *metrics.Collectors, log zerolog.Logger) (Options, error) {
	opts := Options{
		Endpoints: session.Endpoints{
			Cam:  session.Endpoint{Host: cfg.CamHost, Port: cfg.CamPort},
			Data: session.Endpoint{Host: cfg.DataHost, Port: cfg.DataPort},
		},
		Offset:       cfg.Offset,
		PixelBits:    cfg.PixelBits,
		CodecQuality: cfg.CodecQuality,
		Ack:          cfg.Ack,
		Retry: transport.RetryPolicy{
			Attempts: cfg.ConnectAttempts,
			Delay:    cfg.ConnectDelay,
		},
		Metrics: m,
		Logger:  log,
	}
	if cfg.Codec != "" {
		kind, err := codec.ParseKind(cfg.Codec)
		if err != nil {
			return Options{}, err
		}
		opts.Codec = kind
	}
	return opts, nil
}
