package config

import (
	"strings"

	"github.com/spf13/pflag"
)

// Flags binds command-line overrides. Only flags set explicitly on the
// command line replace values from the config file.
type Flags struct {
	fs   *pflag.FlagSet
	path string
	v    Config
}

// AddFlags registers the shared flags on fs.
func AddFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	d := Default()

	fs.StringVarP(&f.path, "config", "c", "", "path to a TOML config file")
	fs.IntVar(&f.v.Offset, "offset", d.Offset, "session offset added to both ports")
	fs.StringVar(&f.v.CamHost, "cam-host", "", "camera channel host (default $SOCKET_SERVER_NAME_CAM or localhost)")
	fs.IntVar(&f.v.CamPort, "cam-port", 0, "camera channel base port (default $SOCKET_SERVER_PORT_CAM or 7000)")
	fs.StringVar(&f.v.DataHost, "data-host", "", "data channel host (default $SOCKET_SERVER_NAME_DATA or localhost)")
	fs.IntVar(&f.v.DataPort, "data-port", 0, "data channel base port (default $SOCKET_SERVER_PORT_DATA or 7001)")
	fs.IntVar(&f.v.Width, "width", d.Width, "frame width")
	fs.IntVar(&f.v.Height, "height", d.Height, "frame height")
	fs.IntVar(&f.v.PixelBits, "pixel-bits", d.PixelBits, "bits per channel: 8, 16 or 32")
	fs.StringVar(&f.v.Codec, "codec", "", "frame codec: jpeg, zstd, i420 (empty for raw)")
	fs.IntVar(&f.v.CodecQuality, "codec-quality", 0, "codec quality 1-100 (0 for $RENDERLINK_CODEC_QUALITY or 75)")
	fs.BoolVar(&f.v.Ack, "ack", false, "acknowledge every transfer with one byte")
	fs.IntVar(&f.v.ConnectAttempts, "connect-attempts", d.ConnectAttempts, "client connect attempts")
	fs.DurationVar(&f.v.ConnectDelay, "connect-delay", d.ConnectDelay, "pause before each connect attempt")
	fs.IntVar(&f.v.FPS, "fps", d.FPS, "server frame rate cap, 0 for unlimited")
	fs.StringVar(&f.v.MetricsAddr, "metrics-addr", "", "serve /metrics and /healthz on this address")
	fs.StringVar(&f.v.LogLevel, "log-level", "", "trace, debug, info, warn, error")

	return f
}

// Resolve loads the config file if one was given, applies explicit flags on
// top and validates the result.
func (f *Flags) Resolve() (Config, error) {
	cfg := Default()
	if f.path != "" {
		var err error
		if cfg, err = Load(f.path); err != nil {
			return Config{}, err
		}
	}

	set := func(name string, apply func()) {
		if f.fs.Changed(name) {
			apply()
		}
	}
	set("offset", func() { cfg.Offset = f.v.Offset })
	set("cam-host", func() { cfg.CamHost = f.v.CamHost })
	set("cam-port", func() { cfg.CamPort = f.v.CamPort })
	set("data-host", func() { cfg.DataHost = f.v.DataHost })
	set("data-port", func() { cfg.DataPort = f.v.DataPort })
	set("width", func() { cfg.Width = f.v.Width })
	set("height", func() { cfg.Height = f.v.Height })
	set("pixel-bits", func() { cfg.PixelBits = f.v.PixelBits })
	set("codec", func() { cfg.Codec = strings.ToLower(strings.TrimSpace(f.v.Codec)) })
	set("codec-quality", func() { cfg.CodecQuality = f.v.CodecQuality })
	set("ack", func() { cfg.Ack = f.v.Ack })
	set("connect-attempts", func() { cfg.ConnectAttempts = f.v.ConnectAttempts })
	set("connect-delay", func() { cfg.ConnectDelay = f.v.ConnectDelay })
	set("fps", func() { cfg.FPS = f.v.FPS })
	set("metrics-addr", func() { cfg.MetricsAddr = f.v.MetricsAddr })
	set("log-level", func() { cfg.LogLevel = f.v.LogLevel })

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
