// Package config loads the settings shared by the server and client binaries.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

var ErrInvalid = errors.New("config: invalid")

// Config holds all runtime configuration. Empty hosts and zero ports are
// resolved later from the SOCKET_SERVER_* environment and built-in defaults.
type Config struct {
	Offset   int
	CamHost  string
	CamPort  int
	DataHost string
	DataPort int

	Width     int
	Height    int
	PixelBits int

	// Codec is "" for raw frames, or "jpeg", "zstd", "i420".
	Codec        string
	CodecQuality int
	Ack          bool

	ConnectAttempts int
	ConnectDelay    time.Duration

	// FPS caps the server frame rate; 0 means unlimited.
	FPS int

	MetricsAddr string
	LogLevel    string
}

func Default() Config {
	return Config{
		Width:           640,
		Height:          480,
		PixelBits:       8,
		ConnectAttempts: 2,
		ConnectDelay:    2 * time.Second,
		FPS:             30,
	}
}

type fileConfig struct {
	Offset          int    `toml:"offset"`
	CamHost         string `toml:"cam_host"`
	CamPort         int    `toml:"cam_port"`
	DataHost        string `toml:"data_host"`
	DataPort        int    `toml:"data_port"`
	Width           int    `toml:"width"`
	Height          int    `toml:"height"`
	PixelBits       int    `toml:"pixel_bits"`
	Codec           string `toml:"codec"`
	CodecQuality    int    `toml:"codec_quality"`
	Ack             bool   `toml:"ack"`
	ConnectAttempts int    `toml:"connect_attempts"`
	ConnectDelay    string `toml:"connect_delay"`
	FPS             int    `toml:"fps"`
	MetricsAddr     string `toml:"metrics_addr"`
	LogLevel        string `toml:"log_level"`
}

// Load reads a TOML file over the defaults. Keys absent from the file keep
// their default value.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%w: unknown key %q", ErrInvalid, undecoded[0].String())
	}

	if meta.IsDefined("offset") {
		cfg.Offset = raw.Offset
	}
	if meta.IsDefined("cam_host") {
		cfg.CamHost = strings.TrimSpace(raw.CamHost)
	}
	if meta.IsDefined("cam_port") {
		cfg.CamPort = raw.CamPort
	}
	if meta.IsDefined("data_host") {
		cfg.DataHost = strings.TrimSpace(raw.DataHost)
	}
	if meta.IsDefined("data_port") {
		cfg.DataPort = raw.DataPort
	}
	if meta.IsDefined("width") {
		cfg.Width = raw.Width
	}
	if meta.IsDefined("height") {
		cfg.Height = raw.Height
	}
	if meta.IsDefined("pixel_bits") {
		cfg.PixelBits = raw.PixelBits
	}
	if meta.IsDefined("codec") {
		cfg.Codec = strings.ToLower(strings.TrimSpace(raw.Codec))
	}
	if meta.IsDefined("codec_quality") {
		cfg.CodecQuality = raw.CodecQuality
	}
	if meta.IsDefined("ack") {
		cfg.Ack = raw.Ack
	}
	if meta.IsDefined("connect_attempts") {
		cfg.ConnectAttempts = raw.ConnectAttempts
	}
	if meta.IsDefined("connect_delay") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ConnectDelay))
		if err != nil {
			return Config{}, fmt.Errorf("parse connect_delay: %w", err)
		}
		cfg.ConnectDelay = d
	}
	if meta.IsDefined("fps") {
		cfg.FPS = raw.FPS
	}
	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}

	return cfg, nil
}

// Validate checks ranges. Offset bounds match the session table capacity.
func (c Config) Validate() error {
	var errs []error
	if c.Offset < 0 || c.Offset >= 100 {
		errs = append(errs, fmt.Errorf("offset %d not in [0, 100)", c.Offset))
	}
	for name, port := range map[string]int{"cam_port": c.CamPort, "data_port": c.DataPort} {
		if port < 0 || port+c.Offset > 65535 {
			errs = append(errs, fmt.Errorf("%s %d out of range", name, port))
		}
	}
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("frame size %dx%d", c.Width, c.Height))
	}
	switch c.PixelBits {
	case 8, 16, 32:
	default:
		errs = append(errs, fmt.Errorf("pixel_bits %d not one of 8, 16, 32", c.PixelBits))
	}
	switch c.Codec {
	case "", "jpeg", "zstd", "i420":
	default:
		errs = append(errs, fmt.Errorf("codec %q unknown", c.Codec))
	}
	if c.Codec != "" && c.Codec != "zstd" && c.PixelBits != 8 {
		errs = append(errs, fmt.Errorf("codec %q carries 8-bit frames only", c.Codec))
	}
	if c.CodecQuality < 0 || c.CodecQuality > 100 {
		errs = append(errs, fmt.Errorf("codec_quality %d not in [0, 100]", c.CodecQuality))
	}
	if c.ConnectAttempts < 1 {
		errs = append(errs, fmt.Errorf("connect_attempts %d below 1", c.ConnectAttempts))
	}
	if c.ConnectDelay < 0 {
		errs = append(errs, fmt.Errorf("connect_delay %s negative", c.ConnectDelay))
	}
	if c.FPS < 0 {
		errs = append(errs, fmt.Errorf("fps %d negative", c.FPS))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}
