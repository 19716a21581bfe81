package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFlags(t *testing.T, args ...string) *Flags {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f := AddFlags(fs)
	require.NoError(t, fs.Parse(args))
	return f
}

func TestResolveWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := parseFlags(t).Resolve()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestResolveFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, `
offset = 2
width = 320
codec = "zstd"
connect_delay = "1s"
`)

	cfg, err := parseFlags(t, "--config", path, "--width", "128", "--codec", " JPEG ", "--ack").Resolve()
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Offset, "file value kept when flag absent")
	assert.Equal(t, 128, cfg.Width)
	assert.Equal(t, 480, cfg.Height)
	assert.Equal(t, "jpeg", cfg.Codec)
	assert.True(t, cfg.Ack)
	assert.Equal(t, time.Second, cfg.ConnectDelay)
}

func TestResolveUnsetFlagDoesNotClobberFile(t *testing.T) {
	path := writeConfig(t, "fps = 0\n")

	cfg, err := parseFlags(t, "-c", path).Resolve()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.FPS)
}

func TestResolveValidates(t *testing.T) {
	_, err := parseFlags(t, "--pixel-bits", "12").Resolve()
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = parseFlags(t, "--codec", "jpeg", "--pixel-bits", "16").Resolve()
	assert.ErrorIs(t, err, ErrInvalid)
}
