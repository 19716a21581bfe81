package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "renderlink.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2, cfg.ConnectAttempts)
	assert.Equal(t, 2*time.Second, cfg.ConnectDelay)
	assert.Equal(t, 8, cfg.PixelBits)
}

func TestLoadOverridesDefinedKeys(t *testing.T) {
	path := writeConfig(t, `
offset = 3
cam_host = " render-node "
data_port = 9001
pixel_bits = 32
codec = "ZSTD"
ack = true
connect_delay = "250ms"
metrics_addr = ":9090"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 3, cfg.Offset)
	assert.Equal(t, "render-node", cfg.CamHost)
	assert.Equal(t, 0, cfg.CamPort, "unset ports stay zero")
	assert.Equal(t, 9001, cfg.DataPort)
	assert.Equal(t, 32, cfg.PixelBits)
	assert.Equal(t, "zstd", cfg.Codec)
	assert.True(t, cfg.Ack)
	assert.Equal(t, 250*time.Millisecond, cfg.ConnectDelay)
	assert.Equal(t, 2, cfg.ConnectAttempts)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, 640, cfg.Width)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeConfig(t, `signaling = "ws://localhost"`))
	require.ErrorIs(t, err, ErrInvalid)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	_, err := Load(writeConfig(t, `connect_delay = "soon"`))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"offset":       func(c *Config) { c.Offset = 100 },
		"pixel bits":   func(c *Config) { c.PixelBits = 12 },
		"codec":        func(c *Config) { c.Codec = "h264" },
		"jpeg float":   func(c *Config) { c.Codec, c.PixelBits = "jpeg", 32 },
		"quality":      func(c *Config) { c.CodecQuality = 101 },
		"attempts":     func(c *Config) { c.ConnectAttempts = 0 },
		"frame size":   func(c *Config) { c.Width = 0 },
		"port":         func(c *Config) { c.CamPort = 70000 },
		"negative fps": func(c *Config) { c.FPS = -1 },
	}
	for name, edit := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			edit(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}
