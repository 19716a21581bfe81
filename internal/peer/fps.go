package peer

import (
	"time"

	"github.com/rs/zerolog"
)

// FPSWindow is how long frames are counted before the rate is logged and
// the count restarts.
const FPSWindow = 3 * time.Second

// FPSCounter measures the local frame rate. The rate is frames over the time
// since the window started, updated on every tick.
type FPSCounter struct {
	window time.Duration
	now    func() time.Time
	log    zerolog.Logger

	start  time.Time
	frames int
	fps    float64
}

func NewFPSCounter(log zerolog.Logger) *FPSCounter {
	return &FPSCounter{
		window: FPSWindow,
		now:    time.Now,
		log:    log,
	}
}

// Tick counts one frame and returns the current rate.
func (c *FPSCounter) Tick(samples, width, height int) float64 {
	now := c.now()
	if c.start.IsZero() {
		c.start = now
	}
	c.frames++

	elapsed := now.Sub(c.start)
	if elapsed > 0 {
		c.fps = float64(c.frames) / elapsed.Seconds()
	}
	if elapsed >= c.window {
		if c.fps > 0.01 {
			c.log.Info().
				Float64("fps", c.fps).
				Int("samples", samples).
				Int("width", width).
				Int("height", height).
				Msg("frame rate")
		}
		c.frames = 0
		c.start = now
	}
	return c.fps
}

// FPS returns the last computed rate.
func (c *FPSCounter) FPS() float64 {
	return c.fps
}
