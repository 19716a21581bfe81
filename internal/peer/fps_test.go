package peer

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestFPSCounterWindow(t *testing.T) {
	clock := time.Unix(1000, 0)
	c := NewFPSCounter(zerolog.Nop())
	c.now = func() time.Time { return clock }

	assert.Zero(t, c.Tick(0, 4, 4), "first frame has no elapsed time")

	clock = clock.Add(time.Second)
	assert.InDelta(t, 2.0, c.Tick(0, 4, 4), 1e-9)

	clock = clock.Add(2 * time.Second)
	assert.InDelta(t, 1.0, c.Tick(0, 4, 4), 1e-9)
	assert.Equal(t, 0, c.frames, "window restarts after three seconds")

	clock = clock.Add(500 * time.Millisecond)
	assert.InDelta(t, 2.0, c.Tick(0, 4, 4), 1e-9)
	assert.InDelta(t, 2.0, c.FPS(), 1e-9)
}
