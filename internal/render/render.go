// Package render produces the frames a server streams. Real renderers sit
// behind Renderer; TestPattern is a self-contained one for bring-up and tests.
package render

import (
	"github.com/junsooki/renderlink/internal/pixel"
	"github.com/junsooki/renderlink/internal/state"
)

// Renderer draws one frame for ctl into dst, which holds exactly one
// ctl.Width x ctl.Height frame in format. It returns the shared state that
// accompanies the frame; the caller fills in FPS.
type Renderer interface {
	Render(ctl state.ControlState, format pixel.Format, dst []byte) (state.SharedState, error)
	// Reset restarts sample accumulation.
	Reset()
}
