// Package display shows received frames in a window and reports viewer input.
package display

import "github.com/junsooki/renderlink/internal/input"

// Display renders frames and captures user input.
type Display interface {
	Run() error
	SetFrame(width, height int, rgba []byte)
	Close()
}

// InputCallback is called on the window goroutine for every viewer event.
type InputCallback func(ev input.Event)
