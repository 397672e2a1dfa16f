package renderer

import "errors"

var (
	// ErrInvalidConfig is returned at setup, before any frame runs, for
	// out-of-range options or post-process settings.
	ErrInvalidConfig = errors.New("renderer: invalid config")
	// ErrInvalidFrame is returned when a frame's camera or light is unusable.
	ErrInvalidFrame = errors.New("renderer: invalid frame")
	// ErrFrameAborted wraps a resource failure that dropped the whole frame.
	ErrFrameAborted = errors.New("renderer: frame aborted")
	// ErrClosed is returned by a renderer after Close.
	ErrClosed = errors.New("renderer: closed")
)
