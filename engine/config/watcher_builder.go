package config

import "github.com/Carmen-Shannon/oxy-render/engine/log"

// WatcherBuilderOption is a functional option for configuring a Watcher.
type WatcherBuilderOption func(*Watcher)

// WithLogger sets the logger for reload events.
func WithLogger(l log.Logger) WatcherBuilderOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithOnLoad registers a function called after every reload attempt with
// the loaded file or the error that rejected it.
//
// Parameters:
//   - fn: the callback, run on the watcher's goroutine
//
// Returns:
//   - WatcherBuilderOption: option function to apply
func WithOnLoad(fn func(File, error)) WatcherBuilderOption {
	return func(w *Watcher) {
		w.onLoad = fn
	}
}
