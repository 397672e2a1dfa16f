package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-render/engine/log"
	"github.com/Carmen-Shannon/oxy-render/engine/profiler"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
	"github.com/Carmen-Shannon/oxy-render/engine/scene"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithRenderer sets the renderer frames are submitted to.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler replaces the engine's frame profiler.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		if p != nil {
			e.profiler = p
		}
	}
}

// WithTickRate sets the engine tick rate in frames per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithTickCallback registers the function called each engine tick.
func WithTickCallback(callback func(deltaTime float32)) EngineBuilderOption {
	return func(e *engine) {
		e.tickCallback = callback
	}
}

// WithFrameCallback registers the function called after each frame attempt.
func WithFrameCallback(callback FrameCallback) EngineBuilderOption {
	return func(e *engine) {
		e.frameCallback = callback
	}
}

// WithScene registers a scene at the given key during engine construction.
// The active scene with the lowest key is rendered each frame.
//
// Parameters:
//   - key: the scene's priority (lower wins)
//   - s: the Scene to register
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(key int, s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scenes[key] = s
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}

// WithMaxFrames stops Run after n frame attempts. 0 means unbounded.
func WithMaxFrames(n uint64) EngineBuilderOption {
	return func(e *engine) {
		e.maxFrames = n
	}
}

// WithStopOnError makes Run return the first frame error instead of
// logging it and continuing.
func WithStopOnError(stop bool) EngineBuilderOption {
	return func(e *engine) {
		e.stopOnError = stop
	}
}

// WithConfigSource sets where staged post-process configurations are read
// from between frames.
//
// Parameters:
//   - source: typically a config.Watcher
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithConfigSource(source ConfigSource) EngineBuilderOption {
	return func(e *engine) {
		e.source = source
	}
}

// WithLogger sets the logger for loop events.
func WithLogger(l log.Logger) EngineBuilderOption {
	return func(e *engine) {
		if l != nil {
			e.logger = l
		}
	}
}
