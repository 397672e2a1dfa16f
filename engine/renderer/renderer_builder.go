package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/compositor"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/Carmen-Shannon/oxy-render/engine/log"
	"github.com/Carmen-Shannon/oxy-render/engine/postprocess"
	"github.com/Carmen-Shannon/oxy-render/engine/profiler"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithOutputSize sets the size of the display image.
//
// Parameters:
//   - width: output width in pixels
//   - height: output height in pixels
//
// Returns:
//   - RendererBuilderOption: a function that applies the output size option to a renderer
func WithOutputSize(width, height int) RendererBuilderOption {
	return func(r *renderer) {
		r.width, r.height = width, height
	}
}

// WithRenderScale renders the scene at scale times the output size; the
// post-process chain resamples to the output size. 1 disables resampling.
//
// Parameters:
//   - scale: internal resolution multiplier in (0, MaxRenderScale]
//
// Returns:
//   - RendererBuilderOption: a function that applies the render scale option to a renderer
func WithRenderScale(scale float32) RendererBuilderOption {
	return func(r *renderer) {
		r.renderScale = scale
	}
}

// WithWorkers sets the number of kernel workers. Zero or less uses one per CPU.
func WithWorkers(n int) RendererBuilderOption {
	return func(r *renderer) {
		r.workers = n
	}
}

// WithMaxTexels bounds the texels the target pool keeps resident. Frames
// needing more abort with ErrFrameAborted.
func WithMaxTexels(n int) RendererBuilderOption {
	return func(r *renderer) {
		r.maxTexels = n
	}
}

// WithShadowQuality sets the base cascade resolution from a quality preset.
//
// Parameters:
//   - q: the ShadowQuality preset
//
// Returns:
//   - RendererBuilderOption: a function that applies the shadow quality option to a renderer
func WithShadowQuality(q light.ShadowQuality) RendererBuilderOption {
	return func(r *renderer) {
		r.quality = q
		r.fit.Resolution = q.Resolution()
	}
}

// WithCascadeSplits sets the normalized cascade split fractions. Each must be
// in (0, 1] and strictly increasing; at most light.MaxCascades are allowed.
func WithCascadeSplits(splits ...float32) RendererBuilderOption {
	return func(r *renderer) {
		r.fit.Splits = append([]float32(nil), splits...)
	}
}

// WithShadowDistance caps the view distance covered by shadow cascades.
func WithShadowDistance(d float32) RendererBuilderOption {
	return func(r *renderer) {
		r.fit.MaxDistance = d
	}
}

// WithShadowBias sets the constant and slope-scaled depth bias.
func WithShadowBias(constant, slope float32) RendererBuilderOption {
	return func(r *renderer) {
		r.fit.ConstantBias = constant
		r.fit.SlopeBias = slope
	}
}

// WithPostProcess sets the initial post-process configuration.
func WithPostProcess(cfg postprocess.Config) RendererBuilderOption {
	return func(r *renderer) {
		r.post = cfg
	}
}

// WithClearColor sets the HDR color of texels no geometry covers.
func WithClearColor(c common.Vec4) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = c
	}
}

// WithDebugCascades tints shaded texels by their shadow cascade.
func WithDebugCascades(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.debugCascades = enabled
	}
}

// WithCulling toggles bounding-sphere culling in the shadow and shading passes.
func WithCulling(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.culling = enabled
	}
}

// WithSurface binds a display surface. Its size and format are checked at
// construction.
//
// Parameters:
//   - s: the surface frames are presented to
//
// Returns:
//   - RendererBuilderOption: a function that applies the surface option to a renderer
func WithSurface(s compositor.Surface) RendererBuilderOption {
	return func(r *renderer) {
		if s == nil {
			r.errs = append(r.errs, fmt.Errorf("%w: nil surface", ErrInvalidConfig))
			return
		}
		r.surface = s
	}
}

// WithProfiler records every pass timing into p and ticks it once per frame.
func WithProfiler(p *profiler.Profiler) RendererBuilderOption {
	return func(r *renderer) {
		r.profiler = p
	}
}

// WithLogger replaces the renderer logger.
func WithLogger(l log.Logger) RendererBuilderOption {
	return func(r *renderer) {
		r.logger = l
	}
}
