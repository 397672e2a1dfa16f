package shading

import "github.com/Carmen-Shannon/oxy-render/engine/log"

// ShadingPassBuilderOption is a functional option for configuring a ShadingPass.
type ShadingPassBuilderOption func(*shadingPass)

// WithCulling toggles bounding-sphere culling against the camera frustum.
// Culling is enabled by default.
func WithCulling(enabled bool) ShadingPassBuilderOption {
	return func(p *shadingPass) {
		p.culling = enabled
	}
}

// WithLogger replaces the pass logger.
func WithLogger(l log.Logger) ShadingPassBuilderOption {
	return func(p *shadingPass) {
		p.logger = l
	}
}
