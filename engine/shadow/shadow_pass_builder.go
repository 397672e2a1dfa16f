package shadow

import "github.com/Carmen-Shannon/oxy-render/engine/log"

// ShadowPassBuilderOption is a functional option for configuring a ShadowPass.
type ShadowPassBuilderOption func(*shadowPass)

// WithCulling toggles bounding-sphere culling against each cascade's light frustum.
// Culling is enabled by default.
//
// Parameters:
//   - enabled: true to cull
//
// Returns:
//   - ShadowPassBuilderOption: option that sets culling
func WithCulling(enabled bool) ShadowPassBuilderOption {
	return func(p *shadowPass) {
		p.culling = enabled
	}
}

// WithLogger replaces the pass logger.
func WithLogger(l log.Logger) ShadowPassBuilderOption {
	return func(p *shadowPass) {
		p.logger = l
	}
}
