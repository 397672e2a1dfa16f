package light

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/chewxy/math32"
)

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*lightImpl)

// WithPosition is an option builder that sets the world-space position of the light.
//
// Parameters:
//   - p: the position
//
// Returns:
//   - LightBuilderOption: a function that applies the position option to a lightImpl
func WithPosition(p common.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = p
	}
}

// WithDirection is an option builder that sets the direction of the light.
// The direction is normalized before storing.
//
// Parameters:
//   - d: the direction the light travels
//
// Returns:
//   - LightBuilderOption: a function that applies the direction option to a lightImpl
func WithDirection(d common.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.direction = d.Normalize()
	}
}

// WithColor is an option builder that sets the RGB color of the light.
//
// Parameters:
//   - c: the color
//
// Returns:
//   - LightBuilderOption: a function that applies the color option to a lightImpl
func WithColor(c common.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = c
	}
}

// WithIntensity is an option builder that sets the scalar intensity multiplier.
//
// Parameters:
//   - intensity: the intensity value
//
// Returns:
//   - LightBuilderOption: a function that applies the intensity option to a lightImpl
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.intensity = intensity
	}
}

// WithRange is an option builder that sets the attenuation cutoff distance.
//
// Parameters:
//   - lightRange: the range value
//
// Returns:
//   - LightBuilderOption: a function that applies the range option to a lightImpl
func WithRange(lightRange float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.lightRange = lightRange
	}
}

// WithSpotCone is an option builder that sets the inner and outer cone half-angles.
// Angles are specified in degrees and stored as cosines.
//
// Parameters:
//   - innerDeg: inner cone half-angle in degrees
//   - outerDeg: outer cone half-angle in degrees
//
// Returns:
//   - LightBuilderOption: a function that applies the spot cone option to a lightImpl
func WithSpotCone(innerDeg, outerDeg float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.innerCone = cosDeg(innerDeg)
		l.outerCone = cosDeg(outerDeg)
	}
}

// WithEnabled is an option builder that sets whether the light is active.
//
// Parameters:
//   - enabled: true to enable
//
// Returns:
//   - LightBuilderOption: a function that applies the enabled option to a lightImpl
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.enabled = enabled
	}
}

// WithCastsShadows is an option builder that sets shadow eligibility.
//
// Parameters:
//   - castsShadows: true to enable shadow casting
//
// Returns:
//   - LightBuilderOption: a function that applies the shadow casting option to a lightImpl
func WithCastsShadows(castsShadows bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.castsShadows = castsShadows
	}
}

// cosDeg converts an angle in degrees to the cosine of that angle in radians.
func cosDeg(deg float32) float32 {
	return math32.Cos(deg * math32.Pi / 180.0)
}
