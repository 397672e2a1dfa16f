package light

import "github.com/Carmen-Shannon/oxy-render/common"

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeDirectional represents a light with no position, only direction.
	// Used for large distant sources like the sun or moon. Affects all fragments
	// uniformly with no distance attenuation.
	LightTypeDirectional LightType = iota

	// LightTypePoint represents a light that emits in all directions from a position.
	// Attenuates with distance up to a configurable range. Point lights do not
	// cast shadows.
	LightTypePoint

	// LightTypeSpot represents a light that emits in a cone from a position along a direction.
	// Attenuates with both distance and angle from the cone axis, controlled by
	// inner and outer cone angles.
	LightTypeSpot
)

// String returns the lowercase name of the light type.
func (t LightType) String() string {
	switch t {
	case LightTypeDirectional:
		return "directional"
	case LightTypePoint:
		return "point"
	case LightTypeSpot:
		return "spot"
	}
	return "unknown"
}

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	lightType    LightType
	position     common.Vec3
	direction    common.Vec3
	color        common.Vec3
	intensity    float32
	lightRange   float32
	innerCone    float32 // stored as cos(angle in radians)
	outerCone    float32 // stored as cos(angle in radians)
	enabled      bool
	castsShadows bool
}

// Light defines the interface for a light source.
//
// All light types (directional, point, spot) share this interface;
// type-specific properties (e.g. cone angles for spot lights) return zero
// values when not applicable. Each frame the renderer consumes one light's
// immutable State as the primary shadow-casting light.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type (directional, point, or spot)
	Type() LightType

	// Position returns the world-space position of the light.
	// Meaningless for directional lights.
	//
	// Returns:
	//   - common.Vec3: position as (x, y, z)
	Position() common.Vec3

	// Direction returns the normalized direction the light travels.
	// For directional lights this is the light direction. For spot lights this
	// is the cone axis. Meaningless for point lights.
	//
	// Returns:
	//   - common.Vec3: normalized direction as (x, y, z)
	Direction() common.Vec3

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - common.Vec3: color as (r, g, b)
	Color() common.Vec3

	// Intensity returns the scalar intensity multiplier for the light.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// Range returns the maximum attenuation distance for point and spot lights.
	//
	// Returns:
	//   - float32: the range value
	Range() float32

	// InnerCone returns the cosine of the inner cone half-angle for spot lights.
	//
	// Returns:
	//   - float32: cos(inner half-angle)
	InnerCone() float32

	// OuterCone returns the cosine of the outer cone half-angle for spot lights.
	//
	// Returns:
	//   - float32: cos(outer half-angle)
	OuterCone() float32

	// Enabled returns whether this light is active for rendering.
	//
	// Returns:
	//   - bool: true if the light is enabled
	Enabled() bool

	// CastsShadows returns whether this light is eligible for shadow map generation.
	//
	// Returns:
	//   - bool: true if the light casts shadows
	CastsShadows() bool

	// State captures the light for one frame.
	//
	// Returns:
	//   - State: the immutable snapshot
	State() State

	// SetPosition sets the world-space position of the light.
	//
	// Parameters:
	//   - p: position
	SetPosition(p common.Vec3)

	// SetDirection sets the direction of the light and normalizes it.
	//
	// Parameters:
	//   - d: direction (will be normalized)
	SetDirection(d common.Vec3)

	// SetColor sets the RGB color of the light.
	//
	// Parameters:
	//   - c: color
	SetColor(c common.Vec3)

	// SetIntensity sets the scalar intensity multiplier.
	//
	// Parameters:
	//   - intensity: the intensity value
	SetIntensity(intensity float32)

	// SetRange sets the maximum attenuation distance.
	//
	// Parameters:
	//   - lightRange: the range value
	SetRange(lightRange float32)

	// SetSpotCone sets the inner and outer cone half-angles for spot lights.
	// Angles are specified in degrees and stored internally as cosines.
	//
	// Parameters:
	//   - innerDeg: inner cone half-angle in degrees
	//   - outerDeg: outer cone half-angle in degrees
	SetSpotCone(innerDeg, outerDeg float32)

	// SetEnabled enables or disables the light for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetCastsShadows sets whether the light is eligible for shadow mapping.
	//
	// Parameters:
	//   - castsShadows: true to enable shadow casting
	SetCastsShadows(castsShadows bool)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type with sensible defaults and
// any provided options applied.
//
// Parameters:
//   - lightType: the kind of light to create (directional, point, or spot)
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType:    lightType,
		direction:    common.Vec3{0, -1, 0},
		color:        common.Vec3{1, 1, 1},
		intensity:    1.0,
		lightRange:   10.0,
		innerCone:    0.9063, // cos(25°)
		outerCone:    0.8192, // cos(35°)
		enabled:      true,
		castsShadows: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType        { return l.lightType }
func (l *lightImpl) Position() common.Vec3  { return l.position }
func (l *lightImpl) Direction() common.Vec3 { return l.direction }
func (l *lightImpl) Color() common.Vec3     { return l.color }
func (l *lightImpl) Intensity() float32     { return l.intensity }
func (l *lightImpl) Range() float32         { return l.lightRange }
func (l *lightImpl) InnerCone() float32     { return l.innerCone }
func (l *lightImpl) OuterCone() float32     { return l.outerCone }
func (l *lightImpl) Enabled() bool          { return l.enabled }
func (l *lightImpl) CastsShadows() bool     { return l.castsShadows }

func (l *lightImpl) State() State {
	return State{
		Type:         l.lightType,
		Position:     l.position,
		Direction:    l.direction,
		Color:        l.color,
		Intensity:    l.intensity,
		Range:        l.lightRange,
		InnerCos:     l.innerCone,
		OuterCos:     l.outerCone,
		CastsShadows: l.castsShadows && l.enabled,
	}
}

func (l *lightImpl) SetPosition(p common.Vec3) {
	l.position = p
}

func (l *lightImpl) SetDirection(d common.Vec3) {
	l.direction = d.Normalize()
}

func (l *lightImpl) SetColor(c common.Vec3) {
	l.color = c
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) SetRange(lightRange float32) {
	l.lightRange = lightRange
}

func (l *lightImpl) SetSpotCone(innerDeg, outerDeg float32) {
	l.innerCone = cosDeg(innerDeg)
	l.outerCone = cosDeg(outerDeg)
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}

func (l *lightImpl) SetCastsShadows(castsShadows bool) {
	l.castsShadows = castsShadows
}
