package light

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/chewxy/math32"
)

// ErrInvalidLight is returned when a light cannot illuminate anything.
var ErrInvalidLight = errors.New("light: invalid parameters")

// State is the per-frame, read-only description of the primary light.
type State struct {
	Type         LightType
	Position     common.Vec3
	Direction    common.Vec3 // normalized travel direction
	Color        common.Vec3
	Intensity    float32
	Range        float32
	InnerCos     float32 // cos(inner half-angle)
	OuterCos     float32 // cos(outer half-angle)
	CastsShadows bool
}

// Validate checks the fields the light type depends on.
//
// Returns:
//   - error: ErrInvalidLight describing the first bad field, or nil
func (s State) Validate() error {
	if s.Intensity < 0 || math32.IsNaN(s.Intensity) {
		return fmt.Errorf("%w: intensity %v", ErrInvalidLight, s.Intensity)
	}
	switch s.Type {
	case LightTypeDirectional:
		if s.Direction.LengthSq() == 0 {
			return fmt.Errorf("%w: directional light without direction", ErrInvalidLight)
		}
	case LightTypePoint:
		if !(s.Range > 0) {
			return fmt.Errorf("%w: point range %v", ErrInvalidLight, s.Range)
		}
	case LightTypeSpot:
		if !(s.Range > 0) {
			return fmt.Errorf("%w: spot range %v", ErrInvalidLight, s.Range)
		}
		if s.Direction.LengthSq() == 0 {
			return fmt.Errorf("%w: spot light without direction", ErrInvalidLight)
		}
		if s.OuterCos > s.InnerCos {
			return fmt.Errorf("%w: outer cone narrower than inner cone", ErrInvalidLight)
		}
	default:
		return fmt.Errorf("%w: unknown type %d", ErrInvalidLight, s.Type)
	}
	return nil
}

// Incident returns the unit vector from a fragment toward the light and the
// radiance arriving at the fragment (color x intensity x attenuation).
//
// Parameters:
//   - frag: world-space fragment position
//
// Returns:
//   - common.Vec3: normalized direction to the light (L)
//   - common.Vec3: incoming radiance
func (s State) Incident(frag common.Vec3) (common.Vec3, common.Vec3) {
	radiance := s.Color.Scale(s.Intensity)
	switch s.Type {
	case LightTypeDirectional:
		return s.Direction.Negate().Normalize(), radiance
	case LightTypePoint, LightTypeSpot:
		toLight := s.Position.Sub(frag)
		dist := toLight.Length()
		if dist == 0 {
			return common.Vec3{}, common.Vec3{}
		}
		l := toLight.Scale(1 / dist)
		atten := rangeWindow(dist, s.Range)
		if s.Type == LightTypeSpot {
			cosTheta := l.Negate().Dot(s.Direction.Normalize())
			atten *= common.Smoothstep(s.OuterCos, s.InnerCos, cosTheta)
		}
		return l, radiance.Scale(atten)
	}
	return common.Vec3{}, common.Vec3{}
}

// rangeWindow fades light smoothly to zero at the range boundary.
func rangeWindow(dist, lightRange float32) float32 {
	if lightRange <= 0 {
		return 0
	}
	r := dist / lightRange
	w := common.Saturate(1 - r*r*r*r)
	return w * w
}
