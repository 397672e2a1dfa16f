package light

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/chewxy/math32"
)

// ShadowQuality selects the base shadow map resolution.
type ShadowQuality int

const (
	ShadowQualityLow ShadowQuality = iota
	ShadowQualityMedium
	ShadowQualityHigh
	ShadowQualityUltra
)

// Resolution returns the width and height in texels of the first shadow cascade.
func (q ShadowQuality) Resolution() int {
	switch q {
	case ShadowQualityLow:
		return 512
	case ShadowQualityMedium:
		return 1024
	case ShadowQualityUltra:
		return 4096
	default:
		return ShadowMapResolution
	}
}

func (q ShadowQuality) String() string {
	switch q {
	case ShadowQualityLow:
		return "low"
	case ShadowQualityMedium:
		return "medium"
	case ShadowQualityHigh:
		return "high"
	case ShadowQualityUltra:
		return "ultra"
	}
	return "unknown"
}

// ParseShadowQuality maps "low", "medium", "high" or "ultra" to a ShadowQuality.
func ParseShadowQuality(s string) (ShadowQuality, error) {
	switch strings.ToLower(s) {
	case "low":
		return ShadowQualityLow, nil
	case "medium":
		return ShadowQualityMedium, nil
	case "", "high":
		return ShadowQualityHigh, nil
	case "ultra":
		return ShadowQualityUltra, nil
	}
	return ShadowQualityHigh, fmt.Errorf("light: unknown shadow quality %q", s)
}

// ShadowMapResolution is the default width and height in texels of the first
// shadow cascade.
const ShadowMapResolution = 2048

// MaxCascades is the largest number of shadow cascades per light.
const MaxCascades = 4

// DefaultShadowDistance bounds how far from the camera shadows are rendered.
const DefaultShadowDistance float32 = 100.0

// DefaultCascadeSplits are the normalized far edges of the four default cascades.
var DefaultCascadeSplits = []float32{0.1, 0.3, 0.6, 1.0}

// DefaultCasterMargin extends each cascade's light frustum toward the light so
// casters outside the camera slice still land in the map.
const DefaultCasterMargin float32 = 50.0

// DefaultConstantBias is the constant depth bias applied to shadow comparisons
// to reduce shadow acne artifacts, in normalized light depth.
const DefaultConstantBias float32 = 0.005

// DefaultSlopeBias scales the additional bias applied as the surface turns
// away from the light, in normalized light depth.
const DefaultSlopeBias float32 = 0.02

// DefaultShadowNear is the near plane used for spot light shadow projections.
const DefaultShadowNear float32 = 0.1

// LightView builds a view matrix looking along dir from a point placed back
// units behind center. The up vector is chosen so that it is never parallel
// to the light direction.
//
// Parameters:
//   - dir: normalized direction the light travels
//   - center: world-space point the view is centered on
//   - back: distance from the eye to center along -dir
//
// Returns:
//   - [16]float32: the column-major view matrix
func LightView(dir, center common.Vec3, back float32) [16]float32 {
	eye := center.Sub(dir.Scale(back))
	up := common.Vec3{0, 1, 0}
	if math32.Abs(dir[1]) > 0.99 {
		up = common.Vec3{1, 0, 0}
	}
	var view [16]float32
	common.LookAt(view[:], eye, center, up)
	return view
}

// SpotViewProjection builds the perspective shadow transform of a spot light,
// covering its outer cone out to its range.
//
// Parameters:
//   - s: the spot light state
//
// Returns:
//   - [16]float32: the column-major view-projection matrix
func SpotViewProjection(s State) [16]float32 {
	dir := s.Direction.Normalize()
	up := common.Vec3{0, 1, 0}
	if math32.Abs(dir[1]) > 0.99 {
		up = common.Vec3{1, 0, 0}
	}
	var view, proj, vp [16]float32
	common.LookAt(view[:], s.Position, s.Position.Add(dir), up)

	halfAngle := math32.Acos(common.Clamp(s.OuterCos, -1, 1))
	fov := common.Clamp(2*halfAngle+common.Radians(2), common.Radians(1), common.Radians(170))
	far := math32.Max(s.Range, DefaultShadowNear*2)
	common.Perspective(proj[:], fov, 1, DefaultShadowNear, far)
	common.Mul4(vp[:], proj[:], view[:])
	return vp
}
