package shadow

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/chewxy/math32"
)

// FitParams controls how cascades are placed around the camera frustum.
type FitParams struct {
	// Splits are the normalized far edges of each cascade, strictly increasing in (0, 1].
	Splits []float32
	// MaxDistance bounds the shadowed view depth.
	MaxDistance float32
	// CasterMargin extends each cascade toward the light.
	CasterMargin float32
	// Resolution is the size of the first two cascades; later cascades use
	// Resolution >> (k/2).
	Resolution int
	// ConstantBias and SlopeBias feed Bias.
	ConstantBias float32
	SlopeBias    float32
}

// DefaultFitParams returns the default cascade layout for a quality preset.
func DefaultFitParams(quality light.ShadowQuality) FitParams {
	return FitParams{
		Splits:       append([]float32(nil), light.DefaultCascadeSplits...),
		MaxDistance:  light.DefaultShadowDistance,
		CasterMargin: light.DefaultCasterMargin,
		Resolution:   quality.Resolution(),
		ConstantBias: light.DefaultConstantBias,
		SlopeBias:    light.DefaultSlopeBias,
	}
}

// Validate reports every out-of-range field.
func (p FitParams) Validate() error {
	var errs []error
	if len(p.Splits) == 0 || len(p.Splits) > light.MaxCascades {
		errs = append(errs, fmt.Errorf("%w: %d splits, want 1..%d", ErrInvalidCascades, len(p.Splits), light.MaxCascades))
	}
	prev := float32(0)
	for i, s := range p.Splits {
		if !(s > prev) || s > 1 {
			errs = append(errs, fmt.Errorf("%w: split[%d]=%g", ErrInvalidCascades, i, s))
		}
		prev = s
	}
	if !(p.MaxDistance > 0) {
		errs = append(errs, fmt.Errorf("%w: max distance %g", ErrInvalidCascades, p.MaxDistance))
	}
	if p.CasterMargin < 0 {
		errs = append(errs, fmt.Errorf("%w: caster margin %g", ErrInvalidCascades, p.CasterMargin))
	}
	if p.Resolution <= 0 {
		errs = append(errs, fmt.Errorf("%w: resolution %d", ErrInvalidCascades, p.Resolution))
	}
	if p.ConstantBias < 0 || p.SlopeBias < 0 {
		errs = append(errs, fmt.Errorf("%w: negative bias", ErrInvalidCascades))
	}
	return errors.Join(errs...)
}

// CascadeResolution returns the map size of cascade k.
func CascadeResolution(base, k int) int {
	return max(base>>(k/2), 1)
}

// SplitDistances converts normalized split fractions into view-depth thresholds.
//
// Parameters:
//   - near, far: camera clip planes
//   - maxDistance: upper bound on the shadowed range
//   - splits: strictly increasing fractions in (0, 1]
//
// Returns:
//   - []float32: near + (min(far, maxDistance) - near) * split for each split
func SplitDistances(near, far, maxDistance float32, splits []float32) []float32 {
	span := math32.Min(far, maxDistance) - near
	out := make([]float32, len(splits))
	for i, s := range splits {
		out[i] = near + span*s
	}
	return out
}

// FitCascades builds one cascade per threshold for the given light. A
// directional light gets a texel-snapped orthographic projection enclosing
// the bounding sphere of each camera frustum slice; a spot light reuses its
// perspective cone for every cascade; point lights and lights that do not
// cast shadows yield an empty set.
//
// Parameters:
//   - cam: the frame's camera
//   - l: the primary light
//   - thresholds: far edges of each cascade, strictly increasing
//   - p: fit parameters (Splits and MaxDistance are ignored)
//
// Returns:
//   - CascadeSet: the fitted cascades
//   - error: ErrInvalidCascades for bad thresholds
func FitCascades(cam camera.State, l light.State, thresholds []float32, p FitParams) (CascadeSet, error) {
	if !l.CastsShadows || l.Type == light.LightTypePoint {
		return CascadeSet{}, nil
	}
	cascades := make([]Cascade, len(thresholds))
	prev := cam.Near
	for k, t := range thresholds {
		res := CascadeResolution(p.Resolution, k)
		cascades[k] = Cascade{Threshold: t, Resolution: res}
		switch l.Type {
		case light.LightTypeSpot:
			cascades[k].ViewProj = light.SpotViewProjection(l)
		case light.LightTypeDirectional:
			far := math32.Min(t, cam.Far)
			near := math32.Min(prev, far)
			corners := cam.SliceCorners(near, far)
			cascades[k].ViewProj = fitDirectional(l.Direction.Normalize(), corners[:], p.CasterMargin, res)
		}
		prev = t
	}
	return NewCascadeSet(cascades, p.ConstantBias, p.SlopeBias)
}

// fitDirectional encloses points in an orthographic light frustum whose
// origin is snapped to whole shadow map texels.
func fitDirectional(dir common.Vec3, points []common.Vec3, margin float32, res int) [16]float32 {
	center, radius := common.BoundingSphere(points)
	radius = math32.Max(math32.Ceil(radius*16)/16, 1e-3)

	view := light.LightView(dir, center, radius+margin)
	var proj, vp [16]float32
	common.Ortho(proj[:], -radius, radius, -radius, radius, 0, 2*radius+margin)
	common.Mul4(vp[:], proj[:], view[:])

	half := float32(res) / 2
	origin := common.TransformPoint(vp[:], common.Vec3{})
	ox, oy := origin[0]*half, origin[1]*half
	proj[12] += (math32.Round(ox) - ox) / half
	proj[13] += (math32.Round(oy) - oy) / half
	common.Mul4(vp[:], proj[:], view[:])
	return vp
}
