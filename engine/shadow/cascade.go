// Package shadow renders cascaded shadow maps for the primary light and
// answers per-fragment visibility queries against them.
package shadow

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/chewxy/math32"
)

// ErrInvalidCascades is returned when a cascade set violates its ordering or size rules.
var ErrInvalidCascades = errors.New("shadow: invalid cascade set")

// BlendStart is the fraction of a cascade's threshold past which visibility
// is blended with the next cascade.
const BlendStart float32 = 0.9

// Cascade is one shadow map's light-space transform and coverage.
type Cascade struct {
	// ViewProj maps world space into the cascade's light clip space.
	ViewProj [16]float32
	// Threshold is the far view-depth edge of the cascade.
	Threshold float32
	// Resolution is the width and height of the cascade's depth map.
	Resolution int
}

// CascadeSet is the ordered list of cascades for one frame. Cascade i covers
// view depths (Threshold[i-1], Threshold[i]].
type CascadeSet struct {
	Cascades     []Cascade
	ConstantBias float32
	SlopeBias    float32
}

// NewCascadeSet validates and wraps cascades.
//
// Parameters:
//   - cascades: between 1 and light.MaxCascades cascades with strictly increasing positive thresholds
//   - constantBias, slopeBias: depth bias terms, both >= 0
//
// Returns:
//   - CascadeSet: the validated set
//   - error: ErrInvalidCascades describing every violation
func NewCascadeSet(cascades []Cascade, constantBias, slopeBias float32) (CascadeSet, error) {
	var errs []error
	if len(cascades) == 0 || len(cascades) > light.MaxCascades {
		errs = append(errs, fmt.Errorf("%w: %d cascades, want 1..%d", ErrInvalidCascades, len(cascades), light.MaxCascades))
	}
	prev := float32(0)
	for i, c := range cascades {
		if !(c.Threshold > prev) || math32.IsInf(c.Threshold, 0) {
			errs = append(errs, fmt.Errorf("%w: threshold[%d]=%g does not exceed %g", ErrInvalidCascades, i, c.Threshold, prev))
		}
		if c.Resolution <= 0 {
			errs = append(errs, fmt.Errorf("%w: cascade %d resolution %d", ErrInvalidCascades, i, c.Resolution))
		}
		prev = c.Threshold
	}
	if constantBias < 0 || slopeBias < 0 {
		errs = append(errs, fmt.Errorf("%w: negative bias", ErrInvalidCascades))
	}
	if err := errors.Join(errs...); err != nil {
		return CascadeSet{}, err
	}
	return CascadeSet{
		Cascades:     append([]Cascade(nil), cascades...),
		ConstantBias: constantBias,
		SlopeBias:    slopeBias,
	}, nil
}

// Len returns the number of cascades. An empty set means no shadows.
func (s CascadeSet) Len() int {
	return len(s.Cascades)
}

// Thresholds returns the far edge of every cascade.
func (s CascadeSet) Thresholds() []float32 {
	out := make([]float32, len(s.Cascades))
	for i, c := range s.Cascades {
		out[i] = c.Threshold
	}
	return out
}

// Select returns the cascade covering view depth d.
func (s CascadeSet) Select(d float32) int {
	return Select(s.Thresholds(), d)
}

// Select returns the smallest k with d <= thresholds[k], or the last index
// when d lies beyond every threshold.
//
// Parameters:
//   - thresholds: strictly increasing far edges
//   - d: fragment view depth
//
// Returns:
//   - int: the cascade index, or -1 for an empty list
func Select(thresholds []float32, d float32) int {
	for k, t := range thresholds {
		if d <= t {
			return k
		}
	}
	return len(thresholds) - 1
}

// BlendFactor returns how much of cascade k+1's visibility to mix into cascade
// k's at view depth d: 0 up to BlendStart of threshold[k], rising linearly to
// 1 at the threshold. The last cascade never blends.
//
// Parameters:
//   - thresholds: strictly increasing far edges
//   - k: the selected cascade
//   - d: fragment view depth
//
// Returns:
//   - float32: blend weight in [0, 1]
func BlendFactor(thresholds []float32, k int, d float32) float32 {
	if k < 0 || k+1 >= len(thresholds) {
		return 0
	}
	t := thresholds[k]
	start := BlendStart * t
	if t-start <= 0 {
		return 0
	}
	return common.Saturate((d - start) / (t - start))
}
