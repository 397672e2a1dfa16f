package shadow

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/target"
	"github.com/chewxy/math32"
)

// Bias returns the depth bias for a surface whose normal makes cosine nDotL
// with the light direction.
func Bias(constant, slope, nDotL float32) float32 {
	c := common.Clamp(nDotL, -1, 1)
	return constant + slope*math32.Sqrt(1-c*c)
}

// LightSpace maps a light clip-space position to shadow map coordinates:
// uv in [0, 1] with v growing downward, and depth in [0, 1].
//
// Returns:
//   - common.Vec3: (u, v, depth)
//   - bool: false when w <= 0 or the position lies outside the map
func LightSpace(clip common.Vec4) (common.Vec3, bool) {
	if !(clip[3] > 0) {
		return common.Vec3{}, false
	}
	ndc := clip.PerspectiveDivide()
	p := common.Vec3{ndc[0]*0.5 + 0.5, 1 - (ndc[1]*0.5 + 0.5), ndc[2]}
	for _, c := range p {
		if math32.IsNaN(c) || c < 0 || c > 1 {
			return p, false
		}
	}
	return p, true
}

// PCF filters a 3x3 neighborhood of depth comparisons around a fragment's
// light-space position.
//
// Parameters:
//   - depth: the cascade's shadow map
//   - clip: the fragment position in the cascade's light clip space
//   - bias: depth bias subtracted from the fragment depth
//
// Returns:
//   - float32: visibility in [0, 1], 1 when the fragment lies outside the map
func PCF(depth target.Reader, clip common.Vec4, bias float32) float32 {
	p, ok := LightSpace(clip)
	if !ok || !depth.Valid() {
		return 1
	}
	cx := int(math32.Floor(p[0] * float32(depth.Width())))
	cy := int(math32.Floor(p[1] * float32(depth.Height())))
	ref := p[2] - bias

	var lit float32
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if ref <= depth.Depth(cx+dx, cy+dy) {
				lit++
			}
		}
	}
	return lit / 9
}

// Visibility selects the cascade for a fragment, filters it and blends with
// the next cascade near the boundary.
//
// Parameters:
//   - maps: the frame's shadow maps, one per cascade
//   - viewDepth: fragment distance along the camera axis
//   - world: fragment world position
//   - nDotL: cosine between the surface normal and the direction to the light
//
// Returns:
//   - float32: visibility in [0, 1]
//   - int: the selected cascade, -1 when the set is empty
func (s CascadeSet) Visibility(maps *ShadowMap, viewDepth float32, world common.Vec3, nDotL float32) (float32, int) {
	if s.Len() == 0 || maps == nil {
		return 1, -1
	}
	thresholds := s.Thresholds()
	k := Select(thresholds, viewDepth)
	bias := Bias(s.ConstantBias, s.SlopeBias, nDotL)

	vis := s.sample(maps, k, world, bias)
	if f := BlendFactor(thresholds, k, viewDepth); f > 0 {
		vis = common.Mix(vis, s.sample(maps, k+1, world, bias), f)
	}
	return vis, k
}

func (s CascadeSet) sample(maps *ShadowMap, k int, world common.Vec3, bias float32) float32 {
	clip := common.TransformPoint(s.Cascades[k].ViewProj[:], world)
	return PCF(maps.Cascade(k), clip, bias)
}
