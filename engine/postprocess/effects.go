package postprocess

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/target"
	"github.com/chewxy/math32"
)

// Vignette returns the multiplier applied to a texel at normalized
// coordinates (u, v). Roundness 1 keeps the falloff circular on screen, 0
// squares it off toward the frame.
func Vignette(u, v float32, p *GPUEffectsUniforms) common.Vec3 {
	dx := math32.Abs(u-0.5) * p.VignetteIntensity * 3
	dy := math32.Abs(v-0.5) * p.VignetteIntensity * 3
	dx *= common.Mix(1, p.Aspect, p.VignetteRoundness)
	pow := 6*(1-p.VignetteRoundness) + p.VignetteRoundness
	dx = math32.Pow(common.Saturate(dx), pow)
	dy = math32.Pow(common.Saturate(dy), pow)
	f := math32.Pow(common.Saturate(1-(dx*dx+dy*dy)), p.VignetteSmoothness*5)
	return p.VignetteColor.Lerp(common.Vec3{1, 1, 1}, f)
}

// GrainNoise hashes a texel and frame into [0, 1).
func GrainNoise(x, y int, frame uint32) float32 {
	h := uint32(x)*0x8da6b343 ^ uint32(y)*0xd8163841 ^ frame*0xcb1ab31f
	h ^= h >> 16
	h *= 0x7feb352d
	h ^= h >> 15
	h *= 0x846ca68b
	h ^= h >> 16
	return float32(h>>8) / float32(1<<24)
}

// Grain adds luminance-weighted noise to c. Response 1 fades the grain out
// entirely on white.
func Grain(c common.Vec3, x, y int, p *GPUEffectsUniforms) common.Vec3 {
	n := (GrainNoise(x, y, p.Frame) - 0.5) * p.GrainIntensity
	lum := common.Saturate(common.Luminance(c))
	w := common.Mix(1, 1-math32.Sqrt(lum), p.GrainResponse)
	d := n * w
	return common.Vec3{c[0] + d, c[1] + d, c[2] + d}
}

// effectsStage applies chromatic aberration, vignette and grain in that order.
func (c *chain) effectsStage(in target.Reader, out target.Writer, p GPUEffectsUniforms) error {
	w, h := out.Width(), out.Height()
	c.dispatcher.Rows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			v := (float32(y) + 0.5) / float32(h)
			for x := 0; x < w; x++ {
				u := (float32(x) + 0.5) / float32(w)
				px := in.Load(x, y)
				col := common.Vec3{px[0], px[1], px[2]}
				if p.Flags&EffectChromaticAberration != 0 {
					du := (u - 0.5) * p.AberrationIntensity
					dv := (v - 0.5) * p.AberrationIntensity
					col[0] = in.Sample(u+du, v+dv)[0]
					col[2] = in.Sample(u-du, v-dv)[2]
				}
				if p.Flags&EffectVignette != 0 {
					col = col.Mul(Vignette(u, v, &p))
				}
				if p.Flags&EffectFilmGrain != 0 {
					col = Grain(col, x, y, &p)
				}
				out.Store(x, y, common.Vec4{col[0], col[1], col[2], px[3]})
			}
		}
	})
	return nil
}
