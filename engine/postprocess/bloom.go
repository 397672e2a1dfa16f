package postprocess

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/target"
	"github.com/chewxy/math32"
)

// MaxBloomIterations bounds the bloom mip chain.
const MaxBloomIterations = 8

// tentWeights is the 3x3 tent kernel, row-major, summing to 16.
var tentWeights = [9]float32{1, 2, 1, 2, 4, 2, 1, 2, 1}

// Contribution is the soft-knee bloom weight of a texel with luminance lum.
func Contribution(lum, threshold float32) float32 {
	k := math32.Max(lum-threshold, 0)
	return k / (k + 1)
}

// bloomStage extracts bright texels, blurs them through a mip chain and adds
// the result back onto the input.
func (c *chain) bloomStage(in target.Reader, out target.Writer, u GPUBloomUniforms) error {
	sizes := bloomSizes(in.Width(), in.Height(), int(u.Iterations))
	down := make([]*target.Target, len(sizes))
	up := make([]*target.Target, len(sizes))
	for i, s := range sizes {
		var err error
		if down[i], err = c.pool.Acquire(fmt.Sprintf("bloom.down%d", i), s[0], s[1], target.FormatHDR); err != nil {
			return err
		}
		if i == len(sizes)-1 {
			continue
		}
		if up[i], err = c.pool.Acquire(fmt.Sprintf("bloom.up%d", i), s[0], s[1], target.FormatHDR); err != nil {
			return err
		}
	}

	src := in
	for i := range down {
		if err := c.downsample(src, down[i].Writer(), u.Threshold, i == 0); err != nil {
			return err
		}
		src = down[i].Reader()
	}
	for i := len(up) - 2; i >= 0; i-- {
		if err := c.upsample(src, down[i].Reader(), up[i].Writer(), u.Radius); err != nil {
			return err
		}
		src = up[i].Reader()
	}

	if target.Aliases(src, out) || target.Aliases(in, out) {
		return ErrAliasedTargets
	}
	c.dispatcher.Rows(out.Height(), func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < out.Width(); x++ {
				base := in.Load(x, y)
				glow := tent(src, x, y, out.Width(), out.Height(), u.Radius).Scale(u.Intensity)
				out.Store(x, y, common.Vec4{base[0] + glow[0], base[1] + glow[1], base[2] + glow[2], base[3]})
			}
		}
	})
	return nil
}

// bloomSizes halves the input size per iteration, stopping at 1x1.
func bloomSizes(w, h, iterations int) [][2]int {
	var out [][2]int
	for i := 0; i < iterations; i++ {
		if w == 1 && h == 1 {
			break
		}
		w, h = max(w/2, 1), max(h/2, 1)
		out = append(out, [2]int{w, h})
	}
	if len(out) == 0 {
		out = append(out, [2]int{1, 1})
	}
	return out
}

// downsample box-filters 2x2 source texels into each destination texel,
// optionally applying the soft-knee threshold to every source texel first.
func (c *chain) downsample(src target.Reader, dst target.Writer, threshold float32, prefilter bool) error {
	if target.Aliases(src, dst) {
		return ErrAliasedTargets
	}
	c.dispatcher.Rows(dst.Height(), func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < dst.Width(); x++ {
				var sum common.Vec3
				for dy := 0; dy < 2; dy++ {
					for dx := 0; dx < 2; dx++ {
						s := src.LoadRGB(2*x+dx, 2*y+dy)
						if prefilter {
							s = s.Scale(Contribution(common.Luminance(s), threshold))
						}
						sum = sum.Add(s)
					}
				}
				dst.StoreRGB(x, y, sum.Scale(0.25))
			}
		}
	})
	return nil
}

// upsample tent-filters the smaller src onto dst and adds the matching mip.
func (c *chain) upsample(src, mip target.Reader, dst target.Writer, radius float32) error {
	if target.Aliases(src, dst) || target.Aliases(mip, dst) {
		return ErrAliasedTargets
	}
	c.dispatcher.Rows(dst.Height(), func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < dst.Width(); x++ {
				dst.StoreRGB(x, y, mip.LoadRGB(x, y).Add(tent(src, x, y, dst.Width(), dst.Height(), radius)))
			}
		}
	})
	return nil
}

// tent samples src with the 3x3 tent kernel centered on destination texel
// (x, y) of a w x h target. Taps are radius source texels apart.
func tent(src target.Reader, x, y, w, h int, radius float32) common.Vec3 {
	u := (float32(x) + 0.5) / float32(w)
	v := (float32(y) + 0.5) / float32(h)
	du := radius / float32(src.Width())
	dv := radius / float32(src.Height())
	var sum common.Vec3
	i := 0
	for ty := -1; ty <= 1; ty++ {
		for tx := -1; tx <= 1; tx++ {
			sum = sum.Add(src.SampleRGB(u+float32(tx)*du, v+float32(ty)*dv).Scale(tentWeights[i]))
			i++
		}
	}
	return sum.Scale(1.0 / 16)
}
