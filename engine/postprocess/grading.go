package postprocess

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/target"
	"github.com/chewxy/math32"
)

// Luminance band edges of the shadow/midtone/highlight tint.
const (
	ShadowsEdge    float32 = 0.3
	HighlightsEdge float32 = 0.7
)

// RGBToHSV converts RGB to hue in degrees [0, 360), saturation and value.
func RGBToHSV(c common.Vec3) common.Vec3 {
	maxC := math32.Max(c[0], math32.Max(c[1], c[2]))
	minC := math32.Min(c[0], math32.Min(c[1], c[2]))
	delta := maxC - minC

	var h float32
	switch {
	case delta == 0:
		h = 0
	case maxC == c[0]:
		h = 60 * math32.Mod((c[1]-c[2])/delta, 6)
	case maxC == c[1]:
		h = 60 * ((c[2]-c[0])/delta + 2)
	default:
		h = 60 * ((c[0]-c[1])/delta + 4)
	}
	if h < 0 {
		h += 360
	}
	var s float32
	if maxC != 0 {
		s = delta / maxC
	}
	return common.Vec3{h, s, maxC}
}

// HSVToRGB inverts RGBToHSV. Hue wraps modulo 360.
func HSVToRGB(hsv common.Vec3) common.Vec3 {
	h := math32.Mod(hsv[0], 360)
	if h < 0 {
		h += 360
	}
	s, v := hsv[1], hsv[2]
	c := v * s
	hp := h / 60
	x := c * (1 - math32.Abs(math32.Mod(hp, 2)-1))
	var rgb common.Vec3
	switch {
	case hp < 1:
		rgb = common.Vec3{c, x, 0}
	case hp < 2:
		rgb = common.Vec3{x, c, 0}
	case hp < 3:
		rgb = common.Vec3{0, c, x}
	case hp < 4:
		rgb = common.Vec3{0, x, c}
	case hp < 5:
		rgb = common.Vec3{x, 0, c}
	default:
		rgb = common.Vec3{c, 0, x}
	}
	m := v - c
	return common.Vec3{rgb[0] + m, rgb[1] + m, rgb[2] + m}
}

// BandWeights returns the shadow, midtone and highlight weights of a
// luminance; they always sum to 1.
func BandWeights(lum float32) (float32, float32, float32) {
	shadows := 1 - common.Smoothstep(0, ShadowsEdge, lum)
	highlights := common.Smoothstep(HighlightsEdge, 1, lum)
	return shadows, 1 - shadows - highlights, highlights
}

// Grade applies the grading operations in order: brightness, contrast,
// saturation, hue rotation, banded tint, lift/gamma/gain and the optional LUT.
//
// Parameters:
//   - c: input color
//   - u: grading parameters
//   - lut: optional lookup table, nil to skip
//
// Returns:
//   - common.Vec3: graded color
func Grade(c common.Vec3, u *GPUGradingUniforms, lut *LUT) common.Vec3 {
	if u.Brightness != 0 {
		c = c.Add(common.Vec3{u.Brightness, u.Brightness, u.Brightness})
	}
	if u.Contrast != 1 {
		for i := range c {
			c[i] = (c[i]-0.5)*u.Contrast + 0.5
		}
	}
	if u.Saturation != 1 {
		l := common.Luminance(c)
		gray := common.Vec3{l, l, l}
		c = gray.Lerp(c, u.Saturation)
	}
	if math32.Mod(u.HueShift, 360) != 0 {
		hsv := RGBToHSV(c)
		hsv[0] += u.HueShift
		c = HSVToRGB(hsv)
	}

	ws, wm, wh := BandWeights(common.Luminance(c))
	tint := u.Shadows.Scale(ws).Add(u.Midtones.Scale(wm)).Add(u.Highlights.Scale(wh))
	if tint != (common.Vec3{1, 1, 1}) {
		c = c.Mul(tint)
	}

	for i := range c {
		if u.Lift[i] == 0 && u.Gamma[i] == 1 && u.Gain[i] == 1 {
			continue
		}
		v := c[i] + u.Lift[i]
		sign := float32(1)
		if v < 0 {
			sign = -1
		}
		c[i] = sign * math32.Pow(math32.Abs(v), 1/u.Gamma[i]) * u.Gain[i]
	}

	if lut != nil {
		c = lut.Sample(c)
	}
	return c
}

// gradingStage applies Grade to every texel.
func (c *chain) gradingStage(in target.Reader, out target.Writer, u GPUGradingUniforms, lut *LUT) error {
	if lut != nil {
		if err := lut.Validate(); err != nil {
			return err
		}
	}
	c.dispatcher.Rows(out.Height(), func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < out.Width(); x++ {
				px := in.Load(x, y)
				g := Grade(common.Vec3{px[0], px[1], px[2]}, &u, lut)
				out.Store(x, y, common.Vec4{g[0], g[1], g[2], px[3]})
			}
		}
	})
	return nil
}
