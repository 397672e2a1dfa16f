package postprocess

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/target"
	"github.com/chewxy/math32"
)

// Uncharted2ExposureBias is the input scale of the Uncharted2 operator.
const Uncharted2ExposureBias float32 = 2.0

// Reinhard is the extended Reinhard curve, mapping white to 1.
func Reinhard(x, white float32) float32 {
	return x * (1 + x/(white*white)) / (1 + x)
}

// ACES is Narkowicz's rational fit of the ACES filmic curve.
func ACES(x float32) float32 {
	const (
		a = 2.51
		b = 0.03
		c = 2.43
		d = 0.59
		e = 0.14
	)
	return (x * (a*x + b)) / (x*(c*x+d) + e)
}

// Hable is John Hable's filmic curve from Uncharted 2, before white normalization.
func Hable(x float32) float32 {
	const (
		a = 0.15 // shoulder strength
		b = 0.50 // linear strength
		c = 0.10 // linear angle
		d = 0.20 // toe strength
		e = 0.02 // toe numerator
		f = 0.30 // toe denominator
	)
	return ((x*(a*x+c*b) + d*e) / (x*(a*x+b) + d*f)) - e/f
}

// ToneMap applies exposure and the selected operator to one channel value,
// returning a linear value in [0, 1].
func ToneMap(x float32, u GPUToneMapUniforms) float32 {
	x = math32.Max(x*u.Exposure, 0)
	var y float32
	switch u.Operator {
	case ToneMapperReinhard:
		y = Reinhard(x, u.WhitePoint)
	case ToneMapperACES:
		y = ACES(x)
	case ToneMapperFilmic:
		y = Hable(x) / Hable(u.WhitePoint)
	case ToneMapperUncharted2:
		y = Hable(x*Uncharted2ExposureBias) / Hable(u.WhitePoint)
	}
	if math32.IsNaN(y) {
		return 0
	}
	return common.Saturate(y)
}

// LinearToSRGB applies the piecewise sRGB transfer function.
func LinearToSRGB(x float32) float32 {
	if x <= 0.0031308 {
		return x * 12.92
	}
	return 1.055*math32.Pow(x, 1/2.4) - 0.055
}

// SRGBToLinear inverts LinearToSRGB.
func SRGBToLinear(x float32) float32 {
	if x <= 0.04045 {
		return x / 12.92
	}
	return math32.Pow((x+0.055)/1.055, 2.4)
}

// toneMapStage maps HDR to display-referred LDR.
func (c *chain) toneMapStage(in target.Reader, out target.Writer, u GPUToneMapUniforms) error {
	c.dispatcher.Rows(out.Height(), func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < out.Width(); x++ {
				px := in.Load(x, y)
				for i := 0; i < 3; i++ {
					px[i] = LinearToSRGB(ToneMap(px[i], u))
				}
				out.Store(x, y, px)
			}
		}
	})
	return nil
}
