package postprocess

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/target"
	"github.com/chewxy/math32"
)

// fxaaPreset holds the tuning of one FXAAQuality.
type fxaaPreset struct {
	edgeThreshold    float32
	edgeThresholdMin float32
	subpix           float32
	blendLimit       float32
	steps            []float32
}

var fxaaPresets = [...]fxaaPreset{
	FXAAQualityLow: {
		edgeThreshold: 0.25, edgeThresholdMin: 0.0833, subpix: 0.5, blendLimit: 0.5,
		steps: []float32{1.5, 2, 4, 12},
	},
	FXAAQualityMedium: {
		edgeThreshold: 0.166, edgeThresholdMin: 0.0833, subpix: 0.75, blendLimit: 0.75,
		steps: []float32{1, 1.5, 2, 2, 2, 2, 4, 8},
	},
	FXAAQualityHigh: {
		edgeThreshold: 0.125, edgeThresholdMin: 0.0625, subpix: 0.75, blendLimit: 0.75,
		steps: []float32{1, 1, 1, 1, 1, 1.5, 2, 2, 2, 2, 4, 8},
	},
	FXAAQualityUltra: {
		edgeThreshold: 0.063, edgeThresholdMin: 0.0312, subpix: 1.0, blendLimit: 0.875,
		steps: []float32{1, 1, 1, 1, 1, 1.5, 2, 2, 2, 2, 2, 2, 2, 4, 8, 8},
	},
}

// Uniform packs the FXAA preset for a width x height target.
func (f FXAAConfig) Uniform(width, height int) GPUFXAAUniforms {
	q := f.Quality
	if q > FXAAQualityUltra {
		q = FXAAQualityHigh
	}
	p := fxaaPresets[q]
	return GPUFXAAUniforms{
		TexelSize:        [2]float32{1 / float32(width), 1 / float32(height)},
		EdgeThreshold:    p.edgeThreshold,
		EdgeThresholdMin: p.edgeThresholdMin,
		Subpix:           p.subpix,
		BlendLimit:       p.blendLimit,
		Quality:          q,
	}
}

func luma(r target.Reader, u, v float32) float32 {
	return common.Luminance(r.SampleRGB(u, v))
}

// FXAA resolves one texel. Texels whose local luminance range is below the
// edge threshold are returned unchanged.
//
// Parameters:
//   - in: source image
//   - x, y: texel coordinates
//   - u: FXAA parameters for the image size
//
// Returns:
//   - common.Vec4: the anti-aliased color
func FXAA(in target.Reader, x, y int, u *GPUFXAAUniforms) common.Vec4 {
	center := in.Load(x, y)
	lumaM := common.Luminance(common.Vec3{center[0], center[1], center[2]})
	lumaN := common.Luminance(in.LoadRGB(x, y-1))
	lumaS := common.Luminance(in.LoadRGB(x, y+1))
	lumaE := common.Luminance(in.LoadRGB(x+1, y))
	lumaW := common.Luminance(in.LoadRGB(x-1, y))

	lumaMax := math32.Max(lumaM, math32.Max(math32.Max(lumaN, lumaS), math32.Max(lumaE, lumaW)))
	lumaMin := math32.Min(lumaM, math32.Min(math32.Min(lumaN, lumaS), math32.Min(lumaE, lumaW)))
	lumaRange := lumaMax - lumaMin
	if lumaRange < math32.Max(u.EdgeThresholdMin, lumaMax*u.EdgeThreshold) {
		return center
	}

	lumaNW := common.Luminance(in.LoadRGB(x-1, y-1))
	lumaNE := common.Luminance(in.LoadRGB(x+1, y-1))
	lumaSW := common.Luminance(in.LoadRGB(x-1, y+1))
	lumaSE := common.Luminance(in.LoadRGB(x+1, y+1))

	// edge orientation
	edgeHorz := math32.Abs(lumaNW+lumaSW-2*lumaW) + 2*math32.Abs(lumaN+lumaS-2*lumaM) + math32.Abs(lumaNE+lumaSE-2*lumaE)
	edgeVert := math32.Abs(lumaNW+lumaNE-2*lumaN) + 2*math32.Abs(lumaW+lumaE-2*lumaM) + math32.Abs(lumaSW+lumaSE-2*lumaS)
	horizontal := edgeHorz >= edgeVert

	luma1, luma2 := lumaW, lumaE
	stepLength := u.TexelSize[0]
	if horizontal {
		luma1, luma2 = lumaN, lumaS
		stepLength = u.TexelSize[1]
	}
	grad1 := luma1 - lumaM
	grad2 := luma2 - lumaM
	steepest1 := math32.Abs(grad1) >= math32.Abs(grad2)
	gradScaled := 0.25 * math32.Max(math32.Abs(grad1), math32.Abs(grad2))

	lumaLocalAvg := 0.5 * (luma2 + lumaM)
	if steepest1 {
		stepLength = -stepLength
		lumaLocalAvg = 0.5 * (luma1 + lumaM)
	}

	uvX := (float32(x) + 0.5) * u.TexelSize[0]
	uvY := (float32(y) + 0.5) * u.TexelSize[1]
	var offX, offY float32
	if horizontal {
		uvY += stepLength * 0.5
		offX = u.TexelSize[0]
	} else {
		uvX += stepLength * 0.5
		offY = u.TexelSize[1]
	}

	// search both directions along the edge for the end of the gradient
	q := u.Quality
	if q > FXAAQualityUltra {
		q = FXAAQualityHigh
	}
	steps := fxaaPresets[q].steps
	u1X, u1Y := uvX-offX*steps[0], uvY-offY*steps[0]
	u2X, u2Y := uvX+offX*steps[0], uvY+offY*steps[0]
	end1 := luma(in, u1X, u1Y) - lumaLocalAvg
	end2 := luma(in, u2X, u2Y) - lumaLocalAvg
	reached1 := math32.Abs(end1) >= gradScaled
	reached2 := math32.Abs(end2) >= gradScaled
	for _, s := range steps[1:] {
		if reached1 && reached2 {
			break
		}
		if !reached1 {
			u1X, u1Y = u1X-offX*s, u1Y-offY*s
			end1 = luma(in, u1X, u1Y) - lumaLocalAvg
			reached1 = math32.Abs(end1) >= gradScaled
		}
		if !reached2 {
			u2X, u2Y = u2X+offX*s, u2Y+offY*s
			end2 = luma(in, u2X, u2Y) - lumaLocalAvg
			reached2 = math32.Abs(end2) >= gradScaled
		}
	}

	var dist1, dist2 float32
	if horizontal {
		dist1, dist2 = uvX-u1X, u2X-uvX
	} else {
		dist1, dist2 = uvY-u1Y, u2Y-uvY
	}
	dir1 := dist1 < dist2
	distFinal := math32.Min(dist1, dist2)
	edgeLength := dist1 + dist2

	var edgeOffset float32
	if edgeLength > 0 {
		centerSmaller := lumaM < lumaLocalAvg
		end := end2
		if dir1 {
			end = end1
		}
		if (end < 0) != centerSmaller {
			edgeOffset = -distFinal/edgeLength + 0.5
		}
	}

	// sub-pixel aliasing
	lumaAvg := (2*(lumaN+lumaS+lumaE+lumaW) + lumaNW + lumaNE + lumaSW + lumaSE) / 12
	sub1 := common.Saturate(math32.Abs(lumaAvg-lumaM) / lumaRange)
	sub2 := (-2*sub1 + 3) * sub1 * sub1
	subOffset := sub2 * sub2 * u.Subpix

	offset := math32.Min(math32.Max(edgeOffset, subOffset), u.BlendLimit)
	fx := (float32(x) + 0.5) * u.TexelSize[0]
	fy := (float32(y) + 0.5) * u.TexelSize[1]
	if horizontal {
		fy += offset * stepLength
	} else {
		fx += offset * stepLength
	}
	out := in.Sample(fx, fy)
	out[3] = center[3]
	return out
}

// fxaaStage anti-aliases every texel.
func (c *chain) fxaaStage(in target.Reader, out target.Writer, u GPUFXAAUniforms) error {
	c.dispatcher.Rows(out.Height(), func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < out.Width(); x++ {
				out.Store(x, y, FXAA(in, x, y, &u))
			}
		}
	})
	return nil
}
