package postprocess

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/dispatch"
	"github.com/Carmen-Shannon/oxy-render/engine/target"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChain(t *testing.T, pool *target.Pool) Chain {
	t.Helper()
	d := dispatch.NewDispatcher(dispatch.WithWorkers(2))
	t.Cleanup(d.Close)
	if pool == nil {
		pool = target.NewPool(0)
	}
	return NewChain(pool, d)
}

func disabledConfig() Config {
	cfg := DefaultConfig()
	cfg.Bloom.Enabled = false
	cfg.ToneMap.Enabled = false
	cfg.FXAA.Enabled = false
	return cfg
}

// gradientImage fills a w x h target with a smooth color ramp.
func gradientImage(t *testing.T, w, h int, format wgpu.TextureFormat, scale float32) *target.Target {
	t.Helper()
	img, err := target.New("input", w, h, format)
	require.NoError(t, err)
	wr := img.Writer()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			fx := float32(x) / float32(w)
			fy := float32(y) / float32(h)
			wr.Store(x, y, common.Vec4{fx * scale, fy * scale, (1 - fx) * scale, 1})
		}
	}
	return img
}

func assertSameImage(t *testing.T, want, got target.Reader) {
	t.Helper()
	require.Equal(t, want.Width(), got.Width())
	require.Equal(t, want.Height(), got.Height())
	for y := 0; y < want.Height(); y++ {
		for x := 0; x < want.Width(); x++ {
			require.Equal(t, want.Load(x, y), got.Load(x, y), "texel %d,%d", x, y)
		}
	}
}

func TestToneMapCurves(t *testing.T) {
	assert.Equal(t, float32(0), Reinhard(0, 11.2))
	assert.Equal(t, float32(0), ACES(0))
	assert.InDelta(t, 1.0, Reinhard(11.2, 11.2), 1e-5)
	assert.InDelta(t, 2.51/2.43, ACES(1e4), 1e-3)

	for _, op := range []ToneMapper{ToneMapperReinhard, ToneMapperACES, ToneMapperFilmic, ToneMapperUncharted2} {
		cfg := DefaultConfig().ToneMap
		cfg.Operator = op
		u := cfg.Uniform()
		assert.InDelta(t, 0, ToneMap(0, u), 1e-6, op.String())
		assert.Equal(t, float32(1), ToneMap(1e4, u), op.String())
		assert.InDelta(t, 0, ToneMap(-3, u), 1e-6, op.String())
		assert.Less(t, ToneMap(0.2, u), ToneMap(0.4, u), op.String())
	}
}

func TestToneMapUniformWhitePoint(t *testing.T) {
	cfg := ToneMapConfig{Exposure: 2, WhitePoint: 4, FilmicWhitePoint: 6, Uncharted2WhitePoint: 8}
	for op, want := range map[ToneMapper]float32{
		ToneMapperReinhard:   4,
		ToneMapperACES:       1,
		ToneMapperFilmic:     6,
		ToneMapperUncharted2: 8,
	} {
		cfg.Operator = op
		u := cfg.Uniform()
		assert.Equal(t, want, u.WhitePoint, op.String())
		assert.Equal(t, float32(2), u.Exposure)
	}
}

func TestSRGBTransfer(t *testing.T) {
	assert.Equal(t, float32(0), LinearToSRGB(0))
	assert.InDelta(t, 1.0, LinearToSRGB(1), 1e-6)
	assert.InDelta(t, 0.001*12.92, LinearToSRGB(0.001), 1e-7)
	for _, v := range []float32{0.001, 0.01, 0.18, 0.5, 0.9} {
		assert.InDelta(t, v, SRGBToLinear(LinearToSRGB(v)), 1e-5)
	}
}

func TestHSVRoundTrip(t *testing.T) {
	colors := []common.Vec3{
		{1, 0, 0},
		{0.2, 0.7, 0.4},
		{0.9, 0.1, 0.8},
		{0.05, 0.05, 0.6},
		{0.75, 0.5, 0.25},
	}
	for _, c := range colors {
		got := HSVToRGB(RGBToHSV(c))
		for i := 0; i < 3; i++ {
			assert.InDelta(t, c[i], got[i], 1e-5, "%v", c)
		}
	}
	hsv := RGBToHSV(common.Vec3{0, 1, 0})
	assert.InDelta(t, 120, hsv[0], 1e-4)
	assert.InDelta(t, 1, hsv[1], 1e-6)
	assert.InDelta(t, 1, hsv[2], 1e-6)
}

func TestBandWeights(t *testing.T) {
	for _, l := range []float32{0, 0.1, 0.3, 0.5, 0.7, 0.85, 1} {
		s, m, h := BandWeights(l)
		assert.InDelta(t, 1, s+m+h, 1e-6, "lum %v", l)
		assert.GreaterOrEqual(t, m, float32(0))
	}
	s, _, h := BandWeights(0)
	assert.Equal(t, float32(1), s)
	assert.Equal(t, float32(0), h)
	s, _, h = BandWeights(1)
	assert.Equal(t, float32(0), s)
	assert.Equal(t, float32(1), h)
}

func TestNeutralGrading(t *testing.T) {
	u := NeutralGrading().Uniform()
	for _, c := range []common.Vec3{{0, 0, 0}, {0.1, 0.5, 0.9}, {1, 1, 1}, {0.3, 0.3, 0.2}} {
		got := Grade(c, &u, nil)
		for i := 0; i < 3; i++ {
			assert.InDelta(t, c[i], got[i], 1e-6)
		}
	}
}

func TestGradeOperations(t *testing.T) {
	base := NeutralGrading()

	g := base
	g.Brightness = 0.1
	u := g.Uniform()
	assert.InDelta(t, 0.6, Grade(common.Vec3{0.5, 0.5, 0.5}, &u, nil)[0], 1e-6)

	g = base
	g.Contrast = 2
	u = g.Uniform()
	assert.InDelta(t, 0.9, Grade(common.Vec3{0.7, 0.7, 0.7}, &u, nil)[0], 1e-6)

	g = base
	g.Saturation = 0
	u = g.Uniform()
	got := Grade(common.Vec3{1, 0, 0}, &u, nil)
	assert.InDelta(t, got[0], got[1], 1e-6)
	assert.InDelta(t, got[1], got[2], 1e-6)

	g = base
	g.HueShift = 120
	u = g.Uniform()
	got = Grade(common.Vec3{1, 0, 0}, &u, nil)
	assert.InDelta(t, 0, got[0], 1e-5)
	assert.InDelta(t, 1, got[1], 1e-5)

	g = base
	g.Gain = common.Vec3{2, 1, 1}
	g.Gamma = common.Vec3{1, 2, 1}
	u = g.Uniform()
	got = Grade(common.Vec3{0.25, 0.25, 0.25}, &u, nil)
	assert.InDelta(t, 0.5, got[0], 1e-6)
	assert.InDelta(t, 0.5, got[1], 1e-6)
	assert.InDelta(t, 0.25, got[2], 1e-6)
}

func TestIdentityLUT(t *testing.T) {
	l := NewIdentityLUT(17)
	require.NoError(t, l.Validate())
	for _, c := range []common.Vec3{{0, 0, 0}, {1, 1, 1}, {0.33, 0.66, 0.12}, {0.5, 0.01, 0.99}} {
		got := l.Sample(c)
		for i := 0; i < 3; i++ {
			assert.InDelta(t, c[i], got[i], 1e-5)
		}
	}
}

const identityCube = `# identity
TITLE "identity"
LUT_3D_SIZE 2

0 0 0
1 0 0
0 1 0
1 1 0
0 0 1
1 0 1
0 1 1
1 1 1
`

func TestParseCubeLUT(t *testing.T) {
	l, err := ParseCubeLUT(strings.NewReader(identityCube))
	require.NoError(t, err)
	assert.Equal(t, 2, l.Size)
	assert.Equal(t, NewIdentityLUT(2).Data, l.Data)

	scaled := strings.Replace(identityCube, "LUT_3D_SIZE 2", "LUT_3D_SIZE 2\nDOMAIN_MIN 0 0 0\nDOMAIN_MAX 2 2 2", 1)
	l, err = ParseCubeLUT(strings.NewReader(scaled))
	require.NoError(t, err)
	assert.Equal(t, common.Vec3{0.5, 0.5, 0.5}, l.Data[7])
}

func TestParseCubeLUTErrors(t *testing.T) {
	for name, src := range map[string]string{
		"1d":        "LUT_1D_SIZE 4\n0 0 0\n",
		"no size":   "0 0 0\n",
		"short":     "LUT_3D_SIZE 2\n0 0 0\n1 1 1\n",
		"bad value": "LUT_3D_SIZE 2\n0 0 x\n",
		"bad size":  "LUT_3D_SIZE 1\n",
	} {
		_, err := ParseCubeLUT(strings.NewReader(src))
		assert.ErrorIs(t, err, ErrInvalidLUT, name)
	}
}

func TestLoadLUT(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.CUBE")
	require.NoError(t, os.WriteFile(path, []byte(identityCube), 0o644))
	l, err := LoadLUT(path)
	require.NoError(t, err)
	assert.Equal(t, 2, l.Size)

	_, err = LoadLUT(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestLUTFromStrip(t *testing.T) {
	const n = 4
	img := image.NewRGBA(image.Rect(0, 0, n*n, n))
	for b := 0; b < n; b++ {
		for g := 0; g < n; g++ {
			for r := 0; r < n; r++ {
				img.Set(b*n+r, g, color.RGBA{uint8(r * 85), uint8(g * 85), uint8(b * 85), 255})
			}
		}
	}
	l, err := LUTFromStrip(img)
	require.NoError(t, err)
	got := l.Sample(common.Vec3{0.2, 0.4, 0.9})
	assert.InDelta(t, 0.2, got[0], 1e-3)
	assert.InDelta(t, 0.4, got[1], 1e-3)
	assert.InDelta(t, 0.9, got[2], 1e-3)

	_, err = LUTFromStrip(image.NewRGBA(image.Rect(0, 0, 10, 4)))
	assert.ErrorIs(t, err, ErrInvalidLUT)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Grading.Gamma = common.Vec3{1, 0, 1}
	cfg.Bloom.Threshold = 0
	cfg.ToneMap.Exposure = -1
	cfg.FXAA.Quality = FXAAQuality(9)
	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	for _, field := range []string{"grading.gamma[1]", "bloom.threshold", "tonemap.exposure", "fxaa.quality"} {
		assert.Contains(t, err.Error(), field)
	}

	cfg = DefaultConfig()
	cfg.Grading.LUT = &LUT{Size: 3}
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidLUT)
}

func TestParseEnums(t *testing.T) {
	op, err := ParseToneMapper("Uncharted2")
	require.NoError(t, err)
	assert.Equal(t, ToneMapperUncharted2, op)
	_, err = ParseToneMapper("hdr10")
	assert.ErrorIs(t, err, ErrInvalidConfig)

	q, err := ParseFXAAQuality("ULTRA")
	require.NoError(t, err)
	assert.Equal(t, FXAAQualityUltra, q)
	_, err = ParseFXAAQuality("extreme")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestFXAAUniform(t *testing.T) {
	u := FXAAConfig{Quality: FXAAQualityLow}.Uniform(200, 100)
	assert.Equal(t, [2]float32{0.005, 0.01}, u.TexelSize)
	assert.Equal(t, float32(0.25), u.EdgeThreshold)
	assert.Equal(t, float32(0.0833), u.EdgeThresholdMin)

	u = FXAAConfig{Quality: FXAAQualityUltra}.Uniform(1, 1)
	assert.Equal(t, float32(0.063), u.EdgeThreshold)
	assert.Equal(t, float32(1), u.Subpix)
	assert.Equal(t, float32(0.875), u.BlendLimit)

	for q, n := range map[FXAAQuality]int{FXAAQualityLow: 4, FXAAQualityMedium: 8, FXAAQualityHigh: 12, FXAAQualityUltra: 16} {
		assert.Len(t, fxaaPresets[q].steps, n, q.String())
	}
}

func TestUniformLayout(t *testing.T) {
	bloom := DefaultConfig().Bloom.Uniform()
	assert.Len(t, bloom.Marshal(), bloom.Size())
	assert.Equal(t, 16, bloom.Size())

	tm := DefaultConfig().ToneMap.Uniform()
	assert.Len(t, tm.Marshal(), 16)

	g := NeutralGrading()
	g.LUT = NewIdentityLUT(8)
	gu := g.Uniform()
	buf := gu.Marshal()
	require.Len(t, buf, gu.Size())
	assert.Equal(t, byte(8), buf[112])

	fx := FXAAConfig{Quality: FXAAQualityUltra}.Uniform(4, 4)
	buf = fx.Marshal()
	require.Len(t, buf, 32)
	assert.Equal(t, byte(FXAAQualityUltra), buf[24])

	cfg := DefaultConfig()
	cfg.FilmGrain.Enabled = true
	eu := cfg.EffectsUniform(200, 100, 7)
	assert.Equal(t, float32(2), eu.Aspect)
	buf = eu.Marshal()
	require.Len(t, buf, eu.Size())
	assert.Equal(t, byte(7), buf[40])
	assert.Equal(t, byte(EffectFilmGrain), buf[44])

	for _, src := range []string{GPUBloomUniformsSource, GPUToneMapUniformsSource, GPUGradingUniformsSource, GPUFXAAUniformsSource, GPUEffectsUniformsSource} {
		assert.Contains(t, src, "struct")
	}
}

func TestVignette(t *testing.T) {
	p := GPUEffectsUniforms{VignetteIntensity: 1, VignetteSmoothness: 0.5, VignetteRoundness: 1, Aspect: 1}
	assert.Equal(t, common.Vec3{1, 1, 1}, Vignette(0.5, 0.5, &p))
	corner := Vignette(0, 0, &p)
	assert.InDelta(t, 0, corner[0], 1e-6)

	p.VignetteIntensity = 0
	assert.Equal(t, common.Vec3{1, 1, 1}, Vignette(0, 0, &p))
}

func TestGrain(t *testing.T) {
	differs := false
	for i := 0; i < 16; i++ {
		n := GrainNoise(i, 2*i, 3)
		assert.GreaterOrEqual(t, n, float32(0))
		assert.Less(t, n, float32(1))
		assert.Equal(t, n, GrainNoise(i, 2*i, 3))
		if n != GrainNoise(i, 2*i, 4) {
			differs = true
		}
	}
	assert.True(t, differs)

	c := common.Vec3{0.4, 0.5, 0.6}
	p := GPUEffectsUniforms{GrainIntensity: 0, GrainResponse: 0.8}
	assert.Equal(t, c, Grain(c, 3, 4, &p))

	p = GPUEffectsUniforms{GrainIntensity: 1, GrainResponse: 1}
	got := Grain(common.Vec3{1, 1, 1}, 3, 4, &p)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, 1, got[i], 1e-3)
	}
}

func TestChainDisabledIsIdentity(t *testing.T) {
	in := gradientImage(t, 16, 12, target.FormatHDR, 2)
	res, err := newChain(t, nil).Run(in.Reader(), disabledConfig(), 16, 12, 0)
	require.NoError(t, err)
	assert.Same(t, in, res.Output.Target())
	assert.Empty(t, res.Warnings)
	assert.Empty(t, res.Timings)
}

func TestChainStagesDisabledIndividually(t *testing.T) {
	in := gradientImage(t, 16, 12, target.FormatLDR, 1)
	enable := map[string]func(*Config){
		StageGrading: func(c *Config) { c.Grading.Enabled = true; c.Grading.Contrast = 1.5 },
		StageFXAA:    func(c *Config) { c.FXAA.Enabled = true },
		StageEffects: func(c *Config) { c.Vignette.Enabled = true },
	}
	for stage, on := range enable {
		cfg := disabledConfig()
		on(&cfg)
		res, err := newChain(t, nil).Run(in.Reader(), cfg, 16, 12, 0)
		require.NoError(t, err, stage)
		require.Len(t, res.Timings, 1, stage)
		assert.Equal(t, stage, res.Timings[0].Stage)
		assert.NotSame(t, in, res.Output.Target(), stage)

		res, err = newChain(t, nil).Run(in.Reader(), disabledConfig(), 16, 12, 0)
		require.NoError(t, err)
		assertSameImage(t, in.Reader(), res.Output)
	}
}

func TestBloomBelowThresholdContributesNothing(t *testing.T) {
	in := gradientImage(t, 32, 32, target.FormatHDR, 0.8)
	cfg := disabledConfig()
	cfg.Bloom.Enabled = true
	cfg.Bloom.Threshold = 1
	res, err := newChain(t, nil).Run(in.Reader(), cfg, 32, 32, 0)
	require.NoError(t, err)
	require.Len(t, res.Timings, 1)
	assert.Equal(t, StageBloom, res.Timings[0].Stage)
	assertSameImage(t, in.Reader(), res.Output)
}

func TestBloomSpreadsBrightTexels(t *testing.T) {
	in, err := target.New("input", 32, 32, target.FormatHDR)
	require.NoError(t, err)
	in.Writer().Clear(common.Vec4{0, 0, 0, 1})
	in.Writer().Store(16, 16, common.Vec4{50, 50, 50, 1})

	cfg := disabledConfig()
	cfg.Bloom.Enabled = true
	res, err := newChain(t, nil).Run(in.Reader(), cfg, 32, 32, 0)
	require.NoError(t, err)
	assert.Greater(t, res.Output.Load(18, 16)[0], res.Output.Load(0, 0)[0])
}

func TestChainToneMapOutputsLDR(t *testing.T) {
	in := gradientImage(t, 8, 8, target.FormatHDR, 20)
	cfg := disabledConfig()
	cfg.ToneMap.Enabled = true
	res, err := newChain(t, nil).Run(in.Reader(), cfg, 8, 8, 0)
	require.NoError(t, err)
	assert.Equal(t, target.FormatLDR, res.Output.Format())
	assert.Equal(t, float32(0), res.Output.Load(0, 0)[0])
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			px := res.Output.Load(x, y)
			for i := 0; i < 3; i++ {
				assert.LessOrEqual(t, px[i], float32(1))
			}
		}
	}
}

func TestFXAALeavesFlatRegionsUntouched(t *testing.T) {
	const w, h = 64, 16
	in, err := target.New("input", w, h, target.FormatLDR)
	require.NoError(t, err)
	wr := in.Writer()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x >= w/2 {
				wr.Store(x, y, common.Vec4{1, 1, 1, 1})
			} else {
				wr.Store(x, y, common.Vec4{0, 0, 0, 1})
			}
		}
	}
	cfg := disabledConfig()
	cfg.FXAA.Enabled = true
	res, err := newChain(t, nil).Run(in.Reader(), cfg, w, h, 0)
	require.NoError(t, err)

	for y := 0; y < h; y++ {
		for _, x := range []int{0, 10, w/2 - 2, w/2 + 1, w - 1} {
			assert.Equal(t, in.Reader().Load(x, y), res.Output.Load(x, y), "texel %d,%d", x, y)
		}
	}
	assert.Greater(t, res.Output.Load(w/2-1, h/2)[0], float32(0))
}

func TestChainResamplesToOutputSize(t *testing.T) {
	in := gradientImage(t, 16, 16, target.FormatLDR, 1)
	res, err := newChain(t, nil).Run(in.Reader(), disabledConfig(), 8, 4, 0)
	require.NoError(t, err)
	assert.Equal(t, 8, res.Output.Width())
	assert.Equal(t, 4, res.Output.Height())
	require.Len(t, res.Timings, 1)
	assert.Equal(t, StageResample, res.Timings[0].Stage)
}

func TestChainStageFailureWarns(t *testing.T) {
	in := gradientImage(t, 8, 8, target.FormatLDR, 1)
	cfg := disabledConfig()
	cfg.Grading.Enabled = true
	cfg.Grading.LUT = &LUT{Size: 3}
	res, err := newChain(t, nil).Run(in.Reader(), cfg, 8, 8, 0)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, StageGrading, res.Warnings[0].Item)
	assert.Same(t, in, res.Output.Target())
}

func TestChainAllocationFailureAborts(t *testing.T) {
	in := gradientImage(t, 16, 16, target.FormatHDR, 1)
	cfg := disabledConfig()
	cfg.Bloom.Enabled = true
	_, err := newChain(t, target.NewPool(32)).Run(in.Reader(), cfg, 16, 16, 0)
	assert.ErrorIs(t, err, target.ErrAllocation)
}

func TestChainRejectsEmptyOutput(t *testing.T) {
	in := gradientImage(t, 4, 4, target.FormatHDR, 1)
	_, err := newChain(t, nil).Run(in.Reader(), DefaultConfig(), 0, 4, 0)
	assert.ErrorIs(t, err, target.ErrInvalidSize)
}
