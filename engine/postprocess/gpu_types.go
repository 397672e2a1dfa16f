package postprocess

import (
	_ "embed"
	"encoding/binary"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/chewxy/math32"
)

// GPUBloomUniformsSource is the canonical WGSL definition of the BloomUniforms struct.
//
//go:embed assets/bloom_uniforms.wgsl
var GPUBloomUniformsSource string

// GPUBloomUniforms is the parameter block of the bloom stage.
// Size: 16 bytes.
type GPUBloomUniforms struct {
	Threshold  float32 // offset  0
	Intensity  float32 // offset  4
	Radius     float32 // offset  8
	Iterations uint32  // offset 12
}

// Uniform packs the bloom settings.
func (b BloomConfig) Uniform() GPUBloomUniforms {
	return GPUBloomUniforms{
		Threshold:  b.Threshold,
		Intensity:  b.Intensity,
		Radius:     b.Radius,
		Iterations: uint32(max(b.Iterations, 0)),
	}
}

// Size returns the size of the GPUBloomUniforms struct in bytes.
func (g *GPUBloomUniforms) Size() int {
	return 16
}

// Marshal serializes the GPUBloomUniforms struct into a byte buffer suitable for GPU upload.
func (g *GPUBloomUniforms) Marshal() []byte {
	buf := make([]byte, 16)
	putF32(buf[0:], g.Threshold)
	putF32(buf[4:], g.Intensity)
	putF32(buf[8:], g.Radius)
	binary.LittleEndian.PutUint32(buf[12:], g.Iterations)
	return buf
}

// GPUToneMapUniformsSource is the canonical WGSL definition of the ToneMapUniforms struct.
//
//go:embed assets/tonemap_uniforms.wgsl
var GPUToneMapUniformsSource string

// GPUToneMapUniforms is the parameter block of the tone mapping stage. Only
// the selected operator's white point is uploaded.
// Size: 16 bytes.
type GPUToneMapUniforms struct {
	Operator   ToneMapper // offset  0
	Exposure   float32    // offset  4
	WhitePoint float32    // offset  8
	_          float32    // offset 12
}

// Uniform packs the tone mapping settings.
func (t ToneMapConfig) Uniform() GPUToneMapUniforms {
	u := GPUToneMapUniforms{Operator: t.Operator, Exposure: t.Exposure}
	switch t.Operator {
	case ToneMapperReinhard:
		u.WhitePoint = t.WhitePoint
	case ToneMapperFilmic:
		u.WhitePoint = t.FilmicWhitePoint
	case ToneMapperUncharted2:
		u.WhitePoint = t.Uncharted2WhitePoint
	case ToneMapperACES:
		u.WhitePoint = 1
	}
	return u
}

// Size returns the size of the GPUToneMapUniforms struct in bytes.
func (g *GPUToneMapUniforms) Size() int {
	return 16
}

// Marshal serializes the GPUToneMapUniforms struct into a byte buffer suitable for GPU upload.
func (g *GPUToneMapUniforms) Marshal() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:], uint32(g.Operator))
	putF32(buf[4:], g.Exposure)
	putF32(buf[8:], g.WhitePoint)
	return buf
}

// GPUGradingUniformsSource is the canonical WGSL definition of the GradingUniforms struct.
//
//go:embed assets/grading_uniforms.wgsl
var GPUGradingUniformsSource string

// GPUGradingUniforms is the parameter block of the color grading stage.
// Size: 128 bytes.
//
// Layout:
//
//	f32 brightness, contrast, saturation, hue_shift (16 bytes, offset 0)
//	vec3<f32> shadows    + pad (16 bytes, offset 16)
//	vec3<f32> midtones   + pad (16 bytes, offset 32)
//	vec3<f32> highlights + pad (16 bytes, offset 48)
//	vec3<f32> lift       + pad (16 bytes, offset 64)
//	vec3<f32> gamma      + pad (16 bytes, offset 80)
//	vec3<f32> gain       + pad (16 bytes, offset 96)
//	u32 lut_size, pad x3       (16 bytes, offset 112)
type GPUGradingUniforms struct {
	Brightness float32
	Contrast   float32
	Saturation float32
	HueShift   float32
	Shadows    common.Vec3
	Midtones   common.Vec3
	Highlights common.Vec3
	Lift       common.Vec3
	Gamma      common.Vec3
	Gain       common.Vec3
	LUTSize    uint32
}

// Uniform packs the grading settings.
func (g GradingConfig) Uniform() GPUGradingUniforms {
	u := GPUGradingUniforms{
		Brightness: g.Brightness,
		Contrast:   g.Contrast,
		Saturation: g.Saturation,
		HueShift:   g.HueShift,
		Shadows:    g.Shadows,
		Midtones:   g.Midtones,
		Highlights: g.Highlights,
		Lift:       g.Lift,
		Gamma:      g.Gamma,
		Gain:       g.Gain,
	}
	if g.LUT != nil {
		u.LUTSize = uint32(g.LUT.Size)
	}
	return u
}

// Size returns the size of the GPUGradingUniforms struct in bytes.
func (g *GPUGradingUniforms) Size() int {
	return 128
}

// Marshal serializes the GPUGradingUniforms struct into a byte buffer suitable for GPU upload.
func (g *GPUGradingUniforms) Marshal() []byte {
	buf := make([]byte, 128)
	putF32(buf[0:], g.Brightness)
	putF32(buf[4:], g.Contrast)
	putF32(buf[8:], g.Saturation)
	putF32(buf[12:], g.HueShift)
	for i, v := range []common.Vec3{g.Shadows, g.Midtones, g.Highlights, g.Lift, g.Gamma, g.Gain} {
		off := 16 + i*16
		putF32(buf[off:], v[0])
		putF32(buf[off+4:], v[1])
		putF32(buf[off+8:], v[2])
	}
	binary.LittleEndian.PutUint32(buf[112:], g.LUTSize)
	return buf
}

// GPUFXAAUniformsSource is the canonical WGSL definition of the FXAAUniforms struct.
//
//go:embed assets/fxaa_uniforms.wgsl
var GPUFXAAUniformsSource string

// GPUFXAAUniforms is the parameter block of the FXAA stage.
// Size: 32 bytes.
type GPUFXAAUniforms struct {
	TexelSize        [2]float32  // offset  0
	EdgeThreshold    float32     // offset  8
	EdgeThresholdMin float32     // offset 12
	Subpix           float32     // offset 16
	BlendLimit       float32     // offset 20
	Quality          FXAAQuality // offset 24
	_                uint32      // offset 28
}

// Size returns the size of the GPUFXAAUniforms struct in bytes.
func (g *GPUFXAAUniforms) Size() int {
	return 32
}

// Marshal serializes the GPUFXAAUniforms struct into a byte buffer suitable for GPU upload.
func (g *GPUFXAAUniforms) Marshal() []byte {
	buf := make([]byte, 32)
	putF32(buf[0:], g.TexelSize[0])
	putF32(buf[4:], g.TexelSize[1])
	putF32(buf[8:], g.EdgeThreshold)
	putF32(buf[12:], g.EdgeThresholdMin)
	putF32(buf[16:], g.Subpix)
	putF32(buf[20:], g.BlendLimit)
	binary.LittleEndian.PutUint32(buf[24:], uint32(g.Quality))
	return buf
}

// GPUEffectsUniformsSource is the canonical WGSL definition of the EffectsUniforms struct.
//
//go:embed assets/effects_uniforms.wgsl
var GPUEffectsUniformsSource string

// Effect flag bits of GPUEffectsUniforms.Flags.
const (
	EffectVignette uint32 = 1 << iota
	EffectChromaticAberration
	EffectFilmGrain
)

// GPUEffectsUniforms is the shared parameter block of the vignette,
// chromatic aberration and film grain stages.
// Size: 48 bytes.
type GPUEffectsUniforms struct {
	VignetteIntensity   float32     // offset  0
	VignetteSmoothness  float32     // offset  4
	VignetteRoundness   float32     // offset  8
	Aspect              float32     // offset 12
	VignetteColor       common.Vec3 // offset 16
	AberrationIntensity float32     // offset 28
	GrainIntensity      float32     // offset 32
	GrainResponse       float32     // offset 36
	Frame               uint32      // offset 40
	Flags               uint32      // offset 44
}

// EffectsUniform packs the misc effect settings for a width x height image.
//
// Parameters:
//   - width, height: size of the image the effects run on
//   - frame: frame counter seeding the grain noise
//
// Returns:
//   - GPUEffectsUniforms: the packed block
func (c Config) EffectsUniform(width, height int, frame uint64) GPUEffectsUniforms {
	u := GPUEffectsUniforms{
		VignetteIntensity:   c.Vignette.Intensity,
		VignetteSmoothness:  c.Vignette.Smoothness,
		VignetteRoundness:   c.Vignette.Roundness,
		Aspect:              1,
		VignetteColor:       c.Vignette.Color,
		AberrationIntensity: c.ChromaticAberration.Intensity,
		GrainIntensity:      c.FilmGrain.Intensity,
		GrainResponse:       c.FilmGrain.Response,
		Frame:               uint32(frame),
	}
	if height > 0 {
		u.Aspect = float32(width) / float32(height)
	}
	if c.Vignette.Enabled {
		u.Flags |= EffectVignette
	}
	if c.ChromaticAberration.Enabled {
		u.Flags |= EffectChromaticAberration
	}
	if c.FilmGrain.Enabled {
		u.Flags |= EffectFilmGrain
	}
	return u
}

// Size returns the size of the GPUEffectsUniforms struct in bytes.
func (g *GPUEffectsUniforms) Size() int {
	return 48
}

// Marshal serializes the GPUEffectsUniforms struct into a byte buffer suitable for GPU upload.
func (g *GPUEffectsUniforms) Marshal() []byte {
	buf := make([]byte, 48)
	putF32(buf[0:], g.VignetteIntensity)
	putF32(buf[4:], g.VignetteSmoothness)
	putF32(buf[8:], g.VignetteRoundness)
	putF32(buf[12:], g.Aspect)
	putF32(buf[16:], g.VignetteColor[0])
	putF32(buf[20:], g.VignetteColor[1])
	putF32(buf[24:], g.VignetteColor[2])
	putF32(buf[28:], g.AberrationIntensity)
	putF32(buf[32:], g.GrainIntensity)
	putF32(buf[36:], g.GrainResponse)
	binary.LittleEndian.PutUint32(buf[40:], g.Frame)
	binary.LittleEndian.PutUint32(buf[44:], g.Flags)
	return buf
}

func putF32(dst []byte, v float32) {
	binary.LittleEndian.PutUint32(dst, math32.Float32bits(v))
}
