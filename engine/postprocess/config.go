// Package postprocess implements the full-screen stages that turn the HDR
// shading output into the display image: bloom, tone mapping, color grading,
// FXAA, vignette, chromatic aberration, film grain and the final resample.
package postprocess

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/chewxy/math32"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("postprocess: invalid config")

// ToneMapper selects the tone curve.
type ToneMapper uint32

const (
	ToneMapperReinhard ToneMapper = iota
	ToneMapperACES
	ToneMapperFilmic
	ToneMapperUncharted2
)

func (t ToneMapper) String() string {
	switch t {
	case ToneMapperReinhard:
		return "reinhard"
	case ToneMapperACES:
		return "aces"
	case ToneMapperFilmic:
		return "filmic"
	case ToneMapperUncharted2:
		return "uncharted2"
	}
	return fmt.Sprintf("tonemapper(%d)", uint32(t))
}

// ParseToneMapper maps a case-insensitive name to a ToneMapper.
func ParseToneMapper(s string) (ToneMapper, error) {
	switch strings.ToLower(s) {
	case "reinhard":
		return ToneMapperReinhard, nil
	case "", "aces":
		return ToneMapperACES, nil
	case "filmic":
		return ToneMapperFilmic, nil
	case "uncharted2":
		return ToneMapperUncharted2, nil
	}
	return ToneMapperACES, fmt.Errorf("%w: unknown tone mapper %q", ErrInvalidConfig, s)
}

// FXAAQuality selects edge thresholds and the search schedule.
type FXAAQuality uint32

const (
	FXAAQualityLow FXAAQuality = iota
	FXAAQualityMedium
	FXAAQualityHigh
	FXAAQualityUltra
)

func (q FXAAQuality) String() string {
	switch q {
	case FXAAQualityLow:
		return "low"
	case FXAAQualityMedium:
		return "medium"
	case FXAAQualityHigh:
		return "high"
	case FXAAQualityUltra:
		return "ultra"
	}
	return fmt.Sprintf("fxaa(%d)", uint32(q))
}

// ParseFXAAQuality maps a case-insensitive name to an FXAAQuality.
func ParseFXAAQuality(s string) (FXAAQuality, error) {
	switch strings.ToLower(s) {
	case "low":
		return FXAAQualityLow, nil
	case "medium":
		return FXAAQualityMedium, nil
	case "", "high":
		return FXAAQualityHigh, nil
	case "ultra":
		return FXAAQualityUltra, nil
	}
	return FXAAQualityHigh, fmt.Errorf("%w: unknown fxaa quality %q", ErrInvalidConfig, s)
}

// BloomConfig configures the bloom stage.
type BloomConfig struct {
	Enabled    bool
	Threshold  float32
	Intensity  float32
	Iterations int
	Radius     float32
}

// ToneMapConfig configures the tone mapping stage. Each operator owns its
// white point.
type ToneMapConfig struct {
	Enabled  bool
	Operator ToneMapper
	Exposure float32
	// WhitePoint is the Reinhard white point.
	WhitePoint float32
	// FilmicWhitePoint normalizes the Hable curve.
	FilmicWhitePoint float32
	// Uncharted2WhitePoint normalizes the Hable curve at exposure bias 2.
	Uncharted2WhitePoint float32
}

// GradingConfig configures the color grading stage.
type GradingConfig struct {
	Enabled    bool
	Brightness float32
	Contrast   float32
	Saturation float32
	// HueShift rotates hue, in degrees.
	HueShift   float32
	Shadows    common.Vec3
	Midtones   common.Vec3
	Highlights common.Vec3
	Lift       common.Vec3
	Gamma      common.Vec3
	Gain       common.Vec3
	// LUT is an optional final remap; nil skips it.
	LUT *LUT
}

// FXAAConfig configures the anti-aliasing stage.
type FXAAConfig struct {
	Enabled bool
	Quality FXAAQuality
}

// VignetteConfig darkens the image toward its edges.
type VignetteConfig struct {
	Enabled    bool
	Intensity  float32
	Smoothness float32
	Roundness  float32
	Color      common.Vec3
}

// ChromaticAberrationConfig offsets the red and blue channels radially.
type ChromaticAberrationConfig struct {
	Enabled   bool
	Intensity float32
}

// FilmGrainConfig adds per-frame luminance-weighted noise.
type FilmGrainConfig struct {
	Enabled   bool
	Intensity float32
	Response  float32
}

// Config is the full post-process configuration. It is copied into the
// renderer between frames and read-only while a frame runs.
type Config struct {
	Bloom               BloomConfig
	ToneMap             ToneMapConfig
	Grading             GradingConfig
	FXAA                FXAAConfig
	Vignette            VignetteConfig
	ChromaticAberration ChromaticAberrationConfig
	FilmGrain           FilmGrainConfig
}

// DefaultConfig returns bloom, ACES tone mapping and high quality FXAA
// enabled, with every other stage disabled at neutral settings.
func DefaultConfig() Config {
	return Config{
		Bloom: BloomConfig{
			Enabled:    true,
			Threshold:  1.0,
			Intensity:  0.8,
			Iterations: 5,
			Radius:     1.0,
		},
		ToneMap: ToneMapConfig{
			Enabled:              true,
			Operator:             ToneMapperACES,
			Exposure:             1.0,
			WhitePoint:           11.2,
			FilmicWhitePoint:     11.2,
			Uncharted2WhitePoint: 11.2,
		},
		Grading: NeutralGrading(),
		FXAA: FXAAConfig{
			Enabled: true,
			Quality: FXAAQualityHigh,
		},
		Vignette: VignetteConfig{
			Intensity:  0.5,
			Smoothness: 0.5,
			Roundness:  1.0,
		},
		ChromaticAberration: ChromaticAberrationConfig{
			Intensity: 0.01,
		},
		FilmGrain: FilmGrainConfig{
			Intensity: 0.1,
			Response:  0.8,
		},
	}
}

// NeutralGrading returns disabled grading parameters that leave colors unchanged.
func NeutralGrading() GradingConfig {
	one := common.Vec3{1, 1, 1}
	return GradingConfig{
		Contrast:   1,
		Saturation: 1,
		Shadows:    one,
		Midtones:   one,
		Highlights: one,
		Gamma:      one,
		Gain:       one,
	}
}

// Validate reports every out-of-range field of every stage, enabled or not.
//
// Returns:
//   - error: ErrInvalidConfig joined per field, or nil
func (c Config) Validate() error {
	var errs []error
	bad := func(field string, v any) {
		errs = append(errs, fmt.Errorf("%w: %s = %v", ErrInvalidConfig, field, v))
	}
	positive := func(field string, v float32) {
		if !(v > 0) || math32.IsInf(v, 0) {
			bad(field, v)
		}
	}
	nonNegative := func(field string, v float32) {
		if !(v >= 0) || math32.IsInf(v, 0) {
			bad(field, v)
		}
	}

	positive("bloom.threshold", c.Bloom.Threshold)
	nonNegative("bloom.intensity", c.Bloom.Intensity)
	positive("bloom.radius", c.Bloom.Radius)
	if c.Bloom.Iterations < 1 || c.Bloom.Iterations > MaxBloomIterations {
		bad("bloom.iterations", c.Bloom.Iterations)
	}

	if c.ToneMap.Operator > ToneMapperUncharted2 {
		bad("tonemap.operator", c.ToneMap.Operator)
	}
	positive("tonemap.exposure", c.ToneMap.Exposure)
	positive("tonemap.white_point", c.ToneMap.WhitePoint)
	positive("tonemap.filmic_white_point", c.ToneMap.FilmicWhitePoint)
	positive("tonemap.uncharted2_white_point", c.ToneMap.Uncharted2WhitePoint)

	g := c.Grading
	for i := 0; i < 3; i++ {
		positive(fmt.Sprintf("grading.gamma[%d]", i), g.Gamma[i])
	}
	nonNegative("grading.contrast", g.Contrast)
	nonNegative("grading.saturation", g.Saturation)
	for _, f := range []struct {
		name string
		v    float32
	}{{"grading.brightness", g.Brightness}, {"grading.hue_shift", g.HueShift}} {
		if math32.IsNaN(f.v) || math32.IsInf(f.v, 0) {
			bad(f.name, f.v)
		}
	}
	if g.LUT != nil {
		if err := g.LUT.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%w: grading.lut: %w", ErrInvalidConfig, err))
		}
	}

	if c.FXAA.Quality > FXAAQualityUltra {
		bad("fxaa.quality", c.FXAA.Quality)
	}

	nonNegative("vignette.intensity", c.Vignette.Intensity)
	nonNegative("vignette.smoothness", c.Vignette.Smoothness)
	if !(c.Vignette.Roundness >= 0 && c.Vignette.Roundness <= 1) {
		bad("vignette.roundness", c.Vignette.Roundness)
	}
	nonNegative("chromatic_aberration.intensity", c.ChromaticAberration.Intensity)
	nonNegative("film_grain.intensity", c.FilmGrain.Intensity)
	if !(c.FilmGrain.Response >= 0 && c.FilmGrain.Response <= 1) {
		bad("film_grain.response", c.FilmGrain.Response)
	}
	return errors.Join(errs...)
}
