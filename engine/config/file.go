// Package config loads renderer and post-process settings from TOML or YAML
// files and watches them for edits.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/Carmen-Shannon/oxy-render/engine/log"
	"github.com/Carmen-Shannon/oxy-render/engine/postprocess"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
	"github.com/Carmen-Shannon/oxy-render/engine/shadow"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither TOML nor YAML.
	ErrUnsupportedFormat = errors.New("config: unsupported format")
	// ErrInvalidFile is returned when a file decodes but holds invalid values.
	ErrInvalidFile = errors.New("config: invalid file")
)

// Format is a config file encoding.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// FormatFor picks the encoding from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// File is the on-disk configuration. Keys absent from a file keep the
// values of Default.
type File struct {
	Log         LogSection         `toml:"log" yaml:"log"`
	Renderer    RendererSection    `toml:"renderer" yaml:"renderer"`
	Shadows     ShadowSection      `toml:"shadows" yaml:"shadows"`
	PostProcess PostProcessSection `toml:"postprocess" yaml:"postprocess"`
}

// LogSection sets the global log level.
type LogSection struct {
	Level string `toml:"level" yaml:"level"`
}

type RendererSection struct {
	Width         int         `toml:"width" yaml:"width"`
	Height        int         `toml:"height" yaml:"height"`
	RenderScale   float32     `toml:"render_scale" yaml:"render_scale"`
	Workers       int         `toml:"workers" yaml:"workers"`
	MaxTexels     int         `toml:"max_texels" yaml:"max_texels"`
	ClearColor    common.Vec4 `toml:"clear_color" yaml:"clear_color"`
	DebugCascades bool        `toml:"debug_cascades" yaml:"debug_cascades"`
	Culling       bool        `toml:"culling" yaml:"culling"`
}

// ShadowSection configures cascade fitting. Splits are normalized far edges.
type ShadowSection struct {
	Quality      string    `toml:"quality" yaml:"quality"`
	Splits       []float32 `toml:"splits" yaml:"splits"`
	MaxDistance  float32   `toml:"max_distance" yaml:"max_distance"`
	ConstantBias float32   `toml:"constant_bias" yaml:"constant_bias"`
	SlopeBias    float32   `toml:"slope_bias" yaml:"slope_bias"`
}

// PostProcessSection mirrors postprocess.Config with enums spelled as names.
type PostProcessSection struct {
	Bloom               BloomSection               `toml:"bloom" yaml:"bloom"`
	ToneMap             ToneMapSection             `toml:"tonemap" yaml:"tonemap"`
	Grading             GradingSection             `toml:"grading" yaml:"grading"`
	FXAA                FXAASection                `toml:"fxaa" yaml:"fxaa"`
	Vignette            VignetteSection            `toml:"vignette" yaml:"vignette"`
	ChromaticAberration ChromaticAberrationSection `toml:"chromatic_aberration" yaml:"chromatic_aberration"`
	FilmGrain           FilmGrainSection           `toml:"film_grain" yaml:"film_grain"`
}

type BloomSection struct {
	Enabled    bool    `toml:"enabled" yaml:"enabled"`
	Threshold  float32 `toml:"threshold" yaml:"threshold"`
	Intensity  float32 `toml:"intensity" yaml:"intensity"`
	Iterations int     `toml:"iterations" yaml:"iterations"`
	Radius     float32 `toml:"radius" yaml:"radius"`
}

type ToneMapSection struct {
	Enabled              bool    `toml:"enabled" yaml:"enabled"`
	Operator             string  `toml:"operator" yaml:"operator"`
	Exposure             float32 `toml:"exposure" yaml:"exposure"`
	WhitePoint           float32 `toml:"white_point" yaml:"white_point"`
	FilmicWhitePoint     float32 `toml:"filmic_white_point" yaml:"filmic_white_point"`
	Uncharted2WhitePoint float32 `toml:"uncharted2_white_point" yaml:"uncharted2_white_point"`
}

type GradingSection struct {
	Enabled    bool        `toml:"enabled" yaml:"enabled"`
	Brightness float32     `toml:"brightness" yaml:"brightness"`
	Contrast   float32     `toml:"contrast" yaml:"contrast"`
	Saturation float32     `toml:"saturation" yaml:"saturation"`
	HueShift   float32     `toml:"hue_shift" yaml:"hue_shift"`
	Shadows    common.Vec3 `toml:"shadows" yaml:"shadows"`
	Midtones   common.Vec3 `toml:"midtones" yaml:"midtones"`
	Highlights common.Vec3 `toml:"highlights" yaml:"highlights"`
	Lift       common.Vec3 `toml:"lift" yaml:"lift"`
	Gamma      common.Vec3 `toml:"gamma" yaml:"gamma"`
	Gain       common.Vec3 `toml:"gain" yaml:"gain"`
	// LUT is a .cube file or a PNG strip, relative to the config file.
	LUT string `toml:"lut" yaml:"lut"`
}

type FXAASection struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Quality string `toml:"quality" yaml:"quality"`
}

type VignetteSection struct {
	Enabled    bool        `toml:"enabled" yaml:"enabled"`
	Intensity  float32     `toml:"intensity" yaml:"intensity"`
	Smoothness float32     `toml:"smoothness" yaml:"smoothness"`
	Roundness  float32     `toml:"roundness" yaml:"roundness"`
	Color      common.Vec3 `toml:"color" yaml:"color"`
}

type ChromaticAberrationSection struct {
	Enabled   bool    `toml:"enabled" yaml:"enabled"`
	Intensity float32 `toml:"intensity" yaml:"intensity"`
}

type FilmGrainSection struct {
	Enabled   bool    `toml:"enabled" yaml:"enabled"`
	Intensity float32 `toml:"intensity" yaml:"intensity"`
	Response  float32 `toml:"response" yaml:"response"`
}

// Default returns the renderer's built-in defaults as a File.
func Default() File {
	fit := shadow.DefaultFitParams(light.ShadowQualityHigh)
	post := postprocess.DefaultConfig()
	return File{
		Log: LogSection{Level: "notice"},
		Renderer: RendererSection{
			Width:       1280,
			Height:      720,
			RenderScale: 1,
			ClearColor:  common.Vec4{0, 0, 0, 1},
			Culling:     true,
		},
		Shadows: ShadowSection{
			Quality:      light.ShadowQualityHigh.String(),
			Splits:       fit.Splits,
			MaxDistance:  fit.MaxDistance,
			ConstantBias: fit.ConstantBias,
			SlopeBias:    fit.SlopeBias,
		},
		PostProcess: fromPostProcess(post),
	}
}

func fromPostProcess(c postprocess.Config) PostProcessSection {
	g := c.Grading
	return PostProcessSection{
		Bloom: BloomSection(c.Bloom),
		ToneMap: ToneMapSection{
			Enabled:              c.ToneMap.Enabled,
			Operator:             c.ToneMap.Operator.String(),
			Exposure:             c.ToneMap.Exposure,
			WhitePoint:           c.ToneMap.WhitePoint,
			FilmicWhitePoint:     c.ToneMap.FilmicWhitePoint,
			Uncharted2WhitePoint: c.ToneMap.Uncharted2WhitePoint,
		},
		Grading: GradingSection{
			Enabled:    g.Enabled,
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
		},
		FXAA:                FXAASection{Enabled: c.FXAA.Enabled, Quality: c.FXAA.Quality.String()},
		Vignette:            VignetteSection(c.Vignette),
		ChromaticAberration: ChromaticAberrationSection(c.ChromaticAberration),
		FilmGrain:           FilmGrainSection(c.FilmGrain),
	}
}

// Load reads a TOML or YAML file chosen by extension.
//
// Parameters:
//   - path: the config file
//
// Returns:
//   - File: Default overlaid with the file's keys
//   - error: ErrUnsupportedFormat, or a read or decode error
func Load(path string) (File, error) {
	format, err := FormatFor(path)
	if err != nil {
		return File{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("config: %w", err)
	}
	f, err := Decode(data, format)
	if err != nil {
		return File{}, fmt.Errorf("config %s: %w", path, err)
	}
	return f, nil
}

// Decode parses data onto Default. Unknown keys are an error.
func Decode(data []byte, format Format) (File, error) {
	f := Default()
	splits := f.Shadows.Splits
	f.Shadows.Splits = nil
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return File{}, err
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty document leaves the defaults untouched.
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return File{}, err
		}
	default:
		return File{}, fmt.Errorf("%w: format %d", ErrUnsupportedFormat, format)
	}
	if f.Shadows.Splits == nil {
		f.Shadows.Splits = splits
	}
	return f, nil
}

// Encode writes f in the given format.
func Encode(f File, format Format) ([]byte, error) {
	switch format {
	case FormatTOML:
		return toml.Marshal(f)
	case FormatYAML:
		return yaml.Marshal(f)
	}
	return nil, fmt.Errorf("%w: format %d", ErrUnsupportedFormat, format)
}

// Save writes f to path in the format chosen by its extension.
func Save(path string, f File) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	data, err := Encode(f, format)
	if err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0o644)
}

// PostProcessConfig converts the postprocess section, loading the grading LUT.
//
// Parameters:
//   - baseDir: directory relative LUT paths resolve against
//
// Returns:
//   - postprocess.Config: the converted configuration, not yet validated
//   - error: an unknown enum name or a LUT load failure
func (f File) PostProcessConfig(baseDir string) (postprocess.Config, error) {
	p := f.PostProcess
	var errs []error

	op, err := postprocess.ParseToneMapper(p.ToneMap.Operator)
	if err != nil {
		errs = append(errs, err)
	}
	quality, err := postprocess.ParseFXAAQuality(p.FXAA.Quality)
	if err != nil {
		errs = append(errs, err)
	}

	cfg := postprocess.Config{
		Bloom: postprocess.BloomConfig(p.Bloom),
		ToneMap: postprocess.ToneMapConfig{
			Enabled:              p.ToneMap.Enabled,
			Operator:             op,
			Exposure:             p.ToneMap.Exposure,
			WhitePoint:           p.ToneMap.WhitePoint,
			FilmicWhitePoint:     p.ToneMap.FilmicWhitePoint,
			Uncharted2WhitePoint: p.ToneMap.Uncharted2WhitePoint,
		},
		Grading: postprocess.GradingConfig{
			Enabled:    p.Grading.Enabled,
			Brightness: p.Grading.Brightness,
			Contrast:   p.Grading.Contrast,
			Saturation: p.Grading.Saturation,
			HueShift:   p.Grading.HueShift,
			Shadows:    p.Grading.Shadows,
			Midtones:   p.Grading.Midtones,
			Highlights: p.Grading.Highlights,
			Lift:       p.Grading.Lift,
			Gamma:      p.Grading.Gamma,
			Gain:       p.Grading.Gain,
		},
		FXAA:                postprocess.FXAAConfig{Enabled: p.FXAA.Enabled, Quality: quality},
		Vignette:            postprocess.VignetteConfig(p.Vignette),
		ChromaticAberration: postprocess.ChromaticAberrationConfig(p.ChromaticAberration),
		FilmGrain:           postprocess.FilmGrainConfig(p.FilmGrain),
	}

	if p.Grading.LUT != "" {
		path := p.Grading.LUT
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		lut, err := postprocess.LoadLUT(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("grading.lut: %w", err))
		}
		cfg.Grading.LUT = lut
	}
	return cfg, errors.Join(errs...)
}

// ShadowQuality parses the shadows.quality key.
func (f File) ShadowQuality() (light.ShadowQuality, error) {
	return light.ParseShadowQuality(f.Shadows.Quality)
}

// LogLevel parses the log.level key.
func (f File) LogLevel() (log.Level, error) {
	return log.ParseLevel(f.Log.Level)
}

// RendererOptions converts the file into renderer builder options.
//
// Parameters:
//   - baseDir: directory relative LUT paths resolve against
//
// Returns:
//   - []renderer.RendererBuilderOption: options for renderer.NewRenderer
//   - error: the joined conversion errors
func (f File) RendererOptions(baseDir string) ([]renderer.RendererBuilderOption, error) {
	var errs []error
	quality, err := f.ShadowQuality()
	if err != nil {
		errs = append(errs, err)
	}
	post, err := f.PostProcessConfig(baseDir)
	if err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	r, s := f.Renderer, f.Shadows
	return []renderer.RendererBuilderOption{
		renderer.WithOutputSize(r.Width, r.Height),
		renderer.WithRenderScale(r.RenderScale),
		renderer.WithWorkers(r.Workers),
		renderer.WithMaxTexels(r.MaxTexels),
		renderer.WithShadowQuality(quality),
		renderer.WithCascadeSplits(s.Splits...),
		renderer.WithShadowDistance(s.MaxDistance),
		renderer.WithShadowBias(s.ConstantBias, s.SlopeBias),
		renderer.WithPostProcess(post),
		renderer.WithClearColor(r.ClearColor),
		renderer.WithDebugCascades(r.DebugCascades),
		renderer.WithCulling(r.Culling),
	}, nil
}

// Validate reports every invalid value in the file.
//
// Parameters:
//   - baseDir: directory relative LUT paths resolve against
//
// Returns:
//   - error: ErrInvalidFile joined with each problem, or nil
func (f File) Validate(baseDir string) error {
	var errs []error
	bad := func(err error) {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidFile, err))
	}

	if _, err := f.LogLevel(); err != nil {
		bad(err)
	}
	r := f.Renderer
	if r.Width <= 0 || r.Height <= 0 {
		bad(fmt.Errorf("renderer size %dx%d", r.Width, r.Height))
	}
	if !(r.RenderScale > 0 && r.RenderScale <= renderer.MaxRenderScale) {
		bad(fmt.Errorf("renderer.render_scale %g", r.RenderScale))
	}
	if r.Workers < 0 {
		bad(fmt.Errorf("renderer.workers %d", r.Workers))
	}

	quality, err := f.ShadowQuality()
	if err != nil {
		bad(err)
	}
	fit := shadow.DefaultFitParams(quality)
	fit.Splits = f.Shadows.Splits
	fit.MaxDistance = f.Shadows.MaxDistance
	fit.ConstantBias = f.Shadows.ConstantBias
	fit.SlopeBias = f.Shadows.SlopeBias
	if err := fit.Validate(); err != nil {
		bad(err)
	}

	post, err := f.PostProcessConfig(baseDir)
	if err != nil {
		bad(err)
	} else if err := post.Validate(); err != nil {
		bad(err)
	}
	return errors.Join(errs...)
}
