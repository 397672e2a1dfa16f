package material

import "github.com/Carmen-Shannon/oxy-render/common"

// MaterialBuilderOption is a function that configures a Material during construction.
type MaterialBuilderOption func(*material)

// WithName sets the material identifier.
//
// Parameters:
//   - name: the material name
//
// Returns:
//   - MaterialBuilderOption: the option
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithBaseColor sets the RGBA color factor.
//
// Parameters:
//   - color: the base color
//
// Returns:
//   - MaterialBuilderOption: the option
func WithBaseColor(color common.Vec4) MaterialBuilderOption {
	return func(m *material) {
		m.baseColor = color
	}
}

// WithTexture sets the base-color texture.
//
// Parameters:
//   - tex: the texture, already decoded to RGBA
//
// Returns:
//   - MaterialBuilderOption: the option
func WithTexture(tex *common.TextureStagingData) MaterialBuilderOption {
	return func(m *material) {
		m.texture = tex
	}
}

// WithSampler sets the sampler used to read the base-color texture.
//
// Parameters:
//   - sampler: the sampler configuration
//
// Returns:
//   - MaterialBuilderOption: the option
func WithSampler(sampler common.SamplerStagingData) MaterialBuilderOption {
	return func(m *material) {
		m.sampler = sampler
	}
}

// WithAlphaMode sets how alpha is interpreted.
//
// Parameters:
//   - mode: the alpha mode
//
// Returns:
//   - MaterialBuilderOption: the option
func WithAlphaMode(mode AlphaMode) MaterialBuilderOption {
	return func(m *material) {
		m.alphaMode = mode
	}
}
