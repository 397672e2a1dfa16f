// Package material describes the surface a draw item is shaded with.
package material

import (
	"github.com/Carmen-Shannon/oxy-render/common"
)

// AlphaMode controls how a material's alpha is interpreted.
type AlphaMode int

const (
	// AlphaModeOpaque ignores alpha. Opaque items cast shadows.
	AlphaModeOpaque AlphaMode = iota
	// AlphaModeBlend marks the surface as transparent. Transparent items are
	// shaded but never written into shadow maps.
	AlphaModeBlend
)

// material is the implementation of the Material interface.
type material struct {
	name      string
	baseColor common.Vec4
	texture   *common.TextureStagingData
	sampler   common.SamplerStagingData
	alphaMode AlphaMode
}

// Material defines the surface properties of a draw item: a base color
// multiplied by an optional base-color texture read through a sampler.
//
// Materials are immutable once built and may be shared between draw items and
// read concurrently by every shading band.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// BaseColor retrieves the RGBA color factor of the material.
	//
	// Returns:
	//   - common.Vec4: the base color
	BaseColor() common.Vec4

	// Texture retrieves the base-color texture, or nil if none is set.
	//
	// Returns:
	//   - *common.TextureStagingData: the texture, or nil
	Texture() *common.TextureStagingData

	// Sampler retrieves the sampler used to read Texture.
	//
	// Returns:
	//   - common.SamplerStagingData: the sampler configuration
	Sampler() common.SamplerStagingData

	// AlphaMode retrieves how alpha is interpreted.
	//
	// Returns:
	//   - AlphaMode: the alpha mode
	AlphaMode() AlphaMode

	// Opaque reports whether the material casts shadows.
	//
	// Returns:
	//   - bool: true for AlphaModeOpaque
	Opaque() bool

	// Albedo evaluates the surface color at a texture coordinate.
	//
	// Parameters:
	//   - uv: texture coordinate
	//
	// Returns:
	//   - common.Vec3: linear RGB albedo
	Albedo(uv [2]float32) common.Vec3
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		baseColor: common.Vec4{1, 1, 1, 1},
		sampler:   common.DefaultSampler(),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string                        { return m.name }
func (m *material) BaseColor() common.Vec4              { return m.baseColor }
func (m *material) Texture() *common.TextureStagingData { return m.texture }
func (m *material) Sampler() common.SamplerStagingData  { return m.sampler }
func (m *material) AlphaMode() AlphaMode                { return m.alphaMode }
func (m *material) Opaque() bool                        { return m.alphaMode == AlphaModeOpaque }

func (m *material) Albedo(uv [2]float32) common.Vec3 {
	base := common.Vec3{m.baseColor[0], m.baseColor[1], m.baseColor[2]}
	if m.texture == nil {
		return base
	}
	t := m.sampler.Sample(m.texture, uv[0], uv[1])
	return base.Mul(common.Vec3{t[0], t[1], t[2]})
}
