package material

import (
	_ "embed"
	"encoding/binary"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/chewxy/math32"
)

// GPUMaterialParamsSource is the canonical WGSL definition of the MaterialParams struct.
// Matches GPUMaterialParams layout exactly (32 bytes, std430 aligned).
//
//go:embed assets/material_params.wgsl
var GPUMaterialParamsSource string

// GPUMaterialParams is the GPU-aligned uniform for the shading fragment stage.
// Size: 32 bytes.
type GPUMaterialParams struct {
	BaseColor  common.Vec4 // offset  0: RGBA color factor
	HasTexture uint32      // offset 16: 1 when a base-color texture is bound
	AlphaMode  uint32      // offset 20: 0 = opaque, 1 = blend
	_pad       [2]uint32   // offset 24: padding to 32 bytes
}

// NewGPUMaterialParams packs a material.
func NewGPUMaterialParams(m Material) GPUMaterialParams {
	p := GPUMaterialParams{BaseColor: m.BaseColor(), AlphaMode: uint32(m.AlphaMode())}
	if m.Texture() != nil {
		p.HasTexture = 1
	}
	return p
}

// Size returns the size of the GPUMaterialParams struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUMaterialParams) Size() int {
	return 32
}

// Marshal serializes the GPUMaterialParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload.
func (g *GPUMaterialParams) Marshal() []byte {
	buf := make([]byte, 32)
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:], math32.Float32bits(g.BaseColor[i]))
	}
	binary.LittleEndian.PutUint32(buf[16:20], g.HasTexture)
	binary.LittleEndian.PutUint32(buf[20:24], g.AlphaMode)
	return buf
}
