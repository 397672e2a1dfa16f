package model

import (
	_ "embed"
	"encoding/binary"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/chewxy/math32"
)

// GPUVertexSource is the canonical WGSL definition of the VertexInput struct.
// Matches GPUVertex layout exactly (32 bytes).
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUVertex is the GPU-aligned representation of a single mesh vertex.
// Matches the WGSL VertexInput struct layout exactly (see GPUVertexSource).
// Size: 32 bytes (vertex buffer layout, no padding required).
type GPUVertex struct {
	Position common.Vec3 // offset  0: vertex position in model space (12 bytes)
	Normal   common.Vec3 // offset 12: vertex normal for lighting (12 bytes)
	TexCoord [2]float32  // offset 24: UV texture coordinate (8 bytes)
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return 32
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, 32)
	for i := 0; i < 3; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:], math32.Float32bits(g.Position[i]))
		binary.LittleEndian.PutUint32(buf[12+i*4:], math32.Float32bits(g.Normal[i]))
	}
	binary.LittleEndian.PutUint32(buf[24:28], math32.Float32bits(g.TexCoord[0]))
	binary.LittleEndian.PutUint32(buf[28:32], math32.Float32bits(g.TexCoord[1]))
	return buf
}

// GPUModelUniformSource is the canonical WGSL definition of the ModelUniform struct.
// Matches GPUModelUniform layout exactly (128 bytes, std430 aligned).
//
//go:embed assets/model_uniform.wgsl
var GPUModelUniformSource string

// GPUModelUniform is the per-draw uniform holding the model transform and
// the normal matrix (inverse-transpose of the upper 3x3, one padded vec3
// column per row of mat3x3 storage).
// Size: 128 bytes.
//
// Layout:
//
//	mat4x4<f32> model         (64 bytes, offset 0)
//	mat3x3<f32> normal_matrix (48 bytes, offset 64)
//	vec4<f32>   base_color    (16 bytes, offset 112)
type GPUModelUniform struct {
	Model        [16]float32
	NormalMatrix [3]common.Vec3
	BaseColor    common.Vec4
}

// NewGPUModelUniform packs a draw item.
//
// Returns:
//   - GPUModelUniform: the packed uniform
//   - bool: false when the world transform is singular
func NewGPUModelUniform(d *DrawItem) (GPUModelUniform, bool) {
	n, ok := common.NormalMatrix(d.World)
	u := GPUModelUniform{Model: d.World, NormalMatrix: n, BaseColor: common.Vec4{1, 1, 1, 1}}
	if d.Material != nil {
		u.BaseColor = d.Material.BaseColor()
	}
	return u, ok
}

// Size returns the size of the GPUModelUniform struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes (128)
func (g *GPUModelUniform) Size() int {
	return 128
}

// Marshal serializes the GPUModelUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 128-byte buffer ready for GPU upload.
func (g *GPUModelUniform) Marshal() []byte {
	buf := make([]byte, 128)
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:], math32.Float32bits(g.Model[i]))
	}
	for c := 0; c < 3; c++ {
		for r := 0; r < 3; r++ {
			binary.LittleEndian.PutUint32(buf[64+c*16+r*4:], math32.Float32bits(g.NormalMatrix[c][r]))
		}
	}
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint32(buf[112+i*4:], math32.Float32bits(g.BaseColor[i]))
	}
	return buf
}
