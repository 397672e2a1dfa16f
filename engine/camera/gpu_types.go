package camera

import (
	_ "embed"
	"encoding/binary"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/chewxy/math32"
)

// GPUCameraUniformSource is the canonical WGSL definition of the CameraUniform struct.
// Matches GPUCameraUniform layout exactly (224 bytes, std430 aligned).
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniform is the GPU-aligned representation of the camera uniform buffer.
// Matches the WGSL CameraUniform struct layout exactly (see GPUCameraUniformSource).
// Size: 224 bytes.
type GPUCameraUniform struct {
	View     [16]float32 // offset   0: view matrix (mat4x4<f32>)
	Proj     [16]float32 // offset  64: projection matrix (mat4x4<f32>)
	ViewProj [16]float32 // offset 128: combined view-projection matrix (mat4x4<f32>)
	Position common.Vec3 // offset 192: world-space camera position (vec3<f32>)
	Near     float32     // offset 204: near plane, packed into the vec3 tail
	Far      float32     // offset 208: far plane
}

// GPUCameraUniformSize is the padded byte size of GPUCameraUniform.
const GPUCameraUniformSize = 224

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (224)
func (g *GPUCameraUniform) Size() int {
	return GPUCameraUniformSize
}

// Marshal serializes the GPUCameraUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math32.Float32bits(g.View[i]))
		binary.LittleEndian.PutUint32(buf[64+i*4:], math32.Float32bits(g.Proj[i]))
		binary.LittleEndian.PutUint32(buf[128+i*4:], math32.Float32bits(g.ViewProj[i]))
	}
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[192+i*4:], math32.Float32bits(g.Position[i]))
	}
	binary.LittleEndian.PutUint32(buf[204:], math32.Float32bits(g.Near))
	binary.LittleEndian.PutUint32(buf[208:], math32.Float32bits(g.Far))
	return buf
}
