package shadow

import (
	_ "embed"
	"encoding/binary"

	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/chewxy/math32"
)

// GPUCascadeDataSource is the canonical WGSL definition of the CascadeData struct.
// Matches GPUCascadeData layout exactly (304 bytes, std430 aligned).
//
//go:embed assets/cascade_data.wgsl
var GPUCascadeDataSource string

// GPUCascadeData is the GPU-aligned per-frame cascade block read by the shadow
// and shading shaders.
// Size: 304 bytes.
//
// Layout:
//
//	array<mat4x4<f32>, 4> view_proj (256 bytes, offset 0)
//	vec4<f32>   thresholds          (16 bytes,  offset 256)
//	u32         count               (4 bytes,   offset 272)
//	f32         constant_bias       (4 bytes,   offset 276)
//	f32         slope_bias          (4 bytes,   offset 280)
//	f32         blend_start         (4 bytes,   offset 284)
//	vec4<f32>   texel_size          (16 bytes,  offset 288)
type GPUCascadeData struct {
	ViewProj     [light.MaxCascades][16]float32
	Thresholds   [light.MaxCascades]float32
	Count        uint32
	ConstantBias float32
	SlopeBias    float32
	BlendStart   float32
	TexelSize    [light.MaxCascades]float32
}

// Uniform packs the cascade set into its GPU layout.
func (s CascadeSet) Uniform() GPUCascadeData {
	u := GPUCascadeData{
		Count:        uint32(s.Len()),
		ConstantBias: s.ConstantBias,
		SlopeBias:    s.SlopeBias,
		BlendStart:   BlendStart,
	}
	for k, c := range s.Cascades {
		if k >= light.MaxCascades {
			break
		}
		u.ViewProj[k] = c.ViewProj
		u.Thresholds[k] = c.Threshold
		u.TexelSize[k] = 1 / float32(c.Resolution)
	}
	return u
}

// Size returns the size of the GPUCascadeData struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes (304)
func (g *GPUCascadeData) Size() int {
	return 304
}

// Marshal serializes the GPUCascadeData struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 304-byte buffer ready for GPU upload.
func (g *GPUCascadeData) Marshal() []byte {
	buf := make([]byte, 304)
	for k := 0; k < light.MaxCascades; k++ {
		for i := 0; i < 16; i++ {
			binary.LittleEndian.PutUint32(buf[k*64+i*4:], math32.Float32bits(g.ViewProj[k][i]))
		}
		binary.LittleEndian.PutUint32(buf[256+k*4:], math32.Float32bits(g.Thresholds[k]))
		binary.LittleEndian.PutUint32(buf[288+k*4:], math32.Float32bits(g.TexelSize[k]))
	}
	binary.LittleEndian.PutUint32(buf[272:276], g.Count)
	binary.LittleEndian.PutUint32(buf[276:280], math32.Float32bits(g.ConstantBias))
	binary.LittleEndian.PutUint32(buf[280:284], math32.Float32bits(g.SlopeBias))
	binary.LittleEndian.PutUint32(buf[284:288], math32.Float32bits(g.BlendStart))
	return buf
}
