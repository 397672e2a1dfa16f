package light

import (
	_ "embed"
	"encoding/binary"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/chewxy/math32"
)

// MaxGPULights is the maximum number of lights marshaled into the light
// storage buffer per frame.
const MaxGPULights = 1024

// GPULightSource is the canonical WGSL definition of the Light struct.
// Matches GPULight layout exactly (64 bytes, std430 aligned).
//
//go:embed assets/light.wgsl
var GPULightSource string

// GPULight is the GPU-aligned representation of a single light source.
// Matches the WGSL Light struct layout exactly (see GPULightSource).
// Size: 64 bytes (std430 / WGSL aligned).
type GPULight struct {
	Position     common.Vec3 // offset  0: world-space position (point/spot) or unused (directional)
	LightType    uint32      // offset 12: 0 = directional, 1 = point, 2 = spot
	Color        common.Vec3 // offset 16: RGB color
	Intensity    float32     // offset 28: scalar multiplier
	Direction    common.Vec3 // offset 32: normalized direction (directional/spot) or unused (point)
	LightRange   float32     // offset 44: attenuation cutoff distance
	InnerCone    float32     // offset 48: cos(inner half-angle) for spot
	OuterCone    float32     // offset 52: cos(outer half-angle) for spot
	CastsShadows uint32      // offset 56: 1 = casts shadows, 0 = does not
	_pad         uint32      // offset 60: padding to 64-byte alignment
}

// Size returns the size of the GPULight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPULight) Size() int {
	return 64
}

// Marshal serializes the GPULight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (g *GPULight) Marshal() []byte {
	buf := make([]byte, 64)
	putVec3(buf[0:12], g.Position)
	binary.LittleEndian.PutUint32(buf[12:16], g.LightType)
	putVec3(buf[16:28], g.Color)
	binary.LittleEndian.PutUint32(buf[28:32], math32.Float32bits(g.Intensity))
	putVec3(buf[32:44], g.Direction)
	binary.LittleEndian.PutUint32(buf[44:48], math32.Float32bits(g.LightRange))
	binary.LittleEndian.PutUint32(buf[48:52], math32.Float32bits(g.InnerCone))
	binary.LittleEndian.PutUint32(buf[52:56], math32.Float32bits(g.OuterCone))
	binary.LittleEndian.PutUint32(buf[56:60], g.CastsShadows)
	binary.LittleEndian.PutUint32(buf[60:64], 0) // padding
	return buf
}

// GPULightHeaderSource is the canonical WGSL definition of the LightHeader struct.
// Matches GPULightHeader layout exactly (16 bytes, std430 aligned).
//
//go:embed assets/light_header.wgsl
var GPULightHeaderSource string

// GPULightHeader is the header prepended to the light storage buffer.
// Contains the ambient factor and the active light count.
// Size: 16 bytes (vec3 + u32, std430 aligned).
type GPULightHeader struct {
	AmbientColor common.Vec3 // offset 0: ambient multiplier applied to albedo
	LightCount   uint32      // offset 12: number of active lights following the header
}

// Size returns the size of the GPULightHeader struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (h *GPULightHeader) Size() int {
	return 16
}

// Marshal serializes the GPULightHeader struct into a byte buffer suitable for
// GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (h *GPULightHeader) Marshal() []byte {
	buf := make([]byte, 16)
	putVec3(buf[0:12], h.AmbientColor)
	binary.LittleEndian.PutUint32(buf[12:16], h.LightCount)
	return buf
}

// ToGPULight converts a light State into its GPU-aligned representation.
//
// Parameters:
//   - s: the light state to convert
//
// Returns:
//   - GPULight: the GPU-aligned representation
func ToGPULight(s State) GPULight {
	shadowVal := uint32(0)
	if s.CastsShadows && s.Type != LightTypePoint {
		shadowVal = 1
	}
	return GPULight{
		Position:     s.Position,
		LightType:    uint32(s.Type),
		Color:        s.Color,
		Intensity:    s.Intensity,
		Direction:    s.Direction,
		LightRange:   s.Range,
		InnerCone:    s.InnerCos,
		OuterCone:    s.OuterCos,
		CastsShadows: shadowVal,
	}
}

// MarshalLightBuffer marshals light states into a byte buffer suitable for
// GPU upload. The buffer layout is:
//
//	[GPULightHeader (16 bytes)] [GPULight × count (64 bytes each)]
//
// States beyond MaxGPULights are dropped.
//
// Parameters:
//   - lights: the light states to marshal
//   - ambient: the ambient multiplier as RGB
//
// Returns:
//   - []byte: the marshaled buffer ready for GPU upload
func MarshalLightBuffer(lights []State, ambient common.Vec3) []byte {
	count := min(len(lights), MaxGPULights)
	header := GPULightHeader{AmbientColor: ambient, LightCount: uint32(count)}
	buf := make([]byte, 0, header.Size()+count*64)
	buf = append(buf, header.Marshal()...)
	for _, s := range lights[:count] {
		g := ToGPULight(s)
		buf = append(buf, g.Marshal()...)
	}
	return buf
}

func putVec3(dst []byte, v common.Vec3) {
	binary.LittleEndian.PutUint32(dst[0:4], math32.Float32bits(v[0]))
	binary.LittleEndian.PutUint32(dst[4:8], math32.Float32bits(v[1]))
	binary.LittleEndian.PutUint32(dst[8:12], math32.Float32bits(v[2]))
}
