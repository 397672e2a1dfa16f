// package common contains common types that are used throughout this renderer. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/cogentcore/webgpu/wgpu"
)

// TextureStagingData holds RGBA pixel data for a texture binding.
// Materials sample from it directly; a GPU backend uploads the same bytes.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It should be in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// NewTextureFromImage converts any image.Image into RGBA staging data.
//
// Parameters:
//   - img: the decoded source image (decoding itself is the caller's concern)
//
// Returns:
//   - *TextureStagingData: the converted texture
//   - error: an error if the image has zero area
func NewTextureFromImage(img image.Image) (*TextureStagingData, error) {
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("texture image has zero area")
	}
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return &TextureStagingData{Pixels: rgba.Pix, Width: uint32(bounds.Dx()), Height: uint32(bounds.Dy())}, nil
}

// SolidTexture builds a 1x1 texture of a single color.
func SolidTexture(c Vec4) *TextureStagingData {
	return &TextureStagingData{Pixels: []byte{unorm8(c[0]), unorm8(c[1]), unorm8(c[2]), unorm8(c[3])}, Width: 1, Height: 1}
}

// CheckerboardTexture builds a size x size checkerboard alternating between a and b every cell texels.
func CheckerboardTexture(size, cell uint32, a, b Vec4) *TextureStagingData {
	if cell == 0 {
		cell = 1
	}
	t := &TextureStagingData{Pixels: make([]byte, size*size*4), Width: size, Height: size}
	for y := uint32(0); y < size; y++ {
		for x := uint32(0); x < size; x++ {
			c := a
			if ((x/cell)+(y/cell))%2 == 1 {
				c = b
			}
			i := (y*size + x) * 4
			t.Pixels[i], t.Pixels[i+1], t.Pixels[i+2], t.Pixels[i+3] = unorm8(c[0]), unorm8(c[1]), unorm8(c[2]), unorm8(c[3])
		}
	}
	return t
}

// Texel returns the normalized RGBA value at integer coordinates, which must be in range.
func (t *TextureStagingData) Texel(x, y uint32) Vec4 {
	i := (y*t.Width + x) * 4
	return Vec4{
		float32(t.Pixels[i]) / 255,
		float32(t.Pixels[i+1]) / 255,
		float32(t.Pixels[i+2]) / 255,
		float32(t.Pixels[i+3]) / 255,
	}
}

// SamplerStagingData holds the configuration for a sampler binding.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// Compare specifies the comparison function for comparison samplers, used in shadow mapping.
	Compare wgpu.CompareFunction
}

// DefaultSampler returns a linear, repeating sampler.
func DefaultSampler() SamplerStagingData {
	return SamplerStagingData{
		AddressModeU: wgpu.AddressModeRepeat,
		AddressModeV: wgpu.AddressModeRepeat,
		AddressModeW: wgpu.AddressModeRepeat,
		MagFilter:    wgpu.FilterModeLinear,
		MinFilter:    wgpu.FilterModeLinear,
	}
}

func unorm8(v float32) byte {
	return byte(Saturate(v)*255 + 0.5)
}
