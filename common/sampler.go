package common

import (
	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"
)

// Sample reads the texture at normalized coordinates (u, v) using the sampler's
// address modes and magnification filter. Minification uses the same filter
// since staged textures carry a single mip level.
//
// Parameters:
//   - tex: the texture to read; a nil texture samples as opaque white
//   - u, v: texture coordinates, (0,0) is the top-left texel corner
//
// Returns:
//   - Vec4: the filtered RGBA value in [0, 1]
func (s SamplerStagingData) Sample(tex *TextureStagingData, u, v float32) Vec4 {
	if tex == nil || tex.Width == 0 || tex.Height == 0 {
		return Vec4{1, 1, 1, 1}
	}
	w, h := float32(tex.Width), float32(tex.Height)
	if s.MagFilter == wgpu.FilterModeNearest {
		x := wrapIndex(int(math32.Floor(u*w)), int(tex.Width), s.AddressModeU)
		y := wrapIndex(int(math32.Floor(v*h)), int(tex.Height), s.AddressModeV)
		return tex.Texel(uint32(x), uint32(y))
	}

	fx := u*w - 0.5
	fy := v*h - 0.5
	x0f := math32.Floor(fx)
	y0f := math32.Floor(fy)
	tx := fx - x0f
	ty := fy - y0f
	x0, y0 := int(x0f), int(y0f)

	xa := uint32(wrapIndex(x0, int(tex.Width), s.AddressModeU))
	xb := uint32(wrapIndex(x0+1, int(tex.Width), s.AddressModeU))
	ya := uint32(wrapIndex(y0, int(tex.Height), s.AddressModeV))
	yb := uint32(wrapIndex(y0+1, int(tex.Height), s.AddressModeV))

	c00, c10 := tex.Texel(xa, ya), tex.Texel(xb, ya)
	c01, c11 := tex.Texel(xa, yb), tex.Texel(xb, yb)
	var out Vec4
	for i := 0; i < 4; i++ {
		top := Mix(c00[i], c10[i], tx)
		bottom := Mix(c01[i], c11[i], tx)
		out[i] = Mix(top, bottom, ty)
	}
	return out
}

// wrapIndex applies an address mode to an integer texel index.
func wrapIndex(i, n int, mode wgpu.AddressMode) int {
	switch mode {
	case wgpu.AddressModeClampToEdge:
		if i < 0 {
			return 0
		}
		if i >= n {
			return n - 1
		}
		return i
	case wgpu.AddressModeMirrorRepeat:
		period := 2 * n
		i %= period
		if i < 0 {
			i += period
		}
		if i >= n {
			i = period - 1 - i
		}
		return i
	default:
		i %= n
		if i < 0 {
			i += n
		}
		return i
	}
}
