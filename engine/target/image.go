package target

import (
	"image"
	"image/color"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// ToRGBA converts the target into an 8-bit image. Color values are clamped
// to [0,1] without any transfer function; depth is written as gray.
//
// Returns:
//   - *image.RGBA: a new image of the target's size
func (r Reader) ToRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.t.width, r.t.height))
	for y := 0; y < r.t.height; y++ {
		for x := 0; x < r.t.width; x++ {
			c := r.Load(x, y)
			if r.t.channels == 1 {
				c[3] = 1
			}
			img.SetRGBA(x, y, color.RGBA{
				R: toByte(c[0]),
				G: toByte(c[1]),
				B: toByte(c[2]),
				A: toByte(c[3]),
			})
		}
	}
	return img
}

// FromImage builds a target of the given format from an image, storing
// normalized channel values.
func FromImage(name string, img image.Image, format wgpu.TextureFormat) (*Target, error) {
	b := img.Bounds()
	t, err := New(name, b.Dx(), b.Dy(), format)
	if err != nil {
		return nil, err
	}
	w := t.Writer()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			cr, cg, cb, ca := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			w.Store(x, y, common.Vec4{
				float32(cr) / 0xffff,
				float32(cg) / 0xffff,
				float32(cb) / 0xffff,
				float32(ca) / 0xffff,
			})
		}
	}
	return t, nil
}

func toByte(v float32) uint8 {
	return uint8(common.Saturate(v)*255 + 0.5)
}
