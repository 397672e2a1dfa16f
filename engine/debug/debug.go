// Package debug turns frame intermediates into images and writes them to
// disk for inspection.
package debug

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/postprocess"
	"github.com/Carmen-Shannon/oxy-render/engine/shadow"
	"github.com/Carmen-Shannon/oxy-render/engine/target"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/chewxy/math32"
	xdraw "golang.org/x/image/draw"
)

// Preview converts a color target into a displayable image. HDR targets are
// scaled by exposure, Reinhard compressed and sRGB encoded; LDR targets are
// copied as-is.
//
// Parameters:
//   - r: the target to convert
//   - exposure: linear scale applied to HDR values before compression
//
// Returns:
//   - *image.RGBA: a new image of the target's size
func Preview(r target.Reader, exposure float32) *image.RGBA {
	if r.Format() != target.FormatHDR {
		return r.ToRGBA()
	}
	img := image.NewRGBA(image.Rect(0, 0, r.Width(), r.Height()))
	for y := 0; y < r.Height(); y++ {
		for x := 0; x < r.Width(); x++ {
			c := r.Load(x, y)
			var px [3]uint8
			for i := 0; i < 3; i++ {
				v := math32.Max(c[i]*exposure, 0)
				px[i] = unorm8(postprocess.LinearToSRGB(v / (1 + v)))
			}
			img.SetRGBA(x, y, color.RGBA{R: px[0], G: px[1], B: px[2], A: unorm8(c[3])})
		}
	}
	return img
}

// DepthImage maps a depth target to gray, stretching the range of depths
// below the clear value over [0, 255]. Cleared texels are white.
func DepthImage(r target.Reader) *image.Gray {
	w, h := r.Width(), r.Height()
	img := image.NewGray(image.Rect(0, 0, w, h))

	lo, hi := float32(1), float32(0)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if d := r.Depth(x, y); d < 1 {
				lo = math32.Min(lo, d)
				hi = math32.Max(hi, d)
			}
		}
	}
	span := hi - lo
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := r.Depth(x, y)
			v := float32(1)
			if d < 1 && span > 0 {
				v = (d - lo) / span
			} else if d < 1 {
				v = 0
			}
			img.SetGray(x, y, color.Gray{Y: unorm8(v)})
		}
	}
	return img
}

// Thumbnail scales img down so its longer side is at most maxDim, keeping
// the aspect ratio. Images that already fit are returned unchanged.
//
// Parameters:
//   - img: the source image
//   - maxDim: the longest allowed side in pixels
//
// Returns:
//   - image.Image: the scaled image
func Thumbnail(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}
	if w >= h {
		w, h = maxDim, max(h*maxDim/w, 1)
	} else {
		w, h = max(w*maxDim/h, 1), maxDim
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// CascadeAtlas lays every cascade of a shadow map side by side, each scaled
// to a tile x tile square.
//
// Parameters:
//   - maps: the frame's shadow maps
//   - tile: the side of each cascade's square in pixels
//
// Returns:
//   - *image.Gray: the atlas, or nil when there are no cascades
func CascadeAtlas(maps *shadow.ShadowMap, tile int) *image.Gray {
	n := maps.Len()
	if n == 0 || tile <= 0 {
		return nil
	}
	atlas := image.NewGray(image.Rect(0, 0, tile*n, tile))
	for k := 0; k < n; k++ {
		depth := DepthImage(maps.Cascade(k))
		rect := image.Rect(k*tile, 0, (k+1)*tile, tile)
		xdraw.ApproxBiLinear.Scale(atlas, rect, depth, depth.Bounds(), draw.Src, nil)
	}
	return atlas
}

// SavePNG encodes img as a PNG file.
func SavePNG(path string, img image.Image) error {
	return imgio.Save(path, img, imgio.PNGEncoder())
}

func unorm8(v float32) uint8 {
	return uint8(common.Saturate(v)*255 + 0.5)
}
