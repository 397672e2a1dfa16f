package compositor

import (
	"fmt"
	"image"
	"sync"

	"github.com/Carmen-Shannon/oxy-render/engine/target"
	"github.com/cogentcore/webgpu/wgpu"
)

// ImageSurface presents into an in-memory RGBA image.
type ImageSurface struct {
	mu  sync.RWMutex
	img *image.RGBA
}

// NewImageSurface allocates a width x height surface.
func NewImageSurface(width, height int) *ImageSurface {
	return &ImageSurface{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

func (s *ImageSurface) Width() int                 { return s.img.Rect.Dx() }
func (s *ImageSurface) Height() int                { return s.img.Rect.Dy() }
func (s *ImageSurface) Format() wgpu.TextureFormat { return wgpu.TextureFormatRGBA8Unorm }

// Present implements Surface.
func (s *ImageSurface) Present(src target.Reader) error {
	rgba := src.ToRGBA()
	s.mu.Lock()
	copy(s.img.Pix, rgba.Pix)
	s.mu.Unlock()
	return nil
}

// Image returns a copy of the last presented frame.
func (s *ImageSurface) Image() *image.RGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := image.NewRGBA(s.img.Rect)
	copy(out.Pix, s.img.Pix)
	return out
}

// TextureWriter uploads texel data into a texture. *wgpu.Queue implements it.
type TextureWriter interface {
	WriteTexture(destination *wgpu.ImageCopyTexture, data []byte, dataLayout *wgpu.TextureDataLayout, writeSize *wgpu.Extent3D) error
}

// TextureSurface presents by uploading into a GPU texture owned by the
// caller, typically the current swapchain image or a texture it samples.
type TextureSurface struct {
	queue   TextureWriter
	texture *wgpu.Texture
	width   int
	height  int
	format  wgpu.TextureFormat
	staging []byte
}

// NewTextureSurface wraps a texture. The texture must have been created with
// TextureUsageCopyDst and the given size and format.
//
// Parameters:
//   - queue: the device queue used for uploads, usually a *wgpu.Queue
//   - texture: destination texture
//   - width, height: texture size in pixels
//   - format: texture format, one of the 8-bit RGBA or BGRA formats
//
// Returns:
//   - *TextureSurface: the surface
func NewTextureSurface(queue TextureWriter, texture *wgpu.Texture, width, height int, format wgpu.TextureFormat) *TextureSurface {
	return &TextureSurface{
		queue:   queue,
		texture: texture,
		width:   width,
		height:  height,
		format:  format,
	}
}

func (s *TextureSurface) Width() int                 { return s.width }
func (s *TextureSurface) Height() int                { return s.height }
func (s *TextureSurface) Format() wgpu.TextureFormat { return s.format }

// Present implements Surface. BGRA formats are swizzled on the CPU.
func (s *TextureSurface) Present(src target.Reader) error {
	s.staging = Pack(src, s.format, s.staging)
	err := s.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  s.texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		s.staging,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(s.width) * 4,
			RowsPerImage: uint32(s.height),
		},
		&wgpu.Extent3D{
			Width:              uint32(s.width),
			Height:             uint32(s.height),
			DepthOrArrayLayers: 1,
		},
	)
	if err != nil {
		return fmt.Errorf("write %dx%d texture: %w", s.width, s.height, err)
	}
	return nil
}

// Pack converts src to tightly packed 8-bit texels in the byte order of
// format, reusing buf when it is large enough.
func Pack(src target.Reader, format wgpu.TextureFormat, buf []byte) []byte {
	n := src.Width() * src.Height() * 4
	if cap(buf) < n {
		buf = make([]byte, n)
	}
	buf = buf[:n]
	copy(buf, src.ToRGBA().Pix)
	if format == wgpu.TextureFormatBGRA8Unorm || format == wgpu.TextureFormatBGRA8UnormSrgb {
		for i := 0; i < n; i += 4 {
			buf[i], buf[i+2] = buf[i+2], buf[i]
		}
	}
	return buf
}
