// Package compositor writes the final post-processed image to a display surface.
package compositor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-render/engine/log"
	"github.com/Carmen-Shannon/oxy-render/engine/target"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrIncompatibleSurface is returned when a surface cannot accept the
// renderer's output size or format.
var ErrIncompatibleSurface = errors.New("compositor: incompatible surface")

// ErrPresent is returned when a surface fails to accept a composited frame.
var ErrPresent = errors.New("compositor: present failed")

// Surface is the destination of a composited frame.
type Surface interface {
	// Width and Height report the surface size in pixels.
	Width() int
	Height() int
	// Format is the surface's texel format.
	Format() wgpu.TextureFormat
	// Present copies an image of exactly the surface size onto the surface.
	Present(src target.Reader) error
}

// SupportsFormat reports whether the compositor can write 8-bit output into format.
func SupportsFormat(format wgpu.TextureFormat) bool {
	switch format {
	case wgpu.TextureFormatRGBA8Unorm, wgpu.TextureFormatRGBA8UnormSrgb,
		wgpu.TextureFormatBGRA8Unorm, wgpu.TextureFormatBGRA8UnormSrgb:
		return true
	}
	return false
}

type compositorImpl struct {
	mu      sync.Mutex
	surface Surface
	width   int
	height  int
	logger  log.Logger
}

// Compositor presents frames onto one surface.
type Compositor interface {
	// Surface returns the bound surface.
	Surface() Surface

	// Size returns the output size frames must be rendered at.
	Size() (int, int)

	// Composite presents the final image.
	//
	// Parameters:
	//   - src: the post-process output, sized to the surface
	//
	// Returns:
	//   - error: ErrIncompatibleSurface when src does not match the surface
	Composite(src target.Reader) error
}

var _ Compositor = &compositorImpl{}

// NewCompositor binds a surface after checking it can receive width x height frames.
//
// Parameters:
//   - surface: the display surface
//   - width, height: the renderer's output size
//
// Returns:
//   - Compositor: the compositor
//   - error: ErrIncompatibleSurface on a size or format mismatch
func NewCompositor(surface Surface, width, height int) (Compositor, error) {
	if err := Check(surface, width, height); err != nil {
		return nil, err
	}
	return &compositorImpl{
		surface: surface,
		width:   width,
		height:  height,
		logger:  log.New("compositor"),
	}, nil
}

// Check validates that surface can receive width x height frames.
func Check(surface Surface, width, height int) error {
	if surface == nil {
		return fmt.Errorf("%w: no surface", ErrIncompatibleSurface)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: output size %dx%d", ErrIncompatibleSurface, width, height)
	}
	if surface.Width() != width || surface.Height() != height {
		return fmt.Errorf("%w: surface is %dx%d, output is %dx%d",
			ErrIncompatibleSurface, surface.Width(), surface.Height(), width, height)
	}
	if !SupportsFormat(surface.Format()) {
		return fmt.Errorf("%w: format %v", ErrIncompatibleSurface, surface.Format())
	}
	return nil
}

func (c *compositorImpl) Surface() Surface {
	return c.surface
}

func (c *compositorImpl) Size() (int, int) {
	return c.width, c.height
}

func (c *compositorImpl) Composite(src target.Reader) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !src.Valid() {
		return fmt.Errorf("%w: no image", ErrIncompatibleSurface)
	}
	if src.Width() != c.width || src.Height() != c.height {
		return fmt.Errorf("%w: image is %dx%d, surface is %dx%d",
			ErrIncompatibleSurface, src.Width(), src.Height(), c.width, c.height)
	}
	if err := c.surface.Present(src); err != nil {
		return fmt.Errorf("%w: %w", ErrPresent, err)
	}
	c.logger.Debugf("presented %dx%d %s", c.width, c.height, target.FormatName(src.Format()))
	return nil
}
