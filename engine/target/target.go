// Package target implements the render targets every pass reads and writes,
// the read/write handles that keep ping-pong buffers from aliasing, and a
// pool that reuses targets across frames.
package target

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"
)

// Formats a Target can hold.
const (
	// FormatHDR is the linear float color format used before tone mapping.
	FormatHDR = wgpu.TextureFormatRGBA16Float
	// FormatLDR is the 8-bit display-referred color format used after tone mapping.
	FormatLDR = wgpu.TextureFormatRGBA8Unorm
	// FormatDepth is the single channel depth format used by depth buffers and shadow maps.
	FormatDepth = wgpu.TextureFormatDepth32Float
)

// halfMax is the largest finite RGBA16Float value.
const halfMax = 65504

var (
	// ErrInvalidSize is returned for zero or negative target dimensions.
	ErrInvalidSize = errors.New("target: invalid size")
	// ErrUnsupportedFormat is returned for formats a Target cannot hold.
	ErrUnsupportedFormat = errors.New("target: unsupported format")
	// ErrAllocation is returned when a target cannot be allocated.
	ErrAllocation = errors.New("target: allocation failed")
)

// Target is a 2D image owned by the pipeline. Pixel access goes through
// Reader and Writer handles.
type Target struct {
	name     string
	width    int
	height   int
	format   wgpu.TextureFormat
	channels int
	pix      []float32
}

// New allocates a target.
//
// Parameters:
//   - name: debug label
//   - width, height: dimensions in texels, both must be positive
//   - format: one of FormatHDR, FormatLDR or FormatDepth
//
// Returns:
//   - *Target: the zero-initialized target
//   - error: ErrInvalidSize or ErrUnsupportedFormat
func New(name string, width, height int, format wgpu.TextureFormat) (*Target, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %s is %dx%d", ErrInvalidSize, name, width, height)
	}
	ch := Channels(format)
	if ch == 0 {
		return nil, fmt.Errorf("%w: %s uses %v", ErrUnsupportedFormat, name, format)
	}
	return &Target{
		name:     name,
		width:    width,
		height:   height,
		format:   format,
		channels: ch,
		pix:      make([]float32, width*height*ch),
	}, nil
}

// Channels returns the stored channel count of a supported format, or 0.
func Channels(format wgpu.TextureFormat) int {
	switch format {
	case FormatHDR, FormatLDR:
		return 4
	case FormatDepth:
		return 1
	}
	return 0
}

// FormatName returns a short label for a supported format.
func FormatName(format wgpu.TextureFormat) string {
	switch format {
	case FormatHDR:
		return "rgba16float"
	case FormatLDR:
		return "rgba8unorm"
	case FormatDepth:
		return "depth32float"
	}
	return fmt.Sprintf("format(%d)", format)
}

func (t *Target) Name() string               { return t.name }
func (t *Target) Width() int                 { return t.width }
func (t *Target) Height() int                { return t.height }
func (t *Target) Format() wgpu.TextureFormat { return t.format }

// Bytes returns the GPU-side footprint of the target.
func (t *Target) Bytes() int {
	switch t.format {
	case FormatHDR:
		return t.width * t.height * 8
	default:
		return t.width * t.height * 4
	}
}

// Reader returns a read-only handle.
func (t *Target) Reader() Reader { return Reader{t: t} }

// Writer returns a write handle. A stage holds it exclusively for its duration.
func (t *Target) Writer() Writer { return Writer{t: t} }

// Reader is a read-only view of a Target.
type Reader struct {
	t *Target
}

// Valid reports whether the reader refers to a target.
func (r Reader) Valid() bool { return r.t != nil }

// Target returns the underlying target.
func (r Reader) Target() *Target { return r.t }

func (r Reader) Width() int                 { return r.t.width }
func (r Reader) Height() int                { return r.t.height }
func (r Reader) Format() wgpu.TextureFormat { return r.t.format }

// Load returns the texel at (x, y), clamping coordinates to the edge.
// Depth targets return the depth in every channel.
func (r Reader) Load(x, y int) common.Vec4 {
	x = clampInt(x, 0, r.t.width-1)
	y = clampInt(y, 0, r.t.height-1)
	if r.t.channels == 1 {
		d := r.t.pix[y*r.t.width+x]
		return common.Vec4{d, d, d, 1}
	}
	i := (y*r.t.width + x) * 4
	p := r.t.pix[i : i+4 : i+4]
	return common.Vec4{p[0], p[1], p[2], p[3]}
}

// LoadRGB returns the color channels of the texel at (x, y), clamped to the edge.
func (r Reader) LoadRGB(x, y int) common.Vec3 {
	c := r.Load(x, y)
	return common.Vec3{c[0], c[1], c[2]}
}

// Depth returns the depth stored at (x, y), clamped to the edge.
func (r Reader) Depth(x, y int) float32 {
	x = clampInt(x, 0, r.t.width-1)
	y = clampInt(y, 0, r.t.height-1)
	return r.t.pix[(y*r.t.width+x)*r.t.channels]
}

// Sample bilinearly filters the target at normalized coordinates with
// clamp-to-edge addressing. (0,0) is the top-left corner of the first texel.
func (r Reader) Sample(u, v float32) common.Vec4 {
	fx := u*float32(r.t.width) - 0.5
	fy := v*float32(r.t.height) - 0.5
	x0f := math32.Floor(fx)
	y0f := math32.Floor(fy)
	tx := fx - x0f
	ty := fy - y0f
	x0, y0 := int(x0f), int(y0f)

	c00 := r.Load(x0, y0)
	c10 := r.Load(x0+1, y0)
	c01 := r.Load(x0, y0+1)
	c11 := r.Load(x0+1, y0+1)
	var out common.Vec4
	for i := 0; i < 4; i++ {
		out[i] = common.Mix(common.Mix(c00[i], c10[i], tx), common.Mix(c01[i], c11[i], tx), ty)
	}
	return out
}

// SampleRGB is Sample without the alpha channel.
func (r Reader) SampleRGB(u, v float32) common.Vec3 {
	c := r.Sample(u, v)
	return common.Vec3{c[0], c[1], c[2]}
}

// Writer is the exclusive write handle of a Target.
type Writer struct {
	t *Target
}

// Target returns the underlying target.
func (w Writer) Target() *Target { return w.t }

func (w Writer) Width() int  { return w.t.width }
func (w Writer) Height() int { return w.t.height }

// Reader returns a read view of the written target, for read-modify-write
// within one texel.
func (w Writer) Reader() Reader { return Reader{t: w.t} }

// Store writes a color texel. Values are converted to the target's storage
// precision: LDR quantizes to 1/255 in [0,1], HDR clamps to the half-float
// range. Non-finite values store as 0.
func (w Writer) Store(x, y int, c common.Vec4) {
	if x < 0 || y < 0 || x >= w.t.width || y >= w.t.height {
		return
	}
	if w.t.channels == 1 {
		w.t.pix[y*w.t.width+x] = sanitize(c[0], halfMax)
		return
	}
	i := (y*w.t.width + x) * 4
	p := w.t.pix[i : i+4 : i+4]
	switch w.t.format {
	case FormatLDR:
		for k := 0; k < 4; k++ {
			p[k] = math32.Round(common.Saturate(sanitize(c[k], 1))*255) / 255
		}
	default:
		for k := 0; k < 4; k++ {
			p[k] = sanitize(c[k], halfMax)
		}
	}
}

// StoreRGB writes a color texel with alpha 1.
func (w Writer) StoreRGB(x, y int, c common.Vec3) {
	w.Store(x, y, common.Vec4{c[0], c[1], c[2], 1})
}

// StoreDepth writes a depth texel.
func (w Writer) StoreDepth(x, y int, d float32) {
	if x < 0 || y < 0 || x >= w.t.width || y >= w.t.height {
		return
	}
	w.t.pix[(y*w.t.width+x)*w.t.channels] = d
}

// Clear fills every texel with c.
func (w Writer) Clear(c common.Vec4) {
	if w.t.channels == 1 {
		for i := range w.t.pix {
			w.t.pix[i] = c[0]
		}
		return
	}
	w.Store(0, 0, c)
	first := [4]float32(w.t.pix[0:4])
	for i := 4; i < len(w.t.pix); i += 4 {
		copy(w.t.pix[i:i+4], first[:])
	}
}

// CopyFrom copies a same-sized source into the target texel by texel.
func (w Writer) CopyFrom(r Reader) error {
	if r.t.width != w.t.width || r.t.height != w.t.height {
		return fmt.Errorf("%w: copy %dx%d into %dx%d", ErrInvalidSize, r.t.width, r.t.height, w.t.width, w.t.height)
	}
	if Aliases(r, w) {
		return nil
	}
	for y := 0; y < w.t.height; y++ {
		for x := 0; x < w.t.width; x++ {
			w.Store(x, y, r.Load(x, y))
		}
	}
	return nil
}

// Aliases reports whether a reader and a writer refer to the same target.
func Aliases(r Reader, w Writer) bool {
	return r.t != nil && r.t == w.t
}

func sanitize(v, limit float32) float32 {
	if math32.IsNaN(v) {
		return 0
	}
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
