package compositor

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/target"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSurface struct {
	w, h   int
	format wgpu.TextureFormat
	frames int
}

func (f *fakeSurface) Width() int                      { return f.w }
func (f *fakeSurface) Height() int                     { return f.h }
func (f *fakeSurface) Format() wgpu.TextureFormat      { return f.format }
func (f *fakeSurface) Present(src target.Reader) error { f.frames++; return nil }

type recordingQueue struct {
	err    error
	data   []byte
	layout wgpu.TextureDataLayout
	size   wgpu.Extent3D
}

func (q *recordingQueue) WriteTexture(_ *wgpu.ImageCopyTexture, data []byte, layout *wgpu.TextureDataLayout, size *wgpu.Extent3D) error {
	if q.err != nil {
		return q.err
	}
	q.data = append(q.data[:0], data...)
	q.layout = *layout
	q.size = *size
	return nil
}

func solid(t *testing.T, w, h int, c common.Vec4) *target.Target {
	t.Helper()
	img, err := target.New("final", w, h, target.FormatLDR)
	require.NoError(t, err)
	img.Writer().Clear(c)
	return img
}

func TestCompositorMismatchIsSetupError(t *testing.T) {
	tests := []struct {
		name    string
		surface Surface
		w, h    int
	}{
		{"nil surface", nil, 4, 4},
		{"zero size", &fakeSurface{w: 0, h: 0, format: wgpu.TextureFormatRGBA8Unorm}, 0, 0},
		{"size", &fakeSurface{w: 8, h: 4, format: wgpu.TextureFormatRGBA8Unorm}, 4, 4},
		{"format", &fakeSurface{w: 4, h: 4, format: wgpu.TextureFormatRGBA16Float}, 4, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCompositor(tt.surface, tt.w, tt.h)
			assert.ErrorIs(t, err, ErrIncompatibleSurface)
		})
	}
}

func TestCompositePresents(t *testing.T) {
	s := &fakeSurface{w: 4, h: 2, format: wgpu.TextureFormatBGRA8UnormSrgb}
	c, err := NewCompositor(s, 4, 2)
	require.NoError(t, err)
	w, h := c.Size()
	assert.Equal(t, 4, w)
	assert.Equal(t, 2, h)

	require.NoError(t, c.Composite(solid(t, 4, 2, common.Vec4{1, 0, 0, 1}).Reader()))
	assert.Equal(t, 1, s.frames)

	err = c.Composite(solid(t, 2, 2, common.Vec4{1, 0, 0, 1}).Reader())
	assert.ErrorIs(t, err, ErrIncompatibleSurface)
	assert.Equal(t, 1, s.frames)
}

func TestImageSurface(t *testing.T) {
	s := NewImageSurface(3, 3)
	c, err := NewCompositor(s, 3, 3)
	require.NoError(t, err)
	require.NoError(t, c.Composite(solid(t, 3, 3, common.Vec4{0, 1, 0, 1}).Reader()))

	img := s.Image()
	px := img.RGBAAt(1, 1)
	assert.Equal(t, uint8(0), px.R)
	assert.Equal(t, uint8(255), px.G)
	assert.Equal(t, uint8(255), px.A)
}

func TestPackSwizzlesBGRA(t *testing.T) {
	src := solid(t, 2, 1, common.Vec4{1, 0, 0.2, 1}).Reader()

	rgba := Pack(src, wgpu.TextureFormatRGBA8Unorm, nil)
	assert.Equal(t, []byte{255, 0, 51, 255, 255, 0, 51, 255}, rgba)

	bgra := Pack(src, wgpu.TextureFormatBGRA8Unorm, rgba)
	assert.Equal(t, []byte{51, 0, 255, 255, 51, 0, 255, 255}, bgra)
}

func TestSupportsFormat(t *testing.T) {
	assert.True(t, SupportsFormat(wgpu.TextureFormatRGBA8Unorm))
	assert.True(t, SupportsFormat(wgpu.TextureFormatBGRA8UnormSrgb))
	assert.False(t, SupportsFormat(wgpu.TextureFormatDepth32Float))
}

func TestTextureSurfaceUploads(t *testing.T) {
	q := &recordingQueue{}
	s := NewTextureSurface(q, nil, 3, 2, wgpu.TextureFormatRGBA8Unorm)
	c, err := NewCompositor(s, 3, 2)
	require.NoError(t, err)

	require.NoError(t, c.Composite(solid(t, 3, 2, common.Vec4{0, 1, 0, 1}).Reader()))
	require.Len(t, q.data, 3*2*4)
	assert.Equal(t, []byte{0, 255, 0, 255}, q.data[:4])
	assert.Equal(t, uint32(12), q.layout.BytesPerRow)
	assert.Equal(t, uint32(2), q.layout.RowsPerImage)
	assert.Equal(t, wgpu.Extent3D{Width: 3, Height: 2, DepthOrArrayLayers: 1}, q.size)
}

func TestTextureSurfaceWriteFailure(t *testing.T) {
	lost := errors.New("device lost")
	s := NewTextureSurface(&recordingQueue{err: lost}, nil, 2, 2, wgpu.TextureFormatRGBA8Unorm)
	c, err := NewCompositor(s, 2, 2)
	require.NoError(t, err)

	err = c.Composite(solid(t, 2, 2, common.Vec4{1, 1, 1, 1}).Reader())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPresent)
	assert.ErrorIs(t, err, lost)
	assert.Contains(t, err.Error(), "2x2")
}
