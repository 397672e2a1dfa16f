package renderer

import (
	"context"
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/compositor"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/Carmen-Shannon/oxy-render/engine/material"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/postprocess"
	"github.com/Carmen-Shannon/oxy-render/engine/profiler"
	"github.com/Carmen-Shannon/oxy-render/engine/target"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	outW = 32
	outH = 24
)

func newRenderer(t *testing.T, options ...RendererBuilderOption) Renderer {
	t.Helper()
	base := []RendererBuilderOption{
		WithOutputSize(outW, outH),
		WithWorkers(2),
		WithShadowQuality(light.ShadowQualityLow),
	}
	r, err := NewRenderer(append(base, options...)...)
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return r
}

func item(name string, mesh *model.Mesh, pos common.Vec3, mat material.Material) model.DrawItem {
	var world [16]float32
	common.BuildModelMatrix(world[:], pos, common.Vec3{}, common.Vec3{1, 1, 1})
	return model.DrawItem{Label: name, Mesh: mesh, World: world, Material: mat}
}

func testFrame(t *testing.T) Frame {
	t.Helper()
	cam, err := camera.NewState(common.Vec3{0, 3, 6}, common.Vec3{0, 0, 0}, common.Vec3{0, 1, 0}, common.Radians(60), float32(outW)/outH, 0.1, 100)
	require.NoError(t, err)
	gray := material.NewMaterial(material.WithName("gray"), material.WithBaseColor(common.Vec4{0.8, 0.8, 0.8, 1}))
	red := material.NewMaterial(material.WithName("red"), material.WithBaseColor(common.Vec4{1, 0.2, 0.2, 1}))
	return Frame{
		Camera: cam,
		Light: light.State{
			Type:         light.LightTypeDirectional,
			Direction:    common.Vec3{-0.3, -1, -0.4}.Normalize(),
			Color:        common.Vec3{1, 1, 1},
			Intensity:    2,
			CastsShadows: true,
		},
		Items: []model.DrawItem{
			item("ground", model.NewPlane("ground", 20, 1), common.Vec3{}, gray),
			item("cube", model.NewCube("cube", 1), common.Vec3{0, 0.5, 0}, red),
		},
		Index: 1,
	}
}

func hasTiming(res *FrameResult, pass string) bool {
	for _, t := range res.Timings {
		if t.Pass == pass {
			return true
		}
	}
	return false
}

func TestNewRendererRejectsInvalidConfig(t *testing.T) {
	badPost := postprocess.DefaultConfig()
	badPost.Grading.Gamma = common.Vec3{1, 0, 1}

	tests := []struct {
		name    string
		options []RendererBuilderOption
		want    string
	}{
		{"size", []RendererBuilderOption{WithOutputSize(0, 10)}, "output size"},
		{"scale", []RendererBuilderOption{WithRenderScale(0)}, "render scale"},
		{"splits", []RendererBuilderOption{WithCascadeSplits(0.5, 0.2)}, "shadows"},
		{"too many splits", []RendererBuilderOption{WithCascadeSplits(0.1, 0.2, 0.3, 0.4, 1)}, "shadows"},
		{"gamma", []RendererBuilderOption{WithPostProcess(badPost)}, "grading.gamma[1]"},
		{"nil surface", []RendererBuilderOption{WithSurface(nil)}, "nil surface"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRenderer(tt.options...)
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewRendererReportsEveryError(t *testing.T) {
	_, err := NewRenderer(WithOutputSize(-1, 4), WithRenderScale(10), WithShadowDistance(0))
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "output size")
	assert.Contains(t, err.Error(), "render scale")
	assert.Contains(t, err.Error(), "max distance")
}

func TestNewRendererRejectsMismatchedSurface(t *testing.T) {
	_, err := NewRenderer(WithOutputSize(outW, outH), WithSurface(compositor.NewImageSurface(outW, outH+1)))
	assert.ErrorIs(t, err, compositor.ErrIncompatibleSurface)
}

func TestFrameRendersAndPresents(t *testing.T) {
	surface := compositor.NewImageSurface(outW, outH)
	prof := profiler.NewProfiler()
	r := newRenderer(t, WithSurface(surface), WithProfiler(prof))

	res, err := r.Frame(context.Background(), testFrame(t))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.Index)
	assert.Empty(t, res.Warnings)

	assert.Equal(t, outW, res.Output.Width())
	assert.Equal(t, outH, res.Output.Height())
	assert.Equal(t, target.FormatLDR, res.Output.Format())
	assert.Equal(t, target.FormatHDR, res.HDR.Format())
	assert.Equal(t, light.MaxCascades, res.Cascades.Len())
	assert.Equal(t, light.MaxCascades, res.ShadowMaps.Len())
	assert.Equal(t, 512, res.ShadowMaps.Cascade(0).Width())

	for _, pass := range []string{PassShadow, PassShading, "post.bloom", "post.tonemap", "post.fxaa", PassComposite} {
		assert.True(t, hasTiming(res, pass), pass)
	}
	assert.Len(t, prof.Passes(), len(res.Timings))

	img := surface.Image()
	lit := false
	for _, px := range []int{0, 4 * (outW*outH/2 + outW/2)} {
		if img.Pix[px] > 0 || img.Pix[px+1] > 0 || img.Pix[px+2] > 0 {
			lit = true
		}
	}
	assert.True(t, lit)
	assert.Equal(t, res.Output.ToRGBA().Pix, img.Pix)
}

func TestFrameRenderScale(t *testing.T) {
	r := newRenderer(t, WithRenderScale(0.5))
	iw, ih := r.InternalSize()
	assert.Equal(t, outW/2, iw)
	assert.Equal(t, outH/2, ih)

	res, err := r.Frame(context.Background(), testFrame(t))
	require.NoError(t, err)
	assert.Equal(t, outW/2, res.HDR.Width())
	assert.Equal(t, outW, res.Output.Width())
	assert.True(t, hasTiming(res, "post.resample"))
}

func TestFrameWarnsAndSkipsBadItems(t *testing.T) {
	r := newRenderer(t)
	f := testFrame(t)
	f.Items = append(f.Items, model.DrawItem{Label: "ghost"})
	res, err := r.Frame(context.Background(), f)
	require.NoError(t, err)
	require.NotEmpty(t, res.Warnings)
	for _, w := range res.Warnings {
		assert.Equal(t, "ghost", w.Item)
	}
}

func TestFrameCancelledBeforeStart(t *testing.T) {
	r := newRenderer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Frame(ctx, testFrame(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFrameAbortsOnAllocationFailure(t *testing.T) {
	r := newRenderer(t, WithMaxTexels(1000))
	_, err := r.Frame(context.Background(), testFrame(t))
	require.ErrorIs(t, err, ErrFrameAborted)
	assert.ErrorIs(t, err, target.ErrAllocation)
}

func TestFrameAbortsOnPresentFailure(t *testing.T) {
	lost := errors.New("device lost")
	surface := compositor.NewTextureSurface(failingQueue{lost}, nil, outW, outH, wgpu.TextureFormatBGRA8Unorm)
	r := newRenderer(t, WithSurface(surface))
	_, err := r.Frame(context.Background(), testFrame(t))
	require.ErrorIs(t, err, ErrFrameAborted)
	assert.ErrorIs(t, err, compositor.ErrPresent)
	assert.ErrorIs(t, err, lost)
}

type failingQueue struct{ err error }

func (q failingQueue) WriteTexture(*wgpu.ImageCopyTexture, []byte, *wgpu.TextureDataLayout, *wgpu.Extent3D) error {
	return q.err
}

func TestFrameRejectsInvalidLight(t *testing.T) {
	r := newRenderer(t)
	f := testFrame(t)
	f.Light.Direction = common.Vec3{}
	_, err := r.Frame(context.Background(), f)
	require.ErrorIs(t, err, ErrInvalidFrame)
	assert.ErrorIs(t, err, light.ErrInvalidLight)
}

func TestPointLightRendersWithoutShadows(t *testing.T) {
	r := newRenderer(t)
	f := testFrame(t)
	f.Light = light.State{
		Type:         light.LightTypePoint,
		Position:     common.Vec3{0, 3, 0},
		Color:        common.Vec3{1, 1, 1},
		Intensity:    3,
		Range:        20,
		CastsShadows: true,
	}
	res, err := r.Frame(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Cascades.Len())
	assert.Equal(t, 0, res.ShadowMaps.Len())
}

func TestSetPostProcessConfig(t *testing.T) {
	r := newRenderer(t)
	bad := postprocess.DefaultConfig()
	bad.ToneMap.Exposure = 0
	require.ErrorIs(t, r.SetPostProcessConfig(bad), ErrInvalidConfig)
	assert.Equal(t, float32(1), r.PostProcessConfig().ToneMap.Exposure)

	cfg := postprocess.DefaultConfig()
	cfg.Bloom.Enabled = false
	cfg.FXAA.Enabled = false
	require.NoError(t, r.SetPostProcessConfig(cfg))

	res, err := r.Frame(context.Background(), testFrame(t))
	require.NoError(t, err)
	assert.False(t, hasTiming(res, "post.bloom"))
	assert.True(t, hasTiming(res, "post.tonemap"))
}

func TestResize(t *testing.T) {
	r := newRenderer(t, WithSurface(compositor.NewImageSurface(outW, outH)))
	assert.ErrorIs(t, r.Resize(0, 4), ErrInvalidConfig)
	assert.ErrorIs(t, r.Resize(64, 64), compositor.ErrIncompatibleSurface)
	w, h := r.Size()
	assert.Equal(t, outW, w)
	assert.Equal(t, outH, h)

	plain := newRenderer(t)
	require.NoError(t, plain.Resize(16, 8))
	w, h = plain.Size()
	assert.Equal(t, 16, w)
	assert.Equal(t, 8, h)
}

func TestDebugCascadesTintsOutput(t *testing.T) {
	cfg := postprocess.DefaultConfig()
	cfg.Bloom.Enabled = false
	cfg.FXAA.Enabled = false

	plain := newRenderer(t, WithPostProcess(cfg))
	base, err := plain.Frame(context.Background(), testFrame(t))
	require.NoError(t, err)
	basePix := base.Output.ToRGBA().Pix

	tinted := newRenderer(t, WithPostProcess(cfg))
	tinted.SetDebugCascades(true)
	res, err := tinted.Frame(context.Background(), testFrame(t))
	require.NoError(t, err)
	assert.NotEqual(t, basePix, res.Output.ToRGBA().Pix)
}

func TestClosedRenderer(t *testing.T) {
	r, err := NewRenderer(WithOutputSize(8, 8), WithWorkers(1))
	require.NoError(t, err)
	r.Close()
	r.Close()
	_, err = r.Frame(context.Background(), testFrame(t))
	assert.ErrorIs(t, err, ErrClosed)
}
