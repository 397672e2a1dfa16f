package debug

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/Carmen-Shannon/oxy-render/engine/material"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
	"github.com/Carmen-Shannon/oxy-render/engine/target"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewHDR(t *testing.T) {
	hdr, err := target.New("hdr", 2, 1, target.FormatHDR)
	require.NoError(t, err)
	w := hdr.Writer()
	w.Store(0, 0, common.Vec4{1, 0, 3, 1})
	w.Store(1, 0, common.Vec4{-2, 0, 0, 0.5})

	img := Preview(hdr.Reader(), 1)
	// Reinhard maps 1 to 0.5, sRGB encodes 0.5 to 0.7354.
	assert.Equal(t, uint8(188), img.RGBAAt(0, 0).R)
	assert.Equal(t, uint8(0), img.RGBAAt(0, 0).G)
	assert.Greater(t, img.RGBAAt(0, 0).B, img.RGBAAt(0, 0).R)
	assert.Equal(t, uint8(0), img.RGBAAt(1, 0).R)
	assert.Equal(t, uint8(128), img.RGBAAt(1, 0).A)

	brighter := Preview(hdr.Reader(), 4)
	assert.Greater(t, brighter.RGBAAt(0, 0).R, img.RGBAAt(0, 0).R)
}

func TestPreviewLDRIsUnchanged(t *testing.T) {
	ldr, err := target.New("ldr", 3, 2, target.FormatLDR)
	require.NoError(t, err)
	ldr.Writer().Clear(common.Vec4{0.2, 0.4, 0.6, 1})
	assert.Equal(t, ldr.Reader().ToRGBA(), Preview(ldr.Reader(), 8))
}

func TestDepthImageStretchesRange(t *testing.T) {
	depth, err := target.New("depth", 4, 1, target.FormatDepth)
	require.NoError(t, err)
	w := depth.Writer()
	w.Clear(common.Vec4{1, 1, 1, 1})
	w.StoreDepth(0, 0, 0.2)
	w.StoreDepth(1, 0, 0.3)
	w.StoreDepth(2, 0, 0.4)

	img := DepthImage(depth.Reader())
	assert.Equal(t, color.Gray{Y: 0}, img.GrayAt(0, 0))
	assert.InDelta(t, 128, int(img.GrayAt(1, 0).Y), 1)
	assert.Equal(t, color.Gray{Y: 255}, img.GrayAt(2, 0))
	assert.Equal(t, color.Gray{Y: 255}, img.GrayAt(3, 0))
}

func TestThumbnail(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 50))
	assert.Equal(t, image.Rect(0, 0, 20, 10), Thumbnail(src, 20).Bounds())
	assert.Equal(t, image.Rect(0, 0, 5, 10), Thumbnail(image.NewRGBA(image.Rect(0, 0, 50, 100)), 10).Bounds())
	assert.Same(t, src, Thumbnail(src, 0))
	assert.Same(t, src, Thumbnail(src, 200))
}

func TestCascadeAtlasEmpty(t *testing.T) {
	assert.Nil(t, CascadeAtlas(nil, 16))
}

func renderFrame(t *testing.T) *renderer.FrameResult {
	t.Helper()
	r, err := renderer.NewRenderer(
		renderer.WithOutputSize(24, 16),
		renderer.WithWorkers(2),
		renderer.WithShadowQuality(light.ShadowQualityLow),
	)
	require.NoError(t, err)
	t.Cleanup(r.Close)

	cam, err := camera.NewState(common.Vec3{0, 3, 6}, common.Vec3{}, common.Vec3{0, 1, 0}, common.Radians(60), 1.5, 0.1, 100)
	require.NoError(t, err)
	mat := material.NewMaterial(material.WithBaseColor(common.Vec4{0.8, 0.8, 0.8, 1}))
	ground := model.NewModel(model.WithName("ground"), model.WithMesh(model.NewPlane("ground", 10, 1)), model.WithMaterial(mat))
	box := model.NewModel(model.WithName("box"), model.WithMesh(model.NewCube("box", 1)), model.WithMaterial(mat), model.WithPosition(common.Vec3{0, 0.5, 0}))

	res, err := r.Frame(context.Background(), renderer.Frame{
		Camera: cam,
		Light: light.State{
			Type:         light.LightTypeDirectional,
			Direction:    common.Vec3{-0.3, -1, -0.4}.Normalize(),
			Color:        common.Vec3{1, 1, 1},
			Intensity:    2,
			CastsShadows: true,
		},
		Items: []model.DrawItem{ground.DrawItem(), box.DrawItem()},
		Index: 3,
	})
	require.NoError(t, err)
	return res
}

func TestDumperWritesFrame(t *testing.T) {
	res := renderFrame(t)
	dir := filepath.Join(t.TempDir(), "dump")
	d, err := NewDumper(dir, WithPrefix("test"), WithCascadeTile(32))
	require.NoError(t, err)

	paths, err := d.Dump(res)
	require.NoError(t, err)
	require.Len(t, paths, 3)
	assert.Equal(t, filepath.Join(dir, "test0003_output.png"), paths[0])

	out, err := imgio.Open(paths[0])
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 24, 16), out.Bounds())

	atlas, err := imgio.Open(paths[2])
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32*res.ShadowMaps.Len(), 32), atlas.Bounds())
}

func TestDumperThumbnails(t *testing.T) {
	res := renderFrame(t)
	d, err := NewDumper(t.TempDir(), WithThumbnail(12))
	require.NoError(t, err)
	paths, err := d.Dump(res)
	require.NoError(t, err)
	for _, p := range paths {
		img, err := imgio.Open(p)
		require.NoError(t, err)
		b := img.Bounds()
		assert.LessOrEqual(t, max(b.Dx(), b.Dy()), 12, p)
		_, err = os.Stat(p)
		assert.NoError(t, err)
	}
}
