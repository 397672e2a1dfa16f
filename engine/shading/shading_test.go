package shading

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/dispatch"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/Carmen-Shannon/oxy-render/engine/material"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const size = 64

func newPass(t *testing.T) ShadingPass {
	t.Helper()
	d := dispatch.NewDispatcher(dispatch.WithWorkers(3))
	t.Cleanup(d.Close)
	return NewShadingPass(target.NewPool(0), d)
}

func frontParams(t *testing.T) Params {
	t.Helper()
	cam, err := camera.NewState(common.Vec3{0, 0, 5}, common.Vec3{}, common.Vec3{0, 1, 0}, common.Radians(60), 1, 0.1, 100)
	require.NoError(t, err)
	return Params{
		Camera: cam,
		Light: light.State{
			Type:      light.LightTypeDirectional,
			Direction: common.Vec3{0, 0, -1},
			Color:     common.Vec3{1, 1, 1},
			Intensity: 1,
		},
		ClearColor: common.Vec4{0, 0, 0, 1},
	}
}

func quadAt(name string, z float32, mat material.Material) model.DrawItem {
	var world [16]float32
	common.BuildModelMatrix(world[:], common.Vec3{0, 0, z}, common.Vec3{}, common.Vec3{1, 1, 1})
	return model.DrawItem{Label: name, Mesh: model.NewQuad(name, 2, 2), World: world, Material: mat}
}

func newHDR(t *testing.T) *target.Target {
	t.Helper()
	out, err := target.New("hdr", size, size, target.FormatHDR)
	require.NoError(t, err)
	return out
}

func TestEmptyDrawListClears(t *testing.T) {
	out := newHDR(t)
	p := frontParams(t)
	p.ClearColor = common.Vec4{0.2, 0.3, 0.4, 1}
	_, warnings, err := newPass(t).Render(p, nil, out.Writer())
	require.NoError(t, err)
	assert.Empty(t, warnings)
	got := out.Reader().Load(10, 10)
	assert.InDelta(t, 0.2, got[0], 1e-3)
	assert.InDelta(t, 0.4, got[2], 1e-3)
}

func TestLitQuadFacingLight(t *testing.T) {
	out := newHDR(t)
	mat := material.NewMaterial(material.WithBaseColor(common.Vec4{0.5, 0.5, 0.5, 1}))
	depth, warnings, err := newPass(t).Render(frontParams(t), []model.DrawItem{quadAt("quad", 0, mat)}, out.Writer())
	require.NoError(t, err)
	require.Empty(t, warnings)

	// diffuse 0.5 plus a near-full specular highlight at the center.
	c := out.Reader().LoadRGB(size/2, size/2)
	assert.InDelta(t, 1.5, c[0], 0.05)
	assert.Less(t, depth.Reader().Depth(size/2, size/2), float32(1))

	corner := out.Reader().LoadRGB(0, 0)
	assert.Equal(t, common.Vec3{0, 0, 0}, corner)
}

func TestNearestSurfaceWins(t *testing.T) {
	out := newHDR(t)
	red := material.NewMaterial(material.WithBaseColor(common.Vec4{1, 0, 0, 1}))
	green := material.NewMaterial(material.WithBaseColor(common.Vec4{0, 1, 0, 1}))
	items := []model.DrawItem{quadAt("near", 1, red), quadAt("far", -1, green)}
	_, _, err := newPass(t).Render(frontParams(t), items, out.Writer())
	require.NoError(t, err)

	c := out.Reader().LoadRGB(size/2, size/2)
	assert.Greater(t, c[0], float32(1))
	assert.InDelta(t, c[0]-1, c[1], 0.05, "only specular reaches the green channel")
}

func TestBlendedItemMixesOverOpaque(t *testing.T) {
	out := newHDR(t)
	green := material.NewMaterial(material.WithBaseColor(common.Vec4{0, 1, 0, 1}))
	glass := material.NewMaterial(
		material.WithBaseColor(common.Vec4{1, 0, 0, 0.5}),
		material.WithAlphaMode(material.AlphaModeBlend),
	)
	p := frontParams(t)
	p.Light.Intensity = 0
	p.ClearColor = common.Vec4{0, 0, 1, 1}
	items := []model.DrawItem{quadAt("glass", 1, glass), quadAt("wall", -1, green)}
	_, _, err := newPass(t).Render(p, items, out.Writer())
	require.NoError(t, err)

	// with no direct light every surface shades to black.
	c := out.Reader().LoadRGB(size/2, size/2)
	assert.InDelta(t, 0, c[2], 1e-3)
	edge := out.Reader().LoadRGB(0, 0)
	assert.InDelta(t, 1, edge[2], 1e-3)

	// the nearer glass overhangs the wall; there it halves the clear color.
	ring := out.Reader().LoadRGB(43, size/2)
	assert.InDelta(t, 0.5, ring[2], 1e-3)
}

func TestSkippedItemsWarn(t *testing.T) {
	out := newHDR(t)
	mat := material.NewMaterial()
	items := []model.DrawItem{
		{Label: "nomesh", Material: mat},
		quadAt("nomat", 0, nil),
		{Label: "flat", Mesh: model.NewQuad("q", 1, 1), Material: mat},
	}
	_, warnings, err := newPass(t).Render(frontParams(t), items, out.Writer())
	require.NoError(t, err)
	require.Len(t, warnings, 3)
	assert.Equal(t, "missing mesh", warnings[0].Reason)
	assert.Equal(t, "missing material", warnings[1].Reason)
	assert.Equal(t, "degenerate transform", warnings[2].Reason)
	assert.Equal(t, common.Vec3{0, 0, 0}, out.Reader().LoadRGB(size/2, size/2))
}

func TestLighting(t *testing.T) {
	albedo := common.Vec3{1, 1, 1}
	n := common.Vec3{0, 1, 0}
	up := common.Vec3{0, 1, 0}
	c, nDotL := Lighting(albedo, n, up, up, common.Vec3{1, 1, 1})
	assert.Equal(t, float32(1), nDotL)
	assert.InDelta(t, 2, c[0], 1e-5)

	c, nDotL = Lighting(albedo, n, up, common.Vec3{0, -1, 0}, common.Vec3{1, 1, 1})
	assert.Equal(t, float32(-1), nDotL)
	assert.Equal(t, common.Vec3{}, c)
}

func TestDebugCascadeTint(t *testing.T) {
	assert.Len(t, CascadeTints, light.MaxCascades)
	for _, tint := range CascadeTints {
		assert.Greater(t, tint.Length(), float32(0))
	}
}
