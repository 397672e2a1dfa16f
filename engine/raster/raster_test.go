package raster

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(tris []Triangle, height int) []Fragment {
	var out []Fragment
	for i := range tris {
		tris[i].Rasterize(0, height, func(f Fragment) { out = append(out, f) })
	}
	return out
}

func TestFullScreenTriangleCoversViewport(t *testing.T) {
	tris := Setup([3]common.Vec4{
		{-1, -1, 0.5, 1},
		{3, -1, 0.5, 1},
		{-1, 3, 0.5, 1},
	}, 4, 4)
	require.Len(t, tris, 1)

	frags := collect(tris, 4)
	assert.Len(t, frags, 16)
	for _, f := range frags {
		assert.InDelta(t, 0.5, f.Depth, 1e-6)
		assert.InDelta(t, 1, f.Bary[0]+f.Bary[1]+f.Bary[2], 1e-5)
	}
}

func TestWindingDoesNotCull(t *testing.T) {
	ccw := Setup([3]common.Vec4{{-1, -1, 0, 1}, {1, -1, 0, 1}, {-1, 1, 0, 1}}, 8, 8)
	cw := Setup([3]common.Vec4{{-1, -1, 0, 1}, {-1, 1, 0, 1}, {1, -1, 0, 1}}, 8, 8)
	assert.Equal(t, len(collect(ccw, 8)), len(collect(cw, 8)))
	assert.NotEmpty(t, collect(cw, 8))
}

func TestBehindNearPlaneIsClipped(t *testing.T) {
	tris := Setup([3]common.Vec4{{-1, -1, -0.5, 1}, {1, -1, -0.5, 1}, {0, 1, -0.1, 1}}, 4, 4)
	assert.Empty(t, tris)
}

func TestNearClipProducesTwoTriangles(t *testing.T) {
	// one vertex behind the near plane leaves a quad.
	tris := Setup([3]common.Vec4{{-1, -1, 0.5, 1}, {1, -1, 0.5, 1}, {0, 1, -0.5, 1}}, 8, 8)
	assert.Len(t, tris, 2)
	for _, f := range collect(tris, 8) {
		assert.GreaterOrEqual(t, f.Depth, float32(-1e-6))
	}
}

func TestBandsPartitionFragments(t *testing.T) {
	tris := Setup([3]common.Vec4{{-1, -1, 0, 1}, {1, -1, 0, 1}, {0, 1, 0, 1}}, 16, 16)
	whole := collect(tris, 16)

	var banded []Fragment
	for y := 0; y < 16; y += 5 {
		for i := range tris {
			tris[i].Rasterize(y, min(y+5, 16), func(f Fragment) { banded = append(banded, f) })
		}
	}
	assert.ElementsMatch(t, whole, banded)
}

func TestPerspectiveCorrectInterpolation(t *testing.T) {
	// Vertex 0 is far (w=4) and vertices 1,2 are near (w=1). Linear screen
	// interpolation would weight vertex 0 by its screen-space share; the
	// perspective-correct weight must be smaller.
	tris := Setup([3]common.Vec4{
		{-4, -4, 2, 4},
		{1, -1, 0.5, 1},
		{-1, 1, 0.5, 1},
	}, 32, 32)
	require.NotEmpty(t, tris)
	frags := collect(tris, 32)
	require.NotEmpty(t, frags)

	var screenShare, perspShare float32
	for _, f := range frags {
		b := &tris[0].v[1]
		c := &tris[0].v[2]
		px, py := float32(f.X)+0.5, float32(f.Y)+0.5
		screenShare += edge(b.x, b.y, c.x, c.y, px, py) / tris[0].area
		perspShare += f.Bary[0]
	}
	assert.Less(t, perspShare, screenShare)
}

func TestInterpolate(t *testing.T) {
	b := common.Vec3{0.25, 0.25, 0.5}
	assert.Equal(t, common.Vec3{0.25, 0.25, 0.5}, Interpolate3(b, common.Vec3{1, 0, 0}, common.Vec3{0, 1, 0}, common.Vec3{0, 0, 1}))
	assert.Equal(t, [2]float32{0.75, 0.5}, Interpolate2(b, [2]float32{1, 0}, [2]float32{0, 0}, [2]float32{1, 1}))
}
