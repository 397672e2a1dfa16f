// Package raster converts clip-space triangles into fragments. It clips
// against the near plane, maps to the viewport and interpolates attributes
// with perspective correction. No face culling is applied.
package raster

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/chewxy/math32"
)

// Fragment is one covered texel of a triangle.
type Fragment struct {
	// X and Y are the texel coordinates, Y growing downward.
	X, Y int
	// Depth is the post-divide clip depth, 0 at the near plane.
	Depth float32
	// Bary holds perspective-correct barycentric weights relative to the
	// three vertices originally passed to Setup.
	Bary common.Vec3
}

// FragmentFunc receives fragments in row-major order within a band.
type FragmentFunc func(f Fragment)

type screenVertex struct {
	x, y float32
	z    float32 // z/w
	invW float32
	bary common.Vec3 // weights of the source triangle
}

// Triangle is a set-up screen-space triangle, ready to be rasterized by any
// number of row bands concurrently.
type Triangle struct {
	v                      [3]screenVertex
	area                   float32
	minX, maxX, minY, maxY int
}

type clipVertex struct {
	pos  common.Vec4
	bary common.Vec3
}

// Setup clips a clip-space triangle against the near plane (z >= 0, WebGPU
// convention) and maps the result to a width x height viewport. Clipping can
// yield zero, one or two triangles.
//
// Parameters:
//   - clip: the three clip-space vertex positions
//   - width, height: viewport size in texels
//
// Returns:
//   - []Triangle: the visible screen-space triangles; nil if fully clipped or degenerate
func Setup(clip [3]common.Vec4, width, height int) []Triangle {
	poly := []clipVertex{
		{pos: clip[0], bary: common.Vec3{1, 0, 0}},
		{pos: clip[1], bary: common.Vec3{0, 1, 0}},
		{pos: clip[2], bary: common.Vec3{0, 0, 1}},
	}
	for _, v := range clip {
		for _, c := range v {
			if math32.IsNaN(c) || math32.IsInf(c, 0) {
				return nil
			}
		}
	}
	poly = clipNear(poly)
	if len(poly) < 3 {
		return nil
	}

	sv := make([]screenVertex, len(poly))
	for i, cv := range poly {
		w := cv.pos[3]
		if w <= 1e-7 {
			return nil
		}
		inv := 1 / w
		ndcX, ndcY := cv.pos[0]*inv, cv.pos[1]*inv
		sv[i] = screenVertex{
			x:    (ndcX*0.5 + 0.5) * float32(width),
			y:    (1 - (ndcY*0.5 + 0.5)) * float32(height),
			z:    cv.pos[2] * inv,
			invW: inv,
			bary: cv.bary,
		}
	}

	var out []Triangle
	for i := 1; i+1 < len(sv); i++ {
		if t, ok := newTriangle(sv[0], sv[i], sv[i+1], width, height); ok {
			out = append(out, t)
		}
	}
	return out
}

// clipNear runs one Sutherland-Hodgman step against z >= 0.
func clipNear(in []clipVertex) []clipVertex {
	out := make([]clipVertex, 0, 4)
	for i := range in {
		a := in[i]
		b := in[(i+1)%len(in)]
		da, db := a.pos[2], b.pos[2]
		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0) != (db >= 0) {
			t := da / (da - db)
			var p common.Vec4
			for k := 0; k < 4; k++ {
				p[k] = common.Mix(a.pos[k], b.pos[k], t)
			}
			p[2] = 0
			out = append(out, clipVertex{pos: p, bary: a.bary.Lerp(b.bary, t)})
		}
	}
	return out
}

func newTriangle(a, b, c screenVertex, width, height int) (Triangle, bool) {
	area := edge(a.x, a.y, b.x, b.y, c.x, c.y)
	if math32.Abs(area) < 1e-9 {
		return Triangle{}, false
	}
	t := Triangle{v: [3]screenVertex{a, b, c}, area: area}
	minX := math32.Min(a.x, math32.Min(b.x, c.x))
	maxX := math32.Max(a.x, math32.Max(b.x, c.x))
	minY := math32.Min(a.y, math32.Min(b.y, c.y))
	maxY := math32.Max(a.y, math32.Max(b.y, c.y))

	t.minX = max(int(math32.Floor(minX)), 0)
	t.maxX = min(int(math32.Ceil(maxX)), width-1)
	t.minY = max(int(math32.Floor(minY)), 0)
	t.maxY = min(int(math32.Ceil(maxY)), height-1)
	if t.minX > t.maxX || t.minY > t.maxY {
		return Triangle{}, false
	}
	return t, true
}

// Rows reports the inclusive row range the triangle may cover.
func (t *Triangle) Rows() (int, int) {
	return t.minY, t.maxY
}

// Rasterize emits the fragments whose texel centers fall inside the
// triangle, restricted to rows [y0, y1).
//
// Parameters:
//   - y0, y1: half-open row band
//   - fn: fragment callback
func (t *Triangle) Rasterize(y0, y1 int, fn FragmentFunc) {
	ys := max(y0, t.minY)
	ye := min(y1-1, t.maxY)
	if ys > ye {
		return
	}
	a, b, c := &t.v[0], &t.v[1], &t.v[2]
	invArea := 1 / t.area

	for y := ys; y <= ye; y++ {
		py := float32(y) + 0.5
		for x := t.minX; x <= t.maxX; x++ {
			px := float32(x) + 0.5
			w0 := edge(b.x, b.y, c.x, c.y, px, py) * invArea
			w1 := edge(c.x, c.y, a.x, a.y, px, py) * invArea
			w2 := edge(a.x, a.y, b.x, b.y, px, py) * invArea
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			depth := w0*a.z + w1*b.z + w2*c.z

			p0, p1, p2 := w0*a.invW, w1*b.invW, w2*c.invW
			sum := p0 + p1 + p2
			if sum <= 0 {
				continue
			}
			inv := 1 / sum
			bary := a.bary.Scale(p0 * inv).Add(b.bary.Scale(p1 * inv)).Add(c.bary.Scale(p2 * inv))

			fn(Fragment{X: x, Y: y, Depth: depth, Bary: bary})
		}
	}
}

// edge is twice the signed area of (a, b, p).
func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

// Interpolate3 blends three per-vertex vectors with barycentric weights.
func Interpolate3(bary common.Vec3, a, b, c common.Vec3) common.Vec3 {
	return a.Scale(bary[0]).Add(b.Scale(bary[1])).Add(c.Scale(bary[2]))
}

// Interpolate2 blends three per-vertex 2D coordinates with barycentric weights.
func Interpolate2(bary common.Vec3, a, b, c [2]float32) [2]float32 {
	return [2]float32{
		a[0]*bary[0] + b[0]*bary[1] + c[0]*bary[2],
		a[1]*bary[0] + b[1]*bary[1] + c[1]*bary[2],
	}
}
