package model

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/chewxy/math32"
)

// NewPlane builds a size x size plane in the XZ plane facing +Y, centered at
// the origin. UVs span [0, uvScale].
func NewPlane(name string, size, uvScale float32) *Mesh {
	h := size / 2
	up := common.Vec3{0, 1, 0}
	verts := []GPUVertex{
		{Position: common.Vec3{-h, 0, -h}, Normal: up, TexCoord: [2]float32{0, 0}},
		{Position: common.Vec3{h, 0, -h}, Normal: up, TexCoord: [2]float32{uvScale, 0}},
		{Position: common.Vec3{h, 0, h}, Normal: up, TexCoord: [2]float32{uvScale, uvScale}},
		{Position: common.Vec3{-h, 0, h}, Normal: up, TexCoord: [2]float32{0, uvScale}},
	}
	return NewMesh(name, verts, []uint32{0, 2, 1, 0, 3, 2})
}

// NewQuad builds a width x height quad in the XY plane facing +Z.
func NewQuad(name string, width, height float32) *Mesh {
	w, h := width/2, height/2
	fwd := common.Vec3{0, 0, 1}
	verts := []GPUVertex{
		{Position: common.Vec3{-w, -h, 0}, Normal: fwd, TexCoord: [2]float32{0, 1}},
		{Position: common.Vec3{w, -h, 0}, Normal: fwd, TexCoord: [2]float32{1, 1}},
		{Position: common.Vec3{w, h, 0}, Normal: fwd, TexCoord: [2]float32{1, 0}},
		{Position: common.Vec3{-w, h, 0}, Normal: fwd, TexCoord: [2]float32{0, 0}},
	}
	return NewMesh(name, verts, []uint32{0, 1, 2, 0, 2, 3})
}

// NewCube builds an axis-aligned cube with the given edge length. Each face
// has its own four vertices so normals stay flat.
func NewCube(name string, size float32) *Mesh {
	h := size / 2
	faces := []struct {
		n, u, v common.Vec3
	}{
		{common.Vec3{0, 0, 1}, common.Vec3{1, 0, 0}, common.Vec3{0, 1, 0}},
		{common.Vec3{0, 0, -1}, common.Vec3{-1, 0, 0}, common.Vec3{0, 1, 0}},
		{common.Vec3{1, 0, 0}, common.Vec3{0, 0, -1}, common.Vec3{0, 1, 0}},
		{common.Vec3{-1, 0, 0}, common.Vec3{0, 0, 1}, common.Vec3{0, 1, 0}},
		{common.Vec3{0, 1, 0}, common.Vec3{1, 0, 0}, common.Vec3{0, 0, -1}},
		{common.Vec3{0, -1, 0}, common.Vec3{1, 0, 0}, common.Vec3{0, 0, 1}},
	}
	verts := make([]GPUVertex, 0, 24)
	indices := make([]uint32, 0, 36)
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for _, f := range faces {
		base := uint32(len(verts))
		for _, c := range corners {
			p := f.n.Scale(h).Add(f.u.Scale(c[0] * h)).Add(f.v.Scale(c[1] * h))
			verts = append(verts, GPUVertex{
				Position: p,
				Normal:   f.n,
				TexCoord: [2]float32{(c[0] + 1) / 2, 1 - (c[1]+1)/2},
			})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return NewMesh(name, verts, indices)
}

// NewSphere builds a UV sphere. segments and rings are clamped to at least 3
// and 2 respectively.
func NewSphere(name string, radius float32, segments, rings int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	if rings < 2 {
		rings = 2
	}
	verts := make([]GPUVertex, 0, (segments+1)*(rings+1))
	for r := 0; r <= rings; r++ {
		v := float32(r) / float32(rings)
		phi := v * math32.Pi
		for s := 0; s <= segments; s++ {
			u := float32(s) / float32(segments)
			theta := u * 2 * math32.Pi
			n := common.Vec3{
				math32.Sin(phi) * math32.Cos(theta),
				math32.Cos(phi),
				math32.Sin(phi) * math32.Sin(theta),
			}
			verts = append(verts, GPUVertex{Position: n.Scale(radius), Normal: n, TexCoord: [2]float32{u, v}})
		}
	}
	indices := make([]uint32, 0, segments*rings*6)
	stride := uint32(segments + 1)
	for r := uint32(0); r < uint32(rings); r++ {
		for s := uint32(0); s < uint32(segments); s++ {
			a := r*stride + s
			b := a + stride
			indices = append(indices, a, a+1, b, a+1, b+1, b)
		}
	}
	return NewMesh(name, verts, indices)
}

// CalculateNormals replaces every vertex normal with the area-weighted
// average of its adjacent face normals. Vertices referenced by no triangle
// keep their current normal.
func CalculateNormals(m *Mesh) {
	acc := make([]common.Vec3, len(m.Vertices))
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		if int(a) >= len(acc) || int(b) >= len(acc) || int(c) >= len(acc) {
			continue
		}
		pa, pb, pc := m.Vertices[a].Position, m.Vertices[b].Position, m.Vertices[c].Position
		n := pb.Sub(pa).Cross(pc.Sub(pa))
		acc[a] = acc[a].Add(n)
		acc[b] = acc[b].Add(n)
		acc[c] = acc[c].Add(n)
	}
	for i := range m.Vertices {
		if n := acc[i].Normalize(); n.LengthSq() > 0 {
			m.Vertices[i].Normal = n
		}
	}
}
