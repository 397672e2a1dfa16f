package model

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/material"
	"github.com/chewxy/math32"
)

// ErrInvalidMesh is returned by Mesh.Validate.
var ErrInvalidMesh = errors.New("model: invalid mesh")

// Mesh is an indexed triangle list in model space.
type Mesh struct {
	// Name is the mesh identifier.
	Name string

	// Vertices are the mesh vertices.
	Vertices []GPUVertex

	// Indices are the triangle indices, three per triangle.
	Indices []uint32

	// BoundingMin is the minimum corner of the axis-aligned bounding box.
	BoundingMin common.Vec3

	// BoundingMax is the maximum corner of the axis-aligned bounding box.
	BoundingMax common.Vec3
}

// NewMesh builds a mesh and computes its bounds.
//
// Parameters:
//   - name: mesh identifier
//   - vertices: vertex data
//   - indices: triangle indices
//
// Returns:
//   - *Mesh: the mesh
func NewMesh(name string, vertices []GPUVertex, indices []uint32) *Mesh {
	m := &Mesh{Name: name, Vertices: vertices, Indices: indices}
	m.UpdateBounds()
	return m
}

// UpdateBounds recomputes BoundingMin and BoundingMax from the vertices.
func (m *Mesh) UpdateBounds() {
	if len(m.Vertices) == 0 {
		m.BoundingMin, m.BoundingMax = common.Vec3{}, common.Vec3{}
		return
	}
	lo := m.Vertices[0].Position
	hi := lo
	for _, v := range m.Vertices[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = math32.Min(lo[k], v.Position[k])
			hi[k] = math32.Max(hi[k], v.Position[k])
		}
	}
	m.BoundingMin, m.BoundingMax = lo, hi
}

// TriangleCount returns the number of indexed triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Validate checks that the index list is well formed.
//
// Returns:
//   - error: ErrInvalidMesh describing the first problem, or nil
func (m *Mesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: %s has %d indices", ErrInvalidMesh, m.Name, len(m.Indices))
	}
	for _, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			return fmt.Errorf("%w: %s index %d out of %d vertices", ErrInvalidMesh, m.Name, idx, len(m.Vertices))
		}
	}
	return nil
}

// DrawItem is one entry of the per-frame draw list: a mesh reference, its
// world transform and its material. Draw items are rebuilt every frame by the
// caller and are read-only to the renderer.
type DrawItem struct {
	// Label identifies the item in warnings.
	Label string

	// Mesh is the geometry to draw. A nil mesh skips the item.
	Mesh *Mesh

	// World is the model-to-world transform (column-major).
	World [16]float32

	// Material is the surface description. A nil material skips the item in
	// the shading pass.
	Material material.Material
}

// Name returns the label, falling back to the mesh name.
func (d *DrawItem) Name() string {
	if d.Label != "" {
		return d.Label
	}
	if d.Mesh != nil {
		return d.Mesh.Name
	}
	return "<unnamed>"
}

// CastsShadows reports whether the item is an opaque shadow caster.
func (d *DrawItem) CastsShadows() bool {
	return d.Material == nil || d.Material.Opaque()
}

// WorldBounds returns a world-space bounding sphere enclosing the mesh.
func (d *DrawItem) WorldBounds() (common.Vec3, float32) {
	if d.Mesh == nil {
		return common.Vec3{}, 0
	}
	lo, hi := d.Mesh.BoundingMin, d.Mesh.BoundingMax
	center := lo.Add(hi).Scale(0.5)
	radius := hi.Sub(lo).Length() * 0.5

	wc := common.TransformPoint(d.World[:], center).XYZ()
	sx := common.Vec3{d.World[0], d.World[1], d.World[2]}.Length()
	sy := common.Vec3{d.World[4], d.World[5], d.World[6]}.Length()
	sz := common.Vec3{d.World[8], d.World[9], d.World[10]}.Length()
	return wc, radius * math32.Max(sx, math32.Max(sy, sz))
}
