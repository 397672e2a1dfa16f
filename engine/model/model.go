package model

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/material"
)

type model struct {
	mu sync.RWMutex

	id       uint64
	name     string
	enabled  atomic.Bool
	mesh     *Mesh
	material material.Material

	position common.Vec3
	rotation common.Vec3
	scale    common.Vec3
}

// Model is a renderable scene entity: a mesh, a material and a
// position/rotation/scale transform. Each frame the owning scene asks every
// enabled Model for a DrawItem; the renderer never sees the Model itself.
type Model interface {
	// ID returns the model's unique identifier, assigned by the scene.
	//
	// Returns:
	//   - uint64: the model ID
	ID() uint64

	// SetID sets the model's unique identifier.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id uint64)

	// Name returns the model's name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Enabled returns whether the model contributes to the draw list.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// SetEnabled sets whether the model contributes to the draw list.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// Mesh returns the model's geometry.
	//
	// Returns:
	//   - *Mesh: the mesh, or nil
	Mesh() *Mesh

	// SetMesh replaces the model's geometry.
	//
	// Parameters:
	//   - m: the new mesh
	SetMesh(m *Mesh)

	// Material returns the model's material.
	//
	// Returns:
	//   - material.Material: the material, or nil
	Material() material.Material

	// SetMaterial replaces the model's material.
	//
	// Parameters:
	//   - m: the new material
	SetMaterial(m material.Material)

	// Position returns the world position.
	Position() common.Vec3

	// Rotation returns the Euler rotation in radians (Y * X * Z order).
	Rotation() common.Vec3

	// Scale returns the per-axis scale.
	Scale() common.Vec3

	// SetPosition sets the world position.
	SetPosition(p common.Vec3)

	// SetRotation sets the Euler rotation in radians.
	SetRotation(r common.Vec3)

	// SetScale sets the per-axis scale.
	SetScale(s common.Vec3)

	// WorldMatrix builds the model-to-world transform from the current
	// position, rotation and scale.
	//
	// Returns:
	//   - [16]float32: column-major world matrix
	WorldMatrix() [16]float32

	// DrawItem snapshots the model into a draw list entry.
	//
	// Returns:
	//   - DrawItem: the frame's view of this model
	DrawItem() DrawItem
}

var _ Model = &model{}

// NewModel creates a new Model configured with the given options.
//
// Parameters:
//   - options: functional options to configure the model
//
// Returns:
//   - Model: the newly created model
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{
		scale: common.Vec3{1, 1, 1},
	}
	m.enabled.Store(true)
	for _, option := range options {
		option(m)
	}
	return m
}

func (m *model) ID() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.id
}

func (m *model) SetID(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.id = id
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Enabled() bool {
	return m.enabled.Load()
}

func (m *model) SetEnabled(enabled bool) {
	m.enabled.Store(enabled)
}

func (m *model) Mesh() *Mesh {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mesh
}

func (m *model) SetMesh(mesh *Mesh) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mesh = mesh
}

func (m *model) Material() material.Material {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.material
}

func (m *model) SetMaterial(mat material.Material) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.material = mat
}

func (m *model) Position() common.Vec3 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.position
}

func (m *model) Rotation() common.Vec3 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rotation
}

func (m *model) Scale() common.Vec3 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scale
}

func (m *model) SetPosition(p common.Vec3) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = p
}

func (m *model) SetRotation(r common.Vec3) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rotation = r
}

func (m *model) SetScale(s common.Vec3) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scale = s
}

func (m *model) WorldMatrix() [16]float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out [16]float32
	common.BuildModelMatrix(out[:], m.position, m.rotation, m.scale)
	return out
}

func (m *model) DrawItem() DrawItem {
	world := m.WorldMatrix()
	m.mu.RLock()
	defer m.mu.RUnlock()
	return DrawItem{
		Label:    m.name,
		Mesh:     m.mesh,
		World:    world,
		Material: m.material,
	}
}
