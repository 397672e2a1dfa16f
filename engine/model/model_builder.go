package model

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/material"
)

// ModelBuilderOption is a functional option for configuring a Model.
type ModelBuilderOption func(*model)

// WithName sets the model name.
//
// Parameters:
//   - name: the model name
//
// Returns:
//   - ModelBuilderOption: option that sets the name
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithMesh sets the model geometry.
//
// Parameters:
//   - mesh: the mesh to draw
//
// Returns:
//   - ModelBuilderOption: option that sets the mesh
func WithMesh(mesh *Mesh) ModelBuilderOption {
	return func(m *model) {
		m.mesh = mesh
	}
}

// WithMaterial sets the model material.
//
// Parameters:
//   - mat: the surface material
//
// Returns:
//   - ModelBuilderOption: option that sets the material
func WithMaterial(mat material.Material) ModelBuilderOption {
	return func(m *model) {
		m.material = mat
	}
}

// WithPosition sets the initial world position.
func WithPosition(p common.Vec3) ModelBuilderOption {
	return func(m *model) {
		m.position = p
	}
}

// WithRotation sets the initial Euler rotation in radians.
func WithRotation(r common.Vec3) ModelBuilderOption {
	return func(m *model) {
		m.rotation = r
	}
}

// WithScale sets the initial per-axis scale.
func WithScale(s common.Vec3) ModelBuilderOption {
	return func(m *model) {
		m.scale = s
	}
}

// WithEnabled sets whether the model starts enabled. Models are enabled by default.
func WithEnabled(enabled bool) ModelBuilderOption {
	return func(m *model) {
		m.enabled.Store(enabled)
	}
}
