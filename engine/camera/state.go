package camera

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/chewxy/math32"
)

// ErrInvalidCamera is returned when projection parameters cannot form a frustum.
var ErrInvalidCamera = errors.New("camera: invalid projection")

// State is the read-only camera description consumed by every pass for one
// frame. It is rebuilt each frame and never persisted.
type State struct {
	View        [16]float32
	Proj        [16]float32
	ViewProj    [16]float32
	InvViewProj [16]float32
	Position    common.Vec3
	Forward     common.Vec3
	Fov         float32
	Aspect      float32
	Near        float32
	Far         float32
}

// NewState builds a State from look-at and perspective parameters.
//
// Parameters:
//   - eye, target, up: look-at parameters
//   - fov: vertical field of view in radians, in (0, pi)
//   - aspect: width / height, > 0
//   - near, far: clip planes, 0 < near < far
//
// Returns:
//   - State: the snapshot
//   - error: ErrInvalidCamera when any parameter is out of range
func NewState(eye, target, up common.Vec3, fov, aspect, near, far float32) (State, error) {
	switch {
	case !(fov > 0 && fov < math32.Pi):
		return State{}, fmt.Errorf("%w: fov %v", ErrInvalidCamera, fov)
	case !(aspect > 0):
		return State{}, fmt.Errorf("%w: aspect %v", ErrInvalidCamera, aspect)
	case !(near > 0 && far > near):
		return State{}, fmt.Errorf("%w: near %v far %v", ErrInvalidCamera, near, far)
	case eye == target:
		return State{}, fmt.Errorf("%w: eye equals target", ErrInvalidCamera)
	}

	s := State{
		Position: eye,
		Forward:  target.Sub(eye).Normalize(),
		Fov:      fov,
		Aspect:   aspect,
		Near:     near,
		Far:      far,
	}
	common.LookAt(s.View[:], eye, target, up)
	common.Perspective(s.Proj[:], fov, aspect, near, far)
	common.Mul4(s.ViewProj[:], s.Proj[:], s.View[:])
	if !common.Invert4(s.InvViewProj[:], s.ViewProj[:]) {
		return State{}, fmt.Errorf("%w: singular view-projection", ErrInvalidCamera)
	}
	return s, nil
}

// ViewDepth returns the positive distance of a world-space point along the
// camera's viewing axis.
func (s State) ViewDepth(p common.Vec3) float32 {
	return -common.TransformPoint(s.View[:], p)[2]
}

// Frustum returns the camera's culling frustum in world space.
func (s State) Frustum() common.Frustum {
	return common.ExtractFrustumFromMatrix(s.ViewProj[:])
}

// SliceCorners returns the eight world-space corners of the frustum section
// between view depths d0 and d1.
//
// Parameters:
//   - d0, d1: view depths with near <= d0 < d1 <= far
//
// Returns:
//   - [8]common.Vec3: four corners at d0 followed by four at d1
func (s State) SliceCorners(d0, d1 float32) [8]common.Vec3 {
	full := common.FrustumCorners(s.InvViewProj[:])
	span := s.Far - s.Near
	t0 := (d0 - s.Near) / span
	t1 := (d1 - s.Near) / span
	var out [8]common.Vec3
	for i := 0; i < 4; i++ {
		ray := full[i+4].Sub(full[i])
		out[i] = full[i].Add(ray.Scale(t0))
		out[i+4] = full[i].Add(ray.Scale(t1))
	}
	return out
}

// Uniform packs the state into its GPU layout.
func (s State) Uniform() GPUCameraUniform {
	return GPUCameraUniform{
		View:     s.View,
		Proj:     s.Proj,
		ViewProj: s.ViewProj,
		Position: s.Position,
		Near:     s.Near,
		Far:      s.Far,
	}
}
