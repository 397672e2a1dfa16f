package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/chewxy/math32"
)

type cameraImpl struct {
	mu *sync.Mutex

	position common.Vec3
	target   common.Vec3
	up       common.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewMatrix           [16]float32
	projectionMatrix     [16]float32
	viewProjectionMatrix [16]float32

	controller CameraController
}

// Camera defines the interface for the camera system.
// The camera holds perspective settings and computes view/projection matrices
// from its own position/target, or from an attached CameraController when one
// is set. Each frame the renderer consumes an immutable State snapshot.
type Camera interface {
	// Position returns the world-space eye position.
	//
	// Returns:
	//   - common.Vec3: the eye position
	Position() common.Vec3

	// Target returns the look-at point.
	//
	// Returns:
	//   - common.Vec3: the look-at point
	Target() common.Vec3

	// Up returns the camera's up vector.
	//
	// Returns:
	//   - common.Vec3: up vector
	Up() common.Vec3

	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// ViewMatrix returns the current 4x4 view matrix as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the view matrix
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the current 4x4 projection matrix as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the projection matrix
	ProjectionMatrix() [16]float32

	// ViewProjectionMatrix returns the current combined view-projection matrix as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the combined view-projection matrix
	ViewProjectionMatrix() [16]float32

	// State captures the camera for one frame.
	//
	// Returns:
	//   - State: the frame snapshot
	//   - error: ErrInvalidCamera if the projection parameters are unusable
	State() (State, error)

	// Controller returns the attached CameraController, or nil.
	//
	// Returns:
	//   - CameraController: the attached controller or nil
	Controller() CameraController

	// Update re-reads the controller (if any) and recomputes matrices.
	// Should be called once per frame, before State.
	Update()

	// SetPosition sets the eye position. Ignored while a controller is attached.
	//
	// Parameters:
	//   - p: world-space eye position
	SetPosition(p common.Vec3)

	// SetTarget sets the look-at point. Ignored while a controller is attached.
	//
	// Parameters:
	//   - t: world-space target
	SetTarget(t common.Vec3)

	// SetUp sets the camera's up vector.
	//
	// Parameters:
	//   - up: up vector
	SetUp(up common.Vec3)

	// SetFov sets the field of view in radians and recomputes matrices.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFov(fov float32)

	// SetAspect sets the aspect ratio (width / height) and recomputes matrices.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// SetNear sets the near clipping plane distance and recomputes matrices.
	//
	// Parameters:
	//   - near: near plane distance
	SetNear(near float32)

	// SetFar sets the far clipping plane distance and recomputes matrices.
	//
	// Parameters:
	//   - far: far plane distance
	SetFar(far float32)

	// SetController attaches a CameraController to the camera.
	//
	// Parameters:
	//   - ctrl: the controller to attach, or nil to detach
	SetController(ctrl CameraController)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with default perspective settings, placed
// at (0, 0, 5) looking at the origin.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		position: common.Vec3{0, 0, 5},
		up:       common.Vec3{0, 1, 0},
		fov:      45.0 * (math32.Pi / 180.0),
		aspect:   1.0,
		near:     0.1,
		far:      100.0,
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Position() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Target() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Up() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) State() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return NewState(c.position, c.target, c.up, c.fov, c.aspect, c.near, c.far)
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateMatrices()
}

func (c *cameraImpl) SetPosition(p common.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = p
	c.updateMatrices()
}

func (c *cameraImpl) SetTarget(t common.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = t
	c.updateMatrices()
}

func (c *cameraImpl) SetUp(up common.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.up = up
	c.updateMatrices()
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) SetNear(near float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.updateMatrices()
}

func (c *cameraImpl) SetFar(far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.far = far
	c.updateMatrices()
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
	c.updateMatrices()
}

// updateMatrices pulls position and target from the controller when one is
// attached, then recalculates the view, projection and view-projection
// matrices. Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	if c.controller != nil {
		c.position = c.controller.Position()
		c.target = c.controller.Target()
	}

	common.LookAt(c.viewMatrix[:], c.position, c.target, c.up)
	common.Perspective(c.projectionMatrix[:], c.fov, c.aspect, c.near, c.far)
	common.Mul4(c.viewProjectionMatrix[:], c.projectionMatrix[:], c.viewMatrix[:])
}
