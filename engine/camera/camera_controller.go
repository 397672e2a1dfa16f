package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/chewxy/math32"
)

// CameraController owns positional state (position, target) for a Camera
// using spherical coordinates around the target. The frame loop drives it
// programmatically; there is no input handling.
type CameraController interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - common.Vec3: world-space camera position
	Position() common.Vec3

	// Target returns the look-at point.
	//
	// Returns:
	//   - common.Vec3: world-space target position
	Target() common.Vec3

	// SetTarget sets the pivot point and recomputes position from spherical coordinates.
	//
	// Parameters:
	//   - t: world-space coordinates
	SetTarget(t common.Vec3)

	// Orbit rotates around the target. Elevation is clamped to the configured bounds.
	//
	// Parameters:
	//   - dAzimuth: horizontal angle delta in radians
	//   - dElevation: vertical angle delta in radians
	Orbit(dAzimuth, dElevation float32)

	// Radius returns the current distance from the target.
	//
	// Returns:
	//   - float32: current distance from target
	Radius() float32

	// SetRadius sets the orbit radius directly, clamped to min/max bounds.
	//
	// Parameters:
	//   - radius: new distance from target
	SetRadius(radius float32)

	// Azimuth returns the current horizontal angle in radians.
	//
	// Returns:
	//   - float32: the azimuth
	Azimuth() float32

	// Elevation returns the current vertical angle in radians.
	//
	// Returns:
	//   - float32: the elevation
	Elevation() float32
}

type cameraControllerImpl struct {
	mu *sync.Mutex

	position common.Vec3
	target   common.Vec3

	radius    float32
	azimuth   float32 // around +Y
	elevation float32 // from the horizontal plane

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32
}

var _ CameraController = &cameraControllerImpl{}

// NewOrbitController creates a controller orbiting the origin.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewOrbitController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:           &sync.Mutex{},
		radius:       20.0,
		elevation:    math32.Pi / 6,
		minRadius:    0.5,
		maxRadius:    2000.0,
		minElevation: -math32.Pi/2 + 0.05,
		maxElevation: math32.Pi/2 - 0.05,
	}
	for _, option := range options {
		option(cc)
	}
	cc.radius = common.Clamp(cc.radius, cc.minRadius, cc.maxRadius)
	cc.elevation = common.Clamp(cc.elevation, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
	return cc
}

func (cc *cameraControllerImpl) Position() common.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) Target() common.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target
}

func (cc *cameraControllerImpl) SetTarget(t common.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = t
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Orbit(dAzimuth, dElevation float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth = math32.Mod(cc.azimuth+dAzimuth, 2*math32.Pi)
	cc.elevation = common.Clamp(cc.elevation+dElevation, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Radius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.radius
}

func (cc *cameraControllerImpl) SetRadius(radius float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.radius = common.Clamp(radius, cc.minRadius, cc.maxRadius)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Azimuth() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.azimuth
}

func (cc *cameraControllerImpl) Elevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.elevation
}

// updatePosition recomputes the camera position from spherical coordinates.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) updatePosition() {
	cosElev, sinElev := math32.Cos(cc.elevation), math32.Sin(cc.elevation)
	cosAzim, sinAzim := math32.Cos(cc.azimuth), math32.Sin(cc.azimuth)

	cc.position[0] = cc.target[0] + cc.radius*cosElev*sinAzim
	cc.position[1] = cc.target[1] + cc.radius*sinElev
	cc.position[2] = cc.target[2] + cc.radius*cosElev*cosAzim
}

// CameraControllerOption configures a controller during construction.
type CameraControllerOption func(*cameraControllerImpl)

// WithRadius sets the initial orbit radius.
func WithRadius(radius float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.radius = radius
	}
}

// WithAzimuth sets the initial horizontal angle in radians.
func WithAzimuth(azimuth float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.azimuth = azimuth
	}
}

// WithElevation sets the initial vertical angle in radians.
func WithElevation(elevation float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.elevation = elevation
	}
}

// WithOrbitTarget sets the pivot point.
func WithOrbitTarget(t common.Vec3) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.target = t
	}
}

// WithRadiusBounds sets the allowed orbit radius range.
func WithRadiusBounds(min, max float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minRadius = min
		cc.maxRadius = max
	}
}
