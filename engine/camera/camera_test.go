package camera

import (
	"encoding/binary"
	"testing"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateViewDepth(t *testing.T) {
	s, err := NewState(common.Vec3{0, 0, 10}, common.Vec3{}, common.Vec3{0, 1, 0}, math32.Pi/3, 1, 0.1, 100)
	require.NoError(t, err)

	assert.InDelta(t, 10, s.ViewDepth(common.Vec3{}), 1e-4)
	assert.InDelta(t, 5, s.ViewDepth(common.Vec3{3, -2, 5}), 1e-4)
	assert.InDelta(t, 0, s.Forward[0], 1e-6)
	assert.InDelta(t, -1, s.Forward[2], 1e-6)
}

func TestStateProjectsNearAndFarToUnitDepth(t *testing.T) {
	s, err := NewState(common.Vec3{}, common.Vec3{0, 0, -1}, common.Vec3{0, 1, 0}, math32.Pi/2, 1, 1, 50)
	require.NoError(t, err)

	near := common.TransformPoint(s.ViewProj[:], common.Vec3{0, 0, -1}).PerspectiveDivide()
	far := common.TransformPoint(s.ViewProj[:], common.Vec3{0, 0, -50}).PerspectiveDivide()
	assert.InDelta(t, 0, near[2], 1e-5)
	assert.InDelta(t, 1, far[2], 1e-5)
}

func TestStateRejectsBadProjection(t *testing.T) {
	cases := []struct {
		name        string
		fov, aspect float32
		near, far   float32
		eye, target common.Vec3
	}{
		{"zero fov", 0, 1, 0.1, 10, common.Vec3{0, 0, 1}, common.Vec3{}},
		{"zero aspect", 1, 0, 0.1, 10, common.Vec3{0, 0, 1}, common.Vec3{}},
		{"far before near", 1, 1, 10, 1, common.Vec3{0, 0, 1}, common.Vec3{}},
		{"eye on target", 1, 1, 0.1, 10, common.Vec3{}, common.Vec3{}},
	}
	for _, tc := range cases {
		_, err := NewState(tc.eye, tc.target, common.Vec3{0, 1, 0}, tc.fov, tc.aspect, tc.near, tc.far)
		assert.ErrorIs(t, err, ErrInvalidCamera, tc.name)
	}
}

func TestSliceCornersDepths(t *testing.T) {
	s, err := NewState(common.Vec3{0, 2, 0}, common.Vec3{0, 2, -1}, common.Vec3{0, 1, 0}, math32.Pi/2, 1.5, 0.5, 100)
	require.NoError(t, err)
	corners := s.SliceCorners(10, 20)
	for i := 0; i < 4; i++ {
		assert.InDelta(t, 10, s.ViewDepth(corners[i]), 5e-2)
		assert.InDelta(t, 20, s.ViewDepth(corners[i+4]), 5e-2)
	}
}

func TestCameraFollowsController(t *testing.T) {
	ctrl := NewOrbitController(WithRadius(10), WithElevation(0), WithAzimuth(0))
	cam := NewCamera(WithController(ctrl))
	assert.InDelta(t, 10, cam.Position()[2], 1e-5)

	ctrl.Orbit(math32.Pi/2, 0)
	cam.Update()
	assert.InDelta(t, 10, cam.Position()[0], 1e-4)
	assert.InDelta(t, 0, cam.Position()[2], 1e-4)

	s, err := cam.State()
	require.NoError(t, err)
	assert.InDelta(t, 10, s.ViewDepth(common.Vec3{}), 1e-4)
}

func TestControllerClamps(t *testing.T) {
	ctrl := NewOrbitController(WithRadiusBounds(1, 5), WithRadius(50))
	assert.Equal(t, float32(5), ctrl.Radius())
	ctrl.Orbit(0, 10)
	assert.Less(t, ctrl.Elevation(), math32.Pi/2)
}

func TestGPUCameraUniformMarshal(t *testing.T) {
	s, err := NewState(common.Vec3{1, 2, 3}, common.Vec3{}, common.Vec3{0, 1, 0}, 1, 1, 0.25, 40)
	require.NoError(t, err)
	u := s.Uniform()
	buf := u.Marshal()
	require.Len(t, buf, GPUCameraUniformSize)

	assert.Equal(t, s.ViewProj[5], math32.Float32frombits(binary.LittleEndian.Uint32(buf[128+5*4:])))
	assert.Equal(t, float32(2), math32.Float32frombits(binary.LittleEndian.Uint32(buf[196:])))
	assert.Equal(t, float32(0.25), math32.Float32frombits(binary.LittleEndian.Uint32(buf[204:])))
	assert.Equal(t, float32(40), math32.Float32frombits(binary.LittleEndian.Uint32(buf[208:])))
	assert.Contains(t, GPUCameraUniformSource, "struct CameraUniform")
}
