package light

import (
	"encoding/binary"
	"testing"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectionalIncident(t *testing.T) {
	l := NewLight(LightTypeDirectional, WithDirection(common.Vec3{0, -2, 0}), WithIntensity(2), WithColor(common.Vec3{1, 0.5, 0.25}))
	s := l.State()
	require.NoError(t, s.Validate())

	dir, radiance := s.Incident(common.Vec3{100, 3, -7})
	assert.InDelta(t, 1, dir[1], 1e-6)
	assert.Equal(t, common.Vec3{2, 1, 0.5}, radiance)
}

func TestPointAttenuation(t *testing.T) {
	s := NewLight(LightTypePoint, WithPosition(common.Vec3{0, 5, 0}), WithRange(10)).State()
	require.NoError(t, s.Validate())

	dir, near := s.Incident(common.Vec3{0, 4, 0})
	assert.InDelta(t, 1, dir[1], 1e-6)
	_, far := s.Incident(common.Vec3{0, -6, 0})
	assert.Greater(t, near[0], float32(0.9))
	assert.Equal(t, float32(0), far[0])
}

func TestSpotCone(t *testing.T) {
	s := NewLight(LightTypeSpot,
		WithPosition(common.Vec3{0, 10, 0}),
		WithDirection(common.Vec3{0, -1, 0}),
		WithRange(100),
		WithSpotCone(10, 20),
	).State()
	require.NoError(t, s.Validate())

	_, inside := s.Incident(common.Vec3{0, 0, 0})
	_, outside := s.Incident(common.Vec3{10, 0, 0}) // 45 degrees off axis
	assert.Greater(t, inside[0], float32(0.9))
	assert.Equal(t, float32(0), outside[0])
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, State{Type: LightTypeDirectional}.Validate(), ErrInvalidLight)
	assert.ErrorIs(t, State{Type: LightTypePoint}.Validate(), ErrInvalidLight)
	assert.ErrorIs(t, State{Type: LightTypeSpot, Range: 1, Direction: common.Vec3{0, -1, 0}, InnerCos: 0.5, OuterCos: 0.9}.Validate(), ErrInvalidLight)
	assert.ErrorIs(t, State{Type: LightTypeDirectional, Direction: common.Vec3{0, -1, 0}, Intensity: -1}.Validate(), ErrInvalidLight)
}

func TestShadowQualityResolution(t *testing.T) {
	assert.Equal(t, 512, ShadowQualityLow.Resolution())
	assert.Equal(t, 1024, ShadowQualityMedium.Resolution())
	assert.Equal(t, 2048, ShadowQualityHigh.Resolution())
	assert.Equal(t, 4096, ShadowQualityUltra.Resolution())

	q, err := ParseShadowQuality("Ultra")
	require.NoError(t, err)
	assert.Equal(t, ShadowQualityUltra, q)
	_, err = ParseShadowQuality("extreme")
	assert.Error(t, err)
}

func TestLightViewLooksAlongDirection(t *testing.T) {
	dir := common.Vec3{0, -1, 0}
	view := LightView(dir, common.Vec3{}, 10)
	// the center sits 10 units in front of the eye.
	p := common.TransformPoint(view[:], common.Vec3{})
	assert.InDelta(t, -10, p[2], 1e-4)
}

func TestSpotViewProjectionContainsAxis(t *testing.T) {
	s := NewLight(LightTypeSpot, WithPosition(common.Vec3{0, 10, 0}), WithDirection(common.Vec3{0, -1, 0}), WithRange(50)).State()
	vp := SpotViewProjection(s)
	c := common.TransformPoint(vp[:], common.Vec3{0, 0, 0})
	require.Greater(t, c[3], float32(0))
	ndc := c.PerspectiveDivide()
	assert.InDelta(t, 0, ndc[0], 1e-4)
	assert.InDelta(t, 0, ndc[1], 1e-4)
	assert.True(t, ndc[2] > 0 && ndc[2] < 1)
}

func TestMarshalLightBuffer(t *testing.T) {
	states := []State{
		NewLight(LightTypeDirectional).State(),
		NewLight(LightTypePoint, WithIntensity(3)).State(),
	}
	buf := MarshalLightBuffer(states, common.Vec3{0.1, 0.1, 0.1})
	require.Len(t, buf, 16+2*64)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(buf[12:16]))
	assert.Equal(t, uint32(LightTypePoint), binary.LittleEndian.Uint32(buf[16+64+12:]))
	assert.Equal(t, float32(3), math32.Float32frombits(binary.LittleEndian.Uint32(buf[16+64+28:])))
	// point lights never advertise shadows.
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[16+64+56:]))
	assert.Contains(t, GPULightSource, "struct Light")
	assert.Contains(t, GPULightHeaderSource, "light_count")
}
