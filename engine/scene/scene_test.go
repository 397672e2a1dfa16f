package scene

import (
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScene(options ...SceneBuilderOption) Scene {
	cam := camera.NewCamera(camera.WithPosition(common.Vec3{0, 2, 6}))
	return NewScene("test", cam, options...)
}

func cube(name string) model.Model {
	return model.NewModel(model.WithName(name), model.WithMesh(model.NewCube(name, 1)))
}

func TestNewScene_PanicsWithoutCamera(t *testing.T) {
	assert.Panics(t, func() { NewScene("x", nil) })
}

func TestScene_AddAssignsSequentialIDs(t *testing.T) {
	s := newTestScene()
	a := s.Add(cube("a"))
	b := s.Add(cube("b"))
	assert.Equal(t, uint64(1), a)
	assert.Equal(t, uint64(2), b)
	assert.Equal(t, 2, s.Count())
	assert.Equal(t, "b", s.Get(b).Name())
}

func TestScene_AddKeepsExistingID(t *testing.T) {
	s := newTestScene()
	m := cube("fixed")
	m.SetID(42)
	assert.Equal(t, uint64(42), s.Add(m))
	assert.Same(t, m, s.Get(42))
}

func TestScene_RemoveAndClear(t *testing.T) {
	s := newTestScene(WithModels(cube("a"), cube("b")))
	require.Equal(t, 2, s.Count())

	s.Remove(1)
	assert.Nil(t, s.Get(1))
	assert.Equal(t, 1, s.Count())

	s.AddLight(light.NewLight(light.LightTypeDirectional))
	s.Clear()
	assert.Zero(t, s.Count())
	assert.Len(t, s.Lights(), 1)
}

func TestScene_ConcurrentAdd(t *testing.T) {
	s := newTestScene()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Add(cube("c"))
		}()
	}
	wg.Wait()
	assert.Equal(t, 32, s.Count())
	for id := uint64(1); id <= 32; id++ {
		assert.NotNil(t, s.Get(id))
	}
}

func TestScene_DrawListSkipsDisabledInIDOrder(t *testing.T) {
	s := newTestScene()
	for _, name := range []string{"a", "b", "c", "d"} {
		s.Add(cube(name))
	}
	s.Get(2).SetEnabled(false)

	items := s.DrawList()
	require.Len(t, items, 3)
	assert.Equal(t, "a", items[0].Label)
	assert.Equal(t, "c", items[1].Label)
	assert.Equal(t, "d", items[2].Label)
}

func TestScene_PrimaryLight(t *testing.T) {
	s := newTestScene()
	_, ok := s.PrimaryLight()
	assert.False(t, ok)

	fill := light.NewLight(light.LightTypePoint, light.WithCastsShadows(false), light.WithIntensity(0.5))
	sun := light.NewLight(light.LightTypeDirectional, light.WithIntensity(3))
	s.AddLight(fill)
	s.AddLight(sun)

	l, ok := s.PrimaryLight()
	require.True(t, ok)
	assert.Equal(t, light.LightTypeDirectional, l.Type)
	assert.Equal(t, float32(3), l.Intensity)

	sun.SetEnabled(false)
	l, ok = s.PrimaryLight()
	require.True(t, ok)
	assert.Equal(t, light.LightTypePoint, l.Type)

	s.RemoveLight(fill)
	_, ok = s.PrimaryLight()
	assert.False(t, ok)
	assert.Len(t, s.Lights(), 1)
}

func TestScene_Frame(t *testing.T) {
	s := newTestScene(
		WithModels(cube("a"), cube("b")),
		WithLights(light.NewLight(light.LightTypeDirectional)),
	)
	f, err := s.Frame(7)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), f.Index)
	assert.Len(t, f.Items, 2)
	assert.Equal(t, light.LightTypeDirectional, f.Light.Type)
	assert.Equal(t, common.Vec3{0, 2, 6}, f.Camera.Position)
}

func TestScene_FrameErrors(t *testing.T) {
	s := newTestScene(WithModels(cube("a")))
	_, err := s.Frame(0)
	assert.ErrorIs(t, err, ErrNoLight)

	s.AddLight(light.NewLight(light.LightTypeDirectional))
	s.SetCamera(camera.NewCamera(camera.WithPosition(common.Vec3{}), camera.WithTarget(common.Vec3{})))
	_, err = s.Frame(0)
	assert.ErrorIs(t, err, camera.ErrInvalidCamera)
}

func TestScene_NameAndActive(t *testing.T) {
	s := newTestScene(WithActive(false))
	assert.False(t, s.Active())
	s.SetActive(true)
	assert.True(t, s.Active())
	s.SetName("renamed")
	assert.Equal(t, "renamed", s.Name())
}
