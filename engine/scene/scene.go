package scene

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
)

// ErrNoLight is returned by Frame when the scene has no enabled light.
var ErrNoLight = errors.New("scene: no enabled light")

// Scene is a flat registry of models and lights viewed through one camera.
// Each frame it is flattened into a renderer.Frame: the enabled models'
// draw items in ID order plus the primary light.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// SetCamera replaces the scene's camera.
	//
	// Parameters:
	//   - cam: the new camera
	SetCamera(cam camera.Camera)

	// Count returns the number of registered models.
	Count() int

	// Add registers a model, assigning it an ID if it has none.
	//
	// Parameters:
	//   - m: the model to register
	//
	// Returns:
	//   - uint64: the model's ID
	Add(m model.Model) uint64

	// Get returns the model with the given ID, or nil.
	Get(id uint64) model.Model

	// Remove unregisters the model with the given ID.
	Remove(id uint64)

	// Clear removes every model. Lights are kept.
	Clear()

	// AddLight registers a light. The first enabled shadow caster becomes the
	// primary light.
	AddLight(l light.Light)

	// RemoveLight unregisters a light.
	RemoveLight(l light.Light)

	// Lights returns a copy of the registered lights.
	Lights() []light.Light

	// PrimaryLight returns the light used for shading: the first enabled
	// shadow caster, else the first enabled light.
	//
	// Returns:
	//   - light.State: the light snapshot
	//   - bool: false when no light is enabled
	PrimaryLight() (light.State, bool)

	// DrawList snapshots the enabled models' draw items in ID order.
	DrawList() []model.DrawItem

	// Frame snapshots camera, primary light and draw list for the renderer.
	//
	// Parameters:
	//   - index: the frame counter
	//
	// Returns:
	//   - renderer.Frame: the frame input
	//   - error: ErrNoLight, or the camera's error
	Frame(index uint64) (renderer.Frame, error)
}

type scene struct {
	mu     *sync.RWMutex
	name   string
	active bool
	cam    camera.Camera

	registry map[uint64]model.Model
	lights   []light.Light
	nextID   uint64
}

var _ Scene = &scene{}

// NewScene creates an empty scene.
//
// Parameters:
//   - name: scene identifier used in logs
//   - cam: the camera the scene is viewed through
//   - options: functional options
//
// Returns:
//   - Scene: the scene
func NewScene(name string, cam camera.Camera, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	s := &scene{
		mu:       &sync.RWMutex{},
		name:     name,
		active:   true,
		cam:      cam,
		registry: make(map[uint64]model.Model),
		nextID:   1,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) SetCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam = cam
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scene) Add(m model.Model) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(m)
	return m.ID()
}

func (s *scene) add(m model.Model) {
	if m.ID() == 0 {
		m.SetID(atomic.AddUint64(&s.nextID, 1) - 1)
	}
	s.registry[m.ID()] = m
}

func (s *scene) Get(id uint64) model.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.registry, id)
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry = make(map[uint64]model.Model)
}

func (s *scene) AddLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = append(s.lights, l)
}

func (s *scene) RemoveLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.lights {
		if existing == l {
			s.lights = append(s.lights[:i], s.lights[i+1:]...)
			return
		}
	}
}

func (s *scene) Lights() []light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]light.Light(nil), s.lights...)
}

func (s *scene) PrimaryLight() (light.State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.primaryLight()
}

func (s *scene) primaryLight() (light.State, bool) {
	var fallback light.Light
	for _, l := range s.lights {
		if !l.Enabled() {
			continue
		}
		if l.CastsShadows() {
			return l.State(), true
		}
		if fallback == nil {
			fallback = l
		}
	}
	if fallback == nil {
		return light.State{}, false
	}
	return fallback.State(), true
}

func (s *scene) DrawList() []model.DrawItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.drawList()
}

func (s *scene) drawList() []model.DrawItem {
	ids := make([]uint64, 0, len(s.registry))
	for id, m := range s.registry {
		if m.Enabled() {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	items := make([]model.DrawItem, len(ids))
	for i, id := range ids {
		items[i] = s.registry[id].DrawItem()
	}
	return items
}

func (s *scene) Frame(index uint64) (renderer.Frame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cam, err := s.cam.State()
	if err != nil {
		return renderer.Frame{}, fmt.Errorf("scene %q: %w", s.name, err)
	}
	l, ok := s.primaryLight()
	if !ok {
		return renderer.Frame{}, fmt.Errorf("scene %q: %w", s.name, ErrNoLight)
	}
	return renderer.Frame{
		Camera: cam,
		Light:  l,
		Items:  s.drawList(),
		Index:  index,
	}, nil
}
