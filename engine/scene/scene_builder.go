package scene

import (
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene is active for rendering.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithModels adds initial models to the scene.
// Models without IDs will be assigned new IDs.
//
// Parameters:
//   - models: the models to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithModels(models ...model.Model) SceneBuilderOption {
	return func(s *scene) {
		for _, m := range models {
			s.add(m)
		}
	}
}

// WithLights adds initial lights to the scene.
func WithLights(lights ...light.Light) SceneBuilderOption {
	return func(s *scene) {
		s.lights = append(s.lights, lights...)
	}
}
