package main

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/Carmen-Shannon/oxy-render/engine/material"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/scene"
	"github.com/chewxy/math32"
)

// sunDirection points the sun down at a fixed elevation, rotated by angle
// around the vertical axis.
func sunDirection(angle float32) common.Vec3 {
	return common.Vec3{math32.Cos(angle) * 0.6, -1, math32.Sin(angle) * 0.6}.Normalize()
}

// newDemoScene builds a checkered ground with a grid of cubes, a sphere and
// a translucent canopy under a shadow-casting sun. The camera rides an orbit
// controller.
//
// Parameters:
//   - aspect: the output aspect ratio
//
// Returns:
//   - scene.Scene: the scene
//   - light.Light: the sun, for animation
func newDemoScene(aspect float32) (scene.Scene, light.Light) {
	// Orbits (0, 1, 0) from (8, 7, 12).
	eye := common.Vec3{8, 6, 12}
	radius := eye.Length()
	orbit := camera.NewOrbitController(
		camera.WithOrbitTarget(common.Vec3{0, 1, 0}),
		camera.WithRadius(radius),
		camera.WithAzimuth(math32.Atan2(eye[0], eye[2])),
		camera.WithElevation(math32.Asin(eye[1]/radius)),
	)
	cam := camera.NewCamera(
		camera.WithController(orbit),
		camera.WithFov(common.Radians(50)),
		camera.WithAspect(aspect),
		camera.WithNear(0.1),
		camera.WithFar(200),
	)

	// ── Materials ───────────────────────────────────────────────────────
	checker := material.NewMaterial(
		material.WithName("ground"),
		material.WithTexture(common.CheckerboardTexture(64, 8,
			common.Vec4{0.75, 0.75, 0.72, 1},
			common.Vec4{0.45, 0.45, 0.42, 1},
		)),
	)
	palette := []common.Vec4{
		{0.9, 0.3, 0.25, 1},
		{0.3, 0.7, 0.35, 1},
		{0.25, 0.45, 0.9, 1},
		{0.95, 0.8, 0.3, 1},
	}
	chrome := material.NewMaterial(material.WithName("sphere"), material.WithBaseColor(common.Vec4{0.9, 0.9, 0.95, 1}))
	glass := material.NewMaterial(
		material.WithName("canopy"),
		material.WithBaseColor(common.Vec4{0.3, 0.5, 0.9, 0.4}),
		material.WithAlphaMode(material.AlphaModeBlend),
	)

	// ── Models ──────────────────────────────────────────────────────────
	models := []model.Model{
		model.NewModel(
			model.WithName("ground"),
			model.WithMesh(model.NewPlane("ground", 40, 8)),
			model.WithMaterial(checker),
		),
		model.NewModel(
			model.WithName("sphere"),
			model.WithMesh(model.NewSphere("sphere", 1.2, 24, 16)),
			model.WithMaterial(chrome),
			model.WithPosition(common.Vec3{0, 1.2, 0}),
		),
		model.NewModel(
			model.WithName("canopy"),
			model.WithMesh(model.NewPlane("canopy", 4, 1)),
			model.WithMaterial(glass),
			model.WithPosition(common.Vec3{-3, 3.5, 3}),
		),
	}
	cube := model.NewCube("cube", 1)
	i := 0
	for x := -2; x <= 2; x++ {
		for z := -2; z <= 2; z++ {
			if x == 0 && z == 0 {
				continue
			}
			height := 0.5 + float32((x+z+4)%3)*0.5
			models = append(models, model.NewModel(
				model.WithName("cube"),
				model.WithMesh(cube),
				model.WithMaterial(material.NewMaterial(material.WithBaseColor(palette[i%len(palette)]))),
				model.WithPosition(common.Vec3{float32(x) * 3, height / 2, float32(z) * 3}),
				model.WithScale(common.Vec3{1, height, 1}),
				model.WithRotation(common.Vec3{0, float32(i) * 0.3, 0}),
			))
			i++
		}
	}

	// ── Lights ──────────────────────────────────────────────────────────
	sun := light.NewLight(light.LightTypeDirectional,
		light.WithDirection(sunDirection(0)),
		light.WithColor(common.Vec3{1.0, 0.95, 0.85}),
		light.WithIntensity(3),
		light.WithCastsShadows(true),
	)

	s := scene.NewScene("demo", cam,
		scene.WithModels(models...),
		scene.WithLights(sun),
	)
	return s, sun
}
