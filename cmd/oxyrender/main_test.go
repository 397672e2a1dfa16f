package main

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-render/engine/profiler"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) error {
	t.Helper()
	return newApp().Run(append([]string{"oxyrender", "--workers", "2"}, args...))
}

func TestDemoScene(t *testing.T) {
	sc, sun := newDemoScene(16.0 / 9.0)
	f, err := sc.Frame(0)
	require.NoError(t, err)
	assert.Len(t, f.Items, 27)
	assert.True(t, f.Light.CastsShadows)
	assert.Equal(t, sun.State().Direction, f.Light.Direction)

	sun.SetDirection(sunDirection(1))
	f, err = sc.Frame(1)
	require.NoError(t, err)
	assert.InDelta(t, sunDirection(1)[0], f.Light.Direction[0], 1e-6)
}

func TestDemoSceneCameraOrbits(t *testing.T) {
	sc, _ := newDemoScene(1)
	f, err := sc.Frame(0)
	require.NoError(t, err)
	start := f.Camera.Position
	assert.InDelta(t, 8, start[0], 1e-4)
	assert.InDelta(t, 7, start[1], 1e-4)
	assert.InDelta(t, 12, start[2], 1e-4)

	cam := sc.Camera()
	require.NotNil(t, cam.Controller())
	cam.Controller().Orbit(math32.Pi/2, 0)
	cam.Update()

	f, err = sc.Frame(1)
	require.NoError(t, err)
	moved := f.Camera.Position
	assert.InDelta(t, 12, moved[0], 1e-4)
	assert.InDelta(t, 7, moved[1], 1e-4)
	assert.InDelta(t, -8, moved[2], 1e-4)
}

func TestFormatFrameStats(t *testing.T) {
	out := formatFrameStats(&renderer.FrameResult{
		Timings: []renderer.PassTiming{
			{Pass: renderer.PassShadow, Duration: 3 * time.Millisecond},
			{Pass: renderer.PassShading, Duration: time.Millisecond},
		},
	})
	assert.Contains(t, out, "shadow")
	assert.Contains(t, out, "75.0 %")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "4ms")
}

func TestFormatPassStats(t *testing.T) {
	out := formatPassStats([]profiler.PassStats{{Pass: "frame", Frames: 2, Total: 4 * time.Millisecond, Max: 3 * time.Millisecond}})
	assert.Contains(t, out, "frame")
	assert.Contains(t, out, "2ms")
	assert.Contains(t, out, "3ms")
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "frame.png")
	dump := filepath.Join(dir, "dump")
	require.NoError(t, run(t, "render", "--width", "32", "--height", "18", "-q", "low", "-o", out, "--dump", dump))

	img, err := imgio.Open(out)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 18), img.Bounds())

	entries, err := os.ReadDir(dump)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestRenderCommandUsesConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "render.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("[renderer]\nwidth = 20\nheight = 10\n[shadows]\nquality = \"low\"\n"), 0o644))
	out := filepath.Join(dir, "frame.png")

	require.NoError(t, run(t, "--config", cfg, "render", "-o", out))
	img, err := imgio.Open(out)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 10), img.Bounds())

	// Flags override the file.
	require.NoError(t, run(t, "--config", cfg, "render", "--width", "12", "-o", out))
	img, err = imgio.Open(out)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 12, 10), img.Bounds())
}

func TestRenderCommandRejectsBadQuality(t *testing.T) {
	err := run(t, "render", "--width", "8", "--height", "8", "-q", "extreme", "-o", filepath.Join(t.TempDir(), "x.png"))
	assert.Error(t, err)
}

func TestSequenceCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, run(t, "sequence", "--width", "24", "--height", "16", "-q", "low", "-n", "3", "-o", dir))
	for _, name := range []string{"frame0000.png", "frame0001.png", "frame0002.png"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestSequenceCommandOrbitsCamera(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, run(t, "sequence", "--width", "16", "--height", "16", "-q", "low", "-n", "2", "--fps", "30", "--camera-orbit", "2", "-o", dir))
	for _, name := range []string{"frame0000.png", "frame0001.png"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestSequenceCommandWatchNeedsConfig(t *testing.T) {
	assert.Error(t, run(t, "sequence", "--width", "8", "--height", "8", "-n", "1", "--watch"))
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(good, []byte("renderer:\n  width: 640\n"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("[postprocess.grading]\ngamma = [1.0, 0.0, 1.0]\n"), 0o644))

	assert.NoError(t, run(t, "validate", good))
	err := run(t, "validate", good, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.toml")
	assert.NotContains(t, err.Error(), "good.yaml")
	assert.Error(t, run(t, "validate"))
}

func TestFormatLayouts(t *testing.T) {
	out, err := formatLayouts(uniformBlocks(), false)
	require.NoError(t, err)
	assert.Contains(t, out, "CascadeData")
	assert.Contains(t, out, "304")

	out, err = formatLayouts(uniformBlocks()[:1], true)
	require.NoError(t, err)
	assert.Contains(t, out, "view_proj")
	assert.Contains(t, out, "128")

	bad := []uniformBlock{{source: "struct Tiny { a: f32, b: vec3<f32>, }", size: 16}}
	_, err = formatLayouts(bad, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Tiny")
}

func TestLayoutsCommand(t *testing.T) {
	assert.NoError(t, run(t, "layouts", "--fields"))
}

func TestVerbosityFlagsDoNotClashWithVersion(t *testing.T) {
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	require.NotPanics(t, func() {
		assert.NoError(t, app.Run([]string{"oxyrender", "-v", "layouts"}))
	})
	assert.Contains(t, out.String(), "CameraUniform")

	out.Reset()
	require.NoError(t, app.Run([]string{"oxyrender", "--version"}))
	assert.Contains(t, out.String(), app.Version)
}
