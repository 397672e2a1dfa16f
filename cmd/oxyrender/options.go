package main

import (
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-render/engine/config"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
	"github.com/urfave/cli"
)

// loadConfig reads the --config file, or the defaults, and overlays any
// size or quality flag given on the command line.
//
// Returns:
//   - config.File: the merged configuration
//   - string: the directory relative paths in the file resolve against
//   - error: a load or validation error
func loadConfig(ctx *cli.Context) (config.File, string, error) {
	f := config.Default()
	baseDir := "."
	if path := ctx.GlobalString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.File{}, "", err
		}
		f, baseDir = loaded, filepath.Dir(path)
	}

	if ctx.IsSet("width") || ctx.GlobalString("config") == "" {
		f.Renderer.Width = ctx.Int("width")
	}
	if ctx.IsSet("height") || ctx.GlobalString("config") == "" {
		f.Renderer.Height = ctx.Int("height")
	}
	if ctx.IsSet("scale") {
		f.Renderer.RenderScale = float32(ctx.Float64("scale"))
	}
	if ctx.IsSet("quality") {
		f.Shadows.Quality = ctx.String("quality")
	}
	if ctx.GlobalIsSet("workers") {
		f.Renderer.Workers = ctx.GlobalInt("workers")
	}
	if ctx.Bool("debug-cascades") {
		f.Renderer.DebugCascades = true
	}

	if err := f.Validate(baseDir); err != nil {
		return config.File{}, "", err
	}
	return f, baseDir, nil
}

// newRenderer builds a renderer from the merged configuration.
func newRenderer(ctx *cli.Context) (renderer.Renderer, config.File, error) {
	f, baseDir, err := loadConfig(ctx)
	if err != nil {
		return nil, config.File{}, err
	}
	setupLogging(ctx, f)

	options, err := f.RendererOptions(baseDir)
	if err != nil {
		return nil, config.File{}, err
	}
	r, err := renderer.NewRenderer(options...)
	if err != nil {
		return nil, config.File{}, err
	}
	return r, f, nil
}
