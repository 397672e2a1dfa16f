package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-render/engine"
	"github.com/Carmen-Shannon/oxy-render/engine/config"
	"github.com/Carmen-Shannon/oxy-render/engine/debug"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
	"github.com/urfave/cli"
)

// Render a sequence of frames through the engine loop.
func renderSequence(ctx *cli.Context) error {
	if ctx.Int("frames") <= 0 {
		return errors.New("frames must be positive")
	}
	r, f, err := newRenderer(ctx)
	if err != nil {
		return err
	}
	defer r.Close()

	options := []engine.EngineBuilderOption{
		engine.WithRenderer(r),
		engine.WithMaxFrames(uint64(ctx.Int("frames"))),
		engine.WithRenderFrameLimit(ctx.Float64("fps")),
		engine.WithProfiling(ctx.GlobalBool("v") || ctx.GlobalBool("vv")),
	}

	if ctx.Bool("watch") {
		path := ctx.GlobalString("config")
		if path == "" {
			return errors.New("--watch needs --config")
		}
		w, err := config.NewWatcher(path)
		if err != nil {
			return err
		}
		defer w.Close()
		options = append(options, engine.WithConfigSource(w))
	}

	sc, sun := newDemoScene(float32(f.Renderer.Width) / float32(f.Renderer.Height))
	var angle float32
	speed := float32(ctx.Float64("orbit"))
	camSpeed := float32(ctx.Float64("camera-orbit"))
	cam := sc.Camera()
	options = append(options,
		engine.WithScene(0, sc),
		engine.WithTickCallback(func(dt float32) {
			angle += dt * speed
			sun.SetDirection(sunDirection(angle))
			if ctrl := cam.Controller(); ctrl != nil && camSpeed != 0 {
				ctrl.Orbit(dt*camSpeed, 0)
				cam.Update()
			}
		}),
	)

	var writeErr error
	if dir := ctx.String("out"); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		options = append(options, engine.WithFrameCallback(func(res *renderer.FrameResult, err error) {
			if err != nil || writeErr != nil {
				return
			}
			path := filepath.Join(dir, fmt.Sprintf("frame%04d.png", res.Index))
			writeErr = debug.SavePNG(path, debug.Preview(res.Output, 1))
		}))
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	e := engine.NewEngine(options...)
	if err := e.Run(runCtx); err != nil {
		return err
	}
	if writeErr != nil {
		return writeErr
	}
	logger.Noticef("rendered %d frames", e.Frames())
	displayPassStats(e.Profiler().Passes())
	return nil
}
