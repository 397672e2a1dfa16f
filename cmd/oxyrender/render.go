package main

import (
	"context"
	"fmt"

	"github.com/Carmen-Shannon/oxy-render/engine/debug"
	"github.com/urfave/cli"
)

// Render a still frame of the demo scene.
func renderFrame(ctx *cli.Context) error {
	r, f, err := newRenderer(ctx)
	if err != nil {
		return err
	}
	defer r.Close()

	sc, _ := newDemoScene(float32(f.Renderer.Width) / float32(f.Renderer.Height))
	frame, err := sc.Frame(0)
	if err != nil {
		return err
	}
	res, err := r.Frame(context.Background(), frame)
	if err != nil {
		return err
	}

	out := ctx.String("out")
	if err := debug.SavePNG(out, debug.Preview(res.Output, 1)); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	logger.Noticef("wrote frame to %s", out)

	if dir := ctx.String("dump"); dir != "" {
		d, err := debug.NewDumper(dir, debug.WithThumbnail(ctx.Int("thumb")))
		if err != nil {
			return err
		}
		paths, err := d.Dump(res)
		if err != nil {
			return err
		}
		logger.Noticef("wrote %d debug images to %s", len(paths), dir)
	}

	displayFrameStats(res)
	return nil
}
