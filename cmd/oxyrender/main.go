package main

import (
	"os"

	"github.com/urfave/cli"
)

func newApp() *cli.App {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "oxyrender"
	app.Usage = "render scenes with cascaded shadows and a post-process chain"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "config, c",
			Usage: "TOML or YAML config file",
		},
		cli.IntFlag{
			Name:  "workers",
			Usage: "kernel workers (0 = one per CPU)",
		},
	}

	sizeFlags := []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Value: 1280,
			Usage: "output width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 720,
			Usage: "output height",
		},
		cli.Float64Flag{
			Name:  "scale",
			Value: 1,
			Usage: "internal render scale relative to the output size",
		},
		cli.StringFlag{
			Name:  "quality, q",
			Value: "high",
			Usage: "shadow quality: low, medium, high or ultra",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render one frame of the demo scene to a PNG file",
			Description: `
Render a single frame of the built-in demo scene and write the display-ready
output to a PNG file. With --dump, the HDR shading result and an atlas of the
shadow cascades are written alongside it.`,
			Flags: append(append([]cli.Flag(nil), sizeFlags...),
				cli.StringFlag{
					Name:  "out, o",
					Value: "frame.png",
					Usage: "image filename for the rendered frame",
				},
				cli.StringFlag{
					Name:  "dump",
					Usage: "directory for debug images of the frame's intermediates",
				},
				cli.IntFlag{
					Name:  "thumb",
					Usage: "longest side of debug images (0 = full size)",
				},
				cli.BoolFlag{
					Name:  "debug-cascades",
					Usage: "tint the image by shadow cascade",
				},
			),
			Action: renderFrame,
		},
		{
			Name:  "sequence",
			Usage: "render frames of the demo scene with an orbiting sun",
			Description: `
Drive the engine loop for a number of frames while the sun orbits the scene.
A non-zero --camera-orbit swings the camera around the scene as well.
With --watch, edits to the config file are applied between frames.`,
			Flags: append(append([]cli.Flag(nil), sizeFlags...),
				cli.IntFlag{
					Name:  "frames, n",
					Value: 60,
					Usage: "number of frames to render",
				},
				cli.Float64Flag{
					Name:  "fps",
					Usage: "frame rate cap (0 = uncapped)",
				},
				cli.Float64Flag{
					Name:  "orbit",
					Value: 0.5,
					Usage: "sun orbit speed in radians per second",
				},
				cli.Float64Flag{
					Name:  "camera-orbit",
					Usage: "camera orbit speed around the scene in radians per second",
				},
				cli.StringFlag{
					Name:  "out, o",
					Usage: "directory for every frame's output PNG",
				},
				cli.BoolFlag{
					Name:  "watch, w",
					Usage: "reload the config file when it changes",
				},
			),
			Action: renderSequence,
		},
		{
			Name:  "layouts",
			Usage: "print the memory layout of every GPU uniform block",
			Description: `
Parse the WGSL declaration of each uniform block the renderer packs and print
its size and alignment. Exits with an error if a packed Go block and its WGSL
declaration disagree on size.`,
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "fields, f",
					Usage: "print the offset of every member",
				},
			},
			Action: printLayouts,
		},
		{
			Name:      "validate",
			Usage:     "load and validate config files",
			ArgsUsage: "config1.toml config2.yaml ...",
			Action:    validateConfigs,
		},
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}
