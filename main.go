package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/26wolff/CS-Raytracer/cmd"
	"github.com/26wolff/CS-Raytracer/renderer"
	"github.com/26wolff/CS-Raytracer/scene/reader"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	defaults := renderer.DefaultOptions()
	renderFlags := []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Value: int(defaults.FrameW),
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: int(defaults.FrameH),
			Usage: "frame height",
		},
		cli.IntFlag{
			Name:  "spp",
			Value: int(defaults.SamplesPerPixel),
			Usage: "samples per pixel",
		},
		cli.IntFlag{
			Name:  "num-bounces",
			Value: int(defaults.NumBounces),
			Usage: "number of indirect ray bounces",
		},
		cli.IntFlag{
			Name:  "rr-bounces",
			Value: int(defaults.MinBouncesForRR),
			Usage: "min number of bounces before applying russian roulette for path elimination; 0 disables russian roulette",
		},
		cli.Float64Flag{
			Name:  "jitter",
			Value: float64(defaults.Jitter),
			Usage: "sub-pixel jitter strength for anti-aliasing; 0 samples pixel centers",
		},
		cli.Float64Flag{
			Name:  "exposure",
			Value: float64(defaults.Exposure),
			Usage: "exposure applied to the accumulated radiance",
		},
		cli.IntFlag{
			Name:  "workers",
			Value: 0,
			Usage: "number of cpu tracers; 0 uses one tracer per cpu core",
		},
		cli.StringFlag{
			Name:  "scheduler",
			Value: "perfect",
			Usage: "block scheduler for splitting frame rows between tracers (perfect, naive)",
		},
		cli.IntFlag{
			Name:  "seed",
			Value: 0,
			Usage: "seed for the random sample sequence",
		},
		cli.StringFlag{
			Name:  "cam-pos",
			Usage: "override the camera position (x,y,z)",
		},
		cli.StringFlag{
			Name:  "cam-rot",
			Usage: "override the camera rotation angles in degrees (pitch,yaw,roll)",
		},
		cli.Float64Flag{
			Name:  "fov",
			Usage: "override the horizontal camera fov in degrees",
		},
	}

	sceneFormats := fmt.Sprintf("Supported scene formats: %s.", strings.Join(reader.SupportedFormats, ", "))

	app := cli.NewApp()
	app.Name = "csrt"
	app.Usage = "render triangle mesh scenes using brute-force path tracing"
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
			Name:  "log-level",
			Usage: "set the log level (debug, info, notice, warning, error); -v and -vv take precedence",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render single frame",
			Description: `
Render a still frame by accumulating the requested number of samples per pixel
and write it to an image file. The image format (png, bmp or tiff) is selected
by the output file extension. Pressing Ctrl+C stops the render and saves the
samples accumulated so far.

` + sceneFormats,
			ArgsUsage: "scene_file",
			Flags: append(renderFlags,
				cli.StringFlag{
					Name:  "out, o",
					Value: "frame.png",
					Usage: "image filename for the rendered frame",
				},
				cli.BoolFlag{
					Name:  "stamp",
					Usage: "draw the sample count, bounce count and render time on the frame",
				},
			),
			Action: cmd.RenderFrame,
		},
		{
			Name:  "preview",
			Usage: "render interactive view of the scene",
			Description: `
Open a window that progressively refines the scene until the requested number
of samples per pixel is reached. Use the arrow keys and page up/down to move the
camera, drag with the left mouse button to look around, press tab to toggle the
tracer block overlay and esc to exit.

` + sceneFormats,
			ArgsUsage: "scene_file",
			Flags:     renderFlags,
			Action:    cmd.RenderInteractive,
		},
		{
			Name:  "compile",
			Usage: "compile scene files into a binary compressed format",
			Description: `
Parse scene definitions and write the triangle, material and camera data to a
zip archive next to each input file. Compiled scenes can be supplied as an
argument to the render and preview commands.

` + sceneFormats,
			ArgsUsage: "scene_file1.obj scene_file2.gltf ...",
			Action:    cmd.CompileScene,
		},
		{
			Name:      "info",
			Usage:     "display scene statistics",
			ArgsUsage: "scene_file",
			Action:    cmd.ShowSceneInfo,
		},
		{
			Name:   "materials",
			Usage:  "list the built-in material library",
			Action: cmd.ListMaterials,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}
