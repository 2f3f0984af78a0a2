package cmd

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/26wolff/CS-Raytracer/renderer"
	"github.com/26wolff/CS-Raytracer/scene"
	"github.com/26wolff/CS-Raytracer/scene/reader"
	"github.com/26wolff/CS-Raytracer/tracer"
	"github.com/26wolff/CS-Raytracer/types"
	"github.com/urfave/cli"
)

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	opts, err := renderOptions(ctx)
	if err != nil {
		return err
	}

	sc, err := loadScene(ctx, opts)
	if err != nil {
		return err
	}

	// Interrupting the render keeps the samples accumulated so far
	renderCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Noticef("rendering %dx%d frame with %d spp and %d bounces", opts.FrameW, opts.FrameH, opts.SamplesPerPixel, opts.NumBounces)
	frame, stats, err := renderer.Render(renderCtx, sc, opts)
	if err != nil {
		if !errors.Is(err, renderer.ErrInterrupted) {
			return err
		}
		logger.Warningf("render interrupted after %d of %d passes; saving partial frame", stats.Passes, opts.SamplesPerPixel)
	}

	// Display stats
	displayFrameStats(stats)

	img := frame.RGBA()
	if ctx.Bool("stamp") {
		caption := fmt.Sprintf("%d spp | %d bounces | %s", stats.Passes, opts.NumBounces, stats.RenderTime.Round(time.Millisecond))
		if err = renderer.StampFrame(img, caption); err != nil {
			return err
		}
	}

	imgFile := ctx.String("out")
	start := time.Now()
	if err = renderer.SaveFrame(img, imgFile); err != nil {
		return err
	}
	logger.Noticef("wrote frame to %s in %d ms", imgFile, time.Since(start).Nanoseconds()/1000000)

	return nil
}

// Use opengl to render a continuously updating view of the accumulated frame.
func RenderInteractive(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	opts, err := renderOptions(ctx)
	if err != nil {
		return err
	}

	sc, err := loadScene(ctx, opts)
	if err != nil {
		return err
	}

	r, err := renderer.NewInteractive(sc, opts.Scheduler, opts)
	if err != nil {
		return err
	}
	defer r.Close()

	if err = r.Render(context.Background()); err != nil {
		return err
	}

	displayFrameStats(r.Stats())
	return nil
}

// Map command flags to renderer options.
func renderOptions(ctx *cli.Context) (renderer.Options, error) {
	opts := renderer.Options{
		FrameW:          uint32(ctx.Int("width")),
		FrameH:          uint32(ctx.Int("height")),
		SamplesPerPixel: uint32(ctx.Int("spp")),
		NumBounces:      uint32(ctx.Int("num-bounces")),
		MinBouncesForRR: uint32(ctx.Int("rr-bounces")),
		Jitter:          float32(ctx.Float64("jitter")),
		Exposure:        float32(ctx.Float64("exposure")),
		NumWorkers:      ctx.Int("workers"),
		Seed:            uint32(ctx.Int("seed")),
	}

	var err error
	if opts.Scheduler, err = blockScheduler(ctx.String("scheduler")); err != nil {
		return opts, err
	}

	for _, name := range []string{"width", "height", "spp", "num-bounces", "rr-bounces", "workers", "seed"} {
		if ctx.Int(name) < 0 {
			return opts, fmt.Errorf("%w: --%s must be >= 0", renderer.ErrInvalidOptions, name)
		}
	}

	if opts.MinBouncesForRR == 0 || opts.MinBouncesForRR > opts.NumBounces {
		logger.Notice("disabling RR for path elimination")
		opts.MinBouncesForRR = opts.NumBounces + 1
	}

	return opts, opts.Validate()
}

// Map a scheduler name to a block scheduler. An empty name selects the
// perfect scheduler.
func blockScheduler(name string) (tracer.BlockScheduler, error) {
	switch strings.ToLower(name) {
	case "", "perfect":
		return tracer.NewPerfectScheduler(), nil
	case "naive":
		return tracer.NewNaiveScheduler(), nil
	default:
		return nil, fmt.Errorf("%w: unknown block scheduler '%s'", renderer.ErrInvalidOptions, name)
	}
}

// Load the scene passed as the command argument and apply any camera
// overrides specified via command flags.
func loadScene(ctx *cli.Context, opts renderer.Options) (*scene.Scene, error) {
	if ctx.NArg() != 1 {
		return nil, errors.New("missing scene file argument")
	}

	sc, err := reader.ReadScene(ctx.Args().First())
	if err != nil {
		return nil, err
	}

	if !ctx.IsSet("cam-pos") && !ctx.IsSet("cam-rot") && !ctx.IsSet("fov") {
		return sc, nil
	}

	if sc.Camera == nil {
		sc.Camera = scene.NewCamera(float32(opts.FrameW) / float32(opts.FrameH))
	}

	if ctx.IsSet("cam-pos") {
		if sc.Camera.Position, err = parseVec3Flag(ctx.String("cam-pos")); err != nil {
			return nil, fmt.Errorf("invalid --cam-pos value: %w", err)
		}
	}

	if ctx.IsSet("cam-rot") {
		angles, err := parseVec3Flag(ctx.String("cam-rot"))
		if err != nil {
			return nil, fmt.Errorf("invalid --cam-rot value: %w", err)
		}
		sc.Camera.Rotation = types.Vec3{types.Radians(angles[0]), types.Radians(angles[1]), types.Radians(angles[2])}
	}

	if ctx.IsSet("fov") {
		fov := ctx.Float64("fov")
		if fov <= 0 || fov >= 180 || math.IsNaN(fov) {
			return nil, fmt.Errorf("invalid --fov value %f; expected a value in the (0, 180) range", fov)
		}

		// The vertical fov is derived from the frame aspect ratio
		sc.Camera.FOV = types.Vec2{types.Radians(float32(fov)), 0}
	}

	logger.Infof("camera overrides applied: %s", sc.Camera)
	return sc, nil
}

// Parse a comma-separated x,y,z vector.
func parseVec3Flag(value string) (types.Vec3, error) {
	tokens := strings.Split(value, ",")
	if len(tokens) != 3 {
		return types.Vec3{}, fmt.Errorf("expected 3 comma-separated values; got %d", len(tokens))
	}

	v := types.Vec3{}
	for index, token := range tokens {
		coord, err := strconv.ParseFloat(strings.TrimSpace(token), 32)
		if err != nil {
			return v, err
		}
		v[index] = float32(coord)
	}
	return v, nil
}

func displayFrameStats(stats renderer.FrameStats) {
	logger.Noticef("frame statistics\n%s", stats.Table())
}
