package renderer

import (
	"fmt"
	"math"
	"runtime"

	"github.com/26wolff/CS-Raytracer/tracer"
)

// The max supported bounce count.
const MaxNumBounces = 1024

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Number of sample passes. Every pass adds one sample to each pixel.
	SamplesPerPixel uint32

	// Number of indirect bounces.
	NumBounces uint32

	// Min bounces before applying russian roulette for path elimination. A
	// value greater than NumBounces disables russian roulette.
	MinBouncesForRR uint32

	// Sub-pixel jitter strength for anti-aliasing (0 = sample pixel centers).
	Jitter float32

	// Exposure applied to the accumulated radiance before clamping. A zero
	// value is treated as 1.
	Exposure float32

	// Number of cpu tracers. A zero value uses one tracer per cpu core.
	NumWorkers int

	// Seed for the hash-based random source.
	Seed uint32

	// The block scheduler used by Render. A nil value selects the perfect
	// scheduler.
	Scheduler tracer.BlockScheduler

	// An optional callback invoked after every completed sample pass with
	// the number of accumulated samples per pixel.
	OnPass func(samples uint32, accum *tracer.Accumulator)
}

// Get the default rendering options.
func DefaultOptions() Options {
	return Options{
		FrameW:          1280,
		FrameH:          720,
		SamplesPerPixel: 16,
		NumBounces:      8,
		MinBouncesForRR: 3,
		Jitter:          1.0,
		Exposure:        1.0,
	}
}

// Check that the options describe a renderable frame.
func (opts *Options) Validate() error {
	switch {
	case opts.FrameW == 0 || opts.FrameH == 0:
		return fmt.Errorf("%w: frame dimensions must be > 0; got %dx%d", ErrInvalidOptions, opts.FrameW, opts.FrameH)
	case opts.SamplesPerPixel == 0:
		return fmt.Errorf("%w: samples per pixel must be > 0", ErrInvalidOptions)
	case opts.NumBounces > MaxNumBounces:
		return fmt.Errorf("%w: bounce count must be <= %d; got %d", ErrInvalidOptions, MaxNumBounces, opts.NumBounces)
	case opts.Jitter < 0 || math.IsNaN(float64(opts.Jitter)) || math.IsInf(float64(opts.Jitter), 0):
		return fmt.Errorf("%w: jitter must be a finite value >= 0; got %f", ErrInvalidOptions, opts.Jitter)
	case opts.Exposure < 0 || math.IsNaN(float64(opts.Exposure)) || math.IsInf(float64(opts.Exposure), 0):
		return fmt.Errorf("%w: exposure must be a finite value >= 0; got %f", ErrInvalidOptions, opts.Exposure)
	case opts.NumWorkers < 0:
		return fmt.Errorf("%w: worker count must be >= 0; got %d", ErrInvalidOptions, opts.NumWorkers)
	}

	return nil
}

// Get the frame aspect ratio.
func (opts *Options) aspect() float32 {
	return float32(opts.FrameW) / float32(opts.FrameH)
}

func (opts *Options) scheduler() tracer.BlockScheduler {
	if opts.Scheduler == nil {
		return tracer.NewPerfectScheduler()
	}
	return opts.Scheduler
}

func (opts *Options) exposure() float32 {
	if opts.Exposure == 0 {
		return 1.0
	}
	return opts.Exposure
}

// Get the number of tracers to spawn. Every tracer needs at least one row.
func (opts *Options) workerCount() int {
	numWorkers := opts.NumWorkers
	if numWorkers == 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > int(opts.FrameH) {
		numWorkers = int(opts.FrameH)
	}
	return numWorkers
}
