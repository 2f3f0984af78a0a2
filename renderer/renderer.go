package renderer

import (
	"context"
	"fmt"
	"time"

	"github.com/26wolff/CS-Raytracer/log"
	"github.com/26wolff/CS-Raytracer/scene"
	"github.com/26wolff/CS-Raytracer/tracer"
)

// Sample passes between progress reports.
const progressInterval = 5

type Renderer interface {
	// Render frame. Rendering stops between sample passes if ctx is
	// cancelled; the accumulated samples remain available via Frame.
	Render(ctx context.Context) error

	// Get the current frame.
	Frame() *Frame

	// Shutdown renderer and any attached tracer.
	Close()

	// Get render statistics.
	Stats() FrameStats
}

// The default renderer drives a pool of cpu tracers through a sequence of
// sample passes. Each pass splits the frame into one row block per tracer and
// waits for every block before the next pass starts.
type defaultRenderer struct {
	logger log.Logger

	scene   *scene.Scene
	camera  *scene.Camera
	options Options

	scheduler        tracer.BlockScheduler
	tracers          []tracer.Tracer
	blockAssignments []uint32

	accumulator *tracer.Accumulator

	// Channels for collecting block completion signals.
	doneChan chan uint32
	errChan  chan error

	stats FrameStats
}

// Create a new renderer for sc using the specified block scheduler.
func NewDefault(sc *scene.Scene, scheduler tracer.BlockScheduler, opts Options) (Renderer, error) {
	return newDefaultRenderer(sc, scheduler, opts)
}

func newDefaultRenderer(sc *scene.Scene, scheduler tracer.BlockScheduler, opts Options) (*defaultRenderer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if sc == nil {
		return nil, ErrSceneNotDefined
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	sc.EnsureCamera(opts.aspect())
	if err := sc.Camera.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCameraNotDefined, err)
	}

	numWorkers := opts.workerCount()
	if numWorkers == 0 {
		return nil, ErrNoTracers
	}

	camera := *sc.Camera
	r := &defaultRenderer{
		logger:      log.New("renderer"),
		scene:       sc,
		camera:      &camera,
		options:     opts,
		scheduler:   scheduler,
		tracers:     make([]tracer.Tracer, numWorkers),
		accumulator: tracer.NewAccumulator(opts.FrameW, opts.FrameH),
		doneChan:    make(chan uint32, numWorkers),
		errChan:     make(chan error, numWorkers),
	}

	for index := range r.tracers {
		tr := tracer.NewCPUTracer(fmt.Sprintf("cpu-%d", index))
		tr.AppendChange(tracer.UpdateScene, sc)
		tr.AppendChange(tracer.UpdateCamera, r.camera)
		r.tracers[index] = tr
	}
	r.stats.Tracers = make([]TracerStat, numWorkers)

	r.logger.Infof("using %d tracers to render %dx%d frame", numWorkers, opts.FrameW, opts.FrameH)
	return r, nil
}

// Shutdown renderer and any attached tracer.
func (r *defaultRenderer) Close() {
	for _, tr := range r.tracers {
		tr.Close()
	}
	r.tracers = nil
}

// Get render statistics.
func (r *defaultRenderer) Stats() FrameStats {
	return r.stats
}

// Get the current frame.
func (r *defaultRenderer) Frame() *Frame {
	return NewFrame(r.accumulator, r.options.exposure())
}

// Render all sample passes. Any previously accumulated samples are discarded.
func (r *defaultRenderer) Render(ctx context.Context) error {
	if len(r.tracers) == 0 {
		return ErrNoTracers
	}

	r.resetAccumulation()
	start := time.Now()
	defer func() {
		r.stats.RenderTime = time.Since(start)
	}()

	spp := r.options.SamplesPerPixel
	for sampleIndex := uint32(0); sampleIndex < spp; sampleIndex++ {
		if err := ctx.Err(); err != nil {
			r.logger.Warningf("render interrupted after %d of %d passes", sampleIndex, spp)
			return fmt.Errorf("%w: %w", ErrInterrupted, err)
		}

		if err := r.renderFrame(sampleIndex); err != nil {
			return err
		}

		if (sampleIndex+1)%progressInterval == 0 || sampleIndex+1 == spp {
			r.logger.Infof("completed pass %d/%d in %d ms", sampleIndex+1, spp, time.Since(start).Nanoseconds()/1e6)
		}

		if r.options.OnPass != nil {
			r.options.OnPass(sampleIndex+1, r.accumulator)
		}
	}

	return nil
}

// Discard accumulated samples and statistics.
func (r *defaultRenderer) resetAccumulation() {
	r.accumulator.Clear()
	r.stats = FrameStats{Tracers: make([]TracerStat, len(r.tracers))}
}

// Render a single sample pass and update the frame statistics.
func (r *defaultRenderer) renderFrame(sampleIndex uint32) error {
	start := time.Now()

	r.blockAssignments = r.scheduler.Schedule(r.tracers, r.options.FrameH)

	var blockY uint32 = 0
	for index, tr := range r.tracers {
		blockH := r.blockAssignments[index]
		tr.Enqueue(tracer.BlockRequest{
			BlockY:          blockY,
			BlockH:          blockH,
			SampleIndex:     sampleIndex,
			NumBounces:      r.options.NumBounces,
			MinBouncesForRR: r.options.MinBouncesForRR,
			Jitter:          r.options.Jitter,
			Seed:            r.options.Seed,
			Accumulator:     r.accumulator,
			DoneChan:        r.doneChan,
			ErrChan:         r.errChan,
		})
		blockY += blockH
	}

	// Wait for all tracers to finish, even if one of them fails, so that
	// no tracer is still writing to the accumulator when we return.
	var err error
	for pending := len(r.tracers); pending > 0; pending-- {
		select {
		case <-r.doneChan:
		case blockErr := <-r.errChan:
			if err == nil {
				err = blockErr
			}
		}
	}
	if err != nil {
		return err
	}

	r.updateStats(time.Since(start))
	return nil
}

func (r *defaultRenderer) updateStats(passTime time.Duration) {
	r.stats.Passes++
	for index, tr := range r.tracers {
		trStats := tr.Stats()

		stat := &r.stats.Tracers[index]
		stat.Id = tr.Id()
		stat.BlockH = trStats.BlockH
		stat.FramePercent = 100.0 * float32(trStats.BlockH) / float32(r.options.FrameH)
		stat.RenderTime = trStats.RenderTime
		stat.Rays += trStats.Rays

		r.stats.Rays += trStats.Rays
		r.stats.Misses += trStats.Misses
		r.stats.Terminated += trStats.Terminated
		r.stats.Exhausted += trStats.Exhausted
	}

	r.logger.Debugf("pass %d rendered in %d ms", r.stats.Passes, passTime.Nanoseconds()/1e6)
}
