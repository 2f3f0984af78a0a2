package tracer

import (
	"fmt"
	"sync"
	"time"

	"github.com/26wolff/CS-Raytracer/log"
	"github.com/26wolff/CS-Raytracer/scene"
)

type cpuTracer struct {
	logger log.Logger

	sync.Mutex
	wg        sync.WaitGroup
	closeOnce sync.Once

	// The tracer id.
	id string

	// A buffer for queuing updates. Updates are grouped by type and
	// latest updates always overwrite the previous ones.
	updateBuffer map[ChangeType]interface{}

	// A channel for receiving block requests from the renderer.
	blockReqChan chan BlockRequest

	// A channel for signaling the worker to exit.
	closeChan chan struct{}

	// Statistics for last rendered block.
	stats *Stats

	// Relative speed compared to a single core.
	speed float32

	// The uploaded scene and a private copy of the camera. The scene is
	// shared with other tracers and must not be modified.
	sceneData *scene.Scene
	camera    *scene.Camera
}

// Create a new tracer that renders blocks on a dedicated goroutine. Each
// tracer keeps one CPU core busy.
func NewCPUTracer(id string) Tracer {
	tr := &cpuTracer{
		logger:       log.New(fmt.Sprintf("cpu tracer (%s)", id)),
		id:           id,
		blockReqChan: make(chan BlockRequest, 1),
		updateBuffer: make(map[ChangeType]interface{}, 0),
		stats:        &Stats{},
		speed:        1.0,
	}

	tr.startWorker()
	return tr
}

// Get tracer id.
func (tr *cpuTracer) Id() string {
	return tr.id
}

// Get the computation speed estimate.
func (tr *cpuTracer) SpeedEstimate() float32 {
	return tr.speed
}

// Shutdown and cleanup tracer.
func (tr *cpuTracer) Close() {
	tr.closeOnce.Do(func() {
		tr.closeChan <- struct{}{}

		// wait for worker to ack close and shutdown channel
		<-tr.closeChan
		close(tr.closeChan)
		tr.wg.Wait()

		tr.sceneData = nil
		tr.camera = nil
	})
}

// Enqueue block request.
func (tr *cpuTracer) Enqueue(blockReq BlockRequest) {
	select {
	case tr.blockReqChan <- blockReq:
	default:
		// reject the request if the worker has not drained the previous one
		tr.logger.Error("request processor did not receive block request")
		blockReq.ErrChan <- ErrTracerBusy
	}
}

// Append a change to the tracer's update buffer.
func (tr *cpuTracer) AppendChange(changeType ChangeType, data interface{}) {
	tr.Lock()
	defer tr.Unlock()
	tr.updateBuffer[changeType] = data
}

// Retrieve last block statistics.
func (tr *cpuTracer) Stats() *Stats {
	return tr.stats
}

// Commit queued changes.
func (tr *cpuTracer) commitUpdates() error {
	tr.Lock()
	defer tr.Unlock()

	for changeType, data := range tr.updateBuffer {
		switch changeType {
		case UpdateScene:
			sc, ok := data.(*scene.Scene)
			if !ok || sc == nil {
				return ErrNoSceneData
			}
			tr.sceneData = sc
			if sc.Camera != nil && tr.camera == nil {
				camCopy := *sc.Camera
				tr.camera = &camCopy
			}
		case UpdateCamera:
			cam, ok := data.(*scene.Camera)
			if !ok || cam == nil {
				return ErrNoCamera
			}
			camCopy := *cam
			tr.camera = &camCopy
		default:
			return fmt.Errorf("unsupported change type %d", changeType)
		}
	}

	tr.updateBuffer = make(map[ChangeType]interface{}, 0)
	return nil
}

// Spawn a go-routine to process block render requests.
func (tr *cpuTracer) startWorker() {
	tr.closeChan = make(chan struct{}, 0)

	readyChan := make(chan struct{}, 0)
	tr.wg.Add(1)
	go func() {
		defer tr.wg.Done()
		var blockReq BlockRequest
		var startTime time.Time
		var err error
		close(readyChan)
		for {
			select {
			case blockReq = <-tr.blockReqChan:
				// Apply any pending changes
				tr.stats.UpdateTime = 0
				startTime = time.Now()
				err = tr.commitUpdates()
				if err != nil {
					blockReq.ErrChan <- err
					continue
				}
				tr.stats.UpdateTime = time.Since(startTime)

				// Render block and reply with our completion status
				startTime = time.Now()
				err = tr.renderBlock(&blockReq)
				if err != nil {
					blockReq.ErrChan <- err
					continue
				}

				// Update stats
				tr.stats.BlockH = blockReq.BlockH
				tr.stats.RenderTime = time.Since(startTime)

				blockReq.DoneChan <- blockReq.BlockH
			case <-tr.closeChan:
				// Ack close
				tr.closeChan <- struct{}{}
				return
			}
		}
	}()

	// Wait for go-routine to start
	<-readyChan
}

// Render one sample for every pixel in the requested block.
func (tr *cpuTracer) renderBlock(blockReq *BlockRequest) error {
	if tr.sceneData == nil {
		return ErrNoSceneData
	}
	if tr.camera == nil {
		return ErrNoCamera
	}

	accum := blockReq.Accumulator
	frameW, frameH := accum.Dims()
	if blockReq.BlockY+blockReq.BlockH > frameH {
		return ErrBlockOutOfRange
	}

	integrator := PathIntegrator{
		MaxBounces:      blockReq.NumBounces,
		MinBouncesForRR: blockReq.MinBouncesForRR,
	}

	tr.stats.Rays = 0
	tr.stats.Misses = 0
	tr.stats.Terminated = 0
	tr.stats.Exhausted = 0

	invW := 1.0 / float32(frameW)
	invH := 1.0 / float32(frameH)
	for y := blockReq.BlockY; y < blockReq.BlockY+blockReq.BlockH; y++ {
		for x := uint32(0); x < frameW; x++ {
			pixelIndex := y*frameW + x
			jx, jy := pixelJitter(pixelSeed(blockReq.Seed, pixelIndex), blockReq.SampleIndex, blockReq.Jitter)

			// v grows upwards while frame rows grow downwards
			u := (float32(x) + jx) * invW
			v := 1.0 - (float32(y)+jy)*invH

			res := integrator.Trace(
				tr.sceneData,
				tr.camera.GetRay(u, v),
				NewPathSeed(blockReq.Seed, pixelIndex, blockReq.SampleIndex),
			)
			accum.Add(pixelIndex, res.Radiance)
			tr.stats.recordPath(res)
		}
	}

	return nil
}
