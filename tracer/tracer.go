package tracer

import "time"

type ChangeType uint8

const (
	UpdateScene ChangeType = iota
	UpdateCamera
)

// A unit of work that is processed by a tracer: one sample for every pixel in
// a block of frame rows.
type BlockRequest struct {
	// Block start row and height.
	BlockY uint32
	BlockH uint32

	// The index of the sample pass. Together with Seed it selects the random
	// stream for every path traced in this block.
	SampleIndex uint32

	// Path integrator settings.
	NumBounces      uint32
	MinBouncesForRR uint32

	// Sub-pixel jitter strength (0 = pixel center).
	Jitter float32

	// A global seed value for the tracer's hash-based random source.
	Seed uint32

	// The accumulator that receives the samples. The tracer only writes to
	// pixels inside [BlockY, BlockY+BlockH).
	Accumulator *Accumulator

	// A channel to signal on block completion with the number of completed rows.
	DoneChan chan<- uint32

	// A channel to signal if an error occurs.
	ErrChan chan<- error
}

// Tracer statistics for the last processed block.
type Stats struct {
	// The rendered block height
	BlockH uint32

	// The time for rendering this block.
	RenderTime time.Duration

	// The time spent applying pending changes before rendering the block.
	UpdateTime time.Duration

	// Number of rays intersected against the scene.
	Rays uint64

	// Number of paths by terminal state.
	Misses     uint64
	Terminated uint64
	Exhausted  uint64
}

// Record the outcome of a traced path.
func (s *Stats) recordPath(res PathResult) {
	s.Rays += uint64(res.Bounces)
	switch res.State {
	case PathMiss:
		s.Rays++
		s.Misses++
	case PathTerminated:
		s.Terminated++
	case PathMaxBounce:
		s.Exhausted++
	}
}

type Tracer interface {
	// Get tracer id.
	Id() string

	// Shutdown and cleanup tracer.
	Close()

	// Get the tracers computation speed estimate compared to a
	// baseline (single core) implementation.
	SpeedEstimate() float32

	// Enqueue block request.
	Enqueue(BlockRequest)

	// Append a change to the tracer's update buffer. Changes are applied
	// before the next block request is processed.
	AppendChange(ChangeType, interface{})

	// Retrieve last block statistics.
	Stats() *Stats
}
