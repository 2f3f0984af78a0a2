package renderer

import (
	"context"
	"errors"

	"github.com/26wolff/CS-Raytracer/scene"
)

// Render sc using opts and return the resulting frame. If ctx gets cancelled
// between sample passes, Render returns the partially accumulated frame
// together with an error wrapping ErrInterrupted.
func Render(ctx context.Context, sc *scene.Scene, opts Options) (*Frame, FrameStats, error) {
	r, err := newDefaultRenderer(sc, opts.scheduler(), opts)
	if err != nil {
		return nil, FrameStats{}, err
	}
	defer r.Close()

	err = r.Render(ctx)
	if err != nil && !errors.Is(err, ErrInterrupted) {
		return nil, r.Stats(), err
	}

	return r.Frame(), r.Stats(), err
}
