package tracer

import "errors"

var (
	ErrNoSceneData     = errors.New("tracer: no scene data uploaded")
	ErrNoCamera        = errors.New("tracer: no camera uploaded")
	ErrTracerBusy      = errors.New("tracer: worker did not receive block request")
	ErrBlockOutOfRange = errors.New("tracer: block exceeds frame bounds")
)
