package engine

import "github.com/pkg/errors"

// Error taxonomy for the scheduler boundary. InvalidBuffer and
// UnknownOperation are detected synchronously, before anything is
// enqueued. WorkerFailure surfaces a recovered panic from the worker;
// the queue keeps draining after one. Nothing is retried automatically:
// processing is deterministic, so an identical retry fails identically.
var (
	// ErrInvalidBuffer means the buffer's dimensions and byte length
	// disagree.
	ErrInvalidBuffer = errors.New("invalid buffer")

	// ErrUnknownOperation means an operation type is not recognized by
	// the pipeline, or its parameters do not decode.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrWorkerFailure means the worker panicked while processing.
	ErrWorkerFailure = errors.New("worker failure")

	// ErrCancelled resolves the result of a cancelled task.
	ErrCancelled = errors.New("task cancelled")

	// ErrClosed is returned by Process after Close.
	ErrClosed = errors.New("engine closed")
)
