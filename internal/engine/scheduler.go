package engine

import (
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/ji-annnn/PixelFruit/internal/pixel"
)

// Result is the asynchronous handle for one adjustment request. Wait
// blocks until the task reaches a terminal state.
type Result struct {
	// ID identifies the task for Cancel.
	ID uuid.UUID

	done chan struct{}
	buf  *pixel.Buffer
	err  error
}

func newResult() *Result {
	return &Result{ID: uuid.New(), done: make(chan struct{})}
}

// Done is closed when the task completes, fails, or is cancelled.
func (r *Result) Done() <-chan struct{} { return r.done }

// Wait blocks until terminal state and returns the processed buffer or
// the task's error.
func (r *Result) Wait() (*pixel.Buffer, error) {
	<-r.done
	return r.buf, r.err
}

func (r *Result) resolve(buf *pixel.Buffer, err error) {
	r.buf = buf
	r.err = err
	close(r.done)
}

// task is one queued unit of buffer-sized work. The buffer is
// conceptually transferred to the worker for the task's duration; the
// submitting caller must not mutate it until the result resolves.
type task struct {
	result    *Result
	buf       *pixel.Buffer
	ops       []Operation
	stages    []stage
	opts      ProcessOptions
	key       string
	cancelled atomic.Bool
}

// runWorker is the single logical worker execution context. Tasks run
// strictly sequentially and complete in FIFO dispatch order.
func (e *Engine) runWorker() {
	defer e.wg.Done()
	for {
		select {
		case <-e.closeCh:
			return
		case <-e.wake:
		}
		for {
			t := e.dequeue()
			if t == nil {
				break
			}
			e.execute(t)
		}
	}
}

// dequeue pops the next runnable task. Tasks cancelled while queued
// resolve immediately and never start.
func (e *Engine) dequeue() *task {
	e.mu.Lock()
	defer e.mu.Unlock()
	for len(e.queue) > 0 {
		t := e.queue[0]
		e.queue = e.queue[1:]
		if t.cancelled.Load() {
			delete(e.pending, t.result.ID)
			t.result.resolve(nil, ErrCancelled)
			continue
		}
		return t
	}
	return nil
}

// execute runs one task to a terminal state. A panic inside the
// pipeline is caught here so a failing task cannot wedge the queue.
func (e *Engine) execute(t *task) {
	defer func() {
		if rec := recover(); rec != nil {
			e.log.Error().Interface("panic", rec).Str("task", t.result.ID.String()).
				Msg("worker panicked")
			e.finish(t, nil, errors.Wrapf(ErrWorkerFailure, "%v", rec))
		}
	}()

	e.log.Debug().Str("task", t.result.ID.String()).Int("ops", len(t.stages)).
		Bool("progressive", t.opts.Progressive).Msg("task in flight")

	var out *pixel.Buffer
	var err error
	if t.opts.Progressive {
		out, err = e.renderProgressive(t)
	} else {
		out = runPipeline(t.buf, t.stages)
	}
	e.finish(t, out, err)
}

// finish moves a task to its terminal state. A cancelled in-flight
// task has run to completion by now; its result is dropped and never
// cached.
func (e *Engine) finish(t *task, out *pixel.Buffer, err error) {
	e.mu.Lock()
	delete(e.pending, t.result.ID)
	e.mu.Unlock()

	if t.cancelled.Load() {
		t.result.resolve(nil, ErrCancelled)
		return
	}
	if err != nil {
		t.result.resolve(nil, err)
		return
	}
	e.cache.put(t.key, out)
	t.result.resolve(out, nil)
}

// runPipeline chains the compiled stages. Each stage returns a fresh
// buffer, so the task's input is never aliased by the result.
func runPipeline(buf *pixel.Buffer, stages []stage) *pixel.Buffer {
	out := buf
	for _, st := range stages {
		out = st(out)
	}
	if out == buf {
		out = buf.Clone()
	}
	return out
}
