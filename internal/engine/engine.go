// Package engine ties the processing units together behind an
// asynchronous scheduler: a FIFO task queue with a single worker, a
// bounded TTL'd result cache, progressive multi-resolution previews,
// change-detected histograms, and the replacement history.
//
// One Engine is constructed per editing session and owns all mutable
// state; nothing in this package uses package-level globals.
package engine

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ji-annnn/PixelFruit/internal/histogram"
	"github.com/ji-annnn/PixelFruit/internal/pixel"
	"github.com/ji-annnn/PixelFruit/internal/replace"
)

// Config carries everything an Engine needs at construction time.
type Config struct {
	Cache CacheConfig

	// ProgressiveSteps is the number of sub-tasks a progressive request
	// is split into (minimum 2: one preview, one final).
	ProgressiveSteps int

	// InitialScale is the resolution scale of the first progressive
	// preview; quality eases in quadratically from here to 1.0.
	InitialScale float64

	Logger zerolog.Logger
}

// DefaultConfig returns the interactive-editing defaults.
func DefaultConfig() Config {
	return Config{
		Cache:            DefaultCacheConfig(),
		ProgressiveSteps: 4,
		InitialScale:     0.25,
		Logger:           zerolog.Nop(),
	}
}

// ProcessOptions modifies one Process call.
type ProcessOptions struct {
	// Progressive renders a ladder of increasing-resolution previews
	// before the final result. Disable for deterministic scenarios.
	Progressive bool

	// OnProgress receives each progressive preview, upscaled to full
	// resolution, with pct in (0,100]. Called from the worker
	// goroutine. Ignored when Progressive is false.
	OnProgress func(pct float64, preview *pixel.Buffer)
}

// Engine is the scheduling and caching front of the pipeline. Process
// and Cancel may be called from any goroutine; the replacement,
// history, and histogram surfaces belong to the host context and must
// not be called from worker-side code.
type Engine struct {
	cfg   Config
	log   zerolog.Logger
	cache *resultCache

	mu      sync.Mutex
	queue   []*task
	pending map[uuid.UUID]*task
	closed  bool
	closeCh chan struct{}
	wake    chan struct{}
	wg      sync.WaitGroup

	hostMu   sync.Mutex
	history  *replace.History
	analyzer histogram.Analyzer
}

// New starts an Engine with its worker goroutine. Callers must Close it.
func New(cfg Config) *Engine {
	if cfg.ProgressiveSteps < 2 {
		cfg.ProgressiveSteps = 2
	}
	if cfg.InitialScale <= 0 || cfg.InitialScale > 1 {
		cfg.InitialScale = 0.25
	}
	e := &Engine{
		cfg:     cfg,
		log:     cfg.Logger,
		cache:   newResultCache(cfg.Cache),
		pending: make(map[uuid.UUID]*task),
		closeCh: make(chan struct{}),
		wake:    make(chan struct{}, 1),
		history: &replace.History{},
	}
	e.wg.Add(1)
	go e.runWorker()
	return e
}

// Close stops the worker. Queued tasks resolve with ErrClosed.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	drained := e.queue
	e.queue = nil
	for _, t := range drained {
		delete(e.pending, t.result.ID)
	}
	e.mu.Unlock()

	close(e.closeCh)
	e.wg.Wait()
	for _, t := range drained {
		t.result.resolve(nil, ErrClosed)
	}
}

// Process validates and enqueues an adjustment request: an ordered
// operation list applied to buf. Validation failures (ErrInvalidBuffer,
// ErrUnknownOperation) are returned synchronously and nothing is
// enqueued. A cache hit returns an already-resolved Result without a
// worker round trip.
//
// The buffer is transferred to the worker for the task's duration; the
// caller must not mutate it before the result resolves.
func (e *Engine) Process(buf *pixel.Buffer, ops []Operation, opts ProcessOptions) (*Result, error) {
	if err := buf.Validate(); err != nil {
		return nil, errors.Wrap(ErrInvalidBuffer, err.Error())
	}
	stages, err := compilePipeline(ops)
	if err != nil {
		return nil, err
	}

	key := cacheKey(buf, ops)
	if cached := e.cache.get(key); cached != nil {
		e.log.Debug().Str("key", key).Msg("cache hit")
		r := newResult()
		r.resolve(cached, nil)
		return r, nil
	}

	t := &task{
		result: newResult(),
		buf:    buf,
		ops:    ops,
		stages: stages,
		opts:   opts,
		key:    key,
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrClosed
	}
	e.queue = append(e.queue, t)
	e.pending[t.result.ID] = t
	e.mu.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}
	return t.result, nil
}

// Cancel marks a task cancelled. A still-queued task never starts; an
// in-flight task runs to completion but its result is dropped. Returns
// false when the id is unknown or already terminal.
func (e *Engine) Cancel(id uuid.UUID) bool {
	e.mu.Lock()
	t, ok := e.pending[id]
	e.mu.Unlock()
	if !ok {
		return false
	}
	t.cancelled.Store(true)
	e.log.Debug().Str("task", id.String()).Msg("task cancelled")
	return true
}

// ConfigureCache replaces the cache configuration. Disabling drops all
// entries.
func (e *Engine) ConfigureCache(cfg CacheConfig) { e.cache.configure(cfg) }

// ClearCache drops every cached result.
func (e *Engine) ClearCache() { e.cache.clear() }

// CacheStats reports hit/miss counters and the live entry count.
func (e *Engine) CacheStats() CacheStats { return e.cache.stats() }

// Histogram returns channel and luminance distributions for buf,
// served from the change-detecting analyzer: when a cheap content
// sample matches the previous call, the prior result is returned
// without a recount.
func (e *Engine) Histogram(buf *pixel.Buffer) (*histogram.Data, error) {
	if err := buf.Validate(); err != nil {
		return nil, errors.Wrap(ErrInvalidBuffer, err.Error())
	}
	e.hostMu.Lock()
	defer e.hostMu.Unlock()
	return e.analyzer.Histogram(buf), nil
}

// FindInRange classifies buf's pixels against the start–end color
// segment, grouped by exact color.
func (e *Engine) FindInRange(buf *pixel.Buffer, start, end replace.RGB, tolerance float64) ([]replace.Match, error) {
	if err := buf.Validate(); err != nil {
		return nil, errors.Wrap(ErrInvalidBuffer, err.Error())
	}
	return replace.FindInRange(buf, start, end, tolerance), nil
}

// ApplyReplace remaps the matched pixels onto the target segment,
// mutating buf in place, and records a reversible history entry.
func (e *Engine) ApplyReplace(buf *pixel.Buffer, matches []replace.Match, p replace.Params) (int, error) {
	if err := buf.Validate(); err != nil {
		return 0, errors.Wrap(ErrInvalidBuffer, err.Error())
	}
	e.hostMu.Lock()
	defer e.hostMu.Unlock()

	pre := buf.Clone()
	changed := replace.Apply(buf, matches, p.Start, p.End, p.TargetStart, p.TargetEnd, p.Mix)
	e.history.Push(pre, p, changed)
	e.log.Debug().Int("changed", changed).Msg("replacement applied")
	return changed, nil
}

// Undo restores the most recent replacement's pre-state into buf.
func (e *Engine) Undo(buf *pixel.Buffer) error {
	e.hostMu.Lock()
	defer e.hostMu.Unlock()
	return e.history.Undo(buf)
}

// HistoryLen returns the number of recorded replacement entries.
func (e *Engine) HistoryLen() int {
	e.hostMu.Lock()
	defer e.hostMu.Unlock()
	return e.history.Len()
}

// HistoryEntries exposes the recorded entries, oldest first.
func (e *Engine) HistoryEntries() []*replace.Entry {
	e.hostMu.Lock()
	defer e.hostMu.Unlock()
	return e.history.Entries()
}

// DeleteHistoryEntry removes entry i, restoring its pre-state and
// replaying later entries so their effects survive.
func (e *Engine) DeleteHistoryEntry(i int, buf *pixel.Buffer) error {
	e.hostMu.Lock()
	defer e.hostMu.Unlock()
	return e.history.DeleteAt(i, buf)
}

// EditHistoryEntry re-runs entry i with new parameters in place.
func (e *Engine) EditHistoryEntry(i int, buf *pixel.Buffer, p replace.Params) error {
	e.hostMu.Lock()
	defer e.hostMu.Unlock()
	return e.history.EditAt(i, buf, p)
}
