package replace

import (
	"fmt"

	"github.com/ji-annnn/PixelFruit/internal/pixel"
)

// Entry records one applied replacement: the full buffer snapshot taken
// before the apply, the parameters used, and how many pixels changed.
// Snapshots are full copies rather than diffs, which keeps edit and
// delete semantics trivially correct at the cost of memory.
type Entry struct {
	snapshot *pixel.Buffer
	Params   Params
	Changed  int
}

// History is the ordered list of replacement entries for one editing
// session. It must only be used from the scheduler's host context.
type History struct {
	entries []*Entry
}

// Len returns the number of recorded entries.
func (h *History) Len() int { return len(h.entries) }

// Entries returns the recorded entries, oldest first. Callers must not
// mutate them.
func (h *History) Entries() []*Entry { return h.entries }

// Push records the pre-apply state together with the parameters and
// changed-pixel count of the apply that followed it. Push takes
// ownership of pre: the caller must pass a snapshot it will not touch
// again.
func (h *History) Push(pre *pixel.Buffer, params Params, changed int) {
	h.entries = append(h.entries, &Entry{
		snapshot: pre,
		Params:   params,
		Changed:  changed,
	})
}

// Undo pops the most recent entry and restores its snapshot into buf.
func (h *History) Undo(buf *pixel.Buffer) error {
	if len(h.entries) == 0 {
		return fmt.Errorf("history is empty")
	}
	last := h.entries[len(h.entries)-1]
	if err := buf.CopyFrom(last.snapshot); err != nil {
		return err
	}
	h.entries = h.entries[:len(h.entries)-1]
	return nil
}

// DeleteAt removes the entry at index i, restoring the buffer to that
// entry's pre-state and replaying every later entry with its stored
// parameters so their effects are preserved. Replayed entries get fresh
// snapshots and changed counts.
func (h *History) DeleteAt(i int, buf *pixel.Buffer) error {
	if i < 0 || i >= len(h.entries) {
		return fmt.Errorf("history index %d out of range [0,%d)", i, len(h.entries))
	}
	if err := buf.CopyFrom(h.entries[i].snapshot); err != nil {
		return err
	}
	tail := h.entries[i+1:]
	h.entries = h.entries[:i:i]
	h.replay(tail, buf)
	return nil
}

// EditAt re-runs the entry at index i with new parameters, replacing
// that slot, then replays the later entries on top of the new result.
func (h *History) EditAt(i int, buf *pixel.Buffer, params Params) error {
	if i < 0 || i >= len(h.entries) {
		return fmt.Errorf("history index %d out of range [0,%d)", i, len(h.entries))
	}
	if err := buf.CopyFrom(h.entries[i].snapshot); err != nil {
		return err
	}
	edited := &Entry{snapshot: h.entries[i].snapshot, Params: params}
	tail := h.entries[i+1:]
	h.entries = h.entries[:i:i]

	edited.Changed = Run(buf, params)
	h.entries = append(h.entries, edited)
	h.replay(tail, buf)
	return nil
}

// replay re-applies entries in order against the current buffer state.
func (h *History) replay(entries []*Entry, buf *pixel.Buffer) {
	for _, e := range entries {
		e.snapshot = buf.Clone()
		e.Changed = Run(buf, e.Params)
		h.entries = append(h.entries, e)
	}
}

// Clear drops all entries.
func (h *History) Clear() { h.entries = nil }
