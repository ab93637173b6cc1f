package replace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ji-annnn/PixelFruit/internal/pixel"
)

func bufferOf(colors ...[4]uint8) *pixel.Buffer {
	buf := pixel.New(len(colors), 1)
	for p, c := range colors {
		copy(buf.Pix[p*4:], c[:])
	}
	return buf
}

func TestFindInRangeDegenerateBoundary(t *testing.T) {
	red := RGB{255, 0, 0}
	buf := bufferOf(
		[4]uint8{255, 0, 0, 255},
		[4]uint8{254, 0, 0, 255},
	)

	// Tolerance 0: only the exact color matches.
	matches := FindInRange(buf, red, red, 0)
	require.Len(t, matches, 1)
	assert.Equal(t, red, matches[0].Color)
	assert.Equal(t, []int{0}, matches[0].Positions)

	// Tolerance 1 is the minimal case that also accepts distance 1.
	matches = FindInRange(buf, red, red, 1)
	require.Len(t, matches, 2)
}

func TestFindInRangeSegmentProjection(t *testing.T) {
	black := RGB{0, 0, 0}
	white := RGB{255, 255, 255}
	buf := bufferOf(
		[4]uint8{128, 128, 128, 255}, // on the segment
		[4]uint8{255, 0, 0, 255},     // far off the gray axis
	)

	matches := FindInRange(buf, black, white, 10)
	require.Len(t, matches, 1)
	assert.Equal(t, RGB{128, 128, 128}, matches[0].Color)
}

func TestFindInRangeGroupsByExactColor(t *testing.T) {
	gray := [4]uint8{128, 128, 128, 255}
	dark := [4]uint8{100, 100, 100, 255}
	buf := bufferOf(gray, dark, gray)

	matches := FindInRange(buf, RGB{0, 0, 0}, RGB{255, 255, 255}, 10)
	require.Len(t, matches, 2)
	assert.Equal(t, []int{0, 2}, matches[0].Positions)
	assert.Equal(t, []int{1}, matches[1].Positions)
}

func TestDynamicToleranceClamping(t *testing.T) {
	// Short segment narrows the tolerance, but never below half.
	assert.Equal(t, 10.0, dynamicTolerance(20, 50), "50*0.2 = 10 = tol*0.5 floor")
	assert.Equal(t, 30.0, dynamicTolerance(20, 400), "80 capped at tol*1.5")
	assert.Equal(t, 20.0, dynamicTolerance(20, 500*0.2), "segment length dominating inside the band")
}

func TestApplyMapsMidpointOntoTargetSegment(t *testing.T) {
	buf := bufferOf([4]uint8{128, 128, 128, 255})
	start, end := RGB{0, 0, 0}, RGB{255, 255, 255}
	targetStart, targetEnd := RGB{0, 0, 255}, RGB{255, 0, 0}

	matches := FindInRange(buf, start, end, 10)
	require.Len(t, matches, 1)

	changed := Apply(buf, matches, start, end, targetStart, targetEnd, 1.0)
	assert.Equal(t, 1, changed)

	// Projection t ≈ 0.5 lands at the target segment midpoint, within
	// rounding.
	assert.InDelta(t, 128, int(buf.Pix[0]), 1)
	assert.Equal(t, uint8(0), buf.Pix[1])
	assert.InDelta(t, 127, int(buf.Pix[2]), 1)
	assert.Equal(t, uint8(255), buf.Pix[3], "alpha untouched")
}

func TestApplyMixZeroChangesNothing(t *testing.T) {
	buf := bufferOf([4]uint8{128, 128, 128, 255})
	want := buf.Clone()

	matches := FindInRange(buf, RGB{0, 0, 0}, RGB{255, 255, 255}, 10)
	changed := Apply(buf, matches, RGB{0, 0, 0}, RGB{255, 255, 255}, RGB{255, 0, 0}, RGB{0, 0, 255}, 0)

	assert.Equal(t, 0, changed)
	assert.True(t, buf.Equal(want))
}

func TestApplyBlendsByMixRatio(t *testing.T) {
	buf := bufferOf([4]uint8{200, 200, 200, 255})
	// Degenerate source and target: plain blend toward (0,0,0).
	c := RGB{200, 200, 200}
	matches := FindInRange(buf, c, c, 0)
	require.Len(t, matches, 1)

	changed := Apply(buf, matches, c, c, RGB{0, 0, 0}, RGB{0, 0, 0}, 0.5)
	assert.Equal(t, 1, changed)
	assert.Equal(t, uint8(100), buf.Pix[0])
}

func TestHistoryUndoRoundTrip(t *testing.T) {
	buf := bufferOf([4]uint8{128, 128, 128, 255}, [4]uint8{0, 255, 0, 255})
	original := buf.Clone()

	params := Params{
		Start: RGB{0, 0, 0}, End: RGB{255, 255, 255}, Tolerance: 10,
		TargetStart: RGB{255, 0, 0}, TargetEnd: RGB{255, 0, 0}, Mix: 1,
	}

	var h History
	pre := buf.Clone()
	changed := Run(buf, params)
	require.Greater(t, changed, 0)
	h.Push(pre, params, changed)
	require.False(t, buf.Equal(original))

	require.NoError(t, h.Undo(buf))
	assert.True(t, buf.Equal(original), "undo must restore the exact pre-apply bytes")
	assert.Equal(t, 0, h.Len())

	assert.Error(t, h.Undo(buf), "empty history cannot undo")
}

// applyTracked runs a replacement the way the engine does: snapshot,
// run, push.
func applyTracked(h *History, buf *pixel.Buffer, p Params) int {
	pre := buf.Clone()
	changed := Run(buf, p)
	h.Push(pre, p, changed)
	return changed
}

func TestHistoryDeleteReplaysLaterEntries(t *testing.T) {
	buf := bufferOf([4]uint8{50, 50, 50, 255})

	// Entry 0: 50 -> 100 (degenerate ranges, full mix).
	p0 := Params{Start: RGB{50, 50, 50}, End: RGB{50, 50, 50}, Tolerance: 0,
		TargetStart: RGB{100, 100, 100}, TargetEnd: RGB{100, 100, 100}, Mix: 1}
	// Entry 1: 100 -> 200.
	p1 := Params{Start: RGB{100, 100, 100}, End: RGB{100, 100, 100}, Tolerance: 0,
		TargetStart: RGB{200, 200, 200}, TargetEnd: RGB{200, 200, 200}, Mix: 1}

	var h History
	applyTracked(&h, buf, p0)
	applyTracked(&h, buf, p1)
	require.Equal(t, uint8(200), buf.Pix[0])

	// Deleting entry 0 restores 50, then replays entry 1, which no
	// longer matches anything (the buffer never reaches 100).
	require.NoError(t, h.DeleteAt(0, buf))
	assert.Equal(t, uint8(50), buf.Pix[0])
	require.Equal(t, 1, h.Len())
	assert.Equal(t, 0, h.Entries()[0].Changed, "replayed entry found no pixels")
}

func TestHistoryEditReplaysLaterEntries(t *testing.T) {
	buf := bufferOf([4]uint8{50, 50, 50, 255})

	p0 := Params{Start: RGB{50, 50, 50}, End: RGB{50, 50, 50}, Tolerance: 0,
		TargetStart: RGB{100, 100, 100}, TargetEnd: RGB{100, 100, 100}, Mix: 1}
	p1 := Params{Start: RGB{100, 100, 100}, End: RGB{100, 100, 100}, Tolerance: 0,
		TargetStart: RGB{200, 200, 200}, TargetEnd: RGB{200, 200, 200}, Mix: 1}

	var h History
	applyTracked(&h, buf, p0)
	applyTracked(&h, buf, p1)

	// Edit entry 0 to map 50 -> 120 instead. Entry 1 then no longer
	// matches, leaving the buffer at 120.
	edited := p0
	edited.TargetStart = RGB{120, 120, 120}
	edited.TargetEnd = RGB{120, 120, 120}
	require.NoError(t, h.EditAt(0, buf, edited))

	assert.Equal(t, uint8(120), buf.Pix[0])
	require.Equal(t, 2, h.Len())
	assert.Equal(t, edited, h.Entries()[0].Params)
	assert.Equal(t, 0, h.Entries()[1].Changed)
}

func TestHistoryIndexOutOfRange(t *testing.T) {
	var h History
	buf := bufferOf([4]uint8{1, 2, 3, 255})
	assert.Error(t, h.DeleteAt(0, buf))
	assert.Error(t, h.EditAt(-1, buf, Params{}))
}
