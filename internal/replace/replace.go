// Package replace implements color-range replacement: pixels whose
// color lies near the line segment between two reference colors in RGB
// space are remapped onto a target segment, with full-snapshot history
// for undo, edit, and delete.
package replace

import (
	"math"

	"github.com/ji-annnn/PixelFruit/internal/pixel"
)

// RGB is an 8-bit color with no alpha, used for range endpoints.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Match groups every matched pixel of one exact color. Positions are
// pixel indices (offset/4) into the buffer, in scan order. The grouping
// is for reporting; replacement is always computed per pixel.
type Match struct {
	Color     RGB   `json:"color"`
	Positions []int `json:"positions"`
}

// Params captures one replacement operation, enough to re-run it during
// history replay.
type Params struct {
	Start       RGB     `json:"start"`
	End         RGB     `json:"end"`
	Tolerance   float64 `json:"tolerance"`
	TargetStart RGB     `json:"targetStart"`
	TargetEnd   RGB     `json:"targetEnd"`
	Mix         float64 `json:"mix"`
}

// segment precomputes the geometry of the start→end color segment.
type segment struct {
	sr, sg, sb float64
	dr, dg, db float64
	len2       float64
	length     float64
}

func newSegment(start, end RGB) segment {
	s := segment{
		sr: float64(start.R), sg: float64(start.G), sb: float64(start.B),
		dr: float64(end.R) - float64(start.R),
		dg: float64(end.G) - float64(start.G),
		db: float64(end.B) - float64(start.B),
	}
	s.len2 = s.dr*s.dr + s.dg*s.dg + s.db*s.db
	s.length = math.Sqrt(s.len2)
	return s
}

// project returns the scalar projection of (r,g,b)−start onto the
// segment, and the distance from the pixel to the projected point.
// For a degenerate segment t is 0 and the distance is plain Euclidean.
func (s segment) project(r, g, b float64) (t, dist float64) {
	pr, pg, pb := r-s.sr, g-s.sg, b-s.sb
	if s.len2 == 0 {
		return 0, math.Sqrt(pr*pr + pg*pg + pb*pb)
	}
	t = (pr*s.dr + pg*s.dg + pb*s.db) / s.len2
	qr := pr - t*s.dr
	qg := pg - t*s.dg
	qb := pb - t*s.db
	return t, math.Sqrt(qr*qr + qg*qg + qb*qb)
}

// dynamicTolerance widens or narrows the user tolerance by up to 50%
// based on the segment length. Tuned, not derived; kept verbatim.
func dynamicTolerance(tolerance, segLength float64) float64 {
	dyn := segLength * 0.2
	if dyn < tolerance*0.5 {
		dyn = tolerance * 0.5
	}
	if dyn > tolerance*1.5 {
		dyn = tolerance * 1.5
	}
	return dyn
}

// FindInRange scans the buffer for pixels within tolerance of the
// start–end color segment and returns them grouped by exact color, in
// order of first occurrence.
//
// When start == end the match degenerates to a radius test: Euclidean
// distance ≤ tolerance around the single color. Otherwise a pixel
// matches when its projection onto the segment falls in [0,1] and its
// perpendicular distance is within the dynamic tolerance.
func FindInRange(buf *pixel.Buffer, start, end RGB, tolerance float64) []Match {
	seg := newSegment(start, end)
	degenerate := seg.len2 == 0
	dynTol := dynamicTolerance(tolerance, seg.length)

	var matches []Match
	index := make(map[RGB]int)

	n := buf.Width * buf.Height
	for p := 0; p < n; p++ {
		i := p * 4
		r, g, b := buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2]
		t, dist := seg.project(float64(r), float64(g), float64(b))

		if degenerate {
			if dist > tolerance {
				continue
			}
		} else if t < 0 || t > 1 || dist > dynTol {
			continue
		}

		c := RGB{r, g, b}
		if gi, ok := index[c]; ok {
			matches[gi].Positions = append(matches[gi].Positions, p)
		} else {
			index[c] = len(matches)
			matches = append(matches, Match{Color: c, Positions: []int{p}})
		}
	}

	return matches
}

// Apply remaps every matched pixel onto the target segment and blends
// the result with the original by mix (0 = no change, 1 = full
// replacement). The buffer is mutated in place. Returns the number of
// pixels whose bytes actually changed.
//
// Each pixel's own projection t is reused for the target interpolation,
// so a gradient in the source range maps to a gradient in the target
// range instead of a flat fill.
func Apply(buf *pixel.Buffer, matches []Match, start, end, targetStart, targetEnd RGB, mix float64) int {
	seg := newSegment(start, end)
	tr := float64(targetStart.R)
	tg := float64(targetStart.G)
	tb := float64(targetStart.B)
	tdr := float64(targetEnd.R) - tr
	tdg := float64(targetEnd.G) - tg
	tdb := float64(targetEnd.B) - tb

	changed := 0
	for _, m := range matches {
		for _, p := range m.Positions {
			i := p * 4
			r := float64(buf.Pix[i])
			g := float64(buf.Pix[i+1])
			b := float64(buf.Pix[i+2])

			t, _ := seg.project(r, g, b)
			if t < 0 {
				t = 0
			} else if t > 1 {
				t = 1
			}

			nr := pixel.Clamp(r + (tr+t*tdr-r)*mix)
			ng := pixel.Clamp(g + (tg+t*tdg-g)*mix)
			nb := pixel.Clamp(b + (tb+t*tdb-b)*mix)

			if nr != buf.Pix[i] || ng != buf.Pix[i+1] || nb != buf.Pix[i+2] {
				changed++
			}
			buf.Pix[i] = nr
			buf.Pix[i+1] = ng
			buf.Pix[i+2] = nb
		}
	}

	return changed
}

// Run finds and replaces in one step using the stored parameters. Used
// for both fresh applies and history replay.
func Run(buf *pixel.Buffer, p Params) int {
	matches := FindInRange(buf, p.Start, p.End, p.Tolerance)
	return Apply(buf, matches, p.Start, p.End, p.TargetStart, p.TargetEnd, p.Mix)
}
