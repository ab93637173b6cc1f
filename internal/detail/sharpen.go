// Package detail implements the spatial filters: unsharp-mask
// sharpening, the three denoise kernels, and the selective skin
// brightening pass. All filters leave a 1-pixel border and the alpha
// channel untouched.
package detail

import (
	"github.com/anthonynsimon/bild/parallel"

	"github.com/ji-annnn/PixelFruit/internal/pixel"
)

// QualityHint selects between full-quality processing and a cheaper
// draft mode used while the host is rapidly changing parameters.
type QualityHint int

const (
	// QualityFull processes every pixel.
	QualityFull QualityHint = iota

	// QualityDraft processes a 2-pixel lattice, roughly quartering the
	// work. Skipped pixels keep their original value.
	QualityDraft
)

// Sharpen applies a 3×3 unsharp mask and returns a new buffer.
//
// For each interior pixel the mean of the 8 neighbors (excluding the
// pixel itself) is computed per channel, then v' = v + (v-mean)*amount/100.
// amount 0 is a no-op and returns a copy.
func Sharpen(buf *pixel.Buffer, amount float64, hint QualityHint) *pixel.Buffer {
	out := buf.Clone()
	if amount == 0 || buf.Width < 3 || buf.Height < 3 {
		return out
	}

	strength := amount / 100
	step := 1
	if hint == QualityDraft {
		step = 2
	}
	w := buf.Width

	parallel.Line(buf.Height-2, func(start, end int) {
		for y := start + 1; y < end+1; y += step {
			for x := 1; x < w-1; x += step {
				i := buf.Offset(x, y)
				for c := 0; c < 3; c++ {
					sum := 0
					for dy := -1; dy <= 1; dy++ {
						for dx := -1; dx <= 1; dx++ {
							if dx == 0 && dy == 0 {
								continue
							}
							sum += int(buf.Pix[buf.Offset(x+dx, y+dy)+c])
						}
					}
					mean := float64(sum) / 8
					v := float64(buf.Pix[i+c])
					out.Pix[i+c] = pixel.Clamp(v + (v-mean)*strength)
				}
			}
		}
	})

	return out
}
