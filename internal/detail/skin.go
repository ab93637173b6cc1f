package detail

import (
	"math"

	"github.com/anthonynsimon/bild/parallel"

	"github.com/ji-annnn/PixelFruit/internal/pixel"
)

// Heuristic weights for the skin-likelihood score. The four tests are
// ad hoc and may disagree at the margins; the weights are tuned, not
// derived, and are kept as-is.
const (
	weightRGBRule    = 0.30
	weightYUVRange   = 0.25
	weightNormalized = 0.25
	weightDominance  = 0.20
)

// BrightenSkin selectively brightens and whitens skin-toned regions and
// returns a new buffer.
//
// Three passes: a per-pixel skin-likelihood mask from four independent
// color heuristics, an optional box blur of the mask (radius
// floor(smoothness/20)) to soften mask edges, then a brighten/whiten
// composite proportional to likelihood*strength/100.
func BrightenSkin(buf *pixel.Buffer, strength, smoothness float64) *pixel.Buffer {
	out := buf.Clone()
	if strength == 0 {
		return out
	}

	w, h := buf.Width, buf.Height
	mask := make([]float64, w*h)

	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				i := buf.Offset(x, y)
				mask[y*w+x] = skinLikelihood(buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2])
			}
		}
	})

	if radius := int(smoothness / 20); radius > 0 {
		mask = boxBlurMask(mask, w, h, radius)
	}

	amount := strength / 100
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				likelihood := mask[y*w+x]
				if likelihood <= 0 {
					continue
				}
				eff := likelihood * amount
				i := buf.Offset(x, y)
				r := float64(buf.Pix[i])
				g := float64(buf.Pix[i+1])
				b := float64(buf.Pix[i+2])

				// Brighten, shift red down and blue up, then pull
				// toward the mean. Order matters: desaturation acts on
				// the already shifted channels.
				lum := 1 + 0.30*eff
				r *= lum
				g *= lum
				b *= lum
				r *= 1 - 0.20*eff
				b *= 1 + 0.15*eff
				mean := (r + g + b) / 3
				r += (mean - r) * 0.40 * eff
				g += (mean - g) * 0.40 * eff
				b += (mean - b) * 0.40 * eff

				out.Pix[i] = pixel.Clamp(r)
				out.Pix[i+1] = pixel.Clamp(g)
				out.Pix[i+2] = pixel.Clamp(b)
			}
		}
	})

	return out
}

// skinLikelihood combines four independent heuristics into a score in
// [0,1]. Each test contributes its full weight when it fires.
func skinLikelihood(r8, g8, b8 uint8) float64 {
	r, g, b := float64(r8), float64(g8), float64(b8)
	score := 0.0

	// 1. RGB ordering/dominance rule: warm, red-dominant pixels with
	// enough spread between channels.
	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	if r > 95 && g > 40 && b > 20 && maxC-minC > 15 && math.Abs(r-g) > 15 && r > g && r > b {
		score += weightRGBRule
	}

	// 2. YUV chroma range typical of skin.
	u := 128 - 0.168736*r - 0.331264*g + 0.5*b
	v := 128 + 0.5*r - 0.418688*g - 0.081312*b
	if u >= 77 && u <= 127 && v >= 133 && v <= 173 {
		score += weightYUVRange
	}

	// 3. Normalized-RGB ratios: chromaticity window that is mostly
	// illumination-invariant.
	if sum := r + g + b; sum > 0 {
		nr := r / sum
		ng := g / sum
		if nr > 0.35 && nr < 0.47 && ng > 0.26 && ng < 0.37 {
			score += weightNormalized
		}
	}

	// 4. Plain channel dominance.
	if r > g && g > b {
		score += weightDominance
	}

	if score > 1 {
		score = 1
	}
	return score
}

// boxBlurMask blurs the likelihood mask with a square box filter so the
// brightening fades out instead of cutting off at hard mask edges.
func boxBlurMask(mask []float64, w, h, radius int) []float64 {
	blurred := make([]float64, len(mask))
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				var sum float64
				count := 0
				for dy := -radius; dy <= radius; dy++ {
					yy := y + dy
					if yy < 0 || yy >= h {
						continue
					}
					for dx := -radius; dx <= radius; dx++ {
						xx := x + dx
						if xx < 0 || xx >= w {
							continue
						}
						sum += mask[yy*w+xx]
						count++
					}
				}
				blurred[y*w+x] = sum / float64(count)
			}
		}
	})
	return blurred
}
