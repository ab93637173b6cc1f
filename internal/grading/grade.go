package grading

import (
	"math"

	"github.com/anthonynsimon/bild/parallel"

	"github.com/ji-annnn/PixelFruit/internal/pixel"
)

// Grade applies the full grading chain to buf and returns a new buffer.
// The input is never modified. When every setting is at its identity
// value the pixel loop is skipped and a plain copy is returned; callers
// rely on this being cheap.
func Grade(buf *pixel.Buffer, s Settings) *pixel.Buffer {
	if s.IsIdentity() {
		return buf.Clone()
	}

	out := pixel.New(buf.Width, buf.Height)

	// Stage constants hoisted out of the pixel loop.
	var wbR, wbG, wbB float64 = 1, 1, 1
	if len(s.WhiteBalance) >= 3 {
		wbR, wbG, wbB = s.WhiteBalance[0], s.WhiteBalance[1], s.WhiteBalance[2]
	}
	contrastF := (259.0 * (s.Contrast + 255.0)) / (255.0 * (259.0 - s.Contrast))
	exposureF := math.Pow(2, s.Exposure)

	parallel.Line(buf.Height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < buf.Width; x++ {
				i := buf.Offset(x, y)
				r := float64(buf.Pix[i])
				g := float64(buf.Pix[i+1])
				b := float64(buf.Pix[i+2])

				// 1. White balance
				if s.WhiteBalance != nil {
					r = clampChan(r * wbR)
					g = clampChan(g * wbG)
					b = clampChan(b * wbB)
				}

				// 2. Brightness
				if s.Brightness != 1.0 {
					r = clampChan(r * s.Brightness)
					g = clampChan(g * s.Brightness)
					b = clampChan(b * s.Brightness)
				}

				// 3. Contrast
				if s.Contrast != 0 {
					r = clampChan(contrastF*(r-128) + 128)
					g = clampChan(contrastF*(g-128) + 128)
					b = clampChan(contrastF*(b-128) + 128)
				}

				// 4. Saturation, luminance-weighted
				if s.Saturation != 1.0 {
					l := 0.299*r + 0.587*g + 0.114*b
					r = clampChan(l + s.Saturation*(r-l))
					g = clampChan(l + s.Saturation*(g-l))
					b = clampChan(l + s.Saturation*(b-l))
				}

				// 5. Temperature: warm raises red, cools blue by half.
				if s.Temperature != 0 {
					r = clampChan(r + s.Temperature)
					b = clampChan(b - s.Temperature/2)
				}

				// 6. Tint: green against red, same asymmetry.
				if s.Tint != 0 {
					g = clampChan(g + s.Tint)
					r = clampChan(r - s.Tint/2)
				}

				// 7. Exposure
				if s.Exposure != 0 {
					r = clampChan(r * exposureF)
					g = clampChan(g * exposureF)
					b = clampChan(b * exposureF)
				}

				// 8. Shadows: pull dark channels toward the threshold.
				if s.Shadows != 0 {
					r = liftShadow(r, s.Shadows)
					g = liftShadow(g, s.Shadows)
					b = liftShadow(b, s.Shadows)
				}

				// 9. Highlights: push bright channels away from the threshold.
				if s.Highlights != 0 {
					r = pushHighlight(r, s.Highlights)
					g = pushHighlight(g, s.Highlights)
					b = pushHighlight(b, s.Highlights)
				}

				// 10. Whites: scale pixels whose mean brightness is in the
				// white zone.
				if s.Whites != 0 && s.Whites != 100 {
					if (r+g+b)/3 > whiteThreshold {
						f := s.Whites / 100
						r = clampChan(r * f)
						g = clampChan(g * f)
						b = clampChan(b * f)
					}
				}

				out.Pix[i] = pixel.Clamp(r)
				out.Pix[i+1] = pixel.Clamp(g)
				out.Pix[i+2] = pixel.Clamp(b)
				out.Pix[i+3] = buf.Pix[i+3]
			}
		}
	})

	return out
}

func liftShadow(v, strength float64) float64 {
	if v >= shadowThreshold {
		return v
	}
	return clampChan(v + (shadowThreshold-v)*strength/100)
}

func pushHighlight(v, strength float64) float64 {
	if v <= highlightThreshold {
		return v
	}
	v += (v - highlightThreshold) * strength / 100
	if v < highlightThreshold {
		return highlightThreshold
	}
	if v > 255 {
		return 255
	}
	return v
}

func clampChan(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
