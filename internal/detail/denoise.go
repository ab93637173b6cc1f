package detail

import (
	"fmt"
	"sort"
	"strings"

	"github.com/anthonynsimon/bild/parallel"

	"github.com/ji-annnn/PixelFruit/internal/pixel"
)

// Algorithm selects one of the three denoise kernels.
type Algorithm int

const (
	// AlgorithmMean is a 3×3 box mean with edge-adaptive blending:
	// pixels that deviate strongly from their neighborhood (edges) are
	// denoised less than flat regions.
	AlgorithmMean Algorithm = iota

	// AlgorithmMedian takes the per-channel median of the 3×3
	// neighborhood.
	AlgorithmMedian

	// AlgorithmGaussian convolves with the fixed 3×3 kernel
	// [1 2 1; 2 4 2; 1 2 1]/16.
	AlgorithmGaussian
)

// ParseAlgorithm maps a user-facing algorithm name to its Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(name) {
	case "", "mean", "edge-aware":
		return AlgorithmMean, nil
	case "median":
		return AlgorithmMedian, nil
	case "gaussian":
		return AlgorithmGaussian, nil
	default:
		return 0, fmt.Errorf("unknown denoise algorithm %q", name)
	}
}

// String returns the canonical algorithm name.
func (a Algorithm) String() string {
	switch a {
	case AlgorithmMedian:
		return "median"
	case AlgorithmGaussian:
		return "gaussian"
	default:
		return "mean"
	}
}

// Denoise applies the selected noise-reduction kernel and returns a new
// buffer. strength is 0-100; 0 returns a copy. detailPreservation
// (0-100) only affects the mean kernel, where it protects edges from
// being averaged away.
func Denoise(buf *pixel.Buffer, strength float64, algo Algorithm, detailPreservation float64) *pixel.Buffer {
	out := buf.Clone()
	if strength == 0 || buf.Width < 3 || buf.Height < 3 {
		return out
	}

	switch algo {
	case AlgorithmMedian:
		denoiseMedian(buf, out, strength)
	case AlgorithmGaussian:
		denoiseGaussian(buf, out, strength)
	default:
		denoiseMean(buf, out, strength, detailPreservation)
	}
	return out
}

// denoiseMean blends each interior pixel with its 3×3 box mean. The
// blend is attenuated by an edge factor: the mean absolute deviation of
// the pixel from the neighborhood mean, normalized and scaled by
// detailPreservation/50, reduces the effective strength so edges keep
// their contrast.
func denoiseMean(src, dst *pixel.Buffer, strength, detailPreservation float64) {
	base := strength / 100
	protect := detailPreservation / 50
	w := src.Width

	parallel.Line(src.Height-2, func(start, end int) {
		for y := start + 1; y < end+1; y++ {
			for x := 1; x < w-1; x++ {
				i := src.Offset(x, y)

				var mean [3]float64
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						j := src.Offset(x+dx, y+dy)
						mean[0] += float64(src.Pix[j])
						mean[1] += float64(src.Pix[j+1])
						mean[2] += float64(src.Pix[j+2])
					}
				}
				mean[0] /= 9
				mean[1] /= 9
				mean[2] /= 9

				var deviation float64
				for c := 0; c < 3; c++ {
					d := float64(src.Pix[i+c]) - mean[c]
					if d < 0 {
						d = -d
					}
					deviation += d / 255
				}
				deviation /= 3

				factor := base * (1 - deviation*protect)
				if factor < 0 {
					factor = 0
				}
				for c := 0; c < 3; c++ {
					v := float64(src.Pix[i+c])
					dst.Pix[i+c] = pixel.Clamp(v + (mean[c]-v)*factor)
				}
			}
		}
	})
}

// denoiseMedian blends each interior pixel with its per-channel 3×3
// median. Below 50 strength the blend drops to half rate; the steep
// transition at the threshold is intentional.
func denoiseMedian(src, dst *pixel.Buffer, strength float64) {
	factor := strength / 100
	if strength < 50 {
		factor = strength / 200
	}
	w := src.Width

	parallel.Line(src.Height-2, func(start, end int) {
		var window [9]int
		for y := start + 1; y < end+1; y++ {
			for x := 1; x < w-1; x++ {
				i := src.Offset(x, y)
				for c := 0; c < 3; c++ {
					n := 0
					for dy := -1; dy <= 1; dy++ {
						for dx := -1; dx <= 1; dx++ {
							window[n] = int(src.Pix[src.Offset(x+dx, y+dy)+c])
							n++
						}
					}
					sort.Ints(window[:])
					median := float64(window[4])
					v := float64(src.Pix[i+c])
					dst.Pix[i+c] = pixel.Clamp(v + (median-v)*factor)
				}
			}
		}
	})
}

// gaussianKernel is the fixed 3×3 low-pass kernel, normalized by 16.
var gaussianKernel = [3][3]float64{
	{1, 2, 1},
	{2, 4, 2},
	{1, 2, 1},
}

func denoiseGaussian(src, dst *pixel.Buffer, strength float64) {
	factor := strength / 100
	w := src.Width

	parallel.Line(src.Height-2, func(start, end int) {
		for y := start + 1; y < end+1; y++ {
			for x := 1; x < w-1; x++ {
				i := src.Offset(x, y)
				for c := 0; c < 3; c++ {
					var sum float64
					for dy := -1; dy <= 1; dy++ {
						for dx := -1; dx <= 1; dx++ {
							sum += float64(src.Pix[src.Offset(x+dx, y+dy)+c]) * gaussianKernel[dy+1][dx+1]
						}
					}
					blurred := sum / 16
					v := float64(src.Pix[i+c])
					dst.Pix[i+c] = pixel.Clamp(v + (blurred-v)*factor)
				}
			}
		}
	})
}
