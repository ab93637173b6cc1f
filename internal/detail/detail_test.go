package detail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ji-annnn/PixelFruit/internal/pixel"
)

func solidBuffer(w, h int, r, g, b, a uint8) *pixel.Buffer {
	buf := pixel.New(w, h)
	for i := 0; i < len(buf.Pix); i += 4 {
		buf.Pix[i] = r
		buf.Pix[i+1] = g
		buf.Pix[i+2] = b
		buf.Pix[i+3] = a
	}
	return buf
}

func TestSharpenZeroAmountIsNoop(t *testing.T) {
	buf := solidBuffer(5, 5, 90, 100, 110, 255)
	out := Sharpen(buf, 0, QualityFull)
	assert.True(t, buf.Equal(out))
}

func TestSharpenFlatRegionUnchanged(t *testing.T) {
	// Every pixel equals its neighborhood mean, so v + (v-mean)*s == v.
	buf := solidBuffer(5, 5, 100, 100, 100, 255)
	out := Sharpen(buf, 80, QualityFull)
	assert.True(t, buf.Equal(out))
}

func TestSharpenIncreasesLocalContrast(t *testing.T) {
	buf := solidBuffer(5, 5, 100, 100, 100, 255)
	center := buf.Offset(2, 2)
	buf.Pix[center] = 150

	out := Sharpen(buf, 100, QualityFull)
	// v + (v-mean)*1 with mean < v pushes the bright pixel brighter.
	assert.Greater(t, out.Pix[center], uint8(150))
}

func TestSharpenBorderUntouched(t *testing.T) {
	buf := solidBuffer(5, 5, 100, 100, 100, 255)
	buf.Pix[buf.Offset(2, 2)] = 255

	out := Sharpen(buf, 100, QualityFull)
	for x := 0; x < 5; x++ {
		require.Equal(t, uint8(100), out.Pix[out.Offset(x, 0)])
		require.Equal(t, uint8(100), out.Pix[out.Offset(x, 4)])
	}
	for y := 0; y < 5; y++ {
		require.Equal(t, uint8(100), out.Pix[out.Offset(0, y)])
		require.Equal(t, uint8(100), out.Pix[out.Offset(4, y)])
	}
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		in      string
		want    Algorithm
		wantErr bool
	}{
		{"mean", AlgorithmMean, false},
		{"edge-aware", AlgorithmMean, false},
		{"", AlgorithmMean, false},
		{"Median", AlgorithmMedian, false},
		{"gaussian", AlgorithmGaussian, false},
		{"bilateral", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAlgorithm(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDenoiseZeroStrengthIsNoop(t *testing.T) {
	buf := solidBuffer(5, 5, 90, 100, 110, 255)
	buf.Pix[buf.Offset(2, 2)] = 250
	for _, algo := range []Algorithm{AlgorithmMean, AlgorithmMedian, AlgorithmGaussian} {
		out := Denoise(buf, 0, algo, 50)
		assert.True(t, buf.Equal(out), "algorithm %s", algo)
	}
}

func TestDenoiseMedianRemovesImpulseNoise(t *testing.T) {
	buf := solidBuffer(5, 5, 100, 100, 100, 255)
	center := buf.Offset(2, 2)
	buf.Pix[center] = 255

	out := Denoise(buf, 100, AlgorithmMedian, 50)
	assert.Equal(t, uint8(100), out.Pix[center], "median of the 3x3 window replaces the outlier")
}

func TestDenoiseMedianHalfRateBelowThreshold(t *testing.T) {
	buf := solidBuffer(5, 5, 100, 100, 100, 255)
	center := buf.Offset(2, 2)
	buf.Pix[center] = 200

	// strength 40 < 50: blend factor is 40/200 = 0.2, not 0.4.
	out := Denoise(buf, 40, AlgorithmMedian, 50)
	// 200 + (100-200)*0.2 = 180
	assert.Equal(t, uint8(180), out.Pix[center])
}

func TestDenoiseGaussianFlatUnchanged(t *testing.T) {
	buf := solidBuffer(5, 5, 100, 100, 100, 255)
	out := Denoise(buf, 100, AlgorithmGaussian, 50)
	assert.True(t, buf.Equal(out))
}

func TestDenoiseMeanProtectsEdges(t *testing.T) {
	// Two buffers with the same outlier: one denoised with detail
	// preservation, one without. The protected run must keep the pixel
	// closer to its original value.
	mk := func() *pixel.Buffer {
		buf := solidBuffer(5, 5, 50, 50, 50, 255)
		i := buf.Offset(2, 2)
		buf.Pix[i] = 250
		buf.Pix[i+1] = 250
		buf.Pix[i+2] = 250
		return buf
	}
	unprotected := Denoise(mk(), 100, AlgorithmMean, 0)
	protected := Denoise(mk(), 100, AlgorithmMean, 100)

	i := unprotected.Offset(2, 2)
	assert.Greater(t, protected.Pix[i], unprotected.Pix[i])
}

func TestDenoiseBorderAndAlphaUntouched(t *testing.T) {
	for _, algo := range []Algorithm{AlgorithmMean, AlgorithmMedian, AlgorithmGaussian} {
		buf := solidBuffer(4, 4, 80, 90, 100, 123)
		buf.Pix[buf.Offset(1, 1)] = 255
		out := Denoise(buf, 100, algo, 50)

		require.Equal(t, uint8(80), out.Pix[out.Offset(0, 0)], "algorithm %s", algo)
		for i := 3; i < len(out.Pix); i += 4 {
			require.Equal(t, uint8(123), out.Pix[i], "algorithm %s", algo)
		}
	}
}

func TestSkinLikelihoodScores(t *testing.T) {
	// A typical skin tone fires several heuristics; pure blue fires none.
	skin := skinLikelihood(220, 170, 140)
	assert.Greater(t, skin, 0.5)

	blue := skinLikelihood(0, 0, 255)
	assert.Equal(t, 0.0, blue)
}

func TestBrightenSkinZeroStrengthIsNoop(t *testing.T) {
	buf := solidBuffer(4, 4, 220, 170, 140, 255)
	out := BrightenSkin(buf, 0, 50)
	assert.True(t, buf.Equal(out))
}

func TestBrightenSkinBrightensSkinOnly(t *testing.T) {
	skin := solidBuffer(4, 4, 200, 150, 120, 255)
	outSkin := BrightenSkin(skin, 80, 0)
	// Luminance rises where the mask fires.
	assert.Greater(t, outSkin.Pix[1], skin.Pix[1], "green channel brightened")

	sky := solidBuffer(4, 4, 40, 80, 220, 255)
	outSky := BrightenSkin(sky, 80, 0)
	assert.True(t, sky.Equal(outSky), "non-skin pixels untouched")
}

func TestBrightenSkinAlphaUntouched(t *testing.T) {
	buf := solidBuffer(4, 4, 220, 170, 140, 77)
	out := BrightenSkin(buf, 100, 60)
	for i := 3; i < len(out.Pix); i += 4 {
		require.Equal(t, uint8(77), out.Pix[i])
	}
}
