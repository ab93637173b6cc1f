package pixel

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		buf     *Buffer
		wantErr bool
	}{
		{"valid", New(4, 3), false},
		{"zero width", &Buffer{Width: 0, Height: 3, Pix: []uint8{}}, true},
		{"negative height", &Buffer{Width: 4, Height: -1, Pix: []uint8{}}, true},
		{"short pix", &Buffer{Width: 4, Height: 3, Pix: make([]uint8, 40)}, true},
		{"long pix", &Buffer{Width: 4, Height: 3, Pix: make([]uint8, 52)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.buf.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	buf := New(2, 2)
	buf.Pix[0] = 42

	clone := buf.Clone()
	require.True(t, buf.Equal(clone))

	clone.Pix[0] = 99
	assert.Equal(t, uint8(42), buf.Pix[0], "mutating the clone must not affect the original")
}

func TestCopyFromDimensionMismatch(t *testing.T) {
	dst := New(2, 2)
	assert.Error(t, dst.CopyFrom(New(3, 2)))
	assert.NoError(t, dst.CopyFrom(New(2, 2)))
}

func TestFromImageRoundTrip(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 200})

	buf := FromImage(img)
	require.NoError(t, buf.Validate())
	assert.Equal(t, 3, buf.Width)
	assert.Equal(t, 2, buf.Height)

	i := buf.Offset(1, 1)
	assert.Equal(t, uint8(10), buf.Pix[i])
	assert.Equal(t, uint8(20), buf.Pix[i+1])
	assert.Equal(t, uint8(30), buf.Pix[i+2])
	assert.Equal(t, uint8(200), buf.Pix[i+3])

	// Image() shares storage with the buffer.
	out := buf.Image()
	out.SetNRGBA(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	assert.Equal(t, uint8(1), buf.Pix[0])
}

func TestClamp(t *testing.T) {
	assert.Equal(t, uint8(0), Clamp(-5))
	assert.Equal(t, uint8(0), Clamp(0))
	assert.Equal(t, uint8(128), Clamp(127.6))
	assert.Equal(t, uint8(255), Clamp(255))
	assert.Equal(t, uint8(255), Clamp(999))
}
