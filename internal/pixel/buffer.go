// Package pixel defines the flat RGBA buffer the processing pipeline
// operates on, plus conversions to and from the standard image types.
//
// A Buffer stores interleaved 8-bit RGBA bytes for a width×height image,
// exactly as delivered by the RAW-decoding collaborator. All processing
// units read and write channel bytes directly; none of them touch the
// alpha channel.
package pixel

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
)

// Buffer is a width×height image as a flat interleaved RGBA byte slice.
//
// Invariant: len(Pix) == Width*Height*4. Use Validate before handing a
// caller-supplied buffer to any processing function.
type Buffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// New allocates a zeroed buffer of the given dimensions.
func New(width, height int) *Buffer {
	return &Buffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}
}

// Validate checks the dimension/length invariant.
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("nil buffer")
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d", b.Width, b.Height)
	}
	if len(b.Pix) != b.Width*b.Height*4 {
		return fmt.Errorf("pixel data length %d does not match %dx%d (want %d)",
			len(b.Pix), b.Width, b.Height, b.Width*b.Height*4)
	}
	return nil
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{
		Width:  b.Width,
		Height: b.Height,
		Pix:    make([]uint8, len(b.Pix)),
	}
	copy(out.Pix, b.Pix)
	return out
}

// CopyFrom overwrites this buffer's contents with src. Dimensions must match.
func (b *Buffer) CopyFrom(src *Buffer) error {
	if b.Width != src.Width || b.Height != src.Height {
		return fmt.Errorf("dimension mismatch: %dx%d vs %dx%d",
			b.Width, b.Height, src.Width, src.Height)
	}
	copy(b.Pix, src.Pix)
	return nil
}

// Equal reports whether two buffers have identical dimensions and bytes.
func (b *Buffer) Equal(other *Buffer) bool {
	return b.Width == other.Width && b.Height == other.Height &&
		bytes.Equal(b.Pix, other.Pix)
}

// Offset returns the index of the R byte for pixel (x, y).
func (b *Buffer) Offset(x, y int) int {
	return (y*b.Width + x) * 4
}

// FromImage converts any image.Image into a Buffer. The image is drawn
// into non-premultiplied RGBA so channel bytes match the original color
// values regardless of the source color model.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)

	return &Buffer{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Pix:    nrgba.Pix,
	}
}

// Image exposes the buffer as a non-premultiplied RGBA image sharing the
// same pixel storage. Mutating the returned image mutates the buffer.
func (b *Buffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pix,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// Clamp converts a float channel value to a byte, clamping to [0,255].
func Clamp(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
