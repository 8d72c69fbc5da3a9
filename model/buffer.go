package model

import "fmt"

// PixelBuffer holds the logical color of every LED on a strip. Its length is
// fixed at construction. It has a single owner and no locking; writes are
// seen by the next flush, there is no double buffering.
type PixelBuffer struct {
	pixels []Color
}

// NewPixelBuffer allocates n black pixels. n must be positive.
func NewPixelBuffer(n int) (*PixelBuffer, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: invalid LED count %d", ErrConfiguration, n)
	}
	return &PixelBuffer{pixels: make([]Color, n)}, nil
}

func (b *PixelBuffer) Len() int {
	return len(b.pixels)
}

// Set writes one pixel. Indexes outside [0, Len()) are rejected, never
// clamped.
func (b *PixelBuffer) Set(i int, c Color) error {
	if i < 0 || i >= len(b.pixels) {
		return fmt.Errorf("%w: pixel %d of %d", ErrIndexOutOfRange, i, len(b.pixels))
	}
	b.pixels[i] = c
	return nil
}

// At returns pixel i, or an error for an out of range index.
func (b *PixelBuffer) At(i int) (Color, error) {
	if i < 0 || i >= len(b.pixels) {
		return Black, fmt.Errorf("%w: pixel %d of %d", ErrIndexOutOfRange, i, len(b.pixels))
	}
	return b.pixels[i], nil
}

// Fill sets every pixel to c.
func (b *PixelBuffer) Fill(c Color) {
	for i := range b.pixels {
		b.pixels[i] = c
	}
}

// Clear is Fill(Black).
func (b *PixelBuffer) Clear() {
	b.Fill(Black)
}

// Pixels returns a copy of the buffer contents.
func (b *PixelBuffer) Pixels() []Color {
	out := make([]Color, len(b.pixels))
	copy(out, b.pixels)
	return out
}
