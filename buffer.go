package ws281x

import "fmt"

// Buffer is the pixel array of one channel. It is created by the Driver at
// the configured pixel count and never resized; changing the count requires
// re-initializing the channel.
//
// A Buffer obtained from Slice is a view over the parent's pixels, never a
// copy: writes through the view are visible to the parent and picked up by
// the next Render. Concurrent reads are safe. A write concurrent with an
// in-progress Render is allowed but not snapshot-isolated; see the package
// documentation.
type Buffer struct {
	pix []Pixel
}

func newBuffer(count int) *Buffer {
	return &Buffer{pix: make([]Pixel, count)}
}

// Len returns the number of pixels.
func (b *Buffer) Len() int { return len(b.pix) }

// At returns the pixel at index i.
func (b *Buffer) At(i int) (Pixel, error) {
	if i < 0 || i >= len(b.pix) {
		return 0, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(b.pix))
	}
	return b.pix[i], nil
}

// Set stores p at index i.
func (b *Buffer) Set(i int, p Pixel) error {
	if i < 0 || i >= len(b.pix) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(b.pix))
	}
	b.pix[i] = p
	return nil
}

// SetRGB stores the given components at index i.
func (b *Buffer) SetRGB(i int, r, g, bl, w uint8) error {
	return b.Set(i, ColorRGBW(r, g, bl, w))
}

// SetRange copies pixels into the buffer starting at index start.
func (b *Buffer) SetRange(start int, pixels []Pixel) error {
	if start < 0 || start+len(pixels) > len(b.pix) {
		return fmt.Errorf("%w: [%d,%d) of %d", ErrIndexOutOfRange, start, start+len(pixels), len(b.pix))
	}
	copy(b.pix[start:], pixels)
	return nil
}

// Fill sets every pixel to p.
func (b *Buffer) Fill(p Pixel) {
	for i := range b.pix {
		b.pix[i] = p
	}
}

// Slice returns a sub-strip view of pixels [start, end). The view shares
// the parent's storage; use it to address a physical segment of the strip
// independently. Views of views are fine.
func (b *Buffer) Slice(start, end int) (*Buffer, error) {
	if start < 0 || end < start || end > len(b.pix) {
		return nil, fmt.Errorf("%w: [%d,%d) of %d", ErrIndexOutOfRange, start, end, len(b.pix))
	}
	return &Buffer{pix: b.pix[start:end]}, nil
}

// Pixels exposes the backing array for bulk reads. The slice aliases the
// buffer; treat it as read-only unless you own all writers.
func (b *Buffer) Pixels() []Pixel { return b.pix }
