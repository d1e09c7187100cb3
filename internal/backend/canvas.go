package backend

import "fmt"

// Canvas is a mutable ARGB pixel surface.
type Canvas interface {
	Width() uint32
	Height() uint32
	Pixel(x, y uint32) uint32
	SetPixel(x, y uint32, argb uint32)
	Raw() []uint32
}

// ImageBuffer is an in-memory ARGB canvas.
type ImageBuffer struct {
	width  uint32
	height uint32
	data   []uint32
}

// NewImageBuffer creates a zeroed canvas.
func NewImageBuffer(width, height uint32) *ImageBuffer {
	return &ImageBuffer{
		width:  width,
		height: height,
		data:   make([]uint32, width*height),
	}
}

// Width returns the canvas width in pixels.
func (b *ImageBuffer) Width() uint32 { return b.width }

// Height returns the canvas height in pixels.
func (b *ImageBuffer) Height() uint32 { return b.height }

// Pixel returns the ARGB value at (x, y); out-of-bounds reads return 0.
func (b *ImageBuffer) Pixel(x, y uint32) uint32 {
	if x >= b.width || y >= b.height {
		return 0
	}
	return b.data[y*b.width+x]
}

// SetPixel writes the ARGB value at (x, y); out-of-bounds writes are
// dropped.
func (b *ImageBuffer) SetPixel(x, y uint32, argb uint32) {
	if x >= b.width || y >= b.height {
		return
	}
	b.data[y*b.width+x] = argb
}

// Raw returns the backing pixel slice in row-major order.
func (b *ImageBuffer) Raw() []uint32 { return b.data }

// Fill floods the whole canvas with one color.
func (b *ImageBuffer) Fill(argb uint32) {
	for i := range b.data {
		b.data[i] = argb
	}
}

// Blit copies a rectangle from src into b at (dx, dy).
func (b *ImageBuffer) Blit(dx, dy uint32, src Canvas, sx, sy, w, h uint32) error {
	if sx+w > src.Width() || sy+h > src.Height() {
		return fmt.Errorf("blit source out of range: %dx%d+%d+%d from %dx%d", w, h, sx, sy, src.Width(), src.Height())
	}
	for y := uint32(0); y < h; y++ {
		for x := uint32(0); x < w; x++ {
			b.SetPixel(dx+x, dy+y, src.Pixel(sx+x, sy+y))
		}
	}
	return nil
}
