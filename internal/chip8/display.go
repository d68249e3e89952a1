package chip8

// Display dimensions in pixels.
const (
	DisplayWidth  = 64
	DisplayHeight = 32
)

// Display is the monochrome 64x32 framebuffer, stored row-major.
// The dirty flag is set by every operation that changes what should be
// shown and is cleared by the host after it consumed a frame.
type Display struct {
	pixels [DisplayWidth * DisplayHeight]bool
	dirty  bool
}

// Clear turns off every pixel and marks the display dirty.
func (d *Display) Clear() {
	clear(d.pixels[:])
	d.dirty = true
}

// XorPixel flips the pixel at row and col and returns its previous value.
// Callers pass coordinates already reduced modulo the display dimensions.
func (d *Display) XorPixel(row, col int) bool {
	index := row*DisplayWidth + col
	previous := d.pixels[index]
	d.pixels[index] = !previous
	return previous
}

// Pixel returns whether the pixel at x, y is set.
func (d *Display) Pixel(x, y int) bool {
	return d.pixels[y*DisplayWidth+x]
}

// Pixels returns a copy of the framebuffer in row-major order.
func (d *Display) Pixels() [DisplayWidth * DisplayHeight]bool {
	return d.pixels
}

// IsDirty returns whether the display changed since the last ClearDirty call.
func (d *Display) IsDirty() bool {
	return d.dirty
}

// ClearDirty resets the dirty flag.
func (d *Display) ClearDirty() {
	d.dirty = false
}

func (d *Display) markDirty() {
	d.dirty = true
}
