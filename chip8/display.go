package chip8

import "strings"

// Display dimensions in pixels.
const (
	Width  = 64
	Height = 32
)

// Frame is a monochrome 64x32 bitmap, one word per row.
// The most significant bit of each row is the pixel at x = 0.
type Frame [Height]uint64

// Pixel reports whether the pixel at (x, y) is set.
// Coordinates wrap around the edges of the display.
func (fr Frame) Pixel(x, y int) bool {
	x, y = wrap(x, Width), wrap(y, Height)
	return fr[y]&(1<<(Width-1-x)) != 0
}

// toggle flips the pixel at (x, y) and reports whether it was set before.
func (fr *Frame) toggle(x, y int) (was bool) {
	bit := uint64(1) << (Width - 1 - x)
	was = fr[y]&bit != 0
	fr[y] ^= bit
	return was
}

// Empty reports whether no pixel is set.
func (fr Frame) Empty() bool {
	return fr == Frame{}
}

func (fr Frame) String() string {
	var b strings.Builder
	for y := range Height {
		for x := range Width {
			if fr.Pixel(x, y) {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// drawSprite XORs an 8-pixel wide sprite onto the frame with its top-left
// corner at (x, y), wrapping at the edges, and reports whether any set pixel
// was cleared.
func (fr *Frame) drawSprite(x, y int, sprite []byte) (collision bool) {
	for row, bits := range sprite {
		py := wrap(y+row, Height)
		for col := range 8 {
			if bits&(0x80>>col) == 0 {
				continue
			}
			if fr.toggle(wrap(x+col, Width), py) {
				collision = true
			}
		}
	}
	return collision
}

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
