package host

import (
	"image"
	"image/color"
	"strings"

	"github.com/nf/c8/chip8"
)

// Frame is a snapshot of the machine output published once per tick.
type Frame struct {
	Display chip8.Frame
	Tone    bool
}

var (
	onColor  = color.RGBA{0xe0, 0xe0, 0xd0, 0xff}
	offColor = color.RGBA{0x10, 0x18, 0x10, 0xff}
)

// drawImage paints fr onto dst, which must be at least
// chip8.Width by chip8.Height pixels.
func drawImage(dst *image.RGBA, fr chip8.Frame) {
	for y := range chip8.Height {
		for x := range chip8.Width {
			c := offColor
			if fr.Pixel(x, y) {
				c = onColor
			}
			dst.SetRGBA(x, y, c)
		}
	}
}

// halfBlock returns the character showing a vertical pair of pixels.
func halfBlock(top, bottom bool) rune {
	switch {
	case top && bottom:
		return '█'
	case top:
		return '▀'
	case bottom:
		return '▄'
	}
	return ' '
}

// FrameText renders fr as text, two pixel rows per line.
func FrameText(fr chip8.Frame) string {
	var b strings.Builder
	for y := 0; y < chip8.Height; y += 2 {
		for x := range chip8.Width {
			b.WriteRune(halfBlock(fr.Pixel(x, y), fr.Pixel(x, y+1)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
