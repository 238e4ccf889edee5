package host

import (
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nf/c8/chip8"
)

func testFrame() chip8.Frame {
	var fr chip8.Frame
	fr[0] = 1 << 63       // (0, 0)
	fr[1] = 1<<63 | 1<<62 // (0, 1) and (1, 1)
	fr[31] = 1            // (63, 31)
	return fr
}

func TestFrameText(t *testing.T) {
	lines := strings.Split(FrameText(testFrame()), "\n")
	assert.Len(t, lines, chip8.Height/2+1)
	assert.Equal(t, "█▄ ", string([]rune(lines[0])[:3]))
	assert.Equal(t, '▄', []rune(lines[15])[63])
	assert.Equal(t, strings.Repeat(" ", chip8.Width), lines[1])
}

func TestDrawImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, chip8.Width, chip8.Height))
	drawImage(img, testFrame())
	assert.Equal(t, onColor, img.RGBAAt(0, 0))
	assert.Equal(t, offColor, img.RGBAAt(1, 0))
	assert.Equal(t, onColor, img.RGBAAt(1, 1))
	assert.Equal(t, onColor, img.RGBAAt(63, 31))
}
