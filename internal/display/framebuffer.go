package display

import (
	"github.com/lucasb-eyer/go-colorful"
)

// FrameBuffer holds pixels packed in the driver's native encoding:
// monochrome packs 8 pixels per byte (LSB first), Gray4 packs 2 pixels
// per byte (high nibble first). The render loop draws into a FrameBuffer
// and hands Bytes() to Driver.WriteBuffer without re-encoding.
type FrameBuffer struct {
	width  uint32
	height uint32
	depth  ColorDepth
	pix    []byte
}

// NewFrameBuffer creates a zeroed framebuffer matching the given
// capabilities.
func NewFrameBuffer(caps Capabilities) *FrameBuffer {
	return &FrameBuffer{
		width:  caps.Width,
		height: caps.Height,
		depth:  caps.ColorDepth,
		pix:    make([]byte, caps.ExpectedBufferLen()),
	}
}

// Dimensions returns (width, height) in pixels.
func (f *FrameBuffer) Dimensions() (uint32, uint32) {
	return f.width, f.height
}

// ColorDepth returns the pixel format of this framebuffer.
func (f *FrameBuffer) ColorDepth() ColorDepth {
	return f.depth
}

// Len returns the packed byte length.
func (f *FrameBuffer) Len() int {
	return len(f.pix)
}

// Bytes returns the packed pixel data. The slice aliases the buffer's
// storage; it is valid until the next drawing call.
func (f *FrameBuffer) Bytes() []byte {
	return f.pix
}

// Clear resets every pixel to off/black.
func (f *FrameBuffer) Clear() {
	for i := range f.pix {
		f.pix[i] = 0
	}
}

// SetPixel sets the pixel at (x, y) to the given level. For monochrome,
// any non-zero level turns the pixel on. For Gray4, level is clamped to
// 0-15. Out-of-range coordinates are ignored.
func (f *FrameBuffer) SetPixel(x, y int, level uint8) {
	if x < 0 || y < 0 || uint32(x) >= f.width || uint32(y) >= f.height {
		return
	}
	i := y*int(f.width) + x
	switch f.depth {
	case Gray4:
		if level > 15 {
			level = 15
		}
		if i%2 == 0 {
			f.pix[i/2] = (f.pix[i/2] & 0x0F) | (level << 4)
		} else {
			f.pix[i/2] = (f.pix[i/2] & 0xF0) | level
		}
	default:
		if level != 0 {
			f.pix[i/8] |= 1 << (i % 8)
		} else {
			f.pix[i/8] &^= 1 << (i % 8)
		}
	}
}

// Pixel returns the level stored at (x, y): 0 or 1 for monochrome, 0-15
// for Gray4. Out-of-range coordinates read as 0.
func (f *FrameBuffer) Pixel(x, y int) uint8 {
	if x < 0 || y < 0 || uint32(x) >= f.width || uint32(y) >= f.height {
		return 0
	}
	i := y*int(f.width) + x
	switch f.depth {
	case Gray4:
		if i%2 == 0 {
			return f.pix[i/2] >> 4
		}
		return f.pix[i/2] & 0x0F
	default:
		if f.pix[i/8]&(1<<(i%8)) != 0 {
			return 1
		}
		return 0
	}
}

// SetColor plots a color at (x, y) by perceived lightness: Gray4 maps to
// the nearest of 16 levels, monochrome thresholds at 50%.
func (f *FrameBuffer) SetColor(x, y int, c colorful.Color) {
	l, _, _ := c.Luv()
	if l < 0 {
		l = 0
	} else if l > 1 {
		l = 1
	}
	switch f.depth {
	case Gray4:
		f.SetPixel(x, y, uint8(l*15+0.5))
	default:
		if l >= 0.5 {
			f.SetPixel(x, y, 1)
		} else {
			f.SetPixel(x, y, 0)
		}
	}
}
