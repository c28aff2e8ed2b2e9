package display

import (
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

func monoCaps(w, h uint32) Capabilities {
	return Capabilities{Width: w, Height: h, ColorDepth: Monochrome}
}

func gray4Caps(w, h uint32) Capabilities {
	return Capabilities{Width: w, Height: h, ColorDepth: Gray4}
}

func TestFrameBufferMonoPacking(t *testing.T) {
	fb := NewFrameBuffer(monoCaps(16, 2))

	// Pixel index i lands in byte i/8, bit i%8.
	fb.SetPixel(0, 0, 1)
	fb.SetPixel(7, 0, 1)
	fb.SetPixel(8, 0, 1)
	fb.SetPixel(0, 1, 1) // i = 16

	b := fb.Bytes()
	if b[0] != 0x81 {
		t.Errorf("byte 0 = %#02x, want 0x81", b[0])
	}
	if b[1] != 0x01 {
		t.Errorf("byte 1 = %#02x, want 0x01", b[1])
	}
	if b[2] != 0x01 {
		t.Errorf("byte 2 = %#02x, want 0x01", b[2])
	}
	if b[3] != 0x00 {
		t.Errorf("byte 3 = %#02x, want 0x00", b[3])
	}
}

func TestFrameBufferMonoClearBit(t *testing.T) {
	fb := NewFrameBuffer(monoCaps(8, 1))
	fb.SetPixel(3, 0, 1)
	if got := fb.Pixel(3, 0); got != 1 {
		t.Fatalf("Pixel(3,0) = %d, want 1", got)
	}
	fb.SetPixel(3, 0, 0)
	if got := fb.Pixel(3, 0); got != 0 {
		t.Errorf("Pixel(3,0) after unset = %d, want 0", got)
	}
}

func TestFrameBufferGray4Packing(t *testing.T) {
	fb := NewFrameBuffer(gray4Caps(4, 1))

	// Even pixel index takes the high nibble.
	fb.SetPixel(0, 0, 0xA)
	fb.SetPixel(1, 0, 0x5)
	fb.SetPixel(2, 0, 0xF)

	b := fb.Bytes()
	if b[0] != 0xA5 {
		t.Errorf("byte 0 = %#02x, want 0xA5", b[0])
	}
	if b[1] != 0xF0 {
		t.Errorf("byte 1 = %#02x, want 0xF0", b[1])
	}

	if got := fb.Pixel(1, 0); got != 0x5 {
		t.Errorf("Pixel(1,0) = %d, want 5", got)
	}
}

func TestFrameBufferGray4Clamp(t *testing.T) {
	fb := NewFrameBuffer(gray4Caps(2, 1))
	fb.SetPixel(0, 0, 200)
	if got := fb.Pixel(0, 0); got != 15 {
		t.Errorf("Pixel(0,0) = %d, want clamp to 15", got)
	}
}

func TestFrameBufferOutOfRangeIgnored(t *testing.T) {
	fb := NewFrameBuffer(monoCaps(8, 8))
	fb.SetPixel(-1, 0, 1)
	fb.SetPixel(0, -1, 1)
	fb.SetPixel(8, 0, 1)
	fb.SetPixel(0, 8, 1)

	for _, b := range fb.Bytes() {
		if b != 0 {
			t.Fatal("out-of-range SetPixel modified the buffer")
		}
	}
	if got := fb.Pixel(100, 100); got != 0 {
		t.Errorf("out-of-range Pixel = %d, want 0", got)
	}
}

func TestFrameBufferLenMatchesCapabilities(t *testing.T) {
	tests := []struct {
		name string
		caps Capabilities
		want int
	}{
		{"ssd1306", monoCaps(128, 64), 1024},
		{"ssd1322", gray4Caps(256, 64), 8192},
		{"odd mono width", monoCaps(10, 1), 2},
		{"odd gray4 count", gray4Caps(3, 1), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := NewFrameBuffer(tt.caps)
			if fb.Len() != tt.want {
				t.Errorf("Len() = %d, want %d", fb.Len(), tt.want)
			}
			if fb.Len() != tt.caps.ExpectedBufferLen() {
				t.Errorf("Len() = %d, ExpectedBufferLen() = %d", fb.Len(), tt.caps.ExpectedBufferLen())
			}
		})
	}
}

func TestFrameBufferClear(t *testing.T) {
	fb := NewFrameBuffer(gray4Caps(4, 4))
	for x := 0; x < 4; x++ {
		fb.SetPixel(x, 0, 15)
	}
	fb.Clear()
	for _, b := range fb.Bytes() {
		if b != 0 {
			t.Fatal("Clear left pixel data behind")
		}
	}
}

func TestFrameBufferSetColorMonoThreshold(t *testing.T) {
	fb := NewFrameBuffer(monoCaps(2, 1))
	fb.SetColor(0, 0, colorful.Color{R: 1, G: 1, B: 1})
	fb.SetColor(1, 0, colorful.Color{R: 0.05, G: 0.05, B: 0.05})

	if got := fb.Pixel(0, 0); got != 1 {
		t.Errorf("white pixel = %d, want on", got)
	}
	if got := fb.Pixel(1, 0); got != 0 {
		t.Errorf("near-black pixel = %d, want off", got)
	}
}

func TestFrameBufferSetColorGray4Extremes(t *testing.T) {
	fb := NewFrameBuffer(gray4Caps(2, 1))
	fb.SetColor(0, 0, colorful.Color{R: 1, G: 1, B: 1})
	fb.SetColor(1, 0, colorful.Color{})

	if got := fb.Pixel(0, 0); got != 15 {
		t.Errorf("white = level %d, want 15", got)
	}
	if got := fb.Pixel(1, 0); got != 0 {
		t.Errorf("black = level %d, want 0", got)
	}
}
