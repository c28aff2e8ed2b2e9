package display

// ColorDepth describes the pixel format a display understands.
type ColorDepth int

const (
	// Monochrome - 1 bit per pixel (SSD1306, SSD1309, SH1106).
	Monochrome ColorDepth = iota

	// Gray4 - 4-bit grayscale, 16 levels (SSD1322).
	Gray4
)

// String returns a string representation of the color depth.
func (d ColorDepth) String() string {
	switch d {
	case Monochrome:
		return "monochrome"
	case Gray4:
		return "gray4"
	default:
		return "unknown"
	}
}

// Capabilities describes what a display driver can do. They are queried
// once after creation and treated as constant for the driver's lifetime.
type Capabilities struct {
	// Width and Height in pixels.
	Width  uint32
	Height uint32

	// ColorDepth of the panel.
	ColorDepth ColorDepth

	// SupportsRotation reports whether the panel honors SetRotation.
	SupportsRotation bool

	// MaxFPS is the maximum sustainable frame rate.
	MaxFPS uint32

	// SupportsBrightness reports whether SetBrightness has any effect.
	SupportsBrightness bool

	// SupportsInvert reports whether SetInvert has any effect.
	SupportsInvert bool
}

// Dimensions returns the display size as (width, height).
func (c Capabilities) Dimensions() (uint32, uint32) {
	return c.Width, c.Height
}

// ExpectedBufferLen returns the exact byte length WriteBuffer accepts for
// this display: packed 1 bit per pixel for monochrome, 4 bits per pixel
// for grayscale. Writes of any other length are rejected outright.
func (c Capabilities) ExpectedBufferLen() int {
	pixels := int(c.Width) * int(c.Height)
	switch c.ColorDepth {
	case Gray4:
		return (pixels + 1) / 2
	default:
		return (pixels + 7) / 8
	}
}

// Driver is the minimal hardware abstraction every display implements,
// built-in or plugin-backed.
//
// A Driver is owned by exactly one render loop; implementations provide
// no internal synchronization and concurrent calls are forbidden by
// contract. All calls are synchronous and must return promptly; hardware
// failures surface as ErrCommunication-wrapped errors rather than
// blocking.
type Driver interface {
	// Capabilities returns the constant capabilities of this display.
	Capabilities() Capabilities

	// Init configures the display controller and prepares the panel.
	Init() error

	// SetBrightness sets panel brightness (0-255). Returns
	// ErrUnsupportedOperation when the panel has no brightness control.
	SetBrightness(value uint8) error

	// Flush transfers buffered pixel data to the display controller.
	Flush() error

	// Clear blanks the display.
	Clear() error

	// WriteBuffer writes a packed framebuffer in the display's native
	// encoding. The buffer length must equal
	// Capabilities().ExpectedBufferLen() exactly; a mismatch is rejected
	// with a BufferSizeError and the previous contents stay intact.
	WriteBuffer(buf []byte) error

	// SetInvert toggles display inversion.
	SetInvert(inverted bool) error

	// SetRotation rotates the panel output. Degrees must be one of
	// 0, 90, 180, 270; fixed-geometry panels return
	// ErrUnsupportedOperation.
	SetRotation(degrees uint16) error

	// Close releases the underlying resource. Safe to call once; after
	// Close the driver is unusable. Close never reports hardware
	// release failures - there is no corrective action at that point.
	Close() error
}

// ValidRotation reports whether degrees is an angle drivers accept.
func ValidRotation(degrees uint16) bool {
	switch degrees {
	case 0, 90, 180, 270:
		return true
	}
	return false
}
