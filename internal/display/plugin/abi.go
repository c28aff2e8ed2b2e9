package plugin

import (
	"fmt"

	"github.com/shunte88/lymons/internal/display"
)

// Host ABI version. Major must match a plugin's exactly; a plugin with a
// newer minor is accepted with a warning since the host only ever calls
// operations defined by its own version.
const (
	ABIVersionMajor uint32 = 1
	ABIVersionMinor uint32 = 0
	ABIVersionPatch uint32 = 0
)

// Fixed buffer capacities for text crossing the boundary. Overflow
// truncates, never overruns.
const (
	NameSize       = 64
	VersionSize    = 32
	DriverTypeSize = 32
	MessageSize    = 256
	BusPathSize    = 256
)

// RegisterSymbol is the one well-known symbol resolved by name in every
// plugin. It takes no arguments and returns the plugin's function table.
const RegisterSymbol = "LymonsPluginRegister"

// RegisterFunc is the type of the exported registration symbol.
type RegisterFunc func() *Table

// Handle is an opaque per-instance driver resource minted by the plugin.
// The host never interprets it; it is owned by exactly one adapter and
// destroyed exactly once.
type Handle uint64

// ErrorCode is the closed error taxonomy shared by host and plugins.
type ErrorCode uint32

// Error codes returned by plugin entry points.
const (
	CodeSuccess ErrorCode = iota
	CodeGeneric
	CodeInvalidArgument
	CodeUnsupportedOperation
	CodeCommunication
	CodeInitialization
	CodeInvalidRotation
	CodeNullPointer
	CodePanic
	CodeABIMismatch
)

// String returns a string representation of the error code.
func (c ErrorCode) String() string {
	switch c {
	case CodeSuccess:
		return "success"
	case CodeGeneric:
		return "generic"
	case CodeInvalidArgument:
		return "invalid_argument"
	case CodeUnsupportedOperation:
		return "unsupported_operation"
	case CodeCommunication:
		return "communication"
	case CodeInitialization:
		return "initialization"
	case CodeInvalidRotation:
		return "invalid_rotation"
	case CodeNullPointer:
		return "null_pointer"
	case CodePanic:
		return "panic"
	case CodeABIMismatch:
		return "abi_mismatch"
	default:
		return "unknown"
	}
}

// PluginError is the error-output parameter for every fallible boundary
// call: a code plus a bounded, NUL-terminated message.
type PluginError struct {
	Code    ErrorCode
	Message [MessageSize]byte
}

// Set fills the error with a code and message, truncating the message to
// the buffer capacity.
func (e *PluginError) Set(code ErrorCode, msg string) {
	e.Code = code
	e.Message = [MessageSize]byte{}
	copyCString(e.Message[:], msg)
}

// MessageString decodes the message up to the first NUL terminator.
func (e *PluginError) MessageString() string {
	return decodeCString(e.Message[:])
}

// Version is a plugin or host ABI version triple.
type Version struct {
	Major uint32
	Minor uint32
	Patch uint32
}

// String returns "major.minor.patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// HostVersion returns the ABI version this host was built against.
func HostVersion() Version {
	return Version{Major: ABIVersionMajor, Minor: ABIVersionMinor, Patch: ABIVersionPatch}
}

// CompatibleWithHost applies the negotiation rule: major must match
// exactly; any minor/patch combination within the same major is callable.
func (v Version) CompatibleWithHost() bool {
	return v.Major == ABIVersionMajor
}

// NewerMinorThanHost reports whether the plugin declares features beyond
// what this host knows about. Accepted, but worth a warning.
func (v Version) NewerMinorThanHost() bool {
	return v.Major == ABIVersionMajor && v.Minor > ABIVersionMinor
}

// WireBusKind is the bus discriminant crossing the boundary.
type WireBusKind uint32

// Wire bus kinds.
const (
	WireBusI2C WireBusKind = 0
	WireBusSPI WireBusKind = 1
)

// WireConfig is the fixed-size creation configuration passed to a
// plugin's Create entry point. Only the fields selected by BusKind are
// meaningful; the rest stay zeroed.
type WireConfig struct {
	BusKind WireBusKind
	BusPath [BusPathSize]byte

	// I2C fields.
	I2CAddress uint8
	I2CSpeedHz uint32

	// SPI fields.
	SPIDCPin   uint8
	SPIRSTPin  uint8
	SPISpeedHz uint32

	// Optional display settings with presence flags.
	Rotation      uint16
	HasRotation   bool
	Brightness    uint8
	HasBrightness bool
	Inverted      bool
}

// BusPathString decodes the bus device path.
func (c *WireConfig) BusPathString() string {
	return decodeCString(c.BusPath[:])
}

// WireCapabilities is the fixed-size capability report filled in by a
// plugin's Capabilities entry point.
type WireCapabilities struct {
	Width              uint32
	Height             uint32
	ColorDepth         uint32 // 0 = monochrome, 1 = gray4
	SupportsRotation   bool
	MaxFPS             uint32
	SupportsBrightness bool
	SupportsInvert     bool
}

// Table is the plugin function table: an ordered set of plain entry
// points replacing native dynamic dispatch across the boundary. Every
// operation that can fail takes an explicit *PluginError out-parameter
// and returns its code; none may panic across the boundary (the host
// contains panics regardless).
type Table struct {
	// ABIVersion writes the plugin's declared ABI version.
	ABIVersion func(major, minor, patch *uint32)

	// PluginInfo writes name, version, and driver-type into fixed
	// buffers, truncating safely.
	PluginInfo func(name *[NameSize]byte, version *[VersionSize]byte, driverType *[DriverTypeSize]byte)

	// Create builds a driver instance from the wire configuration and
	// returns its handle through the out-parameter.
	Create func(cfg *WireConfig, handle *Handle, perr *PluginError) ErrorCode

	// Destroy releases a driver instance. Infallible by contract.
	Destroy func(handle Handle)

	// Capabilities reports the instance's constant capabilities.
	Capabilities func(handle Handle, caps *WireCapabilities, perr *PluginError) ErrorCode

	// Init brings up the display hardware.
	Init func(handle Handle, perr *PluginError) ErrorCode

	// SetBrightness sets panel brightness 0-255.
	SetBrightness func(handle Handle, value uint8, perr *PluginError) ErrorCode

	// Flush transfers buffered pixels to the panel.
	Flush func(handle Handle, perr *PluginError) ErrorCode

	// Clear blanks the panel.
	Clear func(handle Handle, perr *PluginError) ErrorCode

	// WriteBuffer writes a packed framebuffer. The plugin must reject
	// any length other than its capability-derived expected size.
	WriteBuffer func(handle Handle, buf []byte, perr *PluginError) ErrorCode

	// SetInvert toggles inversion.
	SetInvert func(handle Handle, inverted bool, perr *PluginError) ErrorCode

	// SetRotation rotates output; 0, 90, 180, or 270 degrees.
	SetRotation func(handle Handle, degrees uint16, perr *PluginError) ErrorCode
}

// Metadata is the immutable identity of a loaded plugin.
type Metadata struct {
	// Name, e.g. "LyMonS SSD1306 Driver".
	Name string

	// Version string of the plugin itself, e.g. "1.2.0".
	Version string

	// DriverType tag, e.g. "ssd1306".
	DriverType string

	// ABI is the negotiated ABI version.
	ABI Version
}

// ConfigToWire converts a host display configuration into the fixed-size
// wire form. The bus selection is mandatory.
func ConfigToWire(cfg display.Config) (*WireConfig, error) {
	if cfg.Bus == nil {
		return nil, display.ErrNoBusConfig
	}

	w := &WireConfig{Inverted: cfg.Invert}
	switch cfg.Bus.Kind {
	case display.BusI2C:
		w.BusKind = WireBusI2C
		copyCString(w.BusPath[:], cfg.Bus.I2C.Bus)
		w.I2CAddress = cfg.Bus.I2C.Address
		w.I2CSpeedHz = cfg.Bus.I2C.SpeedHz
	case display.BusSPI:
		w.BusKind = WireBusSPI
		copyCString(w.BusPath[:], cfg.Bus.SPI.Bus)
		w.SPIDCPin = cfg.Bus.SPI.DCPin
		w.SPIRSTPin = cfg.Bus.SPI.RSTPin
		w.SPISpeedHz = cfg.Bus.SPI.SpeedHz
	default:
		return nil, fmt.Errorf("%w: unknown bus kind %d", display.ErrInvalidArgument, cfg.Bus.Kind)
	}

	if cfg.Rotation != nil {
		w.Rotation = *cfg.Rotation
		w.HasRotation = true
	}
	if cfg.Brightness != nil {
		w.Brightness = *cfg.Brightness
		w.HasBrightness = true
	}
	return w, nil
}

// CapabilitiesFromWire converts a wire capability report to the host type.
func CapabilitiesFromWire(w WireCapabilities) display.Capabilities {
	depth := display.Monochrome
	if w.ColorDepth == 1 {
		depth = display.Gray4
	}
	return display.Capabilities{
		Width:              w.Width,
		Height:             w.Height,
		ColorDepth:         depth,
		SupportsRotation:   w.SupportsRotation,
		MaxFPS:             w.MaxFPS,
		SupportsBrightness: w.SupportsBrightness,
		SupportsInvert:     w.SupportsInvert,
	}
}

// CapabilitiesToWire converts host capabilities to the wire form. Used by
// plugins built in this module.
func CapabilitiesToWire(c display.Capabilities) WireCapabilities {
	depth := uint32(0)
	if c.ColorDepth == display.Gray4 {
		depth = 1
	}
	return WireCapabilities{
		Width:              c.Width,
		Height:             c.Height,
		ColorDepth:         depth,
		SupportsRotation:   c.SupportsRotation,
		MaxFPS:             c.MaxFPS,
		SupportsBrightness: c.SupportsBrightness,
		SupportsInvert:     c.SupportsInvert,
	}
}

// copyCString copies s into dst, truncating to leave room for a NUL
// terminator.
func copyCString(dst []byte, s string) {
	n := len(s)
	if n > len(dst)-1 {
		n = len(dst) - 1
	}
	copy(dst[:n], s[:n])
	dst[n] = 0
}

// decodeCString decodes buf up to the first NUL terminator or the buffer
// capacity, whichever comes first.
func decodeCString(buf []byte) string {
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}

// EncodeCString fills a fixed buffer with s, truncating safely. Exported
// for plugin implementations writing PluginInfo buffers.
func EncodeCString(dst []byte, s string) {
	for i := range dst {
		dst[i] = 0
	}
	copyCString(dst, s)
}
