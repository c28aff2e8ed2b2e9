package display

import "fmt"

// DriverKind identifies a display controller family. The string value is
// also the driver-type tag used for plugin discovery.
type DriverKind string

// Known driver kinds.
const (
	DriverSSD1306 DriverKind = "ssd1306"
	DriverSSD1309 DriverKind = "ssd1309"
	DriverSSD1322 DriverKind = "ssd1322"
	DriverSH1106  DriverKind = "sh1106"
)

// BusKind selects the hardware link to the panel.
type BusKind int

const (
	// BusI2C - inter-integrated circuit, typically /dev/i2c-N.
	BusI2C BusKind = iota

	// BusSPI - serial peripheral interface, typically /dev/spidevX.Y.
	BusSPI
)

// String returns a string representation of the bus kind.
func (k BusKind) String() string {
	switch k {
	case BusI2C:
		return "i2c"
	case BusSPI:
		return "spi"
	default:
		return "unknown"
	}
}

// I2CConfig wires an I2C-attached panel.
type I2CConfig struct {
	// Bus is the device path, e.g. "/dev/i2c-1".
	Bus string

	// Address is the 7-bit device address, e.g. 0x3C.
	Address uint8

	// SpeedHz is the optional bus speed; 0 means controller default.
	SpeedHz uint32
}

// SPIConfig wires an SPI-attached panel.
type SPIConfig struct {
	// Bus is the device path, e.g. "/dev/spidev0.0".
	Bus string

	// DCPin is the data/command GPIO pin (BCM numbering).
	DCPin uint8

	// RSTPin is the reset GPIO pin; 0 means no reset line.
	RSTPin uint8

	// SpeedHz is the optional clock speed; 0 means controller default.
	SpeedHz uint32
}

// BusConfig is the tagged bus selection for a display.
type BusConfig struct {
	Kind BusKind
	I2C  I2CConfig
	SPI  SPIConfig
}

// Config is the immutable creation-time configuration for one display.
// It is supplied fully formed by the configuration layer and consumed
// verbatim by driver creation.
type Config struct {
	// Driver selects the controller family and the plugin tag.
	Driver DriverKind

	// Bus wires the hardware link. Required for hardware drivers.
	Bus *BusConfig

	// Rotation in degrees, if set (0, 90, 180, 270).
	Rotation *uint16

	// Brightness 0-255, if set.
	Brightness *uint8

	// Invert renders light pixels dark and vice versa.
	Invert bool
}

// Validate checks a configuration without touching hardware. It is meant
// to run at startup so misconfiguration fails before any bus is opened.
func (c *Config) Validate() error {
	if c.Driver == "" {
		return ErrNoDriverSpecified
	}
	if c.Bus == nil {
		return ErrNoBusConfig
	}
	switch c.Bus.Kind {
	case BusI2C:
		if c.Bus.I2C.Bus == "" {
			return fmt.Errorf("%w: i2c bus path is empty", ErrInvalidArgument)
		}
	case BusSPI:
		if c.Bus.SPI.Bus == "" {
			return fmt.Errorf("%w: spi bus path is empty", ErrInvalidArgument)
		}
	default:
		return fmt.Errorf("%w: unknown bus kind %d", ErrInvalidArgument, c.Bus.Kind)
	}
	if c.Rotation != nil && !ValidRotation(*c.Rotation) {
		return &RotationError{Degrees: *c.Rotation}
	}
	return nil
}
