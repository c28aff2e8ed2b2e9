package native

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"

	"github.com/shunte88/lymons/internal/display"
)

// SSD1306 drives a 128x64 monochrome OLED over I2C through the periph.io
// device driver.
type SSD1306 struct {
	log  logrus.FieldLogger
	bus  i2c.BusCloser
	dev  *ssd1306.Dev
	caps display.Capabilities

	inverted bool
	closed   bool
}

var _ display.Driver = (*SSD1306)(nil)

// NewSSD1306 opens the configured I2C bus and brings up the controller.
func NewSSD1306(cfg display.Config, log logrus.FieldLogger) (*SSD1306, error) {
	if cfg.Bus == nil || cfg.Bus.Kind != display.BusI2C {
		return nil, fmt.Errorf("%w: ssd1306 requires an i2c bus", display.ErrNoBusConfig)
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%w: periph host init: %v", display.ErrInitialization, err)
	}

	bus, err := i2creg.Open(cfg.Bus.I2C.Bus)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", display.ErrCommunication, cfg.Bus.I2C.Bus, err)
	}

	opts := ssd1306.DefaultOpts
	opts.W = 128
	opts.H = 64
	opts.Rotated = cfg.Rotation != nil && *cfg.Rotation == 180

	dev, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("%w: ssd1306: %v", display.ErrInitialization, err)
	}

	d := &SSD1306{
		log: log,
		bus: bus,
		dev: dev,
		caps: display.Capabilities{
			Width:              128,
			Height:             64,
			ColorDepth:         display.Monochrome,
			SupportsRotation:   false, // 180 only, fixed at creation
			MaxFPS:             60,
			SupportsBrightness: true,
			SupportsInvert:     true,
		},
	}

	if cfg.Brightness != nil {
		if err := d.SetBrightness(*cfg.Brightness); err != nil {
			d.log.WithError(err).Warn("initial brightness not applied")
		}
	}
	if cfg.Invert {
		if err := d.SetInvert(true); err != nil {
			d.log.WithError(err).Warn("initial inversion not applied")
		}
	}
	return d, nil
}

// Capabilities implements display.Driver.
func (d *SSD1306) Capabilities() display.Capabilities {
	return d.caps
}

// Init implements display.Driver. The periph device initializes the
// controller at creation; Init just blanks the panel.
func (d *SSD1306) Init() error {
	return d.Clear()
}

// SetBrightness implements display.Driver via the contrast register.
func (d *SSD1306) SetBrightness(value uint8) error {
	if d.closed {
		return display.ErrDriverDestroyed
	}
	if err := d.dev.SetContrast(value); err != nil {
		return fmt.Errorf("%w: set contrast: %v", display.ErrCommunication, err)
	}
	return nil
}

// Flush implements display.Driver. Writes go straight to the controller
// in WriteBuffer, so there is nothing buffered to push.
func (d *SSD1306) Flush() error {
	if d.closed {
		return display.ErrDriverDestroyed
	}
	return nil
}

// Clear implements display.Driver.
func (d *SSD1306) Clear() error {
	if d.closed {
		return display.ErrDriverDestroyed
	}
	blank := make([]byte, d.caps.ExpectedBufferLen())
	return d.WriteBuffer(blank)
}

// WriteBuffer implements display.Driver. The buffer is row-major packed
// bits; the controller wants page-ordered bytes (8 vertical pixels per
// byte), so it is repacked before the bus write.
func (d *SSD1306) WriteBuffer(buf []byte) error {
	if d.closed {
		return display.ErrDriverDestroyed
	}
	if want := d.caps.ExpectedBufferLen(); len(buf) != want {
		return &display.BufferSizeError{Expected: want, Actual: len(buf)}
	}
	if _, err := d.dev.Write(rowsToPages(buf, int(d.caps.Width), int(d.caps.Height))); err != nil {
		return fmt.Errorf("%w: ssd1306 write: %v", display.ErrCommunication, err)
	}
	return nil
}

// SetInvert implements display.Driver.
func (d *SSD1306) SetInvert(inverted bool) error {
	if d.closed {
		return display.ErrDriverDestroyed
	}
	if err := d.dev.Invert(inverted); err != nil {
		return fmt.Errorf("%w: invert: %v", display.ErrCommunication, err)
	}
	d.inverted = inverted
	return nil
}

// SetRotation implements display.Driver. The controller can only be
// rotated at creation time.
func (d *SSD1306) SetRotation(degrees uint16) error {
	if d.closed {
		return display.ErrDriverDestroyed
	}
	return display.ErrUnsupportedOperation
}

// Close implements display.Driver.
func (d *SSD1306) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if err := d.dev.Halt(); err != nil {
		d.log.WithError(err).Warn("ssd1306 halt failed")
	}
	if err := d.bus.Close(); err != nil {
		d.log.WithError(err).Warn("i2c bus close failed")
	}
	return nil
}

// rowsToPages repacks row-major LSB-first packed bits into the SSD1306
// page layout: one byte per column per 8-row page, bit j holding row
// page*8+j.
func rowsToPages(rows []byte, w, h int) []byte {
	pages := make([]byte, len(rows))
	for page := 0; page < h/8; page++ {
		for x := 0; x < w; x++ {
			var b byte
			for j := 0; j < 8; j++ {
				i := (page*8+j)*w + x
				if rows[i/8]&(1<<(i%8)) != 0 {
					b |= 1 << j
				}
			}
			pages[page*w+x] = b
		}
	}
	return pages
}
