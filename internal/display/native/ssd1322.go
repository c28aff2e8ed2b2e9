package native

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/shunte88/lymons/internal/display"
)

const (
	ssd1322Width  = 256
	ssd1322Height = 64

	// The controller RAM is 480 columns wide; panels are centered.
	ssd1322ColumnOffset = (480 - ssd1322Width) / 2 / 4
)

// SSD1322 drives a 256x64 4-bit grayscale OLED over SPI with a
// data/command GPIO line.
type SSD1322 struct {
	log  logrus.FieldLogger
	port spi.PortCloser
	conn conn.Conn
	dc   gpio.PinOut
	caps display.Capabilities

	closed bool
}

var _ display.Driver = (*SSD1322)(nil)

// NewSSD1322 opens the configured SPI port and resolves the DC pin.
func NewSSD1322(cfg display.Config, log logrus.FieldLogger) (*SSD1322, error) {
	if cfg.Bus == nil || cfg.Bus.Kind != display.BusSPI {
		return nil, fmt.Errorf("%w: ssd1322 requires an spi bus", display.ErrNoBusConfig)
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%w: periph host init: %v", display.ErrInitialization, err)
	}

	port, err := spireg.Open(cfg.Bus.SPI.Bus)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", display.ErrCommunication, cfg.Bus.SPI.Bus, err)
	}

	speed := physic.Frequency(cfg.Bus.SPI.SpeedHz) * physic.Hertz
	if speed == 0 {
		speed = 10 * physic.MegaHertz
	}
	c, err := port.Connect(speed, spi.Mode0, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("%w: spi connect: %v", display.ErrCommunication, err)
	}

	dc := gpioreg.ByName(fmt.Sprintf("GPIO%d", cfg.Bus.SPI.DCPin))
	if dc == nil {
		_ = port.Close()
		return nil, fmt.Errorf("%w: dc pin GPIO%d not found", display.ErrInvalidArgument, cfg.Bus.SPI.DCPin)
	}

	d := &SSD1322{
		log:  log,
		port: port,
		conn: c,
		dc:   dc,
		caps: display.Capabilities{
			Width:              ssd1322Width,
			Height:             ssd1322Height,
			ColorDepth:         display.Gray4,
			SupportsRotation:   false,
			MaxFPS:             60,
			SupportsBrightness: true,
			SupportsInvert:     true,
		},
	}
	return d, nil
}

// Capabilities implements display.Driver.
func (d *SSD1322) Capabilities() display.Capabilities {
	return d.caps
}

// Init implements display.Driver: unlock, configure, and switch on.
func (d *SSD1322) Init() error {
	if d.closed {
		return display.ErrDriverDestroyed
	}
	seq := []struct {
		cmd  byte
		data []byte
	}{
		{0xFD, []byte{0x12}},                // unlock command codes
		{0xAE, nil},                         // display off
		{0xB3, []byte{0xF2}},                // clock divider / oscillator
		{0xCA, []byte{ssd1322Height - 1}},   // mux ratio
		{0xA2, []byte{0x00}},                // display offset
		{0xA1, []byte{0x00}},                // start line
		{0xA0, []byte{0x14, 0x11}},          // remap, dual COM
		{0xC1, []byte{0x7F}},                // contrast
		{0xC7, []byte{0x0F}},                // master contrast
		{0xA6, nil},                         // normal (non-inverted) mode
		{0xAF, nil},                         // display on
	}
	for _, s := range seq {
		if err := d.command(s.cmd, s.data...); err != nil {
			return err
		}
	}
	return d.Clear()
}

// SetBrightness implements display.Driver via the contrast register,
// scaled from 0-255 to the controller's 0-127 range.
func (d *SSD1322) SetBrightness(value uint8) error {
	if d.closed {
		return display.ErrDriverDestroyed
	}
	return d.command(0xC1, value>>1)
}

// Flush implements display.Driver. WriteBuffer transfers directly.
func (d *SSD1322) Flush() error {
	if d.closed {
		return display.ErrDriverDestroyed
	}
	return nil
}

// Clear implements display.Driver.
func (d *SSD1322) Clear() error {
	if d.closed {
		return display.ErrDriverDestroyed
	}
	blank := make([]byte, d.caps.ExpectedBufferLen())
	return d.WriteBuffer(blank)
}

// WriteBuffer implements display.Driver. The packed Gray4 buffer (high
// nibble first) matches the controller's RAM format and is streamed
// whole after setting the window.
func (d *SSD1322) WriteBuffer(buf []byte) error {
	if d.closed {
		return display.ErrDriverDestroyed
	}
	if want := d.caps.ExpectedBufferLen(); len(buf) != want {
		return &display.BufferSizeError{Expected: want, Actual: len(buf)}
	}
	// Column addresses count 4-pixel units.
	if err := d.command(0x15, ssd1322ColumnOffset, ssd1322ColumnOffset+ssd1322Width/4-1); err != nil {
		return err
	}
	if err := d.command(0x75, 0, ssd1322Height-1); err != nil {
		return err
	}
	if err := d.command(0x5C); err != nil { // write RAM
		return err
	}
	return d.data(buf)
}

// SetInvert implements display.Driver.
func (d *SSD1322) SetInvert(inverted bool) error {
	if d.closed {
		return display.ErrDriverDestroyed
	}
	if inverted {
		return d.command(0xA7)
	}
	return d.command(0xA6)
}

// SetRotation implements display.Driver. Remap is fixed at init.
func (d *SSD1322) SetRotation(degrees uint16) error {
	if d.closed {
		return display.ErrDriverDestroyed
	}
	return display.ErrUnsupportedOperation
}

// Close implements display.Driver.
func (d *SSD1322) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if err := d.command(0xAE); err != nil { // display off
		d.log.WithError(err).Warn("ssd1322 display off failed")
	}
	if err := d.port.Close(); err != nil {
		d.log.WithError(err).Warn("spi port close failed")
	}
	return nil
}

func (d *SSD1322) command(cmd byte, data ...byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return fmt.Errorf("%w: dc pin: %v", display.ErrCommunication, err)
	}
	if err := d.conn.Tx([]byte{cmd}, nil); err != nil {
		return fmt.Errorf("%w: command 0x%02X: %v", display.ErrCommunication, cmd, err)
	}
	if len(data) > 0 {
		return d.data(data)
	}
	return nil
}

func (d *SSD1322) data(data []byte) error {
	if err := d.dc.Out(gpio.High); err != nil {
		return fmt.Errorf("%w: dc pin: %v", display.ErrCommunication, err)
	}
	// Stay under the kernel's spidev transfer size limit.
	const chunk = 4096
	for len(data) > 0 {
		n := len(data)
		if n > chunk {
			n = chunk
		}
		if err := d.conn.Tx(data[:n], nil); err != nil {
			return fmt.Errorf("%w: data write: %v", display.ErrCommunication, err)
		}
		data = data[n:]
	}
	return nil
}
