// Plugin build of the SSD1306 driver. Build with:
//
//	go build -buildmode=plugin -o liblymons_ssd1306.so ./plugins/ssd1306
//
// and place the object in a driver search directory so the host prefers
// it over the built-in driver.
package main

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/shunte88/lymons/internal/display"
	"github.com/shunte88/lymons/internal/display/native"
	"github.com/shunte88/lymons/internal/display/plugin"
)

const (
	pluginName    = "LyMonS SSD1306 Driver"
	pluginVersion = "1.0.0"
	driverType    = "ssd1306"
)

var (
	mu      sync.Mutex
	nextID  plugin.Handle = 1
	drivers               = map[plugin.Handle]*native.SSD1306{}

	log = logrus.New()
)

var table = plugin.Table{
	ABIVersion: func(major, minor, patch *uint32) {
		*major = plugin.ABIVersionMajor
		*minor = plugin.ABIVersionMinor
		*patch = plugin.ABIVersionPatch
	},

	PluginInfo: func(name *[plugin.NameSize]byte, version *[plugin.VersionSize]byte, dt *[plugin.DriverTypeSize]byte) {
		plugin.EncodeCString(name[:], pluginName)
		plugin.EncodeCString(version[:], pluginVersion)
		plugin.EncodeCString(dt[:], driverType)
	},

	Create: func(cfg *plugin.WireConfig, handle *plugin.Handle, perr *plugin.PluginError) plugin.ErrorCode {
		if cfg == nil || handle == nil {
			return fail(perr, plugin.CodeNullPointer, "nil argument")
		}
		drv, err := native.NewSSD1306(wireToConfig(cfg), log)
		if err != nil {
			return failErr(perr, err)
		}

		mu.Lock()
		id := nextID
		nextID++
		drivers[id] = drv
		mu.Unlock()

		*handle = id
		return plugin.CodeSuccess
	},

	Destroy: func(handle plugin.Handle) {
		mu.Lock()
		drv, ok := drivers[handle]
		delete(drivers, handle)
		mu.Unlock()
		if ok {
			_ = drv.Close()
		}
	},

	Capabilities: func(handle plugin.Handle, caps *plugin.WireCapabilities, perr *plugin.PluginError) plugin.ErrorCode {
		drv, ok := lookup(handle)
		if !ok {
			return fail(perr, plugin.CodeInvalidArgument, "unknown handle")
		}
		*caps = plugin.CapabilitiesToWire(drv.Capabilities())
		return plugin.CodeSuccess
	},

	Init: func(handle plugin.Handle, perr *plugin.PluginError) plugin.ErrorCode {
		return call(handle, perr, func(d *native.SSD1306) error { return d.Init() })
	},

	SetBrightness: func(handle plugin.Handle, value uint8, perr *plugin.PluginError) plugin.ErrorCode {
		return call(handle, perr, func(d *native.SSD1306) error { return d.SetBrightness(value) })
	},

	Flush: func(handle plugin.Handle, perr *plugin.PluginError) plugin.ErrorCode {
		return call(handle, perr, func(d *native.SSD1306) error { return d.Flush() })
	},

	Clear: func(handle plugin.Handle, perr *plugin.PluginError) plugin.ErrorCode {
		return call(handle, perr, func(d *native.SSD1306) error { return d.Clear() })
	},

	WriteBuffer: func(handle plugin.Handle, buf []byte, perr *plugin.PluginError) plugin.ErrorCode {
		return call(handle, perr, func(d *native.SSD1306) error { return d.WriteBuffer(buf) })
	},

	SetInvert: func(handle plugin.Handle, inverted bool, perr *plugin.PluginError) plugin.ErrorCode {
		return call(handle, perr, func(d *native.SSD1306) error { return d.SetInvert(inverted) })
	},

	SetRotation: func(handle plugin.Handle, degrees uint16, perr *plugin.PluginError) plugin.ErrorCode {
		return call(handle, perr, func(d *native.SSD1306) error { return d.SetRotation(degrees) })
	},
}

// LymonsPluginRegister is the exported registration symbol resolved by
// the host loader.
func LymonsPluginRegister() *plugin.Table {
	return &table
}

func lookup(handle plugin.Handle) (*native.SSD1306, bool) {
	mu.Lock()
	defer mu.Unlock()
	drv, ok := drivers[handle]
	return drv, ok
}

func call(handle plugin.Handle, perr *plugin.PluginError, fn func(*native.SSD1306) error) plugin.ErrorCode {
	drv, ok := lookup(handle)
	if !ok {
		return fail(perr, plugin.CodeInvalidArgument, "unknown handle")
	}
	if err := fn(drv); err != nil {
		return failErr(perr, err)
	}
	return plugin.CodeSuccess
}

func fail(perr *plugin.PluginError, code plugin.ErrorCode, msg string) plugin.ErrorCode {
	if perr != nil {
		perr.Set(code, msg)
	}
	return code
}

// failErr maps a driver error onto the boundary error taxonomy.
func failErr(perr *plugin.PluginError, err error) plugin.ErrorCode {
	var rotErr *display.RotationError
	code := plugin.CodeGeneric
	switch {
	case errors.As(err, &rotErr):
		code = plugin.CodeInvalidRotation
	case errors.Is(err, display.ErrUnsupportedOperation):
		code = plugin.CodeUnsupportedOperation
	case errors.Is(err, display.ErrCommunication):
		code = plugin.CodeCommunication
	case errors.Is(err, display.ErrInitialization):
		code = plugin.CodeInitialization
	case errors.Is(err, display.ErrInvalidArgument), errors.Is(err, display.ErrNoBusConfig):
		code = plugin.CodeInvalidArgument
	}
	return fail(perr, code, err.Error())
}

func wireToConfig(w *plugin.WireConfig) display.Config {
	cfg := display.Config{
		Driver: display.DriverSSD1306,
		Invert: w.Inverted,
	}
	switch w.BusKind {
	case plugin.WireBusSPI:
		cfg.Bus = &display.BusConfig{
			Kind: display.BusSPI,
			SPI: display.SPIConfig{
				Bus:     w.BusPathString(),
				DCPin:   w.SPIDCPin,
				RSTPin:  w.SPIRSTPin,
				SpeedHz: w.SPISpeedHz,
			},
		}
	default:
		cfg.Bus = &display.BusConfig{
			Kind: display.BusI2C,
			I2C: display.I2CConfig{
				Bus:     w.BusPathString(),
				Address: w.I2CAddress,
				SpeedHz: w.I2CSpeedHz,
			},
		}
	}
	if w.HasRotation {
		r := w.Rotation
		cfg.Rotation = &r
	}
	if w.HasBrightness {
		b := w.Brightness
		cfg.Brightness = &b
	}
	return cfg
}

// main is required for package main to compile; it is never invoked when
// built with -buildmode=plugin.
func main() {}
