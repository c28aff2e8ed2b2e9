package plugin

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/shunte88/lymons/internal/display"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// fakeState backs an in-process plugin table so the runtime can be
// exercised without a shared object on disk. Panics and failure codes
// are scripted per operation; every call is counted.
type fakeState struct {
	abi        Version
	name       string
	version    string
	driverType string
	caps       WireCapabilities

	// panicOps names operations that panic when invoked.
	panicOps map[string]bool

	// failCodes scripts non-success return codes per operation.
	failCodes map[string]ErrorCode

	calls      map[string]int
	lastHandle Handle
	lastWrite  []byte
}

func newFakeState() *fakeState {
	return &fakeState{
		abi:        HostVersion(),
		name:       "Fake SSD1306 Driver",
		version:    "1.2.0",
		driverType: "ssd1306",
		caps: WireCapabilities{
			Width:              128,
			Height:             64,
			ColorDepth:         0,
			MaxFPS:             60,
			SupportsBrightness: true,
			SupportsInvert:     true,
		},
		panicOps:  make(map[string]bool),
		failCodes: make(map[string]ErrorCode),
		calls:     make(map[string]int),
	}
}

func (f *fakeState) enter(op string) {
	f.calls[op]++
	if f.panicOps[op] {
		panic("fake plugin fault in " + op)
	}
}

// code applies the scripted outcome for op, filling perr on failure.
func (f *fakeState) code(op string, perr *PluginError) ErrorCode {
	if c, ok := f.failCodes[op]; ok {
		perr.Set(c, "fake "+op+" failure")
		return c
	}
	return CodeSuccess
}

func (f *fakeState) table() *Table {
	return &Table{
		ABIVersion: func(major, minor, patch *uint32) {
			f.enter("abi_version")
			*major = f.abi.Major
			*minor = f.abi.Minor
			*patch = f.abi.Patch
		},
		PluginInfo: func(name *[NameSize]byte, version *[VersionSize]byte, dt *[DriverTypeSize]byte) {
			f.enter("plugin_info")
			EncodeCString(name[:], f.name)
			EncodeCString(version[:], f.version)
			EncodeCString(dt[:], f.driverType)
		},
		Create: func(cfg *WireConfig, handle *Handle, perr *PluginError) ErrorCode {
			f.enter("create")
			if c := f.code("create", perr); c != CodeSuccess {
				return c
			}
			f.lastHandle++
			*handle = f.lastHandle
			return CodeSuccess
		},
		Destroy: func(handle Handle) {
			f.enter("destroy")
		},
		Capabilities: func(handle Handle, caps *WireCapabilities, perr *PluginError) ErrorCode {
			f.enter("capabilities")
			if c := f.code("capabilities", perr); c != CodeSuccess {
				return c
			}
			*caps = f.caps
			return CodeSuccess
		},
		Init: func(handle Handle, perr *PluginError) ErrorCode {
			f.enter("init")
			return f.code("init", perr)
		},
		SetBrightness: func(handle Handle, value uint8, perr *PluginError) ErrorCode {
			f.enter("set_brightness")
			return f.code("set_brightness", perr)
		},
		Flush: func(handle Handle, perr *PluginError) ErrorCode {
			f.enter("flush")
			return f.code("flush", perr)
		},
		Clear: func(handle Handle, perr *PluginError) ErrorCode {
			f.enter("clear")
			return f.code("clear", perr)
		},
		WriteBuffer: func(handle Handle, buf []byte, perr *PluginError) ErrorCode {
			f.enter("write_buffer")
			if c := f.code("write_buffer", perr); c != CodeSuccess {
				return c
			}
			f.lastWrite = append([]byte(nil), buf...)
			return CodeSuccess
		},
		SetInvert: func(handle Handle, inverted bool, perr *PluginError) ErrorCode {
			f.enter("set_invert")
			return f.code("set_invert", perr)
		},
		SetRotation: func(handle Handle, degrees uint16, perr *PluginError) ErrorCode {
			f.enter("set_rotation")
			return f.code("set_rotation", perr)
		},
	}
}

// loaded binds the fake through the loader's negotiation path.
func (f *fakeState) loaded() (*LoadedPlugin, error) {
	return NewLoader(testLogger()).bind(f.table())
}

func fakeI2CConfig() display.Config {
	return display.Config{
		Driver: display.DriverSSD1306,
		Bus: &display.BusConfig{
			Kind: display.BusI2C,
			I2C:  display.I2CConfig{Bus: "/dev/i2c-1", Address: 0x3C},
		},
	}
}
