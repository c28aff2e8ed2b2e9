package plugin

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/shunte88/lymons/internal/display"
)

// Adapter wraps a loaded plugin as a display.Driver. It owns exactly one
// driver handle, translates plugin error codes into host errors, and
// contains faults from every table invocation so a plugin defect is an
// error, never a host crash.
type Adapter struct {
	log    logrus.FieldLogger
	plugin *LoadedPlugin

	handle    Handle
	caps      display.Capabilities
	destroyed bool
}

// Ensure the adapter satisfies the driver abstraction.
var _ display.Driver = (*Adapter)(nil)

// NewAdapter creates a driver instance through the plugin's table and
// caches its capabilities. On any failure after creation the fresh
// handle is destroyed before returning.
func NewAdapter(lp *LoadedPlugin, cfg display.Config, log logrus.FieldLogger) (*Adapter, error) {
	wire, err := ConfigToWire(cfg)
	if err != nil {
		return nil, err
	}

	table := lp.Table()

	var handle Handle
	var perr PluginError
	code, err := guardCode("create", func() ErrorCode {
		return table.Create(wire, &handle, &perr)
	})
	if err != nil {
		return nil, err
	}
	if code != CodeSuccess || handle == 0 {
		return nil, codeToError(code, &perr)
	}

	log.WithFields(logrus.Fields{
		"driver_type": lp.Metadata().DriverType,
		"handle":      handle,
	}).Debug("created plugin driver instance")

	var wcaps WireCapabilities
	code, err = guardCode("capabilities", func() ErrorCode {
		return table.Capabilities(handle, &wcaps, &perr)
	})
	if err != nil || code != CodeSuccess {
		// The handle exists but the instance is unusable; release it
		// rather than leak. A panic here is already contained.
		_ = guardVoid("destroy", func() { table.Destroy(handle) })
		if err != nil {
			return nil, err
		}
		return nil, codeToError(code, &perr)
	}

	return &Adapter{
		log:    log,
		plugin: lp,
		handle: handle,
		caps:   CapabilitiesFromWire(wcaps),
	}, nil
}

// Metadata returns the identity of the backing plugin.
func (a *Adapter) Metadata() Metadata {
	return a.plugin.Metadata()
}

// Capabilities returns the cached capabilities queried at creation.
func (a *Adapter) Capabilities() display.Capabilities {
	return a.caps
}

// Init implements display.Driver.
func (a *Adapter) Init() error {
	return a.call("init", func(perr *PluginError) ErrorCode {
		return a.plugin.Table().Init(a.handle, perr)
	})
}

// SetBrightness implements display.Driver.
func (a *Adapter) SetBrightness(value uint8) error {
	return a.call("set_brightness", func(perr *PluginError) ErrorCode {
		return a.plugin.Table().SetBrightness(a.handle, value, perr)
	})
}

// Flush implements display.Driver.
func (a *Adapter) Flush() error {
	return a.call("flush", func(perr *PluginError) ErrorCode {
		return a.plugin.Table().Flush(a.handle, perr)
	})
}

// Clear implements display.Driver.
func (a *Adapter) Clear() error {
	return a.call("clear", func(perr *PluginError) ErrorCode {
		return a.plugin.Table().Clear(a.handle, perr)
	})
}

// WriteBuffer implements display.Driver. The length is validated against
// the capability-derived expected size before crossing the boundary;
// nothing is written on a mismatch.
func (a *Adapter) WriteBuffer(buf []byte) error {
	if a.destroyed {
		return display.ErrDriverDestroyed
	}
	if want := a.caps.ExpectedBufferLen(); len(buf) != want {
		return &display.BufferSizeError{Expected: want, Actual: len(buf)}
	}
	return a.call("write_buffer", func(perr *PluginError) ErrorCode {
		return a.plugin.Table().WriteBuffer(a.handle, buf, perr)
	})
}

// SetInvert implements display.Driver.
func (a *Adapter) SetInvert(inverted bool) error {
	if !a.caps.SupportsInvert {
		return display.ErrUnsupportedOperation
	}
	return a.call("set_invert", func(perr *PluginError) ErrorCode {
		return a.plugin.Table().SetInvert(a.handle, inverted, perr)
	})
}

// SetRotation implements display.Driver.
func (a *Adapter) SetRotation(degrees uint16) error {
	if !a.caps.SupportsRotation {
		return display.ErrUnsupportedOperation
	}
	if !display.ValidRotation(degrees) {
		return &display.RotationError{Degrees: degrees}
	}
	return a.call("set_rotation", func(perr *PluginError) ErrorCode {
		return a.plugin.Table().SetRotation(a.handle, degrees, perr)
	})
}

// Close destroys the driver instance. Callable at most once; subsequent
// calls and all other operations after Close return without touching the
// plugin. Non-clean release is logged, never propagated.
func (a *Adapter) Close() error {
	if a.destroyed {
		return nil
	}
	a.destroyed = true

	a.log.WithField("handle", a.handle).Debug("destroying plugin driver instance")
	if err := guardVoid("destroy", func() { a.plugin.Table().Destroy(a.handle) }); err != nil {
		a.log.WithError(err).Warn("plugin destroy did not complete cleanly")
	}
	a.handle = 0
	return nil
}

// call runs one fallible table invocation with the shared preamble:
// destroyed check, fault barrier, error-code translation.
func (a *Adapter) call(op string, fn func(perr *PluginError) ErrorCode) error {
	if a.destroyed {
		return display.ErrDriverDestroyed
	}
	var perr PluginError
	code, err := guardCode(op, func() ErrorCode { return fn(&perr) })
	if err != nil {
		a.log.WithError(err).Error("contained fault in plugin call")
		return err
	}
	if code != CodeSuccess {
		return codeToError(code, &perr)
	}
	return nil
}

// codeToError translates a plugin error code plus message into the host
// error taxonomy. UnsupportedOperation and InvalidRotation map to the
// recoverable display sentinels; they are expected outcomes, not defects.
func codeToError(code ErrorCode, perr *PluginError) error {
	msg := perr.MessageString()
	if msg == "" {
		msg = code.String()
	}
	switch code {
	case CodeSuccess:
		return nil
	case CodeUnsupportedOperation:
		return display.ErrUnsupportedOperation
	case CodeInvalidRotation:
		return &display.RotationError{Degrees: 0}
	case CodeCommunication:
		return fmt.Errorf("%w: %s", display.ErrCommunication, msg)
	case CodeInitialization:
		return fmt.Errorf("%w: %s", display.ErrInitialization, msg)
	case CodeInvalidArgument, CodeNullPointer:
		return fmt.Errorf("%w: %s", display.ErrInvalidArgument, msg)
	case CodePanic:
		return fmt.Errorf("%w: %s", display.ErrPluginPanic, msg)
	case CodeABIMismatch:
		return fmt.Errorf("%w: %s", ErrABIIncompatible, msg)
	default:
		return errors.New(msg)
	}
}
