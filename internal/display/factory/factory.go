// Package factory creates display drivers from configuration, preferring
// dynamically loaded plugins and falling back to the built-in drivers.
package factory

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/shunte88/lymons/internal/display"
	"github.com/shunte88/lymons/internal/display/native"
	"github.com/shunte88/lymons/internal/display/plugin"
)

// ErrNoDriverAvailable is returned when neither a plugin nor a built-in
// driver exists for the configured driver kind.
var ErrNoDriverAvailable = errors.New("no plugin or built-in driver available")

// Factory builds display drivers. The plugin registry must outlive every
// driver the factory creates.
type Factory struct {
	log      logrus.FieldLogger
	registry *plugin.Registry
}

// New creates a driver factory backed by the given plugin registry.
func New(registry *plugin.Registry, log logrus.FieldLogger) *Factory {
	return &Factory{log: log, registry: registry}
}

// Create validates the configuration and builds a driver for it. A
// loadable, compatible plugin for the driver type wins; otherwise the
// factory falls back to a built-in driver. Load failures other than
// "not found" are logged and do not abort the fallback - the caller
// continues without the plugin, not without the display.
func (f *Factory) Create(cfg display.Config) (display.Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if drv, ok := f.tryPlugin(cfg); ok {
		return drv, nil
	}
	return f.createBuiltin(cfg)
}

func (f *Factory) tryPlugin(cfg display.Config) (display.Driver, bool) {
	tag := string(cfg.Driver)
	lp, err := f.registry.Open(tag)
	if err != nil {
		if errors.Is(err, plugin.ErrPluginNotFound) {
			f.log.WithField("driver_type", tag).Debug("no plugin found, using built-in driver")
		} else {
			f.log.WithError(err).WithField("driver_type", tag).Warn("plugin unusable, using built-in driver")
		}
		return nil, false
	}

	adapter, err := plugin.NewAdapter(lp, cfg, f.log)
	if err != nil {
		f.log.WithError(err).WithField("driver_type", tag).Warn("plugin driver creation failed, using built-in driver")
		return nil, false
	}

	f.log.WithFields(logrus.Fields{
		"driver_type": tag,
		"plugin":      lp.Metadata().Name,
		"version":     lp.Metadata().Version,
	}).Info("using plugin driver")
	return adapter, true
}

func (f *Factory) createBuiltin(cfg display.Config) (display.Driver, error) {
	switch cfg.Driver {
	case display.DriverSSD1306:
		return native.NewSSD1306(cfg, f.log)
	case display.DriverSSD1322:
		return native.NewSSD1322(cfg, f.log)
	default:
		return nil, fmt.Errorf("%w: driver kind %q", ErrNoDriverAvailable, cfg.Driver)
	}
}
