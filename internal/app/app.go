// Package app wires the display runtime together: it creates one driver
// through the factory, owns the render loop, and applies the failure
// policy for driver errors and contained plugin faults.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shunte88/lymons/internal/display"
	"github.com/shunte88/lymons/internal/display/factory"
	"github.com/shunte88/lymons/internal/display/plugin"
	"github.com/shunte88/lymons/internal/logging"
	"github.com/shunte88/lymons/internal/metrics"
	"github.com/shunte88/lymons/internal/pacer"
)

// Pacing bounds. The auto pacer converges within these regardless of the
// configured starting rate.
const (
	defaultInitialFPS = 30
	defaultMaxFPS     = 60
	defaultMinFPS     = 5

	// pollInterval bounds how stale a frame deadline can get between
	// checks. Well under one frame at the maximum rate.
	pollInterval = 2 * time.Millisecond
)

// Options configures the application.
type Options struct {
	// Display is the driver selection and bus configuration.
	Display display.Config

	// LogLevel is a logrus level name; invalid values fall back to info.
	LogLevel string

	// InitialFPS seeds the pacer before any latency has been measured.
	// Zero means the default.
	InitialFPS uint32

	// Frames supplies pixel content. Nil means the built-in test pattern.
	Frames FrameSource
}

// driverFactory is the seam the app uses to create and recreate
// drivers. Satisfied by factory.Factory.
type driverFactory interface {
	Create(cfg display.Config) (display.Driver, error)
}

// App owns one display driver and its render loop.
type App struct {
	log      *logrus.Logger
	registry *plugin.Registry
	factory  driverFactory
	cfg      display.Config

	driver display.Driver
	fb     *display.FrameBuffer
	pacer  *pacer.AutoPacer
	stats  *metrics.Display
	frames FrameSource

	// degraded marks that a recoverable driver error has already been
	// logged at warn level; repeats drop to debug until a frame succeeds.
	degraded bool
}

// New builds the application: logger, plugin registry, factory, driver,
// framebuffer, pacer, and metrics.
func New(opts Options) (*App, error) {
	log := logging.New(logging.Config{Level: opts.LogLevel})

	registry := plugin.NewRegistry(logging.Component(log, "plugin"))
	f := factory.New(registry, logging.Component(log, "factory"))

	drv, err := f.Create(opts.Display)
	if err != nil {
		registry.Close()
		return nil, fmt.Errorf("create driver: %w", err)
	}

	caps := drv.Capabilities()
	stats, err := metrics.NewDisplay(string(opts.Display.Driver))
	if err != nil {
		_ = drv.Close()
		registry.Close()
		return nil, fmt.Errorf("metrics: %w", err)
	}

	initial := opts.InitialFPS
	if initial == 0 {
		initial = defaultInitialFPS
	}
	maxFPS := uint32(defaultMaxFPS)
	if caps.MaxFPS > 0 && caps.MaxFPS < maxFPS {
		maxFPS = caps.MaxFPS
	}

	frames := opts.Frames
	if frames == nil {
		frames = &TestPattern{}
	}

	a := &App{
		log:      log,
		registry: registry,
		factory:  f,
		cfg:      opts.Display,
		driver:   drv,
		fb:       display.NewFrameBuffer(caps),
		pacer:    pacer.NewAuto(initial, maxFPS, defaultMinFPS),
		stats:    stats,
		frames:   frames,
	}
	a.stats.SetTargetFPS(a.pacer.TargetFPS())

	if err := a.driver.Init(); err != nil {
		a.Shutdown()
		return nil, fmt.Errorf("init driver: %w", err)
	}
	if err := a.applySettings(); err != nil {
		a.Shutdown()
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"driver_type": opts.Display.Driver,
		"width":       caps.Width,
		"height":      caps.Height,
		"depth":       caps.ColorDepth,
	}).Info("display ready")
	return a, nil
}

// applySettings pushes the optional config settings onto the driver.
// Unsupported operations are skipped, not fatal.
func (a *App) applySettings() error {
	caps := a.driver.Capabilities()
	if a.cfg.Brightness != nil && caps.SupportsBrightness {
		if err := a.driver.SetBrightness(*a.cfg.Brightness); err != nil {
			return fmt.Errorf("set brightness: %w", err)
		}
	}
	if a.cfg.Invert && caps.SupportsInvert {
		if err := a.driver.SetInvert(true); err != nil {
			return fmt.Errorf("set invert: %w", err)
		}
	}
	if a.cfg.Rotation != nil && caps.SupportsRotation {
		if err := a.driver.SetRotation(*a.cfg.Rotation); err != nil {
			return fmt.Errorf("set rotation: %w", err)
		}
	}
	return nil
}

// Run drives the render loop until the context is canceled. One frame
// error never stops the loop; only an unrecoverable driver loss does.
func (a *App) Run(ctx context.Context) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !a.pacer.ShouldFlush() {
				continue
			}
			if err := a.renderFrame(ctx); err != nil {
				return err
			}
		}
	}
}

// renderFrame renders and flushes one frame. Returns an error only when
// the driver is lost for good.
func (a *App) renderFrame(ctx context.Context) error {
	a.frames.Frame(a.fb, time.Now())

	start := time.Now()
	err := a.driver.WriteBuffer(a.fb.Bytes())
	if err == nil {
		err = a.driver.Flush()
	}
	if err != nil {
		return a.handleFrameError(ctx, err)
	}

	latency := time.Since(start)
	a.pacer.RecordFlush(latency)
	a.stats.RecordFlush(ctx, latency)
	a.stats.SetTargetFPS(a.pacer.TargetFPS())
	a.degraded = false
	return nil
}

// handleFrameError applies the failure policy: a contained plugin panic
// discards and recreates the driver; anything else skips the frame.
func (a *App) handleFrameError(ctx context.Context, err error) error {
	if errors.Is(err, display.ErrPluginPanic) {
		a.stats.RecordFault(ctx)
		a.log.WithError(err).Error("plugin fault contained, recreating driver")
		return a.recreateDriver()
	}

	a.stats.RecordSkip(ctx)
	if a.degraded {
		a.log.WithError(err).Debug("frame skipped")
	} else {
		a.log.WithError(err).Warn("frame skipped, driver error")
		a.degraded = true
	}
	return nil
}

// recreateDriver replaces a faulted driver with a fresh instance from
// the same configuration. The old instance is closed best-effort; its
// handle is never reused.
func (a *App) recreateDriver() error {
	_ = a.driver.Close()

	drv, err := a.factory.Create(a.cfg)
	if err != nil {
		return fmt.Errorf("driver lost and recreation failed: %w", err)
	}
	if err := drv.Init(); err != nil {
		_ = drv.Close()
		return fmt.Errorf("driver lost and reinit failed: %w", err)
	}
	a.driver = drv
	if err := a.applySettings(); err != nil {
		a.log.WithError(err).Warn("settings not reapplied after recreation")
	}
	a.degraded = false
	a.log.Info("driver recreated")
	return nil
}

// Shutdown blanks the panel and releases the driver and registry. Safe
// to call more than once.
func (a *App) Shutdown() {
	if a.driver != nil {
		if err := a.driver.Clear(); err != nil {
			a.log.WithError(err).Debug("clear on shutdown failed")
		}
		if err := a.driver.Close(); err != nil {
			a.log.WithError(err).Warn("driver close failed")
		}
		a.driver = nil
	}
	if a.registry != nil {
		a.registry.Close()
		a.registry = nil
	}
}
