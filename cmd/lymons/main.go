// Package main is the entry point for the LyMonS display runtime.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shunte88/lymons/internal/app"
	"github.com/shunte88/lymons/internal/display"
	"github.com/shunte88/lymons/internal/display/plugin"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, ok := parseFlags()
	if !ok {
		return 2
	}

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() (app.Options, bool) {
	var (
		opts       app.Options
		driver     string
		i2cBus     string
		i2cAddr    uint
		spiBus     string
		dcPin      uint
		rstPin     uint
		speedHz    uint
		rotation   int
		brightness int
		fps        uint

		showVersion bool
		showHelp    bool
	)

	flag.StringVar(&driver, "driver", "ssd1306", "Display driver type (ssd1306, ssd1309, ssd1322, sh1106)")
	flag.StringVar(&i2cBus, "i2c-bus", "", "I2C bus device path, e.g. /dev/i2c-1")
	flag.UintVar(&i2cAddr, "i2c-address", 0x3C, "I2C device address")
	flag.StringVar(&spiBus, "spi-bus", "", "SPI bus device path, e.g. /dev/spidev0.0")
	flag.UintVar(&dcPin, "dc-pin", 24, "Data/command GPIO pin for SPI displays (BCM numbering)")
	flag.UintVar(&rstPin, "rst-pin", 0, "Reset GPIO pin, 0 for none")
	flag.UintVar(&speedHz, "bus-speed", 0, "Bus clock speed in Hz, 0 for driver default")
	flag.IntVar(&rotation, "rotation", -1, "Display rotation in degrees (0, 90, 180, 270), -1 for none")
	flag.IntVar(&brightness, "brightness", -1, "Initial brightness 0-255, -1 for driver default")
	flag.BoolVar(&opts.Display.Invert, "invert", false, "Invert display output")
	flag.UintVar(&fps, "fps", 0, "Initial frame rate before adaptive pacing converges, 0 for default")
	flag.StringVar(&opts.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "LyMonS - network audio status display\n\n")
		fmt.Fprintf(os.Stderr, "Usage: lymons [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  lymons -driver ssd1306 -i2c-bus /dev/i2c-1\n")
		fmt.Fprintf(os.Stderr, "  lymons -driver ssd1322 -spi-bus /dev/spidev0.0 -dc-pin 24\n")
		fmt.Fprintf(os.Stderr, "\nPlugin drivers are searched via %s and the standard\n", plugin.EnvDriverPath)
		fmt.Fprintf(os.Stderr, "driver directories before built-in drivers are used.\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if showVersion {
		fmt.Printf("lymons %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	opts.Display.Driver = display.DriverKind(driver)
	switch {
	case i2cBus != "":
		opts.Display.Bus = &display.BusConfig{
			Kind: display.BusI2C,
			I2C: display.I2CConfig{
				Bus:     i2cBus,
				Address: uint8(i2cAddr),
				SpeedHz: uint32(speedHz),
			},
		}
	case spiBus != "":
		opts.Display.Bus = &display.BusConfig{
			Kind: display.BusSPI,
			SPI: display.SPIConfig{
				Bus:     spiBus,
				DCPin:   uint8(dcPin),
				RSTPin:  uint8(rstPin),
				SpeedHz: uint32(speedHz),
			},
		}
	default:
		fmt.Fprintln(os.Stderr, "Error: one of -i2c-bus or -spi-bus is required")
		return opts, false
	}

	if rotation >= 0 {
		r := uint16(rotation)
		opts.Display.Rotation = &r
	}
	if brightness >= 0 && brightness <= 255 {
		b := uint8(brightness)
		opts.Display.Brightness = &b
	}
	opts.InitialFPS = uint32(fps)
	return opts, true
}
