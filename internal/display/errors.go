package display

import (
	"errors"
	"fmt"
)

// Display subsystem errors.
var (
	// ErrUnsupportedOperation is returned when a panel cannot perform the
	// requested operation (e.g. rotation on a fixed-geometry display).
	// It is an expected, recoverable outcome, never a defect.
	ErrUnsupportedOperation = errors.New("operation not supported by this display")

	// ErrCommunication indicates an I2C/SPI transfer failure.
	ErrCommunication = errors.New("hardware communication error")

	// ErrInitialization indicates the display controller could not be
	// brought up.
	ErrInitialization = errors.New("display initialization failed")

	// ErrInvalidArgument indicates a malformed argument reached the
	// driver boundary.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPluginPanic indicates a fault inside plugin code was contained
	// at the boundary. The driver instance may be corrupted; callers
	// should discard and recreate it rather than reuse it.
	ErrPluginPanic = errors.New("plugin panicked")

	// ErrDriverDestroyed is returned by any call made after Close.
	ErrDriverDestroyed = errors.New("driver has been destroyed")

	// ErrNoDriverSpecified is returned by the factory when the
	// configuration names no driver.
	ErrNoDriverSpecified = errors.New("no display driver specified")

	// ErrNoBusConfig is returned when a driver needs bus wiring that the
	// configuration does not provide.
	ErrNoBusConfig = errors.New("no bus configuration specified")
)

// RotationError reports a rotation angle outside {0, 90, 180, 270}.
type RotationError struct {
	Degrees uint16
}

// Error implements the error interface.
func (e *RotationError) Error() string {
	return fmt.Sprintf("invalid rotation angle: %d (must be 0, 90, 180, or 270)", e.Degrees)
}

// Is reports ErrInvalidArgument kinship so callers can match broadly.
func (e *RotationError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// BufferSizeError reports a framebuffer length that does not match the
// capability-derived expected byte length. Partial writes are never
// attempted; the write is rejected whole.
type BufferSizeError struct {
	Expected int
	Actual   int
}

// Error implements the error interface.
func (e *BufferSizeError) Error() string {
	return fmt.Sprintf("buffer size mismatch: expected %d bytes, got %d", e.Expected, e.Actual)
}

// Is reports ErrInvalidArgument kinship so callers can match broadly.
func (e *BufferSizeError) Is(target error) bool {
	return target == ErrInvalidArgument
}
