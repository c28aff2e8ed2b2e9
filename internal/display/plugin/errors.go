package plugin

import (
	"errors"
	"fmt"
)

// Plugin runtime errors.
var (
	// ErrPluginNotFound is returned when no candidate library file exists
	// for a driver type in any search path.
	ErrPluginNotFound = errors.New("plugin not found")

	// ErrOpenFailed is returned when the shared object cannot be loaded.
	ErrOpenFailed = errors.New("failed to load plugin library")

	// ErrSymbolNotFound is returned when the registration symbol is
	// missing from the library.
	ErrSymbolNotFound = errors.New("plugin registration symbol not found")

	// ErrRegistrationFailed is returned when the registration function
	// has the wrong shape or returns a nil table.
	ErrRegistrationFailed = errors.New("plugin registration failed")

	// ErrABIIncompatible is returned on a major ABI version mismatch.
	// No further calls into the plugin are made once this is reported.
	ErrABIIncompatible = errors.New("plugin ABI incompatible with host")

	// ErrRegistryClosed is returned by registry operations after Close.
	ErrRegistryClosed = errors.New("plugin registry is closed")
)

// ABIError carries both sides of a failed version negotiation.
type ABIError struct {
	Host   Version
	Plugin Version
}

// Error implements the error interface.
func (e *ABIError) Error() string {
	return fmt.Sprintf("plugin ABI %s incompatible with host ABI %s (major must match)",
		e.Plugin, e.Host)
}

// Is matches ErrABIIncompatible so callers can test with errors.Is.
func (e *ABIError) Is(target error) bool {
	return target == ErrABIIncompatible
}
