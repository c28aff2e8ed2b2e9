package plugin

import (
	"fmt"
	goplugin "plugin"

	"github.com/sirupsen/logrus"
)

// LoadedPlugin binds a plugin's function table and metadata. The Go
// runtime never unloads an opened shared object, so the table's lifetime
// structurally exceeds every adapter built from it.
type LoadedPlugin struct {
	table *Table
	meta  Metadata
}

// Table returns the plugin's function table.
func (p *LoadedPlugin) Table() *Table {
	return p.table
}

// Metadata returns the plugin's immutable identity.
func (p *LoadedPlugin) Metadata() Metadata {
	return p.meta
}

// Loader loads display driver plugins from shared object files.
type Loader struct {
	log logrus.FieldLogger
}

// NewLoader creates a plugin loader.
func NewLoader(log logrus.FieldLogger) *Loader {
	return &Loader{log: log}
}

// Load opens the library at path, resolves the registration symbol,
// negotiates the ABI version, and extracts metadata.
//
// Failure modes, in order: ErrOpenFailed (library missing or unloadable,
// carrying the OS message), ErrSymbolNotFound (no registration symbol by
// exact name), ErrRegistrationFailed (wrong symbol shape or nil table),
// ErrABIIncompatible (major version mismatch - no further calls into the
// plugin are made).
func (l *Loader) Load(path string) (*LoadedPlugin, error) {
	l.log.WithField("path", path).Info("loading display driver plugin")

	lib, err := goplugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrOpenFailed, path, err)
	}

	sym, err := lib.Lookup(RegisterSymbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %q in %q", ErrSymbolNotFound, RegisterSymbol, path)
	}

	var register RegisterFunc
	switch f := sym.(type) {
	case func() *Table:
		register = f
	case *RegisterFunc:
		register = *f
	default:
		return nil, fmt.Errorf("%w: %q has unexpected type %T", ErrRegistrationFailed, RegisterSymbol, sym)
	}

	var table *Table
	if err := guardVoid("register", func() { table = register() }); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
	}
	if table == nil {
		return nil, fmt.Errorf("%w: registration returned nil table", ErrRegistrationFailed)
	}

	return l.bind(table)
}

// bind negotiates the ABI version against a registered table and reads
// plugin metadata. Split from Load so negotiation is testable without a
// shared object on disk.
func (l *Loader) bind(table *Table) (*LoadedPlugin, error) {
	var major, minor, patch uint32
	if err := guardVoid("abi_version", func() { table.ABIVersion(&major, &minor, &patch) }); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
	}
	ver := Version{Major: major, Minor: minor, Patch: patch}

	l.log.WithFields(logrus.Fields{
		"plugin_abi": ver.String(),
		"host_abi":   HostVersion().String(),
	}).Debug("negotiating plugin ABI version")

	if !ver.CompatibleWithHost() {
		return nil, &ABIError{Host: HostVersion(), Plugin: ver}
	}
	if ver.NewerMinorThanHost() {
		l.log.WithFields(logrus.Fields{
			"plugin_abi": ver.String(),
			"host_abi":   HostVersion().String(),
		}).Warn("plugin declares a newer ABI minor version; extra operations will be ignored")
	}

	var name [NameSize]byte
	var version [VersionSize]byte
	var driverType [DriverTypeSize]byte
	if err := guardVoid("plugin_info", func() { table.PluginInfo(&name, &version, &driverType) }); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
	}

	meta := Metadata{
		Name:       decodeCString(name[:]),
		Version:    decodeCString(version[:]),
		DriverType: decodeCString(driverType[:]),
		ABI:        ver,
	}

	l.log.WithFields(logrus.Fields{
		"name":        meta.Name,
		"version":     meta.Version,
		"driver_type": meta.DriverType,
	}).Info("loaded display driver plugin")

	return &LoadedPlugin{table: table, meta: meta}, nil
}

// LoadByDriverType composes discovery and Load: it resolves the driver
// type tag to a library path on the standard search paths and loads it.
func (l *Loader) LoadByDriverType(driverType string) (*LoadedPlugin, error) {
	path, err := Find(driverType)
	if err != nil {
		return nil, err
	}
	return l.Load(path)
}
