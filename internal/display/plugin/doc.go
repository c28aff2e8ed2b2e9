// Package plugin implements the display-driver plugin runtime: a stable
// binary contract that lets hardware drivers be compiled and shipped as
// independently built shared objects, discovered on disk, loaded at run
// time, and driven through the same display.Driver abstraction as
// built-in drivers.
//
// The boundary is a function table. A plugin exports exactly one symbol,
// LymonsPluginRegister, which returns a *Table of plain entry points.
// Every exchange across the table is fixed-size value data: fixed-capacity
// byte buffers for text, an explicit error-output parameter for every
// fallible call, an opaque integer Handle for driver instances. ABI
// versions are negotiated before anything else is called; a major
// mismatch blocks all further calls into the plugin.
//
// Faults inside plugin code never escape into the host: every table
// invocation runs under a barrier that converts an uncaught panic into a
// typed error, after which the instance is considered possibly corrupted
// and should be discarded and recreated.
package plugin
