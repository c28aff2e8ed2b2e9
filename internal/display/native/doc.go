// Package native provides the built-in display drivers used when no
// plugin is found for a driver type. They sit behind the same
// display.Driver seam as plugin adapters, over periph.io bus access.
package native
