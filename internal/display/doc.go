// Package display defines the hardware display abstraction for LyMonS.
//
// A Driver represents one physical panel (OLED or LCD) behind a uniform
// interface, regardless of whether it is implemented by a built-in driver
// or a dynamically loaded plugin. Drivers are created once from a Config,
// queried once for Capabilities, and then driven by a single render loop
// that writes packed framebuffers and flushes them to hardware.
//
// The package deliberately knows nothing about how frames are produced.
// Callers render into a FrameBuffer matching the driver's declared color
// depth and hand the packed bytes to WriteBuffer.
package display
