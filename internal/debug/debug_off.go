//go:build !debug

// Package debug dumps internal structures when built with the debug
// tag. pdebug covers call tracing; this covers looking at values.
package debug

const Enabled = false

// Printf is no op unless you compile with the `debug` tag
func Printf(string, ...any) {}

// Dump is no op unless you compile with the `debug` tag
func Dump(...any) {}
