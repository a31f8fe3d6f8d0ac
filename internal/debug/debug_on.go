//go:build debug

// Package debug dumps internal structures when built with the debug
// tag. pdebug covers call tracing; this covers looking at values.
package debug

import (
	"log"
	"os"

	"github.com/davecgh/go-spew/spew"
)

const Enabled = true

var logger = log.New(os.Stderr, "|DEBUG| ", 0)

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Printf prints debug messages. Only available if compiled with "debug" tag
func Printf(f string, args ...any) {
	logger.Printf(f, args...)
}

// Dump writes a readable rendition of v, for catalog entries and
// encoding decisions.
func Dump(v ...any) {
	dumper.Fdump(os.Stderr, v...)
}
