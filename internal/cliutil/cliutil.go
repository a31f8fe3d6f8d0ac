// Package cliutil holds helpers shared by the command line tools.
package cliutil

import "github.com/mattn/go-isatty"

// IsTty reports whether fd refers to a terminal, including Cygwin and
// MSYS pseudo terminals.
func IsTty(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
