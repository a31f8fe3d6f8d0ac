package catalog

import "github.com/pkg/errors"

// ErrNoMatch is the cause of a strict-mode lookup that found nothing
var ErrNoMatch = errors.New(`no catalog entry matched`)

// Error is returned for every failure originating in a catalog: bad
// configuration, unreadable or malformed catalog files, and unmatched
// lookups in strict mode.
type Error struct {
	Op   string
	File string
	Err  error
}

func (e *Error) Error() string {
	if e.File != "" {
		return "catalog " + e.Op + " " + e.File + ": " + e.Err.Error()
	}
	return "catalog " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
