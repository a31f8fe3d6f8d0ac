package xmlentity

import (
	"strconv"
	"strings"
)

// RecursiveReferenceError is raised when an entity is started while it
// is already open. Path lists the entity names from the first
// occurrence to the repeated one.
type RecursiveReferenceError struct {
	Name string
	Path []string
}

func (e *RecursiveReferenceError) Error() string {
	return "recursive entity reference \"" + e.Name + "\" (reference path: " + strings.Join(e.Path, " -> ") + ")"
}

// EntityExpansionLimitError is raised when more entities were expanded
// than the configured limit allows.
type EntityExpansionLimitError struct {
	Name  string
	Limit int
}

func (e *EntityExpansionLimitError) Error() string {
	return "entity expansion limit of " + strconv.Itoa(e.Limit) + " exceeded while expanding \"" + e.Name + "\""
}

// AccessExternalEntityError is raised when the external access policy
// does not allow the protocol of an external entity.
type AccessExternalEntityError struct {
	SystemID string
	Protocol string
	Policy   string
}

func (e *AccessExternalEntityError) Error() string {
	return "external access to \"" + e.SystemID + "\" is not allowed: protocol \"" + e.Protocol + "\" is not permitted by policy \"" + e.Policy + "\""
}

// EncodingDeclInvalidError is raised for an encoding name that is
// malformed or that no decoder exists for.
type EncodingDeclInvalidError struct {
	Encoding string
	Err      error
}

func (e *EncodingDeclInvalidError) Error() string {
	return "invalid encoding \"" + e.Encoding + "\": " + e.Err.Error()
}

func (e *EncodingDeclInvalidError) Unwrap() error {
	return e.Err
}

// ByteOrderUnsupportedError is raised when a UCS-2 or UCS-4 entity
// cannot be decoded because its byte order is not known.
type ByteOrderUnsupportedError struct {
	Encoding string
	Err      error
}

func (e *ByteOrderUnsupportedError) Error() string {
	return "byte order of \"" + e.Encoding + "\" entity is not supported: " + e.Err.Error()
}

func (e *ByteOrderUnsupportedError) Unwrap() error {
	return e.Err
}

// CatalogError wraps a failure of a configured catalog, usually a
// *catalog.Error.
type CatalogError struct {
	Err error
}

func (e *CatalogError) Error() string {
	return "catalog resolution failed: " + e.Err.Error()
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

// UnresolvedEntityError is raised when no stage of the resolution
// pipeline produced a source for an external entity.
type UnresolvedEntityError struct {
	Name string
	ID   ResourceIdentifier
}

func (e *UnresolvedEntityError) Error() string {
	return "could not resolve entity \"" + e.Name + "\" (public \"" + e.ID.PublicID + "\", system \"" + e.ID.LiteralSystemID + "\")"
}

// DuplicateEntityError is reported as a warning when a name is
// declared a second time.
type DuplicateEntityError struct {
	Name string
}

func (e *DuplicateEntityError) Error() string {
	return "entity \"" + e.Name + "\" declared more than once, first declaration used"
}

// EncodingMismatchError is reported as a warning when an encoding
// declaration contradicts what the byte layout showed.
type EncodingMismatchError struct {
	Detected string
	Declared string
}

func (e *EncodingMismatchError) Error() string {
	return "encoding declaration \"" + e.Declared + "\" does not match detected encoding \"" + e.Detected + "\""
}
