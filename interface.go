package xmlentity

import (
	"context"
	"io"

	"github.com/lestrrat-go/xmlentity/sax"
	"github.com/pkg/errors"
)

const Version = "v0.1.0"

var (
	ErrEOF               = errors.New("end of file reached")
	ErrNoCurrentEntity   = errors.New("no entity is being scanned")
	ErrEntityNotDeclared = errors.New("entity not declared")
	ErrInvalidXMLDecl    = errors.New("invalid XML declaration")
	ErrInvalidVersionNum = errors.New("invalid version")
	ErrEqualSignRequired = errors.New("'=' was required here")
	ErrSpaceRequired     = errors.New("space required")
	ErrNilInputSource    = errors.New("input source is nil")
	ErrUnsupportedScheme = errors.New("unsupported URI scheme")
)

// Names of the pseudo-entities that frame the document and the
// external DTD subset.
const (
	DocumentEntityName = "[xml]"
	DTDEntityName      = "[dtd]"
)

// ResourceIdentifier names an entity's location. It is shared with the
// event handlers.
type ResourceIdentifier = sax.ResourceIdentifier

// InputSource is a concrete stream for an entity, along with the
// identifiers it should be known by.
type InputSource struct {
	PublicID     string
	SystemID     string
	BaseSystemID string
	// ByteStream is sniffed for its encoding. If it is an io.Closer it is
	// closed when the entity ends.
	ByteStream io.Reader
	// CharacterStream holds already decoded UTF-8 text. It takes
	// precedence over ByteStream.
	CharacterStream io.Reader
	// Encoding, when set, is used instead of detecting the encoding
	Encoding string
	// CreatedByResolver marks sources that came from a trusted resolver.
	// The external access policy is not applied to them.
	CreatedByResolver bool
}

// Resolver is the application supplied resolution hook. Returning a nil
// source and a nil error means "not resolved here".
type Resolver interface {
	ResolveEntity(ctx context.Context, id *ResourceIdentifier) (*InputSource, error)
}

type ResolverFunc func(ctx context.Context, id *ResourceIdentifier) (*InputSource, error)

func (f ResolverFunc) ResolveEntity(ctx context.Context, id *ResourceIdentifier) (*InputSource, error) {
	return f(ctx, id)
}

// Opener turns an expanded system id into a byte stream. It returns the
// system id the stream was actually read from, which differs from the
// input after an HTTP redirect.
type Opener interface {
	Open(ctx context.Context, systemID string) (io.ReadCloser, string, error)
}

type OpenerFunc func(ctx context.Context, systemID string) (io.ReadCloser, string, error)

func (f OpenerFunc) Open(ctx context.Context, systemID string) (io.ReadCloser, string, error) {
	return f(ctx, systemID)
}

// LimitKind names a limit enforced through the SecurityManager
type LimitKind int

const (
	EntityExpansionLimit LimitKind = iota
)

// SecurityManager decides external access and resource limits.
type SecurityManager interface {
	// CheckAccess returns the denied protocol, or "" when access is
	// allowed.
	CheckAccess(systemID, policy string) string
	IsOverLimit(kind LimitKind, count int) bool
	Limit(kind LimitKind) int
}

// Severity of a reported condition
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityFatal
)

// ErrorReporter receives every warning and error before it is acted
// upon. Returning a non-nil error aborts the operation with that error.
// Returning nil lets the operation continue as best it can.
type ErrorReporter interface {
	Report(ctx context.Context, severity Severity, err error) error
}

type ErrorReporterFunc func(ctx context.Context, severity Severity, err error) error

func (f ErrorReporterFunc) Report(ctx context.Context, severity Severity, err error) error {
	return f(ctx, severity, err)
}

// StartStatus is the outcome of starting an entity
type StartStatus int

const (
	StartStatusStarted StartStatus = iota
	StartStatusSkipped
	StartStatusFatal
)

// StartResult is returned by the StartEntity family. Exactly one of the
// following holds: Status is StartStatusStarted and Entity is the new
// current frame; Status is StartStatusSkipped and the reference was
// reported as skipped; Status is StartStatusFatal and Err says why.
type StartResult struct {
	Status StartStatus
	Entity *ScannedEntity
	Err    error
}
