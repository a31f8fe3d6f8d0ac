package xmlentity

import (
	"github.com/lestrrat-go/option"
	"github.com/lestrrat-go/xmlentity/sax"
)

type Option = option.Interface

const (
	DefaultBufferSize = 8192
	MinBufferSize     = 64
)

type identAccessExternalDTD struct{}
type identEntityExpansionLimit struct{}
type identSupportDTD struct{}
type identExternalGeneralEntities struct{}
type identExternalParameterEntities struct{}
type identUseCatalog struct{}
type identCatalogFiles struct{}
type identCatalogPrefer struct{}
type identCatalogDefer struct{}
type identCatalogResolve struct{}
type identBufferSize struct{}
type identEntityResolver struct{}
type identEntityHandler struct{}
type identErrorReporter struct{}
type identSecurityManager struct{}
type identOpener struct{}
type identWarnDuplicateEntity struct{}
type identStrictURI struct{}

// WithAccessExternalDTD sets the protocols external entities may be
// read from: "all", "none", or a list such as "file,https".
func WithAccessExternalDTD(v string) Option {
	return option.New(identAccessExternalDTD{}, v)
}

// WithEntityExpansionLimit bounds the number of entity expansions in a
// session. 0 disables the limit. It has no effect when a custom
// SecurityManager is given.
func WithEntityExpansionLimit(v int) Option {
	return option.New(identEntityExpansionLimit{}, v)
}

// WithSupportDTD turns processing of external entities on or off
func WithSupportDTD(v bool) Option {
	return option.New(identSupportDTD{}, v)
}

func WithExternalGeneralEntities(v bool) Option {
	return option.New(identExternalGeneralEntities{}, v)
}

func WithExternalParameterEntities(v bool) Option {
	return option.New(identExternalParameterEntities{}, v)
}

// WithUseCatalog enables the catalog stages of entity resolution
func WithUseCatalog(v bool) Option {
	return option.New(identUseCatalog{}, v)
}

// WithCatalogFiles specifies the catalog files to consult
func WithCatalogFiles(v ...string) Option {
	return option.New(identCatalogFiles{}, v)
}

// WithCatalogPrefer is "public" or "system"
func WithCatalogPrefer(v string) Option {
	return option.New(identCatalogPrefer{}, v)
}

func WithCatalogDefer(v bool) Option {
	return option.New(identCatalogDefer{}, v)
}

// WithCatalogResolve is "strict", "continue" or "ignore". It also
// controls whether the built-in catalog and plain pass-through
// resolution are attempted.
func WithCatalogResolve(v string) Option {
	return option.New(identCatalogResolve{}, v)
}

// WithBufferSize sets the size of decoding buffers. Values below
// MinBufferSize are raised to it.
func WithBufferSize(v int) Option {
	return option.New(identBufferSize{}, v)
}

// WithEntityResolver registers the application resolver. It is asked
// before any catalog.
func WithEntityResolver(v Resolver) Option {
	return option.New(identEntityResolver{}, v)
}

// WithEntityHandler registers the receiver of entity start and end
// events.
func WithEntityHandler(v sax.EntityHandler) Option {
	return option.New(identEntityHandler{}, v)
}

func WithErrorReporter(v ErrorReporter) Option {
	return option.New(identErrorReporter{}, v)
}

func WithSecurityManager(v SecurityManager) Option {
	return option.New(identSecurityManager{}, v)
}

// WithOpener replaces the component that reads external entities
func WithOpener(v Opener) Option {
	return option.New(identOpener{}, v)
}

// WithWarnDuplicateEntity reports repeated declarations as warnings
func WithWarnDuplicateEntity(v bool) Option {
	return option.New(identWarnDuplicateEntity{}, v)
}

// WithStrictURI makes malformed system ids an error instead of passing
// them through unchanged.
func WithStrictURI(v bool) Option {
	return option.New(identStrictURI{}, v)
}
