package catalog

import "github.com/lestrrat-go/option"

type Option = option.Interface

type identFiles struct{}
type identPrefer struct{}
type identDefer struct{}
type identResolve struct{}
type identCacheSize struct{}

// WithFiles specifies the catalog files, as paths or file: URIs. They
// are consulted in order.
func WithFiles(v ...string) Option {
	return option.New(identFiles{}, v)
}

// WithPrefer is either "public" or "system". With "system", public
// entries are ignored when the entity also has a system identifier.
func WithPrefer(v string) Option {
	return option.New(identPrefer{}, v)
}

// WithDefer delays reading catalog files until the first lookup
func WithDefer(v bool) Option {
	return option.New(identDefer{}, v)
}

// WithResolve is one of "strict", "continue" or "ignore" and decides
// what an unmatched lookup means.
func WithResolve(v string) Option {
	return option.New(identResolve{}, v)
}

// WithCacheSize bounds the number of memoized lookups
func WithCacheSize(v int) Option {
	return option.New(identCacheSize{}, v)
}
