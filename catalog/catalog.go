// Package catalog resolves public and system identifiers through OASIS
// XML Catalogs.
//
// The supported entries are public, system, rewriteSystem, systemSuffix,
// uri, rewriteURI, uriSuffix, nextCatalog and group, with prefer and
// xml:base honored on catalog, group and entry elements.
package catalog

import (
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/lestrrat-go/pdebug/v3"
	"github.com/lestrrat-go/xmlentity/internal/debug"
	"github.com/pkg/errors"
)

const (
	PreferPublic    = "public"
	PreferSystem    = "system"
	ResolveStrict   = "strict"
	ResolveContinue = "continue"
	ResolveIgnore   = "ignore"
)

const defaultCacheSize = 256

// Resolver looks identifiers up in an ordered list of catalog files.
// It is safe to share between sessions once constructed.
type Resolver struct {
	mu           sync.Mutex
	roots        []string
	files        map[string]*file
	preferPublic bool
	resolve      string
	cache        *lru.Cache
}

// New creates a Resolver. Unless WithDefer(true) is given, every catalog
// file, including those reached through nextCatalog, is read here and
// any failure is reported immediately.
func New(options ...Option) (*Resolver, error) {
	var locations []string
	prefer := PreferPublic
	resolve := ResolveContinue
	deferLoad := false
	cacheSize := defaultCacheSize
	for _, option := range options {
		switch option.Ident() {
		case identFiles{}:
			locations = append(locations, option.Value().([]string)...)
		case identPrefer{}:
			prefer = option.Value().(string)
		case identDefer{}:
			deferLoad = option.Value().(bool)
		case identResolve{}:
			resolve = option.Value().(string)
		case identCacheSize{}:
			cacheSize = option.Value().(int)
		}
	}

	switch prefer {
	case PreferPublic, PreferSystem:
	default:
		return nil, &Error{Op: "configure", Err: errors.Errorf(`invalid prefer value %q`, prefer)}
	}

	switch resolve {
	case ResolveStrict, ResolveContinue, ResolveIgnore:
	default:
		return nil, &Error{Op: "configure", Err: errors.Errorf(`invalid resolve value %q`, resolve)}
	}

	cache, err := lru.New(max(cacheSize, 1))
	if err != nil {
		return nil, &Error{Op: "configure", Err: errors.Wrap(err, `failed to create lookup cache`)}
	}

	r := &Resolver{
		files:        make(map[string]*file),
		preferPublic: prefer == PreferPublic,
		resolve:      resolve,
		cache:        cache,
	}
	for _, loc := range locations {
		u, err := toFileURI(loc)
		if err != nil {
			return nil, &Error{Op: "configure", File: loc, Err: err}
		}
		r.roots = append(r.roots, u)
	}

	if !deferLoad {
		if err := r.loadAll(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Mode returns the resolve policy: strict, continue or ignore
func (r *Resolver) Mode() string {
	return r.resolve
}

func (r *Resolver) loadAll() error {
	seen := make(map[string]struct{})
	queue := append([]string(nil), r.roots...)
	for len(queue) > 0 {
		loc := queue[0]
		queue = queue[1:]
		if _, ok := seen[loc]; ok {
			continue
		}
		seen[loc] = struct{}{}
		f, err := r.load(loc)
		if err != nil {
			return err
		}
		queue = append(queue, f.next...)
	}
	return nil
}

func (r *Resolver) load(location string) (*file, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f, ok := r.files[location]; ok {
		return f, nil
	}

	if pdebug.Enabled {
		pdebug.Printf("loading catalog %s", location)
	}

	rc, err := openLocation(location)
	if err != nil {
		return nil, &Error{Op: "load", File: location, Err: err}
	}
	defer rc.Close()

	f, err := parse(rc, location, r.preferPublic)
	if err != nil {
		return nil, &Error{Op: "load", File: location, Err: err}
	}
	r.files[location] = f
	if debug.Enabled {
		debug.Printf("catalog %s: %d entries, %d next", location, len(f.entries), len(f.next))
		debug.Dump(f.entries)
	}
	return f, nil
}

type matcher func(*file) (string, bool)

// walk visits catalog files depth first: each file is consulted before
// the catalogs it delegates to with nextCatalog.
func (r *Resolver) walk(locations []string, seen map[string]struct{}, fn matcher) (string, bool, error) {
	for _, loc := range locations {
		if _, ok := seen[loc]; ok {
			continue
		}
		seen[loc] = struct{}{}

		f, err := r.load(loc)
		if err != nil {
			return "", false, err
		}
		if v, ok := fn(f); ok {
			return v, true, nil
		}
		if v, ok, err := r.walk(f.next, seen, fn); err != nil || ok {
			return v, ok, err
		}
	}
	return "", false, nil
}

func (r *Resolver) lookup(key string, fn matcher) (string, error) {
	if v, ok := r.cache.Get(key); ok {
		return v.(string), nil
	}

	v, _, err := r.walk(r.roots, make(map[string]struct{}), fn)
	if err != nil {
		return "", err
	}
	r.cache.Add(key, v)
	return v, nil
}

// ResolveEntity maps an external identifier to a URI. An empty result
// with a nil error means nothing matched; in strict mode that case is
// an *Error instead.
func (r *Resolver) ResolveEntity(publicID, systemID string) (string, error) {
	publicID = normalizePublicID(publicID)
	if publicID == "" && systemID == "" {
		return "", nil
	}

	v, err := r.lookup("entity\x00"+publicID+"\x00"+systemID, func(f *file) (string, bool) {
		if systemID != "" {
			if v, ok := f.matchSystem(systemID); ok {
				return v, true
			}
		}
		if publicID != "" {
			return f.matchPublic(publicID, systemID != "")
		}
		return "", false
	})
	if err != nil {
		return "", err
	}
	if v == "" && r.resolve == ResolveStrict {
		return "", &Error{Op: "resolve", Err: errors.Wrapf(ErrNoMatch, `public %q system %q`, publicID, systemID)}
	}
	return v, nil
}

// ResolveURI maps a URI reference through uri, rewriteURI and uriSuffix
// entries.
func (r *Resolver) ResolveURI(uri string) (string, error) {
	if strings.TrimSpace(uri) == "" {
		return "", nil
	}

	v, err := r.lookup("uri\x00"+uri, func(f *file) (string, bool) {
		return f.matchURI(uri)
	})
	if err != nil {
		return "", err
	}
	if v == "" && r.resolve == ResolveStrict {
		return "", &Error{Op: "resolve", Err: errors.Wrapf(ErrNoMatch, `uri %q`, uri)}
	}
	return v, nil
}
