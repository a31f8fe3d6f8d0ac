package catalog

import (
	"encoding/xml"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

type entryKind int

const (
	entryPublic entryKind = iota
	entrySystem
	entryRewriteSystem
	entrySystemSuffix
	entryURI
	entryRewriteURI
	entryURISuffix
)

type entry struct {
	kind         entryKind
	key          string
	value        string
	preferPublic bool
}

type file struct {
	location string
	entries  []entry
	next     []string
}

type scope struct {
	base         string
	preferPublic bool
}

// toFileURI turns a path or URI into an absolute URI string
func toFileURI(location string) (string, error) {
	if u, err := url.Parse(location); err == nil && len(u.Scheme) > 1 {
		return location, nil
	}

	abs, err := filepath.Abs(location)
	if err != nil {
		return "", errors.Wrapf(err, `failed to make %q absolute`, location)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	if !strings.HasPrefix(u.Path, "/") {
		u.Path = "/" + u.Path
	}
	return u.String(), nil
}

func resolveAgainst(base, ref string) string {
	if ref == "" {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if r.IsAbs() {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

func openLocation(location string) (io.ReadCloser, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, errors.Wrapf(err, `invalid catalog location %q`, location)
	}
	if u.Scheme != "file" {
		return nil, errors.Errorf(`unsupported catalog scheme %q`, u.Scheme)
	}
	return os.Open(filepath.FromSlash(u.Path))
}

func attr(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if a.Name.Local == name && a.Name.Space == "" {
			return a.Value
		}
	}
	return ""
}

func xmlBase(se xml.StartElement) (string, bool) {
	for _, a := range se.Attr {
		if a.Name.Local == "base" && (a.Name.Space == xmlNamespace || a.Name.Space == "xml") {
			return a.Value, true
		}
	}
	return "", false
}

func normalizePublicID(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func parse(r io.Reader, location string, preferPublic bool) (*file, error) {
	f := &file{location: location}
	scopes := []scope{{base: location, preferPublic: preferPublic}}

	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrap(err, `failed to parse catalog`)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			cur := scopes[len(scopes)-1]
			if b, ok := xmlBase(t); ok {
				cur.base = resolveAgainst(cur.base, b)
			}
			switch t.Name.Local {
			case "catalog", "group":
				switch attr(t, "prefer") {
				case PreferPublic:
					cur.preferPublic = true
				case PreferSystem:
					cur.preferPublic = false
				}
			case "public":
				f.add(entryPublic, normalizePublicID(attr(t, "publicId")), cur.base, attr(t, "uri"), cur.preferPublic)
			case "system":
				f.add(entrySystem, attr(t, "systemId"), cur.base, attr(t, "uri"), cur.preferPublic)
			case "rewriteSystem":
				f.add(entryRewriteSystem, attr(t, "systemIdStartString"), cur.base, attr(t, "rewritePrefix"), cur.preferPublic)
			case "systemSuffix":
				f.add(entrySystemSuffix, attr(t, "systemIdSuffix"), cur.base, attr(t, "uri"), cur.preferPublic)
			case "uri":
				f.add(entryURI, attr(t, "name"), cur.base, attr(t, "uri"), cur.preferPublic)
			case "rewriteURI":
				f.add(entryRewriteURI, attr(t, "uriStartString"), cur.base, attr(t, "rewritePrefix"), cur.preferPublic)
			case "uriSuffix":
				f.add(entryURISuffix, attr(t, "uriSuffix"), cur.base, attr(t, "uri"), cur.preferPublic)
			case "nextCatalog":
				if c := attr(t, "catalog"); c != "" {
					f.next = append(f.next, resolveAgainst(cur.base, c))
				}
			}
			scopes = append(scopes, cur)
		case xml.EndElement:
			if len(scopes) > 1 {
				scopes = scopes[:len(scopes)-1]
			}
		}
	}
	return f, nil
}

func (f *file) add(kind entryKind, key, base, value string, preferPublic bool) {
	if key == "" || value == "" {
		return
	}
	f.entries = append(f.entries, entry{
		kind:         kind,
		key:          key,
		value:        resolveAgainst(base, value),
		preferPublic: preferPublic,
	})
}

// matchSystem implements the system, rewriteSystem and systemSuffix
// steps for a single catalog file.
func (f *file) matchSystem(systemID string) (string, bool) {
	return f.match(systemID, entrySystem, entryRewriteSystem, entrySystemSuffix)
}

func (f *file) matchURI(uri string) (string, bool) {
	return f.match(uri, entryURI, entryRewriteURI, entryURISuffix)
}

func (f *file) match(id string, exact, rewrite, suffix entryKind) (string, bool) {
	for _, e := range f.entries {
		if e.kind == exact && e.key == id {
			return e.value, true
		}
	}

	var best *entry
	for i, e := range f.entries {
		if e.kind == rewrite && strings.HasPrefix(id, e.key) && (best == nil || len(e.key) > len(best.key)) {
			best = &f.entries[i]
		}
	}
	if best != nil {
		return best.value + id[len(best.key):], true
	}

	for i, e := range f.entries {
		if e.kind == suffix && strings.HasSuffix(id, e.key) && (best == nil || len(e.key) > len(best.key)) {
			best = &f.entries[i]
		}
	}
	if best != nil {
		return best.value, true
	}
	return "", false
}

func (f *file) matchPublic(publicID string, hasSystemID bool) (string, bool) {
	for _, e := range f.entries {
		if e.kind != entryPublic || e.key != publicID {
			continue
		}
		if hasSystemID && !e.preferPublic {
			continue
		}
		return e.value, true
	}
	return "", false
}
