package catalog_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lestrrat-go/xmlentity/catalog"
	"github.com/stretchr/testify/require"
)

const mainCatalog = `<?xml version="1.0"?>
<catalog xmlns="urn:oasis:names:tc:entity:xmlns:xml:catalog">
  <system systemId="http://example.com/dtd/doc.dtd" uri="local/doc.dtd"/>
  <rewriteSystem systemIdStartString="http://example.com/ents/" rewritePrefix="file:///opt/ents/"/>
  <rewriteSystem systemIdStartString="http://example.com/ents/special/" rewritePrefix="file:///opt/special/"/>
  <systemSuffix systemIdSuffix="/chapter.ent" uri="chapters/chapter.ent"/>
  <public publicId="-//Example//DTD  Doc//EN" uri="file:///opt/public/doc.dtd"/>
  <group prefer="system" xml:base="file:///opt/group/">
    <public publicId="-//Example//DTD Grouped//EN" uri="grouped.dtd"/>
  </group>
  <uri name="http://example.com/schema.xsd" uri="file:///opt/schema.xsd"/>
  <nextCatalog catalog="next.xml"/>
</catalog>`

const nextCatalog = `<?xml version="1.0"?>
<catalog xmlns="urn:oasis:names:tc:entity:xmlns:xml:catalog">
  <system systemId="urn:example:next" uri="file:///opt/next.ent"/>
  <nextCatalog catalog="catalog.xml"/>
</catalog>`

func writeCatalogs(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	main := filepath.Join(dir, "catalog.xml")
	require.NoError(t, os.WriteFile(main, []byte(mainCatalog), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "next.xml"), []byte(nextCatalog), 0o644))
	return dir, main
}

func TestResolveEntity(t *testing.T) {
	dir, main := writeCatalogs(t)
	base := "file://" + filepath.ToSlash(dir) + "/"

	r, err := catalog.New(catalog.WithFiles(main))
	require.NoError(t, err)

	tests := []struct {
		Name     string
		PublicID string
		SystemID string
		Expected string
	}{
		{Name: "system", SystemID: "http://example.com/dtd/doc.dtd", Expected: base + "local/doc.dtd"},
		{Name: "rewrite prefers the longest prefix", SystemID: "http://example.com/ents/special/a.ent", Expected: "file:///opt/special/a.ent"},
		{Name: "rewrite", SystemID: "http://example.com/ents/b.ent", Expected: "file:///opt/ents/b.ent"},
		{Name: "suffix", SystemID: "http://elsewhere.example/book/chapter.ent", Expected: base + "chapters/chapter.ent"},
		{Name: "public with normalized spaces", PublicID: "-//Example//DTD Doc//EN", SystemID: "unmatched.dtd", Expected: "file:///opt/public/doc.dtd"},
		{Name: "prefer system skips public", PublicID: "-//Example//DTD Grouped//EN", SystemID: "unmatched.dtd"},
		{Name: "prefer system without system id", PublicID: "-//Example//DTD Grouped//EN", Expected: "file:///opt/group/grouped.dtd"},
		{Name: "next catalog", SystemID: "urn:example:next", Expected: "file:///opt/next.ent"},
		{Name: "no match", SystemID: "http://nowhere.example/x.dtd"},
	}

	for _, tc := range tests {
		t.Run(tc.Name, func(t *testing.T) {
			got, err := r.ResolveEntity(tc.PublicID, tc.SystemID)
			require.NoError(t, err)
			require.Equal(t, tc.Expected, got)

			// second lookup comes from the cache
			got, err = r.ResolveEntity(tc.PublicID, tc.SystemID)
			require.NoError(t, err)
			require.Equal(t, tc.Expected, got)
		})
	}
}

func TestResolveURI(t *testing.T) {
	_, main := writeCatalogs(t)
	r, err := catalog.New(catalog.WithFiles(main), catalog.WithDefer(true))
	require.NoError(t, err)

	got, err := r.ResolveURI("http://example.com/schema.xsd")
	require.NoError(t, err)
	require.Equal(t, "file:///opt/schema.xsd", got)
}

func TestStrict(t *testing.T) {
	_, main := writeCatalogs(t)
	r, err := catalog.New(catalog.WithFiles(main), catalog.WithResolve(catalog.ResolveStrict))
	require.NoError(t, err)
	require.Equal(t, catalog.ResolveStrict, r.Mode())

	_, err = r.ResolveEntity("", "http://nowhere.example/x.dtd")
	var cerr *catalog.Error
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, "resolve", cerr.Op)
	require.ErrorIs(t, err, catalog.ErrNoMatch)
}

func TestLoadErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.xml")

	_, err := catalog.New(catalog.WithFiles(missing))
	var cerr *catalog.Error
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, "load", cerr.Op)

	r, err := catalog.New(catalog.WithFiles(missing), catalog.WithDefer(true))
	require.NoError(t, err, "deferred catalogs are not read up front")
	_, err = r.ResolveEntity("", "a.dtd")
	require.True(t, errors.As(err, &cerr))

	_, err = catalog.New(catalog.WithPrefer("sometimes"))
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, "configure", cerr.Op)

	_, err = catalog.New(catalog.WithResolve("maybe"))
	require.True(t, errors.As(err, &cerr))
}

func TestDefault(t *testing.T) {
	r := catalog.Default()
	require.Same(t, r, catalog.Default())

	got, err := r.ResolveEntity("-//W3C//DTD XHTML 1.0 Strict//EN", "")
	require.NoError(t, err)
	require.Equal(t, "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd", got)

	got, err = r.ResolveEntity("", "http://example.com/unknown.dtd")
	require.NoError(t, err)
	require.Empty(t, got)
}
