package catalog

import (
	"bytes"
	_ "embed"
	"sync"

	lru "github.com/hashicorp/golang-lru"
)

//go:embed default.xml
var defaultCatalog []byte

const defaultLocation = "builtin:default-catalog"

var defaultOnce sync.Once
var defaultResolver *Resolver

// Default returns the built-in catalog of well known W3C public
// identifiers. It is built on first use and shared afterwards.
func Default() *Resolver {
	defaultOnce.Do(func() {
		cache, err := lru.New(defaultCacheSize)
		if err != nil {
			panic(err)
		}

		f, err := parse(bytes.NewReader(defaultCatalog), defaultLocation, true)
		if err != nil {
			panic("catalog: built-in catalog is malformed: " + err.Error())
		}

		defaultResolver = &Resolver{
			roots:        []string{defaultLocation},
			files:        map[string]*file{defaultLocation: f},
			preferPublic: true,
			resolve:      ResolveContinue,
			cache:        cache,
		}
	})
	return defaultResolver
}
