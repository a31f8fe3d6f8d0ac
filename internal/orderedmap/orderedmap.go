// Package orderedmap implements a map that remembers insertion order and
// never overwrites an existing key.
package orderedmap

import (
	"errors"
	"iter"
)

var ErrDuplicateEntry = errors.New("duplicate entry")

type Map[K comparable, V any] struct {
	entries []K
	keys    map[K]V
}

func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		entries: make([]K, 0),
		keys:    make(map[K]V),
	}
}

// Set inserts the value for key. If key is already present the original
// value is kept and ErrDuplicateEntry is returned.
func (m *Map[K, V]) Set(key K, value V) error {
	_, exists := m.keys[key]
	if exists {
		return ErrDuplicateEntry
	}
	m.entries = append(m.entries, key)
	m.keys[key] = value
	return nil
}

func (m *Map[K, V]) Get(key K) (V, bool) {
	v, ok := m.keys[key]
	return v, ok
}

func (m *Map[K, V]) Has(key K) bool {
	_, ok := m.keys[key]
	return ok
}

func (m *Map[K, V]) Len() int {
	return len(m.entries)
}

// Clear removes every entry.
func (m *Map[K, V]) Clear() {
	m.entries = m.entries[:0]
	clear(m.keys)
}

func (m *Map[K, V]) Range() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, k := range m.entries {
			v := m.keys[k]
			if !yield(k, v) {
				break
			}
		}
	}
}
