package stack

import "errors"

var ErrDuplicateItem = errors.New("item already exists")

// Keyed is implemented by items stored in a Unique stack
type Keyed interface {
	Key() string
}

// Unique is a stack that refuses to hold two items with the same key.
type Unique[T Keyed] []T

func (s *Unique[T]) Push(v T) error {
	if s.Index(v.Key()) >= 0 {
		return ErrDuplicateItem
	}
	*s = append(*s, v)
	return nil
}

func (s *Unique[T]) Pop(n ...int) {
	nn := 1
	if len(n) > 0 {
		nn = n[0]
	}
	stackPop(s, nn)
}

func (s *Unique[T]) Realloc() {
	*s = append(Unique[T](nil), *s...)
}

func (s *Unique[T]) PopLast() {
	if s.Len() <= 0 {
		return
	}
	var zero T
	(*s)[s.Len()-1] = zero
	*s = (*s)[:s.Len()-1]
}

func (s Unique[T]) Len() int {
	return len(s)
}

func (s Unique[T]) Cap() int {
	return cap(s)
}

// Index returns the position of the item with the given key, counting
// from the bottom of the stack, or -1.
func (s Unique[T]) Index(key string) int {
	for i := s.Len() - 1; i >= 0; i -= 1 {
		if s[i].Key() == key {
			return i
		}
	}
	return -1
}

func (s Unique[T]) Lookup(key string) (T, bool) {
	if i := s.Index(key); i >= 0 {
		return s[i], true
	}
	var zero T
	return zero, false
}

// Top returns the topmost item without removing it.
func (s Unique[T]) Top() (T, bool) {
	var zero T
	if len(s) == 0 {
		return zero, false
	}
	return s[len(s)-1], true
}

func (s Unique[T]) At(i int) T {
	return s[i]
}
