package stack

// Simple is a plain LIFO stack.
type Simple[T any] []T

func (s *Simple[T]) Push(v T) {
	*s = append(*s, v)
}

// Pop removes the topmost n items (default 1)
func (s *Simple[T]) Pop(n ...int) {
	nn := 1
	if len(n) > 0 {
		nn = n[0]
	}
	stackPop(s, nn)
}

// Top returns the topmost item without removing it.
func (s Simple[T]) Top() (T, bool) {
	var zero T
	if len(s) == 0 {
		return zero, false
	}
	return s[len(s)-1], true
}

func (s *Simple[T]) Realloc() {
	*s = append(Simple[T](nil), *s...)
}

func (s *Simple[T]) PopLast() {
	if s.Len() <= 0 {
		return
	}
	var zero T
	(*s)[s.Len()-1] = zero
	*s = (*s)[:s.Len()-1]
}

func (s Simple[T]) Peek(n int) []T {
	if l := s.Len(); l > n {
		return s[l-n : l]
	}
	return s
}

func (s Simple[T]) Len() int {
	return len(s)
}

func (s Simple[T]) Cap() int {
	return cap(s)
}
