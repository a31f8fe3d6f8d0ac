// Package stack contains the small LIFO containers used to track open
// entity frames and the resources that back them.
package stack

type popper interface {
	Cap() int
	Len() int
	PopLast()
	Realloc()
}

// stackPop removes up to n items. When the backing array has become
// mostly empty, it is reallocated so that large expansions do not pin
// memory for the rest of the session.
func stackPop(s popper, n int) {
	if n <= 0 {
		return
	}

	for s.Len() > 0 {
		s.PopLast()
		n--
		if n <= 0 {
			break
		}
	}

	if c := s.Cap(); c > 20 && c > s.Len()*2 {
		s.Realloc()
	}
}
