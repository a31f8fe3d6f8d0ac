package sax

import "context"

// SAX2 is the callback based EntityHandler.
type SAX2 struct {
	StartEntityHandler StartEntityFunc
	EndEntityHandler   EndEntityFunc
}

// New creates a new instance of SAX2. All callbacks are
// uninitialized.
func New() *SAX2 {
	return &SAX2{}
}

func (s SAX2) StartEntity(ctx context.Context, name string, id *ResourceIdentifier, encoding string, augs Augmentations) error {
	if h := s.StartEntityHandler; h != nil {
		return h(ctx, name, id, encoding, augs)
	}
	return ErrHandlerUnspecified
}

func (s SAX2) EndEntity(ctx context.Context, name string, augs Augmentations) error {
	if h := s.EndEntityHandler; h != nil {
		return h(ctx, name, augs)
	}
	return ErrHandlerUnspecified
}
