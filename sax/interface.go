// Package sax defines the callbacks through which the entity manager
// reports entity boundaries to the component consuming decoded text.
package sax

import (
	"context"
	"errors"
)

// ErrHandlerUnspecified is returned when there is no Handler
// registered for that particular event callback. This is not
// a fatal error per se, and can be ignored if the implementation
// chooses to do so.
var ErrHandlerUnspecified = errors.New("handler unspecified")

// ResourceIdentifier names an entity's location.
type ResourceIdentifier struct {
	PublicID         string
	LiteralSystemID  string
	BaseSystemID     string
	ExpandedSystemID string
	Namespace        string
}

// Augmentations carry the flags that accompany an entity event.
type Augmentations struct {
	// Skipped is set when the entity was referenced but not expanded
	Skipped bool
	// LastEntity is set on the EndEntity event for the outermost entity
	LastEntity bool
}

// EntityHandler receives entity boundary events. Calls are strictly
// nested: every StartEntity is followed by exactly one EndEntity for the
// same name before the enclosing entity ends.
type EntityHandler interface {
	StartEntity(ctx context.Context, name string, id *ResourceIdentifier, encoding string, augs Augmentations) error
	EndEntity(ctx context.Context, name string, augs Augmentations) error
}

// StartEntityFunc defines the function type for SAX2.StartEntityHandler
type StartEntityFunc func(ctx context.Context, name string, id *ResourceIdentifier, encoding string, augs Augmentations) error

// EndEntityFunc defines the function type for SAX2.EndEntityHandler
type EndEntityFunc func(ctx context.Context, name string, augs Augmentations) error
