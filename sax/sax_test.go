package sax_test

import (
	"context"
	"testing"

	"github.com/lestrrat-go/xmlentity/sax"
	"github.com/stretchr/testify/require"
)

func TestSAX2(t *testing.T) {
	var h sax.EntityHandler = sax.New()
	ctx := context.Background()
	require.ErrorIs(t, h.StartEntity(ctx, "e", nil, "", sax.Augmentations{}), sax.ErrHandlerUnspecified)
	require.ErrorIs(t, h.EndEntity(ctx, "e", sax.Augmentations{}), sax.ErrHandlerUnspecified)

	var events []string
	s := sax.New()
	s.StartEntityHandler = func(_ context.Context, name string, id *sax.ResourceIdentifier, encoding string, augs sax.Augmentations) error {
		events = append(events, "start:"+name+":"+id.ExpandedSystemID+":"+encoding)
		return nil
	}
	s.EndEntityHandler = func(_ context.Context, name string, augs sax.Augmentations) error {
		if augs.LastEntity {
			name += ":last"
		}
		events = append(events, "end:"+name)
		return nil
	}

	require.NoError(t, s.StartEntity(ctx, "e", &sax.ResourceIdentifier{ExpandedSystemID: "file:///e.ent"}, "UTF-8", sax.Augmentations{}))
	require.NoError(t, s.EndEntity(ctx, "e", sax.Augmentations{LastEntity: true}))
	require.Equal(t, []string{"start:e:file:///e.ent:UTF-8", "end:e:last"}, events)
}
