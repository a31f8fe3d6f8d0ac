package xmlentity

import (
	"context"

	"github.com/lestrrat-go/pdebug/v3"
	"github.com/lestrrat-go/xmlentity/catalog"
	"github.com/pkg/errors"
)

// errIgnoreEntity is returned by a stage that decided the reference
// must be skipped rather than resolved further.
var errIgnoreEntity = errors.New(`entity ignored by catalog policy`)

// resolutionStage is one step of entity resolution. A stage returns a
// nil source and a nil error when it has nothing to offer.
type resolutionStage interface {
	resolve(ctx context.Context, id *ResourceIdentifier) (*InputSource, error)
}

type appResolverStage struct {
	resolver Resolver
}

func (s appResolverStage) resolve(ctx context.Context, id *ResourceIdentifier) (*InputSource, error) {
	src, err := s.resolver.ResolveEntity(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, `application resolver failed`)
	}
	if src != nil {
		src.CreatedByResolver = true
	}
	return src, nil
}

type catalogStage struct {
	manager *Manager
}

func (s catalogStage) resolve(_ context.Context, id *ResourceIdentifier) (*InputSource, error) {
	if id.PublicID == "" && id.LiteralSystemID == "" && id.Namespace == "" {
		return nil, nil
	}

	cat, err := s.manager.catalogResolver()
	if err != nil {
		return nil, &CatalogError{Err: err}
	}

	publicID := id.PublicID
	if publicID == "" {
		publicID = id.Namespace
	}
	uri, err := cat.ResolveEntity(publicID, id.LiteralSystemID)
	if err != nil {
		return nil, &CatalogError{Err: err}
	}
	if uri == "" {
		if cat.Mode() == catalog.ResolveIgnore {
			return nil, errIgnoreEntity
		}
		return nil, nil
	}

	return &InputSource{
		PublicID:          id.PublicID,
		SystemID:          uri,
		BaseSystemID:      id.BaseSystemID,
		CreatedByResolver: true,
	}, nil
}

type defaultCatalogStage struct{}

func (defaultCatalogStage) resolve(_ context.Context, id *ResourceIdentifier) (*InputSource, error) {
	if id.PublicID == "" && id.LiteralSystemID == "" {
		return nil, nil
	}
	uri, err := catalog.Default().ResolveEntity(id.PublicID, id.LiteralSystemID)
	if err != nil || uri == "" {
		return nil, nil
	}
	return &InputSource{
		PublicID:     id.PublicID,
		SystemID:     uri,
		BaseSystemID: id.BaseSystemID,
	}, nil
}

type passthroughStage struct {
	always bool
}

func (s passthroughStage) resolve(_ context.Context, id *ResourceIdentifier) (*InputSource, error) {
	if !s.always && (id.PublicID != "" || id.LiteralSystemID != "") {
		return nil, nil
	}
	return &InputSource{
		PublicID:     id.PublicID,
		SystemID:     id.LiteralSystemID,
		BaseSystemID: id.BaseSystemID,
	}, nil
}

func (m *Manager) buildStages() {
	m.stages = m.stages[:0]
	if m.resolver != nil {
		m.stages = append(m.stages, appResolverStage{resolver: m.resolver})
	}
	catalogs := m.useCatalog && len(m.catalogFiles) > 0
	if catalogs {
		m.stages = append(m.stages, catalogStage{manager: m})
	}
	cont := m.catalogResolve == catalog.ResolveContinue
	if m.useCatalog && cont {
		m.stages = append(m.stages, defaultCatalogStage{})
	}
	m.stages = append(m.stages, passthroughStage{always: cont || !catalogs})
}

// catalogResolver builds the catalog on first use
func (m *Manager) catalogResolver() (*catalog.Resolver, error) {
	if m.catalog != nil {
		return m.catalog, nil
	}
	cat, err := catalog.New(
		catalog.WithFiles(m.catalogFiles...),
		catalog.WithPrefer(m.catalogPrefer),
		catalog.WithDefer(m.catalogDefer),
		catalog.WithResolve(m.catalogResolve),
	)
	if err != nil {
		return nil, err
	}
	m.catalog = cat
	return cat, nil
}

// ResolveEntity runs the resolution pipeline for id. The expanded
// system id is filled in if missing, using the current entity as the
// base when id has none. A nil source with a nil error means that no
// stage could resolve the identifier.
//
// Catalog failures come back as *CatalogError. They are not reported;
// StartEntity does that.
func (m *Manager) ResolveEntity(ctx context.Context, id *ResourceIdentifier) (*InputSource, error) {
	if pdebug.Enabled {
		g := pdebug.FuncMarker()
		defer g.End()
	}

	if id.BaseSystemID == "" && m.current != nil {
		id.BaseSystemID = m.current.id.ExpandedSystemID
	}
	if id.ExpandedSystemID == "" && id.LiteralSystemID != "" {
		expanded, err := ExpandSystemID(id.LiteralSystemID, id.BaseSystemID, m.strictURI)
		if err != nil {
			return nil, errors.Wrap(err, `failed to expand system id`)
		}
		id.ExpandedSystemID = expanded
	}

	for _, stage := range m.stages {
		src, err := stage.resolve(ctx, id)
		if err != nil {
			return nil, err
		}
		if src != nil {
			if pdebug.Enabled {
				pdebug.Printf("resolved %q to %q (%T)", id.LiteralSystemID, src.SystemID, stage)
			}
			return src, nil
		}
	}
	return nil, nil
}
