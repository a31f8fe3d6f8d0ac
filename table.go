package xmlentity

import (
	"iter"

	"github.com/lestrrat-go/xmlentity/internal/orderedmap"
)

// EntityTable is the declaration registry for one session. The first
// declaration of a name wins; later ones are ignored and the Declare
// methods report false. All queries are safe on undeclared names.
type EntityTable struct {
	entities *orderedmap.Map[string, *Entity]
}

func NewEntityTable() *EntityTable {
	return &EntityTable{
		entities: orderedmap.New[string, *Entity](),
	}
}

func (t *EntityTable) add(e *Entity) bool {
	return t.entities.Set(e.name, e) == nil
}

// DeclareInternal registers an entity whose replacement text is given
// inline.
func (t *EntityTable) DeclareInternal(name, text string, inExternalSubset bool) bool {
	typ := InternalGeneralEntity
	if isParameterEntityName(name) {
		typ = InternalParameterEntity
	}
	return t.add(&Entity{
		name:             name,
		etype:            typ,
		content:          text,
		inExternalSubset: inExternalSubset,
	})
}

// DeclareExternal registers an external parsed entity. expandedSystemID
// is the system id already resolved against baseSystemID.
func (t *EntityTable) DeclareExternal(name, publicID, literalSystemID, baseSystemID, expandedSystemID string, inExternalSubset bool) bool {
	typ := ExternalGeneralParsedEntity
	if isParameterEntityName(name) {
		typ = ExternalParameterEntity
	}
	return t.add(&Entity{
		name:  name,
		etype: typ,
		id: ResourceIdentifier{
			PublicID:         publicID,
			LiteralSystemID:  literalSystemID,
			BaseSystemID:     baseSystemID,
			ExpandedSystemID: expandedSystemID,
		},
		inExternalSubset: inExternalSubset,
	})
}

// DeclareUnparsed registers an unparsed entity bound to notation. Its
// system id is never expanded since it is never read.
func (t *EntityTable) DeclareUnparsed(name, publicID, systemID, baseSystemID, notation string, inExternalSubset bool) bool {
	return t.add(&Entity{
		name:  name,
		etype: ExternalGeneralUnparsedEntity,
		id: ResourceIdentifier{
			PublicID:        publicID,
			LiteralSystemID: systemID,
			BaseSystemID:    baseSystemID,
		},
		notation:         notation,
		inExternalSubset: inExternalSubset,
	})
}

// Lookup returns the declaration for name, or nil
func (t *EntityTable) Lookup(name string) *Entity {
	if t == nil {
		return nil
	}
	e, _ := t.entities.Get(name)
	return e
}

func (t *EntityTable) IsDeclared(name string) bool {
	return t.Lookup(name) != nil
}

func (t *EntityTable) IsExternal(name string) bool {
	e := t.Lookup(name)
	return e != nil && e.IsExternal()
}

func (t *EntityTable) IsUnparsed(name string) bool {
	e := t.Lookup(name)
	return e != nil && e.IsUnparsed()
}

func (t *EntityTable) IsDeclaredInExternalSubset(name string) bool {
	e := t.Lookup(name)
	return e != nil && e.inExternalSubset
}

func (t *EntityTable) Len() int {
	if t == nil {
		return 0
	}
	return t.entities.Len()
}

// Entities iterates over the declarations in declaration order
func (t *EntityTable) Entities() iter.Seq2[string, *Entity] {
	return t.entities.Range()
}

func (t *EntityTable) clear() {
	t.entities.Clear()
}
