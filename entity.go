package xmlentity

import "strings"

// EntityType tells the declaration variants apart
type EntityType int

const (
	InternalGeneralEntity EntityType = iota + 1
	ExternalGeneralParsedEntity
	ExternalGeneralUnparsedEntity
	InternalParameterEntity
	ExternalParameterEntity
)

func (t EntityType) String() string {
	switch t {
	case InternalGeneralEntity:
		return "internal general"
	case ExternalGeneralParsedEntity:
		return "external general parsed"
	case ExternalGeneralUnparsedEntity:
		return "external general unparsed"
	case InternalParameterEntity:
		return "internal parameter"
	case ExternalParameterEntity:
		return "external parameter"
	}
	return "unknown"
}

// Entity is an entity declaration. It never changes after it has been
// registered in an EntityTable.
//
// Parameter entities are declared and referenced with a leading '%' in
// their name, which keeps them apart from general entities of the same
// name.
type Entity struct {
	name             string
	etype            EntityType
	content          string
	id               ResourceIdentifier
	notation         string
	inExternalSubset bool
}

// ParameterEntityName returns the table key for parameter entity name
func ParameterEntityName(name string) string {
	return "%" + name
}

func isParameterEntityName(name string) bool {
	return strings.HasPrefix(name, "%")
}

func (e *Entity) Name() string {
	return e.name
}

func (e *Entity) EntityType() EntityType {
	return e.etype
}

// Content is the replacement text of an internal entity
func (e *Entity) Content() string {
	return e.content
}

func (e *Entity) PublicID() string {
	return e.id.PublicID
}

// SystemID is the system id as written in the declaration
func (e *Entity) SystemID() string {
	return e.id.LiteralSystemID
}

func (e *Entity) BaseSystemID() string {
	return e.id.BaseSystemID
}

func (e *Entity) ExpandedSystemID() string {
	return e.id.ExpandedSystemID
}

func (e *Entity) Notation() string {
	return e.notation
}

// Identifier returns a copy of the entity's resource identifier
func (e *Entity) Identifier() ResourceIdentifier {
	return e.id
}

func (e *Entity) IsExternal() bool {
	switch e.etype {
	case ExternalGeneralParsedEntity, ExternalGeneralUnparsedEntity, ExternalParameterEntity:
		return true
	}
	return false
}

func (e *Entity) IsUnparsed() bool {
	return e.etype == ExternalGeneralUnparsedEntity
}

func (e *Entity) IsParameter() bool {
	return e.etype == InternalParameterEntity || e.etype == ExternalParameterEntity
}

func (e *Entity) DeclaredInExternalSubset() bool {
	return e.inExternalSubset
}
