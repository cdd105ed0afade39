// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package grc20

import (
	"fmt"

	"github.com/geobrowser/grc-20-sub000/lib/id"
)

// OpType is the one-byte tag that begins every encoded op.
type OpType uint8

const (
	OpCreateEntity    OpType = 1
	OpUpdateEntity    OpType = 2
	OpDeleteEntity    OpType = 3
	OpRestoreEntity   OpType = 4
	OpCreateRelation  OpType = 5
	OpUpdateRelation  OpType = 6
	OpDeleteRelation  OpType = 7
	OpRestoreRelation OpType = 8
	OpCreateValueRef  OpType = 9
)

var opTypeNames = map[OpType]string{
	OpCreateEntity:    "createEntity",
	OpUpdateEntity:    "updateEntity",
	OpDeleteEntity:    "deleteEntity",
	OpRestoreEntity:   "restoreEntity",
	OpCreateRelation:  "createRelation",
	OpUpdateRelation:  "updateRelation",
	OpDeleteRelation:  "deleteRelation",
	OpRestoreRelation: "restoreRelation",
	OpCreateValueRef:  "createValueRef",
}

// String returns the camel-case op name used in documents and logs.
func (o OpType) String() string {
	if name, ok := opTypeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(o))
}

// ParseOpType parses the name returned by OpType.String.
func ParseOpType(name string) (OpType, error) {
	for opType, candidate := range opTypeNames {
		if candidate == name {
			return opType, nil
		}
	}
	return 0, fmt.Errorf("unknown op type %q", name)
}

// Op is one graph mutation. The set of implementations is closed:
// CreateEntity, UpdateEntity, DeleteEntity, RestoreEntity,
// CreateRelation, UpdateRelation, DeleteRelation, RestoreRelation,
// CreateValueRef.
type Op interface {
	// OpType reports the wire tag of the op.
	OpType() OpType
	isOp()
}

// Context is a provenance path from a root entity to the entity an op
// mutates. Downstream consumers group changes by it; the codec only
// stores it.
type Context struct {
	Root  id.ID
	Edges []ContextEdge
}

// ContextEdge is one hop of a Context path.
type ContextEdge struct {
	RelationType id.ID
	To           id.ID
}

// CreateEntity creates an entity with an initial set of values, at
// most one per slot (property plus language).
type CreateEntity struct {
	ID      id.ID
	Values  []PropertyValue
	Context *Context
}

// UnsetLanguageKind selects which language slots an UnsetValue clears.
type UnsetLanguageKind uint8

const (
	// UnsetDefaultLanguage clears the value without a language (for
	// non-text properties, the only value).
	UnsetDefaultLanguage UnsetLanguageKind = iota
	// UnsetAllLanguages clears the value in every language.
	UnsetAllLanguages
	// UnsetSpecificLanguage clears the value in UnsetValue.Language.
	UnsetSpecificLanguage
)

// unsetAllLanguagesCode is the wire code for UnsetAllLanguages.
const unsetAllLanguagesCode = 0xFFFFFFFF

// UnsetValue removes a property value from an entity.
type UnsetValue struct {
	Property id.ID
	Kind     UnsetLanguageKind
	// Language is meaningful only when Kind is UnsetSpecificLanguage.
	Language id.ID
}

// UpdateEntity sets and unsets values on an existing entity. Set holds
// at most one value per slot, and a slot must not appear in both Set
// and Unset.
type UpdateEntity struct {
	ID      id.ID
	Set     []PropertyValue
	Unset   []UnsetValue
	Context *Context
}

// DeleteEntity tombstones an entity.
type DeleteEntity struct {
	ID      id.ID
	Context *Context
}

// RestoreEntity reverses a DeleteEntity.
type RestoreEntity struct {
	ID      id.ID
	Context *Context
}

// CreateRelation creates a typed edge between two endpoints. An
// endpoint flagged as a value-ref names a CreateValueRef ID and is
// carried inline instead of through the objects dictionary.
type CreateRelation struct {
	ID             id.ID
	RelationType   id.ID
	From           id.ID
	FromIsValueRef bool
	To             id.ID
	ToIsValueRef   bool
	FromSpace      *id.ID
	FromVersion    *id.ID
	ToSpace        *id.ID
	ToVersion      *id.ID
	// Entity is the entity that reifies the relation, when distinct.
	Entity *id.ID
	// Position is a fractional-index ordering key.
	Position *string
	Context  *Context
}

// RelationField names a mutable field of a relation.
type RelationField uint8

const (
	RelationFromSpace   RelationField = 1 << 0
	RelationFromVersion RelationField = 1 << 1
	RelationToSpace     RelationField = 1 << 2
	RelationToVersion   RelationField = 1 << 3
	RelationPosition    RelationField = 1 << 4

	// relationFieldMask covers every defined field bit.
	relationFieldMask = RelationFromSpace | RelationFromVersion | RelationToSpace | RelationToVersion | RelationPosition
)

// relationFields lists the fields in wire order.
var relationFields = []RelationField{
	RelationFromSpace, RelationFromVersion, RelationToSpace, RelationToVersion, RelationPosition,
}

// String returns the camel-case field name.
func (f RelationField) String() string {
	switch f {
	case RelationFromSpace:
		return "fromSpace"
	case RelationFromVersion:
		return "fromVersion"
	case RelationToSpace:
		return "toSpace"
	case RelationToVersion:
		return "toVersion"
	case RelationPosition:
		return "position"
	default:
		return fmt.Sprintf("unknown(%#x)", uint8(f))
	}
}

// ParseRelationField parses the name returned by RelationField.String.
func ParseRelationField(name string) (RelationField, error) {
	for _, field := range relationFields {
		if field.String() == name {
			return field, nil
		}
	}
	return 0, fmt.Errorf("unknown relation field %q", name)
}

// UpdateRelation changes the mutable fields of a relation. Unset lists
// each field at most once. The wire carries it as a bitmask, so order
// is not preserved: Unset decodes in wire order (fromSpace,
// fromVersion, toSpace, toVersion, position).
type UpdateRelation struct {
	ID          id.ID
	FromSpace   *id.ID
	FromVersion *id.ID
	ToSpace     *id.ID
	ToVersion   *id.ID
	Position    *string
	Unset       []RelationField
	Context     *Context
}

// setFields returns the bitmask of fields UpdateRelation sets.
func (u *UpdateRelation) setFields() RelationField {
	var fields RelationField
	if u.FromSpace != nil {
		fields |= RelationFromSpace
	}
	if u.FromVersion != nil {
		fields |= RelationFromVersion
	}
	if u.ToSpace != nil {
		fields |= RelationToSpace
	}
	if u.ToVersion != nil {
		fields |= RelationToVersion
	}
	if u.Position != nil {
		fields |= RelationPosition
	}
	return fields
}

// DeleteRelation tombstones a relation.
type DeleteRelation struct {
	ID      id.ID
	Context *Context
}

// RestoreRelation reverses a DeleteRelation.
type RestoreRelation struct {
	ID      id.ID
	Context *Context
}

// CreateValueRef names one value slot (entity, property, optional
// language and space) so that relations can point at it. The
// properties dictionary records a data type for Property, so unless
// another op in the edit carries a value for it, encoding needs a hint
// in EncodeOptions.PropertyTypes and fails with ErrUntypedProperty
// without one.
type CreateValueRef struct {
	ID       id.ID
	Entity   id.ID
	Property id.ID
	Language *id.ID
	Space    *id.ID
}

func (*CreateEntity) OpType() OpType    { return OpCreateEntity }
func (*UpdateEntity) OpType() OpType    { return OpUpdateEntity }
func (*DeleteEntity) OpType() OpType    { return OpDeleteEntity }
func (*RestoreEntity) OpType() OpType   { return OpRestoreEntity }
func (*CreateRelation) OpType() OpType  { return OpCreateRelation }
func (*UpdateRelation) OpType() OpType  { return OpUpdateRelation }
func (*DeleteRelation) OpType() OpType  { return OpDeleteRelation }
func (*RestoreRelation) OpType() OpType { return OpRestoreRelation }
func (*CreateValueRef) OpType() OpType  { return OpCreateValueRef }

func (*CreateEntity) isOp()    {}
func (*UpdateEntity) isOp()    {}
func (*DeleteEntity) isOp()    {}
func (*RestoreEntity) isOp()   {}
func (*CreateRelation) isOp()  {}
func (*UpdateRelation) isOp()  {}
func (*DeleteRelation) isOp()  {}
func (*RestoreRelation) isOp() {}
func (*CreateValueRef) isOp()  {}

// opContext returns the context attached to op, if the op kind can
// carry one.
func opContext(op Op) *Context {
	switch o := op.(type) {
	case *CreateEntity:
		return o.Context
	case *UpdateEntity:
		return o.Context
	case *DeleteEntity:
		return o.Context
	case *RestoreEntity:
		return o.Context
	case *CreateRelation:
		return o.Context
	case *UpdateRelation:
		return o.Context
	case *DeleteRelation:
		return o.Context
	case *RestoreRelation:
		return o.Context
	default:
		return nil
	}
}
