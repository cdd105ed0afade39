// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package editdoc

import (
	"fmt"

	"github.com/geobrowser/grc-20-sub000/lib/grc20"
	"github.com/geobrowser/grc-20-sub000/lib/id"
)

// Document is the self-describing form of an edit. Field names are
// shared by JSON and CBOR.
type Document struct {
	ID        id.ID   `json:"id"`
	Name      string  `json:"name,omitempty"`
	Authors   []id.ID `json:"authors,omitempty"`
	CreatedAt int64   `json:"createdAt"`

	// PropertyTypes declares data types for properties that no value
	// in the document pins down (properties only unset or only named
	// by a createValueRef). Keys are property IDs in hex.
	PropertyTypes map[string]string `json:"propertyTypes,omitempty"`

	Ops []Op `json:"ops"`
}

// Op is one operation. Type selects which of the other fields apply:
//
//	createEntity     id, values
//	updateEntity     id, set, unset
//	deleteEntity     id
//	restoreEntity    id
//	createRelation   id, relationType, from, to, fromIsValueRef,
//	                 toIsValueRef, fromSpace, fromVersion, toSpace,
//	                 toVersion, entity, position
//	updateRelation   id, fromSpace, fromVersion, toSpace, toVersion,
//	                 position, unsetFields
//	deleteRelation   id
//	restoreRelation  id
//	createValueRef   id, entity, property, language, space
//
// Every type except createValueRef may carry a context.
type Op struct {
	Type string `json:"type"`
	ID   id.ID  `json:"id"`

	Values []Value `json:"values,omitempty"`
	Set    []Value `json:"set,omitempty"`
	Unset  []Unset `json:"unset,omitempty"`

	RelationType   *id.ID `json:"relationType,omitempty"`
	From           *id.ID `json:"from,omitempty"`
	FromIsValueRef bool   `json:"fromIsValueRef,omitempty"`
	To             *id.ID `json:"to,omitempty"`
	ToIsValueRef   bool   `json:"toIsValueRef,omitempty"`

	FromSpace   *id.ID   `json:"fromSpace,omitempty"`
	FromVersion *id.ID   `json:"fromVersion,omitempty"`
	ToSpace     *id.ID   `json:"toSpace,omitempty"`
	ToVersion   *id.ID   `json:"toVersion,omitempty"`
	Position    *string  `json:"position,omitempty"`
	UnsetFields []string `json:"unsetFields,omitempty"`

	Entity   *id.ID `json:"entity,omitempty"`
	Property *id.ID `json:"property,omitempty"`
	Language *id.ID `json:"language,omitempty"`
	Space    *id.ID `json:"space,omitempty"`

	Context *Context `json:"context,omitempty"`
}

// Unset names a value slot to clear. Language is empty for the
// default slot, "all" for every language, or a language ID.
type Unset struct {
	Property id.ID  `json:"property"`
	Language string `json:"language,omitempty"`
}

// unsetAll is the Unset.Language keyword for UnsetAllLanguages.
const unsetAll = "all"

// Context is a provenance path.
type Context struct {
	Root  id.ID         `json:"root"`
	Edges []ContextEdge `json:"edges,omitempty"`
}

// ContextEdge is one hop of a Context.
type ContextEdge struct {
	RelationType id.ID `json:"relationType"`
	To           id.ID `json:"to"`
}

// FromEdit converts an edit to its document form. propertyTypes, which
// may be nil, supplies types for properties no value pins down; only
// those end up in Document.PropertyTypes.
func FromEdit(edit *grc20.Edit, propertyTypes map[id.ID]grc20.DataType) (*Document, error) {
	doc := &Document{
		ID:        edit.ID,
		Name:      edit.Name,
		Authors:   edit.Authors,
		CreatedAt: edit.CreatedAt,
		Ops:       make([]Op, 0, len(edit.Ops)),
	}

	typed := make(map[id.ID]bool)
	untyped := make(map[id.ID]bool)
	for index, op := range edit.Ops {
		converted, err := fromOp(op, typed, untyped)
		if err != nil {
			return nil, fmt.Errorf("op %d: %w", index, err)
		}
		doc.Ops = append(doc.Ops, converted)
	}

	for property := range untyped {
		if typed[property] {
			continue
		}
		dataType, ok := propertyTypes[property]
		if !ok {
			continue
		}
		if doc.PropertyTypes == nil {
			doc.PropertyTypes = make(map[string]string)
		}
		doc.PropertyTypes[property.String()] = dataType.String()
	}
	return doc, nil
}

func fromOp(op grc20.Op, typed, untyped map[id.ID]bool) (Op, error) {
	converted := Op{}
	if op == nil {
		return converted, fmt.Errorf("nil op")
	}
	converted.Type = op.OpType().String()

	convertValues := func(values []grc20.PropertyValue) ([]Value, error) {
		if len(values) == 0 {
			return nil, nil
		}
		result := make([]Value, len(values))
		for i, value := range values {
			typed[value.Property] = true
			var err error
			if result[i], err = fromValue(value); err != nil {
				return nil, fmt.Errorf("value %d: %w", i, err)
			}
		}
		return result, nil
	}

	var err error
	switch o := op.(type) {
	case *grc20.CreateEntity:
		converted.ID = o.ID
		converted.Values, err = convertValues(o.Values)
		converted.Context = fromContext(o.Context)

	case *grc20.UpdateEntity:
		converted.ID = o.ID
		converted.Set, err = convertValues(o.Set)
		for _, unset := range o.Unset {
			untyped[unset.Property] = true
			entry := Unset{Property: unset.Property}
			switch unset.Kind {
			case grc20.UnsetAllLanguages:
				entry.Language = unsetAll
			case grc20.UnsetSpecificLanguage:
				entry.Language = unset.Language.String()
			}
			converted.Unset = append(converted.Unset, entry)
		}
		converted.Context = fromContext(o.Context)

	case *grc20.DeleteEntity:
		converted.ID = o.ID
		converted.Context = fromContext(o.Context)
	case *grc20.RestoreEntity:
		converted.ID = o.ID
		converted.Context = fromContext(o.Context)

	case *grc20.CreateRelation:
		converted.ID = o.ID
		converted.RelationType = &o.RelationType
		converted.From = &o.From
		converted.FromIsValueRef = o.FromIsValueRef
		converted.To = &o.To
		converted.ToIsValueRef = o.ToIsValueRef
		converted.FromSpace = o.FromSpace
		converted.FromVersion = o.FromVersion
		converted.ToSpace = o.ToSpace
		converted.ToVersion = o.ToVersion
		converted.Entity = o.Entity
		converted.Position = o.Position
		converted.Context = fromContext(o.Context)

	case *grc20.UpdateRelation:
		converted.ID = o.ID
		converted.FromSpace = o.FromSpace
		converted.FromVersion = o.FromVersion
		converted.ToSpace = o.ToSpace
		converted.ToVersion = o.ToVersion
		converted.Position = o.Position
		for _, field := range o.Unset {
			converted.UnsetFields = append(converted.UnsetFields, field.String())
		}
		converted.Context = fromContext(o.Context)

	case *grc20.DeleteRelation:
		converted.ID = o.ID
		converted.Context = fromContext(o.Context)
	case *grc20.RestoreRelation:
		converted.ID = o.ID
		converted.Context = fromContext(o.Context)

	case *grc20.CreateValueRef:
		untyped[o.Property] = true
		converted.ID = o.ID
		converted.Entity = &o.Entity
		converted.Property = &o.Property
		converted.Language = o.Language
		converted.Space = o.Space

	default:
		return converted, fmt.Errorf("unsupported op type %T", op)
	}
	return converted, err
}

func fromContext(context *grc20.Context) *Context {
	if context == nil {
		return nil
	}
	converted := &Context{Root: context.Root}
	for _, edge := range context.Edges {
		converted.Edges = append(converted.Edges, ContextEdge{RelationType: edge.RelationType, To: edge.To})
	}
	return converted
}

// ToEdit converts the document back to an edit, returning the declared
// property types in the form grc20.EncodeOptions.PropertyTypes takes.
func (d *Document) ToEdit() (*grc20.Edit, map[id.ID]grc20.DataType, error) {
	edit := &grc20.Edit{
		ID:        d.ID,
		Name:      d.Name,
		Authors:   d.Authors,
		CreatedAt: d.CreatedAt,
	}
	if len(edit.Authors) == 0 {
		edit.Authors = nil
	}

	var propertyTypes map[id.ID]grc20.DataType
	for key, name := range d.PropertyTypes {
		property, err := id.Parse(key)
		if err != nil {
			return nil, nil, fmt.Errorf("propertyTypes: %w", err)
		}
		dataType, err := grc20.ParseDataType(name)
		if err != nil {
			return nil, nil, fmt.Errorf("propertyTypes[%s]: %w", key, err)
		}
		if propertyTypes == nil {
			propertyTypes = make(map[id.ID]grc20.DataType, len(d.PropertyTypes))
		}
		propertyTypes[property] = dataType
	}

	if len(d.Ops) > 0 {
		edit.Ops = make([]grc20.Op, len(d.Ops))
	}
	for i := range d.Ops {
		op, err := d.Ops[i].toOp()
		if err != nil {
			return nil, nil, fmt.Errorf("op %d (%s): %w", i, d.Ops[i].Type, err)
		}
		edit.Ops[i] = op
	}
	return edit, propertyTypes, nil
}

func (o *Op) toOp() (grc20.Op, error) {
	opType, err := grc20.ParseOpType(o.Type)
	if err != nil {
		return nil, err
	}
	context := o.Context.toContext()

	switch opType {
	case grc20.OpCreateEntity:
		values, err := toValues(o.Values)
		if err != nil {
			return nil, err
		}
		return &grc20.CreateEntity{ID: o.ID, Values: values, Context: context}, nil

	case grc20.OpUpdateEntity:
		set, err := toValues(o.Set)
		if err != nil {
			return nil, err
		}
		update := &grc20.UpdateEntity{ID: o.ID, Set: set, Context: context}
		for i, entry := range o.Unset {
			unset := grc20.UnsetValue{Property: entry.Property}
			switch entry.Language {
			case "":
				unset.Kind = grc20.UnsetDefaultLanguage
			case unsetAll:
				unset.Kind = grc20.UnsetAllLanguages
			default:
				language, err := id.Parse(entry.Language)
				if err != nil {
					return nil, fmt.Errorf("unset %d: language: %w", i, err)
				}
				unset.Kind = grc20.UnsetSpecificLanguage
				unset.Language = language
			}
			update.Unset = append(update.Unset, unset)
		}
		return update, nil

	case grc20.OpDeleteEntity:
		return &grc20.DeleteEntity{ID: o.ID, Context: context}, nil
	case grc20.OpRestoreEntity:
		return &grc20.RestoreEntity{ID: o.ID, Context: context}, nil

	case grc20.OpCreateRelation:
		if o.RelationType == nil || o.From == nil || o.To == nil {
			return nil, fmt.Errorf("createRelation needs relationType, from and to")
		}
		return &grc20.CreateRelation{
			ID:             o.ID,
			RelationType:   *o.RelationType,
			From:           *o.From,
			FromIsValueRef: o.FromIsValueRef,
			To:             *o.To,
			ToIsValueRef:   o.ToIsValueRef,
			FromSpace:      o.FromSpace,
			FromVersion:    o.FromVersion,
			ToSpace:        o.ToSpace,
			ToVersion:      o.ToVersion,
			Entity:         o.Entity,
			Position:       o.Position,
			Context:        context,
		}, nil

	case grc20.OpUpdateRelation:
		update := &grc20.UpdateRelation{
			ID:          o.ID,
			FromSpace:   o.FromSpace,
			FromVersion: o.FromVersion,
			ToSpace:     o.ToSpace,
			ToVersion:   o.ToVersion,
			Position:    o.Position,
			Context:     context,
		}
		for _, name := range o.UnsetFields {
			field, err := grc20.ParseRelationField(name)
			if err != nil {
				return nil, err
			}
			update.Unset = append(update.Unset, field)
		}
		return update, nil

	case grc20.OpDeleteRelation:
		return &grc20.DeleteRelation{ID: o.ID, Context: context}, nil
	case grc20.OpRestoreRelation:
		return &grc20.RestoreRelation{ID: o.ID, Context: context}, nil

	case grc20.OpCreateValueRef:
		if o.Entity == nil || o.Property == nil {
			return nil, fmt.Errorf("createValueRef needs entity and property")
		}
		if o.Context != nil {
			return nil, fmt.Errorf("createValueRef cannot carry a context")
		}
		return &grc20.CreateValueRef{
			ID:       o.ID,
			Entity:   *o.Entity,
			Property: *o.Property,
			Language: o.Language,
			Space:    o.Space,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported op type %s", opType)
	}
}

func (c *Context) toContext() *grc20.Context {
	if c == nil {
		return nil
	}
	context := &grc20.Context{Root: c.Root}
	for _, edge := range c.Edges {
		context.Edges = append(context.Edges, grc20.ContextEdge{RelationType: edge.RelationType, To: edge.To})
	}
	return context
}
