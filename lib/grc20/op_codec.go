// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package grc20

import (
	"fmt"
	"sort"

	"github.com/geobrowser/grc-20-sub000/lib/id"
	"github.com/geobrowser/grc-20-sub000/lib/wire"
)

// UpdateEntity flags.
const (
	updateEntityHasSet   = 1 << 0
	updateEntityHasUnset = 1 << 1
	updateEntityMask     = updateEntityHasSet | updateEntityHasUnset
)

// CreateRelation flags. All eight bits are defined.
const (
	createRelationFromSpace      = 1 << 0
	createRelationFromVersion    = 1 << 1
	createRelationToSpace        = 1 << 2
	createRelationToVersion      = 1 << 3
	createRelationEntity         = 1 << 4
	createRelationPosition       = 1 << 5
	createRelationFromIsValueRef = 1 << 6
	createRelationToIsValueRef   = 1 << 7
)

// CreateValueRef flags.
const (
	valueRefHasLanguage = 1 << 0
	valueRefHasSpace    = 1 << 1
	valueRefMask        = valueRefHasLanguage | valueRefHasSpace
)

// opEncoder writes ops against a finished set of dictionaries.
type opEncoder struct {
	w         *wire.Writer
	dict      *dictionaries
	canonical bool
}

func (e *opEncoder) writeOp(op Op) {
	e.w.WriteUint8(uint8(op.OpType()))
	switch o := op.(type) {
	case *CreateEntity:
		e.w.WriteID(o.ID)
		values := e.orderValues(o.Values)
		e.w.WriteVarint(uint64(len(values)))
		for _, value := range values {
			writePropertyValue(e.w, e.dict, value)
		}

	case *UpdateEntity:
		e.w.WriteVarint(e.dict.objectIndex(o.ID))
		var flags uint8
		if len(o.Set) > 0 {
			flags |= updateEntityHasSet
		}
		if len(o.Unset) > 0 {
			flags |= updateEntityHasUnset
		}
		e.w.WriteUint8(flags)
		if len(o.Set) > 0 {
			values := e.orderValues(o.Set)
			e.w.WriteVarint(uint64(len(values)))
			for _, value := range values {
				writePropertyValue(e.w, e.dict, value)
			}
		}
		if len(o.Unset) > 0 {
			e.writeUnsets(o.Unset)
		}

	case *DeleteEntity:
		e.w.WriteVarint(e.dict.objectIndex(o.ID))
	case *RestoreEntity:
		e.w.WriteVarint(e.dict.objectIndex(o.ID))

	case *CreateRelation:
		e.writeCreateRelation(o)

	case *UpdateRelation:
		e.w.WriteVarint(e.dict.objectIndex(o.ID))
		var unsetFlags RelationField
		for _, field := range o.Unset {
			unsetFlags |= field
		}
		e.w.WriteUint8(uint8(o.setFields()))
		e.w.WriteUint8(uint8(unsetFlags))
		writeOptionalID(e.w, o.FromSpace)
		writeOptionalID(e.w, o.FromVersion)
		writeOptionalID(e.w, o.ToSpace)
		writeOptionalID(e.w, o.ToVersion)
		if o.Position != nil {
			e.w.WriteString(*o.Position)
		}

	case *DeleteRelation:
		e.w.WriteVarint(e.dict.objectIndex(o.ID))
	case *RestoreRelation:
		e.w.WriteVarint(e.dict.objectIndex(o.ID))

	case *CreateValueRef:
		e.w.WriteID(o.ID)
		e.w.WriteVarint(e.dict.objectIndex(o.Entity))
		e.w.WriteVarint(e.dict.propertyIndex(o.Property))
		var flags uint8
		if o.Language != nil {
			flags |= valueRefHasLanguage
		}
		if o.Space != nil {
			flags |= valueRefHasSpace
		}
		e.w.WriteUint8(flags)
		if o.Language != nil {
			e.w.WriteVarint(e.dict.languageRef(o.Language))
		}
		writeOptionalID(e.w, o.Space)
		// Value refs carry no context reference.
		return
	}

	e.w.WriteVarint(e.dict.contextRef(opContext(op)))
}

func (e *opEncoder) writeCreateRelation(o *CreateRelation) {
	e.w.WriteID(o.ID)
	e.w.WriteVarint(e.dict.relationTypeIndex(o.RelationType))

	var flags uint8
	if o.FromSpace != nil {
		flags |= createRelationFromSpace
	}
	if o.FromVersion != nil {
		flags |= createRelationFromVersion
	}
	if o.ToSpace != nil {
		flags |= createRelationToSpace
	}
	if o.ToVersion != nil {
		flags |= createRelationToVersion
	}
	if o.Entity != nil {
		flags |= createRelationEntity
	}
	if o.Position != nil {
		flags |= createRelationPosition
	}
	if o.FromIsValueRef {
		flags |= createRelationFromIsValueRef
	}
	if o.ToIsValueRef {
		flags |= createRelationToIsValueRef
	}
	e.w.WriteUint8(flags)

	if o.FromIsValueRef {
		e.w.WriteID(o.From)
	} else {
		e.w.WriteVarint(e.dict.objectIndex(o.From))
	}
	if o.ToIsValueRef {
		e.w.WriteID(o.To)
	} else {
		e.w.WriteVarint(e.dict.objectIndex(o.To))
	}

	writeOptionalID(e.w, o.FromSpace)
	writeOptionalID(e.w, o.FromVersion)
	writeOptionalID(e.w, o.ToSpace)
	writeOptionalID(e.w, o.ToVersion)
	writeOptionalID(e.w, o.Entity)
	if o.Position != nil {
		e.w.WriteString(*o.Position)
	}
}

// unsetCode maps an UnsetValue to its wire language code.
func (e *opEncoder) unsetCode(unset UnsetValue) uint64 {
	switch unset.Kind {
	case UnsetAllLanguages:
		return unsetAllLanguagesCode
	case UnsetSpecificLanguage:
		return e.dict.languageRef(&unset.Language)
	default:
		return 0
	}
}

func (e *opEncoder) writeUnsets(unsets []UnsetValue) {
	type entry struct {
		property   uint64
		code       uint64
		propertyID id.ID
	}
	entries := make([]entry, len(unsets))
	for i, unset := range unsets {
		entries[i] = entry{
			property:   e.dict.propertyIndex(unset.Property),
			code:       e.unsetCode(unset),
			propertyID: unset.Property,
		}
	}
	if e.canonical {
		sort.SliceStable(entries, func(a, b int) bool {
			if c := id.Compare(entries[a].propertyID, entries[b].propertyID); c != 0 {
				return c < 0
			}
			return entries[a].code < entries[b].code
		})
	}
	e.w.WriteVarint(uint64(len(entries)))
	for _, entry := range entries {
		e.w.WriteVarint(entry.property)
		e.w.WriteVarint(entry.code)
	}
}

// orderValues returns values in canonical (property, language, unit)
// order when canonical encoding is on. The caller's slice is never
// reordered.
func (e *opEncoder) orderValues(values []PropertyValue) []PropertyValue {
	if !e.canonical || len(values) < 2 {
		return values
	}
	sorted := append([]PropertyValue(nil), values...)
	sort.SliceStable(sorted, func(a, b int) bool {
		if c := id.Compare(sorted[a].Property, sorted[b].Property); c != 0 {
			return c < 0
		}
		if c := compareOptionalID(valueLanguage(sorted[a].Value), valueLanguage(sorted[b].Value)); c != 0 {
			return c < 0
		}
		return compareOptionalID(valueUnit(sorted[a].Value), valueUnit(sorted[b].Value)) < 0
	})
	return sorted
}

// compareOptionalID orders absent before present, then by bytes.
func compareOptionalID(a, b *id.ID) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return id.Compare(*a, *b)
	}
}

func writeOptionalID(w *wire.Writer, v *id.ID) {
	if v != nil {
		w.WriteID(*v)
	}
}

// slot is a property plus a language (none for non-text values).
// An entity holds at most one value per slot.
type slot struct {
	property    id.ID
	hasLanguage bool
	language    id.ID
}

func valueSlot(pv PropertyValue) slot {
	s := slot{property: pv.Property}
	if language := valueLanguage(pv.Value); language != nil {
		s.hasLanguage = true
		s.language = *language
	}
	return s
}

// valueSlots indexes values by slot and rejects two values for the
// same slot, which would leave canonical order undefined.
func valueSlots(values []PropertyValue) (map[slot]bool, error) {
	slots := make(map[slot]bool, len(values))
	for _, value := range values {
		s := valueSlot(value)
		if slots[s] {
			if s.hasLanguage {
				return nil, fmt.Errorf("%w: property %s has two values in language %s", ErrInvalidOp, s.property, s.language)
			}
			return nil, fmt.Errorf("%w: property %s has two values", ErrInvalidOp, s.property)
		}
		slots[s] = true
	}
	return slots, nil
}

// checkEntityOverlap rejects an UpdateEntity that sets one slot twice
// or sets and unsets the same slot. Unsetting all languages covers
// every slot of the property.
func checkEntityOverlap(u *UpdateEntity) error {
	setSlots, err := valueSlots(u.Set)
	if err != nil {
		return err
	}
	if len(u.Set) == 0 || len(u.Unset) == 0 {
		return nil
	}
	setProperties := make(map[id.ID]bool, len(u.Set))
	for _, value := range u.Set {
		setProperties[value.Property] = true
	}
	for _, unset := range u.Unset {
		overlap := false
		switch unset.Kind {
		case UnsetAllLanguages:
			overlap = setProperties[unset.Property]
		case UnsetDefaultLanguage:
			overlap = setSlots[slot{property: unset.Property}]
		case UnsetSpecificLanguage:
			overlap = setSlots[slot{property: unset.Property, hasLanguage: true, language: unset.Language}]
		}
		if overlap {
			return fmt.Errorf("%w: property %s on entity %s", ErrSetUnsetOverlap, unset.Property, u.ID)
		}
	}
	return nil
}

// checkRelationOverlap rejects an UpdateRelation whose set fields and
// unset fields intersect, unset fields that are not exactly one known
// field, and fields unset twice.
func checkRelationOverlap(u *UpdateRelation) error {
	set := u.setFields()
	var unset RelationField
	for _, field := range u.Unset {
		if field&^relationFieldMask != 0 || field == 0 || field&(field-1) != 0 {
			return fmt.Errorf("%w: unknown relation field %#x", ErrInvalidOp, uint8(field))
		}
		if set&field != 0 {
			return fmt.Errorf("%w: %s on relation %s", ErrSetUnsetOverlap, field, u.ID)
		}
		if unset&field != 0 {
			return fmt.Errorf("%w: %s unset twice on relation %s", ErrInvalidOp, field, u.ID)
		}
		unset |= field
	}
	return nil
}

// readOp decodes one op. The op type byte is read here.
func readOp(r *wire.Reader, l *lookups) (Op, error) {
	start := r.Offset()
	tag, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}

	var op Op
	switch OpType(tag) {
	case OpCreateEntity:
		o := &CreateEntity{}
		if o.ID, err = r.ReadID(); err != nil {
			return nil, err
		}
		if o.Values, err = readPropertyValues(r, l); err != nil {
			return nil, err
		}
		if o.Context, err = l.context(r); err != nil {
			return nil, err
		}
		op = o

	case OpUpdateEntity:
		o, err := readUpdateEntity(r, l)
		if err != nil {
			return nil, err
		}
		op = o

	case OpDeleteEntity:
		o := &DeleteEntity{}
		if o.ID, err = l.object(r); err != nil {
			return nil, err
		}
		if o.Context, err = l.context(r); err != nil {
			return nil, err
		}
		op = o

	case OpRestoreEntity:
		o := &RestoreEntity{}
		if o.ID, err = l.object(r); err != nil {
			return nil, err
		}
		if o.Context, err = l.context(r); err != nil {
			return nil, err
		}
		op = o

	case OpCreateRelation:
		o, err := readCreateRelation(r, l)
		if err != nil {
			return nil, err
		}
		op = o

	case OpUpdateRelation:
		o, err := readUpdateRelation(r, l)
		if err != nil {
			return nil, err
		}
		op = o

	case OpDeleteRelation:
		o := &DeleteRelation{}
		if o.ID, err = l.object(r); err != nil {
			return nil, err
		}
		if o.Context, err = l.context(r); err != nil {
			return nil, err
		}
		op = o

	case OpRestoreRelation:
		o := &RestoreRelation{}
		if o.ID, err = l.object(r); err != nil {
			return nil, err
		}
		if o.Context, err = l.context(r); err != nil {
			return nil, err
		}
		op = o

	case OpCreateValueRef:
		o, err := readCreateValueRef(r, l)
		if err != nil {
			return nil, err
		}
		op = o

	default:
		return nil, wire.Errorf(wire.CodeMalformed, start, "unknown op type %d", tag)
	}
	return op, nil
}

func readPropertyValues(r *wire.Reader, l *lookups) ([]PropertyValue, error) {
	count, err := r.ReadCount(2)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	values := make([]PropertyValue, count)
	for i := range values {
		if values[i], err = readPropertyValue(r, l); err != nil {
			return nil, err
		}
	}
	return values, nil
}

func readFlags(r *wire.Reader, mask uint8, what string) (uint8, error) {
	start := r.Offset()
	flags, err := r.ReadUint8()
	if err != nil {
		return 0, err
	}
	if flags&^mask != 0 {
		return 0, wire.Errorf(wire.CodeReservedBits, start, "%s flags %#02x set reserved bits %#02x", what, flags, flags&^mask)
	}
	return flags, nil
}

func readUpdateEntity(r *wire.Reader, l *lookups) (*UpdateEntity, error) {
	o := &UpdateEntity{}
	var err error
	if o.ID, err = l.object(r); err != nil {
		return nil, err
	}
	flags, err := readFlags(r, updateEntityMask, "update entity")
	if err != nil {
		return nil, err
	}
	if flags&updateEntityHasSet != 0 {
		if o.Set, err = readPropertyValues(r, l); err != nil {
			return nil, err
		}
	}
	if flags&updateEntityHasUnset != 0 {
		count, err := r.ReadCount(2)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			o.Unset = make([]UnsetValue, count)
		}
		for i := range o.Unset {
			property, _, err := l.property(r)
			if err != nil {
				return nil, err
			}
			o.Unset[i].Property = property

			codeOffset := r.Offset()
			code, err := r.ReadVarint32()
			if err != nil {
				return nil, err
			}
			switch {
			case code == 0:
				o.Unset[i].Kind = UnsetDefaultLanguage
			case code == unsetAllLanguagesCode:
				o.Unset[i].Kind = UnsetAllLanguages
			case int(code) > len(l.languages):
				return nil, wire.Errorf(wire.CodeIndexOutOfBounds, codeOffset, "unset language reference %d out of range (%d entries)", code, len(l.languages))
			default:
				o.Unset[i].Kind = UnsetSpecificLanguage
				o.Unset[i].Language = l.languages[code-1]
			}
		}
	}
	if o.Context, err = l.context(r); err != nil {
		return nil, err
	}
	return o, nil
}

func readCreateRelation(r *wire.Reader, l *lookups) (*CreateRelation, error) {
	o := &CreateRelation{}
	var err error
	if o.ID, err = r.ReadID(); err != nil {
		return nil, err
	}
	if o.RelationType, err = l.relationType(r); err != nil {
		return nil, err
	}
	flags, err := readFlags(r, 0xFF, "create relation")
	if err != nil {
		return nil, err
	}
	o.FromIsValueRef = flags&createRelationFromIsValueRef != 0
	o.ToIsValueRef = flags&createRelationToIsValueRef != 0

	if o.FromIsValueRef {
		o.From, err = r.ReadID()
	} else {
		o.From, err = l.object(r)
	}
	if err != nil {
		return nil, err
	}
	if o.ToIsValueRef {
		o.To, err = r.ReadID()
	} else {
		o.To, err = l.object(r)
	}
	if err != nil {
		return nil, err
	}

	optional := []struct {
		bit    uint8
		target **id.ID
	}{
		{createRelationFromSpace, &o.FromSpace},
		{createRelationFromVersion, &o.FromVersion},
		{createRelationToSpace, &o.ToSpace},
		{createRelationToVersion, &o.ToVersion},
		{createRelationEntity, &o.Entity},
	}
	for _, field := range optional {
		if flags&field.bit == 0 {
			continue
		}
		value, err := r.ReadID()
		if err != nil {
			return nil, err
		}
		*field.target = &value
	}
	if flags&createRelationPosition != 0 {
		position, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		o.Position = &position
	}
	if o.Context, err = l.context(r); err != nil {
		return nil, err
	}
	return o, nil
}

func readUpdateRelation(r *wire.Reader, l *lookups) (*UpdateRelation, error) {
	o := &UpdateRelation{}
	var err error
	if o.ID, err = l.object(r); err != nil {
		return nil, err
	}
	setFlags, err := readFlags(r, uint8(relationFieldMask), "update relation set")
	if err != nil {
		return nil, err
	}
	unsetFlags, err := readFlags(r, uint8(relationFieldMask), "update relation unset")
	if err != nil {
		return nil, err
	}

	targets := map[RelationField]**id.ID{
		RelationFromSpace:   &o.FromSpace,
		RelationFromVersion: &o.FromVersion,
		RelationToSpace:     &o.ToSpace,
		RelationToVersion:   &o.ToVersion,
	}
	for _, field := range relationFields {
		if RelationField(setFlags)&field == 0 {
			continue
		}
		if field == RelationPosition {
			position, err := r.ReadString()
			if err != nil {
				return nil, err
			}
			o.Position = &position
			continue
		}
		value, err := r.ReadID()
		if err != nil {
			return nil, err
		}
		*targets[field] = &value
	}
	for _, field := range relationFields {
		if RelationField(unsetFlags)&field != 0 {
			o.Unset = append(o.Unset, field)
		}
	}
	if o.Context, err = l.context(r); err != nil {
		return nil, err
	}
	return o, nil
}

func readCreateValueRef(r *wire.Reader, l *lookups) (*CreateValueRef, error) {
	o := &CreateValueRef{}
	var err error
	if o.ID, err = r.ReadID(); err != nil {
		return nil, err
	}
	if o.Entity, err = l.object(r); err != nil {
		return nil, err
	}
	if o.Property, _, err = l.property(r); err != nil {
		return nil, err
	}
	flags, err := readFlags(r, valueRefMask, "create value ref")
	if err != nil {
		return nil, err
	}
	if flags&valueRefHasLanguage != 0 {
		start := r.Offset()
		if o.Language, err = l.language(r); err != nil {
			return nil, err
		}
		if o.Language == nil {
			return nil, wire.Errorf(wire.CodeMalformed, start, "value ref flags a language but references none")
		}
	}
	if flags&valueRefHasSpace != 0 {
		space, err := r.ReadID()
		if err != nil {
			return nil, err
		}
		o.Space = &space
	}
	return o, nil
}
