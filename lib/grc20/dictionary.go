// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package grc20

import (
	"fmt"

	"github.com/geobrowser/grc-20-sub000/lib/id"
	"github.com/geobrowser/grc-20-sub000/lib/wire"
)

// internTable is an insertion-ordered set of IDs with a dense index.
// Go map iteration order is unspecified, so order lives in the slice
// and the map only answers lookups.
type internTable struct {
	name  string
	ids   []id.ID
	index map[id.ID]int
}

func newInternTable(name string) *internTable {
	return &internTable{name: name, index: make(map[id.ID]int)}
}

// add registers v if it is new and reports whether it was.
func (t *internTable) add(v id.ID) bool {
	if _, ok := t.index[v]; ok {
		return false
	}
	t.index[v] = len(t.ids)
	t.ids = append(t.ids, v)
	return true
}

func (t *internTable) contains(v id.ID) bool {
	_, ok := t.index[v]
	return ok
}

// sortByID reorders entries by raw byte order and reassigns indices.
func (t *internTable) sortByID() {
	id.Sort(t.ids)
	for i, v := range t.ids {
		t.index[v] = i
	}
}

// lookup returns the 0-based index of v. An unregistered ID means the
// scan and the encoder disagree about what an op references, which is
// a bug in this package rather than bad input, so it panics.
func (t *internTable) lookup(v id.ID) int {
	i, ok := t.index[v]
	if !ok {
		panic(fmt.Sprintf("grc20: %s %s not registered in dictionary", t.name, v))
	}
	return i
}

// dictionaries is the encode-side view: every ID an edit references by
// index, grouped into the six wire tables.
type dictionaries struct {
	properties    *internTable
	propertyTypes map[id.ID]DataType
	relationTypes *internTable
	languages     *internTable
	units         *internTable
	objects       *internTable
	contextIDs    *internTable

	// contexts are the distinct contexts in first-seen op order.
	contexts     []*Context
	contextIndex map[string]int
}

func newDictionaries() *dictionaries {
	return &dictionaries{
		properties:    newInternTable("property"),
		propertyTypes: make(map[id.ID]DataType),
		relationTypes: newInternTable("relation type"),
		languages:     newInternTable("language"),
		units:         newInternTable("unit"),
		objects:       newInternTable("object"),
		contextIDs:    newInternTable("context id"),
		contextIndex:  make(map[string]int),
	}
}

// buildDictionaries scans ops in order and registers every ID that the
// op encoder will reference by index. Values are validated on the way
// so that every error carries its op index.
func buildDictionaries(ops []Op, options EncodeOptions) (*dictionaries, error) {
	dict := newDictionaries()

	for index, op := range ops {
		if err := dict.scanOp(op); err != nil {
			return nil, opError(index, err)
		}
	}

	// Properties that were only unset or referenced by a value ref
	// have no inferred type; the caller must supply one.
	for _, property := range dict.properties.ids {
		if _, ok := dict.propertyTypes[property]; ok {
			continue
		}
		hint, ok := options.PropertyTypes[property]
		if !ok {
			return nil, &EncodeError{Op: -1, Err: fmt.Errorf("%w: %s (add it to EncodeOptions.PropertyTypes)", ErrUntypedProperty, property)}
		}
		if !hint.Valid() {
			return nil, &EncodeError{Op: -1, Err: fmt.Errorf("%w: property %s has hint %s", ErrInvalidOp, property, hint)}
		}
		dict.propertyTypes[property] = hint
	}

	// Context members are registered after the op scan, the same
	// position they would take if discovered while encoding ops.
	for _, op := range ops {
		dict.registerContext(opContext(op))
	}

	if options.Canonical {
		dict.sortByID()
	}
	return dict, nil
}

func (d *dictionaries) scanOp(op Op) error {
	switch o := op.(type) {
	case *CreateEntity:
		if _, err := valueSlots(o.Values); err != nil {
			return err
		}
		for _, value := range o.Values {
			if err := d.registerValue(value); err != nil {
				return err
			}
		}

	case *UpdateEntity:
		d.objects.add(o.ID)
		if err := checkEntityOverlap(o); err != nil {
			return err
		}
		for _, value := range o.Set {
			if err := d.registerValue(value); err != nil {
				return err
			}
		}
		for _, unset := range o.Unset {
			d.properties.add(unset.Property)
			switch unset.Kind {
			case UnsetDefaultLanguage, UnsetAllLanguages:
			case UnsetSpecificLanguage:
				d.languages.add(unset.Language)
			default:
				return fmt.Errorf("%w: unset language kind %d", ErrInvalidOp, unset.Kind)
			}
		}

	case *DeleteEntity:
		d.objects.add(o.ID)
	case *RestoreEntity:
		d.objects.add(o.ID)

	case *CreateRelation:
		d.relationTypes.add(o.RelationType)
		if !o.FromIsValueRef {
			d.objects.add(o.From)
		}
		if !o.ToIsValueRef {
			d.objects.add(o.To)
		}

	case *UpdateRelation:
		d.objects.add(o.ID)
		if err := checkRelationOverlap(o); err != nil {
			return err
		}

	case *DeleteRelation:
		d.objects.add(o.ID)
	case *RestoreRelation:
		d.objects.add(o.ID)

	case *CreateValueRef:
		d.objects.add(o.Entity)
		d.properties.add(o.Property)
		if o.Language != nil {
			d.languages.add(*o.Language)
		}

	case nil:
		return fmt.Errorf("%w: nil op", ErrInvalidOp)
	default:
		return fmt.Errorf("%w: unsupported op type %T", ErrInvalidOp, op)
	}
	return nil
}

func (d *dictionaries) registerValue(pv PropertyValue) error {
	if err := ValidateValue(pv.Value); err != nil {
		return fmt.Errorf("property %s: %w", pv.Property, err)
	}

	dataType := pv.Value.DataType()
	if existing, ok := d.propertyTypes[pv.Property]; ok && existing != dataType {
		return fmt.Errorf("%w: property %s is %s, also used as %s", ErrPropertyTypeConflict, pv.Property, existing, dataType)
	}
	d.properties.add(pv.Property)
	d.propertyTypes[pv.Property] = dataType

	if language := valueLanguage(pv.Value); language != nil {
		d.languages.add(*language)
	}
	if unit := valueUnit(pv.Value); unit != nil {
		d.units.add(*unit)
	}
	return nil
}

func (d *dictionaries) registerContext(context *Context) {
	if context == nil {
		return
	}
	key := contextKey(context)
	if _, ok := d.contextIndex[key]; ok {
		return
	}
	d.contextIndex[key] = len(d.contexts)
	d.contexts = append(d.contexts, context)

	d.contextIDs.add(context.Root)
	for _, edge := range context.Edges {
		d.relationTypes.add(edge.RelationType)
		d.contextIDs.add(edge.To)
	}
}

func (d *dictionaries) sortByID() {
	d.properties.sortByID()
	d.relationTypes.sortByID()
	d.languages.sortByID()
	d.units.sortByID()
	d.objects.sortByID()
	d.contextIDs.sortByID()
}

// contextKey is the structural identity of a context: root followed by
// each edge's relation type and target, as raw bytes.
func contextKey(context *Context) string {
	key := make([]byte, 0, id.Size*(1+2*len(context.Edges)))
	key = append(key, context.Root[:]...)
	for _, edge := range context.Edges {
		key = append(key, edge.RelationType[:]...)
		key = append(key, edge.To[:]...)
	}
	return string(key)
}

// Index accessors used by the op encoder.

func (d *dictionaries) propertyIndex(v id.ID) uint64 { return uint64(d.properties.lookup(v)) }
func (d *dictionaries) relationTypeIndex(v id.ID) uint64 {
	return uint64(d.relationTypes.lookup(v))
}
func (d *dictionaries) objectIndex(v id.ID) uint64    { return uint64(d.objects.lookup(v)) }
func (d *dictionaries) contextIDIndex(v id.ID) uint64 { return uint64(d.contextIDs.lookup(v)) }

// languageRef returns 0 for no language and index+1 otherwise.
func (d *dictionaries) languageRef(v *id.ID) uint64 {
	if v == nil {
		return 0
	}
	return uint64(d.languages.lookup(*v)) + 1
}

// unitRef returns 0 for no unit and index+1 otherwise.
func (d *dictionaries) unitRef(v *id.ID) uint64 {
	if v == nil {
		return 0
	}
	return uint64(d.units.lookup(*v)) + 1
}

// contextRef returns 0 for no context and index+1 otherwise.
func (d *dictionaries) contextRef(context *Context) uint64 {
	if context == nil {
		return 0
	}
	i, ok := d.contextIndex[contextKey(context)]
	if !ok {
		panic("grc20: context not registered in dictionary")
	}
	return uint64(i) + 1
}

// write emits the dictionaries block followed by the contexts block.
func (d *dictionaries) write(w *wire.Writer) {
	w.WriteVarint(uint64(len(d.properties.ids)))
	for _, property := range d.properties.ids {
		w.WriteID(property)
		w.WriteUint8(uint8(d.propertyTypes[property]))
	}
	w.WriteIDs(d.relationTypes.ids)
	w.WriteIDs(d.languages.ids)
	w.WriteIDs(d.units.ids)
	w.WriteIDs(d.objects.ids)
	w.WriteIDs(d.contextIDs.ids)

	w.WriteVarint(uint64(len(d.contexts)))
	for _, context := range d.contexts {
		w.WriteVarint(d.contextIDIndex(context.Root))
		w.WriteVarint(uint64(len(context.Edges)))
		for _, edge := range context.Edges {
			w.WriteVarint(d.relationTypeIndex(edge.RelationType))
			w.WriteVarint(d.contextIDIndex(edge.To))
		}
	}
}

// lookups is the decode-side mirror of dictionaries: plain arrays
// indexed by the integers found on the wire.
type lookups struct {
	properties    []id.ID
	propertyTypes []DataType
	relationTypes []id.ID
	languages     []id.ID
	units         []id.ID
	objects       []id.ID
	contextIDs    []id.ID
	contexts      []Context
}

// readLookups reads the dictionaries block and the contexts block.
func readLookups(r *wire.Reader) (*lookups, error) {
	var l lookups

	count, err := r.ReadCount(id.Size + 1)
	if err != nil {
		return nil, fmt.Errorf("properties dictionary: %w", err)
	}
	l.properties = make([]id.ID, count)
	l.propertyTypes = make([]DataType, count)
	for i := 0; i < count; i++ {
		if l.properties[i], err = r.ReadID(); err != nil {
			return nil, fmt.Errorf("properties dictionary: %w", err)
		}
		raw, err := r.ReadUint8()
		if err != nil {
			return nil, fmt.Errorf("properties dictionary: %w", err)
		}
		dataType := DataType(raw)
		if !dataType.Valid() {
			return nil, wire.Errorf(wire.CodeMalformed, r.Offset()-1, "property %s has unknown data type %d", l.properties[i], raw)
		}
		l.propertyTypes[i] = dataType
	}

	tables := []struct {
		name   string
		target *[]id.ID
	}{
		{"relation types", &l.relationTypes},
		{"languages", &l.languages},
		{"units", &l.units},
		{"objects", &l.objects},
		{"context ids", &l.contextIDs},
	}
	for _, table := range tables {
		if *table.target, err = r.ReadIDs(); err != nil {
			return nil, fmt.Errorf("%s dictionary: %w", table.name, err)
		}
	}

	count, err = r.ReadCount(2)
	if err != nil {
		return nil, fmt.Errorf("contexts: %w", err)
	}
	l.contexts = make([]Context, count)
	for i := range l.contexts {
		if l.contexts[i], err = l.readContext(r); err != nil {
			return nil, fmt.Errorf("context %d: %w", i, err)
		}
	}
	return &l, nil
}

func (l *lookups) readContext(r *wire.Reader) (Context, error) {
	var context Context
	var err error
	if context.Root, err = readIndexed(r, l.contextIDs, "context id"); err != nil {
		return context, err
	}
	edgeCount, err := r.ReadCount(2)
	if err != nil {
		return context, err
	}
	if edgeCount > 0 {
		context.Edges = make([]ContextEdge, edgeCount)
	}
	for i := range context.Edges {
		if context.Edges[i].RelationType, err = readIndexed(r, l.relationTypes, "relation type"); err != nil {
			return context, err
		}
		if context.Edges[i].To, err = readIndexed(r, l.contextIDs, "context id"); err != nil {
			return context, err
		}
	}
	return context, nil
}

// readIndexed reads a 0-based varint index and resolves it in table.
func readIndexed(r *wire.Reader, table []id.ID, name string) (id.ID, error) {
	start := r.Offset()
	index, err := r.ReadVarint()
	if err != nil {
		return id.Nil, err
	}
	if index >= uint64(len(table)) {
		return id.Nil, wire.Errorf(wire.CodeIndexOutOfBounds, start, "%s index %d out of range (%d entries)", name, index, len(table))
	}
	return table[index], nil
}

// readOptionalIndexed reads a 1-based varint reference where 0 means
// absent.
func readOptionalIndexed(r *wire.Reader, table []id.ID, name string) (*id.ID, error) {
	start := r.Offset()
	ref, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	if ref == 0 {
		return nil, nil
	}
	if ref > uint64(len(table)) {
		return nil, wire.Errorf(wire.CodeIndexOutOfBounds, start, "%s reference %d out of range (%d entries)", name, ref, len(table))
	}
	result := table[ref-1]
	return &result, nil
}

func (l *lookups) object(r *wire.Reader) (id.ID, error) {
	return readIndexed(r, l.objects, "object")
}

func (l *lookups) relationType(r *wire.Reader) (id.ID, error) {
	return readIndexed(r, l.relationTypes, "relation type")
}

// property reads a property index and returns the property with its
// declared data type.
func (l *lookups) property(r *wire.Reader) (id.ID, DataType, error) {
	start := r.Offset()
	index, err := r.ReadVarint()
	if err != nil {
		return id.Nil, 0, err
	}
	if index >= uint64(len(l.properties)) {
		return id.Nil, 0, wire.Errorf(wire.CodeIndexOutOfBounds, start, "property index %d out of range (%d entries)", index, len(l.properties))
	}
	return l.properties[index], l.propertyTypes[index], nil
}

func (l *lookups) language(r *wire.Reader) (*id.ID, error) {
	return readOptionalIndexed(r, l.languages, "language")
}

func (l *lookups) unit(r *wire.Reader) (*id.ID, error) {
	return readOptionalIndexed(r, l.units, "unit")
}

// context reads an op's trailing context reference. Each op gets its
// own copy so that callers may mutate decoded ops independently.
func (l *lookups) context(r *wire.Reader) (*Context, error) {
	start := r.Offset()
	ref, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	if ref == 0 {
		return nil, nil
	}
	if ref > uint64(len(l.contexts)) {
		return nil, wire.Errorf(wire.CodeIndexOutOfBounds, start, "context reference %d out of range (%d entries)", ref, len(l.contexts))
	}
	shared := l.contexts[ref-1]
	context := &Context{Root: shared.Root}
	if shared.Edges != nil {
		context.Edges = append([]ContextEdge(nil), shared.Edges...)
	}
	return context, nil
}
