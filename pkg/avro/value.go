package avro

import (
	"fmt"
)

// IndexedRecord is the capability surface the codec requires from a record
// representation: schema access plus get/set by field name. The write path
// never mutates records it is given; Set exists for materialization on the
// read path.
type IndexedRecord interface {
	Schema() *Schema
	Get(name string) (interface{}, bool)
	Set(name string, value interface{})
}

// Utf8 is the schema-aware string type returned by the current-mode read
// path. The legacy read path returns plain string instead.
type Utf8 string

func (u Utf8) String() string { return string(u) }

// EnumSymbol is an enum value scoped to its enum schema.
type EnumSymbol struct {
	Schema *Schema
	Symbol string
}

func (e EnumSymbol) String() string { return e.Symbol }

// Fixed is a fixed-length binary value scoped to its fixed schema.
type Fixed struct {
	Schema *Schema
	Bytes  []byte
}

// NewFixed copies b into a Fixed value, validating the length against the
// schema.
func NewFixed(s *Schema, b []byte) (*Fixed, error) {
	if len(b) != s.Size {
		return nil, fmt.Errorf("fixed %s expects %d bytes, got %d", s.Name, s.Size, len(b))
	}
	dup := make([]byte, len(b))
	copy(dup, b)
	return &Fixed{Schema: s, Bytes: dup}, nil
}

// Array is the schema-typed sequence returned by the current-mode read path.
// The legacy read path returns a plain []interface{} instead.
type Array struct {
	Schema *Schema
	Items  []interface{}
}

// Record is the map-backed IndexedRecord implementation. Unset slots are
// distinct from slots explicitly set to nil.
type Record struct {
	schema *Schema
	values map[string]interface{}
}

// NewRecord returns an empty record over the given record schema.
func NewRecord(s *Schema) *Record {
	return &Record{schema: s, values: make(map[string]interface{}, len(s.Fields))}
}

// Schema returns the record's schema.
func (r *Record) Schema() *Schema { return r.schema }

// Get returns the value of the named field and whether the slot was set.
func (r *Record) Get(name string) (interface{}, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Set assigns the named field.
func (r *Record) Set(name string, value interface{}) {
	r.values[name] = value
}

func (r *Record) String() string {
	return fmt.Sprintf("Record(%s)%v", r.schema.Name, r.values)
}

// RecordBuilder accumulates field values and produces an immutable-by-
// convention Record, resolving unset slots to their declared default or to
// null for nullable fields.
type RecordBuilder struct {
	schema *Schema
	values map[string]interface{}
}

// NewRecordBuilder returns a builder over the given record schema.
func NewRecordBuilder(s *Schema) *RecordBuilder {
	return &RecordBuilder{schema: s, values: make(map[string]interface{}, len(s.Fields))}
}

// Set assigns a field slot. Chainable.
func (b *RecordBuilder) Set(name string, value interface{}) *RecordBuilder {
	b.values[name] = value
	return b
}

// Build resolves unset slots and returns the finished record. A field with
// neither a value, a default, nor a null branch is an error.
func (b *RecordBuilder) Build() (*Record, error) {
	rec := NewRecord(b.schema)
	for _, f := range b.schema.Fields {
		if v, ok := b.values[f.Name]; ok {
			rec.Set(f.Name, v)
			continue
		}
		v, err := f.DefaultValue()
		if err != nil {
			return nil, err
		}
		rec.Set(f.Name, v)
	}
	return rec, nil
}

// DefaultValue resolves the value of an unset field slot: the declared
// default if one exists, nil if the field is nullable, an error otherwise.
func (f *Field) DefaultValue() (interface{}, error) {
	if f.HasDefault {
		return f.Default, nil
	}
	if f.Schema.Type == TypeNull || f.Schema.IsNullable() {
		return nil, nil
	}
	return nil, fmt.Errorf("field %q has no value and no default", f.Name)
}
