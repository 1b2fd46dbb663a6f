// Package avro provides the in-memory Avro schema model and the generic
// record values the codec reads and writes. Schema documents are accepted
// pre-parsed (see SchemaFromJSON and SchemaFromCodec); the conversion engine
// in pkg/avroparquet consumes only the types defined here.
package avro

import (
	"fmt"
)

// Type identifies the variant of a schema node.
type Type int

const (
	TypeNull Type = iota
	TypeBoolean
	TypeInt
	TypeLong
	TypeFloat
	TypeDouble
	TypeBytes
	TypeString
	TypeRecord
	TypeEnum
	TypeArray
	TypeMap
	TypeUnion
	TypeFixed
)

var typeNames = map[Type]string{
	TypeNull:    "null",
	TypeBoolean: "boolean",
	TypeInt:     "int",
	TypeLong:    "long",
	TypeFloat:   "float",
	TypeDouble:  "double",
	TypeBytes:   "bytes",
	TypeString:  "string",
	TypeRecord:  "record",
	TypeEnum:    "enum",
	TypeArray:   "array",
	TypeMap:     "map",
	TypeUnion:   "union",
	TypeFixed:   "fixed",
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// Logical type names recognized by the built-in conversion registry and the
// schema translator.
const (
	LogicalDecimal         = "decimal"
	LogicalDate            = "date"
	LogicalTimestampMillis = "timestamp-millis"
)

// LogicalType annotates a schema node without changing its physical shape.
type LogicalType struct {
	Name      string
	Precision int
	Scale     int
}

// Field is one named slot of a record schema.
type Field struct {
	Name       string
	Schema     *Schema
	HasDefault bool
	Default    interface{}
	Index      int
}

// Schema is a node of the Avro logical schema tree. Exactly the members
// relevant to its Type are populated.
type Schema struct {
	Type    Type
	Name    string    // record, enum, fixed
	Fields  []*Field  // record
	Symbols []string  // enum
	Size    int       // fixed
	Items   *Schema   // array element
	Values  *Schema   // map value (keys are always strings)
	Types   []*Schema // union branches
	Logical *LogicalType
}

// NewPrimitiveSchema returns a schema for one of the primitive types.
func NewPrimitiveSchema(t Type) *Schema {
	return &Schema{Type: t}
}

// NewRecordSchema returns a record schema over the given fields, assigning
// declared indexes in order.
func NewRecordSchema(name string, fields ...*Field) *Schema {
	for i, f := range fields {
		f.Index = i
	}
	return &Schema{Type: TypeRecord, Name: name, Fields: fields}
}

// NewField returns a record field without a default value.
func NewField(name string, s *Schema) *Field {
	return &Field{Name: name, Schema: s}
}

// NewFieldWithDefault returns a record field carrying a default value used
// when a slot is left unset.
func NewFieldWithDefault(name string, s *Schema, def interface{}) *Field {
	return &Field{Name: name, Schema: s, HasDefault: true, Default: def}
}

// NewArraySchema returns an array schema with the given element schema.
func NewArraySchema(items *Schema) *Schema {
	return &Schema{Type: TypeArray, Items: items}
}

// NewMapSchema returns a map schema with the given value schema.
func NewMapSchema(values *Schema) *Schema {
	return &Schema{Type: TypeMap, Values: values}
}

// NewEnumSchema returns an enum schema over the ordered symbol list.
func NewEnumSchema(name string, symbols ...string) *Schema {
	return &Schema{Type: TypeEnum, Name: name, Symbols: symbols}
}

// NewFixedSchema returns a fixed-length binary schema of the given size.
func NewFixedSchema(name string, size int) *Schema {
	return &Schema{Type: TypeFixed, Name: name, Size: size}
}

// NewUnionSchema returns a union over the given branches.
func NewUnionSchema(types ...*Schema) *Schema {
	return &Schema{Type: TypeUnion, Types: types}
}

// Optional wraps s in a ["null", s] union, the sole nullability mechanism.
func Optional(s *Schema) *Schema {
	return NewUnionSchema(NewPrimitiveSchema(TypeNull), s)
}

// WithLogicalType returns a copy of s annotated with the given logical type.
func (s *Schema) WithLogicalType(lt *LogicalType) *Schema {
	dup := *s
	dup.Logical = lt
	return &dup
}

// DecimalOf annotates s (bytes or fixed) as decimal(precision, scale).
func DecimalOf(s *Schema, precision, scale int) *Schema {
	return s.WithLogicalType(&LogicalType{Name: LogicalDecimal, Precision: precision, Scale: scale})
}

// IsNullable reports whether s is a union with a null branch.
func (s *Schema) IsNullable() bool {
	if s.Type != TypeUnion {
		return false
	}
	for _, b := range s.Types {
		if b.Type == TypeNull {
			return true
		}
	}
	return false
}

// NonNull resolves a ["null", T] union to T. For non-union schemas it returns
// s itself. It returns nil when the union has no, or more than one, non-null
// branch; callers surface that as a schema error with the field path.
func (s *Schema) NonNull() *Schema {
	if s.Type != TypeUnion {
		return s
	}
	var nonNull *Schema
	for _, b := range s.Types {
		if b.Type == TypeNull {
			continue
		}
		if nonNull != nil {
			return nil
		}
		nonNull = b
	}
	return nonNull
}

// Field returns the named record field, or nil.
func (s *Schema) Field(name string) *Field {
	for _, f := range s.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// EnumIndex returns the position of symbol in an enum schema, or -1.
func (s *Schema) EnumIndex(symbol string) int {
	for i, sym := range s.Symbols {
		if sym == symbol {
			return i
		}
	}
	return -1
}

// String renders a compact human-readable form used in error messages and
// debug logs, not a parseable schema document.
func (s *Schema) String() string {
	switch s.Type {
	case TypeRecord:
		return fmt.Sprintf("record %s(%d fields)", s.Name, len(s.Fields))
	case TypeEnum:
		return fmt.Sprintf("enum %s%v", s.Name, s.Symbols)
	case TypeFixed:
		return fmt.Sprintf("fixed %s(%d)", s.Name, s.Size)
	case TypeArray:
		return fmt.Sprintf("array<%s>", s.Items)
	case TypeMap:
		return fmt.Sprintf("map<%s>", s.Values)
	case TypeUnion:
		out := "union["
		for i, b := range s.Types {
			if i > 0 {
				out += ","
			}
			out += b.String()
		}
		return out + "]"
	default:
		if s.Logical != nil {
			if s.Logical.Name == LogicalDecimal {
				return fmt.Sprintf("%s/decimal(%d,%d)", s.Type, s.Logical.Precision, s.Logical.Scale)
			}
			return fmt.Sprintf("%s/%s", s.Type, s.Logical.Name)
		}
		return s.Type.String()
	}
}

// Equal reports structural equality of two schemas, including logical type
// annotations and field order.
func (s *Schema) Equal(o *Schema) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.Type != o.Type || s.Name != o.Name || s.Size != o.Size {
		return false
	}
	if (s.Logical == nil) != (o.Logical == nil) {
		return false
	}
	if s.Logical != nil && *s.Logical != *o.Logical {
		return false
	}
	switch s.Type {
	case TypeRecord:
		if len(s.Fields) != len(o.Fields) {
			return false
		}
		for i, f := range s.Fields {
			g := o.Fields[i]
			if f.Name != g.Name || !f.Schema.Equal(g.Schema) {
				return false
			}
		}
	case TypeEnum:
		if len(s.Symbols) != len(o.Symbols) {
			return false
		}
		for i, sym := range s.Symbols {
			if sym != o.Symbols[i] {
				return false
			}
		}
	case TypeArray:
		return s.Items.Equal(o.Items)
	case TypeMap:
		return s.Values.Equal(o.Values)
	case TypeUnion:
		if len(s.Types) != len(o.Types) {
			return false
		}
		for i, b := range s.Types {
			if !b.Equal(o.Types[i]) {
				return false
			}
		}
	}
	return true
}
