package avro

import (
	"testing"

	"github.com/linkedin/goavro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaNullability(t *testing.T) {
	tests := []struct {
		name     string
		schema   *Schema
		nullable bool
		nonNull  Type
	}{
		{
			name:     "optional string",
			schema:   Optional(NewPrimitiveSchema(TypeString)),
			nullable: true,
			nonNull:  TypeString,
		},
		{
			name:     "required int",
			schema:   NewPrimitiveSchema(TypeInt),
			nullable: false,
			nonNull:  TypeInt,
		},
		{
			name:     "single-branch union",
			schema:   NewUnionSchema(NewPrimitiveSchema(TypeLong)),
			nullable: false,
			nonNull:  TypeLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.nullable, tt.schema.IsNullable())
			nn := tt.schema.NonNull()
			require.NotNil(t, nn)
			assert.Equal(t, tt.nonNull, nn.Type)
		})
	}
}

func TestSchemaNonNullRejectsWideUnions(t *testing.T) {
	u := NewUnionSchema(
		NewPrimitiveSchema(TypeInt),
		NewPrimitiveSchema(TypeString),
	)
	assert.Nil(t, u.NonNull())

	u = NewUnionSchema(
		NewPrimitiveSchema(TypeNull),
		NewPrimitiveSchema(TypeInt),
		NewPrimitiveSchema(TypeString),
	)
	assert.Nil(t, u.NonNull())
}

func TestEnumIndex(t *testing.T) {
	e := NewEnumSchema("color", "red", "green", "blue")
	assert.Equal(t, 0, e.EnumIndex("red"))
	assert.Equal(t, 2, e.EnumIndex("blue"))
	assert.Equal(t, -1, e.EnumIndex("purple"))
}

func TestRecordFieldLookup(t *testing.T) {
	rec := NewRecordSchema("r",
		NewField("a", NewPrimitiveSchema(TypeInt)),
		NewField("b", NewPrimitiveSchema(TypeString)),
	)
	f := rec.Field("b")
	require.NotNil(t, f)
	assert.Equal(t, 1, f.Index)
	assert.Nil(t, rec.Field("missing"))
}

func TestSchemaEqualIsOrderSensitive(t *testing.T) {
	a := NewRecordSchema("r",
		NewField("x", NewPrimitiveSchema(TypeInt)),
		NewField("y", NewPrimitiveSchema(TypeString)),
	)
	b := NewRecordSchema("r",
		NewField("y", NewPrimitiveSchema(TypeString)),
		NewField("x", NewPrimitiveSchema(TypeInt)),
	)
	c := NewRecordSchema("r",
		NewField("x", NewPrimitiveSchema(TypeInt)),
		NewField("y", NewPrimitiveSchema(TypeString)),
	)

	assert.True(t, a.Equal(c))
	assert.False(t, a.Equal(b))
}

func TestDecimalOf(t *testing.T) {
	d := DecimalOf(NewPrimitiveSchema(TypeBytes), 9, 2)
	require.NotNil(t, d.Logical)
	assert.Equal(t, LogicalDecimal, d.Logical.Name)
	assert.Equal(t, 9, d.Logical.Precision)
	assert.Equal(t, 2, d.Logical.Scale)
}

func TestSchemaFromJSON(t *testing.T) {
	doc := []byte(`{
		"type": "record",
		"name": "myrecord",
		"namespace": "example",
		"fields": [
			{"name": "myboolean", "type": "boolean"},
			{"name": "mystring", "type": "string"},
			{"name": "myoptional", "type": ["null", "int"], "default": null},
			{"name": "mynested", "type": {
				"type": "record", "name": "nested",
				"fields": [{"name": "inner", "type": "long"}]
			}},
			{"name": "myenum", "type": {"type": "enum", "name": "suit", "symbols": ["spades", "hearts"]}},
			{"name": "myfixed", "type": {"type": "fixed", "name": "md5", "size": 16}},
			{"name": "myarray", "type": {"type": "array", "items": "int"}},
			{"name": "mymap", "type": {"type": "map", "values": "string"}},
			{"name": "mydecimal", "type": {"type": "bytes", "logicalType": "decimal", "precision": 9, "scale": 2}}
		]
	}`)

	s, err := SchemaFromJSON(doc)
	require.NoError(t, err)
	require.Equal(t, TypeRecord, s.Type)
	assert.Equal(t, "myrecord", s.Name)
	require.Len(t, s.Fields, 9)

	opt := s.Fields[2]
	assert.True(t, opt.Schema.IsNullable())
	assert.True(t, opt.HasDefault)
	assert.Nil(t, opt.Default)

	nested := s.Fields[3].Schema
	require.Equal(t, TypeRecord, nested.Type)
	assert.Equal(t, "nested", nested.Name)

	enum := s.Fields[4].Schema
	require.Equal(t, TypeEnum, enum.Type)
	assert.Equal(t, []string{"spades", "hearts"}, enum.Symbols)

	fixed := s.Fields[5].Schema
	require.Equal(t, TypeFixed, fixed.Type)
	assert.Equal(t, 16, fixed.Size)

	assert.Equal(t, TypeInt, s.Fields[6].Schema.Items.Type)
	assert.Equal(t, TypeString, s.Fields[7].Schema.Values.Type)

	dec := s.Fields[8].Schema
	require.NotNil(t, dec.Logical)
	assert.Equal(t, LogicalDecimal, dec.Logical.Name)
	assert.Equal(t, 9, dec.Logical.Precision)
	assert.Equal(t, 2, dec.Logical.Scale)
}

func TestSchemaFromCodec(t *testing.T) {
	doc := `{
		"type": "record",
		"name": "myrecord",
		"namespace": "example",
		"fields": [
			{"name": "mystring", "type": "string"},
			{"name": "myoptional", "type": ["null", "int"], "default": null},
			{"name": "myenum", "type": {"type": "enum", "name": "suit", "symbols": ["spades", "hearts"]}},
			{"name": "myfixed", "type": {"type": "fixed", "name": "md5", "size": 16}},
			{"name": "myarray", "type": {"type": "array", "items": "long"}},
			{"name": "mymap", "type": {"type": "map", "values": "string"}},
			{"name": "mydecimal", "type": {"type": "bytes", "logicalType": "decimal", "precision": 9, "scale": 2}}
		]
	}`

	codec, err := goavro.NewCodec(doc)
	require.NoError(t, err)

	fromCodec, err := SchemaFromCodec(codec)
	require.NoError(t, err)
	fromJSON, err := SchemaFromJSON([]byte(doc))
	require.NoError(t, err)

	assert.True(t, fromCodec.Equal(fromJSON),
		"a goavro-parsed schema must match the directly parsed one")

	dec := fromCodec.Field("mydecimal")
	require.NotNil(t, dec)
	require.NotNil(t, dec.Schema.Logical)
	assert.Equal(t, 9, dec.Schema.Logical.Precision)
	assert.Equal(t, 2, dec.Schema.Logical.Scale)
}

func TestSchemaFromJSONNamedReference(t *testing.T) {
	doc := []byte(`{
		"type": "record",
		"name": "pair",
		"fields": [
			{"name": "left", "type": {"type": "fixed", "name": "token", "size": 4}},
			{"name": "right", "type": "token"}
		]
	}`)

	s, err := SchemaFromJSON(doc)
	require.NoError(t, err)
	assert.Same(t, s.Fields[0].Schema, s.Fields[1].Schema)
}

func TestSchemaFromJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"unknown type name", `{"type": "record", "name": "r", "fields": [{"name": "f", "type": "wat"}]}`},
		{"fixed without size", `{"type": "fixed", "name": "f"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SchemaFromJSON([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}
