package avroparquet

import (
	"strings"

	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/schema"
	"go.uber.org/zap"

	"github.com/mescobar2016/parquet-mr/pkg/avro"
	"github.com/mescobar2016/parquet-mr/pkg/codecerrors"
)

// Names used by the standard Parquet collection encodings.
const (
	listGroupName     = "list"
	listElementName   = "element"
	oldListChildName  = "array"
	mapEntryGroupName = "key_value"
	mapKeyName        = "key"
	mapValueName      = "value"
)

// SchemaConverter derives a Parquet physical schema from an Avro logical
// schema. Conversion is a pure function of the schema and the options; the
// same inputs always yield the same message type.
type SchemaConverter struct {
	opts   Options
	logger *zap.Logger
}

// NewSchemaConverter returns a converter bound to the given options.
func NewSchemaConverter(opts Options) *SchemaConverter {
	return &SchemaConverter{opts: opts, logger: opts.logger()}
}

// Convert translates a record schema into a Parquet message type. Non-record
// roots, unsupported union shapes, and legacy-mode arrays with nullable
// elements fail with a schema error naming the offending field path.
func (c *SchemaConverter) Convert(s *avro.Schema) (*schema.Schema, error) {
	if s == nil || s.Type != avro.TypeRecord {
		return nil, codecerrors.New(codecerrors.ErrorTypeSchema,
			"top-level schema must be a record")
	}

	fields, err := c.convertFields(s.Fields, nil)
	if err != nil {
		return nil, err
	}
	root, err := schema.NewGroupNode(s.Name, parquet.Repetitions.Repeated, fields, -1)
	if err != nil {
		return nil, codecerrors.Wrap(err, codecerrors.ErrorTypeSchema, "building message type")
	}

	c.logger.Debug("converted avro schema",
		zap.String("record", s.Name),
		zap.Int("fields", len(s.Fields)),
		zap.Bool("old_list_structure", c.opts.WriteOldListStructure))
	return schema.NewSchema(root), nil
}

func (c *SchemaConverter) convertFields(fields []*avro.Field, path []string) (schema.FieldList, error) {
	out := make(schema.FieldList, 0, len(fields))
	for _, f := range fields {
		node, err := c.convertField(f.Name, f.Schema, append(path, f.Name))
		if err != nil {
			return nil, err
		}
		out = append(out, node)
	}
	return out, nil
}

// convertField resolves nullability and dispatches on the non-null type.
func (c *SchemaConverter) convertField(name string, s *avro.Schema, path []string) (schema.Node, error) {
	rep := parquet.Repetitions.Required
	if s.Type == avro.TypeUnion {
		nonNull := s.NonNull()
		if nonNull == nil {
			return nil, codecerrors.New(codecerrors.ErrorTypeSchema,
				"unions other than [\"null\", type] are not supported").WithFieldPath(path)
		}
		if s.IsNullable() {
			rep = parquet.Repetitions.Optional
		}
		s = nonNull
	}
	return c.convertNonNull(name, s, rep, path)
}

func (c *SchemaConverter) convertNonNull(name string, s *avro.Schema, rep parquet.Repetition, path []string) (schema.Node, error) {
	switch s.Type {
	case avro.TypeBoolean:
		return c.primitive(name, rep, schema.NoLogicalType{}, parquet.Types.Boolean, 0, path)
	case avro.TypeInt:
		if s.Logical != nil && s.Logical.Name == avro.LogicalDate {
			return c.primitive(name, rep, schema.DateLogicalType{}, parquet.Types.Int32, 0, path)
		}
		return c.primitive(name, rep, schema.NoLogicalType{}, parquet.Types.Int32, 0, path)
	case avro.TypeLong:
		if s.Logical != nil && s.Logical.Name == avro.LogicalTimestampMillis {
			return c.primitive(name, rep,
				schema.NewTimestampLogicalType(true, schema.TimeUnitMillis),
				parquet.Types.Int64, 0, path)
		}
		return c.primitive(name, rep, schema.NoLogicalType{}, parquet.Types.Int64, 0, path)
	case avro.TypeFloat:
		return c.primitive(name, rep, schema.NoLogicalType{}, parquet.Types.Float, 0, path)
	case avro.TypeDouble:
		return c.primitive(name, rep, schema.NoLogicalType{}, parquet.Types.Double, 0, path)
	case avro.TypeBytes:
		if s.Logical != nil && s.Logical.Name == avro.LogicalDecimal {
			return c.primitive(name, rep,
				schema.NewDecimalLogicalType(int32(s.Logical.Precision), int32(s.Logical.Scale)),
				parquet.Types.ByteArray, 0, path)
		}
		return c.primitive(name, rep, schema.NoLogicalType{}, parquet.Types.ByteArray, 0, path)
	case avro.TypeString:
		return c.primitive(name, rep, schema.StringLogicalType{}, parquet.Types.ByteArray, 0, path)
	case avro.TypeEnum:
		// The ordered symbol list lives only in the Avro schema; the physical
		// layout is a plain annotated binary column.
		return c.primitive(name, rep, schema.EnumLogicalType{}, parquet.Types.ByteArray, 0, path)
	case avro.TypeFixed:
		if s.Logical != nil && s.Logical.Name == avro.LogicalDecimal {
			return c.primitive(name, rep,
				schema.NewDecimalLogicalType(int32(s.Logical.Precision), int32(s.Logical.Scale)),
				parquet.Types.FixedLenByteArray, s.Size, path)
		}
		return c.primitive(name, rep, schema.NoLogicalType{}, parquet.Types.FixedLenByteArray, s.Size, path)
	case avro.TypeRecord:
		fields, err := c.convertFields(s.Fields, path)
		if err != nil {
			return nil, err
		}
		node, err := schema.NewGroupNode(name, rep, fields, -1)
		if err != nil {
			return nil, c.nodeErr(err, path)
		}
		return node, nil
	case avro.TypeArray:
		if c.opts.WriteOldListStructure {
			return c.convertOldList(name, s, rep, path)
		}
		return c.convertList(name, s, rep, path)
	case avro.TypeMap:
		return c.convertMap(name, s, rep, path)
	case avro.TypeNull:
		return nil, codecerrors.New(codecerrors.ErrorTypeSchema,
			"null type is only supported inside a union").WithFieldPath(path)
	case avro.TypeUnion:
		return nil, codecerrors.New(codecerrors.ErrorTypeSchema,
			"nested unions are not supported").WithFieldPath(path)
	default:
		return nil, codecerrors.Newf(codecerrors.ErrorTypeSchema,
			"unsupported avro type %s", s.Type).WithFieldPath(path)
	}
}

// convertList produces the 3-level encoding:
//
//	<rep> group <name> (LIST) { repeated group list { <element-rep> <element> } }
func (c *SchemaConverter) convertList(name string, s *avro.Schema, rep parquet.Repetition, path []string) (schema.Node, error) {
	elemRep := parquet.Repetitions.Required
	elemSchema := s.Items
	if elemSchema.Type == avro.TypeUnion {
		nonNull := elemSchema.NonNull()
		if nonNull == nil {
			return nil, codecerrors.New(codecerrors.ErrorTypeSchema,
				"unions other than [\"null\", type] are not supported").
				WithFieldPath(append(path, listElementName))
		}
		if elemSchema.IsNullable() {
			elemRep = parquet.Repetitions.Optional
		}
		elemSchema = nonNull
	}

	element, err := c.convertNonNull(listElementName, elemSchema, elemRep, append(path, listElementName))
	if err != nil {
		return nil, err
	}

	if c.opts.AddListElementRecords && elemSchema.Type != avro.TypeRecord &&
		elemSchema.Type != avro.TypeArray && elemSchema.Type != avro.TypeMap {
		// Synthetic one-field record around the element, for writers that
		// expect group-shaped list elements. Only leaf-shaped elements get
		// the wrapper; nested lists and maps keep their own group shape.
		inner, err := c.convertNonNull(listElementName, elemSchema, parquet.Repetitions.Required,
			append(path, listElementName))
		if err != nil {
			return nil, err
		}
		element, err = schema.NewGroupNode(listElementName, elemRep, schema.FieldList{inner}, -1)
		if err != nil {
			return nil, c.nodeErr(err, path)
		}
	}

	list, err := schema.NewGroupNode(listGroupName, parquet.Repetitions.Repeated, schema.FieldList{element}, -1)
	if err != nil {
		return nil, c.nodeErr(err, path)
	}
	outer, err := schema.NewGroupNodeLogical(name, rep, schema.FieldList{list}, schema.ListLogicalType{}, -1)
	if err != nil {
		return nil, c.nodeErr(err, path)
	}
	return outer, nil
}

// convertOldList produces the legacy 2-level encoding:
//
//	<rep> group <name> (LIST) { repeated <element-type> array }
//
// The 2-level form has no slot for element nullability, so nullable elements
// are rejected rather than decoded by guesswork.
func (c *SchemaConverter) convertOldList(name string, s *avro.Schema, rep parquet.Repetition, path []string) (schema.Node, error) {
	if s.Items.Type == avro.TypeUnion && s.Items.IsNullable() {
		return nil, codecerrors.New(codecerrors.ErrorTypeSchema,
			"the 2-level list encoding cannot represent nullable array elements").
			WithFieldPath(path)
	}
	elemSchema := s.Items.NonNull()
	if elemSchema == nil {
		return nil, codecerrors.New(codecerrors.ErrorTypeSchema,
			"unions other than [\"null\", type] are not supported").WithFieldPath(path)
	}

	element, err := c.convertNonNull(oldListChildName, elemSchema, parquet.Repetitions.Repeated,
		append(path, oldListChildName))
	if err != nil {
		return nil, err
	}
	outer, err := schema.NewGroupNodeLogical(name, rep, schema.FieldList{element}, schema.ListLogicalType{}, -1)
	if err != nil {
		return nil, c.nodeErr(err, path)
	}
	return outer, nil
}

// convertMap produces:
//
//	<rep> group <name> (MAP) { repeated group key_value { required key; <value-rep> value } }
func (c *SchemaConverter) convertMap(name string, s *avro.Schema, rep parquet.Repetition, path []string) (schema.Node, error) {
	key, err := schema.NewPrimitiveNodeLogical(mapKeyName, parquet.Repetitions.Required,
		schema.StringLogicalType{}, parquet.Types.ByteArray, 0, -1)
	if err != nil {
		return nil, c.nodeErr(err, path)
	}

	value, err := c.convertField(mapValueName, s.Values, append(path, mapValueName))
	if err != nil {
		return nil, err
	}

	kv, err := schema.NewGroupNode(mapEntryGroupName, parquet.Repetitions.Repeated,
		schema.FieldList{key, value}, -1)
	if err != nil {
		return nil, c.nodeErr(err, path)
	}
	outer, err := schema.NewGroupNodeLogical(name, rep, schema.FieldList{kv}, schema.MapLogicalType{}, -1)
	if err != nil {
		return nil, c.nodeErr(err, path)
	}
	return outer, nil
}

func (c *SchemaConverter) primitive(name string, rep parquet.Repetition, lt schema.LogicalType,
	typ parquet.Type, typeLen int, path []string) (schema.Node, error) {
	node, err := schema.NewPrimitiveNodeLogical(name, rep, lt, typ, typeLen, -1)
	if err != nil {
		return nil, c.nodeErr(err, path)
	}
	return node, nil
}

func (c *SchemaConverter) nodeErr(err error, path []string) error {
	return codecerrors.Wrap(err, codecerrors.ErrorTypeSchema,
		"building parquet node at "+strings.Join(path, ".")).WithFieldPath(path)
}
