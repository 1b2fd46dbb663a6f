package avroparquet

import (
	"strings"

	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/schema"

	"github.com/mescobar2016/parquet-mr/pkg/avro"
	"github.com/mescobar2016/parquet-mr/pkg/codecerrors"
)

// avroSchemaFromParquet derives a logical schema from a physical message
// type. The legacy read path uses it when no Avro schema travels with the
// data. Annotations that carry no schema information of their own come back
// as their closest logical shape: ENUM binary columns become strings, since
// the symbol list lives only in the writer's schema.
func avroSchemaFromParquet(s *schema.Schema) (*avro.Schema, error) {
	if s == nil {
		return nil, codecerrors.New(codecerrors.ErrorTypeSchema, "nil parquet schema")
	}
	root := s.Root()
	fields := make([]*avro.Field, 0, root.NumFields())
	for i := 0; i < root.NumFields(); i++ {
		child := root.Field(i)
		fs, err := avroFieldSchema(child, []string{child.Name()})
		if err != nil {
			return nil, err
		}
		fields = append(fields, avro.NewField(child.Name(), fs))
	}
	return avro.NewRecordSchema(root.Name(), fields...), nil
}

// avroFieldSchema maps one node to a field schema, turning the optional
// repetition into a ["null", type] union.
func avroFieldSchema(node schema.Node, path []string) (*avro.Schema, error) {
	inner, err := avroValueSchema(node, path)
	if err != nil {
		return nil, err
	}
	if node.RepetitionType() == parquet.Repetitions.Optional {
		return avro.Optional(inner), nil
	}
	return inner, nil
}

func avroValueSchema(node schema.Node, path []string) (*avro.Schema, error) {
	if node.Type() == schema.Group {
		return avroGroupSchema(node.(*schema.GroupNode), path)
	}
	return avroPrimitiveSchema(node.(*schema.PrimitiveNode), path)
}

func avroGroupSchema(g *schema.GroupNode, path []string) (*avro.Schema, error) {
	switch g.ConvertedType() {
	case schema.ConvertedTypes.List:
		return avroListSchema(g, path)
	case schema.ConvertedTypes.Map, schema.ConvertedTypes.MapKeyValue:
		return avroMapSchema(g, path)
	}

	fields := make([]*avro.Field, 0, g.NumFields())
	for i := 0; i < g.NumFields(); i++ {
		child := g.Field(i)
		if child.RepetitionType() == parquet.Repetitions.Repeated {
			return nil, derivationErr(append(path, child.Name()),
				"repeated fields outside LIST/MAP groups are not supported")
		}
		fs, err := avroFieldSchema(child, append(path, child.Name()))
		if err != nil {
			return nil, err
		}
		fields = append(fields, avro.NewField(child.Name(), fs))
	}
	return avro.NewRecordSchema(g.Name(), fields...), nil
}

// avroListSchema recognizes both list encodings. A repeated child that is a
// primitive, carries more than one field, or is named after the legacy
// tuple conventions, is itself the element (2-level); otherwise it is the
// intermediate wrapper and its single field is the element (3-level).
func avroListSchema(g *schema.GroupNode, path []string) (*avro.Schema, error) {
	if g.NumFields() != 1 {
		return nil, derivationErr(path, "LIST group must contain exactly one field")
	}
	repeated := g.Field(0)
	if repeated.RepetitionType() != parquet.Repetitions.Repeated {
		return nil, derivationErr(path, "LIST group child must be repeated")
	}

	if isElementNode(repeated, g.Name()) {
		items, err := avroValueSchema(repeated, append(path, repeated.Name()))
		if err != nil {
			return nil, err
		}
		return avro.NewArraySchema(items), nil
	}

	element := repeated.(*schema.GroupNode).Field(0)
	items, err := avroFieldSchema(element, append(path, element.Name()))
	if err != nil {
		return nil, err
	}
	return avro.NewArraySchema(items), nil
}

// isElementNode reports whether the repeated child of a LIST group is the
// element itself rather than the 3-level intermediate wrapper.
func isElementNode(repeated schema.Node, listName string) bool {
	if repeated.Type() == schema.Primitive {
		return true
	}
	g := repeated.(*schema.GroupNode)
	if g.NumFields() != 1 {
		return true
	}
	if g.Name() == oldListChildName || g.Name() == listName+"_tuple" {
		return true
	}
	return false
}

func avroMapSchema(g *schema.GroupNode, path []string) (*avro.Schema, error) {
	if g.NumFields() != 1 {
		return nil, derivationErr(path, "MAP group must contain exactly one field")
	}
	kv, ok := g.Field(0).(*schema.GroupNode)
	if !ok || kv.RepetitionType() != parquet.Repetitions.Repeated || kv.NumFields() != 2 {
		return nil, derivationErr(path, "MAP group child must be a repeated two-field group")
	}
	key, ok := kv.Field(0).(*schema.PrimitiveNode)
	if !ok || key.PhysicalType() != parquet.Types.ByteArray {
		return nil, derivationErr(path, "map keys must be binary strings")
	}
	values, err := avroFieldSchema(kv.Field(1), append(path, mapValueName))
	if err != nil {
		return nil, err
	}
	return avro.NewMapSchema(values), nil
}

func avroPrimitiveSchema(p *schema.PrimitiveNode, path []string) (*avro.Schema, error) {
	switch p.ConvertedType() {
	case schema.ConvertedTypes.UTF8, schema.ConvertedTypes.Enum:
		return avro.NewPrimitiveSchema(avro.TypeString), nil
	case schema.ConvertedTypes.Date:
		return avro.NewPrimitiveSchema(avro.TypeInt).
			WithLogicalType(&avro.LogicalType{Name: avro.LogicalDate}), nil
	case schema.ConvertedTypes.TimestampMillis:
		return avro.NewPrimitiveSchema(avro.TypeLong).
			WithLogicalType(&avro.LogicalType{Name: avro.LogicalTimestampMillis}), nil
	case schema.ConvertedTypes.Decimal:
		meta := p.DecimalMetadata()
		if !meta.IsSet {
			return nil, derivationErr(path, "DECIMAL column without precision/scale metadata")
		}
		switch p.PhysicalType() {
		case parquet.Types.ByteArray:
			return avro.DecimalOf(avro.NewPrimitiveSchema(avro.TypeBytes),
				int(meta.Precision), int(meta.Scale)), nil
		case parquet.Types.FixedLenByteArray:
			return avro.DecimalOf(avro.NewFixedSchema(p.Name(), p.TypeLength()),
				int(meta.Precision), int(meta.Scale)), nil
		default:
			return nil, derivationErr(path, "DECIMAL annotation on unsupported physical type")
		}
	}

	switch p.PhysicalType() {
	case parquet.Types.Boolean:
		return avro.NewPrimitiveSchema(avro.TypeBoolean), nil
	case parquet.Types.Int32:
		return avro.NewPrimitiveSchema(avro.TypeInt), nil
	case parquet.Types.Int64:
		return avro.NewPrimitiveSchema(avro.TypeLong), nil
	case parquet.Types.Float:
		return avro.NewPrimitiveSchema(avro.TypeFloat), nil
	case parquet.Types.Double:
		return avro.NewPrimitiveSchema(avro.TypeDouble), nil
	case parquet.Types.ByteArray:
		return avro.NewPrimitiveSchema(avro.TypeBytes), nil
	case parquet.Types.FixedLenByteArray:
		return avro.NewFixedSchema(p.Name(), p.TypeLength()), nil
	default:
		return nil, derivationErr(path, "unsupported physical type "+p.PhysicalType().String())
	}
}

func derivationErr(path []string, msg string) error {
	return codecerrors.New(codecerrors.ErrorTypeSchema,
		"deriving schema at "+strings.Join(path, ".")+": "+msg).WithFieldPath(path)
}
