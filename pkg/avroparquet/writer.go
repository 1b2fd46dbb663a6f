package avroparquet

import (
	"math"
	"sort"

	"github.com/apache/arrow-go/v18/parquet/schema"
	"go.uber.org/zap"

	"github.com/mescobar2016/parquet-mr/pkg/avro"
	"github.com/mescobar2016/parquet-mr/pkg/codecerrors"
	"github.com/mescobar2016/parquet-mr/pkg/parquetio"
)

// RecordWriter flattens Avro generic records into field events on a
// parquetio.RecordConsumer. One writer is bound to one open stream; it holds
// no per-record state, but must not be shared across concurrent streams
// without external synchronization of the sink.
type RecordWriter struct {
	avroSchema *avro.Schema
	parquet    *schema.Schema
	opts       Options
	registry   *ConversionRegistry
	logger     *zap.Logger
}

// NewRecordWriter derives the physical schema from the logical one and
// returns a writer. Schema errors surface here, before any record is
// written.
func NewRecordWriter(s *avro.Schema, opts Options) (*RecordWriter, error) {
	ps, err := NewSchemaConverter(opts).Convert(s)
	if err != nil {
		return nil, err
	}
	return &RecordWriter{
		avroSchema: s,
		parquet:    ps,
		opts:       opts,
		registry:   opts.registry(),
		logger:     opts.logger(),
	}, nil
}

// ParquetSchema returns the derived physical schema.
func (w *RecordWriter) ParquetSchema() *schema.Schema {
	return w.parquet
}

// Write emits one record as a StartMessage/EndMessage bracket of field
// events. On error the bracket is never closed, so a transactional sink
// discards everything emitted for the record. The input record is not
// mutated.
func (w *RecordWriter) Write(rec avro.IndexedRecord, rc parquetio.RecordConsumer) error {
	if rec == nil {
		return codecerrors.New(codecerrors.ErrorTypeValue, "cannot write a nil record")
	}
	rc.StartMessage()
	if err := w.writeRecordFields(w.avroSchema, w.parquet.Root(), rec, rc, nil); err != nil {
		return err
	}
	rc.EndMessage()
	return nil
}

// writeRecordFields emits one StartField/EndField bracket per declared
// field, in declared order, with the positional index — present, absent, and
// empty fields alike.
func (w *RecordWriter) writeRecordFields(s *avro.Schema, group *schema.GroupNode,
	rec avro.IndexedRecord, rc parquetio.RecordConsumer, path []string) error {
	for i, f := range s.Fields {
		v, _ := rec.Get(f.Name)
		rc.StartField(f.Name, i)
		if err := w.writeFieldValue(f.Schema, group.Field(i), v, rc, append(path, f.Name)); err != nil {
			return err
		}
		rc.EndField(f.Name, i)
	}
	return nil
}

// writeFieldValue resolves nullability and emits the value events for one
// field slot. An absent optional emits nothing: the bracket stays, the value
// is skipped.
func (w *RecordWriter) writeFieldValue(s *avro.Schema, node schema.Node, v interface{},
	rc parquetio.RecordConsumer, path []string) error {
	if s.Type == avro.TypeUnion {
		nonNull := s.NonNull()
		if nonNull == nil {
			return codecerrors.New(codecerrors.ErrorTypeSchema,
				"unions other than [\"null\", type] are not supported").WithFieldPath(path)
		}
		if v == nil {
			if s.IsNullable() {
				return nil
			}
			return codecerrors.New(codecerrors.ErrorTypeValue,
				"null value for non-nullable union").WithFieldPath(path)
		}
		s = nonNull
	}
	if v == nil {
		return codecerrors.New(codecerrors.ErrorTypeValue,
			"null value for required field").WithFieldPath(path)
	}
	return w.writeNonNullValue(s, node, v, rc, path)
}

func (w *RecordWriter) writeNonNullValue(s *avro.Schema, node schema.Node, v interface{},
	rc parquetio.RecordConsumer, path []string) error {
	switch s.Type {
	case avro.TypeRecord:
		group, ok := node.(*schema.GroupNode)
		if !ok {
			return codecerrors.New(codecerrors.ErrorTypeInternal,
				"record schema mapped to non-group node").WithFieldPath(path)
		}
		rec, ok := v.(avro.IndexedRecord)
		if !ok {
			return w.typeMismatch(s, v, path)
		}
		rc.StartGroup()
		if err := w.writeRecordFields(s, group, rec, rc, path); err != nil {
			return err
		}
		rc.EndGroup()
		return nil
	case avro.TypeArray:
		group, ok := node.(*schema.GroupNode)
		if !ok {
			return codecerrors.New(codecerrors.ErrorTypeInternal,
				"array schema mapped to non-group node").WithFieldPath(path)
		}
		if w.opts.WriteOldListStructure {
			return w.writeOldList(s, group, v, rc, path)
		}
		return w.writeList(s, group, v, rc, path)
	case avro.TypeMap:
		group, ok := node.(*schema.GroupNode)
		if !ok {
			return codecerrors.New(codecerrors.ErrorTypeInternal,
				"map schema mapped to non-group node").WithFieldPath(path)
		}
		return w.writeMap(s, group, v, rc, path)
	default:
		return w.writeLeaf(s, v, rc, path)
	}
}

// writeList emits the 3-level encoding: the collection group always brackets,
// an empty array emits zero list entries, a nil element under a nullable
// element schema emits an entry group with an empty element bracket.
func (w *RecordWriter) writeList(s *avro.Schema, group *schema.GroupNode, v interface{},
	rc parquetio.RecordConsumer, path []string) error {
	items, err := asSlice(v)
	if err != nil {
		return w.typeMismatch(s, v, path)
	}

	elemSchema := s.Items
	elemNullable := elemSchema.IsNullable()
	elemNonNull := elemSchema.NonNull()
	if elemNonNull == nil {
		return codecerrors.New(codecerrors.ErrorTypeSchema,
			"unions other than [\"null\", type] are not supported").WithFieldPath(path)
	}

	listNode, ok := group.Field(0).(*schema.GroupNode)
	if !ok {
		return codecerrors.New(codecerrors.ErrorTypeInternal,
			"3-level list without list group").WithFieldPath(path)
	}
	elementNode := listNode.Field(0)

	rc.StartGroup()
	if len(items) > 0 {
		rc.StartField(listGroupName, 0)
		for _, item := range items {
			rc.StartGroup()
			if item == nil {
				if !elemNullable {
					rc.EndGroup()
					return codecerrors.New(codecerrors.ErrorTypeValue,
						"null element in array of non-nullable elements").WithFieldPath(path)
				}
			} else {
				rc.StartField(listElementName, 0)
				if err := w.writeListElement(elemNonNull, elementNode, item, rc, path); err != nil {
					return err
				}
				rc.EndField(listElementName, 0)
			}
			rc.EndGroup()
		}
		rc.EndField(listGroupName, 0)
	}
	rc.EndGroup()
	return nil
}

// writeListElement handles the synthetic element-wrapper record when
// AddListElementRecords put a group between the list entry and a primitive
// element.
func (w *RecordWriter) writeListElement(elemSchema *avro.Schema, elementNode schema.Node,
	item interface{}, rc parquetio.RecordConsumer, path []string) error {
	wrapper, isGroup := elementNode.(*schema.GroupNode)
	if isGroup && elemSchema.Type != avro.TypeRecord && elemSchema.Type != avro.TypeArray &&
		elemSchema.Type != avro.TypeMap {
		rc.StartGroup()
		rc.StartField(listElementName, 0)
		if err := w.writeNonNullValue(elemSchema, wrapper.Field(0), item, rc, path); err != nil {
			return err
		}
		rc.EndField(listElementName, 0)
		rc.EndGroup()
		return nil
	}
	return w.writeNonNullValue(elemSchema, elementNode, item, rc, path)
}

// writeOldList emits the legacy 2-level encoding. Null elements cannot be
// represented and are write-time errors.
func (w *RecordWriter) writeOldList(s *avro.Schema, group *schema.GroupNode, v interface{},
	rc parquetio.RecordConsumer, path []string) error {
	items, err := asSlice(v)
	if err != nil {
		return w.typeMismatch(s, v, path)
	}
	elemSchema := s.Items.NonNull()
	if elemSchema == nil || s.Items.IsNullable() {
		return codecerrors.New(codecerrors.ErrorTypeSchema,
			"the 2-level list encoding cannot represent nullable array elements").
			WithFieldPath(path)
	}
	elementNode := group.Field(0)

	rc.StartGroup()
	if len(items) > 0 {
		rc.StartField(oldListChildName, 0)
		for _, item := range items {
			if item == nil {
				return codecerrors.New(codecerrors.ErrorTypeValue,
					"null element in array of non-nullable elements").WithFieldPath(path)
			}
			if err := w.writeNonNullValue(elemSchema, elementNode, item, rc, path); err != nil {
				return err
			}
		}
		rc.EndField(oldListChildName, 0)
	}
	rc.EndGroup()
	return nil
}

// writeMap emits one key_value group per entry, keys in sorted order for a
// deterministic event stream. A nil value is an error under a required value
// schema and an empty value bracket under an optional one.
func (w *RecordWriter) writeMap(s *avro.Schema, group *schema.GroupNode, v interface{},
	rc parquetio.RecordConsumer, path []string) error {
	m, ok := v.(map[string]interface{})
	if !ok {
		return w.typeMismatch(s, v, path)
	}

	valueNullable := s.Values.IsNullable()
	valueNonNull := s.Values.NonNull()
	if valueNonNull == nil {
		return codecerrors.New(codecerrors.ErrorTypeSchema,
			"unions other than [\"null\", type] are not supported").WithFieldPath(path)
	}

	kvNode, ok := group.Field(0).(*schema.GroupNode)
	if !ok {
		return codecerrors.New(codecerrors.ErrorTypeInternal,
			"map without key_value group").WithFieldPath(path)
	}
	valueNode := kvNode.Field(1)

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rc.StartGroup()
	if len(keys) > 0 {
		rc.StartField(mapEntryGroupName, 0)
		for _, k := range keys {
			entry := m[k]
			rc.StartGroup()
			rc.StartField(mapKeyName, 0)
			rc.AddBinary([]byte(k))
			rc.EndField(mapKeyName, 0)
			rc.StartField(mapValueName, 1)
			if entry == nil {
				if !valueNullable {
					return codecerrors.New(codecerrors.ErrorTypeValue,
						"null value for required map entry").
						WithFieldPath(path).WithDetail("key", k)
				}
			} else if err := w.writeNonNullValue(valueNonNull, valueNode, entry, rc, path); err != nil {
				return err
			}
			rc.EndField(mapValueName, 1)
			rc.EndGroup()
		}
		rc.EndField(mapEntryGroupName, 0)
	}
	rc.EndGroup()
	return nil
}

// writeLeaf emits one primitive value, routing byte-shaped logical types
// through the conversion registry first. A registry miss passes the value
// through untouched.
func (w *RecordWriter) writeLeaf(s *avro.Schema, v interface{},
	rc parquetio.RecordConsumer, path []string) error {
	if s.Logical != nil && (s.Type == avro.TypeBytes || s.Type == avro.TypeFixed) {
		if conv, ok := w.registry.Lookup(s.Logical.Name); ok {
			raw, err := conv.ToPhysical(v, s)
			if err != nil {
				return codecerrors.Wrap(err, codecerrors.ErrorTypeValue,
					"logical type conversion failed").WithFieldPath(path)
			}
			rc.AddBinary(raw)
			return nil
		}
	}

	switch s.Type {
	case avro.TypeBoolean:
		b, ok := v.(bool)
		if !ok {
			return w.typeMismatch(s, v, path)
		}
		rc.AddBoolean(b)
	case avro.TypeInt:
		switch n := v.(type) {
		case int32:
			rc.AddInt32(n)
		case int:
			if n < math.MinInt32 || n > math.MaxInt32 {
				return codecerrors.Newf(codecerrors.ErrorTypeValue,
					"value %d overflows int", n).WithFieldPath(path)
			}
			rc.AddInt32(int32(n))
		default:
			return w.typeMismatch(s, v, path)
		}
	case avro.TypeLong:
		switch n := v.(type) {
		case int64:
			rc.AddInt64(n)
		case int:
			rc.AddInt64(int64(n))
		case int32:
			rc.AddInt64(int64(n))
		default:
			return w.typeMismatch(s, v, path)
		}
	case avro.TypeFloat:
		switch n := v.(type) {
		case float32:
			rc.AddFloat32(n)
		case float64:
			rc.AddFloat32(float32(n))
		default:
			return w.typeMismatch(s, v, path)
		}
	case avro.TypeDouble:
		switch n := v.(type) {
		case float64:
			rc.AddFloat64(n)
		case float32:
			rc.AddFloat64(float64(n))
		default:
			return w.typeMismatch(s, v, path)
		}
	case avro.TypeBytes:
		b, ok := v.([]byte)
		if !ok {
			return w.typeMismatch(s, v, path)
		}
		rc.AddBinary(b)
	case avro.TypeString:
		switch str := v.(type) {
		case string:
			rc.AddBinary([]byte(str))
		case avro.Utf8:
			rc.AddBinary([]byte(str))
		default:
			return w.typeMismatch(s, v, path)
		}
	case avro.TypeEnum:
		// Always the symbol's string form; compatibility mode only changes
		// what the read side materializes.
		var symbol string
		switch e := v.(type) {
		case avro.EnumSymbol:
			symbol = e.Symbol
		case *avro.EnumSymbol:
			symbol = e.Symbol
		case string:
			symbol = e
		case avro.Utf8:
			symbol = string(e)
		default:
			return w.typeMismatch(s, v, path)
		}
		if s.EnumIndex(symbol) < 0 {
			return codecerrors.Newf(codecerrors.ErrorTypeValue,
				"%q is not a symbol of enum %s", symbol, s.Name).WithFieldPath(path)
		}
		rc.AddBinary([]byte(symbol))
	case avro.TypeFixed:
		var raw []byte
		switch f := v.(type) {
		case *avro.Fixed:
			raw = f.Bytes
		case []byte:
			raw = f
		default:
			return w.typeMismatch(s, v, path)
		}
		if len(raw) != s.Size {
			return codecerrors.Newf(codecerrors.ErrorTypeValue,
				"fixed %s expects %d bytes, got %d", s.Name, s.Size, len(raw)).
				WithFieldPath(path)
		}
		rc.AddBinary(raw)
	default:
		return codecerrors.Newf(codecerrors.ErrorTypeInternal,
			"unexpected leaf type %s", s.Type).WithFieldPath(path)
	}
	return nil
}

func (w *RecordWriter) typeMismatch(s *avro.Schema, v interface{}, path []string) error {
	return codecerrors.Newf(codecerrors.ErrorTypeValue,
		"value of type %T does not satisfy schema %s", v, s).WithFieldPath(path)
}

func asSlice(v interface{}) ([]interface{}, error) {
	switch arr := v.(type) {
	case []interface{}:
		return arr, nil
	case *avro.Array:
		return arr.Items, nil
	default:
		return nil, codecerrors.Newf(codecerrors.ErrorTypeValue,
			"value of type %T is not an array", v)
	}
}
