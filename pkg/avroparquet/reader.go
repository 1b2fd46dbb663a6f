package avroparquet

import (
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/schema"
	"go.uber.org/zap"

	"github.com/mescobar2016/parquet-mr/pkg/avro"
	"github.com/mescobar2016/parquet-mr/pkg/codecerrors"
	"github.com/mescobar2016/parquet-mr/pkg/parquetio"
)

// converterState tracks the lifecycle of one accumulating converter within a
// single top-level record: Idle until the node's bracket opens, Accumulating
// while callbacks arrive, Ready once the bracket closes.
type converterState int

const (
	stateIdle converterState = iota
	stateAccumulating
	stateReady
)

// resettable is implemented by converters that carry per-record state.
type resettable interface {
	reset()
}

// ConverterTree materializes Avro values from the tree walk an external
// column supplier drives through parquetio.GroupReceiver callbacks. One tree
// is bound to one open read stream and accumulates one top-level record at a
// time: Reset, replay the record's events into Root, Materialize.
//
// In current compatibility the tree is built against the Avro schema and
// yields schema-aware values (*avro.Record, *avro.Array, avro.Utf8,
// avro.EnumSymbol). In legacy compatibility the Avro schema is derived from
// the physical schema alone and records come back as plain
// map[string]interface{} with plain strings and []interface{} slices.
type ConverterTree struct {
	logical  *avro.Schema
	physical *schema.Schema
	root     *recordConverter
	logger   *zap.Logger

	result interface{}
	done   bool
}

// NewConverterTree builds the converter tree for one read stream.
// Construction walks the logical and physical schemas in lockstep and fails
// with a schema error when field names or order disagree, so misassigned
// columns are impossible at read time.
func NewConverterTree(logical *avro.Schema, physical *schema.Schema, opts Options) (*ConverterTree, error) {
	if physical == nil {
		return nil, codecerrors.New(codecerrors.ErrorTypeConfig, "nil physical schema")
	}

	plain := opts.compatibility() == CompatibilityLegacy
	if plain {
		derived, err := avroSchemaFromParquet(physical)
		if err != nil {
			return nil, err
		}
		logical = derived
	} else if logical == nil || logical.Type != avro.TypeRecord {
		return nil, codecerrors.New(codecerrors.ErrorTypeConfig,
			"current compatibility requires a record schema")
	}

	t := &ConverterTree{
		logical:  logical,
		physical: physical,
		logger:   opts.logger(),
	}
	b := &treeBuilder{plain: plain, registry: opts.registry()}
	root, err := b.buildRecord(logical, physical.Root(), nil, func(v interface{}) {
		t.result = v
		t.done = true
	})
	if err != nil {
		return nil, err
	}
	t.root = root

	t.logger.Debug("built converter tree",
		zap.String("record", logical.Name),
		zap.Bool("legacy", plain),
		zap.Int("fields", len(logical.Fields)))
	return t, nil
}

// AvroSchema returns the schema materialized values follow. In legacy
// compatibility this is the schema derived from the physical layout.
func (t *ConverterTree) AvroSchema() *avro.Schema { return t.logical }

// Root is the receiver the external tree walk drives for each record.
func (t *ConverterTree) Root() parquetio.GroupReceiver { return t.root }

// Reset returns every converter to Idle. Call it before replaying each
// top-level record.
func (t *ConverterTree) Reset() {
	t.result = nil
	t.done = false
	t.root.reset()
}

// Materialize returns the accumulated record. From Ready it returns the
// record the last replay built; from Idle it resolves every field to its
// default, which is what an entirely empty record bracket would produce;
// from mid-record Accumulating it fails.
func (t *ConverterTree) Materialize() (interface{}, error) {
	if t.done {
		return t.result, nil
	}
	if t.root.state == stateAccumulating {
		return nil, codecerrors.New(codecerrors.ErrorTypeInternal,
			"record is still accumulating")
	}
	return t.root.materialize()
}

// treeBuilder walks the logical and physical schemas in lockstep and wires
// up the converter nodes. plain selects legacy value shapes.
type treeBuilder struct {
	plain    bool
	registry *ConversionRegistry
}

func (b *treeBuilder) buildRecord(s *avro.Schema, g *schema.GroupNode,
	path []string, accept func(interface{})) (*recordConverter, error) {
	if g.NumFields() != len(s.Fields) {
		return nil, codecerrors.Newf(codecerrors.ErrorTypeSchema,
			"record %s declares %d fields but the physical group has %d",
			s.Name, len(s.Fields), g.NumFields()).WithFieldPath(path)
	}

	rc := &recordConverter{
		schema:   s,
		plain:    b.plain,
		accept:   accept,
		children: make([]parquetio.Receiver, len(s.Fields)),
		values:   make([]interface{}, len(s.Fields)),
		set:      make([]bool, len(s.Fields)),
	}
	for i, f := range s.Fields {
		node := g.Field(i)
		if node.Name() != f.Name {
			return nil, codecerrors.Newf(codecerrors.ErrorTypeSchema,
				"field %d is %q in the record schema but %q in the physical schema",
				i, f.Name, node.Name()).WithFieldPath(path)
		}
		i := i
		child, err := b.buildField(f.Schema, node, childPath(path, f.Name), func(v interface{}) {
			rc.values[i] = v
			rc.set[i] = true
		})
		if err != nil {
			return nil, err
		}
		rc.children[i] = child
	}
	return rc, nil
}

// buildField peels the ["null", T] union, if any, and builds the converter
// for the non-null branch. Presence of the optional is whatever the branch
// converter reports; an absent subtree simply leaves the record slot unset.
func (b *treeBuilder) buildField(s *avro.Schema, node schema.Node,
	path []string, accept func(interface{})) (parquetio.Receiver, error) {
	if s.Type == avro.TypeUnion {
		nonNull := s.NonNull()
		if nonNull == nil {
			return nil, codecerrors.New(codecerrors.ErrorTypeSchema,
				"unions other than [\"null\", type] are not supported").WithFieldPath(path)
		}
		s = nonNull
	}
	return b.buildValue(s, node, path, accept)
}

func (b *treeBuilder) buildValue(s *avro.Schema, node schema.Node,
	path []string, accept func(interface{})) (parquetio.Receiver, error) {
	switch s.Type {
	case avro.TypeRecord:
		g, ok := node.(*schema.GroupNode)
		if !ok {
			return nil, codecerrors.New(codecerrors.ErrorTypeSchema,
				"record schema mapped to a primitive column").WithFieldPath(path)
		}
		return b.buildRecord(s, g, path, accept)
	case avro.TypeArray:
		g, ok := node.(*schema.GroupNode)
		if !ok {
			return nil, codecerrors.New(codecerrors.ErrorTypeSchema,
				"array schema mapped to a primitive column").WithFieldPath(path)
		}
		return b.buildArray(s, g, path, accept)
	case avro.TypeMap:
		g, ok := node.(*schema.GroupNode)
		if !ok {
			return nil, codecerrors.New(codecerrors.ErrorTypeSchema,
				"map schema mapped to a primitive column").WithFieldPath(path)
		}
		return b.buildMap(s, g, path, accept)
	default:
		return b.buildLeaf(s, node, path, accept)
	}
}

// buildArray handles both physical list shapes. The physical schema decides
// which one the data uses; the Avro schema only decides the element type.
func (b *treeBuilder) buildArray(s *avro.Schema, g *schema.GroupNode,
	path []string, accept func(interface{})) (parquetio.Receiver, error) {
	if g.NumFields() != 1 {
		return nil, codecerrors.New(codecerrors.ErrorTypeSchema,
			"list group must contain exactly one repeated field").WithFieldPath(path)
	}
	repeated := g.Field(0)
	if repeated.RepetitionType() != parquet.Repetitions.Repeated {
		return nil, codecerrors.New(codecerrors.ErrorTypeSchema,
			"list group child must be repeated").WithFieldPath(path)
	}

	elemSchema := s.Items
	elemNonNull := elemSchema.NonNull()
	if elemNonNull == nil {
		return nil, codecerrors.New(codecerrors.ErrorTypeSchema,
			"unions other than [\"null\", type] are not supported").WithFieldPath(path)
	}

	ac := &arrayConverter{schema: s, plain: b.plain, accept: accept}

	if isElementNode(repeated, g.Name()) {
		// 2-level: the repeated node is the element, so nullability has no
		// physical slot.
		if elemSchema.IsNullable() {
			return nil, codecerrors.New(codecerrors.ErrorTypeSchema,
				"the 2-level list encoding cannot represent nullable array elements").
				WithFieldPath(path)
		}
		elem, err := b.buildValue(elemNonNull, repeated,
			childPath(path, repeated.Name()), ac.append)
		if err != nil {
			return nil, err
		}
		ac.child = elem
		return ac, nil
	}

	elementNode := repeated.(*schema.GroupNode).Field(0)
	entry := &listEntryConverter{parent: ac}
	elemAccept := func(v interface{}) {
		entry.pending = v
	}

	elem, err := b.buildListElement(elemNonNull, elementNode,
		childPath(path, listElementName), elemAccept)
	if err != nil {
		return nil, err
	}
	entry.element = elem
	ac.child = entry
	return ac, nil
}

// buildListElement unwraps the synthetic one-field record that
// AddListElementRecords puts around primitive elements, so the materialized
// array holds the primitive itself.
func (b *treeBuilder) buildListElement(s *avro.Schema, node schema.Node,
	path []string, accept func(interface{})) (parquetio.Receiver, error) {
	g, isGroup := node.(*schema.GroupNode)
	if isGroup && s.Type != avro.TypeRecord && s.Type != avro.TypeArray && s.Type != avro.TypeMap {
		if g.NumFields() != 1 {
			return nil, codecerrors.New(codecerrors.ErrorTypeSchema,
				"element wrapper group must contain exactly one field").WithFieldPath(path)
		}
		w := &elementWrapperConverter{accept: accept}
		inner, err := b.buildValue(s, g.Field(0), path, func(v interface{}) {
			w.pending = v
		})
		if err != nil {
			return nil, err
		}
		w.inner = inner
		return w, nil
	}
	return b.buildValue(s, node, path, accept)
}

func (b *treeBuilder) buildMap(s *avro.Schema, g *schema.GroupNode,
	path []string, accept func(interface{})) (parquetio.Receiver, error) {
	if g.NumFields() != 1 {
		return nil, codecerrors.New(codecerrors.ErrorTypeSchema,
			"map group must contain exactly one repeated field").WithFieldPath(path)
	}
	kv, ok := g.Field(0).(*schema.GroupNode)
	if !ok || kv.RepetitionType() != parquet.Repetitions.Repeated || kv.NumFields() != 2 {
		return nil, codecerrors.New(codecerrors.ErrorTypeSchema,
			"map group child must be a repeated two-field group").WithFieldPath(path)
	}

	mc := &mapConverter{accept: accept}
	entry := &kvConverter{parent: mc, path: childPath(path, mapEntryGroupName)}
	keyPath := childPath(path, mapKeyName)
	entry.key = &leafConverter{
		path: keyPath,
		convert: func(v parquetio.Value) (interface{}, error) {
			if v.Kind != parquetio.KindByteArray {
				return nil, codecerrors.Newf(codecerrors.ErrorTypeValue,
					"expected a string map key, got %s", v.Kind).WithFieldPath(keyPath)
			}
			return string(v.Bytes), nil
		},
		accept: func(v interface{}) {
			entry.pendingKey = v.(string)
			entry.keySeen = true
		},
	}
	value, err := b.buildField(s.Values, kv.Field(1),
		childPath(path, mapValueName), func(v interface{}) {
			entry.pendingValue = v
		})
	if err != nil {
		return nil, err
	}
	entry.value = value
	mc.kv = entry
	return mc, nil
}

// buildLeaf validates the physical column shape eagerly and compiles the
// value conversion into a closure, so the per-value hot path is one switch
// plus one call.
func (b *treeBuilder) buildLeaf(s *avro.Schema, node schema.Node,
	path []string, accept func(interface{})) (parquetio.Receiver, error) {
	p, ok := node.(*schema.PrimitiveNode)
	if !ok {
		return nil, codecerrors.Newf(codecerrors.ErrorTypeSchema,
			"%s schema mapped to a group", s.Type).WithFieldPath(path)
	}
	if err := checkPhysicalType(s, p, path); err != nil {
		return nil, err
	}

	fieldPath := append([]string(nil), path...)
	convert, err := b.leafConversion(s, fieldPath)
	if err != nil {
		return nil, err
	}
	return &leafConverter{convert: convert, accept: accept, path: fieldPath}, nil
}

func (b *treeBuilder) leafConversion(s *avro.Schema, path []string) (func(parquetio.Value) (interface{}, error), error) {
	if s.Logical != nil && (s.Type == avro.TypeBytes || s.Type == avro.TypeFixed) {
		if conv, ok := b.registry.Lookup(s.Logical.Name); ok {
			return func(v parquetio.Value) (interface{}, error) {
				if v.Kind != parquetio.KindByteArray {
					return nil, kindMismatch(s, v, path)
				}
				out, err := conv.FromPhysical(v.Bytes, s)
				if err != nil {
					return nil, codecerrors.Wrap(err, codecerrors.ErrorTypeConversion,
						"logical type conversion failed").WithFieldPath(path)
				}
				return out, nil
			}, nil
		}
	}

	switch s.Type {
	case avro.TypeBoolean:
		return func(v parquetio.Value) (interface{}, error) {
			if v.Kind != parquetio.KindBoolean {
				return nil, kindMismatch(s, v, path)
			}
			return v.Bool, nil
		}, nil
	case avro.TypeInt:
		return func(v parquetio.Value) (interface{}, error) {
			if v.Kind != parquetio.KindInt32 {
				return nil, kindMismatch(s, v, path)
			}
			return v.I32, nil
		}, nil
	case avro.TypeLong:
		return func(v parquetio.Value) (interface{}, error) {
			if v.Kind != parquetio.KindInt64 {
				return nil, kindMismatch(s, v, path)
			}
			return v.I64, nil
		}, nil
	case avro.TypeFloat:
		return func(v parquetio.Value) (interface{}, error) {
			if v.Kind != parquetio.KindFloat32 {
				return nil, kindMismatch(s, v, path)
			}
			return v.F32, nil
		}, nil
	case avro.TypeDouble:
		return func(v parquetio.Value) (interface{}, error) {
			if v.Kind != parquetio.KindFloat64 {
				return nil, kindMismatch(s, v, path)
			}
			return v.F64, nil
		}, nil
	case avro.TypeBytes:
		return func(v parquetio.Value) (interface{}, error) {
			if v.Kind != parquetio.KindByteArray {
				return nil, kindMismatch(s, v, path)
			}
			return append([]byte(nil), v.Bytes...), nil
		}, nil
	case avro.TypeString:
		plain := b.plain
		return func(v parquetio.Value) (interface{}, error) {
			if v.Kind != parquetio.KindByteArray {
				return nil, kindMismatch(s, v, path)
			}
			if plain {
				return string(v.Bytes), nil
			}
			return avro.Utf8(v.Bytes), nil
		}, nil
	case avro.TypeEnum:
		return func(v parquetio.Value) (interface{}, error) {
			if v.Kind != parquetio.KindByteArray {
				return nil, kindMismatch(s, v, path)
			}
			symbol := string(v.Bytes)
			if s.EnumIndex(symbol) < 0 {
				return nil, codecerrors.Newf(codecerrors.ErrorTypeValue,
					"%q is not a symbol of enum %s", symbol, s.Name).WithFieldPath(path)
			}
			return avro.EnumSymbol{Schema: s, Symbol: symbol}, nil
		}, nil
	case avro.TypeFixed:
		return func(v parquetio.Value) (interface{}, error) {
			if v.Kind != parquetio.KindByteArray {
				return nil, kindMismatch(s, v, path)
			}
			f, err := avro.NewFixed(s, v.Bytes)
			if err != nil {
				return nil, codecerrors.Wrap(err, codecerrors.ErrorTypeValue,
					"malformed fixed value").WithFieldPath(path)
			}
			return f, nil
		}, nil
	default:
		return nil, codecerrors.Newf(codecerrors.ErrorTypeSchema,
			"unsupported leaf type %s", s.Type).WithFieldPath(path)
	}
}

// checkPhysicalType rejects logical/physical column shape disagreements at
// build time rather than on the millionth value.
func checkPhysicalType(s *avro.Schema, p *schema.PrimitiveNode, path []string) error {
	var want parquet.Type
	switch s.Type {
	case avro.TypeBoolean:
		want = parquet.Types.Boolean
	case avro.TypeInt:
		want = parquet.Types.Int32
	case avro.TypeLong:
		want = parquet.Types.Int64
	case avro.TypeFloat:
		want = parquet.Types.Float
	case avro.TypeDouble:
		want = parquet.Types.Double
	case avro.TypeBytes, avro.TypeString, avro.TypeEnum:
		want = parquet.Types.ByteArray
	case avro.TypeFixed:
		want = parquet.Types.FixedLenByteArray
		if p.PhysicalType() == want && p.TypeLength() != s.Size {
			return codecerrors.Newf(codecerrors.ErrorTypeSchema,
				"fixed %s declares %d bytes but the column stores %d",
				s.Name, s.Size, p.TypeLength()).WithFieldPath(path)
		}
	default:
		return codecerrors.Newf(codecerrors.ErrorTypeSchema,
			"unsupported leaf type %s", s.Type).WithFieldPath(path)
	}
	if p.PhysicalType() != want {
		return codecerrors.Newf(codecerrors.ErrorTypeSchema,
			"%s schema mapped to %s column", s.Type, p.PhysicalType()).WithFieldPath(path)
	}
	return nil
}

func kindMismatch(s *avro.Schema, v parquetio.Value, path []string) error {
	return codecerrors.Newf(codecerrors.ErrorTypeValue,
		"expected a %s value, got %s", s.Type, v.Kind).WithFieldPath(path)
}

func childPath(path []string, name string) []string {
	out := make([]string, 0, len(path)+1)
	out = append(out, path...)
	return append(out, name)
}

// recordConverter accumulates one record's field slots. A slot is present
// once its child converter delivered a value; unset slots resolve through
// the field's default-or-null rule when the bracket closes.
type recordConverter struct {
	schema   *avro.Schema
	children []parquetio.Receiver
	values   []interface{}
	set      []bool
	state    converterState
	plain    bool
	accept   func(interface{})
}

func (r *recordConverter) Start() {
	r.state = stateAccumulating
	for i := range r.values {
		r.values[i] = nil
		r.set[i] = false
	}
}

func (r *recordConverter) Child(index int) (parquetio.Receiver, error) {
	if index < 0 || index >= len(r.children) {
		return nil, codecerrors.Newf(codecerrors.ErrorTypeInternal,
			"field index %d out of range for record %s", index, r.schema.Name)
	}
	return r.children[index], nil
}

func (r *recordConverter) End() error {
	v, err := r.materialize()
	if err != nil {
		return err
	}
	r.state = stateReady
	r.accept(v)
	return nil
}

func (r *recordConverter) materialize() (interface{}, error) {
	if r.plain {
		out := make(map[string]interface{}, len(r.schema.Fields))
		for i, f := range r.schema.Fields {
			v, err := r.slotValue(i, f)
			if err != nil {
				return nil, err
			}
			out[f.Name] = v
		}
		return out, nil
	}

	rec := avro.NewRecord(r.schema)
	for i, f := range r.schema.Fields {
		v, err := r.slotValue(i, f)
		if err != nil {
			return nil, err
		}
		rec.Set(f.Name, v)
	}
	return rec, nil
}

func (r *recordConverter) slotValue(i int, f *avro.Field) (interface{}, error) {
	if r.set[i] {
		return r.values[i], nil
	}
	v, err := f.DefaultValue()
	if err != nil {
		return nil, codecerrors.Wrap(err, codecerrors.ErrorTypeValue,
			"record "+r.schema.Name+" is missing a required field")
	}
	return v, nil
}

func (r *recordConverter) reset() {
	r.state = stateIdle
	for i := range r.values {
		r.values[i] = nil
		r.set[i] = false
	}
	for _, c := range r.children {
		if rs, ok := c.(resettable); ok {
			rs.reset()
		}
	}
}

// arrayConverter accumulates one array. The bracket opening replaces the
// slot with an empty sequence, so an empty array and an absent optional
// array stay distinct.
type arrayConverter struct {
	schema *avro.Schema
	plain  bool
	child  parquetio.Receiver
	items  []interface{}
	state  converterState
	accept func(interface{})
}

func (a *arrayConverter) Start() {
	a.state = stateAccumulating
	a.items = make([]interface{}, 0)
}

func (a *arrayConverter) Child(index int) (parquetio.Receiver, error) {
	if index != 0 {
		return nil, codecerrors.Newf(codecerrors.ErrorTypeInternal,
			"list group has no field %d", index)
	}
	return a.child, nil
}

func (a *arrayConverter) End() error {
	a.state = stateReady
	if a.plain {
		a.accept(a.items)
		return nil
	}
	a.accept(&avro.Array{Schema: a.schema, Items: a.items})
	return nil
}

func (a *arrayConverter) append(v interface{}) {
	a.items = append(a.items, v)
}

func (a *arrayConverter) reset() {
	a.state = stateIdle
	a.items = nil
	if rs, ok := a.child.(resettable); ok {
		rs.reset()
	}
}

// listEntryConverter is the repeated intermediate group of the 3-level
// encoding: one occurrence per element, an empty occurrence meaning a null
// element.
type listEntryConverter struct {
	parent  *arrayConverter
	element parquetio.Receiver
	pending interface{}
}

func (e *listEntryConverter) Start() {
	e.pending = nil
}

func (e *listEntryConverter) Child(index int) (parquetio.Receiver, error) {
	if index != 0 {
		return nil, codecerrors.Newf(codecerrors.ErrorTypeInternal,
			"list entry group has no field %d", index)
	}
	return e.element, nil
}

func (e *listEntryConverter) End() error {
	e.parent.append(e.pending)
	return nil
}

func (e *listEntryConverter) reset() {
	e.pending = nil
	if rs, ok := e.element.(resettable); ok {
		rs.reset()
	}
}

// elementWrapperConverter strips the synthetic one-field record that
// AddListElementRecords wraps around primitive list elements.
type elementWrapperConverter struct {
	inner   parquetio.Receiver
	pending interface{}
	accept  func(interface{})
}

func (w *elementWrapperConverter) Start() {
	w.pending = nil
}

func (w *elementWrapperConverter) Child(index int) (parquetio.Receiver, error) {
	if index != 0 {
		return nil, codecerrors.Newf(codecerrors.ErrorTypeInternal,
			"element wrapper group has no field %d", index)
	}
	return w.inner, nil
}

func (w *elementWrapperConverter) End() error {
	w.accept(w.pending)
	return nil
}

func (w *elementWrapperConverter) reset() {
	w.pending = nil
	if rs, ok := w.inner.(resettable); ok {
		rs.reset()
	}
}

// mapConverter accumulates one map, last write winning on duplicate keys.
// Like arrays, the open bracket makes the map empty rather than absent.
type mapConverter struct {
	kv      *kvConverter
	entries map[string]interface{}
	state   converterState
	accept  func(interface{})
}

func (m *mapConverter) Start() {
	m.state = stateAccumulating
	m.entries = make(map[string]interface{})
}

func (m *mapConverter) Child(index int) (parquetio.Receiver, error) {
	if index != 0 {
		return nil, codecerrors.Newf(codecerrors.ErrorTypeInternal,
			"map group has no field %d", index)
	}
	return m.kv, nil
}

func (m *mapConverter) End() error {
	m.state = stateReady
	m.accept(m.entries)
	return nil
}

func (m *mapConverter) put(key string, value interface{}) {
	m.entries[key] = value
}

func (m *mapConverter) reset() {
	m.state = stateIdle
	m.entries = nil
	m.kv.reset()
}

// kvConverter is one repeated key_value occurrence. The value slot staying
// untouched materializes a nil entry value, which is how optional map
// values round-trip nulls.
type kvConverter struct {
	parent       *mapConverter
	key          parquetio.Receiver
	value        parquetio.Receiver
	pendingKey   string
	keySeen      bool
	pendingValue interface{}
	path         []string
}

func (e *kvConverter) Start() {
	e.pendingKey = ""
	e.keySeen = false
	e.pendingValue = nil
}

func (e *kvConverter) Child(index int) (parquetio.Receiver, error) {
	switch index {
	case 0:
		return e.key, nil
	case 1:
		return e.value, nil
	default:
		return nil, codecerrors.Newf(codecerrors.ErrorTypeInternal,
			"key_value group has no field %d", index)
	}
}

func (e *kvConverter) End() error {
	if !e.keySeen {
		return codecerrors.New(codecerrors.ErrorTypeValue,
			"map entry without a key").WithFieldPath(e.path)
	}
	e.parent.put(e.pendingKey, e.pendingValue)
	return nil
}

func (e *kvConverter) reset() {
	e.pendingKey = ""
	e.keySeen = false
	e.pendingValue = nil
	if rs, ok := e.value.(resettable); ok {
		rs.reset()
	}
}

// leafConverter applies a compiled conversion to each incoming primitive
// and hands the result to its parent.
type leafConverter struct {
	convert func(parquetio.Value) (interface{}, error)
	accept  func(interface{})
	path    []string
}

func (l *leafConverter) AddValue(v parquetio.Value) error {
	out, err := l.convert(v)
	if err != nil {
		return err
	}
	l.accept(out)
	return nil
}

func (l *leafConverter) reset() {}
