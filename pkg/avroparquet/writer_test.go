package avroparquet

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mescobar2016/parquet-mr/pkg/avro"
	"github.com/mescobar2016/parquet-mr/pkg/codecerrors"
	"github.com/mescobar2016/parquet-mr/pkg/parquetio"
)

// eventLog records the exact field-event sequence a write produces.
type eventLog struct {
	calls []string
}

func (l *eventLog) add(format string, args ...interface{}) {
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

func (l *eventLog) StartMessage()                 { l.add("startMessage()") }
func (l *eventLog) EndMessage()                   { l.add("endMessage()") }
func (l *eventLog) StartField(name string, i int) { l.add("startField(%s, %d)", name, i) }
func (l *eventLog) EndField(name string, i int)   { l.add("endField(%s, %d)", name, i) }
func (l *eventLog) StartGroup()                   { l.add("startGroup()") }
func (l *eventLog) EndGroup()                     { l.add("endGroup()") }
func (l *eventLog) AddBoolean(v bool)             { l.add("addBoolean(%v)", v) }
func (l *eventLog) AddInt32(v int32)              { l.add("addInt32(%d)", v) }
func (l *eventLog) AddInt64(v int64)              { l.add("addInt64(%d)", v) }
func (l *eventLog) AddFloat32(v float32)          { l.add("addFloat(%v)", v) }
func (l *eventLog) AddFloat64(v float64)          { l.add("addDouble(%v)", v) }
func (l *eventLog) AddBinary(v []byte)            { l.add("addBinary(%s)", v) }

func mustRecord(t *testing.T, s *avro.Schema, values map[string]interface{}) *avro.Record {
	t.Helper()
	b := avro.NewRecordBuilder(s)
	for k, v := range values {
		b.Set(k, v)
	}
	rec, err := b.Build()
	require.NoError(t, err)
	return rec
}

func TestWriteSimpleRecord(t *testing.T) {
	s := avro.NewRecordSchema("r",
		avro.NewField("myint", avro.NewPrimitiveSchema(avro.TypeInt)),
		avro.NewField("mystring", avro.NewPrimitiveSchema(avro.TypeString)),
	)
	w, err := NewRecordWriter(s, Options{})
	require.NoError(t, err)

	log := &eventLog{}
	rec := mustRecord(t, s, map[string]interface{}{"myint": 7, "mystring": "hello"})
	require.NoError(t, w.Write(rec, log))

	assert.Equal(t, []string{
		"startMessage()",
		"startField(myint, 0)",
		"addInt32(7)",
		"endField(myint, 0)",
		"startField(mystring, 1)",
		"addBinary(hello)",
		"endField(mystring, 1)",
		"endMessage()",
	}, log.calls)
}

func TestWriteAbsentOptionalEmitsEmptyBracket(t *testing.T) {
	s := avro.NewRecordSchema("r",
		avro.NewField("opt", avro.Optional(avro.NewPrimitiveSchema(avro.TypeInt))),
	)
	w, err := NewRecordWriter(s, Options{})
	require.NoError(t, err)

	log := &eventLog{}
	rec := mustRecord(t, s, nil)
	require.NoError(t, w.Write(rec, log))

	assert.Equal(t, []string{
		"startMessage()",
		"startField(opt, 0)",
		"endField(opt, 0)",
		"endMessage()",
	}, log.calls)
}

func TestWriteEmptyArrayBracketsTheGroup(t *testing.T) {
	s := avro.NewRecordSchema("r",
		avro.NewField("myarray", avro.NewArraySchema(avro.NewPrimitiveSchema(avro.TypeInt))),
	)
	w, err := NewRecordWriter(s, Options{})
	require.NoError(t, err)

	log := &eventLog{}
	rec := mustRecord(t, s, map[string]interface{}{"myarray": []interface{}{}})
	require.NoError(t, w.Write(rec, log))

	assert.Equal(t, []string{
		"startMessage()",
		"startField(myarray, 0)",
		"startGroup()",
		"endGroup()",
		"endField(myarray, 0)",
		"endMessage()",
	}, log.calls)
}

func TestWriteArrayElements(t *testing.T) {
	s := avro.NewRecordSchema("r",
		avro.NewField("myarray", avro.NewArraySchema(avro.NewPrimitiveSchema(avro.TypeInt))),
	)
	w, err := NewRecordWriter(s, Options{})
	require.NoError(t, err)

	log := &eventLog{}
	rec := mustRecord(t, s, map[string]interface{}{"myarray": []interface{}{1, 2}})
	require.NoError(t, w.Write(rec, log))

	assert.Equal(t, []string{
		"startMessage()",
		"startField(myarray, 0)",
		"startGroup()",
		"startField(list, 0)",
		"startGroup()",
		"startField(element, 0)",
		"addInt32(1)",
		"endField(element, 0)",
		"endGroup()",
		"startGroup()",
		"startField(element, 0)",
		"addInt32(2)",
		"endField(element, 0)",
		"endGroup()",
		"endField(list, 0)",
		"endGroup()",
		"endField(myarray, 0)",
		"endMessage()",
	}, log.calls)
}

func TestWriteNullableArrayElement(t *testing.T) {
	s := avro.NewRecordSchema("r",
		avro.NewField("a", avro.NewArraySchema(avro.Optional(avro.NewPrimitiveSchema(avro.TypeInt)))),
	)
	w, err := NewRecordWriter(s, Options{})
	require.NoError(t, err)

	log := &eventLog{}
	rec := mustRecord(t, s, map[string]interface{}{"a": []interface{}{1, nil}})
	require.NoError(t, w.Write(rec, log))

	assert.Equal(t, []string{
		"startMessage()",
		"startField(a, 0)",
		"startGroup()",
		"startField(list, 0)",
		"startGroup()",
		"startField(element, 0)",
		"addInt32(1)",
		"endField(element, 0)",
		"endGroup()",
		"startGroup()", // null element keeps its entry group, empty
		"endGroup()",
		"endField(list, 0)",
		"endGroup()",
		"endField(a, 0)",
		"endMessage()",
	}, log.calls)
}

func TestWriteNullElementUnderRequiredSchemaFails(t *testing.T) {
	s := avro.NewRecordSchema("r",
		avro.NewField("a", avro.NewArraySchema(avro.NewPrimitiveSchema(avro.TypeInt))),
	)
	w, err := NewRecordWriter(s, Options{})
	require.NoError(t, err)

	rec := mustRecord(t, s, map[string]interface{}{"a": []interface{}{nil}})
	err = w.Write(rec, &eventLog{})
	require.Error(t, err)
	assert.True(t, codecerrors.IsType(err, codecerrors.ErrorTypeValue))
}

func TestWriteOldListElements(t *testing.T) {
	s := avro.NewRecordSchema("r",
		avro.NewField("a", avro.NewArraySchema(avro.NewPrimitiveSchema(avro.TypeInt))),
	)
	w, err := NewRecordWriter(s, Options{WriteOldListStructure: true})
	require.NoError(t, err)

	log := &eventLog{}
	rec := mustRecord(t, s, map[string]interface{}{"a": []interface{}{1, 2}})
	require.NoError(t, w.Write(rec, log))

	assert.Equal(t, []string{
		"startMessage()",
		"startField(a, 0)",
		"startGroup()",
		"startField(array, 0)",
		"addInt32(1)",
		"addInt32(2)",
		"endField(array, 0)",
		"endGroup()",
		"endField(a, 0)",
		"endMessage()",
	}, log.calls)
}

func TestWriteMapSortsKeys(t *testing.T) {
	s := avro.NewRecordSchema("r",
		avro.NewField("m", avro.NewMapSchema(avro.NewPrimitiveSchema(avro.TypeInt))),
	)
	w, err := NewRecordWriter(s, Options{})
	require.NoError(t, err)

	log := &eventLog{}
	rec := mustRecord(t, s, map[string]interface{}{
		"m": map[string]interface{}{"zed": 2, "abc": 1},
	})
	require.NoError(t, w.Write(rec, log))

	assert.Equal(t, []string{
		"startMessage()",
		"startField(m, 0)",
		"startGroup()",
		"startField(key_value, 0)",
		"startGroup()",
		"startField(key, 0)",
		"addBinary(abc)",
		"endField(key, 0)",
		"startField(value, 1)",
		"addInt32(1)",
		"endField(value, 1)",
		"endGroup()",
		"startGroup()",
		"startField(key, 0)",
		"addBinary(zed)",
		"endField(key, 0)",
		"startField(value, 1)",
		"addInt32(2)",
		"endField(value, 1)",
		"endGroup()",
		"endField(key_value, 0)",
		"endGroup()",
		"endField(m, 0)",
		"endMessage()",
	}, log.calls)
}

func TestWriteMapNullValueUnderOptionalSchema(t *testing.T) {
	s := avro.NewRecordSchema("r",
		avro.NewField("m", avro.NewMapSchema(avro.Optional(avro.NewPrimitiveSchema(avro.TypeInt)))),
	)
	w, err := NewRecordWriter(s, Options{})
	require.NoError(t, err)

	log := &eventLog{}
	rec := mustRecord(t, s, map[string]interface{}{
		"m": map[string]interface{}{"k": nil},
	})
	require.NoError(t, w.Write(rec, log))

	assert.Equal(t, []string{
		"startMessage()",
		"startField(m, 0)",
		"startGroup()",
		"startField(key_value, 0)",
		"startGroup()",
		"startField(key, 0)",
		"addBinary(k)",
		"endField(key, 0)",
		"startField(value, 1)",
		"endField(value, 1)",
		"endGroup()",
		"endField(key_value, 0)",
		"endGroup()",
		"endField(m, 0)",
		"endMessage()",
	}, log.calls)
}

func TestWriteMapNullValueUnderRequiredSchemaFails(t *testing.T) {
	s := avro.NewRecordSchema("r",
		avro.NewField("m", avro.NewMapSchema(avro.NewPrimitiveSchema(avro.TypeInt))),
	)
	w, err := NewRecordWriter(s, Options{})
	require.NoError(t, err)

	buf := parquetio.NewEventBuffer()
	rec := mustRecord(t, s, map[string]interface{}{
		"m": map[string]interface{}{"k": nil},
	})
	err = w.Write(rec, buf)
	require.Error(t, err)
	assert.True(t, codecerrors.IsType(err, codecerrors.ErrorTypeValue))
	assert.Equal(t, 0, buf.NumRecords(), "aborted record must not commit")
}

func TestWriteNullForRequiredField(t *testing.T) {
	s := avro.NewRecordSchema("r",
		avro.NewField("req", avro.NewPrimitiveSchema(avro.TypeInt)),
	)
	w, err := NewRecordWriter(s, Options{})
	require.NoError(t, err)

	rec := avro.NewRecord(s)
	rec.Set("req", nil)
	err = w.Write(rec, &eventLog{})
	require.Error(t, err)
	assert.True(t, codecerrors.IsType(err, codecerrors.ErrorTypeValue))
}

func TestWriteUnknownEnumSymbol(t *testing.T) {
	s := avro.NewRecordSchema("r",
		avro.NewField("e", avro.NewEnumSchema("suit", "a", "b")),
	)
	w, err := NewRecordWriter(s, Options{})
	require.NoError(t, err)

	rec := mustRecord(t, s, map[string]interface{}{"e": "c"})
	err = w.Write(rec, &eventLog{})
	require.Error(t, err)
	assert.True(t, codecerrors.IsType(err, codecerrors.ErrorTypeValue))
}

func TestWriteLeafTypeMismatch(t *testing.T) {
	s := avro.NewRecordSchema("r",
		avro.NewField("b", avro.NewPrimitiveSchema(avro.TypeBoolean)),
	)
	w, err := NewRecordWriter(s, Options{})
	require.NoError(t, err)

	rec := mustRecord(t, s, map[string]interface{}{"b": "true"})
	err = w.Write(rec, &eventLog{})
	require.Error(t, err)
	assert.True(t, codecerrors.IsType(err, codecerrors.ErrorTypeValue))
}

func TestWriteNilRecord(t *testing.T) {
	s := avro.NewRecordSchema("r",
		avro.NewField("a", avro.NewPrimitiveSchema(avro.TypeInt)),
	)
	w, err := NewRecordWriter(s, Options{})
	require.NoError(t, err)

	err = w.Write(nil, &eventLog{})
	require.Error(t, err)
	assert.True(t, codecerrors.IsType(err, codecerrors.ErrorTypeValue))
}

func TestWriteFixedWrongSize(t *testing.T) {
	s := avro.NewRecordSchema("r",
		avro.NewField("f", avro.NewFixedSchema("pair", 2)),
	)
	w, err := NewRecordWriter(s, Options{})
	require.NoError(t, err)

	rec := mustRecord(t, s, map[string]interface{}{"f": []byte{1, 2, 3}})
	err = w.Write(rec, &eventLog{})
	require.Error(t, err)
	assert.True(t, codecerrors.IsType(err, codecerrors.ErrorTypeValue))
}
