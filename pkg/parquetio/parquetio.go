// Package parquetio defines the contracts between the conversion engine and
// the physical Parquet container: the field-event sink driven by the write
// path and the tree-walk receivers fed by the read path. It also provides an
// in-memory EventBuffer implementing both sides, used by tests and tooling in
// place of a real file container.
package parquetio

import "fmt"

// RecordConsumer is the ordered field-event sink the write path drives.
// The expected call grammar per record is
//
//	StartMessage
//	  StartField(name, index)
//	    AddBoolean | AddInt32 | ... | AddBinary   (zero or more)
//	    StartGroup ... EndGroup                   (zero or more)
//	  EndField(name, index)
//	  ...
//	EndMessage
//
// with field index equal to the declared schema position.
type RecordConsumer interface {
	StartMessage()
	EndMessage()
	StartField(name string, index int)
	EndField(name string, index int)
	StartGroup()
	EndGroup()
	AddBoolean(v bool)
	AddInt32(v int32)
	AddInt64(v int64)
	AddFloat32(v float32)
	AddFloat64(v float64)
	AddBinary(v []byte)
}

// Kind identifies the primitive variant held by a Value.
type Kind int

const (
	KindBoolean Kind = iota
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindByteArray
)

func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat32:
		return "float"
	case KindFloat64:
		return "double"
	case KindByteArray:
		return "byte_array"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is one primitive column value, tagged by Kind.
type Value struct {
	Kind  Kind
	Bool  bool
	I32   int32
	I64   int64
	F32   float32
	F64   float64
	Bytes []byte
}

func BooleanValue(v bool) Value    { return Value{Kind: KindBoolean, Bool: v} }
func Int32Value(v int32) Value     { return Value{Kind: KindInt32, I32: v} }
func Int64Value(v int64) Value     { return Value{Kind: KindInt64, I64: v} }
func Float32Value(v float32) Value { return Value{Kind: KindFloat32, F32: v} }
func Float64Value(v float64) Value { return Value{Kind: KindFloat64, F64: v} }

// ByteArrayValue copies b so later mutation of the caller's slice cannot
// reach buffered events.
func ByteArrayValue(b []byte) Value {
	dup := make([]byte, len(b))
	copy(dup, b)
	return Value{Kind: KindByteArray, Bytes: dup}
}

// Receiver is a node of the read-side converter tree: either a ValueReceiver
// (leaf) or a GroupReceiver (group).
type Receiver interface{}

// ValueReceiver accepts leaf values for one column.
type ValueReceiver interface {
	AddValue(v Value) error
}

// GroupReceiver accepts the bracketed walk of one group. Child is addressed
// by the physical schema's positional field index. An entirely-absent
// optional subtree receives no callbacks at all.
type GroupReceiver interface {
	Start()
	End() error
	Child(index int) (Receiver, error)
}
