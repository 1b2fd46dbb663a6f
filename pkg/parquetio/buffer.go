package parquetio

import "fmt"

type eventOp int

const (
	opStartField eventOp = iota
	opEndField
	opStartGroup
	opEndGroup
	opValue
)

type event struct {
	op    eventOp
	name  string
	index int
	value Value
}

// EventBuffer is an in-memory RecordConsumer with per-record staging: events
// become part of a committed record only when EndMessage arrives, so a write
// aborted mid-record leaves no partial record behind. Committed records can
// be replayed into a converter tree with ReplayRecord.
type EventBuffer struct {
	records [][]event
	staging []event
	open    bool
}

// NewEventBuffer returns an empty buffer.
func NewEventBuffer() *EventBuffer {
	return &EventBuffer{}
}

// NumRecords returns the number of committed records.
func (b *EventBuffer) NumRecords() int { return len(b.records) }

// Abort discards the in-progress record, if any.
func (b *EventBuffer) Abort() {
	b.staging = nil
	b.open = false
}

func (b *EventBuffer) StartMessage() {
	b.staging = b.staging[:0]
	b.open = true
}

func (b *EventBuffer) EndMessage() {
	if !b.open {
		return
	}
	committed := make([]event, len(b.staging))
	copy(committed, b.staging)
	b.records = append(b.records, committed)
	b.staging = b.staging[:0]
	b.open = false
}

func (b *EventBuffer) StartField(name string, index int) {
	b.push(event{op: opStartField, name: name, index: index})
}

func (b *EventBuffer) EndField(name string, index int) {
	b.push(event{op: opEndField, name: name, index: index})
}

func (b *EventBuffer) StartGroup()          { b.push(event{op: opStartGroup}) }
func (b *EventBuffer) EndGroup()            { b.push(event{op: opEndGroup}) }
func (b *EventBuffer) AddBoolean(v bool)    { b.push(event{op: opValue, value: BooleanValue(v)}) }
func (b *EventBuffer) AddInt32(v int32)     { b.push(event{op: opValue, value: Int32Value(v)}) }
func (b *EventBuffer) AddInt64(v int64)     { b.push(event{op: opValue, value: Int64Value(v)}) }
func (b *EventBuffer) AddFloat32(v float32) { b.push(event{op: opValue, value: Float32Value(v)}) }
func (b *EventBuffer) AddFloat64(v float64) { b.push(event{op: opValue, value: Float64Value(v)}) }
func (b *EventBuffer) AddBinary(v []byte)   { b.push(event{op: opValue, value: ByteArrayValue(v)}) }

func (b *EventBuffer) push(ev event) {
	if !b.open {
		return
	}
	b.staging = append(b.staging, ev)
}

// ReplayRecord walks committed record i into the given converter tree root,
// bracketing with root.Start and root.End. The caller is responsible for
// resetting the tree before each record.
func (b *EventBuffer) ReplayRecord(i int, root GroupReceiver) error {
	if i < 0 || i >= len(b.records) {
		return fmt.Errorf("record %d out of range (%d committed)", i, len(b.records))
	}

	type frame struct {
		group GroupReceiver
		cur   Receiver
	}
	stack := []frame{{group: root}}
	root.Start()

	for _, ev := range b.records[i] {
		top := &stack[len(stack)-1]
		switch ev.op {
		case opStartField:
			child, err := top.group.Child(ev.index)
			if err != nil {
				return err
			}
			top.cur = child
		case opEndField:
			top.cur = nil
		case opValue:
			vr, ok := top.cur.(ValueReceiver)
			if !ok {
				return fmt.Errorf("primitive value delivered to non-leaf converter (%T)", top.cur)
			}
			if err := vr.AddValue(ev.value); err != nil {
				return err
			}
		case opStartGroup:
			gr, ok := top.cur.(GroupReceiver)
			if !ok {
				return fmt.Errorf("group event delivered to non-group converter (%T)", top.cur)
			}
			gr.Start()
			stack = append(stack, frame{group: gr})
		case opEndGroup:
			if len(stack) == 1 {
				return fmt.Errorf("unbalanced group events")
			}
			popped := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if err := popped.group.End(); err != nil {
				return err
			}
		}
	}

	if len(stack) != 1 {
		return fmt.Errorf("record %d ended with %d unclosed groups", i, len(stack)-1)
	}
	return root.End()
}
