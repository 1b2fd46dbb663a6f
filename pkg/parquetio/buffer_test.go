package parquetio

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// walkRecorder captures the tree walk as flat call strings.
type walkRecorder struct {
	calls    *[]string
	name     string
	children map[int]Receiver
}

func newWalkRecorder(name string, calls *[]string) *walkRecorder {
	return &walkRecorder{name: name, calls: calls, children: make(map[int]Receiver)}
}

func (r *walkRecorder) Start() {
	*r.calls = append(*r.calls, r.name+".start")
}

func (r *walkRecorder) End() error {
	*r.calls = append(*r.calls, r.name+".end")
	return nil
}

func (r *walkRecorder) Child(index int) (Receiver, error) {
	c, ok := r.children[index]
	if !ok {
		return nil, fmt.Errorf("%s has no child %d", r.name, index)
	}
	return c, nil
}

type leafRecorder struct {
	calls *[]string
	name  string
}

func (l *leafRecorder) AddValue(v Value) error {
	*l.calls = append(*l.calls, fmt.Sprintf("%s.add(%s)", l.name, v.Kind))
	return nil
}

func TestEventBufferCommitSemantics(t *testing.T) {
	buf := NewEventBuffer()

	buf.StartMessage()
	buf.StartField("a", 0)
	buf.AddInt32(1)
	buf.EndField("a", 0)
	assert.Equal(t, 0, buf.NumRecords(), "uncommitted record must not be visible")

	buf.EndMessage()
	assert.Equal(t, 1, buf.NumRecords())
}

func TestEventBufferAbortDiscardsStaging(t *testing.T) {
	buf := NewEventBuffer()

	buf.StartMessage()
	buf.StartField("a", 0)
	buf.AddInt32(1)
	buf.Abort()
	buf.EndMessage()
	assert.Equal(t, 0, buf.NumRecords())

	// A fresh record is unaffected by the aborted one.
	buf.StartMessage()
	buf.StartField("a", 0)
	buf.AddInt32(2)
	buf.EndField("a", 0)
	buf.EndMessage()
	assert.Equal(t, 1, buf.NumRecords())
}

func TestEventBufferIgnoresEventsOutsideMessage(t *testing.T) {
	buf := NewEventBuffer()
	buf.AddInt32(1)
	buf.EndMessage()
	assert.Equal(t, 0, buf.NumRecords())
}

func TestReplayRecordDrivesTreeWalk(t *testing.T) {
	buf := NewEventBuffer()
	buf.StartMessage()
	buf.StartField("myint", 0)
	buf.AddInt32(7)
	buf.EndField("myint", 0)
	buf.StartField("mygroup", 1)
	buf.StartGroup()
	buf.StartField("inner", 0)
	buf.AddBinary([]byte("x"))
	buf.EndField("inner", 0)
	buf.EndGroup()
	buf.EndField("mygroup", 1)
	buf.EndMessage()

	var calls []string
	root := newWalkRecorder("root", &calls)
	group := newWalkRecorder("group", &calls)
	root.children[0] = &leafRecorder{name: "myint", calls: &calls}
	root.children[1] = group
	group.children[0] = &leafRecorder{name: "inner", calls: &calls}

	require.NoError(t, buf.ReplayRecord(0, root))
	assert.Equal(t, []string{
		"root.start",
		"myint.add(int32)",
		"group.start",
		"inner.add(byte_array)",
		"group.end",
		"root.end",
	}, calls)
}

func TestReplayRecordEmptyFieldBracket(t *testing.T) {
	buf := NewEventBuffer()
	buf.StartMessage()
	buf.StartField("opt", 0)
	buf.EndField("opt", 0)
	buf.EndMessage()

	var calls []string
	root := newWalkRecorder("root", &calls)
	root.children[0] = &leafRecorder{name: "opt", calls: &calls}

	require.NoError(t, buf.ReplayRecord(0, root))
	assert.Equal(t, []string{"root.start", "root.end"}, calls,
		"an empty field bracket must reach no converter")
}

func TestReplayRecordValueToGroupFails(t *testing.T) {
	buf := NewEventBuffer()
	buf.StartMessage()
	buf.StartField("g", 0)
	buf.AddInt32(1)
	buf.EndField("g", 0)
	buf.EndMessage()

	var calls []string
	root := newWalkRecorder("root", &calls)
	root.children[0] = newWalkRecorder("g", &calls)

	assert.Error(t, buf.ReplayRecord(0, root))
}

func TestReplayRecordUnbalancedGroups(t *testing.T) {
	buf := NewEventBuffer()
	buf.StartMessage()
	buf.StartField("g", 0)
	buf.StartGroup()
	buf.EndMessage()

	var calls []string
	root := newWalkRecorder("root", &calls)
	root.children[0] = newWalkRecorder("g", &calls)

	assert.Error(t, buf.ReplayRecord(0, root))
}

func TestReplayRecordOutOfRange(t *testing.T) {
	buf := NewEventBuffer()
	var calls []string
	assert.Error(t, buf.ReplayRecord(0, newWalkRecorder("root", &calls)))
}

func TestByteArrayValueCopies(t *testing.T) {
	src := []byte{1, 2, 3}
	v := ByteArrayValue(src)
	src[0] = 9
	assert.Equal(t, []byte{1, 2, 3}, v.Bytes)
}
