package control

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

type sinkCall struct {
	kind string
	x    int
	y    int
}

// recordingSink captures flushed motion.
type recordingSink struct {
	calls []sinkCall
}

func (r *recordingSink) Move(dx, dy int) {
	r.calls = append(r.calls, sinkCall{kind: "move", x: dx, y: dy})
}

func (r *recordingSink) Abs(pos AbsPos) {
	r.calls = append(r.calls, sinkCall{kind: "abs", x: pos.X, y: pos.Y})
}

// TestMotion_RelativeAccumulates verifies deltas sum into a single flushed move.
func TestMotion_RelativeAccumulates(t *testing.T) {
	m := NewMotion()
	m.RecordRelative(3, -2)
	m.RecordRelative(3, -2)

	sink := &recordingSink{}
	m.Flush(sink)
	require.Equal(t, []sinkCall{{kind: "move", x: 6, y: -4}}, sink.calls)

	dx, dy, _, _ := m.Pending()
	require.Zero(t, dx)
	require.Zero(t, dy)
}

// TestMotion_EmptyFlushEmitsNothing verifies an empty buffer produces no events.
func TestMotion_EmptyFlushEmitsNothing(t *testing.T) {
	m := NewMotion()
	sink := &recordingSink{}
	m.Flush(sink)
	require.Empty(t, sink.calls)

	m.RecordRelative(4, 1)
	m.RecordRelative(-4, -1)
	m.Flush(sink)
	require.Empty(t, sink.calls)
}

// TestMotion_AbsoluteLastWriteWins verifies only the latest absolute sample is flushed once.
func TestMotion_AbsoluteLastWriteWins(t *testing.T) {
	m := NewMotion()
	m.RecordAbsolute(AbsPos{X: 1, Y: 2})
	m.RecordAbsolute(AbsPos{X: 300, Y: 400})

	sink := &recordingSink{}
	m.Flush(sink)
	m.Flush(sink)
	require.Equal(t, []sinkCall{{kind: "abs", x: 300, y: 400}}, sink.calls)
}

// TestMotion_BothChannelsIndependent verifies relative and absolute flush in the same tick.
func TestMotion_BothChannelsIndependent(t *testing.T) {
	m := NewMotion()
	m.RecordRelative(1, 1)
	m.RecordAbsolute(AbsPos{X: 5, Y: 6})

	sink := &recordingSink{}
	m.Flush(sink)
	require.Equal(t, []sinkCall{{kind: "move", x: 1, y: 1}, {kind: "abs", x: 5, y: 6}}, sink.calls)
}

// TestMotion_Saturates verifies large accumulations clamp to the int32 range.
func TestMotion_Saturates(t *testing.T) {
	m := NewMotion()
	m.RecordRelative(math.MaxInt32, math.MinInt32)
	m.RecordRelative(10, -10)
	dx, dy, _, _ := m.Pending()
	require.Equal(t, math.MaxInt32, dx)
	require.Equal(t, math.MinInt32, dy)
}

// TestMotion_Reset verifies reset drops buffered motion.
func TestMotion_Reset(t *testing.T) {
	m := NewMotion()
	m.RecordRelative(2, 2)
	m.RecordAbsolute(AbsPos{X: 1, Y: 1})
	m.Reset()

	sink := &recordingSink{}
	m.Flush(sink)
	require.Empty(t, sink.calls)
}
