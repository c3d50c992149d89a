package control

import "math"

// MotionSink receives flushed pointer motion.
type MotionSink interface {
	Move(dx, dy int)
	Abs(pos AbsPos)
}

// Motion buffers pointer motion between flush ticks.
//
// Relative deltas accumulate until the next flush and saturate at the int32 range
// instead of wrapping. The absolute position is last-write-wins.
type Motion struct {
	dx      int
	dy      int
	abs     AbsPos
	changed bool
}

// NewMotion returns an empty motion buffer.
func NewMotion() *Motion {
	return &Motion{}
}

// RecordRelative adds a relative delta to the buffer.
func (m *Motion) RecordRelative(dx, dy int) {
	m.dx = saturatingAdd(m.dx, dx)
	m.dy = saturatingAdd(m.dy, dy)
}

// RecordAbsolute stores the latest absolute position and marks it for the next flush.
func (m *Motion) RecordAbsolute(pos AbsPos) {
	m.abs = pos
	m.changed = true
}

// Pending returns the buffered relative delta and whether an absolute position is waiting.
func (m *Motion) Pending() (dx, dy int, abs AbsPos, changed bool) {
	return m.dx, m.dy, m.abs, m.changed
}

// Flush drains the buffer into sink. The relative and absolute channels are independent:
// either, both or neither may be emitted. State is reset before the sink is called.
func (m *Motion) Flush(sink MotionSink) {
	if m.dx != 0 || m.dy != 0 {
		dx, dy := m.dx, m.dy
		m.dx, m.dy = 0, 0
		sink.Move(dx, dy)
	}
	if m.changed {
		m.changed = false
		sink.Abs(m.abs)
	}
}

// Reset discards any buffered motion.
func (m *Motion) Reset() {
	m.dx, m.dy = 0, 0
	m.changed = false
}

// saturatingAdd adds b to a, clamping the result to the int32 range.
func saturatingAdd(a, b int) int {
	sum := int64(a) + int64(b)
	if sum > math.MaxInt32 {
		return math.MaxInt32
	}
	if sum < math.MinInt32 {
		return math.MinInt32
	}
	return int(sum)
}
