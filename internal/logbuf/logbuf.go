// Package logbuf retains the most recent worker output lines for display.
package logbuf

// DefaultCapacity matches the number of worker log lines kept for the status
// surface.
const DefaultCapacity = 100

// Buffer is a capacity-bounded FIFO of log lines. Append drops the oldest
// line once the capacity is reached. Buffer is not safe for concurrent use;
// the supervisor mutates it only on the consumer goroutine.
type Buffer struct {
	capacity int
	lines    []string
}

// New constructs a buffer retaining at most capacity lines.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{capacity: capacity}
}

// Append adds a line, evicting the oldest when full.
func (b *Buffer) Append(line string) {
	if len(b.lines) == b.capacity {
		copy(b.lines, b.lines[1:])
		b.lines = b.lines[:b.capacity-1]
	}
	b.lines = append(b.lines, line)
}

// Len returns the number of retained lines.
func (b *Buffer) Len() int {
	return len(b.lines)
}

// Lines returns a copy of the retained lines, oldest first.
func (b *Buffer) Lines() []string {
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// Clear drops all retained lines.
func (b *Buffer) Clear() {
	b.lines = b.lines[:0]
}
