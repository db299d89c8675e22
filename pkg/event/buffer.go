package event

import "sync"

// DefaultBufferCapacity is the record cap used when no capacity is configured.
const DefaultBufferCapacity = 100

// Buffer retains the most recent records up to a fixed capacity, evicting the
// oldest first. The cap bounds memory only; emission itself is never rejected
// or throttled. Safe for concurrent use.
type Buffer struct {
	mu       sync.RWMutex
	records  []*Record
	capacity int
}

// NewBuffer creates a buffer holding at most capacity records. Non-positive
// capacities fall back to DefaultBufferCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}
	return &Buffer{
		records:  make([]*Record, 0, capacity),
		capacity: capacity,
	}
}

// Emit appends rec, evicting the oldest record if the buffer is full.
func (b *Buffer) Emit(rec *Record) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for len(b.records) >= b.capacity {
		b.records = b.records[1:]
	}
	b.records = append(b.records, rec)
}

// Records returns a snapshot of the buffered records, oldest first.
func (b *Buffer) Records() []*Record {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]*Record, len(b.records))
	copy(out, b.records)
	return out
}

// Latest returns up to count of the most recent records, oldest first.
func (b *Buffer) Latest(count int) []*Record {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if count <= 0 || len(b.records) == 0 {
		return nil
	}
	start := len(b.records) - count
	if start < 0 {
		start = 0
	}
	out := make([]*Record, len(b.records)-start)
	copy(out, b.records[start:])
	return out
}

// Len returns the current number of buffered records.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.records)
}

// Capacity returns the current record cap.
func (b *Buffer) Capacity() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.capacity
}

// SetCapacity changes the record cap, evicting oldest records if the buffer
// already holds more than the new cap. Non-positive values fall back to
// DefaultBufferCapacity.
func (b *Buffer) SetCapacity(capacity int) {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.capacity = capacity
	if excess := len(b.records) - capacity; excess > 0 {
		b.records = append([]*Record(nil), b.records[excess:]...)
	}
}

// Clear removes all buffered records.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = b.records[:0]
}

var _ Emitter = (*Buffer)(nil)
