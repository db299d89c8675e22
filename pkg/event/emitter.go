package event

import "sync"

// Emitter receives the records the pipeline produces. Emit is called on the
// goroutine executing the intercepted call, so implementations should return
// quickly and must be safe for concurrent use.
type Emitter interface {
	Emit(rec *Record)
}

// ErrorReporter is an optional upgrade interface for sinks that also want
// best-effort diagnostics: capture callback failures and response-read
// failures are reported here, never surfaced to the calling application.
type ErrorReporter interface {
	ReportError(stage string, err error)
}

// EmitterFunc adapts a plain function to the Emitter interface.
type EmitterFunc func(rec *Record)

// Emit calls f.
func (f EmitterFunc) Emit(rec *Record) { f(rec) }

// Discard drops every record.
var Discard Emitter = EmitterFunc(func(*Record) {})

// Multi fans records out to several sinks in registration order. A slow or
// misbehaving sink affects the others only by running before them; Multi
// itself never filters or reorders.
type Multi struct {
	mu    sync.RWMutex
	sinks []Emitter
}

// NewMulti creates a fan-out emitter over the given sinks. Nil sinks are
// skipped.
func NewMulti(sinks ...Emitter) *Multi {
	m := &Multi{}
	for _, s := range sinks {
		m.Add(s)
	}
	return m
}

// Add registers another sink.
func (m *Multi) Add(sink Emitter) {
	if sink == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sinks = append(m.sinks, sink)
}

// Count returns the number of registered sinks.
func (m *Multi) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sinks)
}

// Emit forwards rec to every sink in registration order.
func (m *Multi) Emit(rec *Record) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sinks {
		s.Emit(rec)
	}
}

// ReportError forwards the diagnostic to every sink that implements
// ErrorReporter.
func (m *Multi) ReportError(stage string, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sinks {
		if r, ok := s.(ErrorReporter); ok {
			r.ReportError(stage, err)
		}
	}
}

// Ensure implementations satisfy interfaces at compile time.
var (
	_ Emitter       = (*Multi)(nil)
	_ ErrorReporter = (*Multi)(nil)
	_ Emitter       = EmitterFunc(nil)
)
