// Package event defines the records the interception pipeline emits and the
// sink interfaces that consume them.
package event

import (
	"net/http"
	"time"
)

// Phase marks where in its lifecycle a call was when the record was taken.
type Phase string

const (
	// PhasePending is emitted once per admitted call, just before the real
	// transport runs. Status and duration are absent.
	PhasePending Phase = "pending"
	// PhaseComplete is emitted when the real transport returned a response,
	// even if reading its body later failed (see Record.Error).
	PhaseComplete Phase = "complete"
	// PhaseFailed is emitted when the real transport itself errored. No
	// status is available.
	PhaseFailed Phase = "failed"
)

// Record is an immutable snapshot of one intercepted call. Every admitted
// call produces a pending record followed by exactly one terminal record
// (complete or failed) sharing the same ID. Sinks must not mutate records.
type Record struct {
	ID              string      `json:"id"`
	Phase           Phase       `json:"phase"`
	Timestamp       time.Time   `json:"timestamp"`
	Method          string      `json:"method"`
	URL             string      `json:"url"`
	Endpoint        string      `json:"endpoint"`
	CaptureID       string      `json:"captureId,omitempty"`
	RequestHeaders  http.Header `json:"requestHeaders,omitempty"`
	RequestBody     any         `json:"requestBody,omitempty"`
	Status          int         `json:"status,omitempty"`
	ResponseHeaders http.Header `json:"responseHeaders,omitempty"`
	ResponseBody    any         `json:"responseBody,omitempty"`
	DurationMs      int64       `json:"durationMs,omitempty"`
	Error           string      `json:"error,omitempty"`
}

// Terminal reports whether the record closes its call's lifecycle.
func (r *Record) Terminal() bool {
	return r.Phase == PhaseComplete || r.Phase == PhaseFailed
}
