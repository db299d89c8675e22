// Package capture holds the registry of (method, URL pattern, callback)
// registrations and the types a callback sees when a tracked call matches.
package capture

import (
	"net/http"
	"time"
)

// CallInfo carries the metadata for one phase of an intercepted call. The
// request phase populates Method, URL, and Headers. The response phase
// additionally sets IsResponse, Status, ResponseHeaders, and Duration.
type CallInfo struct {
	Method          string        `json:"method"`
	URL             string        `json:"url"`
	Headers         http.Header   `json:"headers,omitempty"`
	IsResponse      bool          `json:"isResponse"`
	Status          int           `json:"status,omitempty"`
	ResponseHeaders http.Header   `json:"responseHeaders,omitempty"`
	Duration        time.Duration `json:"duration,omitempty"`
}

// Callback runs when a registered capture matches an admitted call. It is
// invoked once per phase that has a decoded body: in the request phase the
// returned Result may replace the outbound body, in the response phase the
// result is recorded but the delivered response stays untouched. A returned
// error is reported to the event sink and never aborts the call.
type Callback func(body any, info *CallInfo) (Result, error)

// Result says what a callback wants done with the body it was shown.
// The zero value leaves the body unchanged.
type Result struct {
	replace bool
	value   any
}

// Unchanged leaves the observed body as it was.
func Unchanged() Result {
	return Result{}
}

// Replace substitutes value for the outbound request body. The value is
// re-encoded into the original payload's wire encoding before sending.
func Replace(value any) Result {
	return Result{replace: true, value: value}
}

// Replacement returns the substitute value and whether one was requested.
func (r Result) Replacement() (any, bool) {
	return r.value, r.replace
}

// Observe adapts a side-effect-only function into a Callback that never
// mutates the body. Handy for captures that just record or assert.
func Observe(fn func(body any, info *CallInfo)) Callback {
	return func(body any, info *CallInfo) (Result, error) {
		if fn != nil {
			fn(body, info)
		}
		return Unchanged(), nil
	}
}
