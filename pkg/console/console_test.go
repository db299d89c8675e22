package console

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getwiretap/wiretap/pkg/event"
	"github.com/getwiretap/wiretap/pkg/logging"
)

func testRecord(phase event.Phase, status int) *event.Record {
	rec := &event.Record{
		ID:        "evt-1",
		Phase:     phase,
		Timestamp: time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
		Method:    "POST",
		URL:       "https://api.example.com/v1/orders",
		Endpoint:  "/v1/orders",
	}
	if phase == event.PhaseComplete {
		rec.Status = status
		rec.DurationMs = 12
	}
	if phase == event.PhaseFailed {
		rec.Error = "connection refused"
		rec.DurationMs = 5
	}
	return rec
}

func newTestSink(prefs Prefs) (*Sink, *bytes.Buffer) {
	var buf bytes.Buffer
	s := New(&buf, logging.Nop())
	s.Configure(prefs)
	return s, &buf
}

func TestEmit_CompleteLine(t *testing.T) {
	s, buf := newTestSink(Prefs{Level: "info"})

	s.Emit(testRecord(event.PhaseComplete, 201))

	out := buf.String()
	assert.Contains(t, out, "POST https://api.example.com/v1/orders")
	assert.Contains(t, out, "201")
	assert.Contains(t, out, "12ms")
	assert.NotContains(t, out, "\033[")
}

func TestEmit_PendingOnlyAtDebug(t *testing.T) {
	s, buf := newTestSink(Prefs{Level: "info"})
	s.Emit(testRecord(event.PhasePending, 0))
	assert.Empty(t, buf.String())

	s, buf = newTestSink(Prefs{Level: "debug"})
	s.Emit(testRecord(event.PhasePending, 0))
	assert.Contains(t, buf.String(), "...")
}

func TestEmit_FailedPrintsAtEveryLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		s, buf := newTestSink(Prefs{Level: level})
		s.Emit(testRecord(event.PhaseFailed, 0))
		assert.Contains(t, buf.String(), "ERROR", "level %s", level)
		assert.Contains(t, buf.String(), "connection refused", "level %s", level)
	}
}

func TestEmit_WarnLevelSkipsSuccesses(t *testing.T) {
	s, buf := newTestSink(Prefs{Level: "warn"})

	s.Emit(testRecord(event.PhaseComplete, 200))
	assert.Empty(t, buf.String())

	s.Emit(testRecord(event.PhaseComplete, 404))
	assert.Contains(t, buf.String(), "404")
}

func TestEmit_ErrorLevelOnlyFailures(t *testing.T) {
	s, buf := newTestSink(Prefs{Level: "error"})

	s.Emit(testRecord(event.PhaseComplete, 500))
	assert.Empty(t, buf.String())

	readFail := testRecord(event.PhaseComplete, 200)
	readFail.Error = "unexpected EOF"
	s.Emit(readFail)
	assert.Contains(t, buf.String(), "read error: unexpected EOF")
}

func TestEmit_Colors(t *testing.T) {
	s, buf := newTestSink(Prefs{Level: "info", Colors: true})

	s.Emit(testRecord(event.PhaseComplete, 200))
	assert.Contains(t, buf.String(), "\033[32m200\033[0m")

	buf.Reset()
	s.Emit(testRecord(event.PhaseComplete, 500))
	assert.Contains(t, buf.String(), "\033[31m500\033[0m")
}

func TestEmit_GroupByEndpoint(t *testing.T) {
	s, buf := newTestSink(Prefs{Level: "info", GroupByEndpoint: true})

	s.Emit(testRecord(event.PhaseComplete, 200))

	line := buf.String()
	require.NotEmpty(t, line)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("/v1/orders  ")),
		"line should start with endpoint prefix, got %q", line)
}

func TestEmit_CaptureMarker(t *testing.T) {
	s, buf := newTestSink(Prefs{Level: "info"})

	rec := testRecord(event.PhaseComplete, 200)
	rec.CaptureID = "cap_01ABCDEF"
	s.Emit(rec)

	assert.Contains(t, buf.String(), "[cap_01ABCDEF]")
}

func TestEmit_FilterExpression(t *testing.T) {
	s, buf := newTestSink(Prefs{Level: "info", Filter: "status >= 400"})

	s.Emit(testRecord(event.PhaseComplete, 200))
	assert.Empty(t, buf.String())

	s.Emit(testRecord(event.PhaseComplete, 503))
	assert.Contains(t, buf.String(), "503")
}

func TestEmit_FilterOnCaptured(t *testing.T) {
	s, buf := newTestSink(Prefs{Level: "info", Filter: "captured"})

	s.Emit(testRecord(event.PhaseComplete, 200))
	assert.Empty(t, buf.String())

	rec := testRecord(event.PhaseComplete, 200)
	rec.CaptureID = "cap_1"
	s.Emit(rec)
	assert.NotEmpty(t, buf.String())
}

func TestEmit_NonBoolFilterAdmits(t *testing.T) {
	s, buf := newTestSink(Prefs{Level: "info", Filter: "status"})

	s.Emit(testRecord(event.PhaseComplete, 200))
	assert.NotEmpty(t, buf.String())
}

func TestConfigure_InvalidFilterIgnored(t *testing.T) {
	s, buf := newTestSink(Prefs{Level: "info", Filter: "status >=> 400"})

	s.Emit(testRecord(event.PhaseComplete, 200))
	assert.Contains(t, buf.String(), "200")
}

func TestEmit_DebugDetail(t *testing.T) {
	s, buf := newTestSink(Prefs{Level: "debug"})

	rec := testRecord(event.PhaseComplete, 200)
	rec.RequestBody = map[string]any{"email": "a@example.com"}
	rec.ResponseBody = "pong"
	s.Emit(rec)

	out := buf.String()
	assert.Contains(t, out, "Request Body:")
	assert.Contains(t, out, "a@example.com")
	assert.Contains(t, out, "Response Body: pong")
	assert.Contains(t, out, "Endpoint: /v1/orders")
}

func TestEmit_InfoHidesBodies(t *testing.T) {
	s, buf := newTestSink(Prefs{Level: "info"})

	rec := testRecord(event.PhaseComplete, 200)
	rec.RequestBody = map[string]any{"email": "a@example.com"}
	s.Emit(rec)

	assert.NotContains(t, buf.String(), "Request Body:")
}

func TestReportError(t *testing.T) {
	s, buf := newTestSink(Prefs{Level: "warn"})
	s.ReportError("request capture", assert.AnError)
	assert.Contains(t, buf.String(), "wiretap error")
	assert.Contains(t, buf.String(), "request capture")

	s, buf = newTestSink(Prefs{Level: "error"})
	s.ReportError("request capture", assert.AnError)
	assert.Empty(t, buf.String())
}
