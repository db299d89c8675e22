// Package console renders intercepted-call events as human-readable lines.
//
// The sink is one of the emitters the engine fans out to. It owns presentation
// only: which phases print at which level, coloring, endpoint grouping, and
// the optional filter expression. Event recording is unaffected by any of it.
package console

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/ohler55/ojg/oj"

	"github.com/getwiretap/wiretap/pkg/event"
	"github.com/getwiretap/wiretap/pkg/logging"
	"github.com/getwiretap/wiretap/pkg/util"
)

// Prefs carries the console-facing slice of the tracking configuration.
type Prefs struct {
	// Colors wraps status markers in ANSI color codes.
	Colors bool
	// Level is the minimum verbosity: debug prints pending lines and body
	// detail, info prints every terminal record, warn prints failures and
	// 4xx/5xx responses, error prints failures only.
	Level string
	// GroupByEndpoint prefixes each line with the classified endpoint.
	GroupByEndpoint bool
	// Filter is an optional expression gating which records print.
	Filter string
}

// Sink prints event records. Safe for concurrent Emit and Configure.
type Sink struct {
	w      io.Writer
	logger *slog.Logger

	mu     sync.RWMutex
	colors bool
	level  logging.Level
	group  bool
	filter *filter
}

var (
	_ event.Emitter       = (*Sink)(nil)
	_ event.ErrorReporter = (*Sink)(nil)
)

// New creates a sink writing to w (os.Stdout when nil) with default prefs:
// info level, colors on, no grouping, no filter.
func New(w io.Writer, logger *slog.Logger) *Sink {
	if w == nil {
		w = os.Stdout
	}
	s := &Sink{
		w:      w,
		logger: logging.ForComponent(logger, "console"),
	}
	s.Configure(Prefs{Colors: true, Level: "info"})
	return s
}

// Configure replaces the sink's presentation preferences. An invalid filter
// expression is logged and dropped; everything else still applies.
func (s *Sink) Configure(prefs Prefs) {
	f, err := compileFilter(prefs.Filter)
	if err != nil {
		s.logger.Warn("invalid logFilter expression, ignoring", "filter", prefs.Filter, "error", err)
		f = nil
	}

	s.mu.Lock()
	s.colors = prefs.Colors
	s.level = logging.ParseLevel(prefs.Level)
	s.group = prefs.GroupByEndpoint
	s.filter = f
	s.mu.Unlock()
}

// Emit prints the record if the level policy and filter admit it.
func (s *Sink) Emit(rec *event.Record) {
	if rec == nil {
		return
	}

	s.mu.RLock()
	colors, level, group, f := s.colors, s.level, s.group, s.filter
	s.mu.RUnlock()

	if !printable(rec, level) {
		return
	}
	if !f.allow(rec) {
		return
	}

	fmt.Fprintln(s.w, s.formatLine(rec, colors, group))

	if level <= logging.LevelDebug && rec.Terminal() {
		s.printDetail(rec)
	}
}

// ReportError surfaces pipeline-stage errors (callback failures, body read
// errors) on the console.
func (s *Sink) ReportError(stage string, err error) {
	if err == nil {
		return
	}

	s.mu.RLock()
	colors, level := s.colors, s.level
	s.mu.RUnlock()

	if level > logging.LevelWarn {
		return
	}
	fmt.Fprintf(s.w, "%s %s: %v\n", colorize(colors, colorRed, "wiretap error"), stage, err)
}

// printable applies the level policy for a record's phase.
func printable(rec *event.Record, level logging.Level) bool {
	switch rec.Phase {
	case event.PhasePending:
		return level <= logging.LevelDebug
	case event.PhaseFailed:
		return true
	case event.PhaseComplete:
		switch {
		case level <= logging.LevelInfo:
			return true
		case level <= logging.LevelWarn:
			return rec.Status >= 400 || rec.Error != ""
		default:
			return rec.Error != ""
		}
	default:
		return false
	}
}

func (s *Sink) formatLine(rec *event.Record, colors, group bool) string {
	ts := rec.Timestamp.Format("15:04:05.000")

	prefix := ""
	if group && rec.Endpoint != "" {
		prefix = rec.Endpoint + "  "
	}

	switch rec.Phase {
	case event.PhasePending:
		return fmt.Sprintf("%s[%s] %s %s ...", prefix, ts, rec.Method, rec.URL)

	case event.PhaseFailed:
		marker := colorize(colors, colorRed, "ERROR")
		return fmt.Sprintf("%s[%s] %s %s → %s (%dms): %s",
			prefix, ts, rec.Method, rec.URL, marker, rec.DurationMs, rec.Error)

	default:
		status := fmt.Sprintf("%d", rec.Status)
		if rec.Status >= 400 {
			status = colorize(colors, colorRed, status)
		} else {
			status = colorize(colors, colorGreen, status)
		}
		line := fmt.Sprintf("%s[%s] %s %s → %s (%dms)",
			prefix, ts, rec.Method, rec.URL, status, rec.DurationMs)
		if rec.CaptureID != "" {
			line += fmt.Sprintf(" [%s]", rec.CaptureID)
		}
		if rec.Error != "" {
			line += fmt.Sprintf(" (read error: %s)", rec.Error)
		}
		return line
	}
}

// printDetail writes the indented body and header lines shown at debug level.
func (s *Sink) printDetail(rec *event.Record) {
	if rec.Endpoint != "" {
		fmt.Fprintf(s.w, "  Endpoint: %s\n", rec.Endpoint)
	}
	if len(rec.RequestHeaders) > 0 {
		fmt.Fprintln(s.w, "  Request Headers:")
		keys := make([]string, 0, len(rec.RequestHeaders))
		for k := range rec.RequestHeaders {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			for _, v := range rec.RequestHeaders[k] {
				fmt.Fprintf(s.w, "    %s: %s\n", k, v)
			}
		}
	}
	if rec.RequestBody != nil {
		fmt.Fprintf(s.w, "  Request Body: %s\n", renderBody(rec.RequestBody))
	}
	if rec.ResponseBody != nil {
		fmt.Fprintf(s.w, "  Response Body: %s\n", renderBody(rec.ResponseBody))
	}
}

// renderBody turns a decoded body into a single printable string, truncated
// to the logging cap.
func renderBody(v any) string {
	var text string
	switch b := v.(type) {
	case string:
		text = b
	case []byte:
		text = fmt.Sprintf("(%d bytes)", len(b))
	default:
		text = oj.JSON(v)
	}
	return util.TruncateBody(text, 0)
}

type colorCode string

const (
	colorGreen colorCode = "\033[32m"
	colorRed   colorCode = "\033[31m"
)

func colorize(enabled bool, code colorCode, s string) string {
	if !enabled {
		return s
	}
	return string(code) + s + "\033[0m"
}
