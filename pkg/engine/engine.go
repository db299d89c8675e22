package engine

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"sync"

	"github.com/getwiretap/wiretap/pkg/capture"
	"github.com/getwiretap/wiretap/pkg/config"
	"github.com/getwiretap/wiretap/pkg/console"
	"github.com/getwiretap/wiretap/pkg/event"
	"github.com/getwiretap/wiretap/pkg/logging"
	"github.com/getwiretap/wiretap/pkg/redact"
	"github.com/getwiretap/wiretap/pkg/stats"
)

// Engine owns one interception pipeline: a capture registry, per-endpoint
// counters, a bounded buffer of recent events, and the sinks events fan out
// to. Engines are independent; most applications use the package-level
// default via Init.
type Engine struct {
	log      *slog.Logger
	registry *capture.Registry
	counters *stats.Counters
	buffer   *event.Buffer
	sinks    *event.Multi
	console  *console.Sink
	client   *http.Client

	consoleWriter io.Writer
	extraSinks    []event.Emitter
	base          http.RoundTripper

	mu        sync.RWMutex
	cfg       *config.Config
	redactor  *redact.Redactor
	consoleOn bool
}

// Option customizes an Engine at construction.
type Option func(*Engine)

// WithLogger sets the diagnostic logger. Defaults to a no-op logger so the
// library stays silent inside host applications.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithBase sets the transport the engine's own client and WrapClient(nil)
// decorate. Defaults to http.DefaultTransport.
func WithBase(rt http.RoundTripper) Option {
	return func(e *Engine) {
		if rt != nil {
			e.base = rt
		}
	}
}

// WithConsoleWriter redirects console sink output. Defaults to os.Stdout.
func WithConsoleWriter(w io.Writer) Option {
	return func(e *Engine) {
		e.consoleWriter = w
	}
}

// WithSink attaches an additional event emitter alongside the built-in
// buffer and console.
func WithSink(s event.Emitter) Option {
	return func(e *Engine) {
		if s != nil {
			e.extraSinks = append(e.extraSinks, s)
		}
	}
}

// New creates an Engine with cfg merged over the defaults. A nil cfg uses
// the defaults unchanged.
func New(cfg *config.Config, opts ...Option) *Engine {
	e := &Engine{
		log:      logging.Nop(),
		registry: capture.NewRegistry(),
		counters: stats.New(),
	}
	for _, opt := range opts {
		opt(e)
	}

	merged := config.Default()
	merged.Merge(cfg)

	e.buffer = event.NewBuffer(merged.EventCap())
	e.console = console.New(e.consoleWriter, e.log)
	e.sinks = event.NewMulti(append([]event.Emitter{e.buffer}, e.extraSinks...)...)

	if e.base == nil {
		e.base = http.DefaultTransport
	}
	e.client = &http.Client{Transport: e.Transport(e.base)}

	e.applyConfig(merged)
	return e
}

// applyConfig installs a fully merged config and refreshes the state derived
// from it. The installed Config is treated as immutable from then on.
func (e *Engine) applyConfig(merged *config.Config) {
	e.mu.Lock()
	e.cfg = merged
	e.redactor = redact.New(merged.RedactKeys, e.log)
	e.consoleOn = merged.ConsoleLogging()
	e.mu.Unlock()

	e.buffer.SetCapacity(merged.EventCap())
	e.console.Configure(console.Prefs{
		Colors:          merged.ColorsEnabled(),
		Level:           merged.LogLevel,
		GroupByEndpoint: merged.EndpointGrouping(),
		Filter:          merged.LogFilter,
	})
}

// SetConfig merges a partial config over the current one. Unset fields (nil
// booleans, zero numbers, empty strings, nil slices) are left unchanged.
// Concurrent SetConfig calls serialize; the last merge wins.
func (e *Engine) SetConfig(partial *config.Config) {
	e.mu.RLock()
	merged := e.cfg.Clone()
	e.mu.RUnlock()

	merged.Merge(partial)
	if err := merged.Validate(); err != nil {
		e.log.Warn("rejecting invalid config update", "error", err)
		return
	}
	e.applyConfig(merged)
}

// CurrentConfig returns a snapshot copy of the effective configuration.
func (e *Engine) CurrentConfig() config.Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return *e.cfg.Clone()
}

// Enable turns tracking on.
func (e *Engine) Enable() {
	e.SetConfig(&config.Config{Enabled: config.Bool(true)})
}

// Disable turns tracking off. Calls pass through untouched while disabled.
func (e *Engine) Disable() {
	e.SetConfig(&config.Config{Enabled: config.Bool(false)})
}

// EnableConsoleLogging attaches the console sink to the event stream.
func (e *Engine) EnableConsoleLogging() {
	e.SetConfig(&config.Config{LogToConsole: config.Bool(true)})
}

// DisableConsoleLogging detaches the console sink. Events are still
// recorded and counted.
func (e *Engine) DisableConsoleLogging() {
	e.SetConfig(&config.Config{LogToConsole: config.Bool(false)})
}

// Capture registers a callback for calls whose method matches (exactly, or
// "*" for any) and whose URL contains urlPattern after scheme and trailing
// slash normalization. Earlier registrations win when several match.
func (e *Engine) Capture(method, urlPattern string, cb capture.Callback) *capture.Handle {
	return e.registry.Register(method, urlPattern, cb)
}

// CaptureRegexp registers a callback whose URL test applies re against the
// raw URL.
func (e *Engine) CaptureRegexp(method string, re *regexp.Regexp, cb capture.Callback) *capture.Handle {
	return e.registry.RegisterRegexp(method, re, cb)
}

// Captures lists the current registrations in registration order.
func (e *Engine) Captures() []capture.Info {
	return e.registry.Infos()
}

// ClearCaptures removes every registration and returns how many there were.
func (e *Engine) ClearCaptures() int {
	return e.registry.Clear()
}

// Stats returns a snapshot of the admitted-call counters.
func (e *Engine) Stats() stats.Snapshot {
	return e.counters.Snapshot()
}

// Reset zeroes the counters. The registry and event buffer are untouched.
func (e *Engine) Reset() {
	e.counters.Reset()
}

// Events returns the most recent event records, oldest first, up to the
// configured maxLoggedEvents.
func (e *Engine) Events() []*event.Record {
	return e.buffer.Records()
}

// LoadFile applies a project file (wiretap.yaml): the tracking section
// merges into the configuration and every capture entry registers an
// observation-only capture. Capture file references resolve relative to the
// file's directory.
func (e *Engine) LoadFile(path string) error {
	f, err := config.LoadFile(path)
	if err != nil {
		return err
	}
	return e.ApplyFile(f, config.BaseDir(path))
}

// ApplyFile applies an already parsed project file.
func (e *Engine) ApplyFile(f *config.File, baseDir string) error {
	if f == nil {
		return nil
	}
	if f.Tracking != nil {
		e.SetConfig(f.Tracking)
	}

	entries, err := config.LoadAllCaptures(f.Captures, baseDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		method := entry.Method
		if method == "" {
			method = "*"
		}
		if entry.Regex {
			re, err := regexp.Compile(entry.URL)
			if err != nil {
				return fmt.Errorf("capture pattern %q: %w", entry.URL, err)
			}
			e.CaptureRegexp(method, re, capture.Observe(nil))
			continue
		}
		e.Capture(method, entry.URL, capture.Observe(nil))
	}
	return nil
}

// snapshot returns the current config and redactor. Both are immutable once
// installed, so holding them across a call is safe.
func (e *Engine) snapshot() (*config.Config, *redact.Redactor) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg, e.redactor
}

func (e *Engine) consoleEnabled() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.consoleOn
}

// emit fans a record out to the buffer, extra sinks, and (when enabled) the
// console.
func (e *Engine) emit(rec *event.Record) {
	e.sinks.Emit(rec)
	if e.consoleEnabled() {
		e.console.Emit(rec)
	}
}

// reportError surfaces a pipeline-stage failure without aborting the call.
func (e *Engine) reportError(stage string, err error) {
	if err == nil {
		return
	}
	e.log.Warn("pipeline stage error", "stage", stage, "error", err)
	e.sinks.ReportError(stage, err)
	if e.consoleEnabled() {
		e.console.ReportError(stage, err)
	}
}
