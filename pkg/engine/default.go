package engine

import (
	"net/http"
	"regexp"
	"sync"

	"github.com/getwiretap/wiretap/pkg/capture"
	"github.com/getwiretap/wiretap/pkg/config"
	"github.com/getwiretap/wiretap/pkg/event"
	"github.com/getwiretap/wiretap/pkg/stats"
)

var (
	defaultMu sync.Mutex
	defaultE  *Engine
)

// Default returns the process-wide engine, creating it with default
// configuration on first use. It is not installed anywhere until Init runs.
func Default() *Engine {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultLocked()
}

func defaultLocked() *Engine {
	if defaultE == nil {
		defaultE = New(nil)
	}
	return defaultE
}

// Init merges cfg into the default engine and installs its transport onto
// http.DefaultClient, so everything the process sends through the default
// client is tracked. Calling Init again re-merges configuration; the
// transport is never double-wrapped.
func Init(cfg *config.Config) *Engine {
	defaultMu.Lock()
	e := defaultLocked()
	defaultMu.Unlock()

	e.Install(http.DefaultClient)
	if cfg != nil {
		e.SetConfig(cfg)
	}
	return e
}

// Capture registers a callback on the default engine.
func Capture(method, urlPattern string, cb capture.Callback) *capture.Handle {
	return Default().Capture(method, urlPattern, cb)
}

// CaptureRegexp registers a regexp-matched callback on the default engine.
func CaptureRegexp(method string, re *regexp.Regexp, cb capture.Callback) *capture.Handle {
	return Default().CaptureRegexp(method, re, cb)
}

// Captures lists the default engine's registrations.
func Captures() []capture.Info {
	return Default().Captures()
}

// ClearCaptures removes every registration from the default engine.
func ClearCaptures() int {
	return Default().ClearCaptures()
}

// Stats snapshots the default engine's counters.
func Stats() stats.Snapshot {
	return Default().Stats()
}

// Reset zeroes the default engine's counters.
func Reset() {
	Default().Reset()
}

// Events returns the default engine's recent event records.
func Events() []*event.Record {
	return Default().Events()
}

// SetConfig merges a partial config into the default engine.
func SetConfig(cfg *config.Config) {
	Default().SetConfig(cfg)
}

// CurrentConfig snapshots the default engine's effective configuration.
func CurrentConfig() config.Config {
	return Default().CurrentConfig()
}

// Enable turns tracking on for the default engine.
func Enable() {
	Default().Enable()
}

// Disable turns tracking off for the default engine.
func Disable() {
	Default().Disable()
}

// EnableConsoleLogging attaches the default engine's console sink.
func EnableConsoleLogging() {
	Default().EnableConsoleLogging()
}

// DisableConsoleLogging detaches the default engine's console sink.
func DisableConsoleLogging() {
	Default().DisableConsoleLogging()
}

// LoadFile applies a project file to the default engine.
func LoadFile(path string) error {
	return Default().LoadFile(path)
}

// WrapClient wraps c with the default engine's pipeline.
func WrapClient(c *http.Client) *http.Client {
	return Default().WrapClient(c)
}

// NewCall builds a call issued through the default engine.
func NewCall(method, url string) *Call {
	return Default().NewCall(method, url)
}
