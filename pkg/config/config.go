package config

import (
	"fmt"
	"strings"
)

// Defaults applied by Default() and used as fallbacks by the accessor
// methods when a field was never set.
const (
	DefaultMaxLoggedEvents = 100
	DefaultMaxBodyBytes    = 10 * 1024 * 1024
	DefaultLogLevel        = "info"
)

// Config is the flat option set controlling how outbound calls are tracked.
// A zero Config is a valid partial: nil booleans, empty strings, and nil
// slices mean "leave unchanged" when merged onto another Config.
type Config struct {
	// Enabled turns tracking on or off globally. Disabled tracking passes
	// calls straight through with no logging, matching, or counting.
	Enabled *bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// MaxLoggedEvents bounds the in-memory event buffer. Oldest events are
	// evicted first.
	MaxLoggedEvents int `json:"maxLoggedEvents,omitempty" yaml:"maxLoggedEvents,omitempty"`

	// IncludeUrls and ExcludeUrls admit or skip calls by substring match
	// against the full URL. A non-empty include list takes precedence and
	// excludeUrls is ignored entirely.
	IncludeUrls []string `json:"includeUrls,omitempty" yaml:"includeUrls,omitempty"`
	ExcludeUrls []string `json:"excludeUrls,omitempty" yaml:"excludeUrls,omitempty"`

	// LogRequestBody and LogResponseBody control payload decoding. With
	// request decoding off, request-phase callbacks are not invoked.
	LogRequestBody  *bool `json:"logRequestBody,omitempty" yaml:"logRequestBody,omitempty"`
	LogResponseBody *bool `json:"logResponseBody,omitempty" yaml:"logResponseBody,omitempty"`

	// GroupByEndpoint prefixes console lines with the classified endpoint.
	GroupByEndpoint *bool `json:"groupByEndpoint,omitempty" yaml:"groupByEndpoint,omitempty"`

	// UseColors enables ANSI color in console output.
	UseColors *bool `json:"useColors,omitempty" yaml:"useColors,omitempty"`

	// LogLevel is the minimum console verbosity: debug, info, warn, or error.
	LogLevel string `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`

	// LogToConsole attaches the console sink. Event recording is unaffected.
	LogToConsole *bool `json:"logToConsole,omitempty" yaml:"logToConsole,omitempty"`

	// RedactKeys are JSONPath expressions whose matches are masked in
	// logged bodies. Invalid paths are skipped with a warning.
	RedactKeys []string `json:"redactKeys,omitempty" yaml:"redactKeys,omitempty"`

	// ClassifyGraphQL refines endpoint keys for GraphQL POST bodies.
	ClassifyGraphQL *bool `json:"classifyGraphQL,omitempty" yaml:"classifyGraphQL,omitempty"`

	// LogFilter is an expression evaluated per event deciding whether the
	// console prints it. Empty means print everything the level allows.
	LogFilter string `json:"logFilter,omitempty" yaml:"logFilter,omitempty"`

	// MaxBodyBytes caps how much of a payload is buffered for decoding.
	// Larger bodies pass through untouched and are logged as opaque.
	MaxBodyBytes int64 `json:"maxBodyBytes,omitempty" yaml:"maxBodyBytes,omitempty"`
}

// Bool returns a pointer to v, for building partial configs inline.
func Bool(v bool) *bool { return &v }

// Default returns a fully populated Config: tracking enabled, both body
// directions decoded, console logging on with colors at info level, no URL
// filters, no redaction, GraphQL classification off.
func Default() *Config {
	return &Config{
		Enabled:         Bool(true),
		MaxLoggedEvents: DefaultMaxLoggedEvents,
		LogRequestBody:  Bool(true),
		LogResponseBody: Bool(true),
		GroupByEndpoint: Bool(false),
		UseColors:       Bool(true),
		LogLevel:        DefaultLogLevel,
		LogToConsole:    Bool(true),
		ClassifyGraphQL: Bool(false),
		MaxBodyBytes:    DefaultMaxBodyBytes,
	}
}

// Merge overlays the set fields of p onto c. Nil booleans, zero numbers,
// and empty strings in p are not merged; slices merge when non-nil, so an
// explicit empty list clears the field.
func (c *Config) Merge(p *Config) {
	if p == nil {
		return
	}
	if p.Enabled != nil {
		c.Enabled = Bool(*p.Enabled)
	}
	if p.MaxLoggedEvents != 0 {
		c.MaxLoggedEvents = p.MaxLoggedEvents
	}
	if p.IncludeUrls != nil {
		c.IncludeUrls = append([]string{}, p.IncludeUrls...)
	}
	if p.ExcludeUrls != nil {
		c.ExcludeUrls = append([]string{}, p.ExcludeUrls...)
	}
	if p.LogRequestBody != nil {
		c.LogRequestBody = Bool(*p.LogRequestBody)
	}
	if p.LogResponseBody != nil {
		c.LogResponseBody = Bool(*p.LogResponseBody)
	}
	if p.GroupByEndpoint != nil {
		c.GroupByEndpoint = Bool(*p.GroupByEndpoint)
	}
	if p.UseColors != nil {
		c.UseColors = Bool(*p.UseColors)
	}
	if p.LogLevel != "" {
		c.LogLevel = p.LogLevel
	}
	if p.LogToConsole != nil {
		c.LogToConsole = Bool(*p.LogToConsole)
	}
	if p.RedactKeys != nil {
		c.RedactKeys = append([]string{}, p.RedactKeys...)
	}
	if p.ClassifyGraphQL != nil {
		c.ClassifyGraphQL = Bool(*p.ClassifyGraphQL)
	}
	if p.LogFilter != "" {
		c.LogFilter = p.LogFilter
	}
	if p.MaxBodyBytes != 0 {
		c.MaxBodyBytes = p.MaxBodyBytes
	}
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := *c
	if c.Enabled != nil {
		out.Enabled = Bool(*c.Enabled)
	}
	if c.LogRequestBody != nil {
		out.LogRequestBody = Bool(*c.LogRequestBody)
	}
	if c.LogResponseBody != nil {
		out.LogResponseBody = Bool(*c.LogResponseBody)
	}
	if c.GroupByEndpoint != nil {
		out.GroupByEndpoint = Bool(*c.GroupByEndpoint)
	}
	if c.UseColors != nil {
		out.UseColors = Bool(*c.UseColors)
	}
	if c.LogToConsole != nil {
		out.LogToConsole = Bool(*c.LogToConsole)
	}
	if c.ClassifyGraphQL != nil {
		out.ClassifyGraphQL = Bool(*c.ClassifyGraphQL)
	}
	if c.IncludeUrls != nil {
		out.IncludeUrls = append([]string{}, c.IncludeUrls...)
	}
	if c.ExcludeUrls != nil {
		out.ExcludeUrls = append([]string{}, c.ExcludeUrls...)
	}
	if c.RedactKeys != nil {
		out.RedactKeys = append([]string{}, c.RedactKeys...)
	}
	return &out
}

// TrackingEnabled reports the effective on/off state.
func (c *Config) TrackingEnabled() bool {
	return c != nil && c.Enabled != nil && *c.Enabled
}

// RequestBodyLogging reports whether request payloads are decoded.
func (c *Config) RequestBodyLogging() bool {
	return c != nil && c.LogRequestBody != nil && *c.LogRequestBody
}

// ResponseBodyLogging reports whether response payloads are decoded.
func (c *Config) ResponseBodyLogging() bool {
	return c != nil && c.LogResponseBody != nil && *c.LogResponseBody
}

// ConsoleLogging reports whether the console sink is attached.
func (c *Config) ConsoleLogging() bool {
	return c != nil && c.LogToConsole != nil && *c.LogToConsole
}

// ColorsEnabled reports whether console output uses ANSI color.
func (c *Config) ColorsEnabled() bool {
	return c != nil && c.UseColors != nil && *c.UseColors
}

// EndpointGrouping reports whether console lines carry an endpoint prefix.
func (c *Config) EndpointGrouping() bool {
	return c != nil && c.GroupByEndpoint != nil && *c.GroupByEndpoint
}

// GraphQLClassification reports whether GraphQL endpoint refinement is on.
func (c *Config) GraphQLClassification() bool {
	return c != nil && c.ClassifyGraphQL != nil && *c.ClassifyGraphQL
}

// EventCap returns the effective event buffer capacity.
func (c *Config) EventCap() int {
	if c == nil || c.MaxLoggedEvents <= 0 {
		return DefaultMaxLoggedEvents
	}
	return c.MaxLoggedEvents
}

// BodyCap returns the effective body buffering limit in bytes.
func (c *Config) BodyCap() int64 {
	if c == nil || c.MaxBodyBytes <= 0 {
		return DefaultMaxBodyBytes
	}
	return c.MaxBodyBytes
}

// Validate checks field values that have a constrained domain.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid logLevel %q: must be debug, info, warn, or error", c.LogLevel)
	}
	if c.MaxLoggedEvents < 0 {
		return fmt.Errorf("maxLoggedEvents must not be negative, got %d", c.MaxLoggedEvents)
	}
	if c.MaxBodyBytes < 0 {
		return fmt.Errorf("maxBodyBytes must not be negative, got %d", c.MaxBodyBytes)
	}
	return nil
}
