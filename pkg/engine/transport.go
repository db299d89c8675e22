package engine

import "net/http"

// Transport decorates an http.RoundTripper with the interception pipeline.
// Build one with Engine.Transport, or wrap a whole client with WrapClient
// or Install.
type Transport struct {
	engine *Engine
	base   http.RoundTripper
}

var _ http.RoundTripper = (*Transport)(nil)

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.engine.roundTrip(t.base, req)
}

// Unwrap returns the transport beneath the decorator.
func (t *Transport) Unwrap() http.RoundTripper { return t.base }

// Transport wraps base with this engine's pipeline. A nil base uses the
// engine's configured base transport. Wrapping is idempotent: a transport
// already decorated by this engine comes back unchanged, so installing
// twice never double-reports calls.
func (e *Engine) Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = e.base
	}
	if base == nil {
		base = http.DefaultTransport
	}
	if t, ok := base.(*Transport); ok && t.engine == e {
		return t
	}
	return &Transport{engine: e, base: base}
}

// WrapClient returns a copy of c whose transport is decorated with the
// pipeline. The input client is not modified. A nil c yields a fresh client
// over the engine's base transport.
func (e *Engine) WrapClient(c *http.Client) *http.Client {
	if c == nil {
		return &http.Client{Transport: e.Transport(nil)}
	}
	clone := *c
	clone.Transport = e.Transport(c.Transport)
	return &clone
}

// Install decorates c's transport in place. A nil c installs onto
// http.DefaultClient. Installing twice is a no-op.
func (e *Engine) Install(c *http.Client) {
	if c == nil {
		c = http.DefaultClient
	}
	c.Transport = e.Transport(c.Transport)
}
