// Package engine wires the interception pipeline into the two call surfaces
// an application can use: a decorated http.RoundTripper (WrapClient, Install,
// Transport) and an event-callback request object (NewCall).
//
// Both surfaces funnel every outbound call through one pipeline: admission
// against the include/exclude lists, request body decode and capture-callback
// invocation (which may rewrite the outbound body), a pending event and a
// counter increment, the real round trip, response decode and the response
// phase callback, and a terminal event. Calls that fail admission pass
// through to the base transport untouched.
//
// An Engine owns its registry, counters, event buffer, and console sink; the
// package-level functions (Init, Capture, Stats, ...) operate on a shared
// default engine for applications that want process-wide tracking with one
// line of setup.
package engine
