package engine

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/getwiretap/wiretap/internal/id"
	"github.com/getwiretap/wiretap/pkg/capture"
	"github.com/getwiretap/wiretap/pkg/config"
	"github.com/getwiretap/wiretap/pkg/endpoint"
	"github.com/getwiretap/wiretap/pkg/event"
	"github.com/getwiretap/wiretap/pkg/payload"
)

// admitted decides whether a call enters the pipeline at all. includeUrls,
// when present, takes precedence over excludeUrls; both are substring
// matches against the full URL.
func admitted(cfg *config.Config, url string) bool {
	if !cfg.TrackingEnabled() {
		return false
	}
	if len(cfg.IncludeUrls) > 0 {
		for _, s := range cfg.IncludeUrls {
			if strings.Contains(url, s) {
				return true
			}
		}
		return false
	}
	for _, s := range cfg.ExcludeUrls {
		if strings.Contains(url, s) {
			return false
		}
	}
	return true
}

// invokeCallback runs a capture callback, converting a panic into an error
// so a misbehaving callback can never abort the underlying call.
func invokeCallback(cb capture.Callback, body any, info *capture.CallInfo) (result capture.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = capture.Unchanged()
			err = fmt.Errorf("callback panic: %v", r)
		}
	}()
	if cb == nil {
		return capture.Unchanged(), nil
	}
	return cb(body, info)
}

// roundTrip is the interception pipeline both call surfaces go through. It
// never changes what the application observes: the response, its body
// bytes, and any transport error pass through exactly as the base transport
// produced them.
func (e *Engine) roundTrip(base http.RoundTripper, req *http.Request) (*http.Response, error) {
	cfg, redactor := e.snapshot()
	rawURL := req.URL.String()
	if !admitted(cfg, rawURL) {
		return base.RoundTrip(req)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	// Clone before touching anything so the caller's request object stays
	// pristine even when a callback mutates the body.
	out := req.Clone(req.Context())

	eventID := id.Event()
	start := time.Now()
	endpointKey := endpoint.Classify(rawURL)

	// The body is always buffered (within the cap) so the request can be
	// replayed; decoding happens only when request body logging is on.
	var reqVal payload.Value
	var reqBody any
	hasReqBody := false
	data, complete := prepareRequestBody(out, cfg.BodyCap())
	if complete && cfg.RequestBodyLogging() {
		reqVal = payload.Decode(data, out.Header.Get("Content-Type"))
		if !reqVal.IsAbsent() {
			reqBody = reqVal.Data()
			hasReqBody = true
		}
	}

	if cfg.GraphQLClassification() {
		endpointKey = endpoint.RefineGraphQL(endpointKey, reqBody)
	}

	match, matched := e.registry.Match(method, rawURL)

	// Request-phase callback. Only fires when a decoded body exists; a
	// bodyless or opaque request goes straight to the transport.
	if matched && hasReqBody {
		info := &capture.CallInfo{
			Method:  method,
			URL:     rawURL,
			Headers: out.Header.Clone(),
		}
		result, err := invokeCallback(match.Callback, reqBody, info)
		if err != nil {
			e.reportError("request capture", err)
		} else if v, ok := result.Replacement(); ok {
			encoded, encErr := reqVal.Encode(v)
			if encErr != nil {
				e.reportError("request capture", encErr)
			} else {
				replaceRequestBody(out, encoded)
				reqBody = v
			}
		}
	}

	// One pending record and one counter tick per admitted call, taken
	// after mutation so the event shows what actually left the process.
	e.counters.Record(endpointKey)
	pending := &event.Record{
		ID:             eventID,
		Phase:          event.PhasePending,
		Timestamp:      start,
		Method:         method,
		URL:            rawURL,
		Endpoint:       endpointKey,
		RequestHeaders: out.Header.Clone(),
	}
	if matched {
		pending.CaptureID = match.ID
	}
	if hasReqBody {
		pending.RequestBody = redactor.Apply(reqBody)
	}
	e.emit(pending)

	resp, rtErr := base.RoundTrip(out)
	if rtErr != nil {
		e.emit(&event.Record{
			ID:             eventID,
			Phase:          event.PhaseFailed,
			Timestamp:      time.Now(),
			Method:         method,
			URL:            rawURL,
			Endpoint:       endpointKey,
			CaptureID:      pending.CaptureID,
			RequestHeaders: pending.RequestHeaders,
			RequestBody:    pending.RequestBody,
			DurationMs:     time.Since(start).Milliseconds(),
			Error:          rtErr.Error(),
		})
		return resp, rtErr
	}

	// Response phase. The match is resolved again with the same method and
	// URL, so a capture removed or updated while the call was in flight is
	// honored. A match forces decoding even when response body logging is
	// off, so the callback still sees the body.
	respMatch, respMatched := e.registry.Match(method, rawURL)
	var respVal payload.Value
	respDecoded := false
	var readErr error
	if cfg.ResponseBodyLogging() || respMatched {
		respData, respComplete, err := captureResponseBody(resp, cfg.BodyCap())
		readErr = err
		if respComplete {
			respVal = payload.Decode(respData, resp.Header.Get("Content-Type"))
			respDecoded = true
		}
	}

	if respMatched {
		info := &capture.CallInfo{
			Method:          method,
			URL:             rawURL,
			Headers:         pending.RequestHeaders,
			IsResponse:      true,
			Status:          resp.StatusCode,
			ResponseHeaders: resp.Header.Clone(),
			Duration:        time.Since(start),
		}
		if _, err := invokeCallback(respMatch.Callback, respVal.Data(), info); err != nil {
			e.reportError("response capture", err)
		}
	}

	terminal := &event.Record{
		ID:              eventID,
		Phase:           event.PhaseComplete,
		Timestamp:       time.Now(),
		Method:          method,
		URL:             rawURL,
		Endpoint:        endpointKey,
		CaptureID:       pending.CaptureID,
		RequestHeaders:  pending.RequestHeaders,
		RequestBody:     pending.RequestBody,
		Status:          resp.StatusCode,
		ResponseHeaders: resp.Header.Clone(),
		DurationMs:      time.Since(start).Milliseconds(),
	}
	if respDecoded && cfg.ResponseBodyLogging() && !respVal.IsAbsent() {
		terminal.ResponseBody = redactor.Apply(respVal.Data())
	}
	if readErr != nil {
		terminal.Error = readErr.Error()
	}
	e.emit(terminal)

	return resp, nil
}
