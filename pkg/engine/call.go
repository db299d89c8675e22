package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/ohler55/ojg/oj"
)

// ErrAlreadySent is returned when a Call is dispatched more than once.
var ErrAlreadySent = errors.New("call already sent")

// Call is the request-object surface. Build the request with SetHeader and
// SetBody, attach OnComplete/OnError, then dispatch with Send (async) or Do
// (blocking). Either way the call runs through the same interception
// pipeline as a wrapped client, so captures, events, and stats all apply.
type Call struct {
	engine *Engine
	method string
	url    string
	header http.Header
	body   []byte

	onComplete func(*CallResponse)
	onError    func(error)

	mu   sync.Mutex
	sent bool
}

// CallResponse is the fully read outcome of a Call.
type CallResponse struct {
	Status  int
	Headers http.Header
	Body    []byte
}

// JSON unmarshals the response body into v.
func (r *CallResponse) JSON(v any) error {
	return oj.Unmarshal(r.Body, v)
}

// NewCall builds a call that will be issued through the engine's pipeline.
func (e *Engine) NewCall(method, url string) *Call {
	return &Call{
		engine: e,
		method: method,
		url:    url,
		header: make(http.Header),
	}
}

// SetHeader sets a request header, replacing any existing values for key.
func (c *Call) SetHeader(key, value string) *Call {
	c.header.Set(key, value)
	return c
}

// SetBody sets the outbound body bytes.
func (c *Call) SetBody(body []byte) *Call {
	c.body = body
	return c
}

// OnComplete registers the completion callback. It fires for every HTTP
// status, including errors like 500; only transport and read failures go to
// OnError.
func (c *Call) OnComplete(fn func(*CallResponse)) *Call {
	c.onComplete = fn
	return c
}

// OnError registers the failure callback.
func (c *Call) OnError(fn func(error)) *Call {
	c.onError = fn
	return c
}

// Do issues the call synchronously. The registered callbacks are not used;
// the outcome is the return value.
func (c *Call) Do(ctx context.Context) (*CallResponse, error) {
	if err := c.markSent(); err != nil {
		return nil, err
	}
	return c.execute(ctx)
}

// Send issues the call on its own goroutine and delivers the outcome to
// OnComplete or OnError. Each Call dispatches at most once: a second Send,
// or a Send after Do, reports ErrAlreadySent through OnError.
func (c *Call) Send(ctx context.Context) {
	if err := c.markSent(); err != nil {
		c.fail(err)
		return
	}
	go func() {
		resp, err := c.execute(ctx)
		if err != nil {
			c.fail(err)
			return
		}
		if c.onComplete != nil {
			c.onComplete(resp)
		}
	}()
}

func (c *Call) markSent() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sent {
		return ErrAlreadySent
	}
	c.sent = true
	return nil
}

func (c *Call) fail(err error) {
	if c.onError != nil {
		c.onError(err)
	}
}

func (c *Call) execute(ctx context.Context) (*CallResponse, error) {
	var bodyReader io.Reader
	if c.body != nil {
		bodyReader = bytes.NewReader(c.body)
	}
	req, err := http.NewRequestWithContext(ctx, c.method, c.url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	for key, vals := range c.header {
		for _, v := range vals {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.engine.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return &CallResponse{
		Status:  resp.StatusCode,
		Headers: resp.Header,
		Body:    data,
	}, nil
}
