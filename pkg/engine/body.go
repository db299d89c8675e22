package engine

import (
	"bytes"
	"io"
	"net/http"
)

// errReader replays a read error after the buffered prefix is drained, so
// the application sees exactly the bytes that arrived plus the original
// error.
type errReader struct{ err error }

func (r *errReader) Read([]byte) (int, error) { return 0, r.err }

// readCloser pairs a replacement reader with the original body's closer.
type readCloser struct {
	io.Reader
	io.Closer
}

// bufferBody reads r up to limit bytes. complete is false when r holds more
// than limit bytes; data then contains everything consumed so far and the
// remainder stays unread in r.
func bufferBody(r io.Reader, limit int64) (data []byte, complete bool, err error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, limit+1))
	if err != nil {
		return buf.Bytes(), false, err
	}
	return buf.Bytes(), n <= limit, nil
}

// prepareRequestBody buffers the outbound body so it can be decoded and the
// request replayed. Bodies above the cap are forwarded without decoding:
// anything already consumed is stitched back in front of the unread rest.
// Returns the buffered bytes and whether they are the complete body.
func prepareRequestBody(req *http.Request, limit int64) ([]byte, bool) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, true
	}
	if req.ContentLength > limit {
		return nil, false
	}

	body := req.Body
	data, complete, err := bufferBody(body, limit)
	switch {
	case err != nil:
		req.Body = readCloser{
			Reader: io.MultiReader(bytes.NewReader(data), &errReader{err: err}),
			Closer: body,
		}
		return nil, false
	case !complete:
		req.Body = readCloser{
			Reader: io.MultiReader(bytes.NewReader(data), body),
			Closer: body,
		}
		return nil, false
	default:
		_ = body.Close()
		req.Body = io.NopCloser(bytes.NewReader(data))
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		}
		return data, true
	}
}

// replaceRequestBody substitutes a mutated body before the real transport
// runs. Headers are never touched; only the body and its length change.
func replaceRequestBody(req *http.Request, data []byte) {
	req.Body = io.NopCloser(bytes.NewReader(data))
	req.ContentLength = int64(len(data))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
}

// captureResponseBody buffers the response body for decoding while the
// application still receives the exact original bytes, including a read
// error if the stream fails mid-body. Oversize bodies pass through with
// whatever was consumed stitched back in front.
func captureResponseBody(resp *http.Response, limit int64) (data []byte, complete bool, readErr error) {
	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, true, nil
	}

	body := resp.Body
	data, complete, err := bufferBody(body, limit)
	switch {
	case err != nil:
		resp.Body = readCloser{
			Reader: io.MultiReader(bytes.NewReader(data), &errReader{err: err}),
			Closer: body,
		}
		return nil, false, err
	case !complete:
		resp.Body = readCloser{
			Reader: io.MultiReader(bytes.NewReader(data), body),
			Closer: body,
		}
		return nil, false, nil
	default:
		_ = body.Close()
		resp.Body = io.NopCloser(bytes.NewReader(data))
		return data, true, nil
	}
}
