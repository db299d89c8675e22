package payload

import (
	"bytes"
	"fmt"
	"mime"
	"mime/multipart"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ohler55/ojg/oj"
)

// Decode classifies raw body bytes by content type and produces the logical
// value handed to capture callbacks. Decode never fails: malformed input
// degrades to passthrough of the original text or bytes.
func Decode(raw []byte, contentType string) Value {
	if len(raw) == 0 {
		return Value{kind: KindNone}
	}

	mediaType, params := parseContentType(contentType)

	switch {
	case mediaType == "application/x-www-form-urlencoded":
		return decodeURLEncoded(raw)
	case strings.HasPrefix(mediaType, "multipart/"):
		return decodeMultipart(raw, params["boundary"])
	case isTextual(mediaType, raw):
		return decodeText(raw, params["charset"])
	default:
		return Value{kind: KindOpaque, data: raw, raw: raw}
	}
}

// Encode serializes a replacement logical value back into the wire encoding
// inferred from the original Value. A nil replacement, or one the target
// encoding cannot express, passes the original bytes through unchanged.
func (v Value) Encode(replacement any) ([]byte, error) {
	if replacement == nil {
		return v.raw, nil
	}

	switch v.kind {
	case KindForm:
		if fields, ok := formFields(replacement); ok {
			if v.formEnc == formMultipart {
				return encodeMultipart(fields, v.boundary, v.raw)
			}
			return encodeURLValues(fields), nil
		}
		// Multipart bodies can only be rebuilt from a field map: any other
		// replacement would force a Content-Type change, which the wrapper
		// never performs.
		if v.formEnc == formMultipart {
			return v.raw, nil
		}
		return encodeTextual(replacement)
	case KindText:
		return encodeTextual(replacement)
	case KindOpaque, KindNone:
		switch r := replacement.(type) {
		case []byte:
			return r, nil
		case string:
			return []byte(r), nil
		default:
			return v.raw, nil
		}
	default:
		return v.raw, nil
	}
}

// parseContentType splits a Content-Type header into media type and params,
// tolerating malformed headers.
func parseContentType(contentType string) (string, map[string]string) {
	if contentType == "" {
		return "", nil
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType)), nil
	}
	return mediaType, params
}

// isTextual reports whether the body should be treated as text. Unknown
// media types are sniffed: valid UTF-8 is text, anything else is opaque.
func isTextual(mediaType string, raw []byte) bool {
	switch {
	case mediaType == "":
		return utf8.Valid(raw)
	case strings.HasPrefix(mediaType, "text/"):
		return true
	case strings.HasSuffix(mediaType, "+json") || strings.HasSuffix(mediaType, "+xml"):
		return true
	}
	switch mediaType {
	case "application/json", "application/javascript", "application/xml", "application/graphql":
		return true
	}
	return false
}

// decodeText parses a textual body: JSON when it parses, the raw text
// otherwise. A declared non-UTF-8 charset is transcoded first.
func decodeText(raw []byte, charset string) Value {
	text := transcode(raw, charset)

	var data any
	if err := oj.Unmarshal(text, &data); err != nil {
		return Value{kind: KindText, data: string(text), raw: raw}
	}
	return Value{kind: KindText, data: data, raw: raw}
}

// decodeURLEncoded parses form data into name -> value, last value winning
// for duplicate names. Invalid escapes lose only the affected pairs.
func decodeURLEncoded(raw []byte) Value {
	fields := make(map[string]string)
	values, _ := url.ParseQuery(string(raw))
	for name, vals := range values {
		if len(vals) > 0 {
			fields[name] = vals[len(vals)-1]
		}
	}
	return Value{kind: KindForm, data: fields, raw: raw, formEnc: formURLEncoded}
}

// decodeMultipart parses multipart form data into name -> value, last value
// winning. File parts contribute their filename. The boundary is retained so
// a mutated body can be rebuilt without touching the Content-Type header.
func decodeMultipart(raw []byte, boundary string) Value {
	if boundary == "" {
		return Value{kind: KindOpaque, data: raw, raw: raw}
	}

	fields := make(map[string]string)
	reader := multipart.NewReader(bytes.NewReader(raw), boundary)
	for {
		part, err := reader.NextPart()
		if err != nil {
			break
		}
		name := part.FormName()
		if name == "" {
			continue
		}
		if fn := part.FileName(); fn != "" {
			fields[name] = fn
			continue
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(part); err != nil {
			continue
		}
		fields[name] = buf.String()
	}
	return Value{kind: KindForm, data: fields, raw: raw, formEnc: formMultipart, boundary: boundary}
}

// encodeTextual serializes a replacement for a textual target: strings and
// byte slices verbatim, everything else as JSON.
func encodeTextual(replacement any) ([]byte, error) {
	switch r := replacement.(type) {
	case string:
		return []byte(r), nil
	case []byte:
		return r, nil
	default:
		out, err := oj.Marshal(replacement)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize replacement body: %w", err)
		}
		return out, nil
	}
}

// formFields normalizes a replacement into form fields. Non-string map
// values are stringified.
func formFields(replacement any) (map[string]string, bool) {
	switch m := replacement.(type) {
	case map[string]string:
		return m, true
	case map[string]any:
		fields := make(map[string]string, len(m))
		for k, val := range m {
			fields[k] = stringifyFormValue(val)
		}
		return fields, true
	default:
		return nil, false
	}
}

func stringifyFormValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		if out, err := oj.Marshal(v); err == nil {
			return string(out)
		}
		return fmt.Sprint(v)
	}
}

func encodeURLValues(fields map[string]string) []byte {
	values := url.Values{}
	for k, v := range fields {
		values.Set(k, v)
	}
	return []byte(values.Encode())
}

// encodeMultipart rebuilds a multipart body reusing the original boundary.
// If the boundary cannot be applied the original bytes pass through.
func encodeMultipart(fields map[string]string, boundary string, original []byte) ([]byte, error) {
	if boundary == "" {
		return original, nil
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.SetBoundary(boundary); err != nil {
		return original, nil
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := w.WriteField(name, fields[name]); err != nil {
			return nil, fmt.Errorf("failed to rebuild form field %q: %w", name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form body: %w", err)
	}
	return buf.Bytes(), nil
}
