package payload

import (
	"bytes"
	"encoding/json"
	"mime"
	"mime/multipart"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAbsent(t *testing.T) {
	t.Parallel()

	for _, raw := range [][]byte{nil, {}} {
		v := Decode(raw, "application/json")
		assert.Equal(t, KindNone, v.Kind())
		assert.True(t, v.IsAbsent())
		assert.Nil(t, v.Data())
	}
}

func TestDecodeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		raw         string
		contentType string
		want        any
	}{
		{
			name:        "json object",
			raw:         `{"a":1,"b":"two"}`,
			contentType: "application/json",
			want:        map[string]any{"a": int64(1), "b": "two"},
		},
		{
			name:        "json array",
			raw:         `[1,2,3]`,
			contentType: "application/json",
			want:        []any{int64(1), int64(2), int64(3)},
		},
		{
			name:        "json with charset param",
			raw:         `{"ok":true}`,
			contentType: "application/json; charset=utf-8",
			want:        map[string]any{"ok": true},
		},
		{
			name:        "vendor json suffix",
			raw:         `{"ok":true}`,
			contentType: "application/vnd.api+json",
			want:        map[string]any{"ok": true},
		},
		{
			name:        "malformed json degrades to text",
			raw:         `{"a":1`,
			contentType: "application/json",
			want:        `{"a":1`,
		},
		{
			name:        "plain text untouched",
			raw:         "hello, world",
			contentType: "text/plain",
			want:        "hello, world",
		},
		{
			name:        "json inside text content type still parses",
			raw:         `{"a":1}`,
			contentType: "text/plain",
			want:        map[string]any{"a": int64(1)},
		},
		{
			name:        "no content type sniffs utf8 text",
			raw:         "just text",
			contentType: "",
			want:        "just text",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := Decode([]byte(tt.raw), tt.contentType)
			assert.Equal(t, KindText, v.Kind())
			assert.Equal(t, tt.want, v.Data())
			assert.Equal(t, []byte(tt.raw), v.Raw())
		})
	}
}

func TestDecodeCharset(t *testing.T) {
	t.Parallel()

	// "café" in ISO-8859-1: é is a single 0xE9 byte.
	raw := []byte{'c', 'a', 'f', 0xE9}
	v := Decode(raw, "text/plain; charset=iso-8859-1")
	assert.Equal(t, KindText, v.Kind())
	assert.Equal(t, "café", v.Data())

	// Unknown charsets keep the original bytes.
	v = Decode(raw, "text/plain; charset=klingon-8")
	assert.Equal(t, string(raw), v.Data())
}

func TestDecodeURLEncodedForm(t *testing.T) {
	t.Parallel()

	v := Decode([]byte("a=1&b=two&a=3"), "application/x-www-form-urlencoded")
	require.Equal(t, KindForm, v.Kind())

	fields, ok := v.Data().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "3", fields["a"], "last value wins for duplicate names")
	assert.Equal(t, "two", fields["b"])
}

func TestDecodeURLEncodedFormBadEscape(t *testing.T) {
	t.Parallel()

	// The broken pair is dropped, the valid one survives; decode never fails.
	v := Decode([]byte("good=yes&bad=%zz"), "application/x-www-form-urlencoded")
	require.Equal(t, KindForm, v.Kind())
	fields := v.Data().(map[string]string)
	assert.Equal(t, "yes", fields["good"])
}

func buildMultipart(t *testing.T, fields [][2]string, file bool) ([]byte, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		require.NoError(t, w.WriteField(f[0], f[1]))
	}
	if file {
		fw, err := w.CreateFormFile("attachment", "report.pdf")
		require.NoError(t, err)
		_, err = fw.Write([]byte("%PDF-1.4 ..."))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes(), w.FormDataContentType()
}

func TestDecodeMultipartForm(t *testing.T) {
	t.Parallel()

	raw, contentType := buildMultipart(t, [][2]string{{"name", "ada"}, {"name", "grace"}, {"role", "admin"}}, true)

	v := Decode(raw, contentType)
	require.Equal(t, KindForm, v.Kind())

	fields := v.Data().(map[string]string)
	assert.Equal(t, "grace", fields["name"], "last value wins")
	assert.Equal(t, "admin", fields["role"])
	assert.Equal(t, "report.pdf", fields["attachment"], "file parts contribute their filename")
}

func TestDecodeMultipartWithoutBoundary(t *testing.T) {
	t.Parallel()

	v := Decode([]byte("--x\r\nunparseable"), "multipart/form-data")
	assert.Equal(t, KindOpaque, v.Kind())
}

func TestDecodeOpaque(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		raw         []byte
		contentType string
	}{
		{"declared binary", []byte{0x01, 0x02}, "application/octet-stream"},
		{"invalid utf8 without content type", []byte{0xff, 0xfe, 0x00}, ""},
		{"unknown media type", []byte("data"), "application/vnd.custom"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := Decode(tt.raw, tt.contentType)
			assert.Equal(t, KindOpaque, v.Kind())
			assert.Equal(t, tt.raw, v.Raw())
		})
	}
}

func TestEncodeTextTargets(t *testing.T) {
	t.Parallel()

	orig := Decode([]byte(`{"a":1}`), "application/json")

	out, err := orig.Encode(map[string]any{"a": int64(1), "source": "website"})
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, unmarshalJSON(out, &parsed))
	assert.Equal(t, map[string]any{"a": float64(1), "source": "website"}, parsed)

	out, err = orig.Encode("raw replacement")
	require.NoError(t, err)
	assert.Equal(t, []byte("raw replacement"), out)
}

func TestEncodeNilKeepsOriginal(t *testing.T) {
	t.Parallel()

	orig := Decode([]byte(`{"a":1}`), "application/json")
	out, err := orig.Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), out)
}

func TestEncodeURLEncodedForm(t *testing.T) {
	t.Parallel()

	orig := Decode([]byte("a=1&b=2"), "application/x-www-form-urlencoded")

	out, err := orig.Encode(map[string]string{"a": "1", "b": "2", "c": "three three"})
	require.NoError(t, err)

	got, err := url.ParseQuery(string(out))
	require.NoError(t, err)
	assert.Equal(t, "1", got.Get("a"))
	assert.Equal(t, "three three", got.Get("c"))
}

func TestEncodeFormRoundTrip(t *testing.T) {
	t.Parallel()

	// Decoding then re-encoding an unmodified form must be semantically
	// equivalent, though key order may differ.
	orig := Decode([]byte("x=1&y=2&x=9"), "application/x-www-form-urlencoded")
	out, err := orig.Encode(orig.Data())
	require.NoError(t, err)

	got, err := url.ParseQuery(string(out))
	require.NoError(t, err)
	assert.Equal(t, "9", got.Get("x"))
	assert.Equal(t, "2", got.Get("y"))
}

func TestEncodeMultipartKeepsBoundary(t *testing.T) {
	t.Parallel()

	raw, contentType := buildMultipart(t, [][2]string{{"name", "ada"}}, false)
	orig := Decode(raw, contentType)
	require.Equal(t, KindForm, orig.Kind())

	out, err := orig.Encode(map[string]string{"name": "grace", "role": "admin"})
	require.NoError(t, err)

	// The rebuilt body must parse with the boundary from the original
	// Content-Type header, which the wrapper never rewrites.
	_, params, err := parseMediaType(contentType)
	require.NoError(t, err)
	r := multipart.NewReader(bytes.NewReader(out), params["boundary"])
	form, err := r.ReadForm(1 << 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"grace"}, form.Value["name"])
	assert.Equal(t, []string{"admin"}, form.Value["role"])
}

func TestEncodeMultipartNonMapKeepsOriginal(t *testing.T) {
	t.Parallel()

	raw, contentType := buildMultipart(t, [][2]string{{"name", "ada"}}, false)
	orig := Decode(raw, contentType)

	out, err := orig.Encode("a plain string")
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}

func TestEncodeOpaque(t *testing.T) {
	t.Parallel()

	orig := Decode([]byte{0x01, 0x02}, "application/octet-stream")

	out, err := orig.Encode([]byte{0x09})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x09}, out)

	out, err = orig.Encode(map[string]any{"not": "expressible"})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, out, "inexpressible replacements pass the original through")
}

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "none", KindNone.String())
	assert.Equal(t, "text", KindText.String())
	assert.Equal(t, "form", KindForm.String())
	assert.Equal(t, "opaque", KindOpaque.String())
	assert.Equal(t, "unknown", Kind(42).String())
}

// unmarshalJSON keeps assertions honest against the standard library rather
// than the codec's own JSON dependency.
func unmarshalJSON(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func parseMediaType(contentType string) (string, map[string]string, error) {
	return mime.ParseMediaType(contentType)
}
