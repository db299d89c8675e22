package payload

import (
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// transcode converts a textual body with a declared non-UTF-8 charset to
// UTF-8 so JSON parsing and event records see proper strings. Unknown
// charsets and transcoding failures fall back to the original bytes.
func transcode(raw []byte, charset string) []byte {
	switch strings.ToLower(charset) {
	case "", "utf-8", "utf8", "us-ascii", "ascii":
		return raw
	}

	enc, err := htmlindex.Get(charset)
	if err != nil || enc == nil {
		return raw
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return raw
	}
	return out
}
