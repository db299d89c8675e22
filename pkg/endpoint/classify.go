// Package endpoint derives coarse grouping keys from URLs for per-endpoint
// aggregation.
package endpoint

import (
	"net/url"
	"strings"
)

// Classify derives the grouping key for a URL: the first three `/`-separated
// path segments, the leading empty segment included, which groups calls by
// their first two non-empty path segments ("/api/users/42" -> "/api/users").
// URLs that do not parse as absolute get the same heuristic applied to the
// raw string. Classify never fails; malformed input degrades to a
// best-effort key.
func Classify(rawURL string) string {
	source := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.IsAbs() {
		source = u.Path
		if source == "" {
			source = "/"
		}
	}

	segments := strings.Split(source, "/")
	if len(segments) > 3 {
		segments = segments[:3]
	}
	return strings.Join(segments, "/")
}
