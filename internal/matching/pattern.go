// Package matching implements the method and URL tests used to resolve
// capture registrations against outbound calls.
package matching

import (
	"regexp"
	"strings"
)

// MethodWildcard matches every HTTP method.
const MethodWildcard = "*"

// schemeRe strips a leading protocol scheme ("https://", "wss://", ...).
var schemeRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// Pattern is a URL test: either a literal substring or a compiled regular
// expression. Literal patterns are normalized (scheme and trailing slashes
// stripped) on both sides and tested by containment; compiled patterns run
// against the raw, unmodified URL.
type Pattern struct {
	literal  string
	re       *regexp.Regexp
	compiled bool
}

// NewLiteral builds a substring pattern.
func NewLiteral(pattern string) Pattern {
	return Pattern{literal: pattern}
}

// NewRegexp builds a compiled pattern. A nil re matches nothing.
func NewRegexp(re *regexp.Regexp) Pattern {
	return Pattern{re: re, compiled: true}
}

// Match reports whether url passes the pattern's URL test.
func (p Pattern) Match(url string) bool {
	if p.compiled {
		return p.re != nil && p.re.MatchString(url)
	}
	return strings.Contains(NormalizeURL(url), NormalizeURL(p.literal))
}

// IsRegexp reports whether the pattern is a compiled expression.
func (p Pattern) IsRegexp() bool {
	return p.compiled
}

// String returns the pattern description shown in capture listings.
func (p Pattern) String() string {
	if p.compiled {
		if p.re == nil {
			return ""
		}
		return p.re.String()
	}
	return p.literal
}

// NormalizeURL strips a leading protocol scheme and any trailing slashes so
// that "https://api.example.com/v1/" and "api.example.com/v1" compare equal
// under containment.
func NormalizeURL(s string) string {
	s = schemeRe.ReplaceAllString(s, "")
	return strings.TrimRight(s, "/")
}

// MatchMethod reports whether a registered method (already uppercased, or the
// wildcard) covers the candidate method.
func MatchMethod(registered, candidate string) bool {
	if registered == MethodWildcard {
		return true
	}
	return registered == strings.ToUpper(candidate)
}
