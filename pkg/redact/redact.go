// Package redact masks sensitive values in decoded bodies before they are
// logged or recorded. Masking works on the logged representation only; the
// bytes on the wire and the values handed to capture callbacks are never
// touched.
package redact

import (
	"log/slog"

	"github.com/ohler55/ojg/alt"
	"github.com/ohler55/ojg/jp"
)

// Mask replaces every value matched by a redaction path.
const Mask = "[REDACTED]"

// Redactor applies a set of JSONPath expressions to decoded bodies,
// replacing matched values with Mask.
type Redactor struct {
	exprs []jp.Expr
	paths []string
}

// New compiles the given JSONPath expressions. Invalid paths are skipped
// with a warning rather than failing the whole set.
func New(paths []string, logger *slog.Logger) *Redactor {
	r := &Redactor{}
	for _, path := range paths {
		expr, err := jp.ParseString(path)
		if err != nil {
			if logger != nil {
				logger.Warn("skipping invalid redaction path", "path", path, "error", err)
			}
			continue
		}
		r.exprs = append(r.exprs, expr)
		r.paths = append(r.paths, path)
	}
	return r
}

// Active reports whether any redaction paths compiled.
func (r *Redactor) Active() bool {
	return r != nil && len(r.exprs) > 0
}

// Paths returns the compiled path expressions in input order.
func (r *Redactor) Paths() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.paths...)
}

// Apply returns body with all matched values replaced by Mask. The input is
// never mutated: when a path matches, masking happens on a deep copy. When
// nothing matches, the original value is returned as-is.
func (r *Redactor) Apply(body any) any {
	if !r.Active() || body == nil {
		return body
	}

	var hits []jp.Expr
	for _, expr := range r.exprs {
		if expr.Has(body) {
			hits = append(hits, expr)
		}
	}
	if len(hits) == 0 {
		return body
	}

	copied := alt.Dup(body)
	for _, expr := range hits {
		_ = expr.Set(copied, Mask)
	}
	return copied
}
