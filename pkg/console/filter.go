package console

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/getwiretap/wiretap/pkg/event"
)

// filterSampleEnv declares the variables and types available to logFilter
// expressions. Compilation against it catches unknown identifiers up front.
func filterSampleEnv() map[string]interface{} {
	return map[string]interface{}{
		"phase":      "",
		"method":     "",
		"url":        "",
		"endpoint":   "",
		"status":     0,
		"durationMs": int64(0),
		"error":      "",
		"captured":   false,
	}
}

type filter struct {
	program *vm.Program
}

// compileFilter compiles a logFilter expression. An empty expression yields
// a nil filter, which admits everything.
func compileFilter(expression string) (*filter, error) {
	if expression == "" {
		return nil, nil
	}
	program, err := expr.Compile(expression, expr.Env(filterSampleEnv()))
	if err != nil {
		return nil, err
	}
	return &filter{program: program}, nil
}

// allow reports whether the record passes the filter. Evaluation errors and
// non-boolean results admit the record, so a bad filter never hides traffic.
func (f *filter) allow(rec *event.Record) bool {
	if f == nil || f.program == nil {
		return true
	}
	result, err := expr.Run(f.program, filterEnv(rec))
	if err != nil {
		return true
	}
	pass, ok := result.(bool)
	if !ok {
		return true
	}
	return pass
}

func filterEnv(rec *event.Record) map[string]interface{} {
	return map[string]interface{}{
		"phase":      string(rec.Phase),
		"method":     rec.Method,
		"url":        rec.URL,
		"endpoint":   rec.Endpoint,
		"status":     rec.Status,
		"durationMs": rec.DurationMs,
		"error":      rec.Error,
		"captured":   rec.CaptureID != "",
	}
}
