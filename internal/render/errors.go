package render

import (
	"errors"
	"strings"
)

// Error kinds surfaced by rendering. Raw parser errors never escape
// unwrapped; callers match with errors.Is.
var (
	// ErrSyntax marks malformed template source, including unknown
	// functions and unresolvable parent templates.
	ErrSyntax = errors.New("template syntax error")

	// ErrUndefined marks references to variables or fields missing from
	// the render context.
	ErrUndefined = errors.New("undefined template reference")
)

// IsRenderError reports whether err is any rendering failure.
func IsRenderError(err error) bool {
	return errors.Is(err, ErrSyntax) || errors.Is(err, ErrUndefined)
}

// classifyExecError maps a text/template execution error to an error kind.
// Missing map keys, missing struct fields and nil dereferences are context
// problems; anything else is treated as a template authoring problem.
func classifyExecError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "no entry for key"),
		strings.Contains(msg, "can't evaluate field"),
		strings.Contains(msg, "nil pointer evaluating"),
		strings.Contains(msg, "nil data; no entry for key"):
		return ErrUndefined
	default:
		return ErrSyntax
	}
}
