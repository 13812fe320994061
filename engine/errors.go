package engine

import (
	"errors"
	"fmt"
	"regexp/syntax"
)

// ErrUnavailable is returned when a backend cannot be loaded.
var ErrUnavailable = errors.New("regex backend unavailable")

// CompileError represents a pattern compilation error.
type CompileError struct {
	Backend string
	Pattern string
	Err     error
}

// Error implements the error interface.
// Syntax errors are returned unchanged so messages match regexp.Compile.
func (e *CompileError) Error() string {
	var syntaxErr *syntax.Error
	if errors.As(e.Err, &syntaxErr) {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: compile %q: %v", e.Backend, e.Pattern, e.Err)
}

// Unwrap returns the underlying error.
func (e *CompileError) Unwrap() error {
	return e.Err
}
