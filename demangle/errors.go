package demangle

import (
	"errors"
	"fmt"
	"strings"
)

// Errors
var (
	ErrUnexpectedToken      = errors.New("demangle: unexpected token")
	ErrDuplicateField       = errors.New("demangle: declaration field set twice")
	ErrTopLevelMultiPointer = errors.New("demangle: multi-pointer header in outermost type")
	ErrTooDeep              = errors.New("demangle: nesting exceeds maximum depth")
)

// SyntaxError reports a token the grammar did not accept.
type SyntaxError struct {
	Input    string      // Full encoded declaration
	Expected []TokenKind // Kinds acceptable at this point
	Got      Token       // Offending token
}

func (e *SyntaxError) Error() string {
	expected := make([]string, len(e.Expected))
	for i, k := range e.Expected {
		expected[i] = k.String()
	}
	return fmt.Sprintf("demangle: expected %s at offset %d in %q; got %s",
		strings.Join(expected, "|"), e.Got.Pos, e.Input, e.Got)
}

func (e *SyntaxError) Unwrap() error { return ErrUnexpectedToken }

// FieldError reports a declaration field that the input tried to set twice.
type FieldError struct {
	Field    string
	Previous string
	Value    string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("demangle: already have %s %q; got %q", e.Field, e.Previous, e.Value)
}

func (e *FieldError) Unwrap() error { return ErrDuplicateField }
