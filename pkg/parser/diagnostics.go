package parser

import (
	"errors"
	"fmt"
)

// ErrNoGlyphs is wrapped by the syntax error reported for a program without glyphs.
var ErrNoGlyphs = errors.New("no glyph found")

// Point is a grid coordinate: X is the column, Y the row.
type Point struct {
	X int
	Y int
}

func (p Point) String() string {
	return fmt.Sprintf("%d, %d", p.X, p.Y)
}

// SyntaxError reports a malformed program. Point, when set, is the offending cell.
type SyntaxError struct {
	Message string
	Point   *Point
	Err     error
}

func (e *SyntaxError) Error() string {
	return "syntax error: " + e.Message
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// InternalError reports a state the lexer should never reach with a consistent
// symbol table.
type InternalError struct {
	Message string
	Point   *Point
	Err     error
}

func (e *InternalError) Error() string {
	return "internal error: " + e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

func syntaxErrorf(at *Point, format string, args ...any) *SyntaxError {
	return &SyntaxError{Message: fmt.Sprintf(format, args...), Point: at}
}

func internalErrorf(at *Point, format string, args ...any) *InternalError {
	return &InternalError{Message: fmt.Sprintf(format, args...), Point: at}
}

// inGlyph prefixes lexer and arranger errors with the glyph they came from.
func inGlyph(index int, err error) error {
	if err == nil {
		return nil
	}
	var syntaxErr *SyntaxError
	if errors.As(err, &syntaxErr) {
		syntaxErr.Message = fmt.Sprintf("glyph %d: %s", index, syntaxErr.Message)
		return syntaxErr
	}
	var internalErr *InternalError
	if errors.As(err, &internalErr) {
		internalErr.Message = fmt.Sprintf("glyph %d: %s", index, internalErr.Message)
		return internalErr
	}
	return fmt.Errorf("glyph %d: %w", index, err)
}
