package core

import (
	"fmt"
	"strings"

	"go.crosslang.dev/pkg/lexer"
)

// Error is implemented by every translation error.
type Error interface {
	error
	Kind() string
	Pos() lexer.Position
	// Message is the error text without position information.
	Message() string
	Unwrap() error
}

// ParseError means the source could not be parsed. It aborts the request.
type ParseError struct {
	lexer.Position
	Msg   string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s: %s", e.Position, e.Msg)
}
func (e *ParseError) Kind() string        { return "Parse" }
func (e *ParseError) Pos() lexer.Position { return e.Position }
func (e *ParseError) Message() string     { return e.Msg }
func (e *ParseError) Unwrap() error       { return e.Cause }

// EntryPointError means no program entry point could be located. It aborts
// the request.
type EntryPointError struct {
	lexer.Position
	Msg string
}

func (e *EntryPointError) Error() string {
	return fmt.Sprintf("entry point not found: %s", e.Msg)
}
func (e *EntryPointError) Kind() string        { return "EntryPoint" }
func (e *EntryPointError) Pos() lexer.Position { return e.Position }
func (e *EntryPointError) Message() string     { return e.Msg }
func (e *EntryPointError) Unwrap() error       { return nil }

// UnsupportedError reports a construct outside the supported subset. It is
// recovered locally: the construct becomes a placeholder and a warning.
type UnsupportedError struct {
	lexer.Position
	Construct string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported construct at %s: %s", e.Position, e.Construct)
}
func (e *UnsupportedError) Kind() string        { return "Unsupported" }
func (e *UnsupportedError) Pos() lexer.Position { return e.Position }
func (e *UnsupportedError) Message() string     { return "unsupported " + e.Construct }
func (e *UnsupportedError) Unwrap() error       { return nil }

// GenerationError is a failure to render one statement. The statement
// degrades to a placeholder comment.
type GenerationError struct {
	Node  string
	Msg   string
	Cause error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cannot generate %s: %s: %v", e.Node, e.Msg, e.Cause)
	}

	return fmt.Sprintf("cannot generate %s: %s", e.Node, e.Msg)
}
func (e *GenerationError) Kind() string        { return "Generation" }
func (e *GenerationError) Pos() lexer.Position { return lexer.Position{} }
func (e *GenerationError) Message() string     { return e.Msg }
func (e *GenerationError) Unwrap() error       { return e.Cause }

// Warning is a recovered problem returned to the caller.
type Warning struct {
	Kind    string
	Pos     lexer.Position
	Message string
}

func (w Warning) String() string {
	var str strings.Builder
	str.WriteString(strings.ToLower(w.Kind))

	if w.Pos.Line > 0 {
		str.WriteString(" at ")
		str.WriteString(w.Pos.String())
	}

	str.WriteString(": ")
	str.WriteString(w.Message)

	return str.String()
}

// WarningFrom converts a recovered error into a warning.
func WarningFrom(err Error) Warning {
	return Warning{
		Kind:    err.Kind(),
		Pos:     err.Pos(),
		Message: err.Message(),
	}
}
