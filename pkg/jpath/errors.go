package jpath

import "fmt"

// Position pins an error to the point in the query text it came from. Line
// is 1-based; Col is 0-based and counts runes since the start of Line,
// matching the convention the reference grammar's error messages use.
type Position struct {
	Line int
	Col  int
}

// HasPosition reports whether a non-zero position was recorded.
func (p Position) HasPosition() bool { return p.Line > 0 }

// Error is the base of every error jpath returns for a malformed query or a
// query that fails at evaluation time. Concrete failures are always one of
// LexicalError, SyntaxError, FunctionError or EvalError; Error itself is
// only constructed directly for errors that don't fit those categories.
type Error struct {
	Kind    string
	Message string
	Pos     Position
	Cause   error
}

func (e *Error) Error() string {
	if e.Pos.HasPosition() {
		return fmt.Sprintf("%s at line %d (position: %d)", e.Message, e.Pos.Line, e.Pos.Col)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause, if any, for errors.Is/errors.As -- e.g.
// a FunctionError wrapping a non-JPath error raised inside a function body.
func (e *Error) Unwrap() error { return e.Cause }

func newError(kind, msg string, pos Position) *Error {
	return &Error{Kind: kind, Message: msg, Pos: pos}
}

func newWrappedError(kind, msg string, pos Position, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Pos: pos, Cause: cause}
}

// LexicalError reports a character the tokenizer could not classify.
type LexicalError struct{ *Error }

func NewLexicalError(msg string, pos Position) *LexicalError {
	return &LexicalError{newError("lexical", msg, pos)}
}

// SyntaxError reports a token the parser did not expect, including premature
// end of input (Pos is zero-valued in that case, matching the base message
// with no "at line ..." suffix).
type SyntaxError struct{ *Error }

func NewSyntaxError(msg string, pos Position) *SyntaxError {
	return &SyntaxError{newError("syntax", msg, pos)}
}

// FunctionError reports a call to an unknown function, a call whose
// receiver isn't a Selection, or a panic/failure raised from inside a
// function handle.
type FunctionError struct{ *Error }

func NewFunctionError(msg string, pos Position) *FunctionError {
	return &FunctionError{newError("function", msg, pos)}
}

// WrapFunctionError implements spec §4.7's wrapping rule: a non-JPath error
// (or recovered panic) surfacing from inside a registered function body is
// re-raised as a FunctionError carrying the original message, except that an
// error already in the JPathError family passes through unchanged.
func WrapFunctionError(name string, pos Position, cause error) error {
	if IsJPathError(cause) {
		return cause
	}
	return &FunctionError{newWrappedError("function", name+": "+cause.Error(), pos, cause)}
}

func errFromRecover(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}

// EvalError reports a runtime failure discovered while walking the AST that
// isn't attributable to a specific function call: type mismatches in
// arithmetic/comparison, comparing an empty Selection, dividing by zero, and
// so on.
type EvalError struct{ *Error }

func NewEvalError(msg string, pos Position) *EvalError {
	return &EvalError{newError("eval", msg, pos)}
}

// IsJPathError reports whether err is one of jpath's own error kinds.
func IsJPathError(err error) bool {
	switch err.(type) {
	case *Error, *LexicalError, *SyntaxError, *FunctionError, *EvalError:
		return true
	default:
		return false
	}
}
