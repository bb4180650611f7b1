package sysconfig

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// ErrorKind classifies located syntax errors from both grammar engines.
type ErrorKind string

const (
	// Input does not match any expected grammar alternative.
	UnexpectedToken ErrorKind = "unexpected-token"
	// A quoted string was opened but never closed.
	UnterminatedString ErrorKind = "unterminated-string"
	// An escape sequence inside a quoted string is not recognized.
	InvalidEscape ErrorKind = "invalid-escape"
	// A non-empty shadow aging field is not all decimal digits.
	InvalidNumericField ErrorKind = "invalid-numeric-field"
	// A shadow password slot matches none of the recognized forms.
	InvalidPasswordField ErrorKind = "invalid-password-field"
	// A shadow line carries fewer than 9 colon-delimited slots.
	IncompleteRecord ErrorKind = "incomplete-record"
	// Leftover input after the last expected field.
	TrailingInput ErrorKind = "trailing-input"
)

// ParseError is a located syntax error. Offsets are byte-based, lines and
// columns start at 1. It satisfies participle.Error so the lexer can hand it
// straight back through the parser.
type ParseError struct {
	Kind ErrorKind
	Pos  lexer.Position
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Msg)
}

func (e *ParseError) Message() string { return e.Msg }

func (e *ParseError) Position() lexer.Position { return e.Pos }

func syntaxErrorf(kind ErrorKind, pos lexer.Position, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// asParseError normalizes whatever the parser stack produced into a
// *ParseError. Lexer errors already are one; participle structure errors
// become UnexpectedToken at the offending token.
func asParseError(err error) error {
	var perr *ParseError
	if errors.As(err, &perr) {
		return perr
	}
	var ute *participle.UnexpectedTokenError
	if errors.As(err, &ute) {
		return &ParseError{
			Kind: UnexpectedToken,
			Pos:  ute.Unexpected.Pos,
			Msg:  ute.Message(),
		}
	}
	var pe participle.Error
	if errors.As(err, &pe) {
		return &ParseError{
			Kind: UnexpectedToken,
			Pos:  pe.Position(),
			Msg:  pe.Message(),
		}
	}
	return errors.Wrap(err, "failed to parse configuration")
}
