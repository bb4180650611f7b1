package sysconfig

import (
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Token types of the configuration command language. The grammar is
// line-oriented: every non-empty, non-comment line is a command word followed
// by named (--key="value") and positional (bare or quoted) arguments.
const (
	TokenEOL lexer.TokenType = -(iota + 2)
	TokenWord
	TokenBare
	TokenString
	TokenFlagKey
)

// configLexer implements lexer.Definition for the command language. Escape
// decoding happens here so the parser only ever sees fully decoded values,
// and so lexical errors carry the exact byte offset they were detected at.
type configLexer struct{}

func (configLexer) Symbols() map[string]lexer.TokenType {
	return map[string]lexer.TokenType{
		"EOF":     lexer.EOF,
		"EOL":     TokenEOL,
		"Word":    TokenWord,
		"Bare":    TokenBare,
		"String":  TokenString,
		"FlagKey": TokenFlagKey,
	}
}

func (d configLexer) Lex(filename string, r io.Reader) (lexer.Lexer, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return d.LexString(filename, string(b))
}

func (configLexer) LexString(filename, input string) (lexer.Lexer, error) {
	return &tokenStream{
		scan: scanner{
			input: input,
			pos:   lexer.Position{Filename: filename, Line: 1, Column: 1},
		},
	}, nil
}

func isWordChar(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || ch == '.' || ch == '-' || ch == '_'
}

func isKeyChar(ch byte) bool {
	return isWordChar(ch) || (ch >= '0' && ch <= '9')
}

func isBareChar(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') || ch == '.' || ch == '-' || ch == '_'
}

func isAllDigits(v string) bool {
	for i := 0; i < len(v); i++ {
		if v[i] < '0' || v[i] > '9' {
			return false
		}
	}
	return true
}

func isHexDigit(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

// scanner walks the raw input byte by byte, keeping the byte offset and the
// 1-based line/column in sync.
type scanner struct {
	input string
	pos   lexer.Position
}

func (s *scanner) eof() bool {
	return s.pos.Offset >= len(s.input)
}

func (s *scanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.input[s.pos.Offset]
}

func (s *scanner) peekAhead(n int) byte {
	if s.pos.Offset+n >= len(s.input) {
		return 0
	}
	return s.input[s.pos.Offset+n]
}

func (s *scanner) advance() byte {
	ch := s.peek()
	if s.eof() {
		return 0
	}
	s.pos.Offset++
	if ch == '\n' {
		s.pos.Line++
		s.pos.Column = 1
	} else {
		s.pos.Column++
	}
	return ch
}

type tokenStream struct {
	scan scanner

	// set once a token was produced on the current line; an EOL token is
	// only emitted for lines that carried tokens, so blank and comment-only
	// lines vanish before the grammar ever sees them.
	lineHasTokens bool
}

func (t *tokenStream) Next() (lexer.Token, error) {
	for {
		if t.scan.eof() {
			if t.lineHasTokens {
				t.lineHasTokens = false
				return lexer.Token{Type: TokenEOL, Value: "\n", Pos: t.scan.pos}, nil
			}
			return lexer.Token{Type: lexer.EOF, Pos: t.scan.pos}, nil
		}
		switch ch := t.scan.peek(); {
		case ch == ' ' || ch == '\t' || ch == '\r':
			t.scan.advance()
		case ch == '#':
			for !t.scan.eof() && t.scan.peek() != '\n' {
				t.scan.advance()
			}
		case ch == '\n':
			pos := t.scan.pos
			t.scan.advance()
			if t.lineHasTokens {
				t.lineHasTokens = false
				return lexer.Token{Type: TokenEOL, Value: "\n", Pos: pos}, nil
			}
		default:
			return t.scanToken()
		}
	}
}

func (t *tokenStream) scanToken() (lexer.Token, error) {
	atLineStart := !t.lineHasTokens
	t.lineHasTokens = true

	switch ch := t.scan.peek(); {
	case ch == '"':
		return t.scanString()
	case atLineStart && isWordChar(ch):
		return t.scanRun(TokenWord, isWordChar), nil
	case ch == '-' && t.scan.peekAhead(1) == '-':
		return t.scanFlagKey()
	case isBareChar(ch):
		return t.scanRun(TokenBare, isBareChar), nil
	default:
		return lexer.Token{}, syntaxErrorf(UnexpectedToken, t.scan.pos,
			"unexpected character %q", ch)
	}
}

// scanRun consumes the longest run of accepted characters. Tokens never need
// separating whitespace; a character no token can start is reported as the
// error position, which matches the grammar's greedy ordered-choice reading.
func (t *tokenStream) scanRun(typ lexer.TokenType, accept func(byte) bool) lexer.Token {
	pos := t.scan.pos
	for !t.scan.eof() && accept(t.scan.peek()) {
		t.scan.advance()
	}
	return lexer.Token{Type: typ, Value: t.scan.input[pos.Offset:t.scan.pos.Offset], Pos: pos}
}

// scanFlagKey lexes the "--key=" head of a named argument. The leading "--"
// commits to the named-argument form; a positional that genuinely starts with
// two dashes has to be quoted. Keys take the command-word alphabet plus
// digits (static6), but may not be digits only.
func (t *tokenStream) scanFlagKey() (lexer.Token, error) {
	pos := t.scan.pos
	t.scan.advance()
	t.scan.advance()

	keyPos := t.scan.pos
	for !t.scan.eof() && isKeyChar(t.scan.peek()) {
		t.scan.advance()
	}
	key := t.scan.input[keyPos.Offset:t.scan.pos.Offset]
	if key == "" {
		return lexer.Token{}, syntaxErrorf(UnexpectedToken, t.scan.pos,
			"expected argument key after %q", "--")
	}
	if isAllDigits(key) {
		return lexer.Token{}, syntaxErrorf(UnexpectedToken, keyPos,
			"argument key %q must contain a non-digit", key)
	}
	if t.scan.peek() != '=' {
		return lexer.Token{}, syntaxErrorf(UnexpectedToken, t.scan.pos,
			"expected '=' after argument key %q", key)
	}
	t.scan.advance()
	if t.scan.peek() != '"' {
		return lexer.Token{}, syntaxErrorf(UnexpectedToken, t.scan.pos,
			"value of argument %q must be a quoted string", key)
	}
	return lexer.Token{Type: TokenFlagKey, Value: key, Pos: pos}, nil
}

// scanString consumes a quoted string and decodes its escapes. The token
// position is the opening quote. Any byte except an unescaped quote or
// backslash may appear literally, newlines included.
func (t *tokenStream) scanString() (lexer.Token, error) {
	pos := t.scan.pos
	t.scan.advance()

	var sb strings.Builder
	for {
		if t.scan.eof() {
			return lexer.Token{}, syntaxErrorf(UnterminatedString, pos,
				"quoted string is never closed")
		}
		switch t.scan.peek() {
		case '"':
			t.scan.advance()
			return lexer.Token{Type: TokenString, Value: sb.String(), Pos: pos}, nil
		case '\\':
			escPos := t.scan.pos
			t.scan.advance()
			if t.scan.eof() {
				return lexer.Token{}, syntaxErrorf(UnterminatedString, pos,
					"quoted string is never closed")
			}
			if err := t.scanEscape(&sb, escPos); err != nil {
				return lexer.Token{}, err
			}
		default:
			sb.WriteByte(t.scan.advance())
		}
	}
}

func (t *tokenStream) scanEscape(sb *strings.Builder, escPos lexer.Position) error {
	switch ch := t.scan.advance(); ch {
	case '"', '\\', '/':
		sb.WriteByte(ch)
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'n':
		sb.WriteByte('\n')
	case 'r':
		sb.WriteByte('\r')
	case 't':
		sb.WriteByte('\t')
	case 'u':
		start := t.scan.pos.Offset
		for i := 0; i < 4; i++ {
			if t.scan.eof() || !isHexDigit(t.scan.peek()) {
				return syntaxErrorf(InvalidEscape, escPos,
					`\u must be followed by exactly 4 hex digits`)
			}
			t.scan.advance()
		}
		code, err := strconv.ParseUint(t.scan.input[start:t.scan.pos.Offset], 16, 32)
		if err != nil {
			return syntaxErrorf(InvalidEscape, escPos, `invalid \u escape: %v`, err)
		}
		sb.WriteRune(rune(code))
	default:
		return syntaxErrorf(InvalidEscape, escPos, `unrecognized escape sequence \%c`, ch)
	}
	return nil
}
