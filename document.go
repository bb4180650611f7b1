package sysconfig

import (
	"fmt"
	"strings"
)

// Document is the parsed form of a whole configuration file: an ordered,
// immutable list of commands, one per non-empty line.
type Document struct {
	Commands []*Command
}

// Command is one configuration line. Arguments keep their surface order and
// duplicates are passed through verbatim; interpretation of repeated keys is
// the consumer's call, not the parser's.
type Command struct {
	Word      string
	Arguments []Argument

	// Line the command starts on, 1-based.
	Line int
}

// Argument is either a Named --key="value" binding or a Positional value.
type Argument interface{ argument() }

type Named struct {
	Key   string
	Value string
}

func (Named) argument() {}

type Positional struct {
	Value string
}

func (Positional) argument() {}

// Options collapses the named arguments into a key/value map. The first
// occurrence of a key wins, matching how the instruction layer has always
// read repeated options. Returns nil when the command has no named arguments.
func (c *Command) Options() map[string]string {
	var opts map[string]string
	for _, arg := range c.Arguments {
		named, ok := arg.(Named)
		if !ok {
			continue
		}
		if opts == nil {
			opts = make(map[string]string)
		}
		if _, dup := opts[named.Key]; !dup {
			opts[named.Key] = named.Value
		}
	}
	return opts
}

// Positionals returns the positional argument values in order.
func (c *Command) Positionals() []string {
	var vals []string
	for _, arg := range c.Arguments {
		if pos, ok := arg.(Positional); ok {
			vals = append(vals, pos.Value)
		}
	}
	return vals
}

func (c *Command) String() string {
	var sb strings.Builder
	sb.WriteString(c.Word)
	for _, arg := range c.Arguments {
		sb.WriteByte(' ')
		switch a := arg.(type) {
		case Named:
			fmt.Fprintf(&sb, "--%s=%s", a.Key, QuoteString(a.Value))
		case Positional:
			if isBareString(a.Value) {
				sb.WriteString(a.Value)
			} else {
				sb.WriteString(QuoteString(a.Value))
			}
		}
	}
	return sb.String()
}

// String renders the document back into the command language. Feeding the
// result through the parser reproduces the document.
func (d *Document) String() string {
	var sb strings.Builder
	for _, c := range d.Commands {
		sb.WriteString(c.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

func isBareString(v string) bool {
	if v == "" || strings.HasPrefix(v, "--") {
		return false
	}
	for i := 0; i < len(v); i++ {
		if !isBareChar(v[i]) {
			return false
		}
	}
	return true
}

// QuoteString encodes a value as a quoted string token, inverse of the
// lexer's escape decoding.
func QuoteString(v string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(v); i++ {
		switch ch := v[i]; ch {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if ch < 0x20 {
				fmt.Fprintf(&sb, `\u%04x`, ch)
			} else {
				sb.WriteByte(ch)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
