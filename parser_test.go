package sysconfig

import (
	"reflect"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

type parserTester struct {
	input string
	doc   *Document
}

func (pt *parserTester) runTest(test *testing.T, name string) {
	p := NewParser()

	doc, err := p.ParseString("", pt.input)
	if err != nil {
		test.Errorf("[%s] failed to parse config: %v", name, err)
		return
	}

	if !reflect.DeepEqual(doc, pt.doc) {
		test.Errorf("[%s] expected %+v, got %+v", name, pt.doc, doc)
	}
}

var parserTests = map[string]*parserTester{
	"word-only": {
		input: "set-hostname\n",
		doc: &Document{Commands: []*Command{
			{Word: "set-hostname", Line: 1},
		}},
	},
	"named-argument": {
		input: `set-hostname --value="my-host"` + "\n",
		doc: &Document{Commands: []*Command{
			{Word: "set-hostname", Line: 1, Arguments: []Argument{
				Named{Key: "value", Value: "my-host"},
			}},
		}},
	},
	"mixed-arguments": {
		input: `zpool-create --ashift="12" mirror c1t0d0s0 c2t0d0s0` + "\n",
		doc: &Document{Commands: []*Command{
			{Word: "zpool-create", Line: 1, Arguments: []Argument{
				Named{Key: "ashift", Value: "12"},
				Positional{Value: "mirror"},
				Positional{Value: "c1t0d0s0"},
				Positional{Value: "c2t0d0s0"},
			}},
		}},
	},
	"digit-in-argument-key": {
		input: `network_interface --static6="fd00::1/64" net0` + "\n",
		doc: &Document{Commands: []*Command{
			{Word: "network_interface", Line: 1, Arguments: []Argument{
				Named{Key: "static6", Value: "fd00::1/64"},
				Positional{Value: "net0"},
			}},
		}},
	},
	"quoted-positional": {
		input: `motd "hello, world"` + "\n",
		doc: &Document{Commands: []*Command{
			{Word: "motd", Line: 1, Arguments: []Argument{
				Positional{Value: "hello, world"},
			}},
		}},
	},
	"duplicate-keys-preserved": {
		input: `terminal --type="vt100" --type="xterm"` + "\n",
		doc: &Document{Commands: []*Command{
			{Word: "terminal", Line: 1, Arguments: []Argument{
				Named{Key: "type", Value: "vt100"},
				Named{Key: "type", Value: "xterm"},
			}},
		}},
	},
	"comments-and-blank-lines": {
		input: "# header comment\n\nlocale en_US # trailing comment\n\n\ntimezone UTC\n",
		doc: &Document{Commands: []*Command{
			{Word: "locale", Line: 3, Arguments: []Argument{Positional{Value: "en_US"}}},
			{Word: "timezone", Line: 6, Arguments: []Argument{Positional{Value: "UTC"}}},
		}},
	},
	"escapes": {
		input: `motd --text="a\"b\\c\/d\te\nf ☃"` + "\n",
		doc: &Document{Commands: []*Command{
			{Word: "motd", Line: 1, Arguments: []Argument{
				Named{Key: "text", Value: "a\"b\\c/d\te\nf ☃"},
			}},
		}},
	},
	"missing-final-newline": {
		input: "locale en_US",
		doc: &Document{Commands: []*Command{
			{Word: "locale", Line: 1, Arguments: []Argument{Positional{Value: "en_US"}}},
		}},
	},
	"whitespace-insensitive": {
		input: "route \tnet0   10.0.0.1\n",
		doc: &Document{Commands: []*Command{
			{Word: "route", Line: 1, Arguments: []Argument{
				Positional{Value: "net0"},
				Positional{Value: "10.0.0.1"},
			}},
		}},
	},
}

func TestParser(t *testing.T) {
	for name, pt := range parserTests {
		pt.runTest(t, name)
	}
}

func TestParserWordOnlyCommands(t *testing.T) {
	for _, word := range []string{"a", "zz", "set-hostname", "a.b_c-d", "...", "__"} {
		p := NewParser()
		doc, err := p.ParseString("", word+"\n")
		if err != nil {
			t.Errorf("[%s] failed to parse: %v", word, err)
			continue
		}
		want := &Document{Commands: []*Command{{Word: word, Line: 1}}}
		if !reflect.DeepEqual(doc, want) {
			t.Errorf("[%s] expected %+v, got %+v", word, want, doc)
		}
	}
}

type parserErrTester struct {
	input  string
	kind   ErrorKind
	offset int
}

func (pt *parserErrTester) runTest(test *testing.T, name string) {
	p := NewParser()

	_, err := p.ParseString("", pt.input)
	if err == nil {
		test.Errorf("[%s] expected a parse error, got none", name)
		return
	}

	var perr *ParseError
	if !errors.As(err, &perr) {
		test.Errorf("[%s] expected a *ParseError, got %T: %v", name, err, err)
		return
	}
	if perr.Kind != pt.kind {
		test.Errorf("[%s] expected kind %s, got %s (%v)", name, pt.kind, perr.Kind, perr)
	}
	if perr.Pos.Offset != pt.offset {
		test.Errorf("[%s] expected offset %d, got %d (%v)", name, pt.offset, perr.Pos.Offset, perr)
	}
}

var parserErrTests = map[string]*parserErrTester{
	"unterminated-string": {
		input:  `cmd --key="open` + "\n",
		kind:   UnterminatedString,
		offset: 10,
	},
	"invalid-escape": {
		input:  `cmd --key="a\qb"` + "\n",
		kind:   InvalidEscape,
		offset: 12,
	},
	"short-unicode-escape": {
		input:  `cmd --key="\u12"` + "\n",
		kind:   InvalidEscape,
		offset: 11,
	},
	"bare-token-bad-char": {
		input:  "cmd foo!bar\n",
		kind:   UnexpectedToken,
		offset: 7,
	},
	"empty-document": {
		input:  "",
		kind:   UnexpectedToken,
		offset: 0,
	},
	"comment-only-document": {
		input:  "# nothing here\n",
		kind:   UnexpectedToken,
		offset: 15,
	},
	"uppercase-command-word": {
		input:  "Locale en_US\n",
		kind:   UnexpectedToken,
		offset: 0,
	},
	"digits-only-argument-key": {
		input:  `cmd --123="x"` + "\n",
		kind:   UnexpectedToken,
		offset: 6,
	},
	"named-arg-missing-quote": {
		input:  "cmd --key=value\n",
		kind:   UnexpectedToken,
		offset: 10,
	},
	"named-arg-missing-equals": {
		input:  "cmd --key value\n",
		kind:   UnexpectedToken,
		offset: 9,
	},
	"second-line-error": {
		input:  "locale en_US\ncmd \"open\n",
		kind:   UnterminatedString,
		offset: 17,
	},
}

func TestParserErrors(t *testing.T) {
	for name, pt := range parserErrTests {
		pt.runTest(t, name)
	}
}

func TestParserErrorLineNumbers(t *testing.T) {
	p := NewParser()

	_, err := p.ParseString("", "locale en_US\ntimezone UTC\ncmd foo!bar\n")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected a *ParseError, got %v", err)
	}
	if perr.Pos.Line != 3 {
		t.Errorf("expected error on line 3, got line %d", perr.Pos.Line)
	}
}

func TestParserKeywordRegistry(t *testing.T) {
	p := NewParser()
	p.AddKeyword("locale", KeywordDefinition{})
	p.AddKeyword("setup_dns", KeywordDefinition{Options: []string{"domain", "search"}})

	if _, err := p.ParseString("", "locale en_US\n"); err != nil {
		t.Errorf("registered keyword rejected: %v", err)
	}
	if _, err := p.ParseString("", `setup_dns --domain="example.com" 192.0.2.1`+"\n"); err != nil {
		t.Errorf("registered option rejected: %v", err)
	}

	_, err := p.ParseString("", "hostname myhost\n")
	if err == nil || !strings.Contains(err.Error(), "not known") {
		t.Errorf("expected unknown keyword error, got %v", err)
	}

	_, err = p.ParseString("", `setup_dns --nameserver="192.0.2.1"`+"\n")
	if err == nil || !strings.Contains(err.Error(), "not known for keyword") {
		t.Errorf("expected unknown option error, got %v", err)
	}
}
