package sysconfig

import (
	"io"
	"slices"

	"github.com/alecthomas/participle/v2"
	"github.com/pkg/errors"

	"github.com/sysconfig/pkg/ast"
)

// KeywordDefinition describes one registered command word: the named-argument
// keys it accepts.
type KeywordDefinition struct {
	Options []string `json:"options" yaml:"options"`
}

// Parser parses configuration command files. A Parser with registered
// keywords additionally rejects unknown command words and options; with an
// empty registry it accepts any grammatically valid input. Safe for
// concurrent use once built.
type Parser struct {
	parser   *participle.Parser[ast.Document]
	keywords map[string]KeywordDefinition
}

func NewParser() *Parser {
	p := participle.MustBuild[ast.Document](
		participle.Lexer(configLexer{}),
		participle.Union[ast.Arg](ast.Named{}, ast.Positional{}),
	)

	return &Parser{parser: p, keywords: map[string]KeywordDefinition{}}
}

// AddKeyword registers a keyword and returns the definition it replaced, if
// any.
func (p *Parser) AddKeyword(name string, def KeywordDefinition) *KeywordDefinition {
	prev, ok := p.keywords[name]
	p.keywords[name] = def
	if !ok {
		return nil
	}
	return &prev
}

func (p *Parser) Parse(fname string, r io.Reader) (*Document, error) {
	doc, err := p.parser.Parse(fname, r)
	if err != nil {
		return nil, asParseError(err)
	}
	return p.bind(doc)
}

func (p *Parser) ParseString(fname, text string) (*Document, error) {
	doc, err := p.parser.ParseString(fname, text)
	if err != nil {
		return nil, asParseError(err)
	}
	return p.bind(doc)
}

// Converts the AST document to the public Document form and applies the
// keyword registry.
func (p *Parser) bind(doc *ast.Document) (*Document, error) {
	out := &Document{Commands: make([]*Command, 0, len(doc.Commands))}
	for _, c := range doc.Commands {
		cmd := &Command{Word: c.Word, Line: c.Pos.Line}
		for _, a := range c.Args {
			switch arg := a.(type) {
			case ast.Named:
				cmd.Arguments = append(cmd.Arguments, Named{Key: arg.Key, Value: arg.Value})
			case ast.Positional:
				cmd.Arguments = append(cmd.Arguments, Positional{Value: arg.Value})
			}
		}
		if err := p.checkKeyword(cmd); err != nil {
			return nil, err
		}
		out.Commands = append(out.Commands, cmd)
	}
	return out, nil
}

func (p *Parser) checkKeyword(cmd *Command) error {
	if len(p.keywords) == 0 {
		return nil
	}
	def, ok := p.keywords[cmd.Word]
	if !ok {
		return errors.Errorf("line %d: keyword %q is not known", cmd.Line, cmd.Word)
	}
	for _, arg := range cmd.Arguments {
		named, ok := arg.(Named)
		if !ok {
			continue
		}
		if !slices.Contains(def.Options, named.Key) {
			return errors.Errorf("line %d: option %q is not known for keyword %q",
				cmd.Line, named.Key, cmd.Word)
		}
	}
	return nil
}
