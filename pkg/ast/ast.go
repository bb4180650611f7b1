package ast

import "github.com/alecthomas/participle/v2/lexer"

type Document struct {
	Commands []*Command `parser:"@@+"`
}

type Command struct {
	Pos lexer.Position

	Word string `parser:"@Word"`
	Args []Arg  `parser:"@@* EOL"`
}

type Arg interface{ arg() }

type Named struct {
	Pos lexer.Position

	Key   string `parser:"@FlagKey"`
	Value string `parser:"@String"`
}

func (Named) arg() {}

type Positional struct {
	Pos lexer.Position

	Value string `parser:"@Bare | @String"`
}

func (Positional) arg() {}
