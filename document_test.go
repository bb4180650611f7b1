package sysconfig

import (
	"reflect"
	"testing"
)

// Encoding a document and parsing the result must reproduce it exactly,
// including values that exercise every escape form.
func TestDocumentRoundTrip(t *testing.T) {
	doc := &Document{Commands: []*Command{
		{Word: "motd", Line: 1, Arguments: []Argument{
			Named{Key: "text", Value: "he said \"hi\"\\no\nreally\tsnow ☃"},
			Positional{Value: "plain-token"},
			Positional{Value: "needs quoting"},
			Positional{Value: "--looks-like-a-flag"},
		}},
		{Word: "locale", Line: 2, Arguments: []Argument{
			Positional{Value: "en_US.UTF-8"},
		}},
	}}

	p := NewParser()
	parsed, err := p.ParseString("", doc.String())
	if err != nil {
		t.Fatalf("failed to reparse encoded document: %v", err)
	}
	if !reflect.DeepEqual(parsed, doc) {
		t.Errorf("round trip mismatch:\nencoded: %q\nexpected %+v\ngot      %+v",
			doc.String(), doc, parsed)
	}
}

func TestQuoteString(t *testing.T) {
	cases := map[string]string{
		"plain":        `"plain"`,
		`a"b`:          `"a\"b"`,
		`back\slash`:   `"back\\slash"`,
		"tab\there":    `"tab\there"`,
		"line\nbreak":  `"line\nbreak"`,
		"bell\x07ring": `"bell\u0007ring"`,
		"snow ☃":       `"snow ☃"`,
	}
	for in, want := range cases {
		if got := QuoteString(in); got != want {
			t.Errorf("QuoteString(%q) = %s, expected %s", in, got, want)
		}
	}
}

func TestCommandOptions(t *testing.T) {
	cmd := &Command{Word: "terminal", Arguments: []Argument{
		Named{Key: "type", Value: "vt100"},
		Positional{Value: "console"},
		Named{Key: "type", Value: "xterm"},
		Named{Key: "label", Value: "main"},
	}}

	opts := cmd.Options()
	if opts["type"] != "vt100" {
		t.Errorf("expected first occurrence to win, got %q", opts["type"])
	}
	if opts["label"] != "main" {
		t.Errorf("expected label %q, got %q", "main", opts["label"])
	}
	if got := cmd.Positionals(); !reflect.DeepEqual(got, []string{"console"}) {
		t.Errorf("expected positionals [console], got %v", got)
	}

	bare := &Command{Word: "locale", Arguments: []Argument{Positional{Value: "C"}}}
	if bare.Options() != nil {
		t.Errorf("expected nil options for command without named arguments")
	}
}
