// Package shadow parses and renders shadow password database entries
// (username:password:lastchg:min:max:warn:inactive:expire:flag). Parsing is
// pure and all-or-nothing: the first malformed line aborts with a located
// error.
package shadow

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"

	"github.com/sysconfig"
)

const fieldCount = 9

// PasswordState is a closed union over the four recognized password slot
// forms. Consumers are forced to handle every state explicitly.
type PasswordState interface{ passwordState() }

// Locked is the *LK* sentinel: the account cannot authenticate.
type Locked struct{}

// NoLogin is the NL sentinel: the account is not permitted to log in.
type NoLogin struct{}

// NoPassword is the NP sentinel: the account authenticates without one.
type NoPassword struct{}

// Hashed carries the raw hash field.
type Hashed struct{ Hash string }

func (Locked) passwordState()     {}
func (NoLogin) passwordState()    {}
func (NoPassword) passwordState() {}
func (Hashed) passwordState()     {}

// Entry is one account record. The seven aging fields distinguish "unset"
// (nil) from zero, as the on-disk format does.
type Entry struct {
	Username string
	Password PasswordState

	LastChange     *uint64
	MinAge         *uint64
	MaxAge         *uint64
	WarnPeriod     *uint64
	InactivePeriod *uint64
	ExpireDate     *uint64
	Flag           *uint64
}

// File is an ordered shadow document, one entry per non-empty input line.
type File struct {
	Entries []*Entry
}

// Get returns the entry named username, or nil.
func (f *File) Get(username string) *Entry {
	for _, e := range f.Entries {
		if e.Username == username {
			return e
		}
	}
	return nil
}

// Upsert replaces the entry with the same username, or appends.
func (f *File) Upsert(entry *Entry) {
	for i, e := range f.Entries {
		if e.Username == entry.Username {
			f.Entries[i] = entry
			return
		}
	}
	f.Entries = append(f.Entries, entry)
}

// SetPasswordHash replaces the password state with a pre-computed hash. The
// hash must fit the password field alphabet; computing hashes is out of scope
// here.
func (e *Entry) SetPasswordHash(hash string) error {
	if !isHashField(hash) {
		return errors.Errorf("invalid password hash %q", hash)
	}
	e.Password = Hashed{Hash: hash}
	return nil
}

func passwordText(p PasswordState) string {
	switch s := p.(type) {
	case Locked:
		return "*LK*"
	case NoLogin:
		return "NL"
	case NoPassword:
		return "NP"
	case Hashed:
		return s.Hash
	default:
		return ""
	}
}

func (e *Entry) String() string {
	fields := [fieldCount]string{
		e.Username,
		passwordText(e.Password),
		optText(e.LastChange),
		optText(e.MinAge),
		optText(e.MaxAge),
		optText(e.WarnPeriod),
		optText(e.InactivePeriod),
		optText(e.ExpireDate),
		optText(e.Flag),
	}
	return strings.Join(fields[:], ":")
}

// String renders the file in the on-disk format. Parsing the result yields
// the same entries back.
func (f *File) String() string {
	lines := make([]string, 0, len(f.Entries))
	for _, e := range f.Entries {
		lines = append(lines, e.String())
	}
	return strings.Join(lines, "\n")
}

func (e *Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Username       string  `json:"username"`
		Password       string  `json:"password"`
		LastChange     *uint64 `json:"last_change"`
		MinAge         *uint64 `json:"min_age"`
		MaxAge         *uint64 `json:"max_age"`
		WarnPeriod     *uint64 `json:"warn_period"`
		InactivePeriod *uint64 `json:"inactive_period"`
		ExpireDate     *uint64 `json:"expire_date"`
		Flag           *uint64 `json:"flag"`
	}{
		Username:       e.Username,
		Password:       passwordText(e.Password),
		LastChange:     e.LastChange,
		MinAge:         e.MinAge,
		MaxAge:         e.MaxAge,
		WarnPeriod:     e.WarnPeriod,
		InactivePeriod: e.InactivePeriod,
		ExpireDate:     e.ExpireDate,
		Flag:           e.Flag,
	})
}

func optText(v *uint64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatUint(*v, 10)
}

// Parse parses a whole shadow file. Blank lines are skipped; a trailing
// newline on the final entry is tolerated.
func Parse(text string) (*File, error) {
	return ParseNamed("", text)
}

// ParseNamed is Parse with a filename attached to error positions.
func ParseNamed(filename, text string) (*File, error) {
	file := &File{}
	offset := 0
	lineNo := 1
	for _, line := range strings.Split(text, "\n") {
		if line != "" {
			entry, err := parseLine(filename, line, lineNo, offset)
			if err != nil {
				return nil, err
			}
			file.Entries = append(file.Entries, entry)
		}
		offset += len(line) + 1
		lineNo++
	}
	return file, nil
}

// ParseEntry parses a single shadow line.
func ParseEntry(line string) (*Entry, error) {
	return parseLine("", line, 1, 0)
}

func parseLine(filename, line string, lineNo, base int) (*Entry, error) {
	at := func(offset int) lexer.Position {
		return lexer.Position{
			Filename: filename,
			Offset:   base + offset,
			Line:     lineNo,
			Column:   offset + 1,
		}
	}

	fields := strings.Split(line, ":")
	if len(fields) < fieldCount {
		return nil, syntaxErrorf(sysconfig.IncompleteRecord, at(len(line)),
			"expected %d colon-delimited fields, found %d", fieldCount, len(fields))
	}
	if len(fields) > fieldCount {
		extra := 0
		for _, f := range fields[:fieldCount] {
			extra += len(f) + 1
		}
		return nil, syntaxErrorf(sysconfig.TrailingInput, at(extra-1),
			"expected %d colon-delimited fields, found %d", fieldCount, len(fields))
	}

	entry := &Entry{}
	offset := 0

	// username
	username := fields[0]
	if username == "" {
		return nil, syntaxErrorf(sysconfig.UnexpectedToken, at(0), "username must not be empty")
	}
	for i := 0; i < len(username); i++ {
		if !isAlnum(username[i]) {
			return nil, syntaxErrorf(sysconfig.UnexpectedToken, at(i),
				"username contains %q, only alphanumerics are allowed", username[i])
		}
	}
	entry.Username = username
	offset += len(username) + 1

	// password slot, sentinel forms first
	password := fields[1]
	switch {
	case password == "*LK*":
		entry.Password = Locked{}
	case password == "NL":
		entry.Password = NoLogin{}
	case password == "NP":
		entry.Password = NoPassword{}
	case isHashField(password):
		entry.Password = Hashed{Hash: password}
	default:
		return nil, syntaxErrorf(sysconfig.InvalidPasswordField, at(offset),
			"password field %q is not *LK*, NL, NP or a hash", password)
	}
	offset += len(password) + 1

	for i, dst := range []**uint64{
		&entry.LastChange,
		&entry.MinAge,
		&entry.MaxAge,
		&entry.WarnPeriod,
		&entry.InactivePeriod,
		&entry.ExpireDate,
		&entry.Flag,
	} {
		field := fields[2+i]
		if field != "" {
			v, err := parseAgingField(field, offset, at)
			if err != nil {
				return nil, err
			}
			*dst = v
		}
		offset += len(field) + 1
	}

	return entry, nil
}

func parseAgingField(field string, offset int, at func(int) lexer.Position) (*uint64, error) {
	for i := 0; i < len(field); i++ {
		if field[i] < '0' || field[i] > '9' {
			return nil, syntaxErrorf(sysconfig.InvalidNumericField, at(offset+i),
				"aging field %q is not a decimal number", field)
		}
	}
	v, err := strconv.ParseUint(field, 10, 64)
	if err != nil {
		return nil, syntaxErrorf(sysconfig.InvalidNumericField, at(offset),
			"aging field %q: %v", field, err)
	}
	return &v, nil
}

func syntaxErrorf(kind sysconfig.ErrorKind, pos lexer.Position, format string, args ...any) error {
	return &sysconfig.ParseError{
		Kind: kind,
		Pos:  pos,
		Msg:  fmt.Sprintf(format, args...),
	}
}

func isAlnum(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isHashField(v string) bool {
	if v == "" {
		return false
	}
	for i := 0; i < len(v); i++ {
		ch := v[i]
		if !isAlnum(ch) && ch != '.' && ch != '/' && ch != '$' && ch != ',' {
			return false
		}
	}
	return true
}
