// Package repo loads and caches parsed documents. The parsers themselves are
// pure; every bit of file I/O around them lives here.
package repo

import (
	"crypto/md5"
	"encoding/hex"
	"os"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/sysconfig"
	"github.com/sysconfig/pkg/shadow"
)

// Repository hands out parsed configuration and shadow documents, keyed by a
// content hash so an unchanged file is never parsed twice. Cached documents
// are shared between callers and must be treated as read-only.
type Repository struct {
	parser *sysconfig.Parser

	docs    *expirable.LRU[string, *sysconfig.Document]
	shadows *expirable.LRU[string, *shadow.File]
}

func New(parser *sysconfig.Parser) *Repository {
	return &Repository{
		parser:  parser,
		docs:    expirable.NewLRU[string, *sysconfig.Document](128, nil, 5*time.Minute),
		shadows: expirable.NewLRU[string, *shadow.File](16, nil, 5*time.Minute),
	}
}

// Config reads and parses a configuration command file.
func (r *Repository) Config(fpath string) (*sysconfig.Document, error) {
	text, key, err := readKeyed(fpath)
	if err != nil {
		return nil, err
	}
	if doc, ok := r.docs.Get(key); ok {
		log.Debug().Str("path", fpath).Msg("config document served from cache")
		return doc, nil
	}

	doc, err := r.parser.ParseString(fpath, text)
	if err != nil {
		return nil, err
	}
	r.docs.Add(key, doc)
	return doc, nil
}

// Shadow reads and parses a shadow database file.
func (r *Repository) Shadow(fpath string) (*shadow.File, error) {
	text, key, err := readKeyed(fpath)
	if err != nil {
		return nil, err
	}
	if f, ok := r.shadows.Get(key); ok {
		log.Debug().Str("path", fpath).Msg("shadow file served from cache")
		return f, nil
	}

	f, err := shadow.ParseNamed(fpath, text)
	if err != nil {
		return nil, err
	}
	r.shadows.Add(key, f)
	return f, nil
}

func readKeyed(fpath string) (string, string, error) {
	b, err := os.ReadFile(fpath)
	if err != nil {
		return "", "", errors.Wrapf(err, "failed to read %s", fpath)
	}
	sum := md5.Sum(b)
	return string(b), hex.EncodeToString(sum[:]), nil
}
