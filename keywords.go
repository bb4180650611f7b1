package sysconfig

import (
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SupportedKeywords returns the keyword table of the system configuration
// language: every command word the instruction layer understands, with the
// named-argument keys each accepts.
func SupportedKeywords() map[string]KeywordDefinition {
	return map[string]KeywordDefinition{
		"hostname":      {},
		"keyboard":      {},
		"timezone":      {},
		"terminal":      {Options: []string{"name", "label", "module", "prompt", "type"}},
		"timeserver":    {},
		"system_locale": {},
		"network_interface": {Options: []string{
			"name",
			"static",
			"static6",
			"primary",
		}},
		"dataset": {Options: []string{
			"aclinherit",
			"aclmode",
			"atime",
			"canmount",
			"checksum",
			"compression",
			"copies",
			"devices",
			"encryption",
			"keyformat",
			"keylocation",
			"exec",
			"filesystem_limit",
			"special_small_blocks",
			"mountpoint",
			"nbmand",
			"pbkdf2iters",
			"primarycache",
			"quota",
			"snapshot_limit",
			"readonly",
			"recordsize",
			"redundant_metadata",
			"refquota",
			"refreservation",
			"reservation",
			"secondarycache",
			"setuid",
			"sharesmb",
			"sharenfs",
			"logbias",
			"snapdir",
			"sync",
			"vscan",
			"xattr",
			"casesensitivity",
			"normalization",
			"utf8only",
		}},
		"setup_dns":     {Options: []string{"search", "domain"}},
		"route":         {},
		"root_password": {},
	}
}

// LoadKeywordDefinitions reads additional keyword definitions from a YAML
// document of the form:
//
//	my_keyword:
//	  options: [foo, bar]
func LoadKeywordDefinitions(r io.Reader) (map[string]KeywordDefinition, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read keyword definitions")
	}

	defs := map[string]KeywordDefinition{}
	if err := yaml.Unmarshal(b, &defs); err != nil {
		return nil, errors.Wrap(err, "failed to decode keyword definitions")
	}
	return defs, nil
}
