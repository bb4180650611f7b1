package sysconfig

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadKeywordDefinitions(t *testing.T) {
	defs, err := LoadKeywordDefinitions(strings.NewReader(`
zpool-create:
  options: [ashift, mirror]
locale: {}
`))
	require.NoError(t, err)

	assert.Equal(t, map[string]KeywordDefinition{
		"zpool-create": {Options: []string{"ashift", "mirror"}},
		"locale":       {},
	}, defs)
}

func TestLoadKeywordDefinitionsRejectsGarbage(t *testing.T) {
	_, err := LoadKeywordDefinitions(strings.NewReader("not: [valid"))
	assert.Error(t, err)
}
