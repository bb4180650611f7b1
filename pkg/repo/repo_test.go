package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysconfig"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	fpath := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(fpath, []byte(content), 0o644))
	return fpath
}

func TestConfigCachesByContent(t *testing.T) {
	r := New(sysconfig.NewParser())
	fpath := writeFile(t, "install.conf", "locale en_US\ntimezone UTC\n")

	first, err := r.Config(fpath)
	require.NoError(t, err)
	require.Len(t, first.Commands, 2)

	// Unchanged content must come straight from the cache.
	second, err := r.Config(fpath)
	require.NoError(t, err)
	assert.Same(t, first, second)

	// A changed file misses the cache and reparses.
	require.NoError(t, os.WriteFile(fpath, []byte("locale C\n"), 0o644))
	third, err := r.Config(fpath)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Len(t, third.Commands, 1)
}

func TestShadowLoads(t *testing.T) {
	r := New(sysconfig.NewParser())
	fpath := writeFile(t, "shadow", "daemon:NP:6445::::::\n")

	f, err := r.Shadow(fpath)
	require.NoError(t, err)
	require.Len(t, f.Entries, 1)
	assert.Equal(t, "daemon", f.Entries[0].Username)

	again, err := r.Shadow(fpath)
	require.NoError(t, err)
	assert.Same(t, f, again)
}

func TestConfigMissingFile(t *testing.T) {
	r := New(sysconfig.NewParser())
	_, err := r.Config(filepath.Join(t.TempDir(), "nope.conf"))
	assert.Error(t, err)
}

func TestConfigParseErrorPropagates(t *testing.T) {
	r := New(sysconfig.NewParser())
	fpath := writeFile(t, "broken.conf", "cmd foo!bar\n")

	_, err := r.Config(fpath)
	var perr *sysconfig.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, sysconfig.UnexpectedToken, perr.Kind)
	assert.Equal(t, fpath, perr.Pos.Filename)
}
