package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveHomeOverride(t *testing.T) {
	home := t.TempDir()
	t.Setenv("DIMOS_HOME", home)

	up, err := Resolve("")
	require.NoError(t, err)

	assert.Equal(t, home, up.Home)
	assert.Equal(t, filepath.Join(home, "config.toml"), up.ConfigFile)
	assert.Equal(t, "dimos", filepath.Base(up.LogsDir))
}

func TestResolveDefaultHome(t *testing.T) {
	t.Setenv("DIMOS_HOME", "")
	t.Setenv("HOME", t.TempDir())

	up, err := Resolve("")
	require.NoError(t, err)

	assert.Equal(t, ".dimos", filepath.Base(up.Home))
	assert.True(t, filepath.IsAbs(up.ConfigFile))
}

func TestResolveConfigFlag(t *testing.T) {
	t.Setenv("DIMOS_HOME", t.TempDir())
	custom := filepath.Join(t.TempDir(), "custom.toml")

	up, err := Resolve(custom)
	require.NoError(t, err)
	assert.Equal(t, custom, up.ConfigFile)
}

func TestResolveDoesNotCreateHome(t *testing.T) {
	home := filepath.Join(t.TempDir(), "nested", "home")
	t.Setenv("DIMOS_HOME", home)

	_, err := Resolve("")
	require.NoError(t, err)

	exists, err := DirExists(home)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFileAndDirExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	ok, err := FileExists(file)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = FileExists(dir)
	require.NoError(t, err)
	assert.False(t, ok, "a directory is not a regular file")

	ok, err = DirExists(dir)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = DirExists(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.False(t, ok)
}
