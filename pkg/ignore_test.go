package mydups

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIgnoreManagerLoad(t *testing.T) {
	ignoreFile := writeTestFile(t, filepath.Join(t.TempDir(), "ignore"),
		"# comment\n\n  \\.swp$  \n^\\.git/\n")

	im := NewIgnoreManager(ignoreFile)
	assert.False(t, im.HasPatterns())

	require.NoError(t, im.LoadIgnorePatterns())
	assert.True(t, im.HasPatterns())
	assert.Len(t, im.patterns, 2)

	// Loading twice keeps a single copy of each pattern.
	require.NoError(t, im.LoadIgnorePatterns())
	assert.Len(t, im.patterns, 2)

	assert.True(t, im.ShouldIgnore("notes/.draft.swp"))
	assert.True(t, im.ShouldIgnore(".git/"))
	assert.False(t, im.ShouldIgnore("src/.git/"))
	assert.False(t, im.ShouldIgnore("main.go"))
}

func TestIgnoreManagerEmptyPath(t *testing.T) {
	im := NewIgnoreManager("")
	require.NoError(t, im.LoadIgnorePatterns())
	assert.False(t, im.HasPatterns())
	assert.False(t, im.ShouldIgnore("anything"))
	assert.NoError(t, ValidateIgnoreFile(""))
}

func TestIgnoreManagerErrors(t *testing.T) {
	assert.Error(t, NewIgnoreManager(filepath.Join(t.TempDir(), "missing")).LoadIgnorePatterns())

	bad := writeTestFile(t, filepath.Join(t.TempDir(), "ignore"), "ok\n*bad\n")
	err := ValidateIgnoreFile(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
