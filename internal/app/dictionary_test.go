package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDictionary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	content := "banana\nBARN\n  ant  \n\nab\nban4na\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	dict := LoadDictionary(path, zerolog.Nop())

	assert.True(t, dict.Enabled())
	assert.Equal(t, 3, dict.Size(), "short and non-alphabetic entries are skipped")
	assert.True(t, dict.Has("banana"))
	assert.True(t, dict.Has("barn"), "entries are normalized to lowercase")
	assert.True(t, dict.Has("ant"))
	assert.False(t, dict.Has("ab"))
	assert.False(t, dict.Has("ban4na"))
	assert.False(t, dict.Has("zebra"))
}

func TestLoadDictionaryEmptyPath(t *testing.T) {
	dict := LoadDictionary("", zerolog.Nop())

	assert.False(t, dict.Enabled())
	assert.Zero(t, dict.Size())
	assert.True(t, dict.Has("anything"), "disabled dictionary accepts every word")
}

func TestLoadDictionaryMissingFile(t *testing.T) {
	dict := LoadDictionary(filepath.Join(t.TempDir(), "nope.txt"), zerolog.Nop())

	assert.False(t, dict.Enabled())
	assert.True(t, dict.Has("anything"))
}
