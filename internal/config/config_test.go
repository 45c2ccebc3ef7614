package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	assert.Equal(t, "!", cfg.Prefix)
	assert.Empty(t, cfg.AdminIDs)
	assert.Empty(t, cfg.CreatorID)
}

func TestLoadReadsFile(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"prefix": "?",
		"adminUID": ["100001", "100002"],
		"botCreatorUID": "100000"
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "?", cfg.Prefix)
	assert.Equal(t, []string{"100001", "100002"}, cfg.AdminIDs)
	assert.Equal(t, "100000", cfg.CreatorID)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeFile(t, "config.json", `{"botCreatorUID": "42"}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "!", cfg.Prefix)
	assert.Equal(t, "42", cfg.CreatorID)
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeFile(t, "config.json", `{"prefix": `)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoadStyle(t *testing.T) {
	st, err := LoadStyle(filepath.Join(t.TempDir(), "style.json"))
	require.NoError(t, err)
	assert.NotEmpty(t, st.Top)
	assert.NotEmpty(t, st.Bottom)

	path := writeFile(t, "style.json", `{"top": "===", "bottom": "---"}`)
	st, err = LoadStyle(path)
	require.NoError(t, err)
	assert.Equal(t, "===", st.Top)
	assert.Equal(t, "---", st.Bottom)
}
