package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "asksort.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvJournal, "")
	t.Setenv(EnvStrict, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.False(t, cfg.Strict)
	assert.Empty(t, cfg.Journal)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.True(t, cfg.Color)
}

func TestLoad_File(t *testing.T) {
	t.Setenv(EnvJournal, "")
	t.Setenv(EnvStrict, "")

	path := writeConfig(t, `
strict: true
journal: /tmp/asksort.db
format: json
max_attempts: 5
max_queries: 20
color: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Strict:      true,
		Journal:     "/tmp/asksort.db",
		Format:      "json",
		MaxAttempts: 5,
		MaxQueries:  20,
		Color:       false,
	}, cfg)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Setenv(EnvJournal, "")
	t.Setenv(EnvStrict, "")

	cfg, err := Load(writeConfig(t, "journal: ranks.db\n"))
	require.NoError(t, err)
	assert.Equal(t, "ranks.db", cfg.Journal)
	assert.Equal(t, DefaultFormat, cfg.Format)
	assert.Equal(t, DefaultMaxAttempts, cfg.MaxAttempts)
	assert.True(t, cfg.Color)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "strict: false\njournal: file.db\n")
	t.Setenv(EnvJournal, "env.db")
	t.Setenv(EnvStrict, "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env.db", cfg.Journal)
	assert.True(t, cfg.Strict)
}

func TestLoad_InvalidEnvBool(t *testing.T) {
	t.Setenv(EnvJournal, "")
	t.Setenv(EnvStrict, "sometimes")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvStrict)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv(EnvJournal, "")
	t.Setenv(EnvStrict, "")

	_, err := Load(writeConfig(t, "format: xml\nmax_attempts: 0\nmax_queries: -1\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFormat)
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
	assert.ErrorIs(t, err, ErrInvalidMaxQueries)
}
