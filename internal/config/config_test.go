package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/turmeiro/boxtally/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "boxtally.db", cfg.DBPath)
	assert.Equal(t, "pt-BR", cfg.Locale)
	assert.False(t, cfg.EasyMode)
	assert.Equal(t, LogLevelInfo, cfg.LogLevel)

	tag, err := cfg.LanguageTag()
	require.NoError(t, err)
	assert.Equal(t, language.MustParse("pt-BR"), tag)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "boxtally.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"db_path: /data/tally.db\nlocale: pt\neasy_mode: true\nlog_level: debug\nlog_format: json\n",
	), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/tally.db", cfg.DBPath)
	assert.Equal(t, "pt", cfg.Locale)
	assert.True(t, cfg.EasyMode)
	assert.Equal(t, LogLevelDebug, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, errors.IsCategory(err, errors.CategoryConfig))
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "boxtally.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db_path: from-file.db\n"), 0o644))

	t.Setenv("BOXTALLY_DB_PATH", "from-env.db")
	t.Setenv("BOXTALLY_EASY_MODE", "true")
	t.Setenv("BOXTALLY_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.DBPath)
	assert.True(t, cfg.EasyMode)
	assert.Equal(t, LogLevelWarn, cfg.LogLevel)
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("db_path: [\n"), 0o644))
	_, err := Load(bad)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfig))

	locale := filepath.Join(dir, "locale.yaml")
	require.NoError(t, os.WriteFile(locale, []byte("locale: not a tag\n"), 0o644))
	_, err = Load(locale)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfig))

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("db_path: \"\"\n"), 0o644))
	_, err = Load(empty)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfig))
}

func TestNormalizeLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, NormalizeLogLevel(" DEBUG "))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel("bogus"))
	assert.Equal(t, LogLevelError, NormalizeLogLevel("error"))
}
