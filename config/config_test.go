package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "es", cfg.Documents.Locale)
	assert.Equal(t, 30*time.Second, cfg.Documents.Timeout)
	assert.Equal(t, "certificate", cfg.Documents.Certificate.Folder)
	assert.Equal(t, int64(2), cfg.Documents.PDF.MaxConcurrent)
	assert.Equal(t, "A4", cfg.Documents.PDF.PageSize)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scholar.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  driver: postgres
  dsn: postgres://scholar@localhost/scholar?sslmode=disable
documents:
  locale: en
  pdf:
    fonts:
      regular: /opt/fonts/Sans.ttf
log:
  level: debug
  format: json
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "en", cfg.Documents.Locale)
	assert.Equal(t, "/opt/fonts/Sans.ttf", cfg.Documents.PDF.Fonts.Regular)
	assert.Equal(t, "templates", cfg.Documents.TemplateRoot, "untouched keys keep defaults")
	lvl, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestLoadUsesEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9090\"\n"), 0o644))
	t.Setenv(EnvPath, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Setenv(EnvPath, "")
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Database.Driver = "oracle"
	cfg.Documents.Locale = "fr"
	cfg.Documents.PDF.MaxConcurrent = 0
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"oracle", `"fr"`, "max_concurrent", "loud"} {
		assert.ErrorContains(t, err, want)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "parse")
}
