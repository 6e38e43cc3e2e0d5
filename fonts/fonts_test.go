package fonts

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverPicksFirstCompleteCandidate(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "truetype", "liberation")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "LiberationSans-Regular.ttf"), []byte("regular"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "LiberationSans-Bold.ttf"), []byte("bold"), 0o644))
	// a bold face without its regular sibling does not qualify
	require.NoError(t, os.WriteFile(filepath.Join(dir, "DejaVuSans-Bold.ttf"), []byte("x"), 0o644))

	set, err := Discover([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, "Liberation Sans", set.Family)
	assert.Equal(t, []byte("regular"), set.Face(Regular))
	assert.Equal(t, []byte("bold"), set.Face(Bold))
	assert.Equal(t, []byte("regular"), set.Face(Italic), "missing styles fall back to regular")
}

func TestDiscoverNothing(t *testing.T) {
	_, err := Discover([]string{t.TempDir(), filepath.Join(t.TempDir(), "absent")})
	assert.True(t, errors.Is(err, ErrNoFonts))
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	regular := filepath.Join(dir, "body.ttf")
	require.NoError(t, os.WriteFile(regular, []byte("r"), 0o644))

	set, err := LoadFiles(map[Style]string{Regular: regular, Bold: ""})
	require.NoError(t, err)
	assert.Equal(t, []byte("r"), set.Face(Bold))

	_, err = LoadFiles(map[Style]string{Bold: regular})
	assert.ErrorIs(t, err, ErrNoFonts)

	_, err = LoadFiles(map[Style]string{Regular: filepath.Join(dir, "absent.ttf")})
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
