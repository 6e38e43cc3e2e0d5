package main

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/scholar/config"
	"github.com/ByLCY/scholar/domain"
	"github.com/ByLCY/scholar/store"
)

func TestNewLogger(t *testing.T) {
	l, err := newLogger(config.LogConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.True(t, l.Enabled(context.Background(), slog.LevelDebug))

	_, err = newLogger(config.LogConfig{Level: "chatty", Format: "text"})
	assert.Error(t, err)
}

func seedDatabase(t *testing.T, dsn string) int64 {
	t.Helper()
	ctx := context.Background()
	db, err := store.Open(store.SQLite, dsn)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate(ctx))

	u := &domain.University{Name: "Universidad Tecnológica Nacional", Acronym: "UTN"}
	require.NoError(t, db.Universities.Create(ctx, u))
	f := &domain.Faculty{Name: "Facultad Regional San Rafael", Acronym: "FRSR", UniversityID: &u.ID}
	require.NoError(t, db.Faculties.Create(ctx, f))
	sp := &domain.Specialty{Name: "Ingeniería en Sistemas", Letter: "K", FacultyID: &f.ID}
	require.NoError(t, db.Specialties.Create(ctx, sp))
	st := &domain.Student{FirstName: "Ada", LastName: "Lovelace", DocumentNumber: "30111222", FileNumber: 1234, SpecialtyID: &sp.ID}
	require.NoError(t, db.Students.Create(ctx, st))
	return st.ID
}

func TestRenderOnceWritesBundledTemplates(t *testing.T) {
	dir := t.TempDir()
	dsn := "file:" + filepath.Join(dir, "scholar.db") + "?_pragma=foreign_keys(1)"
	id := seedDatabase(t, dsn)

	cfg := config.Default()
	cfg.Database.DSN = dsn
	cfg.Documents.ScratchDir = t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	for _, tc := range []struct{ format, part string }{
		{"odt", "content.xml"},
		{"docx", "word/document.xml"},
	} {
		out := filepath.Join(dir, "out", "certificate."+tc.format)
		require.NoError(t, renderOnce(context.Background(), cfg, logger, id, tc.format, out))

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		require.NoError(t, err)
		var body string
		for _, f := range zr.File {
			if f.Name == tc.part {
				rc, err := f.Open()
				require.NoError(t, err)
				b, err := io.ReadAll(rc)
				rc.Close()
				require.NoError(t, err)
				body = string(b)
			}
		}
		assert.True(t, strings.Contains(body, "Lovelace") && strings.Contains(body, "Ada"), "%s: %s", tc.format, body)
		assert.NotContains(t, body, "{{")

		entries, err := os.ReadDir(cfg.Documents.ScratchDir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	}

	err := renderOnce(context.Background(), cfg, logger, id+100, "odt", filepath.Join(dir, "missing.odt"))
	assert.True(t, domain.IsNotFound(err))
}
