package renderer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ScratchDir hands out private files for generators that assemble a package
// on disk before returning its bytes.
type ScratchDir struct {
	Dir    string // defaults to os.TempDir()
	Prefix string // defaults to "scholar"
}

// Roundtrip creates a uniquely named file, lets write fill it and returns its
// contents. The file is removed on every path, including when write fails.
func (s ScratchDir) Roundtrip(ext string, write func(w io.Writer) error) (data []byte, err error) {
	dir := s.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	prefix := s.Prefix
	if prefix == "" {
		prefix = "scholar"
	}
	name := filepath.Join(dir, fmt.Sprintf("%s-%s.%s", prefix, uuid.NewString(), strings.TrimPrefix(ext, ".")))

	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("renderer: create scratch file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("renderer: close scratch file: %w", cerr)
		}
		if rerr := os.Remove(name); rerr != nil && !os.IsNotExist(rerr) && err == nil {
			err = fmt.Errorf("renderer: remove scratch file: %w", rerr)
		}
		if err != nil {
			data = nil
		}
	}()

	if err = write(f); err != nil {
		return nil, err
	}
	if _, err = f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("renderer: rewind scratch file: %w", err)
	}
	data, err = io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("renderer: read scratch file: %w", err)
	}
	return data, nil
}
