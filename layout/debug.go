package layout

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
)

// EncodeJSON writes the page model as indented JSON.
func (r *Result) EncodeJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteDebugJSON dumps res to dir/name.json so a layout can be inspected
// without opening the PDF.
func WriteDebugJSON(res *Result, dir, name string) error {
	if res == nil || dir == "" {
		return nil
	}
	path := filepath.Join(dir, name+".json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := res.EncodeJSON(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
