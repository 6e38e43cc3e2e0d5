package renderer

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	ext  string
	mark string
}

func (s *stubGenerator) Extension() string { return s.ext }

func (s *stubGenerator) Generate(folder, name string, ctx Context) ([]byte, error) {
	return []byte(s.mark + ":" + folder + "/" + name), nil
}

func stub(ext, mark string) Factory {
	return func() Generator { return &stubGenerator{ext: ext, mark: mark} }
}

func newStubRegistry() *Registry {
	r := NewRegistry()
	r.RegisterAll(
		Descriptor{Format: "pdf", Factory: stub("pdf", "pdf")},
		Descriptor{Format: "ODT", Factory: stub("odt", "odt")},
		Descriptor{Format: "docx", Factory: stub("docx", "docx")},
	)
	return r
}

func TestCreateExtensionMatchesFormat(t *testing.T) {
	r := newStubRegistry()
	for _, f := range r.AvailableFormats() {
		g, err := r.Create(f)
		require.NoError(t, err)
		assert.Equal(t, f, g.Extension())
	}
}

func TestCreateIsCaseInsensitive(t *testing.T) {
	r := newStubRegistry()
	for _, f := range []string{"pdf", "PDF", "Pdf", " pdf "} {
		g, err := r.Create(f)
		require.NoError(t, err, f)
		assert.Equal(t, "pdf", g.Extension())
	}
	assert.True(t, r.Supports("Odt"))
}

func TestCreateUnsupportedListsRegistered(t *testing.T) {
	r := newStubRegistry()
	_, err := r.Create("xyz")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	assert.True(t, IsUnsupportedFormat(err))

	var unsupported *UnsupportedFormatError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "xyz", unsupported.Format)
	assert.Equal(t, []string{"docx", "odt", "pdf"}, unsupported.Available)
	assert.Contains(t, err.Error(), "docx, odt, pdf")
}

func TestRegisterNewFormatGrowsByOne(t *testing.T) {
	r := newStubRegistry()
	before := len(r.AvailableFormats())
	r.Register("html", stub("html", "html"))
	assert.Len(t, r.AvailableFormats(), before+1)
}

func TestReRegisterRebindsWithoutGrowing(t *testing.T) {
	r := newStubRegistry()
	before := len(r.AvailableFormats())

	r.Register("PDF", stub("pdf", "replacement"))
	assert.Len(t, r.AvailableFormats(), before)

	g, err := r.Create("pdf")
	require.NoError(t, err)
	out, err := g.Generate("certificate", "enrollment", Context{})
	require.NoError(t, err)
	assert.Equal(t, "replacement:certificate/enrollment", string(out))
}

func TestCreateReturnsFreshInstances(t *testing.T) {
	r := newStubRegistry()
	a, err := r.Create("odt")
	require.NoError(t, err)
	b, err := r.Create("odt")
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}

func TestRegisterPanicsOnInvalidInput(t *testing.T) {
	r := NewRegistry()
	assert.Panics(t, func() { r.Register("  ", stub("x", "x")) })
	assert.Panics(t, func() { r.Register("x", nil) })
}

func TestUnregister(t *testing.T) {
	r := newStubRegistry()
	assert.True(t, r.Unregister("DOCX"))
	assert.False(t, r.Unregister("docx"))
	assert.Equal(t, []string{"odt", "pdf"}, r.AvailableFormats())
}

func TestSnapshotRestore(t *testing.T) {
	r := newStubRegistry()
	saved := r.Snapshot()

	r.Register("html", stub("html", "html"))
	r.Unregister("pdf")
	assert.Equal(t, []string{"docx", "html", "odt"}, r.AvailableFormats())

	r.Restore(saved)
	assert.Equal(t, []string{"docx", "odt", "pdf"}, r.AvailableFormats())
}

func TestConcurrentRegisterAndCreate(t *testing.T) {
	r := newStubRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Register("pdf", stub("pdf", "swapped"))
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				g, err := r.Create("pdf")
				if err != nil || g.Extension() != "pdf" {
					t.Errorf("create pdf: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
}
