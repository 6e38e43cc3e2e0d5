package renderer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKindsMatchSentinels(t *testing.T) {
	cause := errors.New("no fonts")
	cases := []struct {
		err   error
		check func(error) bool
	}{
		{&UnsupportedFormatError{Format: "xyz"}, IsUnsupportedFormat},
		{&TemplateNotFoundError{Format: "odt", Path: "a/b.odt"}, IsTemplateNotFound},
		{&RenderError{Format: "odt", Template: "a/b", Err: cause}, IsRender},
		{&BackendUnavailableError{Format: "pdf", Hint: "install fonts", Err: cause}, IsBackendUnavailable},
	}
	for _, tc := range cases {
		wrapped := fmt.Errorf("generate: %w", tc.err)
		assert.True(t, tc.check(wrapped), tc.err.Error())
	}
	assert.False(t, IsRender(&TemplateNotFoundError{}))
}

func TestBackendUnavailableMessageCarriesHint(t *testing.T) {
	err := &BackendUnavailableError{Format: "pdf", Hint: "install fonts-dejavu", Err: errors.New("no fonts")}
	assert.Equal(t, "renderer: pdf backend unavailable: no fonts (install fonts-dejavu)", err.Error())
	assert.ErrorIs(t, err, err.Err)
}
