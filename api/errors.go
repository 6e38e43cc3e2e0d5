package api

import (
	"errors"
	"net/http"

	"github.com/ByLCY/scholar/domain"
	"github.com/ByLCY/scholar/renderer"
)

// HTTPError is an error that carries its response status.
type HTTPError interface {
	error
	StatusCode() int
}

// StatusError attaches an HTTP status to an error.
type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

type errorBody struct {
	Error   string   `json:"error"`
	Formats []string `json:"formats,omitempty"`
	Hint    string   `json:"hint,omitempty"`
}

// classify maps err onto a status and response body.
func classify(err error) (int, errorBody) {
	body := errorBody{Error: err.Error()}

	var unsupported *renderer.UnsupportedFormatError
	var unavailable *renderer.BackendUnavailableError
	var httpErr HTTPError
	switch {
	case errors.As(err, &unsupported):
		body.Formats = unsupported.Available
		return http.StatusBadRequest, body
	case domain.IsNotFound(err):
		return http.StatusNotFound, body
	case domain.IsMissingRelation(err):
		return http.StatusConflict, body
	case errors.As(err, &unavailable):
		body.Hint = unavailable.Hint
		return http.StatusInternalServerError, body
	case errors.As(err, &httpErr):
		return httpErr.StatusCode(), body
	default:
		return http.StatusInternalServerError, body
	}
}
