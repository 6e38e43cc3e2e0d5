// Package api exposes the services over HTTP/JSON.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/ByLCY/scholar/domain"
	"github.com/ByLCY/scholar/renderer"
	"github.com/ByLCY/scholar/renderer/builtin"
	"github.com/ByLCY/scholar/service"
)

const (
	prefix       = "/api/v1"
	maxBodyBytes = 1 << 20
)

// Services are the use cases served by the handler. Nil members leave
// their routes unmounted.
type Services struct {
	Universities *service.CRUD[*domain.University]
	Faculties    *service.CRUD[*domain.Faculty]
	Specialties  *service.Specialties
	Students     *service.Students
	Positions    *service.CRUD[*domain.Position]
	Areas        *service.CRUD[*domain.Area]

	Registry *renderer.Registry
	// Formats reports per-format readiness; every registered format is
	// reported available when nil.
	Formats func() []builtin.Status
}

// Option customizes the handler.
type Option func(*handler)

// WithLogger overrides slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(h *handler) {
		if l != nil {
			h.logger = l
		}
	}
}

type handler struct {
	svc    Services
	logger *slog.Logger
}

// NewHandler builds the routed, logged HTTP handler.
func NewHandler(svc Services, opts ...Option) http.Handler {
	h := &handler{svc: svc, logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	if h.svc.Registry == nil {
		h.svc.Registry = renderer.Default
	}

	mux := http.NewServeMux()
	if svc.Universities != nil {
		mountCRUD(mux, h, "universities", svc.Universities, decodeJSON[*domain.University])
	}
	if svc.Faculties != nil {
		mountCRUD(mux, h, "faculties", svc.Faculties, decodeJSON[*domain.Faculty])
	}
	if svc.Specialties != nil {
		mountCRUD(mux, h, "specialties", svc.Specialties.CRUD, decodeJSON[*domain.Specialty])
		mux.HandleFunc("GET "+prefix+"/specialties/{id}/students", h.wrap(h.studentsBySpecialty))
	}
	if svc.Students != nil {
		mountCRUD(mux, h, "students", svc.Students.CRUD, decodeStudent)
		mux.HandleFunc("GET "+prefix+"/students/{id}/certificate", h.wrap(h.certificate))
	}
	if svc.Positions != nil {
		mountCRUD(mux, h, "positions", svc.Positions, decodeJSON[*domain.Position])
	}
	if svc.Areas != nil {
		mountCRUD(mux, h, "areas", svc.Areas, decodeJSON[*domain.Area])
	}
	mux.HandleFunc("GET "+prefix+"/documents/formats", h.wrap(h.formats))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return withRequestLog(h.logger, mux)
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// wrap writes err as a JSON error response. Server errors are logged here
// and nowhere else.
func (h *handler) wrap(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}
		code, body := classify(err)
		if code >= http.StatusInternalServerError {
			h.logger.ErrorContext(r.Context(), "request failed",
				"request_id", RequestID(r.Context()), "path", r.URL.Path, "error", err)
		}
		writeJSON(w, code, body)
	}
}

func mountCRUD[T service.Record[T]](mux *http.ServeMux, h *handler, kind string, svc *service.CRUD[T], decode func(io.Reader) (T, error)) {
	collection := prefix + "/" + kind
	item := collection + "/{id}"

	mux.HandleFunc("GET "+collection, h.wrap(func(w http.ResponseWriter, r *http.Request) error {
		list, err := svc.List(r.Context())
		if err != nil {
			return err
		}
		return writeJSON(w, http.StatusOK, list)
	}))
	mux.HandleFunc("POST "+collection, h.wrap(func(w http.ResponseWriter, r *http.Request) error {
		e, err := decode(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			return err
		}
		created, err := svc.Create(r.Context(), e)
		if err != nil {
			return err
		}
		w.Header().Set("Location", fmt.Sprintf("%s/%d", collection, created.GetID()))
		return writeJSON(w, http.StatusCreated, created)
	}))
	mux.HandleFunc("GET "+item, h.wrap(func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathID(r)
		if err != nil {
			return err
		}
		e, err := svc.Get(r.Context(), id)
		if err != nil {
			return err
		}
		return writeJSON(w, http.StatusOK, e)
	}))
	mux.HandleFunc("PUT "+item, h.wrap(func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathID(r)
		if err != nil {
			return err
		}
		patch, err := decode(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			return err
		}
		updated, err := svc.Update(r.Context(), id, patch)
		if err != nil {
			return err
		}
		return writeJSON(w, http.StatusOK, updated)
	}))
	mux.HandleFunc("DELETE "+item, h.wrap(func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathID(r)
		if err != nil {
			return err
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			return err
		}
		w.WriteHeader(http.StatusNoContent)
		return nil
	}))
}

func (h *handler) certificate(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "pdf"
	}
	doc, err := h.svc.Students.GenerateCertificate(r.Context(), id, format)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(doc.Data)
	return err
}

func (h *handler) studentsBySpecialty(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	out, err := h.svc.Specialties.StudentsBySpecialty(r.Context(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, out)
}

type formatsResponse struct {
	Formats []builtin.Status `json:"formats"`
}

func (h *handler) formats(w http.ResponseWriter, _ *http.Request) error {
	var statuses []builtin.Status
	if h.svc.Formats != nil {
		statuses = h.svc.Formats()
	} else {
		for _, f := range h.svc.Registry.AvailableFormats() {
			statuses = append(statuses, builtin.Status{Format: f, Available: true})
		}
	}
	if statuses == nil {
		statuses = []builtin.Status{}
	}
	return writeJSON(w, http.StatusOK, formatsResponse{Formats: statuses})
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("invalid id %q", raw)}
	}
	return id, nil
}

func decodeJSON[T any](body io.Reader) (T, error) {
	var v T
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("decode body: %w", err)}
	}
	if rv := reflect.ValueOf(&v).Elem(); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return v, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("decode body: empty object")}
	}
	return v, nil
}

// studentPayload accepts dates as YYYY-MM-DD.
type studentPayload struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	DocumentNumber string `json:"document_number"`
	DocumentType   string `json:"document_type"`
	BirthDate      string `json:"birth_date"`
	Sex            string `json:"sex"`
	FileNumber     int64  `json:"file_number"`
	EnrollmentDate string `json:"enrollment_date"`
	SpecialtyID    *int64 `json:"specialty_id"`
}

func decodeStudent(body io.Reader) (*domain.Student, error) {
	p, err := decodeJSON[studentPayload](body)
	if err != nil {
		return nil, err
	}
	st := &domain.Student{
		FirstName:      strings.TrimSpace(p.FirstName),
		LastName:       strings.TrimSpace(p.LastName),
		DocumentNumber: p.DocumentNumber,
		DocumentType:   p.DocumentType,
		Sex:            p.Sex,
		FileNumber:     p.FileNumber,
		SpecialtyID:    p.SpecialtyID,
	}
	if st.BirthDate, err = parseDay("birth_date", p.BirthDate); err != nil {
		return nil, err
	}
	if st.EnrollmentDate, err = parseDay("enrollment_date", p.EnrollmentDate); err != nil {
		return nil, err
	}
	return st, nil
}

func parseDay(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("%s: %w", field, err)}
	}
	return t, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	// the status line is already out; a failed body cannot be reported
	_ = enc.Encode(v)
	return nil
}
