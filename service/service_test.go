package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/ByLCY/scholar/domain"
	"github.com/ByLCY/scholar/renderer"
)

var frozen = time.Date(2026, time.October, 17, 10, 30, 0, 0, time.UTC)

func freezeClock(t *testing.T) {
	t.Helper()
	prev := now
	now = func() time.Time { return frozen }
	t.Cleanup(func() { now = prev })
}

func ptr(v int64) *int64 { return &v }

func fullStudent() *domain.Student {
	u := &domain.University{ID: 1, Name: "Universidad Tecnológica Nacional", Acronym: "UTN"}
	f := &domain.Faculty{ID: 2, Name: "Facultad Regional San Rafael", Acronym: "FRSR", UniversityID: ptr(1), University: u}
	sp := &domain.Specialty{ID: 3, Name: "Ingeniería en Sistemas", Letter: "K", FacultyID: ptr(2), Faculty: f}
	return &domain.Student{
		ID: 4, FirstName: "Ada", LastName: "Lovelace", DocumentNumber: "30111222", FileNumber: 1234,
		BirthDate: time.Date(1990, 12, 10, 0, 0, 0, 0, time.UTC), SpecialtyID: ptr(3), Specialty: sp,
	}
}

// memRepo is an in-memory Repository.
type memRepo[T Record[T]] struct {
	mu     sync.Mutex
	label  string
	nextID int64
	rows   map[int64]T
}

func newMemRepo[T Record[T]](label string) *memRepo[T] {
	return &memRepo[T]{label: label, rows: map[int64]T{}}
}

func (m *memRepo[T]) Label() string { return m.label }

func (m *memRepo[T]) Create(_ context.Context, e T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	e.SetID(m.nextID)
	m.rows[e.GetID()] = e
	return nil
}

func (m *memRepo[T]) FindByID(_ context.Context, id int64) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rows[id]
	if !ok {
		var zero T
		return zero, domain.NewNotFoundError(m.label, id)
	}
	return e, nil
}

func (m *memRepo[T]) FindAll(context.Context) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]T, 0, len(m.rows))
	for id := int64(1); id <= m.nextID; id++ {
		if e, ok := m.rows[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memRepo[T]) Update(_ context.Context, e T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[e.GetID()]; !ok {
		return domain.NewNotFoundError(m.label, e.GetID())
	}
	m.rows[e.GetID()] = e
	return nil
}

func (m *memRepo[T]) Delete(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[id]
	delete(m.rows, id)
	return ok, nil
}

type fakeLoader struct {
	students map[int64]*domain.Student
}

func (f fakeLoader) StudentWithChain(_ context.Context, id int64) (*domain.Student, error) {
	st, ok := f.students[id]
	if !ok {
		return nil, domain.NewNotFoundError("student", id)
	}
	return st, nil
}

// recordingGenerator captures the context it was given.
type recordingGenerator struct {
	mu    *sync.Mutex
	seen  *[]renderer.Context
	delay time.Duration
	err   error
}

func (g recordingGenerator) Extension() string { return "pdf" }

func (g recordingGenerator) Generate(folder, name string, ctx renderer.Context) ([]byte, error) {
	time.Sleep(g.delay)
	if g.err != nil {
		return nil, g.err
	}
	g.mu.Lock()
	*g.seen = append(*g.seen, ctx)
	g.mu.Unlock()
	return []byte("%PDF-1.7 " + folder + "/" + name), nil
}

func TestBuildCertificateContextFullChain(t *testing.T) {
	freezeClock(t)
	ctx, err := BuildCertificateContext(fullStudent(), language.Spanish)
	require.NoError(t, err)

	want := []string{KeyStudent, KeySpecialty, KeyFaculty, KeyUniversity, KeyGeneratedDate}
	if diff := cmp.Diff(want, ctx.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	date, _ := ctx.Get(KeyGeneratedDate)
	assert.Equal(t, "17 de octubre de 2026", date)

	parsed, err := ParseLongDate(language.Spanish, date.(string))
	require.NoError(t, err)
	y, m, d := now().Date()
	assert.Equal(t, time.Date(y, m, d, 0, 0, 0, 0, time.UTC), parsed)

	uni, _ := ctx.Get(KeyUniversity)
	assert.Equal(t, "UTN", uni.(map[string]any)["acronym"])
	student, _ := ctx.Get(KeyStudent)
	assert.Equal(t, "1990-12-10", student.(map[string]any)["birth_date"])
}

func TestBuildCertificateContextSnapshotsValues(t *testing.T) {
	st := fullStudent()
	ctx, err := BuildCertificateContext(st, language.English)
	require.NoError(t, err)
	st.Specialty.Name = "changed"
	sp, _ := ctx.Get(KeySpecialty)
	assert.Equal(t, "Ingeniería en Sistemas", sp.(map[string]any)["name"])
}

func TestBuildCertificateContextMissingRelations(t *testing.T) {
	cases := map[string]struct {
		mutate   func(*domain.Student)
		entity   string
		relation string
	}{
		"specialty":  {func(s *domain.Student) { s.Specialty = nil }, "student", "specialty"},
		"faculty":    {func(s *domain.Student) { s.Specialty.Faculty = nil }, "specialty", "faculty"},
		"university": {func(s *domain.Student) { s.Specialty.Faculty.University = nil }, "faculty", "university"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			st := fullStudent()
			tc.mutate(st)
			_, err := BuildCertificateContext(st, language.Spanish)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrMissingRelation)
			var mr *domain.MissingRelationError
			require.ErrorAs(t, err, &mr)
			assert.Equal(t, tc.entity, mr.Entity)
			assert.Equal(t, tc.relation, mr.Relation)
		})
	}
}

func TestLongDates(t *testing.T) {
	d := time.Date(2026, time.March, 7, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "07 de marzo de 2026", FormatLongDate(d, language.Spanish))
	assert.Equal(t, "07 March 2026", FormatLongDate(d, language.English))
	assert.Equal(t, "07 March 2026", FormatLongDate(d, language.BritishEnglish))
	assert.Equal(t, "07 de marzo de 2026", FormatLongDate(d, MatchLocale("es-AR")))
	assert.Equal(t, language.Spanish, MatchLocale("klingon!"))

	got, err := ParseLongDate(language.English, "17 October 2026")
	require.NoError(t, err)
	assert.Equal(t, frozen.Truncate(24*time.Hour), got)

	_, err = ParseLongDate(language.Spanish, "31 de febrero de 2026")
	assert.Error(t, err)
	_, err = ParseLongDate(language.Spanish, "17 October 2026")
	assert.Error(t, err)
}

func newStudentsService(t *testing.T, gen renderer.Generator, timeout time.Duration) *Students {
	t.Helper()
	reg := renderer.NewRegistry()
	reg.Register("pdf", func() renderer.Generator { return gen })
	loader := fakeLoader{students: map[int64]*domain.Student{4: fullStudent()}}
	broken := fullStudent()
	broken.ID = 5
	broken.Specialty.Faculty = nil
	loader.students[5] = broken
	return NewStudents(newMemRepo[*domain.Student]("student"), loader, StudentsOptions{
		Registry: reg, Timeout: timeout,
	})
}

func TestGenerateCertificate(t *testing.T) {
	freezeClock(t)
	var seen []renderer.Context
	gen := recordingGenerator{mu: &sync.Mutex{}, seen: &seen}
	svc := newStudentsService(t, gen, time.Second)

	doc, err := svc.GenerateCertificate(context.Background(), 4, "PDF")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.Equal(t, "enrollment-4.pdf", doc.Filename)
	assert.Equal(t, "%PDF-1.7 certificate/enrollment", string(doc.Data))
	require.Len(t, seen, 1)
	assert.True(t, seen[0].Has(KeyGeneratedDate))
}

func TestGenerateCertificateErrors(t *testing.T) {
	var seen []renderer.Context
	svc := newStudentsService(t, recordingGenerator{mu: &sync.Mutex{}, seen: &seen}, time.Second)
	ctx := context.Background()

	_, err := svc.GenerateCertificate(ctx, 4, "rtf")
	assert.True(t, renderer.IsUnsupportedFormat(err))

	_, err = svc.GenerateCertificate(ctx, 404, "pdf")
	assert.True(t, domain.IsNotFound(err))

	_, err = svc.GenerateCertificate(ctx, 5, "pdf")
	assert.True(t, domain.IsMissingRelation(err))
	assert.Empty(t, seen, "the generator never runs without a full chain")

	failing := newStudentsService(t, recordingGenerator{mu: &sync.Mutex{}, seen: &seen,
		err: &renderer.BackendUnavailableError{Format: "pdf", Hint: "install fonts"}}, time.Second)
	_, err = failing.GenerateCertificate(ctx, 4, "pdf")
	assert.True(t, renderer.IsBackendUnavailable(err))
}

func TestGenerateCertificateTimeout(t *testing.T) {
	var seen []renderer.Context
	slow := recordingGenerator{mu: &sync.Mutex{}, seen: &seen, delay: 200 * time.Millisecond}
	svc := newStudentsService(t, slow, 20*time.Millisecond)

	_, err := svc.GenerateCertificate(context.Background(), 4, "pdf")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCRUD(t *testing.T) {
	ctx := context.Background()
	svc := NewCRUD[*domain.Area](newMemRepo[*domain.Area]("area"))

	a, err := svc.Create(ctx, &domain.Area{ID: 99, Name: "Básicas"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.ID, "client ids are ignored")

	up, err := svc.Update(ctx, a.ID, &domain.Area{Name: "Ciencias Básicas"})
	require.NoError(t, err)
	assert.Equal(t, "Ciencias Básicas", up.Name)

	_, err = svc.Update(ctx, 42, &domain.Area{Name: "x"})
	assert.True(t, domain.IsNotFound(err))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, a.ID))
	err = svc.Delete(ctx, a.ID)
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "area", nf.Label())
}

type fakeSpecialtyLoader struct {
	sp       *domain.Specialty
	students []*domain.Student
	err      error
}

func (f fakeSpecialtyLoader) SpecialtyWithChain(_ context.Context, id int64) (*domain.Specialty, error) {
	if f.sp == nil || f.sp.ID != id {
		return nil, domain.NewNotFoundError("specialty", id)
	}
	return f.sp, nil
}

func (f fakeSpecialtyLoader) StudentsOf(context.Context, int64) ([]*domain.Student, error) {
	return f.students, f.err
}

func TestStudentsBySpecialty(t *testing.T) {
	st := fullStudent()
	loader := fakeSpecialtyLoader{sp: st.Specialty, students: []*domain.Student{st}}
	svc := NewSpecialties(newMemRepo[*domain.Specialty]("specialty"), loader)

	out, err := svc.StudentsBySpecialty(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "K", out.Specialty["letter"])
	assert.Equal(t, "FRSR", out.Faculty["acronym"])
	assert.Equal(t, "UTN", out.Faculty["university"].(map[string]any)["acronym"])
	require.Len(t, out.Students, 1)
	assert.Equal(t, "Lovelace", out.Students[0]["last_name"])

	_, err = svc.StudentsBySpecialty(context.Background(), 9)
	assert.True(t, domain.IsNotFound(err))

	boom := errors.New("db down")
	svc = NewSpecialties(newMemRepo[*domain.Specialty]("specialty"), fakeSpecialtyLoader{sp: st.Specialty, err: boom})
	_, err = svc.StudentsBySpecialty(context.Background(), 3)
	assert.ErrorIs(t, err, boom)
}

func TestDocumentName(t *testing.T) {
	ctx, err := BuildCertificateContext(fullStudent(), language.Spanish)
	require.NoError(t, err)

	assert.Equal(t, "constancia-1234_Lovelace", documentName("constancia-${student.file_number} ${student.last_name}", ctx))
	assert.Equal(t, "x-student.nope", documentName("x-${student.nope}", ctx))
	assert.Equal(t, "document", documentName("", ctx))
}
