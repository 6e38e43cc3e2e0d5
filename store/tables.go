package store

import (
	"fmt"
	"strings"

	"github.com/ByLCY/scholar/domain"
)

// table maps one entity type onto its SQL table. columns excludes id and
// lines up with the slices returned by values and dest.
type table[T domain.Entity] struct {
	name    string
	label   string
	columns []string
	types   []string
	refs    map[string]string
	create  func() T
	values  func(T) []any
	dest    func(T) []any
}

var universities = table[*domain.University]{
	name:    "universities",
	label:   "university",
	columns: []string{"name", "acronym"},
	types:   []string{"VARCHAR(255) NOT NULL", "VARCHAR(32) NOT NULL DEFAULT ''"},
	create:  func() *domain.University { return &domain.University{} },
	values:  func(u *domain.University) []any { return []any{u.Name, u.Acronym} },
	dest:    func(u *domain.University) []any { return []any{&u.Name, &u.Acronym} },
}

var faculties = table[*domain.Faculty]{
	name:    "faculties",
	label:   "faculty",
	columns: []string{"name", "abbreviation", "acronym", "university_id"},
	types:   []string{"VARCHAR(255) NOT NULL", "VARCHAR(64) NOT NULL DEFAULT ''", "VARCHAR(32) NOT NULL DEFAULT ''", "BIGINT"},
	refs:    map[string]string{"university_id": "universities"},
	create:  func() *domain.Faculty { return &domain.Faculty{} },
	values: func(f *domain.Faculty) []any {
		return []any{f.Name, f.Abbreviation, f.Acronym, f.UniversityID}
	},
	dest: func(f *domain.Faculty) []any {
		return []any{&f.Name, &f.Abbreviation, &f.Acronym, &f.UniversityID}
	},
}

var specialties = table[*domain.Specialty]{
	name:    "specialties",
	label:   "specialty",
	columns: []string{"name", "letter", "observation", "faculty_id"},
	types:   []string{"VARCHAR(255) NOT NULL", "VARCHAR(8) NOT NULL DEFAULT ''", "VARCHAR(1024) NOT NULL DEFAULT ''", "BIGINT"},
	refs:    map[string]string{"faculty_id": "faculties"},
	create:  func() *domain.Specialty { return &domain.Specialty{} },
	values: func(s *domain.Specialty) []any {
		return []any{s.Name, s.Letter, s.Observation, s.FacultyID}
	},
	dest: func(s *domain.Specialty) []any {
		return []any{&s.Name, &s.Letter, &s.Observation, &s.FacultyID}
	},
}

var students = table[*domain.Student]{
	name:  "students",
	label: "student",
	columns: []string{
		"first_name", "last_name", "document_number", "document_type", "birth_date",
		"sex", "file_number", "enrollment_date", "specialty_id",
	},
	types: []string{
		"VARCHAR(100) NOT NULL", "VARCHAR(100) NOT NULL", "VARCHAR(32) NOT NULL", "VARCHAR(16) NOT NULL DEFAULT ''", "DATE",
		"VARCHAR(1) NOT NULL DEFAULT ''", "BIGINT NOT NULL DEFAULT 0", "DATE", "BIGINT",
	},
	refs:   map[string]string{"specialty_id": "specialties"},
	create: func() *domain.Student { return &domain.Student{} },
	values: func(s *domain.Student) []any {
		return []any{
			s.FirstName, s.LastName, s.DocumentNumber, s.DocumentType, date{&s.BirthDate},
			s.Sex, s.FileNumber, date{&s.EnrollmentDate}, s.SpecialtyID,
		}
	},
	dest: func(s *domain.Student) []any {
		return []any{
			&s.FirstName, &s.LastName, &s.DocumentNumber, &s.DocumentType, date{&s.BirthDate},
			&s.Sex, &s.FileNumber, date{&s.EnrollmentDate}, &s.SpecialtyID,
		}
	},
}

var positions = table[*domain.Position]{
	name:    "positions",
	label:   "position",
	columns: []string{"name", "points", "category", "dedication"},
	types:   []string{"VARCHAR(255) NOT NULL", "DOUBLE PRECISION NOT NULL DEFAULT 0", "VARCHAR(64) NOT NULL DEFAULT ''", "VARCHAR(64) NOT NULL DEFAULT ''"},
	create:  func() *domain.Position { return &domain.Position{} },
	values: func(p *domain.Position) []any {
		return []any{p.Name, p.Points, p.Category, p.Dedication}
	},
	dest: func(p *domain.Position) []any {
		return []any{&p.Name, &p.Points, &p.Category, &p.Dedication}
	},
}

var areas = table[*domain.Area]{
	name:    "areas",
	label:   "area",
	columns: []string{"name"},
	types:   []string{"VARCHAR(255) NOT NULL"},
	create:  func() *domain.Area { return &domain.Area{} },
	values:  func(a *domain.Area) []any { return []any{a.Name} },
	dest:    func(a *domain.Area) []any { return []any{&a.Name} },
}

func (t table[T]) ddl(d dialect) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (id %s", t.name, d.pk)
	for i, c := range t.columns {
		fmt.Fprintf(&b, ", %s %s", c, t.types[i])
	}
	for _, c := range t.columns {
		if ref, ok := t.refs[c]; ok {
			fmt.Fprintf(&b, ", FOREIGN KEY (%s) REFERENCES %s(id) ON DELETE SET NULL", c, ref)
		}
	}
	b.WriteString(")")
	return b.String()
}

// schema lists the DDL in dependency order.
func schema(d dialect) []string {
	return []string{
		universities.ddl(d),
		faculties.ddl(d),
		specialties.ddl(d),
		students.ddl(d),
		positions.ddl(d),
		areas.ddl(d),
	}
}
