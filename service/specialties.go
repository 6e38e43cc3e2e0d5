package service

import (
	"context"

	"github.com/ByLCY/scholar/domain"
)

// SpecialtyLoader loads specialties with their parents and students.
type SpecialtyLoader interface {
	SpecialtyWithChain(ctx context.Context, id int64) (*domain.Specialty, error)
	StudentsOf(ctx context.Context, specialtyID int64) ([]*domain.Student, error)
}

// Specialties is the specialty use-case service.
type Specialties struct {
	*CRUD[*domain.Specialty]
	loader SpecialtyLoader
}

func NewSpecialties(repo Repository[*domain.Specialty], loader SpecialtyLoader) *Specialties {
	return &Specialties{CRUD: NewCRUD(repo), loader: loader}
}

// SpecialtyStudents is the listing returned by StudentsBySpecialty. Faculty
// is nil when the specialty has none; University likewise.
type SpecialtyStudents struct {
	Specialty map[string]any   `json:"specialty"`
	Faculty   map[string]any   `json:"faculty"`
	Students  []map[string]any `json:"students"`
}

// StudentsBySpecialty lists the students of specialty id along with the
// specialty, its faculty and the faculty's university.
func (s *Specialties) StudentsBySpecialty(ctx context.Context, id int64) (*SpecialtyStudents, error) {
	sp, err := s.loader.SpecialtyWithChain(ctx, id)
	if err != nil {
		return nil, err
	}
	students, err := s.loader.StudentsOf(ctx, id)
	if err != nil {
		return nil, err
	}

	out := &SpecialtyStudents{
		Specialty: sp.Snapshot(),
		Students:  make([]map[string]any, 0, len(students)),
	}
	if f := sp.Faculty; f != nil {
		out.Faculty = f.Snapshot()
		if u := f.University; u != nil {
			out.Faculty["university"] = u.Snapshot()
		} else {
			out.Faculty["university"] = nil
		}
	}
	for _, st := range students {
		out.Students = append(out.Students, st.Snapshot())
	}
	return out, nil
}
