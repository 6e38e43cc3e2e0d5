package store

import (
	"context"

	"github.com/ByLCY/scholar/domain"
)

// StudentWithChain loads a student and, where the foreign keys are set,
// its specialty, faculty and university. Absent links stay nil; callers
// decide whether that is an error.
func (s *DB) StudentWithChain(ctx context.Context, id int64) (*domain.Student, error) {
	st, err := s.Students.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if st.SpecialtyID == nil {
		return st, nil
	}
	sp, err := s.SpecialtyWithChain(ctx, *st.SpecialtyID)
	if err != nil {
		if err = optional(err); err != nil {
			return nil, err
		}
		return st, nil
	}
	st.Specialty = sp
	return st, nil
}

// SpecialtyWithChain loads a specialty with its faculty and university.
func (s *DB) SpecialtyWithChain(ctx context.Context, id int64) (*domain.Specialty, error) {
	sp, err := s.Specialties.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sp.FacultyID == nil {
		return sp, nil
	}
	f, err := s.Faculties.FindByID(ctx, *sp.FacultyID)
	if err != nil {
		if err = optional(err); err != nil {
			return nil, err
		}
		return sp, nil
	}
	sp.Faculty = f
	if f.UniversityID == nil {
		return sp, nil
	}
	u, err := s.Universities.FindByID(ctx, *f.UniversityID)
	if err != nil {
		if err = optional(err); err != nil {
			return nil, err
		}
		return sp, nil
	}
	f.University = u
	return sp, nil
}

// StudentsOf lists the students enrolled in a specialty.
func (s *DB) StudentsOf(ctx context.Context, specialtyID int64) ([]*domain.Student, error) {
	return s.Students.FindBy(ctx, "specialty_id", specialtyID)
}

// optional drops not-found errors for dangling foreign keys.
func optional(err error) error {
	if domain.IsNotFound(err) {
		return nil
	}
	return err
}
