// Package domain holds the academic entities served by the API and the errors
// shared by the storage and service layers.
package domain

import "time"

// Entity is implemented by every persisted record.
type Entity interface {
	GetID() int64
	SetID(id int64)
}

// University is the root of the academic hierarchy.
type University struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Acronym string `json:"acronym"`
}

func (u *University) GetID() int64   { return u.ID }
func (u *University) SetID(id int64) { u.ID = id }

// ApplyUpdate copies the mutable fields of other into u.
func (u *University) ApplyUpdate(other *University) {
	u.Name = other.Name
	u.Acronym = other.Acronym
}

// Snapshot returns a detached copy of u suitable for template contexts.
func (u *University) Snapshot() map[string]any {
	return map[string]any{
		"id":      u.ID,
		"name":    u.Name,
		"acronym": u.Acronym,
	}
}

// Faculty belongs to a University.
type Faculty struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	Abbreviation string      `json:"abbreviation"`
	Acronym      string      `json:"acronym"`
	UniversityID *int64      `json:"university_id,omitempty"`
	University   *University `json:"university,omitempty"`
}

func (f *Faculty) GetID() int64   { return f.ID }
func (f *Faculty) SetID(id int64) { f.ID = id }

// ApplyUpdate copies the mutable fields of other into f.
func (f *Faculty) ApplyUpdate(other *Faculty) {
	f.Name = other.Name
	f.Abbreviation = other.Abbreviation
	f.Acronym = other.Acronym
	f.UniversityID = other.UniversityID
	f.University = other.University
}

// Snapshot returns a detached copy of f without its parent.
func (f *Faculty) Snapshot() map[string]any {
	return map[string]any{
		"id":           f.ID,
		"name":         f.Name,
		"abbreviation": f.Abbreviation,
		"acronym":      f.Acronym,
	}
}

// Specialty is a degree programme offered by a Faculty.
type Specialty struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Letter      string   `json:"letter"`
	Observation string   `json:"observation"`
	FacultyID   *int64   `json:"faculty_id,omitempty"`
	Faculty     *Faculty `json:"faculty,omitempty"`
}

func (s *Specialty) GetID() int64   { return s.ID }
func (s *Specialty) SetID(id int64) { s.ID = id }

// ApplyUpdate copies the mutable fields of other into s.
func (s *Specialty) ApplyUpdate(other *Specialty) {
	s.Name = other.Name
	s.Letter = other.Letter
	s.Observation = other.Observation
	s.FacultyID = other.FacultyID
	s.Faculty = other.Faculty
}

// Snapshot returns a detached copy of s without its parent.
func (s *Specialty) Snapshot() map[string]any {
	return map[string]any{
		"id":          s.ID,
		"name":        s.Name,
		"letter":      s.Letter,
		"observation": s.Observation,
	}
}

// Student is enrolled in a Specialty.
type Student struct {
	ID             int64      `json:"id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	DocumentNumber string     `json:"document_number"`
	DocumentType   string     `json:"document_type"`
	BirthDate      time.Time  `json:"birth_date"`
	Sex            string     `json:"sex"`
	FileNumber     int64      `json:"file_number"`
	EnrollmentDate time.Time  `json:"enrollment_date"`
	SpecialtyID    *int64     `json:"specialty_id,omitempty"`
	Specialty      *Specialty `json:"specialty,omitempty"`
}

func (s *Student) GetID() int64   { return s.ID }
func (s *Student) SetID(id int64) { s.ID = id }

// ApplyUpdate copies the mutable fields of other into s.
func (s *Student) ApplyUpdate(other *Student) {
	s.FirstName = other.FirstName
	s.LastName = other.LastName
	s.DocumentNumber = other.DocumentNumber
	s.DocumentType = other.DocumentType
	s.BirthDate = other.BirthDate
	s.Sex = other.Sex
	s.FileNumber = other.FileNumber
	s.EnrollmentDate = other.EnrollmentDate
	s.SpecialtyID = other.SpecialtyID
	s.Specialty = other.Specialty
}

// Snapshot returns a detached copy of s without its parent. Dates are
// rendered as ISO 8601 days.
func (s *Student) Snapshot() map[string]any {
	return map[string]any{
		"id":              s.ID,
		"first_name":      s.FirstName,
		"last_name":       s.LastName,
		"full_name":       s.FirstName + " " + s.LastName,
		"document_number": s.DocumentNumber,
		"document_type":   s.DocumentType,
		"birth_date":      isoDate(s.BirthDate),
		"sex":             s.Sex,
		"file_number":     s.FileNumber,
		"enrollment_date": isoDate(s.EnrollmentDate),
	}
}

// Position is a teaching or staff appointment.
type Position struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Points     float64 `json:"points"`
	Category   string  `json:"category"`
	Dedication string  `json:"dedication"`
}

func (p *Position) GetID() int64   { return p.ID }
func (p *Position) SetID(id int64) { p.ID = id }

// ApplyUpdate copies the mutable fields of other into p.
func (p *Position) ApplyUpdate(other *Position) {
	p.Name = other.Name
	p.Points = other.Points
	p.Category = other.Category
	p.Dedication = other.Dedication
}

// Area groups subjects by field of knowledge.
type Area struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (a *Area) GetID() int64   { return a.ID }
func (a *Area) SetID(id int64) { a.ID = id }

// ApplyUpdate only replaces the name.
func (a *Area) ApplyUpdate(other *Area) {
	a.Name = other.Name
}

func isoDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
