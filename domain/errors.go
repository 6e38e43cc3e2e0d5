package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("scholar: entity not found")

	// ErrMissingRelation is returned when a required parent relation is absent.
	ErrMissingRelation = errors.New("scholar: missing relation")
)

// NotFoundError represents an error when an entity is not found.
type NotFoundError struct {
	label string
	id    int64
}

// NewNotFoundError returns a NotFoundError for the given entity label and id.
func NewNotFoundError(label string, id int64) *NotFoundError {
	return &NotFoundError{label: label, id: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("scholar: %s not found (id=%d)", e.label, e.id)
}

// Is allows errors.Is(err, ErrNotFound).
func (e *NotFoundError) Is(err error) bool { return err == ErrNotFound }

// Label returns the entity label.
func (e *NotFoundError) Label() string { return e.label }

// ID returns the id that was searched for.
func (e *NotFoundError) ID() int64 { return e.id }

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// MissingRelationError reports an entity whose parent chain is broken, for
// instance a specialty without a faculty. The entity exists, so callers should
// treat it as a data-integrity problem rather than a missing record.
type MissingRelationError struct {
	Entity   string
	ID       int64
	Relation string
}

func (e *MissingRelationError) Error() string {
	return fmt.Sprintf("scholar: %s %d has no %s", e.Entity, e.ID, e.Relation)
}

// Is allows errors.Is(err, ErrMissingRelation).
func (e *MissingRelationError) Is(err error) bool { return err == ErrMissingRelation }

// IsMissingRelation reports whether err is a MissingRelationError.
func IsMissingRelation(err error) bool {
	if err == nil {
		return false
	}
	var e *MissingRelationError
	return errors.As(err, &e) || errors.Is(err, ErrMissingRelation)
}
