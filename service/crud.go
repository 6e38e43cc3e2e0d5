// Package service holds the application use cases: generic CRUD over the
// academic entities, certificate generation and specialty listings.
package service

import (
	"context"

	"github.com/ByLCY/scholar/domain"
)

// Repository is the persistence contract CRUD needs. store.Repository
// implements it.
type Repository[T domain.Entity] interface {
	Label() string
	Create(ctx context.Context, e T) error
	FindByID(ctx context.Context, id int64) (T, error)
	FindAll(ctx context.Context) ([]T, error)
	Update(ctx context.Context, e T) error
	Delete(ctx context.Context, id int64) (bool, error)
}

// Record is an entity that knows which of its fields an update may change.
type Record[T any] interface {
	domain.Entity
	ApplyUpdate(T)
}

// CRUD implements create, read, update and delete for one entity type.
type CRUD[T Record[T]] struct {
	repo Repository[T]
}

// NewCRUD returns a CRUD service over repo.
func NewCRUD[T Record[T]](repo Repository[T]) *CRUD[T] {
	return &CRUD[T]{repo: repo}
}

// Label is the singular entity name.
func (c *CRUD[T]) Label() string { return c.repo.Label() }

// Create ignores any id set on e.
func (c *CRUD[T]) Create(ctx context.Context, e T) (T, error) {
	e.SetID(0)
	if err := c.repo.Create(ctx, e); err != nil {
		var zero T
		return zero, err
	}
	return e, nil
}

func (c *CRUD[T]) Get(ctx context.Context, id int64) (T, error) {
	return c.repo.FindByID(ctx, id)
}

func (c *CRUD[T]) List(ctx context.Context) ([]T, error) {
	return c.repo.FindAll(ctx)
}

// Update copies the mutable fields of patch onto the stored entity.
func (c *CRUD[T]) Update(ctx context.Context, id int64, patch T) (T, error) {
	existing, err := c.repo.FindByID(ctx, id)
	if err != nil {
		var zero T
		return zero, err
	}
	existing.ApplyUpdate(patch)
	if err := c.repo.Update(ctx, existing); err != nil {
		var zero T
		return zero, err
	}
	return existing, nil
}

// Delete returns a *domain.NotFoundError when nothing was removed.
func (c *CRUD[T]) Delete(ctx context.Context, id int64) error {
	ok, err := c.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NewNotFoundError(c.repo.Label(), id)
	}
	return nil
}
