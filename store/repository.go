package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ByLCY/scholar/domain"
)

// Repository is the generic CRUD access path for one entity table.
type Repository[T domain.Entity] struct {
	db *DB
	t  table[T]
}

func newRepository[T domain.Entity](db *DB, t table[T]) *Repository[T] {
	return &Repository[T]{db: db, t: t}
}

// Label is the singular entity name used in errors.
func (r *Repository[T]) Label() string { return r.t.label }

func (r *Repository[T]) selectList() string {
	return "id, " + strings.Join(r.t.columns, ", ")
}

func (r *Repository[T]) scan(scan func(dest ...any) error) (T, error) {
	e := r.t.create()
	var id int64
	if err := scan(append([]any{&id}, r.t.dest(e)...)...); err != nil {
		var zero T
		return zero, err
	}
	e.SetID(id)
	return e, nil
}

// Create inserts e and stores the generated id on it.
func (r *Repository[T]) Create(ctx context.Context, e T) error {
	d := r.db.dialect
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		r.t.name, strings.Join(r.t.columns, ", "), d.placeholders(1, len(r.t.columns)))
	args := r.t.values(e)

	if d.returning {
		var id int64
		if err := r.db.queryRow(ctx, q+" RETURNING id", args...).Scan(&id); err != nil {
			return fmt.Errorf("store: insert %s: %w", r.t.label, err)
		}
		e.SetID(id)
		return nil
	}
	res, err := r.db.exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("store: insert %s: %w", r.t.label, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: insert %s: %w", r.t.label, err)
	}
	e.SetID(id)
	return nil
}

// FindByID returns the row with id or a *domain.NotFoundError.
func (r *Repository[T]) FindByID(ctx context.Context, id int64) (T, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE id = %s", r.selectList(), r.t.name, r.db.dialect.placeholder(1))
	e, err := r.scan(r.db.queryRow(ctx, q, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return e, domain.NewNotFoundError(r.t.label, id)
	}
	if err != nil {
		return e, fmt.Errorf("store: find %s %d: %w", r.t.label, id, err)
	}
	return e, nil
}

// FindAll returns every row ordered by id.
func (r *Repository[T]) FindAll(ctx context.Context) ([]T, error) {
	q := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", r.selectList(), r.t.name)
	return r.list(ctx, q)
}

// FindBy returns rows whose column equals value, ordered by id.
func (r *Repository[T]) FindBy(ctx context.Context, column string, value any) ([]T, error) {
	if !slices.Contains(r.t.columns, column) {
		return nil, fmt.Errorf("store: %s has no column %q", r.t.name, column)
	}
	q := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s ORDER BY id",
		r.selectList(), r.t.name, column, r.db.dialect.placeholder(1))
	return r.list(ctx, q, value)
}

func (r *Repository[T]) list(ctx context.Context, q string, args ...any) ([]T, error) {
	rows, err := r.db.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list %s: %w", r.t.name, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		e, err := r.scan(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("store: scan %s: %w", r.t.label, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list %s: %w", r.t.name, err)
	}
	return out, nil
}

// Update writes every column of e. A missing row yields *domain.NotFoundError.
func (r *Repository[T]) Update(ctx context.Context, e T) error {
	d := r.db.dialect
	sets := make([]string, len(r.t.columns))
	for i, c := range r.t.columns {
		sets[i] = c + " = " + d.placeholder(i+1)
	}
	q := fmt.Sprintf("UPDATE %s SET %s WHERE id = %s",
		r.t.name, strings.Join(sets, ", "), d.placeholder(len(r.t.columns)+1))
	res, err := r.db.exec(ctx, q, append(r.t.values(e), e.GetID())...)
	if err != nil {
		return fmt.Errorf("store: update %s %d: %w", r.t.label, e.GetID(), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: update %s %d: %w", r.t.label, e.GetID(), err)
	}
	if n == 0 {
		// mysql reports zero affected rows when nothing changed
		if _, err := r.FindByID(ctx, e.GetID()); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the row and reports whether it existed.
func (r *Repository[T]) Delete(ctx context.Context, id int64) (bool, error) {
	q := fmt.Sprintf("DELETE FROM %s WHERE id = %s", r.t.name, r.db.dialect.placeholder(1))
	res, err := r.db.exec(ctx, q, id)
	if err != nil {
		return false, fmt.Errorf("store: delete %s %d: %w", r.t.label, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("store: delete %s %d: %w", r.t.label, id, err)
	}
	return n > 0, nil
}
