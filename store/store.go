// Package store persists the academic entities in SQLite, PostgreSQL or
// MySQL through database/sql.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/ByLCY/scholar/domain"
)

// DB bundles the connection and the repositories built on it.
type DB struct {
	db      *sql.DB
	dialect dialect
	logger  *slog.Logger
	slow    time.Duration

	Universities *Repository[*domain.University]
	Faculties    *Repository[*domain.Faculty]
	Specialties  *Repository[*domain.Specialty]
	Students     *Repository[*domain.Student]
	Positions    *Repository[*domain.Position]
	Areas        *Repository[*domain.Area]
}

// Option configures a DB.
type Option func(*DB)

// WithLogger sets the logger used for slow queries and errors.
func WithLogger(l *slog.Logger) Option { return func(d *DB) { d.logger = l } }

// WithSlowThreshold logs statements slower than d at warn level.
func WithSlowThreshold(t time.Duration) Option { return func(d *DB) { d.slow = t } }

// Open connects to dsn with the driver of the named dialect.
func Open(name, dsn string, opts ...Option) (*DB, error) {
	d, err := lookupDialect(name)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", name, err)
	}
	if d.name == SQLite {
		// one writer; concurrent connections to :memory: would each see an empty database
		db.SetMaxOpenConns(1)
	}
	return OpenDB(name, db, opts...)
}

// OpenDB wraps an existing *sql.DB.
func OpenDB(name string, db *sql.DB, opts ...Option) (*DB, error) {
	d, err := lookupDialect(name)
	if err != nil {
		return nil, err
	}
	s := &DB{db: db, dialect: d, logger: slog.Default(), slow: 200 * time.Millisecond}
	for _, opt := range opts {
		opt(s)
	}
	s.Universities = newRepository(s, universities)
	s.Faculties = newRepository(s, faculties)
	s.Specialties = newRepository(s, specialties)
	s.Students = newRepository(s, students)
	s.Positions = newRepository(s, positions)
	s.Areas = newRepository(s, areas)
	return s, nil
}

// Dialect returns the dialect name.
func (s *DB) Dialect() string { return s.dialect.name }

// Ping checks connectivity.
func (s *DB) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Close closes the underlying pool.
func (s *DB) Close() error { return s.db.Close() }

// Migrate creates the tables when they do not exist yet.
func (s *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema(s.dialect) {
		if _, err := s.exec(ctx, stmt); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}
	return nil
}

func (s *DB) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := s.db.ExecContext(ctx, query, args...)
	s.observe(query, start, err)
	return res, err
}

func (s *DB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, query, args...)
	s.observe(query, start, err)
	return rows, err
}

func (s *DB) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := s.db.QueryRowContext(ctx, query, args...)
	s.observe(query, start, row.Err())
	return row
}

func (s *DB) observe(query string, start time.Time, err error) {
	elapsed := time.Since(start)
	switch {
	case err != nil && err != sql.ErrNoRows:
		s.logger.Error("sql error", "query", query, "duration", elapsed, "error", err)
	case s.slow > 0 && elapsed > s.slow:
		s.logger.Warn("slow query", "query", query, "duration", elapsed, "threshold", s.slow)
	}
}
