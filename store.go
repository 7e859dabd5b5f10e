package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"time-tracker-backend/internal/apperr"
	"time-tracker-backend/internal/category"
	"time-tracker-backend/internal/model"
	"time-tracker-backend/internal/period"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// EntryFilter narrows ListEntries. Nil fields do not filter. Entries come
// back newest first unless OldestFirst is set.
type EntryFilter struct {
	Range       *period.Range
	CategoryID  *int64
	OldestFirst bool
}

// Store is the persistence the HTTP handlers depend on.
type Store interface {
	category.Finder
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, name string) (model.Category, error)
	ListEntries(ctx context.Context, filter EntryFilter) ([]model.TimeEntry, error)
	CreateEntry(ctx context.Context, entry model.NewTimeEntry) (model.TimeEntry, error)
	Ping(ctx context.Context) error
}

type postgresStore struct {
	db *sql.DB
}

func newPostgresStore(db *sql.DB) *postgresStore {
	return &postgresStore{db: db}
}

func (s *postgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *postgresStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]model.Category, 0)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *postgresStore) CategoryByID(ctx context.Context, id int64) (model.Category, bool, error) {
	return s.findCategory(ctx, `SELECT id, name, created_at FROM categories WHERE id = $1`, id)
}

func (s *postgresStore) CategoryByName(ctx context.Context, name string) (model.Category, bool, error) {
	return s.findCategory(ctx, `SELECT id, name, created_at FROM categories WHERE name = $1`, name)
}

func (s *postgresStore) findCategory(ctx context.Context, query string, arg any) (model.Category, bool, error) {
	var c model.Category
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, false, nil
	}
	if err != nil {
		return model.Category{}, false, err
	}
	return c, true, nil
}

func (s *postgresStore) CreateCategory(ctx context.Context, name string) (model.Category, error) {
	var c model.Category
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id, name, created_at`,
		name,
	).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return model.Category{}, apperr.Conflict(fmt.Sprintf("Category %q already exists", name), err)
		}
		return model.Category{}, fmt.Errorf("failed to insert category: %w", err)
	}
	return c, nil
}

// ListEntries returns entries joined with their category name. Range bounds are compared as calendar dates against the DATE column.
func (s *postgresStore) ListEntries(ctx context.Context, filter EntryFilter) ([]model.TimeEntry, error) {
	query := `
		SELECT e.id, e.date, e.category_id, e.duration_hours, e.note, e.created_at, c.name
		FROM time_entries e
		JOIN categories c ON c.id = e.category_id`

	var (
		conds []string
		args  []any
	)
	if filter.Range != nil {
		args = append(args, period.FormatDate(filter.Range.Start), period.FormatDate(filter.Range.End))
		conds = append(conds, fmt.Sprintf("e.date >= $%d::date AND e.date < $%d::date", len(args)-1, len(args)))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		conds = append(conds, fmt.Sprintf("e.category_id = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += "\n\t\tWHERE " + strings.Join(conds, " AND ")
	}
	if filter.OldestFirst {
		query += "\n\t\tORDER BY e.created_at ASC, e.id ASC"
	} else {
		query += "\n\t\tORDER BY e.created_at DESC, e.id DESC"
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query time entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.TimeEntry, 0)
	for rows.Next() {
		var e model.TimeEntry
		if err := rows.Scan(&e.ID, &e.Date, &e.CategoryID, &e.DurationHours, &e.Note, &e.CreatedAt, &e.CategoryName); err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		e.Date = e.Date.UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *postgresStore) CreateEntry(ctx context.Context, in model.NewTimeEntry) (model.TimeEntry, error) {
	var e model.TimeEntry
	err := s.db.QueryRowContext(ctx, `
		WITH inserted AS (
			INSERT INTO time_entries (date, category_id, duration_hours, note)
			VALUES ($1::date, $2, $3, $4)
			RETURNING id, date, category_id, duration_hours, note, created_at
		)
		SELECT i.id, i.date, i.category_id, i.duration_hours, i.note, i.created_at, c.name
		FROM inserted i
		JOIN categories c ON c.id = i.category_id`,
		period.FormatDate(in.Date), in.CategoryID, in.DurationHours, in.Note,
	).Scan(&e.ID, &e.Date, &e.CategoryID, &e.DurationHours, &e.Note, &e.CreatedAt, &e.CategoryName)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return model.TimeEntry{}, apperr.CategoryNotFound(in.CategoryID)
		}
		return model.TimeEntry{}, fmt.Errorf("failed to insert time entry: %w", err)
	}
	e.Date = e.Date.UTC()
	return e, nil
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
