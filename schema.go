package main

import (
	"context"
	"database/sql"
	"fmt"
)

const seedSQL = `
	INSERT INTO categories (name) VALUES
		('Coding'),
		('Learning'),
		('Game Dev'),
		('Building'),
		('Job Apps')
	ON CONFLICT (name) DO NOTHING;
`

// seedDefaultCategories inserts the starter categories, leaving existing rows
// untouched.
func seedDefaultCategories(ctx context.Context, db *sql.DB) (int64, error) {
	result, err := db.ExecContext(ctx, seedSQL)
	if err != nil {
		return 0, fmt.Errorf("failed to seed categories: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}

// Seed a week of demo entries for presentations, spread from Monday of the
// current week up to today. Idempotent: only runs if there are zero entries.
func seedDemoData(ctx context.Context, db *sql.DB) error {
	var cnt int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM time_entries`).Scan(&cnt); err != nil {
		return fmt.Errorf("checking time entries count: %w", err)
	}
	if cnt > 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Categories assumed to exist from seedDefaultCategories.
	// LEAST keeps every date inside the current week and not after today.
	const demoEntries = `
	WITH week AS (
		SELECT (CURRENT_DATE - ((EXTRACT(ISODOW FROM CURRENT_DATE)::int) - 1))::date AS monday
	)
	INSERT INTO time_entries (date, category_id, duration_hours, note)
	SELECT LEAST(week.monday + d.offset_days, CURRENT_DATE), c.id, d.hours, d.note
	FROM week, (VALUES
		(0, 'Coding', 2.5, 'Refactored the API handlers'),
		(0, 'Learning', 1.0, 'Read about Postgres indexes'),
		(1, 'Game Dev', 1.75, 'Prototype jump physics'),
		(1, 'Job Apps', 0.75, 'Sent two applications'),
		(2, 'Building', 3.0, 'Assembled the workbench'),
		(3, 'Coding', 1.5, 'Wrote integration tests'),
		(4, 'Learning', 2.0, 'Finished concurrency chapter'),
		(5, 'Game Dev', 0.5, 'Sketched level layout')
	) AS d(offset_days, category, hours, note)
	JOIN categories c ON c.name = d.category
	`
	if _, err := tx.ExecContext(ctx, demoEntries); err != nil {
		return fmt.Errorf("seeding demo entries: %w", err)
	}

	return tx.Commit()
}
