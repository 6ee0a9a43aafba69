package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// SQLite keeps one collection per table in an embedded database. The document is
// stored as JSON in the data column; id and timestamps are mirrored in columns.
// AUTOINCREMENT guarantees ids are never reused.
type SQLite[T Entity] struct {
	db    *sql.DB
	table string
}

func NewSQLite[T Entity](ctx context.Context, db *sql.DB, table string) (*SQLite[T], error) {
	if err := validField(table); err != nil {
		return nil, err
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		data TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT
	)`, table)
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("create table %s: %w", table, err)
	}
	return &SQLite[T]{db: db, table: table}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDoc[T Entity](row rowScanner) (T, error) {
	var (
		zero T
		id   int
		data string
	)
	if err := row.Scan(&id, &data); err != nil {
		return zero, err
	}
	var rec T
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return zero, fmt.Errorf("decode row %d: %w", id, err)
	}
	rec.Record().ID = id
	return rec, nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *SQLite[T]) All(ctx context.Context) ([]T, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, data FROM `+s.table+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs := []T{}
	for rows.Next() {
		rec, err := scanDoc[T](rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (s *SQLite[T]) Get(ctx context.Context, id int) (T, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, data FROM `+s.table+` WHERE id = ?`, id)
	rec, err := scanDoc[T](row)
	return rec, notFound(err)
}

func (s *SQLite[T]) FindBy(ctx context.Context, field string, value any) (T, error) {
	var zero T
	if err := validField(field); err != nil {
		return zero, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, data FROM `+s.table+` WHERE json_extract(data, ?) = ? ORDER BY id LIMIT 1`,
		"$."+field, value)
	rec, err := scanDoc[T](row)
	return rec, notFound(err)
}

func (s *SQLite[T]) Create(ctx context.Context, rec T) (T, error) {
	var zero T
	m := rec.Record()
	m.CreatedAt = Timestamp()
	m.UpdatedAt = m.CreatedAt

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrSave, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO `+s.table+` (data, created_at, updated_at) VALUES ('{}', ?, ?)`,
		m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrSave, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrSave, err)
	}
	m.ID = int(id)

	data, err := json.Marshal(rec)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrSave, err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE `+s.table+` SET data = ? WHERE id = ?`, string(data), id); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrSave, err)
	}
	if err := tx.Commit(); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrSave, err)
	}
	return rec, nil
}

func (s *SQLite[T]) Update(ctx context.Context, id int, patch map[string]any) (T, error) {
	var zero T
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrSave, err)
	}
	defer tx.Rollback()

	cur, err := scanDoc[T](tx.QueryRowContext(ctx, `SELECT id, data FROM `+s.table+` WHERE id = ?`, id))
	if err != nil {
		return zero, notFound(err)
	}
	merged, err := merge(cur, patch, Timestamp())
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrSave, err)
	}
	data, err := json.Marshal(merged)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrSave, err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE `+s.table+` SET data = ?, updated_at = ? WHERE id = ?`,
		string(data), merged.Record().UpdatedAt, id); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrSave, err)
	}
	if err := tx.Commit(); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrSave, err)
	}
	return merged, nil
}

func (s *SQLite[T]) Delete(ctx context.Context, id int) (T, error) {
	var zero T
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrSave, err)
	}
	defer tx.Rollback()

	cur, err := scanDoc[T](tx.QueryRowContext(ctx, `SELECT id, data FROM `+s.table+` WHERE id = ?`, id))
	if err != nil {
		return zero, notFound(err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+s.table+` WHERE id = ?`, id); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrSave, err)
	}
	if err := tx.Commit(); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrSave, err)
	}
	return cur, nil
}
