package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// document is the row shape shared by every Postgres collection table.
type document struct {
	ID      int    `gorm:"primaryKey;autoIncrement"`
	Data    string `gorm:"type:jsonb;not null"`
	Created string `gorm:"column:created_at;type:text;not null"`
	Updated string `gorm:"column:updated_at;type:text"`
}

// Gorm keeps one collection per Postgres table (schema-qualified, e.g.
// "barangay.users") with the record as a jsonb document.
type Gorm[T Entity] struct {
	db    *gorm.DB
	table string
}

func NewGorm[T Entity](db *gorm.DB, table string) (*Gorm[T], error) {
	if err := db.Table(table).AutoMigrate(&document{}); err != nil {
		return nil, fmt.Errorf("migrate %s: %w", table, err)
	}
	return &Gorm[T]{db: db, table: table}, nil
}

func (s *Gorm[T]) q(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(ctx).Table(s.table)
}

func decodeDoc[T Entity](d document) (T, error) {
	var rec T
	if err := json.Unmarshal([]byte(d.Data), &rec); err != nil {
		var zero T
		return zero, fmt.Errorf("decode row %d: %w", d.ID, err)
	}
	rec.Record().ID = d.ID
	return rec, nil
}

func gormNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Gorm[T]) All(ctx context.Context) ([]T, error) {
	var docs []document
	if err := s.q(ctx, s.db).Order("id").Find(&docs).Error; err != nil {
		return nil, err
	}
	recs := make([]T, 0, len(docs))
	for _, d := range docs {
		rec, err := decodeDoc[T](d)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (s *Gorm[T]) Get(ctx context.Context, id int) (T, error) {
	var (
		zero T
		d    document
	)
	if err := s.q(ctx, s.db).First(&d, "id = ?", id).Error; err != nil {
		return zero, gormNotFound(err)
	}
	return decodeDoc[T](d)
}

func (s *Gorm[T]) FindBy(ctx context.Context, field string, value any) (T, error) {
	var (
		zero T
		d    document
	)
	if err := validField(field); err != nil {
		return zero, err
	}
	err := s.q(ctx, s.db).
		Where("data->>? = ?", field, fmt.Sprint(value)).
		Order("id").
		First(&d).Error
	if err != nil {
		return zero, gormNotFound(err)
	}
	return decodeDoc[T](d)
}

func (s *Gorm[T]) Create(ctx context.Context, rec T) (T, error) {
	var zero T
	m := rec.Record()
	m.CreatedAt = Timestamp()
	m.UpdatedAt = m.CreatedAt

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d := document{Data: "{}", Created: m.CreatedAt, Updated: m.UpdatedAt}
		if err := tx.Table(s.table).Create(&d).Error; err != nil {
			return err
		}
		m.ID = d.ID
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return tx.Table(s.table).Where("id = ?", d.ID).Update("data", string(data)).Error
	})
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrSave, err)
	}
	return rec, nil
}

func (s *Gorm[T]) Update(ctx context.Context, id int, patch map[string]any) (T, error) {
	var merged T
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var d document
		if err := tx.Table(s.table).First(&d, "id = ?", id).Error; err != nil {
			return gormNotFound(err)
		}
		cur, err := decodeDoc[T](d)
		if err != nil {
			return err
		}
		merged, err = merge(cur, patch, Timestamp())
		if err != nil {
			return err
		}
		data, err := json.Marshal(merged)
		if err != nil {
			return err
		}
		return tx.Table(s.table).Where("id = ?", id).Updates(map[string]any{
			"data":       string(data),
			"updated_at": merged.Record().UpdatedAt,
		}).Error
	})
	if err != nil {
		var zero T
		if errors.Is(err, ErrNotFound) {
			return zero, ErrNotFound
		}
		return zero, fmt.Errorf("%w: %v", ErrSave, err)
	}
	return merged, nil
}

func (s *Gorm[T]) Delete(ctx context.Context, id int) (T, error) {
	var deleted T
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var d document
		if err := tx.Table(s.table).First(&d, "id = ?", id).Error; err != nil {
			return gormNotFound(err)
		}
		rec, err := decodeDoc[T](d)
		if err != nil {
			return err
		}
		deleted = rec
		return tx.Table(s.table).Delete(&document{}, "id = ?", id).Error
	})
	if err != nil {
		var zero T
		if errors.Is(err, ErrNotFound) {
			return zero, ErrNotFound
		}
		return zero, fmt.Errorf("%w: %v", ErrSave, err)
	}
	return deleted, nil
}
