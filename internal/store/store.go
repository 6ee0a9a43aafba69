// Package store persists entity collections keyed by auto-incrementing integer ids.
//
// Every backend honours the same contract: ids are assigned by the store, start at 1
// and are never handed out twice, createdAt is stamped once, updatedAt on every write,
// and an update only touches the fields present in the patch.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrSave     = errors.New("failed to save")
)

// TimeLayout is the timestamp format written to createdAt/updatedAt.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

var now = time.Now

// Timestamp returns the current time in TimeLayout, always UTC.
func Timestamp() string {
	return now().UTC().Format(TimeLayout)
}

// Meta carries the fields owned by the store. Entities embed it.
type Meta struct {
	ID        int    `json:"id"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Record gives the store access to the embedded metadata.
func (m *Meta) Record() *Meta { return m }

// Entity is satisfied by a pointer to any struct embedding Meta.
type Entity interface {
	Record() *Meta
}

type Reader[T Entity] interface {
	All(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int) (T, error)
	FindBy(ctx context.Context, field string, value any) (T, error)
}

type Store[T Entity] interface {
	Reader[T]
	Create(ctx context.Context, rec T) (T, error)
	Update(ctx context.Context, id int, patch map[string]any) (T, error)
	Delete(ctx context.Context, id int) (T, error)
}
