package activity

import (
	"context"

	"github.com/EmpoweredVote/barangay-admin/internal/session"
	"github.com/EmpoweredVote/barangay-admin/internal/store"
	"github.com/rs/zerolog/log"
)

// Recorder appends to the activity feed. The append is a separate write from
// the change it describes; a failure is logged and never reaches the caller.
type Recorder struct {
	store store.Store[*Activity]
}

func NewRecorder(s store.Store[*Activity]) *Recorder {
	return &Recorder{store: s}
}

func (r *Recorder) Record(ctx context.Context, by session.Identity, a Activity) {
	if by.UserID != 0 {
		a.UserID = by.UserID
		a.UserName = by.Name
	}
	if _, err := r.store.Create(ctx, &a); err != nil {
		log.Warn().Err(err).
			Str("type", a.Type).
			Str("action", a.Action).
			Msg("recording activity failed")
	}
}

// Create stores a caller-supplied entry and returns it.
func (r *Recorder) Create(ctx context.Context, by session.Identity, a Activity) (*Activity, error) {
	a.UserID = by.UserID
	a.UserName = by.Name
	return r.store.Create(ctx, &a)
}

// Recent returns up to limit entries, newest first, optionally of one type.
func (r *Recorder) Recent(ctx context.Context, typ string, limit int) ([]*Activity, error) {
	all, err := r.store.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Activity, 0, limit)
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		if typ != "" && all[i].Type != typ {
			continue
		}
		out = append(out, all[i])
	}
	return out, nil
}
