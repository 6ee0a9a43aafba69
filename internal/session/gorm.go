package session

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Row is the persisted form of a session.
type Row struct {
	Token     string    `gorm:"primaryKey"`
	UserID    int       `gorm:"not null;index"`
	Email     string    `gorm:"not null"`
	Name      string
	Role      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

func (Row) TableName() string { return "barangay.sessions" }

// GormStore keeps sessions in Postgres so they survive restarts and are shared
// between processes.
type GormStore struct {
	db  *gorm.DB
	ttl time.Duration
}

func NewGormStore(db *gorm.DB, ttl time.Duration) (*GormStore, error) {
	if err := db.AutoMigrate(&Row{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db, ttl: ttl}, nil
}

func (g *GormStore) Set(ctx context.Context, token string, id Identity) error {
	now := time.Now()
	if id.CreatedAt.IsZero() {
		id.CreatedAt = now
	}
	if id.ExpiresAt.IsZero() {
		id.ExpiresAt = now.Add(g.ttl)
	}
	row := Row{
		Token:     token,
		UserID:    id.UserID,
		Email:     id.Email,
		Name:      id.Name,
		Role:      id.Role,
		CreatedAt: id.CreatedAt,
		ExpiresAt: id.ExpiresAt,
	}
	return g.db.WithContext(ctx).Save(&row).Error
}

func (g *GormStore) Get(ctx context.Context, token string) (Identity, error) {
	var row Row
	err := g.db.WithContext(ctx).First(&row, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Identity{}, ErrNotFound
	}
	if err != nil {
		return Identity{}, err
	}
	if !row.ExpiresAt.After(time.Now()) {
		g.db.WithContext(ctx).Delete(&Row{}, "token = ?", token)
		return Identity{}, ErrExpired
	}
	return Identity{
		UserID:    row.UserID,
		Email:     row.Email,
		Name:      row.Name,
		Role:      row.Role,
		CreatedAt: row.CreatedAt,
		ExpiresAt: row.ExpiresAt,
	}, nil
}

func (g *GormStore) Delete(ctx context.Context, token string) error {
	return g.db.WithContext(ctx).Delete(&Row{}, "token = ?", token).Error
}

func (g *GormStore) DeleteUser(ctx context.Context, userID int) error {
	return g.db.WithContext(ctx).Delete(&Row{}, "user_id = ?", userID).Error
}

func (g *GormStore) Expire(ctx context.Context) (int, error) {
	res := g.db.WithContext(ctx).Delete(&Row{}, "expires_at <= ?", time.Now())
	return int(res.RowsAffected), res.Error
}
