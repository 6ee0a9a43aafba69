package server

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/EmpoweredVote/barangay-admin/internal/activity"
	"github.com/EmpoweredVote/barangay-admin/internal/config"
	"github.com/EmpoweredVote/barangay-admin/internal/db"
	"github.com/EmpoweredVote/barangay-admin/internal/requests"
	"github.com/EmpoweredVote/barangay-admin/internal/residents"
	"github.com/EmpoweredVote/barangay-admin/internal/session"
	"github.com/EmpoweredVote/barangay-admin/internal/store"
	"github.com/EmpoweredVote/barangay-admin/internal/users"
	"gorm.io/gorm"
)

// Schema holds the Postgres tables.
const Schema = "barangay"

// Collection names, used as JSON file names and table names.
const (
	UsersCollection      = "users"
	ResidentsCollection  = "residents"
	RequestsCollection   = "requests"
	ActivitiesCollection = "activities"
)

var Collections = []string{UsersCollection, ResidentsCollection, RequestsCollection, ActivitiesCollection}

// Stores is one Record Store per entity plus the session store, all on the
// configured backend.
type Stores struct {
	Users      store.Store[*users.User]
	Residents  store.Store[*residents.Resident]
	Requests   store.Store[*requests.Request]
	Activities store.Store[*activity.Activity]
	Sessions   session.Store

	closers []func() error
}

// OpenStores builds the stores for cfg.StorageDriver. Sessions live in memory
// except on Postgres, where they get their own table.
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.StorageDriver {
	case config.DriverJSON, "":
		return openJSON(cfg)
	case config.DriverSQLite:
		return openSQLite(ctx, cfg)
	case config.DriverPostgres:
		return openPostgres(cfg)
	}
	return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
}

func (s *Stores) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func openJSON(cfg *config.Config) (*Stores, error) {
	st := &Stores{Sessions: session.NewMemoryStore(cfg.SessionTTL)}
	var err error
	if st.Users, err = store.NewJSONFile[*users.User](cfg.DataDir, UsersCollection); err != nil {
		return nil, err
	}
	if st.Residents, err = store.NewJSONFile[*residents.Resident](cfg.DataDir, ResidentsCollection); err != nil {
		return nil, err
	}
	if st.Requests, err = store.NewJSONFile[*requests.Request](cfg.DataDir, RequestsCollection); err != nil {
		return nil, err
	}
	if st.Activities, err = store.NewJSONFile[*activity.Activity](cfg.DataDir, ActivitiesCollection); err != nil {
		return nil, err
	}
	return st, nil
}

func openSQLite(ctx context.Context, cfg *config.Config) (*Stores, error) {
	sqlDB, err := db.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	st := &Stores{
		Sessions: session.NewMemoryStore(cfg.SessionTTL),
		closers:  []func() error{sqlDB.Close},
	}
	if err := st.sqlite(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return st, nil
}

func (st *Stores) sqlite(ctx context.Context, sqlDB *sql.DB) error {
	var err error
	if st.Users, err = store.NewSQLite[*users.User](ctx, sqlDB, UsersCollection); err != nil {
		return err
	}
	if st.Residents, err = store.NewSQLite[*residents.Resident](ctx, sqlDB, ResidentsCollection); err != nil {
		return err
	}
	if st.Requests, err = store.NewSQLite[*requests.Request](ctx, sqlDB, RequestsCollection); err != nil {
		return err
	}
	st.Activities, err = store.NewSQLite[*activity.Activity](ctx, sqlDB, ActivitiesCollection)
	return err
}

func openPostgres(cfg *config.Config) (*Stores, error) {
	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(gdb, Schema); err != nil {
		return nil, fmt.Errorf("failed to ensure schema %s: %w", Schema, err)
	}

	st := &Stores{}
	if sqlDB, err := gdb.DB(); err == nil {
		st.closers = append(st.closers, sqlDB.Close)
	}
	if err := st.gorm(gdb); err != nil {
		st.Close()
		return nil, err
	}
	if st.Sessions, err = session.NewGormStore(gdb, cfg.SessionTTL); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func (st *Stores) gorm(gdb *gorm.DB) error {
	table := func(name string) string { return Schema + "." + name }
	var err error
	if st.Users, err = store.NewGorm[*users.User](gdb, table(UsersCollection)); err != nil {
		return err
	}
	if st.Residents, err = store.NewGorm[*residents.Resident](gdb, table(ResidentsCollection)); err != nil {
		return err
	}
	if st.Requests, err = store.NewGorm[*requests.Request](gdb, table(RequestsCollection)); err != nil {
		return err
	}
	st.Activities, err = store.NewGorm[*activity.Activity](gdb, table(ActivitiesCollection))
	return err
}
