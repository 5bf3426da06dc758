package main

import (
	"context"
	"fmt"

	"github.com/99minutos/user-admin/internal/core/ports"
	"github.com/99minutos/user-admin/internal/infrastructure/config"
	"github.com/99minutos/user-admin/internal/infrastructure/db/mongo"
	"github.com/99minutos/user-admin/internal/infrastructure/db/postgres"
	"github.com/99minutos/user-admin/internal/infrastructure/db/sqlite"
	"github.com/99minutos/user-admin/internal/infrastructure/http/handlers"
)

// store bundles the repositories of the configured storage engine.
type store struct {
	users ports.UserRepository
	roles ports.RoleRepository
	audit ports.AuditRepository
	ping  handlers.Pinger
	close func()
}

func openStore(ctx context.Context, cfg config.StoreConfig) (*store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &store{
			users: postgres.NewUserRepository(pool),
			roles: postgres.NewRoleRepository(pool),
			audit: postgres.NewAuditRepository(pool),
			ping:  pool,
			close: pool.Close,
		}, nil

	case config.DriverMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &store{
			users: mongo.NewUserRepository(db),
			roles: mongo.NewRoleRepository(db),
			audit: mongo.NewAuditRepository(db),
			ping:  mongo.Pinger{Client: client},
			close: func() { _ = client.Disconnect(context.Background()) },
		}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &store{
			users: sqlite.NewUserRepository(db),
			roles: sqlite.NewRoleRepository(db),
			audit: sqlite.NewAuditRepository(db),
			ping:  db,
			close: func() { _ = db.Close() },
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
