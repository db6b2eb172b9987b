package cmd

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/gestion-comercial/backoffice/internal/api/handler"
	"github.com/gestion-comercial/backoffice/internal/core/ports"
	"github.com/gestion-comercial/backoffice/internal/infrastructure/db/bunstore"
	"github.com/gestion-comercial/backoffice/internal/infrastructure/db/mongo"
	"github.com/gestion-comercial/backoffice/internal/pkg/config"
)

// backends is the credential store and audit repository selected by
// STORE_DRIVER.
type backends struct {
	credentials ports.CredentialStore
	events      ports.LoginEventRepository
	ping        handler.Pinger
	close       func(ctx context.Context) error

	sqlDB   *bun.DB
	mongoDB *mongodriver.Database
}

func openBackends(ctx context.Context, cfg *config.Config) (*backends, error) {
	switch cfg.Store.Driver {
	case config.StoreMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		return &backends{
			credentials: mongo.NewCredentialRepository(db),
			events:      mongo.NewLoginEventRepository(db),
			ping:        func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close:       client.Disconnect,
			mongoDB:     db,
		}, nil

	case config.StoreSQL:
		db, err := bunstore.NewDB(ctx, cfg.Store.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		store := bunstore.NewStore(db)
		return &backends{
			credentials: store,
			events:      store,
			ping:        store.Ping,
			close:       func(context.Context) error { return bunstore.Close(db) },
			sqlDB:       db,
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// prepare brings the schema up to date: migrations for SQL, indexes for Mongo.
func (b *backends) prepare(ctx context.Context) error {
	if b.sqlDB != nil {
		return bunstore.Migrate(ctx, b.sqlDB, log)
	}
	return mongo.EnsureIndexes(ctx, b.mongoDB)
}
