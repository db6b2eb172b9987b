package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gestion-comercial/backoffice/internal/core/domain"
)

// LoginEventRepository implements ports.LoginEventRepository using MongoDB.
type LoginEventRepository struct {
	coll *mongo.Collection
}

func NewLoginEventRepository(db *mongo.Database) *LoginEventRepository {
	return &LoginEventRepository{coll: db.Collection(collectionLoginEvents)}
}

// InsertLoginEvent persists a login attempt to the login_events audit collection.
func (r *LoginEventRepository) InsertLoginEvent(ctx context.Context, event *domain.LoginEvent) error {
	doc := bson.M{
		"login_id":    event.LoginID,
		"origin":      event.Origin,
		"outcome":     string(event.Outcome),
		"occurred_at": event.OccurredAt.UTC(),
	}
	if event.Role != "" {
		doc["role"] = string(event.Role)
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert login event: %w", err)
	}
	return nil
}
