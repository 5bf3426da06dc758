package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
)

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	coll *mongo.Collection
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database) ports.AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

// InsertAudit persists an audit event to the audit_log collection.
func (r *AuditRepository) InsertAudit(ctx context.Context, event *domain.AuditEvent) error {
	doc := bson.M{
		"action":       string(event.Action),
		"user_id":      event.UserID,
		"username":     event.Username,
		"actor":        event.Actor,
		"at":           event.At.UTC(),
		"processed_at": time.Now().UTC(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}
