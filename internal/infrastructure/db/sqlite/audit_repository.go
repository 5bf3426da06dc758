package sqlite

import (
	"context"
	"fmt"

	"github.com/99minutos/user-admin/internal/core/domain"
)

// AuditRepository appends audit events to the audit_log table.
type AuditRepository struct {
	*DB
}

func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{DB: db}
}

func (r *AuditRepository) InsertAudit(ctx context.Context, event *domain.AuditEvent) error {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO audit_log (action, user_id, username, actor, at) VALUES (?, ?, ?, ?, ?)",
		string(event.Action), event.UserID, event.Username, event.Actor, toUnix(event.At),
	)
	if err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}
