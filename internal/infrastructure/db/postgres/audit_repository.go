package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/99minutos/user-admin/internal/core/domain"
)

// AuditRepository appends audit events to the audit_log table.
type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) InsertAudit(ctx context.Context, event *domain.AuditEvent) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_log (action, user_id, username, actor, at) VALUES ($1, $2, $3, $4, $5)`,
		string(event.Action), event.UserID, event.Username, event.Actor, event.At.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}
