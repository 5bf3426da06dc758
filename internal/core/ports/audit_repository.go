package ports

import (
	"context"

	"github.com/99minutos/user-admin/internal/core/domain"
)

// AuditRepository appends audit events to the store's audit_log.
type AuditRepository interface {
	InsertAudit(ctx context.Context, event *domain.AuditEvent) error
}
