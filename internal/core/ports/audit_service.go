package ports

import (
	"context"

	"github.com/99minutos/user-admin/internal/core/domain"
)

// AuditRecorder accepts audit events without blocking the caller.
type AuditRecorder interface {
	Record(event domain.AuditEvent)
}

// AuditService persists a single audit event.
type AuditService interface {
	Process(ctx context.Context, event domain.AuditEvent) error
}
