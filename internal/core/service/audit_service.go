package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService that writes to repo.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Process persists a single audit event.
func (s *auditService) Process(ctx context.Context, ev domain.AuditEvent) error {
	if err := s.repo.InsertAudit(ctx, &ev); err != nil {
		return fmt.Errorf("process audit event: %w", err)
	}

	s.log.Info().
		Str("action", string(ev.Action)).
		Int64("user_id", ev.UserID).
		Str("username", ev.Username).
		Str("actor", ev.Actor).
		Msg("audit event stored")

	return nil
}
