package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
)

type stubAuditRepo struct {
	insertErr error
	inserted  []*domain.AuditEvent
}

func (r *stubAuditRepo) InsertAudit(_ context.Context, e *domain.AuditEvent) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.inserted = append(r.inserted, e)
	return nil
}

func newAuditSvc(repo *stubAuditRepo) ports.AuditService {
	return NewAuditService(repo, discardLogger)
}

func TestAuditService_Process_Stores(t *testing.T) {
	repo := &stubAuditRepo{}
	svc := newAuditSvc(repo)

	ev := domain.AuditEvent{
		Action:   domain.AuditUserCreated,
		UserID:   3,
		Username: "alice",
		Actor:    "root",
		At:       time.Now().UTC(),
	}
	if err := svc.Process(context.Background(), ev); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("expected 1 stored event, got %d", len(repo.inserted))
	}
	if *repo.inserted[0] != ev {
		t.Errorf("stored event mismatch: %+v", repo.inserted[0])
	}
}

func TestAuditService_Process_RepoError(t *testing.T) {
	repo := &stubAuditRepo{insertErr: errors.New("write conflict")}
	svc := newAuditSvc(repo)

	err := svc.Process(context.Background(), domain.AuditEvent{Action: domain.AuditUserDeleted, UserID: 1})
	if !errors.Is(err, repo.insertErr) {
		t.Fatalf("expected wrapped repo error, got: %v", err)
	}
}
