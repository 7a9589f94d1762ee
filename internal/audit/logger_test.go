package audit

import (
	"context"
	"errors"
	"testing"

	"membership-backoffice/internal/audit/domain"
	"membership-backoffice/internal/audit/repository"
)

func TestLogger_LogEvent_Success(t *testing.T) {
	repo := repository.NewMemoryRepository()
	ipExtractor := func(ctx context.Context) string {
		return "192.168.1.1"
	}
	logger := NewLogger(repo, ipExtractor)
	ctx := context.Background()

	logger.LogEvent(ctx, "user-1", "login_success", "session", "TM20001")

	entries, _ := repo.List(ctx, 10, 0)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.SubjectID != "user-1" {
		t.Errorf("subject_id = %q, want %q", entry.SubjectID, "user-1")
	}
	if entry.Action != "login_success" {
		t.Errorf("action = %q, want %q", entry.Action, "login_success")
	}
	if entry.Resource != "session" {
		t.Errorf("resource = %q, want %q", entry.Resource, "session")
	}
	if entry.IP != "192.168.1.1" {
		t.Errorf("ip = %q, want %q", entry.IP, "192.168.1.1")
	}
	if entry.Metadata != "TM20001" {
		t.Errorf("metadata = %q, want %q", entry.Metadata, "TM20001")
	}
	if entry.ID == "" {
		t.Error("entry ID should be set")
	}
	if entry.CreatedAt.IsZero() {
		t.Error("entry CreatedAt should be set")
	}
}

func TestLogger_LogEvent_NilIPExtractor(t *testing.T) {
	repo := repository.NewMemoryRepository()
	logger := NewLogger(repo, nil)
	ctx := context.Background()

	logger.LogEvent(ctx, "user-1", "logout", "session", "")

	entries, _ := repo.List(ctx, 10, 0)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].IP != "unknown" {
		t.Errorf("ip = %q, want %q", entries[0].IP, "unknown")
	}
}

func TestLogger_LogEvent_EmptySubject(t *testing.T) {
	repo := repository.NewMemoryRepository()
	logger := NewLogger(repo, nil)
	ctx := context.Background()

	logger.LogEvent(ctx, "", "login_failure", "session", "TM99999")

	entries, _ := repo.List(ctx, 10, 0)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].SubjectID != "" {
		t.Errorf("subject_id = %q, want empty", entries[0].SubjectID)
	}
}

type failingAuditRepo struct {
	repository.Repository
}

func (failingAuditRepo) Create(ctx context.Context, a *domain.AuditLog) error {
	return errors.New("database error")
}

func TestLogger_LogEvent_RepositoryError(t *testing.T) {
	logger := NewLogger(failingAuditRepo{}, nil)
	// Should not panic or return error - best-effort logging
	logger.LogEvent(context.Background(), "user-1", "action", "resource", "")
}

func TestLogger_LogEvent_NilRepo(t *testing.T) {
	logger := NewLogger(nil, nil)
	// Should not panic - no-op when repo is nil
	logger.LogEvent(context.Background(), "user-1", "action", "resource", "")
}
