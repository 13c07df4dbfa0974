package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/registrack/backoffice-gateway/internal/database"
	"github.com/registrack/backoffice-gateway/internal/domain"
)

func newTestRepo(t *testing.T) AuditRepository {
	t.Helper()
	db, err := database.OpenDSN(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewAuditRepository(db)
}

func decision(subject, module string, allowed bool, at time.Time) domain.AccessDecision {
	return domain.AccessDecision{
		ID:        uuid.NewString(),
		Subject:   subject,
		RoleName:  "empleado",
		Module:    module,
		Action:    "leer",
		Allowed:   allowed,
		Route:     "/api/v1/records/services",
		RequestID: uuid.NewString(),
		CreatedAt: at,
	}
}

func TestAuditRepositoryCreateBatchAndList(t *testing.T) {
	repo := newTestRepo(t)

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	batch := []domain.AccessDecision{
		decision("user-1", "servicios", true, base),
		decision("user-1", "pagos", false, base.Add(time.Minute)),
		decision("user-2", "servicios", true, base.Add(2*time.Minute)),
	}
	if err := repo.CreateBatch(batch); err != nil {
		t.Fatalf("create batch: %v", err)
	}

	result, err := repo.List(AuditFilter{}, PageRequest{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if result.Total != 3 {
		t.Fatalf("expected 3 decisions, got %d", result.Total)
	}
	if result.Items[0].Subject != "user-2" {
		t.Errorf("expected newest first, got subject %q", result.Items[0].Subject)
	}
}

func TestAuditRepositoryCreateBatchEmpty(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.CreateBatch(nil); err != nil {
		t.Fatalf("empty batch should be a no-op, got %v", err)
	}
}

func TestAuditRepositoryListFilters(t *testing.T) {
	repo := newTestRepo(t)

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	denied := false
	batch := []domain.AccessDecision{
		decision("user-1", "servicios", true, base),
		decision("user-1", "pagos", false, base.Add(time.Minute)),
		decision("user-2", "servicios", true, base.Add(2*time.Minute)),
	}
	if err := repo.CreateBatch(batch); err != nil {
		t.Fatalf("create batch: %v", err)
	}

	bySubject, err := repo.List(AuditFilter{Subject: "user-1"}, PageRequest{})
	if err != nil {
		t.Fatalf("list by subject: %v", err)
	}
	if bySubject.Total != 2 {
		t.Errorf("expected 2 decisions for user-1, got %d", bySubject.Total)
	}

	byModule, err := repo.List(AuditFilter{Module: "servicios"}, PageRequest{})
	if err != nil {
		t.Fatalf("list by module: %v", err)
	}
	if byModule.Total != 2 {
		t.Errorf("expected 2 servicios decisions, got %d", byModule.Total)
	}

	byAllowed, err := repo.List(AuditFilter{Allowed: &denied}, PageRequest{})
	if err != nil {
		t.Fatalf("list by allowed: %v", err)
	}
	if byAllowed.Total != 1 {
		t.Errorf("expected 1 denied decision, got %d", byAllowed.Total)
	}
	if byAllowed.Items[0].Module != "pagos" {
		t.Errorf("expected the pagos denial, got %q", byAllowed.Items[0].Module)
	}
}

func TestAuditRepositoryListPagination(t *testing.T) {
	repo := newTestRepo(t)

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	var batch []domain.AccessDecision
	for i := 0; i < 5; i++ {
		batch = append(batch, decision("user-1", "servicios", true, base.Add(time.Duration(i)*time.Minute)))
	}
	if err := repo.CreateBatch(batch); err != nil {
		t.Fatalf("create batch: %v", err)
	}

	page2, err := repo.List(AuditFilter{}, PageRequest{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(page2.Items) != 2 {
		t.Fatalf("expected 2 items on page 2, got %d", len(page2.Items))
	}
	if page2.TotalPages != 3 {
		t.Errorf("expected 3 total pages, got %d", page2.TotalPages)
	}
}
