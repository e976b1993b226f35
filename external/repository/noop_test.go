package repository

import (
	"context"
	"strings"
	"testing"

	"github.com/foxseedlab/tokpost/internal/repository"
)

func TestNoopRepository(t *testing.T) {
	repo := NewNoopRepository()
	if repo.Enabled() {
		t.Fatal("expected noop repository to report disabled")
	}
	rec, err := repo.RecordUpload(context.Background(), repository.RecordUploadInput{
		UserID:      "user-1",
		AccountName: "alice",
		Status:      repository.UploadStatusSucceeded,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.AccountName != "alice" || rec.Status != repository.UploadStatusSucceeded {
		t.Fatalf("unexpected record: %+v", rec)
	}
	list, err := repo.ListRecentUploads(context.Background(), "user-1", 5)
	if err != nil || len(list) != 0 {
		t.Fatalf("expected empty history, got %v, %v", list, err)
	}
}

func TestMigrationStatementsCreateUploadRecords(t *testing.T) {
	found := false
	for _, s := range migrationStatements {
		if containsAll(s, "CREATE TABLE IF NOT EXISTS upload_records", "scheduled_at", "status upload_status") {
			found = true
		}
	}
	if !found {
		t.Fatal("expected upload_records table in migration")
	}
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
