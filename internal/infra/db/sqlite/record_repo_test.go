package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	domain "github.com/bryanwahyu/booklens/internal/domain/books"
)

func openRepo(t *testing.T) *RecordRepository {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "booklens.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRecordRepository(db)
}

func TestSaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)

	created := time.Date(2026, 10, 16, 9, 30, 0, 123456789, time.UTC)
	body := []byte("{\n  \"project_id\": \"abc\",\n  \"title\": \"Ünïcode\"\n}")
	in := &domain.Document{
		ProjectID: "abc",
		Status:    domain.StatusCompleted,
		CreatedAt: created,
		Body:      body,
	}
	if err := repo.Save(ctx, in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.Find(ctx, "abc")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if string(got.Body) != string(body) {
		t.Errorf("Body = %q, want %q", got.Body, body)
	}
	if got.Status != domain.StatusCompleted {
		t.Errorf("Status = %q, want %q", got.Status, domain.StatusCompleted)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}
}

func TestFindMissing(t *testing.T) {
	repo := openRepo(t)
	if _, err := repo.Find(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Find err = %v, want ErrNotFound", err)
	}
}

func TestSaveDuplicateID(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)

	d := &domain.Document{ProjectID: "dup", Status: domain.StatusFailed, Body: []byte("{}")}
	if err := repo.Save(ctx, d); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if err := repo.Save(ctx, d); err == nil {
		t.Error("second Save with same id should fail")
	}
}
