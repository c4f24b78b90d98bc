package storage

import (
	"context"
	"errors"
	"testing"

	domain "github.com/bryanwahyu/booklens/internal/domain/books"
)

func TestMemoryStoreCopiesData(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	in := []byte("abc")
	if err := s.Put(ctx, "k", in); err != nil {
		t.Fatal(err)
	}
	in[0] = 'X'

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "abc" {
		t.Errorf("Get = %q, want %q", got, "abc")
	}
	got[1] = 'Y'
	again, _ := s.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored blob mutated through Get result: %q", again)
	}

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get missing err = %v, want ErrNotFound", err)
	}
}

func TestRecordRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	blobs := NewMemory()
	repo := NewRecordRepository(blobs)

	body := []byte("{\n  \"project_id\": \"p1\",\n  \"analysis_date\": \"2026-10-16T10:00:00Z\",\n  \"analysis_status\": \"completed\"\n}")
	if err := repo.Save(ctx, &domain.Document{ProjectID: "p1", Body: body}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	keys := blobs.Keys()
	if len(keys) != 1 || keys[0] != "p1_analysis.json" {
		t.Errorf("keys = %v, want [p1_analysis.json]", keys)
	}

	doc, err := repo.Find(ctx, "p1")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if string(doc.Body) != string(body) {
		t.Errorf("Body changed on round trip:\n%s", doc.Body)
	}
	if doc.Status != domain.StatusCompleted {
		t.Errorf("Status = %q, want %q", doc.Status, domain.StatusCompleted)
	}
	if doc.CreatedAt.Year() != 2026 {
		t.Errorf("CreatedAt = %v, want 2026", doc.CreatedAt)
	}

	if _, err := repo.Find(ctx, "p2"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Find missing err = %v, want ErrNotFound", err)
	}
}
