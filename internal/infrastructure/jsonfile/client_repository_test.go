package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/martijn/clientbook/internal/core/domain"
	"github.com/martijn/clientbook/internal/core/repository"
	"github.com/martijn/clientbook/internal/core/repository/repotest"
)

func newTestRepo(t *testing.T) (repository.ClientRepository, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "db.json")
	db, err := New(path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	return NewClientRepository(db), path
}

func TestClientRepository(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repository.ClientRepository {
		repo, _ := newTestRepo(t)
		return repo
	})
}

func TestNewCreatesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "db.json")
	if _, err := New(path); err != nil {
		t.Fatalf("New: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("expected [], got %s", data)
	}
}

func TestNewKeepsExistingDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	doc := `[{"id":"1","name":"Ann","surname":"Lee","lastName":"","contacts":[],"createdAt":"2025-11-01T10:00:00.000Z","updatedAt":"2025-11-01T10:00:00.000Z"}]`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("failed to seed file: %v", err)
	}

	db, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	clients, err := NewClientRepository(db).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(clients) != 1 || clients[0].Name != "Ann" {
		t.Errorf("unexpected clients: %+v", clients)
	}
}

func TestEmptyFileReadsAsEmptyCollection(t *testing.T) {
	repo, path := newTestRepo(t)
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("failed to truncate file: %v", err)
	}

	clients, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(clients) != 0 {
		t.Errorf("expected no clients, got %d", len(clients))
	}
}

func TestCorruptDocumentFails(t *testing.T) {
	repo, path := newTestRepo(t)
	if err := os.WriteFile(path, []byte(`{"not":"an array"}`), 0o644); err != nil {
		t.Fatalf("failed to corrupt file: %v", err)
	}

	if _, err := repo.List(context.Background()); err == nil {
		t.Fatal("expected error for non-array document")
	}
}

func TestMutationsRewriteWholeDocument(t *testing.T) {
	repo, path := newTestRepo(t)
	ctx := context.Background()

	client := domain.NewClient(domain.ClientFields{Name: "Ann", Surname: "Lee"}, time.Now())
	if err := repo.Create(ctx, client); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Delete(ctx, client.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("expected [] after deleting the only client, got %s", data)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected no leftover temp files, got %d entries", len(entries))
	}
}
