// Package repotest holds behaviour tests shared by every ClientRepository
// backend.
package repotest

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/martijn/clientbook/internal/core/domain"
	"github.com/martijn/clientbook/internal/core/repository"
)

// Factory returns an empty repository. Cleanup is the factory's job.
type Factory func(t *testing.T) repository.ClientRepository

var baseTime = time.Date(2025, 11, 1, 10, 0, 0, 0, time.UTC)

func newClient(name, surname string, contacts ...domain.Contact) *domain.Client {
	if contacts == nil {
		contacts = []domain.Contact{}
	}
	return domain.NewClient(domain.ClientFields{
		Name:     name,
		Surname:  surname,
		Contacts: contacts,
	}, baseTime)
}

func ids(clients []*domain.Client) []string {
	out := make([]string, len(clients))
	for i, c := range clients {
		out[i] = c.ID
	}
	return out
}

// Run exercises the ClientRepository contract against a backend.
func Run(t *testing.T, factory Factory) {
	t.Run("empty store lists nothing", func(t *testing.T) {
		repo := factory(t)

		clients, err := repo.List(context.Background())
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if clients == nil || len(clients) != 0 {
			t.Errorf("expected empty non-nil list, got %v", clients)
		}
	})

	t.Run("create then find round-trips", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		client := newClient("Ann", "Lee", domain.Contact{Type: domain.ContactTypeEmail, Value: "ann@example.com"})
		client.LastName = "Marie"
		if err := repo.Create(ctx, client); err != nil {
			t.Fatalf("Create: %v", err)
		}

		found, err := repo.FindByID(ctx, client.ID)
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		if !reflect.DeepEqual(found, client) {
			t.Errorf("expected %+v, got %+v", client, found)
		}
	})

	t.Run("list keeps insertion order", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		var expected []string
		for _, name := range []string{"Zed", "Ann", "Mia"} {
			c := newClient(name, "Lee")
			if err := repo.Create(ctx, c); err != nil {
				t.Fatalf("Create: %v", err)
			}
			expected = append(expected, c.ID)
		}

		clients, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if !reflect.DeepEqual(ids(clients), expected) {
			t.Errorf("expected %v, got %v", expected, ids(clients))
		}
	})

	t.Run("duplicate id is rejected", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		client := newClient("Ann", "Lee")
		if err := repo.Create(ctx, client); err != nil {
			t.Fatalf("Create: %v", err)
		}
		dup := newClient("Bob", "Ray")
		dup.ID = client.ID
		if err := repo.Create(ctx, dup); !errors.Is(err, repository.ErrDuplicateID) {
			t.Fatalf("expected ErrDuplicateID, got %v", err)
		}

		clients, _ := repo.List(ctx)
		if len(clients) != 1 {
			t.Errorf("expected 1 client, got %d", len(clients))
		}
	})

	t.Run("find missing returns not found", func(t *testing.T) {
		repo := factory(t)

		_, err := repo.FindByID(context.Background(), "missing")
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("update persists callback changes", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		client := newClient("Ann", "Lee")
		if err := repo.Create(ctx, client); err != nil {
			t.Fatalf("Create: %v", err)
		}

		later := domain.FormatTimestamp(baseTime.Add(time.Hour))
		updated, err := repo.Update(ctx, client.ID, func(c *domain.Client) error {
			c.LastName = "X"
			c.Contacts = []domain.Contact{{Type: domain.ContactTypeVk, Value: "ann"}}
			c.UpdatedAt = later
			c.ID = "tampered"
			return nil
		})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if updated.ID != client.ID || updated.LastName != "X" || updated.UpdatedAt != later {
			t.Errorf("unexpected update result: %+v", updated)
		}

		found, err := repo.FindByID(ctx, client.ID)
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		if !reflect.DeepEqual(found, updated) {
			t.Errorf("expected stored %+v, got %+v", updated, found)
		}
	})

	t.Run("failing callback leaves record unchanged", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		client := newClient("Ann", "Lee")
		if err := repo.Create(ctx, client); err != nil {
			t.Fatalf("Create: %v", err)
		}

		boom := errors.New("boom")
		_, err := repo.Update(ctx, client.ID, func(c *domain.Client) error {
			c.Name = "Changed"
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected callback error, got %v", err)
		}

		found, _ := repo.FindByID(ctx, client.ID)
		if found.Name != "Ann" {
			t.Errorf("expected name unchanged, got %q", found.Name)
		}
	})

	t.Run("update missing returns not found", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		called := false
		_, err := repo.Update(ctx, "missing", func(*domain.Client) error {
			called = true
			return nil
		})
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if called {
			t.Error("callback must not run for a missing client")
		}
	})

	t.Run("delete removes the record", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		keep := newClient("Ann", "Lee")
		drop := newClient("Bob", "Ray")
		for _, c := range []*domain.Client{keep, drop} {
			if err := repo.Create(ctx, c); err != nil {
				t.Fatalf("Create: %v", err)
			}
		}

		if err := repo.Delete(ctx, drop.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := repo.FindByID(ctx, drop.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		if err := repo.Delete(ctx, drop.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}

		clients, _ := repo.List(ctx)
		if !reflect.DeepEqual(ids(clients), []string{keep.ID}) {
			t.Errorf("expected only %s left, got %v", keep.ID, ids(clients))
		}
	})

	t.Run("concurrent updates are serialized", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		client := newClient("Ann", "Lee")
		if err := repo.Create(ctx, client); err != nil {
			t.Fatalf("Create: %v", err)
		}

		const workers = 20
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := repo.Update(ctx, client.ID, func(c *domain.Client) error {
					c.Contacts = append(c.Contacts, domain.Contact{Type: domain.ContactTypeAdditional, Value: fmt.Sprint(i)})
					return nil
				})
				if err != nil {
					t.Errorf("Update: %v", err)
				}
			}(i)
		}
		wg.Wait()

		found, err := repo.FindByID(ctx, client.ID)
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		if len(found.Contacts) != workers {
			t.Errorf("expected %d contacts, got %d", workers, len(found.Contacts))
		}
	})
}
