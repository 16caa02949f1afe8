package jsonfile

import (
	"context"
	"fmt"
	"slices"

	"github.com/martijn/clientbook/internal/core/domain"
	"github.com/martijn/clientbook/internal/core/repository"
)

type clientRepository struct {
	db *DB
}

func NewClientRepository(db *DB) repository.ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) List(ctx context.Context) ([]*domain.Client, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	clients, err := r.db.load()
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

func (r *clientRepository) FindByID(ctx context.Context, id string) (*domain.Client, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	clients, err := r.db.load()
	if err != nil {
		return nil, fmt.Errorf("failed to find client: %w", err)
	}

	i := indexOf(clients, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	return clients[i], nil
}

func (r *clientRepository) Create(ctx context.Context, client *domain.Client) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	clients, err := r.db.load()
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	if indexOf(clients, client.ID) >= 0 {
		return fmt.Errorf("%w: %s", repository.ErrDuplicateID, client.ID)
	}

	if err := r.db.persist(append(clients, client.Clone())); err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

func (r *clientRepository) Update(ctx context.Context, id string, fn repository.UpdateFunc) (*domain.Client, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	clients, err := r.db.load()
	if err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	i := indexOf(clients, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}

	updated := clients[i].Clone()
	if err := fn(updated); err != nil {
		return nil, err
	}
	// id is immutable whatever the callback did
	updated.ID = clients[i].ID
	clients[i] = updated

	if err := r.db.persist(clients); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return updated.Clone(), nil
}

func (r *clientRepository) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	clients, err := r.db.load()
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	i := indexOf(clients, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}

	if err := r.db.persist(slices.Delete(clients, i, i+1)); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return nil
}

func (r *clientRepository) Close() error {
	return r.db.Close()
}

func indexOf(clients []*domain.Client, id string) int {
	return slices.IndexFunc(clients, func(c *domain.Client) bool { return c.ID == id })
}
