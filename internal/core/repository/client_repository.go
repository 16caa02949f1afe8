package repository

import (
	"context"
	"errors"

	"github.com/martijn/clientbook/internal/core/domain"
)

var (
	ErrNotFound    = errors.New("client not found")
	ErrDuplicateID = errors.New("client id already exists")
)

// UpdateFunc mutates a loaded client in place. Returning an error aborts the
// update and nothing is persisted.
type UpdateFunc func(client *domain.Client) error

// ClientRepository is the backing store for client records. Every mutating
// call is a single load-mutate-persist unit; implementations serialize them.
type ClientRepository interface {
	// List returns all clients in insertion order.
	List(ctx context.Context) ([]*domain.Client, error)
	FindByID(ctx context.Context, id string) (*domain.Client, error)
	// Create appends the client. It fails with ErrDuplicateID if the id is taken.
	Create(ctx context.Context, client *domain.Client) error
	Update(ctx context.Context, id string, fn UpdateFunc) (*domain.Client, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
