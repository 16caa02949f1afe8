package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/martijn/clientbook/internal/core/domain"
	"github.com/martijn/clientbook/internal/core/repository"
	"github.com/martijn/clientbook/internal/core/search"
	"github.com/martijn/clientbook/internal/core/validator"
)

// maxCreateAttempts bounds id regeneration when a fresh id collides.
const maxCreateAttempts = 5

// ListOptions narrows and orders a client listing.
type ListOptions struct {
	Search string
	Order  []search.OrderClause
}

type ClientService struct {
	clientRepo repository.ClientRepository
	now        func() time.Time
	newID      func() string
	logger     *slog.Logger
}

type Option func(*ClientService)

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *ClientService) { s.now = now }
}

// WithIDGenerator replaces the random id source.
func WithIDGenerator(newID func() string) Option {
	return func(s *ClientService) { s.newID = newID }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *ClientService) { s.logger = logger }
}

func NewClientService(clientRepo repository.ClientRepository, opts ...Option) *ClientService {
	s := &ClientService{
		clientRepo: clientRepo,
		now:        time.Now,
		newID:      domain.NewClientID,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListClients returns every client, optionally filtered by a search term and
// ordered by the given clauses.
func (s *ClientService) ListClients(ctx context.Context, opts ListOptions) ([]*domain.Client, error) {
	clients, err := s.clientRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return search.Sort(search.Search(clients, opts.Search), opts.Order), nil
}

// Autocomplete returns name projections of clients whose name fields match.
func (s *ClientService) Autocomplete(ctx context.Context, query string) ([]domain.ClientSummary, error) {
	clients, err := s.clientRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return search.Autocomplete(clients, query), nil
}

// GetClient retrieves a client by ID
func (s *ClientService) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	return s.clientRepo.FindByID(ctx, id)
}

// CreateClient validates raw input and stores it as a new client with a
// fresh id and equal creation and update timestamps.
func (s *ClientService) CreateClient(ctx context.Context, raw map[string]any) (*domain.Client, error) {
	fields, err := validator.Normalize(raw)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, fields)
}

// AddClient stores already typed fields, validating them first.
func (s *ClientService) AddClient(ctx context.Context, fields domain.ClientFields) (*domain.Client, error) {
	if err := validator.Validate(fields); err != nil {
		return nil, err
	}
	return s.create(ctx, fields)
}

func (s *ClientService) create(ctx context.Context, fields domain.ClientFields) (*domain.Client, error) {
	client := domain.NewClient(fields, s.now())

	for attempt := 1; ; attempt++ {
		client.ID = s.newID()
		err := s.clientRepo.Create(ctx, client)
		if err == nil {
			s.logger.Debug("client created", slog.String("id", client.ID))
			return client, nil
		}
		if !errors.Is(err, repository.ErrDuplicateID) || attempt == maxCreateAttempts {
			return nil, fmt.Errorf("failed to create client: %w", err)
		}
		s.logger.Warn("client id collision, retrying", slog.String("id", client.ID), slog.Int("attempt", attempt))
	}
}

// UpdateClient merges raw over the stored client, re-validates the merged
// result and refreshes updatedAt. id and createdAt never change. A failed
// validation leaves the stored record untouched.
func (s *ClientService) UpdateClient(ctx context.Context, id string, raw map[string]any) (*domain.Client, error) {
	return s.clientRepo.Update(ctx, id, func(client *domain.Client) error {
		merged := client.Raw()
		maps.Copy(merged, raw)

		fields, err := validator.Normalize(merged)
		if err != nil {
			return err
		}

		client.ClientFields = fields
		client.Touch(s.now())
		return nil
	})
}

// DeleteClient deletes a client
func (s *ClientService) DeleteClient(ctx context.Context, id string) error {
	if err := s.clientRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Debug("client deleted", slog.String("id", id))
	return nil
}
