package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/martijn/clientbook/internal/core/domain"
	"github.com/martijn/clientbook/internal/core/repository"
)

const clientColumns = `id, name, surname, last_name, contacts, created_at, updated_at`

type clientRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Surname   string `db:"surname"`
	LastName  string `db:"last_name"`
	Contacts  string `db:"contacts"` // JSON array
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

func (row *clientRow) toDomain() (*domain.Client, error) {
	client := &domain.Client{
		ID: row.ID,
		ClientFields: domain.ClientFields{
			Name:     row.Name,
			Surname:  row.Surname,
			LastName: row.LastName,
			Contacts: []domain.Contact{},
		},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if err := json.Unmarshal([]byte(row.Contacts), &client.Contacts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contacts: %w", err)
	}
	if client.Contacts == nil {
		client.Contacts = []domain.Contact{}
	}
	return client, nil
}

func marshalContacts(contacts []domain.Contact) (string, error) {
	if contacts == nil {
		contacts = []domain.Contact{}
	}
	data, err := json.Marshal(contacts)
	if err != nil {
		return "", fmt.Errorf("failed to marshal contacts: %w", err)
	}
	return string(data), nil
}

type clientRepository struct {
	db *DB
}

func NewClientRepository(db *DB) repository.ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) List(ctx context.Context) ([]*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM client ORDER BY seq`

	var rows []clientRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	clients := make([]*domain.Client, 0, len(rows))
	for i := range rows {
		client, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, nil
}

func (r *clientRepository) FindByID(ctx context.Context, id string) (*domain.Client, error) {
	return findByID(ctx, r.db, id)
}

func findByID(ctx context.Context, q sqlx.QueryerContext, id string) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM client WHERE id = ?`

	var row clientRow
	err := sqlx.GetContext(ctx, q, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find client: %w", err)
	}
	return row.toDomain()
}

func (r *clientRepository) Create(ctx context.Context, client *domain.Client) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	contactsJSON, err := marshalContacts(client.Contacts)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM client WHERE id = ?)`, client.ID); err != nil {
		return fmt.Errorf("failed to check client id: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: %s", repository.ErrDuplicateID, client.ID)
	}

	query := `
		INSERT INTO client (id, name, surname, last_name, contacts, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		client.ID,
		client.Name,
		client.Surname,
		client.LastName,
		contactsJSON,
		client.CreatedAt,
		client.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit client: %w", err)
	}
	return nil
}

func (r *clientRepository) Update(ctx context.Context, id string, fn repository.UpdateFunc) (*domain.Client, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	client, err := findByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := fn(client); err != nil {
		return nil, err
	}
	client.ID = id

	contactsJSON, err := marshalContacts(client.Contacts)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE client
		SET name = ?, surname = ?, last_name = ?, contacts = ?, updated_at = ?
		WHERE id = ?
	`
	_, err = tx.ExecContext(ctx, query,
		client.Name,
		client.Surname,
		client.LastName,
		contactsJSON,
		client.UpdatedAt,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit client: %w", err)
	}
	return client, nil
}

func (r *clientRepository) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	result, err := r.db.ExecContext(ctx, `DELETE FROM client WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}

	return nil
}

func (r *clientRepository) Close() error {
	return r.db.Close()
}
