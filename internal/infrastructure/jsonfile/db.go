package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/martijn/clientbook/internal/core/domain"
)

// DB is a single JSON document holding an array of clients. Nothing is
// cached: every read goes back to the file.
type DB struct {
	path string
	mu   sync.Mutex
}

// New opens the document at path, creating it as an empty array if absent.
func New(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	_, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
			return nil, fmt.Errorf("failed to create database file: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to stat database file: %w", err)
	}

	return &DB{path: path}, nil
}

func (db *DB) Path() string {
	return db.path
}

func (db *DB) Close() error {
	return nil
}

// load reads the whole collection. An empty file reads as no clients.
func (db *DB) load() ([]*domain.Client, error) {
	data, err := os.ReadFile(db.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read database file: %w", err)
	}

	clients := []*domain.Client{}
	if len(bytes.TrimSpace(data)) == 0 {
		return clients, nil
	}
	if err := json.Unmarshal(data, &clients); err != nil {
		return nil, fmt.Errorf("failed to decode database file: %w", err)
	}
	for i, client := range clients {
		if client == nil {
			return nil, fmt.Errorf("failed to decode database file: null client at index %d", i)
		}
		if client.Contacts == nil {
			client.Contacts = []domain.Contact{}
		}
	}
	return clients, nil
}

// persist replaces the whole collection. The document is written to a
// sibling temp file and renamed into place.
func (db *DB) persist(clients []*domain.Client) error {
	if clients == nil {
		clients = []*domain.Client{}
	}
	data, err := json.Marshal(clients)
	if err != nil {
		return fmt.Errorf("failed to encode clients: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(db.path), filepath.Base(db.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write database file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write database file: %w", err)
	}
	if err := os.Rename(tmp.Name(), db.path); err != nil {
		return fmt.Errorf("failed to replace database file: %w", err)
	}
	return nil
}
