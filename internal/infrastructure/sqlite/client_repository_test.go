package sqlite

import (
	"testing"

	"github.com/martijn/clientbook/internal/core/repository"
	"github.com/martijn/clientbook/internal/core/repository/repotest"
)

func TestClientRepository(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repository.ClientRepository {
		t.Helper()

		// Use in-memory SQLite database
		db, err := New(":memory:")
		if err != nil {
			t.Fatalf("failed to create test database: %v", err)
		}
		t.Cleanup(func() { db.Close() })
		return NewClientRepository(db)
	})
}
