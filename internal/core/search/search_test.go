package search

import (
	"reflect"
	"testing"

	"github.com/martijn/clientbook/internal/core/domain"
)

func fixture() []*domain.Client {
	return []*domain.Client{
		{
			ID: "c1",
			ClientFields: domain.ClientFields{
				Name: "Ann", Surname: "Lee", LastName: "Marie",
				Contacts: []domain.Contact{{Type: domain.ContactTypeEmail, Value: "ann@example.com"}},
			},
			CreatedAt: "2025-11-01T10:00:00.000Z",
			UpdatedAt: "2025-11-03T10:00:00.000Z",
		},
		{
			ID: "c2",
			ClientFields: domain.ClientFields{
				Name: "Boris", Surname: "Ivanov",
				Contacts: []domain.Contact{{Type: domain.ContactTypeTelephone, Value: "+7 999 123"}},
			},
			CreatedAt: "2025-11-02T10:00:00.000Z",
			UpdatedAt: "2025-11-02T10:00:00.000Z",
		},
		{
			ID: "c3",
			ClientFields: domain.ClientFields{
				Name: "Clara", Surname: "Annenkova", LastName: "Petrovna",
				Contacts: []domain.Contact{},
			},
			CreatedAt: "2025-10-30T10:00:00.000Z",
			UpdatedAt: "2025-11-05T10:00:00.000Z",
		},
	}
}

func ids(clients []*domain.Client) []string {
	out := make([]string, len(clients))
	for i, c := range clients {
		out[i] = c.ID
	}
	return out
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name     string
		term     string
		expected []string
	}{
		{"empty term returns everything in order", "", []string{"c1", "c2", "c3"}},
		{"blank term returns everything", "   ", []string{"c1", "c2", "c3"}},
		{"case-insensitive name match keeps order", "ANN", []string{"c1", "c3"}},
		{"matches lastName", "petrov", []string{"c3"}},
		{"matches contact value", "999", []string{"c2"}},
		{"term is trimmed", "  example.com ", []string{"c1"}},
		{"contact type is not searched", "telephone", []string{}},
		{"no match returns empty", "zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Search(fixture(), tt.term)
			if got == nil {
				t.Fatal("expected non-nil slice")
			}
			if !reflect.DeepEqual(ids(got), tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, ids(got))
			}
		})
	}
}

func TestSearchDoesNotMutateInput(t *testing.T) {
	clients := fixture()
	before := ids(clients)

	_ = Search(clients, "ann")
	_ = Sort(clients, []OrderClause{{Field: "surname", Direction: OrderDesc}})

	if !reflect.DeepEqual(ids(clients), before) {
		t.Errorf("input reordered: %v", ids(clients))
	}
}

func TestAutocomplete(t *testing.T) {
	tests := []struct {
		name     string
		term     string
		expected []domain.ClientSummary
	}{
		{
			name: "matches name fields and projects",
			term: "ann",
			expected: []domain.ClientSummary{
				{ID: "c1", Name: "Ann", Surname: "Lee", LastName: "Marie"},
				{ID: "c3", Name: "Clara", Surname: "Annenkova", LastName: "Petrovna"},
			},
		},
		{
			name:     "contacts are excluded",
			term:     "example.com",
			expected: []domain.ClientSummary{},
		},
		{
			name: "empty term returns all summaries",
			term: "",
			expected: []domain.ClientSummary{
				{ID: "c1", Name: "Ann", Surname: "Lee", LastName: "Marie"},
				{ID: "c2", Name: "Boris", Surname: "Ivanov"},
				{ID: "c3", Name: "Clara", Surname: "Annenkova", LastName: "Petrovna"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Autocomplete(fixture(), tt.term)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestSort(t *testing.T) {
	tests := []struct {
		name     string
		order    string
		expected []string
	}{
		{"no order keeps original", "", []string{"c1", "c2", "c3"}},
		{"surname ascending", "surname|asc", []string{"c3", "c2", "c1"}},
		{"createdAt descending", "createdAt|desc", []string{"c2", "c1", "c3"}},
		{"updatedAt ascending", "updatedAt|asc", []string{"c2", "c1", "c3"}},
		{"full name ascending", "fio|asc", []string{"c3", "c2", "c1"}},
		{"id descending", "id|desc", []string{"c3", "c2", "c1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := ParseOrder(tt.order)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := Sort(fixture(), order)
			if !reflect.DeepEqual(ids(got), tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, ids(got))
			}
		})
	}
}

func TestParseOrderErrors(t *testing.T) {
	for _, order := range []string{"surname", "surname|up", "password|asc", "a|b|c"} {
		if _, err := ParseOrder(order); err == nil {
			t.Errorf("expected error for %q", order)
		}
	}
}
