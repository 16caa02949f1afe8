// Package search filters and orders client snapshots. Every function is pure:
// inputs are never modified and matching elements keep their relative order.
package search

import (
	"cmp"
	"slices"
	"strings"

	"github.com/martijn/clientbook/internal/core/domain"
)

// Search returns the clients whose name, surname, lastName or any contact
// value contains term, case-insensitively. A blank term matches everything.
func Search(clients []*domain.Client, term string) []*domain.Client {
	term = normalizeTerm(term)
	if term == "" {
		return clone(clients)
	}

	out := make([]*domain.Client, 0, len(clients))
	for _, client := range clients {
		if matchesName(client, term) || matchesContacts(client, term) {
			out = append(out, client)
		}
	}
	return out
}

// Autocomplete matches on name fields only and projects the result.
func Autocomplete(clients []*domain.Client, term string) []domain.ClientSummary {
	term = normalizeTerm(term)

	out := make([]domain.ClientSummary, 0, len(clients))
	for _, client := range clients {
		if term == "" || matchesName(client, term) {
			out = append(out, client.Summary())
		}
	}
	return out
}

func normalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

func contains(s, term string) bool {
	return strings.Contains(strings.ToLower(s), term)
}

func matchesName(client *domain.Client, term string) bool {
	return contains(client.Name, term) ||
		contains(client.Surname, term) ||
		contains(client.LastName, term)
}

func matchesContacts(client *domain.Client, term string) bool {
	for _, contact := range client.Contacts {
		if contains(contact.Value, term) {
			return true
		}
	}
	return false
}

// Sort returns a copy of clients stably ordered by the given clauses. With
// no clauses the original order is kept.
func Sort(clients []*domain.Client, order []OrderClause) []*domain.Client {
	out := clone(clients)
	if len(order) == 0 {
		return out
	}

	slices.SortStableFunc(out, func(a, b *domain.Client) int {
		for _, clause := range order {
			key := sortKeys[clause.Field]
			c := cmp.Compare(key(a), key(b))
			if clause.Direction == OrderDesc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
	return out
}

// clone never returns nil, so empty results encode as [].
func clone(clients []*domain.Client) []*domain.Client {
	out := make([]*domain.Client, len(clients))
	copy(out, clients)
	return out
}
