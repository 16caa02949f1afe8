package search

import (
	"fmt"
	"strings"

	"github.com/martijn/clientbook/internal/core/domain"
)

// OrderDirection represents sort direction
type OrderDirection string

const (
	OrderAsc  OrderDirection = "asc"
	OrderDesc OrderDirection = "desc"
)

// OrderClause represents a single order by clause
type OrderClause struct {
	Field     string
	Direction OrderDirection
}

// sortKeys are the orderable fields. fio is the full name as the table shows
// it: surname, name, lastName.
var sortKeys = map[string]func(*domain.Client) string{
	"id":        func(c *domain.Client) string { return c.ID },
	"name":      func(c *domain.Client) string { return strings.ToLower(c.Name) },
	"surname":   func(c *domain.Client) string { return strings.ToLower(c.Surname) },
	"lastName":  func(c *domain.Client) string { return strings.ToLower(c.LastName) },
	"createdAt": func(c *domain.Client) string { return c.CreatedAt },
	"updatedAt": func(c *domain.Client) string { return c.UpdatedAt },
	"fio": func(c *domain.Client) string {
		return strings.ToLower(strings.Join([]string{c.Surname, c.Name, c.LastName}, " "))
	},
}

// OrderFields lists the fields accepted by ParseOrder.
func OrderFields() []string {
	return []string{"id", "fio", "name", "surname", "lastName", "createdAt", "updatedAt"}
}

// ParseOrder parses an order string into order clauses.
// Format: field|direction (direction is asc or desc)
// Multiple clauses are comma-separated.
func ParseOrder(orderStr string) ([]OrderClause, error) {
	if orderStr == "" {
		return nil, nil
	}

	var orders []OrderClause

	for _, pair := range strings.Split(orderStr, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		parts := strings.Split(pair, "|")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid order format: %s (expected field|direction)", pair)
		}

		if _, ok := sortKeys[parts[0]]; !ok {
			return nil, fmt.Errorf("invalid order field: %s (valid fields: %s)", parts[0], strings.Join(OrderFields(), ", "))
		}

		direction := strings.ToLower(parts[1])
		if direction != "asc" && direction != "desc" {
			return nil, fmt.Errorf("invalid order direction: %s (expected asc or desc)", direction)
		}

		orders = append(orders, OrderClause{
			Field:     parts[0],
			Direction: OrderDirection(direction),
		})
	}

	return orders, nil
}
