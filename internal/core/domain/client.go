package domain

import (
	"time"

	"github.com/google/uuid"
)

// TimestampLayout matches JavaScript's Date.prototype.toISOString, so stored
// timestamps compare chronologically as plain strings.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Contact types the UI offers. The store accepts any non-empty type.
const (
	ContactTypeTelephone  = "Telephone"
	ContactTypeEmail      = "Email"
	ContactTypeVk         = "Vk"
	ContactTypeFacebook   = "Facebook"
	ContactTypeAdditional = "Additional-contact"
)

type Contact struct {
	Type  string `json:"type" validate:"required"`
	Value string `json:"value" validate:"required"`
}

// ClientFields is the user-editable part of a client.
type ClientFields struct {
	Name     string    `json:"name" validate:"required"`
	Surname  string    `json:"surname" validate:"required"`
	LastName string    `json:"lastName"`
	Contacts []Contact `json:"contacts" validate:"dive"`
}

type Client struct {
	ID string `json:"id"`
	ClientFields
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ClientSummary is the autocomplete projection of a client.
type ClientSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	LastName string `json:"lastName"`
}

func NewClient(fields ClientFields, now time.Time) *Client {
	ts := FormatTimestamp(now)
	if fields.Contacts == nil {
		fields.Contacts = []Contact{}
	}
	return &Client{
		ID:           NewClientID(),
		ClientFields: fields,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
}

func NewClientID() string {
	return uuid.NewString()
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Touch refreshes UpdatedAt, never letting it fall behind CreatedAt.
func (c *Client) Touch(now time.Time) {
	ts := FormatTimestamp(now)
	if ts < c.CreatedAt {
		ts = c.CreatedAt
	}
	c.UpdatedAt = ts
}

func (c *Client) Summary() ClientSummary {
	return ClientSummary{
		ID:       c.ID,
		Name:     c.Name,
		Surname:  c.Surname,
		LastName: c.LastName,
	}
}

// Raw returns the editable fields in the loosely typed shape request bodies
// arrive in, so partial updates can be merged over them.
func (c *Client) Raw() map[string]any {
	contacts := make([]any, 0, len(c.Contacts))
	for _, contact := range c.Contacts {
		contacts = append(contacts, map[string]any{
			"type":  contact.Type,
			"value": contact.Value,
		})
	}
	return map[string]any{
		"name":     c.Name,
		"surname":  c.Surname,
		"lastName": c.LastName,
		"contacts": contacts,
	}
}

// Clone returns a deep copy so callers can't alias a stored record.
func (c *Client) Clone() *Client {
	cp := *c
	cp.Contacts = append([]Contact{}, c.Contacts...)
	return &cp
}
