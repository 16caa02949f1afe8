package validator

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/martijn/clientbook/internal/core/domain"
)

func decode(t *testing.T, body string) map[string]any {
	t.Helper()

	var raw map[string]any
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		t.Fatalf("failed to decode %s: %v", body, err)
	}
	return raw
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expected       domain.ClientFields
		expectedFields []string // failing fields, nil when valid
	}{
		{
			name: "trims all string fields",
			body: `{"name":"  Ann ","surname":" Lee","lastName":" Marie  ","contacts":[{"type":" Email ","value":" ann@example.com "}]}`,
			expected: domain.ClientFields{
				Name:     "Ann",
				Surname:  "Lee",
				LastName: "Marie",
				Contacts: []domain.Contact{{Type: "Email", Value: "ann@example.com"}},
			},
		},
		{
			name: "missing lastName and contacts default to empty",
			body: `{"name":"Ann","surname":"Lee"}`,
			expected: domain.ClientFields{
				Name:     "Ann",
				Surname:  "Lee",
				Contacts: []domain.Contact{},
			},
		},
		{
			name: "non-array contacts become empty",
			body: `{"name":"Ann","surname":"Lee","contacts":"phone"}`,
			expected: domain.ClientFields{
				Name:     "Ann",
				Surname:  "Lee",
				Contacts: []domain.Contact{},
			},
		},
		{
			name: "numeric contact values are stringified",
			body: `{"name":"Ann","surname":"Lee","contacts":[{"type":"Telephone","value":79991234567}]}`,
			expected: domain.ClientFields{
				Name:     "Ann",
				Surname:  "Lee",
				Contacts: []domain.Contact{{Type: "Telephone", Value: "79991234567"}},
			},
		},
		{
			name:           "empty name",
			body:           `{"name":"","surname":"Smith"}`,
			expectedFields: []string{"name"},
		},
		{
			name:           "whitespace-only surname",
			body:           `{"name":"Ann","surname":"   "}`,
			expectedFields: []string{"surname"},
		},
		{
			name:           "non-string name counts as missing",
			body:           `{"name":42,"surname":"Lee"}`,
			expectedFields: []string{"name"},
		},
		{
			name:           "empty object reports name and surname",
			body:           `{}`,
			expectedFields: []string{"name", "surname"},
		},
		{
			name:           "several incomplete contacts collapse to one error",
			body:           `{"name":"Ann","surname":"Lee","contacts":[{"type":"","value":"x"},{"type":"Email","value":""},{"type":"Vk","value":"ok"},"junk"]}`,
			expectedFields: []string{"contacts"},
		},
		{
			name:           "object or array contact values are not stringified",
			body:           `{"name":"Ann","surname":"Lee","contacts":[{"type":"Email","value":{"a":1}},{"type":["Vk"],"value":"ann"}]}`,
			expectedFields: []string{"contacts"},
		},
		{
			name:           "all fields failing keeps field order",
			body:           `{"contacts":[{"type":"Email"}]}`,
			expectedFields: []string{"name", "surname", "contacts"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, err := Normalize(decode(t, tt.body))

			if tt.expectedFields == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !reflect.DeepEqual(fields, tt.expected) {
					t.Errorf("expected %+v, got %+v", tt.expected, fields)
				}
				return
			}

			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !reflect.DeepEqual(ve.Fields(), tt.expectedFields) {
				t.Errorf("expected failing fields %v, got %v", tt.expectedFields, ve.Fields())
			}
			for _, fe := range ve.Errors {
				if fe.Message == "" {
					t.Errorf("field %s has no message", fe.Field)
				}
			}
		})
	}
}

func TestNormalizeNilInput(t *testing.T) {
	_, err := Normalize(nil)

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Errors) != 2 {
		t.Errorf("expected 2 field errors, got %d", len(ve.Errors))
	}
}
