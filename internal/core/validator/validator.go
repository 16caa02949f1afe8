package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/martijn/clientbook/internal/core/domain"
)

const (
	FieldName     = "name"
	FieldSurname  = "surname"
	FieldContacts = "contacts"
)

var messages = map[string]string{
	FieldName:     "Name is required",
	FieldSurname:  "Surname is required",
	FieldContacts: "Not all added contacts are filled in",
}

// FieldError describes a single validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field error found, in field order.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Fields(), ", "))
}

// Fields returns the names of the failing fields.
func (e *ValidationError) Fields() []string {
	fields := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		fields[i] = fe.Field
	}
	return fields
}

var validate = newValidate()

func newValidate() *govalidator.Validate {
	v := govalidator.New(govalidator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Normalize coerces a decoded JSON object into client fields and validates
// them. Missing or mistyped values become empty strings; a non-array contacts
// value becomes an empty list.
func Normalize(raw map[string]any) (domain.ClientFields, error) {
	fields := domain.ClientFields{
		Name:     asTrimmedString(raw["name"]),
		Surname:  asTrimmedString(raw["surname"]),
		LastName: asTrimmedString(raw["lastName"]),
		Contacts: asContacts(raw["contacts"]),
	}

	if err := Validate(fields); err != nil {
		return domain.ClientFields{}, err
	}
	return fields, nil
}

// Validate checks already typed fields.
func Validate(fields domain.ClientFields) error {
	err := validate.Struct(fields)
	if err == nil {
		return nil
	}

	var ve govalidator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("failed to validate client: %w", err)
	}

	failed := make(map[string]bool, len(ve))
	for _, fe := range ve {
		switch {
		case strings.Contains(fe.Namespace(), "."+FieldContacts+"["):
			failed[FieldContacts] = true
		default:
			failed[fe.Field()] = true
		}
	}

	var out []FieldError
	for _, field := range []string{FieldName, FieldSurname, FieldContacts} {
		if failed[field] {
			out = append(out, FieldError{Field: field, Message: messages[field]})
		}
	}
	return &ValidationError{Errors: out}
}

func asTrimmedString(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

func asContacts(v any) []domain.Contact {
	items, ok := v.([]any)
	if !ok {
		return []domain.Contact{}
	}

	contacts := make([]domain.Contact, 0, len(items))
	for _, item := range items {
		obj, _ := item.(map[string]any)
		contacts = append(contacts, domain.Contact{
			Type:  stringify(obj["type"]),
			Value: stringify(obj["value"]),
		})
	}
	return contacts
}

// stringify renders scalar JSON values as text. Zero numbers, false, null and
// composite values render empty.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		if f, err := t.Float64(); err == nil && f == 0 {
			return ""
		}
		return t.String()
	case float64:
		if t == 0 {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "true"
		}
		return ""
	default:
		return ""
	}
}
