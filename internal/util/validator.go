package util

import (
	"net/mail"
	"strings"
)

// FieldIssue describes one invalid request field.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Issues accumulates field-level validation problems.
type Issues []FieldIssue

// Add appends an issue.
func (i *Issues) Add(field, message string) {
	*i = append(*i, FieldIssue{Field: field, Message: message})
}

// Empty reports whether validation passed.
func (i Issues) Empty() bool {
	return len(i) == 0
}

// CheckEmail flags empty or malformed e-mail addresses.
func (i *Issues) CheckEmail(field, email string) {
	email = strings.TrimSpace(email)
	if email == "" {
		i.Add(field, "required")
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		i.Add(field, "invalid e-mail")
	}
}

// CheckPassword enforces the minimum password length.
func (i *Issues) CheckPassword(field, password string) {
	if len(password) < 8 {
		i.Add(field, "must be at least 8 characters")
	}
}

// CheckRequired flags empty strings.
func (i *Issues) CheckRequired(field, value string) {
	if strings.TrimSpace(value) == "" {
		i.Add(field, "required")
	}
}

// CheckRange flags values outside [min, max].
func (i *Issues) CheckRange(field string, value, min, max float64) {
	if value < min || value > max {
		i.Add(field, "out of range")
	}
}
