package inquiries

import (
	"errors"
	"strings"
)

var (
	ErrNotFound       = errors.New("inquiry not found")
	ErrInvalidInquiry = errors.New("invalid inquiry")

	// ErrTransactionNoTaken is returned by the store when a generated
	// transaction number collides with an existing one.
	ErrTransactionNoTaken = errors.New("transaction number already in use")
)

type FieldError struct {
	Field  string
	Reason string
}

// ValidationError lists every rejected field; it matches ErrInvalidInquiry.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Reason)
	}
	return "invalid inquiry: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInquiry
}
