// Package store provides persistence for aptmgr entities.
package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an entity is not found. A missing row is
	// not an internal failure; callers decide how to react.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicateApartment is returned when a write collides with the unique
	// (unit_number, building_name) constraint. The constraint is the
	// authoritative uniqueness check; the form-level pre-check only improves
	// the error message.
	ErrDuplicateApartment = errors.New("apartment with this unit and building already exists")

	// ErrForeignKey is returned when a tenant write references a missing
	// apartment.
	ErrForeignKey = errors.New("foreign key constraint violated")

	// ErrConnectionFailed is returned when the database connection fails.
	ErrConnectionFailed = errors.New("database connection failed")

	// ErrMigrationFailed is returned when database migration fails.
	ErrMigrationFailed = errors.New("database migration failed")
)

// StoreError wraps errors with additional context.
type StoreError struct {
	Op      string // Operation that failed (e.g., "FindApartment")
	Entity  string // Entity type (e.g., "apartment", "tenant")
	ID      string // Entity identifier if applicable
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s %s: %s", e.Op, e.Entity, e.ID, e.Message)
	}
	if e.Entity != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Entity, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(op, entity, id, message string, err error) *StoreError {
	return &StoreError{
		Op:      op,
		Entity:  entity,
		ID:      id,
		Message: message,
		Err:     err,
	}
}
