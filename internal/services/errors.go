package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/diewo77/gestion/validation"
	"gorm.io/gorm"
)

// Sentinel errors; every typed error below matches one of them with errors.Is.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrPersistence = errors.New("persistence failure")
	ErrIntegrity   = errors.New("integrity violation")
)

// ValidationError lists the offending fields with their error codes.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for f, code := range e.Violations {
		fields = append(fields, f+": "+code)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, code string) *ValidationError {
	return &ValidationError{Violations: validation.Violations{field: code}}
}

// NotFoundError reports a missing record.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConflictError reports a uniqueness collision.
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s already in use", e.Field)
	}
	return fmt.Sprintf("%s %q already in use", e.Field, e.Value)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// PersistenceError wraps a storage failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// IntegrityError reports a stored record whose derived values disagree with
// a recomputation.
type IntegrityError struct {
	Entity string
	ID     uint
	Detail string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s %d: %s", e.Entity, e.ID, e.Detail)
}

func (e *IntegrityError) Is(target error) bool { return target == ErrIntegrity }

// storageError maps a GORM error to the service error kinds.
func storageError(op, entity string, id uint, field, value string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &NotFoundError{Entity: entity, ID: id}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &ConflictError{Field: field, Value: value}
	}
	// already classified inside a transaction callback
	var (
		ve *ValidationError
		nf *NotFoundError
		ce *ConflictError
		pe *PersistenceError
	)
	if errors.As(err, &ve) || errors.As(err, &nf) || errors.As(err, &ce) || errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
