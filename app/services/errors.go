package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/uniformhub/pkg/database"
)

// Sentinel errors. Controllers map them to HTTP statuses in one place.
var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrForbidden      = errors.New("forbidden")
	ErrUnauthorized   = errors.New("invalid credentials")
	ErrNoActiveDisk   = errors.New("no active storage provider")
	ErrAlreadyDecided = fmt.Errorf("user is not pending approval: %w", ErrConflict)
)

// ValidationError carries per-field messages (422).
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	for k, v := range e.Fields {
		return fmt.Sprintf("validation failed: %s: %s", k, v)
	}
	return "validation failed"
}

func invalid(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// BannedError is returned when a banned account tries to sign in.
type BannedError struct {
	Reason string
}

func (e *BannedError) Error() string { return "account banned: " + e.Reason }

func (e *BannedError) Is(target error) bool { return target == ErrForbidden }

// notFound converts gorm's miss into ErrNotFound with context.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

// conflictf builds an ErrConflict with a message.
func conflictf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}

// duplicateAsConflict turns a unique-index violation from a racing writer
// into the same ErrConflict the pre-insert check returns.
func duplicateAsConflict(err error, format string, args ...any) error {
	if database.IsDuplicate(err) {
		return conflictf(format, args...)
	}
	return err
}

func forbiddenf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrForbidden)...)
}
