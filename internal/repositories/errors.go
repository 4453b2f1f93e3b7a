package repositories

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound wraps gorm's record-not-found for callers outside the
	// repository layer.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey indicates a unique-constraint violation.
	ErrDuplicateKey = errors.New("duplicate key")
)

// IsNotFoundError reports whether err represents a missing record.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports whether err represents a unique-constraint
// violation (duplicate email, duplicate participant pair, ...).
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicateKey) || errors.Is(err, gorm.ErrDuplicatedKey)
}
