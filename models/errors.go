package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mmdatafocus/gallon_backend/utils"
	"gorm.io/gorm"
)

const (
	MinQuantity = 1
	MaxQuantity = 50
)

var (
	// ErrEmployeeNotFound covers both unknown and inactive employees.
	ErrEmployeeNotFound      = errors.New("employee not found or inactive")
	ErrInvalidQuantity       = fmt.Errorf("quantity must be between %d and %d", MinQuantity, MaxQuantity)
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrDuplicateExternalId   = errors.New("this employee id already exists")
	ErrStorageUnavailable    = errors.New("storage unavailable")
	ErrInvalidCredentials    = errors.New("invalid username or password")
	ErrUserDisabled          = errors.New("user is disabled")
)

// InsufficientAllowanceError reports the remaining allowance at the time of the rejected request.
type InsufficientAllowanceError struct {
	Requested int
	Remaining int
}

func (e *InsufficientAllowanceError) Error() string {
	return fmt.Sprintf("insufficient allowance. Only %d gallons remaining this month", e.Remaining)
}

func (e *InsufficientAllowanceError) Is(target error) bool {
	return target == ErrInsufficientAllowance
}

// ValidationError maps input field names to the rule each one failed.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func newValidationError(field string, rule string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: rule}}
}

func isDomainError(err error) bool {
	var ve *ValidationError
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInsufficientAllowance) ||
		errors.Is(err, ErrDuplicateExternalId) ||
		errors.Is(err, ErrStorageUnavailable) ||
		errors.As(err, &ve)
}

// storageError classifies persistence failures. Known domain errors pass through unchanged.
func storageError(err error) error {
	if err == nil || isDomainError(err) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, utils.ErrorDuplicate) {
		return ErrDuplicateExternalId
	}
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}
