// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrAssetNotFound    = errors.New("asset not found")
	ErrEventNotFound    = errors.New("event not found")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrPermissionDenied = errors.New("notification permission denied")
	ErrStoreClosed      = errors.New("store is closed")
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrDatabaseError    = errors.New("database error")
	ErrInputValidation  = errors.New("input validation failed")
)

// GeneratorError represents an error from an event generator.
type GeneratorError struct {
	Generator string
	AssetID   string
	Err       error
}

func (e *GeneratorError) Error() string {
	if e.AssetID != "" {
		return fmt.Sprintf("generator error [%s] asset %s: %v", e.Generator, e.AssetID, e.Err)
	}
	return fmt.Sprintf("generator error [%s]: %v", e.Generator, e.Err)
}

func (e *GeneratorError) Unwrap() error {
	return e.Err
}

// NewGeneratorError creates a new GeneratorError.
func NewGeneratorError(generator, assetID string, err error) *GeneratorError {
	return &GeneratorError{
		Generator: generator,
		AssetID:   assetID,
		Err:       err,
	}
}

// ScheduleError represents an error from the device scheduling layer.
type ScheduleError struct {
	Operation      string
	NotificationID string
	Err            error
}

func (e *ScheduleError) Error() string {
	if e.NotificationID != "" {
		return fmt.Sprintf("schedule error [%s] %s: %v", e.Operation, e.NotificationID, e.Err)
	}
	return fmt.Sprintf("schedule error [%s]: %v", e.Operation, e.Err)
}

func (e *ScheduleError) Unwrap() error {
	return e.Err
}

// NewScheduleError creates a new ScheduleError.
func NewScheduleError(operation, notificationID string, err error) *ScheduleError {
	return &ScheduleError{
		Operation:      operation,
		NotificationID: notificationID,
		Err:            err,
	}
}

// StoreError represents a persistence-related error.
type StoreError struct {
	Entity  string
	ID      string
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store error [%s] %s: %s: %v", e.Entity, e.ID, e.Message, e.Err)
	}
	return fmt.Sprintf("store error [%s] %s: %s", e.Entity, e.ID, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(entity, id, message string, err error) *StoreError {
	return &StoreError{
		Entity:  entity,
		ID:      id,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
