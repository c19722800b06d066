/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when an entity is not found
	ErrNotFound = errors.New("entity not found")

	// ErrAlreadyExists is returned when attempting to insert an entity that already exists
	ErrAlreadyExists = errors.New("entity already exists")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)

// Key identifies an entity by its partition key and row key pair.
type Key struct {
	PartitionKey string
	RowKey       string
}

func (k Key) String() string {
	return k.PartitionKey + "/" + k.RowKey
}

// NotFoundError reports that no entity occupies the given partition/row key pair
type NotFoundError struct {
	PartitionKey string
	RowKey       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("entity with partition key %q and row key %q not found", e.PartitionKey, e.RowKey)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Key returns the missing key pair.
func (e *NotFoundError) Key() Key {
	return Key{PartitionKey: e.PartitionKey, RowKey: e.RowKey}
}

// AlreadyExistsError reports that the given partition/row key pair is already occupied
type AlreadyExistsError struct {
	PartitionKey string
	RowKey       string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("entity with partition key %q and row key %q already exists", e.PartitionKey, e.RowKey)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// Key returns the conflicting key pair.
func (e *AlreadyExistsError) Key() Key {
	return Key{PartitionKey: e.PartitionKey, RowKey: e.RowKey}
}

// BatchConflictError reports every key pair a strict-insert batch collided with.
// It carries the full conflict set discovered by the pre-check, not just the first.
type BatchConflictError struct {
	Keys []Key
}

func (e *BatchConflictError) Error() string {
	keys := make([]string, len(e.Keys))
	for i, k := range e.Keys {
		keys[i] = k.String()
	}
	return fmt.Sprintf("batch insert conflicts with %d existing entities: %s", len(e.Keys), strings.Join(keys, ", "))
}

func (e *BatchConflictError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(partitionKey, rowKey string) error {
	return &NotFoundError{PartitionKey: partitionKey, RowKey: rowKey}
}

// NewAlreadyExistsError creates a new AlreadyExistsError
func NewAlreadyExistsError(partitionKey, rowKey string) error {
	return &AlreadyExistsError{PartitionKey: partitionKey, RowKey: rowKey}
}

// NewBatchConflictError creates a new BatchConflictError from the conflicting keys
func NewBatchConflictError(keys []Key) error {
	return &BatchConflictError{Keys: keys}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// ConflictKeys extracts the conflicting key pairs from an error, if any.
// A BatchConflictError yields its full conflict set; an AlreadyExistsError
// yields its single key pair.
func ConflictKeys(err error) []Key {
	var batch *BatchConflictError
	if errors.As(err, &batch) {
		return batch.Keys
	}
	var single *AlreadyExistsError
	if errors.As(err, &single) {
		return []Key{single.Key()}
	}
	return nil
}
