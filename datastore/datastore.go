/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/tablestore/errors"
	"github.com/suparena/tablestore/storagemodels"
)

// Entity is the contract stored values satisfy. Both keys must be
// non-empty and derived deterministically from the entity's own state.
type Entity interface {
	PartitionKey() string
	RowKey() string
}

// EntityKeys extracts the key pair declared by an entity, rejecting empty
// keys with a ValidationError.
func EntityKeys[T Entity](entity T) (string, string, error) {
	pk, rk := entity.PartitionKey(), entity.RowKey()
	if pk == "" {
		return "", "", errors.NewValidationError("partitionKey", "must not be empty")
	}
	if rk == "" {
		return "", "", errors.NewValidationError("rowKey", "must not be empty")
	}
	return pk, rk, nil
}

// DataStore is the uniform repository contract over two-level keyed
// storage. Entities live in partitions addressed by partition key and
// within a partition are unique by row key.
//
// All operations are safe for concurrent use. Operations on the same
// key pair serialize; operations on distinct partitions are independent.
type DataStore[T Entity] interface {
	// GetAll returns every entity across every partition. Order is
	// unspecified.
	GetAll(ctx context.Context) ([]T, error)

	// GetPartition returns all entities in the named partition. A
	// missing partition yields an empty result, not an error.
	GetPartition(ctx context.Context, partitionKey string) ([]T, error)

	// Get returns the entity at the key pair, or a NotFoundError when
	// either the partition or the row key is absent.
	Get(ctx context.Context, partitionKey, rowKey string) (*T, error)

	// Add inserts the entity only if its key pair is vacant, creating
	// the partition as needed. An occupied key pair yields an
	// AlreadyExistsError and leaves the stored entity untouched.
	Add(ctx context.Context, entity T) error

	// AddOrUpdate unconditionally sets the entity at its key pair,
	// creating the partition as needed.
	AddOrUpdate(ctx context.Context, entity T) error

	// Update replaces the entity at its key pair only if one is
	// currently stored there; otherwise a NotFoundError.
	Update(ctx context.Context, entity T) error

	// Delete removes the entity addressed by the argument's keys and
	// returns the stored value that was removed, or a NotFoundError.
	Delete(ctx context.Context, entity T) (*T, error)

	// DeleteKey removes the entity at the key pair and returns it, or
	// a NotFoundError when either key is absent.
	DeleteKey(ctx context.Context, partitionKey, rowKey string) (*T, error)

	// DeleteAll removes the named partition and everything in it in
	// one step. A missing partition is a no-op.
	DeleteAll(ctx context.Context, partitionKey string) error

	// AddBatch writes a sequence of entities. By default each is
	// upserted in input order with no rollback on failure. With
	// storagemodels.WithStrictInsert the whole batch is validated
	// against current state first and rejected as a unit with a
	// BatchConflictError naming every occupied key pair.
	AddBatch(ctx context.Context, entities []T, opts ...storagemodels.BatchOption) error

	// Stream emits the named partition's entities on a channel. The
	// channel closes when the partition is exhausted or ctx ends.
	Stream(ctx context.Context, partitionKey string, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T]
}
