/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides a configurable DataStore implementation for testing
// code that consumes the interface. Behavior is real (backed by the
// in-memory store); failures are injected per operation.
package mock

import (
	"context"

	"github.com/suparena/tablestore/datastore"
	"github.com/suparena/tablestore/datastore/memstore"
	"github.com/suparena/tablestore/storagemodels"
)

// DataStore is a mock implementation of datastore.DataStore[T]. Every
// operation delegates to an in-memory store unless an injected error or a
// custom hook takes precedence.
type DataStore[T datastore.Entity] struct {
	store *memstore.MemoryDataStore[T]

	getError    error
	addError    error
	updateError error
	deleteError error
	batchError  error

	streamFunc func(ctx context.Context, partitionKey string, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T]
}

// New creates a new mock DataStore.
func New[T datastore.Entity]() *DataStore[T] {
	return &DataStore[T]{
		store: memstore.NewMemoryDataStore[T](),
	}
}

// WithGetError makes read operations return an error.
func (m *DataStore[T]) WithGetError(err error) *DataStore[T] {
	m.getError = err
	return m
}

// WithAddError makes Add and AddOrUpdate return an error.
func (m *DataStore[T]) WithAddError(err error) *DataStore[T] {
	m.addError = err
	return m
}

// WithUpdateError makes Update return an error.
func (m *DataStore[T]) WithUpdateError(err error) *DataStore[T] {
	m.updateError = err
	return m
}

// WithDeleteError makes delete operations return an error.
func (m *DataStore[T]) WithDeleteError(err error) *DataStore[T] {
	m.deleteError = err
	return m
}

// WithBatchError makes AddBatch return an error.
func (m *DataStore[T]) WithBatchError(err error) *DataStore[T] {
	m.batchError = err
	return m
}

// WithStreamFunc sets a custom stream function.
func (m *DataStore[T]) WithStreamFunc(f func(ctx context.Context, partitionKey string, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T]) *DataStore[T] {
	m.streamFunc = f
	return m
}

// GetAll returns every stored entity.
func (m *DataStore[T]) GetAll(ctx context.Context) ([]T, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	return m.store.GetAll(ctx)
}

// GetPartition returns all entities in the named partition.
func (m *DataStore[T]) GetPartition(ctx context.Context, partitionKey string) ([]T, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	return m.store.GetPartition(ctx, partitionKey)
}

// Get retrieves the entity at the key pair.
func (m *DataStore[T]) Get(ctx context.Context, partitionKey, rowKey string) (*T, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	return m.store.Get(ctx, partitionKey, rowKey)
}

// Add inserts the entity if its key pair is vacant.
func (m *DataStore[T]) Add(ctx context.Context, entity T) error {
	if m.addError != nil {
		return m.addError
	}
	return m.store.Add(ctx, entity)
}

// AddOrUpdate unconditionally sets the entity.
func (m *DataStore[T]) AddOrUpdate(ctx context.Context, entity T) error {
	if m.addError != nil {
		return m.addError
	}
	return m.store.AddOrUpdate(ctx, entity)
}

// Update replaces the entity if its key pair is occupied.
func (m *DataStore[T]) Update(ctx context.Context, entity T) error {
	if m.updateError != nil {
		return m.updateError
	}
	return m.store.Update(ctx, entity)
}

// Delete removes the entity addressed by the argument's keys.
func (m *DataStore[T]) Delete(ctx context.Context, entity T) (*T, error) {
	if m.deleteError != nil {
		return nil, m.deleteError
	}
	return m.store.Delete(ctx, entity)
}

// DeleteKey removes the entity at the key pair.
func (m *DataStore[T]) DeleteKey(ctx context.Context, partitionKey, rowKey string) (*T, error) {
	if m.deleteError != nil {
		return nil, m.deleteError
	}
	return m.store.DeleteKey(ctx, partitionKey, rowKey)
}

// DeleteAll removes the entire partition.
func (m *DataStore[T]) DeleteAll(ctx context.Context, partitionKey string) error {
	if m.deleteError != nil {
		return m.deleteError
	}
	return m.store.DeleteAll(ctx, partitionKey)
}

// AddBatch writes a sequence of entities.
func (m *DataStore[T]) AddBatch(ctx context.Context, entities []T, opts ...storagemodels.BatchOption) error {
	if m.batchError != nil {
		return m.batchError
	}
	return m.store.AddBatch(ctx, entities, opts...)
}

// Stream emits the named partition's entities on a channel.
func (m *DataStore[T]) Stream(ctx context.Context, partitionKey string, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	if m.streamFunc != nil {
		return m.streamFunc(ctx, partitionKey, opts...)
	}
	return m.store.Stream(ctx, partitionKey, opts...)
}

// Helper methods for testing

// Seed loads entities without going through the write paths' error hooks.
func (m *DataStore[T]) Seed(ctx context.Context, entities ...T) error {
	for _, entity := range entities {
		if err := m.store.AddOrUpdate(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of stored entities.
func (m *DataStore[T]) Count() int {
	return m.store.Count()
}

// Clear removes all data.
func (m *DataStore[T]) Clear() {
	m.store.Clear()
}
