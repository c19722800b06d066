/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package memstore provides the in-memory implementation of the DataStore interface
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/suparena/tablestore/datastore"
	"github.com/suparena/tablestore/errors"
	"github.com/suparena/tablestore/storagemodels"
)

// MemoryDataStore is an in-memory implementation of datastore.DataStore[T].
// Partitions live in a concurrent map keyed by partition key; each partition
// guards its own row map, so operations on different partitions never contend.
type MemoryDataStore[T datastore.Entity] struct {
	partitions sync.Map // partition key -> *partition[T]
}

// partition holds the rows of one partition key. The mutex covers every
// check-then-act on the row map, which is what makes Add and Update atomic
// with respect to concurrent writers of the same partition.
type partition[T datastore.Entity] struct {
	mu   sync.RWMutex
	rows map[string]T
}

// NewMemoryDataStore creates an empty in-memory store.
func NewMemoryDataStore[T datastore.Entity]() *MemoryDataStore[T] {
	return &MemoryDataStore[T]{}
}

// loadPartition returns the live partition for a key without creating one.
func (s *MemoryDataStore[T]) loadPartition(partitionKey string) (*partition[T], bool) {
	v, ok := s.partitions.Load(partitionKey)
	if !ok {
		return nil, false
	}
	return v.(*partition[T]), true
}

// ensurePartition returns the partition for a key, creating it if needed.
func (s *MemoryDataStore[T]) ensurePartition(partitionKey string) *partition[T] {
	if v, ok := s.partitions.Load(partitionKey); ok {
		return v.(*partition[T])
	}
	v, _ := s.partitions.LoadOrStore(partitionKey, &partition[T]{rows: make(map[string]T)})
	return v.(*partition[T])
}

// GetAll returns every entity across every partition. Order is unspecified.
func (s *MemoryDataStore[T]) GetAll(ctx context.Context) ([]T, error) {
	results := make([]T, 0)
	s.partitions.Range(func(_, v any) bool {
		p := v.(*partition[T])
		p.mu.RLock()
		for _, entity := range p.rows {
			results = append(results, entity)
		}
		p.mu.RUnlock()
		return true
	})
	return results, nil
}

// GetPartition returns all entities in the named partition. A missing
// partition yields an empty slice, not an error.
func (s *MemoryDataStore[T]) GetPartition(ctx context.Context, partitionKey string) ([]T, error) {
	p, ok := s.loadPartition(partitionKey)
	if !ok {
		return []T{}, nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	results := make([]T, 0, len(p.rows))
	for _, entity := range p.rows {
		results = append(results, entity)
	}
	return results, nil
}

// Get retrieves the entity at the key pair.
func (s *MemoryDataStore[T]) Get(ctx context.Context, partitionKey, rowKey string) (*T, error) {
	p, ok := s.loadPartition(partitionKey)
	if !ok {
		return nil, errors.NewNotFoundError(partitionKey, rowKey)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	entity, exists := p.rows[rowKey]
	if !exists {
		return nil, errors.NewNotFoundError(partitionKey, rowKey)
	}
	return &entity, nil
}

// Add inserts the entity only if its key pair is vacant. The vacancy check
// and the write happen under one lock, so two concurrent Adds of the same
// key pair cannot both succeed.
func (s *MemoryDataStore[T]) Add(ctx context.Context, entity T) error {
	pk, rk, err := datastore.EntityKeys(entity)
	if err != nil {
		return err
	}

	p := s.ensurePartition(pk)
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.rows[rk]; exists {
		return errors.NewAlreadyExistsError(pk, rk)
	}
	p.rows[rk] = entity
	return nil
}

// AddOrUpdate unconditionally sets the entity at its key pair.
func (s *MemoryDataStore[T]) AddOrUpdate(ctx context.Context, entity T) error {
	pk, rk, err := datastore.EntityKeys(entity)
	if err != nil {
		return err
	}

	p := s.ensurePartition(pk)
	p.mu.Lock()
	defer p.mu.Unlock()

	p.rows[rk] = entity
	return nil
}

// Update replaces the entity at its key pair only if one is currently
// stored there. The occupancy check and the write happen under one lock.
func (s *MemoryDataStore[T]) Update(ctx context.Context, entity T) error {
	pk, rk, err := datastore.EntityKeys(entity)
	if err != nil {
		return err
	}

	p, ok := s.loadPartition(pk)
	if !ok {
		return errors.NewNotFoundError(pk, rk)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.rows[rk]; !exists {
		return errors.NewNotFoundError(pk, rk)
	}
	p.rows[rk] = entity
	return nil
}

// Delete removes the entity addressed by the argument's keys and returns
// the stored value that was removed.
func (s *MemoryDataStore[T]) Delete(ctx context.Context, entity T) (*T, error) {
	pk, rk, err := datastore.EntityKeys(entity)
	if err != nil {
		return nil, err
	}
	return s.DeleteKey(ctx, pk, rk)
}

// DeleteKey removes the entity at the key pair and returns it.
func (s *MemoryDataStore[T]) DeleteKey(ctx context.Context, partitionKey, rowKey string) (*T, error) {
	p, ok := s.loadPartition(partitionKey)
	if !ok {
		return nil, errors.NewNotFoundError(partitionKey, rowKey)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	entity, exists := p.rows[rowKey]
	if !exists {
		return nil, errors.NewNotFoundError(partitionKey, rowKey)
	}
	delete(p.rows, rowKey)
	return &entity, nil
}

// DeleteAll removes the named partition and everything in it in one step.
// A missing partition is a no-op. An Add racing this call either recreates
// the partition afterwards or lands in the detached one and is dropped with
// it; both orders are valid linearizations.
func (s *MemoryDataStore[T]) DeleteAll(ctx context.Context, partitionKey string) error {
	s.partitions.Delete(partitionKey)
	return nil
}

// AddBatch writes a sequence of entities. The default strategy upserts each
// item in input order and stops at the first failure, leaving the applied
// prefix in place. WithStrictInsert validates the whole batch against
// current state first and writes nothing when any key pair is taken.
func (s *MemoryDataStore[T]) AddBatch(ctx context.Context, entities []T, opts ...storagemodels.BatchOption) error {
	options := storagemodels.DefaultBatchOptions()
	for _, opt := range opts {
		opt(&options)
	}

	if options.StrictInsert {
		return s.addBatchStrict(ctx, entities)
	}

	for _, entity := range entities {
		if err := s.AddOrUpdate(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}

// addBatchStrict is the validate-all-then-insert-all strategy. The check
// phase collects every conflicting key pair so callers see the full set at
// once. Items are checked against current state only, not against each
// other; a duplicate inside the batch surfaces during the write phase as an
// AlreadyExistsError from Add, with earlier items left in place.
func (s *MemoryDataStore[T]) addBatchStrict(ctx context.Context, entities []T) error {
	var conflicts []errors.Key
	for _, entity := range entities {
		pk, rk, err := datastore.EntityKeys(entity)
		if err != nil {
			return err
		}
		if s.exists(pk, rk) {
			conflicts = append(conflicts, errors.Key{PartitionKey: pk, RowKey: rk})
		}
	}
	if len(conflicts) > 0 {
		return errors.NewBatchConflictError(conflicts)
	}

	for _, entity := range entities {
		if err := s.Add(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}

// exists reports whether the key pair is currently occupied.
func (s *MemoryDataStore[T]) exists(partitionKey, rowKey string) bool {
	p, ok := s.loadPartition(partitionKey)
	if !ok {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, occupied := p.rows[rowKey]
	return occupied
}

// Stream emits the named partition's entities on a channel. The partition
// is snapshotted up front so a slow consumer never holds the lock.
func (s *MemoryDataStore[T]) Stream(ctx context.Context, partitionKey string, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	options := storagemodels.DefaultStreamOptions()
	for _, opt := range opts {
		opt(&options)
	}

	resultChan := make(chan storagemodels.StreamResult[T], options.BufferSize)

	go func() {
		defer close(resultChan)

		entities, _ := s.GetPartition(ctx, partitionKey)
		for i, entity := range entities {
			select {
			case <-ctx.Done():
				return
			case resultChan <- storagemodels.StreamResult[T]{
				Item: entity,
				Meta: storagemodels.StreamMeta{
					Index:        int64(i),
					PartitionKey: partitionKey,
					Timestamp:    time.Now(),
				},
			}:
			}
		}
	}()

	return resultChan
}

// Helper methods for testing

// Count returns the number of stored entities across all partitions.
func (s *MemoryDataStore[T]) Count() int {
	count := 0
	s.partitions.Range(func(_, v any) bool {
		p := v.(*partition[T])
		p.mu.RLock()
		count += len(p.rows)
		p.mu.RUnlock()
		return true
	})
	return count
}

// Clear removes all partitions.
func (s *MemoryDataStore[T]) Clear() {
	s.partitions.Range(func(key, _ any) bool {
		s.partitions.Delete(key)
		return true
	})
}
