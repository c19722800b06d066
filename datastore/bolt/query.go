/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package bolt

import (
	"context"
	"errors"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/suparena/tablestore/datastore"
	tserrors "github.com/suparena/tablestore/errors"
	"github.com/suparena/tablestore/storagemodels"
)

// GetAll returns every entity across every partition. Order follows the
// bucket traversal and is unspecified.
func (s *BoltDataStore[T]) GetAll(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]T, 0)
	err := s.db.View(func(tx *bbolt.Tx) error {
		root, err := s.root(tx)
		if err != nil {
			return err
		}
		return root.ForEachBucket(func(name []byte) error {
			part := root.Bucket(name)
			return part.ForEach(func(_, payload []byte) error {
				decoded, err := s.decode(payload)
				if err != nil {
					return err
				}
				results = append(results, *decoded)
				return nil
			})
		})
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetPartition returns all entities in the named partition. A missing
// partition yields an empty slice, not an error.
func (s *BoltDataStore[T]) GetPartition(ctx context.Context, partitionKey string) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]T, 0)
	err := s.db.View(func(tx *bbolt.Tx) error {
		root, err := s.root(tx)
		if err != nil {
			return err
		}
		part := root.Bucket([]byte(partitionKey))
		if part == nil {
			return nil
		}
		return part.ForEach(func(_, payload []byte) error {
			decoded, err := s.decode(payload)
			if err != nil {
				return err
			}
			results = append(results, *decoded)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteAll removes the entire partition in one write transaction. A
// missing partition is a no-op.
func (s *BoltDataStore[T]) DeleteAll(ctx context.Context, partitionKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		root, err := s.root(tx)
		if err != nil {
			return err
		}
		return root.DeleteBucket([]byte(partitionKey))
	})
	if errors.Is(err, bbolt.ErrBucketNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	s.logger.Debug("partition deleted", zap.String("partitionKey", partitionKey))
	return nil
}

// exists reports whether the key pair is currently occupied.
func (s *BoltDataStore[T]) exists(ctx context.Context, partitionKey, rowKey string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var occupied bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		root, err := s.root(tx)
		if err != nil {
			return err
		}
		part := root.Bucket([]byte(partitionKey))
		if part == nil {
			return nil
		}
		occupied = part.Get([]byte(rowKey)) != nil
		return nil
	})
	return occupied, err
}

// AddBatch writes a sequence of entities. The default strategy upserts each
// item in input order with no rollback on failure. WithStrictInsert checks
// the whole batch against current store state first and writes nothing when
// any key pair is taken; the writes that follow a clean check still use Add,
// so a failure mid-batch leaves earlier inserts in place.
func (s *BoltDataStore[T]) AddBatch(ctx context.Context, entities []T, opts ...storagemodels.BatchOption) error {
	options := storagemodels.DefaultBatchOptions()
	for _, opt := range opts {
		opt(&options)
	}

	if options.StrictInsert {
		var conflicts []tserrors.Key
		for _, entity := range entities {
			pk, rk, err := datastore.EntityKeys(entity)
			if err != nil {
				return err
			}
			occupied, err := s.exists(ctx, pk, rk)
			if err != nil {
				return err
			}
			if occupied {
				conflicts = append(conflicts, tserrors.Key{PartitionKey: pk, RowKey: rk})
			}
		}
		if len(conflicts) > 0 {
			return tserrors.NewBatchConflictError(conflicts)
		}

		for _, entity := range entities {
			if err := s.Add(ctx, entity); err != nil {
				return err
			}
		}
		return nil
	}

	for _, entity := range entities {
		if err := s.AddOrUpdate(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}
