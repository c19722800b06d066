/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"reflect"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/suparena/tablestore/datastore"
	tserrors "github.com/suparena/tablestore/errors"
	"github.com/suparena/tablestore/registry"
)

// BoltDataStore implements datastore.DataStore[T] on a local BoltDB file.
// Each entity type owns a root bucket; partitions are nested buckets inside
// it and rows are JSON-encoded values keyed by row key. Bolt serializes
// writers, so the check-then-act sequences behind Add, Update and Delete
// run atomically inside a single write transaction.
type BoltDataStore[T datastore.Entity] struct {
	db     *bbolt.DB
	bucket []byte
	logger *zap.Logger
	ownsDB bool
}

// Option adjusts store construction.
type Option func(*options)

type options struct {
	bucket string
	logger *zap.Logger
}

// WithBucket overrides the root bucket name, which defaults to the entity
// type registered for T (or the Go type name when none is registered).
func WithBucket(name string) Option {
	return func(o *options) { o.bucket = name }
}

// WithLogger attaches a logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// NewBoltDataStore opens (or creates) the database file at path and binds
// a store for T to its root bucket. Close releases the file.
func NewBoltDataStore[T datastore.Entity](path string, opts ...Option) (*BoltDataStore[T], error) {
	if path == "" {
		return nil, tserrors.NewValidationError("path", "must not be empty")
	}

	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store, err := NewBoltDataStoreWithDB[T](db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	store.ownsDB = true
	return store, nil
}

// NewBoltDataStoreWithDB binds a store for T to an already-open database,
// letting several entity types share one file. The caller keeps ownership
// of the database handle.
func NewBoltDataStoreWithDB[T datastore.Entity](db *bbolt.DB, opts ...Option) (*BoltDataStore[T], error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.bucket == "" {
		o.bucket = defaultBucketName[T]()
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	store := &BoltDataStore[T]{
		db:     db,
		bucket: []byte(o.bucket),
		logger: o.logger,
	}
	if err := store.ensureRootBucket(); err != nil {
		return nil, err
	}

	store.logger.Info("Bolt store initialized",
		zap.String("path", db.Path()),
		zap.String("bucket", o.bucket))
	return store, nil
}

// defaultBucketName prefers the registered entity type so that bucket names
// line up with the type tags used by the other backends.
func defaultBucketName[T datastore.Entity]() string {
	if km, ok := registry.GetKeyMap[T](); ok && km.EntityType != "" {
		return km.EntityType
	}
	var zero T
	t := reflect.TypeOf(zero)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t != nil {
		return t.Name()
	}
	return "entities"
}

func (s *BoltDataStore[T]) ensureRootBucket() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(s.bucket); err != nil {
			return fmt.Errorf("create root bucket: %w", err)
		}
		return nil
	})
}

// Close closes the underlying database if this store opened it. Stores
// sharing a caller-owned handle leave it open.
func (s *BoltDataStore[T]) Close() error {
	if !s.ownsDB || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// root returns the store's root bucket within a transaction.
func (s *BoltDataStore[T]) root(tx *bbolt.Tx) (*bbolt.Bucket, error) {
	bucket := tx.Bucket(s.bucket)
	if bucket == nil {
		return nil, fmt.Errorf("root bucket %q is missing", s.bucket)
	}
	return bucket, nil
}

func (s *BoltDataStore[T]) encode(entity T) ([]byte, error) {
	payload, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("marshal entity: %w", err)
	}
	return payload, nil
}

func (s *BoltDataStore[T]) decode(payload []byte) (*T, error) {
	result := new(T)
	if err := json.Unmarshal(payload, result); err != nil {
		return nil, fmt.Errorf("unmarshal entity: %w", err)
	}
	return result, nil
}

// Get retrieves the entity at the key pair.
func (s *BoltDataStore[T]) Get(ctx context.Context, partitionKey, rowKey string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result *T
	err := s.db.View(func(tx *bbolt.Tx) error {
		root, err := s.root(tx)
		if err != nil {
			return err
		}
		part := root.Bucket([]byte(partitionKey))
		if part == nil {
			return tserrors.NewNotFoundError(partitionKey, rowKey)
		}
		payload := part.Get([]byte(rowKey))
		if payload == nil {
			return tserrors.NewNotFoundError(partitionKey, rowKey)
		}
		result, err = s.decode(payload)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Add inserts the entity only if its key pair is vacant. The existence
// check and the put share one write transaction, so concurrent inserts of
// the same key pair resolve to exactly one winner.
func (s *BoltDataStore[T]) Add(ctx context.Context, entity T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	pk, rk, err := datastore.EntityKeys(entity)
	if err != nil {
		return err
	}
	payload, err := s.encode(entity)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		root, err := s.root(tx)
		if err != nil {
			return err
		}
		part, err := root.CreateBucketIfNotExists([]byte(pk))
		if err != nil {
			return fmt.Errorf("create partition bucket: %w", err)
		}
		if part.Get([]byte(rk)) != nil {
			return tserrors.NewAlreadyExistsError(pk, rk)
		}
		return part.Put([]byte(rk), payload)
	})
}

// AddOrUpdate unconditionally sets the entity at its key pair.
func (s *BoltDataStore[T]) AddOrUpdate(ctx context.Context, entity T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	pk, rk, err := datastore.EntityKeys(entity)
	if err != nil {
		return err
	}
	payload, err := s.encode(entity)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		root, err := s.root(tx)
		if err != nil {
			return err
		}
		part, err := root.CreateBucketIfNotExists([]byte(pk))
		if err != nil {
			return fmt.Errorf("create partition bucket: %w", err)
		}
		return part.Put([]byte(rk), payload)
	})
}

// Update replaces the entity at its key pair only if one is currently
// stored there. A concurrent removal surfaces as NotFound.
func (s *BoltDataStore[T]) Update(ctx context.Context, entity T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	pk, rk, err := datastore.EntityKeys(entity)
	if err != nil {
		return err
	}
	payload, err := s.encode(entity)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		root, err := s.root(tx)
		if err != nil {
			return err
		}
		part := root.Bucket([]byte(pk))
		if part == nil {
			return tserrors.NewNotFoundError(pk, rk)
		}
		if part.Get([]byte(rk)) == nil {
			return tserrors.NewNotFoundError(pk, rk)
		}
		return part.Put([]byte(rk), payload)
	})
}

// Delete removes the entity addressed by the argument's keys and returns
// the stored value that was removed.
func (s *BoltDataStore[T]) Delete(ctx context.Context, entity T) (*T, error) {
	pk, rk, err := datastore.EntityKeys(entity)
	if err != nil {
		return nil, err
	}
	return s.DeleteKey(ctx, pk, rk)
}

// DeleteKey removes the entity at the key pair and returns it.
func (s *BoltDataStore[T]) DeleteKey(ctx context.Context, partitionKey, rowKey string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var removed *T
	err := s.db.Update(func(tx *bbolt.Tx) error {
		root, err := s.root(tx)
		if err != nil {
			return err
		}
		part := root.Bucket([]byte(partitionKey))
		if part == nil {
			return tserrors.NewNotFoundError(partitionKey, rowKey)
		}
		payload := part.Get([]byte(rowKey))
		if payload == nil {
			return tserrors.NewNotFoundError(partitionKey, rowKey)
		}
		removed, err = s.decode(payload)
		if err != nil {
			return err
		}
		return part.Delete([]byte(rowKey))
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}
