/*
Package datastore defines the core interfaces for TableStore's data persistence layer.

The main interface is DataStore[T], which provides generic partitioned CRUD
operations for any entity type T implementing Entity:

	type Entity interface {
	    PartitionKey() string
	    RowKey() string
	}

	type DataStore[T Entity] interface {
	    GetAll(ctx context.Context) ([]T, error)
	    GetPartition(ctx context.Context, partitionKey string) ([]T, error)
	    Get(ctx context.Context, partitionKey, rowKey string) (*T, error)
	    Add(ctx context.Context, entity T) error
	    AddOrUpdate(ctx context.Context, entity T) error
	    Update(ctx context.Context, entity T) error
	    Delete(ctx context.Context, entity T) (*T, error)
	    DeleteKey(ctx context.Context, partitionKey, rowKey string) (*T, error)
	    DeleteAll(ctx context.Context, partitionKey string) error
	    AddBatch(ctx context.Context, entities []T, opts ...storagemodels.BatchOption) error
	    Stream(ctx context.Context, partitionKey string, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T]
	}

Implementations:
  - memstore: In-memory implementation backed by concurrent maps
  - ddb: DynamoDB implementation using conditional writes
  - bolt: Embedded bbolt implementation with one bucket per partition

The package uses Go generics to ensure type safety at compile time while maintaining
flexibility for different storage backends.
*/
package datastore
