/*
Package storagemodels defines the data structures used throughout TableStore.

Key Types:

BatchOptions:
Configuration for batch writes. The default is an item-by-item upsert in
input order; WithStrictInsert switches to validate-all-then-insert-all:

	err := store.AddBatch(ctx, matches, storagemodels.WithStrictInsert())

StreamResult:
Results from streaming operations with metadata:

	type StreamResult[T any] struct {
	    Item  T                               // The typed entity
	    Raw   map[string]types.AttributeValue // Raw attributes (durable backends)
	    Error error                           // Item-specific error, if any
	    Meta  StreamMeta                      // Metadata about this item
	}

StreamOptions:
Configuration for streaming behavior:

	opts := []StreamOption{
	    WithBufferSize(100),
	    WithPageSize(25),
	    WithMaxRetries(3),
	}

These types provide a consistent interface across different storage implementations.
*/
package storagemodels
