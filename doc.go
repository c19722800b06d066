/*
Package tablestore provides a concurrency-safe, two-level key-value storage
abstraction for Go applications: every entity lives under a partition key and
a row key, and every backend enforces the same conditional-write semantics.

The library follows a design-time, build-time, runtime workflow:
  - Design-time: Define entities and annotate OpenAPI specs with key mappings
  - Build-time: Generate key map and type registrations with keymapgen
  - Runtime: Use type-safe storage operations

Key Features:
  - Type-safe operations using Go generics
  - Multiple storage backends (in-memory, DynamoDB, BoltDB)
  - Atomic conditional writes: insert-if-absent, update-if-present
  - Batch writes with an optional all-or-nothing insert pre-check
  - Streaming reads with buffering, retries, and per-item metadata
  - Semantic error types carrying the offending key pairs
  - Thread-safe storage management across entity types

Basic Usage:

	// Create a storage manager
	mts := tablestore.NewMultiTypeStorage()

	// Register a typed datastore
	matchStore := memstore.NewMemoryDataStore[Match]()
	tablestore.RegisterDataStore(mts, "matches", matchStore)

	// Retrieve and use the datastore
	store, _ := tablestore.GetDataStore[Match](mts, "matches")
	match := Match{EventID: "EVENT#2025", MatchID: "M1"}
	err := store.Add(ctx, match)

For more information, see the documentation at https://github.com/suparena/tablestore
*/
package tablestore
