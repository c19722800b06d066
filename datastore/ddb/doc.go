/*
Package ddb provides a DynamoDB implementation of the DataStore interface.

The DynamodbDataStore supports:
  - Single-table design patterns
  - Storage-form key patterns (e.g., "EVENT#{key}")
  - Streaming partition reads with retry logic
  - Conditional writes backing the insert/update/delete contracts
  - Automatic EntityType injection for polymorphic storage

Table Layout:
Each item carries the partition and row keys under the attribute names from
the type's registered key map (defaults PK and SK), the entity payload, and
an EntityType tag. Key patterns wrap caller keys in their storage form and
are applied symmetrically on writes and reads:

	registry.RegisterKeyMap[Match](registry.KeyMap{
	    EntityType:          "Match",
	    PartitionKeyPattern: "EVENT#{key}",
	    RowKeyPattern:       "MATCH#{key}",
	})

Configuration:
Settings come from a Config value, typically loaded from the environment:

	cfg, err := ddb.ConfigFromEnv() // AWS_ACCESS_KEY, AWS_SECRET_KEY, AWS_REGION, AWS_DDB_TABLE
	store, err := ddb.NewDynamodbDataStore[Match](ctx, cfg)

Streaming:
The streaming API supports configurable options:

	results := store.Stream(ctx, "EVENT#2025",
	    storagemodels.WithBufferSize(100),
	    storagemodels.WithPageSize(25),
	    storagemodels.WithMaxRetries(3),
	)

For usage examples, see the package tests.
*/
package ddb
