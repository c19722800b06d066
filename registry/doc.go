/*
Package registry manages type registration and key mapping for TableStore.

The registry system enables:
  - Polymorphic entity storage in a single table
  - Dynamic type resolution based on EntityType attributes
  - Storage-form key patterns per entity type

Key Map Registry:
Associates Go types with table key layouts:

	registry.RegisterKeyMap[Match](registry.KeyMap{
	    PartitionKeyAttribute: "PK",
	    RowKeyAttribute:       "SK",
	    EntityType:            "Match",
	    PartitionKeyPattern:   "EVENT#{key}",
	    RowKeyPattern:         "MATCH#{key}",
	})

Patterns wrap caller-side keys in their storage form. The expansion is
applied symmetrically on writes and reads, so a caller that stores under
("2025", "17") reads back under ("2025", "17") regardless of the pattern.

Type Registry:
Maps entity type tags to unmarshal functions for decoding items of mixed
types out of a shared table:

	registry.RegisterType("Match", func(item map[string]types.AttributeValue) (interface{}, error) {
	    var m Match
	    err := attributevalue.UnmarshalMap(item, &m)
	    return m, err
	})

The registry is thread-safe and should be populated during initialization,
typically in init() functions or through generated code (see cmd/keymapgen).
*/
package registry
