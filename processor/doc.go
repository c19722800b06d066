/*
Package processor provides code generation for TableStore.

The processor reads OpenAPI specifications with vendor extensions and
generates Go code that registers key maps and unmarshal functions for the
annotated schemas.

OpenAPI Extension:
The processor looks for the x-tablestore-keys vendor extension:

	Match:
	  type: object
	  x-tablestore-keys:
	    entityType: Match
	    partitionKeyAttribute: PK
	    rowKeyAttribute: SK
	    partitionKeyPattern: "EVENT#{key}"
	    rowKeyPattern: "MATCH#{key}"
	  properties:
	    EventId:
	      type: string
	    MatchId:
	      type: string

Attribute names default to PK/SK and the entity type defaults to the schema
name, so the extension can be as small as an empty mapping.

Generated Code:
The processor generates registration code:

	func init() {
	    registry.RegisterKeyMap[Match](registry.KeyMap{
	        PartitionKeyAttribute: "PK",
	        RowKeyAttribute:       "SK",
	        EntityType:            "Match",
	        PartitionKeyPattern:   "EVENT#{key}",
	        RowKeyPattern:         "MATCH#{key}",
	    })
	    registry.RegisterType("Match", func(item map[string]types.AttributeValue) (interface{}, error) {
	        var entity Match
	        if err := attributevalue.UnmarshalMap(item, &entity); err != nil {
	            return nil, err
	        }
	        return &entity, nil
	    })
	}

This automation reduces boilerplate and ensures consistency between
the API specification and storage configuration.
*/
package processor
