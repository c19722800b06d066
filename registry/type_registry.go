package registry

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// UnmarshalFunc defines a function that takes a raw DynamoDB item and returns the unmarshaled object.
type UnmarshalFunc func(item map[string]types.AttributeValue) (interface{}, error)

// typeRegistry holds the mapping from an entity type tag (like "Match", "Player") to its unmarshal function.
var typeRegistry = make(map[string]UnmarshalFunc)

// RegisterType registers an unmarshal function for a given entity type tag.
// If a function is already registered for the tag, it panics to prevent accidental overrides.
func RegisterType(entityType string, fn UnmarshalFunc) {
	if _, exists := typeRegistry[entityType]; exists {
		panic(fmt.Sprintf("type registry: type %q already registered", entityType))
	}
	typeRegistry[entityType] = fn
}

// GetUnmarshalFunc returns the registered unmarshal function for the given entity type tag.
// If no function is registered, it returns an error.
func GetUnmarshalFunc(entityType string) (UnmarshalFunc, error) {
	fn, ok := typeRegistry[entityType]
	if !ok {
		return nil, fmt.Errorf("type registry: no type registered for %q", entityType)
	}
	return fn, nil
}
