/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"reflect"
	"regexp"
	"sync"
)

// Default table attribute names for the two key levels.
const (
	DefaultPartitionKeyAttribute = "PK"
	DefaultRowKeyAttribute       = "SK"
)

// KeyMap describes how a Go type binds to a durable table: which attributes
// hold the partition and row keys, the type tag stored with each item, and
// optional storage-form patterns applied to the keys themselves.
type KeyMap struct {
	// PartitionKeyAttribute is the table attribute holding the partition key.
	// Defaults to "PK".
	PartitionKeyAttribute string

	// RowKeyAttribute is the table attribute holding the row key.
	// Defaults to "SK".
	RowKeyAttribute string

	// EntityType tags items of this type so that several types can share
	// one table. Defaults to the Go type name.
	EntityType string

	// PartitionKeyPattern optionally wraps partition keys in storage form,
	// e.g. "EVENT#{key}". Empty stores keys verbatim.
	PartitionKeyPattern string

	// RowKeyPattern optionally wraps row keys in storage form.
	RowKeyPattern string
}

var macroPattern = regexp.MustCompile(`{([^}]+)}`)

// expandKeyPattern substitutes the key for every macro in the pattern.
func expandKeyPattern(pattern, key string) string {
	if pattern == "" {
		return key
	}
	return macroPattern.ReplaceAllString(pattern, key)
}

// ExpandPartitionKey renders a caller-side partition key in storage form.
// Writes and reads apply the same expansion, so callers never see the
// storage form.
func (km KeyMap) ExpandPartitionKey(key string) string {
	return expandKeyPattern(km.PartitionKeyPattern, key)
}

// ExpandRowKey renders a caller-side row key in storage form.
func (km KeyMap) ExpandRowKey(key string) string {
	return expandKeyPattern(km.RowKeyPattern, key)
}

var (
	keyMapRegistry = make(map[reflect.Type]KeyMap)
	mu             sync.RWMutex
)

// RegisterKeyMap associates a Go type T with a key map. Empty attribute
// names and the entity type fall back to defaults.
func RegisterKeyMap[T any](km KeyMap) {
	var zero T
	t := reflect.TypeOf(zero)

	if km.PartitionKeyAttribute == "" {
		km.PartitionKeyAttribute = DefaultPartitionKeyAttribute
	}
	if km.RowKeyAttribute == "" {
		km.RowKeyAttribute = DefaultRowKeyAttribute
	}
	if km.EntityType == "" && t != nil {
		name := t
		if name.Kind() == reflect.Ptr {
			name = name.Elem()
		}
		km.EntityType = name.Name()
	}

	mu.Lock()
	defer mu.Unlock()
	keyMapRegistry[t] = km
}

// GetKeyMap retrieves the key map for type T, if any.
func GetKeyMap[T any]() (KeyMap, bool) {
	var zero T
	t := reflect.TypeOf(zero)

	mu.RLock()
	defer mu.RUnlock()
	km, ok := keyMapRegistry[t]
	return km, ok
}
