/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

// BatchOptions configures batch write behavior
type BatchOptions struct {
	// StrictInsert validates every item against current state before writing
	// anything. Any occupied key pair fails the whole batch with no writes.
	// When false (default), items are upserted one by one in input order.
	StrictInsert bool
}

// BatchOption is a functional option for configuring batch writes
type BatchOption func(*BatchOptions)

// DefaultBatchOptions returns default batch options
func DefaultBatchOptions() BatchOptions {
	return BatchOptions{
		StrictInsert: false,
	}
}

// WithStrictInsert makes the batch insert-only: the whole batch is checked
// for conflicts first and rejected as a unit if any key pair is taken.
func WithStrictInsert() BatchOption {
	return func(opts *BatchOptions) {
		opts.StrictInsert = true
	}
}
