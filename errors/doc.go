/*
Package errors provides semantic error types for the TableStore library.

The package defines common error scenarios with specific types that can be
checked using the standard errors.Is() function or the provided helper functions.
Every error carries the partition/row key pair(s) it concerns, so callers can
report precisely which entities were implicated.

Common Errors:

	var (
	    ErrNotFound      = errors.New("entity not found")
	    ErrAlreadyExists = errors.New("entity already exists")
	    ErrInvalidInput  = errors.New("invalid input")
	)

Usage:

	// Check error type
	match, err := store.Get(ctx, "EVENT#2025", "MATCH#17")
	if err != nil {
	    if errors.IsNotFound(err) {
	        // Handle not found case
	        return nil, fmt.Errorf("match not scheduled yet")
	    }
	    return nil, err
	}

	// Create typed errors
	err := errors.NewNotFoundError("EVENT#2025", "MATCH#17")
	err := errors.NewAlreadyExistsError("EVENT#2025", "MATCH#17")
	err := errors.NewBatchConflictError([]errors.Key{{PartitionKey: "p", RowKey: "r"}})

	// Recover the conflicting keys from a failed strict-insert batch
	if keys := errors.ConflictKeys(err); keys != nil {
	    for _, k := range keys {
	        log.Printf("already present: %s", k)
	    }
	}

The error types implement the error interface and support wrapping,
making them compatible with Go's standard error handling patterns.
*/
package errors
