/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package bolt implements datastore.DataStore[T] on a local BoltDB file,
// giving the same two-level key model durability without a network hop.
//
// Layout: one root bucket per entity type, one nested bucket per partition
// key, rows stored as JSON under their row key. The root bucket name comes
// from the key map registered for T, so data written here lines up with the
// type tags the DynamoDB backend uses.
//
// Open a store per entity type, or share one file across types:
//
//	store, err := bolt.NewBoltDataStore[Match]("matches.db")
//	if err != nil { ... }
//	defer store.Close()
//
//	db, _ := bbolt.Open("shared.db", 0o600, nil)
//	matches, _ := bolt.NewBoltDataStoreWithDB[Match](db)
//	players, _ := bolt.NewBoltDataStoreWithDB[Player](db)
//
// Bolt allows one writer at a time, so every conditional write (Add,
// Update, DeleteKey) is genuinely atomic. Strict-insert batches keep the
// same validate-then-write contract as the other backends.
package bolt
