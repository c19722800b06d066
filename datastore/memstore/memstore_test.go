/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package memstore_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/suparena/tablestore/datastore"
	"github.com/suparena/tablestore/datastore/memstore"
	"github.com/suparena/tablestore/errors"
	"github.com/suparena/tablestore/storagemodels"
)

type Match struct {
	EventID string
	MatchID string
	Round   string
	Score   int
}

func (m Match) PartitionKey() string { return m.EventID }
func (m Match) RowKey() string       { return m.MatchID }

var _ datastore.DataStore[Match] = (*memstore.MemoryDataStore[Match])(nil)

func sortMatches() cmp.Option {
	return cmpopts.SortSlices(func(a, b Match) bool {
		if a.EventID != b.EventID {
			return a.EventID < b.EventID
		}
		return a.MatchID < b.MatchID
	})
}

func TestMemoryDataStore(t *testing.T) {
	ctx := context.Background()

	t.Run("AddAndGet", func(t *testing.T) {
		store := memstore.NewMemoryDataStore[Match]()

		entity := Match{EventID: "EVENT#2025", MatchID: "M1", Round: "QF", Score: 3}
		if err := store.Add(ctx, entity); err != nil {
			t.Fatalf("Add failed: %v", err)
		}

		retrieved, err := store.Get(ctx, "EVENT#2025", "M1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if diff := cmp.Diff(entity, *retrieved); diff != "" {
			t.Fatalf("Retrieved entity mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		store := memstore.NewMemoryDataStore[Match]()

		// Missing partition
		_, err := store.Get(ctx, "EVENT#2025", "M1")
		if !errors.IsNotFound(err) {
			t.Fatalf("Expected not found error, got: %v", err)
		}

		// Existing partition, missing row
		if err := store.Add(ctx, Match{EventID: "EVENT#2025", MatchID: "M1"}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		_, err = store.Get(ctx, "EVENT#2025", "M2")
		if !errors.IsNotFound(err) {
			t.Fatalf("Expected not found error, got: %v", err)
		}
	})

	t.Run("AddConflict", func(t *testing.T) {
		store := memstore.NewMemoryDataStore[Match]()

		first := Match{EventID: "EVENT#2025", MatchID: "M1", Score: 10}
		if err := store.Add(ctx, first); err != nil {
			t.Fatalf("First Add failed: %v", err)
		}

		err := store.Add(ctx, Match{EventID: "EVENT#2025", MatchID: "M1", Score: 20})
		if !errors.IsAlreadyExists(err) {
			t.Fatalf("Expected already exists error, got: %v", err)
		}

		// The error carries the conflicting key pair
		keys := errors.ConflictKeys(err)
		if len(keys) != 1 || keys[0].PartitionKey != "EVENT#2025" || keys[0].RowKey != "M1" {
			t.Fatalf("Expected conflict key EVENT#2025/M1, got: %v", keys)
		}

		// The stored value remains the first entity
		retrieved, err := store.Get(ctx, "EVENT#2025", "M1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if retrieved.Score != 10 {
			t.Fatalf("Expected stored score 10, got %d", retrieved.Score)
		}
	})

	t.Run("AddOrUpdateOverwrites", func(t *testing.T) {
		store := memstore.NewMemoryDataStore[Match]()

		if err := store.AddOrUpdate(ctx, Match{EventID: "EVENT#2025", MatchID: "M1", Round: "QF"}); err != nil {
			t.Fatalf("First AddOrUpdate failed: %v", err)
		}
		if err := store.AddOrUpdate(ctx, Match{EventID: "EVENT#2025", MatchID: "M1", Round: "SF"}); err != nil {
			t.Fatalf("Second AddOrUpdate failed: %v", err)
		}

		retrieved, err := store.Get(ctx, "EVENT#2025", "M1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if retrieved.Round != "SF" {
			t.Fatalf("Expected round SF after overwrite, got %s", retrieved.Round)
		}
		if store.Count() != 1 {
			t.Fatalf("Expected count 1, got %d", store.Count())
		}
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		store := memstore.NewMemoryDataStore[Match]()

		// Missing partition
		err := store.Update(ctx, Match{EventID: "EVENT#2025", MatchID: "M1"})
		if !errors.IsNotFound(err) {
			t.Fatalf("Expected not found error, got: %v", err)
		}

		// Existing partition, missing row
		if err := store.Add(ctx, Match{EventID: "EVENT#2025", MatchID: "M1"}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		err = store.Update(ctx, Match{EventID: "EVENT#2025", MatchID: "M2"})
		if !errors.IsNotFound(err) {
			t.Fatalf("Expected not found error, got: %v", err)
		}
	})

	t.Run("DeleteReturnsRemoved", func(t *testing.T) {
		store := memstore.NewMemoryDataStore[Match]()

		entity := Match{EventID: "EVENT#2025", MatchID: "M1", Score: 7}
		if err := store.Add(ctx, entity); err != nil {
			t.Fatalf("Add failed: %v", err)
		}

		removed, err := store.Delete(ctx, entity)
		if err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if diff := cmp.Diff(entity, *removed); diff != "" {
			t.Fatalf("Removed entity mismatch (-want +got):\n%s", diff)
		}

		_, err = store.Get(ctx, "EVENT#2025", "M1")
		if !errors.IsNotFound(err) {
			t.Fatalf("Expected not found after delete, got: %v", err)
		}

		// Deleting again fails and leaves state unchanged
		_, err = store.Delete(ctx, entity)
		if !errors.IsNotFound(err) {
			t.Fatalf("Expected not found on second delete, got: %v", err)
		}
		if store.Count() != 0 {
			t.Fatalf("Expected count 0, got %d", store.Count())
		}
	})

	t.Run("DeleteKeyByPair", func(t *testing.T) {
		store := memstore.NewMemoryDataStore[Match]()

		if err := store.Add(ctx, Match{EventID: "EVENT#2025", MatchID: "M1", Score: 4}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}

		removed, err := store.DeleteKey(ctx, "EVENT#2025", "M1")
		if err != nil {
			t.Fatalf("DeleteKey failed: %v", err)
		}
		if removed.Score != 4 {
			t.Fatalf("Expected removed score 4, got %d", removed.Score)
		}

		_, err = store.DeleteKey(ctx, "EVENT#2025", "M1")
		if !errors.IsNotFound(err) {
			t.Fatalf("Expected not found error, got: %v", err)
		}
	})

	t.Run("DeleteAllPartition", func(t *testing.T) {
		store := memstore.NewMemoryDataStore[Match]()

		for _, m := range []Match{
			{EventID: "EVENT#2025", MatchID: "M1"},
			{EventID: "EVENT#2025", MatchID: "M2"},
			{EventID: "EVENT#2026", MatchID: "M1"},
		} {
			if err := store.Add(ctx, m); err != nil {
				t.Fatalf("Add failed: %v", err)
			}
		}

		if err := store.DeleteAll(ctx, "EVENT#2025"); err != nil {
			t.Fatalf("DeleteAll failed: %v", err)
		}

		remaining, err := store.GetPartition(ctx, "EVENT#2025")
		if err != nil {
			t.Fatalf("GetPartition failed: %v", err)
		}
		if len(remaining) != 0 {
			t.Fatalf("Expected empty partition after DeleteAll, got %d entities", len(remaining))
		}

		_, err = store.Get(ctx, "EVENT#2025", "M1")
		if !errors.IsNotFound(err) {
			t.Fatalf("Expected not found after DeleteAll, got: %v", err)
		}

		// Other partitions are untouched
		if _, err := store.Get(ctx, "EVENT#2026", "M1"); err != nil {
			t.Fatalf("Get on untouched partition failed: %v", err)
		}

		// DeleteAll on a missing partition is a no-op
		if err := store.DeleteAll(ctx, "EVENT#1999"); err != nil {
			t.Fatalf("DeleteAll on missing partition should not fail, got: %v", err)
		}
	})

	t.Run("GetAllAcrossPartitions", func(t *testing.T) {
		store := memstore.NewMemoryDataStore[Match]()

		want := []Match{
			{EventID: "EVENT#2025", MatchID: "M1"},
			{EventID: "EVENT#2025", MatchID: "M2"},
			{EventID: "EVENT#2026", MatchID: "M1"},
			{EventID: "EVENT#2027", MatchID: "M9"},
		}
		for _, m := range want {
			if err := store.Add(ctx, m); err != nil {
				t.Fatalf("Add failed: %v", err)
			}
		}

		got, err := store.GetAll(ctx)
		if err != nil {
			t.Fatalf("GetAll failed: %v", err)
		}
		if diff := cmp.Diff(want, got, sortMatches()); diff != "" {
			t.Fatalf("GetAll mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("GetPartitionMissing", func(t *testing.T) {
		store := memstore.NewMemoryDataStore[Match]()

		got, err := store.GetPartition(ctx, "EVENT#2025")
		if err != nil {
			t.Fatalf("GetPartition on missing partition should not fail, got: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("Expected empty result, got %d entities", len(got))
		}
	})

	t.Run("ValidationErrors", func(t *testing.T) {
		store := memstore.NewMemoryDataStore[Match]()

		err := store.Add(ctx, Match{EventID: "", MatchID: "M1"})
		if !errors.IsValidationError(err) {
			t.Fatalf("Expected validation error for empty partition key, got: %v", err)
		}

		err = store.AddOrUpdate(ctx, Match{EventID: "EVENT#2025", MatchID: ""})
		if !errors.IsValidationError(err) {
			t.Fatalf("Expected validation error for empty row key, got: %v", err)
		}

		if store.Count() != 0 {
			t.Fatalf("Expected no writes after validation failures, got count %d", store.Count())
		}
	})
}

// TestConditionalWriteSequence walks the insert/conflict/update lifecycle of
// a single key pair end to end.
func TestConditionalWriteSequence(t *testing.T) {
	ctx := context.Background()
	store := memstore.NewMemoryDataStore[Match]()

	if err := store.Add(ctx, Match{EventID: "A", MatchID: "1", Score: 10}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	err := store.Add(ctx, Match{EventID: "A", MatchID: "1", Score: 20})
	if !errors.IsAlreadyExists(err) {
		t.Fatalf("Expected already exists error, got: %v", err)
	}
	keys := errors.ConflictKeys(err)
	if len(keys) != 1 || keys[0] != (errors.Key{PartitionKey: "A", RowKey: "1"}) {
		t.Fatalf("Expected conflict key A/1, got: %v", keys)
	}

	got, err := store.Get(ctx, "A", "1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Score != 10 {
		t.Fatalf("Expected score 10 after rejected add, got %d", got.Score)
	}

	if err := store.Update(ctx, Match{EventID: "A", MatchID: "1", Score: 20}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err = store.Get(ctx, "A", "1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Score != 20 {
		t.Fatalf("Expected score 20 after update, got %d", got.Score)
	}
}

func TestAddBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("DefaultUpsert", func(t *testing.T) {
		store := memstore.NewMemoryDataStore[Match]()

		batch := []Match{
			{EventID: "EVENT#2025", MatchID: "M1", Score: 1},
			{EventID: "EVENT#2025", MatchID: "M2", Score: 2},
		}
		if err := store.AddBatch(ctx, batch); err != nil {
			t.Fatalf("AddBatch failed: %v", err)
		}

		got, err := store.GetPartition(ctx, "EVENT#2025")
		if err != nil {
			t.Fatalf("GetPartition failed: %v", err)
		}
		if diff := cmp.Diff(batch, got, sortMatches()); diff != "" {
			t.Fatalf("Partition contents mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("DefaultUpsertOverwrites", func(t *testing.T) {
		store := memstore.NewMemoryDataStore[Match]()

		if err := store.Add(ctx, Match{EventID: "EVENT#2025", MatchID: "M1", Score: 1}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}

		// An existing key pair in the batch is overwritten, not rejected
		if err := store.AddBatch(ctx, []Match{
			{EventID: "EVENT#2025", MatchID: "M1", Score: 99},
			{EventID: "EVENT#2025", MatchID: "M2", Score: 2},
		}); err != nil {
			t.Fatalf("AddBatch failed: %v", err)
		}

		got, err := store.Get(ctx, "EVENT#2025", "M1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Score != 99 {
			t.Fatalf("Expected batch upsert to overwrite, got score %d", got.Score)
		}
	})

	t.Run("StrictInsertClean", func(t *testing.T) {
		store := memstore.NewMemoryDataStore[Match]()

		batch := []Match{
			{EventID: "EVENT#2025", MatchID: "M1"},
			{EventID: "EVENT#2025", MatchID: "M2"},
			{EventID: "EVENT#2026", MatchID: "M1"},
		}
		if err := store.AddBatch(ctx, batch, storagemodels.WithStrictInsert()); err != nil {
			t.Fatalf("AddBatch failed: %v", err)
		}
		if store.Count() != 3 {
			t.Fatalf("Expected 3 entities, got %d", store.Count())
		}
	})

	t.Run("StrictInsertConflict", func(t *testing.T) {
		store := memstore.NewMemoryDataStore[Match]()

		for _, m := range []Match{
			{EventID: "EVENT#2025", MatchID: "M1"},
			{EventID: "EVENT#2026", MatchID: "M7"},
		} {
			if err := store.Add(ctx, m); err != nil {
				t.Fatalf("Add failed: %v", err)
			}
		}

		batch := []Match{
			{EventID: "EVENT#2025", MatchID: "M1"}, // conflict
			{EventID: "EVENT#2025", MatchID: "M2"}, // vacant
			{EventID: "EVENT#2026", MatchID: "M7"}, // conflict
		}
		err := store.AddBatch(ctx, batch, storagemodels.WithStrictInsert())
		if !errors.IsAlreadyExists(err) {
			t.Fatalf("Expected already exists error, got: %v", err)
		}

		// The error carries the full conflict set, not just the first
		keys := errors.ConflictKeys(err)
		want := []errors.Key{
			{PartitionKey: "EVENT#2025", RowKey: "M1"},
			{PartitionKey: "EVENT#2026", RowKey: "M7"},
		}
		if diff := cmp.Diff(want, keys); diff != "" {
			t.Fatalf("Conflict keys mismatch (-want +got):\n%s", diff)
		}

		// No item from the batch was written, including the vacant one
		if _, err := store.Get(ctx, "EVENT#2025", "M2"); !errors.IsNotFound(err) {
			t.Fatalf("Expected no writes from rejected batch, got: %v", err)
		}
		if store.Count() != 2 {
			t.Fatalf("Expected 2 entities, got %d", store.Count())
		}
	})

	t.Run("StrictInsertDuplicateInBatch", func(t *testing.T) {
		store := memstore.NewMemoryDataStore[Match]()

		// Duplicates inside the batch pass the pre-check, which validates
		// against current state only. The second write then fails and the
		// earlier items stay applied.
		batch := []Match{
			{EventID: "EVENT#2025", MatchID: "M1", Score: 1},
			{EventID: "EVENT#2025", MatchID: "M1", Score: 2},
		}
		err := store.AddBatch(ctx, batch, storagemodels.WithStrictInsert())
		if !errors.IsAlreadyExists(err) {
			t.Fatalf("Expected already exists error, got: %v", err)
		}

		got, err := store.Get(ctx, "EVENT#2025", "M1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Score != 1 {
			t.Fatalf("Expected first duplicate to remain, got score %d", got.Score)
		}
	})
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()

	t.Run("ConcurrentAddSameKey", func(t *testing.T) {
		store := memstore.NewMemoryDataStore[Match]()

		const workers = 32
		var wg sync.WaitGroup
		var successes int64

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				err := store.Add(ctx, Match{EventID: "EVENT#2025", MatchID: "M1", Score: n})
				if err == nil {
					atomic.AddInt64(&successes, 1)
				} else if !errors.IsAlreadyExists(err) {
					t.Errorf("Unexpected error from concurrent Add: %v", err)
				}
			}(i)
		}
		wg.Wait()

		if successes != 1 {
			t.Fatalf("Expected exactly one Add to win, got %d", successes)
		}
		if store.Count() != 1 {
			t.Fatalf("Expected count 1, got %d", store.Count())
		}
	})

	t.Run("ConcurrentWritesAcrossPartitions", func(t *testing.T) {
		store := memstore.NewMemoryDataStore[Match]()

		const partitions = 8
		const rowsPerPartition = 50
		var wg sync.WaitGroup

		for p := 0; p < partitions; p++ {
			for r := 0; r < rowsPerPartition; r++ {
				wg.Add(1)
				go func(p, r int) {
					defer wg.Done()
					m := Match{
						EventID: "EVENT#" + string(rune('A'+p)),
						MatchID: "M" + string(rune('0'+r/10)) + string(rune('0'+r%10)),
					}
					if err := store.AddOrUpdate(ctx, m); err != nil {
						t.Errorf("AddOrUpdate failed: %v", err)
					}
				}(p, r)
			}
		}
		wg.Wait()

		if store.Count() != partitions*rowsPerPartition {
			t.Fatalf("Expected %d entities, got %d", partitions*rowsPerPartition, store.Count())
		}
		for p := 0; p < partitions; p++ {
			got, err := store.GetPartition(ctx, "EVENT#"+string(rune('A'+p)))
			if err != nil {
				t.Fatalf("GetPartition failed: %v", err)
			}
			if len(got) != rowsPerPartition {
				t.Fatalf("Expected %d entities in partition %d, got %d", rowsPerPartition, p, len(got))
			}
		}
	})

	t.Run("DeleteAllDuringWrites", func(t *testing.T) {
		store := memstore.NewMemoryDataStore[Match]()

		const writers = 16
		var wg sync.WaitGroup

		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				m := Match{EventID: "EVENT#2025", MatchID: "M" + string(rune('0'+n%10)), Score: n}
				if err := store.AddOrUpdate(ctx, m); err != nil {
					t.Errorf("AddOrUpdate failed: %v", err)
				}
			}(i)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.DeleteAll(ctx, "EVENT#2025"); err != nil {
				t.Errorf("DeleteAll failed: %v", err)
			}
		}()
		wg.Wait()

		// Writes racing the removal either land after it or are dropped
		// with the partition; every surviving row must still be readable.
		survivors, err := store.GetPartition(ctx, "EVENT#2025")
		if err != nil {
			t.Fatalf("GetPartition failed: %v", err)
		}
		for _, m := range survivors {
			if _, err := store.Get(ctx, m.PartitionKey(), m.RowKey()); err != nil {
				t.Fatalf("Survivor %s/%s not readable: %v", m.PartitionKey(), m.RowKey(), err)
			}
		}
	})
}

func TestStream(t *testing.T) {
	ctx := context.Background()

	t.Run("StreamsWholePartition", func(t *testing.T) {
		store := memstore.NewMemoryDataStore[Match]()

		const items = 25
		for i := 0; i < items; i++ {
			m := Match{EventID: "EVENT#2025", MatchID: "M" + string(rune('0'+i/10)) + string(rune('0'+i%10))}
			if err := store.Add(ctx, m); err != nil {
				t.Fatalf("Add failed: %v", err)
			}
		}

		streamCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		count := 0
		var lastIndex int64 = -1
		for result := range store.Stream(streamCtx, "EVENT#2025") {
			if result.Error != nil {
				t.Fatalf("Stream error: %v", result.Error)
			}
			if result.Meta.PartitionKey != "EVENT#2025" {
				t.Fatalf("Expected partition key EVENT#2025 in meta, got %s", result.Meta.PartitionKey)
			}
			if result.Meta.Index != lastIndex+1 {
				t.Fatalf("Expected index %d, got %d", lastIndex+1, result.Meta.Index)
			}
			lastIndex = result.Meta.Index
			count++
		}
		if count != items {
			t.Fatalf("Expected %d streamed items, got %d", items, count)
		}
	})

	t.Run("MissingPartitionClosesEmpty", func(t *testing.T) {
		store := memstore.NewMemoryDataStore[Match]()

		count := 0
		for range store.Stream(ctx, "EVENT#1999") {
			count++
		}
		if count != 0 {
			t.Fatalf("Expected empty stream, got %d items", count)
		}
	})

	t.Run("CancelStopsStream", func(t *testing.T) {
		store := memstore.NewMemoryDataStore[Match]()

		const items = 100
		for i := 0; i < items; i++ {
			m := Match{EventID: "EVENT#2025", MatchID: "M" + string(rune('0'+i/10)) + string(rune('0'+i%10))}
			if err := store.AddOrUpdate(ctx, m); err != nil {
				t.Fatalf("AddOrUpdate failed: %v", err)
			}
		}

		streamCtx, cancel := context.WithCancel(ctx)
		resultChan := store.Stream(streamCtx, "EVENT#2025", storagemodels.WithBufferSize(1))

		<-resultChan
		cancel()

		count := 1
		for range resultChan {
			count++
		}
		if count >= items {
			t.Fatalf("Expected stream to stop early after cancel, streamed %d items", count)
		}
	})
}

func TestHelperMethods(t *testing.T) {
	ctx := context.Background()
	store := memstore.NewMemoryDataStore[Match]()

	for _, m := range []Match{
		{EventID: "EVENT#2025", MatchID: "M1"},
		{EventID: "EVENT#2025", MatchID: "M2"},
		{EventID: "EVENT#2026", MatchID: "M1"},
	} {
		if err := store.Add(ctx, m); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	if store.Count() != 3 {
		t.Fatalf("Expected count 3, got %d", store.Count())
	}

	store.Clear()
	if store.Count() != 0 {
		t.Fatalf("Expected count 0 after clear, got %d", store.Count())
	}

	all, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("Expected no entities after clear, got %d", len(all))
	}
}
