/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package bolt

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/suparena/tablestore/storagemodels"
)

// Stream emits the named partition's entities on a channel. The partition
// is snapshotted in one read transaction so a slow consumer never holds a
// transaction open.
func (s *BoltDataStore[T]) Stream(ctx context.Context, partitionKey string, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	options := storagemodels.DefaultStreamOptions()
	for _, opt := range opts {
		opt(&options)
	}

	resultCh := make(chan storagemodels.StreamResult[T], options.BufferSize)

	go func() {
		defer close(resultCh)

		entities, err := s.GetPartition(ctx, partitionKey)
		if err != nil {
			s.logger.Warn("stream read failed",
				zap.String("partitionKey", partitionKey),
				zap.Error(err))
			resultCh <- storagemodels.StreamResult[T]{
				Error: fmt.Errorf("read failed: %w", err),
				Meta: storagemodels.StreamMeta{
					PartitionKey: partitionKey,
					Timestamp:    time.Now(),
				},
			}
			return
		}

		for i, entity := range entities {
			select {
			case <-ctx.Done():
				return
			case resultCh <- storagemodels.StreamResult[T]{
				Item: entity,
				Meta: storagemodels.StreamMeta{
					Index:        int64(i),
					PartitionKey: partitionKey,
					Timestamp:    time.Now(),
				},
			}:
			}
		}
	}()

	return resultCh
}
