/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/suparena/tablestore/datastore"
	tserrors "github.com/suparena/tablestore/errors"
	"github.com/suparena/tablestore/storagemodels"
)

// batchWriteChunkSize is the BatchWriteItem request limit imposed by DynamoDB.
const batchWriteChunkSize = 25

// GetPartition returns all entities in the named partition, following the
// query pagination until the partition is exhausted.
func (d *DynamodbDataStore[T]) GetPartition(ctx context.Context, partitionKey string) ([]T, error) {
	input := &sdk.QueryInput{
		TableName:              &d.tableName,
		KeyConditionExpression: aws.String("#pk = :pk"),
		ExpressionAttributeNames: map[string]string{
			"#pk": d.keyMap.PartitionKeyAttribute,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: d.keyMap.ExpandPartitionKey(partitionKey)},
		},
	}

	results := make([]T, 0)
	for {
		out, err := d.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("query error: %w", err)
		}
		for _, item := range out.Items {
			decoded, err := d.unmarshalItem(item)
			if err != nil {
				return nil, err
			}
			results = append(results, *decoded)
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return results, nil
}

// GetAll returns every entity of this store's type, scanning the table and
// filtering on the EntityType tag so other types sharing the table are
// excluded.
func (d *DynamodbDataStore[T]) GetAll(ctx context.Context) ([]T, error) {
	input := &sdk.ScanInput{
		TableName: &d.tableName,
	}
	if d.keyMap.EntityType != "" {
		input.FilterExpression = aws.String("#et = :et")
		input.ExpressionAttributeNames = map[string]string{
			"#et": entityTypeAttribute,
		}
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":et": &types.AttributeValueMemberS{Value: d.keyMap.EntityType},
		}
	}

	results := make([]T, 0)
	for {
		out, err := d.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		for _, item := range out.Items {
			decoded, err := d.unmarshalItem(item)
			if err != nil {
				return nil, err
			}
			results = append(results, *decoded)
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return results, nil
}

// DeleteAll removes every item in the named partition. The partition's keys
// are collected first, then deleted in BatchWriteItem chunks; unprocessed
// keys are resubmitted with backoff. A missing partition is a no-op.
func (d *DynamodbDataStore[T]) DeleteAll(ctx context.Context, partitionKey string) error {
	keys, err := d.partitionKeys(ctx, partitionKey)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	for start := 0; start < len(keys); start += batchWriteChunkSize {
		end := start + batchWriteChunkSize
		if end > len(keys) {
			end = len(keys)
		}
		if err := d.deleteChunk(ctx, keys[start:end]); err != nil {
			return err
		}
	}

	d.logger.Debug("partition deleted",
		zap.String("partitionKey", partitionKey),
		zap.Int("items", len(keys)))
	return nil
}

// partitionKeys collects the table keys of every item in a partition.
func (d *DynamodbDataStore[T]) partitionKeys(ctx context.Context, partitionKey string) ([]map[string]types.AttributeValue, error) {
	input := &sdk.QueryInput{
		TableName:              &d.tableName,
		KeyConditionExpression: aws.String("#pk = :pk"),
		ProjectionExpression:   aws.String("#pk, #sk"),
		ExpressionAttributeNames: map[string]string{
			"#pk": d.keyMap.PartitionKeyAttribute,
			"#sk": d.keyMap.RowKeyAttribute,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: d.keyMap.ExpandPartitionKey(partitionKey)},
		},
	}

	var keys []map[string]types.AttributeValue
	for {
		out, err := d.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("query error: %w", err)
		}
		keys = append(keys, out.Items...)
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return keys, nil
}

// deleteChunk issues one BatchWriteItem for up to 25 keys, resubmitting
// unprocessed keys until DynamoDB accepts them all.
func (d *DynamodbDataStore[T]) deleteChunk(ctx context.Context, keys []map[string]types.AttributeValue) error {
	requests := make([]types.WriteRequest, 0, len(keys))
	for _, key := range keys {
		requests = append(requests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{Key: key},
		})
	}

	pending := map[string][]types.WriteRequest{d.tableName: requests}
	for attempt := 0; len(pending[d.tableName]) > 0; attempt++ {
		out, err := d.client.BatchWriteItem(ctx, &sdk.BatchWriteItemInput{
			RequestItems: pending,
		})
		if err != nil {
			return fmt.Errorf("BatchWriteItem failed: %w", err)
		}
		if len(out.UnprocessedItems[d.tableName]) == 0 {
			return nil
		}
		pending = out.UnprocessedItems

		backoff := time.Duration(attempt+1) * 100 * time.Millisecond
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return nil
}

// exists reports whether the key pair is currently occupied, using a
// projection-only point read.
func (d *DynamodbDataStore[T]) exists(ctx context.Context, partitionKey, rowKey string) (bool, error) {
	out, err := d.client.GetItem(ctx, &sdk.GetItemInput{
		TableName:            &d.tableName,
		Key:                  d.storageKey(partitionKey, rowKey),
		ProjectionExpression: aws.String("#pk"),
		ExpressionAttributeNames: map[string]string{
			"#pk": d.keyMap.PartitionKeyAttribute,
		},
	})
	if err != nil {
		return false, fmt.Errorf("GetItem error: %w", err)
	}
	return len(out.Item) > 0, nil
}

// AddBatch writes a sequence of entities. The default strategy upserts each
// item in input order with no rollback on failure. WithStrictInsert checks
// the whole batch against current table state first and writes nothing when
// any key pair is taken; the subsequent writes still use conditional puts,
// so a racer sneaking in between the check and the write surfaces as an
// AlreadyExistsError rather than a lost update.
func (d *DynamodbDataStore[T]) AddBatch(ctx context.Context, entities []T, opts ...storagemodels.BatchOption) error {
	options := storagemodels.DefaultBatchOptions()
	for _, opt := range opts {
		opt(&options)
	}

	if options.StrictInsert {
		var conflicts []tserrors.Key
		for _, entity := range entities {
			pk, rk, err := datastore.EntityKeys(entity)
			if err != nil {
				return err
			}
			occupied, err := d.exists(ctx, pk, rk)
			if err != nil {
				return err
			}
			if occupied {
				conflicts = append(conflicts, tserrors.Key{PartitionKey: pk, RowKey: rk})
			}
		}
		if len(conflicts) > 0 {
			return tserrors.NewBatchConflictError(conflicts)
		}

		for _, entity := range entities {
			if err := d.Add(ctx, entity); err != nil {
				return err
			}
		}
		return nil
	}

	for _, entity := range entities {
		if err := d.AddOrUpdate(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}
