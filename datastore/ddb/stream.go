/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/suparena/tablestore/registry"
	"github.com/suparena/tablestore/storagemodels"
)

// Stream performs a streaming read of the named partition with configurable options
func (d *DynamodbDataStore[T]) Stream(ctx context.Context, partitionKey string, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	// Apply options
	options := storagemodels.DefaultStreamOptions()
	for _, opt := range opts {
		opt(&options)
	}

	// Create buffered result channel
	resultCh := make(chan storagemodels.StreamResult[T], options.BufferSize)

	// Start streaming in background
	go d.streamWorker(ctx, partitionKey, options, resultCh)

	return resultCh
}

// streamWorker handles the actual streaming logic
func (d *DynamodbDataStore[T]) streamWorker(
	ctx context.Context,
	partitionKey string,
	options storagemodels.StreamOptions,
	resultCh chan<- storagemodels.StreamResult[T],
) {
	defer close(resultCh)

	var itemIndex int64

	input := &sdk.QueryInput{
		TableName:              &d.tableName,
		KeyConditionExpression: aws.String("#pk = :pk"),
		ExpressionAttributeNames: map[string]string{
			"#pk": d.keyMap.PartitionKeyAttribute,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: d.keyMap.ExpandPartitionKey(partitionKey)},
		},
		Limit: aws.Int32(options.PageSize),
	}

	var lastEvaluatedKey map[string]types.AttributeValue

	for {
		// Check context cancellation
		select {
		case <-ctx.Done():
			return
		default:
		}

		if lastEvaluatedKey != nil {
			input.ExclusiveStartKey = lastEvaluatedKey
		}

		// Execute query with retry logic
		out, err := d.queryWithRetry(ctx, input, options)
		if err != nil {
			d.logger.Warn("stream query failed",
				zap.String("partitionKey", partitionKey),
				zap.Error(err))
			resultCh <- storagemodels.StreamResult[T]{
				Error: fmt.Errorf("query failed: %w", err),
				Meta: storagemodels.StreamMeta{
					Index:        itemIndex,
					PartitionKey: partitionKey,
					Timestamp:    time.Now(),
				},
			}
			return
		}

		// Process items in current page
		for _, item := range out.Items {
			result := d.processItem(item, itemIndex, partitionKey)
			itemIndex++

			// Send result
			select {
			case <-ctx.Done():
				return
			case resultCh <- result:
			}
		}

		// Check for more pages
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		lastEvaluatedKey = out.LastEvaluatedKey
	}
}

// queryWithRetry executes a query with configurable retry logic
func (d *DynamodbDataStore[T]) queryWithRetry(
	ctx context.Context,
	input *sdk.QueryInput,
	options storagemodels.StreamOptions,
) (*sdk.QueryOutput, error) {
	var lastErr error

	for attempt := 0; attempt <= options.MaxRetries; attempt++ {
		// Check context before retry
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		// Execute query
		out, err := d.client.Query(ctx, input)
		if err == nil {
			return out, nil
		}

		lastErr = err

		// Check if error is retryable
		if !isRetryableError(err) {
			return nil, err
		}

		// Don't sleep after last attempt
		if attempt < options.MaxRetries {
			backoff := time.Duration(attempt+1) * options.RetryBackoff
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("query failed after %d retries: %w", options.MaxRetries, lastErr)
}

// processItem converts a raw table item to a typed result
func (d *DynamodbDataStore[T]) processItem(
	item map[string]types.AttributeValue,
	index int64,
	partitionKey string,
) storagemodels.StreamResult[T] {
	meta := storagemodels.StreamMeta{
		Index:        index,
		PartitionKey: partitionKey,
		Timestamp:    time.Now(),
	}

	// Make a copy of the raw item
	rawCopy := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		rawCopy[k] = v
	}

	// Extract EntityType
	var entityType string
	if attr, ok := item[entityTypeAttribute]; ok {
		if err := attributevalue.Unmarshal(attr, &entityType); err != nil {
			return storagemodels.StreamResult[T]{
				Error: fmt.Errorf("failed to unmarshal EntityType: %w", err),
				Raw:   rawCopy,
				Meta:  meta,
			}
		}
	}

	// Try to unmarshal as type T first
	var result T
	if err := attributevalue.UnmarshalMap(item, &result); err == nil {
		return storagemodels.StreamResult[T]{
			Item: result,
			Raw:  rawCopy,
			Meta: meta,
		}
	}

	// If direct unmarshal fails and we have EntityType, try the registry
	if entityType != "" {
		unmarshalFn, err := registry.GetUnmarshalFunc(entityType)
		if err == nil {
			obj, err := unmarshalFn(item)
			if err == nil {
				if typedObj, ok := obj.(T); ok {
					return storagemodels.StreamResult[T]{
						Item: typedObj,
						Raw:  rawCopy,
						Meta: meta,
					}
				}
			}
		}
	}

	// If all else fails, return error
	return storagemodels.StreamResult[T]{
		Error: fmt.Errorf("failed to unmarshal item to type %T", result),
		Raw:   rawCopy,
		Meta:  meta,
	}
}

// isRetryableError determines if a DynamoDB error is retryable
func isRetryableError(err error) bool {
	// Check for specific retryable DynamoDB errors
	switch err.(type) {
	case *types.ProvisionedThroughputExceededException:
		return true
	case *types.RequestLimitExceeded:
		return true
	case *types.InternalServerError:
		return true
	}

	// Check for AWS SDK retryable errors
	if awsErr, ok := err.(interface{ IsRetryable() bool }); ok {
		return awsErr.IsRetryable()
	}

	return false
}
