/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/suparena/tablestore/datastore"
	tserrors "github.com/suparena/tablestore/errors"
	"github.com/suparena/tablestore/registry"
)

// entityTypeAttribute is the item attribute carrying the registry type tag.
const entityTypeAttribute = "EntityType"

// DynamodbDataStore implements datastore.DataStore[T] by using AWS DynamoDB
// as the underlying data store. Partition and row keys map onto the table's
// key attributes through the type's registered key map; conditional writes
// give Add and Update their occupancy semantics.
type DynamodbDataStore[T datastore.Entity] struct {
	client    *sdk.Client
	tableName string
	keyMap    registry.KeyMap
	logger    *zap.Logger
}

// NewDynamoDBClient initializes a DynamoDB client from the given settings.
func NewDynamoDBClient(ctx context.Context, cfg Config) (*sdk.Client, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return sdk.NewFromConfig(awsCfg), nil
}

// NewDynamodbDataStore constructs a new DynamodbDataStore for type T. A key
// map for T must be registered before construction, typically by generated
// init() code.
func NewDynamodbDataStore[T datastore.Entity](ctx context.Context, cfg Config) (*DynamodbDataStore[T], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	keyMap, ok := registry.GetKeyMap[T]()
	if !ok {
		var zero T
		return nil, fmt.Errorf("no key map registered for entity type %T", zero)
	}

	client, err := NewDynamoDBClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
	}

	cfg.Logger.Info("DynamoDB store initialized",
		zap.String("table", cfg.TableName),
		zap.String("region", cfg.Region),
		zap.String("entityType", keyMap.EntityType))

	return &DynamodbDataStore[T]{
		client:    client,
		tableName: cfg.TableName,
		keyMap:    keyMap,
		logger:    cfg.Logger,
	}, nil
}

// keyAttributeNames maps the #pk/#sk expression placeholders used by every
// conditional expression in this package.
func (d *DynamodbDataStore[T]) keyAttributeNames() map[string]string {
	return map[string]string{
		"#pk": d.keyMap.PartitionKeyAttribute,
		"#sk": d.keyMap.RowKeyAttribute,
	}
}

// storageKey builds the table key for a caller-side key pair.
func (d *DynamodbDataStore[T]) storageKey(partitionKey, rowKey string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		d.keyMap.PartitionKeyAttribute: &types.AttributeValueMemberS{Value: d.keyMap.ExpandPartitionKey(partitionKey)},
		d.keyMap.RowKeyAttribute:       &types.AttributeValueMemberS{Value: d.keyMap.ExpandRowKey(rowKey)},
	}
}

// marshalItem renders an entity as a table item with key and type attributes.
func (d *DynamodbDataStore[T]) marshalItem(entity T) (map[string]types.AttributeValue, string, string, error) {
	pk, rk, err := datastore.EntityKeys(entity)
	if err != nil {
		return nil, "", "", err
	}

	item, err := attributevalue.MarshalMap(entity)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to marshal entity: %w", err)
	}

	item[d.keyMap.PartitionKeyAttribute] = &types.AttributeValueMemberS{Value: d.keyMap.ExpandPartitionKey(pk)}
	item[d.keyMap.RowKeyAttribute] = &types.AttributeValueMemberS{Value: d.keyMap.ExpandRowKey(rk)}
	if d.keyMap.EntityType != "" {
		item[entityTypeAttribute] = &types.AttributeValueMemberS{Value: d.keyMap.EntityType}
	}
	return item, pk, rk, nil
}

// unmarshalItem decodes a table item into the entity type. Key and type
// attributes without matching struct fields are ignored by the decoder.
func (d *DynamodbDataStore[T]) unmarshalItem(item map[string]types.AttributeValue) (*T, error) {
	result := new(T)
	if err := attributevalue.UnmarshalMap(item, result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return result, nil
}

// Get retrieves the entity at the key pair using a point read.
func (d *DynamodbDataStore[T]) Get(ctx context.Context, partitionKey, rowKey string) (*T, error) {
	out, err := d.client.GetItem(ctx, &sdk.GetItemInput{
		TableName: &d.tableName,
		Key:       d.storageKey(partitionKey, rowKey),
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem error: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, tserrors.NewNotFoundError(partitionKey, rowKey)
	}
	return d.unmarshalItem(out.Item)
}

// Add inserts the entity only if its key pair is vacant. The occupancy test
// runs server-side as a condition expression, so concurrent inserts of the
// same key pair resolve to exactly one winner.
func (d *DynamodbDataStore[T]) Add(ctx context.Context, entity T) error {
	item, pk, rk, err := d.marshalItem(entity)
	if err != nil {
		return err
	}

	_, err = d.client.PutItem(ctx, &sdk.PutItemInput{
		TableName:                &d.tableName,
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#pk) AND attribute_not_exists(#sk)"),
		ExpressionAttributeNames: d.keyAttributeNames(),
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return tserrors.NewAlreadyExistsError(pk, rk)
		}
		return fmt.Errorf("PutItem failed: %w", err)
	}
	return nil
}

// AddOrUpdate unconditionally sets the entity at its key pair.
func (d *DynamodbDataStore[T]) AddOrUpdate(ctx context.Context, entity T) error {
	item, _, _, err := d.marshalItem(entity)
	if err != nil {
		return err
	}

	_, err = d.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: &d.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("PutItem failed: %w", err)
	}
	return nil
}

// Update replaces the entity at its key pair only if one is currently
// stored there.
func (d *DynamodbDataStore[T]) Update(ctx context.Context, entity T) error {
	item, pk, rk, err := d.marshalItem(entity)
	if err != nil {
		return err
	}

	_, err = d.client.PutItem(ctx, &sdk.PutItemInput{
		TableName:                &d.tableName,
		Item:                     item,
		ConditionExpression:      aws.String("attribute_exists(#pk) AND attribute_exists(#sk)"),
		ExpressionAttributeNames: d.keyAttributeNames(),
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return tserrors.NewNotFoundError(pk, rk)
		}
		return fmt.Errorf("PutItem failed: %w", err)
	}
	return nil
}

// Delete removes the entity addressed by the argument's keys and returns
// the stored value that was removed.
func (d *DynamodbDataStore[T]) Delete(ctx context.Context, entity T) (*T, error) {
	pk, rk, err := datastore.EntityKeys(entity)
	if err != nil {
		return nil, err
	}
	return d.DeleteKey(ctx, pk, rk)
}

// DeleteKey removes the entity at the key pair and returns it. The removal
// is conditioned on the item existing so that a miss reports NotFound
// instead of deleting nothing silently.
func (d *DynamodbDataStore[T]) DeleteKey(ctx context.Context, partitionKey, rowKey string) (*T, error) {
	out, err := d.client.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName:                &d.tableName,
		Key:                      d.storageKey(partitionKey, rowKey),
		ConditionExpression:      aws.String("attribute_exists(#pk) AND attribute_exists(#sk)"),
		ExpressionAttributeNames: d.keyAttributeNames(),
		ReturnValues:             types.ReturnValueAllOld,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return nil, tserrors.NewNotFoundError(partitionKey, rowKey)
		}
		return nil, fmt.Errorf("failed to delete item in DynamoDB: %w", err)
	}
	return d.unmarshalItem(out.Attributes)
}
