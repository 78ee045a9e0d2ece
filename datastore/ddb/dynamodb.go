/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/dynamodbstreams"
	"github.com/sirupsen/logrus"

	"github.com/richie6280/docstore/datastore"
	"github.com/richie6280/docstore/errors"
	"github.com/richie6280/docstore/registry"
	"github.com/richie6280/docstore/storagemodels"
)

// DriverName is the registry name of the DynamoDB driver
const DriverName = "dynamodb"

// tableActiveTimeout bounds the wait for a newly created table to become ACTIVE
const tableActiveTimeout = 2 * time.Minute

func init() {
	registry.RegisterDriver(DriverName, Open)
}

// API is the subset of the DynamoDB client used by the driver
type API interface {
	DescribeTable(ctx context.Context, params *sdk.DescribeTableInput, optFns ...func(*sdk.Options)) (*sdk.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *sdk.CreateTableInput, optFns ...func(*sdk.Options)) (*sdk.CreateTableOutput, error)
	Scan(ctx context.Context, params *sdk.ScanInput, optFns ...func(*sdk.Options)) (*sdk.ScanOutput, error)
	GetItem(ctx context.Context, params *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *sdk.DeleteItemInput, optFns ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error)
}

// StreamsAPI is the subset of the DynamoDB Streams client used for change feeds
type StreamsAPI interface {
	DescribeStream(ctx context.Context, params *dynamodbstreams.DescribeStreamInput, optFns ...func(*dynamodbstreams.Options)) (*dynamodbstreams.DescribeStreamOutput, error)
	GetShardIterator(ctx context.Context, params *dynamodbstreams.GetShardIteratorInput, optFns ...func(*dynamodbstreams.Options)) (*dynamodbstreams.GetShardIteratorOutput, error)
	GetRecords(ctx context.Context, params *dynamodbstreams.GetRecordsInput, optFns ...func(*dynamodbstreams.Options)) (*dynamodbstreams.GetRecordsOutput, error)
}

// Client implements datastore.Client on DynamoDB. Each container is a table.
type Client struct {
	api     API
	streams StreamsAPI
}

// NewClient wraps already configured SDK clients
func NewClient(api API, streams StreamsAPI) *Client {
	return &Client{api: api, streams: streams}
}

// Open builds SDK clients from a connection. Key and Secret are static
// credentials; when both are empty the default AWS credential chain is used.
// Endpoint overrides the service endpoint (DynamoDB Local, LocalStack).
func Open(ctx context.Context, conn storagemodels.Connection) (datastore.Client, error) {
	if conn.Region == "" {
		return nil, errors.NewValidationError("region", "AWS region is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(conn.Region)}
	if conn.Key != "" || conn.Secret != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conn.Key, conn.Secret, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	api := sdk.NewFromConfig(cfg, func(o *sdk.Options) {
		if conn.Endpoint != "" {
			o.BaseEndpoint = aws.String(conn.Endpoint)
		}
	})
	streams := dynamodbstreams.NewFromConfig(cfg, func(o *dynamodbstreams.Options) {
		if conn.Endpoint != "" {
			o.BaseEndpoint = aws.String(conn.Endpoint)
		}
	})

	logrus.WithFields(logrus.Fields{
		"region":   conn.Region,
		"endpoint": conn.Endpoint,
	}).Info("DynamoDB client initialized")
	return NewClient(api, streams), nil
}

// Container returns a handle for the table mapped to databaseID/containerID
func (c *Client) Container(databaseID, containerID string) (datastore.Container, error) {
	return &Container{
		client:      c,
		databaseID:  databaseID,
		containerID: containerID,
		table:       GetTableConfig(databaseID, containerID),
	}, nil
}

// CreateContainerIfNotExists creates the table mapped to databaseID/containerID.
// The key attribute becomes a string hash key; the table is billed on demand and
// streams NEW_IMAGE records for the change feed. It waits until the table is ACTIVE.
func (c *Client) CreateContainerIfNotExists(ctx context.Context, databaseID, containerID string) (bool, error) {
	table := GetTableConfig(databaseID, containerID)
	if _, err := c.api.CreateTable(ctx, createTableInput(table)); err != nil {
		var inUse *types.ResourceInUseException
		if stderrors.As(err, &inUse) {
			return false, nil
		}
		return false, errors.NewRemoteError("create table", err)
	}

	waiter := sdk.NewTableExistsWaiter(c.api)
	if err := waiter.Wait(ctx, &sdk.DescribeTableInput{TableName: aws.String(table.TableName)}, tableActiveTimeout); err != nil {
		return true, errors.NewRemoteError("wait for table", err)
	}

	logrus.WithField("table", table.TableName).Info("DynamoDB table created")
	return true, nil
}

func createTableInput(table TableConfig) *sdk.CreateTableInput {
	return &sdk.CreateTableInput{
		TableName: aws.String(table.TableName),
		AttributeDefinitions: []types.AttributeDefinition{{
			AttributeName: aws.String(table.KeyAttribute),
			AttributeType: types.ScalarAttributeTypeS,
		}},
		KeySchema: []types.KeySchemaElement{{
			AttributeName: aws.String(table.KeyAttribute),
			KeyType:       types.KeyTypeHash,
		}},
		BillingMode: types.BillingModePayPerRequest,
		StreamSpecification: &types.StreamSpecification{
			StreamEnabled:  aws.Bool(true),
			StreamViewType: types.StreamViewTypeNewImage,
		},
	}
}

// Close is a no-op; the SDK clients hold no connections that need releasing
func (c *Client) Close() error { return nil }

// Container implements datastore.Container on a single DynamoDB table
type Container struct {
	client      *Client
	databaseID  string
	containerID string
	table       TableConfig
}

func (d *Container) DatabaseID() string { return d.databaseID }

func (d *Container) ID() string { return d.containerID }

// TableName returns the DynamoDB table backing the container
func (d *Container) TableName() string { return d.table.TableName }

// Exists describes the table. A missing table is reported as false, any other
// failure as an error.
func (d *Container) Exists(ctx context.Context) (bool, error) {
	_, err := d.client.api.DescribeTable(ctx, &sdk.DescribeTableInput{
		TableName: aws.String(d.table.TableName),
	})
	if err != nil {
		var rnf *types.ResourceNotFoundException
		if stderrors.As(err, &rnf) {
			return false, nil
		}
		return false, errors.NewRemoteError("describe table", err)
	}
	return true, nil
}

// ReadAll scans the whole table
func (d *Container) ReadAll(ctx context.Context) ([]storagemodels.Item, error) {
	return d.scan(ctx, &sdk.ScanInput{TableName: aws.String(d.table.TableName)})
}

// Query scans the table with a filter built from cond
func (d *Container) Query(ctx context.Context, cond storagemodels.Condition) ([]storagemodels.Item, error) {
	filter, err := d.buildFilter(cond)
	if err != nil {
		return nil, err
	}
	return d.scan(ctx, filter.scanInput(d.table.TableName))
}

func (d *Container) scan(ctx context.Context, input *sdk.ScanInput) ([]storagemodels.Item, error) {
	results := make([]storagemodels.Item, 0)

	paginator := sdk.NewScanPaginator(d.client.api, input)
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, d.mapError("scan", "", err)
		}
		for _, raw := range out.Items {
			item, err := d.decode(raw)
			if err != nil {
				return nil, err
			}
			results = append(results, item)
		}
	}
	return results, nil
}

// ReadItem performs a consistent GetItem on the id
func (d *Container) ReadItem(ctx context.Context, id string) (storagemodels.Item, error) {
	out, err := d.client.api.GetItem(ctx, &sdk.GetItemInput{
		TableName:      aws.String(d.table.TableName),
		Key:            d.key(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, d.mapError("get item", id, err)
	}
	if out.Item == nil {
		return nil, errors.NewNotFoundError("item", id)
	}
	return d.decode(out.Item)
}

// Create puts the item only when no item with its key exists
func (d *Container) Create(ctx context.Context, item storagemodels.Item) (storagemodels.Item, error) {
	return d.put(ctx, "create item", item, "attribute_not_exists(#pk)")
}

// Upsert puts the item unconditionally
func (d *Container) Upsert(ctx context.Context, item storagemodels.Item) (storagemodels.Item, error) {
	return d.put(ctx, "upsert item", item, "")
}

// Replace puts the item only when an item with id already exists
func (d *Container) Replace(ctx context.Context, id string, item storagemodels.Item) (storagemodels.Item, error) {
	item = item.Clone()
	if item == nil {
		item = storagemodels.Item{}
	}
	item[storagemodels.IDField] = id
	return d.put(ctx, "replace item", item, "attribute_exists(#pk)")
}

func (d *Container) put(ctx context.Context, op string, item storagemodels.Item, condition string) (storagemodels.Item, error) {
	id := item.ID()
	if id == "" {
		return nil, errors.NewValidationError(storagemodels.IDField, "item id is required")
	}

	av, err := d.encode(item)
	if err != nil {
		return nil, err
	}

	input := &sdk.PutItemInput{
		TableName: aws.String(d.table.TableName),
		Item:      av,
	}
	if condition != "" {
		input.ConditionExpression = aws.String(condition)
		input.ExpressionAttributeNames = map[string]string{"#pk": d.table.KeyAttribute}
	}

	if _, err := d.client.api.PutItem(ctx, input); err != nil {
		return nil, d.mapError(op, id, err)
	}
	return item.Clone(), nil
}

// Delete removes the item, failing with NotFound when it does not exist
func (d *Container) Delete(ctx context.Context, id string) error {
	_, err := d.client.api.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName:                aws.String(d.table.TableName),
		Key:                      d.key(id),
		ConditionExpression:      aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": d.table.KeyAttribute},
	})
	if err != nil {
		return d.mapError("delete item", id, err)
	}
	return nil
}

func (d *Container) key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		d.table.KeyAttribute: &types.AttributeValueMemberS{Value: id},
	}
}

// encode marshals the item and injects the hash key when it is not the id field
func (d *Container) encode(item storagemodels.Item) (map[string]types.AttributeValue, error) {
	av, err := attributevalue.MarshalMap(map[string]any(item))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal item: %w", err)
	}
	if d.table.KeyAttribute != storagemodels.IDField {
		av[d.table.KeyAttribute] = &types.AttributeValueMemberS{Value: item.ID()}
	}
	return av, nil
}

// decode unmarshals a raw item and removes an injected hash key
func (d *Container) decode(raw map[string]types.AttributeValue) (storagemodels.Item, error) {
	if d.table.KeyAttribute != storagemodels.IDField {
		if _, ok := raw[d.table.KeyAttribute]; ok {
			trimmed := make(map[string]types.AttributeValue, len(raw))
			for k, v := range raw {
				if k != d.table.KeyAttribute {
					trimmed[k] = v
				}
			}
			raw = trimmed
		}
	}

	var item storagemodels.Item
	if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return item, nil
}

// mapError converts SDK failures into the package's typed errors
func (d *Container) mapError(op, id string, err error) error {
	var rnf *types.ResourceNotFoundException
	if stderrors.As(err, &rnf) {
		return errors.NewNotFoundError("container", d.databaseID+"/"+d.containerID)
	}

	var cfe *types.ConditionalCheckFailedException
	if stderrors.As(err, &cfe) {
		switch op {
		case "create item":
			return errors.NewAlreadyExistsError("item", id)
		case "replace item", "delete item":
			return errors.NewNotFoundError("item", id)
		}
		return errors.NewConditionFailedError(op, err.Error())
	}

	return errors.NewRemoteError(op, err)
}
