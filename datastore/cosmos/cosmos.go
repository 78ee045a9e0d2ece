/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cosmos

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
	"github.com/sirupsen/logrus"

	"github.com/richie6280/docstore/datastore"
	"github.com/richie6280/docstore/errors"
	"github.com/richie6280/docstore/registry"
	"github.com/richie6280/docstore/storagemodels"
)

// DriverName is the registry name of the Cosmos DB driver
const DriverName = "cosmos"

func init() {
	registry.RegisterDriver(DriverName, Open)
}

// Client implements datastore.Client on an Azure Cosmos DB account
type Client struct {
	client *azcosmos.Client
}

// Open connects to the account at conn.Endpoint with the primary key conn.Key.
// Empty values are accepted here; the service rejects them on the first request.
func Open(ctx context.Context, conn storagemodels.Connection) (datastore.Client, error) {
	cred, err := azcosmos.NewKeyCredential(conn.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to create key credential: %w", err)
	}
	client, err := azcosmos.NewClientWithKey(conn.Endpoint, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Cosmos DB client: %w", err)
	}

	entry := logrus.WithField("endpoint", conn.Endpoint)
	if conn.Endpoint == "" || conn.Key == "" {
		entry.Warn("Cosmos DB client initialized without endpoint or key")
	} else {
		entry.Info("Cosmos DB client initialized")
	}
	return &Client{client: client}, nil
}

// Container returns a handle for containerID in databaseID. The partition key
// path comes from the partition key registry.
func (c *Client) Container(databaseID, containerID string) (datastore.Container, error) {
	cc, err := c.client.NewContainer(databaseID, containerID)
	if err != nil {
		return nil, fmt.Errorf("failed to create container client: %w", err)
	}
	return &Container{
		cc:           cc,
		databaseID:   databaseID,
		containerID:  containerID,
		partitionKey: registry.PartitionKeyField(registry.GetPartitionKey(containerID)),
	}, nil
}

// CreateContainerIfNotExists creates the database and then the container,
// partitioned on the path from the partition key registry. 409 means it exists.
func (c *Client) CreateContainerIfNotExists(ctx context.Context, databaseID, containerID string) (bool, error) {
	if _, err := c.client.CreateDatabase(ctx, azcosmos.DatabaseProperties{ID: databaseID}, nil); err != nil && statusCode(err) != http.StatusConflict {
		return false, errors.NewRemoteError("create database", err)
	}

	db, err := c.client.NewDatabase(databaseID)
	if err != nil {
		return false, fmt.Errorf("failed to create database client: %w", err)
	}
	if _, err := db.CreateContainer(ctx, containerProperties(containerID), nil); err != nil {
		if statusCode(err) == http.StatusConflict {
			return false, nil
		}
		return false, errors.NewRemoteError("create container", err)
	}

	logrus.WithFields(logrus.Fields{
		"database":  databaseID,
		"container": containerID,
	}).Info("Cosmos DB container created")
	return true, nil
}

func containerProperties(containerID string) azcosmos.ContainerProperties {
	return azcosmos.ContainerProperties{
		ID: containerID,
		PartitionKeyDefinition: azcosmos.PartitionKeyDefinition{
			Paths: []string{registry.GetPartitionKey(containerID)},
		},
	}
}

// Close is a no-op; the SDK pipeline has nothing to release
func (c *Client) Close() error { return nil }

// Container implements datastore.Container on a Cosmos DB container
type Container struct {
	cc           *azcosmos.ContainerClient
	databaseID   string
	containerID  string
	partitionKey string
}

func (c *Container) DatabaseID() string { return c.databaseID }

func (c *Container) ID() string { return c.containerID }

// Exists reads the container's properties. 404 is reported as false.
func (c *Container) Exists(ctx context.Context) (bool, error) {
	if _, err := c.cc.Read(ctx, nil); err != nil {
		if statusCode(err) == http.StatusNotFound {
			return false, nil
		}
		return false, errors.NewRemoteError("read container", err)
	}
	return true, nil
}

// ReadAll runs SELECT * FROM c across all partitions
func (c *Container) ReadAll(ctx context.Context) ([]storagemodels.Item, error) {
	return c.query(ctx, "read all", "SELECT * FROM c", nil)
}

// Query runs a parameterized condition query across all partitions
func (c *Container) Query(ctx context.Context, cond storagemodels.Condition) ([]storagemodels.Item, error) {
	text, params, err := renderCondition(cond)
	if err != nil {
		return nil, err
	}
	return c.query(ctx, "query items", text, params)
}

func (c *Container) query(ctx context.Context, op, text string, params []azcosmos.QueryParameter) ([]storagemodels.Item, error) {
	raws, err := c.queryRaw(ctx, op, text, params)
	if err != nil {
		return nil, err
	}
	items := make([]storagemodels.Item, 0, len(raws))
	for _, raw := range raws {
		item, err := storagemodels.DecodeItem(raw)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (c *Container) queryRaw(ctx context.Context, op, text string, params []azcosmos.QueryParameter) ([][]byte, error) {
	pager := c.cc.NewQueryItemsPager(text, azcosmos.NewPartitionKey(), &azcosmos.QueryOptions{
		QueryParameters: params,
	})

	var raws [][]byte
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, c.mapError(op, "", err)
		}
		raws = append(raws, page.Items...)
	}
	return raws, nil
}

// ReadItem performs a point read, resolving the partition key from the id when
// the container is not partitioned on id
func (c *Container) ReadItem(ctx context.Context, id string) (storagemodels.Item, error) {
	pk, err := c.partitionKeyFor(ctx, id)
	if err != nil {
		return nil, err
	}
	resp, err := c.cc.ReadItem(ctx, pk, id, nil)
	if err != nil {
		return nil, c.mapError("read item", id, err)
	}
	return storagemodels.DecodeItem(resp.Value)
}

// Create inserts the item; 409 Conflict maps to AlreadyExists
func (c *Container) Create(ctx context.Context, item storagemodels.Item) (storagemodels.Item, error) {
	id, pk, body, err := c.prepare(item)
	if err != nil {
		return nil, err
	}
	resp, err := c.cc.CreateItem(ctx, pk, body, nil)
	if err != nil {
		return nil, c.mapError("create item", id, err)
	}
	return written(resp.Value, item)
}

// Upsert creates or replaces the item
func (c *Container) Upsert(ctx context.Context, item storagemodels.Item) (storagemodels.Item, error) {
	id, pk, body, err := c.prepare(item)
	if err != nil {
		return nil, err
	}
	resp, err := c.cc.UpsertItem(ctx, pk, body, nil)
	if err != nil {
		return nil, c.mapError("upsert item", id, err)
	}
	return written(resp.Value, item)
}

// Replace overwrites the item with id; 404 maps to NotFound
func (c *Container) Replace(ctx context.Context, id string, item storagemodels.Item) (storagemodels.Item, error) {
	item = item.Clone()
	if item == nil {
		item = storagemodels.Item{}
	}
	item[storagemodels.IDField] = id

	_, pk, body, err := c.prepare(item)
	if err != nil {
		return nil, err
	}
	resp, err := c.cc.ReplaceItem(ctx, pk, id, body, nil)
	if err != nil {
		return nil, c.mapError("replace item", id, err)
	}
	return written(resp.Value, item)
}

// Delete removes the item with id; 404 maps to NotFound
func (c *Container) Delete(ctx context.Context, id string) error {
	pk, err := c.partitionKeyFor(ctx, id)
	if err != nil {
		return err
	}
	if _, err := c.cc.DeleteItem(ctx, pk, id, nil); err != nil {
		return c.mapError("delete item", id, err)
	}
	return nil
}

func (c *Container) prepare(item storagemodels.Item) (string, azcosmos.PartitionKey, []byte, error) {
	id := item.ID()
	if id == "" {
		return "", azcosmos.PartitionKey{}, nil, errors.NewValidationError(storagemodels.IDField, "item id is required")
	}
	body, err := json.Marshal(item)
	if err != nil {
		return "", azcosmos.PartitionKey{}, nil, fmt.Errorf("failed to marshal item: %w", err)
	}
	pk, err := partitionKeyValue(body, c.partitionKey)
	if err != nil {
		return "", azcosmos.PartitionKey{}, nil, err
	}
	return id, pk, body, nil
}

// partitionKeyFor returns the partition key of the stored item with id. When the
// container is partitioned on a different field, the item is looked up first.
func (c *Container) partitionKeyFor(ctx context.Context, id string) (azcosmos.PartitionKey, error) {
	if c.partitionKey == storagemodels.IDField {
		return azcosmos.NewPartitionKeyString(id), nil
	}

	raws, err := c.queryRaw(ctx, "resolve partition key", "SELECT * FROM c WHERE c.id = @value",
		[]azcosmos.QueryParameter{{Name: "@value", Value: id}})
	if err != nil {
		return azcosmos.PartitionKey{}, err
	}
	if len(raws) == 0 {
		return azcosmos.PartitionKey{}, errors.NewNotFoundError("item", id)
	}
	return partitionKeyValue(raws[0], c.partitionKey)
}

// written returns the stored document when the service echoed it back, the
// submitted item otherwise
func written(body []byte, submitted storagemodels.Item) (storagemodels.Item, error) {
	if len(body) == 0 {
		return submitted.Clone(), nil
	}
	return storagemodels.DecodeItem(body)
}

func statusCode(err error) int {
	var respErr *azcore.ResponseError
	if stderrors.As(err, &respErr) {
		return respErr.StatusCode
	}
	return 0
}

// mapError converts SDK failures into the package's typed errors
func (c *Container) mapError(op, id string, err error) error {
	switch statusCode(err) {
	case http.StatusConflict:
		return errors.NewAlreadyExistsError("item", id)
	case http.StatusNotFound:
		if id == "" {
			return errors.NewNotFoundError("container", c.databaseID+"/"+c.containerID)
		}
		return errors.NewNotFoundError("item", id)
	case http.StatusPreconditionFailed:
		return errors.NewConditionFailedError(op, err.Error())
	case http.StatusBadRequest:
		return errors.NewValidationError(op, err.Error())
	}
	return errors.NewRemoteError(op, err)
}
