/*
Package datastore defines the driver interfaces behind the docstore facade.

A Client is opened from a storagemodels.Connection by a registered driver and
hands out Container handles:

	type Container interface {
	    Exists(ctx context.Context) (bool, error)
	    ReadAll(ctx context.Context) ([]storagemodels.Item, error)
	    Query(ctx context.Context, cond storagemodels.Condition) ([]storagemodels.Item, error)
	    ReadItem(ctx context.Context, id string) (storagemodels.Item, error)
	    Create(ctx context.Context, item storagemodels.Item) (storagemodels.Item, error)
	    Upsert(ctx context.Context, item storagemodels.Item) (storagemodels.Item, error)
	    Replace(ctx context.Context, id string, item storagemodels.Item) (storagemodels.Item, error)
	    Delete(ctx context.Context, id string) error
	    ReadChanges(ctx context.Context, token string, max int) (storagemodels.ChangePage, error)
	}

Implementations:
  - cosmos: Azure Cosmos DB through the official azcosmos SDK
  - ddb: Amazon DynamoDB, one table per container, change feed over DynamoDB Streams
  - mock: In-memory implementation for testing and local runs

Drivers report failures with the semantic types of the errors package so the
facade can tell an absent item from a transport failure.
*/
package datastore
