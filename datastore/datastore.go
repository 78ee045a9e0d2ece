/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/richie6280/docstore/storagemodels"
)

// Client is a live connection to a document database service.
type Client interface {
	// Container returns a handle addressing containerID inside databaseID.
	// It performs no I/O; use Container.Exists to probe the service.
	Container(databaseID, containerID string) (Container, error)

	// CreateContainerIfNotExists creates the database and container when
	// missing. created is false when the container was already there.
	CreateContainerIfNotExists(ctx context.Context, databaseID, containerID string) (created bool, err error)

	Close() error
}

// Container is a collection of items addressed by (database, container).
type Container interface {
	DatabaseID() string

	ID() string

	Exists(ctx context.Context) (bool, error)

	ReadAll(ctx context.Context) ([]storagemodels.Item, error)

	Query(ctx context.Context, cond storagemodels.Condition) ([]storagemodels.Item, error)

	// ReadItem is a point read. A missing item yields an errors.ErrNotFound error.
	ReadItem(ctx context.Context, id string) (storagemodels.Item, error)

	// Create fails with errors.ErrAlreadyExists when the id is taken.
	Create(ctx context.Context, item storagemodels.Item) (storagemodels.Item, error)

	Upsert(ctx context.Context, item storagemodels.Item) (storagemodels.Item, error)

	// Replace fails with errors.ErrNotFound when no item has the id.
	Replace(ctx context.Context, id string, item storagemodels.Item) (storagemodels.Item, error)

	// Delete fails with errors.ErrNotFound when no item has the id.
	Delete(ctx context.Context, id string) error

	// ReadChanges returns items created or updated after token, at most max of them.
	ReadChanges(ctx context.Context, token string, max int) (storagemodels.ChangePage, error)
}
