/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"sync"

	"github.com/richie6280/docstore/storagemodels"
)

// DefaultKeyAttribute is the table hash key used when none is registered
const DefaultKeyAttribute = storagemodels.IDField

// TableConfig maps a database/container pair onto a DynamoDB table
type TableConfig struct {
	// TableName is the actual table name in DynamoDB (e.g., "newDatabase-newContainer")
	TableName string
	// KeyAttribute is the table's string hash key. When it is not "id" the item id
	// is copied into it on write and stripped on read.
	KeyAttribute string
}

var (
	tableConfigsMu sync.RWMutex
	tableConfigs   = map[string]TableConfig{}
)

// RegisterTable overrides the table used for a database/container pair
func RegisterTable(databaseID, containerID string, cfg TableConfig) {
	tableConfigsMu.Lock()
	defer tableConfigsMu.Unlock()
	tableConfigs[databaseID+"/"+containerID] = cfg
}

// GetTableConfig returns the table configuration for a database/container pair.
// Unregistered pairs use "<database>-<container>" keyed by "id".
func GetTableConfig(databaseID, containerID string) TableConfig {
	tableConfigsMu.RLock()
	cfg, ok := tableConfigs[databaseID+"/"+containerID]
	tableConfigsMu.RUnlock()

	if !ok || cfg.TableName == "" {
		cfg.TableName = databaseID + "-" + containerID
	}
	if cfg.KeyAttribute == "" {
		cfg.KeyAttribute = DefaultKeyAttribute
	}
	return cfg
}
