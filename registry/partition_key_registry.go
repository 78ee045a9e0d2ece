/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"strings"
	"sync"

	"github.com/richie6280/docstore/storagemodels"
)

// Partition key paths per container id, e.g. "orders" -> "/customerId".

var (
	partitionKeyRegistry = make(map[string]string)
	mu                   sync.RWMutex
)

// RegisterPartitionKey associates a container id with its partition key path.
func RegisterPartitionKey(containerID, path string) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	mu.Lock()
	defer mu.Unlock()
	partitionKeyRegistry[containerID] = path
}

// GetPartitionKey returns the partition key path for containerID,
// falling back to storagemodels.DefaultPartitionKeyPath.
func GetPartitionKey(containerID string) string {
	mu.RLock()
	defer mu.RUnlock()
	if p, ok := partitionKeyRegistry[containerID]; ok {
		return p
	}
	return storagemodels.DefaultPartitionKeyPath
}

// PartitionKeyField converts a path such as "/detail/region" to "detail.region".
func PartitionKeyField(path string) string {
	return strings.ReplaceAll(strings.TrimPrefix(path, "/"), "/", ".")
}
