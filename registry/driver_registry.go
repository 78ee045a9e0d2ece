/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/samber/lo"

	"github.com/richie6280/docstore/datastore"
	"github.com/richie6280/docstore/storagemodels"
)

// OpenFunc builds a Client from connection settings.
type OpenFunc func(ctx context.Context, conn storagemodels.Connection) (datastore.Client, error)

var (
	driverRegistry = make(map[string]OpenFunc)
	driverMu       sync.RWMutex
)

// RegisterDriver registers an open function under a driver name.
// If a driver is already registered for the given name, it panics to prevent accidental overrides.
func RegisterDriver(name string, fn OpenFunc) {
	driverMu.Lock()
	defer driverMu.Unlock()

	if _, exists := driverRegistry[name]; exists {
		panic(fmt.Sprintf("driver registry: driver %q already registered", name))
	}
	driverRegistry[name] = fn
}

// GetDriver returns the open function registered under name.
func GetDriver(name string) (OpenFunc, error) {
	driverMu.RLock()
	defer driverMu.RUnlock()

	fn, ok := driverRegistry[name]
	if !ok {
		return nil, fmt.Errorf("driver registry: no driver registered for %q (have %v)", name, driversLocked())
	}
	return fn, nil
}

// Drivers lists registered driver names in sorted order.
func Drivers() []string {
	driverMu.RLock()
	defer driverMu.RUnlock()
	return driversLocked()
}

func driversLocked() []string {
	names := lo.Keys(driverRegistry)
	slices.Sort(names)
	return names
}

// Open resolves conn.Driver and opens a client with it.
func Open(ctx context.Context, conn storagemodels.Connection) (datastore.Client, error) {
	fn, err := GetDriver(conn.Driver)
	if err != nil {
		return nil, err
	}
	return fn(ctx, conn)
}
