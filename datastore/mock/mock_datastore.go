/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides an in-memory implementation of the datastore interfaces for testing
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"sync"

	"github.com/richie6280/docstore/datastore"
	"github.com/richie6280/docstore/errors"
	"github.com/richie6280/docstore/registry"
	"github.com/richie6280/docstore/storagemodels"
)

// DriverName is the registry name of the in-memory driver.
const DriverName = "memory"

func init() {
	registry.RegisterDriver(DriverName, func(ctx context.Context, conn storagemodels.Connection) (datastore.Client, error) {
		return New().WithAutoCreate(true), nil
	})
}

// Client is an in-memory datastore.Client. Containers must be created with
// CreateContainer unless auto-create is enabled.
type Client struct {
	mu         sync.RWMutex
	containers map[string]*Container
	autoCreate bool
	closed     bool
}

// New creates an empty in-memory client
func New() *Client {
	return &Client{
		containers: make(map[string]*Container),
	}
}

// WithAutoCreate makes Container create missing containers on first use
func (c *Client) WithAutoCreate(on bool) *Client {
	c.autoCreate = on
	return c
}

// CreateContainer creates (or returns the existing) container
func (c *Client) CreateContainer(databaseID, containerID string) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.createLocked(databaseID, containerID)
}

// CreateContainerIfNotExists creates the container unless it is already present
func (c *Client) CreateContainerIfNotExists(ctx context.Context, databaseID, containerID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false, fmt.Errorf("memory client is closed")
	}
	if _, ok := c.containers[databaseID+"/"+containerID]; ok {
		return false, nil
	}
	c.createLocked(databaseID, containerID)
	return true, nil
}

func (c *Client) createLocked(databaseID, containerID string) *Container {
	key := databaseID + "/" + containerID
	if ct, ok := c.containers[key]; ok {
		return ct
	}
	ct := &Container{
		client:      c,
		databaseID:  databaseID,
		containerID: containerID,
		data:        make(map[string]storagemodels.Item),
	}
	c.containers[key] = ct
	return ct
}

// Container returns a handle for the container. Handles for containers that do
// not exist report Exists == false and fail every other call with ErrNotFound.
func (c *Client) Container(databaseID, containerID string) (datastore.Container, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, fmt.Errorf("memory client is closed")
	}
	key := databaseID + "/" + containerID
	if ct, ok := c.containers[key]; ok {
		return ct, nil
	}
	if c.autoCreate {
		return c.createLocked(databaseID, containerID), nil
	}
	return &missingContainer{databaseID: databaseID, containerID: containerID}, nil
}

// Close marks the client closed
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Closed reports whether Close was called
func (c *Client) Closed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

type changeRecord struct {
	seq  int64
	item storagemodels.Item
}

// Container is an in-memory datastore.Container with error injection
type Container struct {
	client      *Client
	databaseID  string
	containerID string

	mu      sync.RWMutex
	data    map[string]storagemodels.Item
	log     []changeRecord
	seq     int64
	writes  int
	deletes int

	existsError  error
	readError    error
	queryError   error
	putError     error
	deleteError  error
	changesError error
	changesFunc  func(ctx context.Context, token string, max int) (storagemodels.ChangePage, error)
}

// WithExistsError makes Exists return an error
func (m *Container) WithExistsError(err error) *Container {
	m.existsError = err
	return m
}

// WithReadError makes ReadAll and ReadItem return an error
func (m *Container) WithReadError(err error) *Container {
	m.readError = err
	return m
}

// WithQueryError makes Query return an error
func (m *Container) WithQueryError(err error) *Container {
	m.queryError = err
	return m
}

// WithPutError makes Create, Upsert and Replace return an error
func (m *Container) WithPutError(err error) *Container {
	m.putError = err
	return m
}

// WithDeleteError makes Delete return an error
func (m *Container) WithDeleteError(err error) *Container {
	m.deleteError = err
	return m
}

// WithChangesError makes ReadChanges return an error
func (m *Container) WithChangesError(err error) *Container {
	m.changesError = err
	return m
}

// WithChangesFunc replaces ReadChanges for testing
func (m *Container) WithChangesFunc(f func(ctx context.Context, token string, max int) (storagemodels.ChangePage, error)) *Container {
	m.changesFunc = f
	return m
}

func (m *Container) DatabaseID() string { return m.databaseID }

func (m *Container) ID() string { return m.containerID }

// Exists always reports true unless an error is injected
func (m *Container) Exists(ctx context.Context) (bool, error) {
	if m.existsError != nil {
		return false, m.existsError
	}
	return true, nil
}

// ReadAll returns copies of all items
func (m *Container) ReadAll(ctx context.Context) ([]storagemodels.Item, error) {
	if m.readError != nil {
		return nil, m.readError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]storagemodels.Item, 0, len(m.data))
	for _, v := range m.data {
		results = append(results, deepCopy(v))
	}
	return results, nil
}

// Query evaluates the condition against every item
func (m *Container) Query(ctx context.Context, cond storagemodels.Condition) ([]storagemodels.Item, error) {
	if m.queryError != nil {
		return nil, m.queryError
	}
	if err := cond.Validate(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]storagemodels.Item, 0)
	for _, v := range m.data {
		if Match(v, cond) {
			results = append(results, deepCopy(v))
		}
	}
	return results, nil
}

// ReadItem retrieves an item by id
func (m *Container) ReadItem(ctx context.Context, id string) (storagemodels.Item, error) {
	if m.readError != nil {
		return nil, m.readError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if v, ok := m.data[id]; ok {
		return deepCopy(v), nil
	}
	return nil, errors.NewNotFoundError("item", id)
}

// Create stores a new item and fails if the id is taken
func (m *Container) Create(ctx context.Context, item storagemodels.Item) (storagemodels.Item, error) {
	if m.putError != nil {
		return nil, m.putError
	}
	id := item.ID()
	if id == "" {
		return nil, errors.NewValidationError(storagemodels.IDField, "item id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.data[id]; exists {
		return nil, errors.NewAlreadyExistsError("item", id)
	}
	return m.storeLocked(id, item), nil
}

// Upsert creates or replaces an item
func (m *Container) Upsert(ctx context.Context, item storagemodels.Item) (storagemodels.Item, error) {
	if m.putError != nil {
		return nil, m.putError
	}
	id := item.ID()
	if id == "" {
		return nil, errors.NewValidationError(storagemodels.IDField, "item id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.storeLocked(id, item), nil
}

// Replace overwrites an existing item
func (m *Container) Replace(ctx context.Context, id string, item storagemodels.Item) (storagemodels.Item, error) {
	if m.putError != nil {
		return nil, m.putError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.data[id]; !exists {
		return nil, errors.NewNotFoundError("item", id)
	}
	item = item.Clone()
	item[storagemodels.IDField] = id
	return m.storeLocked(id, item), nil
}

// Delete removes an item by id
func (m *Container) Delete(ctx context.Context, id string) error {
	if m.deleteError != nil {
		return m.deleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.data[id]; !exists {
		return errors.NewNotFoundError("item", id)
	}
	delete(m.data, id)
	m.deletes++
	return nil
}

// ReadChanges returns writes recorded after token. Tokens are sequence numbers.
func (m *Container) ReadChanges(ctx context.Context, token string, max int) (storagemodels.ChangePage, error) {
	if m.changesFunc != nil {
		return m.changesFunc(ctx, token, max)
	}
	if m.changesError != nil {
		return storagemodels.ChangePage{}, m.changesError
	}

	var after int64
	if token != "" {
		n, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return storagemodels.ChangePage{}, errors.NewValidationError("continuation", fmt.Sprintf("malformed token %q", token))
		}
		after = n
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	page := storagemodels.ChangePage{Continuation: token}
	for _, rec := range m.log {
		if rec.seq <= after {
			continue
		}
		if max > 0 && len(page.Items) >= max {
			break
		}
		page.Items = append(page.Items, deepCopy(rec.item))
		page.Continuation = strconv.FormatInt(rec.seq, 10)
	}
	return page, nil
}

func (m *Container) storeLocked(id string, item storagemodels.Item) storagemodels.Item {
	stored := deepCopy(item)
	m.data[id] = stored
	m.writes++
	m.seq++
	m.log = append(m.log, changeRecord{seq: m.seq, item: stored})
	return deepCopy(stored)
}

// Helper methods for testing

// SetData directly sets the stored items (for testing). It does not count as writes.
func (m *Container) SetData(items ...storagemodels.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]storagemodels.Item, len(items))
	for _, it := range items {
		m.data[it.ID()] = deepCopy(it)
	}
}

// GetData returns a copy of the stored items keyed by id (for testing)
func (m *Container) GetData() map[string]storagemodels.Item {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]storagemodels.Item, len(m.data))
	for k, v := range m.data {
		result[k] = deepCopy(v)
	}
	return result
}

// Count returns the number of stored items
func (m *Container) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Writes returns how many create/upsert/replace calls succeeded
func (m *Container) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

// Deletes returns how many delete calls succeeded
func (m *Container) Deletes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.deletes
}

// Clear removes all data and the change log
func (m *Container) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]storagemodels.Item)
	m.log = nil
}

// Match evaluates cond against item the way the remote services do:
// a missing field never matches, numbers compare numerically, strings lexically.
func Match(item storagemodels.Item, cond storagemodels.Condition) bool {
	v, ok := item.Lookup(cond.Field)
	if !ok {
		return false
	}
	left, right := normalize(v), normalize(cond.Value)

	switch cond.Op {
	case storagemodels.OpEqual:
		return reflect.DeepEqual(left, right)
	case storagemodels.OpNotEqual:
		return !reflect.DeepEqual(left, right)
	}

	c, ok := compare(left, right)
	if !ok {
		return false
	}
	switch cond.Op {
	case storagemodels.OpLess:
		return c < 0
	case storagemodels.OpLessOrEqual:
		return c <= 0
	case storagemodels.OpGreater:
		return c > 0
	case storagemodels.OpGreaterOrEqual:
		return c >= 0
	}
	return false
}

func compare(a, b any) (int, bool) {
	switch x := a.(type) {
	case float64:
		y, ok := b.(float64)
		if !ok {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// normalize routes a value through JSON so that Go ints and JSON numbers compare equal.
func normalize(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}

func deepCopy(it storagemodels.Item) storagemodels.Item {
	if it == nil {
		return nil
	}
	out, ok := normalize(map[string]any(it)).(map[string]any)
	if !ok {
		return it.Clone()
	}
	return storagemodels.Item(out)
}

type missingContainer struct {
	databaseID  string
	containerID string
}

func (m *missingContainer) notFound() error {
	return errors.NewNotFoundError("container", m.databaseID+"/"+m.containerID)
}

func (m *missingContainer) DatabaseID() string { return m.databaseID }

func (m *missingContainer) ID() string { return m.containerID }

func (m *missingContainer) Exists(ctx context.Context) (bool, error) { return false, nil }

func (m *missingContainer) ReadAll(ctx context.Context) ([]storagemodels.Item, error) {
	return nil, m.notFound()
}

func (m *missingContainer) Query(ctx context.Context, cond storagemodels.Condition) ([]storagemodels.Item, error) {
	return nil, m.notFound()
}

func (m *missingContainer) ReadItem(ctx context.Context, id string) (storagemodels.Item, error) {
	return nil, m.notFound()
}

func (m *missingContainer) Create(ctx context.Context, item storagemodels.Item) (storagemodels.Item, error) {
	return nil, m.notFound()
}

func (m *missingContainer) Upsert(ctx context.Context, item storagemodels.Item) (storagemodels.Item, error) {
	return nil, m.notFound()
}

func (m *missingContainer) Replace(ctx context.Context, id string, item storagemodels.Item) (storagemodels.Item, error) {
	return nil, m.notFound()
}

func (m *missingContainer) Delete(ctx context.Context, id string) error {
	return m.notFound()
}

func (m *missingContainer) ReadChanges(ctx context.Context, token string, max int) (storagemodels.ChangePage, error) {
	return storagemodels.ChangePage{}, m.notFound()
}
