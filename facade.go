/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package docstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/richie6280/docstore/checkpoint"
	"github.com/richie6280/docstore/datastore"
	"github.com/richie6280/docstore/errors"
	"github.com/richie6280/docstore/metrics"
	"github.com/richie6280/docstore/registry"
	"github.com/richie6280/docstore/storagemodels"
)

// Facade performs CRUD operations against a document database through one bound client.
// It is safe for concurrent use; check-then-act sequences are not atomic.
type Facade struct {
	mu     sync.RWMutex
	client datastore.Client

	logger      logrus.FieldLogger
	confirmer   Confirmer
	checkpoints checkpoint.Store
	metrics     *metrics.Recorder
	newID       func() string
}

// Option configures a Facade.
type Option func(*Facade)

// WithLogger sets the logger. Defaults to the logrus standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(f *Facade) { f.logger = l }
}

// WithConfirmer sets the confirmer consulted before deletes.
func WithConfirmer(c Confirmer) Option {
	return func(f *Facade) { f.confirmer = c }
}

// WithCheckpointStore sets where change-feed continuations are persisted.
func WithCheckpointStore(s checkpoint.Store) Option {
	return func(f *Facade) { f.checkpoints = s }
}

// WithMetrics records every operation on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(f *Facade) { f.metrics = r }
}

// WithClient binds an already opened client, skipping Initialize.
func WithClient(c datastore.Client) Option {
	return func(f *Facade) { f.client = c }
}

// WithIDGenerator replaces the UUID generator used for items without an id.
func WithIDGenerator(gen func() string) Option {
	return func(f *Facade) { f.newID = gen }
}

// New creates a Facade. Call Initialize unless WithClient was given.
func New(opts ...Option) *Facade {
	f := &Facade{
		logger:      logrus.StandardLogger(),
		checkpoints: checkpoint.NewMemoryStore(),
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Initialize opens a client for conn through the driver registry and binds it,
// closing any previously bound client.
func (f *Facade) Initialize(ctx context.Context, conn storagemodels.Connection) error {
	client, err := registry.Open(ctx, conn)
	if err != nil {
		return fmt.Errorf("failed to open %s client: %w", conn.Driver, err)
	}

	f.mu.Lock()
	prev := f.client
	f.client = client
	f.mu.Unlock()

	if prev != nil {
		if err := prev.Close(); err != nil {
			f.logger.WithError(err).Warn("closing previous client")
		}
	}
	f.logger.WithFields(logrus.Fields{
		"driver":   conn.Driver,
		"endpoint": conn.Endpoint,
	}).Info("document store client initialized")
	return nil
}

// Close releases the bound client. The facade must be initialized again before reuse.
func (f *Facade) Close() error {
	f.mu.Lock()
	client := f.client
	f.client = nil
	f.mu.Unlock()

	if client == nil {
		return nil
	}
	return client.Close()
}

func (f *Facade) boundClient() (datastore.Client, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.client == nil {
		return nil, errors.ErrNotInitialized
	}
	return f.client, nil
}

// ResolveContainer returns a handle for containerID in databaseID after probing
// that it exists. ok is false when the service reports it absent; transport
// failures are returned as errors rather than folded into absence.
func (f *Facade) ResolveContainer(ctx context.Context, databaseID, containerID string) (datastore.Container, bool, error) {
	if err := validateContainerIDs(databaseID, containerID); err != nil {
		return nil, false, err
	}

	client, err := f.boundClient()
	if err != nil {
		return nil, false, err
	}
	ct, err := client.Container(databaseID, containerID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to address container %s/%s: %w", databaseID, containerID, err)
	}

	exists, err := ct.Exists(ctx)
	if err != nil {
		f.logger.WithError(err).WithFields(containerFields(ct)).Warn("container existence probe failed")
		return nil, false, fmt.Errorf("failed to probe container %s/%s: %w", databaseID, containerID, err)
	}
	if !exists {
		f.logger.WithFields(containerFields(ct)).Debug("container does not exist")
		return nil, false, nil
	}
	return ct, true, nil
}

// Provision creates databaseID/containerID when it does not exist and then writes
// each seed item through Create; seeds whose id is already stored are left as is.
// created reports whether the container was new.
func (f *Facade) Provision(ctx context.Context, databaseID, containerID string, seed ...storagemodels.Item) (datastore.Container, bool, error) {
	if err := validateContainerIDs(databaseID, containerID); err != nil {
		return nil, false, err
	}
	client, err := f.boundClient()
	if err != nil {
		return nil, false, err
	}

	created, err := client.CreateContainerIfNotExists(ctx, databaseID, containerID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to provision container %s/%s: %w", databaseID, containerID, err)
	}

	ct, ok, err := f.ResolveContainer(ctx, databaseID, containerID)
	if err != nil {
		return nil, created, err
	}
	if !ok {
		return nil, created, errors.NewNotFoundError("container", databaseID+"/"+containerID)
	}

	for _, item := range seed {
		if _, err := f.Create(ctx, ct, item); err != nil {
			return ct, created, fmt.Errorf("failed to seed container %s/%s: %w", databaseID, containerID, err)
		}
	}

	f.logger.WithFields(containerFields(ct)).WithFields(logrus.Fields{
		"created": created,
		"seeded":  len(seed),
	}).Info("container provisioned")
	return ct, created, nil
}

// ListAll returns every item in the container. ok is false when the container is absent.
func (f *Facade) ListAll(ctx context.Context, c datastore.Container) ([]storagemodels.Item, bool, error) {
	if err := requireContainer(c); err != nil {
		return nil, false, err
	}
	items, err := c.ReadAll(ctx)
	if errors.IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to list items: %w", err)
	}
	if items == nil {
		items = []storagemodels.Item{}
	}
	return items, true, nil
}

// FindByID returns the items whose id equals itemID through a parameterized query.
func (f *Facade) FindByID(ctx context.Context, c datastore.Container, itemID string) ([]storagemodels.Item, error) {
	if err := requireContainer(c); err != nil {
		return nil, err
	}
	items, err := c.Query(ctx, storagemodels.IDEquals(itemID))
	if err != nil {
		return nil, fmt.Errorf("failed to query item %q: %w", itemID, err)
	}
	if items == nil {
		items = []storagemodels.Item{}
	}
	return items, nil
}

// FindByDirectRead performs a point read. ok is false when the item does not exist.
func (f *Facade) FindByDirectRead(ctx context.Context, c datastore.Container, itemID string) (storagemodels.Item, bool, error) {
	if err := requireContainer(c); err != nil {
		return nil, false, err
	}
	item, err := c.ReadItem(ctx, itemID)
	if errors.IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read item %q: %w", itemID, err)
	}
	return item, true, nil
}

// FindByCondition returns items where field compares to value with operator.
// Field and operator are validated against a whitelist; value is bound as a parameter.
func (f *Facade) FindByCondition(ctx context.Context, c datastore.Container, field, operator string, value any) ([]storagemodels.Item, error) {
	if err := requireContainer(c); err != nil {
		return nil, err
	}
	cond, err := storagemodels.NewCondition(field, operator, value)
	if err != nil {
		return nil, err
	}
	items, err := c.Query(ctx, cond)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s %s: %w", field, operator, err)
	}
	if items == nil {
		items = []storagemodels.Item{}
	}
	return items, nil
}

// IsDuplicate reports whether the full listing contains an item with itemID.
// An absent or empty container yields false.
func (f *Facade) IsDuplicate(ctx context.Context, c datastore.Container, itemID string) (bool, error) {
	items, _, err := f.ListAll(ctx, c)
	if err != nil {
		return false, err
	}
	return lo.ContainsBy(items, func(it storagemodels.Item) bool {
		return it.ID() == itemID
	}), nil
}

// Create writes a new item. An item whose id is already taken is not written
// and yields OutcomeConflict. Items without an id, or with an empty one, get a
// generated id; a non-string id is rejected.
func (f *Facade) Create(ctx context.Context, c datastore.Container, item storagemodels.Item) (Result, error) {
	start := time.Now()
	res, err := f.create(ctx, c, item)
	f.record(c, "create", start, res, err)
	return res, err
}

func (f *Facade) create(ctx context.Context, c datastore.Container, item storagemodels.Item) (Result, error) {
	if err := requireContainer(c); err != nil {
		return Result{}, err
	}
	id, err := item.CheckID()
	if err != nil {
		return Result{}, err
	}

	item = item.Clone()
	if item == nil {
		item = storagemodels.Item{}
	}

	if id != "" {
		existing, err := f.FindByID(ctx, c, id)
		if err != nil {
			return Result{}, err
		}
		if len(existing) > 0 {
			return Result{Outcome: OutcomeConflict, Item: existing[0], Message: MessageConflict}, nil
		}
	} else {
		item[storagemodels.IDField] = f.newID()
	}

	stored, err := c.Create(ctx, item)
	if errors.IsAlreadyExists(err) {
		return Result{Outcome: OutcomeConflict, Message: MessageConflict}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to create item: %w", err)
	}
	return Result{Outcome: OutcomeCreated, Item: stored}, nil
}

// Upsert creates the item or replaces the one with the same id.
func (f *Facade) Upsert(ctx context.Context, c datastore.Container, item storagemodels.Item) (Result, error) {
	start := time.Now()
	res, err := f.upsert(ctx, c, item)
	f.record(c, "upsert", start, res, err)
	return res, err
}

func (f *Facade) upsert(ctx context.Context, c datastore.Container, item storagemodels.Item) (Result, error) {
	if err := requireContainer(c); err != nil {
		return Result{}, err
	}
	id, err := item.CheckID()
	if err != nil {
		return Result{}, err
	}

	item = item.Clone()
	if item == nil {
		item = storagemodels.Item{}
	}
	if id == "" {
		item[storagemodels.IDField] = f.newID()
	}

	stored, err := c.Upsert(ctx, item)
	if err != nil {
		return Result{}, fmt.Errorf("failed to upsert item: %w", err)
	}
	return Result{Outcome: OutcomeUpserted, Item: stored}, nil
}

// Update merges item's top-level fields into the stored item with the same id
// and replaces it. Without an id, or when no such item exists, it creates.
func (f *Facade) Update(ctx context.Context, c datastore.Container, item storagemodels.Item) (Result, error) {
	start := time.Now()
	res, err := f.update(ctx, c, item)
	f.record(c, "update", start, res, err)
	return res, err
}

func (f *Facade) update(ctx context.Context, c datastore.Container, item storagemodels.Item) (Result, error) {
	if err := requireContainer(c); err != nil {
		return Result{}, err
	}
	id, err := item.CheckID()
	if err != nil {
		return Result{}, err
	}
	if id == "" {
		return f.create(ctx, c, item)
	}

	existing, err := f.FindByID(ctx, c, id)
	if err != nil {
		return Result{}, err
	}
	if len(existing) == 0 {
		return f.create(ctx, c, item)
	}

	merged := existing[0].Merge(item)
	stored, err := c.Replace(ctx, id, merged)
	if err != nil {
		return Result{}, fmt.Errorf("failed to replace item %q: %w", id, err)
	}
	return Result{Outcome: OutcomeUpdated, Item: stored}, nil
}

// Delete removes the item with itemID after asking the facade's confirmer.
func (f *Facade) Delete(ctx context.Context, c datastore.Container, itemID string) (Result, error) {
	return f.DeleteWith(ctx, c, itemID, f.confirmer)
}

// DeleteWith removes the item with itemID after asking confirmer. A missing item
// yields OutcomeNotFound; a nil confirmer yields OutcomeAwaitingConfirmation.
// Neither performs a remote mutation.
func (f *Facade) DeleteWith(ctx context.Context, c datastore.Container, itemID string, confirmer Confirmer) (Result, error) {
	start := time.Now()
	res, err := f.delete(ctx, c, itemID, confirmer)
	f.record(c, "delete", start, res, err)
	return res, err
}

func (f *Facade) delete(ctx context.Context, c datastore.Container, itemID string, confirmer Confirmer) (Result, error) {
	if err := requireContainer(c); err != nil {
		return Result{}, err
	}
	existing, err := f.FindByID(ctx, c, itemID)
	if err != nil {
		return Result{}, err
	}
	if len(existing) == 0 {
		return Result{Outcome: OutcomeNotFound, Message: MessageNotFound}, nil
	}

	if confirmer == nil {
		return Result{Outcome: OutcomeAwaitingConfirmation, Item: existing[0], Message: MessageAwaitingApproval}, nil
	}
	ok, err := confirmer.Confirm(ctx, DeletePrompt, existing[0])
	if err != nil {
		return Result{}, fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		return Result{Outcome: OutcomeDeclined, Item: existing[0], Message: MessageDeleteDeclined}, nil
	}

	if err := c.Delete(ctx, itemID); err != nil {
		if errors.IsNotFound(err) {
			return Result{Outcome: OutcomeNotFound, Message: MessageNotFound}, nil
		}
		return Result{}, fmt.Errorf("failed to delete item %q: %w", itemID, err)
	}
	return Result{Outcome: OutcomeDeleted, Item: existing[0], Message: MessageDeleted}, nil
}

func (f *Facade) record(c datastore.Container, op string, start time.Time, res Result, err error) {
	outcome := res.Outcome.String()
	if err != nil {
		outcome = "error"
	}
	f.metrics.Observe(op, outcome, start)

	entry := f.logger.WithFields(containerFields(c)).WithFields(logrus.Fields{
		"operation": op,
		"outcome":   outcome,
	})
	if res.Item != nil {
		entry = entry.WithField("id", res.Item.ID())
	}
	switch {
	case err != nil:
		entry.WithError(err).Error("document operation failed")
	case res.Written():
		entry.Info("document operation completed")
	default:
		entry.Debug("document operation skipped")
	}
}

func validateContainerIDs(databaseID, containerID string) error {
	if databaseID == "" {
		return errors.NewValidationError("databaseId", "database id is required")
	}
	if containerID == "" {
		return errors.NewValidationError("containerId", "container id is required")
	}
	return nil
}

func requireContainer(c datastore.Container) error {
	if c == nil {
		return errors.NewValidationError("container", "container is required")
	}
	return nil
}

func containerFields(c datastore.Container) logrus.Fields {
	if c == nil {
		return logrus.Fields{}
	}
	return logrus.Fields{
		"database":  c.DatabaseID(),
		"container": c.ID(),
	}
}
