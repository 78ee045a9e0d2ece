/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package checkpoint

import (
	"context"
	"sync"
	"time"

	"github.com/go-openapi/strfmt"
)

// Checkpoint is the last continuation a change-feed consumer persisted.
type Checkpoint struct {
	Lease        string          `json:"lease"`
	Continuation string          `json:"continuation"`
	UpdatedAt    strfmt.DateTime `json:"updatedAt"`
}

// Store persists checkpoints keyed by lease name.
type Store interface {
	// Load returns the checkpoint for lease; ok is false when none was saved.
	Load(ctx context.Context, lease string) (cp Checkpoint, ok bool, err error)

	Save(ctx context.Context, cp Checkpoint) error

	Close() error
}

// New returns a Checkpoint stamped with the current time.
func New(lease, continuation string) Checkpoint {
	return Checkpoint{
		Lease:        lease,
		Continuation: continuation,
		UpdatedAt:    strfmt.DateTime(time.Now().UTC()),
	}
}

// MemoryStore keeps checkpoints for the life of the process.
type MemoryStore struct {
	mu  sync.RWMutex
	cps map[string]Checkpoint
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cps: make(map[string]Checkpoint)}
}

func (m *MemoryStore) Load(ctx context.Context, lease string) (Checkpoint, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cp, ok := m.cps[lease]
	return cp, ok, nil
}

func (m *MemoryStore) Save(ctx context.Context, cp Checkpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cps[cp.Lease] = cp
	return nil
}

func (m *MemoryStore) Close() error { return nil }
