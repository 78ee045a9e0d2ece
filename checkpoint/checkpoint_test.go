/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package checkpoint

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStores(t *testing.T) {
	ctx := context.Background()

	stores := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"file": func(t *testing.T) Store {
			s, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "checkpoints.json"))
			require.NoError(t, err)
			return s
		},
		"sqlite": func(t *testing.T) Store {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "checkpoints.db"))
			require.NoError(t, err)
			return s
		},
	}

	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			defer s.Close()

			_, ok, err := s.Load(ctx, "newDatabase/newContainer")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Save(ctx, New("newDatabase/newContainer", "7")))
			require.NoError(t, s.Save(ctx, New("other", "1")))
			require.NoError(t, s.Save(ctx, New("newDatabase/newContainer", "9")))

			cp, ok, err := s.Load(ctx, "newDatabase/newContainer")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "9", cp.Continuation)
			assert.False(t, time.Time(cp.UpdatedAt).IsZero())

			cp, ok, err = s.Load(ctx, "other")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "1", cp.Continuation)
		})
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "checkpoints.json")

	s, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, New("lease", `{"shard-1":"42"}`)))

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	cp, ok, err := reopened.Load(ctx, "lease")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"shard-1":"42"}`, cp.Continuation)
}
