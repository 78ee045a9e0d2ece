/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock_test

import (
	"context"
	"testing"

	"github.com/richie6280/docstore/datastore/mock"
	"github.com/richie6280/docstore/errors"
	"github.com/richie6280/docstore/storagemodels"
)

func TestMockContainer(t *testing.T) {
	ctx := context.Background()

	t.Run("BasicOperations", func(t *testing.T) {
		ct := mock.New().CreateContainer("db", "items")

		created, err := ct.Create(ctx, storagemodels.Item{"id": "123", "name": "Test"})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if created.ID() != "123" {
			t.Fatalf("Created item mismatch: %+v", created)
		}

		retrieved, err := ct.ReadItem(ctx, "123")
		if err != nil {
			t.Fatalf("ReadItem failed: %v", err)
		}
		if retrieved["name"] != "Test" {
			t.Fatalf("Retrieved item mismatch: %+v", retrieved)
		}

		if _, err := ct.Create(ctx, storagemodels.Item{"id": "123"}); !errors.IsAlreadyExists(err) {
			t.Fatalf("Expected already exists error, got: %v", err)
		}

		if err := ct.Delete(ctx, "123"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := ct.ReadItem(ctx, "123"); !errors.IsNotFound(err) {
			t.Fatalf("Expected not found error, got: %v", err)
		}
		if err := ct.Delete(ctx, "123"); !errors.IsNotFound(err) {
			t.Fatalf("Expected not found error on second delete, got: %v", err)
		}
	})

	t.Run("ReplaceRequiresExistingItem", func(t *testing.T) {
		ct := mock.New().CreateContainer("db", "items")

		if _, err := ct.Replace(ctx, "missing", storagemodels.Item{"a": 1}); !errors.IsNotFound(err) {
			t.Fatalf("Expected not found error, got: %v", err)
		}

		ct.SetData(storagemodels.Item{"id": "1", "a": 1})
		replaced, err := ct.Replace(ctx, "1", storagemodels.Item{"b": 2})
		if err != nil {
			t.Fatalf("Replace failed: %v", err)
		}
		if replaced.ID() != "1" || replaced["b"] != float64(2) {
			t.Fatalf("Replaced item mismatch: %+v", replaced)
		}
		if _, has := replaced["a"]; has {
			t.Fatalf("Replace must not merge: %+v", replaced)
		}
	})

	t.Run("ErrorSimulation", func(t *testing.T) {
		ct := mock.New().CreateContainer("db", "items")

		putErr := errors.NewValidationError("name", "required")
		ct.WithPutError(putErr)
		if _, err := ct.Upsert(ctx, storagemodels.Item{"id": "1"}); err != putErr {
			t.Fatalf("Expected put error, got: %v", err)
		}

		deleteErr := errors.NewConditionFailedError("delete", "etag mismatch")
		ct.WithDeleteError(deleteErr)
		if err := ct.Delete(ctx, "1"); err != deleteErr {
			t.Fatalf("Expected delete error, got: %v", err)
		}
	})

	t.Run("QueryConditions", func(t *testing.T) {
		ct := mock.New().CreateContainer("db", "items")
		ct.SetData(
			storagemodels.Item{"id": "1", "name": "a", "age": 10, "detail": map[string]any{"city": "x"}},
			storagemodels.Item{"id": "2", "name": "b", "age": 30},
			storagemodels.Item{"id": "3", "name": "c"},
		)

		tests := []struct {
			name  string
			cond  storagemodels.Condition
			count int
		}{
			{"equal string", storagemodels.Condition{Field: "name", Op: storagemodels.OpEqual, Value: "a"}, 1},
			{"equal int against json number", storagemodels.Condition{Field: "age", Op: storagemodels.OpEqual, Value: 30}, 1},
			{"greater", storagemodels.Condition{Field: "age", Op: storagemodels.OpGreater, Value: 5}, 2},
			{"missing field never matches", storagemodels.Condition{Field: "age", Op: storagemodels.OpNotEqual, Value: 10}, 1},
			{"nested path", storagemodels.Condition{Field: "detail.city", Op: storagemodels.OpEqual, Value: "x"}, 1},
			{"type mismatch", storagemodels.Condition{Field: "name", Op: storagemodels.OpLess, Value: 3}, 0},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				results, err := ct.Query(ctx, tt.cond)
				if err != nil {
					t.Fatalf("Query failed: %v", err)
				}
				if len(results) != tt.count {
					t.Fatalf("Expected %d results, got %d: %v", tt.count, len(results), results)
				}
			})
		}
	})

	t.Run("ChangeLog", func(t *testing.T) {
		ct := mock.New().CreateContainer("db", "items")
		for _, id := range []string{"1", "2", "3"} {
			if _, err := ct.Upsert(ctx, storagemodels.Item{"id": id}); err != nil {
				t.Fatalf("Upsert failed: %v", err)
			}
		}

		page, err := ct.ReadChanges(ctx, "", 2)
		if err != nil {
			t.Fatalf("ReadChanges failed: %v", err)
		}
		if len(page.Items) != 2 || page.Continuation != "2" {
			t.Fatalf("Unexpected first page: %+v", page)
		}

		page, err = ct.ReadChanges(ctx, page.Continuation, 2)
		if err != nil {
			t.Fatalf("ReadChanges failed: %v", err)
		}
		if len(page.Items) != 1 || page.Items[0].ID() != "3" || page.Continuation != "3" {
			t.Fatalf("Unexpected second page: %+v", page)
		}

		page, err = ct.ReadChanges(ctx, page.Continuation, 2)
		if err != nil {
			t.Fatalf("ReadChanges failed: %v", err)
		}
		if len(page.Items) != 0 || page.Continuation != "3" {
			t.Fatalf("Expected empty page keeping the token, got: %+v", page)
		}

		if _, err := ct.ReadChanges(ctx, "bogus", 2); !errors.IsValidationError(err) {
			t.Fatalf("Expected validation error for bad token, got: %v", err)
		}
	})

	t.Run("HelperMethods", func(t *testing.T) {
		ct := mock.New().CreateContainer("db", "items")
		ct.SetData(storagemodels.Item{"id": "1"}, storagemodels.Item{"id": "2"})

		if ct.Count() != 2 {
			t.Fatalf("Expected count 2, got %d", ct.Count())
		}
		if ct.Writes() != 0 {
			t.Fatalf("SetData must not count as writes, got %d", ct.Writes())
		}
		if len(ct.GetData()) != 2 {
			t.Fatalf("Expected 2 items in data, got %d", len(ct.GetData()))
		}

		ct.Clear()
		if ct.Count() != 0 {
			t.Fatalf("Expected count 0 after clear, got %d", ct.Count())
		}
	})
}

func TestMockClient(t *testing.T) {
	ctx := context.Background()

	client := mock.New()
	ct, err := client.Container("db", "absent")
	if err != nil {
		t.Fatalf("Container failed: %v", err)
	}
	exists, err := ct.Exists(ctx)
	if err != nil || exists {
		t.Fatalf("Expected absent container, got exists=%v err=%v", exists, err)
	}
	if _, err := ct.ReadAll(ctx); !errors.IsNotFound(err) {
		t.Fatalf("Expected not found from absent container, got: %v", err)
	}

	auto := mock.New().WithAutoCreate(true)
	ct, _ = auto.Container("db", "fresh")
	if exists, _ := ct.Exists(ctx); !exists {
		t.Fatal("Auto-created container should exist")
	}

	if err := auto.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := auto.Container("db", "fresh"); err == nil {
		t.Fatal("Expected error after Close")
	}
}

func TestMockCreateContainerIfNotExists(t *testing.T) {
	ctx := context.Background()
	client := mock.New()

	created, err := client.CreateContainerIfNotExists(ctx, "db", "items")
	if err != nil || !created {
		t.Fatalf("Expected container to be created, got created=%v err=%v", created, err)
	}

	ct, _ := client.Container("db", "items")
	if exists, _ := ct.Exists(ctx); !exists {
		t.Fatal("Created container should exist")
	}
	if _, err := ct.Upsert(ctx, storagemodels.Item{"id": "1"}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	created, err = client.CreateContainerIfNotExists(ctx, "db", "items")
	if err != nil || created {
		t.Fatalf("Expected existing container to be kept, got created=%v err=%v", created, err)
	}
	if client.CreateContainer("db", "items").Count() != 1 {
		t.Fatal("Existing container data must survive")
	}

	client.Close()
	if _, err := client.CreateContainerIfNotExists(ctx, "db", "other"); err == nil {
		t.Fatal("Expected error after Close")
	}
}
