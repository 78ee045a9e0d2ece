/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package docstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/richie6280/docstore/datastore"
	"github.com/richie6280/docstore/storagemodels"
)

// TypedContainer provides type-safe operations for a specific type T over one container.
// T must marshal to a JSON object; its "id" attribute is the item id.
type TypedContainer[T any] struct {
	facade    *Facade
	container datastore.Container
}

// Typed creates a TypedContainer for type T
func Typed[T any](f *Facade, c datastore.Container) *TypedContainer[T] {
	return &TypedContainer[T]{facade: f, container: c}
}

// Container returns the underlying container handle
func (tc *TypedContainer[T]) Container() datastore.Container {
	return tc.container
}

// Get performs a point read. It returns nil, nil when the item does not exist.
func (tc *TypedContainer[T]) Get(ctx context.Context, id string) (*T, error) {
	item, ok, err := tc.facade.FindByDirectRead(ctx, tc.container, id)
	if err != nil || !ok {
		return nil, err
	}
	v, err := FromItem[T](item)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// List returns all items decoded as T. ok is false when the container is absent.
func (tc *TypedContainer[T]) List(ctx context.Context) ([]T, bool, error) {
	items, ok, err := tc.facade.ListAll(ctx, tc.container)
	if err != nil || !ok {
		return nil, ok, err
	}
	out, err := fromItems[T](items)
	return out, true, err
}

// Find returns items matching the condition decoded as T
func (tc *TypedContainer[T]) Find(ctx context.Context, field, operator string, value any) ([]T, error) {
	items, err := tc.facade.FindByCondition(ctx, tc.container, field, operator, value)
	if err != nil {
		return nil, err
	}
	return fromItems[T](items)
}

// Create writes v as a new item
func (tc *TypedContainer[T]) Create(ctx context.Context, v T) (Result, error) {
	item, err := ToItem(v)
	if err != nil {
		return Result{}, err
	}
	return tc.facade.Create(ctx, tc.container, item)
}

// Upsert creates or replaces v
func (tc *TypedContainer[T]) Upsert(ctx context.Context, v T) (Result, error) {
	item, err := ToItem(v)
	if err != nil {
		return Result{}, err
	}
	return tc.facade.Upsert(ctx, tc.container, item)
}

// Update merges v's top-level fields into the stored item. Only the fields v
// encodes are merged: stored fields are preserved when v omits them, which for
// struct fields requires omitempty. A field without omitempty always overwrites,
// with its zero value when unset.
func (tc *TypedContainer[T]) Update(ctx context.Context, v T) (Result, error) {
	item, err := ToItem(v)
	if err != nil {
		return Result{}, err
	}
	return tc.facade.Update(ctx, tc.container, item)
}

// Delete removes the item with id after confirmation
func (tc *TypedContainer[T]) Delete(ctx context.Context, id string) (Result, error) {
	return tc.facade.Delete(ctx, tc.container, id)
}

// ToItem converts v to an Item through its JSON encoding
func ToItem[T any](v T) (storagemodels.Item, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", v, err)
	}
	item, err := storagemodels.DecodeItem(b)
	if err != nil {
		return nil, fmt.Errorf("%T does not encode to a JSON object: %w", v, err)
	}
	return item, nil
}

// FromItem decodes an Item into T through its JSON encoding
func FromItem[T any](item storagemodels.Item) (T, error) {
	var v T
	b, err := json.Marshal(item)
	if err != nil {
		return v, fmt.Errorf("failed to marshal item: %w", err)
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return v, fmt.Errorf("failed to unmarshal item into %T: %w", v, err)
	}
	return v, nil
}

func fromItems[T any](items []storagemodels.Item) ([]T, error) {
	out := make([]T, 0, len(items))
	for _, it := range items {
		v, err := FromItem[T](it)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
