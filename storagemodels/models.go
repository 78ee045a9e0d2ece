/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/richie6280/docstore/errors"
)

// IDField is the attribute that carries an item's unique identifier.
const IDField = "id"

// DefaultPartitionKeyPath is used for containers without a registered partition key.
const DefaultPartitionKeyPath = "/id"

// Item is a JSON-like document stored in a container.
type Item map[string]any

// ID returns the item's id when it is a non-empty string.
func (it Item) ID() string {
	if it == nil {
		return ""
	}
	id, _ := it[IDField].(string)
	return id
}

// CheckID returns the item's id. An absent or empty id yields "" and no error;
// an id of any other type than string is a ValidationError.
func (it Item) CheckID() (string, error) {
	raw, ok := it[IDField]
	if !ok {
		return "", nil
	}
	id, isString := raw.(string)
	if !isString {
		return "", errors.NewValidationError(IDField, fmt.Sprintf("id must be a string, got %T", raw))
	}
	return id, nil
}

// HasID reports whether the item carries a non-empty string id.
func (it Item) HasID() bool {
	return it.ID() != ""
}

// Clone returns a shallow copy of the item.
func (it Item) Clone() Item {
	if it == nil {
		return nil
	}
	return lo.Assign(it)
}

// Merge returns a new item holding the receiver's top-level fields overwritten by
// incoming's. Nested values are replaced wholesale.
func (it Item) Merge(incoming Item) Item {
	return lo.Assign(it, incoming)
}

// Lookup resolves a dotted field path ("detail.age") against the item.
func (it Item) Lookup(path string) (any, bool) {
	var cur any = map[string]any(it)
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Item:
		return m, true
	}
	return nil, false
}

// DecodeItem decodes a raw JSON object into an Item.
func DecodeItem(raw []byte) (Item, error) {
	var it Item
	if err := json.Unmarshal(raw, &it); err != nil {
		return nil, fmt.Errorf("failed to decode item: %w", err)
	}
	return it, nil
}

// Connection holds what a driver needs to reach the remote service.
type Connection struct {
	// Driver names the registered driver ("cosmos", "dynamodb", "memory").
	Driver string `yaml:"driver" json:"driver"`
	// Endpoint is the account URI (Cosmos) or an optional endpoint override (DynamoDB).
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	// Key is the account key (Cosmos) or access key id (DynamoDB).
	Key string `yaml:"key" json:"-"`
	// Secret is the secret access key (DynamoDB only).
	Secret string `yaml:"secret" json:"-"`
	// Region is the AWS region (DynamoDB only).
	Region string `yaml:"region" json:"region"`
}

// ChangePage is one read from a container's change feed.
type ChangePage struct {
	// Items created or updated since the previous continuation, oldest first.
	Items []Item
	// Continuation resumes the feed right after Items.
	Continuation string
}
