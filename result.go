/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package docstore

import (
	"context"

	"github.com/richie6280/docstore/storagemodels"
)

// Outcome is how a write request was resolved.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeCreated
	OutcomeUpserted
	OutcomeUpdated
	OutcomeDeleted
	// OutcomeConflict means an item with the same id already exists; nothing was written.
	OutcomeConflict
	// OutcomeNotFound means the target item does not exist; nothing was written.
	OutcomeNotFound
	// OutcomeDeclined means the confirmer refused the delete.
	OutcomeDeclined
	// OutcomeAwaitingConfirmation means a delete needs confirmation and no confirmer is set.
	OutcomeAwaitingConfirmation
)

var outcomeNames = map[Outcome]string{
	OutcomeUnknown:              "unknown",
	OutcomeCreated:              "created",
	OutcomeUpserted:             "upserted",
	OutcomeUpdated:              "updated",
	OutcomeDeleted:              "deleted",
	OutcomeConflict:             "conflict",
	OutcomeNotFound:             "not_found",
	OutcomeDeclined:             "declined",
	OutcomeAwaitingConfirmation: "awaiting_confirmation",
}

func (o Outcome) String() string {
	if s, ok := outcomeNames[o]; ok {
		return s
	}
	return "unknown"
}

// Messages shown to users for each notice-worthy outcome.
const (
	MessageConflict         = "Item with the same ID already exists."
	MessageNotFound         = "Item doesn't exist"
	MessageDeleted          = "Item deleted"
	MessageDeleteDeclined   = "Delete cancelled"
	MessageAwaitingApproval = "Delete requires confirmation"
	DeletePrompt            = "Are you sure you want to delete?"
)

// Result reports the outcome of a write together with the item involved.
type Result struct {
	Outcome Outcome
	// Item is the stored item for successful writes, the existing item for
	// conflicts and pending or declined deletes, nil otherwise.
	Item    storagemodels.Item
	Message string
}

// Written reports whether the request changed remote state.
func (r Result) Written() bool {
	switch r.Outcome {
	case OutcomeCreated, OutcomeUpserted, OutcomeUpdated, OutcomeDeleted:
		return true
	}
	return false
}

// Confirmer decides whether a destructive operation may proceed.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string, item storagemodels.Item) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string, item storagemodels.Item) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string, item storagemodels.Item) (bool, error) {
	return f(ctx, prompt, item)
}

// AlwaysConfirm approves every request.
var AlwaysConfirm = ConfirmFunc(func(context.Context, string, storagemodels.Item) (bool, error) {
	return true, nil
})

// NeverConfirm declines every request.
var NeverConfirm = ConfirmFunc(func(context.Context, string, storagemodels.Item) (bool, error) {
	return false, nil
})
