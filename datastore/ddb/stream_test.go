/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"testing"

	streamtypes "github.com/aws/aws-sdk-go-v2/service/dynamodbstreams/types"

	"github.com/richie6280/docstore/errors"
	"github.com/richie6280/docstore/storagemodels"
)

func image(id string) map[string]streamtypes.AttributeValue {
	return map[string]streamtypes.AttributeValue{
		"id": &streamtypes.AttributeValueMemberS{Value: id},
	}
}

func newStreamContainer(t *testing.T) (*Container, *fakeDynamo, *fakeStreams) {
	t.Helper()
	api := newFakeDynamo("db-items", DefaultKeyAttribute)
	api.streamARN = "arn:aws:dynamodb:us-east-1:000000000000:table/db-items/stream/1"
	streams := newFakeStreams()

	ct, err := NewClient(api, streams).Container("db", "items")
	if err != nil {
		t.Fatalf("Container failed: %v", err)
	}
	return ct.(*Container), api, streams
}

func pageIDs(page storagemodels.ChangePage) []string {
	ids := make([]string, 0, len(page.Items))
	for _, it := range page.Items {
		ids = append(ids, it.ID())
	}
	return ids
}

func TestReadChanges(t *testing.T) {
	ctx := context.Background()
	ct, _, streams := newStreamContainer(t)

	streams.add("shard-1", streamtypes.OperationTypeInsert, 1, image("a"))
	streams.add("shard-1", streamtypes.OperationTypeModify, 2, image("a"))
	streams.add("shard-1", streamtypes.OperationTypeRemove, 3, nil)
	streams.add("shard-2", streamtypes.OperationTypeInsert, 4, image("b"))

	page, err := ct.ReadChanges(ctx, "", 2)
	if err != nil {
		t.Fatalf("ReadChanges failed: %v", err)
	}
	if got := pageIDs(page); len(got) != 2 || got[0] != "a" || got[1] != "a" {
		t.Fatalf("Unexpected first page: %v", got)
	}

	page, err = ct.ReadChanges(ctx, page.Continuation, 10)
	if err != nil {
		t.Fatalf("ReadChanges failed: %v", err)
	}
	if got := pageIDs(page); len(got) != 1 || got[0] != "b" {
		t.Fatalf("Expected only the second shard's insert, got: %v", got)
	}

	state, err := decodeStreamToken(page.Continuation)
	if err != nil {
		t.Fatalf("decodeStreamToken failed: %v", err)
	}
	if state.Shards["shard-1"] != "000003" || state.Shards["shard-2"] != "000004" {
		t.Fatalf("Unexpected shard positions: %v", state.Shards)
	}

	page, err = ct.ReadChanges(ctx, page.Continuation, 10)
	if err != nil {
		t.Fatalf("ReadChanges failed: %v", err)
	}
	if len(page.Items) != 0 {
		t.Fatalf("Expected empty page at the head of the stream, got: %v", pageIDs(page))
	}
}

func TestReadChangesRestartsTrimmedShard(t *testing.T) {
	ctx := context.Background()
	ct, api, streams := newStreamContainer(t)
	streams.add("shard-1", streamtypes.OperationTypeInsert, 1, image("a"))
	streams.trimmed["shard-1"] = true

	token, err := streamToken{StreamARN: api.streamARN, Shards: map[string]string{"shard-1": "000000"}}.encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	page, err := ct.ReadChanges(ctx, token, 10)
	if err != nil {
		t.Fatalf("ReadChanges failed: %v", err)
	}
	if got := pageIDs(page); len(got) != 1 || got[0] != "a" {
		t.Fatalf("Expected replay from the trim horizon, got: %v", got)
	}
}

func TestReadChangesResetsOnNewStream(t *testing.T) {
	ctx := context.Background()
	ct, _, streams := newStreamContainer(t)
	streams.add("shard-1", streamtypes.OperationTypeInsert, 1, image("a"))

	token, _ := streamToken{StreamARN: "arn:old", Shards: map[string]string{"shard-1": "000001"}}.encode()
	page, err := ct.ReadChanges(ctx, token, 10)
	if err != nil {
		t.Fatalf("ReadChanges failed: %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("Expected positions from an old stream to be discarded, got: %v", pageIDs(page))
	}
}

func TestReadChangesErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("malformed token", func(t *testing.T) {
		ct, _, _ := newStreamContainer(t)
		if _, err := ct.ReadChanges(ctx, "{not json", 10); !errors.IsValidationError(err) {
			t.Fatalf("Expected validation error, got: %v", err)
		}
	})

	t.Run("stream disabled", func(t *testing.T) {
		ct, api, _ := newStreamContainer(t)
		api.streamARN = ""
		if _, err := ct.ReadChanges(ctx, "", 10); !errors.IsUnsupported(err) {
			t.Fatalf("Expected unsupported error, got: %v", err)
		}
	})

	t.Run("no streams client", func(t *testing.T) {
		ct := newTestContainer(t, newFakeDynamo("db-items", DefaultKeyAttribute), "db", "items")
		if _, err := ct.ReadChanges(ctx, "", 10); !errors.IsUnsupported(err) {
			t.Fatalf("Expected unsupported error, got: %v", err)
		}
	})

	t.Run("keys only stream", func(t *testing.T) {
		ct, _, streams := newStreamContainer(t)
		streams.add("shard-1", streamtypes.OperationTypeInsert, 1, nil)
		if _, err := ct.ReadChanges(ctx, "", 10); !errors.IsUnsupported(err) {
			t.Fatalf("Expected unsupported error, got: %v", err)
		}
	})
}
