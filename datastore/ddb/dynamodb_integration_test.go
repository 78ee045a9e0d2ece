//go:build integration
// +build integration

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/joho/godotenv"

	"github.com/richie6280/docstore/datastore"
	"github.com/richie6280/docstore/datastore/testmodels"
	"github.com/richie6280/docstore/errors"
	"github.com/richie6280/docstore/storagemodels"
)

func getRatingSystemContainer(t *testing.T) datastore.Container {
	t.Helper()
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, proceeding with environment variables")
	}

	conn := storagemodels.Connection{
		Driver:   DriverName,
		Key:      os.Getenv("AWS_ACCESS_KEY"),
		Secret:   os.Getenv("AWS_SECRET_KEY"),
		Region:   os.Getenv("AWS_REGION"),
		Endpoint: os.Getenv("AWS_DDB_ENDPOINT"),
	}
	if conn.Region == "" {
		t.Skip("AWS_REGION not set")
	}

	client, err := Open(context.Background(), conn)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	ct, err := client.Container(os.Getenv("AWS_DDB_DATABASE"), os.Getenv("AWS_DDB_CONTAINER"))
	if err != nil {
		t.Fatalf("Container failed: %v", err)
	}
	exists, err := ct.Exists(context.Background())
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Skipf("table %s does not exist", ct.(*Container).TableName())
	}
	return ct
}

func TestDynamoDBRatingSystemLifecycle(t *testing.T) {
	ctx := context.Background()
	ct := getRatingSystemContainer(t)

	now := strfmt.DateTime(time.Now())
	rs := testmodels.RatingSystem{
		ID:          "TTOakville",
		Name:        "Oakville Table Tennis Ranking System (test)",
		Description: "This is a test rating system for Oakville Table Tennis Club",
		CreatedAt:   &now,
	}
	item := storagemodels.Item{
		"id":          rs.ID,
		"name":        rs.Name,
		"description": rs.Description,
		"createdAt":   rs.CreatedAt.String(),
	}

	_ = ct.Delete(ctx, rs.ID)

	if _, err := ct.Create(ctx, item); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := ct.Create(ctx, item); !errors.IsAlreadyExists(err) {
		t.Fatalf("Expected already exists, got: %v", err)
	}

	found, err := ct.Query(ctx, storagemodels.IDEquals(rs.ID))
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("Expected one item, got %d", len(found))
	}
	t.Logf("Rating System: %v", found[0])

	if err := ct.Delete(ctx, rs.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	t.Logf("Rating System deleted")
}
