//go:build integration
// +build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/tordrt/docstore"
)

// sqliteLocation uses SQLITE_TEST_PATH if set, otherwise a fresh temp file
func sqliteLocation(t *testing.T) string {
	if path := os.Getenv("SQLITE_TEST_PATH"); path != "" {
		return "sqlite://" + path
	}
	return "sqlite://" + filepath.Join(t.TempDir(), "integration.db")
}

func TestSQLiteDocumentLifecycle(t *testing.T) {
	runDocumentLifecycle(t, sqliteLocation(t))
}

func TestSQLiteIntegerKey(t *testing.T) {
	runIntegerKey(t, sqliteLocation(t))
}

func TestSQLiteCaseSensitivity(t *testing.T) {
	runCaseSensitivity(t, sqliteLocation(t))
}

func TestSQLiteMigrationAcrossConnections(t *testing.T) {
	ctx := context.Background()
	location := sqliteLocation(t)
	name := uniqueTable("items")

	first := connect(t, location, docstore.Definition{TableName: name, Indexes: []string{"a"}})
	table, err := first.Table(name)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := table.Create(ctx, docstore.Document{"id": "x", "a": 1, "b": 2}); err != nil {
		t.Fatalf("Failed to create document: %v", err)
	}

	// A second registry on the same file declares one more index
	second := connect(t, location, docstore.Definition{TableName: name, Indexes: []string{"a", "b"}})
	table, err = second.Table(name)
	if err != nil {
		t.Fatal(err)
	}

	info, err := table.Describe(ctx)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	verifyColumns(t, info, []string{"id", "data", "a", "b"})

	docs, err := table.Find(ctx, docstore.Where{"b": 2})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("Expected no backfill of the new column, got %v", docs)
	}

	docs, err = table.Find(ctx, docstore.Where{"a": 1})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	verifyIDs(t, docs, "x")
}
