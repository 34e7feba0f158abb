//go:build integration
// +build integration

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/tordrt/docstore"
)

// uniqueTable returns a table name that does not collide with earlier runs
func uniqueTable(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

// connect creates and connects a registry, dropping its tables on cleanup
func connect(t *testing.T, location string, defs ...docstore.Definition) *docstore.Registry {
	t.Helper()

	reg, err := docstore.New(location, defs, nil)
	if err != nil {
		t.Fatalf("Failed to create registry: %v", err)
	}
	if err := reg.Connect(context.Background()); err != nil {
		t.Fatalf("Failed to connect to %s: %v", location, err)
	}

	t.Cleanup(func() {
		conn := reg.Conn()
		if conn != nil {
			for _, def := range defs {
				_, _ = conn.DB().Exec("DROP TABLE " + quote(conn.Engine(), def.TableName))
			}
		}
		_ = reg.Disconnect()
	})
	return reg
}

func quote(engine, name string) string {
	if engine == "mysql" {
		return "`" + name + "`"
	}
	return `"` + name + `"`
}

// verifyColumns checks that expected columns exist in a table
func verifyColumns(t *testing.T, info *docstore.TableInfo, expectedColumns []string) {
	t.Helper()

	columnMap := make(map[string]bool)
	for _, col := range info.Columns {
		columnMap[col.Name] = true
	}

	for _, colName := range expectedColumns {
		if !columnMap[colName] {
			t.Errorf("Expected column %s not found in %s table", colName, info.Definition.TableName)
		}
	}
}

// verifyPrimaryKey checks that the key column is reported as the primary key
func verifyPrimaryKey(t *testing.T, info *docstore.TableInfo, expectedPK string) {
	t.Helper()

	for _, col := range info.Columns {
		if col.Name == expectedPK {
			if !col.IsKey {
				t.Errorf("Expected %s to be the primary key of %s", expectedPK, info.Definition.TableName)
			}
			return
		}
	}

	t.Errorf("Primary key column %s not found in table %s", expectedPK, info.Definition.TableName)
}

// verifyIDs checks that docs hold exactly the expected primary keys
func verifyIDs(t *testing.T, docs []docstore.Document, expected ...string) {
	t.Helper()

	if len(docs) != len(expected) {
		t.Errorf("Expected %d documents, got %d: %v", len(expected), len(docs), docs)
		return
	}

	got := make(map[any]bool, len(docs))
	for _, doc := range docs {
		got[doc["id"]] = true
	}
	for _, id := range expected {
		if !got[id] {
			t.Errorf("Expected document %s not found in %v", id, docs)
		}
	}
}

// runDocumentLifecycle exercises every table operation against one engine
func runDocumentLifecycle(t *testing.T, location string) {
	t.Helper()
	ctx := context.Background()

	name := uniqueTable("protocols")
	reg := connect(t, location, docstore.Definition{TableName: name, Indexes: []string{"active", "kind"}})

	table, err := reg.Table(name)
	if err != nil {
		t.Fatalf("Table not registered: %v", err)
	}

	for _, doc := range []docstore.Document{
		{"id": "p1", "name": "HTTP", "active": true, "kind": "tcp"},
		{"id": "p2", "name": "DNS", "active": false, "kind": "udp"},
		{"id": "p3", "name": "QUIC", "active": "true", "kind": "udp", "meta": map[string]any{"rfc": 9000}},
	} {
		if _, err := table.Create(ctx, doc); err != nil {
			t.Fatalf("Failed to create %v: %v", doc["id"], err)
		}
	}

	doc, err := table.FindOne(ctx, "p3")
	if err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if meta, ok := doc["meta"].(map[string]any); !ok || meta["rfc"] != float64(9000) {
		t.Errorf("Nested field did not round trip: %v", doc)
	}

	docs, err := table.Find(ctx, docstore.Where{"active": true})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	verifyIDs(t, docs, "p1")

	docs, err = table.Find(ctx, docstore.Where{"active": docstore.Not{Value: true}})
	if err != nil {
		t.Fatalf("Find with Not failed: %v", err)
	}
	verifyIDs(t, docs, "p2", "p3")

	updated, err := table.Update(ctx, docstore.Where{"kind": "udp"}, docstore.Document{"active": true, "name": docstore.Absent})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	verifyIDs(t, updated, "p2", "p3")

	n, err := table.Count(ctx, docstore.Where{"active": true})
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Expected 3 active documents, got %d", n)
	}

	doc, err = table.FindOne(ctx, "p2")
	if err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if _, ok := doc["name"]; ok {
		t.Errorf("Expected name to be removed: %v", doc)
	}

	if _, err := table.Find(ctx, docstore.Where{"name": "HTTP"}); err == nil {
		t.Error("Expected error filtering on an unindexed field")
	}

	removed, err := table.Destroy(ctx, "p1")
	if err != nil {
		t.Fatalf("Destroy failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 removed document, got %d", removed)
	}

	info, err := table.Describe(ctx)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	verifyColumns(t, info, []string{"id", "data", "active", "kind"})
	verifyPrimaryKey(t, info, "id")
	if info.RowCount != 2 {
		t.Errorf("Expected 2 rows, got %d", info.RowCount)
	}

	if err := table.Empty(ctx); err != nil {
		t.Fatalf("Empty failed: %v", err)
	}
	docs, err = table.Find(ctx, nil)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	verifyIDs(t, docs)
}

// runIntegerKey checks a table keyed by a native integer column
func runIntegerKey(t *testing.T, location string) {
	t.Helper()
	ctx := context.Background()

	name := uniqueTable("counters")
	reg := connect(t, location, docstore.Definition{
		TableName:      name,
		PrimaryKey:     "n",
		PrimaryKeyType: docstore.KeyInteger,
		Indexes:        []string{"grp"},
	})

	table, err := reg.Table(name)
	if err != nil {
		t.Fatalf("Table not registered: %v", err)
	}

	if _, err := table.Create(ctx, docstore.Document{"grp": "a"}); err == nil {
		t.Error("Expected missing primary key error")
	}

	for i := 1; i <= 3; i++ {
		if _, err := table.Create(ctx, docstore.Document{"n": i, "grp": "a"}); err != nil {
			t.Fatalf("Failed to create %d: %v", i, err)
		}
	}

	doc, err := table.FindOne(ctx, 2)
	if err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if doc == nil || doc["n"] != float64(2) {
		t.Errorf("Expected document 2, got %v", doc)
	}

	n, err := table.Count(ctx, docstore.Where{"grp": "a"})
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Expected 3 documents, got %d", n)
	}
}

// runCaseSensitivity checks that keys and index values compare exactly
func runCaseSensitivity(t *testing.T, location string) {
	t.Helper()
	ctx := context.Background()

	name := uniqueTable("cased")
	reg := connect(t, location, docstore.Definition{TableName: name, Indexes: []string{"kind"}})

	table, err := reg.Table(name)
	if err != nil {
		t.Fatalf("Table not registered: %v", err)
	}

	for _, doc := range []docstore.Document{
		{"id": "p1", "kind": "tcp"},
		{"id": "P1", "kind": "TCP"},
		{"id": "é", "kind": "e"},
		{"id": "e", "kind": "é"},
	} {
		if _, err := table.Create(ctx, doc); err != nil {
			t.Fatalf("Failed to create %v: %v", doc["id"], err)
		}
	}

	docs, err := table.Find(ctx, docstore.Where{"kind": "tcp"})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	verifyIDs(t, docs, "p1")

	docs, err = table.Find(ctx, docstore.Where{"kind": "e"})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	verifyIDs(t, docs, "é")

	doc, err := table.FindOne(ctx, "P1")
	if err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if doc == nil || doc["kind"] != "TCP" {
		t.Errorf("Expected document P1, got %v", doc)
	}
}
