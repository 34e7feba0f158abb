package formatter

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tordrt/docstore/internal/schema"
)

func sampleTables() []schema.TableInfo {
	return []schema.TableInfo{
		{
			Definition: schema.Definition{
				TableName:      "protocols",
				PrimaryKey:     "id",
				PrimaryKeyType: schema.KeyString,
				Indexes:        []string{"active"},
			},
			Columns: []schema.Column{
				{Name: "id", Type: "TEXT", IsKey: true},
				{Name: "data", Type: "TEXT"},
				{Name: "active", Type: "TEXT", Nullable: true},
				{Name: "old", Type: "TEXT", Nullable: true},
			},
			RowCount: 3,
		},
		{
			Definition: schema.Definition{
				TableName:      "counters",
				PrimaryKey:     "n",
				PrimaryKeyType: schema.KeyInteger,
				JSONSchema:     `{"type": "object"}`,
			},
			Columns: []schema.Column{
				{Name: "n", Type: "INTEGER", IsKey: true},
				{Name: "data", Type: "TEXT"},
			},
		},
	}
}

func TestTextFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTextFormatter(&buf).Format(sampleTables()); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"TABLE protocols (PK: id STRING) rows=3",
		"  id: TEXT PK NOT NULL",
		"  active: TEXT INDEX",
		"  INDEXES: active",
		"  STALE: old",
		"TABLE counters (PK: n INTEGER) rows=0",
		"  JSON SCHEMA: yes",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestMarkdownFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewMarkdownFormatter(&buf).Format(sampleTables()); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Document Tables",
		"## protocols",
		"- **id:** TEXT, PK, NOT NULL",
		"- **active:** TEXT, index",
		"### Queryable fields",
		"### Stale columns",
		"- old",
		"## counters",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q:\n%s", want, out)
		}
	}
}

func TestMultiFileFormatter(t *testing.T) {
	for _, format := range []string{FormatText, FormatMarkdown} {
		t.Run(format, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "out")
			if err := NewMultiFileFormatter(dir, format).Format(sampleTables()); err != nil {
				t.Fatalf("Format() error = %v", err)
			}

			ext := ".txt"
			if format == FormatMarkdown {
				ext = ".md"
			}

			for _, name := range []string{"_overview", "counters", "protocols"} {
				if _, err := os.Stat(filepath.Join(dir, name+ext)); err != nil {
					t.Errorf("expected file %s%s: %v", name, ext, err)
				}
			}

			overview, err := os.ReadFile(filepath.Join(dir, "_overview"+ext))
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(string(overview), "id,active") {
				t.Errorf("overview missing queryable fields:\n%s", overview)
			}
			if strings.Index(string(overview), "counters") > strings.Index(string(overview), "protocols") {
				t.Errorf("overview is not sorted:\n%s", overview)
			}
		})
	}
}
