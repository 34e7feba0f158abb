package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/docstore/internal/schema"
)

// TextFormatter formats table descriptions as compact text
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes every table in compact text format
func (f *TextFormatter) Format(tables []schema.TableInfo) error {
	for i, table := range tables {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer) // Blank line between tables
		}

		if err := f.formatTable(table); err != nil {
			return err
		}
	}
	return nil
}

func (f *TextFormatter) formatTable(table schema.TableInfo) error {
	def := table.Definition
	_, err := fmt.Fprintf(f.writer, "TABLE %s (PK: %s %s) rows=%d\n",
		def.TableName, def.PrimaryKey, def.PrimaryKeyType, table.RowCount)
	if err != nil {
		return err
	}

	for _, col := range table.Columns {
		_, _ = fmt.Fprintf(f.writer, "  %s\n", f.formatColumn(col, def))
	}

	if len(def.Indexes) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintf(f.writer, "  INDEXES: %s\n", strings.Join(def.Indexes, ", "))
	}

	if stale := table.StaleColumns(); len(stale) > 0 {
		_, _ = fmt.Fprintf(f.writer, "  STALE: %s\n", strings.Join(stale, ", "))
	}

	if def.JSONSchema != "" {
		_, _ = fmt.Fprintln(f.writer, "  JSON SCHEMA: yes")
	}

	return nil
}

func (f *TextFormatter) formatColumn(col schema.Column, def schema.Definition) string {
	parts := []string{col.Name + ":", col.Type}

	if col.IsKey {
		parts = append(parts, "PK")
	}

	if !col.Nullable {
		parts = append(parts, "NOT NULL")
	}

	if def.HasIndex(col.Name) {
		parts = append(parts, "INDEX")
	}

	return strings.Join(parts, " ")
}
