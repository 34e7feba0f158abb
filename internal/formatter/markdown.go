package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/docstore/internal/schema"
)

// MarkdownFormatter formats table descriptions as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes every table in markdown format
func (f *MarkdownFormatter) Format(tables []schema.TableInfo) error {
	_, _ = fmt.Fprintln(f.writer, "# Document Tables")
	_, _ = fmt.Fprintln(f.writer)

	for _, table := range tables {
		if err := f.formatTable(table); err != nil {
			return err
		}
	}
	return nil
}

// FormatTable formats a single table (exported for use by multifile formatter)
func (f *MarkdownFormatter) FormatTable(table schema.TableInfo) error {
	return f.formatTable(table)
}

func (f *MarkdownFormatter) formatTable(table schema.TableInfo) error {
	def := table.Definition

	if _, err := fmt.Fprintf(f.writer, "## %s\n\n", def.TableName); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(f.writer, "Primary key `%s` (%s), %d documents.\n\n", def.PrimaryKey, def.PrimaryKeyType, table.RowCount)

	_, _ = fmt.Fprintln(f.writer, "### Columns")
	_, _ = fmt.Fprintln(f.writer)
	for _, col := range table.Columns {
		constraintStr := f.formatConstraints(col, def)
		if constraintStr != "" {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s, %s\n", col.Name, col.Type, constraintStr)
		} else {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s\n", col.Name, col.Type)
		}
	}
	_, _ = fmt.Fprintln(f.writer)

	if len(def.Indexes) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### Queryable fields")
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintf(f.writer, "- %s (primary key)\n", def.PrimaryKey)
		for _, idx := range def.Indexes {
			_, _ = fmt.Fprintf(f.writer, "- %s\n", idx)
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	if stale := table.StaleColumns(); len(stale) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### Stale columns")
		_, _ = fmt.Fprintln(f.writer)
		for _, col := range stale {
			_, _ = fmt.Fprintf(f.writer, "- %s\n", col)
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	return nil
}

func (f *MarkdownFormatter) formatConstraints(col schema.Column, def schema.Definition) string {
	var constraints []string

	if col.IsKey {
		constraints = append(constraints, "PK")
	}

	if !col.Nullable {
		constraints = append(constraints, "NOT NULL")
	}

	if def.HasIndex(col.Name) {
		constraints = append(constraints, "index")
	}

	return strings.Join(constraints, ", ")
}
