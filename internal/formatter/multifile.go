package formatter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tordrt/docstore/internal/schema"
)

const (
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

// MultiFileFormatter writes one file per table plus an overview
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "text" or "markdown"
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
	}
}

// Format writes the tables to multiple files
func (f *MultiFileFormatter) Format(tables []schema.TableInfo) error {
	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	sorted := make([]schema.TableInfo, len(tables))
	copy(sorted, tables)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Definition.TableName < sorted[j].Definition.TableName
	})

	if err := f.writeOverview(sorted); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	for _, table := range sorted {
		if err := f.writeTableFile(table); err != nil {
			return fmt.Errorf("failed to write table file for %s: %w", table.Definition.TableName, err)
		}
	}

	return nil
}

func (f *MultiFileFormatter) writeOverview(tables []schema.TableInfo) error {
	file, err := os.Create(filepath.Join(f.OutputDir, "_overview"+f.getFileExtension()))
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	if f.OutputFormat == FormatMarkdown {
		_, _ = fmt.Fprintf(file, "# Overview\n\n")
		_, _ = fmt.Fprintf(file, "Each table has a corresponding file: `<table_name>%s`\n\n", f.getFileExtension())
		for _, table := range tables {
			_, _ = fmt.Fprintf(file, "- **%s** (%d documents; queryable: %s)\n",
				table.Definition.TableName, table.RowCount, queryable(table.Definition))
		}
		return nil
	}

	_, _ = fmt.Fprintf(file, "OVERVIEW\n")
	_, _ = fmt.Fprintf(file, "Each table has a file: <table_name>%s\n\n", f.getFileExtension())
	for _, table := range tables {
		_, _ = fmt.Fprintf(file, "%s rows=%d queryable=%s\n",
			table.Definition.TableName, table.RowCount, queryable(table.Definition))
	}
	return nil
}

func queryable(def schema.Definition) string {
	return strings.Join(append([]string{def.PrimaryKey}, def.Indexes...), ",")
}

// writeTableFile writes a single table to its own file
func (f *MultiFileFormatter) writeTableFile(table schema.TableInfo) error {
	filename := filepath.Join(f.OutputDir, table.Definition.TableName+f.getFileExtension())

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	if f.OutputFormat == FormatMarkdown {
		return NewMarkdownFormatter(file).FormatTable(table)
	}
	return NewTextFormatter(file).formatTable(table)
}

func (f *MultiFileFormatter) getFileExtension() string {
	if f.OutputFormat == FormatMarkdown {
		return ".md"
	}
	return ".txt"
}
