package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tordrt/docstore"
	"github.com/tordrt/docstore/internal/config"
	"github.com/tordrt/docstore/internal/filter"
	"github.com/tordrt/docstore/internal/formatter"
	"github.com/tordrt/docstore/internal/logger"
	"github.com/tordrt/docstore/internal/schema"
)

var (
	configPath string
	dbLocation string
	logLevel   string
	logFormat  string

	outputFile    string
	outputDir     string
	tables        string
	excludeTables string
	format        string

	unsetFields []string
)

var rootCmd = &cobra.Command{
	Use:           "docstore",
	Short:         "Store and query JSON documents in SQLite, PostgreSQL or MySQL",
	Long:          `docstore keeps JSON documents in relational tables. Each table stores the whole document plus a few indexed fields that can be filtered on.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Describe the configured tables and their live columns",
	Args:  cobra.NoArgs,
	RunE:  runDescribe,
}

var createCmd = &cobra.Command{
	Use:   "create <table> <document-json>",
	Short: "Create a document",
	Args:  cobra.ExactArgs(2),
	RunE:  runCreate,
}

var getCmd = &cobra.Command{
	Use:   "get <table> <filter>",
	Short: "Print one matching document, or null",
	Args:  cobra.ExactArgs(2),
	RunE:  runGet,
}

var findCmd = &cobra.Command{
	Use:   "find <table> [filter]",
	Short: "Print every matching document",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runFind,
}

var countCmd = &cobra.Command{
	Use:   "count <table> [filter]",
	Short: "Count matching documents",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runCount,
}

var updateCmd = &cobra.Command{
	Use:   "update <table> <filter> [changes-json]",
	Short: "Merge changes into every matching document",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runUpdate,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <table> <filter>",
	Short: "Delete every matching document",
	Args:  cobra.ExactArgs(2),
	RunE:  runDelete,
}

var emptyCmd = &cobra.Command{
	Use:   "empty <table>",
	Short: "Delete every document of a table and compact the database",
	Args:  cobra.ExactArgs(1),
	RunE:  runEmpty,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ./docstore.{yaml,json,toml} if present)")
	rootCmd.PersistentFlags().StringVar(&dbLocation, "db", "", "Database location: sqlite://path, postgres://..., mysql://... (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: DEBUG, INFO, WARN or ERROR (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json (overrides config)")

	describeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	describeCmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Output directory for multi-file output")
	describeCmd.Flags().StringVarP(&tables, "tables", "t", "", "Specific tables (comma-separated, optional)")
	describeCmd.Flags().StringVar(&excludeTables, "exclude", "", "Tables to leave out (comma-separated, optional)")
	describeCmd.Flags().StringVarP(&format, "format", "f", formatter.FormatText, "Output format: text or markdown")

	updateCmd.Flags().StringArrayVar(&unsetFields, "unset", nil, "Field to remove from matching documents (repeatable)")

	rootCmd.AddCommand(describeCmd, createCmd, getCmd, findCmd, countCmd, updateCmd, deleteCmd, emptyCmd)
}

// connect loads the configuration and connects a registry of every
// configured table
func connect(ctx context.Context) (*docstore.Registry, *config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	if dbLocation != "" {
		cfg.Database = dbLocation
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	log := logger.New(cfg.Log, os.Stderr)
	slog.SetDefault(log)

	reg, err := docstore.New(cfg.Database, cfg.Tables, &docstore.Options{Logger: log})
	if err != nil {
		return nil, nil, fmt.Errorf("invalid table configuration: %w", err)
	}

	if err := reg.Connect(ctx); err != nil {
		return nil, nil, err
	}

	return reg, cfg, nil
}

func disconnect(reg *docstore.Registry) {
	if err := reg.Disconnect(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to close connection: %v\n", err)
	}
}

// withTable runs fn against the named table of a connected registry
func withTable(cmd *cobra.Command, name string, fn func(ctx context.Context, t *docstore.Table) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	reg, _, err := connect(ctx)
	if err != nil {
		return err
	}
	defer disconnect(reg)

	t, err := reg.Table(name)
	if err != nil {
		return err
	}
	return fn(ctx, t)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if outputDir != "" && outputFile != "" {
		return fmt.Errorf("cannot use both --output-dir and --output flags")
	}
	if format != formatter.FormatText && format != formatter.FormatMarkdown {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'markdown')", format)
	}

	reg, _, err := connect(ctx)
	if err != nil {
		return err
	}
	defer disconnect(reg)

	selected := reg.Tables()
	if names := parseTableList(tables); len(names) > 0 {
		selected = selected[:0]
		for _, name := range names {
			t, err := reg.Table(name)
			if err != nil {
				return err
			}
			selected = append(selected, t)
		}
	}

	var infos []schema.TableInfo
	for _, t := range selected {
		info, err := t.Describe(ctx)
		if err != nil {
			return fmt.Errorf("failed to describe table %s: %w", t.Name(), err)
		}
		infos = append(infos, *info)
	}
	infos = filterExcludedTables(infos, parseTableList(excludeTables))

	if outputDir != "" {
		if err := formatter.NewMultiFileFormatter(outputDir, format).Format(infos); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		return nil
	}

	var writer io.Writer = cmd.OutOrStdout()
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to close output file: %v\n", err)
			}
		}()
		writer = f
	}

	if format == formatter.FormatMarkdown {
		err = formatter.NewMarkdownFormatter(writer).Format(infos)
	} else {
		err = formatter.NewTextFormatter(writer).Format(infos)
	}
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	var doc any
	if err := json.Unmarshal([]byte(args[1]), &doc); err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}

	return withTable(cmd, args[0], func(ctx context.Context, t *docstore.Table) error {
		created, err := t.Create(ctx, doc)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), created)
	})
}

func runGet(cmd *cobra.Command, args []string) error {
	query, err := parseFilterArg(args[1])
	if err != nil {
		return err
	}

	return withTable(cmd, args[0], func(ctx context.Context, t *docstore.Table) error {
		doc, err := t.FindOne(ctx, query)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), doc)
	})
}

func runFind(cmd *cobra.Command, args []string) error {
	query, err := optionalFilterArg(args)
	if err != nil {
		return err
	}

	return withTable(cmd, args[0], func(ctx context.Context, t *docstore.Table) error {
		docs, err := t.Find(ctx, query)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), docs)
	})
}

func runCount(cmd *cobra.Command, args []string) error {
	query, err := optionalFilterArg(args)
	if err != nil {
		return err
	}

	return withTable(cmd, args[0], func(ctx context.Context, t *docstore.Table) error {
		n, err := t.Count(ctx, query)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), n)
		return err
	})
}

func runUpdate(cmd *cobra.Command, args []string) error {
	query, err := parseFilterArg(args[1])
	if err != nil {
		return err
	}

	changes := docstore.Document{}
	if len(args) == 3 {
		if err := json.Unmarshal([]byte(args[2]), &changes); err != nil {
			return fmt.Errorf("invalid changes: %w", err)
		}
	}
	for _, field := range unsetFields {
		changes[field] = docstore.Absent
	}

	return withTable(cmd, args[0], func(ctx context.Context, t *docstore.Table) error {
		updated, err := t.Update(ctx, query, changes)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), updated)
	})
}

func runDelete(cmd *cobra.Command, args []string) error {
	query, err := parseFilterArg(args[1])
	if err != nil {
		return err
	}

	return withTable(cmd, args[0], func(ctx context.Context, t *docstore.Table) error {
		n, err := t.Destroy(ctx, query)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %d\n", n)
		return err
	})
}

func runEmpty(cmd *cobra.Command, args []string) error {
	return withTable(cmd, args[0], func(ctx context.Context, t *docstore.Table) error {
		return t.Empty(ctx)
	})
}

// parseFilterArg accepts a JSON filter, a JSON scalar, or a bare string id
func parseFilterArg(arg string) (any, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return nil, fmt.Errorf("empty filter")
	}

	query, err := filter.FromJSON([]byte(arg))
	if err == nil {
		return query, nil
	}

	switch arg[0] {
	case '{', '[', '"':
		return nil, err
	}
	return arg, nil
}

func optionalFilterArg(args []string) (any, error) {
	if len(args) < 2 {
		return nil, nil
	}
	return parseFilterArg(args[1])
}

// parseTableList splits a comma-separated table list
func parseTableList(s string) []string {
	if s == "" {
		return nil
	}

	tableList := strings.Split(s, ",")
	for i, t := range tableList {
		tableList[i] = strings.TrimSpace(t)
	}
	return tableList
}

func filterExcludedTables(infos []schema.TableInfo, excludeList []string) []schema.TableInfo {
	if len(excludeList) == 0 {
		return infos
	}

	excludeSet := make(map[string]bool)
	for _, tableName := range excludeList {
		excludeSet[tableName] = true
	}

	filtered := make([]schema.TableInfo, 0, len(infos))
	for _, info := range infos {
		if !excludeSet[info.Definition.TableName] {
			filtered = append(filtered, info)
		}
	}
	return filtered
}

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
