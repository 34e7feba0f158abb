package db

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tordrt/docstore/internal/schema"
)

// sqliteFileParams are appended to file DSNs without their own parameters
const sqliteFileParams = "_journal_mode=WAL&_busy_timeout=5000"

// NewSQLiteClient creates a new SQLite client
func NewSQLiteClient(ctx context.Context, path string) (*Client, error) {
	memory := isMemoryPath(path)

	dsn := path
	if !memory && !strings.Contains(path, "?") {
		dsn = path + "?" + sqliteFileParams
	}

	return newClient(ctx, "sqlite3", dsn, SQLiteDialect{}, func(db *sql.DB) {
		if memory {
			// Every pooled connection would otherwise get its own empty database.
			db.SetMaxOpenConns(1)
			db.SetMaxIdleConns(1)
			db.SetConnMaxLifetime(0)
			db.SetConnMaxIdleTime(0)
		}
	})
}

func isMemoryPath(path string) bool {
	return path == "" || strings.Contains(path, ":memory:") || strings.Contains(path, "mode=memory")
}

// SQLiteDialect implements Dialect for SQLite
type SQLiteDialect struct{}

func (SQLiteDialect) Name() string { return "sqlite" }

func (SQLiteDialect) Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (SQLiteDialect) Placeholder(name string, _ int) string {
	return ":" + name
}

func (SQLiteDialect) Arg(name string, value any) any {
	return sql.Named(name, value)
}

func (SQLiteDialect) KeyColumnType(kt schema.KeyType) string {
	switch kt {
	case schema.KeyInteger:
		return "INTEGER"
	case schema.KeyReal:
		return "REAL"
	default:
		// STRING has NUMERIC affinity in SQLite, so both string tags use TEXT.
		return "TEXT"
	}
}

func (SQLiteDialect) DataColumnType() string { return "TEXT" }

func (SQLiteDialect) IndexColumnType() string { return "TEXT" }

func (d SQLiteDialect) Compact(ctx context.Context, q Queryer, _ string) error {
	_, err := q.ExecContext(ctx, "VACUUM")
	return err
}
