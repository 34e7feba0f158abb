package db

import (
	"context"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/tordrt/docstore/internal/schema"
)

// NewPostgresClient creates a new PostgreSQL client through the pgx
// database/sql driver
func NewPostgresClient(ctx context.Context, connString string) (*Client, error) {
	return newClient(ctx, "pgx", connString, PostgresDialect{}, nil)
}

// PostgresDialect implements Dialect for PostgreSQL
type PostgresDialect struct{}

func (PostgresDialect) Name() string { return "postgres" }

func (PostgresDialect) Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (PostgresDialect) Placeholder(_ string, pos int) string {
	return fmt.Sprintf("$%d", pos)
}

func (PostgresDialect) Arg(_ string, value any) any {
	return value
}

func (PostgresDialect) KeyColumnType(kt schema.KeyType) string {
	switch kt {
	case schema.KeyInteger:
		return "BIGINT"
	case schema.KeyReal:
		return "DOUBLE PRECISION"
	default:
		return "TEXT"
	}
}

func (PostgresDialect) DataColumnType() string { return "TEXT" }

func (PostgresDialect) IndexColumnType() string { return "TEXT" }

// Compact runs VACUUM, which cannot run inside a transaction block
func (d PostgresDialect) Compact(ctx context.Context, q Queryer, table string) error {
	_, err := q.ExecContext(ctx, "VACUUM "+d.Quote(table))
	return err
}
