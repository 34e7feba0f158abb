package db

import (
	"context"
	"database/sql"

	"github.com/tordrt/docstore/internal/schema"
)

// Queryer is the subset of *sql.DB used to run statements
type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Dialect captures the differences between storage engines
type Dialect interface {
	// Name identifies the engine ("sqlite", "postgres", "mysql")
	Name() string

	// Quote quotes an identifier
	Quote(ident string) string

	// Placeholder renders the bind marker for a parameter. pos is 1-based.
	Placeholder(name string, pos int) string

	// Arg wraps a value for binding under name
	Arg(name string, value any) any

	// KeyColumnType maps a primary key tag to a native column type
	KeyColumnType(kt schema.KeyType) string

	// DataColumnType is the column type of the serialized document
	DataColumnType() string

	// IndexColumnType is the column type of every index column
	IndexColumnType() string

	// Columns lists a table's live columns in ordinal order
	Columns(ctx context.Context, q Queryer, table string) ([]schema.Column, error)

	// Compact reclaims space after a table has been emptied
	Compact(ctx context.Context, q Queryer, table string) error
}
