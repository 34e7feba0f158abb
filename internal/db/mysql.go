package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/tordrt/docstore/internal/schema"
)

// binaryText makes comparisons exact, so keys and index values differing only
// in case or accents stay distinct.
const binaryText = " CHARACTER SET utf8mb4 COLLATE utf8mb4_bin"

// NewMySQLClient creates a new MySQL client
func NewMySQLClient(ctx context.Context, connString string) (*Client, error) {
	dsn, err := mysqlDSN(connString)
	if err != nil {
		return nil, err
	}
	return newClient(ctx, "mysql", dsn, MySQLDialect{}, nil)
}

// mysqlDSN turns on clientFoundRows so RowsAffected counts matched rows,
// including those an UPDATE left unchanged.
func mysqlDSN(connString string) (string, error) {
	cfg, err := mysql.ParseDSN(connString)
	if err != nil {
		return "", fmt.Errorf("invalid mysql connection string: %w", err)
	}
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}

// MySQLDialect implements Dialect for MySQL
type MySQLDialect struct{}

func (MySQLDialect) Name() string { return "mysql" }

func (MySQLDialect) Quote(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

func (MySQLDialect) Placeholder(string, int) string {
	return "?"
}

func (MySQLDialect) Arg(_ string, value any) any {
	return value
}

func (MySQLDialect) KeyColumnType(kt schema.KeyType) string {
	switch kt {
	case schema.KeyInteger:
		return "BIGINT"
	case schema.KeyReal:
		return "DOUBLE"
	default:
		// TEXT columns cannot be primary keys without a prefix length.
		return "VARCHAR(191)" + binaryText
	}
}

func (MySQLDialect) DataColumnType() string { return "LONGTEXT" }

func (MySQLDialect) IndexColumnType() string { return "TEXT" + binaryText }

func (d MySQLDialect) Compact(ctx context.Context, q Queryer, table string) error {
	_, err := q.ExecContext(ctx, "OPTIMIZE TABLE "+d.Quote(table))
	return err
}
