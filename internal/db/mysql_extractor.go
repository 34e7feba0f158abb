package db

import (
	"context"

	"github.com/tordrt/docstore/internal/schema"
)

// Columns extracts column information for a table in the connection's database
func (d MySQLDialect) Columns(ctx context.Context, q Queryer, tableName string) ([]schema.Column, error) {
	query := `
		SELECT
			c.column_name,
			c.column_type,
			c.is_nullable,
			c.column_key
		FROM information_schema.columns c
		WHERE c.table_schema = DATABASE() AND c.table_name = ?
		ORDER BY c.ordinal_position
	`

	rows, err := q.QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var col schema.Column
		var nullable, columnKey string

		if err := rows.Scan(&col.Name, &col.Type, &nullable, &columnKey); err != nil {
			return nil, err
		}

		col.Nullable = (nullable == "YES")
		col.IsKey = (columnKey == "PRI")

		columns = append(columns, col)
	}

	return columns, rows.Err()
}
