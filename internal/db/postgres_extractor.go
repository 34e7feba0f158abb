package db

import (
	"context"
	"fmt"

	"github.com/tordrt/docstore/internal/schema"
)

const varcharType = "varchar"

// normalizePostgresType maps verbose SQL type names to commonly-used PostgreSQL equivalents
func normalizePostgresType(dataType string, charMaxLength *int) string {
	switch dataType {
	case "character varying":
		if charMaxLength != nil {
			return fmt.Sprintf("varchar(%d)", *charMaxLength)
		}
		return varcharType
	case "double precision":
		return "float8"
	case "bigint":
		return "int8"
	default:
		return dataType
	}
}

// Columns extracts column information for a table in the current schema
func (d PostgresDialect) Columns(ctx context.Context, q Queryer, tableName string) ([]schema.Column, error) {
	query := `
		SELECT
			c.column_name,
			c.data_type,
			c.character_maximum_length,
			c.is_nullable,
			CASE WHEN EXISTS (
				SELECT 1 FROM information_schema.table_constraints tc
				JOIN information_schema.key_column_usage kcu
					ON tc.constraint_name = kcu.constraint_name
					AND tc.table_schema = kcu.table_schema
				WHERE tc.table_schema = c.table_schema
					AND tc.table_name = c.table_name
					AND tc.constraint_type = 'PRIMARY KEY'
					AND kcu.column_name = c.column_name
			) THEN true ELSE false END AS is_key
		FROM information_schema.columns c
		WHERE c.table_schema = current_schema() AND c.table_name = $1
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
		var dataType, nullable string
		var charMaxLength *int

		if err := rows.Scan(&col.Name, &dataType, &charMaxLength, &nullable, &col.IsKey); err != nil {
			return nil, err
		}

		col.Type = normalizePostgresType(dataType, charMaxLength)
		col.Nullable = (nullable == "YES")

		columns = append(columns, col)
	}

	return columns, rows.Err()
}
