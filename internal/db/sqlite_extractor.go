package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tordrt/docstore/internal/schema"
)

// Columns extracts column information for a table via PRAGMA table_info.
// A missing table yields no columns.
func (d SQLiteDialect) Columns(ctx context.Context, q Queryer, tableName string) ([]schema.Column, error) {
	query := fmt.Sprintf("PRAGMA table_info(%s)", d.Quote(tableName))

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column

	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultValue, &pk); err != nil {
			return nil, err
		}

		columns = append(columns, schema.Column{
			Name:     name,
			Type:     colType,
			Nullable: notNull == 0,
			IsKey:    pk > 0,
		})
	}

	return columns, rows.Err()
}
