package record

import (
	"database/sql"

	"github.com/mongoose-kitchen/mongoose/internal/orm/schema"
)

// ScanRows scans every remaining row into column-keyed maps. When table is
// non-nil, values are normalized to the column types of the catalog.
func ScanRows(rows *sql.Rows, table *schema.Table) ([]schema.Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	results := make([]schema.Row, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make(schema.Row, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		if table != nil {
			row = table.Normalize(row)
		}

		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}
