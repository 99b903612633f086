package fetch

import "github.com/jackc/pgx/v5"

// scanRows drains a pgx.Rows result into one map per row, keyed by
// column name, the shape every generated field resolver expects as
// p.Source. Adapted from the teacher's scanRowsToMaps.
func scanRows(rows pgx.Rows) ([]map[string]interface{}, error) {
	defer rows.Close()

	var results []map[string]interface{}
	cols := rows.FieldDescriptions()

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(map[string]interface{}, len(cols))
		for i, col := range cols {
			row[string(col.Name)] = values[i]
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// distinctValues collects the non-nil values of column across rows,
// de-duplicated, in first-seen order. Used to build the single =
// ANY($1) batch query a relation preload issues instead of one query
// per row.
func distinctValues(rows []map[string]interface{}, column string) []interface{} {
	seen := make(map[interface{}]bool, len(rows))
	var values []interface{}
	for _, row := range rows {
		v, ok := row[column]
		if !ok || v == nil {
			continue
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	return values
}
