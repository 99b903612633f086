package graphqlschema

import "github.com/excalibase/excalibase-graphql/internal/catalog"

// isAutoGenerated reports whether a column is populated by the
// database itself (serial/identity primary keys, generated columns)
// and therefore excluded from create/update input types.
func isAutoGenerated(col catalog.ColumnInfo) bool {
	t := catalog.Normalize(col.Type)
	return t == "serial" || t == "bigserial" || t == "smallserial"
}
