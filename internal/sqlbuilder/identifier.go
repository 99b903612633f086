// Package sqlbuilder translates catalog-typed filter/order/pagination
// arguments into parameterized PostgreSQL, and encodes/decodes the
// multi-column keyset cursors the connection fields hand out.
package sqlbuilder

import (
	"regexp"
	"strings"
)

var validIdentifierRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// isValidIdentifier reports whether s is safe to use unquoted as a
// catalog-derived identifier (table, column, schema name).
func isValidIdentifier(s string) bool {
	return validIdentifierRegex.MatchString(s)
}

// quoteIdentifier double-quotes a catalog-reported identifier, escaping
// embedded quotes. Returns "" for anything that fails isValidIdentifier,
// so a caller can skip instead of ever emitting attacker-controlled SQL.
func quoteIdentifier(s string) string {
	if !isValidIdentifier(s) {
		return ""
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// qualifyTable quotes a schema.table reference.
func qualifyTable(schema, table string) string {
	return quoteIdentifier(schema) + "." + quoteIdentifier(table)
}

// QuoteIdentifier exports quoteIdentifier for callers (the data fetcher's
// aggregate queries) that build SQL fragments sqlbuilder itself has no
// fluent method for.
func QuoteIdentifier(s string) string { return quoteIdentifier(s) }

// QualifyTable exports qualifyTable for the same cross-package need.
func QualifyTable(schema, table string) string { return qualifyTable(schema, table) }
