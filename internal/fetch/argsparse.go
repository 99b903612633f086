package fetch

import (
	"github.com/excalibase/excalibase-graphql/internal/catalog"
	"github.com/excalibase/excalibase-graphql/internal/sqlbuilder"
)

// parseCommonArgs extracts the filter/or/orderBy arguments every list,
// connection, and aggregate root field shares.
func parseCommonArgs(table *catalog.TableInfo, args map[string]interface{}) ([]sqlbuilder.Filter, [][]sqlbuilder.Filter, []sqlbuilder.OrderBy) {
	filters := sqlbuilder.ParseFlatFilters(table, args)
	orGroups := sqlbuilder.ParseOrGroups(table, args["or"])

	var orderBy []sqlbuilder.OrderBy
	if ob, ok := args["orderBy"].(map[string]interface{}); ok {
		orderBy = sqlbuilder.ParseOrderByArg(table, ob)
	}
	if len(orderBy) == 0 {
		orderBy = defaultOrderBy(table)
	}
	return filters, orGroups, orderBy
}

// defaultOrderBy orders by the table's primary key, ascending, per
// §9's requirement that keyset pagination always have a deterministic
// total order even when the caller supplies no orderBy.
func defaultOrderBy(table *catalog.TableInfo) []sqlbuilder.OrderBy {
	pk := table.PrimaryKey()
	order := make([]sqlbuilder.OrderBy, 0, len(pk))
	for _, col := range pk {
		order = append(order, sqlbuilder.OrderBy{Column: col.Name})
	}
	return order
}

func intArg(args map[string]interface{}, name string) (int, bool) {
	v, ok := args[name]
	if !ok || v == nil {
		return 0, false
	}
	i, ok := v.(int)
	return i, ok
}

func stringArg(args map[string]interface{}, name string) (string, bool) {
	v, ok := args[name]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
