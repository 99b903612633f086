package sqlbuilder

import (
	"github.com/excalibase/excalibase-graphql/internal/catalog"
	"github.com/excalibase/excalibase-graphql/internal/graphqlschema"
)

// reservedArgNames are the connection/list field arguments that are
// never themselves filter fields, so ParseFlatFilters must skip them
// rather than mistake them for an (unrecognized) column.
var reservedArgNames = map[string]bool{
	"first": true, "after": true, "last": true, "before": true,
	"offset": true, "limit": true, "orderBy": true, "or": true,
}

// columnIndex maps a table's GraphQL field names back to their catalog
// column, built once per resolved field.
func columnIndex(table *catalog.TableInfo) map[string]catalog.ColumnInfo {
	idx := make(map[string]catalog.ColumnInfo, len(table.Columns))
	for _, col := range table.Columns {
		idx[graphqlschema.FieldName(col.Name)] = col
	}
	return idx
}

func categoryOf(col catalog.ColumnInfo) Category {
	switch {
	case catalog.IsJSON(col.Type):
		return CategoryJSON
	case catalog.IsArray(col.Type):
		return CategoryArray
	case catalog.IsText(col.Type):
		return CategoryText
	case catalog.IsBoolean(col.Type):
		return CategoryBoolean
	default:
		return CategoryScalar
	}
}

// ParseFlatFilters turns a root query field's flat GraphQL arguments
// (e.g. {"title_contains": "hi", "published": true}) into []Filter,
// skipping pagination/ordering/or arguments and any key that is not one
// of the table's own columns (graphql-go's own argument validation
// already rejects anything else before the resolver runs).
func ParseFlatFilters(table *catalog.TableInfo, args map[string]interface{}) []Filter {
	idx := columnIndex(table)
	var filters []Filter
	for key, value := range args {
		if reservedArgNames[key] {
			continue
		}
		field, op := ParseArgName(key)
		col, ok := idx[field]
		if !ok {
			continue
		}
		filters = append(filters, Filter{
			Column:   col.Name,
			Operator: op,
			Value:    value,
			Category: categoryOf(col),
		})
	}
	return filters
}

// ParseOrGroups turns the `or` argument - a list of <Name>FilterInput
// values - into the [][]Filter WithOrGroups expects: one inner slice of
// ANDed filters per list element.
func ParseOrGroups(table *catalog.TableInfo, orArg interface{}) [][]Filter {
	elements, ok := orArg.([]interface{})
	if !ok {
		return nil
	}
	groups := make([][]Filter, 0, len(elements))
	for _, el := range elements {
		elMap, ok := el.(map[string]interface{})
		if !ok {
			continue
		}
		groups = append(groups, ParseFlatFilters(table, elMap))
	}
	return groups
}

// ParseOrderByArg turns an orderBy input-object value into []OrderBy,
// visiting columns in the table's catalog order since a GraphQL input
// object's field order is not recoverable from its decoded Go map.
func ParseOrderByArg(table *catalog.TableInfo, orderBy map[string]interface{}) []OrderBy {
	if orderBy == nil {
		return nil
	}
	var order []OrderBy
	for _, col := range table.Columns {
		raw, ok := orderBy[graphqlschema.FieldName(col.Name)]
		if !ok {
			continue
		}
		direction, _ := raw.(string)
		order = append(order, OrderBy{Column: col.Name, Desc: direction == "DESC"})
	}
	return order
}
