package graphqlschema

import (
	"github.com/excalibase/excalibase-graphql/internal/catalog"
	"github.com/graphql-go/graphql"
)

// numericColumns returns the columns eligible for sum/avg/min/max,
// i.e. integer or floating-point categories. min/max additionally
// apply to any orderable scalar at the fetcher layer, but the
// aggregate sub-object here only exposes the numeric subset per
// §4.3's aggregate field.
func numericColumns(table *catalog.TableInfo) []catalog.ColumnInfo {
	var cols []catalog.ColumnInfo
	for _, col := range table.Columns {
		if catalog.IsInteger(col.Type) || catalog.IsFloating(col.Type) {
			cols = append(cols, col)
		}
	}
	return cols
}

// buildAggregateType builds the <Name>Aggregate object type: a count
// plus sum/avg/min/max sub-objects restricted to numeric columns. sum
// and min/max preserve the column's own scalar type; avg is always a
// Float since it can carry a fractional result even over integers.
func buildAggregateType(table *catalog.TableInfo) *graphql.Object {
	numeric := numericColumns(table)

	sumFields := graphql.Fields{}
	avgFields := graphql.Fields{}
	minFields := graphql.Fields{}
	maxFields := graphql.Fields{}
	for _, col := range numeric {
		name := fieldName(col.Name)
		sumFields[name] = &graphql.Field{Type: scalarFor(col.Type)}
		avgFields[name] = &graphql.Field{Type: graphql.Float}
		minFields[name] = &graphql.Field{Type: scalarFor(col.Type)}
		maxFields[name] = &graphql.Field{Type: scalarFor(col.Type)}
	}

	base := typeName(table.Name)
	aggFields := graphql.Fields{
		"count": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	}
	if len(numeric) > 0 {
		aggFields["sum"] = &graphql.Field{Type: graphql.NewObject(graphql.ObjectConfig{Name: base + "SumAggregate", Fields: sumFields})}
		aggFields["avg"] = &graphql.Field{Type: graphql.NewObject(graphql.ObjectConfig{Name: base + "AvgAggregate", Fields: avgFields})}
		aggFields["min"] = &graphql.Field{Type: graphql.NewObject(graphql.ObjectConfig{Name: base + "MinAggregate", Fields: minFields})}
		aggFields["max"] = &graphql.Field{Type: graphql.NewObject(graphql.ObjectConfig{Name: base + "MaxAggregate", Fields: maxFields})}
	}

	return graphql.NewObject(graphql.ObjectConfig{
		Name:   base + "Aggregate",
		Fields: aggFields,
	})
}
