package fetch

import (
	"fmt"
	"strings"

	"github.com/excalibase/excalibase-graphql/internal/catalog"
	"github.com/excalibase/excalibase-graphql/internal/graphqlschema"
	"github.com/excalibase/excalibase-graphql/internal/sqlbuilder"
	"github.com/graphql-go/graphql"
)

// numericColumns mirrors graphqlschema's own numericColumns: the
// columns eligible for sum/avg/min/max, matching which sub-fields
// buildAggregateType actually attached to the schema.
func numericColumns(table *catalog.TableInfo) []catalog.ColumnInfo {
	var cols []catalog.ColumnInfo
	for _, col := range table.Columns {
		if catalog.IsInteger(col.Type) || catalog.IsFloating(col.Type) {
			cols = append(cols, col)
		}
	}
	return cols
}

// TableAggregate resolves a table's <name>Aggregate root field: a row
// count plus sum/avg/min/max over its numeric columns, computed by
// Postgres in one round trip. COUNT(*) counts every row regardless of
// NULLs in other columns; SUM/AVG/MIN/MAX all ignore NULLs per their
// ordinary SQL semantics, so no special-casing is needed here.
func (f *Fetcher) TableAggregate(table *catalog.TableInfo) graphql.FieldResolveFn {
	numeric := numericColumns(table)

	return func(p graphql.ResolveParams) (interface{}, error) {
		filters, orGroups, _ := parseCommonArgs(table, p.Args)

		qb := sqlbuilder.NewQueryBuilder(f.schema, table.Name).WithFilters(filters).WithOrGroups(orGroups)
		where, args := qb.WhereClause()

		selectList, aliases := aggregateSelectList(numeric)
		query := fmt.Sprintf("SELECT %s FROM %s", selectList, sqlbuilder.QualifyTable(f.schema, table.Name))
		if where != "" {
			query += " WHERE " + where
		}

		row := f.db.QueryRow(p.Context, query, args...)
		values := make([]interface{}, len(aliases))
		scanTargets := make([]interface{}, len(aliases))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := row.Scan(scanTargets...); err != nil {
			return nil, wrapFetchErr(table.Name, "aggregate", err)
		}

		return shapeAggregateResult(numeric, aliases, values), nil
	}
}

// aggregateSelectList builds the SELECT expression list for the
// aggregate query (count plus sum/avg/min/max per numeric column) and
// the parallel list of result-column names in the same order, so the
// scanned values can be matched back to their field afterwards.
func aggregateSelectList(numeric []catalog.ColumnInfo) (string, []string) {
	exprs := []string{"COUNT(*)"}
	aliases := []string{"count"}
	for _, col := range numeric {
		quoted := sqlbuilder.QuoteIdentifier(col.Name)
		if quoted == "" {
			continue
		}
		for _, agg := range []string{"sum", "avg", "min", "max"} {
			exprs = append(exprs, fmt.Sprintf("%s(%s)", strings.ToUpper(agg), quoted))
			aliases = append(aliases, agg+":"+col.Name)
		}
	}
	return strings.Join(exprs, ", "), aliases
}

// shapeAggregateResult assembles the scanned values back into the
// nested {count, sum{...}, avg{...}, min{...}, max{...}} shape the
// generated aggregate type's default field resolution expects. The
// sum/avg/min/max sub-objects carry no custom resolver, so graphql-go
// looks each value up by the GraphQL field name buildAggregateType
// attached (graphqlschema.FieldName(col.Name)), not by the raw column
// name - the buckets must be keyed the same way.
func shapeAggregateResult(numeric []catalog.ColumnInfo, aliases []string, values []interface{}) map[string]interface{} {
	result := map[string]interface{}{"count": values[0]}
	if len(numeric) == 0 {
		return result
	}

	sum := map[string]interface{}{}
	avg := map[string]interface{}{}
	min := map[string]interface{}{}
	max := map[string]interface{}{}
	buckets := map[string]map[string]interface{}{"sum": sum, "avg": avg, "min": min, "max": max}

	for i, alias := range aliases[1:] {
		parts := strings.SplitN(alias, ":", 2)
		if len(parts) != 2 {
			continue
		}
		bucket, ok := buckets[parts[0]]
		if !ok {
			continue
		}
		bucket[graphqlschema.FieldName(parts[1])] = values[i+1]
	}

	result["sum"] = sum
	result["avg"] = avg
	result["min"] = min
	result["max"] = max
	return result
}
