package fetch

import (
	"github.com/excalibase/excalibase-graphql/internal/catalog"
	"github.com/excalibase/excalibase-graphql/internal/sqlbuilder"
	"github.com/graphql-go/graphql"
)

// TableList resolves a table's plain (non-connection) root list field:
// flat filters, limit/offset, orderBy, no cursor pagination.
func (f *Fetcher) TableList(table *catalog.TableInfo) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		filters, orGroups, orderBy := parseCommonArgs(table, p.Args)

		qb := sqlbuilder.NewQueryBuilder(f.schema, table.Name).
			WithFilters(filters).
			WithOrGroups(orGroups).
			WithOrder(orderBy)
		if limit, ok := intArg(p.Args, "limit"); ok {
			qb = qb.WithLimit(limit)
		}
		if offset, ok := intArg(p.Args, "offset"); ok {
			qb = qb.WithOffset(offset)
		}

		sql, args := qb.BuildSelect()
		result, err := f.db.Query(p.Context, sql, args...)
		if err != nil {
			return nil, wrapFetchErr(table.Name, "select", err)
		}
		rows, err := scanRows(result)
		if err != nil {
			return nil, wrapFetchErr(table.Name, "select", err)
		}

		f.preloadRelations(p.Context, table, rows)
		return rows, nil
	}
}
