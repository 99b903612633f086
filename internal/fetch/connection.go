package fetch

import (
	"context"
	"fmt"

	"github.com/excalibase/excalibase-graphql/internal/apperrors"
	"github.com/excalibase/excalibase-graphql/internal/catalog"
	"github.com/excalibase/excalibase-graphql/internal/sqlbuilder"
	"github.com/graphql-go/graphql"
)

// TableConnection resolves a table's Relay-style connection root field:
// forward pagination via first/after, backward via last/before, plus
// the same filters/orderBy/offset the plain list field takes. orderBy
// defaults to primary key ASC so keyset pagination always has a
// deterministic total order even when the caller supplies none.
func (f *Fetcher) TableConnection(table *catalog.TableInfo) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		filters, orGroups, declaredOrder := parseCommonArgs(table, p.Args)
		if _, explicit := p.Args["orderBy"].(map[string]interface{}); !explicit {
			addWarning(p.Context, fmt.Sprintf("%s: no orderBy supplied, defaulting to primary key ascending", table.Name))
		}

		first, hasFirst := intArg(p.Args, "first")
		last, hasLast := intArg(p.Args, "last")
		if hasFirst && hasLast {
			return nil, apperrors.NewPaginationArgumentError("first/last", "cannot specify both first and last")
		}
		after, hasAfter := stringArg(p.Args, "after")
		before, hasBefore := stringArg(p.Args, "before")
		offset, hasOffset := intArg(p.Args, "offset")

		backward := hasLast

		cursorArgName, cursorValue, hasCursor := "after", after, hasAfter
		if backward {
			cursorArgName, cursorValue, hasCursor = "before", before, hasBefore
		}

		var cursorColumns []sqlbuilder.CursorColumn
		if hasCursor {
			decoded, err := sqlbuilder.DecodeCursor(cursorArgName, cursorValue)
			if err != nil {
				return nil, err
			}
			if err := validateCursorColumns(decoded, declaredOrder); err != nil {
				return nil, apperrors.NewCursorFormatError(cursorArgName, cursorValue, err.Error())
			}
			coerced, err := coerceCursorColumns(table, decoded)
			if err != nil {
				return nil, err
			}
			cursorColumns = coerced
		}

		queryOrder := declaredOrder
		if backward {
			queryOrder = reverseOrder(declaredOrder)
		}

		qb := sqlbuilder.NewQueryBuilder(f.schema, table.Name).
			WithFilters(filters).
			WithOrGroups(orGroups).
			WithOrder(queryOrder)
		if len(cursorColumns) > 0 {
			qb = qb.WithCursor(cursorArgName, cursorColumns, declaredOrder)
		}

		pageSize, hasPageSize := first, hasFirst
		if backward {
			pageSize, hasPageSize = last, hasLast
		}
		if hasPageSize {
			qb = qb.WithLimit(pageSize + 1)
		}
		if hasOffset {
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

		hasExtra := hasPageSize && len(rows) > pageSize
		if hasExtra {
			rows = rows[:pageSize]
		}
		if backward {
			reverseRows(rows)
		}

		f.preloadRelations(p.Context, table, rows)

		totalCount, err := f.count(p.Context, table, filters, orGroups)
		if err != nil {
			return nil, err
		}

		edges := make([]map[string]interface{}, len(rows))
		for i, row := range rows {
			edges[i] = map[string]interface{}{
				"node":   row,
				"cursor": rowCursor(row, declaredOrder),
			}
		}

		pageInfo := map[string]interface{}{
			"hasNextPage":     hasExtra,
			"hasPreviousPage": hasAfter || (hasOffset && offset > 0),
		}
		if backward {
			pageInfo["hasNextPage"] = hasBefore || (hasOffset && offset > 0)
			pageInfo["hasPreviousPage"] = hasExtra
		}
		if len(edges) > 0 {
			pageInfo["startCursor"] = edges[0]["cursor"]
			pageInfo["endCursor"] = edges[len(edges)-1]["cursor"]
		}

		return map[string]interface{}{
			"edges":      edges,
			"pageInfo":   pageInfo,
			"totalCount": totalCount,
		}, nil
	}
}

func (f *Fetcher) count(ctx context.Context, table *catalog.TableInfo, filters []sqlbuilder.Filter, orGroups [][]sqlbuilder.Filter) (int, error) {
	qb := sqlbuilder.NewQueryBuilder(f.schema, table.Name).WithFilters(filters).WithOrGroups(orGroups)
	sql, args := qb.BuildCount()
	row := f.db.QueryRow(ctx, sql, args...)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, wrapFetchErr(table.Name, "count", err)
	}
	return count, nil
}

// validateCursorColumns checks that a decoded cursor's columns are
// exactly the active orderBy's columns, in the same order - a cursor
// from a different ordering is not meaningful keyset continuation.
func validateCursorColumns(decoded []sqlbuilder.CursorColumn, order []sqlbuilder.OrderBy) error {
	if len(decoded) != len(order) {
		return fmt.Errorf("cursor has %d column(s), orderBy has %d", len(decoded), len(order))
	}
	for i, c := range decoded {
		if c.Column != order[i].Column {
			return fmt.Errorf("cursor column %q at position %d does not match orderBy column %q", c.Column, i, order[i].Column)
		}
	}
	return nil
}

// coerceCursorColumns converts a decoded cursor's string values back
// into the Go types pgx expects, per each column's catalog type.
func coerceCursorColumns(table *catalog.TableInfo, decoded []sqlbuilder.CursorColumn) ([]sqlbuilder.CursorColumn, error) {
	out := make([]sqlbuilder.CursorColumn, len(decoded))
	for i, c := range decoded {
		col, ok := table.Column(c.Column)
		if !ok {
			return nil, apperrors.NewCoercionError(c.Column, "unknown", c.Value)
		}
		raw, _ := c.Value.(string)
		coerced, err := sqlbuilder.CoerceCursorValue(c.Column, col.Type, raw)
		if err != nil {
			return nil, err
		}
		out[i] = sqlbuilder.CursorColumn{Column: c.Column, Value: coerced}
	}
	return out, nil
}

func reverseOrder(order []sqlbuilder.OrderBy) []sqlbuilder.OrderBy {
	out := make([]sqlbuilder.OrderBy, len(order))
	for i, o := range order {
		out[i] = sqlbuilder.OrderBy{Column: o.Column, Desc: !o.Desc}
	}
	return out
}

func reverseRows(rows []map[string]interface{}) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}

// rowCursor encodes the cursor for one row under the active orderBy.
func rowCursor(row map[string]interface{}, order []sqlbuilder.OrderBy) string {
	columns := make([]sqlbuilder.CursorColumn, len(order))
	for i, o := range order {
		columns[i] = sqlbuilder.CursorColumn{Column: o.Column, Value: row[o.Column]}
	}
	return sqlbuilder.EncodeCursor(columns)
}
