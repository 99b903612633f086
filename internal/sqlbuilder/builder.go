package sqlbuilder

import (
	"fmt"
	"strings"
)

// QueryBuilder renders parameterized SQL for one table, independent of
// database execution so its output is unit-testable without a
// connection. One QueryBuilder builds exactly one statement; build a
// fresh one per query.
type QueryBuilder struct {
	schema  string
	table   string
	columns []string

	filters []Filter
	orGroups [][]Filter // each inner slice is ANDed, the outer groups are ORed (the `or: [...]` argument)
	orderBy []OrderBy

	limit  *int
	offset *int

	cursorColumns    []CursorColumn
	cursorDirections []bool // per orderBy column, true = DESC

	returning []string

	argCounter int
}

// NewQueryBuilder creates a builder targeting schema.table.
func NewQueryBuilder(schema, table string) *QueryBuilder {
	return &QueryBuilder{schema: schema, table: table, argCounter: 1}
}

func (qb *QueryBuilder) WithColumns(columns []string) *QueryBuilder {
	qb.columns = columns
	return qb
}

func (qb *QueryBuilder) WithFilters(filters []Filter) *QueryBuilder {
	qb.filters = filters
	return qb
}

// WithOrGroups attaches the `or: [<Name>FilterInput]` argument: each
// element's own filters are ANDed together, and the elements themselves
// are ORed (§4.4) - distinct from a single flat OrGroupID disjunction,
// which only groups individual conditions, not whole AND-clauses.
func (qb *QueryBuilder) WithOrGroups(groups [][]Filter) *QueryBuilder {
	qb.orGroups = groups
	return qb
}

func (qb *QueryBuilder) WithOrder(order []OrderBy) *QueryBuilder {
	qb.orderBy = order
	return qb
}

func (qb *QueryBuilder) WithLimit(limit int) *QueryBuilder {
	qb.limit = &limit
	return qb
}

func (qb *QueryBuilder) WithOffset(offset int) *QueryBuilder {
	qb.offset = &offset
	return qb
}

func (qb *QueryBuilder) WithReturning(columns []string) *QueryBuilder {
	qb.returning = columns
	return qb
}

// WithCursor attaches a decoded keyset cursor. after runs the tuple
// strictly greater than the cursor in orderBy's direction; before runs
// it strictly less, reversing the scan direction in the caller's
// responsibility (the builder only renders the comparison, not the
// final re-reverse of a "before" page).
func (qb *QueryBuilder) WithCursor(op string, columns []CursorColumn, orderBy []OrderBy) *QueryBuilder {
	qb.cursorColumns = columns
	directions := make([]bool, len(orderBy))
	for i, o := range orderBy {
		directions[i] = o.Desc
	}
	if op == "before" {
		for i := range directions {
			directions[i] = !directions[i]
		}
	}
	qb.cursorDirections = directions
	return qb
}

// BuildSelect renders a SELECT statement plus its positional arguments.
func (qb *QueryBuilder) BuildSelect() (string, []interface{}) {
	selectClause := "*"
	if len(qb.columns) > 0 {
		quoted := quoteAll(qb.columns)
		if len(quoted) > 0 {
			selectClause = strings.Join(quoted, ", ")
		}
	}

	query := fmt.Sprintf("SELECT %s FROM %s", selectClause, qualifyTable(qb.schema, qb.table))

	var args []interface{}
	var whereParts []string

	if len(qb.filters) > 0 || len(qb.orGroups) > 0 {
		where, whereArgs := qb.buildWhereClause()
		if where != "" {
			whereParts = append(whereParts, where)
			args = append(args, whereArgs...)
		}
	}

	if len(qb.cursorColumns) > 0 {
		cursorClause, cursorArgs := qb.cursorCondition(qb.cursorColumns, qb.cursorDirections)
		if cursorClause != "" {
			if len(whereParts) > 0 {
				cursorClause = "(" + cursorClause + ")"
			}
			whereParts = append(whereParts, cursorClause)
			args = append(args, cursorArgs...)
		}
	}

	if len(whereParts) > 0 {
		query += " WHERE " + strings.Join(whereParts, " AND ")
	}

	if len(qb.orderBy) > 0 {
		query += " ORDER BY " + qb.buildOrderClause()
	}
	if qb.limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *qb.limit)
	}
	if qb.offset != nil {
		query += fmt.Sprintf(" OFFSET %d", *qb.offset)
	}

	return query, args
}

// WhereClause renders qb's filters as a standalone condition (no WHERE
// keyword), for callers building a statement shape BuildSelect/BuildCount
// don't cover - the data fetcher's aggregate queries, which SELECT
// SUM/AVG/MIN/MAX expressions BuildSelect has no notion of.
func (qb *QueryBuilder) WhereClause() (string, []interface{}) {
	if len(qb.filters) == 0 && len(qb.orGroups) == 0 {
		return "", nil
	}
	return qb.buildWhereClause()
}

// BuildCount renders a SELECT COUNT(*) honoring the same filters as
// BuildSelect (cursors and orderBy are irrelevant to a total count).
func (qb *QueryBuilder) BuildCount() (string, []interface{}) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", qualifyTable(qb.schema, qb.table))
	var args []interface{}
	if len(qb.filters) > 0 || len(qb.orGroups) > 0 {
		where, whereArgs := qb.buildWhereClause()
		if where != "" {
			query += " WHERE " + where
			args = append(args, whereArgs...)
		}
	}
	return query, args
}

// BuildInsert renders an INSERT with a RETURNING clause (always *
// unless WithReturning narrowed it), so the fetcher gets the full
// server-computed row - defaults, generated columns, triggers - in one
// round trip.
func (qb *QueryBuilder) BuildInsert(data map[string]interface{}) (string, []interface{}) {
	if len(data) == 0 {
		return "", nil
	}
	cols, placeholders, args := qb.insertAssignments(data)
	if len(cols) == 0 {
		return "", nil
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		qualifyTable(qb.schema, qb.table),
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
	)
	query += qb.returningClause()
	return query, args
}

func (qb *QueryBuilder) insertAssignments(data map[string]interface{}) ([]string, []string, []interface{}) {
	var cols, placeholders []string
	var args []interface{}
	for _, col := range sortedKeys(data) {
		quoted := quoteIdentifier(col)
		if quoted == "" {
			continue
		}
		cols = append(cols, quoted)
		placeholders = append(placeholders, fmt.Sprintf("$%d", qb.argCounter))
		args = append(args, data[col])
		qb.argCounter++
	}
	return cols, placeholders, args
}

// BuildUpdate renders an UPDATE SET ... WHERE ... RETURNING.
func (qb *QueryBuilder) BuildUpdate(data map[string]interface{}) (string, []interface{}) {
	if len(data) == 0 {
		return "", nil
	}
	var setClauses []string
	var args []interface{}
	for _, col := range sortedKeys(data) {
		quoted := quoteIdentifier(col)
		if quoted == "" {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", quoted, qb.argCounter))
		args = append(args, data[col])
		qb.argCounter++
	}
	if len(setClauses) == 0 {
		return "", nil
	}

	query := fmt.Sprintf("UPDATE %s SET %s", qualifyTable(qb.schema, qb.table), strings.Join(setClauses, ", "))
	if len(qb.filters) > 0 {
		where, whereArgs := qb.buildWhereClause()
		if where != "" {
			query += " WHERE " + where
			args = append(args, whereArgs...)
		}
	}
	query += qb.returningClause()
	return query, args
}

// BuildDelete renders a DELETE ... WHERE ... RETURNING.
func (qb *QueryBuilder) BuildDelete() (string, []interface{}) {
	query := fmt.Sprintf("DELETE FROM %s", qualifyTable(qb.schema, qb.table))
	var args []interface{}
	if len(qb.filters) > 0 {
		where, whereArgs := qb.buildWhereClause()
		if where != "" {
			query += " WHERE " + where
			args = append(args, whereArgs...)
		}
	}
	query += qb.returningClause()
	return query, args
}

func (qb *QueryBuilder) returningClause() string {
	cols := qb.returning
	if len(cols) == 0 {
		return " RETURNING *"
	}
	quoted := quoteAll(cols)
	if len(quoted) == 0 {
		return " RETURNING *"
	}
	return " RETURNING " + strings.Join(quoted, ", ")
}

func quoteAll(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if q := quoteIdentifier(n); q != "" {
			out = append(out, q)
		}
	}
	return out
}

// sortedKeys returns data's keys sorted, so repeated builds over the
// same map always number placeholders identically.
func sortedKeys(data map[string]interface{}) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}
