package sqlbuilder

import (
	"fmt"
	"strings"
)

// buildWhereClause renders qb.filters and qb.orGroups into one AND/OR
// expression. Filters sharing a positive OrGroupID are parenthesized and
// ORed together; every other filter is ANDed at the top level. The
// `or: [...]` argument's groups (qb.orGroups) are each AND-joined, and
// the groups ORed together, as one more top-level AND term - one level
// of grouping, not arbitrary nesting.
func (qb *QueryBuilder) buildWhereClause() (string, []interface{}) {
	var args []interface{}
	type rendered struct {
		sql    string
		filter Filter
	}
	all := make([]rendered, 0, len(qb.filters))

	for _, f := range qb.filters {
		sql, filterArgs := qb.filterToSQL(f)
		if sql == "" {
			continue
		}
		all = append(all, rendered{sql: sql, filter: f})
		args = append(args, filterArgs...)
	}

	orGroups := make(map[int][]string)
	groupOrder := make([]int, 0)
	var andTerms []string

	for _, r := range all {
		if r.filter.OrGroupID > 0 {
			if _, seen := orGroups[r.filter.OrGroupID]; !seen {
				groupOrder = append(groupOrder, r.filter.OrGroupID)
			}
			orGroups[r.filter.OrGroupID] = append(orGroups[r.filter.OrGroupID], r.sql)
		} else {
			andTerms = append(andTerms, r.sql)
		}
	}

	for _, id := range groupOrder {
		conditions := orGroups[id]
		if len(conditions) == 1 {
			andTerms = append(andTerms, conditions[0])
		} else {
			andTerms = append(andTerms, "("+strings.Join(conditions, " OR ")+")")
		}
	}

	if len(qb.orGroups) > 0 {
		var groupTerms []string
		for _, group := range qb.orGroups {
			var condTerms []string
			for _, f := range group {
				sql, fargs := qb.filterToSQL(f)
				if sql == "" {
					continue
				}
				condTerms = append(condTerms, sql)
				args = append(args, fargs...)
			}
			if len(condTerms) > 0 {
				groupTerms = append(groupTerms, "("+strings.Join(condTerms, " AND ")+")")
			}
		}
		if len(groupTerms) > 0 {
			andTerms = append(andTerms, "("+strings.Join(groupTerms, " OR ")+")")
		}
	}

	return strings.Join(andTerms, " AND "), args
}

// filterToSQL renders one Filter to a parameterized condition and the
// positional arguments it consumes (zero for isNull/isNotNull, more
// than one never - hasKeys takes one array-valued argument, not one
// per key).
func (qb *QueryBuilder) filterToSQL(f Filter) (string, []interface{}) {
	col := quoteIdentifier(f.Column)
	if col == "" {
		return "", nil
	}

	switch f.Operator {
	case OpEq:
		return qb.binary(col, "=", f.Value)
	case OpNeq:
		return qb.binary(col, "!=", f.Value)
	case OpGt:
		return qb.binary(col, ">", f.Value)
	case OpGte:
		return qb.binary(col, ">=", f.Value)
	case OpLt:
		return qb.binary(col, "<", f.Value)
	case OpLte:
		return qb.binary(col, "<=", f.Value)
	case OpIn:
		sql := fmt.Sprintf("%s = ANY($%d)", col, qb.argCounter)
		qb.argCounter++
		return sql, []interface{}{f.Value}
	case OpIsNull:
		return fmt.Sprintf("%s IS NULL", col), nil
	case OpIsNotNull:
		return fmt.Sprintf("%s IS NOT NULL", col), nil
	case OpContains:
		return qb.containsSQL(col, f)
	case OpStartsWith:
		sql := fmt.Sprintf("%s ILIKE $%d", col, qb.argCounter)
		qb.argCounter++
		return sql, []interface{}{fmt.Sprintf("%v%%", f.Value)}
	case OpEndsWith:
		sql := fmt.Sprintf("%s ILIKE $%d", col, qb.argCounter)
		qb.argCounter++
		return sql, []interface{}{fmt.Sprintf("%%%v", f.Value)}
	case OpHasKey:
		sql := fmt.Sprintf("%s ? $%d", col, qb.argCounter)
		qb.argCounter++
		return sql, []interface{}{f.Value}
	case OpHasKeys:
		sql := fmt.Sprintf("%s ?& $%d", col, qb.argCounter)
		qb.argCounter++
		return sql, []interface{}{f.Value}
	case OpPath:
		// f.Value carries "key1.key2...": jsonb #> '{key1,key2}'
		return qb.pathSQL(col, f.Value)
	default:
		return qb.binary(col, "=", f.Value)
	}
}

func (qb *QueryBuilder) binary(col, op string, value interface{}) (string, []interface{}) {
	sql := fmt.Sprintf("%s %s $%d", col, op, qb.argCounter)
	qb.argCounter++
	return sql, []interface{}{value}
}

// containsSQL renders OpContains according to the column's category:
// text uses ILIKE substring matching, JSON and array columns use
// Postgres's native @> containment operator.
func (qb *QueryBuilder) containsSQL(col string, f Filter) (string, []interface{}) {
	switch f.Category {
	case CategoryJSON:
		sql := fmt.Sprintf("%s @> $%d", col, qb.argCounter)
		qb.argCounter++
		return sql, []interface{}{f.Value}
	case CategoryArray:
		sql := fmt.Sprintf("%s @> $%d", col, qb.argCounter)
		qb.argCounter++
		return sql, []interface{}{f.Value}
	default:
		sql := fmt.Sprintf("%s ILIKE $%d", col, qb.argCounter)
		qb.argCounter++
		return sql, []interface{}{fmt.Sprintf("%%%v%%", f.Value)}
	}
}

func (qb *QueryBuilder) pathSQL(col string, value interface{}) (string, []interface{}) {
	keys, _ := value.(string)
	segments := strings.Split(keys, ".")
	quoted := make([]string, len(segments))
	for i, s := range segments {
		quoted[i] = s
	}
	literal := "{" + strings.Join(quoted, ",") + "}"
	sql := fmt.Sprintf("%s #> $%d", col, qb.argCounter)
	qb.argCounter++
	return sql, []interface{}{literal}
}

// buildOrderClause renders qb.orderBy, defaulting every entry to ASC.
func (qb *QueryBuilder) buildOrderClause() string {
	parts := make([]string, 0, len(qb.orderBy))
	for _, o := range qb.orderBy {
		quoted := quoteIdentifier(o.Column)
		if quoted == "" {
			continue
		}
		if o.Desc {
			parts = append(parts, quoted+" DESC")
		} else {
			parts = append(parts, quoted+" ASC")
		}
	}
	return strings.Join(parts, ", ")
}
