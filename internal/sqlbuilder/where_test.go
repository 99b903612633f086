package sqlbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterToSQLEqAndComparisonOperators(t *testing.T) {
	qb := NewQueryBuilder("public", "posts")
	sql, args := qb.filterToSQL(Filter{Column: "view_count", Operator: OpGte, Value: 10})
	assert.Equal(t, `"view_count" >= $1`, sql)
	assert.Equal(t, []interface{}{10}, args)
}

func TestFilterToSQLIsNullTakesNoArgument(t *testing.T) {
	qb := NewQueryBuilder("public", "posts")
	sql, args := qb.filterToSQL(Filter{Column: "deleted_at", Operator: OpIsNull})
	assert.Equal(t, `"deleted_at" IS NULL`, sql)
	assert.Nil(t, args)
}

func TestFilterToSQLContainsVariesByCategory(t *testing.T) {
	qb := NewQueryBuilder("public", "posts")
	sql, args := qb.filterToSQL(Filter{Column: "title", Operator: OpContains, Value: "hello", Category: CategoryText})
	assert.Equal(t, `"title" ILIKE $1`, sql)
	assert.Equal(t, []interface{}{"%hello%"}, args)

	qb2 := NewQueryBuilder("public", "posts")
	sql, args = qb2.filterToSQL(Filter{Column: "metadata", Operator: OpContains, Value: `{"a":1}`, Category: CategoryJSON})
	assert.Equal(t, `"metadata" @> $1`, sql)
	assert.Equal(t, []interface{}{`{"a":1}`}, args)
}

func TestFilterToSQLStartsWithEndsWith(t *testing.T) {
	qb := NewQueryBuilder("public", "posts")
	sql, args := qb.filterToSQL(Filter{Column: "title", Operator: OpStartsWith, Value: "Hello"})
	assert.Equal(t, `"title" ILIKE $1`, sql)
	assert.Equal(t, []interface{}{"Hello%"}, args)
}

func TestFilterToSQLInUsesAnyNotInList(t *testing.T) {
	qb := NewQueryBuilder("public", "posts")
	sql, _ := qb.filterToSQL(Filter{Column: "id", Operator: OpIn, Value: []int{1, 2, 3}})
	assert.Equal(t, `"id" = ANY($1)`, sql)
}

func TestBuildWhereClauseAndsTopLevelFilters(t *testing.T) {
	qb := NewQueryBuilder("public", "posts")
	qb.filters = []Filter{
		{Column: "published", Operator: OpEq, Value: true},
		{Column: "author_id", Operator: OpEq, Value: 7},
	}
	where, args := qb.buildWhereClause()
	assert.Equal(t, `"published" = $1 AND "author_id" = $2`, where)
	assert.Equal(t, []interface{}{true, 7}, args)
}

func TestBuildWhereClauseGroupsSharedOrGroupID(t *testing.T) {
	qb := NewQueryBuilder("public", "posts")
	qb.filters = []Filter{
		{Column: "title", Operator: OpEq, Value: "a", OrGroupID: 1},
		{Column: "title", Operator: OpEq, Value: "b", OrGroupID: 1},
		{Column: "published", Operator: OpEq, Value: true},
	}
	where, _ := qb.buildWhereClause()
	assert.Equal(t, `"published" = $3 AND ("title" = $1 OR "title" = $2)`, where)
}

func TestBuildOrderClauseDefaultsAscending(t *testing.T) {
	qb := NewQueryBuilder("public", "posts")
	qb.orderBy = []OrderBy{{Column: "id"}, {Column: "created_at", Desc: true}}
	assert.Equal(t, `"id" ASC, "created_at" DESC`, qb.buildOrderClause())
}
