package sqlbuilder

import (
	"testing"

	"github.com/excalibase/excalibase-graphql/internal/catalog"
	"github.com/stretchr/testify/assert"
)

func argsTestTable() *catalog.TableInfo {
	return &catalog.TableInfo{
		Name: "posts",
		Columns: []catalog.ColumnInfo{
			{Name: "id", Type: "integer", PrimaryKey: true},
			{Name: "title", Type: "text"},
			{Name: "published", Type: "boolean"},
			{Name: "metadata", Type: "jsonb", Nullable: true},
			{Name: "tags", Type: "text[]", Nullable: true},
		},
	}
}

func TestParseFlatFiltersSkipsReservedArguments(t *testing.T) {
	filters := ParseFlatFilters(argsTestTable(), map[string]interface{}{
		"first": 10, "orderBy": map[string]interface{}{}, "or": []interface{}{},
		"published": true,
	})
	assert.Len(t, filters, 1)
	assert.Equal(t, "published", filters[0].Column)
	assert.Equal(t, OpEq, filters[0].Operator)
}

func TestParseFlatFiltersMapsSuffixedArgumentToOperatorAndCategory(t *testing.T) {
	filters := ParseFlatFilters(argsTestTable(), map[string]interface{}{
		"title_contains": "hello",
	})
	assert.Len(t, filters, 1)
	assert.Equal(t, "title", filters[0].Column)
	assert.Equal(t, OpContains, filters[0].Operator)
	assert.Equal(t, CategoryText, filters[0].Category)
}

func TestParseFlatFiltersDropsUnknownColumn(t *testing.T) {
	filters := ParseFlatFilters(argsTestTable(), map[string]interface{}{"bogus_eq": "x"})
	assert.Empty(t, filters)
}

func TestParseOrGroupsAndsWithinEachElementOrsAcrossElements(t *testing.T) {
	table := argsTestTable()
	groups := ParseOrGroups(table, []interface{}{
		map[string]interface{}{"title": "a", "published": true},
		map[string]interface{}{"title": "b"},
	})
	assert.Len(t, groups, 2)
	assert.Len(t, groups[0], 2)
	assert.Len(t, groups[1], 1)
}

func TestParseOrderByArgOrdersByColumnDeclarationOrder(t *testing.T) {
	table := argsTestTable()
	order := ParseOrderByArg(table, map[string]interface{}{
		"title": "DESC",
		"id":    "ASC",
	})
	assert.Len(t, order, 2)
	assert.Equal(t, "id", order[0].Column)
	assert.False(t, order[0].Desc)
	assert.Equal(t, "title", order[1].Column)
	assert.True(t, order[1].Desc)
}
