package fetch

import (
	"testing"

	"github.com/excalibase/excalibase-graphql/internal/catalog"
	"github.com/excalibase/excalibase-graphql/internal/sqlbuilder"
	"github.com/stretchr/testify/assert"
)

func mutationsTestTable() *catalog.TableInfo {
	return &catalog.TableInfo{
		Name: "posts",
		Columns: []catalog.ColumnInfo{
			{Name: "id", Type: "serial", PrimaryKey: true},
			{Name: "author_id", Type: "integer"},
			{Name: "title", Type: "text"},
		},
	}
}

func TestGraphqlToDBColumnNamesTranslatesKnownFields(t *testing.T) {
	out := graphqlToDBColumnNames(mutationsTestTable(), map[string]interface{}{
		"authorId": 7,
		"title":    "hello",
	})
	assert.Equal(t, map[string]interface{}{"author_id": 7, "title": "hello"}, out)
}

func TestGraphqlToDBColumnNamesIgnoresUnknownFields(t *testing.T) {
	out := graphqlToDBColumnNames(mutationsTestTable(), map[string]interface{}{
		"nonsense": "x",
	})
	assert.Empty(t, out)
}

func TestPrimaryKeyFiltersBuildsEqualityOnPKColumns(t *testing.T) {
	filters := primaryKeyFilters(mutationsTestTable(), map[string]interface{}{"id": 3})
	assert.Equal(t, []sqlbuilder.Filter{{Column: "id", Operator: sqlbuilder.OpEq, Value: 3}}, filters)
}

func TestPrimaryKeyFiltersEmptyWhenArgMissing(t *testing.T) {
	filters := primaryKeyFilters(mutationsTestTable(), map[string]interface{}{})
	assert.Empty(t, filters)
}
