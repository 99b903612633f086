package graphqlschema

import (
	"testing"

	"github.com/excalibase/excalibase-graphql/internal/catalog"
	"github.com/stretchr/testify/assert"
)

func TestNumericColumnsExcludesTextAndBoolean(t *testing.T) {
	cols := numericColumns(testTable())
	assert.Len(t, cols, 1)
	assert.Equal(t, "id", cols[0].Name)
}

func TestBuildAggregateTypeIncludesSumAvgMinMax(t *testing.T) {
	agg := buildAggregateType(testTable())
	assert.Equal(t, "PostsAggregate", agg.Name())
	fields := agg.Fields()
	assert.Contains(t, fields, "count")
	assert.Contains(t, fields, "sum")
	assert.Contains(t, fields, "avg")
	assert.Contains(t, fields, "min")
	assert.Contains(t, fields, "max")
}

func TestBuildAggregateTypeOmitsSubObjectsWithoutNumericColumns(t *testing.T) {
	table := &catalog.TableInfo{
		Name: "tags",
		Columns: []catalog.ColumnInfo{
			{Name: "id", Type: "uuid", PrimaryKey: true},
			{Name: "label", Type: "text"},
		},
	}
	agg := buildAggregateType(table)
	fields := agg.Fields()
	assert.Contains(t, fields, "count")
	assert.NotContains(t, fields, "sum")
}
