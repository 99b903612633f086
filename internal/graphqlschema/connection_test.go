package graphqlschema

import (
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
)

func samplePostType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Posts",
		Fields: graphql.Fields{
			"id": &graphql.Field{Type: graphql.Int},
		},
	})
}

func TestBuildEdgeTypeName(t *testing.T) {
	edge := buildEdgeType(samplePostType())
	assert.Equal(t, "PostsEdge", edge.Name())
	assert.Contains(t, edge.Fields(), "node")
	assert.Contains(t, edge.Fields(), "cursor")
}

func TestBuildConnectionTypeName(t *testing.T) {
	node := samplePostType()
	edge := buildEdgeType(node)
	conn := buildConnectionType(node, edge)
	assert.Equal(t, "PostsConnection", conn.Name())
	assert.Contains(t, conn.Fields(), "edges")
	assert.Contains(t, conn.Fields(), "pageInfo")
	assert.Contains(t, conn.Fields(), "totalCount")
}

func TestConnectionArgsIncludesCursorPaginationAndFilters(t *testing.T) {
	args := connectionArgs(testTable(), inputType)
	assert.Contains(t, args, "first")
	assert.Contains(t, args, "after")
	assert.Contains(t, args, "last")
	assert.Contains(t, args, "before")
	assert.Contains(t, args, "orderBy")
	assert.Contains(t, args, "or")
	assert.Contains(t, args, "title"+FilterSuffixContains)
}

func TestListArgsHasLimitOffsetNoCursors(t *testing.T) {
	args := listArgs(testTable(), inputType)
	assert.Contains(t, args, "limit")
	assert.Contains(t, args, "offset")
	assert.NotContains(t, args, "first")
	assert.NotContains(t, args, "after")
}
