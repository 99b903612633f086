package graphqlschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToPascalCase(t *testing.T) {
	assert.Equal(t, "OrderItems", toPascalCase("order_items"))
	assert.Equal(t, "User", toPascalCase("user"))
}

func TestToCamelCase(t *testing.T) {
	assert.Equal(t, "firstName", toCamelCase("first_name"))
	assert.Equal(t, "id", toCamelCase("id"))
}

func TestSingularize(t *testing.T) {
	assert.Equal(t, "post", singularize("posts"))
	assert.Equal(t, "category", singularize("categories"))
	assert.Equal(t, "box", singularize("boxes"))
	assert.Equal(t, "status", singularize("status"))
}

func TestPluralize(t *testing.T) {
	assert.Equal(t, "posts", pluralize("post"))
	assert.Equal(t, "categories", pluralize("category"))
	assert.Equal(t, "boxes", pluralize("box"))
	assert.Equal(t, "keys", pluralize("key"))
}

func TestRelationFieldName(t *testing.T) {
	assert.Equal(t, "author", relationFieldName("author_id"))
	assert.Equal(t, "parent", relationFieldName("parentId"))
}

func TestReverseRelationFieldName(t *testing.T) {
	assert.Equal(t, "posts", reverseRelationFieldName("post"))
}
