package graphqlschema

import (
	"github.com/excalibase/excalibase-graphql/internal/catalog"
	"github.com/graphql-go/graphql"
)

// OrderDirectionEnum is the sort-direction enum (§4.3): just ASC/DESC,
// unlike the nulls-ordering variants a generic order-by type might add.
var OrderDirectionEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "OrderDirection",
	Values: graphql.EnumValueConfigMap{
		"ASC":  &graphql.EnumValueConfig{Value: "ASC"},
		"DESC": &graphql.EnumValueConfig{Value: "DESC"},
	},
})

// buildOrderByInputType builds the <Name>OrderByInput type: one
// optional OrderDirection field per column, so a caller sorts by any
// combination of columns by setting more than one field (applied in
// declaration order by the SQL Builder).
func buildOrderByInputType(table *catalog.TableInfo) *graphql.InputObject {
	fields := graphql.InputObjectConfigFieldMap{}
	for _, col := range table.Columns {
		fields[fieldName(col.Name)] = &graphql.InputObjectFieldConfig{Type: OrderDirectionEnum}
	}
	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   typeName(table.Name) + "OrderByInput",
		Fields: fields,
	})
}
