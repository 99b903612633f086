package graphqlschema

import (
	"github.com/excalibase/excalibase-graphql/internal/catalog"
	"github.com/graphql-go/graphql"
)

// buildEnumType emits a GraphQL enum mirroring a reflected Postgres
// enum type. Enum values become GraphQL enum value names verbatim;
// Postgres enum labels are already valid GraphQL names in practice
// (uppercase identifiers), so no escaping is attempted here.
func buildEnumType(ct *catalog.CustomType) *graphql.Enum {
	values := graphql.EnumValueConfigMap{}
	for _, v := range ct.Values {
		values[v] = &graphql.EnumValueConfig{Value: v}
	}
	return graphql.NewEnum(graphql.EnumConfig{
		Name:   typeName(ct.Name),
		Values: values,
	})
}

// buildCompositeType emits a GraphQL object mirroring a reflected
// Postgres composite type, one field per attribute using real
// catalog-reported attribute names (§9 resolution). Composite types
// are only projected as output; mutation inputs accept them as JSON
// (see Generator.outputType/inputType).
func buildCompositeType(ct *catalog.CustomType) *graphql.Object {
	fields := graphql.Fields{}
	for _, attr := range ct.Attributes {
		attrName := attr.Name
		fields[fieldName(attr.Name)] = &graphql.Field{
			Type: scalarFor(attr.Type),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if row, ok := p.Source.(map[string]interface{}); ok {
					return row[attrName], nil
				}
				return nil, nil
			},
		}
	}
	return graphql.NewObject(graphql.ObjectConfig{
		Name:   typeName(ct.Name),
		Fields: fields,
	})
}
