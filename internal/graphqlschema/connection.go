package graphqlschema

import (
	"github.com/excalibase/excalibase-graphql/internal/catalog"
	"github.com/graphql-go/graphql"
)

// PageInfoType is the Relay-style page-info object shared by every
// table's connection type.
var PageInfoType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PageInfo",
	Fields: graphql.Fields{
		"hasNextPage":     &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"hasPreviousPage": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"startCursor":     &graphql.Field{Type: graphql.String},
		"endCursor":       &graphql.Field{Type: graphql.String},
	},
})

// buildEdgeType builds the <Name>Edge type wrapping a table's object
// type with a cursor, per the connection model (§4.3/§9).
func buildEdgeType(nodeType *graphql.Object) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: nodeType.Name() + "Edge",
		Fields: graphql.Fields{
			"node":   &graphql.Field{Type: nodeType},
			"cursor": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})
}

// buildConnectionType builds the <Name>Connection type: edges,
// sharedPageInfo, and a totalCount independent of pagination window.
func buildConnectionType(nodeType *graphql.Object, edgeType *graphql.Object) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: nodeType.Name() + "Connection",
		Fields: graphql.Fields{
			"edges":      &graphql.Field{Type: graphql.NewList(edgeType)},
			"pageInfo":   &graphql.Field{Type: graphql.NewNonNull(PageInfoType)},
			"totalCount": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		},
	})
}

// connectionArgs is the argument set common to every <name>Connection
// root field: forward and backward cursor pagination plus the same
// filters and ordering the plain list field takes.
func connectionArgs(table *catalog.TableInfo, in func(catalog.ColumnInfo) graphql.Input) graphql.FieldConfigArgument {
	args := argsFromFields(buildFilterFields(table, in))
	args["or"] = &graphql.ArgumentConfig{Type: graphql.NewList(buildFilterInputType(table, in))}
	args["first"] = &graphql.ArgumentConfig{Type: graphql.Int}
	args["after"] = &graphql.ArgumentConfig{Type: graphql.String}
	args["last"] = &graphql.ArgumentConfig{Type: graphql.Int}
	args["before"] = &graphql.ArgumentConfig{Type: graphql.String}
	args["offset"] = &graphql.ArgumentConfig{Type: graphql.Int}
	args["orderBy"] = &graphql.ArgumentConfig{Type: buildOrderByInputType(table)}
	return args
}

// listArgs is the argument set for the plain (non-connection) list
// root field: flat filters plus limit/offset/orderBy, no cursors.
func listArgs(table *catalog.TableInfo, in func(catalog.ColumnInfo) graphql.Input) graphql.FieldConfigArgument {
	args := argsFromFields(buildFilterFields(table, in))
	args["or"] = &graphql.ArgumentConfig{Type: graphql.NewList(buildFilterInputType(table, in))}
	args["limit"] = &graphql.ArgumentConfig{Type: graphql.Int}
	args["offset"] = &graphql.ArgumentConfig{Type: graphql.Int}
	args["orderBy"] = &graphql.ArgumentConfig{Type: buildOrderByInputType(table)}
	return args
}
