package graphqlschema

import (
	"github.com/excalibase/excalibase-graphql/internal/catalog"
	"github.com/graphql-go/graphql"
)

// buildConnectInputType builds the <Name>ConnectInput type identifying
// an existing row by primary key, used by create<Name>WithRelations'
// "_connect" sub-inputs.
func buildConnectInputType(table *catalog.TableInfo) *graphql.InputObject {
	fields := graphql.InputObjectConfigFieldMap{}
	for _, col := range table.PrimaryKey() {
		fields[fieldName(col.Name)] = &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(inputType(col))}
	}
	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   typeName(table.Name) + "ConnectInput",
		Fields: fields,
	})
}

// buildWithRelationsInputType builds the <Name>WithRelationsInput type:
// the table's own columns plus, for each owned foreign key, a
// "<relation>_connect" (attach to an existing referenced row) and
// "<relation>_create" (create the referenced row inline) sub-input,
// and for each incoming foreign key from a non-view table, a
// "<reverse>_createMany" sub-input to create dependent rows that
// reference the new row once it exists.
func buildWithRelationsInputType(
	table *catalog.TableInfo,
	createInputs map[string]*graphql.InputObject,
	connectInputs map[string]*graphql.InputObject,
	reverseRefs []reverseRef,
	in func(catalog.ColumnInfo) graphql.Input,
) *graphql.InputObject {
	fields := graphql.InputObjectConfigFieldMap{}
	for _, col := range table.Columns {
		if isAutoGenerated(col) {
			continue
		}
		fields[fieldName(col.Name)] = &graphql.InputObjectFieldConfig{Type: in(col)}
	}

	for _, fk := range table.ForeignKeys {
		refConnect, hasConnect := connectInputs[fk.ReferencedTable]
		refCreate, hasCreate := createInputs[fk.ReferencedTable]
		relation := relationFieldName(fk.ColumnName)
		if hasConnect {
			fields[relation+"_connect"] = &graphql.InputObjectFieldConfig{Type: refConnect}
		}
		if hasCreate {
			fields[relation+"_create"] = &graphql.InputObjectFieldConfig{Type: refCreate}
		}
	}

	for _, ref := range reverseRefs {
		if ref.owningTable.IsView {
			continue
		}
		dependentCreate, ok := createInputs[ref.owningTable.Name]
		if !ok {
			continue
		}
		name := reverseRelationFieldName(singularize(ref.owningTable.Name))
		fields[name+"_createMany"] = &graphql.InputObjectFieldConfig{Type: graphql.NewList(dependentCreate)}
	}

	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   typeName(table.Name) + "WithRelationsInput",
		Fields: fields,
	})
}
