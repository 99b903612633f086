package graphqlschema

import (
	"github.com/excalibase/excalibase-graphql/internal/catalog"
	"github.com/graphql-go/graphql"
)

// reverseRef describes one incoming foreign key a table should expose
// as a plural reverse-relationship field, discovered by scanning every
// other table's foreign keys during the build pass.
type reverseRef struct {
	owningTable *catalog.TableInfo
	fk          catalog.ForeignKeyInfo
}

// addScalarFields attaches one field per column, resolved from the
// row map the Data Fetcher (C5) produces. typeOf resolves a column to
// its GraphQL output type, allowing the caller to substitute custom
// enum/composite/domain types ahead of the plain scalar mapping.
func addScalarFields(obj *graphql.Object, table *catalog.TableInfo, typeOf func(catalog.ColumnInfo) graphql.Output) {
	for _, col := range table.Columns {
		name := fieldName(col.Name)
		colName := col.Name
		obj.AddFieldConfig(name, &graphql.Field{
			Type: typeOf(col),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if row, ok := p.Source.(map[string]interface{}); ok {
					return row[colName], nil
				}
				return nil, nil
			},
		})
	}
}

// addForwardRelationFields attaches one field per owned foreign key,
// named after the FK column with its id suffix stripped ("author_id"
// -> "author"), resolving to the single referenced row.
func addForwardRelationFields(obj *graphql.Object, table *catalog.TableInfo, objectTypes map[string]*graphql.Object, resolvers Resolvers) {
	for _, fk := range table.ForeignKeys {
		refType, ok := objectTypes[fk.ReferencedTable]
		if !ok {
			continue
		}
		name := relationFieldName(fk.ColumnName)
		obj.AddFieldConfig(name, &graphql.Field{
			Type:    refType,
			Resolve: resolvers.ForeignKeyRelation(table, fk),
		})
	}
}

// addReverseRelationFields attaches one plural field per incoming
// foreign key from a non-view table, per §4.3's "reverse only for
// non-views" rule.
func addReverseRelationFields(obj *graphql.Object, table *catalog.TableInfo, objectTypes map[string]*graphql.Object, refs []reverseRef, resolvers Resolvers) {
	for _, ref := range refs {
		if ref.owningTable.IsView {
			continue
		}
		owningType, ok := objectTypes[ref.owningTable.Name]
		if !ok {
			continue
		}
		name := reverseRelationFieldName(singularize(ref.owningTable.Name))
		obj.AddFieldConfig(name, &graphql.Field{
			Type:    graphql.NewList(owningType),
			Resolve: resolvers.ReverseRelation(table, ref.fk, ref.owningTable),
		})
	}
}

// buildReverseIndex maps every table name to the list of incoming
// foreign keys discovered across the whole model, so reverse fields
// can be attached in a single pass without re-scanning all tables per
// target.
func buildReverseIndex(model *catalog.Model) map[string][]reverseRef {
	index := map[string][]reverseRef{}
	for _, table := range model.Tables {
		for _, fk := range table.ForeignKeys {
			index[fk.ReferencedTable] = append(index[fk.ReferencedTable], reverseRef{owningTable: table, fk: fk})
		}
	}
	return index
}

// buildCreateInputType builds the <Name>Input type used by create and
// createMany mutations: every column except auto-generated ones. in
// resolves a column to its input scalar, substituting custom
// enum/domain types ahead of the plain catalog-type mapping.
func buildCreateInputType(table *catalog.TableInfo, in func(catalog.ColumnInfo) graphql.Input) *graphql.InputObject {
	fields := graphql.InputObjectConfigFieldMap{}
	for _, col := range table.Columns {
		if isAutoGenerated(col) {
			continue
		}
		fields[fieldName(col.Name)] = &graphql.InputObjectFieldConfig{Type: in(col)}
	}
	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   typeName(table.Name) + "Input",
		Fields: fields,
	})
}

// buildUpdateInputType builds the <Name>UpdateInput type: every
// non-primary-key, non-auto-generated column, all optional so a
// caller can patch a subset of fields.
func buildUpdateInputType(table *catalog.TableInfo, in func(catalog.ColumnInfo) graphql.Input) *graphql.InputObject {
	fields := graphql.InputObjectConfigFieldMap{}
	for _, col := range table.Columns {
		if isAutoGenerated(col) || col.PrimaryKey {
			continue
		}
		fields[fieldName(col.Name)] = &graphql.InputObjectFieldConfig{Type: in(col)}
	}
	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   typeName(table.Name) + "UpdateInput",
		Fields: fields,
	})
}

// primaryKeyArgs builds the argument set identifying a single row by
// its primary key, used by update<Name> and delete<Name>.
func primaryKeyArgs(table *catalog.TableInfo) graphql.FieldConfigArgument {
	args := graphql.FieldConfigArgument{}
	for _, col := range table.PrimaryKey() {
		args[fieldName(col.Name)] = &graphql.ArgumentConfig{Type: graphql.NewNonNull(inputType(col))}
	}
	return args
}
