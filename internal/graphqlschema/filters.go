package graphqlschema

import (
	"github.com/excalibase/excalibase-graphql/internal/catalog"
	"github.com/graphql-go/graphql"
)

// Operator suffix vocabulary (§6). A bare field name is an implicit Eq;
// FilterSuffixEq is also accepted as an explicit alias. The SQL Builder
// (C4) parses argument names against this same suffix set.
const (
	FilterSuffixEq          = "_eq"
	FilterSuffixNeq         = "_neq"
	FilterSuffixGt          = "_gt"
	FilterSuffixGte         = "_gte"
	FilterSuffixLt          = "_lt"
	FilterSuffixLte         = "_lte"
	FilterSuffixIn          = "_in"
	FilterSuffixContains    = "_contains"
	FilterSuffixStartsWith  = "_startsWith"
	FilterSuffixEndsWith    = "_endsWith"
	FilterSuffixIsNull      = "_isNull"
	FilterSuffixIsNotNull   = "_isNotNull"
	FilterSuffixHasKey      = "_hasKey"
	FilterSuffixHasKeys     = "_hasKeys"
	FilterSuffixPath        = "_path"
)

// AllSuffixes lists every recognized operator suffix, longest first so
// a greedy match against an argument name never stops at a shorter
// suffix that is itself a prefix of a longer one.
var AllSuffixes = []string{
	FilterSuffixIsNotNull,
	FilterSuffixStartsWith,
	FilterSuffixEndsWith,
	FilterSuffixContains,
	FilterSuffixHasKeys,
	FilterSuffixHasKey,
	FilterSuffixIsNull,
	FilterSuffixPath,
	FilterSuffixNeq,
	FilterSuffixGte,
	FilterSuffixLte,
	FilterSuffixIn,
	FilterSuffixGt,
	FilterSuffixLt,
	FilterSuffixEq,
}

// buildFilterFields returns, per column of table, the set of filter
// argument names (column field name + operator suffix) and the
// GraphQL input type each accepts. Shared between the per-table
// FilterInput type and the flat root-query argument list, which carry
// identical fields (§4.4).
func buildFilterFields(table *catalog.TableInfo, in func(catalog.ColumnInfo) graphql.Input) graphql.InputObjectConfigFieldMap {
	fields := graphql.InputObjectConfigFieldMap{}

	for _, col := range table.Columns {
		name := fieldName(col.Name)
		scalar := in(col)
		effectiveScalar := scalar
		if catalog.IsArray(col.Type) {
			effectiveScalar = scalarFor(catalog.BaseType(col.Type))
		}

		// Bare field name: implicit eq.
		fields[name] = &graphql.InputObjectFieldConfig{Type: scalar}
		fields[name+FilterSuffixEq] = &graphql.InputObjectFieldConfig{Type: scalar}
		fields[name+FilterSuffixNeq] = &graphql.InputObjectFieldConfig{Type: scalar}
		fields[name+FilterSuffixIn] = &graphql.InputObjectFieldConfig{Type: graphql.NewList(effectiveScalar)}
		fields[name+FilterSuffixIsNull] = &graphql.InputObjectFieldConfig{Type: graphql.Boolean}
		fields[name+FilterSuffixIsNotNull] = &graphql.InputObjectFieldConfig{Type: graphql.Boolean}

		if !catalog.IsBoolean(col.Type) && !catalog.IsJSON(col.Type) {
			fields[name+FilterSuffixGt] = &graphql.InputObjectFieldConfig{Type: scalar}
			fields[name+FilterSuffixGte] = &graphql.InputObjectFieldConfig{Type: scalar}
			fields[name+FilterSuffixLt] = &graphql.InputObjectFieldConfig{Type: scalar}
			fields[name+FilterSuffixLte] = &graphql.InputObjectFieldConfig{Type: scalar}
		}

		if catalog.IsText(col.Type) {
			fields[name+FilterSuffixContains] = &graphql.InputObjectFieldConfig{Type: graphql.String}
			fields[name+FilterSuffixStartsWith] = &graphql.InputObjectFieldConfig{Type: graphql.String}
			fields[name+FilterSuffixEndsWith] = &graphql.InputObjectFieldConfig{Type: graphql.String}
		}

		if catalog.IsJSON(col.Type) {
			fields[name+FilterSuffixContains] = &graphql.InputObjectFieldConfig{Type: JSONScalar}
			fields[name+FilterSuffixHasKey] = &graphql.InputObjectFieldConfig{Type: graphql.String}
			fields[name+FilterSuffixHasKeys] = &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.String)}
			fields[name+FilterSuffixPath] = &graphql.InputObjectFieldConfig{Type: graphql.String}
		}

		if catalog.IsArray(col.Type) {
			fields[name+FilterSuffixContains] = &graphql.InputObjectFieldConfig{Type: effectiveScalar}
		}
	}

	return fields
}

// argsFromFields converts an InputObjectConfigFieldMap into a flat
// FieldConfigArgument set, so the same field definitions populate both
// the FilterInput type (used inside `or`) and the root query field's
// own flat arguments.
func argsFromFields(fields graphql.InputObjectConfigFieldMap) graphql.FieldConfigArgument {
	args := graphql.FieldConfigArgument{}
	for name, f := range fields {
		args[name] = &graphql.ArgumentConfig{Type: f.Type}
	}
	return args
}

// buildFilterInputType builds the <Name>FilterInput type used inside
// the top-level `or: [<Name>FilterInput]` argument. Its fields are
// identical to the flat per-field arguments on the root query field.
func buildFilterInputType(table *catalog.TableInfo, in func(catalog.ColumnInfo) graphql.Input) *graphql.InputObject {
	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   typeName(table.Name) + "FilterInput",
		Fields: buildFilterFields(table, in),
	})
}
