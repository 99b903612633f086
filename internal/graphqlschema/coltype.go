package graphqlschema

import (
	"github.com/excalibase/excalibase-graphql/internal/catalog"
	"github.com/graphql-go/graphql"
)

// scalarFor maps a column's canonical catalog type to the GraphQL
// scalar used for both output and input positions, via the C1 type
// classifier rather than a second ad-hoc type switch.
func scalarFor(colType string) graphql.Output {
	switch {
	case catalog.IsArray(colType):
		return JSONScalar
	case catalog.IsInteger(colType):
		if isBigInt(colType) {
			return BigIntScalar
		}
		return graphql.Int
	case catalog.IsFloating(colType):
		return graphql.Float
	case catalog.IsBoolean(colType):
		return graphql.Boolean
	case catalog.IsUUID(colType):
		return UUIDScalar
	case catalog.IsJSON(colType):
		return JSONScalar
	case catalog.IsDatetime(colType):
		return DateTimeScalar
	case catalog.IsNetwork(colType), catalog.IsBinary(colType), catalog.IsBit(colType), catalog.IsXML(colType):
		return graphql.String
	default:
		return graphql.String
	}
}

func isBigInt(colType string) bool {
	switch catalog.Normalize(colType) {
	case "bigint", "int8", "bigserial", "serial8":
		return true
	default:
		return false
	}
}

// outputType wraps scalarFor's result in NonNull when the column is
// not nullable, per the object-type field rule in §4.3 — primary key
// columns are always non-null regardless of the catalog nullable flag.
func outputType(col catalog.ColumnInfo) graphql.Output {
	base := scalarFor(col.Type)
	if col.PrimaryKey || !col.Nullable {
		return graphql.NewNonNull(base)
	}
	return base
}

// inputType is the scalar used for a column in create/update inputs
// and filter/order-by arguments — never wrapped in NonNull here; the
// caller decides per-operation nullability (e.g. primary-key args on
// update are required, but the same column is optional on create).
func inputType(col catalog.ColumnInfo) graphql.Input {
	return scalarFor(col.Type)
}
