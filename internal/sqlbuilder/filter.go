package sqlbuilder

import "github.com/excalibase/excalibase-graphql/internal/graphqlschema"

// Operator is a column comparison operator recognized by filterToSQL.
// The vocabulary mirrors the GraphQL filter-argument suffixes (§6) one
// to one, so an argument name parses into exactly one Operator.
type Operator string

const (
	OpEq         Operator = "eq"
	OpNeq        Operator = "neq"
	OpGt         Operator = "gt"
	OpGte        Operator = "gte"
	OpLt         Operator = "lt"
	OpLte        Operator = "lte"
	OpIn         Operator = "in"
	OpContains   Operator = "contains"
	OpStartsWith Operator = "startsWith"
	OpEndsWith   Operator = "endsWith"
	OpIsNull     Operator = "isNull"
	OpIsNotNull  Operator = "isNotNull"
	OpHasKey     Operator = "hasKey"
	OpHasKeys    Operator = "hasKeys"
	OpPath       Operator = "path"
)

var suffixToOperator = map[string]Operator{
	graphqlschema.FilterSuffixEq:         OpEq,
	graphqlschema.FilterSuffixNeq:        OpNeq,
	graphqlschema.FilterSuffixGt:         OpGt,
	graphqlschema.FilterSuffixGte:        OpGte,
	graphqlschema.FilterSuffixLt:         OpLt,
	graphqlschema.FilterSuffixLte:        OpLte,
	graphqlschema.FilterSuffixIn:         OpIn,
	graphqlschema.FilterSuffixContains:   OpContains,
	graphqlschema.FilterSuffixStartsWith: OpStartsWith,
	graphqlschema.FilterSuffixEndsWith:   OpEndsWith,
	graphqlschema.FilterSuffixIsNull:     OpIsNull,
	graphqlschema.FilterSuffixIsNotNull:  OpIsNotNull,
	graphqlschema.FilterSuffixHasKey:     OpHasKey,
	graphqlschema.FilterSuffixHasKeys:    OpHasKeys,
	graphqlschema.FilterSuffixPath:       OpPath,
}

// Category distinguishes the handful of column kinds whose SQL
// rendering for OpContains/OpStartsWith/OpEndsWith differs: a plain
// scalar never reaches those operators, text uses ILIKE, JSON/JSONB
// uses the @> containment operator, and array columns use @> too but
// against a single-element array instead of a JSON document.
type Category string

const (
	CategoryScalar  Category = "scalar"
	CategoryText    Category = "text"
	CategoryJSON    Category = "json"
	CategoryArray   Category = "array"
	CategoryBoolean Category = "boolean"
)

// Filter is one WHERE condition: Column is the real catalog column name
// (already translated out of GraphQL camelCase by the caller), not a
// GraphQL field name.
type Filter struct {
	Column    string
	Operator  Operator
	Value     interface{}
	Category  Category
	IsOr      bool // not read when rendering; a positive OrGroupID alone places the condition in that group's disjunction
	OrGroupID int
}

// OrderBy is one ORDER BY clause entry.
type OrderBy struct {
	Column string
	Desc   bool
}

// ParseArgName splits a flat filter argument name ("age_gte") into its
// column field name ("age") and Operator, matching the longest known
// suffix first so "_isNotNull" is never mistaken for "_isNull" plus a
// stray "Not". A bare field name with no recognized suffix is an
// implicit OpEq.
func ParseArgName(argName string) (field string, op Operator) {
	for _, suffix := range graphqlschema.AllSuffixes {
		if len(argName) > len(suffix) && argName[len(argName)-len(suffix):] == suffix {
			return argName[:len(argName)-len(suffix)], suffixToOperator[suffix]
		}
	}
	return argName, OpEq
}
