package sqlbuilder

import (
	"strconv"

	"github.com/excalibase/excalibase-graphql/internal/apperrors"
	"github.com/excalibase/excalibase-graphql/internal/catalog"
)

// CoerceCursorValue turns the string form a cursor carries for one
// column back into the Go value pgx expects for that column's category.
// GraphQL arguments never need this: graphql-go already coerced them to
// the scalar the schema declared. Cursor values do, because a cursor's
// wire format is always text (§9).
func CoerceCursorValue(column string, colType string, raw string) (interface{}, error) {
	switch {
	case catalog.IsInteger(colType):
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, apperrors.NewCoercionError(column, "integer", raw)
		}
		return v, nil
	case catalog.IsFloating(colType):
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, apperrors.NewCoercionError(column, "floating", raw)
		}
		return v, nil
	case catalog.IsBoolean(colType):
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, apperrors.NewCoercionError(column, "boolean", raw)
		}
		return v, nil
	case catalog.IsUUID(colType), catalog.IsText(colType), catalog.IsNetwork(colType),
		catalog.IsDatetime(colType), catalog.IsJSON(colType), catalog.IsXML(colType),
		catalog.IsBit(colType):
		// These categories pass through as strings; pgx/Postgres parses
		// the textual representation on the wire for all of them,
		// including JSON/JSONB and interval/timestamp literals.
		return raw, nil
	case catalog.IsBinary(colType):
		return raw, nil
	default:
		return raw, nil
	}
}
