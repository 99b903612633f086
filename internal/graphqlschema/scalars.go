// Package graphqlschema is the Schema Generator (C3): it maps a
// reflected catalog.Model into a deterministic graphql-go Schema —
// object types, connection types, filter/order-by inputs, and the root
// Query/Mutation fields.
package graphqlschema

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
)

// DateTimeScalar represents a timestamp/date/time/interval column,
// serialized and parsed as RFC3339.
var DateTimeScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "DateTime",
	Description: "A date and time in RFC3339 format",
	Serialize: func(value interface{}) interface{} {
		switch v := value.(type) {
		case time.Time:
			return v.Format(time.RFC3339)
		case *time.Time:
			if v == nil {
				return nil
			}
			return v.Format(time.RFC3339)
		case string:
			return v
		default:
			return nil
		}
	},
	ParseValue: func(value interface{}) interface{} {
		s, ok := value.(string)
		if !ok {
			return nil
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil
		}
		return t
	},
	ParseLiteral: func(valueAST ast.Value) interface{} {
		s, ok := valueAST.(*ast.StringValue)
		if !ok {
			return nil
		}
		t, err := time.Parse(time.RFC3339, s.Value)
		if err != nil {
			return nil
		}
		return t
	},
})

// UUIDScalar represents a uuid column.
var UUIDScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "UUID",
	Description: "A universally unique identifier",
	Serialize: func(value interface{}) interface{} {
		switch v := value.(type) {
		case uuid.UUID:
			return v.String()
		case *uuid.UUID:
			if v == nil {
				return nil
			}
			return v.String()
		case string:
			return v
		case []byte:
			if len(v) == 16 {
				if u, err := uuid.FromBytes(v); err == nil {
					return u.String()
				}
			}
			return string(v)
		default:
			return fmt.Sprintf("%v", v)
		}
	},
	ParseValue: func(value interface{}) interface{} {
		s, ok := value.(string)
		if !ok {
			return nil
		}
		u, err := uuid.Parse(s)
		if err != nil {
			return nil
		}
		return u
	},
	ParseLiteral: func(valueAST ast.Value) interface{} {
		s, ok := valueAST.(*ast.StringValue)
		if !ok {
			return nil
		}
		u, err := uuid.Parse(s.Value)
		if err != nil {
			return nil
		}
		return u
	},
})

// JSONScalar represents a json/jsonb column, or any array column
// (projected as a JSON array of the element type).
var JSONScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "JSON",
	Description: "Arbitrary JSON data",
	Serialize: func(value interface{}) interface{} {
		switch v := value.(type) {
		case map[string]interface{}, []interface{}:
			return v
		case string:
			var result interface{}
			if err := json.Unmarshal([]byte(v), &result); err != nil {
				return v
			}
			return result
		case []byte:
			var result interface{}
			if err := json.Unmarshal(v, &result); err != nil {
				return string(v)
			}
			return result
		default:
			return v
		}
	},
	ParseValue: func(value interface{}) interface{} {
		return value
	},
	ParseLiteral: func(valueAST ast.Value) interface{} {
		return parseASTValue(valueAST)
	},
})

// BigIntScalar represents a bigint/bigserial column, carried as a
// string over the wire to avoid float64 precision loss in JS clients.
var BigIntScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "BigInt",
	Description: "A 64-bit integer, represented as a string",
	Serialize: func(value interface{}) interface{} {
		switch v := value.(type) {
		case int64:
			return fmt.Sprintf("%d", v)
		case *int64:
			if v == nil {
				return nil
			}
			return fmt.Sprintf("%d", *v)
		case int:
			return fmt.Sprintf("%d", v)
		case string:
			return v
		default:
			return fmt.Sprintf("%v", v)
		}
	},
	ParseValue: func(value interface{}) interface{} {
		switch v := value.(type) {
		case string:
			var n int64
			if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
				return nil
			}
			return n
		case int:
			return int64(v)
		case float64:
			return int64(v)
		default:
			return nil
		}
	},
	ParseLiteral: func(valueAST ast.Value) interface{} {
		switch v := valueAST.(type) {
		case *ast.StringValue:
			var n int64
			if _, err := fmt.Sscanf(v.Value, "%d", &n); err != nil {
				return nil
			}
			return n
		case *ast.IntValue:
			var n int64
			if _, err := fmt.Sscanf(v.Value, "%d", &n); err != nil {
				return nil
			}
			return n
		default:
			return nil
		}
	},
})

func parseObjectValue(v *ast.ObjectValue) map[string]interface{} {
	result := make(map[string]interface{})
	for _, field := range v.Fields {
		result[field.Name.Value] = parseASTValue(field.Value)
	}
	return result
}

func parseListValue(v *ast.ListValue) []interface{} {
	result := make([]interface{}, len(v.Values))
	for i, val := range v.Values {
		result[i] = parseASTValue(val)
	}
	return result
}

func parseASTValue(v ast.Value) interface{} {
	switch val := v.(type) {
	case *ast.StringValue:
		return val.Value
	case *ast.IntValue:
		var n int64
		fmt.Sscanf(val.Value, "%d", &n)
		return n
	case *ast.FloatValue:
		var f float64
		fmt.Sscanf(val.Value, "%f", &f)
		return f
	case *ast.BooleanValue:
		return val.Value
	case *ast.ObjectValue:
		return parseObjectValue(val)
	case *ast.ListValue:
		return parseListValue(val)
	case *ast.NullValue:
		return nil
	default:
		return nil
	}
}
