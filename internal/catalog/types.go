package catalog

import "strings"

// Type classifier (C1). Pure predicates over a type string, each an
// exact-token membership test against a fixed set — never a substring
// match, so "interval" never classifies as integer despite containing
// "int".

var integerTypes = map[string]bool{
	"int": true, "integer": true, "bigint": true, "smallint": true,
	"int2": true, "int4": true, "int8": true,
	"serial": true, "bigserial": true, "smallserial": true,
	"serial2": true, "serial4": true, "serial8": true,
}

var floatingTypes = map[string]bool{
	"numeric": true, "decimal": true, "real": true,
	"double precision": true, "float": true, "double": true,
	"float4": true, "float8": true,
}

var booleanTypes = map[string]bool{
	"boolean": true, "bool": true,
}

var textTypes = map[string]bool{
	"text": true, "varchar": true, "character varying": true,
	"char": true, "character": true, "bpchar": true,
}

var jsonTypes = map[string]bool{
	"json": true, "jsonb": true,
}

var datetimeTypes = map[string]bool{
	"timestamp": true, "timestamptz": true, "timestamp with time zone": true,
	"timestamp without time zone": true,
	"date":      true,
	"time":      true, "timetz": true, "time with time zone": true,
	"time without time zone": true,
	"interval":  true,
}

var uuidTypes = map[string]bool{
	"uuid": true,
}

var networkTypes = map[string]bool{
	"inet": true, "cidr": true, "macaddr": true, "macaddr8": true,
}

var binaryTypes = map[string]bool{
	"bytea": true,
}

var bitTypes = map[string]bool{
	"bit": true, "bit varying": true, "varbit": true,
}

var xmlTypes = map[string]bool{
	"xml": true,
}

// Normalize lowercases t and strips a trailing parenthesized precision
// clause, e.g. "varchar(255)" -> "varchar", "numeric(10,2)" -> "numeric".
// It does not strip an array suffix; use BaseType for that.
func Normalize(t string) string {
	t = strings.TrimSpace(strings.ToLower(t))
	if idx := strings.IndexByte(t, '('); idx >= 0 {
		t = strings.TrimSpace(t[:idx])
	}
	return t
}

// IsArray reports whether t carries a trailing "[]" array suffix.
func IsArray(t string) bool {
	return strings.HasSuffix(strings.TrimSpace(t), "[]")
}

// BaseType strips one trailing "[]" array suffix and returns the
// normalized element type. Nested arrays are not unwrapped recursively.
func BaseType(t string) string {
	t = strings.TrimSpace(t)
	t = strings.TrimSuffix(t, "[]")
	return Normalize(t)
}

// classifyBase applies a membership set to the normalized, array-stripped
// form of t. Null/empty input returns false.
func classifyBase(t string, set map[string]bool) bool {
	if t == "" {
		return false
	}
	base := t
	if IsArray(base) {
		base = BaseType(base)
	} else {
		base = Normalize(base)
	}
	return set[base]
}

func IsInteger(t string) bool  { return classifyBase(t, integerTypes) }
func IsFloating(t string) bool { return classifyBase(t, floatingTypes) }
func IsBoolean(t string) bool  { return classifyBase(t, booleanTypes) }
func IsText(t string) bool     { return classifyBase(t, textTypes) }
func IsJSON(t string) bool     { return classifyBase(t, jsonTypes) }
func IsDatetime(t string) bool { return classifyBase(t, datetimeTypes) }
func IsUUID(t string) bool     { return classifyBase(t, uuidTypes) }
func IsNetwork(t string) bool  { return classifyBase(t, networkTypes) }
func IsBinary(t string) bool   { return classifyBase(t, binaryTypes) }
func IsBit(t string) bool      { return classifyBase(t, bitTypes) }
func IsXML(t string) bool      { return classifyBase(t, xmlTypes) }
