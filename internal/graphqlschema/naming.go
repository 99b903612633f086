package graphqlschema

import (
	"regexp"
	"strings"
)

var underscoreOrHyphen = regexp.MustCompile(`[_\-]+`)
var camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)

// splitWords splits a table/column name on underscores, hyphens, and
// camelCase boundaries, so "user_id" and "userId" both yield ["user","id"].
func splitWords(s string) []string {
	parts := underscoreOrHyphen.Split(s, -1)

	var words []string
	for _, part := range parts {
		if part == "" {
			continue
		}
		part = camelBoundary.ReplaceAllString(part, "${1} ${2}")
		words = append(words, strings.Fields(part)...)
	}
	return words
}

// toPascalCase converts a snake_case or camelCase name to PascalCase,
// used for GraphQL object/input type names.
func toPascalCase(s string) string {
	words := splitWords(s)
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, "")
}

// toCamelCase converts a snake_case or PascalCase name to camelCase,
// used for GraphQL field and argument names.
func toCamelCase(s string) string {
	words := splitWords(s)
	for i, w := range words {
		if w == "" {
			continue
		}
		if i == 0 {
			words[i] = strings.ToLower(w)
		} else {
			words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
	}
	return strings.Join(words, "")
}

// singularize reverses the simple pluralization BuildRESTPath-style
// naming applies, for deriving a single-record query name from a
// collection name ("posts" -> "post", "categories" -> "category").
func singularize(name string) string {
	switch {
	case strings.HasSuffix(name, "ies") && len(name) > 3:
		return name[:len(name)-3] + "y"
	case strings.HasSuffix(name, "ses") || strings.HasSuffix(name, "xes") ||
		strings.HasSuffix(name, "ches") || strings.HasSuffix(name, "shes"):
		return name[:len(name)-2]
	case strings.HasSuffix(name, "s") && !strings.HasSuffix(name, "ss") && !strings.HasSuffix(name, "us") && len(name) > 1:
		return name[:len(name)-1]
	default:
		return name
	}
}

// pluralize applies simple English pluralization, used for
// createMany<Name>s mutation naming.
func pluralize(name string) string {
	switch {
	case strings.HasSuffix(name, "y") && len(name) > 1 && !isVowel(name[len(name)-2]):
		return name[:len(name)-1] + "ies"
	case strings.HasSuffix(name, "s"), strings.HasSuffix(name, "x"),
		strings.HasSuffix(name, "ch"), strings.HasSuffix(name, "sh"):
		return name + "es"
	default:
		return name + "s"
	}
}

func isVowel(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
		return true
	default:
		return false
	}
}

// typeName is the GraphQL object type name for a table ("order_items" -> "OrderItems").
func typeName(table string) string {
	return toPascalCase(table)
}

// fieldName is the GraphQL field/argument name for a column ("first_name" -> "firstName").
func fieldName(column string) string {
	return toCamelCase(column)
}

// FieldName exports fieldName for packages (sqlbuilder, fetch) that need
// to translate a GraphQL argument name back to its catalog column.
func FieldName(column string) string { return fieldName(column) }

// TypeName exports typeName for the same cross-package naming needs.
func TypeName(table string) string { return typeName(table) }

// relationFieldName derives the singular relationship field name from
// an owning foreign-key column, stripping a trailing "_id"/"Id"
// ("author_id" -> "author").
func relationFieldName(fkColumn string) string {
	name := fkColumn
	switch {
	case strings.HasSuffix(name, "_id"):
		name = name[:len(name)-3]
	case strings.HasSuffix(name, "Id") && len(name) > 2:
		name = name[:len(name)-2]
	}
	return toCamelCase(name)
}

// RelationFieldName exports relationFieldName for the data fetcher,
// which must derive the same "<relation>_connect"/"_create" sub-input
// field names this package attached to WithRelationsInput types.
func RelationFieldName(fkColumn string) string { return relationFieldName(fkColumn) }

// reverseRelationFieldName derives the plural reverse-relationship
// field name a referenced table gains for one foreign key pointing at
// it from table owningTable ("posts" owning "author_id" -> "posts" on users).
func reverseRelationFieldName(owningTable string) string {
	return pluralize(toCamelCase(owningTable))
}

// ReverseRelationFieldName exports reverseRelationFieldName for the
// data fetcher's "<reverse>_createMany" sub-input handling.
func ReverseRelationFieldName(owningTable string) string { return reverseRelationFieldName(owningTable) }

// Singularize exports singularize for the data fetcher's reverse-relation naming.
func Singularize(name string) string { return singularize(name) }
