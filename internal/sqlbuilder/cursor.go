package sqlbuilder

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/excalibase/excalibase-graphql/internal/apperrors"
)

// CursorColumn is one column/value pair carried by a keyset cursor. A
// cursor may carry more than one pair when orderBy names more than one
// column, so the keyset condition stays correct under ties on the
// leading column.
type CursorColumn struct {
	Column string
	Value  interface{} // a plain string when decoded off the wire; the coerced Go value once CoerceCursorValue has run
}

// EncodeCursor builds an opaque cursor from an ordered column/value
// list. Values are percent-encoded before joining so a literal ";",
// ":", or "%" inside a value can never be confused with the separator,
// then the whole "col1:value1;col2:value2" string is base64-wrapped.
func EncodeCursor(columns []CursorColumn) string {
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = escapeCursorPart(c.Column) + ":" + escapeCursorPart(fmt.Sprint(c.Value))
	}
	raw := strings.Join(parts, ";")
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor reverses EncodeCursor. Any malformed input - bad base64,
// an empty segment, a missing ":" separator - returns a CursorFormatError
// so the caller (the data fetcher) can surface a consistent GraphQL error
// regardless of which argument ("after" or "before") supplied it.
func DecodeCursor(argumentName, cursor string) ([]CursorColumn, error) {
	raw, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, apperrors.NewCursorFormatError(argumentName, cursor, "not valid base64")
	}
	if len(raw) == 0 {
		return nil, apperrors.NewCursorFormatError(argumentName, cursor, "empty cursor")
	}

	segments := strings.Split(string(raw), ";")
	columns := make([]CursorColumn, 0, len(segments))
	for _, seg := range segments {
		idx := strings.IndexByte(seg, ':')
		if idx <= 0 {
			return nil, apperrors.NewCursorFormatError(argumentName, cursor, "missing column:value separator")
		}
		col, err := url.PathUnescape(seg[:idx])
		if err != nil {
			return nil, apperrors.NewCursorFormatError(argumentName, cursor, "malformed column name")
		}
		val, err := url.PathUnescape(seg[idx+1:])
		if err != nil {
			return nil, apperrors.NewCursorFormatError(argumentName, cursor, "malformed column value")
		}
		columns = append(columns, CursorColumn{Column: col, Value: val})
	}
	return columns, nil
}

func escapeCursorPart(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, ";", "%3B")
	s = strings.ReplaceAll(s, ":", "%3A")
	return s
}

// cursorCondition builds the keyset WHERE fragment for a multi-column
// cursor: a lexicographic tuple comparison, expanded into the standard
// "leading columns equal, trailing column strictly ordered" OR-chain
// since PostgreSQL row-wise comparison (a,b) > (x,y) does not mix
// ASC/DESC per column the way a mixed-direction orderBy requires.
func (qb *QueryBuilder) cursorCondition(columns []CursorColumn, directions []bool) (string, []interface{}) {
	if len(columns) == 0 {
		return "", nil
	}

	var orTerms []string
	var args []interface{}

	for i := range columns {
		var andTerms []string
		for j := 0; j < i; j++ {
			quoted := quoteIdentifier(columns[j].Column)
			if quoted == "" {
				continue
			}
			andTerms = append(andTerms, fmt.Sprintf("%s = $%d", quoted, qb.argCounter))
			args = append(args, columns[j].Value)
			qb.argCounter++
		}

		quoted := quoteIdentifier(columns[i].Column)
		if quoted == "" {
			continue
		}
		op := ">"
		if i < len(directions) && directions[i] {
			op = "<"
		}
		andTerms = append(andTerms, fmt.Sprintf("%s %s $%d", quoted, op, qb.argCounter))
		args = append(args, columns[i].Value)
		qb.argCounter++

		orTerms = append(orTerms, "("+strings.Join(andTerms, " AND ")+")")
	}

	return strings.Join(orTerms, " OR "), args
}
