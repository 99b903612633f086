// Package catalog reflects a PostgreSQL schema into an immutable, cached
// Model and classifies the catalog's type strings for downstream schema
// generation and SQL building.
package catalog

// Model is an immutable snapshot of one schema's catalog: its tables,
// views, and the user-defined types any of their columns reference. A
// Model is replaced wholesale on refresh; callers never mutate one in
// place.
type Model struct {
	Schema      string
	Tables      map[string]*TableInfo // key: table/view name, unique within the schema
	CustomTypes map[string]*CustomType
}

// TableInfo describes one table or view, columns in ordinal order.
type TableInfo struct {
	Name        string
	Columns     []ColumnInfo
	ForeignKeys []ForeignKeyInfo
	IsView      bool
}

// Column looks up a column by name, or returns (ColumnInfo{}, false).
func (t *TableInfo) Column(name string) (ColumnInfo, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnInfo{}, false
}

// PrimaryKey returns the table's primary-key columns in ordinal order.
func (t *TableInfo) PrimaryKey() []ColumnInfo {
	var pk []ColumnInfo
	for _, c := range t.Columns {
		if c.PrimaryKey {
			pk = append(pk, c)
		}
	}
	return pk
}

// ColumnInfo describes one column's name, canonical type text (possibly
// with precision, e.g. "numeric(10,2)", or an array suffix "[]"), and
// key/nullability flags.
type ColumnInfo struct {
	Name         string
	Type         string
	PrimaryKey   bool
	Nullable     bool
	IsForeignKey bool
}

// ForeignKeyInfo describes one foreign-key relationship. Columns holds
// the full ordered column tuple for composite keys; ColumnName and
// ReferencedColumn mirror Columns[0] for single-column keys so existing
// call sites that only deal with simple FKs keep working unchanged.
type ForeignKeyInfo struct {
	Name             string
	ColumnName       string
	ReferencedTable  string
	ReferencedColumn string
	Columns          []FKColumnPair
}

// FKColumnPair is one (local column, referenced column) pair within a
// possibly-composite foreign key.
type FKColumnPair struct {
	LocalColumn      string
	ReferencedColumn string
}

// CustomTypeKind tags the variant held by a CustomType.
type CustomTypeKind string

const (
	CustomTypeEnum      CustomTypeKind = "ENUM"
	CustomTypeComposite CustomTypeKind = "COMPOSITE"
	CustomTypeDomain    CustomTypeKind = "DOMAIN"
)

// CustomType is a tagged union over the three catalog-defined type
// kinds C3 must surface as GraphQL enum or object types.
type CustomType struct {
	Name string
	Kind CustomTypeKind

	// Enum
	Values []string

	// Composite
	Attributes []CompositeAttribute

	// Domain
	BaseType   string
	CheckExpr  string
}

// CompositeAttribute is one field of a composite type, in ordinal
// position. Name holds the catalog-reported attribute name when the
// catalog provides one; callers needing a stable fallback should use
// Position to derive "attr_<position>" rather than guessing a name.
type CompositeAttribute struct {
	Name     string
	Type     string
	Position int
}
