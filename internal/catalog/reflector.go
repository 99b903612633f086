package catalog

import (
	"context"
	"fmt"

	"github.com/excalibase/excalibase-graphql/internal/apperrors"
	"github.com/excalibase/excalibase-graphql/internal/database"
	"golang.org/x/sync/singleflight"
)

// Reflector is the Schema Reflector (C2): it queries the catalog of one
// PostgreSQL schema and builds a normalized Model. It performs no
// caching of its own — Cache wraps it with TTL and single-flight
// coalescing for repeated calls.
type Reflector struct {
	exec  database.Executor
	group singleflight.Group
}

// NewReflector builds a Reflector over the given executor.
func NewReflector(exec database.Executor) *Reflector {
	return &Reflector{exec: exec}
}

// ReflectSchema builds a Model for schemaName. Concurrent callers for
// the same schemaName share one in-flight catalog scan and receive the
// same resulting Model (single-flight coalescing); this only dedupes
// work within one call, callers wanting TTL reuse across calls should
// go through Cache.
func (r *Reflector) ReflectSchema(ctx context.Context, schemaName string) (*Model, error) {
	v, err, _ := r.group.Do(schemaName, func() (interface{}, error) {
		return r.reflectSchemaUncoalesced(ctx, schemaName)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Model), nil
}

func (r *Reflector) reflectSchemaUncoalesced(ctx context.Context, schemaName string) (*Model, error) {
	tableNames, viewNames, err := r.enumerateRelations(ctx, schemaName)
	if err != nil {
		return nil, apperrors.NewReflectionError(schemaName, err)
	}

	allNames := append(append([]string{}, tableNames...), viewNames...)
	if len(allNames) == 0 {
		return &Model{Schema: schemaName, Tables: map[string]*TableInfo{}, CustomTypes: map[string]*CustomType{}}, nil
	}

	viewSet := make(map[string]bool, len(viewNames))
	for _, v := range viewNames {
		viewSet[v] = true
	}

	columns, err := r.batchGetColumns(ctx, schemaName, allNames)
	if err != nil {
		return nil, apperrors.NewReflectionError(schemaName, err)
	}

	primaryKeys, err := r.batchGetPrimaryKeys(ctx, schemaName)
	if err != nil {
		return nil, apperrors.NewReflectionError(schemaName, err)
	}

	foreignKeys, err := r.batchGetForeignKeys(ctx, schemaName)
	if err != nil {
		return nil, apperrors.NewReflectionError(schemaName, err)
	}

	tables := make(map[string]*TableInfo, len(allNames))
	for _, name := range allNames {
		info := &TableInfo{
			Name:    name,
			Columns: columns[name],
			IsView:  viewSet[name],
		}

		if !info.IsView {
			pkSet := make(map[string]bool, len(primaryKeys[name]))
			for _, pk := range primaryKeys[name] {
				pkSet[pk] = true
			}
			for i := range info.Columns {
				if pkSet[info.Columns[i].Name] {
					info.Columns[i].PrimaryKey = true
				}
			}

			info.ForeignKeys = groupForeignKeys(foreignKeys[name])
			fkCols := make(map[string]bool)
			for _, fk := range info.ForeignKeys {
				for _, pair := range fk.Columns {
					fkCols[pair.LocalColumn] = true
				}
			}
			for i := range info.Columns {
				if fkCols[info.Columns[i].Name] {
					info.Columns[i].IsForeignKey = true
				}
			}
		}

		tables[name] = info
	}

	customTypes, err := r.reflectCustomTypes(ctx, schemaName, tables)
	if err != nil {
		return nil, apperrors.NewReflectionError(schemaName, err)
	}

	return &Model{Schema: schemaName, Tables: tables, CustomTypes: customTypes}, nil
}

// groupForeignKeys collapses the flat per-column rows returned by the
// catalog into one ForeignKeyInfo per named constraint, so composite
// foreign keys surface as a single entry carrying the grouped column
// tuple rather than one independent entry per column.
func groupForeignKeys(rows []fkRow) []ForeignKeyInfo {
	order := make([]string, 0)
	byName := make(map[string]*ForeignKeyInfo)

	for _, row := range rows {
		fk, ok := byName[row.constraintName]
		if !ok {
			fk = &ForeignKeyInfo{
				Name:            row.constraintName,
				ReferencedTable: row.referencedTable,
			}
			byName[row.constraintName] = fk
			order = append(order, row.constraintName)
		}
		fk.Columns = append(fk.Columns, FKColumnPair{
			LocalColumn:      row.columnName,
			ReferencedColumn: row.referencedColumn,
		})
	}

	result := make([]ForeignKeyInfo, 0, len(order))
	for _, name := range order {
		fk := byName[name]
		fk.ColumnName = fk.Columns[0].LocalColumn
		fk.ReferencedColumn = fk.Columns[0].ReferencedColumn
		result = append(result, *fk)
	}
	return result
}

// enumerateRelations returns (tables, views) in schemaName. Materialized
// views are folded into the view set: they carry no primary key and no
// mutations, matching the view contract.
func (r *Reflector) enumerateRelations(ctx context.Context, schemaName string) ([]string, []string, error) {
	query := `
		SELECT c.relname, c.relkind
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1
			AND c.relkind IN ('r', 'v', 'm')
		ORDER BY c.relname
	`

	rows, err := r.exec.Query(ctx, query, schemaName)
	if err != nil {
		return nil, nil, fmt.Errorf("enumerating relations: %w", err)
	}
	defer rows.Close()

	var tables, views []string
	for rows.Next() {
		var name, kind string
		if err := rows.Scan(&name, &kind); err != nil {
			return nil, nil, err
		}
		switch kind {
		case "r":
			tables = append(tables, name)
		case "v", "m":
			views = append(views, name)
		}
	}
	return tables, views, rows.Err()
}

// batchGetColumns fetches columns, in ordinal order, for every relation
// in names via pg_attribute — this covers tables, views, and
// materialized views uniformly (information_schema.columns omits
// materialized views).
func (r *Reflector) batchGetColumns(ctx context.Context, schemaName string, names []string) (map[string][]ColumnInfo, error) {
	query := `
		SELECT
			c.relname,
			a.attname,
			pg_catalog.format_type(a.atttypid, a.atttypmod),
			NOT a.attnotnull
		FROM pg_attribute a
		JOIN pg_class c ON c.oid = a.attrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1
			AND c.relname = ANY($2)
			AND a.attnum > 0
			AND NOT a.attisdropped
		ORDER BY c.relname, a.attnum
	`

	rows, err := r.exec.Query(ctx, query, schemaName, names)
	if err != nil {
		return nil, fmt.Errorf("batch fetching columns: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]ColumnInfo, len(names))
	for rows.Next() {
		var table, colName, dataType string
		var nullable bool
		if err := rows.Scan(&table, &colName, &dataType, &nullable); err != nil {
			return nil, err
		}
		result[table] = append(result[table], ColumnInfo{
			Name:     colName,
			Type:     dataType,
			Nullable: nullable,
		})
	}
	return result, rows.Err()
}

// batchGetPrimaryKeys fetches primary-key columns for every table in
// schemaName, in key ordinal order.
func (r *Reflector) batchGetPrimaryKeys(ctx context.Context, schemaName string) (map[string][]string, error) {
	query := `
		SELECT c.relname, a.attname
		FROM pg_index i
		JOIN pg_attribute a ON a.attrelid = i.indrelid AND a.attnum = ANY(i.indkey)
		JOIN pg_class c ON c.oid = i.indrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1
			AND i.indisprimary
		ORDER BY c.relname, array_position(i.indkey, a.attnum)
	`

	rows, err := r.exec.Query(ctx, query, schemaName)
	if err != nil {
		return nil, fmt.Errorf("batch fetching primary keys: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]string)
	for rows.Next() {
		var table, column string
		if err := rows.Scan(&table, &column); err != nil {
			return nil, err
		}
		result[table] = append(result[table], column)
	}
	return result, rows.Err()
}

// fkRow is one flat (constraint, local column, referenced column) row
// as reported by information_schema, prior to grouping by constraint.
type fkRow struct {
	constraintName   string
	columnName       string
	referencedTable  string
	referencedColumn string
}

// batchGetForeignKeys fetches every foreign-key column row for every
// table in schemaName. Rows sharing a constraint name belong to the
// same (possibly composite) key; groupForeignKeys folds them together.
func (r *Reflector) batchGetForeignKeys(ctx context.Context, schemaName string) (map[string][]fkRow, error) {
	query := `
		SELECT
			tc.table_name,
			tc.constraint_name,
			kcu.column_name,
			rkcu.table_name AS referenced_table,
			rkcu.column_name AS referenced_column
		FROM information_schema.table_constraints AS tc
		JOIN information_schema.key_column_usage AS kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.referential_constraints AS rc
			ON rc.constraint_name = tc.constraint_name
			AND rc.constraint_schema = tc.table_schema
		JOIN information_schema.key_column_usage AS rkcu
			ON rkcu.constraint_name = rc.unique_constraint_name
			AND rkcu.constraint_schema = rc.unique_constraint_schema
			AND rkcu.ordinal_position = kcu.position_in_unique_constraint
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND tc.table_schema = $1
		ORDER BY tc.table_name, tc.constraint_name, kcu.ordinal_position
	`

	rows, err := r.exec.Query(ctx, query, schemaName)
	if err != nil {
		return nil, fmt.Errorf("batch fetching foreign keys: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]fkRow)
	for rows.Next() {
		var table string
		var row fkRow
		if err := rows.Scan(&table, &row.constraintName, &row.columnName, &row.referencedTable, &row.referencedColumn); err != nil {
			return nil, err
		}
		result[table] = append(result[table], row)
	}
	return result, rows.Err()
}

// reflectCustomTypes enumerates the enum, composite, and domain types
// referenced by any column of tables, so C3 can emit GraphQL enum and
// object types for exactly the user-defined types actually in use.
func (r *Reflector) reflectCustomTypes(ctx context.Context, schemaName string, tables map[string]*TableInfo) (map[string]*CustomType, error) {
	referenced := make(map[string]bool)
	for _, t := range tables {
		for _, c := range t.Columns {
			referenced[BaseType(c.Type)] = true
		}
	}
	if len(referenced) == 0 {
		return map[string]*CustomType{}, nil
	}

	names := make([]string, 0, len(referenced))
	for n := range referenced {
		names = append(names, n)
	}

	result := make(map[string]*CustomType)

	if err := r.reflectEnums(ctx, schemaName, names, result); err != nil {
		return nil, err
	}
	if err := r.reflectComposites(ctx, schemaName, names, result); err != nil {
		return nil, err
	}
	if err := r.reflectDomains(ctx, schemaName, names, result); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *Reflector) reflectEnums(ctx context.Context, schemaName string, names []string, result map[string]*CustomType) error {
	query := `
		SELECT t.typname, e.enumlabel
		FROM pg_type t
		JOIN pg_namespace n ON n.oid = t.typnamespace
		JOIN pg_enum e ON e.enumtypid = t.oid
		WHERE n.nspname = $1
			AND t.typname = ANY($2)
		ORDER BY t.typname, e.enumsortorder
	`

	rows, err := r.exec.Query(ctx, query, schemaName, names)
	if err != nil {
		return fmt.Errorf("reflecting enum types: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var typeName, label string
		if err := rows.Scan(&typeName, &label); err != nil {
			return err
		}
		ct, ok := result[typeName]
		if !ok {
			ct = &CustomType{Name: typeName, Kind: CustomTypeEnum}
			result[typeName] = ct
		}
		ct.Values = append(ct.Values, label)
	}
	return rows.Err()
}

func (r *Reflector) reflectComposites(ctx context.Context, schemaName string, names []string, result map[string]*CustomType) error {
	query := `
		SELECT
			t.typname,
			a.attname,
			pg_catalog.format_type(a.atttypid, a.atttypmod)
		FROM pg_type t
		JOIN pg_namespace n ON n.oid = t.typnamespace
		JOIN pg_class c ON c.oid = t.typrelid
		JOIN pg_attribute a ON a.attrelid = c.oid
		WHERE n.nspname = $1
			AND t.typname = ANY($2)
			AND t.typtype = 'c'
			AND a.attnum > 0
			AND NOT a.attisdropped
		ORDER BY t.typname, a.attnum
	`

	rows, err := r.exec.Query(ctx, query, schemaName, names)
	if err != nil {
		return fmt.Errorf("reflecting composite types: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var typeName, attrName, attrType string
		if err := rows.Scan(&typeName, &attrName, &attrType); err != nil {
			return err
		}
		ct, ok := result[typeName]
		if !ok {
			ct = &CustomType{Name: typeName, Kind: CustomTypeComposite}
			result[typeName] = ct
		}
		position := len(ct.Attributes)
		if attrName == "" {
			attrName = fmt.Sprintf("attr_%d", position)
		}
		ct.Attributes = append(ct.Attributes, CompositeAttribute{
			Name:     attrName,
			Type:     attrType,
			Position: position,
		})
	}
	return rows.Err()
}

func (r *Reflector) reflectDomains(ctx context.Context, schemaName string, names []string, result map[string]*CustomType) error {
	query := `
		SELECT
			t.typname,
			pg_catalog.format_type(t.typbasetype, t.typtypmod),
			COALESCE(
				(SELECT string_agg(pg_get_constraintdef(con.oid), ' AND ')
				 FROM pg_constraint con WHERE con.contypid = t.oid),
				''
			)
		FROM pg_type t
		JOIN pg_namespace n ON n.oid = t.typnamespace
		WHERE n.nspname = $1
			AND t.typname = ANY($2)
			AND t.typtype = 'd'
	`

	rows, err := r.exec.Query(ctx, query, schemaName, names)
	if err != nil {
		return fmt.Errorf("reflecting domain types: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var typeName, baseType, checkExpr string
		if err := rows.Scan(&typeName, &baseType, &checkExpr); err != nil {
			return err
		}
		result[typeName] = &CustomType{
			Name:      typeName,
			Kind:      CustomTypeDomain,
			BaseType:  baseType,
			CheckExpr: checkExpr,
		}
	}
	return rows.Err()
}
