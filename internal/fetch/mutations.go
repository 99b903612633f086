package fetch

import (
	"context"

	"github.com/excalibase/excalibase-graphql/internal/apperrors"
	"github.com/excalibase/excalibase-graphql/internal/catalog"
	"github.com/excalibase/excalibase-graphql/internal/graphqlschema"
	"github.com/excalibase/excalibase-graphql/internal/sqlbuilder"
	"github.com/graphql-go/graphql"
	"github.com/jackc/pgx/v5"
)

// graphqlToDBColumnNames translates a data-argument map keyed by
// GraphQL field name back to the catalog's own column names, so the
// query builder never has to know about camelCase translation.
func graphqlToDBColumnNames(table *catalog.TableInfo, data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for _, col := range table.Columns {
		field := graphqlschema.FieldName(col.Name)
		if val, ok := data[field]; ok {
			out[col.Name] = val
		}
	}
	return out
}

// primaryKeyFilters builds the equality filters identifying one row by
// the primary key arguments update<Name>/delete<Name> take.
func primaryKeyFilters(table *catalog.TableInfo, args map[string]interface{}) []sqlbuilder.Filter {
	var filters []sqlbuilder.Filter
	for _, col := range table.PrimaryKey() {
		field := graphqlschema.FieldName(col.Name)
		if val, ok := args[field]; ok {
			filters = append(filters, sqlbuilder.Filter{Column: col.Name, Operator: sqlbuilder.OpEq, Value: val})
		}
	}
	return filters
}

// queryExecer is the single method insertOne needs, satisfied by both
// *Fetcher's pooled dbExecutor and an open pgx.Tx - so one insert
// helper works identically whether it runs standalone or as one step
// inside a CreateMany/CreateWithRelations transaction.
type queryExecer interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

func (f *Fetcher) insertOne(ctx context.Context, db queryExecer, table *catalog.TableInfo, data map[string]interface{}) (map[string]interface{}, error) {
	qb := sqlbuilder.NewQueryBuilder(f.schema, table.Name)
	sql, args := qb.BuildInsert(graphqlToDBColumnNames(table, data))
	if sql == "" {
		return nil, apperrors.NewMutationValidationError(table.Name, "data", "must not be empty")
	}
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapFetchErr(table.Name, "insert", err)
	}
	results, err := scanRows(rows)
	if err != nil {
		return nil, wrapFetchErr(table.Name, "insert", err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

// CreateOne inserts a single row and returns the server-computed
// result (defaults, identity values, triggers) from its RETURNING *.
func (f *Fetcher) CreateOne(table *catalog.TableInfo) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		data, ok := p.Args["data"].(map[string]interface{})
		if !ok {
			return nil, apperrors.NewMutationValidationError(table.Name, "data", "is required")
		}
		row, err := f.insertOne(p.Context, f.db, table, data)
		if err != nil {
			return nil, err
		}
		f.preloadRelations(p.Context, table, []map[string]interface{}{row})
		return row, nil
	}
}

// CreateMany inserts every row in data inside one transaction: either
// all rows are created or none are, matching the all-or-nothing
// expectation a bulk create implies.
func (f *Fetcher) CreateMany(table *catalog.TableInfo) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		items, ok := p.Args["data"].([]interface{})
		if !ok || len(items) == 0 {
			return nil, apperrors.NewMutationValidationError(table.Name, "data", "must be a non-empty array")
		}

		tx, err := f.db.BeginTx(p.Context)
		if err != nil {
			return nil, wrapFetchErr(table.Name, "insertMany", err)
		}
		defer func() { _ = tx.Rollback(p.Context) }()

		results := make([]map[string]interface{}, 0, len(items))
		for _, item := range items {
			data, ok := item.(map[string]interface{})
			if !ok {
				return nil, apperrors.NewMutationValidationError(table.Name, "data", "every element must be an object")
			}
			row, err := f.insertOne(p.Context, tx, table, data)
			if err != nil {
				return nil, err
			}
			results = append(results, row)
		}

		if err := tx.Commit(p.Context); err != nil {
			return nil, wrapFetchErr(table.Name, "insertMany", err)
		}

		f.preloadRelations(p.Context, table, results)
		return results, nil
	}
}

// CreateWithRelations inserts a row together with related rows named
// by its "<relation>_connect"/"<relation>_create"/"<reverse>_createMany"
// sub-inputs, in one transaction: forward relations are resolved
// first (a "_create" sub-input is inserted before the owning row, a
// "_connect" sub-input only supplies the already-existing foreign key
// value), then the owning row, then every reverse "_createMany" child
// row referencing it.
func (f *Fetcher) CreateWithRelations(table *catalog.TableInfo) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		data, ok := p.Args["data"].(map[string]interface{})
		if !ok {
			return nil, apperrors.NewMutationValidationError(table.Name, "data", "is required")
		}

		tx, err := f.db.BeginTx(p.Context)
		if err != nil {
			return nil, wrapFetchErr(table.Name, "insertWithRelations", err)
		}
		defer func() { _ = tx.Rollback(p.Context) }()

		ownColumns := map[string]interface{}{}
		for _, col := range table.Columns {
			if val, ok := data[graphqlschema.FieldName(col.Name)]; ok {
				ownColumns[graphqlschema.FieldName(col.Name)] = val
			}
		}

		for _, fk := range table.ForeignKeys {
			relation := graphqlschema.RelationFieldName(fk.ColumnName)
			refTable, ok := f.table(fk.ReferencedTable)
			if !ok {
				continue
			}

			if connectInput, ok := data[relation+"_connect"].(map[string]interface{}); ok {
				pk := refTable.PrimaryKey()
				if len(pk) != 1 {
					return nil, apperrors.NewMutationValidationError(table.Name, relation+"_connect", "referenced table must have a single-column primary key")
				}
				field := graphqlschema.FieldName(pk[0].Name)
				val, ok := connectInput[field]
				if !ok {
					return nil, apperrors.NewMutationValidationError(table.Name, relation+"_connect", "missing primary key value")
				}
				ownColumns[graphqlschema.FieldName(fk.ColumnName)] = val
			}

			if createInput, ok := data[relation+"_create"].(map[string]interface{}); ok {
				refRow, err := f.insertOne(p.Context, tx, refTable, createInput)
				if err != nil {
					return nil, err
				}
				ownColumns[graphqlschema.FieldName(fk.ColumnName)] = refRow[fk.ReferencedColumn]
			}
		}

		row, err := f.insertOne(p.Context, tx, table, ownColumns)
		if err != nil {
			return nil, err
		}

		for _, owning := range f.model.Tables {
			for _, fk := range owning.ForeignKeys {
				if fk.ReferencedTable != table.Name {
					continue
				}
				name := graphqlschema.ReverseRelationFieldName(graphqlschema.Singularize(owning.Name))
				children, ok := data[name+"_createMany"].([]interface{})
				if !ok {
					continue
				}
				for _, child := range children {
					childData, ok := child.(map[string]interface{})
					if !ok {
						return nil, apperrors.NewMutationValidationError(owning.Name, name+"_createMany", "every element must be an object")
					}
					childData[graphqlschema.FieldName(fk.ColumnName)] = row[fk.ReferencedColumn]
					if _, err := f.insertOne(p.Context, tx, owning, childData); err != nil {
						return nil, err
					}
				}
			}
		}

		if err := tx.Commit(p.Context); err != nil {
			return nil, wrapFetchErr(table.Name, "insertWithRelations", err)
		}

		f.preloadRelations(p.Context, table, []map[string]interface{}{row})
		return row, nil
	}
}

// UpdateOne patches the row identified by its primary key arguments
// with the supplied data, returning the updated row.
func (f *Fetcher) UpdateOne(table *catalog.TableInfo) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		data, ok := p.Args["data"].(map[string]interface{})
		if !ok {
			return nil, apperrors.NewMutationValidationError(table.Name, "data", "is required")
		}

		filters := primaryKeyFilters(table, p.Args)
		if len(filters) == 0 {
			return nil, apperrors.NewMutationValidationError(table.Name, "primaryKey", "arguments are required")
		}

		qb := sqlbuilder.NewQueryBuilder(f.schema, table.Name).WithFilters(filters)
		sql, args := qb.BuildUpdate(graphqlToDBColumnNames(table, data))
		if sql == "" {
			return nil, apperrors.NewMutationValidationError(table.Name, "data", "must not be empty")
		}

		rows, err := f.db.Query(p.Context, sql, args...)
		if err != nil {
			return nil, wrapFetchErr(table.Name, "update", err)
		}
		results, err := scanRows(rows)
		if err != nil {
			return nil, wrapFetchErr(table.Name, "update", err)
		}
		if len(results) == 0 {
			return nil, nil
		}
		f.preloadRelations(p.Context, table, results[:1])
		return results[0], nil
	}
}

// DeleteOne removes the row identified by its primary key arguments,
// returning the row as it existed just before deletion.
func (f *Fetcher) DeleteOne(table *catalog.TableInfo) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		filters := primaryKeyFilters(table, p.Args)
		if len(filters) == 0 {
			return nil, apperrors.NewMutationValidationError(table.Name, "primaryKey", "arguments are required")
		}

		qb := sqlbuilder.NewQueryBuilder(f.schema, table.Name).WithFilters(filters)
		sql, args := qb.BuildDelete()

		rows, err := f.db.Query(p.Context, sql, args...)
		if err != nil {
			return nil, wrapFetchErr(table.Name, "delete", err)
		}
		results, err := scanRows(rows)
		if err != nil {
			return nil, wrapFetchErr(table.Name, "delete", err)
		}
		if len(results) == 0 {
			return nil, nil
		}
		return results[0], nil
	}
}
