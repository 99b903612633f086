package fetch

import (
	"context"

	"github.com/excalibase/excalibase-graphql/internal/apperrors"
	"github.com/excalibase/excalibase-graphql/internal/catalog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// dbExecutor is the subset of *database.Connection the Data Fetcher
// needs, narrowed to an interface so it depends only on behavior
// (query/exec/transact with metrics and slow-query logging already
// handled by that package) rather than the concrete type, matching how
// catalog.Cache narrows *Reflector to schemaReflector.
type dbExecutor interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// Fetcher implements graphqlschema.Resolvers over a reflected
// catalog.Model and a live database connection. One Fetcher serves every
// table in the schema; table-specific behavior comes entirely from the
// *catalog.TableInfo each Resolvers method receives.
type Fetcher struct {
	db     dbExecutor
	model  *catalog.Model
	schema string
}

// New builds a Fetcher. schema is the Postgres schema every rendered
// query is qualified against (normally the same schema the Model was
// reflected from).
func New(db dbExecutor, model *catalog.Model, schema string) *Fetcher {
	return &Fetcher{db: db, model: model, schema: schema}
}

func (f *Fetcher) table(name string) (*catalog.TableInfo, bool) {
	t, ok := f.model.Tables[name]
	return t, ok
}

func wrapFetchErr(table, op string, err error) error {
	if err == nil {
		return nil
	}
	return apperrors.NewDataFetchError(table, op, err)
}
