package graphqlschema

import (
	"github.com/excalibase/excalibase-graphql/internal/catalog"
	"github.com/graphql-go/graphql"
)

// Resolvers is implemented by the Data Fetcher (C5) and supplied to
// the Generator so schema construction stays decoupled from query
// execution, mirroring the teacher's GraphQLResolverFactory seam.
type Resolvers interface {
	TableList(table *catalog.TableInfo) graphql.FieldResolveFn
	TableConnection(table *catalog.TableInfo) graphql.FieldResolveFn
	TableAggregate(table *catalog.TableInfo) graphql.FieldResolveFn
	ForeignKeyRelation(table *catalog.TableInfo, fk catalog.ForeignKeyInfo) graphql.FieldResolveFn
	ReverseRelation(referencedTable *catalog.TableInfo, fk catalog.ForeignKeyInfo, owningTable *catalog.TableInfo) graphql.FieldResolveFn
	CreateOne(table *catalog.TableInfo) graphql.FieldResolveFn
	CreateMany(table *catalog.TableInfo) graphql.FieldResolveFn
	CreateWithRelations(table *catalog.TableInfo) graphql.FieldResolveFn
	UpdateOne(table *catalog.TableInfo) graphql.FieldResolveFn
	DeleteOne(table *catalog.TableInfo) graphql.FieldResolveFn
}
