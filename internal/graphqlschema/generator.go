package graphqlschema

import (
	"fmt"
	"sort"

	"github.com/excalibase/excalibase-graphql/internal/catalog"
	"github.com/graphql-go/graphql"
)

// Generator builds a graphql-go Schema from a reflected catalog.Model.
// Construction happens in two passes over the model's tables so
// forward and reverse foreign-key fields can reference each other's
// object types regardless of declaration order (the teacher's
// GraphQLSchemaGenerator.regenerateSchema does the same stub-then-fill
// two-pass construction).
type Generator struct {
	model     *catalog.Model
	resolvers Resolvers

	objectTypes      map[string]*graphql.Object
	createInputTypes map[string]*graphql.InputObject
	updateInputTypes map[string]*graphql.InputObject
	connectInputs    map[string]*graphql.InputObject
	filterTypes      map[string]*graphql.InputObject
	orderByTypes     map[string]*graphql.InputObject
	edgeTypes        map[string]*graphql.Object
	connectionTypes  map[string]*graphql.Object
	aggregateTypes   map[string]*graphql.Object
	enumTypes        map[string]*graphql.Enum
	compositeTypes   map[string]*graphql.Object
	domainBase       map[string]string
}

// NewGenerator constructs a Generator over a reflected Model. resolvers
// supplies the field-level resolve functions the Data Fetcher (C5)
// implements; schema shape is built independently of how fields are
// actually resolved.
func NewGenerator(model *catalog.Model, resolvers Resolvers) *Generator {
	return &Generator{
		model:            model,
		resolvers:        resolvers,
		objectTypes:      map[string]*graphql.Object{},
		createInputTypes: map[string]*graphql.InputObject{},
		updateInputTypes: map[string]*graphql.InputObject{},
		connectInputs:    map[string]*graphql.InputObject{},
		filterTypes:      map[string]*graphql.InputObject{},
		orderByTypes:     map[string]*graphql.InputObject{},
		edgeTypes:        map[string]*graphql.Object{},
		connectionTypes:  map[string]*graphql.Object{},
		aggregateTypes:   map[string]*graphql.Object{},
		enumTypes:        map[string]*graphql.Enum{},
		compositeTypes:   map[string]*graphql.Object{},
		domainBase:       map[string]string{},
	}
}

func sortedTableNames(model *catalog.Model) []string {
	names := make([]string, 0, len(model.Tables))
	for name := range model.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedTypeNames(model *catalog.Model) []string {
	names := make([]string, 0, len(model.CustomTypes))
	for name := range model.CustomTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolveColumnType substitutes a domain type's base type for its own
// name, following at most one level of indirection (Postgres domains
// do not chain onto other domains in the reflected model).
func (g *Generator) resolveColumnType(t string) string {
	if catalog.IsArray(t) {
		base := catalog.BaseType(t)
		if resolved, ok := g.domainBase[base]; ok {
			return resolved + "[]"
		}
		return t
	}
	if resolved, ok := g.domainBase[t]; ok {
		return resolved
	}
	return t
}

// customType returns the enum or composite GraphQL type backing col,
// if its (domain-resolved) type names one, along with whether it was
// an array column (so the caller list-wraps appropriately).
func (g *Generator) customType(col catalog.ColumnInfo) (graphql.Type, bool) {
	resolved := g.resolveColumnType(col.Type)
	base := catalog.BaseType(resolved)
	if enum, ok := g.enumTypes[base]; ok {
		return enum, true
	}
	if comp, ok := g.compositeTypes[base]; ok {
		return comp, true
	}
	return nil, false
}

// outputType resolves a column's GraphQL output type, substituting a
// custom enum/composite type ahead of the plain catalog-type mapping,
// and a domain's base type when the column's type is itself a domain.
func (g *Generator) outputType(col catalog.ColumnInfo) graphql.Output {
	if custom, ok := g.customType(col); ok {
		out, _ := custom.(graphql.Output)
		if catalog.IsArray(col.Type) {
			out = graphql.NewList(out)
		}
		if col.PrimaryKey || !col.Nullable {
			return graphql.NewNonNull(out)
		}
		return out
	}
	resolved := col
	resolved.Type = g.resolveColumnType(col.Type)
	return outputType(resolved)
}

// inputType resolves a column's GraphQL input type. Composite types
// have no input-position counterpart here (graphql-go Objects are not
// valid Inputs); such columns fall back to JSONScalar so a caller
// still supplies structured data, just without field-level validation.
func (g *Generator) inputType(col catalog.ColumnInfo) graphql.Input {
	if custom, ok := g.customType(col); ok {
		if in, ok := custom.(*graphql.Enum); ok {
			if catalog.IsArray(col.Type) {
				return graphql.NewList(in)
			}
			return in
		}
		return JSONScalar
	}
	resolved := col
	resolved.Type = g.resolveColumnType(col.Type)
	return inputType(resolved)
}

// Generate builds the full GraphQL schema for the reflected model:
// object types, relationship fields, connection/filter/order-by/
// aggregate types, custom enum/composite types, and the root Query and
// Mutation objects.
func (g *Generator) Generate() (*graphql.Schema, error) {
	g.buildCustomTypes()

	tableNames := sortedTableNames(g.model)
	reverseIndex := buildReverseIndex(g.model)

	// First pass: stub object types so forward/reverse relation fields
	// can reference each other regardless of declaration order.
	for _, name := range tableNames {
		table := g.model.Tables[name]
		g.objectTypes[name] = graphql.NewObject(graphql.ObjectConfig{
			Name:        typeName(table.Name),
			Description: fmt.Sprintf("Generated type for %s", table.Name),
			Fields:      graphql.Fields{},
		})
	}

	// Second pass: populate fields and build the per-table supporting
	// types (inputs, filters, order-by, connection, aggregate).
	for _, name := range tableNames {
		table := g.model.Tables[name]
		obj := g.objectTypes[name]

		addScalarFields(obj, table, g.outputType)
		addForwardRelationFields(obj, table, g.objectTypes, g.resolvers)
		addReverseRelationFields(obj, table, g.objectTypes, reverseIndex[name], g.resolvers)

		g.filterTypes[name] = buildFilterInputType(table, g.inputType)
		g.orderByTypes[name] = buildOrderByInputType(table)
		g.edgeTypes[name] = buildEdgeType(obj)
		g.connectionTypes[name] = buildConnectionType(obj, g.edgeTypes[name])
		g.aggregateTypes[name] = buildAggregateType(table)

		if !table.IsView {
			g.createInputTypes[name] = buildCreateInputType(table, g.inputType)
			g.updateInputTypes[name] = buildUpdateInputType(table, g.inputType)
			g.connectInputs[name] = buildConnectInputType(table)
		}
	}

	queryFields := g.buildQueryFields(tableNames, reverseIndex)
	mutationFields := g.buildMutationFields(tableNames, reverseIndex)

	schemaConfig := graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{Name: "Query", Fields: queryFields}),
	}
	if len(mutationFields) > 0 {
		schemaConfig.Mutation = graphql.NewObject(graphql.ObjectConfig{Name: "Mutation", Fields: mutationFields})
	}

	schema, err := graphql.NewSchema(schemaConfig)
	if err != nil {
		return nil, fmt.Errorf("building graphql schema: %w", err)
	}
	return &schema, nil
}

// buildCustomTypes emits GraphQL enum/composite types for every
// reflected custom type and records domain base-type substitutions,
// before any table field is built (fields depend on these maps).
func (g *Generator) buildCustomTypes() {
	for _, name := range sortedTypeNames(g.model) {
		ct := g.model.CustomTypes[name]
		switch ct.Kind {
		case catalog.CustomTypeEnum:
			g.enumTypes[ct.Name] = buildEnumType(ct)
		case catalog.CustomTypeComposite:
			g.compositeTypes[ct.Name] = buildCompositeType(ct)
		case catalog.CustomTypeDomain:
			g.domainBase[ct.Name] = ct.BaseType
		}
	}
}

func (g *Generator) buildQueryFields(tableNames []string, reverseIndex map[string][]reverseRef) graphql.Fields {
	fields := graphql.Fields{
		"_health": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return "ok", nil
			},
		},
	}

	for _, name := range tableNames {
		table := g.model.Tables[name]
		obj := g.objectTypes[name]

		// listArgs and connectionArgs each build their own FilterInput and
		// OrderByInput objects; swap in the per-table instances so the
		// schema holds exactly one type under each name.
		listFieldArgs := listArgs(table, g.inputType)
		connectionFieldArgs := connectionArgs(table, g.inputType)
		for _, args := range []graphql.FieldConfigArgument{listFieldArgs, connectionFieldArgs} {
			args["or"].Type = graphql.NewList(g.filterTypes[name])
			args["orderBy"].Type = g.orderByTypes[name]
		}

		listName := fieldName(table.Name)
		fields[listName] = &graphql.Field{
			Type:    graphql.NewList(obj),
			Args:    listFieldArgs,
			Resolve: g.resolvers.TableList(table),
		}

		connectionName := listName + "Connection"
		fields[connectionName] = &graphql.Field{
			Type:    graphql.NewNonNull(g.connectionTypes[name]),
			Args:    connectionFieldArgs,
			Resolve: g.resolvers.TableConnection(table),
		}

		aggregateName := listName + "Aggregate"
		fields[aggregateName] = &graphql.Field{
			Type:    graphql.NewNonNull(g.aggregateTypes[name]),
			Args:    argsFromFields(buildFilterFields(table, g.inputType)),
			Resolve: g.resolvers.TableAggregate(table),
		}
	}

	return fields
}

func (g *Generator) buildMutationFields(tableNames []string, reverseIndex map[string][]reverseRef) graphql.Fields {
	fields := graphql.Fields{}

	for _, name := range tableNames {
		table := g.model.Tables[name]
		if table.IsView {
			continue
		}
		obj := g.objectTypes[name]
		createInput := g.createInputTypes[name]
		updateInput := g.updateInputTypes[name]
		// Mutation field names use the singular entity form
		// ("createPost") even though the object type name mirrors the
		// (usually plural) table name ("Posts"), per §4.3's naming.
		entity := typeName(singularize(table.Name))

		fields["create"+entity] = &graphql.Field{
			Type: obj,
			Args: graphql.FieldConfigArgument{
				"data": &graphql.ArgumentConfig{Type: graphql.NewNonNull(createInput)},
			},
			Resolve: g.resolvers.CreateOne(table),
		}

		fields["createMany"+pluralize(entity)] = &graphql.Field{
			Type: graphql.NewList(obj),
			Args: graphql.FieldConfigArgument{
				"data": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(createInput)))},
			},
			Resolve: g.resolvers.CreateMany(table),
		}

		withRelationsInput := buildWithRelationsInputType(table, g.createInputTypes, g.connectInputs, reverseIndex[name], g.inputType)
		fields["create"+entity+"WithRelations"] = &graphql.Field{
			Type: obj,
			Args: graphql.FieldConfigArgument{
				"data": &graphql.ArgumentConfig{Type: graphql.NewNonNull(withRelationsInput)},
			},
			Resolve: g.resolvers.CreateWithRelations(table),
		}

		if len(table.PrimaryKey()) > 0 {
			updateArgs := primaryKeyArgs(table)
			updateArgs["data"] = &graphql.ArgumentConfig{Type: graphql.NewNonNull(updateInput)}
			fields["update"+entity] = &graphql.Field{
				Type:    obj,
				Args:    updateArgs,
				Resolve: g.resolvers.UpdateOne(table),
			}

			fields["delete"+entity] = &graphql.Field{
				Type:    obj,
				Args:    primaryKeyArgs(table),
				Resolve: g.resolvers.DeleteOne(table),
			}
		}
	}

	return fields
}
