// Package apperrors defines the error taxonomy surfaced by the catalog
// reflector, schema generator, SQL builder, data fetcher, and dialect
// lookup. Each error carries a machine-readable Kind so the GraphQL
// engine can attach it to a field error without inspecting message text.
package apperrors

import "fmt"

// Kind is a machine-readable error classification.
type Kind string

const (
	KindReflection          Kind = "REFLECTION_ERROR"
	KindSchemaEmpty         Kind = "SCHEMA_EMPTY_ERROR"
	KindCursorFormat        Kind = "CURSOR_FORMAT_ERROR"
	KindCoercion            Kind = "COERCION_ERROR"
	KindDialectUnsupported  Kind = "DIALECT_UNSUPPORTED_ERROR"
	KindDataFetch           Kind = "DATA_FETCH_ERROR"
	KindMutationValidation  Kind = "MUTATION_VALIDATION_ERROR"
	KindPaginationArgument  Kind = "PAGINATION_ARGUMENT_ERROR"
)

// ReflectionError reports a catalog query failure during reflection.
type ReflectionError struct {
	Schema string
	Err    error
}

func (e *ReflectionError) Error() string {
	return fmt.Sprintf("reflecting schema %q: %v", e.Schema, e.Err)
}

func (e *ReflectionError) Unwrap() error { return e.Err }

func (e *ReflectionError) Kind() Kind { return KindReflection }

// NewReflectionError builds a ReflectionError.
func NewReflectionError(schema string, err error) *ReflectionError {
	return &ReflectionError{Schema: schema, Err: err}
}

// SchemaEmptyError reports that the generator was invoked with an empty Model.
type SchemaEmptyError struct {
	Schema string
}

func (e *SchemaEmptyError) Error() string {
	return fmt.Sprintf("cannot generate a GraphQL schema from an empty model for schema %q", e.Schema)
}

func (e *SchemaEmptyError) Kind() Kind { return KindSchemaEmpty }

// NewSchemaEmptyError builds a SchemaEmptyError.
func NewSchemaEmptyError(schema string) *SchemaEmptyError {
	return &SchemaEmptyError{Schema: schema}
}

// CursorFormatError reports a malformed after/before cursor argument.
type CursorFormatError struct {
	ArgumentName string // "after" or "before"
	Value        string
	Reason       string
}

func (e *CursorFormatError) Error() string {
	return fmt.Sprintf("Invalid cursor format for %q: %s", e.ArgumentName, e.Value)
}

func (e *CursorFormatError) Kind() Kind { return KindCursorFormat }

// NewCursorFormatError builds a CursorFormatError.
func NewCursorFormatError(argumentName, value, reason string) *CursorFormatError {
	return &CursorFormatError{ArgumentName: argumentName, Value: value, Reason: reason}
}

// CoercionError reports a literal that could not be coerced to a column's category.
type CoercionError struct {
	Column   string
	Category string
	Value    interface{}
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot coerce value %v for column %q into %s", e.Value, e.Column, e.Category)
}

func (e *CoercionError) Kind() Kind { return KindCoercion }

// NewCoercionError builds a CoercionError.
func NewCoercionError(column, category string, value interface{}) *CoercionError {
	return &CoercionError{Column: column, Category: category, Value: value}
}

// DialectUnsupportedError reports that the service lookup has no registration
// for the requested (capability, dialect) pair.
type DialectUnsupportedError struct {
	Capability string
	Dialect    string
}

func (e *DialectUnsupportedError) Error() string {
	return fmt.Sprintf("no %s implementation registered for dialect %q", e.Capability, e.Dialect)
}

func (e *DialectUnsupportedError) Kind() Kind { return KindDialectUnsupported }

// NewDialectUnsupportedError builds a DialectUnsupportedError.
func NewDialectUnsupportedError(capability, dialect string) *DialectUnsupportedError {
	return &DialectUnsupportedError{Capability: capability, Dialect: dialect}
}

// DataFetchError reports a runtime SQL execution failure.
type DataFetchError struct {
	Table string
	Op    string
	Err   error
}

func (e *DataFetchError) Error() string {
	return fmt.Sprintf("fetching %s on %q: %v", e.Op, e.Table, e.Err)
}

func (e *DataFetchError) Unwrap() error { return e.Err }

func (e *DataFetchError) Kind() Kind { return KindDataFetch }

// NewDataFetchError builds a DataFetchError.
func NewDataFetchError(table, op string, err error) *DataFetchError {
	return &DataFetchError{Table: table, Op: op, Err: err}
}

// MutationValidationError reports a non-null column missing on create, or an
// unknown field in a mutation input.
type MutationValidationError struct {
	Table  string
	Field  string
	Reason string
}

func (e *MutationValidationError) Error() string {
	return fmt.Sprintf("mutation on %q: field %q %s", e.Table, e.Field, e.Reason)
}

func (e *MutationValidationError) Kind() Kind { return KindMutationValidation }

// NewMutationValidationError builds a MutationValidationError.
func NewMutationValidationError(table, field, reason string) *MutationValidationError {
	return &MutationValidationError{Table: table, Field: field, Reason: reason}
}

// PaginationArgumentError reports an invalid combination of connection
// field arguments, such as first and last both set.
type PaginationArgumentError struct {
	Field  string
	Reason string
}

func (e *PaginationArgumentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *PaginationArgumentError) Kind() Kind { return KindPaginationArgument }

// NewPaginationArgumentError builds a PaginationArgumentError.
func NewPaginationArgumentError(field, reason string) *PaginationArgumentError {
	return &PaginationArgumentError{Field: field, Reason: reason}
}

// HasKind is implemented by every error type in this package.
type HasKind interface {
	Kind() Kind
}
