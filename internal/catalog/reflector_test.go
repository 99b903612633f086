package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupForeignKeysSingleColumn(t *testing.T) {
	rows := []fkRow{
		{constraintName: "fk_posts_author", columnName: "author_id", referencedTable: "users", referencedColumn: "id"},
	}

	fks := groupForeignKeys(rows)

	assert.Len(t, fks, 1)
	assert.Equal(t, "author_id", fks[0].ColumnName)
	assert.Equal(t, "users", fks[0].ReferencedTable)
	assert.Equal(t, "id", fks[0].ReferencedColumn)
	assert.Len(t, fks[0].Columns, 1)
}

func TestGroupForeignKeysComposite(t *testing.T) {
	// Two rows sharing one constraint name collapse into one entry
	// carrying both column pairs, rather than two independent entries.
	rows := []fkRow{
		{constraintName: "fk_order_items_order", columnName: "order_id", referencedTable: "orders", referencedColumn: "id"},
		{constraintName: "fk_order_items_order", columnName: "tenant_id", referencedTable: "orders", referencedColumn: "tenant_id"},
	}

	fks := groupForeignKeys(rows)

	assert.Len(t, fks, 1)
	assert.Len(t, fks[0].Columns, 2)
	assert.Equal(t, "order_id", fks[0].Columns[0].LocalColumn)
	assert.Equal(t, "tenant_id", fks[0].Columns[1].LocalColumn)
	// ColumnName/ReferencedColumn mirror the first pair for simple call sites.
	assert.Equal(t, "order_id", fks[0].ColumnName)
}

func TestGroupForeignKeysPreservesConstraintOrder(t *testing.T) {
	rows := []fkRow{
		{constraintName: "fk_b", columnName: "b_id", referencedTable: "b", referencedColumn: "id"},
		{constraintName: "fk_a", columnName: "a_id", referencedTable: "a", referencedColumn: "id"},
	}

	fks := groupForeignKeys(rows)

	assert.Len(t, fks, 2)
	assert.Equal(t, "fk_b", fks[0].Name)
	assert.Equal(t, "fk_a", fks[1].Name)
}

func TestGroupForeignKeysEmpty(t *testing.T) {
	assert.Empty(t, groupForeignKeys(nil))
}
