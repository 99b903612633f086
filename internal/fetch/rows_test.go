package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistinctValuesDedupesAndSkipsNil(t *testing.T) {
	rows := []map[string]interface{}{
		{"author_id": int64(1)},
		{"author_id": int64(2)},
		{"author_id": int64(1)},
		{"author_id": nil},
		{"other": "x"},
	}
	values := distinctValues(rows, "author_id")
	assert.Equal(t, []interface{}{int64(1), int64(2)}, values)
}

func TestDistinctValuesEmptyWhenColumnAbsent(t *testing.T) {
	rows := []map[string]interface{}{{"id": int64(1)}}
	assert.Empty(t, distinctValues(rows, "missing"))
}
