package cdc

import (
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestDecodeNotificationParsesCDCEvent(t *testing.T) {
	notification := &pgconn.Notification{
		Payload: `{"type":"INSERT","schema":"public","table":"orders","operationLabel":"insert","lsn":"0/1A2B3C"}`,
	}

	event, err := decodeNotification(notification)
	assert.NoError(t, err)
	assert.Equal(t, EventInsert, event.Type)
	assert.Equal(t, "public", event.Schema)
	assert.Equal(t, "orders", event.Table)
	assert.Equal(t, "0/1A2B3C", event.LSN)
}

func TestDecodeNotificationRejectsInvalidJSON(t *testing.T) {
	notification := &pgconn.Notification{Payload: "not json"}
	_, err := decodeNotification(notification)
	assert.Error(t, err)
}

func TestDecodeNotificationParsesBeginWithNoTable(t *testing.T) {
	notification := &pgconn.Notification{Payload: `{"type":"BEGIN"}`}
	event, err := decodeNotification(notification)
	assert.NoError(t, err)
	assert.Equal(t, EventBegin, event.Type)
	assert.Empty(t, event.Table)
}
