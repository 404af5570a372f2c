package queue

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleMessageAppendsLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "orders.log")
	ev := OrderCreatedEvent{
		OrderID:   7,
		UserID:    3,
		CreatedAt: "2024-05-01T20:00:00Z",
		Tickets: []TicketEntry{
			{MovieSessionID: 5, Row: 3, Seat: 4},
			{MovieSessionID: 5, Row: 3, Seat: 5},
		},
	}
	body, err := json.Marshal(ev)
	require.NoError(t, err)

	require.NoError(t, handleMessage(path, body))
	require.NoError(t, handleMessage(path, body))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := "[2024-05-01T20:00:00Z] Order created | order_id=7 | user_id=3 | tickets=2 | seats=[5:R3S4,5:R3S5]\n"
	assert.Equal(t, line+line, string(data))
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.log")
	assert.Error(t, handleMessage(path, []byte("{not json")))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
