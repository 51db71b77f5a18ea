package repository

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-status-exporter/internal/domain"
)

func TestTicketRows(t *testing.T) {
	snap := domain.Snapshot{
		RunID: "4b5c7c4e-54a5-4b8f-8d55-35a4b0b1f1a1",
		Tickets: []domain.TicketRecord{
			{ID: "101", Status: "open", Fields: map[string]any{"status": "open", "owner": "ana"}},
			{ID: "103", Status: "closed", Fields: map[string]any{"status": "closed"}},
		},
	}

	rows, err := TicketRows(snap)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, snap.RunID, rows[0][0])
	assert.Equal(t, 0, rows[0][1])
	assert.Equal(t, "101", rows[0][2])
	assert.Equal(t, "open", rows[0][3])

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rows[0][4].([]byte), &payload))
	assert.Equal(t, "ana", payload["owner"])
	assert.Equal(t, 1, rows[1][1])
}

func TestTicketRows_UnencodablePayload(t *testing.T) {
	_, err := TicketRows(domain.Snapshot{Tickets: []domain.TicketRecord{
		{ID: "1", Status: "open", Fields: map[string]any{"bad": make(chan int)}},
	}})
	assert.ErrorContains(t, err, "ticket 1")
}

func TestCountsKey(t *testing.T) {
	assert.Equal(t, "ticket-status:abc:counts", CountsKey("abc"))
}
