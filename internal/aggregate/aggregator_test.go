package aggregate

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/ticket-status-exporter/internal/domain"
)

func TestAggregator_CountsInFirstSeenOrder(t *testing.T) {
	a := New()
	for i, status := range []string{"open", "closed", "open", "pending", "closed", "open"} {
		a.Add(domain.TicketRecord{ID: string(rune('a' + i)), Status: status})
	}

	assert.Equal(t, []domain.StatusCount{
		{Status: "open", Count: 3},
		{Status: "closed", Count: 2},
		{Status: "pending", Count: 1},
	}, a.StatusCounts())

	tickets := a.Tickets()
	assert.Len(t, tickets, 6)
	assert.Equal(t, "a", tickets[0].ID)
	assert.Equal(t, "f", tickets[5].ID)
}

func TestAggregator_CountsConserved(t *testing.T) {
	a := New()
	a.SetRequested(5)
	a.Add(domain.TicketRecord{ID: "1", Status: "open"})
	a.MarkFailed()
	a.Add(domain.TicketRecord{ID: "3", Status: ""})
	a.Add(domain.TicketRecord{ID: "4", Status: "open"})
	a.MarkFailed()

	sum := 0
	for _, sc := range a.StatusCounts() {
		sum += sc.Count
	}
	requested, fetched, failed := a.Progress()
	assert.Equal(t, fetched, sum)
	assert.Equal(t, 5, requested)
	assert.Equal(t, 3, fetched)
	assert.Equal(t, 2, failed)
}

func TestAggregator_Empty(t *testing.T) {
	snap := New().Snapshot("run-1")
	assert.Equal(t, "run-1", snap.RunID)
	assert.Empty(t, snap.Tickets)
	assert.Empty(t, snap.StatusCounts)
	assert.Equal(t, 0, snap.Fetched())
}

func TestAggregator_SnapshotIsCopy(t *testing.T) {
	a := New()
	a.Add(domain.TicketRecord{ID: "1", Status: "open"})
	snap := a.Snapshot("r")
	a.Add(domain.TicketRecord{ID: "2", Status: "open"})

	assert.Len(t, snap.Tickets, 1)
	assert.Equal(t, 1, snap.StatusCounts[0].Count)
}

func TestAggregator_ConcurrentReaders(t *testing.T) {
	a := New()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			a.Add(domain.TicketRecord{ID: "x", Status: "open"})
		}
	}()
	for i := 0; i < 50; i++ {
		_ = a.StatusCounts()
		_, _, _ = a.Progress()
	}
	wg.Wait()
	assert.Equal(t, []domain.StatusCount{{Status: "open", Count: 200}}, a.StatusCounts())
}
