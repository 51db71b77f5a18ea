package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	fetchCount   map[string]int64
	fetchLatency time.Duration
	requestCount map[string]int64
}

// FetchStats is a point-in-time copy of the fetch counters.
type FetchStats struct {
	Succeeded    int64            `json:"succeeded"`
	FailedBy     map[string]int64 `json:"failed_by_reason"`
	TotalLatency time.Duration    `json:"-"`
}

const fetchOK = "ok"

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		fetchCount:   make(map[string]int64),
		requestCount: make(map[string]int64),
	}
}

// RecordFetch counts one ticket request. An empty reason means success.
func (m *Metrics) RecordFetch(reason string, duration time.Duration) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = fetchOK
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchCount[reason]++
	m.fetchLatency += duration
}

// FetchStats returns a copy of the fetch counters.
func (m *Metrics) FetchStats() FetchStats {
	stats := FetchStats{FailedBy: map[string]int64{}}
	if m == nil {
		return stats
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for reason, n := range m.fetchCount {
		if reason == fetchOK {
			stats.Succeeded = n
			continue
		}
		stats.FailedBy[reason] = n
	}
	stats.TotalLatency = m.fetchLatency
	return stats
}

// RecordRequest increments counters for progress server requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RequestCount returns how many requests matched path, method and status.
func (m *Metrics) RequestCount(path, method string, status int) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestCount[pathKey(path, method, status)]
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
