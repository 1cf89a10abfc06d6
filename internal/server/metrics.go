package server

import (
	"sync/atomic"
	"time"
)

// Metrics tracks request counters for the /metrics endpoint.
type Metrics struct {
	start        time.Time
	requests     atomic.Int64
	comparisons  atomic.Int64
	calculations atomic.Int64
	errors       atomic.Int64
}

// NewMetrics starts the uptime clock.
func NewMetrics() *Metrics {
	return &Metrics{start: time.Now()}
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	UptimeSeconds float64 `json:"uptimeSeconds"`
	Requests      int64   `json:"requests"`
	Comparisons   int64   `json:"comparisons"`
	Calculations  int64   `json:"calculations"`
	Errors        int64   `json:"errors"`
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		UptimeSeconds: time.Since(m.start).Seconds(),
		Requests:      m.requests.Load(),
		Comparisons:   m.comparisons.Load(),
		Calculations:  m.calculations.Load(),
		Errors:        m.errors.Load(),
	}
}
