package observability

import (
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects request counters and a bounded window of durations per operation.
type Metrics struct {
	mu sync.Mutex

	requestTotal  atomic.Int64
	requestFailed atomic.Int64
	datesFound    atomic.Int64

	operations   map[string]*OperationMetrics
	maxDurations int
}

// OperationMetrics holds the counters for one API operation.
type OperationMetrics struct {
	count         atomic.Int64
	errorCount    atomic.Int64
	totalDuration atomic.Int64 // milliseconds

	// durations is a ring buffer guarded by Metrics.mu.
	durations []time.Duration
	next      int
}

// NewMetrics creates a collector keeping the last maxDurations samples per operation.
func NewMetrics(maxDurations int) *Metrics {
	if maxDurations <= 0 {
		maxDurations = 1000
	}
	return &Metrics{
		operations:   make(map[string]*OperationMetrics),
		maxDurations: maxDurations,
	}
}

var globalMetrics = NewMetrics(1000)

// GlobalMetrics returns the process-wide collector.
func GlobalMetrics() *Metrics {
	return globalMetrics
}

// Record records one finished request.
func (m *Metrics) Record(operation string, duration time.Duration, failed bool) {
	m.requestTotal.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()

	om := m.operation(operation)
	om.count.Add(1)
	om.totalDuration.Add(duration.Milliseconds())
	if failed {
		m.requestFailed.Add(1)
		om.errorCount.Add(1)
	}

	if len(om.durations) < m.maxDurations {
		om.durations = append(om.durations, duration)
		return
	}
	om.durations[om.next] = duration
	om.next = (om.next + 1) % m.maxDurations
}

// RecordDates adds to the number of dates returned to clients.
func (m *Metrics) RecordDates(n int) {
	m.datesFound.Add(int64(n))
}

// operation must be called with m.mu held.
func (m *Metrics) operation(name string) *OperationMetrics {
	om, ok := m.operations[name]
	if !ok {
		om = &OperationMetrics{}
		m.operations[name] = om
	}
	return om
}

// Operations returns the recorded operation names, sorted.
func (m *Metrics) Operations() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.operations))
	for name := range m.operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset clears everything. Used by tests.
func (m *Metrics) Reset() {
	m.requestTotal.Store(0)
	m.requestFailed.Store(0)
	m.datesFound.Store(0)

	m.mu.Lock()
	m.operations = make(map[string]*OperationMetrics)
	m.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the counters.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	var all []time.Duration
	ops := make(map[string]*OperationSnapshot, len(m.operations))
	for name, om := range m.operations {
		samples := slices.Clone(om.durations)
		slices.Sort(samples)
		all = append(all, samples...)

		count := om.count.Load()
		snap := &OperationSnapshot{
			Count:        count,
			ErrorCount:   om.errorCount.Load(),
			P50LatencyMs: percentile(samples, 50).Milliseconds(),
			P95LatencyMs: percentile(samples, 95).Milliseconds(),
		}
		if count > 0 {
			snap.AvgLatencyMs = om.totalDuration.Load() / count
		}
		ops[name] = snap
	}
	slices.Sort(all)

	return &MetricsSnapshot{
		RequestTotal:  m.requestTotal.Load(),
		RequestFailed: m.requestFailed.Load(),
		DatesFound:    m.datesFound.Load(),
		P50LatencyMs:  percentile(all, 50).Milliseconds(),
		P95LatencyMs:  percentile(all, 95).Milliseconds(),
		Operations:    ops,
	}
}

// percentile uses the nearest-rank method on sorted samples.
func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	rank := (p*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	RequestTotal  int64                         `json:"request_total"`
	RequestFailed int64                         `json:"request_failed"`
	DatesFound    int64                         `json:"dates_found"`
	P50LatencyMs  int64                         `json:"p50_latency_ms"`
	P95LatencyMs  int64                         `json:"p95_latency_ms"`
	Operations    map[string]*OperationSnapshot `json:"operations"`
}

// OperationSnapshot represents metrics for one operation.
type OperationSnapshot struct {
	Count        int64 `json:"count"`
	ErrorCount   int64 `json:"error_count"`
	AvgLatencyMs int64 `json:"avg_latency_ms"`
	P50LatencyMs int64 `json:"p50_latency_ms"`
	P95LatencyMs int64 `json:"p95_latency_ms"`
}

// SuccessRate returns the success rate as a percentage (0-100).
func (s *MetricsSnapshot) SuccessRate() float64 {
	if s.RequestTotal == 0 {
		return 100.0
	}
	return float64(s.RequestTotal-s.RequestFailed) / float64(s.RequestTotal) * 100.0
}
