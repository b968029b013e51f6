package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	scansCompleted  atomic.Uint64
	checksRun       atomic.Uint64
	findingsEmitted atomic.Uint64
	checkErrors     atomic.Uint64

	// Scan latency tracking
	scanLatencySumNs atomic.Int64
	scanLatencyCount atomic.Uint64

	// Gauges
	brokerConnections atomic.Int32
}

// RecordScan records one completed full scan with its latency.
func (m *Metrics) RecordScan(latencyNs int64) {
	m.scansCompleted.Add(1)
	m.scanLatencySumNs.Add(latencyNs)
	m.scanLatencyCount.Add(1)
}

// RecordCheck records one completed check and its finding count.
func (m *Metrics) RecordCheck(findings int) {
	m.checksRun.Add(1)
	m.findingsEmitted.Add(uint64(findings))
}

// RecordCheckError records a check that failed to run.
func (m *Metrics) RecordCheckError() {
	m.checkErrors.Add(1)
}

// IncrementBrokerConnections increments the broker connection gauge.
func (m *Metrics) IncrementBrokerConnections() {
	m.brokerConnections.Add(1)
}

// DecrementBrokerConnections decrements the broker connection gauge.
func (m *Metrics) DecrementBrokerConnections() {
	m.brokerConnections.Add(-1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	ScansCompleted    uint64
	ChecksRun         uint64
	FindingsEmitted   uint64
	CheckErrors       uint64
	AvgScanLatencyNs  int64
	BrokerConnections int32
	Timestamp         time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.scanLatencyCount.Load()
	if count > 0 {
		avgLatency = m.scanLatencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		ScansCompleted:    m.scansCompleted.Load(),
		ChecksRun:         m.checksRun.Load(),
		FindingsEmitted:   m.findingsEmitted.Load(),
		CheckErrors:       m.checkErrors.Load(),
		AvgScanLatencyNs:  avgLatency,
		BrokerConnections: m.brokerConnections.Load(),
		Timestamp:         time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.scansCompleted.Store(0)
	m.checksRun.Store(0)
	m.findingsEmitted.Store(0)
	m.checkErrors.Store(0)
	m.scanLatencySumNs.Store(0)
	m.scanLatencyCount.Store(0)
	m.brokerConnections.Store(0)
}
