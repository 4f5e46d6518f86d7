package outbox

import (
	"sync"
	"time"
)

// MetricsCollector defines the interface for collecting outbox metrics
type MetricsCollector interface {
	RecordEventProcessed(eventType string, success bool, duration time.Duration)
	RecordPublishAttempt(eventType string, attempt int, success bool)
	RecordDropped(eventType string)
}

// NoOpMetricsCollector is a no-op implementation for when metrics aren't needed
type NoOpMetricsCollector struct{}

func (n *NoOpMetricsCollector) RecordEventProcessed(eventType string, success bool, duration time.Duration) {
}

func (n *NoOpMetricsCollector) RecordPublishAttempt(eventType string, attempt int, success bool) {
}

func (n *NoOpMetricsCollector) RecordDropped(eventType string) {
}

// TypeCounts holds per event type counters
type TypeCounts struct {
	Published int           `json:"published"`
	Failed    int           `json:"failed"`
	Retries   int           `json:"retries"`
	Dropped   int           `json:"dropped"`
	TotalTime time.Duration `json:"total_time_ns"`
}

// InMemoryMetrics keeps per event type counters for the health endpoint
type InMemoryMetrics struct {
	mu     sync.Mutex
	counts map[string]*TypeCounts
}

func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{counts: make(map[string]*TypeCounts)}
}

func (m *InMemoryMetrics) entry(eventType string) *TypeCounts {
	c, ok := m.counts[eventType]
	if !ok {
		c = &TypeCounts{}
		m.counts[eventType] = c
	}
	return c
}

func (m *InMemoryMetrics) RecordEventProcessed(eventType string, success bool, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.entry(eventType)
	if success {
		c.Published++
	} else {
		c.Failed++
	}
	c.TotalTime += duration
}

func (m *InMemoryMetrics) RecordPublishAttempt(eventType string, attempt int, success bool) {
	if attempt <= 1 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entry(eventType).Retries++
}

func (m *InMemoryMetrics) RecordDropped(eventType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entry(eventType).Dropped++
}

// Snapshot returns a copy of the counters
func (m *InMemoryMetrics) Snapshot() map[string]TypeCounts {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]TypeCounts, len(m.counts))
	for k, v := range m.counts {
		out[k] = *v
	}
	return out
}
