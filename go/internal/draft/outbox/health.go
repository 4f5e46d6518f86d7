package outbox

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ConnStatus reports whether a downstream connection is up. *nats.Conn satisfies it.
type ConnStatus interface {
	IsConnected() bool
}

type HealthStatus struct {
	Healthy       bool                  `json:"healthy"`
	Relay         RelayStats            `json:"relay"`
	NATSConnected *bool                 `json:"nats_connected,omitempty"`
	Events        map[string]TypeCounts `json:"events,omitempty"`
	Errors        []string              `json:"errors"`
}

// HealthChecker reports relay and bus health
type HealthChecker struct {
	relay          *Relay
	conn           ConnStatus // nil when no bus is configured
	metrics        *InMemoryMetrics
	pendingWarning int
}

func NewHealthChecker(relay *Relay, conn ConnStatus, metrics *InMemoryMetrics) *HealthChecker {
	return &HealthChecker{
		relay:          relay,
		conn:           conn,
		metrics:        metrics,
		pendingWarning: 1000,
	}
}

func (h *HealthChecker) Check() HealthStatus {
	status := HealthStatus{
		Healthy: true,
		Relay:   h.relay.Stats(),
		Errors:  []string{},
	}

	if !status.Relay.Running {
		status.Healthy = false
		status.Errors = append(status.Errors, "relay not running")
	}
	if h.conn != nil {
		connected := h.conn.IsConnected()
		status.NATSConnected = &connected
		if !connected {
			status.Healthy = false
			status.Errors = append(status.Errors, "NATS disconnected")
		}
	}
	if status.Relay.Pending > h.pendingWarning {
		status.Errors = append(status.Errors, fmt.Sprintf("high pending event count: %d", status.Relay.Pending))
	}
	if status.Relay.Dropped > 0 {
		status.Errors = append(status.Errors, fmt.Sprintf("%d events dropped", status.Relay.Dropped))
	}
	if h.metrics != nil {
		status.Events = h.metrics.Snapshot()
	}
	return status
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := h.Check()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Checked-At", time.Now().UTC().Format(time.RFC3339))
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(status)
}
