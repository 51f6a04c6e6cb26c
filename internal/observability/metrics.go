package observability

import (
	"strconv"
	"sync"
	"time"
)

// Counter names tracked by the auth pipeline.
const (
	CounterAuthSuccesses       = "authentication_successes"
	CounterAuthFailures        = "authentication_failures"
	CounterAuthzGrants         = "authorization_successes"
	CounterAuthzDenials        = "authorization_denials"
	CounterAPIRequests         = "api_requests"
	CounterLoginThrottleBlocks = "login_throttle_blocks"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	startedAt    time.Time
	counters     map[string]int64
	requestCount map[string]int64
	errorCount   map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		startedAt:    time.Now(),
		counters:     make(map[string]int64),
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
	}
}

// Increment bumps a named counter.
func (m *Metrics) Increment(name string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name]++
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[CounterAPIRequests]++
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// Snapshot returns the named counters plus uptime for the metrics endpoint.
func (m *Metrics) Snapshot() map[string]any {
	if m == nil {
		return map[string]any{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]any, len(m.counters)+1)
	for name, value := range m.counters {
		out[name] = value
	}
	out["uptime_seconds"] = int64(time.Since(m.startedAt).Seconds())
	return out
}

// Counter returns the current value of a named counter.
func (m *Metrics) Counter(name string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[name]
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
