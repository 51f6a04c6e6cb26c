package observability

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsIncrement(t *testing.T) {
	m := NewMetrics()

	m.Increment(CounterAuthSuccesses)
	m.Increment(CounterAuthSuccesses)
	m.Increment(CounterAuthzDenials)

	assert.Equal(t, int64(2), m.Counter(CounterAuthSuccesses))
	assert.Equal(t, int64(1), m.Counter(CounterAuthzDenials))
	assert.Equal(t, int64(0), m.Counter(CounterAuthFailures))
}

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.Increment(CounterAuthFailures)
	m.RecordRequest("/api/posts", "GET", 200, 3*time.Millisecond)

	snap := m.Snapshot()
	assert.Equal(t, int64(1), snap[CounterAuthFailures])
	assert.Equal(t, int64(1), snap[CounterAPIRequests])
	assert.Contains(t, snap, "uptime_seconds")
}

func TestMetricsNilReceiver(t *testing.T) {
	var m *Metrics
	m.Increment(CounterAuthSuccesses)
	m.RecordRequest("/", "GET", 200, 0)
	m.RecordError("/", "GET", "X")
	assert.Equal(t, int64(0), m.Counter(CounterAuthSuccesses))
	assert.Empty(t, m.Snapshot())
}

func TestMetricsConcurrentAccess(t *testing.T) {
	m := NewMetrics()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Increment(CounterAPIRequests)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(50), m.Counter(CounterAPIRequests))
}
