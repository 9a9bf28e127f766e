package teleport

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/dm-vev/homes/server/teleport"

// Metrics counts teleport outcomes. Counters are kept in memory for status
// output and mirrored to OpenTelemetry instruments on the global meter
// provider, which discards them unless an SDK is installed.
type Metrics struct {
	mu sync.Mutex

	requested uint64
	completed uint64
	failed    uint64
	cancelled map[Reason]uint64

	requestedCounter metric.Int64Counter
	completedCounter metric.Int64Counter
	failedCounter    metric.Int64Counter
	cancelledCounter metric.Int64Counter
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Requested uint64
	Completed uint64
	Failed    uint64
	Cancelled map[Reason]uint64
}

// NewMetrics creates a Metrics registry using the global OpenTelemetry meter.
func NewMetrics() *Metrics {
	return NewMetricsWithMeter(otel.Meter(instrumentationName))
}

// NewMetricsWithMeter creates a Metrics registry that records to meter.
func NewMetricsWithMeter(meter metric.Meter) *Metrics {
	m := &Metrics{cancelled: make(map[Reason]uint64)}
	m.requestedCounter = counter(meter, "teleport.requests", "Teleports requested")
	m.completedCounter = counter(meter, "teleport.completed", "Teleports that moved the actor")
	m.failedCounter = counter(meter, "teleport.failed", "Teleports that could not move the actor")
	m.cancelledCounter = counter(meter, "teleport.cancelled", "Pending teleports cancelled before completion")
	return m
}

func counter(meter metric.Meter, name, description string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		c, _ = noop.NewMeterProvider().Meter(instrumentationName).Int64Counter(name)
	}
	return c
}

func (m *Metrics) incRequested() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.requested++
	m.mu.Unlock()
	m.requestedCounter.Add(context.Background(), 1)
}

func (m *Metrics) incCompleted() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.completed++
	m.mu.Unlock()
	m.completedCounter.Add(context.Background(), 1)
}

func (m *Metrics) incFailed() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.failed++
	m.mu.Unlock()
	m.failedCounter.Add(context.Background(), 1)
}

func (m *Metrics) incCancelled(reason Reason) {
	if m == nil {
		return
	}
	label := string(reason)
	if label == "" {
		label = "silent"
	}
	m.mu.Lock()
	m.cancelled[reason]++
	m.mu.Unlock()
	m.cancelledCounter.Add(context.Background(), 1, metric.WithAttributes(attribute.String("reason", label)))
}

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{Cancelled: map[Reason]uint64{}}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cancelled := make(map[Reason]uint64, len(m.cancelled))
	for r, n := range m.cancelled {
		cancelled[r] = n
	}
	return MetricsSnapshot{
		Requested: m.requested,
		Completed: m.completed,
		Failed:    m.failed,
		Cancelled: cancelled,
	}
}
