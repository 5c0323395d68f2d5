package shadercache

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordAdd is called after each bundle insertion.
	RecordAdd(duration time.Duration, err error)

	// RecordLookup is called after each TryFind. hit reports whether a
	// bundle was returned.
	RecordLookup(hit bool, duration time.Duration)

	// RecordDuplicate is called when Add replaces a bundle with the same key.
	RecordDuplicate()

	// RecordCompile is called after each compile performed by a Resolver.
	RecordCompile(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAdd(time.Duration, error)     {}
func (NoopMetricsCollector) RecordLookup(bool, time.Duration)   {}
func (NoopMetricsCollector) RecordDuplicate()                   {}
func (NoopMetricsCollector) RecordCompile(time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AddCount          atomic.Int64
	AddErrors         atomic.Int64
	LookupCount       atomic.Int64
	LookupHits        atomic.Int64
	LookupTotalNanos  atomic.Int64
	DuplicateCount    atomic.Int64
	CompileCount      atomic.Int64
	CompileErrors     atomic.Int64
	CompileTotalNanos atomic.Int64
}

// RecordAdd implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAdd(_ time.Duration, err error) {
	b.AddCount.Add(1)
	if err != nil {
		b.AddErrors.Add(1)
	}
}

// RecordLookup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLookup(hit bool, duration time.Duration) {
	b.LookupCount.Add(1)
	b.LookupTotalNanos.Add(duration.Nanoseconds())
	if hit {
		b.LookupHits.Add(1)
	}
}

// RecordDuplicate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDuplicate() {
	b.DuplicateCount.Add(1)
}

// RecordCompile implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCompile(duration time.Duration, err error) {
	b.CompileCount.Add(1)
	b.CompileTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.CompileErrors.Add(1)
	}
}

// HitRate returns the fraction of lookups that found a bundle.
func (b *BasicMetricsCollector) HitRate() float64 {
	n := b.LookupCount.Load()
	if n == 0 {
		return 0
	}
	return float64(b.LookupHits.Load()) / float64(n)
}

// AverageLookup returns the mean TryFind latency.
func (b *BasicMetricsCollector) AverageLookup() time.Duration {
	n := b.LookupCount.Load()
	if n == 0 {
		return 0
	}
	return time.Duration(b.LookupTotalNanos.Load() / n)
}
