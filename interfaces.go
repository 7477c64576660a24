// interfaces.go: public interfaces for xanthos
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package xanthos

// Logger defines a minimal logging interface with zero overhead.
// Implementations should use structured logging and be allocation-free.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs.
	Debug(msg string, keyvals ...interface{})

	// Info logs an info message with optional key-value pairs.
	Info(msg string, keyvals ...interface{})

	// Warn logs a warning message with optional key-value pairs.
	Warn(msg string, keyvals ...interface{})

	// Error logs an error message with optional key-value pairs.
	Error(msg string, keyvals ...interface{})
}

// NoOpLogger is a logger that does nothing. Used as default to avoid nil checks.
type NoOpLogger struct{}

func (NoOpLogger) Debug(msg string, keyvals ...interface{}) {}
func (NoOpLogger) Info(msg string, keyvals ...interface{})  {}
func (NoOpLogger) Warn(msg string, keyvals ...interface{})  {}
func (NoOpLogger) Error(msg string, keyvals ...interface{}) {}

// TimeProvider provides current time with caching for performance.
// This interface allows injecting optimized time implementations.
type TimeProvider interface {
	// Now returns the current time in nanoseconds since epoch.
	// This method must be very fast and allocation-free.
	Now() int64
}

// MetricsCollector receives operation outcomes and latencies from a Map.
// PointerArray does not report to it. Implementations must be safe for concurrent use and should
// be cheap: the collector runs inline with the calling goroutine.
type MetricsCollector interface {
	// RecordLookup records a Lookup call; hit reports whether a live value
	// was found.
	RecordLookup(latencyNanos int64, hit bool)

	// RecordInsert records an Insert call and its outcome.
	RecordInsert(latencyNanos int64, ok bool)

	// RecordPut records a Put call.
	RecordPut(latencyNanos int64)

	// RecordRemove records a Remove call and its outcome.
	RecordRemove(latencyNanos int64, ok bool)

	// RecordMigration records one completed table migration, from the old
	// capacity to the new one.
	RecordMigration(oldCapacity, newCapacity int)

	// RecordEnumeration records one completed (non-canceled) enumeration
	// pass and the number of entries visited.
	RecordEnumeration(visited int)
}

// NoOpMetricsCollector discards every recorded event. Used as the default
// so the hot path never pays for metrics collection unless a caller opts in.
type NoOpMetricsCollector struct{}

func (NoOpMetricsCollector) RecordLookup(latencyNanos int64, hit bool)     {}
func (NoOpMetricsCollector) RecordInsert(latencyNanos int64, ok bool)      {}
func (NoOpMetricsCollector) RecordPut(latencyNanos int64)                  {}
func (NoOpMetricsCollector) RecordRemove(latencyNanos int64, ok bool)      {}
func (NoOpMetricsCollector) RecordMigration(oldCapacity, newCapacity int) {}
func (NoOpMetricsCollector) RecordEnumeration(visited int)                {}

// Allocator creates and releases backing tables. The default allocator used
// when a Config does not supply one simply wraps make()/the garbage
// collector; implementations are free to pool table memory, as long as
// NewTable never returns a table smaller than the requested capacity and
// Free is safe to call exactly once per table returned by NewTable.
type Allocator interface {
	// NewTable returns a freshly zeroed table with room for at least
	// capacity entries. capacity is always a power of two >= 4.
	NewTable(capacity int) *table

	// Free releases a table that the Reclaimer has determined is no
	// longer reachable by any registered participant.
	Free(t *table)
}

// defaultAllocator allocates tables on the Go heap and relies on the
// garbage collector to reclaim them once Free drops the last reference.
type defaultAllocator struct{}

func (defaultAllocator) NewTable(capacity int) *table {
	return newTable(capacity)
}

func (defaultAllocator) Free(t *table) {
	// Nothing to do: dropping the last reference lets the GC collect it.
	// Free exists so a pooling Allocator has a symmetric hook.
}
