// config.go: configuration for xanthos
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package xanthos

import (
	"github.com/agilira/go-timecache"
)

// Config holds configuration parameters for a Map or PointerArray.
type Config struct {
	// CapacityHint is the initial table capacity. Rounded up to the next
	// power of two, with a floor of 4. Default: DefaultCapacityHint.
	CapacityHint int

	// Logger is used for migration and allocation-failure diagnostics.
	// If nil, NoOpLogger is used. Default: NoOpLogger.
	Logger Logger

	// TimeProvider provides current time for metrics latency sampling and
	// reclamation diagnostics. If nil, a default implementation backed by
	// go-timecache is used.
	TimeProvider TimeProvider

	// MetricsCollector is used for collecting operation metrics (latencies,
	// hit/miss rates, migration counts). If nil, NoOpMetricsCollector is
	// used (zero overhead). Default: NoOpMetricsCollector.
	MetricsCollector MetricsCollector

	// Allocator creates and releases backing tables. If nil, a default
	// heap-backed allocator is used.
	Allocator Allocator

	// MetricsSampleRate is the fraction (0.0-1.0) of operations that pay
	// the cost of a TimeProvider.Now() call for latency metrics. Ignored
	// when MetricsCollector is the default no-op collector. Default: 1.0.
	MetricsSampleRate float64

	// MigrationLogThreshold logs a Warn if a single cooperative copy
	// visits more than this many slots. 0 disables the check. Default: 0.
	MigrationLogThreshold int
}

// Validate checks configuration parameters and applies sensible defaults.
// Returns nil; this method never rejects input, it only normalizes it.
//
// This method is automatically called by NewMap and NewPointerArray, so
// callers typically don't need to invoke it manually.
func (c *Config) Validate() error {
	if c.CapacityHint <= 0 {
		c.CapacityHint = DefaultCapacityHint
	}

	if c.Logger == nil {
		c.Logger = NoOpLogger{}
	}

	if c.TimeProvider == nil {
		c.TimeProvider = &systemTimeProvider{}
	}

	if c.MetricsCollector == nil {
		c.MetricsCollector = NoOpMetricsCollector{}
	}

	if c.Allocator == nil {
		c.Allocator = defaultAllocator{}
	}

	if c.MetricsSampleRate <= 0 || c.MetricsSampleRate > 1 {
		c.MetricsSampleRate = 1.0
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		CapacityHint:      DefaultCapacityHint,
		Logger:            NoOpLogger{},
		TimeProvider:      &systemTimeProvider{},
		MetricsCollector:  NoOpMetricsCollector{},
		Allocator:         defaultAllocator{},
		MetricsSampleRate: 1.0,
	}
}

// systemTimeProvider is the default time provider using go-timecache.
// This provides fast time access compared to time.Now() with zero
// allocations.
type systemTimeProvider struct{}

func (t *systemTimeProvider) Now() int64 {
	return timecache.CachedTimeNano()
}
