// hotreload.go: dynamic configuration reload using Argus
//
// HotConfig watches a configuration file and applies changes to the three
// parameters that are safe to reload without reconstructing a Map:
// MigrationLogThreshold, MetricsSampleRate, and how often the deferred-free
// service is nudged to sweep retired tables. CapacityHint, the Allocator,
// and the Logger/MetricsCollector implementations are fixed at NewMap time
// and cannot be hot-reloaded.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package xanthos

import (
	"sync"
	"time"

	"github.com/agilira/argus"
)

// HotParams is the subset of Map configuration that HotConfig can change
// while the Map is running.
type HotParams struct {
	MigrationLogThreshold  int
	MetricsSampleRate      float64
	ReclaimAdvanceInterval time.Duration
}

// HotConfig provides dynamic configuration reload for a running Map using
// Argus to watch a configuration file.
type HotConfig struct {
	m       *Map
	watcher *argus.Watcher

	mu     sync.RWMutex
	params HotParams

	advanceStop chan struct{}
	advanceWG   sync.WaitGroup

	// OnReload is called after configuration is successfully reloaded.
	// Optional; must be fast and non-blocking.
	OnReload func(old, new HotParams)
}

// HotConfigOptions configures hot reload behavior.
type HotConfigOptions struct {
	// ConfigPath is the path to the configuration file to watch. Supports
	// JSON, YAML, TOML, HCL, INI, and Properties formats, per Argus.
	ConfigPath string

	// PollInterval is how often to check the configuration file for
	// changes. Default: 1 second. Minimum: 100ms.
	PollInterval time.Duration

	// OnReload is called after configuration is successfully reloaded.
	OnReload func(old, new HotParams)

	// Logger for hot reload diagnostics. If nil, the Map's own logger is
	// reused when it was built through NewHotConfig.
	Logger Logger

	// Defaults seeds the parameters GetParams reports until the first
	// reload. A reload keeps the previously active value of any field the
	// config file omits or sets to an invalid value.
	Defaults HotParams
}

// NewHotConfig creates a hot-reloadable configuration for m and starts
// watching opts.ConfigPath immediately.
//
// Supported configuration keys (nested under an "xanthos" section, or at
// the document root):
//   - migration_log_threshold (int)
//   - metrics_sample_rate (float, 0.0-1.0)
//   - reclaim_advance_interval (duration string, e.g. "500ms")
func NewHotConfig(m *Map, opts HotConfigOptions) (*HotConfig, error) {
	if opts.ConfigPath == "" {
		return nil, NewErrInvalidConfig("config_path is required")
	}

	if opts.PollInterval == 0 {
		opts.PollInterval = 1 * time.Second
	} else if opts.PollInterval < 100*time.Millisecond {
		opts.PollInterval = 100 * time.Millisecond
	}

	logger := opts.Logger
	if logger == nil {
		logger = m.logger
	}

	defaults := opts.Defaults
	if defaults.ReclaimAdvanceInterval <= 0 {
		defaults.ReclaimAdvanceInterval = time.Second
	}
	if defaults.MetricsSampleRate <= 0 {
		defaults.MetricsSampleRate = m.loadSampleRate()
	}

	hc := &HotConfig{
		m:           m,
		OnReload:    opts.OnReload,
		params:      defaults,
		advanceStop: make(chan struct{}),
	}

	argusConfig := argus.Config{PollInterval: opts.PollInterval}
	watcher, err := argus.UniversalConfigWatcherWithConfig(opts.ConfigPath, hc.handleConfigChange, argusConfig)
	if err != nil {
		return nil, err
	}
	hc.watcher = watcher

	hc.startAdvanceLoop(logger)

	return hc, nil
}

// Start begins watching the configuration file, if not already running.
func (hc *HotConfig) Start() error {
	if hc.watcher.IsRunning() {
		return nil
	}
	return hc.watcher.Start()
}

// Stop stops watching the configuration file and the reclaim-advance loop.
func (hc *HotConfig) Stop() error {
	close(hc.advanceStop)
	hc.advanceWG.Wait()
	return hc.watcher.Stop()
}

// GetParams returns the currently active hot-reloadable parameters.
func (hc *HotConfig) GetParams() HotParams {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.params
}

// startAdvanceLoop periodically nudges the Map's Reclaimer to sweep
// retirements, at the interval named by the current HotParams. It is the
// one piece of ambient upkeep HotConfig drives beyond reacting to file
// changes.
func (hc *HotConfig) startAdvanceLoop(logger Logger) {
	hc.advanceWG.Add(1)
	go func() {
		defer hc.advanceWG.Done()
		for {
			interval := hc.GetParams().ReclaimAdvanceInterval
			if interval <= 0 {
				interval = time.Second
			}
			select {
			case <-time.After(interval):
				hc.m.reclaimer.TryAdvance()
			case <-hc.advanceStop:
				logger.Debug("xanthos: reclaim advance loop stopped")
				return
			}
		}
	}()
}

// handleConfigChange is invoked by Argus whenever the watched file changes.
func (hc *HotConfig) handleConfigChange(data map[string]interface{}) {
	hc.mu.Lock()
	old := hc.params
	next := hc.parseParams(data, old)
	hc.params = next
	hc.mu.Unlock()

	hc.m.storeLogThreshold(int64(next.MigrationLogThreshold))
	hc.m.storeSampleRate(next.MetricsSampleRate)

	if hc.OnReload != nil {
		hc.OnReload(old, next)
	}
}

// parseParams extracts HotParams from Argus config data, falling back to
// fallback for any key that is absent or malformed.
func (hc *HotConfig) parseParams(data map[string]interface{}, fallback HotParams) HotParams {
	section, ok := data["xanthos"].(map[string]interface{})
	if !ok {
		section = data
	}

	result := fallback

	if v, ok := parsePositiveInt(section["migration_log_threshold"]); ok {
		result.MigrationLogThreshold = v
	}
	if v, ok := parseFloatInRange(section["metrics_sample_rate"], 0, 1); ok {
		result.MetricsSampleRate = v
	}
	if v, ok := parseDuration(section["reclaim_advance_interval"]); ok {
		result.ReclaimAdvanceInterval = v
	}

	return result
}

// parsePositiveInt extracts a positive integer from interface{}, accepting
// both int and float64 (JSON/YAML decode numbers as float64).
func parsePositiveInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		if v > 0 {
			return v, true
		}
	case float64:
		if v > 0 {
			return int(v), true
		}
	}
	return 0, false
}

// parseFloatInRange extracts a float64 within (min, max], exclusive of min.
func parseFloatInRange(value interface{}, min, max float64) (float64, bool) {
	v, ok := value.(float64)
	if !ok || v <= min || v > max {
		return 0, false
	}
	return v, true
}

// parseDuration extracts a time.Duration from a duration string.
func parseDuration(value interface{}) (time.Duration, bool) {
	str, ok := value.(string)
	if !ok {
		return 0, false
	}
	d, err := time.ParseDuration(str)
	if err != nil {
		return 0, false
	}
	return d, true
}
