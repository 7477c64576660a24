// hotreload_test.go: unit tests for HotConfig
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package xanthos

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestHotConfig_ReloadsSampleRateAndThreshold(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "xanthos.json")
	initial := `{"xanthos": {"migration_log_threshold": 100, "metrics_sample_rate": 0.25}}`
	if err := os.WriteFile(path, []byte(initial), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	m := NewMap(DefaultConfig())
	defer m.Done()

	reloaded := make(chan HotParams, 4)
	hc, err := NewHotConfig(m, HotConfigOptions{
		ConfigPath:   path,
		PollInterval: 100 * time.Millisecond,
		OnReload: func(old, next HotParams) {
			reloaded <- next
		},
	})
	if err != nil {
		t.Fatalf("NewHotConfig: %v", err)
	}
	defer hc.Stop()

	select {
	case params := <-reloaded:
		if params.MigrationLogThreshold != 100 {
			t.Errorf("MigrationLogThreshold = %d, want 100", params.MigrationLogThreshold)
		}
		if params.MetricsSampleRate != 0.25 {
			t.Errorf("MetricsSampleRate = %v, want 0.25", params.MetricsSampleRate)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for initial reload")
	}

	if got := m.loadLogThreshold(); got != 100 {
		t.Errorf("Map.loadLogThreshold() = %d, want 100", got)
	}
	if got := m.loadSampleRate(); got != 0.25 {
		t.Errorf("Map.loadSampleRate() = %v, want 0.25", got)
	}
}
