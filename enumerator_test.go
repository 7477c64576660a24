// enumerator_test.go: unit tests for Enumerator
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package xanthos

import "testing"

func TestEnumerator_VisitsAllLiveEntries(t *testing.T) {
	m := NewMap(DefaultConfig())
	defer m.Done()

	want := map[int64]bool{}
	for i := int64(1); i <= 10; i++ {
		m.Insert(i, ptr(int(i)))
		want[i] = true
	}

	e, err := m.Enumerate()
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	defer e.Done()

	seen := map[int64]bool{}
	for {
		h, v, status := e.Next()
		if status == EnumDone {
			break
		}
		if status == EnumCanceled {
			t.Fatalf("enumeration unexpectedly canceled")
		}
		if v == NoPointer {
			t.Fatalf("EnumOK entry with NoPointer value")
		}
		seen[h] = true
	}

	if len(seen) != len(want) {
		t.Fatalf("visited %d entries, want %d", len(seen), len(want))
	}
	for h := range want {
		if !seen[h] {
			t.Errorf("hash %d not visited", h)
		}
	}
}

func TestEnumerator_SkipsTombstones(t *testing.T) {
	m := NewMap(DefaultConfig())
	defer m.Done()

	v := ptr(1)
	m.Insert(1, v)
	m.Insert(2, ptr(2))
	m.Remove(1, v)

	e, _ := m.Enumerate()
	defer e.Done()

	count := 0
	for {
		_, _, status := e.Next()
		if status == EnumDone {
			break
		}
		count++
	}
	if count != 1 {
		t.Fatalf("visited %d entries, want 1 (tombstone should be skipped)", count)
	}
}

func TestEnumerator_CanceledOnConcurrentMigration(t *testing.T) {
	m := NewMap(Config{CapacityHint: 4})
	defer m.Done()

	m.Insert(1, ptr(1))

	e, _ := m.Enumerate()
	defer e.Done()

	// Force growth past the snapshot the enumerator holds.
	for i := int64(2); i <= 50; i++ {
		m.Insert(i, ptr(int(i)))
	}

	canceled := false
	for {
		_, _, status := e.Next()
		if status == EnumDone {
			break
		}
		if status == EnumCanceled {
			canceled = true
			break
		}
	}
	if !canceled {
		t.Skip("migration did not race ahead of the enumerator's cursor in this run")
	}
}
