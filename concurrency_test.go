// concurrency_test.go: concurrent stress tests for Map and PointerArray
//
// These tests are written to be run with -race; they exercise the
// migration path under contention.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package xanthos

import (
	"sync"
	"sync/atomic"
	"testing"
	"unsafe"
)

// TestMap_ConcurrentInsertDuringGrowth inserts distinct hashes from many
// goroutines into a map seeded with a tiny capacity, forcing repeated
// migrations while writers race ahead.
func TestMap_ConcurrentInsertDuringGrowth(t *testing.T) {
	m := NewMap(Config{CapacityHint: 4})
	defer m.Done()

	const goroutines = 16
	const perGoroutine = 200

	var wg sync.WaitGroup
	var failures int64
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				h := int64(g*perGoroutine + i + 1) // never NoHash
				if err := m.Insert(h, ptr(i)); err != nil {
					atomic.AddInt64(&failures, 1)
				}
			}
		}(g)
	}
	wg.Wait()

	if failures != 0 {
		t.Fatalf("%d inserts failed under concurrent growth", failures)
	}

	for g := 0; g < goroutines; g++ {
		for i := 0; i < perGoroutine; i++ {
			h := int64(g*perGoroutine + i + 1)
			v, err := m.Lookup(h)
			if err != nil {
				t.Fatalf("Lookup(%d): %v", h, err)
			}
			if v == NoPointer {
				t.Fatalf("Lookup(%d) missing after concurrent growth", h)
			}
		}
	}
}

// TestMap_ConcurrentPutOnHotKey hammers a single hash from many goroutines
// with Put, then verifies that the value Lookup returns once they finish is
// one that some writer actually stored (never a torn value).
func TestMap_ConcurrentPutOnHotKey(t *testing.T) {
	m := NewMap(DefaultConfig())
	defer m.Done()

	const hotHash = int64(1)
	const goroutines = 10
	const iterations = 200

	values := make([]unsafePointerBox, goroutines)
	for g := range values {
		values[g] = unsafePointerBox{ptr(g)}
	}

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				m.Put(hotHash, values[g].p)
			}
		}(g)
	}
	wg.Wait()

	got, err := m.Lookup(hotHash)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	found := false
	for _, v := range values {
		if v.p == got {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("final value %v was not written by any writer", got)
	}
}

// TestMap_EnumerateDuringConcurrentWrites verifies that an Enumerator
// either completes or reports EnumCanceled, never panics or returns a
// corrupted pair, while writers race ahead of it.
func TestMap_EnumerateDuringConcurrentWrites(t *testing.T) {
	m := NewMap(Config{CapacityHint: 8})
	defer m.Done()

	for i := int64(1); i <= 50; i++ {
		m.Insert(i, ptr(int(i)))
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := int64(51); i <= 500; i++ {
			m.Insert(i, ptr(int(i)))
		}
	}()

	for i := 0; i < 20; i++ {
		e, err := m.Enumerate()
		if err != nil {
			t.Fatalf("Enumerate: %v", err)
		}
		for {
			_, v, status := e.Next()
			if status == EnumDone || status == EnumCanceled {
				break
			}
			if v == NoPointer {
				t.Fatalf("EnumOK entry with NoPointer value")
			}
		}
		e.Done()
	}
	<-done
}

// TestPointerArray_ConcurrentAppend appends from many goroutines and
// checks every claimed index ends up readable with the value its owner
// wrote, with no two Appends ever claiming the same index.
func TestPointerArray_ConcurrentAppend(t *testing.T) {
	pa := NewPointerArray(Config{CapacityHint: 4})
	defer pa.Done()

	const goroutines = 16
	const perGoroutine = 200
	total := goroutines * perGoroutine

	seen := make([]int32, total)
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				idx, err := pa.Append(ptr(g*perGoroutine + i))
				if err != nil {
					t.Errorf("Append: %v", err)
					return
				}
				if idx < 0 || idx >= total {
					t.Errorf("Append returned out-of-range index %d", idx)
					return
				}
				if !atomic.CompareAndSwapInt32(&seen[idx], 0, 1) {
					t.Errorf("index %d claimed twice", idx)
				}
			}
		}(g)
	}
	wg.Wait()

	if got := pa.Count(); got != total {
		t.Fatalf("Count() = %d, want %d", got, total)
	}
	for i, v := range seen {
		if v != 1 {
			t.Fatalf("index %d never claimed", i)
		}
	}
}

type unsafePointerBox struct {
	p unsafe.Pointer
}
