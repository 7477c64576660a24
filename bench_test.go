// bench_test.go: hot-path benchmarks for Map and PointerArray
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package xanthos

import (
	"testing"
	"unsafe"
)

func BenchmarkMap_Lookup(b *testing.B) {
	m := NewMap(DefaultConfig())
	defer m.Done()

	values := make([]int, 4096)
	for i := range values {
		if err := m.Insert(int64(i+1), unsafe.Pointer(&values[i])); err != nil {
			b.Fatalf("Insert: %v", err)
		}
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := m.Lookup(int64(i%len(values) + 1)); err != nil {
			b.Fatalf("Lookup: %v", err)
		}
	}
}

func BenchmarkMap_Insert(b *testing.B) {
	m := NewMap(Config{CapacityHint: 1 << 20})
	defer m.Done()

	values := make([]int, b.N)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := m.Insert(int64(i+1), unsafe.Pointer(&values[i])); err != nil {
			b.Fatalf("Insert: %v", err)
		}
	}
}

func BenchmarkMap_Put(b *testing.B) {
	m := NewMap(DefaultConfig())
	defer m.Done()

	var v int

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := m.Put(1, unsafe.Pointer(&v)); err != nil {
			b.Fatalf("Put: %v", err)
		}
	}
}

func BenchmarkMap_GetOrInsert(b *testing.B) {
	m := NewMap(DefaultConfig())
	defer m.Done()

	var v int
	compute := func() (unsafe.Pointer, error) { return unsafe.Pointer(&v), nil }

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := m.GetOrInsert(1, compute); err != nil {
			b.Fatalf("GetOrInsert: %v", err)
		}
	}
}

func BenchmarkPointerArray_Append(b *testing.B) {
	pa := NewPointerArray(Config{CapacityHint: 1 << 20})
	defer pa.Done()

	values := make([]int, b.N)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := pa.Append(unsafe.Pointer(&values[i])); err != nil {
			b.Fatalf("Append: %v", err)
		}
	}
}
