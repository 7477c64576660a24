// pointerarray_test.go: unit tests for PointerArray
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package xanthos

import "testing"

func TestPointerArray_AppendGet(t *testing.T) {
	pa := NewPointerArray(DefaultConfig())
	defer pa.Done()

	v1, v2 := ptr(1), ptr(2)
	i1, err := pa.Append(v1)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	i2, err := pa.Append(v2)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if i2 != i1+1 {
		t.Fatalf("indices not sequential: %d, %d", i1, i2)
	}

	got, ok := pa.Get(i1)
	if !ok || got != v1 {
		t.Fatalf("Get(%d) = (%v, %v), want (%v, true)", i1, got, ok, v1)
	}
	got, ok = pa.Get(i2)
	if !ok || got != v2 {
		t.Fatalf("Get(%d) = (%v, %v), want (%v, true)", i2, got, ok, v2)
	}
}

func TestPointerArray_GetOutOfRange(t *testing.T) {
	pa := NewPointerArray(DefaultConfig())
	defer pa.Done()

	if _, ok := pa.Get(1000); ok {
		t.Fatalf("Get on out-of-range index should return ok=false")
	}
	if _, ok := pa.Get(-1); ok {
		t.Fatalf("Get(-1) should return ok=false")
	}
}

func TestPointerArray_RejectsReservedValue(t *testing.T) {
	pa := NewPointerArray(DefaultConfig())
	defer pa.Done()

	if _, err := pa.Append(NoPointer); !IsInvalid(err) {
		t.Fatalf("Append(NoPointer): err = %v, want invalid-argument", err)
	}
	if _, err := pa.Append(Redirect); !IsInvalid(err) {
		t.Fatalf("Append(Redirect): err = %v, want invalid-argument", err)
	}
}

func TestPointerArray_GrowsPastInitialCapacity(t *testing.T) {
	pa := NewPointerArray(Config{CapacityHint: 4})
	defer pa.Done()

	const n = 200
	indices := make([]int, n)
	for i := 0; i < n; i++ {
		idx, err := pa.Append(ptr(i))
		if err != nil {
			t.Fatalf("Append(%d): %v", i, err)
		}
		indices[i] = idx
	}
	for i := 0; i < n; i++ {
		got, ok := pa.Get(indices[i])
		if !ok {
			t.Fatalf("Get(%d) not found after growth", indices[i])
		}
		if *(*int)(got) != i {
			t.Fatalf("Get(%d) = %d, want %d", indices[i], *(*int)(got), i)
		}
	}
	if got := pa.Count(); got != n {
		t.Fatalf("Count() = %d, want %d", got, n)
	}
}
