// typedmap.go: type-safe generic facade over Map
//
// TypedMap is a convenience layer boxing arbitrary Go values behind the
// core Map's opaque unsafe.Pointer values so callers never touch unsafe
// themselves.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package xanthos

import "unsafe"

// TypedMap provides a type-safe interface to a Map using Go generics. V can
// be any type; each stored value is boxed onto the heap as a *V under the
// hood.
//
// Example:
//
//	m := xanthos.NewTypedMap[User](xanthos.DefaultConfig())
//	if err := m.Insert(hashOf("user:123"), User{Name: "Ada"}); err != nil {
//	    // ErrCodeKeyExists if already present
//	}
//	if user, found, err := m.Lookup(hashOf("user:123")); found {
//	    fmt.Printf("%+v\n", user)
//	}
type TypedMap[V any] struct {
	inner *Map
}

// NewTypedMap creates a type-safe Map for values of type V.
func NewTypedMap[V any](cfg Config) *TypedMap[V] {
	return &TypedMap[V]{inner: NewMap(cfg)}
}

// Raw returns the untyped Map this TypedMap wraps, for callers that need
// Enumerate, Count, or LookupAny directly.
func (m *TypedMap[V]) Raw() *Map {
	return m.inner
}

// Insert adds (hash, value) if hash is not already present.
func (m *TypedMap[V]) Insert(hash int64, value V) error {
	boxed := box(value)
	return m.inner.Insert(hash, boxed)
}

// Put upserts (hash, value).
func (m *TypedMap[V]) Put(hash int64, value V) error {
	boxed := box(value)
	return m.inner.Put(hash, boxed)
}

// Lookup returns the value stored for hash, found reports whether one
// exists.
func (m *TypedMap[V]) Lookup(hash int64) (value V, found bool, err error) {
	p, err := m.inner.Lookup(hash)
	if err != nil {
		var zero V
		return zero, false, err
	}
	if p == NoPointer {
		var zero V
		return zero, false, nil
	}
	return *(*V)(p), true, nil
}

// Remove deletes whatever value currently sits at hash. Since the boxed
// pointer TypedMap hands to Insert/Put is never reused by the caller, a
// value-conditioned compare-and-remove is meaningless here; Remove instead
// snapshots the current value with Lookup and compare-and-removes that
// exact pointer, retrying if a concurrent writer changed it first.
func (m *TypedMap[V]) Remove(hash int64) (value V, err error) {
	for {
		p, err := m.inner.Lookup(hash)
		if err != nil {
			var zero V
			return zero, err
		}
		if p == NoPointer {
			var zero V
			return zero, NewErrKeyNotFound(hash)
		}

		if err := m.inner.Remove(hash, p); err != nil {
			if IsNotFound(err) {
				continue // value changed concurrently, retry against the new one
			}
			var zero V
			return zero, err
		}
		return *(*V)(p), nil
	}
}

// GetOrInsert returns the value already stored for hash, or calls compute
// and inserts its result if hash is absent.
func (m *TypedMap[V]) GetOrInsert(hash int64, compute func() (V, error)) (value V, err error) {
	p, err := m.inner.GetOrInsert(hash, func() (unsafe.Pointer, error) {
		v, err := compute()
		if err != nil {
			var zero unsafe.Pointer
			return zero, err
		}
		return box(v), nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return *(*V)(p), nil
}

// Count returns a best-effort live entry count.
func (m *TypedMap[V]) Count() (int, error) {
	return m.inner.Count()
}

// Done releases the TypedMap's underlying tables.
func (m *TypedMap[V]) Done() {
	m.inner.Done()
}

// box heap-allocates a copy of value and returns an unsafe.Pointer to it,
// suitable for storing in the untyped core Map.
func box[V any](value V) unsafe.Pointer {
	v := new(V)
	*v = value
	return unsafe.Pointer(v)
}
