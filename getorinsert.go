// getorinsert.go: GetOrInsert with singleflight deduplication
//
// GetOrInsert adapts the cache-aside singleflight pattern to the hash map's
// add-if-absent semantics: concurrent callers racing to populate the same
// hash share a single compute() execution instead of each doing their own
// work and fighting over Insert.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package xanthos

import (
	"sync"
	"sync/atomic"
	"unsafe"
)

// inflightInsert tracks one in-progress compute() call for a given hash.
// Waiters block on wg and then read the stored result, so only the
// goroutine that won the LoadOrStore ever calls compute.
type inflightInsert struct {
	wg    sync.WaitGroup
	value atomic.Value // stores *insertResult
}

type insertResult struct {
	value unsafe.Pointer
	err   error
}

// GetOrInsert returns the value already stored for hash, or calls compute
// and inserts its result if hash is absent. If multiple goroutines call
// GetOrInsert for the same missing hash concurrently, only one compute
// call runs; the rest observe its result.
//
// If compute returns an error, nothing is inserted and that error is
// returned to every waiter of this round. If another goroutine wins the
// race to Insert the computed value first (ErrCodeKeyExists), GetOrInsert
// transparently falls back to Lookup.
func (m *Map) GetOrInsert(hash int64, compute func() (unsafe.Pointer, error)) (unsafe.Pointer, error) {
	if err := validateHash(hash); err != nil {
		return NoPointer, err
	}

	if v, err := m.Lookup(hash); err != nil {
		return NoPointer, err
	} else if v != NoPointer {
		return v, nil
	}

	if compute == nil {
		return NoPointer, NewErrInvalidArgument("compute", "compute function must not be nil")
	}

	newFlight := &inflightInsert{}
	newFlight.wg.Add(1)

	actual, loaded := m.inflight.LoadOrStore(hash, newFlight)
	flight := actual.(*inflightInsert)

	if loaded {
		flight.wg.Wait()
		res, _ := flight.value.Load().(*insertResult)
		if res != nil {
			return res.value, res.err
		}
		return NoPointer, NewErrInternal("GetOrInsert", nil)
	}

	defer func() {
		flight.wg.Done()
		m.inflight.Delete(hash)
	}()

	value, err := compute()
	if err != nil {
		flight.value.Store(&insertResult{err: err})
		return NoPointer, err
	}
	if err := validateValue(value); err != nil {
		flight.value.Store(&insertResult{err: err})
		return NoPointer, err
	}

	if err := m.Insert(hash, value); err != nil {
		if IsExists(err) {
			existing, lookupErr := m.Lookup(hash)
			if lookupErr != nil {
				flight.value.Store(&insertResult{err: lookupErr})
				return NoPointer, lookupErr
			}
			flight.value.Store(&insertResult{value: existing})
			return existing, nil
		}
		flight.value.Store(&insertResult{err: err})
		return NoPointer, err
	}

	flight.value.Store(&insertResult{value: value})
	return value, nil
}
