// pointerarray.go: lock-free concurrent append-only pointer array (component C6)
//
// PointerArray shares the Map's migration idea but needs none of its
// hashing: entries are appended in index order behind a monotonic count,
// and growth copies populated slots in order into a doubled table while
// installing Redirect behind it, exactly like Map's cooperativeCopy.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package xanthos

import (
	"sync/atomic"
	"unsafe"
)

// paSlot is one cell of a PointerArray's backing store. Unlike the hash
// map's slot, there is no hash field: position is the key.
type paSlot struct {
	value unsafe.Pointer
}

func (s *paSlot) load() unsafe.Pointer {
	return atomic.LoadPointer(&s.value)
}

func (s *paSlot) cas(old, new unsafe.Pointer) bool {
	return atomic.CompareAndSwapPointer(&s.value, old, new)
}

// paTable is a fixed-capacity backing array for a PointerArray.
type paTable struct {
	capacity int
	entries  []paSlot
}

func newPATable(capacity int) *paTable {
	if capacity < minCapacity {
		capacity = minCapacity
	}
	return &paTable{capacity: capacity, entries: make([]paSlot, capacity)}
}

// PointerArray is a lock-free, concurrent, append-only array of opaque
// pointer-sized values, growing by doubling when appends would overrun the
// current backing table.
type PointerArray struct {
	current unsafe.Pointer // *paTable, atomic
	next    unsafe.Pointer // *paTable, atomic
	count   int64          // atomic: next index to append

	logger Logger

	reclaimer *Reclaimer
	self      *Participant
}

// NewPointerArray creates a PointerArray with the given initial capacity
// hint (rounded up to a power of two, floored at minCapacity).
func NewPointerArray(cfg Config) *PointerArray {
	cfg.Validate()

	initial := newPATable(nextPow2(cfg.CapacityHint))
	pa := &PointerArray{
		logger: cfg.Logger,
	}
	pa.reclaimer = NewReclaimer(cfg.Allocator, cfg.TimeProvider, cfg.Logger)
	pa.self = pa.reclaimer.Register()

	p := unsafe.Pointer(initial)
	atomic.StorePointer(&pa.current, p)
	atomic.StorePointer(&pa.next, p)

	return pa
}

func (pa *PointerArray) loadCurrent() *paTable {
	return (*paTable)(atomic.LoadPointer(&pa.current))
}

func (pa *PointerArray) loadNext() *paTable {
	return (*paTable)(atomic.LoadPointer(&pa.next))
}

func (pa *PointerArray) casCurrent(old, new *paTable) bool {
	return atomic.CompareAndSwapPointer(&pa.current, unsafe.Pointer(old), unsafe.Pointer(new))
}

func (pa *PointerArray) casNext(old, new *paTable) bool {
	return atomic.CompareAndSwapPointer(&pa.next, unsafe.Pointer(old), unsafe.Pointer(new))
}

// Append adds value at the next available index and returns that index.
// value must not be NoPointer or Redirect.
func (pa *PointerArray) Append(value unsafe.Pointer) (int, error) {
	if err := validateValue(value); err != nil {
		return 0, err
	}

	pa.self.Pulse()

	for {
		idx := int(atomic.LoadInt64(&pa.count))
		t := pa.loadCurrent()

		if idx >= t.capacity {
			t = pa.migrate(t)
			continue
		}

		s := &t.entries[idx]
		if s.load() == Redirect {
			t = pa.migrate(t)
			continue
		}

		if !atomic.CompareAndSwapInt64(&pa.count, int64(idx), int64(idx+1)) {
			continue
		}

		// idx is now permanently ours: no other Append call will ever target
		// it. A concurrent migration may still redirect it out from under us
		// before we get to write, so follow Redirect into each successor
		// table at the same index until the value lands.
		target := t
		for {
			ts := &target.entries[idx]
			if ts.cas(NoPointer, value) {
				return idx, nil
			}
			if ts.load() == Redirect {
				target = pa.migrate(target)
				continue
			}
			panic("xanthos: pointer array slot already occupied after claiming its index")
		}
	}
}

// Get returns the value at index i and true, or (NoPointer, false) if i is
// out of range or the slot has not finished a concurrent Append.
func (pa *PointerArray) Get(i int) (unsafe.Pointer, bool) {
	if i < 0 {
		return NoPointer, false
	}

	pa.self.Pulse()

	t := pa.loadCurrent()
	for {
		if i >= t.capacity {
			return NoPointer, false
		}
		v := t.entries[i].load()
		if v == Redirect {
			t = pa.migrate(t)
			continue
		}
		if v == NoPointer {
			return NoPointer, false
		}
		return v, true
	}
}

// Count returns the number of elements appended so far.
func (pa *PointerArray) Count() int {
	return int(atomic.LoadInt64(&pa.count))
}

// Done releases the PointerArray's registration with the deferred-free
// service. Unlike Map's tables, paTable values are never handed to a
// pluggable Allocator: retired tables are simply dropped and left for the
// garbage collector, which is safe because nothing ever does unsafe
// pointer arithmetic into freed paTable memory.
func (pa *PointerArray) Done() {
	pa.reclaimer.Unregister(pa.self)
}

// migrate grows the backing table, copying every populated slot of p into
// the successor in index order before installing Redirect behind it, and
// returns the table now current.
func (pa *PointerArray) migrate(p *paTable) *paTable {
	q := pa.loadNext()

	if q == p {
		grown := newPATable(p.capacity * 2)
		if pa.casNext(p, grown) {
			q = grown
		} else {
			q = pa.loadNext()
		}
	}

	for i := 0; i < p.capacity; i++ {
		s := &p.entries[i]
		v := s.load()
		for {
			if v == Redirect {
				break
			}
			if v == NoPointer {
				if s.cas(NoPointer, Redirect) {
					break
				}
				v = s.load()
				continue
			}
			q.entries[i].cas(NoPointer, v)
			if s.cas(v, Redirect) {
				break
			}
			v = s.load()
		}
	}

	if pa.casCurrent(p, q) {
		pa.logger.Debug("xanthos: pointer array migration complete",
			"old_capacity", p.capacity, "new_capacity", q.capacity)
	}

	return q
}
