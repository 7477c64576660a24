// hashmap.go: lock-free concurrent hash map orchestration (component C4)
//
// Map holds two table pointers, current and next, and drives lookup,
// insert, put, and remove against current, migrating to a larger table
// whenever a write observes the load-factor cap or a Redirect sentinel.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package xanthos

import (
	"math"
	"sync"
	"sync/atomic"
	"unsafe"
)

// Map is a lock-free concurrent hash map keyed by pre-hashed int64 values,
// holding opaque pointer-sized values. See the package doc for the full
// concurrency model.
type Map struct {
	current unsafe.Pointer // *table, atomic
	next    unsafe.Pointer // *table, atomic

	allocator    Allocator
	logger       Logger
	metrics      MetricsCollector
	timeProvider TimeProvider

	// sampleRateBits and logThreshold are read by running operations (the
	// sample rate when metrics are sampled, the threshold during migration)
	// and written only by HotConfig's reload callback, so both are plain
	// atomics rather than fields guarded by a mutex.
	sampleRateBits uint64 // atomic: math.Float64bits of the sample rate
	logThreshold   int64  // atomic
	sampleCounter  uint64 // atomic: monotonic call counter for shouldSample

	reclaimer *Reclaimer
	self      *Participant // registered for the Map's own lifetime

	inflight sync.Map // hash (int64) -> *inflightInsert, for GetOrInsert
}

// NewMap creates a Map with the given configuration, applying defaults via
// Config.Validate.
func NewMap(cfg Config) *Map {
	cfg.Validate()

	capacity := nextPow2(cfg.CapacityHint)
	if capacity < minCapacity {
		capacity = minCapacity
	}
	initial := cfg.Allocator.NewTable(capacity)

	m := &Map{
		allocator:    cfg.Allocator,
		logger:       cfg.Logger,
		metrics:      cfg.MetricsCollector,
		timeProvider: cfg.TimeProvider,
	}
	m.storeSampleRate(cfg.MetricsSampleRate)
	m.storeLogThreshold(int64(cfg.MigrationLogThreshold))
	m.reclaimer = NewReclaimer(cfg.Allocator, cfg.TimeProvider, cfg.Logger)
	m.self = m.reclaimer.Register()

	tp := unsafe.Pointer(initial)
	atomic.StorePointer(&m.current, tp)
	atomic.StorePointer(&m.next, tp)

	return m
}

// Done releases the Map's tables. The caller must guarantee no other
// goroutine is still using the map.
func (m *Map) Done() {
	cur := m.loadCurrent()
	nxt := m.loadNext()

	m.allocator.Free(cur)
	if nxt != cur {
		m.allocator.Free(nxt)
	}
	m.reclaimer.Unregister(m.self)
}

func (m *Map) loadCurrent() *table {
	return (*table)(atomic.LoadPointer(&m.current))
}

func (m *Map) loadNext() *table {
	return (*table)(atomic.LoadPointer(&m.next))
}

func (m *Map) casCurrent(old, new *table) bool {
	return atomic.CompareAndSwapPointer(&m.current, unsafe.Pointer(old), unsafe.Pointer(new))
}

func (m *Map) casNext(old, new *table) bool {
	return atomic.CompareAndSwapPointer(&m.next, unsafe.Pointer(old), unsafe.Pointer(new))
}

func (m *Map) loadSampleRate() float64 {
	return math.Float64frombits(atomic.LoadUint64(&m.sampleRateBits))
}

func (m *Map) storeSampleRate(rate float64) {
	atomic.StoreUint64(&m.sampleRateBits, math.Float64bits(rate))
}

func (m *Map) loadLogThreshold() int64 {
	return atomic.LoadInt64(&m.logThreshold)
}

func (m *Map) storeLogThreshold(v int64) {
	atomic.StoreInt64(&m.logThreshold, v)
}

// shouldSample decides, for one operation, whether to pay for a
// TimeProvider.Now() call. A rate >= 1 always samples, <= 0 never does;
// anything between samples deterministically every 1/rate calls rather
// than rolling dice, so latency metrics stay reproducible in tests.
func (m *Map) shouldSample() bool {
	rate := m.loadSampleRate()
	if rate >= 1.0 {
		return true
	}
	if rate <= 0 {
		return false
	}
	threshold := uint64(1.0 / rate)
	if threshold == 0 {
		threshold = 1
	}
	n := atomic.AddUint64(&m.sampleCounter, 1)
	return n%threshold == 0
}

// GetSize returns the capacity of the current backing table. It is a
// snapshot: concurrent migration may change it immediately after return.
func (m *Map) GetSize() int {
	return m.loadCurrent().capacity()
}

func validateHash(h int64) error {
	if h == NoHash {
		return NewErrInvalidArgument("hash", "hash must not equal NoHash")
	}
	return nil
}

func validateValue(v unsafe.Pointer) error {
	if v == NoPointer || v == Redirect {
		return NewErrInvalidArgument("value", "value must not be NoPointer or Redirect")
	}
	return nil
}

// Lookup returns the value stored for hash, or NoPointer if absent.
func (m *Map) Lookup(hash int64) (unsafe.Pointer, error) {
	if err := validateHash(hash); err != nil {
		return NoPointer, err
	}

	m.self.Pulse()
	start := m.sampleStart()

	for {
		p := m.loadCurrent()
		v := p.lookup(hash)
		if v == Redirect {
			if _, err := m.migrate(p); err != nil {
				return NoPointer, err
			}
			continue
		}
		m.metrics.RecordLookup(m.sampleElapsed(start), v != NoPointer)
		return v, nil
	}
}

// Insert adds (hash, value) if hash is not already present. Returns
// ErrCodeKeyExists if it is.
func (m *Map) Insert(hash int64, value unsafe.Pointer) error {
	if err := validateHash(hash); err != nil {
		return err
	}
	if err := validateValue(value); err != nil {
		return err
	}

	m.self.Pulse()
	start := m.sampleStart()

	for {
		p := m.loadCurrent()

		if p.loadNHashes() >= p.maxLive() {
			if _, err := m.migrate(p); err != nil {
				return err
			}
			continue
		}

		switch p.insert(hash, value) {
		case insertOK:
			m.metrics.RecordInsert(m.sampleElapsed(start), true)
			return nil
		case insertExists:
			m.metrics.RecordInsert(m.sampleElapsed(start), false)
			return NewErrKeyExists(hash)
		case insertBusy:
			if _, err := m.migrate(p); err != nil {
				return err
			}
		}
	}
}

// Put upserts (hash, value): it stores value whether or not hash was
// already present.
func (m *Map) Put(hash int64, value unsafe.Pointer) error {
	if err := validateHash(hash); err != nil {
		return err
	}
	if err := validateValue(value); err != nil {
		return err
	}

	m.self.Pulse()
	start := m.sampleStart()

	for {
		p := m.loadCurrent()

		if p.loadNHashes() >= p.maxLive() {
			if _, err := m.migrate(p); err != nil {
				return err
			}
			continue
		}

		switch p.put(hash, value) {
		case insertOK:
			m.metrics.RecordPut(m.sampleElapsed(start))
			return nil
		case insertBusy:
			if _, err := m.migrate(p); err != nil {
				return err
			}
		}
	}
}

// Remove deletes hash only if its current value equals value
// (compare-and-remove). Returns ErrCodeKeyNotFound if the hash is absent
// or its value differs.
func (m *Map) Remove(hash int64, value unsafe.Pointer) error {
	if err := validateHash(hash); err != nil {
		return err
	}
	if err := validateValue(value); err != nil {
		return err
	}

	m.self.Pulse()
	start := m.sampleStart()

	for {
		p := m.loadCurrent()
		switch p.remove(hash, value) {
		case removeOK:
			m.metrics.RecordRemove(m.sampleElapsed(start), true)
			return nil
		case removeNotFound:
			m.metrics.RecordRemove(m.sampleElapsed(start), false)
			return NewErrKeyNotFound(hash)
		case removeBusy:
			if _, err := m.migrate(p); err != nil {
				return err
			}
		}
	}
}

// LookupAny returns an arbitrary currently-live value, or NoPointer if the
// map is empty. Equivalent to taking the first result of an enumeration.
func (m *Map) LookupAny() unsafe.Pointer {
	e, err := m.Enumerate()
	if err != nil {
		return NoPointer
	}
	defer func() { e.Done() }()

	for {
		_, v, status := e.Next()
		switch status {
		case EnumOK:
			return v
		case EnumDone:
			return NoPointer
		case EnumCanceled:
			e2, err := m.Enumerate()
			if err != nil {
				return NoPointer
			}
			e.Done()
			e = e2
		}
	}
}

// Count returns a best-effort live entry count, transparently restarting
// enumeration if it is canceled by a concurrent migration.
func (m *Map) Count() (int, error) {
	for {
		e, err := m.Enumerate()
		if err != nil {
			return 0, err
		}

		count := 0
		canceled := false
		for {
			_, _, status := e.Next()
			if status == EnumOK {
				count++
				continue
			}
			if status == EnumDone {
				break
			}
			if status == EnumCanceled {
				canceled = true
				break
			}
		}
		e.Done()

		if !canceled {
			m.metrics.RecordEnumeration(count)
			return count, nil
		}
	}
}

// migrate drives cooperative migration starting from the observation that
// table p needs a successor: it allocates or adopts the doubled
// replacement, copies p's entries across, and publishes it as current. It
// returns the table that is now (or already was) current, to be used by
// the caller's retry.
func (m *Map) migrate(p *table) (*table, error) {
	q := m.loadNext()

	if q == p {
		newCapacity := p.capacity() * 2
		allocated := m.allocator.NewTable(newCapacity)
		if allocated == nil {
			m.logger.Warn("xanthos: table allocation failed during migration",
				"requested_capacity", newCapacity)
			return nil, NewErrOutOfMemory(newCapacity)
		}

		if m.casNext(p, allocated) {
			q = allocated
		} else {
			m.allocator.Free(allocated)
			q = m.loadNext()
		}
	}

	m.cooperativeCopy(p, q)

	if m.casCurrent(p, q) {
		m.logger.Debug("xanthos: migration complete",
			"old_capacity", p.capacity(), "new_capacity", q.capacity())
		m.metrics.RecordMigration(p.capacity(), q.capacity())
		m.reclaimer.Retire(p)
	}

	return q, nil
}

// cooperativeCopy copies every claimed slot of p into q, copying the value
// across before installing Redirect so no concurrent write to p is ever
// lost. Tombstoned slots also receive a Redirect so stragglers bounce into
// the migrate-and-retry path instead of writing into a table that is no
// longer current, keeping insert and put consistent with one another.
func (m *Map) cooperativeCopy(p, q *table) {
	visited := 0
	n := p.capacity()

	for i := 0; i < n; i++ {
		s := &p.entries[i]
		h := s.loadHash()
		if h == NoHash {
			continue
		}
		visited++

		v := s.loadValue()
		for {
			if v == Redirect {
				break
			}
			if v == NoPointer {
				if s.casValue(NoPointer, Redirect) {
					break
				}
				v = s.loadValue()
				continue
			}

			// Copy before redirect: no concurrent value is ever lost.
			q.put(h, v)

			if s.casValue(v, Redirect) {
				break
			}
			v = s.loadValue()
		}
	}

	threshold := m.loadLogThreshold()
	if threshold > 0 && int64(visited) > threshold {
		m.logger.Warn("xanthos: migration visited more slots than expected",
			"visited", visited, "threshold", threshold)
	}
}

func (m *Map) sampleStart() int64 {
	if _, ok := m.metrics.(NoOpMetricsCollector); ok {
		return 0
	}
	if !m.shouldSample() {
		return 0
	}
	return m.timeProvider.Now()
}

func (m *Map) sampleElapsed(start int64) int64 {
	if start == 0 {
		return 0
	}
	return m.timeProvider.Now() - start
}
