// reclaim.go: epoch-based deferred-free service
//
// This file implements component C2: the abstract deferred-free service
// the core map and pointer array rely on to retire replaced tables safely.
// A goroutine that reads a table pointer, stalls, and resumes must never
// observe that memory reused for an unrelated table (the ABA problem); the
// Reclaimer defers the actual release until every participant registered
// at the time of a retire() call has since made progress.
//
// The scheme follows the global-epoch pattern used throughout the example
// corpus's lock-free collections (register/advance/retire), simplified to
// a single global epoch counter rather than a full hazard-pointer table:
// table retirement is rare (it only happens on migration) so a coarse
// epoch is enough, and it keeps the hot Lookup/Insert/Put/Remove path
// free of any per-call bookkeeping beyond one pulse.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package xanthos

import (
	"sync"
	"sync/atomic"
)

// retired is one table awaiting release, tagged with the global epoch in
// effect when it was retired and the time it was retired at.
type retired struct {
	epoch     int64
	retiredAt int64
	table     *table
}

// Participant is a registration handle returned by Reclaimer.Register. The
// holder must call Unregister exactly once when it is done touching tables
// protected by this Reclaimer.
type Participant struct {
	r          *Reclaimer
	localEpoch int64 // atomic: last epoch this participant observed
	active     int32 // atomic bool
}

// Pulse records that the participant has reached a quiescent point with no
// stale table pointer in hand, advancing its observed epoch to the
// Reclaimer's current one. Map operations call this once on entry;
// Enumerator calls it at the start of each Next.
func (p *Participant) Pulse() {
	atomic.StoreInt64(&p.localEpoch, atomic.LoadInt64(&p.r.epoch))
}

// Reclaimer defers freeing retired tables until every participant
// registered at retirement time has pulsed past that point: a small
// epoch-based safe memory reclamation engine for table retirement.
type Reclaimer struct {
	epoch        int64 // atomic: monotonically increasing global epoch
	allocator    Allocator
	timeProvider TimeProvider
	logger       Logger

	mu           sync.Mutex
	participants map[*Participant]struct{}
	pending      []retired
}

// NewReclaimer creates a Reclaimer that frees tables through allocator and
// logs diagnostics through logger (both may be the zero-value defaults).
func NewReclaimer(allocator Allocator, timeProvider TimeProvider, logger Logger) *Reclaimer {
	return &Reclaimer{
		allocator:    allocator,
		timeProvider: timeProvider,
		logger:       logger,
		participants: make(map[*Participant]struct{}),
	}
}

// Register joins the calling goroutine's logical lifetime to the set of
// participants a retire() must wait out. The returned Participant must be
// unregistered when the caller is done.
func (r *Reclaimer) Register() *Participant {
	p := &Participant{r: r, active: 1}
	p.localEpoch = atomic.LoadInt64(&r.epoch)

	r.mu.Lock()
	r.participants[p] = struct{}{}
	r.mu.Unlock()

	return p
}

// Unregister removes p from the participant set. Safe to call once.
func (r *Reclaimer) Unregister(p *Participant) {
	if !atomic.CompareAndSwapInt32(&p.active, 1, 0) {
		return
	}
	r.mu.Lock()
	delete(r.participants, p)
	r.mu.Unlock()

	// Removing a participant can only unblock reclamation, never delay it.
	r.tryReclaim()
}

// Retire schedules t to be freed once every participant registered at this
// moment has pulsed past the current epoch. The epoch is advanced
// unconditionally so that already-registered participants are forced to
// observe a newer epoch on their next Pulse before t can be freed.
func (r *Reclaimer) Retire(t *table) {
	if t == nil {
		return
	}
	epoch := atomic.AddInt64(&r.epoch, 1) - 1

	r.mu.Lock()
	r.pending = append(r.pending, retired{epoch: epoch, retiredAt: r.timeProvider.Now(), table: t})
	r.mu.Unlock()

	r.tryReclaim()
}

// TryAdvance is an advisory hook a caller may invoke periodically (e.g.
// from HotConfig's reload loop) to sweep pending retirements without
// waiting for the next Retire call. It is never required for correctness:
// Retire and Unregister already trigger sweeps.
func (r *Reclaimer) TryAdvance() {
	r.tryReclaim()
}

// tryReclaim frees every pending table whose retirement epoch is strictly
// less than the oldest epoch any active participant might still observe.
func (r *Reclaimer) tryReclaim() {
	r.mu.Lock()
	if len(r.pending) == 0 {
		r.mu.Unlock()
		return
	}

	safeBefore := atomic.LoadInt64(&r.epoch) + 1
	for p := range r.participants {
		if atomic.LoadInt32(&p.active) == 0 {
			continue
		}
		le := atomic.LoadInt64(&p.localEpoch)
		if le < safeBefore {
			safeBefore = le
		}
	}

	now := r.timeProvider.Now()
	kept := r.pending[:0]
	var freed []retired
	for _, item := range r.pending {
		if item.epoch < safeBefore {
			freed = append(freed, item)
		} else {
			kept = append(kept, item)
		}
	}
	r.pending = kept
	r.mu.Unlock()

	for _, item := range freed {
		r.allocator.Free(item.table)
	}
	if len(freed) > 0 {
		r.logger.Debug("xanthos: reclaimed retired tables",
			"count", len(freed), "oldest_wait_ns", now-freed[0].retiredAt)
	}
}

// PendingCount reports how many retired tables are still awaiting release.
// Intended for tests and diagnostics.
func (r *Reclaimer) PendingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
