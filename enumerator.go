// enumerator.go: best-effort enumeration over a Map (component C5)
//
// An Enumerator walks the table that was current at Create time. If a
// migration races ahead of it, the slot it lands on reads Redirect and the
// enumeration reports EnumCanceled rather than silently skipping or
// double-visiting entries: the caller decides whether to restart.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package xanthos

import "unsafe"

// EnumStatus is the outcome of one Enumerator.Next call.
type EnumStatus int

const (
	// EnumOK reports a valid (hash, value) pair; Next may be called again.
	EnumOK EnumStatus = iota
	// EnumDone reports the enumerator reached the end of the table with no
	// interference; Next must not be called again.
	EnumDone
	// EnumCanceled reports the enumerator observed a slot that migrated out
	// from under it; its results so far are a partial, unreliable view and
	// the caller should discard them and create a fresh Enumerator.
	EnumCanceled
)

// Enumerator walks the snapshot of the Map's table taken at Create time.
type Enumerator struct {
	m           *Map
	t           *table
	index       int
	participant *Participant
	done        bool
}

// Enumerate creates an Enumerator over m's table as of this call. The
// returned Enumerator must eventually have Done called on it.
func (m *Map) Enumerate() (*Enumerator, error) {
	p := m.loadCurrent()
	participant := m.reclaimer.Register()
	return &Enumerator{m: m, t: p, participant: participant}, nil
}

// Next advances the enumeration and returns the next live (hash, value)
// pair. status is EnumOK while pairs remain, EnumDone once the table is
// exhausted, or EnumCanceled if a concurrent migration invalidated the
// snapshot being walked.
func (e *Enumerator) Next() (hash int64, value unsafe.Pointer, status EnumStatus) {
	if e.done {
		return NoHash, NoPointer, EnumDone
	}

	e.participant.Pulse()

	for {
		s, ok := e.t.nextClaimedSlot(&e.index)
		if !ok {
			e.done = true
			return NoHash, NoPointer, EnumDone
		}

		v := s.loadValue()
		if v == Redirect {
			e.done = true
			return NoHash, NoPointer, EnumCanceled
		}
		if v == NoPointer {
			// Tombstoned after being claimed; skip and keep scanning.
			continue
		}
		return s.loadHash(), v, EnumOK
	}
}

// Done releases the Enumerator's registration with the deferred-free
// service. Safe to call once the enumeration is finished or abandoned.
func (e *Enumerator) Done() {
	e.m.reclaimer.Unregister(e.participant)
}
