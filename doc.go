// Package xanthos provides a lock-free concurrent hash map and a companion
// concurrent append-only pointer array, both keyed by machine-word integers
// and holding opaque pointer-sized values.
//
// # Overview
//
// xanthos is designed for workloads where many goroutines insert, remove,
// look up, and enumerate entries concurrently without coarse locking:
//
//   - Lock-Free Core: every write is a single CAS loop; no goroutine ever
//     blocks another's progress.
//   - Grow-Only: the map never shrinks; it transparently migrates to a
//     larger backing table when the load factor crosses one half.
//   - Cooperative Migration: any goroutine that notices a table is being
//     replaced helps copy the remaining entries instead of waiting.
//   - Safe Reclamation: retired tables are freed only after every
//     registered reader has had a chance to move on, via an epoch-based
//     Reclaimer that releases them through the configured Allocator.
//
// # Quick Start
//
//	m := xanthos.NewMap(xanthos.Config{CapacityHint: 1024})
//
//	m.Insert(42, somePointer)
//	if v, err := m.Lookup(42); err == nil && v != xanthos.NoPointer {
//	    use(v)
//	}
//	m.Remove(42, somePointer)
//
// # Keys and Values
//
// Keys are pre-hashed int64 values — xanthos never hashes anything itself,
// callers own the hash function. The reserved hash xanthos.NoHash (0) is
// rejected at every public entry point. Values are unsafe.Pointer: xanthos
// never dereferences, copies, or frees a stored value. Two sentinel
// pointers are reserved and cannot be stored: xanthos.NoPointer (nil,
// meaning "absent") and xanthos.Redirect (meaning "ask the next table"),
// which doubles as the public InvalidPointer value.
//
// For a type-safe façade over V values, see TypedMap[V] / NewTypedMap.
//
// # Concurrency Model
//
//   - Lookup/Insert/Put/Remove are lock-free: every CAS failure corresponds
//     to some other goroutine's CAS success.
//   - Enumeration is best-effort: it may miss entries inserted after it
//     started, and Enumerator.Next reports EnumCanceled if it observes a
//     migration in progress, letting the caller restart.
//   - Insert never replaces an existing value (use Put for upsert).
//   - Remove is value-conditioned (compare-and-remove): it only removes an
//     entry if the caller supplies the exact value currently stored.
//
// # Migration
//
// A table holds at most capacity - capacity/2 claimed slots before the next
// insert triggers migration to a table of double the capacity. Migration is
// cooperative: whichever goroutine first notices the redirect allocates (or
// adopts) the successor table, copies live entries across (copy-before-
// redirect, so no concurrent write is ever lost), and publishes it. Losers
// of each step discard their work and retry against the freshly published
// table rather than blocking.
//
// # Reclamation
//
// Replaced tables are not freed immediately: they are handed to a Reclaimer,
// which defers the actual release until every registered participant has
// since made progress. A Map registers one long-lived participant for its
// own lifetime, pulsed at the start of every operation; an Enumerator
// registers its own participant for the duration of its walk, since it may
// hold a stale table pointer across several Next calls while a migration
// completes underneath it.
//
// # Errors
//
// All errors are structured, built with github.com/agilira/go-errors, with
// XANTHOS_* error codes. See errors.go for the full taxonomy and the
// IsNotFound / IsExists / IsInvalid / IsOutOfMemory / IsCanceled helpers.
//
// # Observability
//
// Config accepts an optional Logger (debug/info/warn/error, defaulting to
// a no-op) and MetricsCollector (hit/miss/latency callbacks, also
// defaulting to a no-op), so the hot path pays nothing unless a caller
// opts in.
//
// # Hot Reload
//
// HotConfig watches a configuration file via github.com/agilira/argus and
// live-applies the handful of parameters that are safe to change without
// touching the lock-free core (see hotreload.go).
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package xanthos
