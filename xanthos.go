// xanthos.go: package-level constants and version
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package xanthos

const (
	// Version of the xanthos concurrent hash map library.
	Version = "v0.1.0-dev"

	// DefaultCapacityHint is the initial table capacity used when a
	// Config does not specify one.
	DefaultCapacityHint = 16

	// minCapacity is the smallest table capacity ever allocated,
	// regardless of the requested hint. Must be a power of two.
	minCapacity = 4
)
