// errors.go: structured error handling for xanthos map and array operations
//
// This file provides structured error types using the go-errors library,
// enabling rich error context, categorization, and standardized error codes
// for all concurrent map and pointer array operations.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package xanthos

import (
	goerrors "errors"

	"github.com/agilira/go-errors"
)

// Error codes for xanthos operations.
const (
	// Argument errors (1xxx)
	ErrCodeInvalidArgument errors.ErrorCode = "XANTHOS_INVALID_ARGUMENT"
	ErrCodeInvalidConfig   errors.ErrorCode = "XANTHOS_INVALID_CONFIG"

	// Operation errors (2xxx)
	ErrCodeKeyExists   errors.ErrorCode = "XANTHOS_KEY_EXISTS"
	ErrCodeKeyNotFound errors.ErrorCode = "XANTHOS_KEY_NOT_FOUND"

	// Resource errors (3xxx)
	ErrCodeOutOfMemory errors.ErrorCode = "XANTHOS_OUT_OF_MEMORY"

	// Enumeration errors (4xxx)
	ErrCodeEnumerationCanceled errors.ErrorCode = "XANTHOS_ENUMERATION_CANCELED"

	// Internal errors (5xxx)
	ErrCodeInternalError errors.ErrorCode = "XANTHOS_INTERNAL_ERROR"
)

// Common error messages
const (
	msgInvalidArgument      = "invalid argument: nil map, reserved hash, or reserved value"
	msgInvalidConfig        = "invalid configuration"
	msgKeyExists            = "insert found an existing value for this hash"
	msgKeyNotFound          = "no matching (hash, value) pair found"
	msgOutOfMemory          = "allocation of a new table failed during migration"
	msgEnumerationCanceled  = "enumerator observed a concurrent migration"
	msgInternalError        = "internal xanthos error"
)

// NewErrInvalidArgument creates an error for a rejected public-API argument.
func NewErrInvalidArgument(operation string, reason string) error {
	return errors.NewWithContext(ErrCodeInvalidArgument, msgInvalidArgument, map[string]interface{}{
		"operation": operation,
		"reason":    reason,
	})
}

// NewErrInvalidConfig creates an error for an invalid Config.
func NewErrInvalidConfig(reason string) error {
	return errors.NewWithField(ErrCodeInvalidConfig, msgInvalidConfig, "reason", reason)
}

// NewErrKeyExists creates an error for Insert finding an existing key.
func NewErrKeyExists(hash int64) error {
	return errors.NewWithContext(ErrCodeKeyExists, msgKeyExists, map[string]interface{}{
		"hash": hash,
	})
}

// NewErrKeyNotFound creates an error for Remove not matching.
func NewErrKeyNotFound(hash int64) error {
	return errors.NewWithContext(ErrCodeKeyNotFound, msgKeyNotFound, map[string]interface{}{
		"hash": hash,
	})
}

// NewErrOutOfMemory creates an error for a failed table allocation.
func NewErrOutOfMemory(requestedCapacity int) error {
	return errors.NewWithContext(ErrCodeOutOfMemory, msgOutOfMemory, map[string]interface{}{
		"requested_capacity": requestedCapacity,
	}).AsRetryable()
}

// NewErrEnumerationCanceled creates an error for a canceled enumeration.
func NewErrEnumerationCanceled(visited int) error {
	return errors.NewWithContext(ErrCodeEnumerationCanceled, msgEnumerationCanceled, map[string]interface{}{
		"visited": visited,
	}).AsRetryable()
}

// NewErrInternal creates a generic internal error.
func NewErrInternal(operation string, cause error) error {
	if cause != nil {
		return errors.Wrap(cause, ErrCodeInternalError, msgInternalError).
			WithContext("operation", operation).
			WithSeverity("critical")
	}
	return errors.NewWithField(ErrCodeInternalError, msgInternalError, "operation", operation).
		WithSeverity("critical")
}

// IsNotFound reports whether err is a "key not found" error.
func IsNotFound(err error) bool {
	return errors.HasCode(err, ErrCodeKeyNotFound)
}

// IsExists reports whether err is a "key already exists" error.
func IsExists(err error) bool {
	return errors.HasCode(err, ErrCodeKeyExists)
}

// IsInvalid reports whether err is an invalid-argument or invalid-config error.
func IsInvalid(err error) bool {
	return errors.HasCode(err, ErrCodeInvalidArgument) || errors.HasCode(err, ErrCodeInvalidConfig)
}

// IsOutOfMemory reports whether err is an out-of-memory error.
func IsOutOfMemory(err error) bool {
	return errors.HasCode(err, ErrCodeOutOfMemory)
}

// IsCanceled reports whether err is a canceled-enumeration error.
func IsCanceled(err error) bool {
	return errors.HasCode(err, ErrCodeEnumerationCanceled)
}

// IsRetryable reports whether err can be retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var retryable errors.Retryable
	if goerrors.As(err, &retryable) {
		return retryable.IsRetryable()
	}
	return false
}

// GetErrorCode extracts the error code from err, or "" if err carries none.
func GetErrorCode(err error) errors.ErrorCode {
	if err == nil {
		return ""
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return ""
}

// GetErrorContext extracts the structured context from err, if any.
func GetErrorContext(err error) map[string]interface{} {
	if err == nil {
		return nil
	}
	var xerr *errors.Error
	if goerrors.As(err, &xerr) {
		return xerr.Context
	}
	return nil
}
