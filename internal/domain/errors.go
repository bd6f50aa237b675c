package domain

import (
	"errors"
	"fmt"
)

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Categories
	ErrMsgValidation       = "validation error"
	ErrMsgNotFound         = "not found"
	ErrMsgConflict         = "conflict"
	ErrMsgInsufficientPool = "insufficient pool"
	ErrMsgInternal         = "internal server error"

	// Catalog errors
	ErrMsgUserNotFound = "user"
	ErrMsgPackNotFound = "pack"
	ErrMsgBoxNotFound  = "box"
	ErrMsgSetNotFound  = "card set"
	ErrMsgSetNotActive = "card set is not active"

	// Spec errors
	ErrMsgInvalidPackSpec  = "invalid pack spec"
	ErrMsgInvalidBoxSpec   = "invalid box spec"
	ErrMsgInvalidRarityTbl = "invalid rarity table"
	ErrMsgInvalidRequest   = "invalid request"

	// Opening errors
	ErrMsgOutOfStock       = "insufficient stock"
	ErrMsgLockTimeout      = "timed out waiting for user lock"
	ErrMsgRequestIDReused  = "request id already used for a different opening"
	ErrMsgSerialization    = "concurrent update, retry"
	ErrMsgEmptyGuaranteePl = "guarantee pool is empty"

	// Database/System errors
	ErrMsgTxClosed = "tx is closed"
)

// Error categories. Every error returned across package boundaries wraps exactly one of these.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// ErrValidation marks malformed specs or input; not retryable without changing the input.
	ErrValidation = errors.New(ErrMsgValidation)
	// ErrNotFound marks a missing user, pack, box or set.
	ErrNotFound = errors.New(ErrMsgNotFound)
	// ErrConflict marks stock exhaustion, lock timeouts and concurrent updates; retryable.
	ErrConflict = errors.New(ErrMsgConflict)
	// ErrInsufficientPool marks a non-repeating guarantee pool that is too small; a configuration bug.
	ErrInsufficientPool = errors.New(ErrMsgInsufficientPool)
	// ErrInternal marks persistence failures; retry the whole idempotent operation.
	ErrInternal = errors.New(ErrMsgInternal)
)

// Specific errors, each wrapping its category.
var (
	ErrUserNotFound = fmt.Errorf("%s %w", ErrMsgUserNotFound, ErrNotFound)
	ErrPackNotFound = fmt.Errorf("%s %w", ErrMsgPackNotFound, ErrNotFound)
	ErrBoxNotFound  = fmt.Errorf("%s %w", ErrMsgBoxNotFound, ErrNotFound)
	ErrSetNotFound  = fmt.Errorf("%s %w", ErrMsgSetNotFound, ErrNotFound)

	ErrSetNotActive     = fmt.Errorf("%w: %s", ErrValidation, ErrMsgSetNotActive)
	ErrInvalidPackSpec  = fmt.Errorf("%w: %s", ErrValidation, ErrMsgInvalidPackSpec)
	ErrInvalidBoxSpec   = fmt.Errorf("%w: %s", ErrValidation, ErrMsgInvalidBoxSpec)
	ErrInvalidRarityTbl = fmt.Errorf("%w: %s", ErrValidation, ErrMsgInvalidRarityTbl)
	ErrInvalidRequest   = fmt.Errorf("%w: %s", ErrValidation, ErrMsgInvalidRequest)
	ErrEmptyGuaranteePl = fmt.Errorf("%w: %s", ErrValidation, ErrMsgEmptyGuaranteePl)

	ErrOutOfStock      = fmt.Errorf("%w: %s", ErrConflict, ErrMsgOutOfStock)
	ErrLockTimeout     = fmt.Errorf("%w: %s", ErrConflict, ErrMsgLockTimeout)
	ErrRequestIDReused = fmt.Errorf("%w: %s", ErrConflict, ErrMsgRequestIDReused)
	ErrSerialization   = fmt.Errorf("%w: %s", ErrConflict, ErrMsgSerialization)
)

// ErrTxClosed is returned by a repository transaction used after Commit or Rollback.
var ErrTxClosed = errors.New(ErrMsgTxClosed)

// IsRetryable reports whether retrying the same request may succeed.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRequestIDReused) {
		return false
	}
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrInternal)
}

// Internal wraps a persistence failure so callers see ErrInternal while logs keep the cause.
func Internal(context string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrInternal, context, err)
}
