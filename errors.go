// errors.go: Error kinds surfaced by the channel core
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package eurus

import "errors"

// Pre-allocated errors to avoid allocations in hot paths. Empty and Full
// are transient and returned immediately without internal retries; the
// attach errors are not recoverable without re-provisioning the region.
var (
	// ErrUninitialized is returned when a consumer attaches to a zeroed
	// region before any producer has initialized it.
	ErrUninitialized = errors.New("eurus: channel not initialized")

	// ErrCapacityMismatch is returned when the attacher's capacity differs
	// from the capacity stored in the control block.
	ErrCapacityMismatch = errors.New("eurus: capacity mismatch")

	// ErrCorruption is returned when the magic word is neither zero nor
	// Magic.
	ErrCorruption = errors.New("eurus: control block corrupted")

	// ErrEmpty is returned by pops that found nothing newly published.
	ErrEmpty = errors.New("eurus: channel empty")

	// ErrFull is returned by PushLossless when the consumer's published
	// head trails by exactly the ring capacity.
	ErrFull = errors.New("eurus: channel full")

	// ErrRetryLimit is the diagnostic surfaced when the lossy pop's
	// overrun-retry loop exceeds its bound, meaning the producer lapped
	// the consumer on every attempt.
	ErrRetryLimit = errors.New("eurus: pop retry limit exceeded")
)
