// consumer.go: Consumer endpoint of the SPSC channel
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package eurus

import (
	"fmt"
	"unsafe"
)

// popRetryLimit bounds the lossy pop's overrun-retry loop. A single reset
// leaves tail − head = N − B(N) < N, so a second consecutive overrun needs
// the published tail to advance again within one iteration; eight rounds
// of that means the consumer is being lapped continuously.
const popRetryLimit = 8

// Consumer is the reading endpoint of a channel. It owns a private head
// cursor; the lossy discipline validates every speculative slot read
// against the published tail, the lossless discipline additionally
// publishes consumed progress back to the control block for the producer's
// fullness gate.
//
// A Consumer is process-local and single-threaded. Exactly one consumer may
// operate on a region at a time; the core does not detect violations.
type Consumer[T any] struct {
	cb       *controlBlock
	slots    unsafe.Pointer
	elemSize uintptr
	mask     uint64
	capacity uint64
	burst    uint64

	head                  uint64 // local head cursor
	skipped               uint64 // values dropped by overrun resets
	lastProducerHeartbeat uint64
}

// NewConsumer joins a consumer endpoint to an initialized region. The local
// head is seeded from the published tail and stored back to the control
// block, so the channel starts from "everything previously published has
// been consumed" and a lossless producer's fullness gate is immediately
// accurate. Joining a zeroed region returns ErrUninitialized; capacity and
// magic are validated as for NewProducer. Alignment, capacity and region
// size preconditions panic.
func NewConsumer[T any](region []byte, capacity uint64) (*Consumer[T], error) {
	cb := mapControlBlock[T](region, capacity)

	switch magic := cb.magic.Load(); magic {
	case Magic:
		if got := cb.capacity.Load(); got != capacity {
			return nil, fmt.Errorf("%w: control block holds %d, endpoint built for %d",
				ErrCapacityMismatch, got, capacity)
		}
	case 0:
		return nil, ErrUninitialized
	default:
		return nil, fmt.Errorf("%w: magic %#x", ErrCorruption, magic)
	}

	var zero T
	c := &Consumer[T]{
		cb:       cb,
		slots:    slotBase[T](cb),
		elemSize: unsafe.Sizeof(zero),
		mask:     capacity - 1,
		capacity: capacity,
		burst:    burst(capacity),
	}
	c.head = cb.tail.Load()
	c.cb.head.Store(c.head)
	c.lastProducerHeartbeat = cb.producerHeartbeat.Load()
	return c, nil
}

// slot returns the address of slot i&(N−1).
func (c *Consumer[T]) slot(i uint64) *T {
	return (*T)(unsafe.Add(c.slots, uintptr(i&c.mask)*c.elemSize))
}

// Pop retrieves the next fresh value from a lossy channel.
//
// Each attempt speculatively copies the slot, then validates it against the
// published tail. Nothing newly published returns ErrEmpty. A producer
// within B(N) slots of lapping means the copy may be torn; the cursor
// resets to tail − (N − B(N)) — one burst behind the write frontier — and
// the read retries, silently dropping the overwritten values. Every value
// returned was the content of its logical slot while the producer was
// still more than B(N) slots away from reusing it.
//
// The retry loop is bounded; exceeding it returns ErrRetryLimit.
func (c *Consumer[T]) Pop() (T, error) {
	for attempt := 0; attempt < popRetryLimit; attempt++ {
		value := *c.slot(c.head)

		tail := c.cb.tail.Load()
		if tail <= c.head {
			var zero T
			return zero, ErrEmpty
		}
		if tail > c.head+(c.capacity-c.burst) {
			// Overrun: the speculative copy is discarded as potentially
			// torn and the cursor lands one burst behind the frontier.
			next := tail - (c.capacity - c.burst)
			c.skipped += next - c.head
			c.head = next
			continue
		}

		c.head++
		return value, nil
	}
	var zero T
	return zero, ErrRetryLimit
}

// PopLossless retrieves the next value from a lossless channel and
// publishes the consumed head with release ordering, advancing the
// producer's fullness gate. The producer never overwrites unread slots
// under this discipline, so the speculative copy cannot tear and no
// overrun check is needed.
func (c *Consumer[T]) PopLossless() (T, error) {
	value := *c.slot(c.head)

	if tail := c.cb.tail.Load(); tail <= c.head {
		var zero T
		return zero, ErrEmpty
	}

	c.head++
	c.cb.head.Store(c.head)
	return value, nil
}

// Beat increments the consumer heartbeat, signalling liveness to the
// producer. No ordering relative to data is implied.
func (c *Consumer[T]) Beat() {
	c.cb.consumerHeartbeat.Add(1)
}

// ProducerHeartbeat reports whether the producer's heartbeat advanced since
// the last observation, updating the snapshot when it did.
func (c *Consumer[T]) ProducerHeartbeat() bool {
	beat := c.cb.producerHeartbeat.Load()
	if beat != c.lastProducerHeartbeat {
		c.lastProducerHeartbeat = beat
		return true
	}
	return false
}

// Stats returns a snapshot of the channel state as seen by this endpoint.
func (c *Consumer[T]) Stats() Stats {
	s := snapshot(c.cb, c.capacity)
	s.LocalHead = c.head
	s.Skipped = c.skipped
	return s
}
