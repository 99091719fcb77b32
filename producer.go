// producer.go: Producer endpoint of the SPSC channel
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package eurus

import (
	"fmt"
	"unsafe"
)

// Producer is the writing endpoint of a channel. It owns a private tail
// cursor and publishes progress to the control block in bursts; values
// written between publications are invisible to the consumer until the
// first Push after a full batch, or until Sync is called.
//
// A Producer is process-local and single-threaded. Exactly one producer may
// operate on a region at a time; the core does not detect violations.
type Producer[T any] struct {
	cb       *controlBlock
	slots    unsafe.Pointer
	elemSize uintptr
	mask     uint64
	capacity uint64
	burst    uint64

	tail                  uint64 // local tail, ahead of the published one
	written               uint64 // pushes since the last publication
	lastConsumerHeartbeat uint64
}

// NewProducer attaches a producer endpoint to region.
//
// A zeroed region is initialized: the tail and the producer heartbeat are
// cleared, capacity is recorded, and Magic is stored last so that a
// concurrent attacher observing it also observes the initialized fields.
// An already-initialized region is joined after validating its capacity;
// the local cursor is seeded from the published tail. capacity must be a
// power of two and region must be 128-byte aligned and at least
// RegionSize[T](capacity) bytes; violations panic.
//
// T must be a fixed-size value type without pointers: the bytes are shared
// across processes as-is.
func NewProducer[T any](region []byte, capacity uint64) (*Producer[T], error) {
	cb := mapControlBlock[T](region, capacity)

	var zero T
	p := &Producer[T]{
		cb:       cb,
		slots:    slotBase[T](cb),
		elemSize: unsafe.Sizeof(zero),
		mask:     capacity - 1,
		capacity: capacity,
		burst:    burst(capacity),
	}

	switch magic := cb.magic.Load(); magic {
	case Magic:
		if got := cb.capacity.Load(); got != capacity {
			return nil, fmt.Errorf("%w: control block holds %d, endpoint built for %d",
				ErrCapacityMismatch, got, capacity)
		}
		p.tail = cb.tail.Load()
	case 0:
		cb.tail.Store(0)
		// head is not initialized here; the consumer seeds it when it
		// joins, and the zero-filled region makes the absent store benign
		// for a lossless producer that attaches first.
		cb.producerHeartbeat.Store(0)
		cb.capacity.Store(capacity)
		cb.magic.Store(Magic)
	default:
		return nil, fmt.Errorf("%w: magic %#x", ErrCorruption, magic)
	}

	p.lastConsumerHeartbeat = cb.consumerHeartbeat.Load()
	return p, nil
}

// slot returns the address of slot i&(N−1).
func (p *Producer[T]) slot(i uint64) *T {
	return (*T)(unsafe.Add(p.slots, uintptr(i&p.mask)*p.elemSize))
}

// Push writes value into the ring without inspecting the consumer. It never
// blocks and never fails; if the consumer cannot keep up the slot is simply
// overwritten and the consumer's overrun detection skips the lost values.
//
// The published tail advances at most once per burst of B(N) pushes, and
// the publication happens before the write when the batch counter is full,
// so the value being pushed is never part of the batch it flushes. Callers
// that need the latest values visible immediately call Sync.
func (p *Producer[T]) Push(value T) {
	if p.written == p.burst {
		p.cb.tail.Store(p.tail)
		p.written = 0
	}
	*p.slot(p.tail) = value
	p.tail++
	p.written++
}

// PushLossless writes value only if the ring has a free slot, returning
// ErrFull otherwise. Fullness is judged against the consumer's published
// head: once the producer is exactly one capacity ahead of it, further
// pushes are refused, so unread slots are never overwritten.
//
// PushLossless does not publish the tail on its own; call Sync at the
// message boundary to make the written values visible.
func (p *Producer[T]) PushLossless(value T) error {
	head := p.cb.head.Load()
	if head+p.capacity == p.tail {
		return ErrFull
	}
	*p.slot(p.tail) = value
	p.tail++
	p.written++
	return nil
}

// Sync publishes the local tail with release ordering, making every slot
// written so far visible to the consumer. Idempotent.
func (p *Producer[T]) Sync() {
	p.written = 0
	p.cb.tail.Store(p.tail)
}

// Beat increments the producer heartbeat, signalling liveness to the
// consumer. No ordering relative to data is implied.
func (p *Producer[T]) Beat() {
	p.cb.producerHeartbeat.Add(1)
}

// ConsumerHeartbeat reports whether the consumer's heartbeat advanced since
// the last observation, updating the snapshot when it did. A true result
// means only that the consumer reached a Beat call at least once since the
// previous check.
func (p *Producer[T]) ConsumerHeartbeat() bool {
	beat := p.cb.consumerHeartbeat.Load()
	if beat != p.lastConsumerHeartbeat {
		p.lastConsumerHeartbeat = beat
		return true
	}
	return false
}

// Stats returns a snapshot of the channel state as seen by this endpoint.
// Safe to call between operations; the shared fields may lag the peer.
func (p *Producer[T]) Stats() Stats {
	s := snapshot(p.cb, p.capacity)
	s.LocalTail = p.tail
	s.Unpublished = p.written
	return s
}
