// spsc.go: Shared control block and slot arithmetic for the SPSC channel
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package eurus

import (
	"sync/atomic"
	"unsafe"
)

// Magic marks a fully initialized control block. It is the little-endian
// 64-bit encoding of ASCII "TEMPORAL" and doubles as the publication fence
// for the one-time-written fields: the initializing producer stores it last
// with release ordering, so an attacher that observes Magic also observes
// the capacity, the zeroed tail and the zeroed producer heartbeat written
// before it.
const Magic uint64 = 0x4C41524F504D4554

// Alignment is the cache-line isolation unit in bytes. 128 is the
// worst-case line size across target platforms; every hot atomic in the
// control block sits on its own 128-byte line, and the backing region must
// start on a 128-byte boundary.
const Alignment = 128

// controlBlockSize is the fixed byte size of the control block. The slot
// region begins immediately after it, advanced to the element's alignment.
const controlBlockSize = 768

// controlBlock is the cross-process shared header at offset 0 of the
// backing region. The layout is bit-exact and little-endian; both processes
// map the same bytes, so field order and padding are load-bearing:
//
//	0x000 tail                0x180 consumer_heartbeat
//	0x080 head                0x2E8 capacity
//	0x100 producer_heartbeat  0x2F0 magic
//
// Writers are fixed by role: tail and producerHeartbeat belong to the
// producer, head and consumerHeartbeat to the consumer. capacity and magic
// are written once during initialization and never change afterwards.
type controlBlock struct {
	tail              atomic.Uint64
	_                 [Alignment - 8]byte
	head              atomic.Uint64
	_                 [Alignment - 8]byte
	producerHeartbeat atomic.Uint64
	_                 [Alignment - 8]byte
	consumerHeartbeat atomic.Uint64
	_                 [Alignment - 8]byte
	_                 [Alignment - 8]byte  // reserved
	_                 [Alignment - 16]byte // reserved
	capacity          atomic.Uint64
	magic             atomic.Uint64
	_                 [8]byte
}

// burst returns B(N) = max(1, N/4): the producer's tail-publish batch size
// and the consumer's overrun safety margin.
func burst(n uint64) uint64 {
	if x := n / 4; x != 0 {
		return x
	}
	return 1
}

// RegionSize returns the minimum backing-region size in bytes for a channel
// of n slots of T, including worst-case slot realignment slack. Callers
// provisioning shared memory should map at least this many bytes.
func RegionSize[T any](n uint64) uint64 {
	var zero T
	return controlBlockSize + uint64(unsafe.Alignof(zero)) - 1 + n*uint64(unsafe.Sizeof(zero))
}

// mapControlBlock validates the construction preconditions and casts the
// region onto the control block. Misalignment, a non-power-of-two capacity
// and an undersized region are programmer errors, not runtime error paths.
func mapControlBlock[T any](region []byte, capacity uint64) *controlBlock {
	if capacity == 0 || capacity&(capacity-1) != 0 {
		panic("eurus: capacity must be a positive power of two")
	}
	if uint64(len(region)) < RegionSize[T](capacity) {
		panic("eurus: region smaller than RegionSize for this capacity")
	}
	cb := (*controlBlock)(unsafe.Pointer(unsafe.SliceData(region)))
	if uintptr(unsafe.Pointer(cb))%Alignment != 0 {
		panic("eurus: region must be 128-byte aligned")
	}
	return cb
}

// slotBase derives the address of slot 0: the end of the control block,
// advanced by the minimum adjustment that realigns it to alignof(T). Both
// endpoints compute this identically; it is part of the wire contract.
func slotBase[T any](cb *controlBlock) unsafe.Pointer {
	var zero T
	base := unsafe.Add(unsafe.Pointer(cb), controlBlockSize)
	align := unsafe.Alignof(zero)
	if mis := uintptr(base) % align; mis != 0 {
		base = unsafe.Add(base, align-mis)
	}
	return base
}

// Stats is a point-in-time snapshot of channel state for telemetry.
// Producer-side and consumer-side fields are filled by the endpoint that
// produced the snapshot; shared fields come from the control block.
type Stats struct {
	Capacity uint64 `json:"capacity"`
	Burst    uint64 `json:"burst"`

	// Shared indices as currently published in the control block.
	Tail uint64 `json:"tail"`
	Head uint64 `json:"head"`
	Fill uint64 `json:"fill"` // Tail − Head, clamped at zero

	// Heartbeat counters.
	ProducerHeartbeat uint64 `json:"producer_heartbeat"`
	ConsumerHeartbeat uint64 `json:"consumer_heartbeat"`

	// Producer endpoint: local cursor and writes not yet published.
	LocalTail   uint64 `json:"local_tail,omitempty"`
	Unpublished uint64 `json:"unpublished,omitempty"`

	// Consumer endpoint: local cursor and values dropped by overrun resets.
	LocalHead uint64 `json:"local_head,omitempty"`
	Skipped   uint64 `json:"skipped,omitempty"`
}

// snapshot fills the shared portion of a Stats from the control block.
func snapshot(cb *controlBlock, capacity uint64) Stats {
	tail := cb.tail.Load()
	head := cb.head.Load()
	var fill uint64
	if tail >= head {
		fill = tail - head
	}
	return Stats{
		Capacity:          capacity,
		Burst:             burst(capacity),
		Tail:              tail,
		Head:              head,
		Fill:              fill,
		ProducerHeartbeat: cb.producerHeartbeat.Load(),
		ConsumerHeartbeat: cb.consumerHeartbeat.Load(),
	}
}
