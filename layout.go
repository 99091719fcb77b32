// layout.go: Control block layout introspection
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package eurus

import (
	"fmt"
	"strings"
	"unsafe"
)

// Layout reports the byte offset of every control block field plus the
// total size. Both processes must agree on these values; diagnostics print
// them so a mismatch between differently built peers is visible before it
// corrupts a channel.
type Layout struct {
	Tail              uintptr `json:"tail"`
	Head              uintptr `json:"head"`
	ProducerHeartbeat uintptr `json:"producer_heartbeat"`
	ConsumerHeartbeat uintptr `json:"consumer_heartbeat"`
	Capacity          uintptr `json:"capacity"`
	Magic             uintptr `json:"magic"`
	Size              uintptr `json:"size"`
}

// ChannelLayout returns the layout of the shared control block.
func ChannelLayout() Layout {
	var cb controlBlock
	return Layout{
		Tail:              unsafe.Offsetof(cb.tail),
		Head:              unsafe.Offsetof(cb.head),
		ProducerHeartbeat: unsafe.Offsetof(cb.producerHeartbeat),
		ConsumerHeartbeat: unsafe.Offsetof(cb.consumerHeartbeat),
		Capacity:          unsafe.Offsetof(cb.capacity),
		Magic:             unsafe.Offsetof(cb.magic),
		Size:              unsafe.Sizeof(cb),
	}
}

// String renders the layout one field per line.
func (l Layout) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "tail offset:                %d\n", l.Tail)
	fmt.Fprintf(&b, "head offset:                %d\n", l.Head)
	fmt.Fprintf(&b, "producer_heartbeat offset:  %d\n", l.ProducerHeartbeat)
	fmt.Fprintf(&b, "consumer_heartbeat offset:  %d\n", l.ConsumerHeartbeat)
	fmt.Fprintf(&b, "capacity offset:            %d\n", l.Capacity)
	fmt.Fprintf(&b, "magic offset:               %d\n", l.Magic)
	fmt.Fprintf(&b, "control block size:         %d\n", l.Size)
	return b.String()
}
