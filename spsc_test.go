// spsc_test.go: Attach protocol and control block tests
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package eurus

import (
	"encoding/binary"
	"errors"
	"testing"
	"unsafe"
)

// alignedRegion returns a zeroed, 128-byte-aligned region sized for a
// channel of n slots of T. Heap-backed so attach tests run without shared
// memory; the core only cares about the contract, not the provenance.
func alignedRegion[T any](tb testing.TB, n uint64) []byte {
	tb.Helper()

	size := int(RegionSize[T](n))
	buf := make([]byte, size+Alignment)
	off := 0
	if mis := uintptr(unsafe.Pointer(unsafe.SliceData(buf))) % Alignment; mis != 0 {
		off = Alignment - int(mis)
	}
	return buf[off : off+size]
}

// magicWord reads the magic field straight from the region bytes.
func magicWord(region []byte) uint64 {
	return binary.LittleEndian.Uint64(region[ChannelLayout().Magic:])
}

// capacityWord reads the capacity field straight from the region bytes.
func capacityWord(region []byte) uint64 {
	return binary.LittleEndian.Uint64(region[ChannelLayout().Capacity:])
}

func TestProducerInitializesZeroedRegion(t *testing.T) {
	for _, n := range []uint64{1, 2, 4, 8, 64, 1024} {
		region := alignedRegion[uint64](t, n)

		if _, err := NewProducer[uint64](region, n); err != nil {
			t.Fatalf("N=%d: initialize failed: %v", n, err)
		}
		if got := magicWord(region); got != Magic {
			t.Errorf("N=%d: magic = %#x, want %#x", n, got, Magic)
		}
		if got := capacityWord(region); got != n {
			t.Errorf("N=%d: capacity = %d, want %d", n, got, n)
		}

		// Subsequent attaches of either role join the initialized block.
		if _, err := NewProducer[uint64](region, n); err != nil {
			t.Errorf("N=%d: producer rejoin failed: %v", n, err)
		}
		if _, err := NewConsumer[uint64](region, n); err != nil {
			t.Errorf("N=%d: consumer join failed: %v", n, err)
		}
	}
}

func TestConsumerAttachUninitialized(t *testing.T) {
	region := alignedRegion[uint64](t, 4)

	_, err := NewConsumer[uint64](region, 4)
	if !errors.Is(err, ErrUninitialized) {
		t.Fatalf("consumer on zeroed region: err = %v, want ErrUninitialized", err)
	}
	// The failed join must leave the region untouched for a later producer.
	if got := magicWord(region); got != 0 {
		t.Errorf("magic after failed join = %#x, want 0", got)
	}
}

func TestAttachCapacityMismatch(t *testing.T) {
	region := alignedRegion[uint64](t, 8)
	if _, err := NewProducer[uint64](region, 8); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	if _, err := NewConsumer[uint64](region, 4); !errors.Is(err, ErrCapacityMismatch) {
		t.Errorf("consumer N=4 on N=8 block: err = %v, want ErrCapacityMismatch", err)
	}
	if _, err := NewProducer[uint64](region, 4); !errors.Is(err, ErrCapacityMismatch) {
		t.Errorf("producer N=4 on N=8 block: err = %v, want ErrCapacityMismatch", err)
	}
}

func TestAttachCorruptMagic(t *testing.T) {
	region := alignedRegion[uint64](t, 4)
	binary.LittleEndian.PutUint64(region[ChannelLayout().Magic:], 0xDEADBEEF)

	if _, err := NewProducer[uint64](region, 4); !errors.Is(err, ErrCorruption) {
		t.Errorf("producer: err = %v, want ErrCorruption", err)
	}
	if _, err := NewConsumer[uint64](region, 4); !errors.Is(err, ErrCorruption) {
		t.Errorf("consumer: err = %v, want ErrCorruption", err)
	}
}

func TestAttachPreconditionsPanic(t *testing.T) {
	tests := []struct {
		name   string
		attach func()
	}{
		{
			name: "misaligned region",
			attach: func() {
				// Oversized so only the alignment precondition trips.
				size := int(RegionSize[uint64](8))
				buf := make([]byte, size+2*Alignment)
				off := 8
				if mis := uintptr(unsafe.Pointer(unsafe.SliceData(buf))) % Alignment; mis != 0 {
					off += Alignment - int(mis)
				}
				_, _ = NewProducer[uint64](buf[off:off+size], 8)
			},
		},
		{
			name: "capacity not a power of two",
			attach: func() {
				region := alignedRegion[uint64](t, 8)
				_, _ = NewProducer[uint64](region, 6)
			},
		},
		{
			name: "zero capacity",
			attach: func() {
				region := alignedRegion[uint64](t, 8)
				_, _ = NewConsumer[uint64](region, 0)
			},
		},
		{
			name: "region too small",
			attach: func() {
				region := alignedRegion[uint64](t, 4)
				_, _ = NewProducer[uint64](region, 8)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.attach()
		})
	}
}

func TestRegionSize(t *testing.T) {
	// Control block, alignment slack for uint64, then the slots.
	if got, want := RegionSize[uint64](8), uint64(768+7+64); got != want {
		t.Errorf("RegionSize[uint64](8) = %d, want %d", got, want)
	}
	if got, want := RegionSize[byte](1), uint64(768+1); got != want {
		t.Errorf("RegionSize[byte](1) = %d, want %d", got, want)
	}
}

func TestBurst(t *testing.T) {
	tests := []struct {
		n, want uint64
	}{
		{1, 1},
		{2, 1},
		{4, 1},
		{8, 2},
		{64, 16},
		{1024, 256},
	}
	for _, tt := range tests {
		if got := burst(tt.n); got != tt.want {
			t.Errorf("burst(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}
