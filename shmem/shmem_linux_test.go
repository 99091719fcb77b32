// shmem_linux_test.go: Shared-memory provisioning tests
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

//go:build linux

package shmem

import (
	"fmt"
	"os"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// segAddr returns the mapping's base address.
func segAddr(s *Segment) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(s.Data)))
}

// testID returns a region id unique to this test process.
func testID(name string) string {
	return fmt.Sprintf("eurus-test-%s-%d", name, os.Getpid())
}

func TestOpenCreatesZeroedRegion(t *testing.T) {
	id := testID("create")
	t.Cleanup(func() { _ = Unlink(id, StandardPage) })

	seg, err := Open(Config{ID: id, Size: 4096})
	require.NoError(t, err)
	defer func() { _ = seg.Close() }()

	require.GreaterOrEqual(t, len(seg.Data), 4096)
	for i, b := range seg.Data {
		if b != 0 {
			t.Fatalf("byte %d = %#x, want 0", i, b)
		}
	}
	assert.Equal(t, "/dev/shm/"+id, seg.Path())
}

func TestOpenSharesExistingRegion(t *testing.T) {
	id := testID("share")
	t.Cleanup(func() { _ = Unlink(id, StandardPage) })

	first, err := Open(Config{ID: id, Size: 4096})
	require.NoError(t, err)
	defer func() { _ = first.Close() }()

	copy(first.Data, []byte("temporal"))

	second, err := Open(Config{ID: id, Size: 4096})
	require.NoError(t, err)
	defer func() { _ = second.Close() }()

	assert.Equal(t, []byte("temporal"), second.Data[:8])

	// Writes propagate both ways through the shared mapping.
	second.Data[0] = 'T'
	assert.Equal(t, byte('T'), first.Data[0])
}

func TestSegmentZero(t *testing.T) {
	id := testID("zero")
	t.Cleanup(func() { _ = Unlink(id, StandardPage) })

	seg, err := Open(Config{ID: id, Size: 4096})
	require.NoError(t, err)
	defer func() { _ = seg.Close() }()

	copy(seg.Data, []byte("stale channel state"))
	seg.Zero()
	for i, b := range seg.Data[:32] {
		assert.Zerof(t, b, "byte %d", i)
	}
}

func TestOpenRejectsBadConfig(t *testing.T) {
	_, err := Open(Config{ID: "", Size: 4096})
	assert.Error(t, err)

	_, err = Open(Config{ID: "has/slash", Size: 4096})
	assert.Error(t, err)

	_, err = Open(Config{ID: testID("nosize"), Size: 0})
	assert.Error(t, err)
}

func TestUnlink(t *testing.T) {
	id := testID("unlink")

	seg, err := Open(Config{ID: id, Size: 4096})
	require.NoError(t, err)
	require.NoError(t, seg.Close())

	require.NoError(t, Unlink(id, StandardPage))
	_, err = os.Stat("/dev/shm/" + id)
	assert.True(t, os.IsNotExist(err))

	// Unlinking an absent region is not an error.
	assert.NoError(t, Unlink(id, StandardPage))
}

func TestAlignmentSuitsChannelCore(t *testing.T) {
	id := testID("align")
	t.Cleanup(func() { _ = Unlink(id, StandardPage) })

	seg, err := Open(Config{ID: id, Size: 4096})
	require.NoError(t, err)
	defer func() { _ = seg.Close() }()

	// mmap returns page-aligned memory, which satisfies the channel's
	// 128-byte region precondition.
	assert.Zero(t, segAddr(seg)%128)
}
