// shmem_linux.go: POSIX and hugetlbfs shared-memory provisioning
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

//go:build linux

package shmem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

const (
	shmDir      = "/dev/shm"
	hugetlbDir  = "/mnt/hugepages"
	giganticDir = "/mnt/gigantic"
)

// Config describes a shared region to open or create.
type Config struct {
	// ID names the region. It becomes a filename under /dev/shm or the
	// hugetlbfs mount, so it must not contain path separators.
	ID string

	// Size is the requested region size in bytes. The mapped size is Size
	// rounded up to the page size.
	Size uint64

	// PageSize selects the backing pages. Zero means StandardPage.
	PageSize PageSize

	// Mode is the file permission for a newly created region
	// (default: 0600).
	Mode os.FileMode

	// RetryCount is the number of attempts for the open (default: 3).
	// Creation can fail transiently on hugetlbfs while pages are being
	// reserved.
	RetryCount int

	// RetryDelay is the wait between attempts (default: 10ms).
	RetryDelay time.Duration
}

// Segment is a mapped shared-memory region. Data aliases the mapping
// directly; it is zero-filled by the kernel on first creation.
type Segment struct {
	Data []byte

	fd   int
	path string
}

// Open maps the shared region described by cfg, creating it if it does not
// exist. The mapping is page-aligned, which satisfies the 128-byte
// alignment the channel core requires.
func Open(cfg Config) (*Segment, error) {
	if cfg.ID == "" {
		return nil, errors.New("shmem: empty region id")
	}
	if filepath.Base(cfg.ID) != cfg.ID {
		return nil, fmt.Errorf("shmem: region id %q must not contain path separators", cfg.ID)
	}
	if cfg.Size == 0 {
		return nil, errors.New("shmem: zero region size")
	}

	page := cfg.PageSize
	if page == 0 {
		page = StandardPage
	}
	mode := cfg.Mode
	if mode == 0 {
		mode = 0600
	}

	path := regionPath(cfg.ID, page)
	size := AlignToPageSize(cfg.Size, page)

	var fd int
	err := retry(func() error {
		var err error
		fd, err = unix.Open(path, unix.O_RDWR|unix.O_CREAT, uint32(mode))
		return err
	}, cfg.RetryCount, cfg.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("shmem: open %s: %w", path, err)
	}

	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("shmem: ftruncate %s to %d: %w", path, size, err)
	}

	data, err := unix.Mmap(fd, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, mmapFlags(page))
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("shmem: mmap %s: %w", path, err)
	}

	return &Segment{Data: data, fd: fd, path: path}, nil
}

// Close unmaps the region and closes its descriptor. The region itself
// stays behind for other attachers; use Unlink to remove it.
func (s *Segment) Close() error {
	var first error
	if s.Data != nil {
		if err := unix.Munmap(s.Data); err != nil {
			first = err
		}
		s.Data = nil
	}
	if s.fd >= 0 {
		if err := unix.Close(s.fd); err != nil && first == nil {
			first = err
		}
		s.fd = -1
	}
	return first
}

// Path returns the filesystem path backing the region.
func (s *Segment) Path() string {
	return s.path
}

// Zero clears the mapped bytes. A producer reusing a region from a
// previous run zeroes it before initializing a fresh channel.
func (s *Segment) Zero() {
	clear(s.Data)
}

// Unlink removes the named region from its backing filesystem. Existing
// mappings stay valid until unmapped.
func Unlink(id string, page PageSize) error {
	if page == 0 {
		page = StandardPage
	}
	err := unix.Unlink(regionPath(id, page))
	if err != nil && !errors.Is(err, unix.ENOENT) {
		return fmt.Errorf("shmem: unlink %s: %w", id, err)
	}
	return nil
}

// regionPath maps an id and page size to the backing file path.
func regionPath(id string, page PageSize) string {
	switch page {
	case HugePage2MB:
		return filepath.Join(hugetlbDir, id)
	case GiganticPage1GB:
		return filepath.Join(giganticDir, id)
	default:
		return filepath.Join(shmDir, id)
	}
}

// mmapFlags returns the mmap flags for the selected page kind.
func mmapFlags(page PageSize) int {
	flags := unix.MAP_SHARED
	switch page {
	case HugePage2MB:
		flags |= unix.MAP_HUGETLB
	case GiganticPage1GB:
		flags |= unix.MAP_HUGETLB | unix.MAP_HUGE_1GB
	}
	return flags
}

// retry runs op with bounded retries for transient failures.
func retry(op func() error, count int, delay time.Duration) error {
	if count <= 0 {
		count = 3
	}
	if delay <= 0 {
		delay = 10 * time.Millisecond
	}

	var lastErr error
	for i := 0; i < count; i++ {
		if lastErr = op(); lastErr == nil {
			return nil
		}
		if i < count-1 {
			time.Sleep(delay)
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", count, lastErr)
}
