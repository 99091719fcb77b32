// Package shmem provisions the shared backing regions eurus channels live
// in. A region is a file-backed mapping shared between the two endpoint
// processes: /dev/shm with standard pages, or a hugetlbfs mount for 2MB and
// 1GB pages. Regions are zero-filled on first creation, which is what the
// channel's attach protocol relies on.
//
// The channel core never calls into this package; it only requires a
// 128-byte-aligned, sufficiently large, initially zeroed region, and any
// mapping that satisfies that contract works.
package shmem
