package vfs

import "errors"

// The core signals exactly three failure kinds; the FUSE surface is the
// only place that knows how to turn these into a syscall.Errno.
var (
	// ErrNotFound covers unrecognized sub-paths, missing objects, missing
	// refs, out-of-range parent indices, and stats of non-existent paths.
	ErrNotFound = errors.New("vfs: not found")
	// ErrReadOnly is returned by Open when the caller requested write intent.
	ErrReadOnly = errors.New("vfs: read-only filesystem")
	// ErrNotSupported is returned by operations a node variant does not implement.
	ErrNotSupported = errors.New("vfs: operation not supported")
)
