package main

import (
	"errors"
	"path/filepath"

	"github.com/rybkr/legitfs/internal/vfs"
)

// dispatch resolves a path given relative to root through the same
// dispatcher the FUSE mount uses, without involving a kernel FUSE session.
func dispatch(vctx *vfs.Context, root, path string) (vfs.Node, error) {
	physical := filepath.Join(root, path)
	split := vfs.SplitPath(physical)
	return vfs.Dispatch(vctx, split)
}

func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, vfs.ErrNotFound):
		return 1
	case errors.Is(err, vfs.ErrNotSupported):
		return 1
	default:
		return 128
	}
}
