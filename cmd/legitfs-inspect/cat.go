package main

import (
	"fmt"
	"os"

	"github.com/rybkr/legitfs/internal/vfs"
)

const catChunkSize = 64 * 1024

func runCat(vctx *vfs.Context, root string, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: legitfs-inspect cat <path>")
		return 1
	}

	node, err := dispatch(vctx, root, args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return exitCodeFor(err)
	}

	handle, err := node.Open(false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return exitCodeFor(err)
	}
	defer node.Release(handle)

	var offset int64
	for {
		chunk, err := node.Read(handle, offset, catChunkSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			return exitCodeFor(err)
		}
		if len(chunk) == 0 {
			return 0
		}
		_, _ = os.Stdout.Write(chunk)
		offset += int64(len(chunk))
	}
}
