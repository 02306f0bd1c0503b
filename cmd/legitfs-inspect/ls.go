package main

import (
	"fmt"
	"os"

	"github.com/rybkr/legitfs/internal/vfs"
)

func runLs(vctx *vfs.Context, root string, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: legitfs-inspect ls <path>")
		return 1
	}

	node, err := dispatch(vctx, root, args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return exitCodeFor(err)
	}

	names, err := node.Readdir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return exitCodeFor(err)
	}

	for _, name := range names {
		if name == "." || name == ".." {
			continue
		}
		fmt.Println(name)
	}
	return 0
}
