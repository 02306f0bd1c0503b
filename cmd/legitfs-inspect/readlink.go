package main

import (
	"fmt"
	"os"

	"github.com/rybkr/legitfs/internal/vfs"
)

func runReadlink(vctx *vfs.Context, root string, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: legitfs-inspect readlink <path>")
		return 1
	}

	node, err := dispatch(vctx, root, args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return exitCodeFor(err)
	}

	target, err := node.Readlink()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return exitCodeFor(err)
	}

	fmt.Println(target)
	return 0
}
