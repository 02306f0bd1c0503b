package main

import (
	"fmt"
	"os"

	"github.com/rybkr/legitfs/internal/vfs"
)

func runStat(vctx *vfs.Context, root string, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: legitfs-inspect stat <path>")
		return 1
	}

	node, err := dispatch(vctx, root, args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return exitCodeFor(err)
	}

	attr, err := node.Getattr()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return exitCodeFor(err)
	}

	fmt.Printf("kind: %s\n", kindName(attr.Kind))
	if attr.Kind == vfs.KindRegular {
		fmt.Printf("size: %d\n", attr.Size)
	}
	if attr.Physical != nil {
		fmt.Printf("physical: yes (mode %s)\n", attr.Physical.Mode())
	}
	return 0
}

func kindName(k vfs.Kind) string {
	switch k {
	case vfs.KindDir:
		return "directory"
	case vfs.KindSymlink:
		return "symlink"
	case vfs.KindRegular:
		return "regular"
	default:
		return "unknown"
	}
}
