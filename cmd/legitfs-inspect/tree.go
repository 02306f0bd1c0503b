package main

import (
	"fmt"
	"os"
	"path"

	"github.com/rybkr/legitfs/internal/termcolor"
	"github.com/rybkr/legitfs/internal/vfs"
)

func runTree(vctx *vfs.Context, root string, args []string, cw *termcolor.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: legitfs-inspect tree <path>")
		return 1
	}

	if err := walkTree(vctx, root, args[0], cw); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return exitCodeFor(err)
	}
	return 0
}

func walkTree(vctx *vfs.Context, root, at string, cw *termcolor.Writer) error {
	node, err := dispatch(vctx, root, at)
	if err != nil {
		return err
	}

	attr, err := node.Getattr()
	if err != nil {
		return err
	}

	switch attr.Kind {
	case vfs.KindDir:
		fmt.Printf("%s/\n", cw.BoldCyan(at))
		names, err := node.Readdir()
		if err != nil {
			return err
		}
		for _, name := range names {
			if name == "." || name == ".." {
				continue
			}
			if err := walkTree(vctx, root, path.Join(at, name), cw); err != nil {
				return err
			}
		}
	case vfs.KindSymlink:
		target, err := node.Readlink()
		if err != nil {
			return err
		}
		fmt.Printf("%s -> %s\n", at, cw.Yellow(target))
	default:
		fmt.Printf("%s (%d bytes)\n", at, attr.Size)
	}
	return nil
}
