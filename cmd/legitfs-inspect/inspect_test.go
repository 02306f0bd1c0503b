package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rybkr/legitfs/internal/vfs"
)

func TestDispatch_PassthroughRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	vctx := vfs.NewContext(root)
	node, err := dispatch(vctx, root, ".")
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	names, err := node.Readdir()
	if err != nil {
		t.Fatalf("Readdir: %v", err)
	}

	found := false
	for _, n := range names {
		if n == "sub" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected to find sub in %v", names)
	}
}

func TestExitCodeFor(t *testing.T) {
	if exitCodeFor(vfs.ErrNotFound) != 1 {
		t.Error("ErrNotFound should exit 1")
	}
	if exitCodeFor(vfs.ErrReadOnly) != 128 {
		t.Error("ErrReadOnly should exit 128")
	}
}
