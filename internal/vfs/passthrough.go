package vfs

import (
	"os"
	"path/filepath"
)

// PassthroughDirNode lists the physical directories beneath a path that has
// no ".git" component on it at all, hiding the mountpoint itself so the
// overlay never appears to recurse into its own mount target.
type PassthroughDirNode struct {
	baseNode
	ctx  *Context
	lead string
}

func newPassthroughDir(ctx *Context, lead string) *PassthroughDirNode {
	return &PassthroughDirNode{ctx: ctx, lead: lead}
}

func (n *PassthroughDirNode) Getattr() (Attr, error) {
	info, err := os.Stat(n.lead)
	if err != nil || !info.IsDir() {
		return Attr{}, ErrNotFound
	}
	return Attr{Kind: KindDir, Physical: info}, nil
}

func (n *PassthroughDirNode) Readdir() ([]string, error) {
	entries, err := os.ReadDir(n.lead)
	if err != nil {
		return nil, ErrNotFound
	}

	names := []string{".", ".."}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		abs, err := filepath.Abs(filepath.Join(n.lead, e.Name()))
		if err == nil && n.ctx.Mountpoint != "" && abs == n.ctx.Mountpoint {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// PassthroughFileNode backs an unmodified physical file: config or
// description under a repository root. Dispatch builds it for nothing
// else; plain files outside a repository are not exposed.
type PassthroughFileNode struct {
	baseNode
	ctx  *Context
	path string
}

func newPassthroughFile(ctx *Context, path string) *PassthroughFileNode {
	return &PassthroughFileNode{ctx: ctx, path: path}
}

func (n *PassthroughFileNode) Getattr() (Attr, error) {
	info, err := os.Stat(n.path)
	if err != nil {
		return Attr{}, ErrNotFound
	}
	return Attr{Kind: KindRegular, Size: info.Size(), Physical: info}, nil
}

func (n *PassthroughFileNode) Open(writeIntent bool) (Handle, error) {
	if writeIntent {
		return 0, ErrReadOnly
	}

	//nolint:gosec // G304: path is derived from the mount's own physical tree
	f, err := os.Open(n.path)
	if err != nil {
		return 0, ErrNotFound
	}
	return n.ctx.PassthroughDescriptors.Allocate(f), nil
}

func (n *PassthroughFileNode) Read(h Handle, offset int64, size int) ([]byte, error) {
	key, ok := n.ctx.PassthroughDescriptors.Lookup(h)
	if !ok {
		return nil, ErrNotFound
	}
	f := key.(*os.File)

	if _, err := f.Seek(offset, 0); err != nil {
		return nil, ErrNotFound
	}

	buf := make([]byte, size)
	n2, err := f.Read(buf)
	if err != nil && n2 == 0 {
		return []byte{}, nil
	}
	return buf[:n2], nil
}

func (n *PassthroughFileNode) Release(h Handle) error {
	key, _ := n.ctx.PassthroughDescriptors.Release(h)
	if f, ok := key.(*os.File); ok {
		_ = f.Close()
	}
	return nil
}
