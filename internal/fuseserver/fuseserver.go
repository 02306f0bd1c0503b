// Package fuseserver mounts the overlay described by internal/vfs onto a
// real mountpoint using go-fuse's inode-tree API. Every inode is a thin,
// stateless wrapper around a physical path: getattr, readdir, lookup, and
// readlink all re-dispatch through internal/vfs on every call rather than
// caching anything about the repository, matching the core's assumption
// that refs and objects are re-read fresh per operation.
package fuseserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/rybkr/legitfs/internal/vfs"
)

// Mount opens root and mounts the overlay at mountpoint. The returned
// server is already serving in the background; call Unmount or Wait to
// stop it. The returned Context is the same one every inode dispatches
// through, exposed so diagnostics tooling can read its descriptor and
// cache counters without participating in dispatch itself.
func Mount(root, mountpoint string, debug bool) (*fuse.Server, *vfs.Context, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve root: %w", err)
	}
	absMount, err := filepath.Abs(mountpoint)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve mountpoint: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("root is not a directory: %s", absRoot)
	}
	if mi, err := os.Stat(absMount); err != nil || !mi.IsDir() {
		return nil, nil, fmt.Errorf("mountpoint is not an existing directory: %s", absMount)
	}

	uid, gid := captureOwner(info)
	vctx := vfs.NewContext(absMount)
	rootNode := &overlayNode{
		ctx:       vctx,
		physical:  absRoot,
		uid:       uid,
		gid:       gid,
		mountTime: time.Now(),
	}

	opts := &fs.Options{
		MountOptions: fuse.MountOptions{
			Debug:      debug,
			Name:       "legitfs",
			FsName:     absRoot,
			AllowOther: false,
		},
	}

	server, err := fs.Mount(absMount, rootNode, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mount: %w", err)
	}

	slog.Info("mounted", "root", absRoot, "mountpoint", absMount)
	return server, vctx, nil
}

func captureOwner(info os.FileInfo) (uid, gid uint32) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return uint32(os.Getuid()), uint32(os.Getgid())
	}
	return st.Uid, st.Gid
}

// overlayNode is every inode in the mounted tree: its identity is the
// physical path it was dispatched for, nothing more.
type overlayNode struct {
	fs.Inode
	ctx       *vfs.Context
	physical  string
	uid, gid  uint32
	mountTime time.Time
}

var (
	_ fs.NodeGetattrer  = (*overlayNode)(nil)
	_ fs.NodeReaddirer  = (*overlayNode)(nil)
	_ fs.NodeLookuper   = (*overlayNode)(nil)
	_ fs.NodeReadlinker = (*overlayNode)(nil)
	_ fs.NodeOpener     = (*overlayNode)(nil)
)

func (n *overlayNode) dispatch() (vfs.Node, syscall.Errno) {
	node, err := vfs.Dispatch(n.ctx, vfs.SplitPath(n.physical))
	if err != nil {
		return nil, toErrno(err)
	}
	return node, 0
}

func (n *overlayNode) Getattr(_ context.Context, _ fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	node, errno := n.dispatch()
	if errno != 0 {
		return errno
	}
	attr, err := node.Getattr()
	if err != nil {
		return toErrno(err)
	}
	n.fillAttr(&out.Attr, attr)
	return 0
}

func (n *overlayNode) Readdir(_ context.Context) (fs.DirStream, syscall.Errno) {
	node, errno := n.dispatch()
	if errno != 0 {
		return nil, errno
	}
	names, err := node.Readdir()
	if err != nil {
		return nil, toErrno(err)
	}

	entries := make([]fuse.DirEntry, 0, len(names))
	for _, name := range names {
		if name == "." || name == ".." {
			continue
		}
		childPath := filepath.Join(n.physical, name)
		entries = append(entries, fuse.DirEntry{Name: name, Mode: n.childMode(childPath)})
	}
	return fs.NewListDirStream(entries), 0
}

func (n *overlayNode) childMode(childPath string) uint32 {
	node, err := vfs.Dispatch(n.ctx, vfs.SplitPath(childPath))
	if err != nil {
		return syscall.S_IFREG
	}
	attr, err := node.Getattr()
	if err != nil {
		return syscall.S_IFREG
	}
	return kindMode(attr.Kind)
}

func (n *overlayNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	childPath := filepath.Join(n.physical, name)
	node, err := vfs.Dispatch(n.ctx, vfs.SplitPath(childPath))
	if err != nil {
		return nil, toErrno(err)
	}
	attr, err := node.Getattr()
	if err != nil {
		return nil, toErrno(err)
	}
	n.fillAttr(&out.Attr, attr)

	child := &overlayNode{ctx: n.ctx, physical: childPath, uid: n.uid, gid: n.gid, mountTime: n.mountTime}
	return n.NewInode(ctx, child, fs.StableAttr{Mode: kindMode(attr.Kind)}), 0
}

func (n *overlayNode) Readlink(_ context.Context) ([]byte, syscall.Errno) {
	node, errno := n.dispatch()
	if errno != 0 {
		return nil, errno
	}
	target, err := node.Readlink()
	if err != nil {
		return nil, toErrno(err)
	}
	return []byte(target), 0
}

func (n *overlayNode) Open(_ context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if accessMode := flags & syscall.O_ACCMODE; accessMode == syscall.O_WRONLY || accessMode == syscall.O_RDWR {
		return nil, 0, syscall.EROFS
	}

	node, errno := n.dispatch()
	if errno != 0 {
		return nil, 0, errno
	}
	handle, err := node.Open(false)
	if err != nil {
		return nil, 0, toErrno(err)
	}
	return &overlayFile{node: node, handle: handle}, fuse.FOPEN_KEEP_CACHE, 0
}

// fillAttr bit-ORs the node's reported kind onto the mount's stat template,
// falling back to the physical file's own mode/size/times for passthrough
// nodes instead of the synthetic defaults.
func (n *overlayNode) fillAttr(out *fuse.Attr, attr vfs.Attr) {
	out.Uid = n.uid
	out.Gid = n.gid

	now := uint64(n.mountTime.Unix())
	out.Atime, out.Mtime, out.Ctime = now, now, now

	const statTemplateMode = 0o644

	switch attr.Kind {
	case vfs.KindDir:
		out.Mode = syscall.S_IFDIR | statTemplateMode
	case vfs.KindRegular:
		out.Mode = syscall.S_IFREG | statTemplateMode
		out.Size = uint64(attr.Size)
	case vfs.KindSymlink:
		out.Mode = syscall.S_IFLNK | statTemplateMode
	}

	if attr.Physical == nil {
		return
	}
	if st, ok := attr.Physical.Sys().(*syscall.Stat_t); ok {
		out.Mode = st.Mode
		out.Size = uint64(st.Size)
		out.Uid = st.Uid
		out.Gid = st.Gid
		out.Atime = uint64(st.Atim.Sec)
		out.Mtime = uint64(st.Mtim.Sec)
		out.Ctime = uint64(st.Ctim.Sec)
	}
}

func kindMode(k vfs.Kind) uint32 {
	switch k {
	case vfs.KindDir:
		return syscall.S_IFDIR
	case vfs.KindSymlink:
		return syscall.S_IFLNK
	default:
		return syscall.S_IFREG
	}
}

// overlayFile is the open-file handle returned by Open: a thin adapter
// from go-fuse's FileHandle interfaces onto the core's Read/Release.
type overlayFile struct {
	node   vfs.Node
	handle vfs.Handle
}

var (
	_ fs.FileReader   = (*overlayFile)(nil)
	_ fs.FileReleaser = (*overlayFile)(nil)
)

func (f *overlayFile) Read(_ context.Context, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	data, err := f.node.Read(f.handle, off, len(dest))
	if err != nil {
		return nil, toErrno(err)
	}
	return fuse.ReadResultData(data), 0
}

func (f *overlayFile) Release(_ context.Context) syscall.Errno {
	if err := f.node.Release(f.handle); err != nil {
		return toErrno(err)
	}
	return 0
}

func toErrno(err error) syscall.Errno {
	switch {
	case errors.Is(err, vfs.ErrNotFound):
		return syscall.ENOENT
	case errors.Is(err, vfs.ErrReadOnly):
		return syscall.EROFS
	case errors.Is(err, vfs.ErrNotSupported):
		return syscall.ENOSYS
	default:
		return syscall.EIO
	}
}
