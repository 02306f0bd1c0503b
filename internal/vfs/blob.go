package vfs

import "github.com/rybkr/legitfs/internal/gitobj"

// BlobNode is the terminal regular-file node for a blob object: its
// content is the blob's raw bytes, loaded into the shared Blob Data Cache
// on first open and evicted on final release.
type BlobNode struct {
	baseNode
	ctx  *Context
	repo *gitobj.Repository
	id   gitobj.Hash
	size int64
}

func newBlobNode(ctx *Context, repo *gitobj.Repository, id gitobj.Hash, size int64) *BlobNode {
	return &BlobNode{ctx: ctx, repo: repo, id: id, size: size}
}

func (n *BlobNode) Getattr() (Attr, error) {
	return Attr{Kind: KindRegular, Size: n.size}, nil
}

func (n *BlobNode) Open(writeIntent bool) (Handle, error) {
	if writeIntent {
		return 0, ErrReadOnly
	}

	key := string(n.id)

	n.ctx.dataLock.Lock()
	defer n.ctx.dataLock.Unlock()

	if _, ok := n.ctx.BlobCache.Get(key); !ok {
		data, err := n.repo.GetBlob(n.id)
		if err != nil {
			return 0, ErrNotFound
		}
		n.ctx.BlobCache.Put(key, data)
	}

	return n.ctx.BlobDescriptors.Allocate(key), nil
}

func (n *BlobNode) Read(h Handle, offset int64, size int) ([]byte, error) {
	key, ok := n.ctx.BlobDescriptors.Lookup(h)
	if !ok {
		return nil, ErrNotFound
	}

	data, ok := n.ctx.BlobCache.Get(key.(string))
	if !ok {
		return nil, ErrNotFound
	}

	if offset < 0 || offset >= int64(len(data)) {
		return []byte{}, nil
	}
	end := offset + int64(size)
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return data[offset:end], nil
}

func (n *BlobNode) Release(h Handle) error {
	n.ctx.dataLock.Lock()
	defer n.ctx.dataLock.Unlock()

	key, final := n.ctx.BlobDescriptors.Release(h)
	if !final {
		return nil
	}
	id, ok := key.(string)
	if !ok {
		return nil
	}
	// Another open handle on the same blob keeps its bytes cached.
	m := n.ctx.BlobDescriptors
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range m.keys {
		if k == id {
			return nil
		}
	}
	n.ctx.BlobCache.Delete(id)
	return nil
}
