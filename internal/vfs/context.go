package vfs

import "sync"

// Context is the state the FUSE surface owns and hands to every node it
// constructs: the two Descriptor Managers, the Blob Data Cache, the shared
// data lock serializing blob open/release, and the mount's absolute
// mountpoint (excluded from passthrough directory listings so the mount
// target never appears to recurse into itself).
type Context struct {
	Mountpoint string

	BlobDescriptors        *DescriptorManager
	PassthroughDescriptors *DescriptorManager
	BlobCache              *BlobCache

	// dataLock is taken around the whole of a blob's open and release,
	// in addition to the blob Descriptor Manager's own internal lock,
	// so that a blob's first open (cache populate) and last release
	// (cache evict) never interleave with each other.
	dataLock sync.Mutex
}

// NewContext builds a Context with fresh, empty state.
func NewContext(mountpoint string) *Context {
	return &Context{
		Mountpoint:             mountpoint,
		BlobDescriptors:        NewDescriptorManager(),
		PassthroughDescriptors: NewDescriptorManager(),
		BlobCache:              NewBlobCache(),
	}
}
