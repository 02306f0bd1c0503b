package vfs

// Node is the single operation vtable every virtual node variant
// implements. A variant that does not support an operation inherits
// baseNode's default, which reports not-supported.
type Node interface {
	Getattr() (Attr, error)
	Readdir() ([]string, error)
	Readlink() (string, error)
	Open(writeIntent bool) (Handle, error)
	Read(h Handle, offset int64, size int) ([]byte, error)
	Release(h Handle) error
}

// baseNode supplies the not-supported default for every operation; each
// node variant embeds it and overrides only what it implements.
type baseNode struct{}

func (baseNode) Getattr() (Attr, error) { return Attr{}, ErrNotSupported }

func (baseNode) Readdir() ([]string, error) { return nil, ErrNotSupported }

func (baseNode) Readlink() (string, error) { return "", ErrNotSupported }

func (baseNode) Open(writeIntent bool) (Handle, error) { return 0, ErrNotSupported }

func (baseNode) Read(h Handle, offset int64, size int) ([]byte, error) {
	return nil, ErrNotSupported
}

func (baseNode) Release(h Handle) error { return ErrNotSupported }
