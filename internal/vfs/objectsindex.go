package vfs

import "github.com/rybkr/legitfs/internal/gitobj"

// ObjectsIndexNode is the flat listing of every object id the store holds.
type ObjectsIndexNode struct {
	baseNode
	repo *gitobj.Repository
}

func newObjectsIndex(repo *gitobj.Repository) *ObjectsIndexNode {
	return &ObjectsIndexNode{repo: repo}
}

func (n *ObjectsIndexNode) Getattr() (Attr, error) {
	return Attr{Kind: KindDir}, nil
}

func (n *ObjectsIndexNode) Readdir() ([]string, error) {
	ids, err := n.repo.ObjectIDs()
	if err != nil {
		return nil, ErrNotFound
	}

	names := make([]string, 0, len(ids)+2)
	names = append(names, ".", "..")
	for _, id := range ids {
		names = append(names, string(id))
	}
	return names, nil
}
