package vfs

import "github.com/rybkr/legitfs/internal/gitobj"

// TreeNode exposes a tree object's entries as directory children, exactly
// as named in the tree.
type TreeNode struct {
	baseNode
	tree *gitobj.Tree
}

func newTreeNode(tree *gitobj.Tree) *TreeNode {
	return &TreeNode{tree: tree}
}

func (n *TreeNode) Getattr() (Attr, error) {
	return Attr{Kind: KindDir}, nil
}

func (n *TreeNode) Readdir() ([]string, error) {
	names := make([]string, 0, len(n.tree.Entries)+2)
	names = append(names, ".", "..")
	for _, e := range n.tree.Entries {
		names = append(names, e.Name)
	}
	return names, nil
}
