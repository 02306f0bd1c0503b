package vfs

import (
	"strings"

	"github.com/rybkr/legitfs/internal/gitobj"
)

// dispatchObjectPath handles the "objects/<hash>[/<rest>]" branch of the
// node dispatcher: load the named object, then route by its type. A commit
// always yields a Commit node (with <rest> as its sub-view); a tree is
// walked component by component following <rest>, yielding a Tree node at
// a directory boundary or a Blob node at a file; any other object type
// (tag, or a bare top-level blob reached with a non-empty <rest>) is
// not-found.
func dispatchObjectPath(ctx *Context, repo *gitobj.Repository, objPath, fullSub string) (Node, error) {
	hashStr, rest, _ := strings.Cut(objPath, "/")
	if hashStr == "" {
		return nil, ErrNotFound
	}
	id := gitobj.Hash(hashStr)

	typeName, size, err := repo.ObjectInfo(id)
	if err != nil {
		return nil, ErrNotFound
	}

	switch typeName {
	case "commit":
		commit, err := repo.GetCommit(id)
		if err != nil {
			return nil, ErrNotFound
		}
		return newCommitNode(repo, commit, rest, fullSub), nil

	case "tree":
		tree, err := repo.GetTree(id)
		if err != nil {
			return nil, ErrNotFound
		}
		return resolveTreePath(ctx, repo, tree, rest)

	case "blob":
		if rest != "" {
			return nil, ErrNotFound
		}
		return newBlobNode(ctx, repo, id, int64(size)), nil

	default:
		// Tag objects are resolved by Repository.ReadObject but the
		// overlay exposes no sub-view for them.
		return nil, ErrNotFound
	}
}

// resolveTreePath walks rest's path components inside tree, returning a
// Tree node when the walk ends on a tree (or rest is empty) and a Blob
// node when it ends on a blob. Submodule entries and unknown entry types
// are not-found; there is nothing beneath a blob to descend into.
func resolveTreePath(ctx *Context, repo *gitobj.Repository, tree *gitobj.Tree, rest string) (Node, error) {
	if rest == "" {
		return newTreeNode(tree), nil
	}

	components := strings.Split(rest, "/")
	cur := tree

	for i, comp := range components {
		entry, ok := findTreeEntry(cur, comp)
		if !ok {
			return nil, ErrNotFound
		}
		last := i == len(components)-1

		switch entry.Type {
		case "tree":
			next, err := repo.GetTree(entry.ID)
			if err != nil {
				return nil, ErrNotFound
			}
			if last {
				return newTreeNode(next), nil
			}
			cur = next

		case "blob":
			if !last {
				return nil, ErrNotFound
			}
			_, size, err := repo.ObjectInfo(entry.ID)
			if err != nil {
				return nil, ErrNotFound
			}
			return newBlobNode(ctx, repo, entry.ID, int64(size)), nil

		default:
			return nil, ErrNotFound
		}
	}

	return nil, ErrNotFound
}

func findTreeEntry(tree *gitobj.Tree, name string) (gitobj.TreeEntry, bool) {
	for _, e := range tree.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return gitobj.TreeEntry{}, false
}
