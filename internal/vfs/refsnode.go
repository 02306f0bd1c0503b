package vfs

import (
	"strings"

	"github.com/rybkr/legitfs/internal/gitobj"
)

// RefsDirNode lists the ref-name components directly beneath sub, which is
// either the literal "refs" or some deeper prefix such as "refs/heads".
type RefsDirNode struct {
	baseNode
	repo *gitobj.Repository
	sub  string
}

func newRefsDir(repo *gitobj.Repository, sub string) *RefsDirNode {
	return &RefsDirNode{repo: repo, sub: sub}
}

func (n *RefsDirNode) Getattr() (Attr, error) {
	return Attr{Kind: KindDir}, nil
}

func (n *RefsDirNode) Readdir() ([]string, error) {
	prefix := n.sub + "/"
	seen := map[string]struct{}{".": {}, "..": {}}
	names := []string{".", ".."}

	for _, name := range n.repo.RefNames() {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		rest := strings.TrimPrefix(name, prefix)
		component := rest
		if idx := strings.Index(rest, "/"); idx >= 0 {
			component = rest[:idx]
		}
		if _, ok := seen[component]; ok {
			continue
		}
		seen[component] = struct{}{}
		names = append(names, component)
	}
	return names, nil
}

// isRefName reports whether sub names a ref directly (including "HEAD"),
// the condition under which the node dispatcher redirects to a symlink
// instead of a refs directory.
func isRefName(repo *gitobj.Repository, sub string) bool {
	_, ok := repo.Ref(sub)
	return ok
}

// RefSymlinkNode resolves a ref name — "HEAD" or a full "refs/..." path —
// to its relative symlink target.
type RefSymlinkNode struct {
	baseNode
	repoRef *gitobj.Repository
	refName string
}

func newRefSymlink(repo *gitobj.Repository, refName string) *RefSymlinkNode {
	return &RefSymlinkNode{repoRef: repo, refName: refName}
}

func (n *RefSymlinkNode) Getattr() (Attr, error) {
	if _, ok := n.repoRef.Ref(n.refName); !ok {
		return Attr{}, ErrNotFound
	}
	return Attr{Kind: KindSymlink}, nil
}

func (n *RefSymlinkNode) Readlink() (string, error) {
	value, ok := n.repoRef.Ref(n.refName)
	if !ok {
		return "", ErrNotFound
	}

	prefix := dirPrefix(n.refName)
	if value.IsSymbolic() {
		return prefix + value.Symbolic, nil
	}
	return prefix + "objects/" + string(value.Hash), nil
}
