package vfs

import (
	"os"
	"path/filepath"

	"github.com/rybkr/legitfs/internal/gitobj"
)

// RepoRootNode is the ".git" directory itself: a synthetic listing of
// HEAD, config, description, refs, and objects layered over the real
// directory's stat.
type RepoRootNode struct {
	baseNode
	repo *gitobj.Repository
	lead string
}

func newRepoRoot(repo *gitobj.Repository, lead string) *RepoRootNode {
	return &RepoRootNode{repo: repo, lead: lead}
}

func (n *RepoRootNode) Getattr() (Attr, error) {
	info, err := os.Stat(n.lead)
	if err != nil {
		return Attr{}, ErrNotFound
	}
	return Attr{Kind: KindDir, Physical: info}, nil
}

func (n *RepoRootNode) Readdir() ([]string, error) {
	names := []string{".", "..", "refs", "objects"}

	if _, ok := n.repo.Ref("HEAD"); ok {
		names = append(names, "HEAD")
	}
	for _, name := range []string{"config", "description"} {
		if info, err := os.Stat(filepath.Join(n.lead, name)); err == nil && !info.IsDir() {
			names = append(names, name)
		}
	}
	return names, nil
}
