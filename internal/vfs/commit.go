package vfs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rybkr/legitfs/internal/gitobj"
)

// CommitNode represents a single path beneath "objects/<commit-id>": csub
// is the sub-view requested ("", "tree", "parent", "parents", "parents/NN",
// "history", or "history/NNNNNN_<hash>"); fullSub is the complete synthetic
// sub-path this node was dispatched for, used to size the "../" prefix on
// any relative symlink target it produces.
type CommitNode struct {
	baseNode
	repo    *gitobj.Repository
	commit  *gitobj.Commit
	csub    string
	fullSub string
}

func newCommitNode(repo *gitobj.Repository, commit *gitobj.Commit, csub, fullSub string) *CommitNode {
	return &CommitNode{repo: repo, commit: commit, csub: csub, fullSub: fullSub}
}

func (n *CommitNode) Getattr() (Attr, error) {
	switch {
	case n.csub == "", n.csub == "history", n.csub == "parents":
		return Attr{Kind: KindDir}, nil
	case n.csub == "tree", n.csub == "parent":
		return Attr{Kind: KindSymlink}, nil
	case strings.HasPrefix(n.csub, "history/"), strings.HasPrefix(n.csub, "parents/"):
		return Attr{Kind: KindSymlink}, nil
	default:
		return Attr{}, ErrNotFound
	}
}

func (n *CommitNode) Readdir() ([]string, error) {
	switch n.csub {
	case "":
		names := []string{".", "..", "tree"}
		if len(n.commit.Parents) > 0 {
			names = append(names, "parent", "parents", "history")
		}
		return names, nil

	case "parents":
		names := []string{".", ".."}
		for i := range n.commit.Parents {
			names = append(names, fmt.Sprintf("%02d", i))
		}
		return names, nil

	case "history":
		names := []string{".", ".."}
		if len(n.commit.Parents) == 0 {
			return names, nil
		}

		id := n.commit.Parents[0]
		for i := 0; ; i++ {
			names = append(names, fmt.Sprintf("%06d_%s", i, id))

			next, err := n.repo.GetCommit(id)
			if err != nil || len(next.Parents) == 0 {
				break
			}
			id = next.Parents[0]
		}
		return names, nil

	default:
		return nil, ErrNotFound
	}
}

func (n *CommitNode) Readlink() (string, error) {
	prefix := dirPrefix(n.fullSub)

	switch {
	case n.csub == "tree":
		return prefix + "objects/" + string(n.commit.Tree), nil

	case n.csub == "parent":
		return "parents/00", nil

	case strings.HasPrefix(n.csub, "parents/"):
		idx, err := strconv.Atoi(strings.TrimPrefix(n.csub, "parents/"))
		if err != nil || idx < 0 || idx >= len(n.commit.Parents) {
			return "", ErrNotFound
		}
		return prefix + "objects/" + string(n.commit.Parents[idx]), nil

	case strings.HasPrefix(n.csub, "history/"):
		entry := strings.TrimPrefix(n.csub, "history/")
		parts := strings.SplitN(entry, "_", 2)
		if len(parts) != 2 || parts[1] == "" {
			return "", ErrNotFound
		}
		return prefix + "objects/" + parts[1], nil

	default:
		return "", ErrNotFound
	}
}
