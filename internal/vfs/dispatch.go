package vfs

import (
	"path/filepath"
	"strings"

	"github.com/rybkr/legitfs/internal/gitobj"
)

// Dispatch turns a path split into the virtual node that answers for it,
// per the node dispatcher: an absent sub is a plain passthrough directory;
// anything else requires lead to be a valid Git directory, opened fresh for
// this call, and routes on sub's shape from there. A lead that fails to
// open as a repository is not-found, not a passthrough fallback — once a
// path has a ".git" component, the overlay owns everything beneath it.
func Dispatch(ctx *Context, split Split) (Node, error) {
	if !split.SubPresent {
		return newPassthroughDir(ctx, split.Lead), nil
	}

	repo, err := gitobj.Open(split.Lead)
	if err != nil {
		return nil, ErrNotFound
	}

	sub := split.Sub
	switch {
	case sub == "":
		return newRepoRoot(repo, split.Lead), nil

	case sub == "config" || sub == "description":
		return newPassthroughFile(ctx, filepath.Join(split.Lead, sub)), nil

	case sub == "HEAD":
		return newRefSymlink(repo, "HEAD"), nil

	case sub == "objects":
		return newObjectsIndex(repo), nil

	case strings.HasPrefix(sub, "objects/"):
		return dispatchObjectPath(ctx, repo, strings.TrimPrefix(sub, "objects/"), sub)

	case sub == "refs" || strings.HasPrefix(sub, "refs/"):
		if isRefName(repo, sub) {
			return newRefSymlink(repo, sub), nil
		}
		return newRefsDir(repo, sub), nil

	default:
		return nil, ErrNotFound
	}
}
