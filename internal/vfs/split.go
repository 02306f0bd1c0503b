// Package vfs implements the read-only overlay: splitting a physical path
// into a passthrough lead and a synthetic remainder, dispatching that
// remainder to the virtual node it denotes, and backing the small amount of
// per-handle state (open blobs, open passthrough files) the FUSE surface
// needs for read/release.
package vfs

import (
	"path"
	"strings"
)

// gitDirSuffix names the directory component this overlay treats as a
// repository boundary.
const gitDirSuffix = ".git"

// Split divides a physical path into (lead, sub). lead is the physical
// directory path up to and including the first ".git" component; sub is
// the synthetic remainder beneath it. SubPresent reports whether sub is
// present at all — an empty-but-present sub denotes the ".git" directory
// itself, distinct from no ".git" component on the path at all.
type Split struct {
	Lead       string
	Sub        string
	SubPresent bool
}

// SplitPath implements the path splitter: strip trailing separators, find
// the first path component ending in ".git", and divide the path there.
// Trailing slashes are idempotent and absolute/relative inputs are treated
// identically apart from whether Lead retains a leading separator.
func SplitPath(p string) Split {
	trimmed := strings.TrimRight(p, "/")
	if trimmed == "" {
		return Split{Lead: "/", SubPresent: false}
	}

	leadingSlash := strings.HasPrefix(trimmed, "/")
	components := strings.Split(strings.TrimPrefix(trimmed, "/"), "/")

	gitIdx := -1
	for i, c := range components {
		if strings.HasSuffix(c, gitDirSuffix) {
			gitIdx = i
			break
		}
	}

	if gitIdx == -1 {
		return Split{Lead: trimmed, SubPresent: false}
	}

	leadComponents := components[:gitIdx+1]
	subComponents := components[gitIdx+1:]

	lead := strings.Join(leadComponents, "/")
	if leadingSlash {
		lead = "/" + lead
	}

	return Split{
		Lead:       lead,
		Sub:        strings.Join(subComponents, "/"),
		SubPresent: true,
	}
}

// Join reassembles a synthetic path from a split's lead and a sub-path
// fragment, for building child paths during readdir / node construction.
func Join(lead, sub string) string {
	if sub == "" {
		return lead
	}
	return path.Join(lead, sub)
}
