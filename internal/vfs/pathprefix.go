package vfs

import "strings"

// dirPrefix computes the "../" run a relative symlink target needs to
// climb back out to the ".git" directory from the given synthetic sub-path.
// It counts separators in sub directly rather than walking the constructed
// target string, which is what keeps targets valid at any mount depth.
func dirPrefix(sub string) string {
	return strings.Repeat("../", strings.Count(sub, "/"))
}
