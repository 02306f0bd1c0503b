package vfs

import (
	"bytes"
	"compress/zlib"
	"crypto/sha1" //nolint:gosec // G505/G401: SHA-1 is the Git object-id algorithm, not used for security here
	"encoding/hex"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// writeLooseObject writes a Git loose object of the given type and body
// under gitDir/objects, returning its hex object id.
func writeLooseObject(t *testing.T, gitDir, objType string, body []byte) string {
	t.Helper()

	header := objType + " " + strconv.Itoa(len(body)) + "\x00"
	full := append([]byte(header), body...)

	sum := sha1.Sum(full) //nolint:gosec // G401: Git object id, not a security hash
	id := hex.EncodeToString(sum[:])

	var compressed bytes.Buffer
	w := zlib.NewWriter(&compressed)
	if _, err := w.Write(full); err != nil {
		t.Fatalf("zlib write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zlib close: %v", err)
	}

	dir := filepath.Join(gitDir, "objects", id[:2])
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, id[2:]), compressed.Bytes(), 0o644); err != nil {
		t.Fatalf("write object: %v", err)
	}

	return id
}

func idBytes(t *testing.T, id string) []byte {
	t.Helper()
	b, err := hex.DecodeString(id)
	if err != nil || len(b) != 20 {
		t.Fatalf("bad hash %q: %v", id, err)
	}
	return b
}

// newFixtureGitDir builds a minimal valid .git directory under parent,
// with HEAD symbolic to refs/heads/master and a config/description pair
// present as ordinary passthrough files.
func newFixtureGitDir(t *testing.T, parent string) string {
	t.Helper()
	gitDir := filepath.Join(parent, ".git")

	for _, dir := range []string{"objects", "refs/heads", "refs/tags"} {
		if err := os.MkdirAll(filepath.Join(gitDir, dir), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	if err := os.WriteFile(filepath.Join(gitDir, "HEAD"), []byte("ref: refs/heads/master\n"), 0o644); err != nil {
		t.Fatalf("write HEAD: %v", err)
	}
	if err := os.WriteFile(filepath.Join(gitDir, "config"), []byte("[core]\n\tbare = false\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(gitDir, "description"), []byte("unit test fixture\n"), 0o644); err != nil {
		t.Fatalf("write description: %v", err)
	}

	return gitDir
}

func writeRef(t *testing.T, gitDir, name, value string) {
	t.Helper()
	p := filepath.Join(gitDir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir for ref %s: %v", name, err)
	}
	if err := os.WriteFile(p, []byte(value+"\n"), 0o644); err != nil {
		t.Fatalf("write ref %s: %v", name, err)
	}
}

// fixtureCommitChain builds root -> middle -> tip, each with a tree
// containing a single "greeting.txt" blob, and points refs/heads/master at
// tip. It returns the ids of tip, middle, root, the shared tree, and the
// blob, in that order.
func fixtureCommitChain(t *testing.T, gitDir string) (tip, middle, root, tree, blob string) {
	t.Helper()

	blobData := []byte("hello, world\n")
	blob = writeLooseObject(t, gitDir, "blob", blobData)

	treeBody := append([]byte("100644 greeting.txt\x00"), idBytes(t, blob)...)
	tree = writeLooseObject(t, gitDir, "tree", treeBody)

	mkCommit := func(parent string) string {
		body := "tree " + tree + "\n"
		if parent != "" {
			body += "parent " + parent + "\n"
		}
		body += "author A <a@example.com> 1700000000 +0000\n" +
			"committer A <a@example.com> 1700000000 +0000\n\nmsg\n"
		return writeLooseObject(t, gitDir, "commit", []byte(body))
	}

	root = mkCommit("")
	middle = mkCommit(root)
	tip = mkCommit(middle)

	writeRef(t, gitDir, "refs/heads/master", tip)

	return tip, middle, root, tree, blob
}
