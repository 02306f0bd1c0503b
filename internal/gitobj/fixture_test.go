package gitobj

import (
	"bytes"
	"compress/zlib"
	"crypto/sha1" //nolint:gosec // G505/G401: SHA-1 is the Git object-id algorithm, not used for security here
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

// writeLooseObject writes a Git loose object of the given type and body
// under gitDir/objects, returning its hash, the way `git hash-object -w`
// would.
func writeLooseObject(t *testing.T, gitDir, objType string, body []byte) Hash {
	t.Helper()

	header := objType + " " + itoa(len(body)) + "\x00"
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

	return Hash(id)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	return string(b)
}

// newFixtureRepo creates a minimal valid Git directory layout under a temp
// dir: objects/, refs/heads, refs/tags, and a HEAD pointing at
// refs/heads/master.
func newFixtureRepo(t *testing.T) string {
	t.Helper()
	gitDir := t.TempDir()

	for _, dir := range []string{"objects", "refs/heads", "refs/tags"} {
		if err := os.MkdirAll(filepath.Join(gitDir, dir), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	if err := os.WriteFile(filepath.Join(gitDir, "HEAD"), []byte("ref: refs/heads/master\n"), 0o644); err != nil {
		t.Fatalf("write HEAD: %v", err)
	}

	return gitDir
}

func writeRef(t *testing.T, gitDir, name string, value string) {
	t.Helper()
	path := filepath.Join(gitDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for ref %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(value+"\n"), 0o644); err != nil {
		t.Fatalf("write ref %s: %v", name, err)
	}
}
