package gitobj

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestOpen_RejectsNonRepository(t *testing.T) {
	dir := t.TempDir()
	if _, err := Open(dir); err == nil {
		t.Fatal("expected error opening a directory with no Git internals")
	}
}

func TestRoundTrip_BlobCommitTreeRefs(t *testing.T) {
	gitDir := newFixtureRepo(t)

	blobData := []byte("hello, world\n")
	blobID := writeLooseObject(t, gitDir, "blob", blobData)

	treeBody := append([]byte("100644 greeting.txt\x00"), mustHashBytes(t, blobID)...)
	treeID := writeLooseObject(t, gitDir, "tree", treeBody)

	commitBody := []byte("tree " + string(treeID) + "\nauthor A <a@example.com> 1700000000 +0000\ncommitter A <a@example.com> 1700000000 +0000\n\nfirst\n")
	commitID := writeLooseObject(t, gitDir, "commit", commitBody)

	writeRef(t, gitDir, "refs/heads/master", string(commitID))

	repo, err := Open(gitDir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	blob, err := repo.GetBlob(blobID)
	if err != nil {
		t.Fatalf("GetBlob failed: %v", err)
	}
	if !bytes.Equal(blob, blobData) {
		t.Errorf("blob mismatch: got %q, want %q", blob, blobData)
	}

	tree, err := repo.GetTree(treeID)
	if err != nil {
		t.Fatalf("GetTree failed: %v", err)
	}
	if len(tree.Entries) != 1 || tree.Entries[0].Name != "greeting.txt" {
		t.Fatalf("unexpected tree entries: %+v", tree.Entries)
	}

	commit, err := repo.GetCommit(commitID)
	if err != nil {
		t.Fatalf("GetCommit failed: %v", err)
	}
	if commit.Tree != treeID {
		t.Errorf("commit tree mismatch: got %s, want %s", commit.Tree, treeID)
	}

	headRef, ok := repo.Ref("HEAD")
	if !ok || !headRef.IsSymbolic() || headRef.Symbolic != "refs/heads/master" {
		t.Fatalf("HEAD: got %+v", headRef)
	}

	branchRef, ok := repo.Ref("refs/heads/master")
	if !ok || branchRef.IsSymbolic() || branchRef.Hash != commitID {
		t.Fatalf("refs/heads/master: got %+v", branchRef)
	}
}

func mustHashBytes(t *testing.T, h Hash) []byte {
	t.Helper()
	b, err := hex.DecodeString(string(h))
	if err != nil || len(b) != 20 {
		t.Fatalf("bad hash %q: %v", h, err)
	}
	return b
}
