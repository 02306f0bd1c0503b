package vfs

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func contains(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}

func TestDispatch_PassthroughDirectory(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{"a", "b"} {
		if err := os.Mkdir(filepath.Join(root, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(root, "f.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx := NewContext("")
	node, err := Dispatch(ctx, SplitPath(root))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	names, err := node.Readdir()
	if err != nil {
		t.Fatalf("Readdir: %v", err)
	}
	if !contains(names, "a") || !contains(names, "b") {
		t.Errorf("expected directories a and b, got %v", names)
	}
	if contains(names, "f.txt") {
		t.Errorf("passthrough directory listing must omit regular files, got %v", names)
	}

	attr, err := node.Getattr()
	if err != nil || attr.Kind != KindDir {
		t.Errorf("Getattr: got %+v, %v", attr, err)
	}
}

func TestDispatch_PassthroughDirectory_HidesMountpoint(t *testing.T) {
	root := t.TempDir()
	hidden := filepath.Join(root, "mnt")
	if err := os.Mkdir(hidden, 0o755); err != nil {
		t.Fatal(err)
	}

	ctx := NewContext(hidden)
	node, err := Dispatch(ctx, SplitPath(root))
	if err != nil {
		t.Fatal(err)
	}

	names, err := node.Readdir()
	if err != nil {
		t.Fatal(err)
	}
	if contains(names, "mnt") {
		t.Errorf("expected mountpoint to be hidden from passthrough listing, got %v", names)
	}
}

func TestDispatch_InvalidRepositoryIsNotFound(t *testing.T) {
	root := t.TempDir()
	fakeGit := filepath.Join(root, "fake.git")
	if err := os.Mkdir(fakeGit, 0o755); err != nil {
		t.Fatal(err)
	}

	ctx := NewContext("")
	_, err := Dispatch(ctx, SplitPath(fakeGit))
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound opening an invalid repository, got %v", err)
	}
}

func TestDispatch_RepoRootAndPlainFiles(t *testing.T) {
	root := t.TempDir()
	gitDir := newFixtureGitDir(t, root)
	fixtureCommitChain(t, gitDir)

	ctx := NewContext("")
	node, err := Dispatch(ctx, SplitPath(gitDir))
	if err != nil {
		t.Fatalf("Dispatch repo root: %v", err)
	}
	names, err := node.Readdir()
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"HEAD", "refs", "objects", "config", "description"} {
		if !contains(names, want) {
			t.Errorf("repo root listing missing %q: %v", want, names)
		}
	}

	fileNode, err := Dispatch(ctx, SplitPath(filepath.Join(gitDir, "config")))
	if err != nil {
		t.Fatalf("Dispatch config: %v", err)
	}
	attr, err := fileNode.Getattr()
	if err != nil || attr.Kind != KindRegular {
		t.Fatalf("config Getattr: %+v, %v", attr, err)
	}

	h, err := fileNode.Open(false)
	if err != nil {
		t.Fatalf("Open config: %v", err)
	}
	data, err := fileNode.Read(h, 0, 4096)
	if err != nil {
		t.Fatalf("Read config: %v", err)
	}
	if !bytes.Contains(data, []byte("bare")) {
		t.Errorf("expected config contents, got %q", data)
	}
	if err := fileNode.Release(h); err != nil {
		t.Fatalf("Release config: %v", err)
	}

	if _, err := fileNode.Open(true); err != ErrReadOnly {
		t.Errorf("expected ErrReadOnly for write-intent open, got %v", err)
	}
}

func TestDispatch_HeadSymlink(t *testing.T) {
	root := t.TempDir()
	gitDir := newFixtureGitDir(t, root)
	fixtureCommitChain(t, gitDir)

	ctx := NewContext("")
	node, err := Dispatch(ctx, SplitPath(filepath.Join(gitDir, "HEAD")))
	if err != nil {
		t.Fatalf("Dispatch HEAD: %v", err)
	}
	attr, err := node.Getattr()
	if err != nil || attr.Kind != KindSymlink {
		t.Fatalf("HEAD Getattr: %+v, %v", attr, err)
	}
	target, err := node.Readlink()
	if err != nil {
		t.Fatalf("Readlink HEAD: %v", err)
	}
	if target != "refs/heads/master" {
		t.Errorf("Readlink HEAD = %q, want refs/heads/master", target)
	}
}

func TestDispatch_RefsDirectoryAndSymlink(t *testing.T) {
	root := t.TempDir()
	gitDir := newFixtureGitDir(t, root)
	tip, _, _, _, _ := fixtureCommitChain(t, gitDir)

	ctx := NewContext("")

	headsNode, err := Dispatch(ctx, SplitPath(filepath.Join(gitDir, "refs", "heads")))
	if err != nil {
		t.Fatalf("Dispatch refs/heads: %v", err)
	}
	names, err := headsNode.Readdir()
	if err != nil {
		t.Fatal(err)
	}
	if !contains(names, "master") {
		t.Errorf("refs/heads listing missing master: %v", names)
	}

	symNode, err := Dispatch(ctx, SplitPath(filepath.Join(gitDir, "refs", "heads", "master")))
	if err != nil {
		t.Fatalf("Dispatch refs/heads/master: %v", err)
	}
	attr, err := symNode.Getattr()
	if err != nil || attr.Kind != KindSymlink {
		t.Fatalf("refs/heads/master Getattr: %+v, %v", attr, err)
	}
	target, err := symNode.Readlink()
	if err != nil {
		t.Fatalf("Readlink: %v", err)
	}
	if target != "../../objects/"+tip {
		t.Errorf("Readlink refs/heads/master = %q, want ../../objects/%s", target, tip)
	}
}

func TestDispatch_ObjectsIndex(t *testing.T) {
	root := t.TempDir()
	gitDir := newFixtureGitDir(t, root)
	tip, _, _, tree, blob := fixtureCommitChain(t, gitDir)

	ctx := NewContext("")
	node, err := Dispatch(ctx, SplitPath(filepath.Join(gitDir, "objects")))
	if err != nil {
		t.Fatalf("Dispatch objects: %v", err)
	}
	names, err := node.Readdir()
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{tip, tree, blob} {
		if !contains(names, id) {
			t.Errorf("objects index missing %q: %v", id, names)
		}
	}
}

func TestDispatch_CommitNode(t *testing.T) {
	root := t.TempDir()
	gitDir := newFixtureGitDir(t, root)
	tip, middle, rootCommit, tree, _ := fixtureCommitChain(t, gitDir)

	ctx := NewContext("")

	tipNode, err := Dispatch(ctx, SplitPath(filepath.Join(gitDir, "objects", tip)))
	if err != nil {
		t.Fatalf("Dispatch commit: %v", err)
	}
	names, err := tipNode.Readdir()
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"tree", "parent", "parents", "history"} {
		if !contains(names, want) {
			t.Errorf("commit listing missing %q: %v", want, names)
		}
	}

	rootNode, err := Dispatch(ctx, SplitPath(filepath.Join(gitDir, "objects", rootCommit)))
	if err != nil {
		t.Fatalf("Dispatch root commit: %v", err)
	}
	rootNames, err := rootNode.Readdir()
	if err != nil {
		t.Fatal(err)
	}
	if contains(rootNames, "parent") || contains(rootNames, "parents") || contains(rootNames, "history") {
		t.Errorf("root commit must expose no parent views, got %v", rootNames)
	}

	treeLinkNode, err := Dispatch(ctx, SplitPath(filepath.Join(gitDir, "objects", tip, "tree")))
	if err != nil {
		t.Fatalf("Dispatch commit tree: %v", err)
	}
	target, err := treeLinkNode.Readlink()
	if err != nil {
		t.Fatal(err)
	}
	if target != "../../objects/"+tree {
		t.Errorf("commit tree Readlink = %q, want ../../objects/%s", target, tree)
	}

	parentNode, err := Dispatch(ctx, SplitPath(filepath.Join(gitDir, "objects", tip, "parent")))
	if err != nil {
		t.Fatal(err)
	}
	if target, err := parentNode.Readlink(); err != nil || target != "parents/00" {
		t.Errorf("commit parent Readlink = %q, %v, want parents/00", target, err)
	}

	parents01, err := Dispatch(ctx, SplitPath(filepath.Join(gitDir, "objects", tip, "parents", "00")))
	if err != nil {
		t.Fatal(err)
	}
	target, err = parents01.Readlink()
	if err != nil {
		t.Fatal(err)
	}
	if target != "../../../objects/"+middle {
		t.Errorf("parents/00 Readlink = %q, want ../../../objects/%s", target, middle)
	}

	outOfRange, err := Dispatch(ctx, SplitPath(filepath.Join(gitDir, "objects", tip, "parents", "05")))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := outOfRange.Readlink(); err != ErrNotFound {
		t.Errorf("out-of-range parent index: got %v, want ErrNotFound", err)
	}

	historyNode, err := Dispatch(ctx, SplitPath(filepath.Join(gitDir, "objects", tip, "history")))
	if err != nil {
		t.Fatal(err)
	}
	histNames, err := historyNode.Readdir()
	if err != nil {
		t.Fatal(err)
	}
	if !contains(histNames, "000000_"+middle) || !contains(histNames, "000001_"+rootCommit) {
		t.Errorf("history listing = %v, want entries for %s and %s", histNames, middle, rootCommit)
	}

	histEntryNode, err := Dispatch(ctx, SplitPath(filepath.Join(gitDir, "objects", tip, "history", "000000_"+middle)))
	if err != nil {
		t.Fatal(err)
	}
	target, err = histEntryNode.Readlink()
	if err != nil {
		t.Fatal(err)
	}
	if target != "../../../objects/"+middle {
		t.Errorf("history entry Readlink = %q, want ../../../objects/%s", target, middle)
	}
}

func TestDispatch_TreeAndBlob(t *testing.T) {
	root := t.TempDir()
	gitDir := newFixtureGitDir(t, root)
	_, _, _, tree, blob := fixtureCommitChain(t, gitDir)
	blobData := []byte("hello, world\n")

	ctx := NewContext("")

	treeNode, err := Dispatch(ctx, SplitPath(filepath.Join(gitDir, "objects", tree)))
	if err != nil {
		t.Fatalf("Dispatch tree: %v", err)
	}
	names, err := treeNode.Readdir()
	if err != nil {
		t.Fatal(err)
	}
	if !contains(names, "greeting.txt") {
		t.Errorf("tree listing missing greeting.txt: %v", names)
	}

	blobNode, err := Dispatch(ctx, SplitPath(filepath.Join(gitDir, "objects", tree, "greeting.txt")))
	if err != nil {
		t.Fatalf("Dispatch blob: %v", err)
	}
	attr, err := blobNode.Getattr()
	if err != nil || attr.Kind != KindRegular || attr.Size != int64(len(blobData)) {
		t.Fatalf("blob Getattr: %+v, %v", attr, err)
	}

	if _, err := blobNode.Open(true); err != ErrReadOnly {
		t.Errorf("write-intent open: got %v, want ErrReadOnly", err)
	}

	h, err := blobNode.Open(false)
	if err != nil {
		t.Fatalf("Open blob: %v", err)
	}
	data, err := blobNode.Read(h, 0, len(blobData))
	if err != nil || !bytes.Equal(data, blobData) {
		t.Fatalf("Read full blob: %q, %v", data, err)
	}
	past, err := blobNode.Read(h, int64(len(blobData)), 10)
	if err != nil || len(past) != 0 {
		t.Fatalf("Read past end: %q, %v, want empty", past, err)
	}
	if err := blobNode.Release(h); err != nil {
		t.Fatalf("Release: %v", err)
	}

	directNode, err := Dispatch(ctx, SplitPath(filepath.Join(gitDir, "objects", blob)))
	if err != nil {
		t.Fatalf("Dispatch blob by id: %v", err)
	}
	if attr, err := directNode.Getattr(); err != nil || attr.Size != int64(len(blobData)) {
		t.Errorf("blob-by-id Getattr: %+v, %v", attr, err)
	}
}

func TestDispatch_UnknownSubIsNotFound(t *testing.T) {
	root := t.TempDir()
	gitDir := newFixtureGitDir(t, root)
	fixtureCommitChain(t, gitDir)

	ctx := NewContext("")
	_, err := Dispatch(ctx, SplitPath(filepath.Join(gitDir, "nonsense")))
	if err != ErrNotFound {
		t.Errorf("unknown sub: got %v, want ErrNotFound", err)
	}
}
