package discovery

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func mustMkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}

func TestRegistry_InitialScanFindsRepos(t *testing.T) {
	root := t.TempDir()
	mustMkdirAll(t, filepath.Join(root, "alpha", ".git"))
	mustMkdirAll(t, filepath.Join(root, "nested", "beta", ".git"))
	mustMkdirAll(t, filepath.Join(root, "not-a-repo"))

	reg := New(root, nil)
	reg.scan()

	repos := reg.List()
	if len(repos) != 2 {
		t.Fatalf("expected 2 repos, got %d: %+v", len(repos), repos)
	}

	leads := map[string]bool{}
	for _, r := range repos {
		leads[r.Lead] = true
	}
	if !leads[filepath.Join(root, "alpha")] || !leads[filepath.Join(root, "nested", "beta")] {
		t.Fatalf("unexpected leads: %+v", repos)
	}
}

func TestRegistry_ScanDetectsNewAndRemovedRepos(t *testing.T) {
	root := t.TempDir()
	mustMkdirAll(t, filepath.Join(root, "alpha", ".git"))

	reg := New(root, nil)
	reg.scan()
	if len(reg.List()) != 1 {
		t.Fatalf("expected 1 repo initially")
	}

	mustMkdirAll(t, filepath.Join(root, "beta", ".git"))
	reg.scan()
	if len(reg.List()) != 2 {
		t.Fatalf("expected 2 repos after addition")
	}

	if err := os.RemoveAll(filepath.Join(root, "alpha")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	reg.scan()
	repos := reg.List()
	if len(repos) != 1 || repos[0].Lead != filepath.Join(root, "beta") {
		t.Fatalf("expected only beta left, got %+v", repos)
	}
}

func TestRegistry_SubscribeReceivesUpdateOnScan(t *testing.T) {
	root := t.TempDir()
	reg := New(root, nil)

	ch, unsubscribe := reg.Subscribe()
	defer unsubscribe()

	mustMkdirAll(t, filepath.Join(root, "alpha", ".git"))
	reg.scan()

	select {
	case repos := <-ch:
		if len(repos) != 1 {
			t.Fatalf("expected 1 repo in notification, got %d", len(repos))
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for subscription update")
	}
}
