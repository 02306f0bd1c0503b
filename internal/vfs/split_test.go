package vfs

import "testing"

func TestSplitPath_Scenarios(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		lead       string
		sub        string
		subPresent bool
	}{
		{"literal scenario 1", "hello/my/.git/refs/heads/master", "hello/my/.git", "refs/heads/master", true},
		{"literal scenario 2 (no .git)", "/foo", "/foo", "", false},
		{"git dir itself", "repo/.git", "repo/.git", "", true},
		{"trailing slash idempotent", "repo/.git/", "repo/.git", "", true},
		{"double trailing slash idempotent", "repo/.git//", "repo/.git", "", true},
		{"absolute lead", "/a/b/.git/objects", "/a/b/.git", "objects", true},
		{"root path", "/", "/", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitPath(tt.path)
			if got.Lead != tt.lead || got.Sub != tt.sub || got.SubPresent != tt.subPresent {
				t.Errorf("SplitPath(%q) = %+v, want {Lead:%q Sub:%q SubPresent:%v}",
					tt.path, got, tt.lead, tt.sub, tt.subPresent)
			}
		})
	}
}

func TestSplitPath_TrailingSlashesAreIdempotent(t *testing.T) {
	paths := []string{"a/b/.git/refs/heads/main", "/foo/bar", "plain/no/repo"}
	for _, p := range paths {
		base := SplitPath(p)
		once := SplitPath(p + "/")
		twice := SplitPath(p + "//")
		if base != once || once != twice {
			t.Errorf("split(%q) not idempotent across trailing slashes: %+v vs %+v vs %+v", p, base, once, twice)
		}
	}
}

func TestSplitPath_AbsentIffNoGitComponent(t *testing.T) {
	present := SplitPath("a/.git/x")
	if !present.SubPresent {
		t.Error("expected SubPresent for a path with a .git component")
	}
	absent := SplitPath("a/b/c")
	if absent.SubPresent {
		t.Error("expected !SubPresent for a path with no .git component")
	}
}
