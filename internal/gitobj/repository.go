package gitobj

import (
	"fmt"
	"os"
	"path/filepath"
)

// Repository is a lightweight, read-only handle onto a Git directory's
// object store and refs. It is cheap and deliberately re-opened on every
// lookup rather than cached: the core this package backs never assumes a
// repository snapshot stays valid across calls.
type Repository struct {
	gitDir      string
	refs        map[string]RefValue
	head        RefValue
	packIndices []*PackIndex
}

// Open validates that gitDir looks like a real Git directory and loads its
// pack indices and ref table. It does not walk commit history or read any
// object other than what Open itself needs (pack index headers, ref files).
func Open(gitDir string) (*Repository, error) {
	if err := validateGitDirectory(gitDir); err != nil {
		return nil, err
	}

	packIndices, err := loadPackIndices(gitDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load pack indices: %w", err)
	}

	refs, head, err := loadRefs(gitDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load refs: %w", err)
	}

	return &Repository{
		gitDir:      gitDir,
		refs:        refs,
		head:        head,
		packIndices: packIndices,
	}, nil
}

// GitDir returns the path to the repository's .git directory.
func (r *Repository) GitDir() string { return r.gitDir }

// Head returns HEAD's raw ref value.
func (r *Repository) Head() RefValue { return r.head }

// Ref looks up a ref by its full name (e.g. "refs/heads/master", or the
// literal "HEAD").
func (r *Repository) Ref(name string) (RefValue, bool) {
	if name == "HEAD" {
		if r.head == (RefValue{}) {
			return RefValue{}, false
		}
		return r.head, true
	}
	v, ok := r.refs[name]
	return v, ok
}

// RefNames returns every known ref name under "refs/..." (HEAD excluded;
// callers that need HEAD use Head directly, per the Repository Root /
// Ref Symlink split in the node dispatcher).
func (r *Repository) RefNames() []string {
	names := make([]string, 0, len(r.refs))
	for name := range r.refs {
		names = append(names, name)
	}
	return names
}

// ObjectIDs returns the id of every object the store holds, loose or
// packed, as a flat unordered list. Used by the objects-index directory
// listing; never walks object content, only directory entries and pack
// index tables.
func (r *Repository) ObjectIDs() ([]Hash, error) {
	seen := make(map[Hash]struct{})
	var ids []Hash

	objectsDir := filepath.Join(r.gitDir, "objects")
	entries, err := os.ReadDir(objectsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read objects directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || len(name) != 2 || name == "info" || name == "pack" {
			continue
		}
		shards, err := os.ReadDir(filepath.Join(objectsDir, name))
		if err != nil {
			continue
		}
		for _, shard := range shards {
			if shard.IsDir() || len(shard.Name()) != 38 {
				continue
			}
			id := Hash(name + shard.Name())
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	for _, idx := range r.packIndices {
		for _, id := range idx.Objects() {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	return ids, nil
}

// validateGitDirectory checks that gitDir exists, is a directory, and
// contains the internals a valid Git directory must have.
func validateGitDirectory(gitDir string) error {
	info, err := os.Stat(gitDir)
	if err != nil {
		return fmt.Errorf("git directory does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("git path is not a directory: %s", gitDir)
	}

	for _, required := range []string{"objects", "refs", "HEAD"} {
		if _, err := os.Stat(filepath.Join(gitDir, required)); err != nil {
			return fmt.Errorf("invalid git repository, missing: %s", required)
		}
	}

	return nil
}
