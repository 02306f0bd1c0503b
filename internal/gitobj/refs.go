package gitobj

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// RefValue is the raw, unresolved contents of a ref: either a direct object
// id, or the name of another ref it symbolically points at. Exactly one of
// Hash / Symbolic is set.
type RefValue struct {
	Hash     Hash
	Symbolic string
}

// IsSymbolic reports whether the ref is a symbolic pointer to another ref
// rather than a direct object id.
func (v RefValue) IsSymbolic() bool { return v.Symbolic != "" }

// parseRefLine parses a single ref file's trimmed contents into a RefValue,
// without following symbolic indirection — the spec's Ref Symlink node
// exposes exactly one level and lets the kernel resolve the rest.
func parseRefLine(line string) (RefValue, error) {
	line = strings.TrimSpace(line)
	if target, ok := strings.CutPrefix(line, "ref: "); ok {
		return RefValue{Symbolic: strings.TrimSpace(target)}, nil
	}
	hash, err := NewHash(line)
	if err != nil {
		return RefValue{}, fmt.Errorf("invalid ref value %q: %w", line, err)
	}
	return RefValue{Hash: hash}, nil
}

// loadRefs builds the full ref-name -> RefValue map (refs/heads/*,
// refs/tags/*, refs/remotes/*, packed-refs) plus the repository's HEAD.
func loadRefs(gitDir string) (refs map[string]RefValue, head RefValue, err error) {
	refs = make(map[string]RefValue)

	if err := loadLooseRefs(gitDir, "refs", refs); err != nil {
		return nil, RefValue{}, fmt.Errorf("failed to load loose refs: %w", err)
	}
	if err := loadPackedRefs(gitDir, refs); err != nil {
		return nil, RefValue{}, fmt.Errorf("failed to load packed refs: %w", err)
	}
	head, err = loadHEAD(gitDir)
	if err != nil {
		return nil, RefValue{}, fmt.Errorf("failed to load HEAD: %w", err)
	}

	return refs, head, nil
}

// loadLooseRefs walks gitDir/<prefix> recursively, recording every file
// found as a ref named by its path relative to gitDir.
func loadLooseRefs(gitDir, prefix string, refs map[string]RefValue) error {
	refsDir := filepath.Join(gitDir, prefix)

	if _, err := os.Stat(refsDir); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return err
	}

	return filepath.Walk(refsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(gitDir, path)
		if err != nil {
			return err
		}
		refName := filepath.ToSlash(relPath)

		//nolint:gosec // G304: ref paths are controlled by git repository structure
		content, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("error reading ref", "ref", refName, "err", err)
			return nil
		}

		value, err := parseRefLine(string(content))
		if err != nil {
			slog.Warn("error parsing ref", "ref", refName, "err", err)
			return nil
		}

		refs[refName] = value
		return nil
	})
}

// loadPackedRefs reads gitDir/packed-refs. Packed refs are always direct
// object ids; git never packs a symbolic ref.
func loadPackedRefs(gitDir string, refs map[string]RefValue) error {
	packedRefsFile := filepath.Join(gitDir, "packed-refs")

	//nolint:gosec // G304: packed-refs path is controlled by git repository structure
	file, err := os.Open(packedRefsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "^") {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) != 2 {
			continue
		}

		hash, err := NewHash(parts[0])
		if err != nil {
			continue
		}

		// A loose ref with the same name shadows its packed counterpart.
		if _, exists := refs[parts[1]]; !exists {
			refs[parts[1]] = RefValue{Hash: hash}
		}
	}

	return scanner.Err()
}

// loadHEAD reads gitDir/HEAD as a raw ref value.
func loadHEAD(gitDir string) (RefValue, error) {
	headPath := filepath.Join(gitDir, "HEAD")
	//nolint:gosec // G304: HEAD path is controlled by git repository structure
	content, err := os.ReadFile(headPath)
	if err != nil {
		return RefValue{}, err
	}
	return parseRefLine(string(content))
}
