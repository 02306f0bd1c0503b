// Package discovery walks a mount root for Git repositories and keeps that
// list current as directories appear and disappear. It is pure
// observability: nothing it learns feeds back into the overlay's own
// per-call dispatch, so it can never introduce the invalidation semantics
// the core explicitly does not provide.
package discovery

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceTime = 200 * time.Millisecond

// Repo is a snapshot of one discovered repository.
type Repo struct {
	// Lead is the directory containing the .git entry (the repository's
	// working directory, or the bare repository itself).
	Lead string
	// GitDir is the .git directory (or the bare repo directory itself).
	GitDir    string
	FoundAt   time.Time
	LastEvent time.Time
}

// Registry tracks discovered repositories under a root directory and
// notifies subscribers whenever the set changes.
type Registry struct {
	root   string
	logger *slog.Logger

	mu    sync.RWMutex
	repos map[string]*Repo // keyed by Lead

	subMu sync.Mutex
	subs  []chan []Repo

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs a Registry rooted at root. Call Start to begin scanning
// and watching.
func New(root string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		root:   root,
		logger: logger.With("component", "discovery"),
		repos:  make(map[string]*Repo),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start performs an initial scan and launches the fsnotify watch loop.
func (r *Registry) Start() error {
	r.scan()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	r.walkAndWatch(watcher, r.root)

	r.wg.Add(1)
	go r.watchLoop(watcher)

	r.logger.Info("watching for repositories", "root", r.root, "found", len(r.repos))
	return nil
}

// Close stops the watch loop and waits for it to exit.
func (r *Registry) Close() {
	r.cancel()
	r.wg.Wait()
}

// List returns a snapshot of all currently known repositories, sorted by
// lead path for stable output.
func (r *Registry) List() []Repo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Repo, 0, len(r.repos))
	for _, repo := range r.repos {
		out = append(out, *repo)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Lead < out[j].Lead })
	return out
}

// Subscribe registers a channel that receives the full repository list
// every time it changes. The returned function unsubscribes.
func (r *Registry) Subscribe() (<-chan []Repo, func()) {
	ch := make(chan []Repo, 1)

	r.subMu.Lock()
	r.subs = append(r.subs, ch)
	r.subMu.Unlock()

	unsubscribe := func() {
		r.subMu.Lock()
		defer r.subMu.Unlock()
		for i, s := range r.subs {
			if s == ch {
				r.subs = append(r.subs[:i], r.subs[i+1:]...)
				break
			}
		}
	}
	return ch, unsubscribe
}

func (r *Registry) notify() {
	snapshot := r.List()

	r.subMu.Lock()
	defer r.subMu.Unlock()
	for _, ch := range r.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}

// scan walks the root directory tree and rebuilds the repo set from
// scratch. Symlinked directories are not followed, matching the
// passthrough view's own treatment of symlinks as opaque leaves.
func (r *Registry) scan() {
	found := make(map[string]*Repo)

	_ = filepath.Walk(r.root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // skip unreadable entries
		}
		if !info.IsDir() {
			return nil
		}
		if info.Name() == ".git" {
			lead := filepath.Dir(path)
			found[lead] = &Repo{Lead: lead, GitDir: path, FoundAt: time.Now(), LastEvent: time.Now()}
			return filepath.SkipDir
		}
		return nil
	})

	r.mu.Lock()
	for lead, existing := range found {
		if prior, ok := r.repos[lead]; ok {
			existing.FoundAt = prior.FoundAt
		}
	}
	changed := len(found) != len(r.repos)
	if !changed {
		for lead := range found {
			if _, ok := r.repos[lead]; !ok {
				changed = true
				break
			}
		}
	}
	r.repos = found
	r.mu.Unlock()

	if changed {
		r.notify()
	}
}

// walkAndWatch adds fsnotify watches on dir and every subdirectory,
// skipping the .git internals themselves — only directory creation and
// removal at the repository-boundary level matters here.
func (r *Registry) walkAndWatch(watcher *fsnotify.Watcher, dir string) {
	_ = filepath.Walk(dir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // skip unreadable entries
		}
		if !info.IsDir() {
			return nil
		}
		if info.Name() == ".git" {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			r.logger.Warn("failed to watch directory", "dir", path, "err", err)
		}
		return nil
	})
}

func (r *Registry) watchLoop(watcher *fsnotify.Watcher) {
	defer r.wg.Done()
	defer watcher.Close()

	var debounceTimer *time.Timer

	for {
		select {
		case <-r.ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceTime, func() {
				if r.ctx.Err() != nil {
					return
				}
				r.scan()
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			r.logger.Error("watcher error", "err", err)
		}
	}
}
