// Package watch reports external changes below the opened paths. Events are
// debounced and delivered as one batch of distinct paths.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 200 * time.Millisecond

// NotifyFunc receives the paths changed during one quiet period.
type NotifyFunc func(paths []string)

// Watcher follows a replaceable set of roots. Directory roots are watched
// recursively; file roots through their parent directory.
type Watcher struct {
	debounce time.Duration
	logger   *slog.Logger
	notify   NotifyFunc

	mu      sync.Mutex
	pending []string
	changed chan struct{}
}

// New creates a watcher. Run must be called for it to do anything.
func New(debounce time.Duration, logger *slog.Logger, notify NotifyFunc) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		debounce: debounce,
		logger:   logger,
		notify:   notify,
		changed:  make(chan struct{}, 1),
	}
}

// SetRoots replaces the watched roots. It never blocks.
func (w *Watcher) SetRoots(paths []string) {
	w.mu.Lock()
	w.pending = append([]string(nil), paths...)
	w.mu.Unlock()
	select {
	case w.changed <- struct{}{}:
	default:
	}
}

// Run processes file system events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	w.logger.Info("watcher: started")

	var (
		dirRoots []string
		batch    = make(map[string]struct{})
		timer    *time.Timer
		fire     <-chan time.Time
	)
	schedule := func(path string) {
		batch[path] = struct{}{}
		if timer == nil {
			timer = time.NewTimer(w.debounce)
			fire = timer.C
		} else {
			timer.Reset(w.debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			w.logger.Info("watcher: stopped")
			return nil

		case <-w.changed:
			w.mu.Lock()
			roots := w.pending
			w.mu.Unlock()
			dirRoots = w.retarget(fw, roots)

		case <-fire:
			timer, fire = nil, nil
			if len(batch) == 0 {
				continue
			}
			paths := make([]string, 0, len(batch))
			for p := range batch {
				paths = append(paths, p)
			}
			clear(batch)
			sort.Strings(paths)
			w.logger.Debug("watcher: changes", slog.Int("count", len(paths)))
			if w.notify != nil {
				w.notify(paths)
			}

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 && underAny(dirRoots, ev.Name) {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(fw, ev.Name); addErr != nil {
						w.logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
				}
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				schedule(ev.Name)
			}

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// retarget drops every current watch and adds roots. It returns the
// directory roots, which also follow directories created later.
func (w *Watcher) retarget(fw *fsnotify.Watcher, roots []string) []string {
	for _, p := range fw.WatchList() {
		_ = fw.Remove(p)
	}
	var dirs []string
	for _, r := range roots {
		info, err := os.Stat(r)
		if err != nil {
			w.logger.Warn("watcher: root unavailable", slog.String("path", r), slog.String("error", err.Error()))
			continue
		}
		if info.IsDir() {
			err = addDirsRecursive(fw, r)
			dirs = append(dirs, r)
		} else {
			err = fw.Add(filepath.Dir(r))
		}
		if err != nil {
			w.logger.Warn("watcher: add failed", slog.String("path", r), slog.String("error", err.Error()))
		}
	}
	w.logger.Debug("watcher: roots", slog.Int("count", len(roots)))
	return dirs
}

func underAny(roots []string, path string) bool {
	for _, r := range roots {
		if path == r || strings.HasPrefix(path, r+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
