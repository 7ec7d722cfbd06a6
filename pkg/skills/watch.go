package skills

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/jingkaihe/chatcmd/pkg/logger"
)

// DefaultWatchDebounce is used when no debounce is configured
const DefaultWatchDebounce = 250 * time.Millisecond

// ReloadFunc receives a freshly loaded report after skill files change
type ReloadFunc func(ctx context.Context, report *Report)

// Watcher reloads skills whenever a SKILL.md under one of the loader's
// directories changes
type Watcher struct {
	loader   *Loader
	debounce time.Duration
	onReload ReloadFunc

	reloadMu sync.Mutex
}

// NewWatcher creates a watcher. A non-positive debounce uses
// DefaultWatchDebounce.
func NewWatcher(loader *Loader, debounce time.Duration, onReload ReloadFunc) (*Watcher, error) {
	if loader == nil {
		return nil, errors.New("loader must not be nil")
	}
	if onReload == nil {
		return nil, errors.New("reload callback must not be nil")
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	return &Watcher{loader: loader, debounce: debounce, onReload: onReload}, nil
}

// reload loads skills and hands the report to onReload. Reloads never
// overlap.
func (w *Watcher) reload(ctx context.Context) {
	w.reloadMu.Lock()
	defer w.reloadMu.Unlock()
	if ctx.Err() != nil {
		return
	}
	w.onReload(ctx, w.loader.Load(ctx))
}

// isSkillEvent reports whether a path can affect the loaded skills: a
// SKILL.md file or a skill directory directly under a source dir
func isSkillEvent(path string, roots []string) bool {
	if filepath.Base(path) == SkillFileName {
		return true
	}
	parent := filepath.Dir(path)
	for _, root := range roots {
		if filepath.Clean(root) == parent {
			return true
		}
	}
	return false
}

func (w *Watcher) addDirs(ctx context.Context, fw *fsnotify.Watcher) []string {
	var roots []string
	for _, dir := range w.loader.DirPaths() {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		roots = append(roots, dir)
		if err := fw.Add(dir); err != nil {
			logger.G(ctx).WithError(err).WithField("dir", dir).Debug("failed to watch skills directory")
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			if err := fw.Add(filepath.Join(dir, entry.Name())); err != nil {
				logger.G(ctx).WithError(err).WithField("dir", entry.Name()).Debug("failed to watch skill directory")
			}
		}
	}
	return roots
}

// Run watches until ctx is cancelled. Bursts of events within the debounce
// window cause a single reload.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	defer fw.Close()

	roots := w.addDirs(ctx, fw)
	if len(roots) == 0 {
		logger.G(ctx).Warn("no skills directories exist to watch")
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	schedule := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce, func() { w.reload(ctx) })
	}
	defer func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !isSkillEvent(event.Name, roots) {
				continue
			}
			// new skill directories need their own watch to see SKILL.md edits
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = fw.Add(event.Name)
				}
			}
			logger.G(ctx).WithField("file", event.Name).WithField("operation", event.Op.String()).Debug("skill change detected")
			schedule()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.G(ctx).WithError(err).Warn("skill watcher error")
		case <-ctx.Done():
			return nil
		}
	}
}
