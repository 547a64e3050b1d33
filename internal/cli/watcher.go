package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/toyz/blanket/internal/utils"
)

// DefaultDebounce is how long the watcher waits for a burst of events to settle
const DefaultDebounce = 200 * time.Millisecond

// Watcher regenerates outputs whenever a watched source file changes
type Watcher struct {
	generator *Generator
	debounce  time.Duration
	onRun     func(error) // called after every generation run
}

// NewWatcher creates a watcher driving generator
func NewWatcher(generator *Generator) *Watcher {
	return &Watcher{
		generator: generator,
		debounce:  DefaultDebounce,
		onRun:     func(error) {},
	}
}

// SetDebounce sets the quiet period before a rebuild
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// OnRun registers a callback invoked with the result of every run
func (w *Watcher) OnRun(callback func(error)) {
	w.onRun = callback
}

// Run generates once, then again after every settled batch of source
// changes, until ctx is cancelled. Generation failures are reported and
// watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	dirs, err := w.directories()
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}

	diagnostics := w.generator.diagnostics
	w.generate()
	diagnostics.Info("Watching %d directories for changes", len(dirs))

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Create) && w.watchableDir(event.Name) {
				if err := watcher.Add(event.Name); err != nil {
					diagnostics.Warn("Failed to watch %s: %v", event.Name, err)
				}
				continue
			}
			if !w.relevant(event) {
				continue
			}

			diagnostics.Debug("%s %s", event.Op, event.Name)
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			w.generator.fileReader.ClearCache()
			w.generate()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			diagnostics.Warn("Watcher error: %v", err)
		}
	}
}

// generate runs one generation pass and reports its outcome
func (w *Watcher) generate() {
	err := w.generator.Run()
	if err != nil {
		w.generator.reporter.ReportError(err)
	} else {
		summary := w.generator.GetSummary()
		w.generator.diagnostics.Success("Expanded %s in %s",
			pluralize(summary.TraitsExpanded, "trait"), pluralize(summary.FilesGenerated, "file"))
	}
	w.onRun(err)
}

// relevant reports whether event touches a source file. Generated outputs
// are ignored so a run never triggers itself.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	name := filepath.Base(event.Name)
	if !strings.HasSuffix(name, utils.SourceExtension) || strings.HasSuffix(name, w.generator.config.Suffix) {
		return false
	}
	return !w.excluded(event.Name)
}

// watchableDir reports whether path is a new directory inside a recursive root
func (w *Watcher) watchableDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}

	filter := utils.DefaultDirectoryFilter()
	if !filter(path, dirEntry{info}) {
		return false
	}

	for _, pattern := range w.generator.config.Patterns() {
		root, recursive := utils.ExpandPattern(pattern)
		if recursive && isWithin(root, path) {
			return !w.excluded(path)
		}
	}
	return false
}

// excluded matches path against the exclude patterns relative to each root
func (w *Watcher) excluded(path string) bool {
	processor := w.generator.scanner.fileProcessor
	for _, pattern := range w.generator.config.Patterns() {
		root, _ := utils.ExpandPattern(pattern)
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			if processor.Excluded(rel) {
				return true
			}
		}
	}
	return false
}

// directories returns every directory that can hold a scanned source file
func (w *Watcher) directories() ([]string, error) {
	seen := make(map[string]bool)
	filter := utils.DefaultDirectoryFilter()

	for _, pattern := range w.generator.config.Patterns() {
		root, recursive := utils.ExpandPattern(pattern)
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to watch %s: %w", pattern, err)
		}
		if !info.IsDir() {
			seen[filepath.Dir(filepath.Clean(root))] = true
			continue
		}

		seen[filepath.Clean(root)] = true
		if !recursive {
			continue
		}

		err = filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
			if err != nil || !entry.IsDir() || path == root {
				return nil
			}
			if !filter(path, entry) || w.excluded(path) {
				return filepath.SkipDir
			}
			seen[filepath.Clean(path)] = true
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	dirs := make([]string, 0, len(seen))
	for dir := range seen {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs, nil
}

func isWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != "." && !strings.HasPrefix(rel, "..")
}

// dirEntry adapts os.FileInfo to the DirEntry the directory filter takes
type dirEntry struct {
	os.FileInfo
}

func (d dirEntry) Type() os.FileMode          { return d.Mode().Type() }
func (d dirEntry) Info() (os.FileInfo, error) { return d.FileInfo, nil }
