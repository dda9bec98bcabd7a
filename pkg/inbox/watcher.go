// Package inbox watches a directory of page JSON documents and reports
// new, changed and removed files.
package inbox

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/fsnotify.v1"
)

const (
	// DefaultPattern matches page documents anywhere below the directory.
	DefaultPattern = "**/*.json"

	// DefaultDebounce is how long changes are collected before reporting.
	DefaultDebounce = 500 * time.Millisecond

	eventBuffer = 100
)

// Operation is the kind of change reported for a document.
type Operation string

const (
	OpCreate Operation = "create"
	OpModify Operation = "modify"
	OpDelete Operation = "delete"
)

// Event is one document change.
type Event struct {
	// Path is relative to the inbox directory, with forward slashes.
	Path string

	// AbsPath is the file's path on disk.
	AbsPath string

	Operation Operation
}

// Config configures a Watcher.
type Config struct {
	// Dir is the directory to watch.
	Dir string `yaml:"dir"`

	// Pattern selects documents by their slash-separated relative path,
	// with doublestar syntax.
	Pattern string `yaml:"pattern"`

	// Debounce is how long to collect changes before reporting them.
	Debounce time.Duration `yaml:"debounce"`
}

// Watcher reports document changes in a directory. Content hashes are
// compared so a rewrite with identical bytes is not reported.
type Watcher struct {
	config  Config
	logger  *slog.Logger
	watcher *fsnotify.Watcher

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	stateMu sync.RWMutex
	state   *State

	events chan Event
}

// New creates a watcher for config.Dir. Watching begins with Start.
func New(config Config, logger *slog.Logger) (*Watcher, error) {
	if config.Dir == "" {
		return nil, fmt.Errorf("inbox directory is required")
	}
	if config.Pattern == "" {
		config.Pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(config.Pattern) {
		return nil, fmt.Errorf("invalid inbox pattern %q", config.Pattern)
	}
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(config.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolving inbox directory: %w", err)
	}
	config.Dir = abs

	return &Watcher{
		config:  config,
		logger:  logger,
		pending: make(map[string]fsnotify.Op),
		state:   NewState(),
		events:  make(chan Event, eventBuffer),
	}, nil
}

// Events returns the channel of changes. It is closed when the watcher
// stops.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Dir returns the absolute directory being watched.
func (w *Watcher) Dir() string {
	return w.config.Dir
}

// Scan returns every matching document in the directory, sorted, and
// records its content so Start reports only later changes.
func (w *Watcher) Scan() ([]Event, error) {
	matches, err := doublestar.Glob(os.DirFS(w.config.Dir), w.config.Pattern)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", w.config.Dir, err)
	}
	slices.Sort(matches)

	var events []Event
	for _, rel := range matches {
		abs := filepath.Join(w.config.Dir, filepath.FromSlash(rel))
		info, err := os.Stat(abs)
		if err != nil || info.IsDir() {
			continue
		}
		hash, err := fileHash(abs)
		if err != nil {
			w.logger.Warn("Failed to hash document", "path", rel, "error", err)
			continue
		}
		changed, existed := w.record(rel, hash)
		if !changed {
			continue
		}
		op := OpCreate
		if existed {
			op = OpModify
		}
		events = append(events, Event{Path: rel, AbsPath: abs, Operation: op})
	}
	return events, nil
}

// Start begins watching the directory tree. Events are delivered until ctx
// is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := os.MkdirAll(w.config.Dir, 0755); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	w.watcher = fsw

	if err := w.addWatchesRecursive(w.config.Dir); err != nil {
		fsw.Close()
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("Inbox watcher started",
		"dir", w.config.Dir,
		"pattern", w.config.Pattern,
		"debounce", w.config.Debounce)
	return nil
}

// Stop stops the watcher. The events channel is closed once processing
// exits.
func (w *Watcher) Stop() error {
	if w.watcher == nil {
		return nil
	}
	return w.watcher.Close()
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if base := d.Name(); strings.HasPrefix(base, ".") && path != root {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)
	ticker := time.NewTicker(w.config.Debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Inbox watcher error", "error", err)

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addWatchesRecursive(event.Name); err != nil {
				w.logger.Warn("Failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}

	rel, ok := w.relative(event.Name)
	if !ok {
		return
	}

	w.pendingMu.Lock()
	w.pending[event.Name] |= event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("Document change detected", "path", rel, "op", event.Op.String())
}

// relative returns the slash-separated path of abs below the inbox and
// whether it matches the pattern.
func (w *Watcher) relative(abs string) (string, bool) {
	rel, err := filepath.Rel(w.config.Dir, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	match, err := doublestar.Match(w.config.Pattern, rel)
	if err != nil || !match {
		return "", false
	}
	return rel, true
}

func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	paths := make([]string, 0, len(toProcess))
	for path := range toProcess {
		paths = append(paths, path)
	}
	slices.Sort(paths)

	for _, path := range paths {
		if ctx.Err() != nil {
			return
		}
		rel, _ := w.relative(path)
		event := Event{Path: rel, AbsPath: path}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			if w.forget(rel) {
				event.Operation = OpDelete
				w.send(ctx, event)
			}
			continue
		}

		hash, err := fileHash(path)
		if err != nil {
			w.logger.Warn("Failed to hash document", "path", rel, "error", err)
			continue
		}
		changed, existed := w.record(rel, hash)
		if !changed {
			continue
		}
		event.Operation = OpCreate
		if existed {
			event.Operation = OpModify
		}
		w.send(ctx, event)
	}
}

func (w *Watcher) send(ctx context.Context, event Event) {
	select {
	case w.events <- event:
	case <-ctx.Done():
	}
}
