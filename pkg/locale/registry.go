package locale

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/fsnotify.v1"
	"gopkg.in/yaml.v3"
)

// DefaultCode is the locale used when a caller does not name one.
const DefaultCode = "en"

// ErrUnknownLocale is returned when no rules are registered for a code.
var ErrUnknownLocale = errors.New("unknown locale")

// Registry manages a collection of locale rules.
type Registry interface {
	// Register adds or replaces the rules for a locale
	Register(rules *Rules) error

	// Get returns the rules for a locale code
	Get(code string) (*Rules, bool)

	// Lookup returns the rules for a locale code, trying the base language
	// of a regional code ("pt-BR" -> "pt")
	Lookup(code string) (*Rules, error)

	// List returns all registered rules ordered by code
	List() []*Rules

	// LoadDirectory loads all YAML locale files from a directory
	LoadDirectory(dir string) error

	// LoadFile loads a single YAML locale file
	LoadFile(path string) error
}

// DefaultRegistry is the default implementation of the locale Registry.
//
// Rules are swapped wholesale on Register; a *Rules handed out by Get is
// never modified, so callers may hold on to it across reloads.
type DefaultRegistry struct {
	mu       sync.RWMutex
	rules    map[string]*Rules
	fsys     fs.FS
	fsysDir  string
	dir      string
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	onChange func(event string, rules *Rules)
	logger   *slog.Logger
}

// NewRegistry creates an empty locale registry.
func NewRegistry(logger *slog.Logger) *DefaultRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultRegistry{
		rules:  make(map[string]*Rules),
		logger: logger,
	}
}

// Register compiles the rules and adds them to the registry, replacing any
// rules previously registered under the same code.
func (r *DefaultRegistry) Register(rules *Rules) error {
	if rules == nil {
		return fmt.Errorf("rules cannot be nil")
	}

	if !rules.IsCompiled() {
		if err := rules.Compile(); err != nil {
			return fmt.Errorf("invalid locale rules: %w", err)
		}
	}

	code := normalizeCode(rules.Code)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rules[code]; ok {
		r.logger.Debug("Locale rules replaced", "locale", code)
	}
	r.rules[code] = rules
	return nil
}

// Unregister removes the rules for a locale.
func (r *DefaultRegistry) Unregister(code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	code = normalizeCode(code)
	if _, ok := r.rules[code]; !ok {
		return fmt.Errorf("locale %q: %w", code, ErrUnknownLocale)
	}
	delete(r.rules, code)
	return nil
}

// Get returns the rules registered under exactly this code.
func (r *DefaultRegistry) Get(code string) (*Rules, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rules, ok := r.rules[normalizeCode(code)]
	return rules, ok
}

// Lookup returns the rules for code. An empty code selects DefaultCode;
// a regional code falls back to its base language.
func (r *DefaultRegistry) Lookup(code string) (*Rules, error) {
	if code == "" {
		code = DefaultCode
	}
	if rules, ok := r.Get(code); ok {
		return rules, nil
	}
	if base, _, found := strings.Cut(normalizeCode(code), "-"); found {
		if rules, ok := r.Get(base); ok {
			return rules, nil
		}
	}
	return nil, fmt.Errorf("locale %q: %w", code, ErrUnknownLocale)
}

// List returns all registered rules ordered by code.
func (r *DefaultRegistry) List() []*Rules {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*Rules, 0, len(r.rules))
	for _, rules := range r.rules {
		list = append(list, rules)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list
}

// Count returns the number of registered locales.
func (r *DefaultRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}

// LoadFS loads every YAML file in dir of fsys. Used for the embedded tables.
func (r *DefaultRegistry) LoadFS(fsys fs.FS, dir string) error {
	r.fsys = fsys
	r.fsysDir = dir

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var loadErrors []string
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			loadErrors = append(loadErrors, fmt.Sprintf("%s: %v", entry.Name(), err))
			continue
		}
		if err := r.loadBytes(data); err != nil {
			loadErrors = append(loadErrors, fmt.Sprintf("%s: %v", entry.Name(), err))
		}
	}

	if len(loadErrors) > 0 {
		return fmt.Errorf("errors loading locales: %s", strings.Join(loadErrors, "; "))
	}
	return nil
}

// LoadDirectory loads all YAML locale files from a directory. Files override
// rules already registered under the same code.
func (r *DefaultRegistry) LoadDirectory(dir string) error {
	r.dir = dir

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			// Directory doesn't exist, nothing to load
			return nil
		}
		return fmt.Errorf("checking directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var loadErrors []string
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		if err := r.LoadFile(filepath.Join(dir, entry.Name())); err != nil {
			loadErrors = append(loadErrors, fmt.Sprintf("%s: %v", entry.Name(), err))
		}
	}

	if len(loadErrors) > 0 {
		return fmt.Errorf("errors loading locales: %s", strings.Join(loadErrors, "; "))
	}
	return nil
}

// LoadFile loads a single locale file.
func (r *DefaultRegistry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}
	return r.loadBytes(data)
}

func (r *DefaultRegistry) loadBytes(data []byte) error {
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}
	if err := r.Register(&rules); err != nil {
		return fmt.Errorf("registering locale: %w", err)
	}
	return nil
}

// Reload rebuilds the registry from its embedded tables and override directory.
func (r *DefaultRegistry) Reload() error {
	if r.fsys == nil && r.dir == "" {
		return fmt.Errorf("no source configured for reload")
	}

	// Build the replacement set aside so readers never see a partial registry.
	fresh := NewRegistry(r.logger)
	if r.fsys != nil {
		if err := fresh.LoadFS(r.fsys, r.fsysDir); err != nil {
			return err
		}
	}
	if r.dir != "" {
		if err := fresh.LoadDirectory(r.dir); err != nil {
			return err
		}
	}

	r.mu.Lock()
	r.rules = fresh.rules
	r.mu.Unlock()
	return nil
}

// SetOnChange sets a callback function that is called when locale files change.
func (r *DefaultRegistry) SetOnChange(fn func(event string, rules *Rules)) {
	r.onChange = fn
}

// Watch starts watching the override directory for changes.
func (r *DefaultRegistry) Watch() error {
	if r.dir == "" {
		return fmt.Errorf("no directory configured for watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	r.watcher = watcher
	r.stopChan = make(chan struct{})

	go r.watchLoop()

	if err := watcher.Add(r.dir); err != nil {
		r.watcher.Close()
		return fmt.Errorf("watching directory %s: %w", r.dir, err)
	}

	r.logger.Info("Watching locale overrides", "dir", r.dir)
	return nil
}

// watchLoop handles file system events.
func (r *DefaultRegistry) watchLoop() {
	for {
		select {
		case <-r.stopChan:
			return

		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if !isYAML(event.Name) {
				continue
			}

			switch {
			case event.Op&fsnotify.Create == fsnotify.Create:
				r.handleFileChange(event.Name, "create")
			case event.Op&fsnotify.Write == fsnotify.Write:
				r.handleFileChange(event.Name, "modify")
			case event.Op&fsnotify.Remove == fsnotify.Remove,
				event.Op&fsnotify.Rename == fsnotify.Rename:
				r.handleFileRemove(event.Name)
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.logger.Error("Locale watcher error", "error", err)
		}
	}
}

func (r *DefaultRegistry) handleFileChange(path string, eventType string) {
	data, err := os.ReadFile(path)
	if err != nil {
		r.logger.Warn("Failed to read locale file", "path", path, "error", err)
		return
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		r.logger.Warn("Failed to parse locale file", "path", path, "error", err)
		return
	}
	if err := r.Register(&rules); err != nil {
		r.logger.Warn("Failed to register locale file", "path", path, "error", err)
		return
	}

	r.logger.Info("Locale rules reloaded", "locale", rules.Code, "event", eventType)
	if r.onChange != nil {
		r.onChange(eventType, &rules)
	}
}

// handleFileRemove reloads everything, since a removed override must fall
// back to the embedded table for that code.
func (r *DefaultRegistry) handleFileRemove(path string) {
	if err := r.Reload(); err != nil {
		r.logger.Warn("Failed to reload locales", "path", path, "error", err)
	}
	if r.onChange != nil {
		r.onChange("remove", nil)
	}
}

// StopWatch stops watching the override directory.
func (r *DefaultRegistry) StopWatch() {
	if r.stopChan != nil {
		close(r.stopChan)
		r.stopChan = nil
	}
	if r.watcher != nil {
		r.watcher.Close()
		r.watcher = nil
	}
}

func normalizeCode(code string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(code)), "_", "-")
}

func isYAML(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
