package inbox

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// FileState records the content of a document the inbox has seen.
type FileState struct {
	// Path is relative to the inbox directory, with forward slashes.
	Path string `json:"path"`

	// Hash is the SHA256 of the file content.
	Hash string `json:"hash"`

	// SeenAt is when this content was first observed.
	SeenAt time.Time `json:"seen_at"`
}

// State maps paths to the last content seen, so unchanged documents are
// not reported again after a restart.
type State struct {
	Files   map[string]FileState `json:"files"`
	Version int                  `json:"version"`
}

// NewState creates an empty state.
func NewState() *State {
	return &State{
		Files:   make(map[string]FileState),
		Version: 1,
	}
}

// SaveState writes the watcher's state to path.
func (w *Watcher) SaveState(path string) error {
	w.stateMu.RLock()
	data, err := json.MarshalIndent(w.state, "", "  ")
	w.stateMu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	// Write to a temp file first, then rename.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename file: %w", err)
	}
	return nil
}

// LoadState replaces the watcher's state with the one saved at path. A
// missing file leaves the state empty.
func (w *Watcher) LoadState(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read state file: %w", err)
	}

	state := NewState()
	if err := json.Unmarshal(data, state); err != nil {
		return fmt.Errorf("unmarshal state: %w", err)
	}
	if state.Files == nil {
		state.Files = make(map[string]FileState)
	}

	w.stateMu.Lock()
	w.state = state
	w.stateMu.Unlock()
	return nil
}

// Seen returns the recorded state of a relative path.
func (w *Watcher) Seen(rel string) (FileState, bool) {
	w.stateMu.RLock()
	defer w.stateMu.RUnlock()
	file, ok := w.state.Files[rel]
	return file, ok
}

// record stores hash for rel and reports whether it differs from what was
// seen before.
func (w *Watcher) record(rel, hash string) (changed, existed bool) {
	w.stateMu.Lock()
	defer w.stateMu.Unlock()

	old, existed := w.state.Files[rel]
	if existed && old.Hash == hash {
		return false, true
	}
	w.state.Files[rel] = FileState{Path: rel, Hash: hash, SeenAt: time.Now()}
	return true, existed
}

func (w *Watcher) forget(rel string) bool {
	w.stateMu.Lock()
	defer w.stateMu.Unlock()
	_, ok := w.state.Files[rel]
	delete(w.state.Files, rel)
	return ok
}

// fileHash computes the SHA256 of a file.
func fileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
