package inbox

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Config{}, nil); err == nil {
		t.Error("New() with no directory should fail")
	}
	if _, err := New(Config{Dir: t.TempDir(), Pattern: "[a-"}, nil); err == nil {
		t.Error("New() with invalid pattern should fail")
	}

	w, err := New(Config{Dir: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if w.config.Pattern != DefaultPattern || w.config.Debounce != DefaultDebounce {
		t.Errorf("defaults = %q, %v", w.config.Pattern, w.config.Debounce)
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.json"), `{"title":"B"}`)
	writeFile(t, filepath.Join(dir, "nested", "a.json"), `{"title":"A"}`)
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	w, err := New(Config{Dir: dir}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	events, err := w.Scan()
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	want := []string{"b.json", "nested/a.json"}
	if len(events) != len(want) {
		t.Fatalf("Scan() = %d events, want %d", len(events), len(want))
	}
	for i, event := range events {
		if event.Path != want[i] || event.Operation != OpCreate {
			t.Errorf("events[%d] = %+v, want create %s", i, event, want[i])
		}
	}

	again, err := w.Scan()
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(again) != 0 {
		t.Errorf("second Scan() = %d events, want 0", len(again))
	}

	writeFile(t, filepath.Join(dir, "b.json"), `{"title":"B2"}`)
	changed, err := w.Scan()
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(changed) != 1 || changed[0].Operation != OpModify {
		t.Errorf("Scan() after edit = %+v, want one modify", changed)
	}
}

func TestStateRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.json"), `{}`)

	w, err := New(Config{Dir: dir}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := w.Scan(); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	statePath := filepath.Join(t.TempDir(), "state.json")
	if err := w.SaveState(statePath); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}

	restored, err := New(Config{Dir: dir}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := restored.LoadState(statePath); err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}
	file, ok := restored.Seen("a.json")
	if !ok || file.Hash == "" {
		t.Fatalf("Seen(a.json) = %+v, %v", file, ok)
	}

	events, err := restored.Scan()
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(events) != 0 {
		t.Errorf("Scan() after restore = %d events, want 0", len(events))
	}
}

func TestLoadStateMissing(t *testing.T) {
	w, err := New(Config{Dir: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.LoadState(filepath.Join(t.TempDir(), "absent.json")); err != nil {
		t.Errorf("LoadState() error = %v, want nil", err)
	}
}

func TestStartReportsChanges(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Config{Dir: dir, Debounce: 20 * time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "page.json")
	writeFile(t, path, `{"title":"P"}`)
	expect(t, w, "page.json", OpCreate)

	writeFile(t, filepath.Join(dir, "skip.txt"), "x")
	writeFile(t, path, `{"title":"P2"}`)
	expect(t, w, "page.json", OpModify)

	if err := os.Remove(path); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	expect(t, w, "page.json", OpDelete)
}

func expect(t *testing.T, w *Watcher, path string, op Operation) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case event, ok := <-w.Events():
			if !ok {
				t.Fatalf("events closed waiting for %s %s", op, path)
			}
			if event.Path == path && event.Operation == op {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s %s", op, path)
		}
	}
}
