package locale

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewRegistry(t *testing.T) {
	registry := NewRegistry(nil)
	if registry == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if registry.Count() != 0 {
		t.Errorf("Count() = %d, want 0", registry.Count())
	}
}

func TestRegistryRegister(t *testing.T) {
	registry := NewRegistry(nil)

	if err := registry.Register(nil); err == nil {
		t.Error("Register(nil) should return error")
	}
	if err := registry.Register(&Rules{Code: "xx"}); err == nil {
		t.Error("Register() invalid rules should return error")
	}

	first := &Rules{Code: "xx", Name: "First"}
	if err := registry.Register(first); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if !first.IsCompiled() {
		t.Error("Register() should compile the rules")
	}

	// Re-registering replaces the rules rather than mutating them.
	second := &Rules{Code: "XX", Name: "Second"}
	if err := registry.Register(second); err != nil {
		t.Fatalf("Register() replacement error = %v", err)
	}
	got, ok := registry.Get("xx")
	if !ok || got != second {
		t.Errorf("Get() = %v, want the replacement rules", got)
	}
	if first.Name != "First" {
		t.Error("replaced rules were mutated")
	}
	if registry.Count() != 1 {
		t.Errorf("Count() = %d, want 1", registry.Count())
	}
}

func TestRegistryLookup(t *testing.T) {
	registry := NewRegistry(nil)
	for _, code := range []string{"en", "pt"} {
		if err := registry.Register(&Rules{Code: code, Name: code}); err != nil {
			t.Fatalf("Register(%s) error = %v", code, err)
		}
	}

	tests := []struct {
		code    string
		want    string
		wantErr bool
	}{
		{"", "en", false},
		{"pt", "pt", false},
		{"pt-BR", "pt", false},
		{"pt_BR", "pt", false},
		{"PT", "pt", false},
		{"xx", "", true},
	}
	for _, tt := range tests {
		rules, err := registry.Lookup(tt.code)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownLocale) {
				t.Errorf("Lookup(%q) error = %v, want ErrUnknownLocale", tt.code, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Lookup(%q) error = %v", tt.code, err)
			continue
		}
		if rules.Code != tt.want {
			t.Errorf("Lookup(%q) = %s, want %s", tt.code, rules.Code, tt.want)
		}
	}
}

func TestRegistryUnregister(t *testing.T) {
	registry := NewRegistry(nil)
	if err := registry.Register(&Rules{Code: "xx", Name: "X"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := registry.Unregister("xx"); err != nil {
		t.Errorf("Unregister() error = %v", err)
	}
	if err := registry.Unregister("xx"); !errors.Is(err, ErrUnknownLocale) {
		t.Errorf("Unregister() missing error = %v, want ErrUnknownLocale", err)
	}
}

func TestRegistryList(t *testing.T) {
	registry := NewRegistry(nil)
	for _, code := range []string{"ru", "de", "en"} {
		if err := registry.Register(&Rules{Code: code, Name: code}); err != nil {
			t.Fatalf("Register(%s) error = %v", code, err)
		}
	}
	list := registry.List()
	want := []string{"de", "en", "ru"}
	if len(list) != len(want) {
		t.Fatalf("List() returned %d rules, want %d", len(list), len(want))
	}
	for i, rules := range list {
		if rules.Code != want[i] {
			t.Errorf("List()[%d] = %s, want %s", i, rules.Code, want[i])
		}
	}
}

func TestBuiltinRegistry(t *testing.T) {
	registry, err := NewBuiltinRegistry(nil)
	if err != nil {
		t.Fatalf("NewBuiltinRegistry() error = %v", err)
	}

	want := []string{
		"ar", "be", "bg", "cs", "de", "dmy", "el", "en", "es", "et", "fr", "hu", "id",
		"it", "ja", "lb", "lt", "nl", "pt", "ro", "ru", "sk", "sl", "tr", "uk", "vi",
	}
	if registry.Count() != len(want) {
		t.Errorf("Count() = %d, want %d", registry.Count(), len(want))
	}
	for _, code := range want {
		rules, ok := registry.Get(code)
		if !ok {
			t.Errorf("builtin locale %q missing", code)
			continue
		}
		if !rules.IsCompiled() {
			t.Errorf("builtin locale %q not compiled", code)
		}
	}
}

func TestRegistryLoadDirectoryOverrides(t *testing.T) {
	dir := t.TempDir()

	override := `code: de
name: German (override)
remap:
  - {from: Lenz, to: March}
`
	if err := os.WriteFile(filepath.Join(dir, "de.yaml"), []byte(override), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	registry, err := NewBuiltinRegistry(nil)
	if err != nil {
		t.Fatalf("NewBuiltinRegistry() error = %v", err)
	}
	if err := registry.LoadDirectory(dir); err != nil {
		t.Fatalf("LoadDirectory() error = %v", err)
	}

	de, _ := registry.Get("de")
	if de.Name != "German (override)" {
		t.Errorf("override not applied, Name = %q", de.Name)
	}
	if got := de.Translate("3 Lenz 1848"); got != "3 March 1848" {
		t.Errorf("Translate() = %q, want override remap", got)
	}
}

func TestRegistryLoadDirectoryMissing(t *testing.T) {
	registry := NewRegistry(nil)
	if err := registry.LoadDirectory(filepath.Join(t.TempDir(), "missing")); err != nil {
		t.Errorf("LoadDirectory() on a missing directory error = %v, want nil", err)
	}
}

func TestRegistryLoadFileInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("code: [unterminated"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	registry := NewRegistry(nil)
	if err := registry.LoadFile(path); err == nil {
		t.Error("LoadFile() should fail on invalid YAML")
	}
}

func TestRegistryReloadFallsBackToBuiltin(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "de.yaml")
	if err := os.WriteFile(path, []byte("code: de\nname: Override\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	registry, err := NewBuiltinRegistry(nil)
	if err != nil {
		t.Fatalf("NewBuiltinRegistry() error = %v", err)
	}
	if err := registry.LoadDirectory(dir); err != nil {
		t.Fatalf("LoadDirectory() error = %v", err)
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := registry.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	de, ok := registry.Get("de")
	if !ok || de.Name != "German" {
		t.Errorf("after Reload() de = %v, want builtin German", de)
	}
}

func TestRegistryWatch(t *testing.T) {
	dir := t.TempDir()

	registry := NewRegistry(nil)
	if err := registry.LoadDirectory(dir); err != nil {
		t.Fatalf("LoadDirectory() error = %v", err)
	}

	changed := make(chan string, 4)
	registry.SetOnChange(func(event string, rules *Rules) {
		if rules != nil {
			changed <- rules.Code
		}
	})

	if err := registry.Watch(); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer registry.StopWatch()

	content := "code: xx\nname: Watched\n"
	if err := os.WriteFile(filepath.Join(dir, "xx.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case code := <-changed:
		if code != "xx" {
			t.Errorf("onChange code = %q, want xx", code)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for watched locale to load")
	}

	if _, ok := registry.Get("xx"); !ok {
		t.Error("watched locale not registered")
	}
}

func TestRegistryWatchWithoutDirectory(t *testing.T) {
	registry := NewRegistry(nil)
	if err := registry.Watch(); err == nil {
		t.Error("Watch() without a directory should return error")
	}
}
