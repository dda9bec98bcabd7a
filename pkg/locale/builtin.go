package locale

import (
	"embed"
	"log/slog"
	"sync"
)

//go:embed locales/*.yaml
var builtinFS embed.FS

// builtinDir is the embedded directory holding one YAML table per locale.
const builtinDir = "locales"

// NewBuiltinRegistry returns a registry loaded with the embedded tables.
// Callers that want overrides call LoadDirectory on the result.
func NewBuiltinRegistry(logger *slog.Logger) (*DefaultRegistry, error) {
	r := NewRegistry(logger)
	if err := r.LoadFS(builtinFS, builtinDir); err != nil {
		return nil, err
	}
	return r, nil
}

var builtin = sync.OnceValues(func() (*DefaultRegistry, error) {
	return NewBuiltinRegistry(nil)
})

// Builtin returns the process-wide registry of embedded tables, loaded on
// first use. The embedded tables are covered by tests, so an error here
// indicates a broken build.
func Builtin() *DefaultRegistry {
	r, err := builtin()
	if err != nil {
		panic("locale: loading embedded tables: " + err.Error())
	}
	return r
}

// MustLookup returns the embedded rules for code and panics if there are none.
func MustLookup(code string) *Rules {
	rules, err := Builtin().Lookup(code)
	if err != nil {
		panic(err)
	}
	return rules
}
