package include

import (
	"io"
	"testing"

	"github.com/benjaminschreck/go-include/pkg/include/source"
	"github.com/benjaminschreck/go-include/pkg/include/source/pages"
)

var admin = Caller{Name: "alice", Perm: AllowAll}

func quietLogger() *Logger {
	return NewLogger(io.Discard, LogOff)
}

// newTestEngine serves the given wiki pages and nothing else.
func newTestEngine(t *testing.T, wiki map[string]string, opts ...Option) *Engine {
	t.Helper()

	store := pages.NewMemoryStore()
	for name, text := range wiki {
		store.Put(name, text)
	}
	mux := source.NewMux()
	mux.Handle(source.SchemePage, pages.NewResolver(store))

	base := []Option{
		WithConfig(DefaultConfig()),
		WithResolver(mux),
		WithLogger(quietLogger()),
	}
	return NewWithOptions(append(base, opts...)...)
}
