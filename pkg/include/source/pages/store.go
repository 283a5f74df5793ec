// Package pages resolves wiki page references.
//
// Page names may be absolute ("/Guide"), relative to the referring page
// ("./Child", "../Sibling") or scoped, in which case pages higher up the
// referrer's hierarchy are preferred. Stores hold the page text; the
// Resolver applies the naming rules and builds canonical ids of the form
// "wiki://Name[@version]".
package pages

import (
	"context"
	"sort"
	"strconv"
	"sync"
)

// Page is one version of a wiki page.
type Page struct {
	Name    string
	Version int
	Text    string
}

// Store holds wiki pages. Get returns a nil page without error when the
// page or version does not exist; an empty version selects the latest.
type Store interface {
	Get(ctx context.Context, name, version string) (*Page, error)
	Exists(ctx context.Context, name string) (bool, error)
	Names(ctx context.Context) ([]string, error)
}

// MemoryStore is an in-memory Store keeping every version.
type MemoryStore struct {
	mu    sync.RWMutex
	pages map[string][]string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pages: make(map[string][]string)}
}

// Put stores text as a new version of name and returns the version number.
func (s *MemoryStore) Put(name, text string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[name] = append(s.pages[name], text)
	return len(s.pages[name])
}

func (s *MemoryStore) Get(_ context.Context, name, version string) (*Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions := s.pages[name]
	if len(versions) == 0 {
		return nil, nil
	}
	n := len(versions)
	if version != "" {
		v, err := strconv.Atoi(version)
		if err != nil || v < 1 || v > len(versions) {
			return nil, nil
		}
		n = v
	}
	return &Page{Name: name, Version: n, Text: versions[n-1]}, nil
}

func (s *MemoryStore) Exists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pages[name]) > 0, nil
}

func (s *MemoryStore) Names(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.pages))
	for name := range s.pages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
