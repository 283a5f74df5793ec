package pages

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtension is the file extension of pages in a DirStore.
const DefaultExtension = ".wiki"

// DirStore reads pages from files below a root directory. The page
// "Guide/Install" lives in Root/Guide/Install.wiki. Files carry no history,
// so only the unversioned page (or version "1") exists.
type DirStore struct {
	Root      string
	Extension string
}

// NewDirStore creates a store rooted at root.
func NewDirStore(root string) *DirStore {
	return &DirStore{Root: root, Extension: DefaultExtension}
}

// Path returns the file backing name, or "" when name escapes the root.
func (s *DirStore) Path(name string) string {
	clean := filepath.Clean("/" + filepath.FromSlash(name))
	if clean == string(filepath.Separator) {
		return ""
	}
	return filepath.Join(s.Root, clean) + s.ext()
}

// Name maps a file below the root back to its page name.
func (s *DirStore) Name(path string) (string, bool) {
	rel, err := filepath.Rel(s.Root, path)
	if err != nil || strings.HasPrefix(rel, "..") || !strings.HasSuffix(rel, s.ext()) {
		return "", false
	}
	return filepath.ToSlash(strings.TrimSuffix(rel, s.ext())), true
}

func (s *DirStore) ext() string {
	if s.Extension == "" {
		return DefaultExtension
	}
	return s.Extension
}

func (s *DirStore) Get(_ context.Context, name, version string) (*Page, error) {
	if version != "" && version != "1" {
		return nil, nil
	}
	path := s.Path(name)
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &Page{Name: name, Version: 1, Text: string(data)}, nil
}

func (s *DirStore) Exists(_ context.Context, name string) (bool, error) {
	path := s.Path(name)
	if path == "" {
		return false, nil
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}

func (s *DirStore) Names(_ context.Context) ([]string, error) {
	var names []string
	err := filepath.WalkDir(s.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if name, ok := s.Name(path); ok {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}
