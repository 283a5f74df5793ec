package pages

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/benjaminschreck/go-include/pkg/include/source"
)

// IDPrefix starts every canonical page id.
const IDPrefix = "wiki://"

// ID returns the canonical id of a page version.
func ID(name, version string) string {
	if version != "" {
		return IDPrefix + name + "@" + version
	}
	return IDPrefix + name
}

// Resolver resolves page references against a Store.
type Resolver struct {
	store       Store
	contentType string
	suggestions int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithContentType sets the content type reported when the request names
// none.
func WithContentType(contentType string) Option {
	return func(r *Resolver) {
		r.contentType = contentType
	}
}

// WithSuggestions sets how many similar page names are offered when a page
// is missing. Zero disables suggestions.
func WithSuggestions(n int) Option {
	return func(r *Resolver) {
		r.suggestions = n
	}
}

// NewResolver creates a resolver over store.
func NewResolver(store Store, opts ...Option) *Resolver {
	r := &Resolver{store: store, contentType: "text/x-wiki", suggestions: 3}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) Resolve(ctx context.Context, req source.Request) (*source.Document, error) {
	referrer := strings.TrimPrefix(req.Referrer, IDPrefix)
	referrer, _ = source.SplitVersion(referrer)

	name, err := ResolveName(ctx, r.store, req.Ref.Locator, referrer)
	if err != nil {
		return nil, err
	}
	version := req.Ref.Version

	page, err := r.store.Get(ctx, name, version)
	if err != nil {
		return nil, fmt.Errorf("pages: %w", err)
	}
	if page == nil {
		if version != "" {
			return nil, source.NotFound("No version %q for wiki page %q", version, name)
		}
		nf := source.NotFound("Wiki page %q does not exist", name)
		nf.Suggestions = r.suggest(ctx, name)
		return nil, nf
	}

	contentType := req.Ref.ContentType
	if contentType == "" {
		contentType = r.contentType
	}
	if version != "" {
		version = strconv.Itoa(page.Version)
	}
	return &source.Document{ID: ID(name, version), Text: page.Text, ContentType: contentType}, nil
}

func (r *Resolver) suggest(ctx context.Context, name string) []string {
	if r.suggestions <= 0 {
		return nil
	}
	names, err := r.store.Names(ctx)
	if err != nil || len(names) == 0 {
		return nil
	}
	ranks := fuzzy.RankFindFold(name, names)
	if len(ranks) == 0 {
		// fall back to matching the last path segment
		if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
			ranks = fuzzy.RankFindFold(name[idx+1:], names)
		}
	}
	sort.Sort(ranks)
	var out []string
	for _, rank := range ranks {
		if len(out) == r.suggestions {
			break
		}
		out = append(out, rank.Target)
	}
	return out
}

// ResolveName applies the page naming rules to name as written on the page
// referrer. A leading slash makes the name absolute, "." and ".." segments
// are relative to the referrer, and any other name is looked up first among
// the referrer's ancestors.
func ResolveName(ctx context.Context, store Store, name, referrer string) (string, error) {
	switch {
	case strings.HasPrefix(name, "/"):
		return strings.TrimLeft(name, "/"), nil
	case strings.HasPrefix(name, "./"), strings.HasPrefix(name, "../"), name == ".", name == "..":
		return resolveRelative(name, referrer), nil
	}
	return resolveScoped(ctx, store, name, referrer)
}

func resolveRelative(name, referrer string) string {
	var base []string
	if referrer != "" {
		base = strings.Split(referrer, "/")
	}
	components := strings.Split(name, "/")
	for i, comp := range components {
		if comp == ".." {
			if len(base) > 0 {
				base = base[:len(base)-1]
			}
		} else if comp != "." {
			base = append(base, components[i:]...)
			break
		}
	}
	return strings.Join(base, "/")
}

func resolveScoped(ctx context.Context, store Store, name, referrer string) (string, error) {
	parts := strings.Split(referrer, "/")
	if len(parts) == 1 {
		return name, nil
	}

	for i := len(parts) - 1; i > 0; i-- {
		candidate := strings.Join(parts[:i], "/") + "/" + name
		ok, err := store.Exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if ok {
			return candidate, nil
		}
	}

	ok, err := store.Exists(ctx, name)
	if err != nil {
		return "", err
	}
	if ok {
		return name, nil
	}

	// On First/Second/Third, Second/Other means First/Second/Other.
	if first, rest, found := strings.Cut(name, "/"); found {
		for i, part := range parts {
			if part != first {
				continue
			}
			anchor := strings.Join(parts[:i+1], "/")
			ok, err := store.Exists(ctx, anchor)
			if err != nil {
				return "", err
			}
			if ok {
				return anchor + "/" + rest, nil
			}
		}
	}

	return strings.Join(parts[:len(parts)-1], "/") + "/" + name, nil
}
