package source

import (
	"context"
	"sync"
)

// Request asks a resolver for one document.
type Request struct {
	Ref Ref
	// Referrer is the canonical id of the document containing the directive.
	Referrer string
}

// Document is a resolved source.
type Document struct {
	// ID is the canonical identifier used for cycle detection.
	ID          string
	Text        string
	ContentType string
}

// Resolver fetches documents for one or more schemes.
type Resolver interface {
	Resolve(ctx context.Context, req Request) (*Document, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, req Request) (*Document, error)

func (f ResolverFunc) Resolve(ctx context.Context, req Request) (*Document, error) {
	return f(ctx, req)
}

// Mux routes requests to the resolver registered for their scheme.
type Mux struct {
	mu        sync.RWMutex
	resolvers map[Scheme]Resolver
}

// NewMux creates an empty mux.
func NewMux() *Mux {
	return &Mux{resolvers: make(map[Scheme]Resolver)}
}

// Handle registers r for scheme, replacing any previous registration.
func (m *Mux) Handle(scheme Scheme, r Resolver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolvers[scheme] = r
}

// Handles reports whether a resolver is registered for scheme.
func (m *Mux) Handles(scheme Scheme) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.resolvers[scheme]
	return ok
}

func (m *Mux) Resolve(ctx context.Context, req Request) (*Document, error) {
	m.mu.RLock()
	r, ok := m.resolvers[req.Ref.Scheme]
	m.mu.RUnlock()
	if !ok {
		return nil, Unsupported("Unsupported realm %s", req.Ref.Realm)
	}
	doc, err := r.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, NotFound("Could not resolve %s", req.Ref)
	}
	return doc, nil
}
