// Package tickets resolves "ticket:N:comment:M" references.
package tickets

import (
	"context"
	"sync"
)

// Comment is one entry of a ticket's comment thread. Number is the
// comment's position as displayed, such as "3" or "2.3" for replies.
type Comment struct {
	Number string
	Author string
	Text   string
}

// Ticket is a ticket with its comments.
type Ticket struct {
	ID       int
	Summary  string
	Comments []Comment
}

// Store holds tickets. Ticket returns nil without error when the ticket
// does not exist.
type Store interface {
	Ticket(ctx context.Context, id int) (*Ticket, error)
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu      sync.RWMutex
	tickets map[int]*Ticket
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tickets: make(map[int]*Ticket)}
}

// Add stores t, replacing any ticket with the same id.
func (s *MemoryStore) Add(t Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[t.ID] = &t
}

func (s *MemoryStore) Ticket(_ context.Context, id int) (*Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickets[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	cp.Comments = append([]Comment(nil), t.Comments...)
	return &cp, nil
}
