package tickets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/benjaminschreck/go-include/pkg/include/source"
)

// Resolver serves ticket comments. Comment bodies are always reported in
// the configured native content type.
type Resolver struct {
	store       Store
	contentType string
}

// NewResolver creates a resolver reporting contentType for every comment.
func NewResolver(store Store, contentType string) *Resolver {
	if contentType == "" {
		contentType = "text/x-wiki"
	}
	return &Resolver{store: store, contentType: contentType}
}

func (r *Resolver) Resolve(ctx context.Context, req source.Request) (*source.Document, error) {
	num, field, found := strings.Cut(req.Ref.Locator, ":")
	if !found {
		return nil, source.Malformed("Ticket field must be specified")
	}
	id, err := strconv.Atoi(num)
	if err != nil || id <= 0 {
		return nil, source.Malformed("%q is not a valid ticket id", num)
	}

	ticket, err := r.store.Ticket(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("tickets: %w", err)
	}
	if ticket == nil {
		return nil, source.NotFound("Ticket %q does not exist", num)
	}

	kind, number, found := strings.Cut(field, ":")
	if !found {
		return nil, source.Malformed("Malformed ticket field %q", field)
	}
	if kind != "comment" {
		return nil, source.Unsupported("Unsupported ticket field %q", kind)
	}

	want := commentNumber(number)
	for _, c := range ticket.Comments {
		if commentNumber(c.Number) == want && c.Text != "" {
			return &source.Document{
				ID:          "ticket:" + strconv.Itoa(id) + ":comment:" + want,
				Text:        c.Text,
				ContentType: r.contentType,
			}, nil
		}
	}
	return nil, source.NotFound("Comment %s does not exist for Ticket %s", number, num)
}

// commentNumber normalizes a dotted comment number so "02.3" and "2.3"
// compare equal. Parts that are not integers are kept as written.
func commentNumber(s string) string {
	parts := strings.Split(s, ".")
	for i, part := range parts {
		if n, err := strconv.Atoi(part); err == nil && n >= 0 {
			parts[i] = strconv.Itoa(n)
		}
	}
	return strings.Join(parts, ".")
}
