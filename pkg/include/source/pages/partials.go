package pages

import "context"

// Partials serves the latest version of each page as a mustache partial,
// so "{{> Footer}}" renders the page Footer.
type Partials struct {
	Store Store
	// Context bounds store lookups; nil means context.Background.
	Context context.Context
}

func (p Partials) LoadPartial(name string) (string, bool) {
	ctx := p.Context
	if ctx == nil {
		ctx = context.Background()
	}
	page, err := p.Store.Get(ctx, name, "")
	if err != nil || page == nil {
		return "", false
	}
	return page.Text, true
}
