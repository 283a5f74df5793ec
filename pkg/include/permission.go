package include

import (
	"sort"
	"strings"

	"github.com/benjaminschreck/go-include/pkg/include/source"
)

// Capabilities checked by the engine.
const (
	CapIncludeURL     = "INCLUDE_URL"
	CapWikiView       = "WIKI_VIEW"
	CapFileView       = "FILE_VIEW"
	CapTicketView     = "TICKET_VIEW"
	CapIncludeCreate  = "INCLUDE_CREATE"
	CapTemplateCreate = "TEMPLATE_CREATE"
)

// Permission answers capability checks for the requesting user.
type Permission interface {
	HasCapability(name string) bool
}

// Capabilities is a fixed set of granted capability names.
type Capabilities map[string]bool

// NewCapabilities grants names. Names are matched case-insensitively.
func NewCapabilities(names ...string) Capabilities {
	c := make(Capabilities, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			c[strings.ToUpper(name)] = true
		}
	}
	return c
}

func (c Capabilities) HasCapability(name string) bool {
	return c[strings.ToUpper(name)]
}

// Names returns the granted capabilities in sorted order.
func (c Capabilities) Names() []string {
	names := make([]string, 0, len(c))
	for name, ok := range c {
		if ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

type allowAll struct{}

func (allowAll) HasCapability(string) bool { return true }

// AllowAll grants every capability.
var AllowAll Permission = allowAll{}

// AllCapabilities lists every capability the engine checks.
func AllCapabilities() []string {
	return []string{
		CapIncludeURL, CapWikiView, CapFileView, CapTicketView,
		CapIncludeCreate, CapTemplateCreate,
	}
}

// Caller identifies who asked for an expansion. A nil Perm denies
// everything.
type Caller struct {
	Name string
	Perm Permission
}

func (c Caller) can(capability string) bool {
	return c.Perm != nil && c.Perm.HasCapability(capability)
}

// capabilityFor returns the capability needed to read from scheme.
func capabilityFor(scheme source.Scheme) string {
	switch scheme {
	case source.SchemeRemote:
		return CapIncludeURL
	case source.SchemePage:
		return CapWikiView
	case source.SchemeRepository:
		return CapFileView
	case source.SchemeTicket:
		return CapTicketView
	default:
		return ""
	}
}

// checkCapability fails with a PermissionError when caller may not read
// from scheme.
func (c Caller) checkCapability(scheme source.Scheme) error {
	capability := capabilityFor(scheme)
	if capability == "" || c.can(capability) {
		return nil
	}
	return &source.PermissionError{Capability: capability}
}
