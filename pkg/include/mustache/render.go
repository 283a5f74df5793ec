package mustache

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// MissingVariable returns the placeholder rendered for an unresolved name.
func MissingVariable(name string) string {
	return "`{?" + name + "?}`"
}

// MissingPartial returns the placeholder rendered for an unresolved partial.
func MissingPartial(name string) string {
	return "`{?>" + name + "?}`"
}

// PartialLoader loads partial templates by name.
type PartialLoader interface {
	LoadPartial(name string) (string, bool)
}

// MapPartials is a PartialLoader backed by a map.
type MapPartials map[string]string

func (m MapPartials) LoadPartial(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// Renderer renders templates against a stack of contexts.
type Renderer struct {
	cache    *Cache
	partials PartialLoader
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithCache memoizes parsed templates in c.
func WithCache(c *Cache) Option {
	return func(r *Renderer) {
		r.cache = c
	}
}

// WithPartials sets the loader used for {{> name}} tags.
func WithPartials(p PartialLoader) Option {
	return func(r *Renderer) {
		r.partials = p
	}
}

// NewRenderer creates a renderer. Without options it parses every template
// and renders every partial as a placeholder.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render interpolates text. Later contexts shadow earlier ones.
func (r *Renderer) Render(text string, contexts ...map[string]any) string {
	if !strings.Contains(text, "{{") {
		return text
	}
	var tmpl *Template
	if r.cache != nil {
		tmpl = r.cache.Parse(text)
	} else {
		tmpl = Parse(text)
	}
	return r.Execute(tmpl, contexts...)
}

// Execute renders a parsed template.
func (r *Renderer) Execute(tmpl *Template, contexts ...map[string]any) string {
	st := &contextStack{}
	for _, ctx := range contexts {
		if ctx != nil {
			st.frames = append(st.frames, ctx)
		}
	}
	var b strings.Builder
	renderNodes(&b, st, r.partials, tmpl.root, 0)
	return b.String()
}

// Render interpolates text with a throwaway renderer.
func Render(text string, contexts ...map[string]any) string {
	return NewRenderer().Render(text, contexts...)
}

type contextStack struct {
	frames []any
}

func (s *contextStack) push(v any) *contextStack {
	frames := make([]any, len(s.frames)+1)
	copy(frames, s.frames)
	frames[len(s.frames)] = v
	return &contextStack{frames: frames}
}

func (s *contextStack) lookup(name string) (any, bool) {
	if name == "." {
		if len(s.frames) == 0 {
			return nil, false
		}
		return s.frames[len(s.frames)-1], true
	}
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := lookupIn(s.frames[i], []string{name}); ok {
			return v, true
		}
	}
	if !strings.Contains(name, ".") {
		return nil, false
	}
	segments := strings.Split(name, ".")
	for i := len(s.frames) - 1; i >= 0; i-- {
		base, ok := lookupIn(s.frames[i], segments[:1])
		if !ok {
			continue
		}
		return lookupIn(base, segments[1:])
	}
	return nil, false
}

func lookupIn(ctx any, segments []string) (any, bool) {
	current := ctx
	for _, seg := range segments {
		switch v := current.(type) {
		case map[string]any:
			next, ok := v[seg]
			if !ok {
				return nil, false
			}
			current = next
		case map[string]string:
			next, ok := v[seg]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, false
			}
			current = v[idx]
		case []string:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, false
			}
			current = v[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

type node interface {
	render(b *strings.Builder, st *contextStack, partials PartialLoader, depth int)
}

func renderNodes(b *strings.Builder, st *contextStack, partials PartialLoader, nodes []node, depth int) {
	for _, n := range nodes {
		n.render(b, st, partials, depth)
	}
}

type textNode struct{ text string }

func (t *textNode) render(b *strings.Builder, _ *contextStack, _ PartialLoader, _ int) {
	b.WriteString(t.text)
}

type varNode struct{ name string }

func (v *varNode) render(b *strings.Builder, st *contextStack, _ PartialLoader, _ int) {
	val, ok := st.lookup(v.name)
	if !ok {
		b.WriteString(MissingVariable(v.name))
		return
	}
	b.WriteString(toString(val))
}

type sectionNode struct {
	name     string
	inverted bool
	children []node
}

func (s *sectionNode) render(b *strings.Builder, st *contextStack, partials PartialLoader, depth int) {
	val, _ := st.lookup(s.name)
	if s.inverted {
		if isFalsey(val) {
			renderNodes(b, st, partials, s.children, depth)
		}
		return
	}
	switch v := val.(type) {
	case nil:
	case bool:
		if v {
			renderNodes(b, st, partials, s.children, depth)
		}
	case []any:
		for _, item := range v {
			renderNodes(b, st.push(item), partials, s.children, depth)
		}
	case []string:
		for _, item := range v {
			renderNodes(b, st.push(item), partials, s.children, depth)
		}
	case string:
		if v != "" {
			renderNodes(b, st.push(v), partials, s.children, depth)
		}
	default:
		renderNodes(b, st.push(v), partials, s.children, depth)
	}
}

// maxPartialDepth bounds recursive partials.
const maxPartialDepth = 16

type partialNode struct {
	name   string
	indent string
}

func (p *partialNode) render(b *strings.Builder, st *contextStack, partials PartialLoader, depth int) {
	if partials == nil || depth >= maxPartialDepth {
		b.WriteString(MissingPartial(p.name))
		return
	}
	text, ok := partials.LoadPartial(p.name)
	if !ok {
		b.WriteString(MissingPartial(p.name))
		return
	}
	if p.indent != "" {
		text = applyIndent(text, p.indent)
	}
	renderNodes(b, st, partials, Parse(text).root, depth+1)
}

func applyIndent(text, indent string) string {
	lines := strings.SplitAfter(text, "\n")
	var b strings.Builder
	for _, line := range lines {
		if line == "" {
			continue
		}
		b.WriteString(indent)
		b.WriteString(line)
	}
	return b.String()
}

func isFalsey(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case bool:
		return !v
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	case []byte:
		return string(s)
	case map[string]any:
		keys := make([]string, 0, len(s))
		for k := range s {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + toString(s[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case []any:
		parts := make([]string, len(s))
		for i, item := range s {
			parts[i] = toString(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(s)
	}
}
