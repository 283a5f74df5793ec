// Package include expands include and template directives in wiki markup.
//
// A directive names another document (a wiki page, a remote URL, a file in a
// repository or a ticket comment) or carries an inline template body. The
// engine fetches the referenced content, interpolates it with mustache
// variables and splices it into the surrounding text, recursively.
//
// Basic Usage:
//
//	mux := source.NewMux()
//	mux.Handle(source.SchemePage, pages.NewResolver(store))
//
//	engine := include.NewWithOptions(include.WithResolver(mux))
//	caller := include.Caller{Name: "alice", Perm: include.AllowAll}
//
//	out, err := engine.Preprocess(ctx, caller, "WikiStart", text)
//
// Directive Syntax:
//
// Include: [[Include(PageName)]], [[Include(source:trunk/README@42, text/plain)]],
// [[Include(src=ticket:12:comment:3, color=red)]]
//
// Execute: a fenced block whose first line is #!Template (or #!Include)
//
//	{{{#!Template mime_type=text/x-wiki
//	Hello {{user}}, you are on {{self.url}} line {{self.lineno}}.
//	}}}
//
// Named arguments become variables of the included document, and positional
// arguments are available as {{argv[0]}}, {{argv[1]}} or {{#argv}}...{{/argv}}.
package include

import (
	"context"
	"fmt"
	"io"

	"github.com/benjaminschreck/go-include/pkg/include/mustache"
	"github.com/benjaminschreck/go-include/pkg/include/scan"
	"github.com/benjaminschreck/go-include/pkg/include/source"
)

// Interpolator renders template text. Later contexts shadow earlier ones.
// Missing names render as placeholders; rendering never fails.
type Interpolator interface {
	Render(template string, contexts ...map[string]any) string
}

// Engine provides the main API for expanding documents.
// Use New() to create a new engine instance. An Engine is safe for
// concurrent use once constructed.
type Engine struct {
	config       *Config
	resolver     source.Resolver
	interpolator Interpolator
	partials     mustache.PartialLoader
	cache        *mustache.Cache
	logger       *Logger
	globals      Vars

	customInterpolator bool

	scanner    *scan.Scanner
	directives map[string]bool
	validator  *validator
}

// New creates a new engine with the global configuration and no sources.
func New() *Engine {
	return NewWithConfig(GetGlobalConfig())
}

// NewWithConfig creates a new engine with custom configuration.
func NewWithConfig(config *Config) *Engine {
	e := &Engine{
		config:   NewConfigWithDefaults(config),
		resolver: source.NewMux(),
		globals:  make(Vars),
	}
	e.compile()
	return e
}

// NewWithOptions creates a new engine with the specified options.
func NewWithOptions(opts ...Option) *Engine {
	e := New()
	for _, opt := range opts {
		opt(e)
	}
	e.compile()
	return e
}

// compile derives scanners and the default interpolator from the config.
func (e *Engine) compile() {
	names := e.config.DirectiveNames
	e.scanner = scan.NewScanner(names, scan.InlineCode, scan.DirectiveCall, scan.FenceOpen)
	e.directives = make(map[string]bool, len(names))
	for _, name := range names {
		e.directives[name] = true
	}
	e.validator = newValidator(names)

	if !e.customInterpolator {
		if e.config.CacheMaxSize > 0 {
			e.cache = mustache.NewCache(mustache.CacheConfig{
				MaxSize: e.config.CacheMaxSize,
				TTL:     e.config.CacheTTL,
			})
		} else {
			e.cache = nil
		}
		opts := []mustache.Option{mustache.WithCache(e.cache)}
		if e.partials != nil {
			opts = append(opts, mustache.WithPartials(e.partials))
		}
		e.interpolator = mustache.NewRenderer(opts...)
	}
	if e.logger == nil {
		e.logger = GetLogger()
	}
}

// Option represents a configuration option for the engine.
type Option func(*Engine)

// WithConfig returns an option that sets the engine configuration.
func WithConfig(config *Config) Option {
	return func(e *Engine) {
		e.config = NewConfigWithDefaults(config)
	}
}

// WithResolver returns an option that sets where sources are fetched from.
func WithResolver(r source.Resolver) Option {
	return func(e *Engine) {
		e.resolver = r
	}
}

// WithInterpolator returns an option that replaces the mustache renderer.
func WithInterpolator(i Interpolator) Option {
	return func(e *Engine) {
		e.interpolator = i
		e.customInterpolator = i != nil
	}
}

// WithPartials returns an option that resolves {{> name}} tags with p.
func WithPartials(p mustache.PartialLoader) Option {
	return func(e *Engine) {
		e.partials = p
	}
}

// WithLogger returns an option that sets the engine logger.
func WithLogger(l *Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithGlobals returns an option that binds variables visible to every
// document expanded by the engine.
func WithGlobals(vars Vars) Option {
	return func(e *Engine) {
		for k, v := range vars {
			e.globals[k] = v
		}
	}
}

// Config returns the engine's configuration.
func (e *Engine) Config() *Config {
	return e.config
}

// Resolver returns the source resolver the engine fetches from.
func (e *Engine) Resolver() source.Resolver {
	return e.resolver
}

// ClearCache removes all parsed templates from the cache.
func (e *Engine) ClearCache() {
	if e.cache != nil {
		e.cache.Clear()
	}
}

// Close releases the resolver if it holds resources.
func (e *Engine) Close() error {
	if c, ok := e.resolver.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (e *Engine) newProcessor(ctx context.Context, caller Caller, origin string, textOnly bool) *processor {
	base := NewFrame(origin)
	base.Globals = e.globals.Clone()
	if caller.Name != "" {
		base.Globals["user"] = String(caller.Name)
	}
	return &processor{
		engine:   e,
		ctx:      ctx,
		caller:   caller,
		textOnly: textOnly,
		stack:    NewStack(base, e.config.MaxDepth),
		logger:   e.logger.WithField("document", origin),
	}
}

func pageOrigin(id string) string {
	return "wiki://" + id
}

// Preprocess expands every directive of the wiki page id before the page is
// rendered. Only native markup is expanded; a directive whose source has
// another content type is left as written.
func (e *Engine) Preprocess(ctx context.Context, caller Caller, id, text string) (string, error) {
	if id == "" {
		return "", NewRequestError("resource id is empty")
	}
	origin := pageOrigin(id)
	p := e.newProcessor(ctx, caller, origin, true)
	if err := p.expand(origin, 1, text, false, false); err != nil {
		return "", fmt.Errorf("preprocess %s: %w", origin, err)
	}
	return p.out.String(), nil
}

// ExpandDirective expands a single directive found at line of page id.
//
// With named == nil, argText is the argument list of an include call and
// the source is fetched. Otherwise argText is the body of an execute block
// and named holds its arguments. The content type of the result is
// returned alongside the text. A caller without INCLUDE_URL gets an empty
// result instead of an error when the source is remote.
func (e *Engine) ExpandDirective(ctx context.Context, caller Caller, id string, line int, argText string, named map[string]string) (string, string, error) {
	if id == "" {
		return "", "", NewRequestError("resource id is empty")
	}
	origin := pageOrigin(id)
	p := e.newProcessor(ctx, caller, origin, false)

	var (
		contentType string
		err         error
	)
	if named != nil {
		call := Call{Named: make(map[string]string, len(named)), Body: argText}
		for k, v := range named {
			call.Named[k] = v
		}
		_, contentType, err = p.proxyExecute(origin, line, call)
	} else {
		_, contentType, err = p.proxyInclude(origin, line, ParseCall(argText))
	}
	if err != nil {
		if capability, ok := IsPermissionDenied(err); ok && capability == CapIncludeURL {
			p.logger.WithFields(Fields{"line": line, "user": caller.Name}).
				Info("blocking attempt to include URL %s", argText)
			return "", "", nil
		}
		return "", "", err
	}
	return p.out.String(), contentType, nil
}

// Validate checks that caller may save text, which needs INCLUDE_CREATE
// when it holds include calls and TEMPLATE_CREATE when it holds execute
// blocks or template expressions.
func (e *Engine) Validate(caller Caller, text string) *ValidationResult {
	return e.validator.validate(caller, text)
}

// DefaultEngine is the global default engine instance.
// It uses the global configuration and has no sources registered.
var DefaultEngine = New()

// Module-level convenience functions that use the default engine.

// Preprocess expands a page using the default engine.
func Preprocess(ctx context.Context, caller Caller, id, text string) (string, error) {
	return DefaultEngine.Preprocess(ctx, caller, id, text)
}

// ExpandDirective expands a single directive using the default engine.
func ExpandDirective(ctx context.Context, caller Caller, id string, line int, argText string, named map[string]string) (string, string, error) {
	return DefaultEngine.ExpandDirective(ctx, caller, id, line, argText, named)
}

// Validate checks text for directives caller may not create, using the
// default engine.
func Validate(caller Caller, text string) *ValidationResult {
	return DefaultEngine.Validate(caller, text)
}
