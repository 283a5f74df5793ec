// Package mustache is a lenient Mustache interpolator for included wiki text.
//
// It supports variables ({{name}}, {{{name}}}, {{& name}}), sections and
// inverted sections, comments, partials and delimiter changes. Unlike a
// strict engine it never fails: a variable that cannot be resolved renders
// as the placeholder `{?name?}`, a partial that cannot be loaded renders as
// `{?>name?}` and malformed tags are kept as literal text. Values are not
// HTML escaped; the output is wiki markup that the host renders later.
//
// Lookups walk a stack of contexts from the most recently pushed one down.
// A name is first tried literally, so keys such as "argv[0]" resolve as they
// are, and then as a dotted path ("self.url").
//
// Example:
//
//	r := mustache.NewRenderer()
//	out := r.Render("Hello {{who}} from {{self.url}}", map[string]any{
//	    "who":  "World",
//	    "self": map[string]any{"url": "wiki://Start"},
//	})
//	// out == "Hello World from wiki://Start"
package mustache
