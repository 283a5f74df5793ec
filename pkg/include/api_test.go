package include

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandDirective(t *testing.T) {
	wiki := map[string]string{
		"Main":  "[[Include(Main)]]",
		"Hello": "Hello {{who}} from line {{self.lineno}}",
		"Argv":  "{{argv[1]}}",
	}
	engine := newTestEngine(t, wiki)

	tests := []struct {
		name     string
		caller   Caller
		args     string
		named    map[string]string
		wantText string
		wantType string
	}{
		{
			name:     "include",
			caller:   admin,
			args:     "Hello, who=you",
			wantText: "Hello you from line 1",
			wantType: "text/x-wiki",
		},
		{
			name:     "include keeps foreign content type",
			caller:   admin,
			args:     "Argv,first,text/plain",
			wantText: "first",
			wantType: "text/plain",
		},
		{
			name:     "execute",
			caller:   admin,
			args:     "Hi {{name}} at {{self.lineno}}",
			named:    map[string]string{"name": "Bob"},
			wantText: "Hi Bob at 7",
			wantType: "text/x-wiki",
		},
		{
			name:     "execute with foreign content type",
			caller:   admin,
			args:     "a {{x}}",
			named:    map[string]string{"x": "1", "mime_type": "text/plain"},
			wantText: "a 1",
			wantType: "text/plain",
		},
		{
			name:     "execute with no arguments",
			caller:   admin,
			args:     "body",
			named:    map[string]string{},
			wantText: "body",
			wantType: "text/x-wiki",
		},
		{
			name:   "remote without permission",
			caller: Caller{Name: "bob", Perm: NewCapabilities(CapWikiView)},
			args:   "http://example.com/x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, contentType, err := engine.ExpandDirective(context.Background(), tt.caller, "Main", 7, tt.args, tt.named)
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, text)
			assert.Equal(t, tt.wantType, contentType)
		})
	}
}

func TestExpandDirectiveErrors(t *testing.T) {
	engine := newTestEngine(t, map[string]string{"Main": "x"})

	tests := []struct {
		name  string
		id    string
		args  string
		check func(error) bool
	}{
		{name: "empty id", id: "", args: "Main", check: IsMalformed},
		{name: "missing source", id: "Main", args: "", check: IsMalformed},
		{name: "missing page", id: "Main", args: "Nope", check: IsNotFound},
		{name: "self", id: "Main", args: "Main", check: IsRecursion},
		{name: "unsupported", id: "Main", args: "svn:x", check: IsUnsupported},
		{name: "ticket without resolver", id: "Main", args: "ticket:1:comment:1", check: IsUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := engine.ExpandDirective(context.Background(), admin, tt.id, 1, tt.args, nil)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error type: %v", err)
		})
	}
}

func TestExpandDirectiveDoesNotMutateNamed(t *testing.T) {
	engine := newTestEngine(t, nil)
	named := map[string]string{"x": "1"}

	_, _, err := engine.ExpandDirective(context.Background(), admin, "Main", 1, "{{x}}", named)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"x": "1"}, named)
}

func TestValidate(t *testing.T) {
	includeOnly := Caller{Perm: NewCapabilities(CapIncludeCreate)}
	nobody := Caller{}

	tests := []struct {
		name   string
		caller Caller
		text   string
		want   []ValidationIssue
	}{
		{name: "plain text", caller: nobody, text: "Hello"},
		{
			name:   "include call",
			caller: nobody,
			text:   "[[Include(B)]]",
			want:   []ValidationIssue{{Capability: CapIncludeCreate, Message: "INCLUDE_CREATE denied."}},
		},
		{
			name:   "execute block",
			caller: nobody,
			text:   "{{{\n#!Template\nx\n}}}",
			want:   []ValidationIssue{{Capability: CapTemplateCreate, Message: "TEMPLATE_CREATE denied."}},
		},
		{
			name:   "template expression",
			caller: includeOnly,
			text:   "[[Include(B)]] {{x}}",
			want:   []ValidationIssue{{Capability: CapTemplateCreate, Message: "TEMPLATE_CREATE denied."}},
		},
		{
			name:   "both",
			caller: nobody,
			text:   "[[Template(B)]]\n{{{#!Include\n}}}",
			want: []ValidationIssue{
				{Capability: CapIncludeCreate, Message: "INCLUDE_CREATE denied."},
				{Capability: CapTemplateCreate, Message: "TEMPLATE_CREATE denied."},
			},
		},
		{name: "other processor", caller: nobody, text: "{{{#!python\nx\n}}}"},
		{name: "granted", caller: admin, text: "[[Include(B)]] {{x}}"},
	}

	engine := newTestEngine(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Validate(tt.caller, tt.text)
			assert.Equal(t, len(tt.want) == 0, result.Valid)
			if diff := cmp.Diff(tt.want, result.Issues); diff != "" {
				t.Errorf("Validate() issues mismatch (-want +got):\n%s", diff)
			}
			if result.Valid {
				assert.NoError(t, result.Err())
			} else {
				assert.Error(t, result.Err())
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	result := newTestEngine(t, nil).Validate(Caller{}, "[[Include(B)]]")
	assert.EqualError(t, result.Err(), "INCLUDE_CREATE denied.")
}
