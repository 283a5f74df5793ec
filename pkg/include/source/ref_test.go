package source

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		want    Ref
		wantErr string
	}{
		{
			name: "bare page",
			src:  "WikiStart",
			want: Ref{Scheme: SchemePage, Realm: "wiki", Locator: "WikiStart"},
		},
		{
			name: "bare page with version",
			src:  "Guide/Install@4",
			want: Ref{Scheme: SchemePage, Realm: "wiki", Locator: "Guide/Install", Version: "4"},
		},
		{
			name: "wiki realm",
			src:  "wiki:Other@2",
			want: Ref{Scheme: SchemePage, Realm: "wiki", Locator: "Other", Version: "2"},
		},
		{
			name: "http",
			src:  "http://www.example.org/a.txt",
			want: Ref{Scheme: SchemeRemote, Realm: "http", Locator: "http://www.example.org/a.txt"},
		},
		{
			name: "https keeps @ in locator",
			src:  "https://user@example.org/x",
			want: Ref{Scheme: SchemeRemote, Realm: "https", Locator: "https://user@example.org/x"},
		},
		{
			name: "source with revision",
			src:  "source:trunk/README@42",
			want: Ref{Scheme: SchemeRepository, Realm: "source", Locator: "trunk/README", Version: "42"},
		},
		{
			name: "browser alias",
			src:  "browser:docs/a.txt",
			want: Ref{Scheme: SchemeRepository, Realm: "browser", Locator: "docs/a.txt"},
		},
		{
			name: "ticket comment",
			src:  "ticket:12:comment:3",
			want: Ref{Scheme: SchemeTicket, Realm: "ticket", Locator: "12:comment:3"},
		},
		{
			name:    "unknown realm",
			src:     "mailto:someone",
			wantErr: "Unsupported realm mailto",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.src)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				assert.True(t, IsUnsupported(err))
				return
			}
			assert.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.src, diff)
			}
		})
	}
}

func TestRefString(t *testing.T) {
	tests := []struct {
		ref  Ref
		want string
	}{
		{Ref{Scheme: SchemePage, Realm: "wiki", Locator: "A", Version: "1"}, "wiki:A@1"},
		{Ref{Scheme: SchemeRemote, Realm: "http", Locator: "http://x/y"}, "http://x/y"},
		{Ref{Scheme: SchemeTicket, Realm: "ticket", Locator: "1:comment:2"}, "ticket:1:comment:2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.ref.String())
	}
}

func TestSplitVersion(t *testing.T) {
	path, version := SplitVersion("a/b@c@d")
	assert.Equal(t, "a/b", path)
	assert.Equal(t, "c@d", version)

	path, version = SplitVersion("plain")
	assert.Equal(t, "plain", path)
	assert.Empty(t, version)
}
