package repo

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/go-include/pkg/include/source"
)

func initRepo(t *testing.T) (string, string) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	run := func(args ...string) string {
		t.Helper()
		cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.org",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.org",
		)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
		return strings.TrimSpace(string(out))
	}

	run("init", "-q")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "README.wiki"), []byte("= v1 ="), 0o644))
	run("add", ".")
	run("commit", "-q", "-m", "first")
	first := run("rev-parse", "HEAD")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "README.wiki"), []byte("= v2 ="), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o644))
	run("add", ".")
	run("commit", "-q", "-m", "second")
	return dir, first
}

func TestResolverResolve(t *testing.T) {
	dir, first := initRepo(t)
	r := NewResolver(dir, WithExtensionType(".wiki", "text/x-trac-wiki"))
	ctx := context.Background()

	doc, err := r.Resolve(ctx, source.Request{Ref: source.Ref{Scheme: source.SchemeRepository, Realm: "source", Locator: "docs/README.wiki"}})
	require.NoError(t, err)
	assert.Equal(t, "source:docs/README.wiki", doc.ID)
	assert.Equal(t, "= v2 =", doc.Text)
	assert.Equal(t, "text/x-trac-wiki", doc.ContentType)

	doc, err = r.Resolve(ctx, source.Request{Ref: source.Ref{Scheme: source.SchemeRepository, Realm: "source", Locator: "/docs/README.wiki", Version: first}})
	require.NoError(t, err)
	assert.Equal(t, "source:docs/README.wiki@"+first, doc.ID)
	assert.Equal(t, "= v1 =", doc.Text)

	doc, err = r.Resolve(ctx, source.Request{Ref: source.Ref{Scheme: source.SchemeRepository, Realm: "source", Locator: "main.go", ContentType: "text/plain"}})
	require.NoError(t, err)
	assert.Equal(t, "text/plain", doc.ContentType)

	_, err = r.Resolve(ctx, source.Request{Ref: source.Ref{Scheme: source.SchemeRepository, Realm: "source", Locator: "nope.txt"}})
	assert.True(t, source.IsNotFound(err))
	assert.Contains(t, err.Error(), `File "nope.txt" does not exist`)
}

func TestResolverNamedRepositories(t *testing.T) {
	dir, _ := initRepo(t)
	r := NewResolver("", WithRepository("project", dir))
	ctx := context.Background()

	doc, err := r.Resolve(ctx, source.Request{Ref: source.Ref{Scheme: source.SchemeRepository, Realm: "repos", Locator: "project/main.go"}})
	require.NoError(t, err)
	assert.Equal(t, "package main\n", doc.Text)

	_, err = r.Resolve(ctx, source.Request{Ref: source.Ref{Scheme: source.SchemeRepository, Realm: "repos", Locator: "other/main.go"}})
	assert.EqualError(t, err, `Repository for "other/main.go" is not accessible`)
}

func TestResolverRejectsOptionLikeRevisions(t *testing.T) {
	dir, _ := initRepo(t)
	r := NewResolver(dir)
	ctx := context.Background()
	target := filepath.Join(t.TempDir(), "written")

	tests := []struct {
		name    string
		locator string
		version string
	}{
		{"output option as revision", "main.go", "--output=" + target},
		{"short option as revision", "main.go", "-p"},
		{"option as file name", "--output=" + target, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := source.Parse("source:" + tt.locator)
			require.NoError(t, err)
			ref.Version = tt.version

			doc, err := r.Resolve(ctx, source.Request{Ref: ref})
			require.Error(t, err)
			assert.Nil(t, doc)
			assert.True(t, source.IsMalformed(err), "got %v", err)

			_, statErr := os.Stat(target)
			assert.True(t, os.IsNotExist(statErr), "%s was created", target)
		})
	}

	_, err := NewRepository(dir).Show(ctx, "--output="+target, "main.go")
	require.Error(t, err)
	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr))
}

func TestResolverInaccessible(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	r := NewResolver(t.TempDir())
	_, err := r.Resolve(context.Background(), source.Request{Ref: source.Ref{Scheme: source.SchemeRepository, Realm: "source", Locator: "x"}})
	assert.True(t, source.IsNotFound(err))
}

func TestDetectContentType(t *testing.T) {
	r := NewResolver("", WithExtensionType(".WIKI", "text/x-trac-wiki"))

	assert.Equal(t, "text/x-trac-wiki", r.DetectContentType("a/Page.wiki", nil))
	assert.Equal(t, "text/x-python", r.DetectContentType("tools/build.py", nil))
	assert.Equal(t, "text/plain", r.DetectContentType("NOTES", []byte("just words")))
}
