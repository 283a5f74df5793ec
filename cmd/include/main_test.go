package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/go-include/pkg/include"
)

func writeFile(t *testing.T, path, text string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
}

func runCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCommand()
	root.SetArgs(append([]string{"--log-level", "off"}, args...))
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestLoadFileConfig(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "include.yaml")
	writeFile(t, yamlPath, `
engine:
  max_depth: 8
  native_type: text/x-trac-wiki
  remote_timeout: 5s
pages: ./wiki
repositories:
  docs: /srv/docs
grant: [WIKI_VIEW]
globals:
  project: demo
`)
	cfg, err := loadFileConfig(yamlPath)
	require.NoError(t, err)
	require.NotNil(t, cfg.Engine)
	assert.Equal(t, 8, cfg.Engine.MaxDepth)
	assert.Equal(t, "text/x-trac-wiki", cfg.Engine.NativeType)
	assert.Equal(t, "5s", cfg.Engine.RemoteTimeout.String())
	assert.Equal(t, "./wiki", cfg.Pages)
	assert.Equal(t, map[string]string{"docs": "/srv/docs"}, cfg.Repositories)
	assert.Equal(t, []string{"WIKI_VIEW"}, cfg.Grant)
	assert.Equal(t, "demo", cfg.Globals["project"])

	jsonPath := filepath.Join(dir, "include.jsonc")
	writeFile(t, jsonPath, `{
  // pages live next to the config
  "pages": "./wiki",
  "remote": true,
  "grant": ["all",],
}`)
	cfg, err = loadFileConfig(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "./wiki", cfg.Pages)
	assert.True(t, cfg.Remote)
	assert.Nil(t, cfg.Engine)

	_, err = loadFileConfig(filepath.Join(dir, "include.toml"))
	assert.Error(t, err)
}

func TestSettingsFlagsWin(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "include.yml")
	writeFile(t, path, "pages: from-file\nuser: carol\ngrant: [WIKI_VIEW]\n")

	opts := &options{configPath: path, pagesDir: "from-flag", grants: []string{"INCLUDE_CREATE"}, repoDir: "/repo"}
	s, err := opts.settings()
	require.NoError(t, err)

	assert.Equal(t, "from-flag", s.pagesDir)
	assert.Equal(t, "carol", s.caller.Name)
	assert.Equal(t, "/repo", s.repositories[""])
	assert.True(t, s.caller.Perm.HasCapability(include.CapWikiView))
	assert.True(t, s.caller.Perm.HasCapability(include.CapIncludeCreate))
	assert.False(t, s.caller.Perm.HasCapability(include.CapTemplateCreate))
}

func TestGrantCapabilities(t *testing.T) {
	readers := grantCapabilities(nil)
	assert.True(t, readers.HasCapability(include.CapWikiView))
	assert.False(t, readers.HasCapability(include.CapIncludeCreate))

	assert.True(t, grantCapabilities([]string{"all"}).HasCapability(include.CapTemplateCreate))
	assert.True(t, grantCapabilities([]string{"ticket_view"}).HasCapability(include.CapTicketView))
}

func TestPreprocessCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "WikiStart.wiki"), "Hi [[Include(Footer, who=you)]] [[Include(Nope)]]")
	writeFile(t, filepath.Join(dir, "Footer.wiki"), "bye {{who}}")

	stdout, stderr, err := runCommand(t, "", "--pages", dir, "preprocess", "WikiStart")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "Hi bye you [[SystemMessage(Include failed, wiki://WikiStart:1:"), stdout)
	assert.Contains(t, stderr, "1 directive failed to expand")

	stdout, _, err = runCommand(t, "[[Include(Footer, who=stdin)]]", "--pages", dir, "preprocess", "-f", "-")
	require.NoError(t, err)
	assert.Equal(t, "bye stdin", stdout)

	_, _, err = runCommand(t, "", "--pages", dir, "preprocess")
	assert.Error(t, err)
}

func TestExpandCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Guide.wiki"), "{{argv[1]}}")

	stdout, stderr, err := runCommand(t, "", "--pages", dir, "expand", "Guide,first,text/plain")
	require.NoError(t, err)
	assert.Equal(t, "first", stdout)
	assert.Contains(t, stderr, "content-type: text/plain")

	stdout, _, err = runCommand(t, "Hello {{name}} on {{self.url}}", "expand", "--execute", "--origin", "Main", "--set", "name=Bob")
	require.NoError(t, err)
	assert.Equal(t, "Hello Bob on wiki://Main", stdout)
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.wiki")
	writeFile(t, path, "[[Include(Other)]]\n{{{#!Template\nx\n}}}")

	stdout, _, err := runCommand(t, "", "validate", path)
	require.Error(t, err)
	assert.Contains(t, stdout, "INCLUDE_CREATE denied.")
	assert.Contains(t, stdout, "TEMPLATE_CREATE denied.")

	stdout, _, err = runCommand(t, "", "--grant", "all", "validate", path)
	require.NoError(t, err)
	assert.Equal(t, "ok\n", stdout)
}

func TestImportCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "WikiStart.wiki"), "[[Include(Guide/Intro)]]")
	writeFile(t, filepath.Join(dir, "Guide", "Intro.wiki"), "intro")
	db := filepath.Join(t.TempDir(), "wiki.db")

	stdout, _, err := runCommand(t, "", "--db", db, "import", dir)
	require.NoError(t, err)
	assert.Equal(t, "Guide/Intro @1\nWikiStart @1\n", stdout)

	stdout, _, err = runCommand(t, "", "--db", db, "preprocess", "WikiStart")
	require.NoError(t, err)
	assert.Equal(t, "intro", stdout)

	_, _, err = runCommand(t, "", "--pages", dir, "import", dir)
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := runCommand(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "include version "+version+"\n", stdout)
}
