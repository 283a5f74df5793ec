// Package repo resolves "source:", "browser:" and "repos:" references
// against git working trees.
package repo

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Repository runs git against one directory.
type Repository struct {
	dir string
}

// NewRepository returns a Repository targeting dir.
func NewRepository(dir string) *Repository {
	return &Repository{dir: dir}
}

// Dir returns the repository directory.
func (r *Repository) Dir() string {
	return r.dir
}

// Run executes git with "-C dir" and returns stdout.
func (r *Repository) Run(ctx context.Context, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", r.dir}, args...)
	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, "git", fullArgs...)
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return nil, fmt.Errorf("git %s in %s: %w (stderr: %s)",
			strings.Join(args, " "), r.dir, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// Accessible reports whether dir is inside a git work tree.
func (r *Repository) Accessible(ctx context.Context) bool {
	out, err := r.Run(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(string(out)) == "true"
}

// Show returns the blob at path in rev. Neither rev nor path may start
// with "-".
func (r *Repository) Show(ctx context.Context, rev, path string) ([]byte, error) {
	if strings.HasPrefix(rev, "-") || strings.HasPrefix(path, "-") {
		return nil, fmt.Errorf("git show: invalid object %q", rev+":"+path)
	}
	return r.Run(ctx, "show", "--end-of-options", rev+":"+path)
}
