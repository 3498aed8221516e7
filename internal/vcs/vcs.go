// Package vcs answers "which files changed" questions for --since scans.
package vcs

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maxfahl/Loom-sub002/internal/system"
)

// Git queries a git work tree through a CommandExecutor.
type Git struct {
	exec system.CommandExecutor
}

// NewGit returns a Git backed by exec, or the default executor when exec is nil.
func NewGit(exec system.CommandExecutor) *Git {
	if exec == nil {
		exec = system.DefaultExecutor()
	}
	return &Git{exec: exec}
}

// TopLevel returns the root of the work tree containing path.
func (g *Git) TopLevel(ctx context.Context, path string) (string, error) {
	out, err := g.exec.Execute(ctx, "git", "-C", path, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("%s is not inside a git work tree: %w", path, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// ChangedFiles returns absolute paths of files modified since rev,
// including untracked files. Deleted files are not reported.
func (g *Git) ChangedFiles(ctx context.Context, path, rev string) ([]string, error) {
	top, err := g.TopLevel(ctx, path)
	if err != nil {
		return nil, err
	}

	diff, err := g.exec.Execute(ctx, "git", "-C", top, "diff", "--name-only", "--diff-filter=d", rev)
	if err != nil {
		return nil, fmt.Errorf("failed to diff against %s: %w", rev, err)
	}

	untracked, err := g.exec.Execute(ctx, "git", "-C", top, "ls-files", "--others", "--exclude-standard")
	if err != nil {
		return nil, fmt.Errorf("failed to list untracked files: %w", err)
	}

	seen := make(map[string]bool)
	var files []string
	for _, out := range [][]byte{diff, untracked} {
		for _, line := range strings.Split(string(out), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			abs := filepath.Join(top, filepath.FromSlash(line))
			if !seen[abs] {
				seen[abs] = true
				files = append(files, abs)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}
