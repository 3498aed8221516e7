package source

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/maxfahl/Loom-sub002/internal/logging"
	"github.com/maxfahl/Loom-sub002/internal/system"
)

// File is a loaded source file.
type File struct {
	Path  string
	Lines []string
}

// Options controls file selection.
type Options struct {
	Extensions  []string
	ExcludeDirs []string
	Exclude     []string

	// Only, when non-nil, restricts selection to these absolute paths.
	Only []string

	// Workers bounds concurrent reads; 0 means GOMAXPROCS.
	Workers int
}

// Walk returns the paths under root that pass the selection rules, sorted.
func Walk(root string, opts Options) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}

	only := onlySet(opts.Only)
	realRoot := realPath(root)

	if !info.IsDir() {
		if !hasExtension(root, opts.Extensions) {
			return nil, nil
		}
		if only != nil && !only[realRoot] {
			return nil, nil
		}
		return []string{root}, nil
	}

	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	excludeDirs := make(map[string]bool, len(opts.ExcludeDirs))
	for _, d := range opts.ExcludeDirs {
		excludeDirs[d] = true
	}

	// WalkDir does not descend into a symlinked root; walk its target and
	// report paths under root.
	walkRoot := root
	if li, err := os.Lstat(root); err == nil && li.Mode()&fs.ModeSymlink != 0 {
		walkRoot = realRoot
	}

	var paths []string
	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logging.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if path == walkRoot {
			return nil
		}

		rel, relErr := filepath.Rel(walkRoot, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if excludeDirs[d.Name()] || excluded(opts.Exclude, rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if !hasExtension(path, opts.Extensions) || excluded(opts.Exclude, rel) {
			return nil
		}
		if only != nil && !only[filepath.Join(realRoot, filepath.FromSlash(rel))] {
			return nil
		}

		paths = append(paths, filepath.Join(root, filepath.FromSlash(rel)))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

// Load reads paths concurrently through fsys. Unreadable files are logged
// and skipped; only context cancellation aborts the load.
func Load(ctx context.Context, fsys system.FileSystem, paths []string, workers int) ([]File, error) {
	if fsys == nil {
		fsys = system.DefaultFS()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]*File, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			data, err := fsys.ReadFile(path)
			if err != nil {
				logging.Warn("skipping unreadable file", "path", path, "error", err)
				return nil
			}
			if bytes.IndexByte(data, 0) >= 0 {
				logging.Debug("skipping binary file", "path", path)
				return nil
			}

			results[i] = &File{Path: path, Lines: SplitLines(string(data))}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	files := make([]File, 0, len(results))
	for _, f := range results {
		if f != nil {
			files = append(files, *f)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Collect walks root and loads every selected file.
func Collect(ctx context.Context, fsys system.FileSystem, root string, opts Options) ([]File, error) {
	paths, err := Walk(root, opts)
	if err != nil {
		return nil, err
	}
	logging.Debug("selected files", "root", root, "count", len(paths))
	return Load(ctx, fsys, paths, opts.Workers)
}

// SplitLines splits text into lines without their terminators.
// A trailing newline does not produce an empty final line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// Relative returns path relative to root for display, falling back to path.
func Relative(root, path string) string {
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		root = filepath.Dir(root)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func hasExtension(path string, exts []string) bool {
	ext := filepath.Ext(path)
	for _, e := range exts {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

func excluded(patterns []string, rel string) bool {
	base := rel
	if i := strings.LastIndex(rel, "/"); i >= 0 {
		base = rel[i+1:]
	}
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// realPath returns p absolute with symlinks resolved, so paths reported by
// git (which resolves them) compare equal to walked ones. Paths that no
// longer exist are only made absolute.
func realPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

func onlySet(paths []string) map[string]bool {
	if paths == nil {
		return nil
	}
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[realPath(p)] = true
	}
	return set
}
