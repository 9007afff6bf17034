package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPatterns match the archive files the pipeline understands.
var DefaultPatterns = []string{"**/*.mofarch.json", "**/*.mofarch.csv"}

// Discover returns the files under root matching any of patterns, sorted
// and without duplicates. Patterns are slash-separated and relative to root.
func Discover(root string, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	fsys := os.DirFS(root)
	seen := make(map[string]struct{})
	var out []string
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q under %s: %w", pattern, root, err)
		}
		for _, m := range matches {
			path := filepath.Join(root, filepath.FromSlash(m))
			if _, dup := seen[path]; dup {
				continue
			}
			seen[path] = struct{}{}
			out = append(out, path)
		}
	}

	sort.Strings(out)
	return out, nil
}

// Expand resolves CLI arguments: directories are searched with patterns,
// files are taken as given. No arguments means root.
func Expand(root string, args, patterns []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{root}
	}

	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		if _, dup := seen[p]; !dup {
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		files, err := Discover(arg, patterns)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f)
		}
	}

	return out, nil
}

// Matches reports whether path, relative to root, matches any pattern.
func Matches(root, path string, patterns []string) bool {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return false
	}
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
