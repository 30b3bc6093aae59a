package parser

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
)

// ExpandGlobs expands a list of file paths and glob patterns into a deduplicated
// list of matching file paths. Patterns that don't match any files are returned as-is
// (the caller should handle file-not-found errors).
//
// Paths matching any of the exclude patterns are dropped. An exclude pattern
// is tested against both the full path and the base name, so "*.gz" removes
// compressed rotations wherever they live.
func ExpandGlobs(patterns, excludes []string) ([]string, error) {
	filter, err := compileExcludes(excludes)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var result []string

	add := func(path string) {
		if seen[path] || filter.excluded(path) {
			return
		}
		seen[path] = true
		result = append(result, path)
	}

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}

		if len(matches) == 0 {
			// Keep the literal path so the caller reports it as missing
			add(pattern)
			continue
		}

		for _, match := range matches {
			add(match)
		}
	}

	// Sort for deterministic ordering
	sort.Strings(result)

	return result, nil
}

type excludeFilter []glob.Glob

func compileExcludes(excludes []string) (excludeFilter, error) {
	filter := make(excludeFilter, 0, len(excludes))
	for _, pattern := range excludes {
		g, err := glob.Compile(filepath.ToSlash(pattern), '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		filter = append(filter, g)
	}
	return filter, nil
}

func (f excludeFilter) excluded(path string) bool {
	slashed := filepath.ToSlash(path)
	base := filepath.Base(path)
	for _, g := range f {
		if g.Match(slashed) || g.Match(base) {
			return true
		}
	}
	return false
}
