// Package exclude decides which bundle entries are omitted from staged
// copies. Patterns use path.Match syntax and apply to the base name of
// every entry at every directory depth.
package exclude

import (
	"path"
	"strings"
)

// defaultPatterns covers build artifacts, editor droppings, VCS and
// packaging metadata, bytecode caches, and logs.
var defaultPatterns = []string{
	"*.pyc",
	"*.pyo",
	"__pycache__",
	"*.egg-info",
	"*.swp",
	"*.swo",
	"*~",
	".git",
	".hg",
	".svn",
	".bzr",
	".DS_Store",
	"*.log",
}

// Filter reports whether a directory entry should be skipped during a
// staging copy.
type Filter struct {
	patterns []string
}

// Default returns a filter with the built-in pattern set.
func Default() *Filter {
	return New(nil)
}

// New returns a filter combining the built-in patterns with extra
// caller-supplied ones. Blank extras are ignored.
func New(extra []string) *Filter {
	patterns := make([]string, 0, len(defaultPatterns)+len(extra))
	patterns = append(patterns, defaultPatterns...)
	for _, p := range extra {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	return &Filter{patterns: patterns}
}

// Skip reports whether an entry with the given base name matches any
// exclusion pattern. Malformed patterns never match.
func (f *Filter) Skip(name string) bool {
	if f == nil {
		return false
	}
	for _, pattern := range f.patterns {
		if ok, err := path.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// Patterns returns a copy of the active pattern list.
func (f *Filter) Patterns() []string {
	if f == nil {
		return nil
	}
	cp := make([]string, len(f.patterns))
	copy(cp, f.patterns)
	return cp
}
