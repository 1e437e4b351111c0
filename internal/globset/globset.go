// Package globset matches changed paths against a project's include/exclude
// globs. It wraps bmatcuk/doublestar rather than filepath.Match because the
// configuration document's defaults ("**/*") rely on doublestar's "**"
// cross-directory semantics, which the standard library does not support.
package globset

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Set is a compiled include/exclude glob pair, rooted at a project root.
type Set struct {
	root     string
	includes []string
	excludes []string
}

// New builds a Set. Patterns are matched relative to root; a candidate path
// is under root when it starts with root followed by "/", and that prefix
// is trimmed before matching.
func New(root string, includes, excludes []string) Set {
	if len(includes) == 0 {
		includes = []string{"**/*"}
	}
	return Set{root: cleanRoot(root), includes: includes, excludes: excludes}
}

func cleanRoot(root string) string {
	root = path.Clean(root)
	if root == "." {
		return ""
	}
	return strings.TrimSuffix(root, "/")
}

// relative returns p relative to the set's root, or ok=false when p does
// not fall under root at all.
func (s Set) relative(p string) (string, bool) {
	p = path.Clean(p)
	if s.root == "" {
		return p, true
	}
	prefix := s.root + "/"
	if strings.HasPrefix(p, prefix) {
		return strings.TrimPrefix(p, prefix), true
	}
	return "", false
}

// Matches reports whether changed path p is covered: under root, matching
// at least one include glob, and matching no exclude glob.
func (s Set) Matches(p string) bool {
	rel, ok := s.relative(p)
	if !ok {
		return false
	}
	matched := false
	for _, pat := range s.includes {
		if ok, _ := doublestar.Match(pat, rel); ok {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	for _, pat := range s.excludes {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return false
		}
	}
	return true
}

// MatchesAny reports whether any path in paths is covered.
func (s Set) MatchesAny(paths map[string]struct{}) bool {
	for p := range paths {
		if s.Matches(p) {
			return true
		}
	}
	return false
}
