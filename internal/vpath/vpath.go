// Package vpath implements the "@/" virtual path scheme: references found in
// source files are rewritten to project-root-relative virtual paths during
// preprocessing and turned into output-relative paths once every page's output
// location is known.
package vpath

import (
	"path/filepath"
	"strings"
)

// Prefix marks a virtual path.
const Prefix = "@/"

var externalPrefixes = []string{
	"http://", "https://", "//", "mailto:", "#", "data:", "tel:", "javascript:",
}

// IsExternal reports whether ref must be left untouched: absolute URLs, scheme
// relative URLs, fragment-only references and any other URL with a scheme.
func IsExternal(ref string) bool {
	lowered := strings.ToLower(strings.TrimSpace(ref))
	if lowered == "" {
		return true
	}
	for _, p := range externalPrefixes {
		if strings.HasPrefix(lowered, p) {
			return true
		}
	}
	return hasScheme(lowered)
}

// hasScheme matches RFC 3986 "scheme:" but not Windows drive letters.
func hasScheme(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case i > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		case c == ':' && i > 1:
			return true
		default:
			return false
		}
	}
	return false
}

// IsVirtual reports whether ref is already in virtual form.
func IsVirtual(ref string) bool { return strings.HasPrefix(ref, Prefix) }

// SplitSuffix separates a query string or fragment from the path part of ref.
func SplitSuffix(ref string) (path, suffix string) {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		return ref[:i], ref[i:]
	}
	return ref, ""
}

// Target resolves ref to an absolute, cleaned filesystem path. Virtual and
// root-absolute references resolve against projectRoot, everything else against
// the directory of originFile. ok is false for external references and for
// references that carry only a query or fragment.
func Target(ref, originFile, projectRoot string) (target, suffix string, ok bool) {
	ref = strings.TrimSpace(ref)
	if IsExternal(ref) {
		return "", "", false
	}
	p, suffix := SplitSuffix(ref)
	if p == "" {
		return "", "", false
	}
	var abs string
	switch {
	case IsVirtual(p):
		abs = filepath.Join(projectRoot, filepath.FromSlash(strings.TrimPrefix(p, Prefix)))
	case strings.HasPrefix(p, "/"):
		abs = filepath.Join(projectRoot, filepath.FromSlash(p))
	default:
		abs = filepath.Join(filepath.Dir(originFile), filepath.FromSlash(p))
	}
	return filepath.Clean(abs), suffix, true
}

// Virtualize rewrites ref, found in originFile, into "@/<path from projectRoot>"
// and returns the absolute target it names. ok is false when ref is left as is.
func Virtualize(ref, originFile, projectRoot string) (virtual, target string, ok bool) {
	target, suffix, ok := Target(ref, originFile, projectRoot)
	if !ok {
		return ref, "", false
	}
	return FromTarget(target, projectRoot) + suffix, target, true
}

// FromTarget renders an absolute path as a virtual path.
func FromTarget(target, projectRoot string) string {
	rel, err := filepath.Rel(projectRoot, target)
	if err != nil {
		rel = target
	}
	return Prefix + filepath.ToSlash(filepath.Clean(rel))
}

// Relative returns the forward-slash path from the directory holding fromFile to to.
func Relative(fromFile, to string) string {
	rel, err := filepath.Rel(filepath.Dir(fromFile), to)
	if err != nil {
		return filepath.ToSlash(to)
	}
	return filepath.ToSlash(rel)
}
