// Package resolve maps source files to their output locations once every page has
// been preprocessed, and plans which referenced files must be linked into the
// output tree.
package resolve

import (
	"path/filepath"
	"strings"
)

// InputRule is a file the build places in the output tree. Source is absolute;
// Target, when set, is the output path relative to the output directory.
type InputRule struct {
	Source string
	Target string
}

// BundleRule marks a directory that is linked into the output tree as a whole.
// Location is absolute.
type BundleRule struct {
	Location string
}

// hasPathPrefix reports whether path equals prefix or lies below it. Both must be cleaned.
func hasPathPrefix(path, prefix string) bool {
	if prefix == "" || prefix == "." {
		return false
	}
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(prefix, string(filepath.Separator))+string(filepath.Separator))
}

// within reports whether path lies inside dir.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
