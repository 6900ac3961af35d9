package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	foundationerrors "git.home.luguber.info/inful/ssio/internal/foundation/errors"
	"git.home.luguber.info/inful/ssio/internal/logfields"
	"git.home.luguber.info/inful/ssio/internal/resolve"
)

// Expander turns glob patterns and literal paths into files below Root, which
// must be absolute and clean.
// Patterns use '/' as separator: '*' stays within one directory, '**' crosses them.
type Expander struct {
	Root string
	// Exclude patterns drop matching files from glob results.
	Exclude []string
	// Skip lists directories that are never searched, such as the output directory.
	Skip []string
	// NoGlobs treats every pattern as a literal path.
	NoGlobs bool

	files    []string
	excludes []glob.Glob
	walked   bool
}

// IsGlob reports whether pattern contains glob metacharacters.
func IsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// Files expands patterns into a sorted list of absolute file paths. A literal
// path must name an existing regular file; a glob that matches nothing is not an
// error.
func (e *Expander) Files(patterns ...string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			out = append(out, path)
		}
	}
	for _, pattern := range patterns {
		if e.NoGlobs || !IsGlob(pattern) {
			path, err := e.literal(pattern)
			if err != nil {
				return nil, err
			}
			add(path)
			continue
		}
		matches, err := e.match(pattern)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			add(m)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Rules expands rule into input rules. With a strip prefix every match gets an
// explicit target: its root-relative path with the prefix removed.
func (e *Expander) Rules(rule GlobRule) ([]resolve.InputRule, error) {
	files, err := e.Files(rule.Pattern)
	if err != nil {
		return nil, err
	}
	prefix := strings.Trim(filepath.ToSlash(filepath.Clean(rule.StripPrefix)), "/")
	rules := make([]resolve.InputRule, 0, len(files))
	for _, file := range files {
		in := resolve.InputRule{Source: file}
		if rule.StripPrefix != "" && prefix != "." {
			rel := e.relative(file)
			if !strings.HasPrefix(rel, prefix+"/") {
				return nil, foundationerrors.ValidationError(fmt.Sprintf("strip_prefix %q is not a directory prefix of %s", rule.StripPrefix, rel)).
					WithContext(logfields.KeySource, file).
					Build()
			}
			in.Target = strings.TrimPrefix(rel, prefix+"/")
		}
		rules = append(rules, in)
	}
	return rules, nil
}

func (e *Expander) literal(pattern string) (string, error) {
	path := pattern
	if !filepath.IsAbs(path) {
		path = filepath.Join(e.Root, filepath.FromSlash(pattern))
	}
	path = filepath.Clean(path)
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", foundationerrors.NotFoundError(fmt.Sprintf("input %s does not exist", pattern)).
			WithContext(logfields.KeyPath, path).
			Build()
	case err != nil:
		return "", foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "stat input").
			WithContext(logfields.KeyPath, path).
			Build()
	case info.IsDir():
		return "", foundationerrors.ValidationError(fmt.Sprintf("input %s is a directory", pattern)).
			WithContext(logfields.KeyPath, path).
			Build()
	}
	return path, nil
}

func (e *Expander) match(pattern string) ([]string, error) {
	g, err := glob.Compile(strings.TrimPrefix(filepath.ToSlash(pattern), "./"), '/')
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryValidation, fmt.Sprintf("invalid glob %q", pattern)).Build()
	}
	if err := e.walk(); err != nil {
		return nil, err
	}
	var out []string
	for _, rel := range e.files {
		if g.Match(rel) && !e.excluded(rel) {
			out = append(out, filepath.Join(e.Root, filepath.FromSlash(rel)))
		}
	}
	return out, nil
}

func (e *Expander) excluded(rel string) bool {
	for _, g := range e.excludes {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// walk lists every regular file below Root once, as slash separated relative paths.
func (e *Expander) walk() error {
	if e.walked {
		return nil
	}
	for _, pattern := range e.Exclude {
		g, err := glob.Compile(strings.TrimPrefix(filepath.ToSlash(pattern), "./"), '/')
		if err != nil {
			return foundationerrors.WrapError(err, foundationerrors.CategoryValidation, fmt.Sprintf("invalid exclude glob %q", pattern)).Build()
		}
		e.excludes = append(e.excludes, g)
	}
	skip := make(map[string]bool, len(e.Skip))
	for _, dir := range e.Skip {
		skip[filepath.Clean(dir)] = true
	}
	err := filepath.WalkDir(e.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != e.Root && (skip[path] || d.Name() == ".git") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			e.files = append(e.files, e.relative(path))
		}
		return nil
	})
	if err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "walk project root").
			WithContext(logfields.KeyPath, e.Root).
			Build()
	}
	e.walked = true
	return nil
}

func (e *Expander) relative(path string) string {
	rel, err := filepath.Rel(e.Root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
