// Package depgraph holds the values every traversal threads through the pipeline:
// the Scope of the file being visited, dependency edges, diagnostics, and the
// effect-carrying State that merges them.
package depgraph

import "path/filepath"

// Scope identifies the file currently being traversed. Scopes opened for included
// files remember the scope that opened them so include cycles can be detected.
type Scope struct {
	ProjectRoot string
	SourcePath  string
	parent      *Scope
}

// NewScope returns a root scope. Both paths are made absolute and cleaned.
func NewScope(projectRoot, sourcePath string) *Scope {
	return &Scope{ProjectRoot: absClean(projectRoot), SourcePath: absClean(sourcePath)}
}

// Child opens a scope for a file loaded from within s.
func (s *Scope) Child(sourcePath string) *Scope {
	return &Scope{ProjectRoot: s.ProjectRoot, SourcePath: absClean(sourcePath), parent: s}
}

// SourceDir is the directory relative references are resolved against.
func (s *Scope) SourceDir() string { return filepath.Dir(s.SourcePath) }

// InChain reports whether path is s's own file or that of any enclosing scope.
func (s *Scope) InChain(path string) bool {
	path = absClean(path)
	for cur := s; cur != nil; cur = cur.parent {
		if cur.SourcePath == path {
			return true
		}
	}
	return false
}

func absClean(p string) string {
	if p == "" {
		return p
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
