package depgraph

import (
	"cmp"
	"fmt"

	"git.home.luguber.info/inful/ssio/internal/util/sets"
)

// Dependency is an edge from the file that references to the file referenced.
// Internal marks structural includes that were inlined and are never copied.
type Dependency struct {
	Origin   string
	Target   string
	Internal bool
}

func compareDependency(a, b Dependency) int {
	if c := cmp.Compare(a.Origin, b.Origin); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Target, b.Target); c != 0 {
		return c
	}
	switch {
	case a.Internal == b.Internal:
		return 0
	case a.Internal:
		return 1
	default:
		return -1
	}
}

// Severity of a Diagnostic.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic is a recoverable problem found during a traversal.
type Diagnostic struct {
	Severity Severity
	Source   string
	Target   string
	Message  string
}

func (d Diagnostic) String() string {
	if d.Target == "" {
		return fmt.Sprintf("%s: %s: %s", d.Severity, d.Source, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s (%s)", d.Severity, d.Source, d.Message, d.Target)
}

func compareDiagnostic(a, b Diagnostic) int {
	if c := cmp.Compare(a.Source, b.Source); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Target, b.Target); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Message, b.Message); c != 0 {
		return c
	}
	return cmp.Compare(a.Severity, b.Severity)
}

// Aggregator is the effect a traversal accumulates. Aggregators merge by set union,
// so merging is commutative, idempotent and has the zero value as identity.
// The zero value is ready to use.
type Aggregator struct {
	// Source holds page links: targets that must resolve to another compiled page.
	Source sets.Set[Dependency]
	// Static holds assets, stylesheets and includes.
	Static sets.Set[Dependency]
	// Implicit is carried through merges but not read by the rewrite passes.
	Implicit    sets.Set[Dependency]
	Diagnostics sets.Set[Diagnostic]
}

// AddSource records a page link.
func (a *Aggregator) AddSource(d Dependency) {
	a.Source = sets.Ensure(a.Source)
	a.Source.Add(d)
}

// AddStatic records an asset or include edge.
func (a *Aggregator) AddStatic(d Dependency) {
	a.Static = sets.Ensure(a.Static)
	a.Static.Add(d)
}

// AddImplicit records an implicit edge.
func (a *Aggregator) AddImplicit(d Dependency) {
	a.Implicit = sets.Ensure(a.Implicit)
	a.Implicit.Add(d)
}

// Report records a diagnostic.
func (a *Aggregator) Report(d Diagnostic) {
	a.Diagnostics = sets.Ensure(a.Diagnostics)
	a.Diagnostics.Add(d)
}

// Warn is shorthand for reporting a warning.
func (a *Aggregator) Warn(source, target, format string, args ...any) {
	a.Report(Diagnostic{Severity: SeverityWarning, Source: source, Target: target, Message: fmt.Sprintf(format, args...)})
}

// Include merges other into a in place.
func (a *Aggregator) Include(other Aggregator) {
	if len(other.Source) > 0 {
		a.Source = sets.Ensure(a.Source)
		a.Source.Extend(other.Source)
	}
	if len(other.Static) > 0 {
		a.Static = sets.Ensure(a.Static)
		a.Static.Extend(other.Static)
	}
	if len(other.Implicit) > 0 {
		a.Implicit = sets.Ensure(a.Implicit)
		a.Implicit.Extend(other.Implicit)
	}
	if len(other.Diagnostics) > 0 {
		a.Diagnostics = sets.Ensure(a.Diagnostics)
		a.Diagnostics.Extend(other.Diagnostics)
	}
}

// Clone returns an aggregator that shares no storage with a.
func (a Aggregator) Clone() Aggregator {
	var out Aggregator
	out.Include(a)
	return out
}

// Merge returns the union of a and b without modifying either.
func Merge(a, b Aggregator) Aggregator {
	out := a.Clone()
	out.Include(b)
	return out
}

// Equal reports whether both aggregators hold the same edges and diagnostics.
func (a Aggregator) Equal(b Aggregator) bool {
	return sets.Equal(a.Source, b.Source) &&
		sets.Equal(a.Static, b.Static) &&
		sets.Equal(a.Implicit, b.Implicit) &&
		sets.Equal(a.Diagnostics, b.Diagnostics)
}

// IsEmpty reports whether nothing has been recorded.
func (a Aggregator) IsEmpty() bool {
	return len(a.Source) == 0 && len(a.Static) == 0 && len(a.Implicit) == 0 && len(a.Diagnostics) == 0
}

// SortedSource returns the page links in a stable order.
func (a Aggregator) SortedSource() []Dependency {
	return sets.SortedFunc(a.Source, compareDependency)
}

// SortedStatic returns the static edges in a stable order.
func (a Aggregator) SortedStatic() []Dependency {
	return sets.SortedFunc(a.Static, compareDependency)
}

// SortedDiagnostics returns the diagnostics ordered by source, target and message.
func (a Aggregator) SortedDiagnostics() []Diagnostic {
	return sets.SortedFunc(a.Diagnostics, compareDiagnostic)
}
