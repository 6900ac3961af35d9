// Package preprocess implements the first pass over a page: includes are expanded,
// every local reference is rewritten to its "@/" virtual path, and each reference
// is recorded as a dependency of the file it appears in.
package preprocess

import (
	"strings"

	"git.home.luguber.info/inful/ssio/internal/bake"
	"git.home.luguber.info/inful/ssio/internal/css"
	"git.home.luguber.info/inful/ssio/internal/depgraph"
	"git.home.luguber.info/inful/ssio/internal/dom"
	"git.home.luguber.info/inful/ssio/internal/vpath"
)

// IncludeMode is the parse mode for pages and included fragments.
var IncludeMode = dom.FragmentMode("div")

// Preprocessor runs the first pass. It holds no per-page state and is safe for
// concurrent use.
type Preprocessor struct {
	Loader *Loader
}

// New returns a Preprocessor reading through loader. A nil loader reads from disk.
func New(loader *Loader) *Preprocessor {
	if loader == nil {
		loader = &Loader{}
	}
	return &Preprocessor{Loader: loader}
}

// File loads scope's source file in mode and preprocesses it. Load and parse
// failures are returned; everything below the file itself becomes a diagnostic.
func (p *Preprocessor) File(scope *depgraph.Scope, mode dom.ParserMode) (depgraph.State[dom.Node], error) {
	node, err := p.Loader.Parse(scope.SourcePath, mode)
	if err != nil {
		return depgraph.State[dom.Node]{}, err
	}
	return p.Node(node, scope), nil
}

// Node preprocesses n as content of scope's file. n is not modified.
func (p *Preprocessor) Node(n dom.Node, scope *depgraph.Scope) depgraph.State[dom.Node] {
	switch v := n.(type) {
	case *dom.Element:
		return p.element(v, scope)
	case dom.Fragment:
		return depgraph.Map(p.nodes(v, scope), toFragment)
	default:
		return depgraph.Wrap(n)
	}
}

func toFragment(nodes []dom.Node) dom.Node { return dom.Fragment(nodes) }

func (p *Preprocessor) nodes(nodes []dom.Node, scope *depgraph.Scope) depgraph.State[[]dom.Node] {
	states := make([]depgraph.State[dom.Node], 0, len(nodes))
	for _, child := range nodes {
		states = append(states, p.Node(child, scope))
	}
	return depgraph.Flatten(states)
}

func (p *Preprocessor) element(el *dom.Element, scope *depgraph.Scope) depgraph.State[dom.Node] {
	switch strings.ToLower(el.Tag) {
	case "include":
		return p.include(el, scope)
	case "style":
		return p.style(el, scope)
	}
	return depgraph.MapWith(p.nodes(el.Children, scope), func(children []dom.Node, agg *depgraph.Aggregator) dom.Node {
		attrs := el.Attrs.Clone()
		virtualizeAttrs(el.Tag, attrs, scope, agg)
		return &dom.Element{Tag: el.Tag, Attrs: attrs, Children: children}
	})
}

// include expands <include src="..."> by baking the element's own children into
// the loaded file. Failures leave an empty fragment and a diagnostic.
func (p *Preprocessor) include(el *dom.Element, scope *depgraph.Scope) depgraph.State[dom.Node] {
	content := depgraph.Map(p.nodes(el.Children, scope), toFragment)

	src, ok := el.Attrs.Get("src")
	if !ok || strings.TrimSpace(src) == "" {
		content.Agg.Warn(scope.SourcePath, "", "include without src attribute")
		return content
	}
	target, _, ok := vpath.Target(src, scope.SourcePath, scope.ProjectRoot)
	if !ok {
		return failed(scope, src, "include src %q is not a local file", src)
	}
	if scope.InChain(target) {
		return failed(scope, target, "include cycle: %s is already being included", target)
	}

	loaded, err := p.File(scope.Child(target), IncludeMode)
	if err != nil {
		return failed(scope, target, "include failed: %v", err)
	}
	baked := bake.Bake(loaded, content, false)
	baked.Agg.AddStatic(depgraph.Dependency{Origin: scope.SourcePath, Target: target, Internal: true})
	return baked
}

func failed(scope *depgraph.Scope, target, format string, args ...any) depgraph.State[dom.Node] {
	out := depgraph.Wrap[dom.Node](dom.Fragment{})
	out.Agg.Warn(scope.SourcePath, target, format, args...)
	return out
}

// style rewrites the stylesheet text of a <style> element.
func (p *Preprocessor) style(el *dom.Element, scope *depgraph.Scope) depgraph.State[dom.Node] {
	return depgraph.MapWith(p.nodes(el.Children, scope), func(children []dom.Node, agg *depgraph.Aggregator) dom.Node {
		attrs := el.Attrs.Clone()
		virtualizeAttrs(el.Tag, attrs, scope, agg)
		source := dom.TextContent(dom.Fragment(children))
		return &dom.Element{
			Tag:      el.Tag,
			Attrs:    attrs,
			Children: []dom.Node{dom.Text(virtualizeCSS(source, scope, agg))},
		}
	})
}

// virtualizeAttrs rewrites tracked attributes in place and records their targets.
func virtualizeAttrs(tag string, attrs dom.Attributes, scope *depgraph.Scope, agg *depgraph.Aggregator) {
	for i, attr := range attrs {
		kind, ok := vpath.Lookup(tag, attr.Key)
		if !ok {
			continue
		}
		pageLink := vpath.IsPageLink(tag, attr.Key)
		switch kind {
		case vpath.Regular:
			attrs[i].Value = virtualizeRef(attr.Value, pageLink, scope, agg)
		case vpath.Srcset:
			attrs[i].Value = vpath.RewriteSrcset(attr.Value, func(ref string) string {
				return virtualizeRef(ref, pageLink, scope, agg)
			})
		case vpath.Style:
			attrs[i].Value = virtualizeCSS(attr.Value, scope, agg)
		}
	}
}

func virtualizeRef(ref string, pageLink bool, scope *depgraph.Scope, agg *depgraph.Aggregator) string {
	virtual, target, ok := vpath.Virtualize(ref, scope.SourcePath, scope.ProjectRoot)
	if !ok {
		return ref
	}
	dep := depgraph.Dependency{Origin: scope.SourcePath, Target: target}
	agg.AddStatic(dep)
	if pageLink {
		agg.AddSource(dep)
	}
	return virtual
}

// virtualizeCSS rewrites url() and @import references of a stylesheet. Unparsable
// CSS is kept as written.
func virtualizeCSS(source string, scope *depgraph.Scope, agg *depgraph.Aggregator) string {
	out, err := css.Rewrite(source, func(ref string) string {
		return virtualizeRef(ref, false, scope, agg)
	})
	if err != nil {
		agg.Warn(scope.SourcePath, "", "stylesheet left unchanged: %v", err)
		return source
	}
	return out
}
