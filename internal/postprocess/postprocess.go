// Package postprocess implements the second pass: every virtual reference in a
// baked page is replaced by a path relative to the page's output file.
package postprocess

import (
	"strings"

	"git.home.luguber.info/inful/ssio/internal/css"
	"git.home.luguber.info/inful/ssio/internal/depgraph"
	"git.home.luguber.info/inful/ssio/internal/dom"
	"git.home.luguber.info/inful/ssio/internal/resolve"
	"git.home.luguber.info/inful/ssio/internal/vpath"
)

// Page identifies the page being rewritten.
type Page struct {
	Source string
	Output string
}

// Postprocessor resolves references against a completed Resolver.
type Postprocessor struct {
	Resolver *resolve.Resolver
}

// New returns a Postprocessor for r.
func New(r *resolve.Resolver) *Postprocessor {
	return &Postprocessor{Resolver: r}
}

// Run rewrites n for page. Unresolvable references are kept as written and reported.
func (p *Postprocessor) Run(n dom.Node, page Page) depgraph.State[dom.Node] {
	switch v := n.(type) {
	case *dom.Element:
		return p.element(v, page)
	case dom.Fragment:
		return depgraph.Map(p.nodes(v, page), func(nodes []dom.Node) dom.Node { return dom.Fragment(nodes) })
	default:
		return depgraph.Wrap(n)
	}
}

func (p *Postprocessor) nodes(nodes []dom.Node, page Page) depgraph.State[[]dom.Node] {
	states := make([]depgraph.State[dom.Node], 0, len(nodes))
	for _, child := range nodes {
		states = append(states, p.Run(child, page))
	}
	return depgraph.Flatten(states)
}

func (p *Postprocessor) element(el *dom.Element, page Page) depgraph.State[dom.Node] {
	return depgraph.MapWith(p.nodes(el.Children, page), func(children []dom.Node, agg *depgraph.Aggregator) dom.Node {
		attrs := el.Attrs.Clone()
		p.rewriteAttrs(el.Tag, attrs, page, agg)
		if strings.EqualFold(el.Tag, "style") {
			source := dom.TextContent(dom.Fragment(children))
			children = []dom.Node{dom.Text(p.rewriteCSS(source, page, agg))}
		}
		return &dom.Element{Tag: el.Tag, Attrs: attrs, Children: children}
	})
}

func (p *Postprocessor) rewriteAttrs(tag string, attrs dom.Attributes, page Page, agg *depgraph.Aggregator) {
	for i, attr := range attrs {
		kind, ok := vpath.Lookup(tag, attr.Key)
		if !ok {
			continue
		}
		switch kind {
		case vpath.Regular:
			attrs[i].Value = p.rewriteRef(attr.Value, page, agg)
		case vpath.Srcset:
			attrs[i].Value = vpath.RewriteSrcset(attr.Value, func(ref string) string {
				return p.rewriteRef(ref, page, agg)
			})
		case vpath.Style:
			attrs[i].Value = p.rewriteCSS(attr.Value, page, agg)
		}
	}
}

func (p *Postprocessor) rewriteRef(ref string, page Page, agg *depgraph.Aggregator) string {
	target, suffix, ok := vpath.Target(ref, page.Source, p.Resolver.ProjectRoot())
	if !ok {
		return ref
	}
	output, ok := p.Resolver.Resolve(target)
	if !ok {
		agg.Warn(page.Source, target, "unresolved reference %q", ref)
		return ref
	}
	return vpath.Relative(page.Output, output) + suffix
}

func (p *Postprocessor) rewriteCSS(source string, page Page, agg *depgraph.Aggregator) string {
	out, err := css.Rewrite(source, func(ref string) string {
		return p.rewriteRef(ref, page, agg)
	})
	if err != nil {
		agg.Warn(page.Source, "", "stylesheet left unchanged: %v", err)
		return source
	}
	return out
}
