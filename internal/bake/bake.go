// Package bake splices page content into templates.
package bake

import (
	"strings"

	"git.home.luguber.info/inful/ssio/internal/depgraph"
	"git.home.luguber.info/inful/ssio/internal/dom"
)

// PlaceholderTag is the element a template marks its content slot with.
const PlaceholderTag = "content"

// Bake replaces every <content> element in template with a copy of content's tree.
// The result's aggregator is always the union of both sides.
//
// When the template has no placeholder, implicit decides what survives: true keeps
// the content and discards the template (top-level page wrapping), false keeps the
// template and drops the content (include expansion).
func Bake(template, content depgraph.State[dom.Node], implicit bool) depgraph.State[dom.Node] {
	agg := depgraph.Merge(template.Agg, content.Agg)
	baked, found := substitute(template.Value, content.Value)
	if !found && implicit {
		return depgraph.State[dom.Node]{Agg: agg, Value: content.Value}
	}
	return depgraph.State[dom.Node]{Agg: agg, Value: baked}
}

// HasPlaceholder reports whether n contains a <content> element.
func HasPlaceholder(n dom.Node) bool {
	switch v := n.(type) {
	case *dom.Element:
		if isPlaceholder(v) {
			return true
		}
		for _, child := range v.Children {
			if HasPlaceholder(child) {
				return true
			}
		}
	case dom.Fragment:
		for _, child := range v {
			if HasPlaceholder(child) {
				return true
			}
		}
	}
	return false
}

func isPlaceholder(el *dom.Element) bool {
	return strings.EqualFold(el.Tag, PlaceholderTag)
}

// substitute rebuilds n with placeholders replaced. The template tree is never
// modified, so one loaded template can be baked for many pages concurrently.
func substitute(n dom.Node, content dom.Node) (dom.Node, bool) {
	switch v := n.(type) {
	case *dom.Element:
		if isPlaceholder(v) {
			return dom.Clone(content), true
		}
		children, found := substituteAll(v.Children, content)
		return &dom.Element{Tag: v.Tag, Attrs: v.Attrs.Clone(), Children: children}, found
	case dom.Fragment:
		children, found := substituteAll(v, content)
		return dom.Fragment(children), found
	default:
		return n, false
	}
}

func substituteAll(nodes []dom.Node, content dom.Node) ([]dom.Node, bool) {
	if nodes == nil {
		return nil, false
	}
	out := make([]dom.Node, len(nodes))
	found := false
	for i, child := range nodes {
		var ok bool
		out[i], ok = substitute(child, content)
		found = found || ok
	}
	return out, found
}
