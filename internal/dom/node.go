// Package dom is the document model the build pipeline works on: a closed tree of
// elements, text and fragments, parsed from HTML source and serialized back to text.
package dom

import "strings"

// Node is one of *Element, Text or Fragment.
type Node interface {
	node()
}

// Element is a tag with attributes and children. Tags are lowercase after parsing.
type Element struct {
	Tag      string
	Attrs    Attributes
	Children []Node
}

// Text is a run of character data, stored unescaped.
type Text string

// Fragment is an ordered list of sibling nodes without a wrapping element.
type Fragment []Node

func (*Element) node() {}
func (Text) node()     {}
func (Fragment) node() {}

// HasTag reports whether the element's tag equals tag, ignoring case.
func (e *Element) HasTag(tag string) bool {
	return strings.EqualFold(e.Tag, tag)
}

// Attribute is a single key/value pair. Namespaced keys keep their prefix ("xlink:href").
type Attribute struct {
	Key   string
	Value string
}

// Attributes keeps source order so serialization is deterministic. Keys are unique
// under case-insensitive comparison.
type Attributes []Attribute

// Get returns the value for key, compared case-insensitively.
func (a Attributes) Get(key string) (string, bool) {
	for _, attr := range a {
		if strings.EqualFold(attr.Key, key) {
			return attr.Value, true
		}
	}
	return "", false
}

// Set replaces the value of an existing key or appends a new attribute.
func (a *Attributes) Set(key, value string) {
	for i := range *a {
		if strings.EqualFold((*a)[i].Key, key) {
			(*a)[i].Value = value
			return
		}
	}
	*a = append(*a, Attribute{Key: key, Value: value})
}

// Clone returns an independent copy.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	copy(out, a)
	return out
}

// Clone returns a deep copy of n. Trees are shared between pages during baking,
// so any node that is spliced into more than one place must be cloned first.
func Clone(n Node) Node {
	switch v := n.(type) {
	case *Element:
		return &Element{Tag: v.Tag, Attrs: v.Attrs.Clone(), Children: cloneNodes(v.Children)}
	case Fragment:
		return Fragment(cloneNodes(v))
	default:
		return n
	}
}

func cloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, child := range nodes {
		out[i] = Clone(child)
	}
	return out
}

// TextContent concatenates every text node below n in document order.
func TextContent(n Node) string {
	var b strings.Builder
	writeText(&b, n)
	return b.String()
}

func writeText(b *strings.Builder, n Node) {
	switch v := n.(type) {
	case Text:
		b.WriteString(string(v))
	case *Element:
		for _, child := range v.Children {
			writeText(b, child)
		}
	case Fragment:
		for _, child := range v {
			writeText(b, child)
		}
	}
}
