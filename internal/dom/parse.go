package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParserMode selects whole-document parsing or a fragment parse seeded with a context element.
type ParserMode struct {
	context string
}

// DocumentMode parses a complete document; missing html/head/body are implied.
func DocumentMode() ParserMode { return ParserMode{} }

// FragmentMode parses source as if it were the content of a context element such as "div".
func FragmentMode(context string) ParserMode { return ParserMode{context: context} }

// IsFragment reports whether the mode parses fragments.
func (m ParserMode) IsFragment() bool { return m.context != "" }

func (m ParserMode) String() string {
	if m.IsFragment() {
		return "fragment(" + m.context + ")"
	}
	return "document"
}

// Parse turns HTML source into a normalized tree. The result is always a Fragment:
// the document's top-level nodes, or the fragment's nodes.
func Parse(source string, mode ParserMode) (Node, error) {
	if !mode.IsFragment() {
		doc, err := html.Parse(strings.NewReader(source))
		if err != nil {
			return nil, fmt.Errorf("parse document: %w", err)
		}
		return Fragment(normalizeChildren(doc)), nil
	}

	context := &html.Node{
		Type:     html.ElementNode,
		Data:     mode.context,
		DataAtom: atom.Lookup([]byte(mode.context)),
	}
	nodes, err := html.ParseFragment(strings.NewReader(source), context)
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}
	out := make(Fragment, 0, len(nodes))
	for _, n := range nodes {
		if converted, ok := normalize(n); ok {
			out = append(out, converted)
		}
	}
	return out, nil
}

// normalize maps parser nodes onto the three public variants. Comments and
// doctypes are dropped; the compiler writes its own doctype.
func normalize(n *html.Node) (Node, bool) {
	switch n.Type {
	case html.ElementNode:
		el := &Element{
			Tag:      strings.ToLower(n.Data),
			Children: normalizeChildren(n),
		}
		if len(n.Attr) > 0 {
			el.Attrs = make(Attributes, 0, len(n.Attr))
			for _, a := range n.Attr {
				key := strings.ToLower(a.Key)
				if a.Namespace != "" {
					key = a.Namespace + ":" + key
				}
				el.Attrs.Set(key, a.Val)
			}
		}
		return el, true
	case html.TextNode:
		return Text(n.Data), true
	case html.DocumentNode:
		return Fragment(normalizeChildren(n)), true
	case html.RawNode:
		return Text(n.Data), true
	default:
		return nil, false
	}
}

func normalizeChildren(n *html.Node) []Node {
	var out []Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if converted, ok := normalize(c); ok {
			out = append(out, converted)
		}
	}
	return out
}
