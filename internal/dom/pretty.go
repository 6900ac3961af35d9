package dom

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

const indentUnit = "  "

// Elements whose children are laid out without an extra indentation level.
var flatTags = map[string]bool{"html": true, "head": true, "body": true}

// token is the formatter's light tree. Raw token text is kept so entities and
// attribute quoting survive formatting untouched.
type token struct {
	tag      string
	raw      string
	text     bool
	verbatim bool
	children []*token
}

// Prettify reformats serialized HTML with one block element per line and
// two-space indentation. Elements whose content contains text or inline
// elements stay on one line; pre, textarea, script and style are copied verbatim.
func Prettify(source string) (string, error) {
	root, err := tokenize(source)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, child := range root.children {
		writeBlock(&b, child, 0)
	}
	return b.String(), nil
}

func tokenize(source string) (*token, error) {
	z := html.NewTokenizer(strings.NewReader(source))
	root := &token{}
	stack := []*token{root}
	top := func() *token { return stack[len(stack)-1] }

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return root, nil
			}
			return nil, fmt.Errorf("tokenize: %w", z.Err())
		case html.StartTagToken:
			name, _ := z.TagName()
			t := &token{tag: string(name), raw: string(z.Raw())}
			top().children = append(top().children, t)
			if !IsVoidTag(t.tag) {
				stack = append(stack, t)
			}
		case html.SelfClosingTagToken:
			name, _ := z.TagName()
			top().children = append(top().children, &token{tag: string(name), raw: string(z.Raw())})
		case html.EndTagToken:
			name, _ := z.TagName()
			matched := false
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].tag == string(name) {
					stack = stack[:i]
					matched = true
					break
				}
			}
			if !matched {
				top().children = append(top().children, &token{text: true, raw: string(z.Raw())})
			}
		case html.TextToken:
			top().children = append(top().children, &token{text: true, raw: string(z.Raw())})
		case html.CommentToken, html.DoctypeToken:
			top().children = append(top().children, &token{verbatim: true, raw: string(z.Raw())})
		}
	}
}

func (t *token) closing() string {
	if t.tag == "" || (IsVoidTag(t.tag) && len(t.children) == 0) || strings.HasSuffix(t.raw, "/>") {
		return ""
	}
	return "</" + t.tag + ">"
}

func (t *token) blank() bool {
	return t.text && strings.TrimSpace(t.raw) == ""
}

// inlineContent reports whether t's children belong on the same line as t.
func (t *token) inlineContent() bool {
	if IsHeaderTag(t.tag) {
		return true
	}
	for _, child := range t.children {
		if child.text && !child.blank() {
			return true
		}
		if !child.text && !child.verbatim && IsInlineTag(child.tag) {
			return true
		}
	}
	return false
}

func writeBlock(b *strings.Builder, t *token, depth int) {
	if t.blank() {
		return
	}
	indent := strings.Repeat(indentUnit, depth)
	switch {
	case t.text:
		b.WriteString(indent)
		b.WriteString(strings.TrimSpace(collapseSpace(t.raw)))
		b.WriteByte('\n')
	case t.verbatim:
		b.WriteString(indent)
		b.WriteString(t.raw)
		b.WriteByte('\n')
	case isPreservedTag(t.tag):
		b.WriteString(indent)
		writeVerbatim(b, t)
		b.WriteByte('\n')
	case len(t.children) == 0:
		b.WriteString(indent)
		b.WriteString(t.raw)
		b.WriteString(t.closing())
		b.WriteByte('\n')
	case t.inlineContent():
		var inner strings.Builder
		for _, child := range t.children {
			writeInline(&inner, child)
		}
		b.WriteString(indent)
		b.WriteString(t.raw)
		b.WriteString(strings.TrimSpace(inner.String()))
		b.WriteString(t.closing())
		b.WriteByte('\n')
	default:
		childDepth := depth + 1
		if flatTags[t.tag] {
			childDepth = depth
		}
		b.WriteString(indent)
		b.WriteString(t.raw)
		b.WriteByte('\n')
		for _, child := range t.children {
			writeBlock(b, child, childDepth)
		}
		if closing := t.closing(); closing != "" {
			b.WriteString(indent)
			b.WriteString(closing)
			b.WriteByte('\n')
		}
	}
}

func writeInline(b *strings.Builder, t *token) {
	switch {
	case t.text:
		b.WriteString(collapseSpace(t.raw))
	case t.verbatim:
		b.WriteString(t.raw)
	case isPreservedTag(t.tag):
		writeVerbatim(b, t)
	default:
		b.WriteString(t.raw)
		for _, child := range t.children {
			writeInline(b, child)
		}
		b.WriteString(t.closing())
	}
}

func writeVerbatim(b *strings.Builder, t *token) {
	b.WriteString(t.raw)
	for _, child := range t.children {
		writeVerbatim(b, child)
	}
	b.WriteString(t.closing())
}

// collapseSpace replaces each run of whitespace with a single space.
func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				b.WriteByte(' ')
			}
			space = true
		default:
			b.WriteRune(r)
			space = false
		}
	}
	return b.String()
}
