package dom

import (
	"strings"
)

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "\"", "&quot;")
)

// HTMLString serializes n compactly: no whitespace is added, void elements without
// children are written self-closing. This form is used for change detection.
func HTMLString(n Node) string {
	var b strings.Builder
	writeHTML(&b, n, false)
	return b.String()
}

// PrettyHTMLString serializes n and reformats the result with Prettify. When the
// formatter fails the compact form is returned.
func PrettyHTMLString(n Node) string {
	compact := HTMLString(n)
	pretty, err := Prettify(compact)
	if err != nil {
		return compact
	}
	return pretty
}

func writeHTML(b *strings.Builder, n Node, raw bool) {
	switch v := n.(type) {
	case *Element:
		writeElement(b, v)
	case Text:
		if raw {
			b.WriteString(string(v))
		} else {
			textEscaper.WriteString(b, string(v))
		}
	case Fragment:
		for _, child := range v {
			writeHTML(b, child, raw)
		}
	}
}

func writeElement(b *strings.Builder, el *Element) {
	b.WriteByte('<')
	b.WriteString(el.Tag)
	for _, attr := range el.Attrs {
		b.WriteByte(' ')
		b.WriteString(attr.Key)
		b.WriteString(`="`)
		attrEscaper.WriteString(b, attr.Value)
		b.WriteByte('"')
	}
	if IsVoidTag(el.Tag) && len(el.Children) == 0 {
		b.WriteString(" />")
		return
	}
	b.WriteByte('>')
	raw := isRawTextTag(el.Tag)
	for _, child := range el.Children {
		writeHTML(b, child, raw)
	}
	b.WriteString("</")
	b.WriteString(el.Tag)
	b.WriteByte('>')
}
