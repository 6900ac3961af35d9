package vpath

import "strings"

// Kind describes how an attribute value carries references.
type Kind int

const (
	// Regular attributes hold a single URL.
	Regular Kind = iota + 1
	// Srcset attributes hold a comma separated candidate list.
	Srcset
	// Style attributes hold inline CSS declarations.
	Style
)

func (k Kind) String() string {
	switch k {
	case Regular:
		return "regular"
	case Srcset:
		return "srcset"
	case Style:
		return "style"
	default:
		return "unknown"
	}
}

type tagAttr struct{ tag, attr string }

var tracked = map[tagAttr]Kind{
	{"a", "href"}:            Regular,
	{"area", "href"}:         Regular,
	{"link", "href"}:         Regular,
	{"img", "src"}:           Regular,
	{"video", "src"}:         Regular,
	{"video", "poster"}:      Regular,
	{"source", "src"}:        Regular,
	{"script", "src"}:        Regular,
	{"iframe", "src"}:        Regular,
	{"audio", "src"}:         Regular,
	{"track", "src"}:         Regular,
	{"embed", "src"}:         Regular,
	{"object", "data"}:       Regular,
	{"form", "action"}:       Regular,
	{"input", "formaction"}:  Regular,
	{"button", "formaction"}: Regular,
	{"use", "href"}:          Regular,
	{"use", "xlink:href"}:    Regular,
	{"image", "href"}:        Regular,
	{"image", "xlink:href"}:  Regular,
	{"img", "srcset"}:        Srcset,
	{"source", "srcset"}:     Srcset,
}

// pageLinks are attributes whose targets should end up at another page's output.
var pageLinks = map[tagAttr]bool{
	{"a", "href"}: true,
}

// Lookup returns how the attribute attr of a tag element carries references.
// Every element's style attribute is tracked as inline CSS.
func Lookup(tag, attr string) (Kind, bool) {
	tag, attr = strings.ToLower(tag), strings.ToLower(attr)
	if attr == "style" {
		return Style, true
	}
	k, ok := tracked[tagAttr{tag, attr}]
	return k, ok
}

// IsPageLink reports whether the attribute links to another page.
func IsPageLink(tag, attr string) bool {
	return pageLinks[tagAttr{strings.ToLower(tag), strings.ToLower(attr)}]
}
