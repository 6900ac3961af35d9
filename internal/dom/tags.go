package dom

import "strings"

// These tables drive the pretty printer's line breaking and indentation.

var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

var inlineTags = map[string]bool{
	// phrasing content
	"a": true, "abbr": true, "b": true, "bdi": true, "bdo": true, "br": true,
	"cite": true, "code": true, "data": true, "dfn": true, "em": true, "i": true,
	"kbd": true, "mark": true, "q": true, "rp": true, "rt": true, "ruby": true,
	"s": true, "samp": true, "small": true, "span": true, "strong": true,
	"sub": true, "sup": true, "time": true, "u": true, "var": true, "wbr": true,
	// embedded content
	"audio": true, "canvas": true, "embed": true, "iframe": true, "img": true,
	"math": true, "object": true, "picture": true, "svg": true, "video": true,
	// interactive content
	"button": true, "input": true, "label": true, "select": true, "textarea": true,
	// script-supporting and transparent
	"script": true, "noscript": true, "template": true, "slot": true, "output": true,
}

var headerTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// Elements whose text content is written without entity escaping.
var rawTextTags = map[string]bool{
	"script": true, "style": true, "xmp": true, "iframe": true,
	"noembed": true, "noframes": true, "noscript": true, "plaintext": true,
}

// Elements whose content the pretty printer never reflows.
var preservedTags = map[string]bool{
	"pre": true, "textarea": true, "script": true, "style": true,
}

// IsVoidTag reports whether tag never has children and serializes self-closing.
func IsVoidTag(tag string) bool { return voidTags[strings.ToLower(tag)] }

// IsInlineTag reports whether tag is phrasing, embedded, interactive or script-supporting content.
func IsInlineTag(tag string) bool { return inlineTags[strings.ToLower(tag)] }

// IsHeaderTag reports whether tag is h1 through h6.
func IsHeaderTag(tag string) bool { return headerTags[strings.ToLower(tag)] }

func isRawTextTag(tag string) bool { return rawTextTags[strings.ToLower(tag)] }

func isPreservedTag(tag string) bool { return preservedTags[strings.ToLower(tag)] }
