package vpath

import (
	"strings"
	"unicode"
)

// Candidate is one "url [descriptor]" entry of a srcset attribute.
type Candidate struct {
	URL        string
	Descriptor string
}

// ParseSrcset splits a srcset value into candidates. The URL ends at the first
// whitespace or comma; the descriptor is the trimmed text up to the next comma.
func ParseSrcset(value string) []Candidate {
	var out []Candidate
	rest := strings.TrimSpace(value)
	for rest != "" {
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		if rest == "" {
			break
		}
		end := strings.IndexFunc(rest, func(r rune) bool { return r == ',' || unicode.IsSpace(r) })
		if end == 0 {
			// empty candidate
			rest = rest[1:]
			continue
		}
		if end < 0 {
			end = len(rest)
		}
		c := Candidate{URL: rest[:end]}
		rest = rest[end:]

		if comma := strings.IndexByte(rest, ','); comma >= 0 {
			c.Descriptor = strings.TrimSpace(rest[:comma])
			rest = rest[comma+1:]
		} else {
			c.Descriptor = strings.TrimSpace(rest)
			rest = ""
		}
		out = append(out, c)
	}
	return out
}

// FormatSrcset joins candidates with ", ", writing descriptors only when present.
func FormatSrcset(candidates []Candidate) string {
	parts := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c.Descriptor == "" {
			parts = append(parts, c.URL)
			continue
		}
		parts = append(parts, c.URL+" "+c.Descriptor)
	}
	return strings.Join(parts, ", ")
}

// RewriteSrcset applies fn to every candidate URL and reassembles the list.
func RewriteSrcset(value string, fn func(url string) string) string {
	candidates := ParseSrcset(value)
	for i := range candidates {
		candidates[i].URL = fn(candidates[i].URL)
	}
	return FormatSrcset(candidates)
}
