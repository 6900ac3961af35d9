// Package css rewrites the references inside stylesheet text: url() tokens and
// the string form of @import.
package css

import (
	"fmt"
	"strings"

	"github.com/gorilla/css/scanner"
)

// RewriteFunc maps a reference to its replacement. Returning the input leaves it unchanged.
type RewriteFunc func(ref string) string

// Rewrite passes every url() value and @import string in src through fn and returns
// the updated stylesheet. Everything else is copied byte for byte. On a scan error the
// input is returned unchanged together with the error.
func Rewrite(src string, fn RewriteFunc) (string, error) {
	s := scanner.New(src)
	var b strings.Builder
	b.Grow(len(src))
	afterImport := false

	for {
		tok := s.Next()
		switch tok.Type {
		case scanner.TokenEOF:
			return b.String(), nil
		case scanner.TokenError:
			return src, fmt.Errorf("css: line %d column %d: %s", tok.Line, tok.Column, tok.Value)
		case scanner.TokenURI:
			b.WriteString(rewriteURI(tok.Value, fn))
			afterImport = false
		case scanner.TokenString:
			if afterImport {
				b.WriteString(rewriteString(tok.Value, fn))
			} else {
				b.WriteString(tok.Value)
			}
			afterImport = false
		case scanner.TokenAtKeyword:
			b.WriteString(tok.Value)
			afterImport = strings.EqualFold(tok.Value, "@import")
		case scanner.TokenS, scanner.TokenComment:
			b.WriteString(tok.Value)
		default:
			b.WriteString(tok.Value)
			afterImport = false
		}
	}
}

// rewriteURI handles the raw text of a url(...) token, keeping its quoting.
func rewriteURI(raw string, fn RewriteFunc) string {
	open := strings.IndexByte(raw, '(')
	closing := strings.LastIndexByte(raw, ')')
	if open < 0 || closing < open {
		return raw
	}
	inner := raw[open+1 : closing]
	trimmed := strings.TrimSpace(inner)
	if trimmed == "" {
		return raw
	}
	var updated string
	if q := trimmed[0]; (q == '"' || q == '\'') && len(trimmed) >= 2 && trimmed[len(trimmed)-1] == q {
		updated = rewriteString(trimmed, fn)
	} else {
		updated = fn(trimmed)
	}
	return raw[:open+1] + updated + raw[closing:]
}

// rewriteString handles a quoted CSS string token.
func rewriteString(raw string, fn RewriteFunc) string {
	if len(raw) < 2 {
		return raw
	}
	q := raw[0]
	value := raw[1 : len(raw)-1]
	updated := fn(value)
	if updated == value {
		return raw
	}
	return string(q) + strings.ReplaceAll(updated, string(q), "\\"+string(q)) + string(q)
}
