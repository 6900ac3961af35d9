// Package markdown renders Markdown sources to HTML so they can enter the build
// pipeline like any hand-written fragment.
package markdown

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Options controls Markdown rendering.
type Options struct {
	// DisableGFM turns off tables, strikethrough, autolinks and task lists.
	DisableGFM bool
	// HeadingIDs adds generated id attributes to headings.
	HeadingIDs bool
}

// Document is a rendered Markdown source.
type Document struct {
	// HTML is the rendered body. Raw HTML in the source, including <include> tags,
	// is passed through.
	HTML []byte
	// Fields holds the YAML frontmatter, empty when the source has none.
	Fields map[string]any
}

// Title returns the frontmatter title, if any.
func (d Document) Title() string {
	if s, ok := d.Fields["title"].(string); ok {
		return s
	}
	return ""
}

// Extensions recognized as Markdown sources.
var Extensions = []string{".md", ".markdown"}

// IsMarkdown reports whether path names a Markdown source.
func IsMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// OutputName replaces a Markdown extension with .html. Other paths are returned unchanged.
func OutputName(path string) string {
	if !IsMarkdown(path) {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".html"
}

func newRenderer(opts Options) goldmark.Markdown {
	var extensions []goldmark.Extender
	if !opts.DisableGFM {
		extensions = append(extensions, extension.GFM)
	}
	var parserOpts []parser.Option
	if opts.HeadingIDs {
		parserOpts = append(parserOpts, parser.WithAutoHeadingID())
	}
	return goldmark.New(
		goldmark.WithExtensions(extensions...),
		goldmark.WithParserOptions(parserOpts...),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
}

// Render splits off YAML frontmatter and converts the body to HTML.
func Render(source []byte, opts Options) (Document, error) {
	fm, body, had, err := SplitFrontmatter(source)
	if err != nil {
		return Document{}, err
	}
	doc := Document{Fields: map[string]any{}}
	if had {
		fields, err := ParseFrontmatter(fm)
		if err != nil {
			return Document{}, fmt.Errorf("frontmatter: %w", err)
		}
		doc.Fields = fields
	}

	var buf bytes.Buffer
	if err := newRenderer(opts).Convert(body, &buf); err != nil {
		return Document{}, fmt.Errorf("render markdown: %w", err)
	}
	doc.HTML = buf.Bytes()
	return doc, nil
}
