package preprocess

import (
	"fmt"
	"os"

	"git.home.luguber.info/inful/ssio/internal/dom"
	"git.home.luguber.info/inful/ssio/internal/markdown"
)

// Loader reads source files and parses them into trees. Markdown sources are
// rendered to HTML before parsing.
type Loader struct {
	// ReadFile defaults to os.ReadFile.
	ReadFile func(name string) ([]byte, error)
	Markdown markdown.Options
}

func (l *Loader) read(path string) ([]byte, error) {
	if l != nil && l.ReadFile != nil {
		return l.ReadFile(path)
	}
	return os.ReadFile(path)
}

// Parse reads path and parses it in mode.
func (l *Loader) Parse(path string, mode dom.ParserMode) (dom.Node, error) {
	data, err := l.read(path)
	if err != nil {
		return nil, err
	}
	if markdown.IsMarkdown(path) {
		var opts markdown.Options
		if l != nil {
			opts = l.Markdown
		}
		doc, err := markdown.Render(data, opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		data = doc.HTML
	}
	node, err := dom.Parse(string(data), mode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return node, nil
}
