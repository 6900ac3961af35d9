package commands

import (
	"git.home.luguber.info/inful/ssio/internal/config"
	"git.home.luguber.info/inful/ssio/internal/logfields"
	"git.home.luguber.info/inful/ssio/internal/markdown"
)

// CompileCmd implements the 'compile' command.
type CompileCmd struct {
	Root        string   `help:"Project root; virtual paths and default outputs are relative to it" required:"" type:"path"`
	Output      string   `short:"o" help:"Output directory" required:"" type:"path"`
	Template    string   `short:"t" help:"Wrap every page in this template" type:"path"`
	Input       []string `short:"i" help:"Page files or glob patterns, relative to the working directory" required:"" sep:"none"`
	NoGlobs     bool     `name:"no-globs" help:"Treat every input as a literal path"`
	PrettyPrint *bool    `name:"pretty-print" help:"Pretty-print written pages (default true)"`
	Jobs        int      `short:"j" help:"Pages processed in parallel (0 = number of CPUs)" default:"0"`
	HeadingIDs  bool     `name:"heading-ids" help:"Add id attributes to headings of markdown pages"`
}

func (c *CompileCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Inputs{
		Root:        c.Root,
		Output:      c.Output,
		Template:    c.Template,
		Patterns:    c.Input,
		NoGlobs:     c.NoGlobs,
		PrettyPrint: c.PrettyPrint,
		Jobs:        c.Jobs,
		Markdown:    markdown.Options{HeadingIDs: c.HeadingIDs},
	}.CompileConfig()
	if err != nil {
		return err
	}
	g.Logger.Debug("Resolved inputs", logfields.Count(len(cfg.Pages)))
	return newBuilder(g, root, cfg, nil).run(contextOf(g))
}
