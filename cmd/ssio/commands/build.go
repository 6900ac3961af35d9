package commands

import (
	"git.home.luguber.info/inful/ssio/internal/compile"
	"git.home.luguber.info/inful/ssio/internal/config"
	"git.home.luguber.info/inful/ssio/internal/logfields"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Manifest    string `short:"m" help:"Manifest file (.toml, .yaml or .yml)" default:"ssio.toml" type:"path"`
	PrettyPrint *bool  `name:"pretty-print" help:"Pretty-print written pages when the manifest does not say (default true)"`
	Jobs        int    `short:"j" help:"Pages processed in parallel; overrides the manifest when positive" default:"0"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadManifestConfig(g, b.Manifest, config.Overrides{PrettyPrint: b.PrettyPrint, Jobs: b.Jobs})
	if err != nil {
		return err
	}
	return newBuilder(g, root, cfg, nil).run(contextOf(g))
}

func loadManifestConfig(g *Global, path string, o config.Overrides) (compile.Config, error) {
	m, err := config.LoadManifest(path)
	if err != nil {
		return compile.Config{}, err
	}
	cfg, err := m.CompileConfig(o)
	if err != nil {
		return compile.Config{}, err
	}
	g.Logger.Debug("Loaded manifest",
		logfields.Path(m.Path()),
		logfields.Count(len(cfg.Pages)),
		logfields.Output(cfg.OutputDir))
	return cfg, nil
}
