package config

import (
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/ssio/internal/compile"
	foundationerrors "git.home.luguber.info/inful/ssio/internal/foundation/errors"
	"git.home.luguber.info/inful/ssio/internal/logfields"
	"git.home.luguber.info/inful/ssio/internal/markdown"
	"git.home.luguber.info/inful/ssio/internal/resolve"
)

// Overrides are command-line values applied to a manifest build.
type Overrides struct {
	// PrettyPrint applies only when the manifest leaves pretty_print unset.
	PrettyPrint *bool
	// Jobs replaces the manifest's jobs when positive.
	Jobs int
}

// CompileConfig expands the manifest's rules against the file system.
func (m *Manifest) CompileConfig(o Overrides) (compile.Config, error) {
	root := joinPath(m.Dir(), m.Root)
	output := joinPath(root, m.OutputDir)

	exp := &Expander{Root: root, Exclude: m.Exclude, Skip: []string{output}}
	cfg := compile.Config{
		ProjectRoot: root,
		OutputDir:   output,
		PrettyPrint: prettyPrint(m.PrettyPrint, o.PrettyPrint),
		Jobs:        m.Jobs,
		Markdown: markdown.Options{
			DisableGFM: m.Markdown.DisableGFM,
			HeadingIDs: m.Markdown.HeadingIDs,
		},
	}
	if o.Jobs > 0 {
		cfg.Jobs = o.Jobs
	}
	if m.Template != "" {
		cfg.Template = joinPath(root, m.Template)
	}

	for _, rule := range m.Globs {
		pages, err := exp.Rules(rule)
		if err != nil {
			return compile.Config{}, err
		}
		for _, p := range pages {
			if p.Target != "" {
				p.Target = markdown.OutputName(p.Target)
			}
			cfg.Pages = append(cfg.Pages, p)
		}
	}
	for _, rule := range m.Manual {
		src := joinPath(root, rule.Source)
		if _, err := os.Stat(src); err != nil {
			return compile.Config{}, foundationerrors.NotFoundError("manual rule source does not exist").
				WithCause(err).
				WithContext(logfields.KeySource, src).
				Build()
		}
		cfg.Pages = append(cfg.Pages, resolve.InputRule{Source: src, Target: filepath.ToSlash(rule.Target)})
	}
	for _, rule := range m.Assets {
		assets, err := exp.Rules(rule)
		if err != nil {
			return compile.Config{}, err
		}
		cfg.Assets = append(cfg.Assets, assets...)
	}
	for _, b := range m.Bundles {
		cfg.Bundles = append(cfg.Bundles, resolve.BundleRule{Location: joinPath(root, b.Location)})
	}
	return cfg, nil
}

// Inputs is a build described on the command line instead of a manifest. Patterns
// and paths are relative to the working directory.
type Inputs struct {
	Root        string `validate:"required"`
	Output      string `validate:"required"`
	Template    string
	Patterns    []string `validate:"min=1,dive,required"`
	NoGlobs     bool
	PrettyPrint *bool
	Jobs        int `validate:"gte=0"`
	Markdown    markdown.Options
}

// CompileConfig validates in and expands its patterns.
func (in Inputs) CompileConfig() (compile.Config, error) {
	if err := validateStruct(in); err != nil {
		return compile.Config{}, foundationerrors.ValidationError("invalid compile inputs").WithCause(err).Build()
	}
	cwd, err := os.Getwd()
	if err != nil {
		return compile.Config{}, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "working directory").Build()
	}
	root := joinPath(cwd, in.Root)
	output := joinPath(cwd, in.Output)

	exp := &Expander{Root: cwd, Skip: []string{output}, NoGlobs: in.NoGlobs}
	files, err := exp.Files(in.Patterns...)
	if err != nil {
		return compile.Config{}, err
	}
	cfg := compile.Config{
		ProjectRoot: root,
		OutputDir:   output,
		PrettyPrint: prettyPrint(nil, in.PrettyPrint),
		Jobs:        in.Jobs,
		Markdown:    in.Markdown,
	}
	if in.Template != "" {
		cfg.Template = joinPath(cwd, in.Template)
	}
	for _, f := range files {
		cfg.Pages = append(cfg.Pages, resolve.InputRule{Source: f})
	}
	return cfg, nil
}

// prettyPrint picks the manifest value, then the flag, then true.
func prettyPrint(manifest, flag *bool) bool {
	switch {
	case manifest != nil:
		return *manifest
	case flag != nil:
		return *flag
	default:
		return true
	}
}

func joinPath(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, filepath.FromSlash(p))
}
