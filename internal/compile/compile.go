// Package compile runs a whole build: every page is preprocessed and baked into
// the template, the collected dependencies are resolved, and each page is then
// rewritten for its output location and written. Referenced assets and bundles
// are linked into the output tree.
package compile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"git.home.luguber.info/inful/ssio/internal/bake"
	"git.home.luguber.info/inful/ssio/internal/depgraph"
	"git.home.luguber.info/inful/ssio/internal/dom"
	foundationerrors "git.home.luguber.info/inful/ssio/internal/foundation/errors"
	"git.home.luguber.info/inful/ssio/internal/logfields"
	"git.home.luguber.info/inful/ssio/internal/markdown"
	"git.home.luguber.info/inful/ssio/internal/metrics"
	"git.home.luguber.info/inful/ssio/internal/preprocess"
	"git.home.luguber.info/inful/ssio/internal/report"
	"git.home.luguber.info/inful/ssio/internal/resolve"
)

// Config is everything a build needs. Paths may be relative to the working directory.
type Config struct {
	ProjectRoot string
	OutputDir   string
	// Template is optional; without it pages are written as they are.
	Template    string
	Pages       []resolve.InputRule
	Assets      []resolve.InputRule
	Bundles     []resolve.BundleRule
	PrettyPrint bool
	// Jobs bounds the per-page fan-out; zero means GOMAXPROCS.
	Jobs     int
	Markdown markdown.Options
}

// Compiler runs builds for one Config. Run may be called repeatedly.
type Compiler struct {
	cfg      Config
	logger   *slog.Logger
	recorder metrics.Recorder
	loader   *preprocess.Loader
}

// Option customizes a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder; the default records nothing.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *Compiler) {
		if r != nil {
			c.recorder = r
		}
	}
}

// New returns a Compiler for cfg.
func New(cfg Config, opts ...Option) *Compiler {
	cfg.ProjectRoot = absPath(cfg.ProjectRoot)
	cfg.OutputDir = absPath(cfg.OutputDir)
	if cfg.Template != "" {
		cfg.Template = absPath(cfg.Template)
	}
	if cfg.Jobs <= 0 {
		cfg.Jobs = runtime.GOMAXPROCS(0)
	}
	c := &Compiler{
		cfg:      cfg,
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.loader = &preprocess.Loader{Markdown: cfg.Markdown}
	return c
}

// Config returns the normalized configuration.
func (c *Compiler) Config() Config { return c.cfg }

// Run performs one build. The report is returned even when the build fails.
// Failures of single pages, writes or links do not stop the other pages; they are
// collected and Run returns an error once everything else is done. A broken
// template, a cancelled context or an output path that violates the layout
// invariants abort the build.
func (c *Compiler) Run(ctx context.Context) (*report.Report, error) {
	rep := report.New(c.inputs())
	c.logger.Info("Starting build",
		logfields.BuildID(rep.ID),
		logfields.Count(len(c.cfg.Pages)),
		logfields.Output(c.cfg.OutputDir))

	err := c.run(ctx, rep)
	c.finish(rep, err)
	return rep, err
}

func (c *Compiler) run(ctx context.Context, rep *report.Report) error {
	if err := os.MkdirAll(c.cfg.OutputDir, 0o750); err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "create output directory").
			WithContext(logfields.KeyPath, c.cfg.OutputDir).
			Fatal().
			Build()
	}

	template, err := stage(c, rep, report.StageTemplate, c.loadTemplate)
	if err != nil {
		return err
	}

	pages := c.uniquePages()
	rep.Pages.Total = len(pages)

	baked, err := stage(c, rep, report.StagePreprocess, func() ([]pageState, error) {
		return c.preprocessPages(ctx, pages, template)
	})
	if err != nil {
		return err
	}

	var global depgraph.Aggregator
	var failed []error
	for _, p := range baked {
		if p.err != nil {
			failed = append(failed, p.err)
			continue
		}
		global.Include(p.state.Agg)
	}

	var plan []plannedPage
	resolver, err := stage(c, rep, report.StageResolve, func() (*resolve.Resolver, error) {
		r := resolve.Build(resolve.Options{
			ProjectRoot: c.cfg.ProjectRoot,
			OutputDir:   c.cfg.OutputDir,
			Pages:       pages,
			Assets:      c.cfg.Assets,
			Bundles:     c.cfg.Bundles,
		}, global)
		reportMissing(r, &global)
		rep.Links.Assets = len(r.Assets())
		var err error
		plan, err = c.planOutputs(r, baked, rep, &global)
		return r, err
	})
	if err != nil {
		return err
	}

	written, err := stage(c, rep, report.StagePostprocess, func() ([]writeResult, error) {
		return c.postprocessPages(ctx, resolver, plan)
	})
	if err != nil {
		return err
	}
	for _, w := range written {
		global.Include(w.agg)
		switch {
		case w.err != nil:
			failed = append(failed, w.err)
		case w.changed:
			rep.Pages.Written++
			c.recorder.IncPageResult(metrics.PageWritten)
		default:
			rep.Pages.Unchanged++
			c.recorder.IncPageResult(metrics.PageUnchanged)
		}
	}

	linkErrs, _ := stage(c, rep, report.StageLink, func() ([]error, error) {
		return c.linkAssets(resolver, rep, &global), nil
	})
	failed = append(failed, linkErrs...)

	c.reportDiagnostics(rep, global)

	rep.Pages.Failed = countPageFailures(failed)
	for _, f := range failed {
		rep.AddError(f)
		c.logger.Error("Build step failed", logfields.Error(f))
	}
	if len(failed) > 0 {
		return foundationerrors.BuildError(fmt.Sprintf("%d build step(s) failed", len(failed))).
			WithCause(errors.Join(failed...)).
			Build()
	}
	return nil
}

// stage times fn and records its result under name.
func stage[T any](c *Compiler, rep *report.Report, name report.StageName, fn func() (T, error)) (T, error) {
	rep.BeginStage(name)
	out, err := fn()
	d := rep.EndStage(name)
	c.recorder.ObserveStageDuration(string(name), d)
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultFatal
	}
	c.recorder.IncStageResult(string(name), result)
	c.logger.Debug("Stage complete", logfields.Stage(string(name)), logfields.DurationMS(float64(d.Microseconds())/1000))
	return out, err
}

func (c *Compiler) loadTemplate() (*depgraph.State[dom.Node], error) {
	if c.cfg.Template == "" {
		return nil, nil //nolint:nilnil // no template configured
	}
	pre := preprocess.New(c.loader)
	state, err := pre.File(depgraph.NewScope(c.cfg.ProjectRoot, c.cfg.Template), dom.DocumentMode())
	if err != nil {
		return nil, foundationerrors.WrapError(err, categoryFor(err), "load template").
			WithContext(logfields.KeyTemplate, c.cfg.Template).
			Fatal().
			Build()
	}
	if !bake.HasPlaceholder(state.Value) {
		c.logger.Warn("Template has no <content> placeholder; pages are written without it",
			logfields.Template(c.cfg.Template))
	}
	return &state, nil
}

// uniquePages normalizes page sources and drops repeated ones; the first rule wins.
func (c *Compiler) uniquePages() []resolve.InputRule {
	seen := make(map[string]bool, len(c.cfg.Pages))
	out := make([]resolve.InputRule, 0, len(c.cfg.Pages))
	for _, p := range c.cfg.Pages {
		src := absPath(p.Source)
		if seen[src] {
			continue
		}
		seen[src] = true
		out = append(out, resolve.InputRule{Source: src, Target: p.Target})
	}
	return out
}

func (c *Compiler) inputs() report.Inputs {
	in := report.Inputs{
		ProjectRoot: c.cfg.ProjectRoot,
		OutputDir:   c.cfg.OutputDir,
		Template:    c.cfg.Template,
		PrettyPrint: c.cfg.PrettyPrint,
	}
	for _, p := range c.cfg.Pages {
		in.Pages = append(in.Pages, p.Source)
	}
	for _, a := range c.cfg.Assets {
		in.Assets = append(in.Assets, a.Source)
	}
	for _, b := range c.cfg.Bundles {
		in.Bundles = append(in.Bundles, b.Location)
	}
	return in
}

// reportMissing flags referenced files that do not exist and so cannot be linked.
func reportMissing(r *resolve.Resolver, agg *depgraph.Aggregator) {
	for _, dep := range agg.SortedStatic() {
		if dep.Internal || r.IsPage(dep.Target) {
			continue
		}
		if _, err := os.Stat(dep.Target); err != nil {
			agg.Warn(dep.Origin, dep.Target, "referenced file does not exist")
		}
	}
}

func (c *Compiler) reportDiagnostics(rep *report.Report, agg depgraph.Aggregator) {
	diags := agg.SortedDiagnostics()
	for _, d := range diags {
		level := slog.LevelWarn
		if d.Severity == depgraph.SeverityError {
			level = slog.LevelError
		}
		c.logger.LogAttrs(context.Background(), level, d.Message,
			logfields.Source(d.Source),
			logfields.Target(d.Target),
			logfields.Severity(string(d.Severity)))
	}
	rep.AddDiagnostics(diags)
	c.recorder.SetDiagnostics(len(diags))
}

func (c *Compiler) finish(rep *report.Report, err error) {
	if err != nil && len(rep.Errors) == 0 {
		rep.AddError(err)
	}
	rep.Finish()
	c.recorder.ObserveBuildDuration(rep.End.Sub(rep.Start))
	c.recorder.IncBuildOutcome(string(rep.Outcome))
	c.logger.Info("Build finished",
		logfields.BuildID(rep.ID),
		slog.String("outcome", string(rep.Outcome)),
		slog.String("summary", rep.Summary()))
}

func categoryFor(err error) foundationerrors.ErrorCategory {
	if errors.Is(err, os.ErrNotExist) {
		return foundationerrors.CategoryNotFound
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return foundationerrors.CategoryFileSystem
	}
	return foundationerrors.CategoryParse
}

func countPageFailures(errs []error) int {
	n := 0
	for _, err := range errs {
		if ce, ok := foundationerrors.AsClassified(err); ok {
			if _, isPage := ce.Context().Get(logfields.KeyPage); isPage {
				n++
			}
		}
	}
	return n
}

func absPath(p string) string {
	if p == "" {
		return p
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
