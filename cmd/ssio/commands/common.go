// Package commands implements the ssio subcommands.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/ssio/internal/compile"
	"git.home.luguber.info/inful/ssio/internal/logfields"
	"git.home.luguber.info/inful/ssio/internal/metrics"
	"git.home.luguber.info/inful/ssio/internal/report"
)

// Global is shared state handed to every subcommand.
type Global struct {
	Logger  *slog.Logger
	Context context.Context
}

// CLI is the root command with the global flags.
type CLI struct {
	Verbose     bool             `short:"v" help:"Enable verbose logging"`
	Report      string           `help:"Write a JSON build report to this file" type:"path"`
	MetricsFile string           `name:"metrics-file" help:"Write Prometheus metrics in textfile collector format to this file after each build" type:"path"`
	Version     kong.VersionFlag `name:"version" help:"Show version and exit"`

	Compile CompileCmd `cmd:"" help:"Compile the pages given on the command line"`
	Build   BuildCmd   `cmd:"" help:"Build the project described by a manifest"`
	Watch   WatchCmd   `cmd:"" help:"Build a manifest project and rebuild whenever its files change"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	g.Logger = logger
	return nil
}

// builder runs builds for one configuration and exports their results.
type builder struct {
	compiler *compile.Compiler
	prom     *metrics.PrometheusRecorder
	logger   *slog.Logger
	report   string
	metrics  string
}

// newBuilder wires a compiler for cfg. prom is reused across builds when given;
// otherwise a recorder is created only when a metrics file is requested.
func newBuilder(g *Global, root *CLI, cfg compile.Config, prom *metrics.PrometheusRecorder) *builder {
	b := &builder{logger: g.Logger, report: root.Report, metrics: root.MetricsFile, prom: prom}
	if b.prom == nil && root.MetricsFile != "" {
		b.prom = metrics.NewPrometheusRecorder(nil)
	}
	opts := []compile.Option{compile.WithLogger(g.Logger)}
	if b.prom != nil {
		opts = append(opts, compile.WithRecorder(b.prom))
	}
	b.compiler = compile.New(cfg, opts...)
	return b
}

// run builds once. Export failures are logged; the build's own error is returned.
func (b *builder) run(ctx context.Context) error {
	rep, err := b.compiler.Run(ctx)
	b.export(rep)
	return err
}

func (b *builder) export(rep *report.Report) {
	if b.report != "" && rep != nil {
		if err := rep.Persist(b.report); err != nil {
			b.logger.Warn("Failed to write build report", logfields.Path(b.report), logfields.Error(err))
		}
	}
	if b.metrics != "" && b.prom != nil {
		if err := b.prom.WriteTextfile(b.metrics); err != nil {
			b.logger.Warn("Failed to write metrics file", logfields.Path(b.metrics), logfields.Error(err))
		}
	}
}

func contextOf(g *Global) context.Context {
	if g.Context != nil {
		return g.Context
	}
	return context.Background()
}
