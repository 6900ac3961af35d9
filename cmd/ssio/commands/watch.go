package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/ssio/internal/config"
	"git.home.luguber.info/inful/ssio/internal/logfields"
	"git.home.luguber.info/inful/ssio/internal/metrics"
	"git.home.luguber.info/inful/ssio/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Manifest    string        `short:"m" help:"Manifest file (.toml, .yaml or .yml)" default:"ssio.toml" type:"path"`
	PrettyPrint *bool         `name:"pretty-print" help:"Pretty-print written pages when the manifest does not say (default true)"`
	Jobs        int           `short:"j" help:"Pages processed in parallel; overrides the manifest when positive" default:"0"`
	Debounce    time.Duration `help:"Quiet period before a rebuild starts" default:"300ms"`
	MetricsAddr string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address, e.g. :9464"`
}

// Run watches the project root. The manifest is re-read for every build so that
// new files matching its globs are picked up.
func (w *WatchCmd) Run(g *Global, root *CLI) error {
	overrides := config.Overrides{PrettyPrint: w.PrettyPrint, Jobs: w.Jobs}
	cfg, err := loadManifestConfig(g, w.Manifest, overrides)
	if err != nil {
		return err
	}

	ctx := contextOf(g)
	var prom *metrics.PrometheusRecorder
	if w.MetricsAddr != "" || root.MetricsFile != "" {
		prom = metrics.NewPrometheusRecorder(nil)
	}
	if w.MetricsAddr != "" {
		stop := serveMetrics(ctx, g, w.MetricsAddr, prom)
		defer stop()
	}

	watcher := watch.New(cfg.ProjectRoot,
		watch.WithDebounce(w.Debounce),
		watch.WithIgnore(cfg.OutputDir),
		watch.WithIgnoreFiles(root.Report, root.MetricsFile),
		watch.WithLogger(g.Logger))
	return watcher.Run(ctx, func(ctx context.Context) error {
		current, err := loadManifestConfig(g, w.Manifest, overrides)
		if err != nil {
			return err
		}
		return newBuilder(g, root, current, prom).run(ctx)
	})
}

func serveMetrics(ctx context.Context, g *Global, addr string, prom *metrics.PrometheusRecorder) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(prom.Registry()))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.Logger.Error("Metrics server failed", logfields.Error(err))
		}
	}()
	g.Logger.Info("Serving metrics", slog.String("addr", addr))
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}
