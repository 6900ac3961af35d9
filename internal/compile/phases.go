package compile

import (
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/ssio/internal/bake"
	"git.home.luguber.info/inful/ssio/internal/depgraph"
	"git.home.luguber.info/inful/ssio/internal/dom"
	foundationerrors "git.home.luguber.info/inful/ssio/internal/foundation/errors"
	"git.home.luguber.info/inful/ssio/internal/logfields"
	"git.home.luguber.info/inful/ssio/internal/metrics"
	"git.home.luguber.info/inful/ssio/internal/postprocess"
	"git.home.luguber.info/inful/ssio/internal/preprocess"
	"git.home.luguber.info/inful/ssio/internal/report"
	"git.home.luguber.info/inful/ssio/internal/resolve"
)

type pageState struct {
	rule  resolve.InputRule
	state depgraph.State[dom.Node]
	err   error
}

type plannedPage struct {
	rule   resolve.InputRule
	output string
	tree   dom.Node
}

type writeResult struct {
	agg     depgraph.Aggregator
	changed bool
	err     error
}

// preprocessPages is phase one. Pages are independent of each other, so they run
// in parallel; a page that fails to load is recorded and does not stop the rest.
func (c *Compiler) preprocessPages(ctx context.Context, pages []resolve.InputRule, template *depgraph.State[dom.Node]) ([]pageState, error) {
	pre := preprocess.New(c.loader)
	out := make([]pageState, len(pages))

	group, groupctx := errgroup.WithContext(ctx)
	group.SetLimit(c.cfg.Jobs)
	for i, rule := range pages {
		group.Go(func() error {
			if err := groupctx.Err(); err != nil {
				return err
			}
			out[i].rule = rule
			state, err := pre.File(depgraph.NewScope(c.cfg.ProjectRoot, rule.Source), preprocess.IncludeMode)
			if err != nil {
				out[i].err = foundationerrors.WrapError(err, categoryFor(err), "load page").
					WithContext(logfields.KeyPage, rule.Source).
					Build()
				c.recorder.IncPageResult(metrics.PageFailed)
				return nil
			}
			if template != nil {
				state = bake.Bake(*template, state, true)
			}
			out[i].state = state
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// planOutputs assigns each page its output path. A later page claiming an output
// already taken is skipped with a diagnostic. An output that equals its source or
// leaves the output directory is a configuration bug and aborts the build.
func (c *Compiler) planOutputs(r *resolve.Resolver, pages []pageState, rep *report.Report, agg *depgraph.Aggregator) ([]plannedPage, error) {
	claimed := make(map[string]string, len(pages))
	plan := make([]plannedPage, 0, len(pages))
	for _, p := range pages {
		if p.err != nil {
			continue
		}
		output := r.PageOutput(p.rule)
		if output == p.rule.Source {
			return nil, invariantError("page output would overwrite its source", p.rule.Source, output)
		}
		if !r.InOutputDir(output) || filepath.Clean(output) == r.OutputDir() {
			return nil, invariantError("page output is outside the output directory", p.rule.Source, output)
		}
		if first, taken := claimed[output]; taken {
			agg.Warn(p.rule.Source, output, "output already produced by %s; page skipped", first)
			rep.Pages.Duplicates++
			c.recorder.IncPageResult(metrics.PageDuplicate)
			continue
		}
		claimed[output] = p.rule.Source
		plan = append(plan, plannedPage{rule: p.rule, output: output, tree: p.state.Value})
	}
	return plan, nil
}

func invariantError(msg, source, output string) error {
	return foundationerrors.InvariantError(msg).
		WithContext(logfields.KeySource, source).
		WithContext(logfields.KeyOutput, output).
		Build()
}

// postprocessPages is phase two: resolve every reference against r, serialize and
// write. Pages run in parallel against the shared, read-only resolver.
func (c *Compiler) postprocessPages(ctx context.Context, r *resolve.Resolver, plan []plannedPage) ([]writeResult, error) {
	post := postprocess.New(r)
	out := make([]writeResult, len(plan))

	group, groupctx := errgroup.WithContext(ctx)
	group.SetLimit(c.cfg.Jobs)
	for i, p := range plan {
		group.Go(func() error {
			if err := groupctx.Err(); err != nil {
				return err
			}
			state := post.Run(p.tree, postprocess.Page{Source: p.rule.Source, Output: p.output})
			out[i].agg = state.Agg
			changed, err := writeIfChanged(p.output, Serialize(state.Value, c.cfg.PrettyPrint))
			if err != nil {
				out[i].err = foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, fmt.Sprintf("write %s", p.output)).
					WithContext(logfields.KeyPage, p.rule.Source).
					WithContext(logfields.KeyOutput, p.output).
					Build()
				c.recorder.IncPageResult(metrics.PageFailed)
				return nil
			}
			out[i].changed = changed
			if changed {
				c.logger.Debug("Wrote page", logfields.Page(p.rule.Source), logfields.Output(p.output))
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// linkAssets creates the per-file asset links and then one link per bundle. A link
// that would land outside the output directory is never created.
func (c *Compiler) linkAssets(r *resolve.Resolver, rep *report.Report, agg *depgraph.Aggregator) []error {
	var errs []error
	link := func(l resolve.Link, bundle bool) {
		created, err := ensureSymlink(l.Source, l.Output)
		if err != nil {
			rep.Links.Failed++
			errs = append(errs, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "link asset").
				WithContext(logfields.KeySource, l.Source).
				WithContext(logfields.KeyOutput, l.Output).
				Build())
			return
		}
		c.recorder.IncLinks(created)
		switch {
		case bundle:
			rep.Links.Bundles++
		case created:
			rep.Links.Created++
		default:
			rep.Links.Unchanged++
		}
	}
	plan := func(links []resolve.Link) []resolve.Link {
		inside, escaped := r.Contained(links)
		for _, l := range escaped {
			agg.Warn(l.Source, l.Output, "link target is outside the output directory; not linked")
			rep.Links.Skipped++
		}
		return inside
	}
	for _, l := range plan(r.Links()) {
		link(l, false)
	}
	for _, l := range plan(r.BundleLinks()) {
		link(l, true)
	}
	return errs
}
