package postprocess

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/ssio/internal/depgraph"
	"git.home.luguber.info/inful/ssio/internal/dom"
	"git.home.luguber.info/inful/ssio/internal/preprocess"
	"git.home.luguber.info/inful/ssio/internal/resolve"
	"git.home.luguber.info/inful/ssio/internal/vpath"
)

func parse(t *testing.T, src string) dom.Node {
	t.Helper()
	n, err := dom.Parse(src, preprocess.IncludeMode)
	require.NoError(t, err)
	return n
}

// roundTrip preprocesses src as the page source, builds a resolver from the
// collected dependencies and postprocesses the result.
func roundTrip(t *testing.T, root, source, src string, opts resolve.Options) (string, depgraph.Aggregator) {
	t.Helper()
	pre := preprocess.New(nil).Node(parse(t, src), depgraph.NewScope(root, source))
	opts.ProjectRoot = root
	r := resolve.Build(opts, pre.Agg)

	require.True(t, r.IsPage(source), "source must be a page")
	output, ok := r.Resolve(source)
	require.True(t, ok)

	post := New(r).Run(pre.Value, Page{Source: source, Output: output})
	return dom.HTMLString(post.Value), post.Agg
}

func TestAssetRuleScenario(t *testing.T) {
	root := filepath.FromSlash("/project")
	page := filepath.Join(root, "a", "index.html")
	got, agg := roundTrip(t, root, page, `<img src="../shared/logo.png">`, resolve.Options{
		OutputDir: filepath.FromSlash("/out"),
		Pages:     []resolve.InputRule{{Source: page}},
		Assets:    []resolve.InputRule{{Source: filepath.Join(root, "shared", "logo.png"), Target: "assets/logo.png"}},
	})
	assert.Equal(t, `<img src="../assets/logo.png" />`, got)
	assert.Empty(t, agg.Diagnostics)
}

func TestPageLinkFollowsExplicitTargets(t *testing.T) {
	root := filepath.FromSlash("/project")
	index := filepath.Join(root, "index.html")
	about := filepath.Join(root, "pages", "about.html")
	got, _ := roundTrip(t, root, index, `<a href="pages/about.html#team">About</a>`, resolve.Options{
		OutputDir: filepath.FromSlash("/out"),
		Pages: []resolve.InputRule{
			{Source: index, Target: "en/index.html"},
			{Source: about, Target: "en/about/index.html"},
		},
	})
	assert.Equal(t, `<a href="about/index.html#team">About</a>`, got)
}

func TestVirtualPathRoundTripAcrossDepths(t *testing.T) {
	root := filepath.FromSlash("/project")
	out := filepath.FromSlash("/out")
	page := filepath.Join(root, "docs", "guide", "page.html")
	asset := filepath.Join(root, "img", "diagram.svg")

	targets := []string{"", "page.html", "a/b/c/page.html"}
	assetTargets := []string{"", "static/diagram.svg", "x/y/diagram.svg"}
	for _, pt := range targets {
		for _, at := range assetTargets {
			opts := resolve.Options{
				OutputDir: out,
				Pages:     []resolve.InputRule{{Source: page, Target: pt}},
				Assets:    []resolve.InputRule{{Source: asset, Target: at}},
			}
			got, _ := roundTrip(t, root, page, `<img src="../../img/diagram.svg">`, opts)

			r := resolve.Build(resolve.Options{ProjectRoot: root, OutputDir: out, Pages: opts.Pages, Assets: opts.Assets}, depgraph.Aggregator{})
			pageOut := r.PageOutput(opts.Pages[0])
			assetOut, ok := r.Resolve(asset)
			require.True(t, ok)
			want := `<img src="` + vpath.Relative(pageOut, assetOut) + `" />`
			assert.Equal(t, want, got, "page target %q asset target %q", pt, at)
			assert.Equal(t, assetOut, filepath.Clean(filepath.Join(filepath.Dir(pageOut), filepath.FromSlash(vpath.Relative(pageOut, assetOut)))))
		}
	}
}

func TestUnresolvedReferenceIsKept(t *testing.T) {
	root := filepath.FromSlash("/project")
	page := filepath.Join(root, "index.html")
	pre := preprocess.New(nil).Node(parse(t, `<img src="logo.png">`), depgraph.NewScope(root, page))

	// Resolver built without the collected dependencies.
	r := resolve.Build(resolve.Options{ProjectRoot: root, OutputDir: "/out", Pages: []resolve.InputRule{{Source: page}}}, depgraph.Aggregator{})
	post := New(r).Run(pre.Value, Page{Source: page, Output: filepath.FromSlash("/out/index.html")})

	assert.Equal(t, `<img src="@/logo.png" />`, dom.HTMLString(post.Value))
	diags := post.Agg.SortedDiagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, filepath.Join(root, "logo.png"), diags[0].Target)
}

func TestStyleAndSrcset(t *testing.T) {
	root := filepath.FromSlash("/project")
	page := filepath.Join(root, "blog", "post.html")
	src := `<style>.hero{background:url(hero.jpg)}</style>` +
		`<img srcset="s.jpg 1x, l.jpg 2x">` +
		`<p style="background:url('/img/dots.png')">x</p>`
	got, agg := roundTrip(t, root, page, src, resolve.Options{
		OutputDir: filepath.FromSlash("/out"),
		Pages:     []resolve.InputRule{{Source: page, Target: "post/index.html"}},
	})
	assert.Equal(t,
		`<style>.hero{background:url(../blog/hero.jpg)}</style>`+
			`<img srcset="../blog/s.jpg 1x, ../blog/l.jpg 2x" />`+
			`<p style="background:url('../img/dots.png')">x</p>`,
		got)
	assert.Empty(t, agg.Diagnostics)
}

func TestExternalLinksPassThrough(t *testing.T) {
	root := filepath.FromSlash("/project")
	page := filepath.Join(root, "index.html")
	got, _ := roundTrip(t, root, page, `<a href="https://example.com/x">x</a><a href="mailto:a@b.c">m</a>`, resolve.Options{
		OutputDir: filepath.FromSlash("/out"),
		Pages:     []resolve.InputRule{{Source: page}},
	})
	assert.Equal(t, `<a href="https://example.com/x">x</a><a href="mailto:a@b.c">m</a>`, got)
}
