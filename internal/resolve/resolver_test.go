package resolve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/ssio/internal/depgraph"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
}

func TestResolvePagesBeforeAssets(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "output")
	page := filepath.Join(root, "a", "index.html")
	logo := filepath.Join(root, "shared", "logo.png")

	var agg depgraph.Aggregator
	agg.AddStatic(depgraph.Dependency{Origin: page, Target: logo})
	agg.AddStatic(depgraph.Dependency{Origin: page, Target: page})

	r := Build(Options{
		ProjectRoot: root,
		OutputDir:   out,
		Pages:       []InputRule{{Source: page}},
		Assets:      []InputRule{{Source: logo, Target: "assets/logo.png"}},
	}, agg)

	got, ok := r.Resolve(page)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(out, "a", "index.html"), got)

	got, ok = r.Resolve(logo)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(out, "assets", "logo.png"), got)

	_, ok = r.Resolve(filepath.Join(root, "nope.png"))
	assert.False(t, ok)

	require.Len(t, r.Assets(), 1, "a page is never also an asset")
}

func TestExplicitPageTarget(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "pages", "about.html")
	r := Build(Options{
		ProjectRoot: root,
		OutputDir:   filepath.Join(root, "out"),
		Pages:       []InputRule{{Source: src, Target: "about/index.html"}, {Source: src, Target: "ignored.html"}},
	}, depgraph.Aggregator{})

	got, ok := r.Resolve(src)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "out", "about", "index.html"), got)
}

func TestMarkdownPageOutput(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "docs", "guide.md")
	r := Build(Options{ProjectRoot: root, OutputDir: filepath.Join(root, "out"), Pages: []InputRule{{Source: src}}}, depgraph.Aggregator{})

	got, ok := r.Resolve(src)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "out", "docs", "guide.html"), got)
}

func TestDirectoryResolvesToIndexPage(t *testing.T) {
	root := t.TempDir()
	index := filepath.Join(root, "blog", "index.html")
	r := Build(Options{ProjectRoot: root, OutputDir: filepath.Join(root, "out"), Pages: []InputRule{{Source: index}}}, depgraph.Aggregator{})

	got, ok := r.Resolve(filepath.Join(root, "blog"))
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "out", "blog", "index.html"), got)
}

func TestLinksSkipInternalMissingAndBundled(t *testing.T) {
	root := t.TempDir()
	page := filepath.Join(root, "index.html")
	logo := filepath.Join(root, "img", "logo.png")
	vendor := filepath.Join(root, "vendor", "lib.js")
	nav := filepath.Join(root, "nav.html")
	declared := filepath.Join(root, "robots.txt")
	touch(t, page)
	touch(t, logo)
	touch(t, vendor)
	touch(t, nav)
	touch(t, declared)

	var agg depgraph.Aggregator
	agg.AddStatic(depgraph.Dependency{Origin: page, Target: logo})
	agg.AddStatic(depgraph.Dependency{Origin: page, Target: vendor})
	agg.AddStatic(depgraph.Dependency{Origin: page, Target: nav, Internal: true})
	agg.AddStatic(depgraph.Dependency{Origin: page, Target: filepath.Join(root, "missing.png")})
	agg.AddStatic(depgraph.Dependency{Origin: page, Target: filepath.Join(root, "img")})

	out := filepath.Join(root, "out")
	r := Build(Options{
		ProjectRoot: root,
		OutputDir:   out,
		Pages:       []InputRule{{Source: page}},
		Assets:      []InputRule{{Source: declared}},
		Bundles:     []BundleRule{{Location: filepath.Join(root, "vendor")}},
	}, agg)

	assert.Equal(t, []Link{
		{Source: declared, Output: filepath.Join(out, "robots.txt")},
		{Source: logo, Output: filepath.Join(out, "img", "logo.png")},
	}, r.Links())

	assert.Equal(t, []Link{
		{Source: filepath.Join(root, "vendor"), Output: filepath.Join(out, "vendor")},
	}, r.BundleLinks())

	assert.True(t, r.Covered(vendor))
	assert.False(t, r.Covered(filepath.Join(root, "vendorish", "x.js")))
}

func TestInOutputDir(t *testing.T) {
	root := t.TempDir()
	r := Build(Options{ProjectRoot: root, OutputDir: filepath.Join(root, "out")}, depgraph.Aggregator{})
	assert.True(t, r.InOutputDir(filepath.Join(root, "out", "a.html")))
	assert.False(t, r.InOutputDir(filepath.Join(root, "a.html")))
	assert.False(t, r.InOutputDir(filepath.Join(root, "outside", "a.html")))
}

func TestDependenciesOutsideRootStayUnresolved(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "site")
	page := filepath.Join(root, "index.html")
	shared := filepath.Join(base, "shared.png")
	touch(t, page)
	touch(t, shared)

	var agg depgraph.Aggregator
	agg.AddStatic(depgraph.Dependency{Origin: page, Target: shared})

	r := Build(Options{
		ProjectRoot: root,
		OutputDir:   filepath.Join(root, "out"),
		Pages:       []InputRule{{Source: page}},
	}, agg)

	_, ok := r.Resolve(shared)
	assert.False(t, ok)
	assert.Empty(t, r.Assets())
	assert.Empty(t, r.Links())
}

func TestContainedRejectsLinksOutsideOutput(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "out")
	r := Build(Options{ProjectRoot: root, OutputDir: out}, depgraph.Aggregator{})

	ok := Link{Source: filepath.Join(root, "a.png"), Output: filepath.Join(out, "a.png")}
	sibling := Link{Source: filepath.Join(root, "b.png"), Output: filepath.Join(root, "b.png")}
	whole := Link{Source: root, Output: out}

	inside, escaped := r.Contained([]Link{ok, sibling, whole})
	assert.Equal(t, []Link{ok}, inside)
	assert.Equal(t, []Link{sibling, whole}, escaped)
}
