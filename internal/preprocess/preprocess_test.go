package preprocess

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/ssio/internal/depgraph"
	"git.home.luguber.info/inful/ssio/internal/dom"
)

type project struct {
	t    *testing.T
	root string
}

func newProject(t *testing.T, files map[string]string) *project {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return &project{t: t, root: root}
}

func (p *project) path(name string) string {
	return filepath.Join(p.root, filepath.FromSlash(name))
}

func (p *project) run(name string) depgraph.State[dom.Node] {
	p.t.Helper()
	out, err := New(nil).File(depgraph.NewScope(p.root, p.path(name)), IncludeMode)
	require.NoError(p.t, err)
	return out
}

func TestVirtualizesImage(t *testing.T) {
	p := newProject(t, map[string]string{
		"a/index.html": `<img src="../shared/logo.png">`,
	})
	out := p.run("a/index.html")

	assert.Equal(t, `<img src="@/shared/logo.png" />`, dom.HTMLString(out.Value))
	assert.True(t, out.Agg.Static.Has(depgraph.Dependency{
		Origin: p.path("a/index.html"),
		Target: p.path("shared/logo.png"),
	}))
	assert.Empty(t, out.Agg.Source)
}

func TestAnchorRegistersPageLink(t *testing.T) {
	p := newProject(t, map[string]string{
		"index.html": `<a href="docs/intro.html#top">Intro</a>`,
	})
	out := p.run("index.html")

	assert.Equal(t, `<a href="@/docs/intro.html#top">Intro</a>`, dom.HTMLString(out.Value))
	dep := depgraph.Dependency{Origin: p.path("index.html"), Target: p.path("docs/intro.html")}
	assert.True(t, out.Agg.Source.Has(dep))
	assert.True(t, out.Agg.Static.Has(dep))
}

func TestExternalReferencesUntouched(t *testing.T) {
	src := `<a href="https://example.com">x</a><a href="#top">y</a><img src="data:image/png;base64,AA" />`
	p := newProject(t, map[string]string{"index.html": src})
	out := p.run("index.html")

	assert.Equal(t, `<a href="https://example.com">x</a><a href="#top">y</a><img src="data:image/png;base64,AA" />`, dom.HTMLString(out.Value))
	assert.True(t, out.Agg.IsEmpty())
}

func TestSrcset(t *testing.T) {
	p := newProject(t, map[string]string{
		"blog/post.html": `<img srcset="a.png 1x, ../b.png 2x">`,
	})
	out := p.run("blog/post.html")

	assert.Equal(t, `<img srcset="@/blog/a.png 1x, @/b.png 2x" />`, dom.HTMLString(out.Value))
	assert.Equal(t, 2, out.Agg.Static.Len())
}

func TestIncludeWithPlaceholder(t *testing.T) {
	p := newProject(t, map[string]string{
		"index.html":         `<include src="partials/card.html"><p>Body</p></include>`,
		"partials/card.html": `<div class="card"><img src="icon.png"><content></content></div>`,
	})
	out := p.run("index.html")

	assert.Equal(t, `<div class="card"><img src="@/partials/icon.png" /><p>Body</p></div>`, dom.HTMLString(out.Value))
	assert.True(t, out.Agg.Static.Has(depgraph.Dependency{
		Origin:   p.path("index.html"),
		Target:   p.path("partials/card.html"),
		Internal: true,
	}))
	assert.True(t, out.Agg.Static.Has(depgraph.Dependency{
		Origin: p.path("partials/card.html"),
		Target: p.path("partials/icon.png"),
	}))
}

func TestIncludeWithoutPlaceholderDropsChildren(t *testing.T) {
	p := newProject(t, map[string]string{
		"index.html": `<include src="nav.html"><p>ignored</p></include><p>after</p>`,
		"nav.html":   `<nav>Menu</nav>`,
	})
	out := p.run("index.html")
	assert.Equal(t, `<nav>Menu</nav><p>after</p>`, dom.HTMLString(out.Value))
}

func TestMissingIncludeIsRecoverable(t *testing.T) {
	p := newProject(t, map[string]string{
		"index.html": `<include src="nav.html"></include><p>still here</p>`,
	})
	out := p.run("index.html")

	assert.Equal(t, `<p>still here</p>`, dom.HTMLString(out.Value))
	diags := out.Agg.SortedDiagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, depgraph.SeverityWarning, diags[0].Severity)
	assert.Equal(t, p.path("nav.html"), diags[0].Target)
}

func TestIncludeCycleStops(t *testing.T) {
	p := newProject(t, map[string]string{
		"a.html": `<p>a</p><include src="b.html"></include>`,
		"b.html": `<p>b</p><include src="a.html"></include>`,
	})
	out := p.run("a.html")

	assert.Equal(t, `<p>a</p><p>b</p>`, dom.HTMLString(out.Value))
	diags := out.Agg.SortedDiagnostics()
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "include cycle")
}

func TestStyleElementAndAttribute(t *testing.T) {
	p := newProject(t, map[string]string{
		"css/page.html": `<style>body { background: url("bg.png") }</style><div style="background-image: url(../img/x.png)"></div>`,
	})
	out := p.run("css/page.html")

	assert.Equal(t,
		`<style>body { background: url("@/css/bg.png") }</style><div style="background-image: url(@/img/x.png)"></div>`,
		dom.HTMLString(out.Value))
	assert.Equal(t, 2, out.Agg.Static.Len())
}

func TestMarkdownInclude(t *testing.T) {
	p := newProject(t, map[string]string{
		"index.html": `<include src="about.md"></include>`,
		"about.md":   "# About\n\n![logo](img/logo.png)\n",
	})
	out := p.run("index.html")

	assert.Equal(t, "<h1>About</h1>\n<p><img src=\"@/img/logo.png\" alt=\"logo\" /></p>\n", dom.HTMLString(out.Value))
}

func TestFileLoadErrorIsReturned(t *testing.T) {
	root := t.TempDir()
	_, err := New(nil).File(depgraph.NewScope(root, filepath.Join(root, "missing.html")), IncludeMode)
	assert.Error(t, err)
}

func TestNodeDoesNotModifyInput(t *testing.T) {
	tree, err := dom.Parse(`<img src="a.png">`, IncludeMode)
	require.NoError(t, err)
	New(nil).Node(tree, depgraph.NewScope("/p", "/p/index.html"))
	assert.Equal(t, `<img src="a.png" />`, dom.HTMLString(tree))
}
