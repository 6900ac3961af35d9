package resolve

import (
	"io/fs"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/ssio/internal/depgraph"
	"git.home.luguber.info/inful/ssio/internal/markdown"
)

// Options configures Build.
type Options struct {
	ProjectRoot string
	OutputDir   string
	Pages       []InputRule
	// Assets are declared up front and always linked; more are derived from
	// the static dependencies collected during preprocessing.
	Assets  []InputRule
	Bundles []BundleRule
	// Stat defaults to os.Stat.
	Stat func(name string) (fs.FileInfo, error)
}

// Resolver answers "where does this source file end up". It is read-only after
// Build and safe for concurrent use.
type Resolver struct {
	projectRoot string
	outputDir   string
	pages       []InputRule
	assets      []InputRule
	declared    int
	bundles     []BundleRule
	pageIndex   map[string]int
	assetIndex  map[string]int
	stat        func(string) (fs.FileInfo, error)
}

// Build indexes the page rules, the declared assets and every static dependency
// that is neither a page nor an inlined include. Dependencies outside the project
// root have no place in the output tree and stay unresolved.
func Build(opts Options, agg depgraph.Aggregator) *Resolver {
	r := &Resolver{
		projectRoot: absClean(opts.ProjectRoot),
		outputDir:   absClean(opts.OutputDir),
		bundles:     make([]BundleRule, 0, len(opts.Bundles)),
		pageIndex:   make(map[string]int, len(opts.Pages)),
		assetIndex:  make(map[string]int, len(opts.Assets)),
		stat:        opts.Stat,
	}
	if r.stat == nil {
		r.stat = os.Stat
	}
	for _, p := range opts.Pages {
		rule := InputRule{Source: absClean(p.Source), Target: p.Target}
		if _, dup := r.pageIndex[rule.Source]; dup {
			continue
		}
		r.pageIndex[rule.Source] = len(r.pages)
		r.pages = append(r.pages, rule)
	}
	for _, a := range opts.Assets {
		r.addAsset(InputRule{Source: absClean(a.Source), Target: a.Target})
	}
	r.declared = len(r.assets)
	for _, dep := range agg.SortedStatic() {
		if dep.Internal {
			continue
		}
		if _, isPage := r.pageIndex[dep.Target]; isPage {
			continue
		}
		if !within(dep.Target, r.projectRoot) {
			continue
		}
		r.addAsset(InputRule{Source: dep.Target})
	}
	for _, b := range opts.Bundles {
		r.bundles = append(r.bundles, BundleRule{Location: absClean(b.Location)})
	}
	return r
}

func (r *Resolver) addAsset(rule InputRule) {
	if _, dup := r.assetIndex[rule.Source]; dup {
		return
	}
	r.assetIndex[rule.Source] = len(r.assets)
	r.assets = append(r.assets, rule)
}

// ProjectRoot is the absolute project root.
func (r *Resolver) ProjectRoot() string { return r.projectRoot }

// OutputDir is the absolute output directory.
func (r *Resolver) OutputDir() string { return r.outputDir }

// Assets returns declared assets followed by derived ones.
func (r *Resolver) Assets() []InputRule { return append([]InputRule(nil), r.assets...) }

// IsPage reports whether source is a page.
func (r *Resolver) IsPage(source string) bool {
	_, ok := r.pageIndex[absClean(source)]
	return ok
}

// PageOutput is the absolute output path of a page rule. Derived Markdown page
// outputs end in .html.
func (r *Resolver) PageOutput(rule InputRule) string {
	if rule.Target != "" {
		return filepath.Join(r.outputDir, filepath.FromSlash(rule.Target))
	}
	return filepath.Join(r.outputDir, markdown.OutputName(r.relative(rule.Source)))
}

// AssetOutput is the absolute output path of an asset rule.
func (r *Resolver) AssetOutput(rule InputRule) string {
	if rule.Target != "" {
		return filepath.Join(r.outputDir, filepath.FromSlash(rule.Target))
	}
	return filepath.Join(r.outputDir, r.relative(rule.Source))
}

func (r *Resolver) relative(source string) string {
	rel, err := filepath.Rel(r.projectRoot, source)
	if err != nil {
		return source
	}
	return rel
}

// Resolve returns the output path of source: pages first, then assets. A
// directory resolves to its index page when that page is part of the build.
func (r *Resolver) Resolve(source string) (string, bool) {
	source = absClean(source)
	if i, ok := r.pageIndex[source]; ok {
		return r.PageOutput(r.pages[i]), true
	}
	if i, ok := r.assetIndex[source]; ok {
		return r.AssetOutput(r.assets[i]), true
	}
	for _, name := range []string{"index.html", "index.md"} {
		if i, ok := r.pageIndex[filepath.Join(source, name)]; ok {
			return r.PageOutput(r.pages[i]), true
		}
	}
	return "", false
}

// Covered reports whether a bundle already places source in the output tree.
// Both the project-relative and the absolute form are compared.
func (r *Resolver) Covered(source string) bool {
	source = absClean(source)
	rel := r.relative(source)
	for _, b := range r.bundles {
		if hasPathPrefix(source, b.Location) || hasPathPrefix(rel, r.relative(b.Location)) {
			return true
		}
	}
	return false
}

// Link is a symlink to create: Output points at Source.
type Link struct {
	Source string
	Output string
}

// Links plans the per-file symlinks. Declared assets are always linked when the
// file exists; derived assets only when they are regular files that no bundle covers.
func (r *Resolver) Links() []Link {
	var links []Link
	for i, rule := range r.assets {
		info, err := r.stat(rule.Source)
		if err != nil {
			continue
		}
		if i >= r.declared && (!info.Mode().IsRegular() || r.Covered(rule.Source)) {
			continue
		}
		links = append(links, Link{Source: rule.Source, Output: r.AssetOutput(rule)})
	}
	return links
}

// BundleLinks lists one link per bundle, mirroring its project-relative location.
func (r *Resolver) BundleLinks() []Link {
	links := make([]Link, 0, len(r.bundles))
	for _, b := range r.bundles {
		links = append(links, Link{Source: b.Location, Output: filepath.Join(r.outputDir, r.relative(b.Location))})
	}
	return links
}

// InOutputDir reports whether path lies inside the output directory.
func (r *Resolver) InOutputDir(path string) bool {
	return within(absClean(path), r.outputDir)
}

// Contained splits links into those whose output lies strictly below the output
// directory and those that would be created anywhere else.
func (r *Resolver) Contained(links []Link) (inside, escaped []Link) {
	for _, l := range links {
		if out := absClean(l.Output); out != r.outputDir && r.InOutputDir(out) {
			inside = append(inside, l)
		} else {
			escaped = append(escaped, l)
		}
	}
	return inside, escaped
}

func absClean(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
