package docsite

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Check identifies a lint rule.
type Check string

const (
	CheckParse      Check = "parse"       // file parses as valid configuration
	CheckNavPaths   Check = "nav-paths"   // every leaf path exists under the docs root
	CheckNavTitles  Check = "nav-titles"  // sibling titles unique within each group
	CheckPlugins    Check = "plugins"     // declared plugins are supported
	CheckExtensions Check = "extensions"  // declared markdown extensions are supported
	CheckPageLinks  Check = "page-links"  // relative links inside pages resolve
)

// Issue is one lint finding.
type Issue struct {
	Check  Check  `json:"check"`
	Where  string `json:"where"`
	Detail string `json:"detail"`
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s: %s", i.Check, i.Where, i.Detail)
}

// Report collects lint findings.
type Report struct {
	Issues []Issue `json:"issues"`
}

// OK reports whether the configuration passed every check.
func (r *Report) OK() bool { return len(r.Issues) == 0 }

func (r *Report) add(check Check, where, detail string) {
	r.Issues = append(r.Issues, Issue{Check: check, Where: where, Detail: detail})
}

// supportedPlugins are the plugins the target generator version ships with or
// that the docs pipeline installs.
var supportedPlugins = map[string]bool{
	"search":       true,
	"mkdocstrings": true,
	"autorefs":     true,
}

// supportedExtensions are the markdown extensions the target generator
// accepts, including the pymdownx set used for math markup.
var supportedExtensions = map[string]bool{
	"attr_list":             true,
	"admonition":            true,
	"md_in_html":            true,
	"toc":                   true,
	"tables":                true,
	"fenced_code":           true,
	"footnotes":             true,
	"def_list":              true,
	"pymdownx.arithmatex":   true,
	"pymdownx.details":      true,
	"pymdownx.superfences":  true,
	"pymdownx.highlight":    true,
}

// LintFile parses the manifest at path and lints it against docsDir. A parse
// failure is reported as an issue, not an error, so callers get a uniform
// report.
func LintFile(path, docsDir string) (*Report, error) {
	r := &Report{}
	cfg, err := Load(path)
	if err != nil {
		r.add(CheckParse, path, err.Error())
		return r, nil
	}
	return Lint(cfg, docsDir), nil
}

// Lint checks the manifest structure against the docs source tree: navigation
// paths resolve, sibling titles are unique, and declared plugins and markdown
// extensions are from the supported sets.
func Lint(cfg *SiteConfig, docsDir string) *Report {
	r := &Report{}
	lintNavPaths(r, cfg.Nav, docsDir)
	lintNavTitles(r, cfg.Nav, "nav")
	lintDeclarations(r, cfg)
	return r
}

func lintNavPaths(r *Report, entries []NavEntry, docsDir string) {
	Walk(entries, func(e NavEntry, _ int) bool {
		if !e.IsLeaf() || e.Path == "" {
			return true
		}
		if !strings.HasSuffix(e.Path, ".md") {
			r.add(CheckNavPaths, e.Path, "navigation leaf must reference a markdown file")
			return true
		}
		full := filepath.Join(docsDir, filepath.FromSlash(e.Path))
		if info, err := os.Stat(full); err != nil || info.IsDir() {
			r.add(CheckNavPaths, e.Path, "referenced page not found under docs root")
		}
		return true
	})
}

func lintNavTitles(r *Report, entries []NavEntry, where string) {
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		title := e.Title
		if title == "" {
			title = e.Path
		}
		if seen[title] {
			r.add(CheckNavTitles, where, fmt.Sprintf("duplicate sibling title %q", title))
		}
		seen[title] = true
		if !e.IsLeaf() {
			lintNavTitles(r, e.Children, where+" > "+title)
		}
	}
}

func lintDeclarations(r *Report, cfg *SiteConfig) {
	for _, p := range cfg.Plugins {
		if !supportedPlugins[p.Name] {
			r.add(CheckPlugins, p.Name, "plugin not supported by the target generator")
		}
	}
	for _, e := range cfg.MarkdownExt {
		if !supportedExtensions[e.Name] {
			r.add(CheckExtensions, e.Name, "markdown extension not supported by the target generator")
		}
	}
}

// LintLinks extends the structural checks with page content linting: every
// relative markdown link inside a nav page must resolve under the docs root.
func LintLinks(cfg *SiteConfig, docsDir string) (*Report, error) {
	r := &Report{}
	var walkErr error
	Walk(cfg.Nav, func(e NavEntry, _ int) bool {
		if !e.IsLeaf() || e.Path == "" {
			return true
		}
		page := filepath.Join(docsDir, filepath.FromSlash(e.Path))
		body, err := os.ReadFile(filepath.Clean(page))
		if err != nil {
			// Missing pages are already reported by the path check.
			return true
		}
		links, err := ExtractMarkdownLinks(body)
		if err != nil {
			walkErr = err
			return false
		}
		for _, l := range links {
			if !isRelative(l.Destination) {
				continue
			}
			target := filepath.Join(filepath.Dir(page), filepath.FromSlash(stripFragment(l.Destination)))
			if _, err := os.Stat(target); err != nil {
				r.add(CheckPageLinks, e.Path, fmt.Sprintf("broken link %q", l.Destination))
			}
		}
		return true
	})
	return r, walkErr
}

func isRelative(dest string) bool {
	if dest == "" || strings.HasPrefix(dest, "#") {
		return false
	}
	if strings.Contains(dest, "://") || strings.HasPrefix(dest, "mailto:") {
		return false
	}
	return true
}

func stripFragment(dest string) string {
	if i := strings.IndexByte(dest, '#'); i >= 0 {
		return dest[:i]
	}
	return dest
}
