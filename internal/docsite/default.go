package docsite

// Default returns the manifest shipped with the toolkit's own documentation:
// formula rendering, admonitions, full-text search, and API reference pages
// generated from source comments.
func Default() *SiteConfig {
	return &SiteConfig{
		SiteName:        "slopekit",
		SiteDescription: "Slope stability analysis toolkit",
		RepoURL:         "https://github.com/geostab/slopekit",
		ExtraCSS:        []string{"css/extra.css"},
		ExtraJavascript: []string{"js/katex.js"},
		Theme:           Theme{Name: "readthedocs"},
		MarkdownExt: []Extension{
			{Name: "attr_list"},
			{Name: "admonition"},
			{Name: "md_in_html"},
			{Name: "pymdownx.arithmatex", Options: map[string]any{"generic": true}},
		},
		Plugins: []Plugin{
			{Name: "search"},
			{Name: "mkdocstrings", Options: map[string]any{
				"handlers": map[string]any{
					"go": map[string]any{"docstring_style": "godoc"},
				},
			}},
		},
		Nav: []NavEntry{
			{Title: "Home", Path: "index.md"},
			{Title: "Examples", Children: []NavEntry{
				{Title: "Quick Start", Path: "examples/quickstart.md"},
				{Title: "Rapid Drawdown", Path: "examples/drawdown.md"},
				{Title: "Reliability", Path: "examples/reliability.md"},
			}},
			{Title: "API", Children: []NavEntry{
				{Title: "File I/O", Path: "api/fileio.md"},
				{Title: "Slices", Path: "api/slices.md"},
				{Title: "Solve", Path: "api/solve.md"},
				{Title: "Plot", Path: "api/plot.md"},
				{Title: "Utils", Path: "api/geometry.md"},
			}},
		},
	}
}
