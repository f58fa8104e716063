package docsite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `site_name: slopekit
site_url: https://geostab.github.io/slopekit
site_author: geostab
theme: readthedocs
extra_css:
  - css/extra.css
markdown_extensions:
  - attr_list
  - admonition
  - pymdownx.arithmatex:
      generic: true
plugins:
  - search
  - mkdocstrings:
      handlers:
        go:
          docstring_style: godoc
nav:
  - Home: index.md
  - Examples:
      - Quick Start: examples/quickstart.md
  - API:
      - File I/O: api/fileio.md
      - Solve: api/solve.md
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleManifest))
	require.NoError(t, err)

	assert.Equal(t, "slopekit", cfg.SiteName)
	assert.Equal(t, "readthedocs", cfg.Theme.Name)
	require.Len(t, cfg.MarkdownExt, 3)
	assert.Equal(t, "attr_list", cfg.MarkdownExt[0].Name)
	assert.Equal(t, "pymdownx.arithmatex", cfg.MarkdownExt[2].Name)
	assert.Equal(t, true, cfg.MarkdownExt[2].Options["generic"])

	require.Len(t, cfg.Plugins, 2)
	assert.Equal(t, "search", cfg.Plugins[0].Name)
	assert.Nil(t, cfg.Plugins[0].Options)
	assert.Equal(t, "mkdocstrings", cfg.Plugins[1].Name)
	assert.NotNil(t, cfg.Plugins[1].Options)

	require.Len(t, cfg.Nav, 3)
	assert.Equal(t, "Home", cfg.Nav[0].Title)
	assert.Equal(t, "index.md", cfg.Nav[0].Path)
	assert.True(t, cfg.Nav[0].IsLeaf())
	assert.Equal(t, "API", cfg.Nav[2].Title)
	require.Len(t, cfg.Nav[2].Children, 2)
	assert.Equal(t, "File I/O", cfg.Nav[2].Children[0].Title)
}

func TestParseErrors(t *testing.T) {
	t.Run("missing site name", func(t *testing.T) {
		_, err := Parse([]byte("theme: readthedocs\n"))
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Parse([]byte("site_name: [unclosed\n"))
		require.Error(t, err)
	})

	t.Run("nav group mapping to mapping", func(t *testing.T) {
		_, err := Parse([]byte("site_name: x\nnav:\n  - API:\n      key: value\n"))
		require.Error(t, err)
	})
}

func TestRoundTrip(t *testing.T) {
	cfg, err := Parse([]byte(sampleManifest))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "mkdocs.yml")
	require.NoError(t, Write(cfg, path))

	again, err := Load(path)
	require.NoError(t, err)

	// Navigation order is significant and must survive the round trip.
	var before, after []string
	Walk(cfg.Nav, func(e NavEntry, _ int) bool { before = append(before, e.Title+"="+e.Path); return true })
	Walk(again.Nav, func(e NavEntry, _ int) bool { after = append(after, e.Title+"="+e.Path); return true })
	assert.Equal(t, before, after)

	assert.Equal(t, cfg.Theme, again.Theme)
	assert.Equal(t, cfg.Plugins[1].Name, again.Plugins[1].Name)
}

func TestWalkStops(t *testing.T) {
	cfg, err := Parse([]byte(sampleManifest))
	require.NoError(t, err)

	var visited int
	Walk(cfg.Nav, func(NavEntry, int) bool {
		visited++
		return visited < 2
	})
	assert.Equal(t, 2, visited)
}

func TestDefaultIsWellFormed(t *testing.T) {
	cfg := Default()
	path := filepath.Join(t.TempDir(), "mkdocs.yml")
	require.NoError(t, Write(cfg, path))

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.SiteName, again.SiteName)

	r := &Report{}
	lintDeclarations(r, again)
	assert.Empty(t, r.Issues)
}
